// Package analytics turns journal records into performance statistics.
//
// Every function in this package is pure: it reads only its arguments,
// never touches the store and never returns an error. Empty inputs yield
// zero-valued results.
package analytics

import (
	"math"

	"trading-journal/internal/models"
)

// TradeStats is the scalar summary of a cohort of closed trades.
type TradeStats struct {
	TotalTrades  int     `json:"total_trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	TotalPnL     float64 `json:"total_pnl"`
	WinRate      float64 `json:"win_rate"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	AvgRR        float64 `json:"avg_rr"`
	Expectancy   float64 `json:"expectancy"`
	ProfitFactor float64 `json:"profit_factor"`
}

// Aggregate reduces a cohort to TradeStats. A trade wins when its P&L is
// strictly positive; a zero P&L counts as a loss. Missing P&L and missing
// risk-reward values are treated as 0.
func Aggregate(trades []models.Trade) TradeStats {
	var stats TradeStats
	stats.TotalTrades = len(trades)
	if stats.TotalTrades == 0 {
		return stats
	}

	var winSum, lossSum, rrSum float64
	for _, t := range trades {
		pnl := t.RealizedPnL()
		stats.TotalPnL += pnl
		if pnl > 0 {
			stats.Wins++
			winSum += pnl
		} else {
			stats.Losses++
			lossSum += math.Abs(pnl)
		}
		if t.RiskReward != nil {
			rrSum += *t.RiskReward
		}
	}

	n := float64(stats.TotalTrades)
	winPct := float64(stats.Wins) / n
	lossPct := float64(stats.Losses) / n

	stats.WinRate = winPct * 100
	if stats.Wins > 0 {
		stats.AvgWin = winSum / float64(stats.Wins)
	}
	if stats.Losses > 0 {
		stats.AvgLoss = lossSum / float64(stats.Losses)
	}
	stats.AvgRR = rrSum / n
	stats.Expectancy = winPct*stats.AvgWin - lossPct*stats.AvgLoss

	// Ratio of averages times counts, not gross profit over gross loss.
	// Yields 0 rather than +Inf when nothing was lost.
	if stats.AvgLoss > 0 && stats.Losses > 0 {
		stats.ProfitFactor = (stats.AvgWin * float64(stats.Wins)) / (stats.AvgLoss * float64(stats.Losses))
	}

	return stats
}

// mean returns the arithmetic mean of values, or 0 when empty.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
