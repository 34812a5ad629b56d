package analytics

import (
	"time"

	"trading-journal/internal/models"
)

// EquityEntry is one step of a chronological P&L series.
type EquityEntry struct {
	Date time.Time
	PnL  float64
}

// EquityState is the running state of the drawdown fold.
// The zero value is the initial state.
type EquityState struct {
	Cumulative  float64 `json:"cumulative"`
	Peak        float64 `json:"peak"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// Drawdown returns the current gap between peak and cumulative P&L.
func (s EquityState) Drawdown() float64 {
	return s.Peak - s.Cumulative
}

// Step folds one entry into the state.
func Step(state EquityState, entry EquityEntry) EquityState {
	state.Cumulative += entry.PnL
	if state.Cumulative > state.Peak {
		state.Peak = state.Cumulative
	}
	if dd := state.Drawdown(); dd > state.MaxDrawdown {
		state.MaxDrawdown = dd
	}
	return state
}

// Replay folds entries in the given order and returns the state after each
// step. Input is not sorted.
func Replay(entries []EquityEntry) []EquityState {
	states := make([]EquityState, len(entries))
	var state EquityState
	for i, e := range entries {
		state = Step(state, e)
		states[i] = state
	}
	return states
}

// EquityPoint is one point of the cumulative P&L chart.
type EquityPoint struct {
	Date       string  `json:"date"`
	PnL        float64 `json:"pnl"`
	Cumulative float64 `json:"cumulative"`
}

// EquityCurve is the chart series plus the final maximum drawdown.
type EquityCurve struct {
	Points      []EquityPoint `json:"points"`
	MaxDrawdown float64       `json:"max_drawdown"`
}

// Track runs the drawdown fold over chronologically ordered entries.
func Track(entries []EquityEntry) EquityCurve {
	curve := EquityCurve{Points: make([]EquityPoint, 0, len(entries))}
	var state EquityState
	for _, e := range entries {
		state = Step(state, e)
		curve.Points = append(curve.Points, EquityPoint{
			Date:       dateKey(e.Date),
			PnL:        e.PnL,
			Cumulative: state.Cumulative,
		})
	}
	curve.MaxDrawdown = state.MaxDrawdown
	return curve
}

// EntriesFromTrades maps trades to entries dated by close time, keeping
// the input order.
func EntriesFromTrades(trades []models.Trade) []EquityEntry {
	entries := make([]EquityEntry, 0, len(trades))
	for _, t := range trades {
		var date time.Time
		if t.ClosedAt != nil {
			date = *t.ClosedAt
		}
		entries = append(entries, EquityEntry{Date: date, PnL: t.RealizedPnL()})
	}
	return entries
}

// EntriesFromDaily maps daily performance rows to entries, keeping the
// input order.
func EntriesFromDaily(days []models.DailyPerformance) []EquityEntry {
	entries := make([]EquityEntry, 0, len(days))
	for _, d := range days {
		entries = append(entries, EquityEntry{Date: d.Date, PnL: d.PnL})
	}
	return entries
}

func dateKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return models.DateKey(t)
}
