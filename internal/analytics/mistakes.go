package analytics

import (
	"trading-journal/internal/models"
)

// DefaultRecentMistakeTrades is the number of example trades kept per mistake.
const DefaultRecentMistakeTrades = 5

// MistakeTrade is a trade linked to a mistake.
type MistakeTrade struct {
	TradeID string   `json:"trade_id"`
	Asset   string   `json:"asset"`
	PnL     *float64 `json:"pnl"`
	Date    string   `json:"date"`
}

// MistakeStats summarizes one mistake category.
type MistakeStats struct {
	Mistake      models.Mistake `json:"mistake"`
	Count        int            `json:"count"`
	TotalLoss    float64        `json:"total_loss"`
	RecentTrades []MistakeTrade `json:"recent_trades"`
}

// MistakeBreakdown counts links per mistake in catalog order. TotalLoss is
// the (negative) sum of losing P&L. Up to limit linked trades are listed in
// link order. A link to an unknown trade still counts.
func MistakeBreakdown(mistakes []models.Mistake, links []models.MistakeLink, trades []models.Trade, limit int) []MistakeStats {
	if limit <= 0 {
		limit = DefaultRecentMistakeTrades
	}

	tradeByID := make(map[string]models.Trade, len(trades))
	for _, t := range trades {
		tradeByID[t.ID] = t
	}

	index := make(map[string]int, len(mistakes))
	out := make([]MistakeStats, len(mistakes))
	for i, m := range mistakes {
		index[m.ID] = i
		out[i] = MistakeStats{Mistake: m, RecentTrades: []MistakeTrade{}}
	}

	for _, l := range links {
		i, ok := index[l.MistakeID]
		if !ok {
			continue
		}
		stats := &out[i]
		stats.Count++

		t, ok := tradeByID[l.TradeID]
		if !ok {
			continue
		}
		if t.PnL != nil && *t.PnL < 0 {
			stats.TotalLoss += *t.PnL
		}
		if len(stats.RecentTrades) < limit {
			stats.RecentTrades = append(stats.RecentTrades, MistakeTrade{
				TradeID: t.ID,
				Asset:   t.Asset,
				PnL:     t.PnL,
				Date:    dateKey(t.OpenedAt),
			})
		}
	}
	return out
}

// StrategyCount is the number of trades tagged with a strategy.
type StrategyCount struct {
	Strategy   models.Strategy `json:"strategy"`
	TradeCount int             `json:"trade_count"`
}

// StrategyUsage counts linked trades per strategy in catalog order.
func StrategyUsage(strategies []models.Strategy, links []models.StrategyLink) []StrategyCount {
	counts := make(map[string]int)
	for _, l := range links {
		counts[l.StrategyID]++
	}

	out := make([]StrategyCount, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, StrategyCount{Strategy: s, TradeCount: counts[s.ID]})
	}
	return out
}
