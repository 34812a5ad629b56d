package analytics

import (
	"sort"
	"time"

	"trading-journal/internal/models"
)

// Filter narrows a trade cohort. Zero fields do not filter; the closed-at
// bounds are inclusive. All set fields must match.
type Filter struct {
	AccountID  string           `json:"account_id,omitempty"`
	AssetType  models.AssetType `json:"asset_type,omitempty"`
	StrategyID string           `json:"strategy_id,omitempty"`
	ClosedFrom *time.Time       `json:"closed_from,omitempty"`
	ClosedTo   *time.Time       `json:"closed_to,omitempty"`
}

// Apply returns the closed trades with a realized P&L that pass every set
// filter. Strategy membership is resolved through links. Input order is kept.
func Apply(trades []models.Trade, links []models.StrategyLink, f Filter) []models.Trade {
	var members map[string]struct{}
	if f.StrategyID != "" {
		members = make(map[string]struct{})
		for _, l := range links {
			if l.StrategyID == f.StrategyID {
				members[l.TradeID] = struct{}{}
			}
		}
	}

	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		if f.AccountID != "" && t.AccountID != f.AccountID {
			continue
		}
		if f.AssetType != "" && t.AssetType != f.AssetType {
			continue
		}
		if members != nil {
			if _, ok := members[t.ID]; !ok {
				continue
			}
		}
		if f.ClosedFrom != nil && (t.ClosedAt == nil || t.ClosedAt.Before(*f.ClosedFrom)) {
			continue
		}
		if f.ClosedTo != nil && (t.ClosedAt == nil || t.ClosedAt.After(*f.ClosedTo)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortByClosedAt returns a copy of trades ordered by close time, oldest
// first. Trades without a close time sort first; ties keep input order.
func SortByClosedAt(trades []models.Trade) []models.Trade {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].ClosedAt, sorted[j].ClosedAt
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.Before(*b)
	})
	return sorted
}

// ByAssetType aggregates each asset class separately. Every asset class is
// present in the result; an empty one maps to zero stats.
func ByAssetType(trades []models.Trade) map[models.AssetType]TradeStats {
	buckets := make(map[models.AssetType][]models.Trade, len(models.AssetTypes))
	for _, t := range trades {
		if t.AssetType.Valid() {
			buckets[t.AssetType] = append(buckets[t.AssetType], t)
		}
	}

	out := make(map[models.AssetType]TradeStats, len(models.AssetTypes))
	for _, at := range models.AssetTypes {
		out[at] = Aggregate(buckets[at])
	}
	return out
}

// DirectionStats holds the long and short partitions of a cohort.
type DirectionStats struct {
	Long  TradeStats `json:"long"`
	Short TradeStats `json:"short"`
}

// ByDirection aggregates long and short trades separately.
func ByDirection(trades []models.Trade) DirectionStats {
	var long, short []models.Trade
	for _, t := range trades {
		switch t.Direction {
		case models.DirectionLong:
			long = append(long, t)
		case models.DirectionShort:
			short = append(short, t)
		}
	}
	return DirectionStats{Long: Aggregate(long), Short: Aggregate(short)}
}

// Summary is TradeStats plus the maximum drawdown of the cohort.
type Summary struct {
	TradeStats
	MaxDrawdown float64 `json:"max_drawdown"`
}

// Report is the trade-analytics view of a cohort.
type Report struct {
	Stats          Summary                         `json:"stats"`
	PnLOverTime    []EquityPoint                   `json:"pnl_over_time"`
	ByAssetType    map[models.AssetType]TradeStats `json:"by_asset_type"`
	DirectionStats DirectionStats                  `json:"direction_stats"`
	Filter         Filter                          `json:"filter"`
}

// BuildReport filters trades and assembles the analytics report. The
// equity curve runs in closed-at order.
func BuildReport(trades []models.Trade, links []models.StrategyLink, f Filter) Report {
	cohort := SortByClosedAt(Apply(trades, links, f))
	curve := Track(EntriesFromTrades(cohort))

	return Report{
		Stats: Summary{
			TradeStats:  Aggregate(cohort),
			MaxDrawdown: curve.MaxDrawdown,
		},
		PnLOverTime:    curve.Points,
		ByAssetType:    ByAssetType(cohort),
		DirectionStats: ByDirection(cohort),
		Filter:         f,
	}
}
