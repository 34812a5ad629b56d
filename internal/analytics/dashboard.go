package analytics

import (
	"trading-journal/internal/models"
)

// DashboardStats is the headline row of the dashboard.
type DashboardStats struct {
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	TotalPnL    float64 `json:"total_pnl"`
	WinRate     float64 `json:"win_rate"`
	AvgRR       float64 `json:"avg_rr"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// Dashboard is the landing view.
type Dashboard struct {
	Accounts     []models.Account          `json:"accounts"`
	RecentTrades []models.Trade            `json:"recent_trades"`
	Daily        []models.DailyPerformance `json:"daily"`
	Stats        DashboardStats            `json:"stats"`
}

// BuildDashboard summarizes every closed trade. Drawdown runs in closed-at
// order. recent and daily are passed through as fetched.
func BuildDashboard(accounts []models.Account, closed, recent []models.Trade, daily []models.DailyPerformance) Dashboard {
	cohort := SortByClosedAt(Apply(closed, nil, Filter{}))
	agg := Aggregate(cohort)

	return Dashboard{
		Accounts:     nonNil(accounts),
		RecentTrades: nonNil(recent),
		Daily:        nonNil(daily),
		Stats: DashboardStats{
			TotalTrades: agg.TotalTrades,
			Wins:        agg.Wins,
			TotalPnL:    agg.TotalPnL,
			WinRate:     agg.WinRate,
			AvgRR:       agg.AvgRR,
			MaxDrawdown: Track(EntriesFromTrades(cohort)).MaxDrawdown,
		},
	}
}

// nonNil returns s, or an empty slice when s is nil, so JSON encodes [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
