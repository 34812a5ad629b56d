package analytics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"trading-journal/internal/models"
)

var baseTime = time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)

// trade builds a closed trade closing i days after baseTime.
func trade(id string, pnl float64, i int) models.Trade {
	p := pnl
	closed := baseTime.AddDate(0, 0, i)
	return models.Trade{
		ID:           id,
		AccountID:    "acc-1",
		Asset:        "AAPL",
		AssetType:    models.AssetStocks,
		Direction:    models.DirectionLong,
		EntryPrice:   100,
		PositionSize: 1,
		PnL:          &p,
		Status:       models.TradeClosed,
		OpenedAt:     closed.Add(-time.Hour),
		ClosedAt:     &closed,
	}
}

func tradesFromPnL(pnls []float64) []models.Trade {
	trades := make([]models.Trade, len(pnls))
	for i, p := range pnls {
		trades[i] = trade(fmt.Sprintf("t%d", i), p, i)
	}
	return trades
}

func TestAggregateScenarioA(t *testing.T) {
	stats := Aggregate(tradesFromPnL([]float64{100, -40, 60}))

	assert.Equal(t, 3, stats.TotalTrades)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.InDelta(t, 66.67, stats.WinRate, 0.01)
	assert.InDelta(t, 80, stats.AvgWin, 1e-9)
	assert.InDelta(t, 40, stats.AvgLoss, 1e-9)
	assert.InDelta(t, 120, stats.TotalPnL, 1e-9)
	// (2/3)*80 - (1/3)*40
	assert.InDelta(t, 40, stats.Expectancy, 1e-9)
	assert.InDelta(t, 4, stats.ProfitFactor, 1e-9)
}

func TestAggregateEmptyCohort(t *testing.T) {
	assert.Equal(t, TradeStats{}, Aggregate(nil))
	assert.Equal(t, TradeStats{}, Aggregate([]models.Trade{}))
}

func TestAggregateZeroPnLIsLoss(t *testing.T) {
	stats := Aggregate(tradesFromPnL([]float64{0, 0}))

	assert.Equal(t, 0, stats.Wins)
	assert.Equal(t, 2, stats.Losses)
	assert.Zero(t, stats.WinRate)
	assert.Zero(t, stats.AvgLoss)
	// avgLoss is 0, so the factor falls back to 0
	assert.Zero(t, stats.ProfitFactor)
}

func TestAggregateNoLossesHasZeroProfitFactor(t *testing.T) {
	stats := Aggregate(tradesFromPnL([]float64{10, 20}))

	assert.Equal(t, 100.0, stats.WinRate)
	assert.Zero(t, stats.ProfitFactor)
	assert.InDelta(t, 15, stats.Expectancy, 1e-9)
}

func TestAggregateRiskRewardMissingCountsAsZero(t *testing.T) {
	trades := tradesFromPnL([]float64{10, -5, 20})
	rr := 3.0
	trades[0].RiskReward = &rr

	assert.InDelta(t, 1.0, Aggregate(trades).AvgRR, 1e-9)
}

// Property: wins + losses always equals the cohort size and the win rate
// stays within [0, 100].
func TestProperty_WinsPlusLossesEqualsCohort(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("wins + losses = n and winRate in [0,100]", prop.ForAll(
		func(pnls []float64) bool {
			stats := Aggregate(tradesFromPnL(pnls))
			return stats.Wins+stats.Losses == len(pnls) &&
				stats.TotalTrades == len(pnls) &&
				stats.WinRate >= 0 && stats.WinRate <= 100 &&
				stats.AvgLoss >= 0
		},
		gen.SliceOf(gen.Float64Range(-10000, 10000)),
	))

	properties.TestingRun(t)
}

// Property: the aggregate does not depend on cohort order.
func TestProperty_AggregatePermutationInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("reversed and rotated cohorts aggregate identically", prop.ForAll(
		func(pnls []float64, shift int) bool {
			trades := tradesFromPnL(pnls)
			n := len(trades)

			reversed := make([]models.Trade, n)
			rotated := make([]models.Trade, n)
			for i := range trades {
				reversed[n-1-i] = trades[i]
				if n > 0 {
					rotated[(i+shift)%n] = trades[i]
				}
			}

			base := Aggregate(trades)
			return statsClose(base, Aggregate(reversed)) && statsClose(base, Aggregate(rotated))
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}

func statsClose(a, b TradeStats) bool {
	const eps = 1e-6
	return a.TotalTrades == b.TotalTrades &&
		a.Wins == b.Wins &&
		a.Losses == b.Losses &&
		math.Abs(a.TotalPnL-b.TotalPnL) < eps &&
		math.Abs(a.WinRate-b.WinRate) < eps &&
		math.Abs(a.AvgWin-b.AvgWin) < eps &&
		math.Abs(a.AvgLoss-b.AvgLoss) < eps &&
		math.Abs(a.Expectancy-b.Expectancy) < eps &&
		math.Abs(a.ProfitFactor-b.ProfitFactor) < eps
}
