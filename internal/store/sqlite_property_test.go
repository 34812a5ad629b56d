package store

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedAccount(t *testing.T, s *SQLiteStore, id string, typ models.AccountType) {
	t.Helper()
	require.NoError(t, s.SaveAccount(context.Background(), &models.Account{
		ID: id, UserID: "u1", Name: "acct " + id, Type: typ,
		InitialBalance: 10000, CurrentBalance: 10000, Currency: "USD", IsActive: true,
	}))
}

func closedTrade(id, accountID string, assetType models.AssetType, pnl float64, closedAt time.Time) *models.Trade {
	p := pnl
	c := closedAt
	return &models.Trade{
		ID: id, AccountID: accountID, UserID: "u1", Asset: "XYZ", AssetType: assetType,
		Direction: models.DirectionLong, EntryPrice: 100, PositionSize: 1,
		PnL: &p, Status: models.TradeClosed, OpenedAt: closedAt.Add(-time.Hour), ClosedAt: &c,
	}
}

// Property: For any closed trade, saving it and reading it back yields the
// same P&L, prices and timestamps.
func TestProperty_TradeRoundTripConsistency(t *testing.T) {
	s := newTestStore(t)
	seedAccount(t, s, "acc-1", models.AccountPersonal)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	assetGen := gen.OneConstOf(models.AssetStocks, models.AssetCrypto, models.AssetForex, models.AssetCommodities, models.AssetIndices)
	pnlGen := gen.Float64Range(-5000, 5000)
	offsetGen := gen.IntRange(0, 365*24)

	counter := 0
	properties.Property("trade round-trip: save then retrieve produces equivalent data", prop.ForAll(
		func(assetType models.AssetType, pnl float64, offsetHours int) bool {
			ctx := context.Background()
			counter++
			id := fmt.Sprintf("trade-%d", counter)
			closedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(offsetHours) * time.Hour)
			trade := closedTrade(id, "acc-1", assetType, pnl, closedAt)

			if err := s.SaveTrade(ctx, trade); err != nil {
				t.Logf("Failed to save trade: %v", err)
				return false
			}

			got, err := s.GetTrades(ctx, TradeFilter{ClosedFrom: closedAt, ClosedTo: closedAt})
			if err != nil {
				t.Logf("Failed to get trades: %v", err)
				return false
			}

			for _, r := range got {
				if r.ID != id {
					continue
				}
				return r.AssetType == assetType &&
					r.PnL != nil && math.Abs(*r.PnL-pnl) < 1e-9 &&
					r.ClosedAt != nil && r.ClosedAt.Equal(closedAt) &&
					r.OpenedAt.Equal(trade.OpenedAt)
			}
			t.Logf("Trade %s not returned", id)
			return false
		},
		assetGen,
		pnlGen,
		offsetGen,
	))

	properties.TestingRun(t)
}

// Property: Daily performance rows always come back in ascending date order,
// whatever order they were written in.
func TestProperty_DailyPerformanceOrdered(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25

	properties := gopter.NewProperties(parameters)

	properties.Property("daily rows are ascending by date", prop.ForAll(
		func(offsets []int) bool {
			s := newTestStore(t)
			seedAccount(t, s, "acc-1", models.AccountPropFirm)
			ctx := context.Background()

			base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
			for i, off := range offsets {
				day := &models.DailyPerformance{
					ID:        fmt.Sprintf("d-%d", i),
					AccountID: "acc-1",
					Date:      base.AddDate(0, 0, off),
					PnL:       float64(off),
				}
				if err := s.SaveDailyPerformance(ctx, day); err != nil {
					t.Logf("Failed to save day: %v", err)
					return false
				}
			}

			rows, err := s.GetDailyPerformance(ctx, DailyFilter{AccountID: "acc-1"})
			if err != nil {
				return false
			}
			for i := 1; i < len(rows); i++ {
				if rows[i].Date.Before(rows[i-1].Date) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.IntRange(0, 60)),
	))

	properties.TestingRun(t)
}

func TestGetTradesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "a", models.AccountPersonal)
	seedAccount(t, s, "b", models.AccountPaper)

	day := func(d int) time.Time { return time.Date(2024, 5, d, 15, 0, 0, 0, time.UTC) }
	require.NoError(t, s.SaveTrade(ctx, closedTrade("t1", "a", models.AssetStocks, 100, day(3))))
	require.NoError(t, s.SaveTrade(ctx, closedTrade("t2", "a", models.AssetCrypto, -40, day(1))))
	require.NoError(t, s.SaveTrade(ctx, closedTrade("t3", "b", models.AssetStocks, 60, day(2))))
	require.NoError(t, s.SaveTrade(ctx, &models.Trade{
		ID: "t4", AccountID: "a", UserID: "u1", Asset: "BTC", AssetType: models.AssetCrypto,
		Direction: models.DirectionShort, EntryPrice: 1, PositionSize: 1,
		Status: models.TradeOpen, OpenedAt: day(4),
	}))

	all, err := s.GetTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	closed, err := s.GetTrades(ctx, TradeFilter{Status: models.TradeClosed, OrderBy: OrderClosedAt})
	require.NoError(t, err)
	require.Len(t, closed, 3)
	assert.Equal(t, []string{"t2", "t3", "t1"}, []string{closed[0].ID, closed[1].ID, closed[2].ID})

	byAccount, err := s.GetTrades(ctx, TradeFilter{AccountID: "a", AssetType: models.AssetStocks})
	require.NoError(t, err)
	require.Len(t, byAccount, 1)
	assert.Equal(t, "t1", byAccount[0].ID)

	window, err := s.GetTrades(ctx, TradeFilter{ClosedFrom: day(2), ClosedTo: day(3)})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	recent, err := s.GetTrades(ctx, TradeFilter{OrderBy: OrderOpenedAt, Descending: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "t4", recent[0].ID)
	assert.Nil(t, recent[0].PnL)
	assert.Nil(t, recent[0].ClosedAt)
}

func TestGetAccountNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAccount(context.Background(), "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrAccountNotFound))
}

func TestAccountsFilteredByType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "p1", models.AccountPropFirm)
	seedAccount(t, s, "x1", models.AccountPaper)

	props, err := s.GetAccounts(ctx, AccountFilter{Type: models.AccountPropFirm})
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "p1", props[0].ID)
	assert.True(t, props[0].IsActive)

	acct, err := s.GetAccount(ctx, "x1")
	require.NoError(t, err)
	assert.Equal(t, models.AccountPaper, acct.Type)
}

func TestPropFirmRuleOptionalThresholds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "p1", models.AccountPropFirm)

	rule, err := s.GetPropFirmRule(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, rule)

	loss := 500.0
	days := 5
	require.NoError(t, s.SavePropFirmRule(ctx, &models.PropFirmRule{
		ID: "r1", AccountID: "p1", MaxDailyLoss: &loss, MinTradingDays: &days,
	}))

	rule, err = s.GetPropFirmRule(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, 500.0, *rule.MaxDailyLoss)
	assert.Nil(t, rule.MaxDrawdown)
	assert.Nil(t, rule.ProfitTarget)
	assert.Equal(t, 5, *rule.MinTradingDays)
	assert.Equal(t, models.ChallengeActive, rule.Status)
}

func TestPsychologyAndLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "a", models.AccountPersonal)
	require.NoError(t, s.SaveTrade(ctx, closedTrade("t1", "a", models.AssetForex, -20, time.Now())))

	followed := false
	confidence := 2
	require.NoError(t, s.SavePsychologyNote(ctx, &models.PsychologyNote{
		ID: "n1", TradeID: "t1", FollowedPlan: &followed, ConfidenceScore: &confidence,
	}))
	require.NoError(t, s.SaveMistake(ctx, &models.Mistake{ID: "m1", UserID: "u1", Name: "FOMO"}))
	require.NoError(t, s.LinkMistake(ctx, models.MistakeLink{TradeID: "t1", MistakeID: "m1"}))
	// duplicate links are ignored
	require.NoError(t, s.LinkMistake(ctx, models.MistakeLink{TradeID: "t1", MistakeID: "m1"}))

	notes, err := s.GetPsychologyNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.NotNil(t, notes[0].FollowedPlan)
	assert.False(t, *notes[0].FollowedPlan)
	assert.Equal(t, 2, *notes[0].ConfidenceScore)
	assert.Nil(t, notes[0].Emotion)

	links, err := s.GetMistakeLinks(ctx, LinkFilter{CatalogID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, []models.MistakeLink{{TradeID: "t1", MistakeID: "m1"}}, links)

	none, err := s.GetStrategyLinks(ctx, LinkFilter{TradeID: "t1"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
