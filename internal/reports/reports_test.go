package reports

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/analytics"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
)

// fakeReader serves fixed records. Entities listed in failing return an
// error instead.
type fakeReader struct {
	accounts   []models.Account
	trades     []models.Trade
	daily      []models.DailyPerformance
	rules      map[string]*models.PropFirmRule
	notes      []models.PsychologyNote
	mistakes   []models.Mistake
	strategies []models.Strategy
	mLinks     []models.MistakeLink
	sLinks     []models.StrategyLink
	failing    map[string]bool

	mu           sync.Mutex
	tradeFilters []store.TradeFilter
}

var errBoom = errors.New("boom")

func (f *fakeReader) fail(entity string) error {
	if f.failing[entity] {
		return errBoom
	}
	return nil
}

func (f *fakeReader) GetAccounts(ctx context.Context, filter store.AccountFilter) ([]models.Account, error) {
	if err := f.fail("accounts"); err != nil {
		return nil, err
	}
	return f.accounts, nil
}

func (f *fakeReader) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrAccountNotFound, "account %q", id)
}

func (f *fakeReader) GetTrades(ctx context.Context, filter store.TradeFilter) ([]models.Trade, error) {
	f.mu.Lock()
	f.tradeFilters = append(f.tradeFilters, filter)
	f.mu.Unlock()
	if err := f.fail("trades"); err != nil {
		return nil, err
	}
	var out []models.Trade
	for _, t := range f.trades {
		if filter.AccountID != "" && t.AccountID != filter.AccountID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeReader) GetDailyPerformance(ctx context.Context, filter store.DailyFilter) ([]models.DailyPerformance, error) {
	if err := f.fail("daily"); err != nil {
		return nil, err
	}
	return f.daily, nil
}

func (f *fakeReader) GetPropFirmRule(ctx context.Context, accountID string) (*models.PropFirmRule, error) {
	if err := f.fail("rules"); err != nil {
		return nil, err
	}
	return f.rules[accountID], nil
}

func (f *fakeReader) GetPsychologyNotes(ctx context.Context) ([]models.PsychologyNote, error) {
	if err := f.fail("notes"); err != nil {
		return nil, err
	}
	return f.notes, nil
}

func (f *fakeReader) GetMistakes(ctx context.Context) ([]models.Mistake, error) {
	return f.mistakes, f.fail("mistakes")
}

func (f *fakeReader) GetStrategies(ctx context.Context) ([]models.Strategy, error) {
	return f.strategies, f.fail("strategies")
}

func (f *fakeReader) GetTags(ctx context.Context) ([]models.Tag, error) {
	return nil, nil
}

func (f *fakeReader) GetMistakeLinks(ctx context.Context, filter store.LinkFilter) ([]models.MistakeLink, error) {
	if err := f.fail("mistake_links"); err != nil {
		return nil, err
	}
	return f.mLinks, nil
}

func (f *fakeReader) GetStrategyLinks(ctx context.Context, filter store.LinkFilter) ([]models.StrategyLink, error) {
	var out []models.StrategyLink
	for _, l := range f.sLinks {
		if filter.CatalogID == "" || l.StrategyID == filter.CatalogID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeReader) GetTagLinks(ctx context.Context, filter store.LinkFilter) ([]models.TagLink, error) {
	return nil, nil
}

var now = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func closed(id, accountID string, pnl float64, day int) models.Trade {
	p := pnl
	c := time.Date(2024, 6, day, 12, 0, 0, 0, time.UTC)
	return models.Trade{
		ID: id, AccountID: accountID, Asset: "EURUSD", AssetType: models.AssetForex,
		Direction: models.DirectionLong, PnL: &p, Status: models.TradeClosed,
		OpenedAt: c.Add(-time.Hour), ClosedAt: &c,
	}
}

func fixture() *fakeReader {
	limit := 500.0
	return &fakeReader{
		accounts: []models.Account{
			{ID: "paper", Name: "Paper", Type: models.AccountPaper},
			{ID: "live", Name: "Live", Type: models.AccountPersonal},
			{ID: "prop", Name: "Prop", Type: models.AccountPropFirm, InitialBalance: 100000, CurrentBalance: 99300},
		},
		trades: []models.Trade{
			closed("p1", "paper", 50, 3),
			closed("p2", "paper", 30, 4),
			closed("l1", "live", -20, 3),
			closed("l2", "live", 10, 4),
			closed("x1", "prop", -700, 10),
		},
		daily: []models.DailyPerformance{
			{AccountID: "prop", Date: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), PnL: -700},
		},
		rules:  map[string]*models.PropFirmRule{"prop": {AccountID: "prop", MaxDailyLoss: &limit}},
		sLinks: []models.StrategyLink{{TradeID: "p1", StrategyID: "s1"}, {TradeID: "l1", StrategyID: "s1"}},
	}
}

func newTestService(r store.Reader) *Service {
	return NewService(r, zerolog.Nop(), Options{Now: func() time.Time { return now }})
}

func TestTradeAnalyticsStrategyFilter(t *testing.T) {
	r := fixture()
	report, err := newTestService(r).TradeAnalytics(context.Background(), analytics.Filter{StrategyID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Stats.TotalTrades)
	assert.Equal(t, 30.0, report.Stats.TotalPnL)

	require.Len(t, r.tradeFilters, 1)
	assert.Equal(t, models.TradeClosed, r.tradeFilters[0].Status)
	assert.Equal(t, store.OrderClosedAt, r.tradeFilters[0].OrderBy)
}

func TestTradeAnalyticsFetchFailureYieldsEmptyReport(t *testing.T) {
	r := fixture()
	r.failing = map[string]bool{"trades": true}

	report, err := newTestService(r).TradeAnalytics(context.Background(), analytics.Filter{})
	require.NoError(t, err)
	assert.Zero(t, report.Stats.TotalTrades)
	assert.Len(t, report.ByAssetType, len(models.AssetTypes))
}

func TestCrossAccount(t *testing.T) {
	report, err := newTestService(fixture()).CrossAccount(context.Background())
	require.NoError(t, err)

	require.Len(t, report.AccountStats, 3)
	assert.Equal(t, 100.0, report.AccountStats[0].WinRate)
	assert.Equal(t, 50.0, report.AccountStats[1].WinRate)
	require.Len(t, report.Insights, 1)
	assert.Equal(t, analytics.InsightPsychologyGap, report.Insights[0].Kind)
	assert.Len(t, report.ReadinessSignals, 5)
}

func TestCrossAccountSurvivesFailedFetches(t *testing.T) {
	r := fixture()
	r.failing = map[string]bool{"notes": true, "mistake_links": true}

	report, err := newTestService(r).CrossAccount(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.AccountStats, 3)
	assert.Nil(t, report.AccountStats[0].AvgConfidence)
}

func TestPropFirm(t *testing.T) {
	report, err := newTestService(fixture()).PropFirm(context.Background(), "prop")
	require.NoError(t, err)

	assert.Equal(t, -700.0, report.Metrics.TodayPnL)
	assert.Equal(t, -700.0, report.Metrics.TotalPnL)
	assert.Equal(t, 1, report.Metrics.ClosedTrades)
	require.Len(t, report.Violations, 1)
	assert.True(t, report.Violations[0].Breached)
	assert.Equal(t, 700.0, report.Violations[0].Current)
}

func TestPropFirmTodayUsesConfiguredZone(t *testing.T) {
	r := fixture()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2024-06-09 20:00 UTC is already 2024-06-10 in Tokyo
	svc := NewService(r, zerolog.Nop(), Options{
		Location: tokyo,
		Now:      func() time.Time { return time.Date(2024, 6, 9, 20, 0, 0, 0, time.UTC) },
	})
	report, err := svc.PropFirm(context.Background(), "prop")
	require.NoError(t, err)
	assert.Equal(t, -700.0, report.Metrics.TodayPnL)
}

func TestPropFirmErrors(t *testing.T) {
	svc := newTestService(fixture())

	_, err := svc.PropFirm(context.Background(), "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrAccountNotFound))

	_, err = svc.PropFirm(context.Background(), "paper")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotPropAccount))
}

func TestPropFirmRuleFetchFailureMeansNoViolations(t *testing.T) {
	r := fixture()
	r.failing = map[string]bool{"rules": true}

	report, err := newTestService(r).PropFirm(context.Background(), "prop")
	require.NoError(t, err)
	assert.Empty(t, report.Violations)
}

func TestDashboard(t *testing.T) {
	r := fixture()
	d, err := newTestService(r).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, d.Stats.TotalTrades)
	assert.Len(t, d.Accounts, 3)

	var recent store.TradeFilter
	for _, f := range r.tradeFilters {
		if f.Limit > 0 {
			recent = f
		}
	}
	assert.Equal(t, 5, recent.Limit)
	assert.True(t, recent.Descending)
}

func TestMistakesAndStrategies(t *testing.T) {
	r := fixture()
	r.mistakes = []models.Mistake{{ID: "m1", Name: "FOMO"}}
	r.mLinks = []models.MistakeLink{{TradeID: "l1", MistakeID: "m1"}}
	r.strategies = []models.Strategy{{ID: "s1", Name: "Breakout"}}
	svc := newTestService(r)

	mistakes, err := svc.Mistakes(context.Background())
	require.NoError(t, err)
	require.Len(t, mistakes, 1)
	assert.Equal(t, -20.0, mistakes[0].TotalLoss)

	strategies, err := svc.Strategies(context.Background())
	require.NoError(t, err)
	require.Len(t, strategies, 1)
	assert.Equal(t, 2, strategies[0].TradeCount)
}
