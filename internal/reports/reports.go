// Package reports loads journal records and assembles the analytics views.
//
// Each report issues its store fetches concurrently and waits for all of
// them before computing. A failed fetch is logged and treated as an empty
// collection; only unknown or non-prop accounts are reported as errors.
package reports

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"trading-journal/internal/analytics"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
)

// Options configures a Service.
type Options struct {
	Location           *time.Location
	DashboardDays      int
	RecentTradesLimit  int
	MistakeRecentLimit int
	Now                func() time.Time
}

// Service builds reports from a store.
type Service struct {
	store  store.Reader
	logger zerolog.Logger
	opts   Options
}

// NewService creates a report service. Zero options fall back to UTC, a
// 30 day dashboard and 5 recent trades.
func NewService(r store.Reader, logger zerolog.Logger, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DashboardDays <= 0 {
		opts.DashboardDays = 30
	}
	if opts.RecentTradesLimit <= 0 {
		opts.RecentTradesLimit = 5
	}
	if opts.MistakeRecentLimit <= 0 {
		opts.MistakeRecentLimit = analytics.DefaultRecentMistakeTrades
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: r, logger: logger, opts: opts}
}

// today returns the current calendar date in the configured zone.
func (s *Service) today() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

// fetch runs one query into dst. Errors are logged and replaced by an
// empty collection so the join never fails.
func fetch[T any](ctx context.Context, logger zerolog.Logger, entity string, dst *[]T, query func(context.Context) ([]T, error)) func() error {
	return func() error {
		rows, err := query(ctx)
		if err != nil {
			logging.LogFetchFailure(logger, entity, err)
			rows = nil
		}
		if rows == nil {
			rows = []T{}
		}
		*dst = rows
		return nil
	}
}

// TradeAnalytics builds the filtered trade analytics report.
func (s *Service) TradeAnalytics(ctx context.Context, f analytics.Filter) (analytics.Report, error) {
	start := time.Now()
	logger := logging.WithOperation(s.logger, "trade_analytics")

	tradeFilter := store.TradeFilter{
		AccountID: f.AccountID,
		AssetType: f.AssetType,
		Status:    models.TradeClosed,
		OrderBy:   store.OrderClosedAt,
	}
	if f.ClosedFrom != nil {
		tradeFilter.ClosedFrom = *f.ClosedFrom
	}
	if f.ClosedTo != nil {
		tradeFilter.ClosedTo = *f.ClosedTo
	}

	var trades []models.Trade
	var links []models.StrategyLink

	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetch(gctx, logger, "trades", &trades, func(ctx context.Context) ([]models.Trade, error) {
		return s.store.GetTrades(ctx, tradeFilter)
	}))
	if f.StrategyID != "" {
		g.Go(fetch(gctx, logger, "trade_strategies", &links, func(ctx context.Context) ([]models.StrategyLink, error) {
			return s.store.GetStrategyLinks(ctx, store.LinkFilter{CatalogID: f.StrategyID})
		}))
	}
	if err := g.Wait(); err != nil {
		return analytics.Report{}, err
	}

	report := analytics.BuildReport(trades, links, f)
	logging.LogReport(logger, "trade_analytics", len(trades), time.Since(start))
	return report, nil
}

// CrossAccount builds the cross-account comparison.
func (s *Service) CrossAccount(ctx context.Context) (analytics.CrossAccountReport, error) {
	start := time.Now()
	logger := logging.WithOperation(s.logger, "cross_account")

	var (
		accounts []models.Account
		trades   []models.Trade
		notes    []models.PsychologyNote
		links    []models.MistakeLink
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetch(gctx, logger, "accounts", &accounts, func(ctx context.Context) ([]models.Account, error) {
		return s.store.GetAccounts(ctx, store.AccountFilter{})
	}))
	g.Go(fetch(gctx, logger, "trades", &trades, func(ctx context.Context) ([]models.Trade, error) {
		return s.store.GetTrades(ctx, store.TradeFilter{Status: models.TradeClosed})
	}))
	g.Go(fetch(gctx, logger, "trade_psychology", &notes, s.store.GetPsychologyNotes))
	g.Go(fetch(gctx, logger, "trade_mistakes", &links, func(ctx context.Context) ([]models.MistakeLink, error) {
		return s.store.GetMistakeLinks(ctx, store.LinkFilter{})
	}))
	if err := g.Wait(); err != nil {
		return analytics.CrossAccountReport{}, err
	}

	report := analytics.CrossAccount(accounts, trades, notes, links)
	logging.LogReport(logger, "cross_account", len(trades), time.Since(start))
	return report, nil
}

// PropFirm evaluates the rules of a prop-firm account. It returns
// ErrAccountNotFound or ErrNotPropAccount for unusable accounts.
func (s *Service) PropFirm(ctx context.Context, accountID string) (analytics.PropFirmReport, error) {
	start := time.Now()
	logger := logging.WithAccount(logging.WithOperation(s.logger, "prop_firm"), accountID)

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAccountNotFound) {
			return analytics.PropFirmReport{}, err
		}
		return analytics.PropFirmReport{}, apperrors.Wrapf(err, "loading account %q", accountID)
	}
	if account.Type != models.AccountPropFirm {
		return analytics.PropFirmReport{}, apperrors.Wrapf(apperrors.ErrNotPropAccount, "account %q is %s", accountID, account.Type)
	}

	var (
		rule   *models.PropFirmRule
		daily  []models.DailyPerformance
		trades []models.Trade
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.store.GetPropFirmRule(gctx, accountID)
		if err != nil {
			logging.LogFetchFailure(logger, "prop_firm_rules", err)
			return nil
		}
		rule = r
		return nil
	})
	g.Go(fetch(gctx, logger, "daily_performance", &daily, func(ctx context.Context) ([]models.DailyPerformance, error) {
		return s.store.GetDailyPerformance(ctx, store.DailyFilter{AccountID: accountID})
	}))
	g.Go(fetch(gctx, logger, "trades", &trades, func(ctx context.Context) ([]models.Trade, error) {
		return s.store.GetTrades(ctx, store.TradeFilter{AccountID: accountID, Status: models.TradeClosed})
	}))
	if err := g.Wait(); err != nil {
		return analytics.PropFirmReport{}, err
	}

	report := analytics.EvaluatePropFirm(*account, rule, daily, trades, s.today())
	for _, v := range report.Violations {
		if v.Breached {
			logger.Warn().Str("rule", v.Rule).Float64("current", v.Current).Float64("limit", v.Limit).Msg("Prop firm rule breached")
		}
	}
	logging.LogReport(logger, "prop_firm", len(daily), time.Since(start))
	return report, nil
}

// Dashboard builds the landing view.
func (s *Service) Dashboard(ctx context.Context) (analytics.Dashboard, error) {
	start := time.Now()
	logger := logging.WithOperation(s.logger, "dashboard")
	since := s.today().AddDate(0, 0, -s.opts.DashboardDays)

	var (
		accounts []models.Account
		closed   []models.Trade
		recent   []models.Trade
		daily    []models.DailyPerformance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetch(gctx, logger, "accounts", &accounts, func(ctx context.Context) ([]models.Account, error) {
		return s.store.GetAccounts(ctx, store.AccountFilter{})
	}))
	g.Go(fetch(gctx, logger, "trades", &closed, func(ctx context.Context) ([]models.Trade, error) {
		return s.store.GetTrades(ctx, store.TradeFilter{Status: models.TradeClosed, OrderBy: store.OrderClosedAt})
	}))
	g.Go(fetch(gctx, logger, "recent_trades", &recent, func(ctx context.Context) ([]models.Trade, error) {
		return s.store.GetTrades(ctx, store.TradeFilter{OrderBy: store.OrderOpenedAt, Descending: true, Limit: s.opts.RecentTradesLimit})
	}))
	g.Go(fetch(gctx, logger, "daily_performance", &daily, func(ctx context.Context) ([]models.DailyPerformance, error) {
		return s.store.GetDailyPerformance(ctx, store.DailyFilter{From: calendarDate(since)})
	}))
	if err := g.Wait(); err != nil {
		return analytics.Dashboard{}, err
	}

	dashboard := analytics.BuildDashboard(accounts, closed, recent, daily)
	logging.LogReport(logger, "dashboard", len(closed), time.Since(start))
	return dashboard, nil
}

// Mistakes builds the per-mistake breakdown.
func (s *Service) Mistakes(ctx context.Context) ([]analytics.MistakeStats, error) {
	start := time.Now()
	logger := logging.WithOperation(s.logger, "mistakes")

	var (
		mistakes []models.Mistake
		links    []models.MistakeLink
		trades   []models.Trade
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetch(gctx, logger, "mistakes", &mistakes, s.store.GetMistakes))
	g.Go(fetch(gctx, logger, "trade_mistakes", &links, func(ctx context.Context) ([]models.MistakeLink, error) {
		return s.store.GetMistakeLinks(ctx, store.LinkFilter{})
	}))
	g.Go(fetch(gctx, logger, "trades", &trades, func(ctx context.Context) ([]models.Trade, error) {
		return s.store.GetTrades(ctx, store.TradeFilter{})
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := analytics.MistakeBreakdown(mistakes, links, trades, s.opts.MistakeRecentLimit)
	logging.LogReport(logger, "mistakes", len(links), time.Since(start))
	return stats, nil
}

// Strategies counts trades per strategy.
func (s *Service) Strategies(ctx context.Context) ([]analytics.StrategyCount, error) {
	start := time.Now()
	logger := logging.WithOperation(s.logger, "strategies")

	var (
		strategies []models.Strategy
		links      []models.StrategyLink
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetch(gctx, logger, "strategies", &strategies, s.store.GetStrategies))
	g.Go(fetch(gctx, logger, "trade_strategies", &links, func(ctx context.Context) ([]models.StrategyLink, error) {
		return s.store.GetStrategyLinks(ctx, store.LinkFilter{})
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := analytics.StrategyUsage(strategies, links)
	logging.LogReport(logger, "strategies", len(links), time.Since(start))
	return counts, nil
}

// calendarDate returns midnight UTC of t's calendar date in t's zone.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
