// Package integration provides end-to-end tests from journal import to the
// HTTP API.
package integration

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"trading-journal/internal/analytics"
	"trading-journal/internal/api"
	"trading-journal/internal/importer"
	"trading-journal/internal/reports"
	"trading-journal/internal/store"
)

const journal = `
user_id: trader-1
accounts:
  - id: paper-1
    name: Paper
    type: paper
  - id: live-1
    name: Live
    type: personal
  - id: prop-1
    name: FTMO 100k
    type: prop_firm
    initial_balance: 100000
    current_balance: 98500
strategies:
  - id: s-brk
    name: Breakout
mistakes:
  - id: m-fomo
    name: FOMO
trades:
  - {id: p1, account_id: paper-1, asset: EURUSD, asset_type: forex, direction: long, entry_price: 1.1, position_size: 1000, pnl: 100, risk_reward: 2, status: closed, opened_at: "2024-06-03T08:00:00Z", closed_at: "2024-06-03T09:00:00Z", strategies: [s-brk], psychology: {confidence_score: 4, followed_plan: true}}
  - {id: p2, account_id: paper-1, asset: EURUSD, asset_type: forex, direction: short, entry_price: 1.1, position_size: 1000, pnl: -40, risk_reward: 1, status: closed, opened_at: "2024-06-04T08:00:00Z", closed_at: "2024-06-04T09:00:00Z", psychology: {confidence_score: 4, followed_plan: true}}
  - {id: p3, account_id: paper-1, asset: GOLD, asset_type: commodities, direction: long, entry_price: 2300, position_size: 1, pnl: 60, status: closed, opened_at: "2024-06-05T08:00:00Z", closed_at: "2024-06-05T09:00:00Z"}
  - {id: l1, account_id: live-1, asset: AAPL, asset_type: stocks, direction: long, entry_price: 190, position_size: 5, pnl: -30, status: closed, opened_at: "2024-06-03T14:00:00Z", closed_at: "2024-06-03T15:00:00Z", mistakes: [FOMO], psychology: {confidence_score: 2, followed_plan: false}}
  - {id: l2, account_id: live-1, asset: AAPL, asset_type: stocks, direction: long, entry_price: 190, position_size: 5, pnl: 10, status: closed, opened_at: "2024-06-04T14:00:00Z", closed_at: "2024-06-04T15:00:00Z", psychology: {confidence_score: 2, followed_plan: true}}
  - {id: x1, account_id: prop-1, asset: NAS100, asset_type: indices, direction: short, entry_price: 19000, position_size: 1, pnl: -1500, status: closed, opened_at: "2024-06-10T13:00:00Z", closed_at: "2024-06-10T14:00:00Z"}
  - {id: x2, account_id: prop-1, asset: NAS100, asset_type: indices, direction: long, entry_price: 19000, position_size: 1, opened_at: "2024-06-10T15:00:00Z"}
daily_performance:
  - {account_id: prop-1, date: 2024-06-07, pnl: 300}
  - {account_id: prop-1, date: 2024-06-10, pnl: -1800}
prop_firm_rules:
  - account_id: prop-1
    max_daily_loss: 1000
    max_drawdown: 5000
    profit_target: 10000
    min_trading_days: 4
`

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*store.SQLiteStore, http.Handler) {
	t.Helper()
	ctx := context.Background()

	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	doc, err := importer.Parse(strings.NewReader(journal))
	if err != nil {
		t.Fatalf("Failed to parse journal: %v", err)
	}
	if _, err := importer.New(db, zerolog.Nop()).Import(ctx, doc); err != nil {
		t.Fatalf("Failed to import journal: %v", err)
	}

	now := time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)
	svc := reports.NewService(db, zerolog.Nop(), reports.Options{Now: func() time.Time { return now }})
	engine := api.NewEngine(svc, api.ServerConfig{Location: time.UTC}, zerolog.Nop())
	return db, engine
}

func get(t *testing.T, h http.Handler, path string, dst any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s: invalid envelope: %v", path, err)
	}
	if dst != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("%s: invalid data: %v", path, err)
		}
	}
	return rec.Code
}

// TestEndToEndTradeAnalytics imports a journal and reads the filtered
// analytics through the API.
func TestEndToEndTradeAnalytics(t *testing.T) {
	_, h := setup(t)

	var report analytics.Report
	if code := get(t, h, "/api/v1/analytics?account=paper-1", &report); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}

	s := report.Stats
	if s.TotalTrades != 3 || s.Wins != 2 || s.Losses != 1 {
		t.Errorf("Unexpected counts: %+v", s.TradeStats)
	}
	if s.TotalPnL != 120 {
		t.Errorf("Expected total P&L 120, got %v", s.TotalPnL)
	}
	if math.Abs(s.Expectancy-40) > 1e-9 {
		t.Errorf("Expected expectancy 40, got %v", s.Expectancy)
	}
	if s.ProfitFactor != 4 {
		t.Errorf("Expected profit factor 4, got %v", s.ProfitFactor)
	}
	if s.MaxDrawdown != 40 {
		t.Errorf("Expected max drawdown 40, got %v", s.MaxDrawdown)
	}
	if s.AvgRR != 1 {
		t.Errorf("Expected avg RR 1, got %v", s.AvgRR)
	}
	if got := report.ByAssetType["forex"].TotalTrades; got != 2 {
		t.Errorf("Expected 2 forex trades, got %d", got)
	}
	if report.DirectionStats.Short.TotalTrades != 1 {
		t.Errorf("Expected 1 short trade, got %d", report.DirectionStats.Short.TotalTrades)
	}

	var byStrategy analytics.Report
	get(t, h, "/api/v1/analytics?strategy=s-brk", &byStrategy)
	if byStrategy.Stats.TotalTrades != 1 || byStrategy.Stats.TotalPnL != 100 {
		t.Errorf("Strategy filter returned %+v", byStrategy.Stats.TradeStats)
	}
}

// TestEndToEndCrossAccount checks the paper vs live comparison.
func TestEndToEndCrossAccount(t *testing.T) {
	_, h := setup(t)

	var report analytics.CrossAccountReport
	if code := get(t, h, "/api/v1/analytics/cross-account", &report); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}

	if len(report.AccountStats) != 3 {
		t.Fatalf("Expected 3 accounts, got %d", len(report.AccountStats))
	}
	if len(report.ByType.Paper) != 1 || len(report.ByType.Personal) != 1 || len(report.ByType.PropFirm) != 1 {
		t.Errorf("Unexpected grouping: %+v", report.ByType)
	}

	kinds := map[analytics.InsightKind]bool{}
	for _, in := range report.Insights {
		kinds[in.Kind] = true
	}
	// paper wins 66.67% against live 50%
	if !kinds[analytics.InsightPsychologyGap] {
		t.Errorf("Expected psychology gap insight, got %+v", report.Insights)
	}
	if !kinds[analytics.InsightPlanAdherenceGap] {
		t.Errorf("Expected plan adherence gap insight, got %+v", report.Insights)
	}
	if len(report.ReadinessSignals) != 5 {
		t.Errorf("Expected 5 readiness signals, got %d", len(report.ReadinessSignals))
	}

	for _, s := range report.AccountStats {
		if s.ID == "live-1" && s.MistakeCount != 1 {
			t.Errorf("Expected 1 live mistake, got %d", s.MistakeCount)
		}
	}
}

// TestEndToEndPropFirm checks rule evaluation against imported daily rows.
func TestEndToEndPropFirm(t *testing.T) {
	_, h := setup(t)

	var report analytics.PropFirmReport
	if code := get(t, h, "/api/v1/accounts/prop-1/prop-rules", &report); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}

	m := report.Metrics
	if m.TodayPnL != -1800 || m.TotalPnL != -1500 || m.MaxDrawdown != 1800 || m.TradingDays != 2 || m.ClosedTrades != 1 {
		t.Errorf("Unexpected metrics: %+v", m)
	}

	breached := map[string]bool{}
	for _, v := range report.Violations {
		breached[v.Rule] = v.Breached
	}
	want := map[string]bool{
		analytics.RuleMaxDailyLoss:   true,
		analytics.RuleMaxDrawdown:    false,
		analytics.RuleProfitTarget:   false,
		analytics.RuleMinTradingDays: false,
	}
	for rule, b := range want {
		got, ok := breached[rule]
		if !ok {
			t.Errorf("Missing rule %q", rule)
			continue
		}
		if got != b {
			t.Errorf("Rule %q breached=%v, want %v", rule, got, b)
		}
	}

	if code := get(t, h, "/api/v1/accounts/paper-1/prop-rules", nil); code != http.StatusBadRequest {
		t.Errorf("Expected 400 for paper account, got %d", code)
	}
	if code := get(t, h, "/api/v1/accounts/ghost/prop-rules", nil); code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown account, got %d", code)
	}
}

// TestEndToEndDashboardAndCatalogs covers the supporting views.
func TestEndToEndDashboardAndCatalogs(t *testing.T) {
	_, h := setup(t)

	var d analytics.Dashboard
	get(t, h, "/api/v1/dashboard", &d)
	if d.Stats.TotalTrades != 6 {
		t.Errorf("Expected 6 closed trades, got %d", d.Stats.TotalTrades)
	}
	if len(d.RecentTrades) != 5 {
		t.Errorf("Expected 5 recent trades, got %d", len(d.RecentTrades))
	} else if d.RecentTrades[0].ID != "x2" {
		t.Errorf("Expected newest trade first, got %s", d.RecentTrades[0].ID)
	}
	if len(d.Daily) != 2 {
		t.Errorf("Expected 2 daily rows, got %d", len(d.Daily))
	}

	var mistakes []analytics.MistakeStats
	get(t, h, "/api/v1/mistakes", &mistakes)
	if len(mistakes) != 1 || mistakes[0].Count != 1 || mistakes[0].TotalLoss != -30 {
		t.Errorf("Unexpected mistakes: %+v", mistakes)
	}

	var strategies []analytics.StrategyCount
	get(t, h, "/api/v1/strategies", &strategies)
	if len(strategies) != 1 || strategies[0].TradeCount != 1 {
		t.Errorf("Unexpected strategies: %+v", strategies)
	}
}

// TestConcurrentReportRequests serves reports in parallel from one store.
func TestConcurrentReportRequests(t *testing.T) {
	_, h := setup(t)

	paths := []string{
		"/api/v1/analytics",
		"/api/v1/analytics/cross-account",
		"/api/v1/accounts/prop-1/prop-rules",
		"/api/v1/dashboard",
		"/api/v1/mistakes",
		"/api/v1/strategies",
	}

	var wg sync.WaitGroup
	errs := make(chan string, len(paths)*5)
	for i := 0; i < 5; i++ {
		for _, p := range paths {
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				if rec.Code != http.StatusOK {
					errs <- path
				}
			}(p)
		}
	}
	wg.Wait()
	close(errs)

	for p := range errs {
		t.Errorf("Request to %s failed", p)
	}
}
