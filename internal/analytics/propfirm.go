package analytics

import (
	"math"
	"time"

	"trading-journal/internal/models"
)

// Prop-firm rule names.
const (
	RuleMaxDailyLoss   = "Max Daily Loss"
	RuleMaxDrawdown    = "Max Drawdown"
	RuleProfitTarget   = "Profit Target"
	RuleMinTradingDays = "Min Trading Days"
)

// Violation compares one configured threshold with the account's current
// value. Goals (profit target, minimum days) are never breached.
type Violation struct {
	Rule     string  `json:"rule"`
	Current  float64 `json:"current"`
	Limit    float64 `json:"limit"`
	Breached bool    `json:"breached"`
}

// PropFirmMetrics is the figures a challenge is judged on.
type PropFirmMetrics struct {
	TodayPnL     float64 `json:"today_pnl"`
	TotalPnL     float64 `json:"total_pnl"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	TradingDays  int     `json:"trading_days"`
	ClosedTrades int     `json:"closed_trades"`
}

// PropFirmReport is the prop-firm view of one account.
type PropFirmReport struct {
	Account    models.Account       `json:"account"`
	Rule       *models.PropFirmRule `json:"rule"`
	Metrics    PropFirmMetrics      `json:"metrics"`
	Violations []Violation          `json:"violations"`
}

// EvaluatePropFirm checks an account against its rule set. daily must be in
// ascending date order. today is compared by calendar date. A nil rule
// yields no violations. Nothing is written back.
func EvaluatePropFirm(account models.Account, rule *models.PropFirmRule, daily []models.DailyPerformance, trades []models.Trade, today time.Time) PropFirmReport {
	metrics := PropFirmMetrics{
		TotalPnL:    account.CurrentBalance - account.InitialBalance,
		MaxDrawdown: Track(EntriesFromDaily(daily)).MaxDrawdown,
	}

	todayKey := models.DateKey(today)
	days := make(map[string]struct{}, len(daily))
	for _, d := range daily {
		key := models.DateKey(d.Date)
		days[key] = struct{}{}
		if key == todayKey {
			metrics.TodayPnL = d.PnL
		}
	}
	metrics.TradingDays = len(days)

	for _, t := range trades {
		if t.Status == models.TradeClosed {
			metrics.ClosedTrades++
		}
	}

	return PropFirmReport{
		Account:    account,
		Rule:       rule,
		Metrics:    metrics,
		Violations: CheckRules(rule, metrics),
	}
}

// CheckRules emits one Violation per configured threshold.
func CheckRules(rule *models.PropFirmRule, m PropFirmMetrics) []Violation {
	violations := []Violation{}
	if rule == nil {
		return violations
	}

	if rule.MaxDailyLoss != nil {
		current := math.Abs(math.Min(0, m.TodayPnL))
		violations = append(violations, Violation{
			Rule:     RuleMaxDailyLoss,
			Current:  current,
			Limit:    *rule.MaxDailyLoss,
			Breached: current >= *rule.MaxDailyLoss,
		})
	}
	if rule.MaxDrawdown != nil {
		violations = append(violations, Violation{
			Rule:     RuleMaxDrawdown,
			Current:  m.MaxDrawdown,
			Limit:    *rule.MaxDrawdown,
			Breached: m.MaxDrawdown >= *rule.MaxDrawdown,
		})
	}
	if rule.ProfitTarget != nil {
		violations = append(violations, Violation{
			Rule:    RuleProfitTarget,
			Current: math.Max(0, m.TotalPnL),
			Limit:   *rule.ProfitTarget,
		})
	}
	if rule.MinTradingDays != nil {
		violations = append(violations, Violation{
			Rule:    RuleMinTradingDays,
			Current: float64(m.TradingDays),
			Limit:   float64(*rule.MinTradingDays),
		})
	}
	return violations
}
