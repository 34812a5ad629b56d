package analytics

import (
	"fmt"

	"trading-journal/internal/models"
)

// Insight thresholds.
const (
	WinRateGapThreshold       = 10.0
	MistakeRateMultiplier     = 1.5
	PlanAdherenceGapThreshold = 15.0

	ReadinessMinTrades     = 50
	ReadinessMinWinRate    = 50.0
	ReadinessMinAdherence  = 70.0
	ReadinessMinConfidence = 3.0
)

// AccountStats is the per-account aggregate used by the cross-account view.
type AccountStats struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Type             models.AccountType `json:"type"`
	TotalTrades      int                `json:"total_trades"`
	Wins             int                `json:"wins"`
	WinRate          float64            `json:"win_rate"`
	TotalPnL         float64            `json:"total_pnl"`
	AvgPnL           float64            `json:"avg_pnl"`
	AvgRR            float64            `json:"avg_rr"`
	AvgConfidence    *float64           `json:"avg_confidence"`
	FollowedPlanRate *float64           `json:"followed_plan_rate"`
	MistakeCount     int                `json:"mistake_count"`
}

// BuildAccountStats aggregates one account's closed trades together with
// the psychology notes and mistake counts keyed by trade ID.
func BuildAccountStats(account models.Account, trades []models.Trade, notes map[string]models.PsychologyNote, mistakes map[string]int) AccountStats {
	agg := Aggregate(trades)
	stats := AccountStats{
		ID:          account.ID,
		Name:        account.Name,
		Type:        account.Type,
		TotalTrades: agg.TotalTrades,
		Wins:        agg.Wins,
		WinRate:     agg.WinRate,
		TotalPnL:    agg.TotalPnL,
		AvgRR:       agg.AvgRR,
	}
	if agg.TotalTrades > 0 {
		stats.AvgPnL = agg.TotalPnL / float64(agg.TotalTrades)
	}

	var confidences []float64
	var answered, followed int
	for _, t := range trades {
		stats.MistakeCount += mistakes[t.ID]

		note, ok := notes[t.ID]
		if !ok {
			continue
		}
		if note.ConfidenceScore != nil {
			confidences = append(confidences, float64(*note.ConfidenceScore))
		}
		if note.FollowedPlan != nil {
			answered++
			if *note.FollowedPlan {
				followed++
			}
		}
	}

	if len(confidences) > 0 {
		avg := mean(confidences)
		stats.AvgConfidence = &avg
	}
	if answered > 0 {
		rate := float64(followed) / float64(answered) * 100
		stats.FollowedPlanRate = &rate
	}
	return stats
}

// CategoryCohorts groups account stats by account category.
type CategoryCohorts struct {
	Paper    []AccountStats `json:"paper"`
	Personal []AccountStats `json:"personal"`
	PropFirm []AccountStats `json:"prop_firm"`
}

// Cohort returns the accounts of one category.
func (c CategoryCohorts) Cohort(t models.AccountType) []AccountStats {
	switch t {
	case models.AccountPaper:
		return c.Paper
	case models.AccountPersonal:
		return c.Personal
	case models.AccountPropFirm:
		return c.PropFirm
	}
	return nil
}

// GroupByType splits stats into category cohorts, keeping input order.
// Accounts of an unknown category are dropped.
func GroupByType(stats []AccountStats) CategoryCohorts {
	cohorts := CategoryCohorts{
		Paper:    []AccountStats{},
		Personal: []AccountStats{},
		PropFirm: []AccountStats{},
	}
	for _, s := range stats {
		switch s.Type {
		case models.AccountPaper:
			cohorts.Paper = append(cohorts.Paper, s)
		case models.AccountPersonal:
			cohorts.Personal = append(cohorts.Personal, s)
		case models.AccountPropFirm:
			cohorts.PropFirm = append(cohorts.PropFirm, s)
		}
	}
	return cohorts
}

// CohortSummary holds the category-level figures the insight rules compare.
type CohortSummary struct {
	Accounts     int `json:"accounts"`
	TotalTrades  int `json:"total_trades"`
	MistakeCount int `json:"mistake_count"`

	// Unweighted means over accounts.
	AvgWinRate float64 `json:"avg_win_rate"`
	AvgPnL     float64 `json:"avg_pnl"`

	// Mean of the non-null followed-plan rates, 0 when none answered.
	PlanAdherence float64 `json:"plan_adherence"`

	// Mean of the non-null average confidences.
	AvgConfidence *float64 `json:"avg_confidence"`
}

// MistakeRate returns mistakes per trade, 0 for a cohort without trades.
func (c CohortSummary) MistakeRate() float64 {
	if c.TotalTrades == 0 {
		return 0
	}
	return float64(c.MistakeCount) / float64(c.TotalTrades)
}

// Summarize reduces a cohort of accounts to a CohortSummary.
func Summarize(accounts []AccountStats) CohortSummary {
	summary := CohortSummary{Accounts: len(accounts)}
	if len(accounts) == 0 {
		return summary
	}

	winRates := make([]float64, 0, len(accounts))
	avgPnLs := make([]float64, 0, len(accounts))
	var planSum float64
	var planCount int
	var confidences []float64

	for _, a := range accounts {
		summary.TotalTrades += a.TotalTrades
		summary.MistakeCount += a.MistakeCount
		winRates = append(winRates, a.WinRate)
		avgPnLs = append(avgPnLs, a.AvgPnL)
		if a.FollowedPlanRate != nil {
			planSum += *a.FollowedPlanRate
			planCount++
		}
		if a.AvgConfidence != nil {
			confidences = append(confidences, *a.AvgConfidence)
		}
	}

	summary.AvgWinRate = mean(winRates)
	summary.AvgPnL = mean(avgPnLs)
	summary.PlanAdherence = planSum / float64(max(1, planCount))
	if len(confidences) > 0 {
		avg := mean(confidences)
		summary.AvgConfidence = &avg
	}
	return summary
}

// InsightKind identifies an insight rule.
type InsightKind string

const (
	InsightPsychologyGap    InsightKind = "psychology_gap"
	InsightFocusedLive      InsightKind = "focused_live"
	InsightDiscipline       InsightKind = "discipline"
	InsightPlanAdherenceGap InsightKind = "plan_adherence_gap"
)

// Insight is a qualitative finding comparing paper and live trading.
type Insight struct {
	Kind    InsightKind `json:"kind"`
	Message string      `json:"message"`
}

// InsightRule inspects the paper and personal cohorts and reports whether
// its finding applies.
type InsightRule func(paper, personal CohortSummary) (Insight, bool)

// DefaultInsightRules returns the built-in rules in display order.
func DefaultInsightRules() []InsightRule {
	return []InsightRule{
		PsychologyGapRule,
		FocusedLiveRule,
		DisciplineRule,
		PlanAdherenceGapRule,
	}
}

// PsychologyGapRule fires when paper win rate beats live by more than the gap.
func PsychologyGapRule(paper, personal CohortSummary) (Insight, bool) {
	if paper.Accounts == 0 || personal.Accounts == 0 {
		return Insight{}, false
	}
	if paper.AvgWinRate-personal.AvgWinRate <= WinRateGapThreshold {
		return Insight{}, false
	}
	return Insight{
		Kind: InsightPsychologyGap,
		Message: fmt.Sprintf("Your paper trading win rate (%.1f%%) is significantly higher than real accounts (%.1f%%). Psychology may be affecting your real trading.",
			paper.AvgWinRate, personal.AvgWinRate),
	}, true
}

// FocusedLiveRule fires when live win rate beats paper by more than the gap.
func FocusedLiveRule(paper, personal CohortSummary) (Insight, bool) {
	if paper.Accounts == 0 || personal.Accounts == 0 {
		return Insight{}, false
	}
	if personal.AvgWinRate-paper.AvgWinRate <= WinRateGapThreshold {
		return Insight{}, false
	}
	return Insight{
		Kind: InsightFocusedLive,
		Message: fmt.Sprintf("You perform better in real accounts (%.1f%%) than paper (%.1f%%). You may be more focused when real money is at stake.",
			personal.AvgWinRate, paper.AvgWinRate),
	}, true
}

// DisciplineRule fires when the live mistake rate exceeds the paper rate
// by the configured multiple.
func DisciplineRule(paper, personal CohortSummary) (Insight, bool) {
	if paper.TotalTrades == 0 || personal.TotalTrades == 0 {
		return Insight{}, false
	}
	if personal.MistakeRate() <= paper.MistakeRate()*MistakeRateMultiplier {
		return Insight{}, false
	}
	return Insight{
		Kind:    InsightDiscipline,
		Message: "You make more mistakes in real trading. Consider slowing down and following your paper trading discipline.",
	}, true
}

// PlanAdherenceGapRule fires when paper plan adherence beats live by more
// than the gap. Both cohorts need a non-zero adherence.
func PlanAdherenceGapRule(paper, personal CohortSummary) (Insight, bool) {
	if paper.PlanAdherence <= 0 || personal.PlanAdherence <= 0 {
		return Insight{}, false
	}
	if paper.PlanAdherence-personal.PlanAdherence <= PlanAdherenceGapThreshold {
		return Insight{}, false
	}
	return Insight{
		Kind: InsightPlanAdherenceGap,
		Message: fmt.Sprintf("You follow your trading plan %.0f%% of the time in paper trading but only %.0f%% in real trading.",
			paper.PlanAdherence, personal.PlanAdherence),
	}, true
}

// GenerateInsights evaluates every rule and collects the findings in rule
// order.
func GenerateInsights(paper, personal CohortSummary, rules []InsightRule) []Insight {
	insights := []Insight{}
	for _, rule := range rules {
		if insight, ok := rule(paper, personal); ok {
			insights = append(insights, insight)
		}
	}
	return insights
}

// ReadinessSignal is one item of the paper-to-live checklist.
type ReadinessSignal struct {
	Signal string `json:"signal"`
	Met    bool   `json:"met"`
}

// Readiness returns the five-item checklist for the paper cohort, or an
// empty list when there is no paper account.
func Readiness(paper CohortSummary) []ReadinessSignal {
	if paper.Accounts == 0 {
		return []ReadinessSignal{}
	}
	return []ReadinessSignal{
		{Signal: "At least 50 paper trades completed", Met: paper.TotalTrades >= ReadinessMinTrades},
		{Signal: "Paper trading win rate above 50%", Met: paper.AvgWinRate >= ReadinessMinWinRate},
		{Signal: "Positive average P&L per trade", Met: paper.AvgPnL > 0},
		{Signal: "Plan adherence above 70%", Met: paper.PlanAdherence >= ReadinessMinAdherence},
		{Signal: "Average confidence score above 3", Met: paper.AvgConfidence != nil && *paper.AvgConfidence >= ReadinessMinConfidence},
	}
}

// CrossAccountReport is the cross-account comparison view.
type CrossAccountReport struct {
	AccountStats     []AccountStats    `json:"account_stats"`
	ByType           CategoryCohorts   `json:"by_type"`
	Insights         []Insight         `json:"insights"`
	ReadinessSignals []ReadinessSignal `json:"readiness_signals"`
}

// CrossAccount compares accounts across categories. trades should hold the
// closed trades of every account; open trades are ignored.
func CrossAccount(accounts []models.Account, trades []models.Trade, notes []models.PsychologyNote, mistakeLinks []models.MistakeLink) CrossAccountReport {
	byAccount := make(map[string][]models.Trade)
	for _, t := range trades {
		if t.Status != models.TradeClosed {
			continue
		}
		byAccount[t.AccountID] = append(byAccount[t.AccountID], t)
	}

	noteByTrade := make(map[string]models.PsychologyNote, len(notes))
	for _, n := range notes {
		noteByTrade[n.TradeID] = n
	}

	mistakesByTrade := make(map[string]int)
	for _, l := range mistakeLinks {
		mistakesByTrade[l.TradeID]++
	}

	stats := make([]AccountStats, 0, len(accounts))
	for _, a := range accounts {
		stats = append(stats, BuildAccountStats(a, byAccount[a.ID], noteByTrade, mistakesByTrade))
	}

	cohorts := GroupByType(stats)
	paper := Summarize(cohorts.Paper)
	personal := Summarize(cohorts.Personal)

	return CrossAccountReport{
		AccountStats:     stats,
		ByType:           cohorts,
		Insights:         GenerateInsights(paper, personal, DefaultInsightRules()),
		ReadinessSignals: Readiness(paper),
	}
}
