package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/analytics"
	"trading-journal/internal/models"
	"trading-journal/internal/reports"
	"trading-journal/pkg/utils"
)

// reportCurrency labels amounts aggregated across accounts.
const reportCurrency = "USD"

// addReportCommands adds the analytics report commands.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyticsCmd(app))
	rootCmd.AddCommand(newCrossAccountCmd(app))
	rootCmd.AddCommand(newPropRulesCmd(app))
	rootCmd.AddCommand(newDashboardCmd(app))
	rootCmd.AddCommand(newMistakesCmd(app))
	rootCmd.AddCommand(newStrategiesCmd(app))
}

func newAnalyticsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Trade analytics for a slice of the journal",
		Long:  "Win rate, expectancy, profit factor, drawdown and breakdowns for closed trades matching the filters.",
		Example: `  journal analytics
  journal analytics --account acc-1 --asset-type forex
  journal analytics --strategy breakout --from 2024-06-01 --to 2024-06-30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)

			var params reports.FilterParams
			params.Account, _ = cmd.Flags().GetString("account")
			params.AssetType, _ = cmd.Flags().GetString("asset-type")
			params.Strategy, _ = cmd.Flags().GetString("strategy")
			params.From, _ = cmd.Flags().GetString("from")
			params.To, _ = cmd.Flags().GetString("to")

			filter, err := reports.ParseFilter(params, app.Config.Location())
			if err != nil {
				return err
			}

			svc, err := app.Reports()
			if err != nil {
				return err
			}
			report, err := svc.TradeAnalytics(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			renderTradeAnalytics(output, report)
			return nil
		},
	}

	cmd.Flags().String("account", "", "Account ID")
	cmd.Flags().String("asset-type", "", "Asset type (stocks, crypto, forex, commodities, indices)")
	cmd.Flags().String("strategy", "", "Strategy ID")
	cmd.Flags().String("from", "", "Closed on or after (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Closed on or before (YYYY-MM-DD, inclusive)")

	return cmd
}

func renderTradeAnalytics(output *Output, report analytics.Report) {
	s := report.Stats
	output.Bold("Trade Analytics")
	output.Println()

	if s.TotalTrades == 0 {
		output.Info("No closed trades match the filters.")
		return
	}

	output.Printf("  Trades:         %d (%d wins / %d losses)\n", s.TotalTrades, s.Wins, s.Losses)
	output.Printf("  Win Rate:       %s\n", utils.FormatPercent(s.WinRate))
	output.Printf("  Total P&L:      %s\n", output.FormatPnL(s.TotalPnL, reportCurrency))
	output.Printf("  Avg Win:        %s\n", utils.FormatMoney(s.AvgWin, reportCurrency))
	output.Printf("  Avg Loss:       %s\n", utils.FormatMoney(s.AvgLoss, reportCurrency))
	output.Printf("  Expectancy:     %s\n", output.FormatPnL(s.Expectancy, reportCurrency))
	output.Printf("  Profit Factor:  %s\n", utils.FormatRatio(s.ProfitFactor))
	output.Printf("  Avg R:R:        %s\n", FormatRiskReward(s.AvgRR))
	output.Printf("  Max Drawdown:   %s\n", utils.FormatMoney(s.MaxDrawdown, reportCurrency))
	output.Println()

	output.Bold("By Asset Type")
	table := NewTable(output, "Asset Type", "Trades", "Win Rate", "P&L", "Expectancy")
	for _, at := range models.AssetTypes {
		st := report.ByAssetType[at]
		if st.TotalTrades == 0 {
			continue
		}
		table.AddRow(
			TitleCase(string(at)),
			fmt.Sprintf("%d", st.TotalTrades),
			utils.FormatPercent(st.WinRate),
			output.FormatPnL(st.TotalPnL, reportCurrency),
			utils.FormatMoney(st.Expectancy, reportCurrency),
		)
	}
	table.Render()
	output.Println()

	output.Bold("By Direction")
	table = NewTable(output, "Direction", "Trades", "Win Rate", "P&L")
	for _, row := range []struct {
		name  string
		stats analytics.TradeStats
	}{{"Long", report.DirectionStats.Long}, {"Short", report.DirectionStats.Short}} {
		table.AddRow(
			row.name,
			fmt.Sprintf("%d", row.stats.TotalTrades),
			utils.FormatPercent(row.stats.WinRate),
			output.FormatPnL(row.stats.TotalPnL, reportCurrency),
		)
	}
	table.Render()
	output.Println()

	output.Bold("Equity Curve")
	table = NewTable(output, "Date", "P&L", "Cumulative")
	for _, p := range report.PnLOverTime {
		table.AddRow(p.Date, output.FormatPnL(p.PnL, reportCurrency), output.FormatPnL(p.Cumulative, reportCurrency))
	}
	table.Render()
}

func newCrossAccountCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cross-account",
		Short: "Compare paper, personal and prop-firm accounts",
		Long:  "Per-account statistics, paper vs live insights and live-readiness signals.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)
			svc, err := app.Reports()
			if err != nil {
				return err
			}
			report, err := svc.CrossAccount(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			renderCrossAccount(output, report)
			return nil
		},
	}
}

func renderCrossAccount(output *Output, report analytics.CrossAccountReport) {
	output.Bold("Accounts")
	if len(report.AccountStats) == 0 {
		output.Info("No accounts found.")
		return
	}

	table := NewTable(output, "Account", "Type", "Trades", "Win Rate", "P&L", "Avg P&L", "Confidence", "Plan %", "Mistakes")
	for _, s := range report.AccountStats {
		table.AddRow(
			TruncateString(s.Name, 24),
			TitleCase(string(s.Type)),
			fmt.Sprintf("%d", s.TotalTrades),
			utils.FormatPercent(s.WinRate),
			output.FormatPnL(s.TotalPnL, reportCurrency),
			utils.FormatMoney(s.AvgPnL, reportCurrency),
			FormatOptional(s.AvgConfidence),
			FormatOptionalPercent(s.FollowedPlanRate),
			fmt.Sprintf("%d", s.MistakeCount),
		)
	}
	table.Render()
	output.Println()

	output.Bold("Insights")
	if len(report.Insights) == 0 {
		output.Dim("  Not enough paper and live history to compare.")
	}
	for _, in := range report.Insights {
		output.Printf("  • %s\n", in.Message)
	}
	output.Println()

	if len(report.ReadinessSignals) > 0 {
		output.Bold("Live Readiness")
		for _, sig := range report.ReadinessSignals {
			output.Printf("  %s %s\n", output.Check(sig.Met), sig.Signal)
		}
	}
}

func newPropRulesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "prop-rules <account-id>",
		Short:   "Check prop-firm challenge rules",
		Long:    "Evaluate daily loss, drawdown, profit target and trading-day rules for a prop-firm account.",
		Example: `  journal prop-rules ftmo-100k`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)
			svc, err := app.Reports()
			if err != nil {
				return err
			}
			report, err := svc.PropFirm(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			renderPropFirm(output, report)
			return nil
		},
	}
}

func renderPropFirm(output *Output, report analytics.PropFirmReport) {
	cur := report.Account.Currency
	m := report.Metrics

	output.Bold("%s", report.Account.Name)
	if report.Rule != nil {
		output.Printf("  Challenge:     %s (%s to %s)\n", TitleCase(string(report.Rule.Status)),
			FormatOptionalDate(report.Rule.ChallengeStart, time.UTC, output.dateFormat),
			FormatOptionalDate(report.Rule.ChallengeEnd, time.UTC, output.dateFormat))
	}
	output.Printf("  Balance:       %s of %s\n", utils.FormatMoney(report.Account.CurrentBalance, cur), utils.FormatMoney(report.Account.InitialBalance, cur))
	output.Printf("  Today P&L:     %s\n", output.FormatPnL(m.TodayPnL, cur))
	output.Printf("  Total P&L:     %s\n", output.FormatPnL(m.TotalPnL, cur))
	output.Printf("  Max Drawdown:  %s\n", utils.FormatMoney(m.MaxDrawdown, cur))
	output.Printf("  Trading Days:  %d (%d closed trades)\n", m.TradingDays, m.ClosedTrades)
	output.Println()

	if report.Rule == nil {
		output.Info("No rules configured for this account.")
		return
	}

	table := NewTable(output, "Rule", "Current", "Limit", "Status")
	for _, v := range report.Violations {
		current, limit := utils.FormatMoney(v.Current, cur), utils.FormatMoney(v.Limit, cur)
		if v.Rule == analytics.RuleMinTradingDays {
			current, limit = fmt.Sprintf("%.0f", v.Current), fmt.Sprintf("%.0f", v.Limit)
		}
		status := output.Green("OK")
		if v.Breached {
			status = output.Red("BREACHED")
		} else if v.Current < v.Limit && (v.Rule == analytics.RuleProfitTarget || v.Rule == analytics.RuleMinTradingDays) {
			status = "In progress"
		}
		table.AddRow(v.Rule, current, limit, status)
	}
	table.Render()
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Overview of all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)
			svc, err := app.Reports()
			if err != nil {
				return err
			}
			d, err := svc.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(d)
			}
			renderDashboard(output, d)
			return nil
		},
	}
}

func renderDashboard(output *Output, d analytics.Dashboard) {
	s := d.Stats
	output.Bold("Dashboard")
	output.Printf("  Accounts:      %d\n", len(d.Accounts))
	output.Printf("  Trades:        %d (%d wins)\n", s.TotalTrades, s.Wins)
	output.Printf("  Win Rate:      %s\n", utils.FormatPercent(s.WinRate))
	output.Printf("  Total P&L:     %s\n", output.FormatPnL(s.TotalPnL, reportCurrency))
	output.Printf("  Avg R:R:       %s\n", FormatRiskReward(s.AvgRR))
	output.Printf("  Max Drawdown:  %s\n", utils.FormatMoney(s.MaxDrawdown, reportCurrency))
	output.Println()

	output.Bold("Recent Trades")
	if len(d.RecentTrades) == 0 {
		output.Dim("  No trades yet.")
	} else {
		table := NewTable(output, "Opened", "Asset", "Type", "Side", "Status", "P&L")
		for _, t := range d.RecentTrades {
			pnl := "-"
			if t.PnL != nil {
				pnl = output.FormatPnL(*t.PnL, reportCurrency)
			}
			table.AddRow(output.Date(t.OpenedAt), t.Asset, TitleCase(string(t.AssetType)), string(t.Direction), string(t.Status), pnl)
		}
		table.Render()
	}
	output.Println()

	if len(d.Daily) > 0 {
		output.Bold("Daily Performance")
		table := NewTable(output, "Date", "Account", "P&L", "Trades")
		for _, day := range d.Daily {
			table.AddRow(models.DateKey(day.Date), day.AccountID, output.FormatPnL(day.PnL, reportCurrency), fmt.Sprintf("%d", day.TradeCount))
		}
		table.Render()
	}
}

func newMistakesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mistakes",
		Short: "Mistake frequency and cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)
			svc, err := app.Reports()
			if err != nil {
				return err
			}
			rows, err := svc.Mistakes(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(rows)
			}

			output.Bold("Mistakes")
			if len(rows) == 0 {
				output.Info("No mistakes recorded.")
				return nil
			}
			table := NewTable(output, "Mistake", "Count", "Total Loss", "Recent")
			for _, m := range rows {
				recent := ""
				for i, t := range m.RecentTrades {
					if i > 0 {
						recent += ", "
					}
					recent += t.Asset
				}
				table.AddRow(TruncateString(m.Mistake.Name, 28), fmt.Sprintf("%d", m.Count), output.FormatPnL(m.TotalLoss, reportCurrency), TruncateString(recent, 40))
			}
			table.Render()
			return nil
		},
	}
}

func newStrategiesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "Trade counts per strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)
			svc, err := app.Reports()
			if err != nil {
				return err
			}
			rows, err := svc.Strategies(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(rows)
			}

			output.Bold("Strategies")
			if len(rows) == 0 {
				output.Info("No strategies defined.")
				return nil
			}
			table := NewTable(output, "ID", "Strategy", "Trades")
			for _, s := range rows {
				table.AddRow(s.Strategy.ID, TruncateString(s.Strategy.Name, 32), fmt.Sprintf("%d", s.TradeCount))
			}
			table.Render()
			return nil
		},
	}
}
