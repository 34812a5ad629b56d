package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trading-journal/internal/config"
	"trading-journal/internal/logging"
	"trading-journal/internal/reports"
	"trading-journal/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := &App{Logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal performance analytics",
		Long: `Trading journal analytics over paper, personal and prop-firm accounts.

Computes win rate, expectancy, profit factor and drawdown for any slice of
your journal, compares paper against live trading and checks prop-firm
challenge rules.

Use 'journal import <file>' to load a YAML journal first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			app.Config = cfg
			app.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trading-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addImportCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addServeCommands(rootCmd, app)

	return rootCmd
}

// OpenStore opens the SQLite store once.
func (a *App) OpenStore() (store.DataStore, error) {
	if a.Store != nil {
		return a.Store, nil
	}
	s, err := store.NewSQLiteStore(a.Config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", a.Config.Database.Path, err)
	}
	a.Logger.Debug().Str("path", a.Config.Database.Path).Msg("SQLite store initialized")
	a.Store = s
	return s, nil
}

// Reports returns a report service over the store.
func (a *App) Reports() (*reports.Service, error) {
	s, err := a.OpenStore()
	if err != nil {
		return nil, err
	}
	return reports.NewService(s, a.Logger, a.ReportOptions()), nil
}

// ReportOptions maps the analytics config onto report options.
func (a *App) ReportOptions() reports.Options {
	return reports.Options{
		Location:           a.Config.Location(),
		DashboardDays:      a.Config.Analytics.DashboardDays,
		RecentTradesLimit:  a.Config.Analytics.RecentTradesLimit,
		MistakeRecentLimit: a.Config.Analytics.MistakeRecentLimit,
	}
}

// Output creates an Output honoring the UI config.
func (a *App) Output(cmd *cobra.Command) *Output {
	o := NewOutput(cmd)
	if a.Config != nil {
		o.colorEnabled = o.colorEnabled && a.Config.UI.ColorEnabled
		o.location = a.Config.Location()
		if a.Config.UI.DateFormat != "" {
			o.dateFormat = a.Config.UI.DateFormat
		}
	}
	return o
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Trading Journal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)
			path := config.TemplatePath(app.Config.Dir)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Database")
	output.Printf("  Path:              %s\n", cfg.Database.Path)
	output.Println()

	output.Bold("Analytics")
	output.Printf("  Timezone:          %s\n", cfg.Analytics.Timezone)
	output.Printf("  Dashboard Days:    %d\n", cfg.Analytics.DashboardDays)
	output.Printf("  Recent Trades:     %d\n", cfg.Analytics.RecentTradesLimit)
	output.Printf("  Mistake Trades:    %d\n", cfg.Analytics.MistakeRecentLimit)
	output.Println()

	output.Bold("Server")
	output.Printf("  HTTP Address:      %s\n", cfg.Server.HTTPAddr)
	output.Printf("  Shutdown Timeout:  %s\n", cfg.Server.ShutdownTimeout)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:             %s\n", cfg.Logging.Level)
	output.Printf("  File:              %v (%s)\n", cfg.Logging.File, cfg.Logging.FilePath)
}
