package cli

import (
	"github.com/spf13/cobra"

	"trading-journal/internal/api"
)

// addServeCommands adds the HTTP API command.
func addServeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newServeCmd(app))
}

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analytics over HTTP",
		Long:  "Start the JSON API. Stops gracefully on SIGINT or SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.Reports()
			if err != nil {
				return err
			}

			cfg := api.ServerConfig{
				Addr:            app.Config.Server.HTTPAddr,
				ReadTimeout:     app.Config.Server.ReadTimeout,
				WriteTimeout:    app.Config.Server.WriteTimeout,
				ShutdownTimeout: app.Config.Server.ShutdownTimeout,
				Location:        app.Config.Location(),
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}
			cfg.Debug, _ = cmd.Flags().GetBool("debug")

			engine := api.NewEngine(svc, cfg, app.Logger)
			return api.Serve(cmd.Context(), engine, cfg, app.Logger)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from server.http_addr)")
	return cmd
}
