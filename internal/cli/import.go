package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"trading-journal/internal/importer"
)

// addImportCommands adds the journal import command.
func addImportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newImportCmd(app))
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a YAML journal",
		Long: `Load accounts, trades, psychology notes, catalogs, daily performance and
prop-firm rules from a YAML document. Records without an id get a ULID.
Existing records with the same id are replaced.`,
		Example: `  journal import journal.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Output(cmd)
			s, err := app.OpenStore()
			if err != nil {
				return err
			}

			res, err := importer.New(s, app.Logger).ImportFile(cmd.Context(), args[0])
			if err != nil {
				output.Error("Import failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(res)
			}
			output.Success("✓ Imported %s", args[0])
			table := NewTable(output, "Records", "Count")
			for _, row := range []struct {
				name string
				n    int
			}{
				{"Accounts", res.Accounts},
				{"Trades", res.Trades},
				{"Psychology notes", res.PsychologyNotes},
				{"Strategies", res.Strategies},
				{"Mistakes", res.Mistakes},
				{"Tags", res.Tags},
				{"Links", res.Links},
				{"Daily performance", res.DailyPerformance},
				{"Prop firm rules", res.PropFirmRules},
			} {
				table.AddRow(row.name, strconv.Itoa(row.n))
			}
			table.Render()
			return nil
		},
	}
}
