package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"options-backtester/internal/engine"
	"options-backtester/internal/strategies"
)

// addStrategyCommands adds the strategy catalog commands.
func addStrategyCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "strategies",
		Short: "List the strategy catalog",
		Long:  "List every strategy name accepted by 'run' and 'simulate', with its leg structure.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			names := strategies.Names()

			if output.IsJSON() {
				catalog := make([]map[string]interface{}, 0, len(names))
				for _, name := range names {
					def, err := strategies.Lookup(name)
					if err != nil {
						return err
					}
					catalog = append(catalog, map[string]interface{}{
						"name":     name,
						"legs":     legSummary(def),
						"calendar": def.Calendar,
					})
				}
				return output.JSON(catalog)
			}

			table := NewTable(output, "Strategy", "Legs", "Type")
			for _, name := range names {
				def, err := strategies.Lookup(name)
				if err != nil {
					return err
				}
				kind := "same expiration"
				if def.Calendar {
					kind = "calendar"
				}
				table.AddRow(name, legSummary(def), kind)
			}
			table.Render()
			return nil
		},
	})
}

// legSummary renders a definition's legs like "long call, 2x short call".
func legSummary(def engine.Definition) string {
	parts := make([]string, len(def.Legs))
	for i, leg := range def.Legs {
		s := fmt.Sprintf("%s %s", leg.Side, leg.Type)
		if leg.Quantity > 1 {
			s = fmt.Sprintf("%dx %s", leg.Quantity, s)
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}
