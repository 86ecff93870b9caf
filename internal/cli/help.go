package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// addHelpCommands adds help and documentation commands.
func addHelpCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newExamplesCmd(app))
	rootCmd.AddCommand(newQuickstartCmd(app))
}

func newExamplesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		Long:  "Display examples of common backtesting workflows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Common Workflow Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "First Backtest",
					commands: []string{
						"backtester strategies                         # List available strategies",
						"backtester run long_calls --data spx.csv      # Backtest long calls",
						"backtester run short_put_spread --data spx.csv --raw  # Show individual trades",
					},
				},
				{
					title: "Cache a Chain for Repeated Runs",
					commands: []string{
						"backtester data load spx.csv --source spx     # Load once into sqlite",
						"backtester data info spx                      # Inspect the cache",
						"backtester run iron_condor --source spx       # Run against the cache",
						"backtester runs                               # Compare past runs",
					},
				},
				{
					title: "Tune Entry Windows",
					commands: []string{
						"backtester run short_strangles --source spx --max-entry-dte 60 --exit-dte 14",
						"backtester run short_strangles --source spx --dte-interval 14 --otm-interval 0.1",
						"backtester run short_put_spread --source spx --entry-dates 2018-01-01,2018-02-01",
					},
				},
				{
					title: "Calendars and Diagonals",
					commands: []string{
						"backtester run long_call_calendar --source spx --front-dte-min 20 --front-dte-max 40",
						"backtester run long_put_diagonal --source spx --back-dte-min 50 --back-dte-max 90",
					},
				},
				{
					title: "Slippage Models",
					commands: []string{
						"backtester run long_straddles --source spx --slippage spread   # Worst-case fills",
						"backtester run long_straddles --source spx --slippage liquidity --fill-ratio 0.5",
					},
				},
				{
					title: "Chronological Simulation",
					commands: []string{
						"backtester simulate short_put_spread --source spx --capital 50000",
						"backtester simulate iron_condor --source spx --max-positions 3 --selector highest",
					},
				},
			}

			for _, ex := range examples {
				output.Bold(ex.title)
				for _, c := range ex.commands {
					parts := strings.SplitN(c, "#", 2)
					if len(parts) == 2 {
						output.Printf("  %s %s\n", output.Cyan(strings.TrimSpace(parts[0])), output.DimText("# "+strings.TrimSpace(parts[1])))
					} else {
						output.Printf("  %s\n", output.Cyan(c))
					}
				}
				output.Println()
			}

			return nil
		},
	}
}

func newQuickstartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "New user guide",
		Long:  "Step-by-step guide for new users.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Options Backtester - Quick Start Guide")
			output.Println()

			steps := []struct {
				step  int
				title string
				desc  string
				cmd   string
			}{
				{
					step:  1,
					title: "Prepare Chain Data",
					desc:  "Export end-of-day option chain data to CSV with columns: underlying_symbol, underlying_price, option_type, expiration, quote_date, strike, bid, ask.",
					cmd:   "backtester config path  # Shows config directory",
				},
				{
					step:  2,
					title: "Load the Data",
					desc:  "Cache the CSV in sqlite so repeated runs skip parsing.",
					cmd:   "backtester data load spx.csv --source spx",
				},
				{
					step:  3,
					title: "Pick a Strategy",
					desc:  "Browse the catalog of thirty single and multi-leg strategies.",
					cmd:   "backtester strategies",
				},
				{
					step:  4,
					title: "Run a Backtest",
					desc:  "Aggregate profit statistics by entry DTE and moneyness.",
					cmd:   "backtester run short_put_spread --source spx",
				},
				{
					step:  5,
					title: "Inspect Raw Trades",
					desc:  "See every simulated position behind the statistics.",
					cmd:   "backtester run short_put_spread --source spx --raw",
				},
				{
					step:  6,
					title: "Simulate an Account",
					desc:  "Execute trades chronologically against starting capital.",
					cmd:   "backtester simulate short_put_spread --source spx --capital 100000",
				},
			}

			for _, s := range steps {
				output.Printf("%s Step %d: %s\n", output.Cyan("→"), s.step, output.BoldText(s.title))
				output.Printf("  %s\n", s.desc)
				output.Printf("  %s\n\n", output.DimText(s.cmd))
			}

			output.Bold("Configuration")
			output.Println()
			output.Printf("  %s - data paths, backtest defaults, logging\n", output.Cyan("config.toml"))
			output.Println()

			output.Bold("Getting Help")
			output.Println()
			output.Printf("  %s - Common workflows\n", output.Cyan("backtester examples"))
			output.Printf("  %s - Help for any command\n", output.Cyan("backtester help <command>"))

			return nil
		},
	}
}
