package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"options-backtester/internal/errors"
	"options-backtester/internal/logging"
	"options-backtester/internal/sim"
)

// addSimulateCommands adds the chronological simulation command.
func addSimulateCommands(rootCmd *cobra.Command, app *App) {
	var flags runFlags
	var capital float64
	var quantity, maxPositions, multiplier int
	var selector string

	cmd := &cobra.Command{
		Use:   "simulate <strategy>",
		Short: "Simulate a strategy chronologically with position limits",
		Long: `Simulate executes a strategy's trades in entry-date order against a
starting capital: one candidate is picked per symbol and entry date, overlapping
positions beyond the limit are skipped, and equity compounds from realized P&L.

Selectors: nearest (closest to at-the-money), highest (largest premium),
lowest (smallest premium), first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			strategy := args[0]
			ctx := logging.WithLogger(context.Background(), app.Logger)

			chain, _, err := loadChain(ctx, app, flags.csvPath, flags.source)
			if err != nil {
				return err
			}

			p, err := buildParams(cmd, strategy, app.Config, &flags)
			if err != nil {
				return err
			}

			cfg := sim.DefaultConfig()
			cfg.Capital = capital
			cfg.Quantity = quantity
			cfg.MaxPositions = maxPositions
			cfg.Multiplier = multiplier
			if cfg.Selector, err = parseSelector(selector); err != nil {
				return err
			}

			start := time.Now()
			res, err := sim.Simulate(ctx, chain, strategy, cfg, p)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(res)
			}
			if len(res.TradeLog) == 0 {
				output.Warning("No trades executed")
				return nil
			}
			printTradeLog(output, res)
			output.Println()
			printSummary(output, res.Summary, capital)
			output.Println()
			output.Dim("%d trades, %s", len(res.TradeLog), FormatDuration(time.Since(start)))
			return nil
		},
	}

	addParamFlags(cmd, app.Config, &flags)
	cmd.Flags().Float64Var(&capital, "capital", 100_000, "starting capital")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "contracts per trade")
	cmd.Flags().IntVar(&maxPositions, "max-positions", 1, "maximum concurrent positions")
	cmd.Flags().IntVar(&multiplier, "multiplier", 100, "contract multiplier")
	cmd.Flags().StringVar(&selector, "selector", "nearest", "trade selector: nearest, highest, lowest, first")

	rootCmd.AddCommand(cmd)
}

func parseSelector(name string) (sim.Selector, error) {
	switch name {
	case "nearest":
		return sim.SelectNearest, nil
	case "highest":
		return sim.SelectHighestPremium, nil
	case "lowest":
		return sim.SelectLowestPremium, nil
	case "first":
		return sim.SelectFirst, nil
	default:
		return nil, errors.NewValidationError("selector", name,
			"must be 'nearest', 'highest', 'lowest', or 'first'")
	}
}

func printTradeLog(output *Output, res *sim.Result) {
	output.Bold("%s trade log", res.Strategy)
	output.Println()

	table := NewTable(output, "#", "Symbol", "Entry", "Exit", "Days", "Cost", "Proceeds", "P&L", "Pct", "Equity")
	for _, t := range res.TradeLog {
		table.AddRow(
			fmt.Sprintf("%d", t.TradeID),
			t.UnderlyingSymbol,
			FormatDate(t.EntryDate),
			FormatDate(t.ExitDate),
			fmt.Sprintf("%d", t.DaysHeld),
			FormatPrice(t.EntryCost),
			FormatPrice(t.ExitProceeds),
			output.FormatPnL(t.RealizedPnL),
			output.FormatReturn(t.PctChange),
			FormatCurrency(t.Equity),
		)
	}
	table.Render()
}

func printSummary(output *Output, s sim.Summary, capital float64) {
	output.Bold("Summary")
	output.Printf("  Trades:          %d (%d won, %d lost)\n", s.TotalTrades, s.WinningTrades, s.LosingTrades)
	output.Printf("  Win Rate:        %.1f%%\n", s.WinRate*100)
	output.Printf("  Total P&L:       %s (%s on %s)\n",
		output.FormatPnL(s.TotalPnL), output.FormatReturn(s.TotalReturn), FormatCurrency(capital))
	output.Printf("  Avg P&L:         %s\n", output.FormatPnL(s.AvgPnL))
	output.Printf("  Avg Win / Loss:  %s / %s\n", output.FormatPnL(s.AvgWin), output.FormatPnL(s.AvgLoss))
	output.Printf("  Max Win / Loss:  %s / %s\n", output.FormatPnL(s.MaxWin), output.FormatPnL(s.MaxLoss))
	output.Printf("  Profit Factor:   %s\n", FormatStat(s.ProfitFactor))
	output.Printf("  Max Drawdown:    %.2f%%\n", s.MaxDrawdown*100)
	output.Printf("  Sharpe Ratio:    %.2f\n", s.SharpeRatio)
	output.Printf("  Avg Days Held:   %.1f\n", s.AvgDaysInTrade)
}
