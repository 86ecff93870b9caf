package cli

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"options-backtester/internal/config"
	"options-backtester/internal/datafeed"
	"options-backtester/internal/errors"
	"options-backtester/internal/logging"
	"options-backtester/internal/options"
)

// addDataCommands adds option chain data commands.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Option chain data management",
		Long:  "Load option chain CSV files and manage the quote cache.",
	}

	cmd.AddCommand(newDataLoadCmd(app))
	cmd.AddCommand(newDataInfoCmd(app))
	rootCmd.AddCommand(cmd)
}

func newDataLoadCmd(app *App) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "load <csv-file>",
		Short: "Load an option chain CSV into the quote cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}

			path := args[0]
			if source == "" {
				source = sourceName(path)
			}

			start := time.Now()
			chain, err := datafeed.LoadCSV(path, dataOptions(app.Config))
			if err != nil {
				return err
			}
			logging.LogDataLoad(app.Logger, path, chain.Len(), time.Since(start))

			if err := app.Store.SaveQuotes(context.Background(), source, chain); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"source": source,
					"rows":   chain.Len(),
				})
			}
			output.Success("✓ Loaded %d quotes into cache as %q", chain.Len(), source)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "cache source name (default: file name)")
	return cmd
}

func newDataInfoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info <source>",
		Short: "Show cached quote data for a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}

			source := args[0]
			chain, err := app.Store.LoadQuotes(context.Background(), source)
			if err != nil {
				return err
			}

			dates := chain.QuoteDates()
			exps := chain.Expirations()
			info := map[string]interface{}{
				"source":      source,
				"rows":        chain.Len(),
				"quote_dates": len(dates),
				"expirations": len(exps),
				"has_delta":   chain.HasDelta,
				"has_volume":  chain.HasVolume,
			}
			if output.IsJSON() {
				return output.JSON(info)
			}

			output.Bold("Source: %s", source)
			output.Printf("  Rows:        %d\n", chain.Len())
			if len(dates) > 0 {
				output.Printf("  Quote dates: %d (%s to %s)\n", len(dates),
					FormatDate(dates[0]), FormatDate(dates[len(dates)-1]))
			}
			if len(exps) > 0 {
				output.Printf("  Expirations: %d (%s to %s)\n", len(exps),
					FormatDate(exps[0]), FormatDate(exps[len(exps)-1]))
			}
			output.Printf("  Has delta:   %v\n", chain.HasDelta)
			output.Printf("  Has volume:  %v\n", chain.HasVolume)
			return nil
		},
	}
}

// sourceName derives a cache source name from a file path.
func sourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// dataOptions builds CSV load options from the data config. The configured
// window dates are "2006-01-02" strings; empty or malformed values leave the
// window open.
func dataOptions(cfg *config.Config) datafeed.Options {
	opts := datafeed.Options{
		HasDelta:  cfg.Data.HasDelta,
		HasVolume: cfg.Data.HasVolume,
	}
	if d, err := time.Parse("2006-01-02", cfg.Data.StartDate); err == nil {
		opts.StartDate = d
	}
	if d, err := time.Parse("2006-01-02", cfg.Data.EndDate); err == nil {
		opts.EndDate = d
	}
	return opts
}

// loadChain resolves the option chain for a backtest: an explicit CSV path
// wins, then a cached source, then the configured default CSV.
func loadChain(ctx context.Context, app *App, csvPath, source string) (options.Chain, string, error) {
	if csvPath != "" {
		chain, err := datafeed.LoadCSV(csvPath, dataOptions(app.Config))
		return chain, sourceName(csvPath), err
	}

	if source != "" {
		if app.Store == nil {
			return options.Chain{}, source, errors.ErrDatabaseError
		}
		chain, err := app.Store.LoadQuotes(ctx, source)
		return chain, source, err
	}

	if app.Config.Data.CSVPath == "" {
		return options.Chain{}, "", errors.NewDataError("chain", "",
			"no data: pass --data, --source, or set data.csv_path in config", errors.ErrDataNotFound)
	}
	chain, err := datafeed.LoadCSV(app.Config.Data.CSVPath, dataOptions(app.Config))
	return chain, sourceName(app.Config.Data.CSVPath), err
}
