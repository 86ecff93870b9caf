package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"options-backtester/internal/config"
	"options-backtester/internal/engine"
	"options-backtester/internal/errors"
	"options-backtester/internal/logging"
	"options-backtester/internal/signals"
	"options-backtester/internal/store"
	"options-backtester/internal/strategies"
)

// runFlags holds the per-invocation parameter overrides.
type runFlags struct {
	csvPath string
	source  string

	dteInterval     int
	maxEntryDTE     int
	exitDTE         int
	otmPctInterval  float64
	maxOTMPct       float64
	minBidAsk       float64
	slippage        string
	fillRatio       float64
	referenceVolume int
	raw             bool

	deltaMin      float64
	deltaMax      float64
	deltaInterval float64

	entryDates []string
	exitDates  []string

	frontDTEMin int
	frontDTEMax int
	backDTEMin  int
	backDTEMax  int
}

// addRunCommands adds the backtest commands.
func addRunCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newRunsCmd(app))
}

func newRunCmd(app *App) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run <strategy>",
		Short: "Backtest a strategy over an option chain",
		Long: `Run a strategy backtest and print profit statistics bucketed by days to
expiration and out-of-the-money percentage.

The strategy name is one of the catalog names shown by 'backtester strategies'.
With --raw, individual trades are printed instead of aggregated buckets.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBacktest(cmd, app, args[0], &flags)
		},
	}
	addParamFlags(cmd, app.Config, &flags)
	return cmd
}

func addParamFlags(cmd *cobra.Command, cfg *config.Config, flags *runFlags) {
	cmd.Flags().StringVar(&flags.csvPath, "data", "", "option chain CSV file")
	cmd.Flags().StringVar(&flags.source, "source", "", "cached quote source name")

	cmd.Flags().IntVar(&flags.dteInterval, "dte-interval", cfg.Backtest.DTEInterval, "DTE bucket width in days")
	cmd.Flags().IntVar(&flags.maxEntryDTE, "max-entry-dte", cfg.Backtest.MaxEntryDTE, "maximum days to expiration at entry")
	cmd.Flags().IntVar(&flags.exitDTE, "exit-dte", cfg.Backtest.ExitDTE, "days to expiration at exit")
	cmd.Flags().Float64Var(&flags.otmPctInterval, "otm-interval", cfg.Backtest.OTMPctInterval, "OTM%% bucket width")
	cmd.Flags().Float64Var(&flags.maxOTMPct, "max-otm", cfg.Backtest.MaxOTMPct, "maximum absolute OTM%% at entry")
	cmd.Flags().Float64Var(&flags.minBidAsk, "min-bid-ask", cfg.Backtest.MinBidAsk, "minimum bid/ask spread at entry")
	cmd.Flags().StringVar(&flags.slippage, "slippage", cfg.Backtest.Slippage, "fill model: mid, spread, or liquidity")
	cmd.Flags().Float64Var(&flags.fillRatio, "fill-ratio", cfg.Backtest.FillRatio, "liquidity model fill ratio (0-1)")
	cmd.Flags().IntVar(&flags.referenceVolume, "reference-volume", cfg.Backtest.ReferenceVolume, "liquidity model reference volume")
	cmd.Flags().BoolVar(&flags.raw, "raw", cfg.Backtest.Raw, "print individual trades instead of buckets")

	cmd.Flags().Float64Var(&flags.deltaMin, "delta-min", 0, "minimum entry delta (requires delta data)")
	cmd.Flags().Float64Var(&flags.deltaMax, "delta-max", 0, "maximum entry delta (requires delta data)")
	cmd.Flags().Float64Var(&flags.deltaInterval, "delta-interval", 0, "delta bucket width (requires delta data)")

	cmd.Flags().StringSliceVar(&flags.entryDates, "entry-dates", nil, "restrict entries to these dates (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&flags.exitDates, "exit-dates", nil, "restrict exits to these dates (YYYY-MM-DD)")

	cmd.Flags().IntVar(&flags.frontDTEMin, "front-dte-min", cfg.Calendar.FrontDTEMin, "calendar front leg minimum entry DTE")
	cmd.Flags().IntVar(&flags.frontDTEMax, "front-dte-max", cfg.Calendar.FrontDTEMax, "calendar front leg maximum entry DTE")
	cmd.Flags().IntVar(&flags.backDTEMin, "back-dte-min", cfg.Calendar.BackDTEMin, "calendar back leg minimum entry DTE")
	cmd.Flags().IntVar(&flags.backDTEMax, "back-dte-max", cfg.Calendar.BackDTEMax, "calendar back leg maximum entry DTE")
}

// buildParams turns flag values into an engine parameter set.
func buildParams(cmd *cobra.Command, strategy string, cfg *config.Config, flags *runFlags) (engine.Params, error) {
	var p engine.Params
	if strategies.IsCalendar(strategy) {
		p = engine.DefaultCalendarParams()
		if !cmd.Flags().Changed("exit-dte") {
			flags.exitDTE = cfg.Calendar.ExitDTE
		}
	} else {
		p = engine.DefaultParams()
	}

	p.DTEInterval = flags.dteInterval
	p.MaxEntryDTE = flags.maxEntryDTE
	p.ExitDTE = flags.exitDTE
	p.OTMPctInterval = flags.otmPctInterval
	p.MaxOTMPct = flags.maxOTMPct
	p.MinBidAsk = flags.minBidAsk
	p.Slippage = engine.SlippageMode(flags.slippage)
	p.FillRatio = flags.fillRatio
	p.ReferenceVolume = flags.referenceVolume
	p.Raw = flags.raw
	p.FrontDTEMin = flags.frontDTEMin
	p.FrontDTEMax = flags.frontDTEMax
	p.BackDTEMin = flags.backDTEMin
	p.BackDTEMax = flags.backDTEMax

	if cmd.Flags().Changed("delta-min") {
		p.DeltaMin = engine.Float64Ptr(flags.deltaMin)
	}
	if cmd.Flags().Changed("delta-max") {
		p.DeltaMax = engine.Float64Ptr(flags.deltaMax)
	}
	if cmd.Flags().Changed("delta-interval") {
		p.DeltaInterval = engine.Float64Ptr(flags.deltaInterval)
	}

	var err error
	if p.EntryDates, err = parseDateSet(flags.entryDates); err != nil {
		return p, errors.NewValidationError("entry_dates", flags.entryDates, err.Error())
	}
	if p.ExitDates, err = parseDateSet(flags.exitDates); err != nil {
		return p, errors.NewValidationError("exit_dates", flags.exitDates, err.Error())
	}
	return p, nil
}

func parseDateSet(raw []string) (*signals.DateSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dates := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", s)
		}
		dates = append(dates, d)
	}
	return signals.NewDateSet(dates), nil
}

func runBacktest(cmd *cobra.Command, app *App, strategy string, flags *runFlags) error {
	output := NewOutput(cmd)
	ctx := logging.WithLogger(context.Background(), app.Logger)

	chain, source, err := loadChain(ctx, app, flags.csvPath, flags.source)
	if err != nil {
		return err
	}

	p, err := buildParams(cmd, strategy, app.Config, flags)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := strategies.Run(ctx, strategy, chain, p)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	logging.LogBacktest(app.Logger, strategy, len(res.Positions), elapsed)

	recordRun(ctx, app, res, source, p, start, elapsed)

	if output.IsJSON() {
		return output.JSON(res)
	}
	if res.Empty() {
		output.Warning("No positions matched the entry and exit filters")
		return nil
	}
	if res.Raw {
		printPositions(output, res)
	} else {
		printBuckets(output, res)
	}
	output.Println()
	output.Dim("%d positions, %s", len(res.Positions), FormatDuration(elapsed))
	return nil
}

// recordRun logs the backtest to the run history. Failures are non-fatal.
func recordRun(ctx context.Context, app *App, res *engine.Result, source string, p engine.Params, start time.Time, elapsed time.Duration) {
	if app.Store == nil {
		return
	}
	var meanPct, winRate float64
	var wins int
	for _, pos := range res.Positions {
		meanPct += pos.PctChange
		if pos.PctChange > 0 {
			wins++
		}
	}
	if n := len(res.Positions); n > 0 {
		meanPct /= float64(n)
		winRate = float64(wins) / float64(n)
	}
	paramsJSON, _ := json.Marshal(p)
	run := &store.Run{
		Strategy:  res.Strategy,
		Source:    source,
		Positions: len(res.Positions),
		MeanPct:   meanPct,
		WinRate:   winRate,
		Params:    string(paramsJSON),
		StartedAt: start,
		Duration:  elapsed,
	}
	if err := app.Store.SaveRun(ctx, run); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to record run")
	}
}

func printBuckets(output *Output, res *engine.Result) {
	output.Bold("%s", res.Strategy)
	output.Println()

	hasDelta := false
	for _, b := range res.Buckets {
		if len(b.DeltaRanges) > 0 {
			hasDelta = true
			break
		}
	}

	headers := []string{"DTE", "OTM%"}
	if hasDelta {
		headers = append(headers, "Delta")
	}
	headers = append(headers, "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max", "Win", "PF")

	table := NewTable(output, headers...)
	for _, b := range res.Buckets {
		row := []string{FormatIntervals(b.DTERanges), FormatIntervals(b.OTMRanges)}
		if hasDelta {
			row = append(row, FormatIntervals(b.DeltaRanges))
		}
		s := b.Stats
		row = append(row,
			fmt.Sprintf("%d", s.Count),
			FormatStat(s.Mean),
			FormatStat(s.Std),
			FormatStat(s.Min),
			FormatStat(s.Q25),
			FormatStat(s.Q50),
			FormatStat(s.Q75),
			FormatStat(s.Max),
			FormatStat(s.WinRate),
			FormatStat(s.ProfitFactor),
		)
		table.AddRow(row...)
	}
	table.Render()
}

func printPositions(output *Output, res *engine.Result) {
	output.Bold("%s (raw trades)", res.Strategy)
	output.Println()

	table := NewTable(output, "Symbol", "Entry", "Exit", "Expiration", "Legs", "Cost", "Proceeds", "Pct")
	for _, pos := range res.Positions {
		legs := make([]string, len(pos.Legs))
		for i, l := range pos.Legs {
			legs[i] = fmt.Sprintf("%s %s %g", l.Side, l.OptionType, l.Strike)
		}
		table.AddRow(
			pos.UnderlyingSymbol,
			FormatDate(pos.EntryDate),
			FormatDate(pos.ExitDate),
			FormatDate(pos.Expiration),
			strings.Join(legs, ", "),
			FormatPrice(pos.TotalEntryCost),
			FormatPrice(pos.TotalExitProceeds),
			output.FormatReturn(pos.PctChange),
		)
	}
	table.Render()
}

func newRunsCmd(app *App) *cobra.Command {
	var strategy string
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent backtest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}

			runs, err := app.Store.GetRuns(context.Background(), strategy, limit)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(runs)
			}
			if len(runs) == 0 {
				output.Dim("No recorded runs")
				return nil
			}

			table := NewTable(output, "ID", "Strategy", "Source", "Positions", "Mean", "Win", "When", "Took")
			for _, r := range runs {
				table.AddRow(
					fmt.Sprintf("%d", r.ID),
					r.Strategy,
					r.Source,
					fmt.Sprintf("%d", r.Positions),
					output.FormatReturn(r.MeanPct),
					fmt.Sprintf("%.0f%%", r.WinRate*100),
					r.StartedAt.Format("2006-01-02 15:04"),
					FormatDuration(r.Duration),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "", "filter by strategy name")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to show")
	return cmd
}
