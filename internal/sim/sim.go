// Package sim runs chronological trade simulations on top of the strategy
// engine: it takes a strategy's raw per-trade output, executes the trades in
// entry-date order under capital and position limits, and produces a trade
// log, equity curve and summary metrics.
package sim

import (
	"context"
	"math"
	"sort"
	"time"

	"options-backtester/internal/engine"
	"options-backtester/internal/errors"
	"options-backtester/internal/logging"
	"options-backtester/internal/options"
	"options-backtester/internal/strategies"
)

// Config controls a simulation run.
type Config struct {
	// Capital is the starting account equity.
	Capital float64
	// Quantity is the number of contracts per trade.
	Quantity int
	// MaxPositions caps concurrently open positions. Positions sharing an
	// expiration never overlap regardless of the cap.
	MaxPositions int
	// Multiplier is the contract multiplier (100 for equity options).
	Multiplier int
	// Selector picks one candidate position per symbol and entry date.
	Selector Selector
}

// DefaultConfig returns the standard simulation settings.
func DefaultConfig() Config {
	return Config{
		Capital:      100_000,
		Quantity:     1,
		MaxPositions: 1,
		Multiplier:   100,
		Selector:     SelectNearest,
	}
}

func (c Config) validate() error {
	if c.Capital <= 0 {
		return errors.NewValidationError("capital", c.Capital, "must be positive")
	}
	if c.Quantity <= 0 {
		return errors.NewValidationError("quantity", c.Quantity, "must be positive integer")
	}
	if c.MaxPositions <= 0 {
		return errors.NewValidationError("max_positions", c.MaxPositions, "must be positive integer")
	}
	if c.Multiplier <= 0 {
		return errors.NewValidationError("multiplier", c.Multiplier, "must be positive integer")
	}
	if c.Selector == nil {
		return errors.NewValidationError("selector", nil, "must be set")
	}
	return nil
}

// Selector picks one position from the candidates sharing a symbol and
// entry date.
type Selector func(candidates []engine.Position) engine.Position

// SelectNearest picks the candidate closest to at-the-money on its first leg.
func SelectNearest(candidates []engine.Position) engine.Position {
	best := candidates[0]
	bestDist := math.Abs(best.Legs[0].OTMPctEntry)
	for _, c := range candidates[1:] {
		if d := math.Abs(c.Legs[0].OTMPctEntry); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// SelectHighestPremium picks the candidate with the largest absolute entry
// cost.
func SelectHighestPremium(candidates []engine.Position) engine.Position {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if math.Abs(c.TotalEntryCost) > math.Abs(best.TotalEntryCost) {
			best = c
		}
	}
	return best
}

// SelectLowestPremium picks the candidate with the smallest absolute entry
// cost.
func SelectLowestPremium(candidates []engine.Position) engine.Position {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if math.Abs(c.TotalEntryCost) < math.Abs(best.TotalEntryCost) {
			best = c
		}
	}
	return best
}

// SelectFirst picks the first candidate in engine order.
func SelectFirst(candidates []engine.Position) engine.Position {
	return candidates[0]
}

// Trade is one executed position in the trade log.
type Trade struct {
	TradeID          int
	UnderlyingSymbol string
	EntryDate        time.Time
	ExitDate         time.Time
	Expiration       time.Time
	DaysHeld         int
	EntryCost        float64
	ExitProceeds     float64
	Quantity         int
	Multiplier       int
	DollarCost       float64
	DollarProceeds   float64
	RealizedPnL      float64
	PctChange        float64
	CumulativePnL    float64
	Equity           float64
}

// EquityPoint is the account equity after a trade closes.
type EquityPoint struct {
	Date   time.Time
	Equity float64
}

// Summary holds aggregate performance metrics of a simulation.
type Summary struct {
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64
	TotalPnL       float64
	TotalReturn    float64
	AvgPnL         float64
	AvgWin         float64
	AvgLoss        float64
	MaxWin         float64
	MaxLoss        float64
	ProfitFactor   float64
	MaxDrawdown    float64
	AvgDaysInTrade float64
	SharpeRatio    float64
}

// Result is the output of one simulation.
type Result struct {
	Strategy    string
	TradeLog    []Trade
	EquityCurve []EquityPoint
	Summary     Summary
}

// Simulate backtests the named strategy chronologically: one candidate is
// selected per symbol and entry date, trades execute subject to the position
// cap, and equity compounds from realized P&L. The log truncates if equity
// reaches zero.
func Simulate(ctx context.Context, chain options.Chain, strategy string, cfg Config, p engine.Params) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p.Raw = true
	res, err := strategies.Run(ctx, strategy, chain, p)
	if err != nil {
		return nil, err
	}

	selected := selectPerEntry(res.Positions, cfg.Selector)
	executed := filterOverlapping(selected, cfg.MaxPositions)
	log := buildTradeLog(executed, cfg)

	curve := make([]EquityPoint, len(log))
	for i, t := range log {
		curve[i] = EquityPoint{Date: t.ExitDate, Equity: t.Equity}
	}

	out := &Result{
		Strategy:    strategy,
		TradeLog:    log,
		EquityCurve: curve,
		Summary:     summarize(log, cfg.Capital),
	}
	simLogger := logging.FromContext(ctx)
	simLogger.Info().
		Str("strategy", strategy).
		Int("candidates", len(res.Positions)).
		Int("trades", len(log)).
		Float64("total_pnl", out.Summary.TotalPnL).
		Msg("Simulation completed")
	return out, nil
}

// selectPerEntry keeps one position per (symbol, entry date), chosen by the
// selector, preserving chronological order.
func selectPerEntry(positions []engine.Position, sel Selector) []engine.Position {
	type key struct {
		symbol string
		date   time.Time
	}
	grouped := make(map[key][]engine.Position)
	var order []key
	for _, pos := range positions {
		k := key{symbol: pos.UnderlyingSymbol, date: pos.EntryDate}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], pos)
	}
	sort.Slice(order, func(i, j int) bool {
		if !order[i].date.Equal(order[j].date) {
			return order[i].date.Before(order[j].date)
		}
		return order[i].symbol < order[j].symbol
	})

	out := make([]engine.Position, 0, len(order))
	for _, k := range order {
		out = append(out, sel(grouped[k]))
	}
	return out
}

// filterOverlapping greedily admits trades subject to the concurrent position
// cap. Two open positions never share an expiration.
func filterOverlapping(trades []engine.Position, maxPositions int) []engine.Position {
	if len(trades) == 0 {
		return nil
	}

	var kept []engine.Position
	if maxPositions == 1 {
		var prevExit time.Time
		for _, t := range trades {
			if prevExit.IsZero() || !t.EntryDate.Before(prevExit) {
				kept = append(kept, t)
				prevExit = t.ExitDate
			}
		}
		return kept
	}

	type open struct {
		exit       time.Time
		expiration time.Time
	}
	var opens []open
	for _, t := range trades {
		still := opens[:0]
		for _, o := range opens {
			if o.exit.After(t.EntryDate) {
				still = append(still, o)
			}
		}
		opens = still

		if len(opens) >= maxPositions {
			continue
		}
		dupe := false
		for _, o := range opens {
			if o.expiration.Equal(t.Expiration) {
				dupe = true
				break
			}
		}
		if dupe {
			continue
		}
		kept = append(kept, t)
		opens = append(opens, open{exit: t.ExitDate, expiration: t.Expiration})
	}
	return kept
}

func buildTradeLog(trades []engine.Position, cfg Config) []Trade {
	lot := float64(cfg.Quantity * cfg.Multiplier)
	log := make([]Trade, 0, len(trades))

	var cumulative float64
	for i, pos := range trades {
		realized := (pos.TotalExitProceeds - pos.TotalEntryCost) * lot
		cumulative += realized
		equity := cfg.Capital + cumulative

		log = append(log, Trade{
			TradeID:          i + 1,
			UnderlyingSymbol: pos.UnderlyingSymbol,
			EntryDate:        pos.EntryDate,
			ExitDate:         pos.ExitDate,
			Expiration:       pos.Expiration,
			DaysHeld:         int(pos.ExitDate.Sub(pos.EntryDate).Hours() / 24),
			EntryCost:        pos.TotalEntryCost,
			ExitProceeds:     pos.TotalExitProceeds,
			Quantity:         cfg.Quantity,
			Multiplier:       cfg.Multiplier,
			DollarCost:       math.Abs(pos.TotalEntryCost) * lot,
			DollarProceeds:   pos.TotalExitProceeds * lot,
			RealizedPnL:      realized,
			PctChange:        pos.PctChange,
			CumulativePnL:    cumulative,
			Equity:           equity,
		})
		if equity <= 0 {
			break // account ruined, stop trading
		}
	}
	return log
}

func summarize(log []Trade, capital float64) Summary {
	if len(log) == 0 {
		return Summary{}
	}

	var s Summary
	s.TotalTrades = len(log)

	var totalWins, totalLosses float64
	var totalDays int
	s.MaxWin = math.Inf(-1)
	s.MaxLoss = math.Inf(1)
	for _, t := range log {
		pnl := t.RealizedPnL
		s.TotalPnL += pnl
		totalDays += t.DaysHeld
		if pnl > 0 {
			s.WinningTrades++
			totalWins += pnl
		} else if pnl < 0 {
			s.LosingTrades++
			totalLosses += pnl
		}
		if pnl > s.MaxWin {
			s.MaxWin = pnl
		}
		if pnl < s.MaxLoss {
			s.MaxLoss = pnl
		}
	}

	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	s.TotalReturn = s.TotalPnL / capital
	s.AvgPnL = s.TotalPnL / float64(s.TotalTrades)
	if s.WinningTrades > 0 {
		s.AvgWin = totalWins / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = totalLosses / float64(s.LosingTrades)
	}
	if totalLosses != 0 {
		s.ProfitFactor = math.Abs(totalWins / totalLosses)
	} else if totalWins > 0 {
		s.ProfitFactor = math.Inf(1)
	}
	s.AvgDaysInTrade = float64(totalDays) / float64(s.TotalTrades)
	s.MaxDrawdown = maxDrawdown(log)
	s.SharpeRatio = sharpeRatio(log)
	return s
}

// maxDrawdown is the largest peak-to-trough equity decline, as a fraction of
// the peak.
func maxDrawdown(log []Trade) float64 {
	var maxDD float64
	peak := math.Inf(-1)
	for _, t := range log {
		if t.Equity > peak {
			peak = t.Equity
		}
		if peak > 0 {
			dd := (peak - t.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpeRatio annualizes per-trade returns with the usual 252-day factor.
// Trades rarely close daily, so treat this as a comparative figure rather
// than a true annualized Sharpe.
func sharpeRatio(log []Trade) float64 {
	if len(log) < 2 {
		return 0
	}
	var sum float64
	for _, t := range log {
		sum += t.PctChange
	}
	mean := sum / float64(len(log))

	var ss float64
	for _, t := range log {
		d := t.PctChange - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(log)-1))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(252)
}
