package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-backtester/internal/engine"
	"options-backtester/internal/options"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func pos(symbol, entry, exit, exp string, otm, cost, proceeds float64) engine.Position {
	return engine.Position{
		UnderlyingSymbol:  symbol,
		EntryDate:         date(entry),
		ExitDate:          date(exit),
		Expiration:        date(exp),
		Legs:              []engine.LegFill{{OTMPctEntry: otm}},
		TotalEntryCost:    cost,
		TotalExitProceeds: proceeds,
		PctChange:         (proceeds - cost) / math.Abs(cost),
	}
}

func TestSelectors(t *testing.T) {
	candidates := []engine.Position{
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0.10, 1.00, 0),
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", -0.02, 5.00, 0),
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0.25, 0.40, 0),
	}

	assert.InDelta(t, 5.00, SelectNearest(candidates).TotalEntryCost, 1e-9)
	assert.InDelta(t, 5.00, SelectHighestPremium(candidates).TotalEntryCost, 1e-9)
	assert.InDelta(t, 0.40, SelectLowestPremium(candidates).TotalEntryCost, 1e-9)
	assert.InDelta(t, 1.00, SelectFirst(candidates).TotalEntryCost, 1e-9)
}

func TestSelectHighestPremiumUsesAbsoluteCost(t *testing.T) {
	candidates := []engine.Position{
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0.10, 2.00, 0),
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0.10, -3.00, 0),
	}
	assert.InDelta(t, -3.00, SelectHighestPremium(candidates).TotalEntryCost, 1e-9)
}

func TestSelectPerEntryGroupsAndSorts(t *testing.T) {
	positions := []engine.Position{
		pos("SPX", "2018-02-01", "2018-02-28", "2018-02-28", 0.10, 1.00, 0),
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0.10, 1.00, 0),
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", -0.01, 2.00, 0),
		pos("AAPL", "2018-01-01", "2018-01-31", "2018-01-31", 0.05, 3.00, 0),
	}

	out := selectPerEntry(positions, SelectNearest)
	require.Len(t, out, 3)

	// Same date sorts by symbol, dates ascend.
	assert.Equal(t, "AAPL", out[0].UnderlyingSymbol)
	assert.Equal(t, "SPX", out[1].UnderlyingSymbol)
	assert.InDelta(t, 2.00, out[1].TotalEntryCost, 1e-9)
	assert.Equal(t, date("2018-02-01"), out[2].EntryDate)
}

func TestFilterOverlappingSinglePosition(t *testing.T) {
	trades := []engine.Position{
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0, 1, 0),
		pos("SPX", "2018-01-15", "2018-02-15", "2018-02-15", 0, 1, 0), // overlaps first
		pos("SPX", "2018-01-31", "2018-02-28", "2018-02-28", 0, 1, 0), // entry on prior exit, admitted
		pos("SPX", "2018-03-01", "2018-03-30", "2018-03-30", 0, 1, 0),
	}

	kept := filterOverlapping(trades, 1)
	require.Len(t, kept, 3)
	assert.Equal(t, date("2018-01-01"), kept[0].EntryDate)
	assert.Equal(t, date("2018-01-31"), kept[1].EntryDate)
	assert.Equal(t, date("2018-03-01"), kept[2].EntryDate)
}

func TestFilterOverlappingRespectsCap(t *testing.T) {
	trades := []engine.Position{
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0, 1, 0),
		pos("SPX", "2018-01-08", "2018-02-07", "2018-02-07", 0, 1, 0),
		pos("SPX", "2018-01-15", "2018-02-14", "2018-02-14", 0, 1, 0), // third concurrent, dropped
		pos("SPX", "2018-02-01", "2018-02-28", "2018-02-28", 0, 1, 0), // first has closed
	}

	kept := filterOverlapping(trades, 2)
	require.Len(t, kept, 3)
	assert.Equal(t, date("2018-01-01"), kept[0].EntryDate)
	assert.Equal(t, date("2018-01-08"), kept[1].EntryDate)
	assert.Equal(t, date("2018-02-01"), kept[2].EntryDate)
}

func TestFilterOverlappingDedupesExpiration(t *testing.T) {
	trades := []engine.Position{
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0, 1, 0),
		pos("SPX", "2018-01-08", "2018-01-31", "2018-01-31", 0, 1, 0), // same expiration, dropped
		pos("SPX", "2018-01-08", "2018-02-07", "2018-02-07", 0, 1, 0),
	}

	kept := filterOverlapping(trades, 3)
	require.Len(t, kept, 2)
	assert.Equal(t, date("2018-02-07"), kept[1].Expiration)
}

func TestFilterOverlappingEmpty(t *testing.T) {
	assert.Nil(t, filterOverlapping(nil, 1))
	assert.Nil(t, filterOverlapping(nil, 5))
}

func TestBuildTradeLog(t *testing.T) {
	trades := []engine.Position{
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0, 2.00, 3.50),
		pos("SPX", "2018-02-01", "2018-02-28", "2018-02-28", 0, -1.00, -1.50),
	}
	cfg := DefaultConfig()
	cfg.Capital = 10_000

	log := buildTradeLog(trades, cfg)
	require.Len(t, log, 2)

	assert.Equal(t, 1, log[0].TradeID)
	assert.Equal(t, 30, log[0].DaysHeld)
	assert.InDelta(t, 200.0, log[0].DollarCost, 1e-9)
	assert.InDelta(t, 350.0, log[0].DollarProceeds, 1e-9)
	assert.InDelta(t, 150.0, log[0].RealizedPnL, 1e-9)
	assert.InDelta(t, 10_150.0, log[0].Equity, 1e-9)

	// Credit trade: sold at 1.00, bought back at 1.50.
	assert.InDelta(t, -50.0, log[1].RealizedPnL, 1e-9)
	assert.InDelta(t, 100.0, log[1].CumulativePnL, 1e-9)
	assert.InDelta(t, 10_100.0, log[1].Equity, 1e-9)
}

func TestBuildTradeLogStopsAtRuin(t *testing.T) {
	trades := []engine.Position{
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0, 6.00, 0),
		pos("SPX", "2018-02-01", "2018-02-28", "2018-02-28", 0, 1.00, 2.00),
	}
	cfg := DefaultConfig()
	cfg.Capital = 500 // first trade loses 600

	log := buildTradeLog(trades, cfg)
	require.Len(t, log, 1)
	assert.InDelta(t, -100.0, log[0].Equity, 1e-9)
}

func TestSummarize(t *testing.T) {
	trades := []engine.Position{
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0, 2.00, 3.00), // +100
		pos("SPX", "2018-02-01", "2018-02-21", "2018-02-28", 0, 2.00, 1.00), // -100
		pos("SPX", "2018-03-01", "2018-03-31", "2018-03-31", 0, 1.00, 4.00), // +300
	}
	cfg := DefaultConfig()
	log := buildTradeLog(trades, cfg)

	s := summarize(log, cfg.Capital)
	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.WinningTrades)
	assert.Equal(t, 1, s.LosingTrades)
	assert.InDelta(t, 2.0/3.0, s.WinRate, 1e-9)
	assert.InDelta(t, 300.0, s.TotalPnL, 1e-9)
	assert.InDelta(t, 300.0/100_000, s.TotalReturn, 1e-9)
	assert.InDelta(t, 100.0, s.AvgPnL, 1e-9)
	assert.InDelta(t, 200.0, s.AvgWin, 1e-9)
	assert.InDelta(t, -100.0, s.AvgLoss, 1e-9)
	assert.InDelta(t, 300.0, s.MaxWin, 1e-9)
	assert.InDelta(t, -100.0, s.MaxLoss, 1e-9)
	assert.InDelta(t, 4.0, s.ProfitFactor, 1e-9)
	assert.InDelta(t, (30+20+30)/3.0, s.AvgDaysInTrade, 1e-9)

	// Peak after trade 1 is 100_100; trough after trade 2 is 100_000.
	assert.InDelta(t, 100.0/100_100, s.MaxDrawdown, 1e-9)
}

func TestSummarizeNoLosses(t *testing.T) {
	trades := []engine.Position{
		pos("SPX", "2018-01-01", "2018-01-31", "2018-01-31", 0, 1.00, 2.00),
		pos("SPX", "2018-02-01", "2018-02-28", "2018-02-28", 0, 1.00, 3.00),
	}
	s := summarize(buildTradeLog(trades, DefaultConfig()), 100_000)
	assert.True(t, math.IsInf(s.ProfitFactor, 1))
	assert.Zero(t, s.MaxDrawdown)
}

func TestSummarizeEmpty(t *testing.T) {
	s := summarize(nil, 100_000)
	assert.Zero(t, s.TotalTrades)
	assert.Zero(t, s.TotalPnL)
}

func TestSharpeRatio(t *testing.T) {
	// Fewer than two trades has no dispersion to measure.
	one := []Trade{{PctChange: 0.5}}
	assert.Zero(t, sharpeRatio(one))

	flat := []Trade{{PctChange: 0.1}, {PctChange: 0.1}}
	assert.Zero(t, sharpeRatio(flat))

	log := []Trade{{PctChange: 0.2}, {PctChange: -0.1}, {PctChange: 0.2}}
	mean := 0.3 / 3
	std := math.Sqrt((2*math.Pow(0.2-mean, 2) + math.Pow(-0.1-mean, 2)) / 2)
	assert.InDelta(t, mean/std*math.Sqrt(252), sharpeRatio(log), 1e-9)
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Capital = 0 }},
		{"negative quantity", func(c *Config) { c.Quantity = -1 }},
		{"zero max positions", func(c *Config) { c.MaxPositions = 0 }},
		{"zero multiplier", func(c *Config) { c.Multiplier = 0 }},
		{"nil selector", func(c *Config) { c.Selector = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			_, err := Simulate(context.Background(), options.Chain{}, "long_calls", cfg, engine.DefaultParams())
			assert.Error(t, err)
		})
	}
}

func TestSimulateEndToEnd(t *testing.T) {
	entry := options.Quote{
		UnderlyingSymbol: "SPX",
		UnderlyingPrice:  212,
		OptionType:       options.Call,
		Expiration:       date("2018-01-31"),
		QuoteDate:        date("2018-01-01"),
		Strike:           210,
		Bid:              5.50,
		Ask:              5.60,
	}
	exit := entry
	exit.QuoteDate = date("2018-01-31")
	exit.UnderlyingPrice = 213
	exit.Bid, exit.Ask = 3.00, 3.00
	chain := options.NewChain([]options.Quote{entry, exit}, false, false)

	res, err := Simulate(context.Background(), chain, "long_calls", DefaultConfig(), engine.DefaultParams())
	require.NoError(t, err)

	require.Len(t, res.TradeLog, 1)
	tr := res.TradeLog[0]
	assert.Equal(t, "long_calls", res.Strategy)
	assert.InDelta(t, 5.55, tr.EntryCost, 1e-9)
	assert.InDelta(t, 3.00, tr.ExitProceeds, 1e-9)
	assert.InDelta(t, -255.0, tr.RealizedPnL, 1e-9)
	assert.InDelta(t, 99_745.0, tr.Equity, 1e-9)

	require.Len(t, res.EquityCurve, 1)
	assert.Equal(t, date("2018-01-31"), res.EquityCurve[0].Date)
	assert.InDelta(t, 99_745.0, res.EquityCurve[0].Equity, 1e-9)

	assert.Equal(t, 1, res.Summary.TotalTrades)
	assert.InDelta(t, -255.0, res.Summary.TotalPnL, 1e-9)
	assert.Zero(t, res.Summary.WinRate)
}

func TestSimulateUnknownStrategy(t *testing.T) {
	_, err := Simulate(context.Background(), options.Chain{}, "married_put", DefaultConfig(), engine.DefaultParams())
	assert.Error(t, err)
}
