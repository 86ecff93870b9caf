package strategies

import (
	"context"
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

// fixture builds a one-cycle chain: entry quotes on 2018-01-01 (30 DTE,
// underlying 212) and expiration quotes on 2018-01-31 at intrinsic value
// (underlying 213). Strikes are selected per test so each strategy joins to
// exactly one position.
type fixtureQuote struct {
	typ    options.OptionType
	strike float64
}

var entryMids = map[fixtureQuote]float64{
	{options.Call, 205}: 9.05,
	{options.Call, 210}: 5.55,
	{options.Call, 215}: 2.85,
	{options.Call, 220}: 1.25,
	{options.Put, 205}:  1.15,
	{options.Put, 210}:  2.55,
	{options.Put, 215}:  5.05,
	{options.Put, 220}:  8.55,
}

func intrinsic(typ options.OptionType, strike, underlying float64) float64 {
	var v float64
	if typ == options.Call {
		v = underlying - strike
	} else {
		v = strike - underlying
	}
	if v < 0 {
		v = 0
	}
	return v
}

func fixture(quotes ...fixtureQuote) options.Chain {
	const exitUnderlying = 213
	var rows []options.Quote
	for _, fq := range quotes {
		mid := entryMids[fq]
		rows = append(rows, options.Quote{
			UnderlyingSymbol: "SPX",
			UnderlyingPrice:  212,
			OptionType:       fq.typ,
			Expiration:       date("2018-01-31"),
			QuoteDate:        date("2018-01-01"),
			Strike:           fq.strike,
			Bid:              mid - 0.05,
			Ask:              mid + 0.05,
		})
		settle := intrinsic(fq.typ, fq.strike, exitUnderlying)
		rows = append(rows, options.Quote{
			UnderlyingSymbol: "SPX",
			UnderlyingPrice:  exitUnderlying,
			OptionType:       fq.typ,
			Expiration:       date("2018-01-31"),
			QuoteDate:        date("2018-01-31"),
			Strike:           fq.strike,
			Bid:              settle,
			Ask:              settle,
		})
	}
	return options.NewChain(rows, false, false)
}

func runRaw(t *testing.T, name string, chain options.Chain) engine.Position {
	t.Helper()
	p := engine.DefaultParams()
	if IsCalendar(name) {
		p = engine.DefaultCalendarParams()
	}
	p.Raw = true

	res, err := Run(context.Background(), name, chain, p)
	require.NoError(t, err)
	require.Len(t, res.Positions, 1, "expected exactly one %s position", name)
	return res.Positions[0]
}

func TestLongCallsPnL(t *testing.T) {
	pos := runRaw(t, "long_calls", fixture(fixtureQuote{options.Call, 210}))
	assert.InDelta(t, 5.55, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 3.00, pos.TotalExitProceeds, 1e-9)
	assert.InDelta(t, -0.46, pos.PctChange, 1e-9)
}

func TestShortPutsPnL(t *testing.T) {
	pos := runRaw(t, "short_puts", fixture(fixtureQuote{options.Put, 210}))
	assert.InDelta(t, -2.55, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 0.0, pos.TotalExitProceeds, 1e-9)
	assert.InDelta(t, 1.00, pos.PctChange, 1e-9)
}

func TestLongStraddlesPnL(t *testing.T) {
	pos := runRaw(t, "long_straddles", fixture(
		fixtureQuote{options.Put, 210}, fixtureQuote{options.Call, 210},
	))
	assert.InDelta(t, 8.10, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 3.00, pos.TotalExitProceeds, 1e-9)
	assert.InDelta(t, -0.63, pos.PctChange, 1e-9)
}

func TestShortStranglesPnL(t *testing.T) {
	pos := runRaw(t, "short_strangles", fixture(
		fixtureQuote{options.Put, 205}, fixtureQuote{options.Call, 215},
	))
	assert.InDelta(t, -4.00, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 0.0, pos.TotalExitProceeds, 1e-9)
	assert.InDelta(t, 1.00, pos.PctChange, 1e-9)
}

func TestVerticalSpreadsPnL(t *testing.T) {
	calls := fixture(fixtureQuote{options.Call, 210}, fixtureQuote{options.Call, 215})
	puts := fixture(fixtureQuote{options.Put, 210}, fixtureQuote{options.Put, 215})

	pos := runRaw(t, "long_call_spread", calls)
	assert.InDelta(t, 2.70, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 0.11, pos.PctChange, 1e-9)

	pos = runRaw(t, "short_call_spread", calls)
	assert.InDelta(t, -2.70, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, -0.11, pos.PctChange, 1e-9)

	pos = runRaw(t, "long_put_spread", puts)
	assert.InDelta(t, 2.50, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, -0.20, pos.PctChange, 1e-9)

	pos = runRaw(t, "short_put_spread", puts)
	assert.InDelta(t, -2.50, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 0.20, pos.PctChange, 1e-9)
}

func TestLongCallButterflyPnL(t *testing.T) {
	pos := runRaw(t, "long_call_butterfly", fixture(
		fixtureQuote{options.Call, 205}, fixtureQuote{options.Call, 210}, fixtureQuote{options.Call, 215},
	))
	// 9.05 - 2*5.55 + 2.85 at entry, 8 - 2*3 + 0 at exit.
	assert.InDelta(t, 0.80, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 2.00, pos.TotalExitProceeds, 1e-9)
	assert.InDelta(t, 1.50, pos.PctChange, 1e-9)
}

func TestIronCondorPnL(t *testing.T) {
	pos := runRaw(t, "iron_condor", fixture(
		fixtureQuote{options.Put, 205}, fixtureQuote{options.Put, 210},
		fixtureQuote{options.Call, 215}, fixtureQuote{options.Call, 220},
	))
	assert.InDelta(t, -3.00, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 0.0, pos.TotalExitProceeds, 1e-9)
	assert.InDelta(t, 1.00, pos.PctChange, 1e-9)
}

func TestIronButterflyPnL(t *testing.T) {
	pos := runRaw(t, "iron_butterfly", fixture(
		fixtureQuote{options.Put, 205}, fixtureQuote{options.Put, 210},
		fixtureQuote{options.Call, 210}, fixtureQuote{options.Call, 215},
	))
	assert.InDelta(t, -4.10, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, -3.00, pos.TotalExitProceeds, 1e-9)
	assert.InDelta(t, 0.27, pos.PctChange, 1e-9)
}

func TestCoveredPositionsPnL(t *testing.T) {
	pos := runRaw(t, "covered_call", fixture(
		fixtureQuote{options.Call, 210}, fixtureQuote{options.Call, 215},
	))
	assert.InDelta(t, 2.70, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 0.11, pos.PctChange, 1e-9)

	pos = runRaw(t, "protective_put", fixture(
		fixtureQuote{options.Call, 210}, fixtureQuote{options.Put, 215},
	))
	assert.InDelta(t, 10.60, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 5.00, pos.TotalExitProceeds, 1e-9)
	assert.InDelta(t, -0.53, pos.PctChange, 1e-9)
}

// calendarFixture quotes one call contract in two expiration cycles: the
// front cycle enters at 30 DTE and exits at 7 DTE (2018-01-24), the back
// cycle enters at 60 DTE and is marked on the front's exit date.
func calendarFixture(typ options.OptionType) options.Chain {
	mk := func(exp, qd string, underlying, mid float64) options.Quote {
		return options.Quote{
			UnderlyingSymbol: "SPX",
			UnderlyingPrice:  underlying,
			OptionType:       typ,
			Expiration:       date(exp),
			QuoteDate:        date(qd),
			Strike:           210,
			Bid:              mid - 0.05,
			Ask:              mid + 0.05,
		}
	}
	return options.NewChain([]options.Quote{
		mk("2018-01-31", "2018-01-01", 212, 5.55), // front entry
		mk("2018-01-31", "2018-01-24", 211, 2.05), // front exit
		mk("2018-03-02", "2018-01-01", 212, 8.05), // back entry
		mk("2018-03-02", "2018-01-24", 211, 6.05), // back marked on front exit
	}, false, false)
}

func TestLongCallCalendarPnL(t *testing.T) {
	pos := runRaw(t, "long_call_calendar", calendarFixture(options.Call))

	// Short the front at 5.55, long the back at 8.05; unwound at 2.05/6.05.
	assert.InDelta(t, 2.50, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, 4.00, pos.TotalExitProceeds, 1e-9)
	assert.InDelta(t, 0.60, pos.PctChange, 1e-9)

	require.Len(t, pos.Legs, 2)
	assert.Equal(t, date("2018-01-31"), pos.Legs[0].Expiration)
	assert.Equal(t, date("2018-03-02"), pos.Legs[1].Expiration)
	assert.Equal(t, date("2018-01-24"), pos.ExitDate)
}

func TestShortPutCalendarPnL(t *testing.T) {
	pos := runRaw(t, "short_put_calendar", calendarFixture(options.Put))

	// Long the front, short the back: the mirror of the long calendar.
	assert.InDelta(t, -2.50, pos.TotalEntryCost, 1e-9)
	assert.InDelta(t, -4.00, pos.TotalExitProceeds, 1e-9)
	assert.InDelta(t, -0.60, pos.PctChange, 1e-9)
}

func TestDiagonalAllowsDifferentStrikes(t *testing.T) {
	chain := calendarFixture(options.Call)
	// Shift the back cycle's strike so a strike join would find nothing.
	shifted := chain.Filter(func(q options.Quote) bool { return true })
	for i := range shifted.Quotes {
		if shifted.Quotes[i].Expiration.Equal(date("2018-03-02")) {
			shifted.Quotes[i].Strike = 215
		}
	}

	p := engine.DefaultCalendarParams()
	p.Raw = true

	res, err := Run(context.Background(), "long_call_calendar", shifted, p)
	require.NoError(t, err)
	assert.Empty(t, res.Positions)

	res, err = Run(context.Background(), "long_call_diagonal", shifted, p)
	require.NoError(t, err)
	assert.Len(t, res.Positions, 1)
}

func TestWrapperFunctions(t *testing.T) {
	res, err := LongCalls(context.Background(), fixture(fixtureQuote{options.Call, 210}), engine.DefaultParams())
	require.NoError(t, err)
	require.Len(t, res.Buckets, 1)
	assert.Equal(t, "long_calls", res.Strategy)
}
