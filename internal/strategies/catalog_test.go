package strategies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-backtester/internal/engine"
	"options-backtester/internal/errors"
	"options-backtester/internal/options"
)

func TestCatalogNames(t *testing.T) {
	names := Names()
	assert.Len(t, names, 30)
	assert.IsIncreasing(t, names)
}

func TestCatalogLookup(t *testing.T) {
	for _, name := range Names() {
		def, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, def.Name)
		assert.NotEmpty(t, def.Legs, name)
	}

	_, err := Lookup("married_put")
	assert.True(t, errors.Is(err, errors.ErrUnknownStrategy))
}

func TestCatalogLegCounts(t *testing.T) {
	counts := map[string]int{
		"long_calls":             1,
		"short_puts":             1,
		"long_straddles":         2,
		"short_strangles":        2,
		"long_call_spread":       2,
		"covered_call":           2,
		"long_call_butterfly":    3,
		"iron_condor":            4,
		"reverse_iron_butterfly": 4,
		"long_call_calendar":     2,
		"short_put_diagonal":     2,
	}
	for name, want := range counts {
		def, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Len(t, def.Legs, want, name)
	}
}

func TestCatalogButterflyBodies(t *testing.T) {
	// Butterfly bodies carry double quantity.
	for _, name := range []string{"long_call_butterfly", "short_call_butterfly", "long_put_butterfly", "short_put_butterfly"} {
		def, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, 2, def.Legs[1].Quantity, name)
		assert.Equal(t, 1, def.Legs[0].Quantity, name)
		assert.Equal(t, 1, def.Legs[2].Quantity, name)
	}
}

func TestCatalogCalendarFlags(t *testing.T) {
	calendars := []string{
		"long_call_calendar", "short_call_calendar", "long_put_calendar", "short_put_calendar",
		"long_call_diagonal", "short_call_diagonal", "long_put_diagonal", "short_put_diagonal",
	}
	for _, name := range calendars {
		assert.True(t, IsCalendar(name), name)
		def, err := Lookup(name)
		require.NoError(t, err)
		assert.True(t, def.Calendar, name)
	}
	assert.False(t, IsCalendar("long_calls"))
	assert.False(t, IsCalendar("no_such_strategy"))

	// Calendars join legs on strike; diagonals do not.
	for _, name := range calendars[:4] {
		def, _ := Lookup(name)
		assert.True(t, def.JoinOnStrike, name)
	}
	for _, name := range calendars[4:] {
		def, _ := Lookup(name)
		assert.False(t, def.JoinOnStrike, name)
	}
}

func TestRunUnknownStrategy(t *testing.T) {
	chain := options.NewChain(nil, false, false)
	_, err := Run(context.Background(), "condor_of_iron", chain, engine.DefaultParams())
	assert.True(t, errors.Is(err, errors.ErrUnknownStrategy))
}

func TestRunWrapsEngineErrors(t *testing.T) {
	chain := options.NewChain(nil, false, false)
	p := engine.DefaultParams()
	p.DTEInterval = -1

	_, err := Run(context.Background(), "long_calls", chain, p)
	require.Error(t, err)

	var stratErr *errors.StrategyError
	assert.True(t, errors.As(err, &stratErr))
	assert.Equal(t, "long_calls", stratErr.Strategy)
}
