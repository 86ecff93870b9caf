// Package strategies exposes the named options strategies as a table-driven
// catalog over the execution engine. Every strategy is a fixed composition
// of leg definitions, a join mode and a strike/expiration rule.
package strategies

import (
	"context"
	"sort"

	"options-backtester/internal/engine"
	"options-backtester/internal/errors"
	"options-backtester/internal/options"
)

// long/short leg shorthands keep the catalog table readable.
func long(t options.OptionType, qty int) engine.LegDef {
	return engine.LegDef{Side: engine.Long, Type: t, Quantity: qty}
}

func short(t options.OptionType, qty int) engine.LegDef {
	return engine.LegDef{Side: engine.Short, Type: t, Quantity: qty}
}

// catalog maps every strategy name to its declarative definition. The leg
// order is significant: rules constrain strikes in leg order (ascending for
// spreads, wings-out for butterflies) and calendars list front before back.
var catalog = map[string]engine.Definition{
	// Singles
	"long_calls":  {Legs: []engine.LegDef{long(options.Call, 1)}},
	"long_puts":   {Legs: []engine.LegDef{long(options.Put, 1)}},
	"short_calls": {Legs: []engine.LegDef{short(options.Call, 1)}},
	"short_puts":  {Legs: []engine.LegDef{short(options.Put, 1)}},

	// Straddles: put and call at the same strike.
	"long_straddles":  {Legs: []engine.LegDef{long(options.Put, 1), long(options.Call, 1)}, JoinOnStrike: true},
	"short_straddles": {Legs: []engine.LegDef{short(options.Put, 1), short(options.Call, 1)}, JoinOnStrike: true},

	// Strangles: put below call.
	"long_strangles":  {Legs: []engine.LegDef{long(options.Put, 1), long(options.Call, 1)}, Rule: engine.RuleAscendingStrikes},
	"short_strangles": {Legs: []engine.LegDef{short(options.Put, 1), short(options.Call, 1)}, Rule: engine.RuleAscendingStrikes},

	// Vertical spreads: lower strike leg listed first.
	"long_call_spread":  {Legs: []engine.LegDef{long(options.Call, 1), short(options.Call, 1)}, Rule: engine.RuleAscendingStrikes},
	"short_call_spread": {Legs: []engine.LegDef{short(options.Call, 1), long(options.Call, 1)}, Rule: engine.RuleAscendingStrikes},
	"long_put_spread":   {Legs: []engine.LegDef{short(options.Put, 1), long(options.Put, 1)}, Rule: engine.RuleAscendingStrikes},
	"short_put_spread":  {Legs: []engine.LegDef{long(options.Put, 1), short(options.Put, 1)}, Rule: engine.RuleAscendingStrikes},

	// Butterflies: 1-2-1 with equal wing widths.
	"long_call_butterfly":  {Legs: []engine.LegDef{long(options.Call, 1), short(options.Call, 2), long(options.Call, 1)}, Rule: engine.RuleButterflyStrikes},
	"short_call_butterfly": {Legs: []engine.LegDef{short(options.Call, 1), long(options.Call, 2), short(options.Call, 1)}, Rule: engine.RuleButterflyStrikes},
	"long_put_butterfly":   {Legs: []engine.LegDef{long(options.Put, 1), short(options.Put, 2), long(options.Put, 1)}, Rule: engine.RuleButterflyStrikes},
	"short_put_butterfly":  {Legs: []engine.LegDef{short(options.Put, 1), long(options.Put, 2), short(options.Put, 1)}, Rule: engine.RuleButterflyStrikes},

	// Iron condors and butterflies: put wing, short puts/calls, call wing.
	"iron_condor":           {Legs: []engine.LegDef{long(options.Put, 1), short(options.Put, 1), short(options.Call, 1), long(options.Call, 1)}, Rule: engine.RuleIronCondorStrikes},
	"reverse_iron_condor":   {Legs: []engine.LegDef{short(options.Put, 1), long(options.Put, 1), long(options.Call, 1), short(options.Call, 1)}, Rule: engine.RuleIronCondorStrikes},
	"iron_butterfly":        {Legs: []engine.LegDef{long(options.Put, 1), short(options.Put, 1), short(options.Call, 1), long(options.Call, 1)}, Rule: engine.RuleIronButterflyStrikes},
	"reverse_iron_butterfly": {Legs: []engine.LegDef{short(options.Put, 1), long(options.Put, 1), long(options.Call, 1), short(options.Call, 1)}, Rule: engine.RuleIronButterflyStrikes},

	// Covered positions: a deep ITM long call stands in for the stock.
	"covered_call":   {Legs: []engine.LegDef{long(options.Call, 1), short(options.Call, 1)}, Rule: engine.RuleAscendingStrikes},
	"protective_put": {Legs: []engine.LegDef{long(options.Call, 1), long(options.Put, 1)}, Rule: engine.RuleAscendingStrikes},

	// Calendars: front expiration leg first, same strike across legs.
	"long_call_calendar":  {Legs: []engine.LegDef{short(options.Call, 1), long(options.Call, 1)}, JoinOnStrike: true, Calendar: true, Rule: engine.RuleExpirationOrdering},
	"short_call_calendar": {Legs: []engine.LegDef{long(options.Call, 1), short(options.Call, 1)}, JoinOnStrike: true, Calendar: true, Rule: engine.RuleExpirationOrdering},
	"long_put_calendar":   {Legs: []engine.LegDef{short(options.Put, 1), long(options.Put, 1)}, JoinOnStrike: true, Calendar: true, Rule: engine.RuleExpirationOrdering},
	"short_put_calendar":  {Legs: []engine.LegDef{long(options.Put, 1), short(options.Put, 1)}, JoinOnStrike: true, Calendar: true, Rule: engine.RuleExpirationOrdering},

	// Diagonals: calendars whose strikes may differ.
	"long_call_diagonal":  {Legs: []engine.LegDef{short(options.Call, 1), long(options.Call, 1)}, Calendar: true, Rule: engine.RuleExpirationOrdering},
	"short_call_diagonal": {Legs: []engine.LegDef{long(options.Call, 1), short(options.Call, 1)}, Calendar: true, Rule: engine.RuleExpirationOrdering},
	"long_put_diagonal":   {Legs: []engine.LegDef{short(options.Put, 1), long(options.Put, 1)}, Calendar: true, Rule: engine.RuleExpirationOrdering},
	"short_put_diagonal":  {Legs: []engine.LegDef{long(options.Put, 1), short(options.Put, 1)}, Calendar: true, Rule: engine.RuleExpirationOrdering},
}

// Names returns every catalog strategy name in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the definition registered under name.
func Lookup(name string) (engine.Definition, error) {
	def, ok := catalog[name]
	if !ok {
		return engine.Definition{}, errors.Wrapf(errors.ErrUnknownStrategy, "strategy %q", name)
	}
	def.Name = name
	return def, nil
}

// IsCalendar reports whether the named strategy uses calendar semantics and
// therefore the calendar parameter defaults.
func IsCalendar(name string) bool {
	def, ok := catalog[name]
	return ok && def.Calendar
}

// Run executes the named strategy over the chain.
func Run(ctx context.Context, name string, chain options.Chain, p engine.Params) (*engine.Result, error) {
	def, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	res, err := engine.Run(ctx, chain, def, p)
	if err != nil {
		return nil, errors.NewStrategyError(name, "run", err)
	}
	return res, nil
}
