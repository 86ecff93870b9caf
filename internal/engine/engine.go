package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"options-backtester/internal/errors"
	"options-backtester/internal/logging"
	"options-backtester/internal/options"
)

// Side is the direction of a leg. Long pays to open and receives to close;
// short receives to open and pays to close.
type Side int

const (
	Long  Side = 1
	Short Side = -1
)

func (s Side) String() string {
	if s == Short {
		return "short"
	}
	return "long"
}

// LegDef describes one leg of a strategy: its direction, the option type it
// draws from and its quantity. A zero Quantity means 1.
type LegDef struct {
	Side     Side
	Type     options.OptionType
	Quantity int
}

func (l LegDef) quantity() int {
	if l.Quantity == 0 {
		return 1
	}
	return l.Quantity
}

// ratio is the signed size multiplier applied to this leg's fills.
func (l LegDef) ratio() float64 {
	return float64(l.Side) * float64(l.quantity())
}

// Definition is the declarative shape of a strategy: its ordered legs, the
// join behaviour and the rule its combinations must satisfy.
type Definition struct {
	Name string
	Legs []LegDef
	// JoinOnStrike adds the strike to the leg join key so all legs share
	// one strike (straddles, calendars).
	JoinOnStrike bool
	Rule         Rule
	// Calendar switches to front/back expiration-cycle evaluation where
	// legs join across different expirations on a shared exit date.
	Calendar bool
}

// Run executes one strategy over the chain: evaluates each leg, joins legs
// into candidate positions, validates them and nets P&L. With Params.Raw the
// result carries per-trade rows only; otherwise it also carries bucketed
// statistics.
func Run(ctx context.Context, chain options.Chain, def Definition, p Params) (*Result, error) {
	log := logging.FromContext(ctx)

	if len(def.Legs) == 0 {
		return nil, errors.NewValidationError("legs", len(def.Legs), "definition must have at least one leg")
	}
	if def.Calendar && len(def.Legs) != 2 {
		return nil, errors.NewValidationError("legs", len(def.Legs), "calendar definitions need exactly two legs")
	}

	var err error
	if def.Calendar {
		err = p.ValidateCalendar(chain)
	} else {
		err = p.Validate(chain)
	}
	if err != nil {
		return nil, err
	}

	var positions []Position
	if def.Calendar {
		positions = runCalendar(chain, def, p)
	} else {
		positions = runStandard(chain, def, p)
	}
	sortPositions(positions)

	log.Debug().
		Str("strategy", def.Name).
		Int("legs", len(def.Legs)).
		Int("positions", len(positions)).
		Msg("strategy evaluated")

	res := &Result{Strategy: def.Name, Raw: p.Raw, Positions: positions}
	if !p.Raw {
		res.Buckets = aggregate(positions, def, p)
	}
	return res, nil
}

// joinKey groups evaluated leg rows that can belong to the same position.
type joinKey struct {
	symbol    string
	entryDate time.Time
	exitDate  time.Time
	// expiration is set for same-expiration strategies, zero for calendars
	// (whose legs expire in different cycles).
	expiration time.Time
	// strike is set when the definition joins on strike.
	strike float64
}

func runStandard(chain options.Chain, def Definition, p Params) []Position {
	win := dteWindow{min: p.ExitDTE + 1, max: p.MaxEntryDTE}
	exit := exitAtDTE(p.ExitDTE)

	legRows := make([][]Evaluated, len(def.Legs))
	for i, leg := range def.Legs {
		legRows[i] = evaluateLeg(chain, leg, p, win, exit, true)
		if len(legRows[i]) == 0 {
			return nil
		}
	}

	key := func(ev Evaluated) joinKey {
		k := joinKey{
			symbol:     ev.UnderlyingSymbol,
			entryDate:  ev.EntryDate,
			exitDate:   ev.ExitDate,
			expiration: ev.Expiration,
		}
		if def.JoinOnStrike {
			k.strike = ev.Strike
		}
		return k
	}
	return joinLegs(legRows, key, def, p)
}

func runCalendar(chain options.Chain, def Definition, p Params) []Position {
	frontWin := dteWindow{min: p.FrontDTEMin, max: p.FrontDTEMax}
	front := evaluateLeg(chain, def.Legs[0], p, frontWin, exitAtDTE(p.ExitDTE), true)
	if len(front) == 0 {
		return nil
	}

	// Back legs close out on the dates the front leg exits, not at a DTE.
	exitDates := make(map[time.Time]struct{}, len(front))
	for _, ev := range front {
		exitDates[ev.ExitDate] = struct{}{}
	}
	backWin := dteWindow{min: p.BackDTEMin, max: p.BackDTEMax}
	back := evaluateLeg(chain, def.Legs[1], p, backWin, exitOnDates(exitDates), false)
	if len(back) == 0 {
		return nil
	}

	key := func(ev Evaluated) joinKey {
		k := joinKey{
			symbol:    ev.UnderlyingSymbol,
			entryDate: ev.EntryDate,
			exitDate:  ev.ExitDate,
		}
		if def.JoinOnStrike {
			k.strike = ev.Strike
		}
		return k
	}
	return joinLegs([][]Evaluated{front, back}, key, def, p)
}

// joinLegs inner-joins the per-leg candidate tables on the join key and
// enumerates every combination that satisfies the definition's rule. All
// valid combinations are kept as separate positions; downstream bucketing
// groups them.
func joinLegs(legRows [][]Evaluated, key func(Evaluated) joinKey, def Definition, p Params) []Position {
	grouped := make([]map[joinKey][]Evaluated, len(legRows))
	for i, rows := range legRows {
		grouped[i] = make(map[joinKey][]Evaluated)
		for _, ev := range rows {
			k := key(ev)
			grouped[i][k] = append(grouped[i][k], ev)
		}
	}

	rule := def.Rule
	if rule == nil {
		rule = RuleNone
	}

	var positions []Position
	combo := make([]Evaluated, len(legRows))
	var expand func(k joinKey, leg int)
	expand = func(k joinKey, leg int) {
		if leg == len(legRows) {
			if rule(combo) {
				positions = append(positions, newPosition(combo, def, p))
			}
			return
		}
		for _, ev := range grouped[leg][k] {
			combo[leg] = ev
			expand(k, leg+1)
		}
	}
	for k := range grouped[0] {
		expand(k, 0)
	}
	return positions
}

func newPosition(combo []Evaluated, def Definition, p Params) Position {
	legs := make([]LegFill, len(combo))
	var cost, proceeds float64
	for i, ev := range combo {
		ratio := def.Legs[i].ratio()
		cost += ratio * ev.Entry
		proceeds += ratio * ev.Exit
		legs[i] = LegFill{
			Side:        def.Legs[i].Side,
			Quantity:    def.Legs[i].quantity(),
			OptionType:  ev.OptionType,
			Strike:      ev.Strike,
			Expiration:  ev.Expiration,
			DTEEntry:    ev.DTEEntry,
			Entry:       ev.Entry,
			Exit:        ev.Exit,
			OTMPctEntry: ev.OTMPctEntry,
			DeltaEntry:  ev.DeltaEntry,
		}
	}
	first := combo[0]
	return Position{
		UnderlyingSymbol:     first.UnderlyingSymbol,
		UnderlyingPriceEntry: first.UnderlyingPriceEntry,
		UnderlyingPriceExit:  first.UnderlyingPriceExit,
		EntryDate:            first.EntryDate,
		ExitDate:             first.ExitDate,
		Expiration:           first.Expiration,
		DTEEntry:             first.DTEEntry,
		Legs:                 legs,
		TotalEntryCost:       cost,
		TotalExitProceeds:    proceeds,
		PctChange:            pctChange(cost, proceeds),
	}
}

// pctChange is the net return on the capital committed at entry, floored at
// a total loss of -1. Positions opened for (near) zero net cost have no
// meaningful denominator; they map to the sign of the exit proceeds.
func pctChange(cost, proceeds float64) float64 {
	denom := math.Abs(cost)
	if denom < 1e-9 {
		switch {
		case proceeds > 0:
			return 1
		case proceeds < 0:
			return -1
		default:
			return 0
		}
	}
	pct := (proceeds - cost) / denom
	if pct < -1 {
		pct = -1
	}
	return math.Round(pct*100) / 100
}

func sortPositions(positions []Position) {
	sort.SliceStable(positions, func(i, j int) bool {
		a, b := positions[i], positions[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if !a.Expiration.Equal(b.Expiration) {
			return a.Expiration.Before(b.Expiration)
		}
		for k := range a.Legs {
			if k >= len(b.Legs) {
				break
			}
			if a.Legs[k].Strike != b.Legs[k].Strike {
				return a.Legs[k].Strike < b.Legs[k].Strike
			}
		}
		return false
	})
}
