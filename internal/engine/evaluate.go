package engine

import (
	"encoding/binary"
	"math"
	"sort"
	"time"

	"options-backtester/internal/options"
)

// Evaluated is one entry/exit-matched contract for a single leg: the entry
// quote joined to the exit quote of the same contract, with side-aware fill
// prices already applied.
type Evaluated struct {
	UnderlyingSymbol     string
	OptionType           options.OptionType
	Expiration           time.Time
	EntryDate            time.Time
	ExitDate             time.Time
	DTEEntry             int
	DTEExit              int
	Strike               float64
	UnderlyingPriceEntry float64
	UnderlyingPriceExit  float64
	BidEntry             float64
	AskEntry             float64
	BidExit              float64
	AskExit              float64
	OTMPctEntry          float64
	DeltaEntry           float64
	Entry                float64
	Exit                 float64
}

// dteWindow is the inclusive entry DTE range a leg may be opened in.
type dteWindow struct {
	min int
	max int
}

// exitMatcher selects exit candidate quotes. Standard strategies exit at an
// exact DTE; calendar back legs exit on the quote dates their front leg
// exited on.
type exitMatcher struct {
	dte   int
	dates map[time.Time]struct{}
}

func exitAtDTE(dte int) exitMatcher {
	return exitMatcher{dte: dte}
}

func exitOnDates(dates map[time.Time]struct{}) exitMatcher {
	return exitMatcher{dte: -1, dates: dates}
}

func (m exitMatcher) matches(q options.Quote) bool {
	if m.dates != nil {
		_, ok := m.dates[q.QuoteDate]
		return ok
	}
	return q.DTE() == m.dte
}

// contractHash is an FNV-64a hash of the contract identity key. The join
// keys on this single integer instead of comparing four columns per probe;
// matches are verified against the full key to rule out collisions.
func contractHash(q options.Quote) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for i := 0; i < len(q.UnderlyingSymbol); i++ {
		h ^= uint64(q.UnderlyingSymbol[i])
		h *= prime64
	}
	var buf [17]byte
	buf[0] = byte(q.OptionType)
	binary.LittleEndian.PutUint64(buf[1:9], uint64(q.Expiration.Unix()))
	binary.LittleEndian.PutUint64(buf[9:17], math.Float64bits(q.Strike))
	for _, b := range buf {
		h ^= uint64(b)
		h *= prime64
	}
	return h
}

// evaluateLeg matches every eligible entry quote of one leg to the exit quote
// of the same contract and prices both fills. The join is partitioned by
// expiration (contracts in different cycles never match) and partitions run
// in parallel. When oneExitPerContract is set, an entry row matches at most
// one exit row; calendar back legs clear it so a contract can pair with each
// candidate exit date.
func evaluateLeg(chain options.Chain, leg LegDef, p Params, win dteWindow, exit exitMatcher, oneExitPerContract bool) []Evaluated {
	type partition struct {
		entries []options.Quote
		exits   []options.Quote
	}

	parts := make(map[time.Time]*partition)
	var order []time.Time
	for _, q := range chain.Quotes {
		if q.OptionType != leg.Type {
			continue
		}
		dte := q.DTE()
		isEntry := dte >= win.min && dte <= win.max &&
			q.Spread() >= p.MinBidAsk &&
			p.EntryDates.Contains(q.QuoteDate) &&
			deltaInBounds(q, chain, p)
		isExit := exit.matches(q) && p.ExitDates.Contains(q.QuoteDate)
		if !isEntry && !isExit {
			continue
		}
		part, ok := parts[q.Expiration]
		if !ok {
			part = &partition{}
			parts[q.Expiration] = part
			order = append(order, q.Expiration)
		}
		if isEntry {
			part.entries = append(part.entries, q)
		}
		if isExit {
			part.exits = append(part.exits, q)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	results := make([][]Evaluated, len(order))
	runPartitioned(len(order), func(i int) {
		part := parts[order[i]]
		if len(part.entries) == 0 || len(part.exits) == 0 {
			return
		}

		exitsByHash := make(map[uint64][]options.Quote, len(part.exits))
		for _, x := range part.exits {
			h := contractHash(x)
			exitsByHash[h] = append(exitsByHash[h], x)
		}

		var rows []Evaluated
		for _, e := range part.entries {
			for _, x := range exitsByHash[contractHash(e)] {
				if x.Contract() != e.Contract() {
					continue // hash collision
				}
				if ev, ok := newEvaluated(e, x, leg, p); ok {
					rows = append(rows, ev)
				}
				if oneExitPerContract {
					break
				}
			}
		}
		results[i] = rows
	})

	var out []Evaluated
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out
}

func deltaInBounds(q options.Quote, chain options.Chain, p Params) bool {
	if !chain.HasDelta {
		return true
	}
	if p.DeltaMin != nil && q.Delta < *p.DeltaMin {
		return false
	}
	if p.DeltaMax != nil && q.Delta > *p.DeltaMax {
		return false
	}
	return true
}

func newEvaluated(entry, exit options.Quote, leg LegDef, p Params) (Evaluated, bool) {
	dteEntry := entry.DTE()
	dteExit := exit.DTE()
	if dteExit >= dteEntry {
		return Evaluated{}, false // exit must fall after entry
	}
	return Evaluated{
		UnderlyingSymbol:     entry.UnderlyingSymbol,
		OptionType:           entry.OptionType,
		Expiration:           entry.Expiration,
		EntryDate:            entry.QuoteDate,
		ExitDate:             exit.QuoteDate,
		DTEEntry:             dteEntry,
		DTEExit:              dteExit,
		Strike:               entry.Strike,
		UnderlyingPriceEntry: entry.UnderlyingPrice,
		UnderlyingPriceExit:  exit.UnderlyingPrice,
		BidEntry:             entry.Bid,
		AskEntry:             entry.Ask,
		BidExit:              exit.Bid,
		AskExit:              exit.Ask,
		OTMPctEntry:          entry.OTMPct(),
		DeltaEntry:           entry.Delta,
		Entry:                entryFill(entry.Bid, entry.Ask, entry.Volume, leg.Side, p),
		Exit:                 exitFill(exit.Bid, exit.Ask, exit.Volume, leg.Side, p),
	}, true
}
