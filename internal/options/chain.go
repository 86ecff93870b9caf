package options

import (
	"sort"
	"time"
)

// Chain is an immutable collection of option quotes plus flags recording
// which optional columns the source data carried. Filter operations return
// new chains sharing the same flags; the quote slice is never mutated.
type Chain struct {
	Quotes    []Quote
	HasDelta  bool
	HasVolume bool
}

// NewChain builds a chain over the given quotes.
func NewChain(quotes []Quote, hasDelta, hasVolume bool) Chain {
	return Chain{Quotes: quotes, HasDelta: hasDelta, HasVolume: hasVolume}
}

// Len returns the number of quotes in the chain.
func (c Chain) Len() int {
	return len(c.Quotes)
}

// Filter returns a new chain containing the quotes for which keep returns
// true. The receiver is left untouched.
func (c Chain) Filter(keep func(Quote) bool) Chain {
	out := make([]Quote, 0, len(c.Quotes))
	for _, q := range c.Quotes {
		if keep(q) {
			out = append(out, q)
		}
	}
	return Chain{Quotes: out, HasDelta: c.HasDelta, HasVolume: c.HasVolume}
}

// Calls returns the call quotes.
func (c Chain) Calls() Chain {
	return c.Filter(func(q Quote) bool { return q.OptionType == Call })
}

// Puts returns the put quotes.
func (c Chain) Puts() Chain {
	return c.Filter(func(q Quote) bool { return q.OptionType == Put })
}

// BetweenExpirations returns the quotes whose expiration falls inside the
// inclusive [start, end] window. A zero start or end leaves that side open.
func (c Chain) BetweenExpirations(start, end time.Time) Chain {
	return c.Filter(func(q Quote) bool {
		if !start.IsZero() && q.Expiration.Before(start) {
			return false
		}
		if !end.IsZero() && q.Expiration.After(end) {
			return false
		}
		return true
	})
}

// QuoteDates returns the distinct quote dates in ascending order.
func (c Chain) QuoteDates() []time.Time {
	seen := make(map[time.Time]struct{}, len(c.Quotes))
	var dates []time.Time
	for _, q := range c.Quotes {
		if _, ok := seen[q.QuoteDate]; !ok {
			seen[q.QuoteDate] = struct{}{}
			dates = append(dates, q.QuoteDate)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Expirations returns the distinct expirations in ascending order.
func (c Chain) Expirations() []time.Time {
	seen := make(map[time.Time]struct{}, len(c.Quotes))
	var exps []time.Time
	for _, q := range c.Quotes {
		if _, ok := seen[q.Expiration]; !ok {
			seen[q.Expiration] = struct{}{}
			exps = append(exps, q.Expiration)
		}
	}
	sort.Slice(exps, func(i, j int) bool { return exps[i].Before(exps[j]) })
	return exps
}
