// Package signals provides trading-date restrictions for backtests. A DateSet
// narrows the quote dates the evaluator may use for entries or exits, letting
// callers drive a backtest from an external signal series.
package signals

import (
	"sort"
	"time"
)

// DateSet is an immutable set of trading dates. The zero value (or a nil
// pointer) means unrestricted: every date is allowed.
type DateSet struct {
	dates map[time.Time]struct{}
}

// NewDateSet builds a set from the given dates. Time-of-day components are
// truncated so that dates loaded from different sources compare equal.
func NewDateSet(dates []time.Time) *DateSet {
	m := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		m[truncate(d)] = struct{}{}
	}
	return &DateSet{dates: m}
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Contains reports whether d belongs to the set. A nil or empty set allows
// every date.
func (s *DateSet) Contains(d time.Time) bool {
	if s == nil || len(s.dates) == 0 {
		return true
	}
	_, ok := s.dates[truncate(d)]
	return ok
}

// Len returns the number of dates in the set.
func (s *DateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dates)
}

// Dates returns the member dates in ascending order.
func (s *DateSet) Dates() []time.Time {
	if s == nil {
		return nil
	}
	out := make([]time.Time, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Intersect returns a set containing the dates present in both sets.
func (s *DateSet) Intersect(other *DateSet) *DateSet {
	merged := make(map[time.Time]struct{})
	if s != nil && other != nil {
		for d := range s.dates {
			if _, ok := other.dates[d]; ok {
				merged[d] = struct{}{}
			}
		}
	}
	return &DateSet{dates: merged}
}

// Union returns a set containing the dates of both sets.
func (s *DateSet) Union(other *DateSet) *DateSet {
	merged := make(map[time.Time]struct{})
	if s != nil {
		for d := range s.dates {
			merged[d] = struct{}{}
		}
	}
	if other != nil {
		for d := range other.dates {
			merged[d] = struct{}{}
		}
	}
	return &DateSet{dates: merged}
}
