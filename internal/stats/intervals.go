// Package stats implements interval bucketing and descriptive statistics for
// aggregated backtest output.
package stats

import (
	"fmt"
	"math"
)

// Interval is a right-closed numeric interval (Lo, Hi].
type Interval struct {
	Lo float64
	Hi float64
}

// String renders the interval in the conventional right-closed notation.
func (iv Interval) String() string {
	return fmt.Sprintf("(%g, %g]", iv.Lo, iv.Hi)
}

// Contains reports whether v lies in (Lo, Hi].
func (iv Interval) Contains(v float64) bool {
	return v > iv.Lo && v <= iv.Hi
}

// Cut locates v within the right-closed intervals defined by the ascending
// edge slice. It returns false when v is NaN or falls outside the overall
// range; such values belong to no bucket and their rows are dropped from
// grouped output.
func Cut(v float64, edges []float64) (Interval, bool) {
	if math.IsNaN(v) || len(edges) < 2 {
		return Interval{}, false
	}
	if v <= edges[0] || v > edges[len(edges)-1] {
		return Interval{}, false
	}
	for i := 1; i < len(edges); i++ {
		if v <= edges[i] {
			return Interval{Lo: edges[i-1], Hi: edges[i]}, true
		}
	}
	return Interval{}, false
}

// DTEEdges returns bucket edges 0, interval, 2*interval, ... capped so the
// final edge equals max.
func DTEEdges(interval, max int) []float64 {
	var edges []float64
	for e := 0; e < max; e += interval {
		edges = append(edges, float64(e))
	}
	edges = append(edges, float64(max))
	return edges
}

// OTMPctEdges returns signed bucket edges spanning [-max, max] in steps of
// interval. Edges are computed from integer multiples to avoid accumulated
// float drift, then rounded to two decimals to match the interval grid.
func OTMPctEdges(interval, max float64) []float64 {
	n := int(math.Round(2 * max / interval))
	edges := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		e := -max + float64(i)*interval
		edges = append(edges, math.Round(e*100)/100)
	}
	return edges
}

// DeltaEdges returns bucket edges spanning [-1, 1] in steps of interval,
// covering the full signed delta range of puts and calls.
func DeltaEdges(interval float64) []float64 {
	n := int(math.Round(2 / interval))
	edges := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		e := -1 + float64(i)*interval
		edges = append(edges, math.Round(e*100)/100)
	}
	return edges
}
