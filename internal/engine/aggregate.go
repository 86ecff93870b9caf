package engine

import (
	"fmt"
	"sort"
	"strings"

	"options-backtester/internal/stats"
)

// aggregate buckets positions by DTE interval and per-leg OTM% interval
// (plus delta interval when grouping by delta is enabled) and computes
// descriptive statistics of pct_change per bucket. Positions falling outside
// the bucket edges are dropped; buckets with no trades are never emitted.
func aggregate(positions []Position, def Definition, p Params) []BucketRow {
	if len(positions) == 0 {
		return nil
	}

	dteEdges := stats.DTEEdges(p.DTEInterval, p.MaxEntryDTE)
	otmEdges := stats.OTMPctEdges(p.OTMPctInterval, p.MaxOTMPct)
	var deltaEdges []float64
	if p.DeltaInterval != nil {
		deltaEdges = stats.DeltaEdges(*p.DeltaInterval)
	}

	type bucket struct {
		row    BucketRow
		values []float64
	}
	buckets := make(map[string]*bucket)

	for _, pos := range positions {
		row, ok := bucketFor(pos, def, dteEdges, otmEdges, deltaEdges)
		if !ok {
			continue
		}
		k := bucketKey(row)
		b, exists := buckets[k]
		if !exists {
			b = &bucket{row: row}
			buckets[k] = b
		}
		b.values = append(b.values, pos.PctChange)
	}

	out := make([]BucketRow, 0, len(buckets))
	for _, b := range buckets {
		b.row.Stats = stats.Describe(b.values)
		if p.DropNaN && b.row.Stats.AllNaN() {
			continue
		}
		out = append(out, b.row)
	}
	sort.Slice(out, func(i, j int) bool {
		return bucketLess(out[i], out[j])
	})
	return out
}

func bucketLess(a, b BucketRow) bool {
	cmp := func(x, y []stats.Interval) int {
		for i := range x {
			if i >= len(y) {
				return 1
			}
			if x[i].Lo != y[i].Lo {
				if x[i].Lo < y[i].Lo {
					return -1
				}
				return 1
			}
		}
		return 0
	}
	if c := cmp(a.DTERanges, b.DTERanges); c != 0 {
		return c < 0
	}
	if c := cmp(a.OTMRanges, b.OTMRanges); c != 0 {
		return c < 0
	}
	return cmp(a.DeltaRanges, b.DeltaRanges) < 0
}

// bucketFor locates the bucket a position belongs to. Calendar strategies
// bucket the entry DTE of each leg separately; strike-joined strategies
// share a single OTM% range across legs.
func bucketFor(pos Position, def Definition, dteEdges, otmEdges, deltaEdges []float64) (BucketRow, bool) {
	var row BucketRow

	if def.Calendar {
		for _, leg := range pos.Legs {
			iv, ok := stats.Cut(float64(leg.DTEEntry), dteEdges)
			if !ok {
				return row, false
			}
			row.DTERanges = append(row.DTERanges, iv)
		}
	} else {
		iv, ok := stats.Cut(float64(pos.DTEEntry), dteEdges)
		if !ok {
			return row, false
		}
		row.DTERanges = []stats.Interval{iv}
	}

	sharedStrike := def.JoinOnStrike || len(pos.Legs) == 1
	legsForOTM := pos.Legs
	if sharedStrike {
		legsForOTM = pos.Legs[:1]
	}
	for _, leg := range legsForOTM {
		iv, ok := stats.Cut(leg.OTMPctEntry, otmEdges)
		if !ok {
			return row, false
		}
		row.OTMRanges = append(row.OTMRanges, iv)
	}

	if deltaEdges != nil {
		for _, leg := range legsForOTM {
			iv, ok := stats.Cut(leg.DeltaEntry, deltaEdges)
			if !ok {
				return row, false
			}
			row.DeltaRanges = append(row.DeltaRanges, iv)
		}
	}
	return row, true
}

func bucketKey(row BucketRow) string {
	var sb strings.Builder
	for _, iv := range row.DTERanges {
		fmt.Fprintf(&sb, "d%g|", iv.Lo)
	}
	for _, iv := range row.OTMRanges {
		fmt.Fprintf(&sb, "o%g|", iv.Lo)
	}
	for _, iv := range row.DeltaRanges {
		fmt.Fprintf(&sb, "g%g|", iv.Lo)
	}
	return sb.String()
}
