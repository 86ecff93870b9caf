package engine

import (
	"time"

	"options-backtester/internal/options"
	"options-backtester/internal/stats"
)

// LegFill records one leg of a completed position with both fills.
type LegFill struct {
	Side        Side
	Quantity    int
	OptionType  options.OptionType
	Strike      float64
	Expiration  time.Time
	DTEEntry    int
	Entry       float64
	Exit        float64
	OTMPctEntry float64
	DeltaEntry  float64
}

// Position is one simulated trade: every leg entered on the same date and
// closed on the same date, with netted cost, proceeds and percent change.
type Position struct {
	UnderlyingSymbol     string
	UnderlyingPriceEntry float64
	UnderlyingPriceExit  float64
	EntryDate            time.Time
	ExitDate             time.Time
	Expiration           time.Time
	DTEEntry             int
	Legs                 []LegFill
	TotalEntryCost       float64
	TotalExitProceeds    float64
	PctChange            float64
}

// BucketRow is one aggregated output row: the DTE/OTM%(/delta) bucket the
// grouped trades fall into plus their descriptive statistics. Standard
// strategies carry one DTE range; calendars carry one per leg. OTMRanges has
// one entry per leg except for strike-joined strategies, which share one.
type BucketRow struct {
	DTERanges   []stats.Interval
	OTMRanges   []stats.Interval
	DeltaRanges []stats.Interval
	Stats       stats.Description
}

// Result is the outcome of one strategy run. Positions always carries the
// per-trade rows; Buckets is populated unless the run asked for raw output.
type Result struct {
	Strategy  string
	Raw       bool
	Positions []Position
	Buckets   []BucketRow
}

// Empty reports whether the run produced no trades.
func (r *Result) Empty() bool {
	return len(r.Positions) == 0
}
