package stats

import (
	"math"
	"sort"
)

// Description holds the descriptive statistics of one sample, matching the
// count/mean/std/min/quartiles/max layout plus the win-rate and profit-factor
// trading metrics.
type Description struct {
	Count        int
	Mean         float64
	Std          float64
	Min          float64
	Q25          float64
	Q50          float64
	Q75          float64
	Max          float64
	WinRate      float64
	ProfitFactor float64
}

// Describe computes descriptive statistics over values. An empty sample
// returns a zero-count description with NaN statistics. A single-value sample
// has Std = NaN (the sample standard deviation is undefined for n = 1).
func Describe(values []float64) Description {
	n := len(values)
	if n == 0 {
		nan := math.NaN()
		return Description{
			Count: 0, Mean: nan, Std: nan, Min: nan,
			Q25: nan, Q50: nan, Q75: nan, Max: nan,
			WinRate: nan, ProfitFactor: nan,
		}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	std := math.NaN()
	if n > 1 {
		var ss float64
		for _, v := range sorted {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(n-1))
	}

	return Description{
		Count:        n,
		Mean:         mean,
		Std:          std,
		Min:          sorted[0],
		Q25:          quantile(sorted, 0.25),
		Q50:          quantile(sorted, 0.50),
		Q75:          quantile(sorted, 0.75),
		Max:          sorted[n-1],
		WinRate:      winRate(sorted),
		ProfitFactor: profitFactor(sorted),
	}
}

// AllNaN reports whether every statistic apart from Count is NaN, which is
// the shape produced by an empty sample. Rows like this carry no information
// and aggregated output drops them by default.
func (d Description) AllNaN() bool {
	for _, v := range []float64{d.Mean, d.Std, d.Min, d.Q25, d.Q50, d.Q75, d.Max, d.WinRate, d.ProfitFactor} {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// quantile computes the q-th quantile of a sorted sample using linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// winRate is the fraction of strictly positive returns.
func winRate(values []float64) float64 {
	wins := 0
	for _, v := range values {
		if v > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(values))
}

// profitFactor is gross profit divided by gross loss. With no losing trades
// it is +Inf when any trade won, NaN when every trade was flat.
func profitFactor(values []float64) float64 {
	var grossProfit, grossLoss float64
	for _, v := range values {
		if v > 0 {
			grossProfit += v
		} else if v < 0 {
			grossLoss -= v
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return math.NaN()
	}
	return grossProfit / grossLoss
}
