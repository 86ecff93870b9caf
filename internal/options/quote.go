// Package options defines the core option chain data model shared by the
// backtesting engine, strategy catalog and data feeds.
package options

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// OptionType identifies a contract as a call or a put.
type OptionType int

const (
	Call OptionType = iota
	Put
)

// String returns the lowercase name used in data files and log output.
func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("OptionType(%d)", int(t))
	}
}

// ParseOptionType parses a contract type from its textual form.
// Accepted spellings are "call"/"c" and "put"/"p", case-insensitive.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return 0, fmt.Errorf("invalid option type %q", s)
	}
}

// Quote is a single option chain row: one contract observed on one quote date.
// Delta and Volume are only meaningful when the owning Chain reports
// HasDelta / HasVolume; rows loaded without those columns carry NaN there.
type Quote struct {
	UnderlyingSymbol string
	UnderlyingPrice  float64
	OptionType       OptionType
	Expiration       time.Time
	QuoteDate        time.Time
	Strike           float64
	Bid              float64
	Ask              float64
	Delta            float64
	Volume           float64
}

// DTE returns the number of calendar days between the quote date and
// expiration. Same-day expiration quotes have DTE 0.
func (q Quote) DTE() int {
	return int(q.Expiration.Sub(q.QuoteDate).Hours() / 24)
}

// Mid returns the bid/ask midpoint.
func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// Spread returns the bid/ask spread width.
func (q Quote) Spread() float64 {
	return q.Ask - q.Bid
}

// OTMPct returns the signed out-of-the-money percentage relative to the
// underlying price. Positive values are out of the money for both calls
// and puts: calls measure (strike-underlying)/underlying, puts the negation.
func (q Quote) OTMPct() float64 {
	if q.UnderlyingPrice == 0 {
		return math.NaN()
	}
	pct := (q.Strike - q.UnderlyingPrice) / q.UnderlyingPrice
	if q.OptionType == Put {
		return -pct
	}
	return pct
}

// ContractKey identifies a unique listed contract independent of quote date.
type ContractKey struct {
	UnderlyingSymbol string
	OptionType       OptionType
	Expiration       time.Time
	Strike           float64
}

// Contract returns the identity key of the quoted contract.
func (q Quote) Contract() ContractKey {
	return ContractKey{
		UnderlyingSymbol: q.UnderlyingSymbol,
		OptionType:       q.OptionType,
		Expiration:       q.Expiration,
		Strike:           q.Strike,
	}
}
