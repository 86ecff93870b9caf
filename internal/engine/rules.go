package engine

import "math"

// Rule validates the strike/expiration geometry of a joined leg combination.
// Combinations that fail are discarded, not errors.
type Rule func(legs []Evaluated) bool

const strikeTolerance = 1e-9

// RuleNone accepts every combination. Used by single-leg strategies and
// straddles, whose strike equality is enforced by the join key.
func RuleNone(legs []Evaluated) bool {
	return true
}

// RuleAscendingStrikes requires strictly ascending strikes across legs. This
// covers strangles, vertical spreads and covered/protective positions.
func RuleAscendingStrikes(legs []Evaluated) bool {
	for i := 1; i < len(legs); i++ {
		if legs[i].Strike <= legs[i-1].Strike {
			return false
		}
	}
	return true
}

// RuleButterflyStrikes requires three strictly ascending strikes with equal
// wing widths.
func RuleButterflyStrikes(legs []Evaluated) bool {
	if len(legs) != 3 || !RuleAscendingStrikes(legs) {
		return false
	}
	lower := legs[1].Strike - legs[0].Strike
	upper := legs[2].Strike - legs[1].Strike
	return math.Abs(lower-upper) < strikeTolerance
}

// RuleIronCondorStrikes requires four strictly ascending strikes: put wing
// below the short put, short put below the short call, call wing above.
func RuleIronCondorStrikes(legs []Evaluated) bool {
	return len(legs) == 4 && RuleAscendingStrikes(legs)
}

// RuleIronButterflyStrikes requires the two middle legs to share the body
// strike with the wings strictly outside it.
func RuleIronButterflyStrikes(legs []Evaluated) bool {
	if len(legs) != 4 {
		return false
	}
	return legs[0].Strike < legs[1].Strike &&
		math.Abs(legs[1].Strike-legs[2].Strike) < strikeTolerance &&
		legs[2].Strike < legs[3].Strike
}

// RuleExpirationOrdering requires each leg to expire strictly after the one
// before it. Calendar and diagonal spreads use this; entry DTE windows
// already separate the cycles, the rule guards against equal expirations.
func RuleExpirationOrdering(legs []Evaluated) bool {
	for i := 1; i < len(legs); i++ {
		if !legs[i].Expiration.After(legs[i-1].Expiration) {
			return false
		}
	}
	return true
}
