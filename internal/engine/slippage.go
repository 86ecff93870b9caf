package engine

// fillPrice models the price obtained for one contract under the configured
// slippage mode. buying states whether this fill pays the market (long entry,
// short exit) or receives from it.
//
// mid fills at the bid/ask midpoint. spread fills at the worst side of the
// market: buyers pay the ask, sellers receive the bid. liquidity interpolates
// between the worst and best side of the market: the effective fill ratio is
// FillRatio scaled by how close volume is to ReferenceVolume, so an illiquid
// contract fills near the worst case and a fully liquid one at FillRatio
// between the extremes (0.5 reproduces the midpoint).
func fillPrice(bid, ask, volume float64, buying bool, p Params) float64 {
	switch p.Slippage {
	case SlippageSpread:
		if buying {
			return ask
		}
		return bid
	case SlippageLiquidity:
		worst, best := bid, ask
		if buying {
			worst, best = ask, bid
		}
		liquidity := volume / float64(p.ReferenceVolume)
		if liquidity > 1 {
			liquidity = 1
		}
		if liquidity < 0 {
			liquidity = 0
		}
		effective := p.FillRatio * liquidity
		return worst + effective*(best-worst)
	default: // SlippageMid
		return (bid + ask) / 2
	}
}

// entryFill prices the opening fill for a leg: long legs buy, short legs sell.
func entryFill(bid, ask, volume float64, side Side, p Params) float64 {
	return fillPrice(bid, ask, volume, side == Long, p)
}

// exitFill prices the closing fill for a leg: long legs sell, short legs buy.
func exitFill(bid, ask, volume float64, side Side, p Params) float64 {
	return fillPrice(bid, ask, volume, side == Short, p)
}
