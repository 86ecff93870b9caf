// Package engine implements the strategy execution pipeline: filtering raw
// option quotes into entry/exit candidates, joining legs into multi-leg
// positions, pricing fills under a slippage model, netting P&L across legs
// and aggregating results into bucketed statistics.
package engine

import (
	"fmt"

	"options-backtester/internal/errors"
	"options-backtester/internal/options"
	"options-backtester/internal/signals"
)

// SlippageMode selects the fill-price model.
type SlippageMode string

const (
	SlippageMid       SlippageMode = "mid"
	SlippageSpread    SlippageMode = "spread"
	SlippageLiquidity SlippageMode = "liquidity"
)

// Params holds the tunable parameters shared by every strategy. Zero values
// are not meaningful; start from DefaultParams or DefaultCalendarParams and
// override.
type Params struct {
	DTEInterval    int
	MaxEntryDTE    int
	ExitDTE        int
	OTMPctInterval float64
	MaxOTMPct      float64
	MinBidAsk      float64
	DropNaN        bool
	Raw            bool

	// Optional delta filtering and grouping. Nil disables the feature.
	DeltaMin      *float64
	DeltaMax      *float64
	DeltaInterval *float64

	Slippage        SlippageMode
	FillRatio       float64
	ReferenceVolume int

	// Optional external signal restrictions. Nil means unrestricted.
	EntryDates *signals.DateSet
	ExitDates  *signals.DateSet

	// Entry DTE windows for calendar and diagonal spreads. Ignored by
	// same-expiration strategies.
	FrontDTEMin int
	FrontDTEMax int
	BackDTEMin  int
	BackDTEMax  int
}

// DefaultParams returns the defaults for same-expiration strategies.
func DefaultParams() Params {
	return Params{
		DTEInterval:     7,
		MaxEntryDTE:     90,
		ExitDTE:         0,
		OTMPctInterval:  0.05,
		MaxOTMPct:       0.5,
		MinBidAsk:       0.05,
		DropNaN:         true,
		Raw:             false,
		Slippage:        SlippageMid,
		FillRatio:       0.5,
		ReferenceVolume: 1000,
	}
}

// DefaultCalendarParams returns the defaults for calendar and diagonal
// spreads, which enter through front/back DTE windows and exit when the
// front leg reaches ExitDTE.
func DefaultCalendarParams() Params {
	p := DefaultParams()
	p.ExitDTE = 7
	p.FrontDTEMin = 20
	p.FrontDTEMax = 40
	p.BackDTEMin = 50
	p.BackDTEMax = 90
	return p
}

// Validate checks the parameter set against the option chain it will run on.
// The chain matters because delta filtering requires a delta column and
// liquidity slippage requires a volume column.
func (p Params) Validate(chain options.Chain) error {
	if p.DTEInterval <= 0 {
		return errors.NewValidationError("dte_interval", p.DTEInterval, "must be positive integer")
	}
	if p.MaxEntryDTE <= 0 {
		return errors.NewValidationError("max_entry_dte", p.MaxEntryDTE, "must be positive integer")
	}
	if p.ExitDTE < 0 {
		return errors.NewValidationError("exit_dte", p.ExitDTE, "must be positive integer, or 0")
	}
	if p.OTMPctInterval <= 0 {
		return errors.NewValidationError("otm_pct_interval", p.OTMPctInterval, "must be positive float type")
	}
	if p.MaxOTMPct <= 0 {
		return errors.NewValidationError("max_otm_pct", p.MaxOTMPct, "must be positive float type")
	}
	if p.MinBidAsk <= 0 {
		return errors.NewValidationError("min_bid_ask", p.MinBidAsk, "must be positive float type")
	}
	switch p.Slippage {
	case SlippageMid, SlippageSpread, SlippageLiquidity:
	default:
		return errors.NewValidationError("slippage", p.Slippage, "must be 'mid', 'spread', or 'liquidity'")
	}
	if p.FillRatio < 0 || p.FillRatio > 1 {
		return errors.NewValidationError("fill_ratio", p.FillRatio, "must be a number between 0 and 1")
	}
	if p.ReferenceVolume <= 0 {
		return errors.NewValidationError("reference_volume", p.ReferenceVolume, "must be positive integer")
	}
	if p.DeltaInterval != nil && *p.DeltaInterval <= 0 {
		return errors.NewValidationError("delta_interval", *p.DeltaInterval, "must be positive float type")
	}
	if p.DeltaMin != nil && p.DeltaMax != nil && *p.DeltaMin > *p.DeltaMax {
		return errors.NewValidationError("delta_min", *p.DeltaMin,
			fmt.Sprintf("must be <= delta_max (%v)", *p.DeltaMax))
	}
	if p.requiresDelta() && !chain.HasDelta {
		return errors.Wrap(errors.ErrMissingColumn, "delta filtering requires a delta column")
	}
	if p.Slippage == SlippageLiquidity && !chain.HasVolume {
		return errors.Wrap(errors.ErrMissingColumn, "liquidity slippage requires a volume column")
	}
	return nil
}

// ValidateCalendar runs Validate plus the front/back DTE window checks used
// by calendar and diagonal spreads.
func (p Params) ValidateCalendar(chain options.Chain) error {
	if err := p.Validate(chain); err != nil {
		return err
	}
	if p.FrontDTEMin <= 0 {
		return errors.NewValidationError("front_dte_min", p.FrontDTEMin, "must be positive integer")
	}
	if p.FrontDTEMax <= 0 {
		return errors.NewValidationError("front_dte_max", p.FrontDTEMax, "must be positive integer")
	}
	if p.BackDTEMin <= 0 {
		return errors.NewValidationError("back_dte_min", p.BackDTEMin, "must be positive integer")
	}
	if p.BackDTEMax <= 0 {
		return errors.NewValidationError("back_dte_max", p.BackDTEMax, "must be positive integer")
	}
	if p.FrontDTEMin > p.FrontDTEMax {
		return errors.NewValidationError("front_dte_min", p.FrontDTEMin,
			fmt.Sprintf("must be <= front_dte_max (%d)", p.FrontDTEMax))
	}
	if p.BackDTEMin > p.BackDTEMax {
		return errors.NewValidationError("back_dte_min", p.BackDTEMin,
			fmt.Sprintf("must be <= back_dte_max (%d)", p.BackDTEMax))
	}
	if p.FrontDTEMax >= p.BackDTEMin {
		return errors.NewValidationError("front_dte_max", p.FrontDTEMax,
			fmt.Sprintf("must be < back_dte_min (%d) to avoid overlapping ranges", p.BackDTEMin))
	}
	return nil
}

func (p Params) requiresDelta() bool {
	return p.DeltaMin != nil || p.DeltaMax != nil || p.DeltaInterval != nil
}

// Float64Ptr is a convenience for building optional delta parameters.
func Float64Ptr(v float64) *float64 {
	return &v
}
