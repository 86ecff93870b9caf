package strategies

import (
	"context"

	"options-backtester/internal/engine"
	"options-backtester/internal/options"
)

// The functions below are the public entry points, one per catalog strategy.
// Same-expiration strategies expect parameters derived from
// engine.DefaultParams; calendars and diagonals from
// engine.DefaultCalendarParams.

func LongCalls(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_calls", chain, p)
}

func LongPuts(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_puts", chain, p)
}

func ShortCalls(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_calls", chain, p)
}

func ShortPuts(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_puts", chain, p)
}

func LongStraddles(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_straddles", chain, p)
}

func ShortStraddles(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_straddles", chain, p)
}

func LongStrangles(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_strangles", chain, p)
}

func ShortStrangles(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_strangles", chain, p)
}

func LongCallSpread(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_call_spread", chain, p)
}

func ShortCallSpread(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_call_spread", chain, p)
}

func LongPutSpread(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_put_spread", chain, p)
}

func ShortPutSpread(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_put_spread", chain, p)
}

func LongCallButterfly(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_call_butterfly", chain, p)
}

func ShortCallButterfly(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_call_butterfly", chain, p)
}

func LongPutButterfly(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_put_butterfly", chain, p)
}

func ShortPutButterfly(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_put_butterfly", chain, p)
}

func IronCondor(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "iron_condor", chain, p)
}

func ReverseIronCondor(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "reverse_iron_condor", chain, p)
}

func IronButterfly(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "iron_butterfly", chain, p)
}

func ReverseIronButterfly(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "reverse_iron_butterfly", chain, p)
}

func CoveredCall(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "covered_call", chain, p)
}

func ProtectivePut(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "protective_put", chain, p)
}

func LongCallCalendar(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_call_calendar", chain, p)
}

func ShortCallCalendar(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_call_calendar", chain, p)
}

func LongPutCalendar(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_put_calendar", chain, p)
}

func ShortPutCalendar(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_put_calendar", chain, p)
}

func LongCallDiagonal(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_call_diagonal", chain, p)
}

func ShortCallDiagonal(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_call_diagonal", chain, p)
}

func LongPutDiagonal(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "long_put_diagonal", chain, p)
}

func ShortPutDiagonal(ctx context.Context, chain options.Chain, p engine.Params) (*engine.Result, error) {
	return Run(ctx, "short_put_diagonal", chain, p)
}
