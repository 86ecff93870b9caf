// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"options-backtester/internal/options"
)

// Run records one completed backtest for later comparison.
type Run struct {
	ID        int64
	Strategy  string
	Source    string
	Positions int
	MeanPct   float64
	WinRate   float64
	Params    string // serialized parameter set
	StartedAt time.Time
	Duration  time.Duration
}

// DataStore defines the persistence interface: a quote cache keyed by source
// name plus a log of completed backtest runs.
type DataStore interface {
	// Quote cache
	SaveQuotes(ctx context.Context, source string, chain options.Chain) error
	LoadQuotes(ctx context.Context, source string) (options.Chain, error)
	HasQuotes(ctx context.Context, source string) (bool, error)

	// Backtest runs
	SaveRun(ctx context.Context, run *Run) error
	GetRuns(ctx context.Context, strategy string, limit int) ([]Run, error)

	Close() error
}
