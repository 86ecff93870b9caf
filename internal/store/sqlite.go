// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"options-backtester/internal/options"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Cached option chain sources
	CREATE TABLE IF NOT EXISTS sources (
		name TEXT PRIMARY KEY,
		has_delta INTEGER NOT NULL DEFAULT 0,
		has_volume INTEGER NOT NULL DEFAULT 0,
		loaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Option quotes, one row per contract per quote date
	CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		underlying_symbol TEXT NOT NULL,
		underlying_price REAL NOT NULL,
		option_type TEXT NOT NULL,
		expiration DATETIME NOT NULL,
		quote_date DATETIME NOT NULL,
		strike REAL NOT NULL,
		bid REAL NOT NULL,
		ask REAL NOT NULL,
		delta REAL,
		volume REAL,
		UNIQUE(source, underlying_symbol, option_type, expiration, quote_date, strike)
	);
	CREATE INDEX IF NOT EXISTS idx_quotes_source ON quotes(source);
	CREATE INDEX IF NOT EXISTS idx_quotes_expiration ON quotes(source, expiration);

	-- Completed backtest runs
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		strategy TEXT NOT NULL,
		source TEXT NOT NULL,
		positions INTEGER NOT NULL,
		mean_pct REAL,
		win_rate REAL,
		params TEXT,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_runs_strategy ON runs(strategy, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveQuotes replaces the cached chain stored under source.
func (s *SQLiteStore) SaveQuotes(ctx context.Context, source string, chain options.Chain) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quotes WHERE source = ?`, source); err != nil {
		return fmt.Errorf("clearing source %s: %w", source, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sources (name, has_delta, has_volume, loaded_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			has_delta = excluded.has_delta,
			has_volume = excluded.has_volume,
			loaded_at = CURRENT_TIMESTAMP`,
		source, boolInt(chain.HasDelta), boolInt(chain.HasVolume)); err != nil {
		return fmt.Errorf("upserting source %s: %w", source, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quotes (
			source, underlying_symbol, underlying_price, option_type,
			expiration, quote_date, strike, bid, ask, delta, volume
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, q := range chain.Quotes {
		_, err := stmt.ExecContext(ctx,
			source, q.UnderlyingSymbol, q.UnderlyingPrice, q.OptionType.String(),
			q.Expiration, q.QuoteDate, q.Strike, q.Bid, q.Ask,
			nullFloat(q.Delta, chain.HasDelta), nullFloat(q.Volume, chain.HasVolume))
		if err != nil {
			return fmt.Errorf("inserting quote: %w", err)
		}
	}
	return tx.Commit()
}

// LoadQuotes returns the cached chain stored under source.
func (s *SQLiteStore) LoadQuotes(ctx context.Context, source string) (options.Chain, error) {
	var hasDelta, hasVolume int
	err := s.db.QueryRowContext(ctx,
		`SELECT has_delta, has_volume FROM sources WHERE name = ?`, source).
		Scan(&hasDelta, &hasVolume)
	if err == sql.ErrNoRows {
		return options.Chain{}, fmt.Errorf("source %s not cached", source)
	}
	if err != nil {
		return options.Chain{}, fmt.Errorf("reading source %s: %w", source, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT underlying_symbol, underlying_price, option_type,
		       expiration, quote_date, strike, bid, ask, delta, volume
		FROM quotes WHERE source = ?
		ORDER BY expiration, quote_date, option_type, strike`, source)
	if err != nil {
		return options.Chain{}, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()

	var quotes []options.Quote
	for rows.Next() {
		var (
			q             options.Quote
			typ           string
			delta, volume sql.NullFloat64
		)
		if err := rows.Scan(&q.UnderlyingSymbol, &q.UnderlyingPrice, &typ,
			&q.Expiration, &q.QuoteDate, &q.Strike, &q.Bid, &q.Ask,
			&delta, &volume); err != nil {
			return options.Chain{}, fmt.Errorf("scanning quote: %w", err)
		}
		q.OptionType, err = options.ParseOptionType(typ)
		if err != nil {
			return options.Chain{}, fmt.Errorf("scanning quote: %w", err)
		}
		q.Delta = floatOrNaN(delta)
		q.Volume = floatOrNaN(volume)
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return options.Chain{}, fmt.Errorf("iterating quotes: %w", err)
	}
	return options.NewChain(quotes, hasDelta != 0, hasVolume != 0), nil
}

// HasQuotes reports whether a chain is cached under source.
func (s *SQLiteStore) HasQuotes(ctx context.Context, source string) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sources WHERE name = ?`, source).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveRun records a completed backtest run.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (strategy, source, positions, mean_pct, win_rate, params, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Strategy, run.Source, run.Positions,
		nullFloat(run.MeanPct, true), nullFloat(run.WinRate, true),
		run.Params, run.StartedAt, run.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	run.ID, _ = res.LastInsertId()
	return nil
}

// GetRuns returns recent runs, optionally filtered by strategy.
func (s *SQLiteStore) GetRuns(ctx context.Context, strategy string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, strategy, source, positions, mean_pct, win_rate, params, started_at, duration_ms
		FROM runs`
	args := []interface{}{}
	if strategy != "" {
		query += ` WHERE strategy = ?`
		args = append(args, strategy)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                Run
			meanPct, winRate sql.NullFloat64
			durationMS       int64
		)
		if err := rows.Scan(&r.ID, &r.Strategy, &r.Source, &r.Positions,
			&meanPct, &winRate, &r.Params, &r.StartedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.MeanPct = floatOrNaN(meanPct)
		r.WinRate = floatOrNaN(winRate)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullFloat maps absent or NaN values to SQL NULL.
func nullFloat(v float64, present bool) sql.NullFloat64 {
	if !present || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
