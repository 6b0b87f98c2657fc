// Package runstore persists a small, optional history of past runs to
// SQLite, adapted from the teacher repository's internal/db migration
// pattern: a schema_version table gates forward-only migrations, and
// run history is append-only.
package runstore

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"frontier/internal/logger"
)

// Store wraps a SQLite connection holding the run-history table. A nil
// *Store is valid and every method on it is a no-op, so callers can pass
// it through unconditionally when --history-db was not given.
type Store struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs
// migrations. path == "" disables history: Open returns (nil, nil) and
// every Store method becomes a no-op.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, nil
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open run history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping run history db: %w", err)
	}
	s := &Store{sql: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate run history db: %w", err)
	}
	logger.Success("RUNSTORE", fmt.Sprintf("opened %s", path))
	return s, nil
}

// Close closes the underlying connection. Safe on a nil Store.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.sql.Close()
}

func (s *Store) migrate() error {
	var version int
	s.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := s.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS run_history (
				id              TEXT PRIMARY KEY,
				started_at      TEXT NOT NULL,
				duration_ms     INTEGER NOT NULL,
				assets          INTEGER NOT NULL,
				precision_step  INTEGER NOT NULL,
				hull_layers     INTEGER NOT NULL,
				years_selector  TEXT NOT NULL,
				total_allocations INTEGER NOT NULL,
				axes_json       TEXT NOT NULL,
				frontier_sizes_json TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_run_history_started ON run_history(started_at);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("RUNSTORE", "applied migration v1")
	}
	return nil
}

// Run is one completed exploration's summary, exactly what SPEC_FULL.md's
// run-history supplement records: parameters, per-axis frontier sizes, and
// timings, adapted from the teacher's scan_history rows.
type Run struct {
	ID               string
	StartedAt        string // RFC3339
	DurationMS       int64
	Assets           int
	PrecisionStep    int
	HullLayers       int
	YearsSelector    string
	TotalAllocations int
	AxesJSON         string // JSON array of {"x":..,"y":..}
	FrontierSizesJSON string // JSON object axis-label -> frontier size
}

// NewRunID mints a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Save appends one run to history. A nil Store makes Save a no-op,
// so callers don't need to branch on whether history is enabled.
func (s *Store) Save(r Run) error {
	if s == nil {
		return nil
	}
	_, err := s.sql.Exec(`
		INSERT INTO run_history (
			id, started_at, duration_ms, assets, precision_step, hull_layers,
			years_selector, total_allocations, axes_json, frontier_sizes_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt, r.DurationMS, r.Assets, r.PrecisionStep, r.HullLayers,
		r.YearsSelector, r.TotalAllocations, r.AxesJSON, r.FrontierSizesJSON,
	)
	return err
}

// Recent returns the most recent runs, newest first, up to limit rows.
// Returns (nil, nil) on a nil Store.
func (s *Store) Recent(limit int) ([]Run, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.sql.Query(`
		SELECT id, started_at, duration_ms, assets, precision_step, hull_layers,
		       years_selector, total_allocations, axes_json, frontier_sizes_json
		  FROM run_history
		 ORDER BY started_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.StartedAt, &r.DurationMS, &r.Assets, &r.PrecisionStep, &r.HullLayers,
			&r.YearsSelector, &r.TotalAllocations, &r.AxesJSON, &r.FrontierSizesJSON,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
