// Package history implements SQLite persistence for download runs.
//
// Each download run records one row per processed track so later runs can
// be inspected with the history command. Runs and their outcomes are
// append-only; nothing here is read back by the pipeline itself.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/fetch"
)

// Run is one recorded download pass.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Playlists  int
	Tracks     int
}

// OutcomeRow is one track's result within a run.
type OutcomeRow struct {
	RunID    string
	Playlist string
	Track    string
	Artist   string
	Outcome  string
	Path     string
	Message  string
}

// Store persists runs and per-track outcomes.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store and ensures its schema exists.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			playlists INTEGER NOT NULL,
			tracks INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS outcomes (
			run_id TEXT NOT NULL REFERENCES runs(id),
			playlist TEXT NOT NULL,
			track TEXT NOT NULL,
			artist TEXT NOT NULL,
			outcome TEXT NOT NULL,
			path TEXT,
			message TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// RecordRun inserts a run and all of its track outcomes in one transaction.
func (s *Store) RecordRun(run Run, results []fetch.TrackResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, finished_at, playlists, tracks) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Playlists, run.Tracks,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO outcomes (run_id, playlist, track, artist, outcome, path, message) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range results {
		var path any = res.Path
		if res.Path == "" {
			path = nil
		}
		var message any = res.Message
		if res.Message == "" {
			message = nil
		}
		if _, err := stmt.Exec(run.ID, res.Playlist, res.Track, res.Artist, res.Outcome.String(), path, message); err != nil {
			return fmt.Errorf("failed to insert outcome: %w", err)
		}
	}

	return tx.Commit()
}

// Runs lists recorded runs, most recent first.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, playlists, tracks FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Playlists, &run.Tracks); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Outcomes lists the per-track results of one run in insertion order.
func (s *Store) Outcomes(runID string) ([]OutcomeRow, error) {
	rows, err := s.db.Query(
		`SELECT run_id, playlist, track, artist, outcome, COALESCE(path, ''), COALESCE(message, '') FROM outcomes WHERE run_id = ?`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []OutcomeRow
	for rows.Next() {
		var row OutcomeRow
		if err := rows.Scan(&row.RunID, &row.Playlist, &row.Track, &row.Artist, &row.Outcome, &row.Path, &row.Message); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, row)
	}

	return outcomes, rows.Err()
}

// Summary counts outcomes by kind for one run.
func (s *Store) Summary(runID string) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT outcome, COUNT(*) FROM outcomes WHERE run_id = ? GROUP BY outcome`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer rows.Close()

	summary := map[string]int{}
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summary[outcome] = count
	}

	return summary, rows.Err()
}
