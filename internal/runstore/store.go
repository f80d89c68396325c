package runstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"steeple/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases with a different version are rejected.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Mode identifies which reconciliation flow produced a run.
type Mode string

const (
	ModeBackfill Mode = "backfill"
	ModeLive     Mode = "live"
)

// Action classifies what happened to one service date during a run.
type Action string

const (
	ActionExisting Action = "existing"
	ActionCreated  Action = "created"
	ActionNotFound Action = "not_found"
	ActionUpdated  Action = "updated"
	ActionUnknown  Action = "unknown"
	ActionFailed   Action = "failed"
)

// Run is one recorded invocation of a reconciliation flow.
type Run struct {
	ID         string
	Mode       Mode
	StartedAt  time.Time
	FinishedAt time.Time
	DatesTotal int
	DatesOK    int
	OK         bool
}

// Outcome is the recorded result for one service date within a run.
type Outcome struct {
	ServiceDate string
	Action      Action
	EpisodeID   string
	VideoID     string
	Reason      string
	Detail      string
}

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database in the data directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.DataDir, "runs.db"))
}

// OpenPath opens the run database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// BeginRun inserts a new open run and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, mode Mode) (string, error) {
	id := uuid.NewString()
	startedAt := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, mode, started_at) VALUES (?, ?, ?)",
		id, string(mode), startedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordOutcome appends one per-date outcome to a run.
func (s *Store) RecordOutcome(ctx context.Context, runID string, outcome Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, service_date, action, episode_id, video_id, reason, detail)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, outcome.ServiceDate, string(outcome.Action),
		outcome.EpisodeID, outcome.VideoID, outcome.Reason, outcome.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// FinishRun closes a run with its final totals.
func (s *Store) FinishRun(ctx context.Context, runID string, datesTotal, datesOK int, ok bool) error {
	finishedAt := time.Now().UTC().Format(time.RFC3339Nano)
	okValue := 0
	if ok {
		okValue = 1
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, dates_total = ?, dates_ok = ?, ok = ? WHERE id = ?",
		finishedAt, datesTotal, datesOK, okValue, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: no run with id %s", runID)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, started_at, finished_at, dates_total, dates_ok, ok
         FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			mode       string
			startedAt  string
			finishedAt sql.NullString
			okValue    int
		)
		if err := rows.Scan(&run.ID, &mode, &startedAt, &finishedAt, &run.DatesTotal, &run.DatesOK, &okValue); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Mode = Mode(mode)
		run.OK = okValue != 0
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if finishedAt.Valid && finishedAt.String != "" {
			if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt.String); err != nil {
				return nil, fmt.Errorf("parse finished_at: %w", err)
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunOutcomes returns the per-date outcomes of one run in insertion order.
func (s *Store) RunOutcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT service_date, action, episode_id, video_id, reason, detail
         FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var (
			outcome Outcome
			action  string
		)
		if err := rows.Scan(&outcome.ServiceDate, &action, &outcome.EpisodeID,
			&outcome.VideoID, &outcome.Reason, &outcome.Detail); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcome.Action = Action(action)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}
