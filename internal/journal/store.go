package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mural/internal/config"
)

// Run statuses. These mirror the engine's terminal statuses plus the
// transient "running" row a crash leaves behind.
const (
	StatusRunning = "running"
	StatusFailed  = "failed"
)

// Run is one journaled engine invocation.
type Run struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	AppliedID  uint64
	Fetched    int
	Filtered   int
	Attempted  int
	Trace      string
	Error      string
}

// Summary carries the terminal facts of an invocation into Finish.
type Summary struct {
	Status    string
	AppliedID uint64
	Fetched   int
	Filtered  int
	Attempted int
	Trace     []string
	Error     error
}

// Store persists the run journal in SQLite. The journal is diagnostic only;
// rotation correctness never reads it.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "journal.db"))
}

// OpenPath opens a journal database at an explicit location.
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
	if err := store.applyMigrations(context.Background()); err != nil {
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

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// RecordStart inserts a running row and returns its run id.
func (s *Store) RecordStart(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	started := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, status) VALUES (?, ?, ?)`,
		runID, started, StatusRunning,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// Finish closes out a run with its terminal facts.
func (s *Store) Finish(ctx context.Context, runID string, summary Summary) error {
	finished := time.Now().UTC().Format(time.RFC3339Nano)
	var errText sql.NullString
	if summary.Error != nil {
		errText = sql.NullString{String: summary.Error.Error(), Valid: true}
	}
	var applied sql.NullInt64
	if summary.AppliedID != 0 {
		applied = sql.NullInt64{Int64: int64(summary.AppliedID), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, applied_id = ?,
			fetched = ?, filtered = ?, attempted = ?, trace = ?, error = ?
		 WHERE run_id = ?`,
		finished, summary.Status, applied,
		summary.Fetched, summary.Filtered, summary.Attempted,
		strings.Join(summary.Trace, "\n"), errText, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: unknown run id %s", runID)
	}
	return nil
}

// Recent returns the newest runs first, up to limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, finished_at, status, applied_id,
			fetched, filtered, attempted, trace, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// LastRun returns the newest run, or nil when the journal is empty.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	runs, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// Prune removes finished runs older than maxAge.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) error {
	if maxAge <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE status != ? AND started_at < ?`,
		StatusRunning, cutoff,
	); err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		started    string
		finished   sql.NullString
		applied    sql.NullInt64
		trace      sql.NullString
		errText    sql.NullString
		fetched    sql.NullInt64
		filtered   sql.NullInt64
		attempted  sql.NullInt64
		parseError error
	)
	if err := row.Scan(&run.RunID, &started, &finished, &run.Status, &applied,
		&fetched, &filtered, &attempted, &trace, &errText); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.StartedAt, parseError = time.Parse(time.RFC3339Nano, started); parseError != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", parseError)
	}
	if finished.Valid && finished.String != "" {
		if run.FinishedAt, parseError = time.Parse(time.RFC3339Nano, finished.String); parseError != nil {
			return Run{}, fmt.Errorf("parse finished_at: %w", parseError)
		}
	}
	if applied.Valid {
		if applied.Int64 < 0 {
			return Run{}, errors.New("negative applied_id")
		}
		run.AppliedID = uint64(applied.Int64)
	}
	run.Fetched = int(fetched.Int64)
	run.Filtered = int(filtered.Int64)
	run.Attempted = int(attempted.Int64)
	run.Trace = trace.String
	run.Error = errText.String
	return run, nil
}
