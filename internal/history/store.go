// Package history persists an audit trail of rename runs in SQLite:
// one row per run plus the itemized renames, collisions and errors it
// produced, so any past run can be reviewed from the CLI.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/batchrename/internal/rename"
)

// Store is a SQLite-backed audit store. Use ":memory:" for an
// in-memory database, or a file path for persistent storage.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Run is one recorded rename run.
type Run struct {
	ID           string
	Started      time.Time
	Folder       string
	Preview      bool
	FilesFound   int
	FilesRenamed int
	Collisions   int
	Errors       int
	Duration     time.Duration
}

// Entry is one recorded rename outcome within a run.
type Entry struct {
	RunID   string
	OldName string
	NewName string
	Status  string // renamed | preview | collision | error
	Detail  string
}

// Open creates or opens the audit store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started INTEGER NOT NULL,
		folder TEXT NOT NULL,
		preview INTEGER NOT NULL,
		files_found INTEGER NOT NULL,
		files_renamed INTEGER NOT NULL,
		collisions INTEGER NOT NULL,
		errors INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS renames (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		old_name TEXT NOT NULL,
		new_name TEXT NOT NULL,
		status TEXT NOT NULL,
		detail TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_renames_run ON renames(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record writes one run and its itemized outcomes.
func (s *Store) Record(ctx context.Context, cfg *rename.Config, result *rename.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started, folder, preview, files_found, files_renamed, collisions, errors, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().Unix(), cfg.InputFolder, boolInt(cfg.Preview),
		result.FilesFound, result.FilesRenamed, result.Collisions, result.Errors,
		result.ProcessingTime.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	status := "renamed"
	if cfg.Preview {
		status = "preview"
	}
	for _, pair := range result.PreviewData {
		if err := insertEntry(ctx, tx, runID, pair.OldName, pair.NewName, status, ""); err != nil {
			return "", err
		}
	}
	for _, col := range result.ExistingCollisions {
		if err := insertEntry(ctx, tx, runID, col.OldName, col.NewName, "collision", "target exists: "+col.NewPath); err != nil {
			return "", err
		}
	}
	for _, col := range result.InternalCollisions {
		for _, oldName := range col.OldNames {
			if err := insertEntry(ctx, tx, runID, oldName, col.NewName, "collision", "duplicate target within batch"); err != nil {
				return "", err
			}
		}
	}
	for _, detail := range result.ErrorDetails {
		if err := insertEntry(ctx, tx, runID, detail.File, "", "error", detail.Message); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit history transaction: %w", err)
	}
	return runID, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, runID, oldName, newName, status, detail string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO renames (run_id, old_name, new_name, status, detail) VALUES (?, ?, ?, ?, ?)",
		runID, oldName, newName, status, detail,
	)
	if err != nil {
		return fmt.Errorf("insert rename entry: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started, folder, preview, files_found, files_renamed, collisions, errors, duration_ms
		 FROM runs ORDER BY started DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started int64
		var preview int
		var durationMS int64
		if err := rows.Scan(&run.ID, &started, &run.Folder, &preview, &run.FilesFound,
			&run.FilesRenamed, &run.Collisions, &run.Errors, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Started = time.Unix(started, 0)
		run.Preview = preview != 0
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Entries returns the itemized outcomes for one run.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, old_name, new_name, status, detail FROM renames WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("query rename entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var detail sql.NullString
		if err := rows.Scan(&e.RunID, &e.OldName, &e.NewName, &e.Status, &detail); err != nil {
			return nil, fmt.Errorf("scan rename entry: %w", err)
		}
		e.Detail = detail.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
