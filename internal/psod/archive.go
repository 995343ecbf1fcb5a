package psod

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

// Archive stores the final result of terminal runs. Only final results are
// written; per-iteration state is never persisted.
type Archive interface {
	Save(ctx context.Context, run *models.ArchivedRun) error
	Get(ctx context.Context, id string) (*models.ArchivedRun, error)
	List(ctx context.Context, limit int) ([]*models.ArchivedRun, error)
	Close() error
}

// SQLiteArchive implements Archive using SQLite.
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLiteArchive opens or creates the archive database at dbPath. Parent
// directories are created if they do not exist.
func NewSQLiteArchive(dbPath string) (*SQLiteArchive, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initArchiveSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return &SQLiteArchive{db: db}, nil
}

func initArchiveSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		objective TEXT NOT NULL,
		status TEXT NOT NULL,
		state TEXT NOT NULL,
		position TEXT NOT NULL,
		value REAL NOT NULL,
		iterations INTEGER NOT NULL,
		converged_at INTEGER NOT NULL,
		params TEXT NOT NULL,
		archived_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_archived_at ON runs(archived_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Save inserts or replaces the archived result of a run.
func (a *SQLiteArchive) Save(ctx context.Context, run *models.ArchivedRun) error {
	position, err := json.Marshal(run.Position)
	if err != nil {
		return fmt.Errorf("failed to marshal position: %w", err)
	}
	if run.ArchivedAt.IsZero() {
		run.ArchivedAt = time.Now().UTC()
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs
		 (id, objective, status, state, position, value, iterations, converged_at, params, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Objective, string(run.Status), run.State, string(position),
		run.Value, run.Iterations, run.ConvergedAt, run.Params, run.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive run %s: %w", run.ID, err)
	}
	return nil
}

// Get returns one archived run.
func (a *SQLiteArchive) Get(ctx context.Context, id string) (*models.ArchivedRun, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, objective, status, state, position, value, iterations, converged_at, params, archived_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanArchivedRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// List returns the most recently archived runs first.
func (a *SQLiteArchive) List(ctx context.Context, limit int) ([]*models.ArchivedRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, objective, status, state, position, value, iterations, converged_at, params, archived_at
		 FROM runs ORDER BY archived_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.ArchivedRun, 0)
	for rows.Next() {
		run, err := scanArchivedRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Close closes the database.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArchivedRun(row scanner) (*models.ArchivedRun, error) {
	var run models.ArchivedRun
	var status, position string
	if err := row.Scan(&run.ID, &run.Objective, &status, &run.State, &position,
		&run.Value, &run.Iterations, &run.ConvergedAt, &run.Params, &run.ArchivedAt); err != nil {
		return nil, err
	}
	run.Status = models.RunStatus(status)
	if err := json.Unmarshal([]byte(position), &run.Position); err != nil {
		return nil, fmt.Errorf("failed to unmarshal position: %w", err)
	}
	return &run, nil
}
