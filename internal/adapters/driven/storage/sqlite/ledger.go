package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/recall-labs/recall-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.IngestLedger = (*Ledger)(nil)

// Ledger is a SQLite-backed ingest ledger. It records the index state of
// each document and the history of ingest runs, surviving across CLI
// invocations so changed-only indexing works session to session.
type Ledger struct {
	db   *sql.DB
	path string
}

// NewLedger opens the ledger database in the specified data directory.
// If dataDir is empty, defaults to ~/.recall/data/ledger.db.
func NewLedger(dataDir string) (*Ledger, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recall", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ledger.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	l := &Ledger{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := l.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// IndexedState returns the recorded state for a document.
func (l *Ledger) IndexedState(ctx context.Context, sourcePath string) (*domain.IndexedState, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT source_path, content_md5, chunk_count, indexed_at
		FROM index_state WHERE source_path = ?
	`, sourcePath)

	var state domain.IndexedState
	var indexedAt sql.NullTime
	if err := row.Scan(&state.SourcePath, &state.ContentMD5, &state.ChunkCount, &indexedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: no indexed state for %s", domain.ErrNotFound, sourcePath)
		}
		return nil, fmt.Errorf("scanning index state: %w", err)
	}

	if indexedAt.Valid {
		state.IndexedAt = indexedAt.Time
	}

	return &state, nil
}

// SetIndexedState records the state for a document, overwriting any
// previous record.
func (l *Ledger) SetIndexedState(ctx context.Context, state domain.IndexedState) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO index_state (source_path, content_md5, chunk_count, indexed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_path) DO UPDATE SET
			content_md5 = excluded.content_md5,
			chunk_count = excluded.chunk_count,
			indexed_at = excluded.indexed_at
	`, state.SourcePath, state.ContentMD5, state.ChunkCount, state.IndexedAt)

	if err != nil {
		return fmt.Errorf("saving index state: %w", err)
	}
	return nil
}

// DeleteIndexedState removes the record for a document.
// Deleting an absent record is not an error.
func (l *Ledger) DeleteIndexedState(ctx context.Context, sourcePath string) error {
	_, err := l.db.ExecContext(ctx, "DELETE FROM index_state WHERE source_path = ?", sourcePath)
	if err != nil {
		return fmt.Errorf("deleting index state: %w", err)
	}
	return nil
}

// RecordRun appends a run to the history.
func (l *Ledger) RecordRun(ctx context.Context, run domain.IngestRun) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, kind, started_at, finished_at, processed, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Kind, run.StartedAt, run.FinishedAt, run.Processed, run.Skipped, run.Failed)

	if err != nil {
		return fmt.Errorf("recording ingest run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (l *Ledger) RecentRuns(ctx context.Context, limit int) ([]domain.IngestRun, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as no limit
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, kind, started_at, finished_at, processed, skipped, failed
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IngestRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		var run domain.IngestRun
		var startedAt, finishedAt sql.NullTime
		if err := rows.Scan(&run.ID, &run.Kind, &startedAt, &finishedAt,
			&run.Processed, &run.Skipped, &run.Failed); err != nil {
			return nil, fmt.Errorf("scanning ingest run: %w", err)
		}
		if startedAt.Valid {
			run.StartedAt = startedAt.Time
		}
		if finishedAt.Valid {
			run.FinishedAt = finishedAt.Time
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingest runs: %w", err)
	}

	return runs, nil
}

// migrate brings the schema up to the latest version. Migration files
// carry a numeric prefix; anything at or below the recorded version is
// skipped, and each applied file is recorded so later opens skip it too.
func (l *Ledger) migrate(fsys embed.FS) error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := l.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}

	for _, name := range names {
		version := migrationVersion(name)
		if version == 0 || version <= current {
			continue
		}

		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := l.db.Exec(string(script)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := l.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// migrationVersion parses the numeric prefix of a migration file name.
// Files without one yield 0 and are ignored.
func migrationVersion(name string) int {
	var v int
	if _, err := fmt.Sscanf(name, "%d_", &v); err != nil {
		return 0
	}
	return v
}
