package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq" // also registers the postgres driver
	"github.com/pgvector/pgvector-go"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.HybridIndex = (*Index)(nil)

// Index is a Postgres-backed hybrid index using pgvector for nearest
// neighbour search and built-in full-text search for keyword matching.
// One SQL query per search fuses the two rankings by reciprocal rank,
// so callers always receive a single combined ordering.
type Index struct {
	db *sql.DB
}

// NewIndex connects to Postgres using the given DSN and verifies the
// connection with a ping.
func NewIndex(ctx context.Context, dsn string) (*Index, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: index DSN is empty", domain.ErrInvalidConfiguration)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening index connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging index: %w", err)
	}

	return &Index{db: db}, nil
}

// EnsureSchema creates the entries table, the vector column of the given
// dimensionality and the supporting indexes. Idempotent; safe on every run.
// The dimensionality of an existing table is not altered.
func (idx *Index) EnsureSchema(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: index dimensions must be positive, got %d",
			domain.ErrInvalidConfiguration, dimensions)
	}

	if _, err := idx.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("creating vector extension: %w", err)
	}

	// Dimensionality is part of the column type, so it cannot be bound as
	// a query parameter.
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS index_entries (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			content TEXT NOT NULL,
			source_path TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			embedding vector(%d) NOT NULL,
			fts tsvector GENERATED ALWAYS AS (
				to_tsvector('english', coalesce(title, '') || ' ' || content)
			) STORED
		)
	`, dimensions)
	if _, err := idx.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("creating entries table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_entries_embedding ON index_entries USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_fts ON index_entries USING gin (fts)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_source ON index_entries (source_path, chunk_index)`,
	}
	for _, stmt := range indexes {
		if _, err := idx.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	return nil
}

// Upsert writes a batch of entries in one transaction. Entries with
// existing ids are overwritten in place.
func (idx *Index) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_entries (id, title, tags, content, source_path, chunk_index, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			tags = excluded.tags,
			content = excluded.content,
			source_path = excluded.source_path,
			chunk_index = excluded.chunk_index,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		tags := entry.Tags
		if tags == nil {
			tags = []string{}
		}
		if _, err := stmt.ExecContext(ctx, entry.ID, entry.Title, pq.Array(tags),
			entry.Content, entry.SourcePath, entry.ChunkIndex,
			pgvector.NewVector(entry.Embedding)); err != nil {
			return fmt.Errorf("upserting entry %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// searchQuery ranks entries lexically and semantically in two CTEs, then
// fuses the rankings with reciprocal rank scores (k = 60). An entry found
// by only one signal still scores through the full outer join.
const searchQuery = `
	WITH lexical AS (
		SELECT id, ROW_NUMBER() OVER (ORDER BY ts_rank(fts, query) DESC, id) AS rank
		FROM index_entries, plainto_tsquery('english', $1) query
		WHERE fts @@ query
		ORDER BY rank
		LIMIT $3
	),
	semantic AS (
		SELECT id, ROW_NUMBER() OVER (ORDER BY embedding <=> $2, id) AS rank
		FROM index_entries
		ORDER BY rank
		LIMIT $3
	),
	fused AS (
		SELECT COALESCE(l.id, s.id) AS id,
		       COALESCE(1.0 / (60 + l.rank), 0) + COALESCE(1.0 / (60 + s.rank), 0) AS score
		FROM lexical l
		FULL OUTER JOIN semantic s ON l.id = s.id
	)
	SELECT e.title, e.content, e.tags, e.source_path, f.score
	FROM fused f
	JOIN index_entries e ON e.id = f.id
	ORDER BY f.score DESC, e.id
	LIMIT $3
`

// Search executes one combined keyword + vector query, returning at most
// topK chunks ranked by fused relevance descending.
func (idx *Index) Search(ctx context.Context, keywordText string, vector []float32, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		return []domain.RetrievedChunk{}, nil
	}

	rows, err := idx.db.QueryContext(ctx, searchQuery,
		keywordText, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	results := make([]domain.RetrievedChunk, 0, topK)
	for rows.Next() {
		var chunk domain.RetrievedChunk
		var tags pq.StringArray
		if err := rows.Scan(&chunk.Title, &chunk.Content, &tags, &chunk.SourcePath, &chunk.Score); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		chunk.Tags = tags
		results = append(results, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}

// DeleteFrom removes every entry of sourcePath with chunk index >= fromIndex.
func (idx *Index) DeleteFrom(ctx context.Context, sourcePath string, fromIndex int) error {
	_, err := idx.db.ExecContext(ctx,
		`DELETE FROM index_entries WHERE source_path = $1 AND chunk_index >= $2`,
		sourcePath, fromIndex)
	if err != nil {
		return fmt.Errorf("deleting entries for %s: %w", sourcePath, err)
	}
	return nil
}

// Count returns the number of entries in the index.
func (idx *Index) Count(ctx context.Context) (int, error) {
	var count int
	if err := idx.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM index_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}
