package driven

import (
	"context"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

// HybridIndex stores index entries and serves combined keyword + vector
// queries over them. Fusing the two relevance signals into one ranking is
// the index's responsibility; callers submit both signals in a single
// request and receive one ranked list.
//
// Implementations may include:
//   - Postgres with pgvector (persistent)
//   - In-memory index (serve mode and tests)
type HybridIndex interface {
	// EnsureSchema creates the index schema (fields plus vector
	// configuration of the given dimensionality) if it does not already
	// exist. Idempotent; safe to invoke on every run.
	EnsureSchema(ctx context.Context, dimensions int) error

	// Upsert writes a batch of entries. Entries with existing ids are
	// overwritten in place, so repeated writes are idempotent.
	Upsert(ctx context.Context, entries []domain.IndexEntry) error

	// Search executes one combined query: keywordText for lexical matching
	// and vector for nearest-neighbour matching, returning at most topK
	// rows ranked by fused relevance descending. An empty result is a
	// valid outcome, not an error.
	Search(ctx context.Context, keywordText string, vector []float32, topK int) ([]domain.RetrievedChunk, error)

	// DeleteFrom removes every entry of sourcePath whose chunk index is
	// at or above fromIndex. Used to drop stale chunks when a document
	// shrinks (fromIndex = new chunk count) or disappears (fromIndex = 0).
	DeleteFrom(ctx context.Context, sourcePath string, fromIndex int) error

	// Count returns the number of entries in the index.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
