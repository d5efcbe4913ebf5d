package driven

import (
	"context"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

// IngestLedger records what the index currently holds per document and a
// history of ingestion runs. It backs changed-only indexing (skip documents
// whose content hash matches) and stale-chunk pruning (the previous chunk
// count tells the indexer how far a shrunken document used to reach).
//
// Implementations may include:
//   - SQLite (default)
//   - In-memory (tests)
type IngestLedger interface {
	// IndexedState returns the recorded state for a document.
	// Returns domain.ErrNotFound if the document has never been indexed.
	IndexedState(ctx context.Context, sourcePath string) (*domain.IndexedState, error)

	// SetIndexedState records the state for a document, overwriting any
	// previous record.
	SetIndexedState(ctx context.Context, state domain.IndexedState) error

	// DeleteIndexedState removes the record for a document.
	// Deleting an absent record is not an error.
	DeleteIndexedState(ctx context.Context, sourcePath string) error

	// RecordRun appends a run to the history.
	RecordRun(ctx context.Context, run domain.IngestRun) error

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]domain.IngestRun, error)

	// Close releases resources.
	Close() error
}
