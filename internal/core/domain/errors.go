package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfiguration indicates settings that can never work,
	// such as a chunk overlap at or above the chunk size. Fatal at startup.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidQuery indicates an unanswerable query: a question below the
	// minimum length or a top-k outside the allowed range. Reported to the
	// caller, never retried.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmbeddingService indicates the embedding endpoint failed.
	// Transient; ingestion retries with bounded backoff, queries abort.
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrGenerationService indicates the generation endpoint failed.
	// No fallback answer is synthesised in its place.
	ErrGenerationService = errors.New("generation service failure")

	// ErrIndexWrite indicates a batch flush to the hybrid index failed.
	// Writes are idempotent upserts, so retrying the batch is safe.
	ErrIndexWrite = errors.New("index write failure")

	// ErrIngestInProgress indicates an ingestion run is already active.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no generation service is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrIndexUnavailable indicates no hybrid index is configured.
	ErrIndexUnavailable = errors.New("hybrid index unavailable")
)

// IndexWriteError reports a failed batch flush. Unconfirmed is the number of
// entries in the batch not yet confirmed persisted.
type IndexWriteError struct {
	Unconfirmed int
	Err         error
}

// Error implements the error interface.
func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("index write failure: %d entries unconfirmed: %v", e.Unconfirmed, e.Err)
}

// Unwrap exposes both the ErrIndexWrite sentinel and the underlying cause.
func (e *IndexWriteError) Unwrap() []error {
	return []error{ErrIndexWrite, e.Err}
}
