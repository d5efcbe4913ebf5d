package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
	"github.com/recall-labs/recall-cli/internal/core/ports/driving"
	"github.com/recall-labs/recall-cli/internal/logger"
	"github.com/recall-labs/recall-cli/internal/postprocessors/chunker"
	"github.com/recall-labs/recall-cli/internal/vault"
)

// Ensure Ingest implements the interface.
var _ driving.IngestService = (*Ingest)(nil)

// Ingest moves notes from the vault into the corpus store and from the
// corpus store into the hybrid index. Bulk runs are exclusive: starting one
// while another is active fails with domain.ErrIngestInProgress.
type Ingest struct {
	store    driven.BlobStore
	ledger   driven.IngestLedger
	embedder driven.EmbeddingService
	index    driven.HybridIndex
	splitter *chunker.Processor
	limiter  *rate.Limiter

	batchSize  int
	workers    int
	retryDelay time.Duration

	mu         sync.RWMutex
	active     bool
	uploadStat domain.UploadStatus
	indexStat  domain.IndexStatus
}

// NewIngest creates the ingest service. The rate in settings paces
// embedding calls and batch flushes; zero or negative disables pacing.
func NewIngest(
	store driven.BlobStore,
	ledger driven.IngestLedger,
	embedder driven.EmbeddingService,
	index driven.HybridIndex,
	splitter *chunker.Processor,
	settings domain.IngestSettings,
) *Ingest {
	limit := rate.Inf
	if settings.RatePerSecond > 0 {
		limit = rate.Limit(settings.RatePerSecond)
	}

	batchSize := settings.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	workers := settings.Workers
	if workers <= 0 {
		workers = 4
	}

	return &Ingest{
		store:      store,
		ledger:     ledger,
		embedder:   embedder,
		index:      index,
		splitter:   splitter,
		limiter:    rate.NewLimiter(limit, 1),
		batchSize:  batchSize,
		workers:    workers,
		retryDelay: embedRetryDelay,
	}
}

// IngestFile uploads and indexes a single vault file. Used by watch mode
// when a note is created or modified.
func (i *Ingest) IngestFile(ctx context.Context, dir, relPath string) error {
	if err := i.begin(); err != nil {
		return err
	}
	defer i.end()

	note, err := vault.LoadNote(dir, relPath)
	if err != nil {
		return err
	}
	doc := note.Document()

	if err := i.store.Write(ctx, doc.SourcePath, []byte(doc.Content), doc.Metadata()); err != nil {
		return fmt.Errorf("write document %s: %w", doc.SourcePath, err)
	}

	if err := i.index.EnsureSchema(ctx, i.embedder.Dimensions()); err != nil {
		return fmt.Errorf("ensure index schema: %w", err)
	}

	chunks := i.splitter.Chunk(doc)
	entries, err := i.embedChunks(ctx, doc, chunks)
	if err != nil {
		return fmt.Errorf("embed %s: %w", doc.SourcePath, err)
	}

	if state, err := i.ledger.IndexedState(ctx, doc.SourcePath); err == nil && len(chunks) < state.ChunkCount {
		if err := i.index.DeleteFrom(ctx, doc.SourcePath, len(chunks)); err != nil {
			return fmt.Errorf("prune stale chunks of %s: %w", doc.SourcePath, err)
		}
	}

	if len(entries) > 0 {
		if err := i.index.Upsert(ctx, entries); err != nil {
			return &domain.IndexWriteError{Unconfirmed: len(entries), Err: err}
		}
	}

	i.confirmDocument(ctx, doc.SourcePath, doc.ContentMD5, len(chunks))
	logger.Debug("Ingested %s: %d chunks", doc.SourcePath, len(chunks))
	return nil
}

// RemoveFile drops a document from the store, the index, and the ledger.
// Used by watch mode when a note is deleted. Removing an absent document
// is not an error.
func (i *Ingest) RemoveFile(ctx context.Context, relPath string) error {
	if err := i.begin(); err != nil {
		return err
	}
	defer i.end()

	if err := i.store.Delete(ctx, relPath); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete document %s: %w", relPath, err)
	}
	if err := i.index.DeleteFrom(ctx, relPath, 0); err != nil {
		return fmt.Errorf("remove %s from index: %w", relPath, err)
	}
	if err := i.ledger.DeleteIndexedState(ctx, relPath); err != nil {
		return fmt.Errorf("clear index state of %s: %w", relPath, err)
	}

	logger.Debug("Removed %s", relPath)
	return nil
}

// UploadStatus returns a snapshot of the current or last upload.
func (i *Ingest) UploadStatus() domain.UploadStatus {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.uploadStat
}

// IndexStatus returns a snapshot of the current or last index build.
func (i *Ingest) IndexStatus() domain.IndexStatus {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.indexStat
}

// begin claims the single ingestion slot.
func (i *Ingest) begin() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.active {
		return domain.ErrIngestInProgress
	}
	i.active = true
	return nil
}

// end releases the ingestion slot.
func (i *Ingest) end() {
	i.mu.Lock()
	i.active = false
	i.mu.Unlock()
}

// bumpUpload mutates the upload status under the lock.
func (i *Ingest) bumpUpload(update func(*domain.UploadStatus)) {
	i.mu.Lock()
	update(&i.uploadStat)
	i.mu.Unlock()
}

// bumpIndex mutates the index status under the lock.
func (i *Ingest) bumpIndex(update func(*domain.IndexStatus)) {
	i.mu.Lock()
	update(&i.indexStat)
	i.mu.Unlock()
}

// confirmDocument records a document as indexed in the ledger.
func (i *Ingest) confirmDocument(ctx context.Context, path, md5 string, chunkCount int) {
	state := domain.IndexedState{
		SourcePath: path,
		ContentMD5: md5,
		ChunkCount: chunkCount,
		IndexedAt:  time.Now().UTC(),
	}
	if err := i.ledger.SetIndexedState(ctx, state); err != nil {
		logger.Warn("Failed to record index state for %s: %v", path, err)
	}
	i.bumpIndex(func(s *domain.IndexStatus) { s.DocumentsIndexed++ })
}

// recordRun appends a run record to the ledger. Failures are logged, not
// returned: the run itself already succeeded or failed on its own terms.
func (i *Ingest) recordRun(ctx context.Context, kind string, started time.Time, processed, skipped, failed int) {
	run := domain.IngestRun{
		ID:         uuid.NewString(),
		Kind:       kind,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Processed:  processed,
		Skipped:    skipped,
		Failed:     failed,
	}
	if err := i.ledger.RecordRun(ctx, run); err != nil {
		logger.Warn("Failed to record %s run: %v", kind, err)
	}
}
