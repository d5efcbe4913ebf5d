package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
	"github.com/recall-labs/recall-cli/internal/logger"
)

// Embedding retry bounds for bulk ingestion. Failures past the last
// attempt count the document failed; the run continues.
const (
	embedAttempts   = 3
	embedRetryDelay = 500 * time.Millisecond
)

// docResult carries one document's freshly embedded entries from a worker
// to the collector. Entries keep their (path, index) identity, so
// re-association after concurrent embedding is structural, not positional.
type docResult struct {
	path      string
	md5       string
	entries   []domain.IndexEntry
	remaining int
	failed    bool
}

// BuildIndex chunks, embeds, and upserts every stored document. Unchanged
// documents are skipped unless opts.Full is set. Workers embed documents
// concurrently; a single collector goroutine batches entries and flushes
// idempotent upserts, so per-document failures never abort the run.
func (i *Ingest) BuildIndex(ctx context.Context, opts domain.IndexOptions) error {
	if err := i.begin(); err != nil {
		return err
	}
	defer i.end()

	started := time.Now()
	i.bumpIndex(func(s *domain.IndexStatus) { *s = domain.IndexStatus{Running: true} })
	defer i.bumpIndex(func(s *domain.IndexStatus) { s.Running = false })

	if err := i.index.EnsureSchema(ctx, i.embedder.Dimensions()); err != nil {
		return fmt.Errorf("ensure index schema: %w", err)
	}

	blobs, err := i.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	logger.Info("Indexing %d documents (%d workers, batches of %d)", len(blobs), i.workers, i.batchSize)

	jobs := make(chan driven.BlobInfo)
	results := make(chan *docResult)

	var wg sync.WaitGroup
	for w := 0; w < i.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for blob := range jobs {
				res := i.processDocument(ctx, blob, opts.Full)
				if res == nil {
					continue
				}
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	collectDone := make(chan struct{})
	go func() {
		defer close(collectDone)
		i.collect(ctx, results)
	}()

	for _, blob := range blobs {
		select {
		case jobs <- blob:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	<-collectDone

	if err := ctx.Err(); err != nil {
		return err
	}

	status := i.IndexStatus()
	i.recordRun(ctx, domain.RunKindIndex, started, status.DocumentsIndexed, status.DocumentsSkipped, status.ErrorCount)
	logger.Info("Index build complete: %d documents, %d skipped, %d chunks, %d errors",
		status.DocumentsIndexed, status.DocumentsSkipped, status.ChunksIndexed, status.ErrorCount)
	return nil
}

// processDocument turns one stored blob into embedded index entries.
// Returns nil when the document was skipped as unchanged or failed; the
// status counters already reflect either outcome.
func (i *Ingest) processDocument(ctx context.Context, blob driven.BlobInfo, full bool) *docResult {
	md5 := blob.Metadata[domain.MetaContentMD5]

	state, stateErr := i.ledger.IndexedState(ctx, blob.Name)
	if !full && stateErr == nil && md5 != "" && state.ContentMD5 == md5 {
		logger.Debug("Skipping %s: unchanged", blob.Name)
		i.bumpIndex(func(s *domain.IndexStatus) { s.DocumentsSkipped++ })
		return nil
	}

	data, err := i.store.Read(ctx, blob.Name)
	if err != nil {
		logger.Warn("Failed to read %s: %v", blob.Name, err)
		i.bumpIndex(func(s *domain.IndexStatus) { s.ErrorCount++ })
		return nil
	}
	if md5 == "" {
		md5 = domain.HashContent(data)
	}

	doc := domain.Document{
		SourcePath: blob.Name,
		Title:      blob.Metadata[domain.MetaTitle],
		Tags:       domain.ParseTags(blob.Metadata[domain.MetaTags]),
		Content:    string(data),
		ContentMD5: md5,
	}
	if doc.Title == "" {
		doc.Title = doc.SourcePath
	}

	chunks := i.splitter.Chunk(doc)
	entries, err := i.embedChunks(ctx, doc, chunks)
	if err != nil {
		logger.Warn("Failed to embed %s: %v", blob.Name, err)
		i.bumpIndex(func(s *domain.IndexStatus) { s.ErrorCount++ })
		return nil
	}

	// The document shrank: entries at or past the new chunk count are
	// stale and would otherwise linger beside the fresh upserts.
	if stateErr == nil && len(chunks) < state.ChunkCount {
		if err := i.index.DeleteFrom(ctx, blob.Name, len(chunks)); err != nil {
			logger.Warn("Failed to prune stale chunks of %s: %v", blob.Name, err)
		}
	}

	return &docResult{path: blob.Name, md5: md5, entries: entries, remaining: len(entries)}
}

// embedChunks embeds a document's chunks in one batched call and builds
// the index entries.
func (i *Ingest) embedChunks(ctx context.Context, doc domain.Document, chunks []domain.Chunk) ([]domain.IndexEntry, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for idx, chunk := range chunks {
		texts[idx] = chunk.Content
	}

	vectors, err := i.embedWithRetry(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingService, len(vectors), len(chunks))
	}

	entries := make([]domain.IndexEntry, len(chunks))
	for idx, chunk := range chunks {
		entries[idx] = domain.IndexEntry{
			ID:         chunk.ID(),
			Title:      doc.Title,
			Tags:       doc.Tags,
			Content:    chunk.Content,
			SourcePath: chunk.SourcePath,
			ChunkIndex: chunk.Index,
			Embedding:  vectors[idx],
		}
	}
	return entries, nil
}

// embedWithRetry calls the embedding service with bounded, context-aware
// retries. The shared limiter paces every attempt.
func (i *Ingest) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= embedAttempts; attempt++ {
		if err := i.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		vectors, err := i.embedder.EmbedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if attempt < embedAttempts {
			logger.Debug("Embedding attempt %d/%d failed, retrying: %v", attempt, embedAttempts, err)
			select {
			case <-time.After(time.Duration(attempt) * i.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", embedAttempts, lastErr)
}

// collect receives per-document results, accumulates entries, and flushes
// a full batch as soon as one is ready, then the remainder when the
// channel closes. Runs in its own goroutine; exclusive owner of the batch.
func (i *Ingest) collect(ctx context.Context, results <-chan *docResult) {
	batch := make([]domain.IndexEntry, 0, i.batchSize)
	var open []*docResult

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if ctx.Err() != nil {
			batch = batch[:0]
			open = nil
			return
		}
		if err := i.limiter.Wait(ctx); err != nil {
			batch = batch[:0]
			open = nil
			return
		}

		err := i.index.Upsert(ctx, batch)
		if err != nil {
			logger.Warn("Flush failed: %v", &domain.IndexWriteError{Unconfirmed: len(batch), Err: err})
		} else {
			flushed := len(batch)
			i.bumpIndex(func(s *domain.IndexStatus) { s.ChunksIndexed += flushed })
		}
		open = i.settle(ctx, open, len(batch), err == nil)
		batch = batch[:0]
	}

	for res := range results {
		if len(res.entries) == 0 {
			// Nothing to flush for an empty document, but its state is
			// still worth recording so the next run skips it.
			i.confirmDocument(ctx, res.path, res.md5, 0)
			continue
		}
		open = append(open, res)
		for _, entry := range res.entries {
			batch = append(batch, entry)
			if len(batch) == i.batchSize {
				flush()
			}
		}
	}
	flush()
}

// settle credits flushed entries to their documents in arrival order. A
// document whose entries are all confirmed gets its ledger state written;
// a document touched by a failed flush is counted failed exactly once and
// left for the next run to retry.
func (i *Ingest) settle(ctx context.Context, open []*docResult, flushed int, ok bool) []*docResult {
	for flushed > 0 && len(open) > 0 {
		doc := open[0]
		n := doc.remaining
		if n > flushed {
			n = flushed
		}
		doc.remaining -= n
		flushed -= n

		if !ok && !doc.failed {
			doc.failed = true
			i.bumpIndex(func(s *domain.IndexStatus) { s.ErrorCount++ })
		}
		if doc.remaining > 0 {
			// The document's tail is still waiting in a later batch.
			break
		}
		if !doc.failed {
			i.confirmDocument(ctx, doc.path, doc.md5, len(doc.entries))
		}
		open = open[1:]
	}
	return open
}
