package driving

import (
	"context"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

// IngestService moves notes from the vault into the corpus store and from
// the corpus store into the hybrid index.
type IngestService interface {
	// UploadVault scans dir for markdown notes and writes new or changed
	// ones to the blob store. Per-file failures are counted, not fatal.
	UploadVault(ctx context.Context, dir string) error

	// BuildIndex chunks, embeds, and upserts every stored document.
	// Unchanged documents are skipped unless opts.Full is set.
	// Per-document failures are counted, not fatal.
	BuildIndex(ctx context.Context, opts domain.IndexOptions) error

	// IngestFile uploads and indexes a single vault file. Used by watch
	// mode when a note is created or modified.
	IngestFile(ctx context.Context, dir, relPath string) error

	// RemoveFile drops a document from the store, the index, and the
	// ledger. Used by watch mode when a note is deleted.
	RemoveFile(ctx context.Context, relPath string) error

	// UploadStatus returns a snapshot of the current or last upload.
	UploadStatus() domain.UploadStatus

	// IndexStatus returns a snapshot of the current or last index build.
	IndexStatus() domain.IndexStatus
}
