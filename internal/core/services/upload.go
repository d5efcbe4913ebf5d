package services

import (
	"context"
	"fmt"
	"time"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/logger"
	"github.com/recall-labs/recall-cli/internal/vault"
)

// UploadVault scans dir for markdown notes and writes new or changed ones
// to the blob store. A note whose content hash matches the stored blob is
// skipped. Per-file failures are logged and counted, never fatal to the
// run.
func (i *Ingest) UploadVault(ctx context.Context, dir string) error {
	if err := i.begin(); err != nil {
		return err
	}
	defer i.end()

	started := time.Now()
	i.bumpUpload(func(s *domain.UploadStatus) { *s = domain.UploadStatus{Running: true} })
	defer i.bumpUpload(func(s *domain.UploadStatus) { s.Running = false })

	paths, err := vault.Scan(dir)
	if err != nil {
		return fmt.Errorf("scan vault: %w", err)
	}
	i.bumpUpload(func(s *domain.UploadStatus) { s.FilesSeen = len(paths) })
	logger.Info("Uploading %d notes from %s", len(paths), dir)

	var uploaded, skipped, failed int
	for _, relPath := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		note, err := vault.LoadNote(dir, relPath)
		if err != nil {
			failed++
			i.bumpUpload(func(s *domain.UploadStatus) { s.Failed++ })
			logger.Warn("Failed to load %s: %v", relPath, err)
			continue
		}
		doc := note.Document()

		if !i.blobChanged(ctx, doc) {
			skipped++
			i.bumpUpload(func(s *domain.UploadStatus) { s.Skipped++ })
			logger.Debug("Skipping %s: unchanged", relPath)
			continue
		}

		if err := i.store.Write(ctx, doc.SourcePath, []byte(doc.Content), doc.Metadata()); err != nil {
			failed++
			i.bumpUpload(func(s *domain.UploadStatus) { s.Failed++ })
			logger.Warn("Failed to upload %s: %v", relPath, err)
			continue
		}
		uploaded++
		i.bumpUpload(func(s *domain.UploadStatus) { s.Uploaded++ })
		logger.Debug("Uploaded %s", relPath)
	}

	i.recordRun(ctx, domain.RunKindUpload, started, uploaded, skipped, failed)
	logger.Info("Upload complete: %d uploaded, %d skipped, %d failed", uploaded, skipped, failed)
	return nil
}

// blobChanged reports whether the stored blob differs from the note. A
// missing blob or unreadable metadata counts as changed so the upload
// proceeds.
func (i *Ingest) blobChanged(ctx context.Context, doc domain.Document) bool {
	meta, err := i.store.Metadata(ctx, doc.SourcePath)
	if err != nil || meta == nil {
		return true
	}
	return meta[domain.MetaContentMD5] != doc.ContentMD5
}
