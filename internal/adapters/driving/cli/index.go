package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

var indexFull bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the corpus for retrieval",
	Long: `Chunks, embeds, and writes every stored document to the hybrid index.
Documents whose content has not changed since the last build are skipped;
pass --full to re-embed everything from scratch.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexFull, "full", false, "re-embed every document, ignoring recorded index state")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := ensureIngestServices(ctx); err != nil {
		return err
	}

	cmd.Println("Building index...")

	if err := indexWithProgress(ctx, cmd, domain.IndexOptions{Full: indexFull}); err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	status := ingestService.IndexStatus()
	cmd.Printf("Index complete: %d documents (%d chunks), %d skipped, %d failed.\n",
		status.DocumentsIndexed, status.ChunksIndexed, status.DocumentsSkipped, status.ErrorCount)
	return nil
}

// indexWithProgress runs the build while displaying progress updates.
func indexWithProgress(ctx context.Context, cmd *cobra.Command, opts domain.IndexOptions) error {
	// Start build in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- ingestService.BuildIndex(ctx, opts)
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastChunks := 0
	for {
		select {
		case err := <-errCh:
			return err
		case <-ticker.C:
			status := ingestService.IndexStatus()
			if status.ChunksIndexed > lastChunks {
				cmd.Printf("\rIndexing... %d documents, %d chunks", status.DocumentsIndexed, status.ChunksIndexed)
				lastChunks = status.ChunksIndexed
			}
		}
	}
}
