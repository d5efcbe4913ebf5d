package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recall-labs/recall-cli/internal/vault"
)

var watchCmd = &cobra.Command{
	Use:   "watch [vault-dir]",
	Short: "Watch the vault and keep the index current",
	Long: `Watches a vault directory and ingests notes as they change. Created
and modified notes are uploaded and indexed after a short settle window;
deleted notes are removed from the corpus and the index. Runs until
interrupted. If no directory is given, the configured vault path is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureIngestServices(ctx); err != nil {
		return err
	}

	dir, err := resolveVaultDir(args)
	if err != nil {
		return err
	}

	watcher, err := vault.NewWatcher(dir, 0)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	defer watcher.Close()

	runErr := make(chan error, 1)
	go func() {
		runErr <- watcher.Run(ctx)
	}()

	cmd.Printf("Watching vault: %s (ctrl-c to stop)\n", dir)

	for change := range watcher.Changes() {
		applyChange(ctx, cmd, dir, change)
	}

	cmd.Println("Watch stopped.")

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

// applyChange routes one debounced vault event to the ingest service.
// Per-note failures are reported and skipped so one bad note cannot end
// the watch.
func applyChange(ctx context.Context, cmd *cobra.Command, dir string, change vault.Change) {
	switch change.Type {
	case vault.ChangeCreated, vault.ChangeUpdated:
		if err := ingestService.IngestFile(ctx, dir, change.RelPath); err != nil {
			cmd.Printf("  %s: %v\n", change.RelPath, err)
			return
		}
		cmd.Printf("  indexed %s\n", change.RelPath)
	case vault.ChangeDeleted:
		if err := ingestService.RemoveFile(ctx, change.RelPath); err != nil {
			cmd.Printf("  %s: %v\n", change.RelPath, err)
			return
		}
		cmd.Printf("  removed %s\n", change.RelPath)
	}
}
