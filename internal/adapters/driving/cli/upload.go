package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [vault-dir]",
	Short: "Upload vault notes to the corpus",
	Long: `Scans a vault directory for markdown notes and writes new or changed
ones to the corpus store. Hidden files and non-markdown files are skipped,
and notes whose content has not changed since the last upload are left
untouched. If no directory is given, the configured vault path is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := ensureIngestServices(ctx); err != nil {
		return err
	}

	dir, err := resolveVaultDir(args)
	if err != nil {
		return err
	}

	cmd.Printf("Uploading vault: %s...\n", dir)

	if err := uploadWithProgress(ctx, cmd, dir); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	status := ingestService.UploadStatus()
	cmd.Printf("Upload complete: %d uploaded, %d skipped, %d failed.\n",
		status.Uploaded, status.Skipped, status.Failed)
	return nil
}

// resolveVaultDir picks the vault directory from the argument or from
// settings.
func resolveVaultDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	settings, err := loadSettings()
	if err != nil {
		return "", err
	}
	if settings.Vault.Path == "" {
		return "", errors.New("no vault directory given and none configured. Run 'recall settings vault <dir>'")
	}
	return settings.Vault.Path, nil
}

// uploadWithProgress runs the upload while displaying progress updates.
func uploadWithProgress(ctx context.Context, cmd *cobra.Command, dir string) error {
	// Start upload in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- ingestService.UploadVault(ctx, dir)
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastSeen := 0
	for {
		select {
		case err := <-errCh:
			return err
		case <-ticker.C:
			status := ingestService.UploadStatus()
			if done := status.Uploaded + status.Skipped + status.Failed; done > lastSeen {
				cmd.Printf("\rUploading... %d/%d files", done, status.FilesSeen)
				lastSeen = done
			}
		}
	}
}
