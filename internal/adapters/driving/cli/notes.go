package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Inspect the corpus",
	Long:  `List, view, re-ingest, or remove notes stored in the corpus.`,
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored notes",
	RunE:  runNotesList,
}

var notesShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print a note's stored content",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesShow,
}

var notesRefreshCmd = &cobra.Command{
	Use:   "refresh [path]",
	Short: "Re-ingest a single note from the vault",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesRefresh,
}

var notesRemoveCmd = &cobra.Command{
	Use:   "rm [path]",
	Short: "Remove a note from the corpus and the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesRemove,
}

func init() {
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesRefreshCmd)
	notesCmd.AddCommand(notesRemoveCmd)
	rootCmd.AddCommand(notesCmd)
}

func runNotesList(cmd *cobra.Command, _ []string) error {
	if err := ensureCorpusStore(); err != nil {
		return err
	}

	ctx := context.Background()
	blobs, err := corpusStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if len(blobs) == 0 {
		cmd.Println("Corpus is empty. Run 'recall upload' to add notes.")
		return nil
	}

	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Name < blobs[j].Name })

	cmd.Println("Stored notes:")
	cmd.Println()
	for _, blob := range blobs {
		cmd.Printf("  %s\n", blob.Name)
		if title := blob.Metadata[domain.MetaTitle]; title != "" {
			cmd.Printf("    Title: %s\n", title)
		}
		if tags := blob.Metadata[domain.MetaTags]; tags != "" {
			cmd.Printf("    Tags: %s\n", tags)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d notes\n", len(blobs))
	return nil
}

func runNotesShow(cmd *cobra.Command, args []string) error {
	if err := ensureCorpusStore(); err != nil {
		return err
	}

	ctx := context.Background()
	content, err := corpusStore.Read(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to read note: %w", err)
	}

	cmd.Println(string(content))
	return nil
}

func runNotesRefresh(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := ensureIngestServices(ctx); err != nil {
		return err
	}

	dir, err := resolveVaultDir(nil)
	if err != nil {
		return err
	}

	if err := ingestService.IngestFile(ctx, dir, args[0]); err != nil {
		return fmt.Errorf("failed to refresh note: %w", err)
	}

	cmd.Printf("Note %s refreshed.\n", args[0])
	return nil
}

func runNotesRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := ensureIngestServices(ctx); err != nil {
		return err
	}

	if err := ingestService.RemoveFile(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to remove note: %w", err)
	}

	cmd.Printf("Note %s removed from corpus and index.\n", args[0])
	return nil
}
