package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your notes",
	Long: `Answers a natural-language question against the indexed corpus.
Retrieval combines keyword (BM25) and semantic (vector) ranking; the
answer is generated strictly from the retrieved notes and cites its
sources.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	ctx := context.Background()
	if err := ensureAskServices(ctx); err != nil {
		return err
	}

	answer, err := askService.Ask(ctx, question, askTopK)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			return err
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	return outputAnswerText(cmd, answer)
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Sources) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		title := src.Title
		if title == "" {
			title = src.Path
		}
		cmd.Printf("  [%d] %s (%s)\n", i+1, title, src.Path)
	}

	return nil
}
