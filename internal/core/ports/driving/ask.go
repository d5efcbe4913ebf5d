package driving

import (
	"context"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

// AskService answers questions against the corpus. It is the sole
// externally observable entry point of the pipeline: the CLI, HTTP API,
// and MCP server all drive it.
type AskService interface {
	// Ask retrieves relevant chunks for the question and synthesises a
	// grounded answer with source attribution. A topK of 0 uses the
	// configured default.
	Ask(ctx context.Context, question string, topK int) (*domain.Answer, error)

	// Retrieve runs only the retrieval stage, returning the ranked chunks
	// without invoking the generation model.
	Retrieve(ctx context.Context, question string, topK int) ([]domain.RetrievedChunk, error)
}
