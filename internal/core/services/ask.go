package services

import (
	"context"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driving"
)

// Ensure Ask implements the interface.
var _ driving.AskService = (*Ask)(nil)

// Ask answers questions against the corpus by composing retrieval and
// synthesis. It is the sole externally observable entry point of the
// pipeline; the CLI, HTTP API, and MCP server all drive it.
type Ask struct {
	retrieval   *Retrieval
	synthesis   *Synthesis
	defaultTopK int
}

// NewAsk creates the ask orchestrator. defaultTopK is used when a caller
// passes topK 0; it must itself lie within the query bounds.
func NewAsk(retrieval *Retrieval, synthesis *Synthesis, defaultTopK int) *Ask {
	if defaultTopK == 0 {
		defaultTopK = domain.DefaultTopK
	}
	return &Ask{
		retrieval:   retrieval,
		synthesis:   synthesis,
		defaultTopK: defaultTopK,
	}
}

// Ask retrieves relevant chunks for the question and synthesises a grounded
// answer with source attribution.
func (a *Ask) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	if topK == 0 {
		topK = a.defaultTopK
	}

	chunks, err := a.retrieval.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	return a.synthesis.Synthesize(ctx, question, chunks)
}

// Retrieve runs only the retrieval stage, returning the ranked chunks
// without invoking the generation model.
func (a *Ask) Retrieve(ctx context.Context, question string, topK int) ([]domain.RetrievedChunk, error) {
	if topK == 0 {
		topK = a.defaultTopK
	}
	return a.retrieval.Retrieve(ctx, question, topK)
}
