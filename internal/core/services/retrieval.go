package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
	"github.com/recall-labs/recall-cli/internal/logger"
)

// Retrieval is the query-time retrieval stage. It validates the question,
// embeds it, and issues one combined keyword + vector search to the hybrid
// index. Fusing the two relevance signals is the index's job; the result
// arrives here already ranked and is never re-fused.
type Retrieval struct {
	embedder driven.EmbeddingService
	index    driven.HybridIndex
}

// NewRetrieval creates the retrieval stage.
func NewRetrieval(embedder driven.EmbeddingService, index driven.HybridIndex) *Retrieval {
	return &Retrieval{
		embedder: embedder,
		index:    index,
	}
}

// Retrieve returns the topK chunks most relevant to the question, ranked by
// fused relevance descending. Query bounds are enforced, not clamped:
// violations wrap domain.ErrInvalidQuery. An empty result is a valid
// outcome, not an error.
func (r *Retrieval) Retrieve(ctx context.Context, question string, topK int) ([]domain.RetrievedChunk, error) {
	query := domain.Query{Question: question, TopK: topK}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(question)

	vector, err := r.embedder.Embed(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	chunks, err := r.index.Search(ctx, trimmed, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	logger.Debug("Retrieved %d chunks for question (top_k=%d)", len(chunks), topK)
	return chunks, nil
}
