package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Query bounds.
const (
	// MinQuestionLen is the minimum question length in runes.
	MinQuestionLen = 3

	// MaxQuestionLen is the maximum question length in runes.
	MaxQuestionLen = 1000

	// MinTopK is the smallest allowed result count.
	MinTopK = 1

	// MaxTopK is the largest allowed result count.
	MaxTopK = 20

	// DefaultTopK is the result count used when the caller does not ask
	// for one.
	DefaultTopK = 5
)

// Query is a question plus the requested result count.
type Query struct {
	// Question is the natural-language question.
	Question string

	// TopK is the requested number of retrieved chunks.
	TopK int
}

// Validate checks the query against the user-facing contract.
// Violations wrap ErrInvalidQuery and are never silently clamped.
func (q Query) Validate() error {
	question := strings.TrimSpace(q.Question)
	if n := utf8.RuneCountInString(question); n < MinQuestionLen {
		return fmt.Errorf("%w: question must be at least %d characters", ErrInvalidQuery, MinQuestionLen)
	} else if n > MaxQuestionLen {
		return fmt.Errorf("%w: question must be at most %d characters", ErrInvalidQuery, MaxQuestionLen)
	}
	if q.TopK < MinTopK || q.TopK > MaxTopK {
		return fmt.Errorf("%w: top_k must be between %d and %d", ErrInvalidQuery, MinTopK, MaxTopK)
	}
	return nil
}

// RetrievedChunk is a single ranked retrieval hit.
type RetrievedChunk struct {
	// Title is the owning document's title.
	Title string

	// Content is the chunk text.
	Content string

	// Tags are the owning document's tags.
	Tags []string

	// SourcePath is the owning document's source path.
	SourcePath string

	// Score is the combined relevance score assigned by the index.
	Score float64
}

// Source attributes an answer to a document.
type Source struct {
	// Title is the document title.
	Title string `json:"title"`

	// Path is the document's source path.
	Path string `json:"path"`
}

// Answer is the final result of an ask: generated text plus the documents
// it was grounded on, deduplicated by path in first-seen rank order.
type Answer struct {
	// Text is the generated answer, or the configured no-results answer
	// when retrieval found nothing.
	Text string `json:"answer"`

	// Sources lists the contributing documents.
	Sources []Source `json:"sources"`
}
