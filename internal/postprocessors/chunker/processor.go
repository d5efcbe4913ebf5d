// Package chunker provides a fixed-size sliding-window text chunker.
package chunker

import (
	"fmt"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

// DefaultChunkSize is the span width, in runes, when no option overrides it.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is how many runes adjacent spans share by default.
const DefaultChunkOverlap = 100

// Processor splits document content into fixed-size overlapping chunks.
// It has no semantic awareness of sentence or paragraph boundaries; the
// overlap compensates for spans cut mid-thought.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option adjusts a Processor before New validates it.
type Option func(*Processor)

// WithChunkSize overrides the span width in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) { p.chunkSize = size }
}

// WithOverlap overrides how many runes adjacent spans share.
func WithOverlap(overlap int) Option {
	return func(p *Processor) { p.overlap = overlap }
}

// New creates a new chunker processor with the given options.
// It fails with domain.ErrInvalidConfiguration unless chunkSize > 0 and
// 0 <= overlap < chunkSize; anything else would loop forever or make no
// progress, so it is rejected up front rather than silently adjusted.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{chunkSize: DefaultChunkSize, overlap: DefaultChunkOverlap}
	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfiguration, p.chunkSize)
	}
	if p.overlap < 0 || p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, size), got %d with size %d",
			domain.ErrInvalidConfiguration, p.overlap, p.chunkSize)
	}

	return p, nil
}

// ChunkSize returns the configured chunk width.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split walks text start to end, emitting spans of chunkSize characters
// and advancing by chunkSize - overlap. The walk stops once a span reaches
// the end of the text, so the final span is never followed by a redundant
// overlap-only remainder. Empty text yields no spans; text shorter than
// chunkSize yields exactly one span holding the full text. Offsets count
// runes so multibyte text never splits mid-character.
func (p *Processor) Split(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)

	step := p.chunkSize - p.overlap
	spans := make([]string, 0, total/step+1)

	for start := 0; start < total; start += step {
		end := start + p.chunkSize
		if end >= total {
			spans = append(spans, string(runes[start:total]))
			break
		}
		spans = append(spans, string(runes[start:end]))
	}

	return spans
}

// Chunk splits a document into ordered, identity-bearing chunks.
func (p *Processor) Chunk(doc domain.Document) []domain.Chunk {
	spans := p.Split(doc.Content)
	if len(spans) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = domain.Chunk{
			SourcePath: doc.SourcePath,
			Index:      i,
			Content:    span,
		}
	}

	return chunks
}
