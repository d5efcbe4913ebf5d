// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService turns text into vectors for the index. It only
// generates; storing and searching vectors is HybridIndex's job.
// Backed by Ollama or OpenAI depending on settings.
type EmbeddingService interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds several texts in one call where the backend
	// allows it. The result matches the input in length and order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector size the model produces. The index
	// schema is built around it, so it must be stable per model.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping verifies the backend is reachable with a cheap request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
