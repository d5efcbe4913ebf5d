// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService is the generation model that synthesises answers.
// Backed by Ollama, OpenAI or Anthropic depending on settings.
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a conversation with explicit roles. Answer synthesis
	// uses this with a system instruction plus a single user message.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping verifies the backend is reachable with a cheap request,
	// without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures single-prompt generation.
type GenerateOptions struct {
	// MaxTokens caps the generated length.
	MaxTokens int

	// Temperature controls sampling randomness; 0 is deterministic.
	Temperature float64

	// StopWords end generation when the model emits one of them.
	StopWords []string
}

// ChatMessage is one conversation turn.
type ChatMessage struct {
	// Role is "system", "user" or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures conversational generation.
type ChatOptions struct {
	// MaxTokens caps the generated length.
	MaxTokens int

	// Temperature controls sampling randomness; 0 is deterministic.
	Temperature float64
}
