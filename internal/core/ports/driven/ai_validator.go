package driven

import "github.com/recall-labs/recall-cli/internal/core/domain"

// AIConfigValidator checks provider settings before they are saved.
// The settings wizard uses it so a typo in a key or URL is caught at
// configuration time rather than on the first question.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider described by config.
	// Nil or unconfigured settings pass; there is nothing to check.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the generation provider described by config.
	// Nil or unconfigured settings pass; there is nothing to check.
	ValidateLLM(config *domain.LLMSettings) error
}
