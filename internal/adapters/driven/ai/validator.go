package ai

import (
	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = ConfigValidator{}

// ConfigValidator adapts the package-level validation functions to
// the driven port so the settings wizard can check provider settings
// before saving them.
type ConfigValidator struct{}

// NewConfigValidator returns a stateless validator.
func NewConfigValidator() ConfigValidator {
	return ConfigValidator{}
}

// ValidateEmbedding pings the embedding provider described by config.
func (ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateLLM pings the generation provider described by config.
func (ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}
