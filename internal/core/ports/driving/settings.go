package driving

import "github.com/recall-labs/recall-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.Settings, error)

	// Save persists application settings.
	Save(settings *domain.Settings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the generation provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetIndexBackend configures the hybrid index backend.
	SetIndexBackend(backend domain.IndexBackend, dsn string) error

	// SetChunking configures the sliding-window parameters.
	SetChunking(size, overlap int) error

	// SetVaultPath records the default vault directory.
	SetVaultPath(path string) error

	// Validate checks that current settings can produce a working pipeline.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current generation configuration by pinging the provider.
	ValidateLLMConfig() error
}
