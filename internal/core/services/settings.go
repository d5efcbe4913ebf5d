package services

import (
	"fmt"
	"os"
	"slices"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
	"github.com/recall-labs/recall-cli/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Keys into the config store, grouped by section.
//
//nolint:gosec // G101: key names, not credentials
const (
	keyVaultPath     = "vault.path"
	keyStoreBackend  = "store.backend"
	keyStorePath     = "store.path"
	keyIndexBackend  = "index.backend"
	keyIndexDSN      = "index.dsn"
	keyIndexDims     = "index.dimensions"
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyLLMTemp       = "llm.temperature"
	keyLLMMaxTokens  = "llm.max_tokens"
	keyChunkSize     = "chunking.size"
	keyChunkOverlap  = "chunking.overlap"
	keyIngestBatch   = "ingest.batch_size"
	keyIngestWorkers = "ingest.workers"
	keyIngestRate    = "ingest.rate_per_second"
	keyAskTopK       = "ask.top_k"
	keyServerAddr    = "server.addr"
)

// Environment overrides for secrets, so API keys and connection strings
// never have to live in the config file.
const (
	envEmbedAPIKey = "RECALL_EMBEDDING_API_KEY"
	envLLMAPIKey   = "RECALL_LLM_API_KEY"
	envIndexDSN    = "RECALL_INDEX_DSN"
)

// defaultLocalBaseURL is where Ollama listens out of the box.
const defaultLocalBaseURL = "http://localhost:11434"

// SettingsService reads and writes the persisted configuration, layering
// defaults and environment overrides on top of the config store.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService returns a service backed by the given store. The
// validator may be nil, which turns provider pinging into a no-op.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings. File values fall back to
// defaults; secrets prefer their RECALL_* environment variables.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Vault: domain.VaultSettings{
			Path: s.configStore.GetString(keyVaultPath),
		},
		Store: domain.StoreSettings{
			Backend: domain.StoreBackend(s.getString(keyStoreBackend, defaults.Store.Backend.String())),
			Path:    s.configStore.GetString(keyStorePath), // No default - empty means ~/.recall/corpus
		},
		Index: domain.IndexSettings{
			Backend:    domain.IndexBackend(s.getString(keyIndexBackend, defaults.Index.Backend.String())),
			DSN:        s.getSecret(keyIndexDSN, envIndexDSN),
			Dimensions: s.getInt(keyIndexDims, defaults.Index.Dimensions),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.getSecret(keyEmbedAPIKey, envEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:      s.getSecret(keyLLMAPIKey, envLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemp, defaults.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getIntAllowZero(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Ingest: domain.IngestSettings{
			BatchSize:     s.getInt(keyIngestBatch, defaults.Ingest.BatchSize),
			Workers:       s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
			RatePerSecond: s.getFloat(keyIngestRate, defaults.Ingest.RatePerSecond),
		},
		Ask: domain.AskSettings{
			DefaultTopK: s.getInt(keyAskTopK, defaults.Ask.DefaultTopK),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	return settings, nil
}

// configWriter writes keys until one fails, then keeps the first error.
type configWriter struct {
	store driven.ConfigStore
	err   error
}

func (w *configWriter) set(key string, value any) {
	if w.err != nil {
		return
	}
	if err := w.store.Set(key, value); err != nil {
		w.err = fmt.Errorf("save %s: %w", key, err)
	}
}

// Save persists every section of the settings. Secrets are only written
// when present, so an environment-supplied key never lands in the file.
func (s *SettingsService) Save(settings *domain.Settings) error {
	w := &configWriter{store: s.configStore}

	w.set(keyVaultPath, settings.Vault.Path)

	w.set(keyStoreBackend, settings.Store.Backend.String())
	w.set(keyStorePath, settings.Store.Path)

	w.set(keyIndexBackend, settings.Index.Backend.String())
	if settings.Index.DSN != "" {
		w.set(keyIndexDSN, settings.Index.DSN)
	}
	w.set(keyIndexDims, settings.Index.Dimensions)

	w.set(keyEmbedProvider, settings.Embedding.Provider.String())
	w.set(keyEmbedModel, settings.Embedding.Model)
	w.set(keyEmbedBaseURL, settings.Embedding.BaseURL)
	if settings.Embedding.APIKey != "" {
		w.set(keyEmbedAPIKey, settings.Embedding.APIKey)
	}

	w.set(keyLLMProvider, settings.LLM.Provider.String())
	w.set(keyLLMModel, settings.LLM.Model)
	w.set(keyLLMBaseURL, settings.LLM.BaseURL)
	if settings.LLM.APIKey != "" {
		w.set(keyLLMAPIKey, settings.LLM.APIKey)
	}
	w.set(keyLLMTemp, settings.LLM.Temperature)
	w.set(keyLLMMaxTokens, settings.LLM.MaxTokens)

	w.set(keyChunkSize, settings.Chunking.Size)
	w.set(keyChunkOverlap, settings.Chunking.Overlap)

	w.set(keyIngestBatch, settings.Ingest.BatchSize)
	w.set(keyIngestWorkers, settings.Ingest.Workers)
	w.set(keyIngestRate, settings.Ingest.RatePerSecond)

	w.set(keyAskTopK, settings.Ask.DefaultTopK)
	w.set(keyServerAddr, settings.Server.Addr)

	return w.err
}

// SetEmbeddingProvider configures the embedding provider. An empty model
// selects the provider's default, and the index dimensionality follows the
// model so the schema stays in step.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider %q", domain.ErrInvalidConfiguration, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidConfiguration, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && os.Getenv(envEmbedAPIKey) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultLocalBaseURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// Keep the index schema in step with the model's vector size.
	if dims, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Index.Dimensions = dims
	}

	return s.Save(settings)
}

// SetLLMProvider configures the generation provider. An empty model
// selects the provider's default.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid generation provider %q", domain.ErrInvalidConfiguration, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && os.Getenv(envLLMAPIKey) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultLocalBaseURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetIndexBackend configures the hybrid index backend.
func (s *SettingsService) SetIndexBackend(backend domain.IndexBackend, dsn string) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidConfiguration, backend)
	}
	if backend == domain.IndexBackendPostgres && dsn == "" && os.Getenv(envIndexDSN) == "" {
		return fmt.Errorf("%w: postgres index backend requires a DSN", domain.ErrInvalidConfiguration)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Index.Backend = backend
	if dsn != "" {
		settings.Index.DSN = dsn
	}

	return s.Save(settings)
}

// SetChunking configures the sliding-window parameters.
func (s *SettingsService) SetChunking(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: chunk overlap must be in [0, size), got %d with size %d",
			domain.ErrInvalidConfiguration, overlap, size)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Chunking.Size = size
	settings.Chunking.Overlap = overlap

	return s.Save(settings)
}

// SetVaultPath records the default vault directory.
func (s *SettingsService) SetVaultPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: vault path must not be empty", domain.ErrInvalidConfiguration)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Vault.Path = path

	return s.Save(settings)
}

// Validate checks that current settings can produce a working pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Validate(); err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider not configured", domain.ErrInvalidConfiguration)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: generation provider not configured", domain.ErrInvalidConfiguration)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateEmbeddingConfig pings the embedding provider with the stored
// credentials. A nil validator makes this a no-op.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	return s.pingProvider(func(settings *domain.Settings) error {
		return s.aiValidator.ValidateEmbedding(&settings.Embedding)
	})
}

// ValidateLLMConfig pings the generation provider with the stored
// credentials. A nil validator makes this a no-op.
func (s *SettingsService) ValidateLLMConfig() error {
	return s.pingProvider(func(settings *domain.Settings) error {
		return s.aiValidator.ValidateLLM(&settings.LLM)
	})
}

func (s *SettingsService) pingProvider(check func(*domain.Settings) error) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return check(settings)
}

// Read helpers. Each falls back to the given default.

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if v := s.configStore.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

// getIntAllowZero distinguishes an explicit zero from an absent key.
// Chunk overlap 0 is a legitimate setting.
func (s *SettingsService) getIntAllowZero(key string, fallback int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return fallback
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, fallback float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return fallback
	}
	return s.configStore.GetFloat(key)
}

// getSecret prefers the environment variable over the stored value.
func (s *SettingsService) getSecret(key, envVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getProvider(key string, fallback domain.AIProvider) domain.AIProvider {
	if p := domain.AIProvider(s.configStore.GetString(key)); p.IsValid() {
		return p
	}
	return fallback
}
