package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies which AI service backs embeddings or answer
// generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama talks to an Ollama instance on this machine.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI talks to the OpenAI API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic talks to the Anthropic API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// providerTraits captures what distinguishes one provider from another. A
// provider supports embeddings when it names a default embedding model, and
// generation when it names a default generation model.
type providerTraits struct {
	description    string
	local          bool
	embeddingModel string
	llmModel       string
}

// providerOrder fixes the numbering pickers and the settings wizard show.
var providerOrder = []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}

var providers = map[AIProvider]providerTraits{
	AIProviderOllama: {
		description:    "Ollama (local)",
		local:          true,
		embeddingModel: "nomic-embed-text",
		llmModel:       "llama3.2",
	},
	AIProviderOpenAI: {
		description:    "OpenAI (cloud)",
		embeddingModel: "text-embedding-3-small",
		llmModel:       "gpt-4o",
	},
	AIProviderAnthropic: {
		description: "Anthropic (cloud)",
		llmModel:    "claude-3-5-sonnet-latest",
	},
}

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// RequiresAPIKey returns true for cloud providers, which authenticate with
// an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && !providers[p].local
}

// IsLocal returns true if this provider runs on the user's machine.
func (p AIProvider) IsLocal() bool {
	return providers[p].local
}

// String returns the provider name as it appears in configuration.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns the label pickers display for this provider.
func (p AIProvider) Description() string {
	if traits, ok := providers[p]; ok {
		return traits.description
	}
	return unknownDescription
}

// IndexBackend identifies the hybrid index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendPostgres stores entries in Postgres with pgvector.
	IndexBackendPostgres IndexBackend = "postgres"

	// IndexBackendMemory keeps entries in process memory. The index is
	// rebuilt on startup, so it only suits long-lived serve processes
	// and tests.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the index backend is recognised.
func (b IndexBackend) IsValid() bool {
	return b == IndexBackendPostgres || b == IndexBackendMemory
}

// Persistent returns true if entries survive process restarts.
func (b IndexBackend) Persistent() bool {
	return b == IndexBackendPostgres
}

// String implements fmt.Stringer.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns the label pickers display for this backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendPostgres:
		return "Postgres + pgvector (persistent)"
	case IndexBackendMemory:
		return "In-memory (per-process, rebuilt on startup)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies the document blob store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendFilesystem keeps blobs under a local directory.
	StoreBackendFilesystem StoreBackend = "filesystem"

	// StoreBackendMemory keeps blobs in process memory (tests).
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the store backend is recognised.
func (b StoreBackend) IsValid() bool {
	return b == StoreBackendFilesystem || b == StoreBackendMemory
}

// String implements fmt.Stringer.
func (b StoreBackend) String() string {
	return string(b)
}

// VaultSettings holds the source vault configuration.
type VaultSettings struct {
	// Path is the vault directory holding markdown notes.
	Path string
}

// StoreSettings holds document store configuration.
type StoreSettings struct {
	// Backend selects the blob store implementation.
	Backend StoreBackend

	// Path is the corpus directory (filesystem backend).
	Path string
}

// IndexSettings holds hybrid index configuration.
type IndexSettings struct {
	// Backend selects the index implementation.
	Backend IndexBackend

	// DSN is the Postgres connection string (postgres backend).
	DSN string

	// Dimensions is the embedding vector size the schema is created with.
	// Must match the embedding model's output size.
	Dimensions int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider produces the vectors.
	Provider AIProvider

	// Model names the embedding model to request.
	Model string

	// BaseURL points local providers at their endpoint.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string
}

// IsConfigured returns true if the embedding provider is ready to use.
func (e EmbeddingSettings) IsConfigured() bool {
	return providerReady(e.Provider, e.APIKey)
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider synthesises the answers.
	Provider AIProvider

	// Model names the generation model to request.
	Model string

	// BaseURL points local providers at their endpoint.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string

	// Temperature is the sampling temperature for answers.
	Temperature float64

	// MaxTokens bounds the generated answer length.
	MaxTokens int
}

// IsConfigured returns true if the generation provider is ready to use.
func (l LLMSettings) IsConfigured() bool {
	return providerReady(l.Provider, l.APIKey)
}

// providerReady reports whether a provider selection is usable: the provider
// must be known, and cloud providers also need their key.
func providerReady(p AIProvider, apiKey string) bool {
	if !p.IsValid() {
		return false
	}
	return !p.RequiresAPIKey() || apiKey != ""
}

// AllEmbeddingProviders returns providers that can produce embeddings, in
// wizard display order.
func AllEmbeddingProviders() []AIProvider {
	out := make([]AIProvider, 0, len(providerOrder))
	for _, p := range providerOrder {
		if providers[p].embeddingModel != "" {
			out = append(out, p)
		}
	}
	return out
}

// AllLLMProviders returns providers that can generate answers, in wizard
// display order.
func AllLLMProviders() []AIProvider {
	out := make([]AIProvider, 0, len(providerOrder))
	for _, p := range providerOrder {
		if providers[p].llmModel != "" {
			out = append(out, p)
		}
	}
	return out
}

// AllIndexBackends returns the available index backends.
func AllIndexBackends() []IndexBackend {
	return []IndexBackend{IndexBackendPostgres, IndexBackendMemory}
}

// DefaultEmbeddingModels returns the default model per embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	out := make(map[AIProvider]string, len(providers))
	for p, traits := range providers {
		if traits.embeddingModel != "" {
			out[p] = traits.embeddingModel
		}
	}
	return out
}

// DefaultLLMModels returns the default model per generation provider.
func DefaultLLMModels() map[AIProvider]string {
	out := make(map[AIProvider]string, len(providers))
	for p, traits := range providers {
		if traits.llmModel != "" {
			out[p] = traits.llmModel
		}
	}
	return out
}

// EmbeddingDimensions returns the vector sizes of known embedding models,
// used to keep the index schema in sync when the model changes.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,

		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// ChunkingSettings holds the sliding-window parameters.
type ChunkingSettings struct {
	// Size is the chunk width in runes.
	Size int

	// Overlap is the number of runes shared between adjacent chunks.
	Overlap int
}

// IngestSettings holds bulk ingestion tuning.
type IngestSettings struct {
	// BatchSize is the number of entries per index flush.
	BatchSize int

	// Workers is the number of concurrent embedding workers.
	Workers int

	// RatePerSecond paces embedding calls and batch flushes.
	RatePerSecond float64
}

// AskSettings holds answer synthesis configuration.
type AskSettings struct {
	// DefaultTopK is used when the caller does not request a count.
	DefaultTopK int
}

// ServerSettings holds the HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// Settings is the complete application configuration.
type Settings struct {
	Vault     VaultSettings
	Store     StoreSettings
	Index     IndexSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunking  ChunkingSettings
	Ingest    IngestSettings
	Ask       AskSettings
	Server    ServerSettings
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		Store: StoreSettings{
			Backend: StoreBackendFilesystem,
		},
		Index: IndexSettings{
			Backend:    IndexBackendPostgres,
			Dimensions: 1536,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       "gpt-4o",
			Temperature: 0.3,
			MaxTokens:   1000,
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 100,
		},
		Ingest: IngestSettings{
			BatchSize:     100,
			Workers:       4,
			RatePerSecond: 2,
		},
		Ask: AskSettings{
			DefaultTopK: DefaultTopK,
		},
		Server: ServerSettings{
			Addr: ":8000",
		},
	}
}

// Validate checks that the settings can produce a working pipeline.
// Violations wrap ErrInvalidConfiguration.
func (s Settings) Validate() error {
	if s.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, s.Chunking.Size)
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.Size {
		return fmt.Errorf("%w: chunk overlap must be in [0, size), got %d with size %d",
			ErrInvalidConfiguration, s.Chunking.Overlap, s.Chunking.Size)
	}
	if s.Index.Dimensions <= 0 {
		return fmt.Errorf("%w: index dimensions must be positive, got %d", ErrInvalidConfiguration, s.Index.Dimensions)
	}
	if !s.Index.Backend.IsValid() {
		return fmt.Errorf("%w: unknown index backend %q", ErrInvalidConfiguration, s.Index.Backend)
	}
	if s.Index.Backend == IndexBackendPostgres && s.Index.DSN == "" {
		return fmt.Errorf("%w: postgres index backend requires a DSN", ErrInvalidConfiguration)
	}
	if !s.Store.Backend.IsValid() {
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfiguration, s.Store.Backend)
	}
	if s.Ingest.BatchSize <= 0 {
		return fmt.Errorf("%w: ingest batch size must be positive, got %d", ErrInvalidConfiguration, s.Ingest.BatchSize)
	}
	if s.Ingest.Workers <= 0 {
		return fmt.Errorf("%w: ingest workers must be positive, got %d", ErrInvalidConfiguration, s.Ingest.Workers)
	}
	if s.Ask.DefaultTopK < MinTopK || s.Ask.DefaultTopK > MaxTopK {
		return fmt.Errorf("%w: default top_k must be between %d and %d", ErrInvalidConfiguration, MinTopK, MaxTopK)
	}
	return nil
}
