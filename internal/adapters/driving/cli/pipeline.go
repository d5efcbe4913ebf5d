package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/recall-labs/recall-cli/internal/adapters/driven/ai"
	"github.com/recall-labs/recall-cli/internal/adapters/driven/config/file"
	memindex "github.com/recall-labs/recall-cli/internal/adapters/driven/index/memory"
	"github.com/recall-labs/recall-cli/internal/adapters/driven/index/postgres"
	"github.com/recall-labs/recall-cli/internal/adapters/driven/storage/filesystem"
	memstore "github.com/recall-labs/recall-cli/internal/adapters/driven/storage/memory"
	"github.com/recall-labs/recall-cli/internal/adapters/driven/storage/sqlite"
	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
	"github.com/recall-labs/recall-cli/internal/core/services"
	"github.com/recall-labs/recall-cli/internal/logger"
	"github.com/recall-labs/recall-cli/internal/postprocessors/chunker"
)

// ensureSettingsService opens the config store if no settings service is
// wired yet.
func ensureSettingsService() error {
	if settingsService != nil {
		return nil
	}

	configStore, err := file.NewConfigStore(configDirFlag)
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	settingsService = services.NewSettingsService(configStore, ai.NewConfigValidator())
	return nil
}

// ensureAskServices wires the query pipeline: embedder, index, generation
// provider and the ask orchestration on top of them.
func ensureAskServices(ctx context.Context) error {
	if askService != nil {
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	embedder, err := requireEmbedder(settings)
	if err != nil {
		return err
	}

	llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		return err
	}
	if llm == nil {
		return fmt.Errorf("%w: generation provider not configured. Run 'recall settings wizard'",
			domain.ErrLLMUnavailable)
	}

	index, err := openHybridIndex(ctx, settings)
	if err != nil {
		return err
	}

	synthesis := services.NewSynthesis(llm, settings.LLM.MaxTokens, settings.LLM.Temperature)
	if prompts, perr := file.NewPromptStore(recallSubDir("prompts")); perr == nil {
		synthesis.SetPromptStore(prompts)
	} else {
		logger.Warn("Prompt overrides unavailable: %v", perr)
	}

	askService = services.NewAsk(
		services.NewRetrieval(embedder, index),
		synthesis,
		settings.Ask.DefaultTopK,
	)
	return nil
}

// ensureIngestServices wires the ingestion pipeline: blob store, ledger,
// embedder, index and chunker.
func ensureIngestServices(ctx context.Context) error {
	if ingestService != nil {
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	embedder, err := requireEmbedder(settings)
	if err != nil {
		return err
	}

	index, err := openHybridIndex(ctx, settings)
	if err != nil {
		return err
	}

	if err := ensureCorpusStore(); err != nil {
		return err
	}

	ledger, err := sqlite.NewLedger(recallSubDir("data"))
	if err != nil {
		return fmt.Errorf("open ingest ledger: %w", err)
	}

	splitter, err := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		return err
	}

	ingestService = services.NewIngest(corpusStore, ledger, embedder, index, splitter, settings.Ingest)
	return nil
}

// ensureCorpusStore opens the blob store on its own, without the rest of
// the ingestion stack. The MCP server needs only this to expose notes as
// resources.
func ensureCorpusStore() error {
	if corpusStore != nil {
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := openCorpusStore(settings)
	if err != nil {
		return err
	}
	corpusStore = store
	return nil
}

// loadSettings resolves the current settings through the settings service.
func loadSettings() (*domain.Settings, error) {
	if err := ensureSettingsService(); err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// requireEmbedder builds and pings the embedding provider, failing with
// guidance when it is absent.
func requireEmbedder(settings *domain.Settings) (driven.EmbeddingService, error) {
	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedding provider not configured. Run 'recall settings wizard'",
			domain.ErrEmbeddingUnavailable)
	}
	return embedder, nil
}

// openHybridIndex opens the configured index backend.
func openHybridIndex(ctx context.Context, settings *domain.Settings) (driven.HybridIndex, error) {
	if settings.Index.Backend == domain.IndexBackendMemory {
		return memindex.NewIndex(), nil
	}

	index, err := postgres.NewIndex(ctx, settings.Index.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'recall settings index' to fix", domain.ErrIndexUnavailable, err)
	}
	return index, nil
}

// openCorpusStore opens the configured blob store backend.
func openCorpusStore(settings *domain.Settings) (driven.BlobStore, error) {
	if settings.Store.Backend == domain.StoreBackendMemory {
		return memstore.NewBlobStore(), nil
	}

	path := settings.Store.Path
	if path == "" {
		path = recallSubDir("corpus")
	}
	store, err := filesystem.NewBlobStore(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	return store, nil
}

// recallSubDir resolves a directory under the config root. An empty
// result lets the adapters fall back to their ~/.recall defaults.
func recallSubDir(name string) string {
	if configDirFlag == "" {
		return ""
	}
	return filepath.Join(configDirFlag, name)
}
