// Package ai assembles embedding and generation services from saved settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/recall-labs/recall-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/recall-labs/recall-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/recall-labs/recall-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/recall-labs/recall-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/recall-labs/recall-cli/internal/adapters/driven/llm/openai"
	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// pingTimeout bounds the connectivity probe when a service is created
// or validated.
const pingTimeout = 5 * time.Second

// probe pings svc with a bounded timeout. Callers own the service and
// decide whether a failed probe closes it.
func probe(svc interface {
	Ping(ctx context.Context) error
}) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService builds the embedding client the settings
// describe. Unconfigured settings yield (nil, nil): embeddings are
// optional and callers fall back to keyword search.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	// Zero means the model is not in the table; each client picks
	// its own fallback.
	dims := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		if dims == 0 {
			dims = ollamaembed.DefaultDimensions
		}
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService builds the generation client the settings describe.
// Unconfigured settings yield (nil, nil): without a generation model
// Recall still retrieves, it just cannot synthesise an answer.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateAndValidateEmbeddingService builds the embedding client and
// verifies it is reachable before handing it out. Errors carry a hint
// pointing at the settings wizard.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'recall settings wizard' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := probe(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'recall settings wizard' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService builds the generation client and
// verifies it is reachable before handing it out. Errors carry a hint
// pointing at the settings wizard.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'recall settings wizard' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := probe(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'recall settings wizard' to fix",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig builds a throwaway client and pings it.
// The settings wizard calls this before saving embedding settings.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return probe(svc)
}

// ValidateLLMConfig builds a throwaway client and pings it.
// The settings wizard calls this before saving generation settings.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return probe(svc)
}
