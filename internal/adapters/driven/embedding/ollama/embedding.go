// Package ollama embeds text through a local Ollama instance.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "nomic-embed-text"
	DefaultTimeout = 30 * time.Second

	// DefaultDimensions matches nomic-embed-text, the default model.
	DefaultDimensions = 768
)

// Config configures the Ollama embedding client.
type Config struct {
	// BaseURL points at the Ollama server.
	BaseURL string

	// Model selects the embedding model.
	Model string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Dimensions is the vector size the model produces. The index
	// schema depends on it, so it must match the model.
	Dimensions int
}

// EmbeddingService calls the Ollama embeddings endpoint.
type EmbeddingService struct {
	hc      *http.Client
	baseURL string
	model   string
	dims    int
}

// NewEmbeddingService builds a client from cfg, filling in defaults.
// Construction cannot fail; connectivity problems surface on use.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = DefaultDimensions
	}

	return &EmbeddingService{
		hc:      &http.Client{Timeout: timeout},
		baseURL: base,
		model:   model,
		dims:    dims,
	}
}

type embedPayload struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResult struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the vector for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	encoded, err := json.Marshal(embedPayload{Model: s.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("ollama: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/embeddings", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama: status %d: %s", resp.StatusCode, raw)
	}

	var result embedResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama: empty embedding, is model %q pulled?", s.model)
	}
	return result.Embedding, nil
}

// EmbedBatch embeds texts one request at a time; the legacy
// embeddings endpoint takes a single prompt per call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions returns the configured vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dims
}

// ModelName returns the configured embedding model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks /api/tags to verify the server is up. The endpoint is
// cheap and needs no model loaded.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: build request: %w", err)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama: ping status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

// Close is a no-op; the underlying HTTP client holds no resources
// that need releasing.
func (s *EmbeddingService) Close() error {
	return nil
}
