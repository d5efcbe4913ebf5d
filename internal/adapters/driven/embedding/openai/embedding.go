// Package openai embeds text through the OpenAI embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// fallbackDimensions applies to models missing from knownDims.
	fallbackDimensions = 1536
)

// knownDims holds the native vector sizes of OpenAI embedding models.
var knownDims = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config configures the OpenAI embedding client. BaseURL may point at
// any compatible endpoint (Azure OpenAI, llama.cpp server, vLLM).
type Config struct {
	// APIKey authenticates requests (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model selects the embedding model.
	Model string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Dimensions overrides the model's native vector size. Only the
	// text-embedding-3-* models honour it server-side.
	Dimensions int
}

// EmbeddingService calls the OpenAI /embeddings endpoint.
type EmbeddingService struct {
	client  *http.Client
	apiBase string
	bearer  string
	model   string
	dims    int
}

// NewEmbeddingService builds a client from cfg, filling in defaults
// for everything except the API key. The vector size resolves from
// the explicit override, then the known-model table, then a fallback.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

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
		if native, ok := knownDims[model]; ok {
			dims = native
		} else {
			dims = fallbackDimensions
		}
	}

	return &EmbeddingService{
		client:  &http.Client{Timeout: timeout},
		apiBase: base,
		bearer:  "Bearer " + cfg.APIKey,
		model:   model,
		dims:    dims,
	}, nil
}

type embedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embedReply struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Embed returns the vector for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("openai: no embedding returned")
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts in one API call. The reply may arrive
// out of order, so vectors are placed by the index the API reports.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embedRequest{Model: s.model, Input: texts}
	if strings.HasPrefix(s.model, "text-embedding-3-") {
		reqBody.Dimensions = s.dims
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.apiBase+"/embeddings", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.bearer)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}

	var reply embedReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("openai: status %d: %s", resp.StatusCode, raw)
		}
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if reply.Error != nil {
		return nil, fmt.Errorf("openai: %s", reply.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai: status %d: %s", resp.StatusCode, raw)
	}

	vectors := make([][]float32, len(texts))
	for _, item := range reply.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	for i, vec := range vectors {
		if vec == nil {
			return nil, fmt.Errorf("openai: missing embedding for input %d", i)
		}
	}
	return vectors, nil
}

// Dimensions returns the resolved vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dims
}

// ModelName returns the configured embedding model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists models to verify the endpoint and API key without
// spending tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Authorization", s.bearer)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openai: ping status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

// Close is a no-op; the underlying HTTP client holds no resources
// that need releasing.
func (s *EmbeddingService) Close() error {
	return nil
}
