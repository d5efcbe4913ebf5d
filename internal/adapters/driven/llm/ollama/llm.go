// Package ollama generates answers through a local Ollama instance.
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

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config configures the Ollama client. No API key; Ollama runs
// locally and is unauthenticated.
type Config struct {
	// BaseURL points at the Ollama server.
	BaseURL string

	// Model selects the local model.
	Model string

	// Timeout bounds each HTTP request. Local inference on modest
	// hardware can be slow, hence the generous default.
	Timeout time.Duration
}

// LLMService calls the Ollama generate and chat endpoints.
type LLMService struct {
	hc      *http.Client
	baseURL string
	model   string
}

// NewLLMService builds a client from cfg, filling in defaults.
// Construction cannot fail; connectivity problems surface on use.
func NewLLMService(cfg Config) *LLMService {
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

	return &LLMService{
		hc:      &http.Client{Timeout: timeout},
		baseURL: base,
		model:   model,
	}
}

// tuning maps generation parameters onto Ollama's options object.
type tuning struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// tuningFor returns nil when every parameter is unset, so the
// options field is omitted and Ollama applies model defaults.
func tuningFor(maxTokens int, temperature float64, stops []string) *tuning {
	if maxTokens == 0 && temperature == 0 && len(stops) == 0 {
		return nil
	}
	return &tuning{NumPredict: maxTokens, Temperature: temperature, Stop: stops}
}

type generatePayload struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options *tuning `json:"options,omitempty"`
}

type generateResult struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Model    string     `json:"model"`
	Messages []chatTurn `json:"messages"`
	Stream   bool       `json:"stream"`
	Options  *tuning    `json:"options,omitempty"`
}

type chatResult struct {
	Message chatTurn `json:"message"`
	Done    bool     `json:"done"`
}

// Generate produces a completion via /api/generate.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	payload := generatePayload{
		Model:   s.model,
		Prompt:  prompt,
		Options: tuningFor(opts.MaxTokens, opts.Temperature, opts.StopWords),
	}

	var result generateResult
	if err := s.call(ctx, "/api/generate", payload, &result); err != nil {
		return "", err
	}
	return result.Response, nil
}

// Chat runs a conversation via /api/chat. System messages pass
// through unchanged; Ollama accepts them in the message list.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	turns := make([]chatTurn, len(messages))
	for i, m := range messages {
		turns[i] = chatTurn{Role: m.Role, Content: m.Content}
	}

	payload := chatPayload{
		Model:    s.model,
		Messages: turns,
		Options:  tuningFor(opts.MaxTokens, opts.Temperature, nil),
	}

	var result chatResult
	if err := s.call(ctx, "/api/chat", payload, &result); err != nil {
		return "", err
	}
	return result.Message.Content, nil
}

// call posts a JSON payload with streaming disabled and decodes the
// single response object.
func (s *LLMService) call(ctx context.Context, path string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ollama: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama: status %d: %s", resp.StatusCode, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ollama: decode response: %w", err)
	}
	return nil
}

// ModelName returns the configured local model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks /api/tags to verify the server is up. The endpoint is
// cheap and needs no model loaded.
func (s *LLMService) Ping(ctx context.Context) error {
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
func (s *LLMService) Close() error {
	return nil
}
