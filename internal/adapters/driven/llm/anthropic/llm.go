// Package anthropic generates answers through the Anthropic Messages API.
package anthropic

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

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// apiVersion is sent on every request; the Messages API rejects
	// calls without it.
	apiVersion = "2023-06-01"

	// defaultMaxTokens applies when the caller leaves MaxTokens unset.
	// Anthropic makes the field mandatory.
	defaultMaxTokens = 1024
)

// Config configures the Anthropic client.
type Config struct {
	// APIKey authenticates requests (required).
	APIKey string

	// BaseURL overrides the API endpoint, e.g. for a proxy.
	BaseURL string

	// Model selects the Claude model.
	Model string

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// LLMService calls the Anthropic Messages API.
type LLMService struct {
	hc    *http.Client
	base  string
	key   string
	model string
}

// NewLLMService builds a client from cfg, filling in defaults for
// everything except the API key.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
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

	return &LLMService{
		hc:    &http.Client{Timeout: timeout},
		base:  base,
		key:   cfg.APIKey,
		model: model,
	}, nil
}

// turn is one message in the Messages API conversation body.
type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesPayload struct {
	Model         string   `json:"model"`
	MaxTokens     int      `json:"max_tokens"`
	Messages      []turn   `json:"messages"`
	System        string   `json:"system,omitempty"`
	Temperature   float64  `json:"temperature,omitempty"`
	StopSequences []string `json:"stop_sequences,omitempty"`
}

type messagesResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate produces a completion for a single user prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	payload := messagesPayload{
		Model:         s.model,
		MaxTokens:     opts.MaxTokens,
		Messages:      []turn{{Role: "user", Content: prompt}},
		Temperature:   opts.Temperature,
		StopSequences: opts.StopWords,
	}
	return s.complete(ctx, payload)
}

// Chat runs a conversation. A "system" role message becomes the
// top-level system field; the Messages API does not accept it in the
// turn list.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	payload := messagesPayload{
		Model:       s.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for _, m := range messages {
		if m.Role == "system" {
			payload.System = m.Content
			continue
		}
		payload.Messages = append(payload.Messages, turn{Role: m.Role, Content: m.Content})
	}
	return s.complete(ctx, payload)
}

// complete posts the payload to /v1/messages and joins the text blocks
// of the reply.
func (s *LLMService) complete(ctx context.Context, payload messagesPayload) (string, error) {
	if payload.MaxTokens == 0 {
		payload.MaxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("anthropic: encode request: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, "/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: read response: %w", err)
	}

	var result messagesResult
	if err := json.Unmarshal(raw, &result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("anthropic: status %d: %s", resp.StatusCode, raw)
		}
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("anthropic: %s", result.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic: status %d: %s", resp.StatusCode, raw)
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic: empty response content")
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

// ModelName returns the configured Claude model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models to verify the endpoint and API key without
// spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := s.newRequest(ctx, http.MethodGet, "/v1/models", http.NoBody)
	if err != nil {
		return err
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("anthropic: ping status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

// Close is a no-op; the underlying HTTP client holds no resources
// that need releasing.
func (s *LLMService) Close() error {
	return nil
}

// newRequest builds a request with the authentication and version
// headers every Anthropic call needs.
func (s *LLMService) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: build request: %w", err)
	}
	req.Header.Set("x-api-key", s.key)
	req.Header.Set("anthropic-version", apiVersion)
	return req, nil
}
