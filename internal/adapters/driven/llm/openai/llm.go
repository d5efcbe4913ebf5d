// Package openai generates answers through the OpenAI chat completions API.
package openai

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
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o"
	DefaultTimeout = 120 * time.Second
)

// Config configures the OpenAI chat client. BaseURL may point at any
// compatible endpoint (Azure OpenAI, llama.cpp server, vLLM).
type Config struct {
	// APIKey authenticates requests (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model selects the chat model.
	Model string

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// LLMService calls the OpenAI /chat/completions endpoint.
type LLMService struct {
	client  *http.Client
	apiBase string
	bearer  string
	model   string
}

// NewLLMService builds a client from cfg, filling in defaults for
// everything except the API key.
func NewLLMService(cfg Config) (*LLMService, error) {
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

	return &LLMService{
		client:  &http.Client{Timeout: timeout},
		apiBase: base,
		bearer:  "Bearer " + cfg.APIKey,
		model:   model,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

type completionReply struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate produces a completion for a single user prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.send(ctx, completionRequest{
		Model:       s.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        opts.StopWords,
	})
}

// Chat runs a conversation. System messages pass through unchanged;
// the chat completions API accepts them in the message list.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	wire := make([]message, len(messages))
	for i, m := range messages {
		wire[i] = message{Role: m.Role, Content: m.Content}
	}
	return s.send(ctx, completionRequest{
		Model:       s.model,
		Messages:    wire,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
}

// send posts the completion request and returns the first choice.
func (s *LLMService) send(ctx context.Context, reqBody completionRequest) (string, error) {
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.apiBase+"/chat/completions", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.bearer)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}

	var reply completionReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, raw)
		}
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if reply.Error != nil {
		return "", fmt.Errorf("openai: %s", reply.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, raw)
	}
	if len(reply.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}

	return reply.Choices[0].Message.Content, nil
}

// ModelName returns the configured chat model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models to verify the endpoint and API key without
// running inference.
func (s *LLMService) Ping(ctx context.Context) error {
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
func (s *LLMService) Close() error {
	return nil
}
