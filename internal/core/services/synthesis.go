package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
	"github.com/recall-labs/recall-cli/internal/logger"
)

// Ensure Synthesis accepts a custom prompt store.
var _ driven.PromptStoreAware = (*Synthesis)(nil)

// defaultAnswerSystemPrompt is the fallback system instruction when no
// PromptStore is configured.
const defaultAnswerSystemPrompt = `You are a helpful assistant answering questions about the user's personal notes.
Answer using ONLY the provided note excerpts. If the excerpts do not contain
enough information to answer, say so plainly instead of guessing.
Keep answers concise and cite note titles when it helps the reader.`

// defaultNoResultsAnswer is the fallback canned answer when no PromptStore
// is configured.
const defaultNoResultsAnswer = `I could not find any relevant notes for your question.`

// contextSeparator joins chunk blocks in the generation context.
const contextSeparator = "\n\n---\n\n"

// Synthesis is the answer-generation stage. It turns retrieved chunks into
// a grounded answer with source attribution. When retrieval found nothing
// it returns the canned no-results answer without touching the generation
// model.
type Synthesis struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
	maxTokens   int
	temperature float64
}

// NewSynthesis creates the synthesis stage. maxTokens bounds the generated
// answer and temperature sets the sampling temperature.
func NewSynthesis(llm driven.LLMService, maxTokens int, temperature float64) *Synthesis {
	return &Synthesis{
		llm:         llm,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *Synthesis) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Synthesize produces the final answer for a question from its retrieved
// chunks. Chunks must arrive in rank order; the context is assembled in
// that order and sources are deduplicated by path, keeping first-seen
// positions. A generation failure is returned as-is, never papered over
// with a partial answer.
func (s *Synthesis) Synthesize(ctx context.Context, question string, chunks []domain.RetrievedChunk) (*domain.Answer, error) {
	if len(chunks) == 0 {
		logger.Debug("No chunks retrieved, returning no-results answer")
		return &domain.Answer{
			Text:    s.loadPrompt(driven.PromptNoResults, defaultNoResultsAnswer),
			Sources: []domain.Source{},
		}, nil
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: s.loadPrompt(driven.PromptAnswerSystem, defaultAnswerSystemPrompt)},
		{Role: "user", Content: buildUserMessage(question, chunks)},
	}

	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: collectSources(chunks),
	}, nil
}

// buildUserMessage assembles the user turn: the retrieved excerpts as
// "**title**\ncontent" blocks in rank order, then the question.
func buildUserMessage(question string, chunks []domain.RetrievedChunk) string {
	blocks := make([]string, len(chunks))
	for i, chunk := range chunks {
		blocks[i] = fmt.Sprintf("**%s**\n%s", chunk.Title, chunk.Content)
	}

	var b strings.Builder
	b.WriteString("Here are the relevant note excerpts:\n\n")
	b.WriteString(strings.Join(blocks, contextSeparator))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// collectSources deduplicates chunk origins by source path, keeping
// first-seen rank order.
func collectSources(chunks []domain.RetrievedChunk) []domain.Source {
	seen := make(map[string]bool, len(chunks))
	sources := make([]domain.Source, 0, len(chunks))
	for _, chunk := range chunks {
		if seen[chunk.SourcePath] {
			continue
		}
		seen[chunk.SourcePath] = true
		sources = append(sources, domain.Source{
			Title: chunk.Title,
			Path:  chunk.SourcePath,
		})
	}
	return sources
}

// loadPrompt loads a prompt from the store, falling back to the default if
// unavailable.
func (s *Synthesis) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}
