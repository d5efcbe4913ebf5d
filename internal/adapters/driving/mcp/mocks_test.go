package mcp

import (
	"context"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer       *domain.Answer
	chunks       []domain.RetrievedChunk
	err          error
	lastQuestion string
	lastTopK     int
}

func (m *mockAskService) Ask(_ context.Context, question string, topK int) (*domain.Answer, error) {
	m.lastQuestion = question
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAskService) Retrieve(_ context.Context, question string, topK int) ([]domain.RetrievedChunk, error) {
	m.lastQuestion = question
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

// failingCorpus is a corpus that errors on every call, for failure paths.
type failingCorpus struct {
	err error
}

func (c *failingCorpus) List(_ context.Context) ([]driven.BlobInfo, error) {
	return nil, c.err
}

func (c *failingCorpus) Read(_ context.Context, _ string) ([]byte, error) {
	return nil, c.err
}

func (c *failingCorpus) Metadata(_ context.Context, _ string) (map[string]string, error) {
	return nil, c.err
}

func (c *failingCorpus) Write(_ context.Context, _ string, _ []byte, _ map[string]string) error {
	return c.err
}

func (c *failingCorpus) Delete(_ context.Context, _ string) error {
	return c.err
}

func (c *failingCorpus) Close() error {
	return nil
}
