package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// MockAskService implements driving.AskService for testing.
type MockAskService struct {
	AskFunc func(ctx context.Context, question string, topK int) (*domain.Answer, error)

	RetrieveFunc func(ctx context.Context, question string, topK int) ([]domain.RetrievedChunk, error)
}

func (m *MockAskService) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question, topK)
	}
	return &domain.Answer{}, nil
}

func (m *MockAskService) Retrieve(
	ctx context.Context, question string, topK int,
) ([]domain.RetrievedChunk, error) {
	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, question, topK)
	}
	return nil, nil
}

// MockCorpusStore implements driven.BlobStore for testing.
type MockCorpusStore struct {
	ListFunc func(ctx context.Context) ([]driven.BlobInfo, error)
	ReadFunc func(ctx context.Context, name string) ([]byte, error)
}

func (m *MockCorpusStore) List(ctx context.Context) ([]driven.BlobInfo, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockCorpusStore) Read(ctx context.Context, name string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockCorpusStore) Metadata(ctx context.Context, name string) (map[string]string, error) {
	return nil, nil
}

func (m *MockCorpusStore) Write(ctx context.Context, name string, data []byte, metadata map[string]string) error {
	return nil
}

func (m *MockCorpusStore) Delete(ctx context.Context, name string) error {
	return nil
}

func (m *MockCorpusStore) Close() error {
	return nil
}

func TestNewPorts(t *testing.T) {
	ask := &MockAskService{}
	corpus := &MockCorpusStore{}

	ports := NewPorts(ask, corpus)

	require.NotNil(t, ports)
	assert.Equal(t, ask, ports.Ask)
	assert.Equal(t, corpus, ports.Corpus)
}

func TestPorts_Validate_AllSet(t *testing.T) {
	ports := &Ports{
		Ask:    &MockAskService{},
		Corpus: &MockCorpusStore{},
	}

	err := ports.Validate()

	assert.NoError(t, err)
}

func TestPorts_Validate_MissingAsk(t *testing.T) {
	ports := &Ports{
		Ask:    nil,
		Corpus: &MockCorpusStore{},
	}

	err := ports.Validate()

	assert.ErrorIs(t, err, ErrMissingAskService)
}

func TestPorts_Validate_MissingCorpus(t *testing.T) {
	ports := &Ports{
		Ask:    &MockAskService{},
		Corpus: nil,
	}

	err := ports.Validate()

	assert.ErrorIs(t, err, ErrMissingCorpusStore)
}
