package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driving"
)

// mockAskService implements driving.AskService for testing.
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

func setupAskTest(mock driving.AskService) func() {
	oldAsk := askService
	askService = mock
	return func() {
		askService = oldAsk
		askTopK = 0
		askJSON = false
	}
}

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_Short(t *testing.T) {
	assert.Equal(t, "Ask a question about your notes", askCmd.Short)
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	mock := &mockAskService{
		answer: &domain.Answer{
			Text: "Docker is a containerisation platform.",
			Sources: []domain.Source{
				{Title: "Docker Basics", Path: "devops/docker.md"},
			},
		},
	}
	cleanup := setupAskTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "What are my notes on Docker?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Docker is a containerisation platform.")
	assert.Contains(t, buf.String(), "Sources:")
	assert.Contains(t, buf.String(), "[1] Docker Basics (devops/docker.md)")
	assert.Equal(t, "What are my notes on Docker?", mock.lastQuestion)
	assert.Equal(t, 0, mock.lastTopK)
}

func TestAskCmd_NoSourcesOmitsSection(t *testing.T) {
	mock := &mockAskService{
		answer: &domain.Answer{
			Text:    "No relevant notes found.",
			Sources: []domain.Source{},
		},
	}
	cleanup := setupAskTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "anything at all?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No relevant notes found.")
	assert.NotContains(t, buf.String(), "Sources:")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	mock := &mockAskService{
		answer: &domain.Answer{
			Text: "Docker is a containerisation platform.",
			Sources: []domain.Source{
				{Title: "Docker Basics", Path: "devops/docker.md"},
			},
		},
	}
	cleanup := setupAskTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "What are my notes on Docker?", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"answer": "Docker is a containerisation platform."`)
	assert.Contains(t, buf.String(), `"title": "Docker Basics"`)
	assert.Contains(t, buf.String(), `"path": "devops/docker.md"`)
}

func TestAskCmd_TopKFlag(t *testing.T) {
	mock := &mockAskService{
		answer: &domain.Answer{Text: "ok", Sources: []domain.Source{}},
	}
	cleanup := setupAskTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "What are my notes on Docker?", "-k", "7"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, 7, mock.lastTopK)
}

func TestAskCmd_InvalidQueryShowsReason(t *testing.T) {
	mock := &mockAskService{
		err: fmt.Errorf("%w: question must be at least 3 characters", domain.ErrInvalidQuery),
	}
	cleanup := setupAskTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "hi"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "question must be at least 3 characters")
	assert.NotContains(t, err.Error(), "ask failed")
}

func TestAskCmd_ServiceErrorWrapped(t *testing.T) {
	mock := &mockAskService{
		err: errors.New("generation endpoint unreachable"),
	}
	cleanup := setupAskTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "What are my notes on Docker?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed")
}
