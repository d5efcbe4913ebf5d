package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driving"
)

// --- Mock implementations ---

type mockAskService struct {
	answer       *domain.Answer
	chunks       []domain.RetrievedChunk
	err          error
	lastQuestion string
	lastTopK     int
}

var _ driving.AskService = (*mockAskService)(nil)

func (m *mockAskService) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	m.lastQuestion = question
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAskService) Retrieve(ctx context.Context, question string, topK int) ([]domain.RetrievedChunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

// --- Helpers ---

func doRequest(server *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestServer_HandleAsk_ReturnsAnswer(t *testing.T) {
	ask := &mockAskService{
		answer: &domain.Answer{
			Text: "Docker is a containerisation platform.",
			Sources: []domain.Source{
				{Title: "Docker Basics", Path: "devops/docker.md"},
			},
		},
	}
	server := NewServer(ask, "test")

	rec := doRequest(server, http.MethodPost, "/ask",
		`{"question": "What are my notes on Docker?", "top_k": 5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"answer": "Docker is a containerisation platform.",
		  "sources": [{"title": "Docker Basics", "path": "devops/docker.md"}]}`,
		rec.Body.String())
	assert.Equal(t, "What are my notes on Docker?", ask.lastQuestion)
	assert.Equal(t, 5, ask.lastTopK)
}

func TestServer_HandleAsk_EmptySourcesStayArray(t *testing.T) {
	ask := &mockAskService{
		answer: &domain.Answer{
			Text:    "No relevant notes found.",
			Sources: []domain.Source{},
		},
	}
	server := NewServer(ask, "test")

	rec := doRequest(server, http.MethodPost, "/ask", `{"question": "anything here?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer": "No relevant notes found.", "sources": []}`, rec.Body.String())
}

func TestServer_HandleAsk_InvalidQuery(t *testing.T) {
	ask := &mockAskService{
		err: fmt.Errorf("%w: question must be at least 3 characters", domain.ErrInvalidQuery),
	}
	server := NewServer(ask, "test")

	rec := doRequest(server, http.MethodPost, "/ask", `{"question": "hi"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "question must be at least 3 characters")
}

func TestServer_HandleAsk_InternalErrorIsGeneric(t *testing.T) {
	ask := &mockAskService{
		err: errors.New("openai: 401 unauthorized for key sk-secret"),
	}
	server := NewServer(ask, "test")

	rec := doRequest(server, http.MethodPost, "/ask", `{"question": "What are my notes on Docker?"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "internal error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "sk-secret")
}

func TestServer_HandleAsk_MalformedBody(t *testing.T) {
	server := NewServer(&mockAskService{}, "test")

	rec := doRequest(server, http.MethodPost, "/ask", `{"question": `)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "invalid request body"}`, rec.Body.String())
}

func TestServer_Healthz(t *testing.T) {
	server := NewServer(&mockAskService{}, "test")

	rec := doRequest(server, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Info(t *testing.T) {
	server := NewServer(&mockAskService{}, "1.2.3")

	rec := doRequest(server, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"service": "recall", "version": "1.2.3"}`, rec.Body.String())
}
