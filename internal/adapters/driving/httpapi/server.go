// Package httpapi exposes the question-answering pipeline over HTTP.
// The surface is deliberately small: POST /ask drives the ask service,
// GET /healthz reports liveness, GET / identifies the service.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driving"
	"github.com/recall-labs/recall-cli/internal/logger"
)

// Server wraps an echo instance around the ask service.
type Server struct {
	echo    *echo.Echo
	ask     driving.AskService
	version string
}

// NewServer builds the router. The ask service must be non-nil.
func NewServer(ask driving.AskService, version string) *Server {
	s := &Server{ask: ask, version: version}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = s.errorHandler

	e.GET("/", s.handleInfo)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/ask", s.handleAsk)

	s.echo = e
	return s
}

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP dispatches through the router, letting the server double as
// an http.Handler in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// errorHandler renders every error as structured JSON. Internal errors
// are logged with detail but reported generically so provider failures
// never leak credentials or endpoints to callers.
func (s *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}

	req := c.Request()
	logger.Warn("http %d %s %s: %v", code, req.Method, req.URL.Path, err)

	if !c.Response().Committed {
		if jerr := c.JSON(code, map[string]string{"error": msg}); jerr != nil {
			logger.Warn("http error response: %v", jerr)
		}
	}
}

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

func (s *Server) handleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	answer, err := s.ask.Ask(c.Request().Context(), req.Question, req.TopK)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, answer)
}

func (s *Server) handleInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "recall",
		"version": s.version,
	})
}
