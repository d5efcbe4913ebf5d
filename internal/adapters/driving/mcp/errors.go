// Package mcp provides an MCP (Model Context Protocol) server adapter for Recall.
// It enables AI assistants like Claude to answer questions from the user's notes.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
