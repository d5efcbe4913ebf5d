package mcp

import (
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
	"github.com/recall-labs/recall-cli/internal/core/ports/driving"
)

// Ports aggregates everything the MCP server drives.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions and runs retrieval.
	Ask driving.AskService

	// Corpus exposes stored notes as readable resources.
	Corpus driven.BlobStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	// Corpus is optional; without it the document resources are empty.
	return nil
}
