// Package tui is the interactive terminal interface. It drives the ask
// pipeline and browses the corpus through the same ports the CLI uses.
package tui

import (
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
	"github.com/recall-labs/recall-cli/internal/core/ports/driving"
)

// Ports carries the services the TUI needs. The ask view talks to Ask;
// the notes views read from Corpus.
type Ports struct {
	Ask    driving.AskService
	Corpus driven.BlobStore
}

// NewPorts bundles the services for NewApp.
func NewPorts(ask driving.AskService, corpus driven.BlobStore) *Ports {
	return &Ports{
		Ask:    ask,
		Corpus: corpus,
	}
}

// Validate reports which required port is missing, if any.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Corpus == nil {
		return ErrMissingCorpusStore
	}
	return nil
}
