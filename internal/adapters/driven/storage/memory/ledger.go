package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// Ensure IngestLedger implements the interface.
var _ driven.IngestLedger = (*IngestLedger)(nil)

// IngestLedger is an in-memory implementation of driven.IngestLedger.
type IngestLedger struct {
	mu     sync.RWMutex
	states map[string]domain.IndexedState
	runs   []domain.IngestRun
}

// NewIngestLedger creates a new in-memory ingest ledger.
func NewIngestLedger() *IngestLedger {
	return &IngestLedger{
		states: make(map[string]domain.IndexedState),
	}
}

// IndexedState returns the recorded state for a document.
func (l *IngestLedger) IndexedState(_ context.Context, sourcePath string) (*domain.IndexedState, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	state, ok := l.states[sourcePath]
	if !ok {
		return nil, fmt.Errorf("%w: no indexed state for %s", domain.ErrNotFound, sourcePath)
	}
	return &state, nil
}

// SetIndexedState records the state for a document.
func (l *IngestLedger) SetIndexedState(_ context.Context, state domain.IndexedState) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[state.SourcePath] = state
	return nil
}

// DeleteIndexedState removes the record for a document.
func (l *IngestLedger) DeleteIndexedState(_ context.Context, sourcePath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.states, sourcePath)
	return nil
}

// RecordRun appends a run to the history.
func (l *IngestLedger) RecordRun(_ context.Context, run domain.IngestRun) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, run)
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (l *IngestLedger) RecentRuns(_ context.Context, limit int) ([]domain.IngestRun, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.runs) {
		limit = len(l.runs)
	}
	out := make([]domain.IngestRun, 0, limit)
	for i := len(l.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.runs[i])
	}
	return out, nil
}

// Close releases resources.
func (l *IngestLedger) Close() error {
	return nil
}
