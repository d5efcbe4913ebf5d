package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// blob is a stored document with its metadata.
type blob struct {
	data     []byte
	metadata map[string]string
}

// BlobStore is an in-memory implementation of driven.BlobStore.
// The corpus is lost when the process exits, so it is only suitable
// for tests and throwaway sessions.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string]blob),
	}
}

// List returns every stored blob with its metadata, sorted by name.
func (s *BlobStore) List(_ context.Context) ([]driven.BlobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]driven.BlobInfo, 0, len(s.blobs))
	for name, b := range s.blobs {
		infos = append(infos, driven.BlobInfo{
			Name:     name,
			Metadata: copyMetadata(b.metadata),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Read returns the raw bytes of a blob.
func (s *BlobStore) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: blob %s", domain.ErrNotFound, name)
	}
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return data, nil
}

// Metadata returns the metadata of a blob without its content.
func (s *BlobStore) Metadata(_ context.Context, name string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: blob %s", domain.ErrNotFound, name)
	}
	return copyMetadata(b.metadata), nil
}

// Write stores a blob, overwriting any existing blob with the same name.
func (s *BlobStore) Write(_ context.Context, name string, data []byte, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[name] = blob{
		data:     stored,
		metadata: copyMetadata(metadata),
	}
	return nil
}

// Delete removes a blob.
func (s *BlobStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[name]; !ok {
		return fmt.Errorf("%w: blob %s", domain.ErrNotFound, name)
	}
	delete(s.blobs, name)
	return nil
}

// Close releases resources.
func (s *BlobStore) Close() error {
	return nil
}

// copyMetadata returns a defensive copy so callers cannot mutate stored state.
func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
