package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// metaSuffix marks the sidecar file that carries a blob's metadata.
const metaSuffix = ".meta.json"

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore persists document blobs as plain files under a root directory.
// Each blob lives at root/<name> with its metadata in a JSON sidecar at
// root/<name>.meta.json, so the corpus stays inspectable with ordinary
// shell tools.
type BlobStore struct {
	root string
}

// NewBlobStore creates a blob store rooted at dir.
// If dir is empty, defaults to ~/.recall/corpus.
func NewBlobStore(dir string) (*BlobStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".recall", "corpus")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating corpus directory: %w", err)
	}

	return &BlobStore{root: dir}, nil
}

// Root returns the corpus directory.
func (s *BlobStore) Root() string {
	return s.root
}

// List returns every stored blob with its metadata, sorted by name.
func (s *BlobStore) List(_ context.Context) ([]driven.BlobInfo, error) {
	var infos []driven.BlobInfo

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), metaSuffix) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("resolving blob path %s: %w", path, err)
		}
		name := filepath.ToSlash(rel)

		meta, err := s.readMetadata(name)
		if err != nil {
			return err
		}
		infos = append(infos, driven.BlobInfo{Name: name, Metadata: meta})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus: %w", err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Read returns the raw bytes of a blob.
func (s *BlobStore) Read(_ context.Context, name string) ([]byte, error) {
	path, err := s.blobPath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: blob %s", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading blob %s: %w", name, err)
	}
	return data, nil
}

// Metadata returns the metadata of a blob without reading its content.
func (s *BlobStore) Metadata(_ context.Context, name string) (map[string]string, error) {
	path, err := s.blobPath(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: blob %s", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("checking blob %s: %w", name, err)
	}
	return s.readMetadata(name)
}

// Write stores a blob and its metadata, overwriting any existing blob
// with the same name.
func (s *BlobStore) Write(_ context.Context, name string, data []byte, metadata map[string]string) error {
	path, err := s.blobPath(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing blob %s: %w", name, err)
	}

	if metadata == nil {
		// An overwrite without metadata clears any stale sidecar.
		if err := os.Remove(path + metaSuffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale metadata for %s: %w", name, err)
		}
		return nil
	}

	encoded, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata for %s: %w", name, err)
	}
	if err := os.WriteFile(path+metaSuffix, encoded, 0o644); err != nil {
		return fmt.Errorf("writing metadata for %s: %w", name, err)
	}
	return nil
}

// Delete removes a blob and its metadata sidecar.
func (s *BlobStore) Delete(_ context.Context, name string) error {
	path, err := s.blobPath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: blob %s", domain.ErrNotFound, name)
		}
		return fmt.Errorf("deleting blob %s: %w", name, err)
	}
	if err := os.Remove(path + metaSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting metadata for %s: %w", name, err)
	}
	return nil
}

// Close releases resources.
func (s *BlobStore) Close() error {
	return nil
}

// blobPath resolves a blob name to its file path, rejecting names that
// would escape the corpus root.
func (s *BlobStore) blobPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty blob name", domain.ErrInvalidConfiguration)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: blob name %q escapes the corpus", domain.ErrInvalidConfiguration, name)
	}
	return filepath.Join(s.root, clean), nil
}

// readMetadata loads a blob's sidecar, returning nil when there is none.
func (s *BlobStore) readMetadata(name string) (map[string]string, error) {
	path, err := s.blobPath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path + metaSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading metadata for %s: %w", name, err)
	}

	var meta map[string]string
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decoding metadata for %s: %w", name, err)
	}
	return meta, nil
}
