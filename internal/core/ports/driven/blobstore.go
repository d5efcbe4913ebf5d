package driven

import "context"

// BlobInfo describes a stored document blob.
type BlobInfo struct {
	// Name is the blob name, which is the document's source path.
	Name string

	// Metadata is the flat string map written with the blob. It carries at
	// least the title, comma-joined tags, and content md5 keys defined in
	// the domain package.
	Metadata map[string]string
}

// BlobStore persists raw documents and their metadata.
// It is the corpus of record: the vault uploads into it and the index
// builder reads out of it.
//
// Implementations may include:
//   - Filesystem directory (default)
//   - In-memory store (tests)
type BlobStore interface {
	// List returns every stored blob with its metadata.
	List(ctx context.Context) ([]BlobInfo, error)

	// Read returns the raw bytes of a blob.
	// Returns domain.ErrNotFound if the blob does not exist.
	Read(ctx context.Context, name string) ([]byte, error)

	// Metadata returns the metadata of a blob without reading its content.
	// Returns domain.ErrNotFound if the blob does not exist.
	Metadata(ctx context.Context, name string) (map[string]string, error)

	// Write stores a blob with its metadata, overwriting any existing blob
	// with the same name.
	Write(ctx context.Context, name string, data []byte, metadata map[string]string) error

	// Delete removes a blob.
	// Returns domain.ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, name string) error

	// Close releases resources.
	Close() error
}
