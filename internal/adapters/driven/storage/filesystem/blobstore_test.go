package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

func newTestBlobStore(t *testing.T) *BlobStore {
	t.Helper()
	store, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewBlobStore_CreatesRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "corpus")

	store, err := NewBlobStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Root())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestBlobStore_WriteAndRead(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	err := store.Write(ctx, "notes/todo.md", []byte("# Todo\n- milk"), map[string]string{"title": "Todo"})
	require.NoError(t, err)

	data, err := store.Read(ctx, "notes/todo.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("# Todo\n- milk"), data)

	// Blob and sidecar land on disk where expected.
	_, err = os.Stat(filepath.Join(store.Root(), "notes", "todo.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(store.Root(), "notes", "todo.md"+metaSuffix))
	assert.NoError(t, err)
}

func TestBlobStore_Write_Overwrite(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "note.md", []byte("first"), map[string]string{"rev": "1"}))
	require.NoError(t, store.Write(ctx, "note.md", []byte("second"), map[string]string{"rev": "2"}))

	data, err := store.Read(ctx, "note.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	meta, err := store.Metadata(ctx, "note.md")
	require.NoError(t, err)
	assert.Equal(t, "2", meta["rev"])
}

func TestBlobStore_Write_NilMetadataClearsSidecar(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "note.md", []byte("v1"), map[string]string{"title": "Note"}))
	require.NoError(t, store.Write(ctx, "note.md", []byte("v2"), nil))

	meta, err := store.Metadata(ctx, "note.md")
	require.NoError(t, err)
	assert.Nil(t, meta)

	_, err = os.Stat(filepath.Join(store.Root(), "note.md"+metaSuffix))
	assert.True(t, os.IsNotExist(err))
}

func TestBlobStore_Read_NotFound(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	data, err := store.Read(ctx, "missing.md")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, data)
}

func TestBlobStore_Metadata_NotFound(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	meta, err := store.Metadata(ctx, "missing.md")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, meta)
}

func TestBlobStore_Metadata_NoSidecar(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	// A blob written by hand has no sidecar; that is not an error.
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "raw.md"), []byte("content"), 0o644))

	meta, err := store.Metadata(ctx, "raw.md")

	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestBlobStore_List(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "zebra.md", []byte("z"), nil))
	require.NoError(t, store.Write(ctx, "alpha.md", []byte("a"), map[string]string{"title": "Alpha"}))
	require.NoError(t, store.Write(ctx, "notes/middle.md", []byte("m"), map[string]string{"title": "Middle"}))

	infos, err := store.List(ctx)

	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "alpha.md", infos[0].Name)
	assert.Equal(t, "notes/middle.md", infos[1].Name)
	assert.Equal(t, "zebra.md", infos[2].Name)
	assert.Equal(t, "Alpha", infos[0].Metadata["title"])
	assert.Equal(t, "Middle", infos[1].Metadata["title"])
}

func TestBlobStore_List_SkipsSidecars(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "note.md", []byte("content"), map[string]string{"title": "Note"}))

	infos, err := store.List(ctx)

	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "note.md", infos[0].Name)
}

func TestBlobStore_List_Empty(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	infos, err := store.List(ctx)

	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestBlobStore_Delete(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "note.md", []byte("content"), map[string]string{"title": "Note"}))

	err := store.Delete(ctx, "note.md")
	require.NoError(t, err)

	_, err = store.Read(ctx, "note.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Sidecar is removed with the blob.
	_, err = os.Stat(filepath.Join(store.Root(), "note.md"+metaSuffix))
	assert.True(t, os.IsNotExist(err))
}

func TestBlobStore_Delete_NotFound(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	err := store.Delete(ctx, "missing.md")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlobStore_RejectsEscapingNames(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	names := []string{
		"../outside.md",
		"../../etc/passwd",
		"notes/../../outside.md",
		"/absolute.md",
		"",
	}

	for _, name := range names {
		err := store.Write(ctx, name, []byte("x"), nil)
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration, "name %q", name)

		_, err = store.Read(ctx, name)
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration, "name %q", name)
	}
}

func TestBlobStore_DotSegmentsWithinRoot(t *testing.T) {
	store := newTestBlobStore(t)
	ctx := context.Background()

	// Dot segments that stay inside the root are fine after cleaning.
	err := store.Write(ctx, "notes/../note.md", []byte("content"), nil)
	require.NoError(t, err)

	data, err := store.Read(ctx, "note.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)
}

func TestBlobStore_Close(t *testing.T) {
	store := newTestBlobStore(t)

	err := store.Close()
	assert.NoError(t, err)
}
