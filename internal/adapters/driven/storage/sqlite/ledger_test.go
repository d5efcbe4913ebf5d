package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

// setupTestLedger creates a temporary SQLite ledger for testing.
func setupTestLedger(t *testing.T) *Ledger {
	t.Helper()

	ledger, err := NewLedger(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, ledger)

	t.Cleanup(func() {
		assert.NoError(t, ledger.Close())
	})
	return ledger
}

func TestNewLedger_Success(t *testing.T) {
	tempDir := t.TempDir()

	ledger, err := NewLedger(tempDir)
	require.NoError(t, err)
	require.NotNil(t, ledger)
	defer ledger.Close()

	// Verify database file was created
	dbPath := filepath.Join(tempDir, "ledger.db")
	assert.Equal(t, dbPath, ledger.Path())
	assert.FileExists(t, dbPath)

	// Verify database connection is working
	err = ledger.db.Ping()
	assert.NoError(t, err)
}

func TestNewLedger_ErrorHandling(t *testing.T) {
	// Invalid path should fail to create the directory
	_, err := NewLedger("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewLedger_DirectoryCreation(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "nested", "path", "to", "db")

	ledger, err := NewLedger(nestedDir)
	require.NoError(t, err)
	defer ledger.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewLedger_Migrations(t *testing.T) {
	ledger := setupTestLedger(t)

	// Verify schema_migrations table exists and at least one migration ran
	var count int
	err := ledger.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "should have at least one migration")
}

func TestNewLedger_ReopenIsIdempotent(t *testing.T) {
	tempDir := t.TempDir()

	ledger1, err := NewLedger(tempDir)
	require.NoError(t, err)

	_ = ledger1.SetIndexedState(context.Background(), domain.IndexedState{
		SourcePath: "note.md",
		ContentMD5: "abc",
		ChunkCount: 2,
	})
	require.NoError(t, ledger1.Close())

	// Reopening skips already-applied migrations and keeps the data.
	ledger2, err := NewLedger(tempDir)
	require.NoError(t, err)
	defer ledger2.Close()

	state, err := ledger2.IndexedState(context.Background(), "note.md")
	require.NoError(t, err)
	assert.Equal(t, "abc", state.ContentMD5)
}

func TestLedger_IndexedState_NotFound(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	state, err := ledger.IndexedState(ctx, "never-indexed.md")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, state)
}

func TestLedger_SetIndexedState_RoundTrip(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	indexedAt := time.Now().UTC().Truncate(time.Second)
	err := ledger.SetIndexedState(ctx, domain.IndexedState{
		SourcePath: "notes/todo.md",
		ContentMD5: "d41d8cd98f00b204e9800998ecf8427e",
		ChunkCount: 4,
		IndexedAt:  indexedAt,
	})
	require.NoError(t, err)

	state, err := ledger.IndexedState(ctx, "notes/todo.md")
	require.NoError(t, err)
	assert.Equal(t, "notes/todo.md", state.SourcePath)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", state.ContentMD5)
	assert.Equal(t, 4, state.ChunkCount)
	assert.True(t, state.IndexedAt.Equal(indexedAt))
}

func TestLedger_SetIndexedState_Upsert(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	_ = ledger.SetIndexedState(ctx, domain.IndexedState{
		SourcePath: "note.md", ContentMD5: "old", ChunkCount: 8,
	})
	_ = ledger.SetIndexedState(ctx, domain.IndexedState{
		SourcePath: "note.md", ContentMD5: "new", ChunkCount: 3,
	})

	state, err := ledger.IndexedState(ctx, "note.md")
	require.NoError(t, err)
	assert.Equal(t, "new", state.ContentMD5)
	assert.Equal(t, 3, state.ChunkCount)

	// Upsert must not create a second row
	var count int
	err = ledger.db.QueryRow("SELECT COUNT(*) FROM index_state").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLedger_DeleteIndexedState(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	_ = ledger.SetIndexedState(ctx, domain.IndexedState{SourcePath: "note.md", ContentMD5: "abc"})

	err := ledger.DeleteIndexedState(ctx, "note.md")
	require.NoError(t, err)

	_, err = ledger.IndexedState(ctx, "note.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedger_DeleteIndexedState_Absent(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	// Deleting a record that was never written is not an error.
	err := ledger.DeleteIndexedState(ctx, "nonexistent.md")
	assert.NoError(t, err)
}

func TestLedger_RecordRun_RoundTrip(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	run := domain.IngestRun{
		ID:         "run-1",
		Kind:       domain.RunKindIndex,
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Processed:  12,
		Skipped:    3,
		Failed:     1,
	}

	err := ledger.RecordRun(ctx, run)
	require.NoError(t, err)

	runs, err := ledger.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, domain.RunKindIndex, runs[0].Kind)
	assert.True(t, runs[0].StartedAt.Equal(started))
	assert.True(t, runs[0].FinishedAt.Equal(started.Add(30*time.Second)))
	assert.Equal(t, 12, runs[0].Processed)
	assert.Equal(t, 3, runs[0].Skipped)
	assert.Equal(t, 1, runs[0].Failed)
}

func TestLedger_RecentRuns_NewestFirst(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := ledger.RecordRun(ctx, domain.IngestRun{
			ID:        fmt.Sprintf("run-%d", i),
			Kind:      domain.RunKindUpload,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	runs, err := ledger.RecentRuns(ctx, 10)

	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, "run-0", runs[2].ID)
}

func TestLedger_RecentRuns_Limit(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		_ = ledger.RecordRun(ctx, domain.IngestRun{
			ID:        fmt.Sprintf("run-%d", i),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	runs, err := ledger.RecentRuns(ctx, 2)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-4", runs[0].ID)
	assert.Equal(t, "run-3", runs[1].ID)
}

func TestLedger_RecentRuns_Empty(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	runs, err := ledger.RecentRuns(ctx, 10)

	require.NoError(t, err)
	assert.Empty(t, runs)
}
