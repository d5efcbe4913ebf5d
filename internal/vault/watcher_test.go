package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHiddenPath(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/.hidden/file.md", true},
		{"/home/user/.config/note.md", true},
		{".git/objects/ab", true},
		{"note.md", false},
		{"path/to/note.md", false},
		{"directory.name/note.md", false},
		{"note.hidden", false},
		{".", false},
		{"..", false},
		{"path/./note.md", false},
		{"path/../note.md", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHiddenPath(tt.path))
		})
	}
}

// waitChange receives one change from the watcher or fails the test.
func waitChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case change := <-w.Changes():
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

// assertNoChange asserts that nothing is emitted within a few debounce
// windows.
func assertNoChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case change := <-w.Changes():
		t.Fatalf("expected no change, got %+v", change)
	case <-time.After(150 * time.Millisecond):
	}
}

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := NewWatcher(root, 20*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestWatcherHandleEvent(t *testing.T) {
	tests := []struct {
		name         string
		setupFile    bool
		setupDir     bool
		fileName     string
		operation    fsnotify.Op
		expectChange bool
		expectedType ChangeType
	}{
		{
			name:         "create file",
			setupFile:    true,
			fileName:     "note.md",
			operation:    fsnotify.Create,
			expectChange: true,
			expectedType: ChangeCreated,
		},
		{
			name:         "write file",
			setupFile:    true,
			fileName:     "note.md",
			operation:    fsnotify.Write,
			expectChange: true,
			expectedType: ChangeUpdated,
		},
		{
			name:         "remove file",
			setupFile:    false,
			fileName:     "gone.md",
			operation:    fsnotify.Remove,
			expectChange: true,
			expectedType: ChangeDeleted,
		},
		{
			name:         "rename file",
			setupFile:    false,
			fileName:     "moved.md",
			operation:    fsnotify.Rename,
			expectChange: true,
			expectedType: ChangeDeleted,
		},
		{
			name:         "chmod is ignored",
			setupFile:    true,
			fileName:     "note.md",
			operation:    fsnotify.Chmod,
			expectChange: false,
		},
		{
			name:         "directory create is ignored",
			setupDir:     true,
			fileName:     "subdir",
			operation:    fsnotify.Create,
			expectChange: false,
		},
		{
			name:         "hidden file is ignored",
			setupFile:    true,
			fileName:     ".hidden.md",
			operation:    fsnotify.Write,
			expectChange: false,
		},
		{
			name:         "non markdown file is ignored",
			setupFile:    true,
			fileName:     "data.json",
			operation:    fsnotify.Write,
			expectChange: false,
		},
		{
			name:         "non markdown remove is ignored",
			setupFile:    false,
			fileName:     "data.json",
			operation:    fsnotify.Remove,
			expectChange: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			eventPath := filepath.Join(root, tt.fileName)

			if tt.setupDir {
				require.NoError(t, os.Mkdir(eventPath, 0755))
			} else if tt.setupFile {
				require.NoError(t, os.WriteFile(eventPath, []byte("content"), 0644))
			}

			w := newTestWatcher(t, root)
			w.handleEvent(fsnotify.Event{Name: eventPath, Op: tt.operation})

			if tt.expectChange {
				change := waitChange(t, w)
				assert.Equal(t, tt.expectedType, change.Type)
				assert.Equal(t, tt.fileName, change.RelPath)
			} else {
				assertNoChange(t, w)
			}
		})
	}

	t.Run("combined write and chmod", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "note.md")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

		w := newTestWatcher(t, root)
		w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write | fsnotify.Chmod})

		change := waitChange(t, w)
		assert.Equal(t, ChangeUpdated, change.Type)
	})
}

func TestWatcherDebounce(t *testing.T) {
	t.Run("rapid writes collapse into one change", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "note.md")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

		w := newTestWatcher(t, root)
		for i := 0; i < 5; i++ {
			w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
		}

		change := waitChange(t, w)
		assert.Equal(t, ChangeUpdated, change.Type)
		assert.Equal(t, "note.md", change.RelPath)
		assertNoChange(t, w)
	})

	t.Run("create followed by write stays a create", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "fresh.md")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

		w := newTestWatcher(t, root)
		w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})
		w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})

		change := waitChange(t, w)
		assert.Equal(t, ChangeCreated, change.Type)
		assertNoChange(t, w)
	})
}

func TestWatcherRun(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "live.md"), []byte("# Live\n"), 0644))

	change := waitChange(t, w)
	assert.Equal(t, ChangeCreated, change.Type)
	assert.Equal(t, "live.md", change.RelPath)
}
