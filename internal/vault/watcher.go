package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/recall-labs/recall-cli/internal/logger"
)

// ChangeType describes what happened to a note.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is a single debounced vault event.
type Change struct {
	Type    ChangeType
	RelPath string
}

// DefaultDebounce is how long the watcher waits for a path to settle
// before emitting a change. Editors typically fire several writes in
// quick succession when saving a file.
const DefaultDebounce = 500 * time.Millisecond

// Watcher emits Change events for markdown notes under a vault
// directory, including notes in subdirectories created after the
// watcher starts.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	changes  chan Change
	debounce time.Duration
	done     chan struct{}

	mu       sync.Mutex
	pending  map[string]Change
	timers   map[string]*time.Timer
	inflight sync.WaitGroup
	closed   bool
}

// NewWatcher creates a watcher rooted at the vault directory. Call
// Run to start receiving events and Close to release the underlying
// file descriptors.
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		fsw:      fsw,
		changes:  make(chan Change, 64),
		debounce: debounce,
		done:     make(chan struct{}),
		pending:  make(map[string]Change),
		timers:   make(map[string]*time.Timer),
	}

	if err := w.watchTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Changes returns the channel of debounced vault events. It is closed
// when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run processes filesystem events until the context is cancelled or
// the watcher is closed. The changes channel is closed only after every
// fired debounce timer has finished emitting.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.inflight.Wait()
		close(w.changes)
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("vault watcher: %v", err)
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		if t.Stop() {
			w.inflight.Done()
		}
	}
	w.mu.Unlock()

	close(w.done)
	return w.fsw.Close()
}

// watchTree registers the root and every visible subdirectory.
func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watch vault: %w", err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// handleEvent classifies a raw fsnotify event and schedules a change
// for emission. Hidden paths, directories and non-markdown files are
// ignored. Newly created directories are added to the watch list so
// notes inside them are picked up.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if isHiddenPath(event.Name) {
		return
	}

	// Remove and Rename arrive after the path is gone, so they are
	// classified before any stat call.
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if isMarkdown(event.Name) {
			w.schedule(event.Name, ChangeDeleted)
		}
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if err := w.fsw.Add(event.Name); err != nil {
				logger.Warn("vault watcher: watch %s: %v", event.Name, err)
			}
		}
		return
	}
	if !isMarkdown(event.Name) {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		w.schedule(event.Name, ChangeCreated)
	case event.Op&fsnotify.Write != 0:
		w.schedule(event.Name, ChangeUpdated)
	}
}

// schedule records the latest change for a path and (re)arms its
// debounce timer.
func (w *Watcher) schedule(path string, typ ChangeType) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	// A create followed by writes within the window is still a create.
	if prev, ok := w.pending[rel]; !ok || !(prev.Type == ChangeCreated && typ == ChangeUpdated) {
		w.pending[rel] = Change{Type: typ, RelPath: rel}
	}

	if t, ok := w.timers[rel]; ok {
		if !t.Reset(w.debounce) {
			// The timer fired before the reset, so its callback runs
			// once for the old arm and once more for this one.
			w.inflight.Add(1)
		}
		return
	}
	w.inflight.Add(1)
	w.timers[rel] = time.AfterFunc(w.debounce, func() {
		defer w.inflight.Done()
		w.emit(rel)
	})
}

// emit flushes the pending change for a path to the channel.
func (w *Watcher) emit(rel string) {
	w.mu.Lock()
	change, ok := w.pending[rel]
	delete(w.pending, rel)
	delete(w.timers, rel)
	closed := w.closed
	w.mu.Unlock()

	if !ok || closed {
		return
	}
	select {
	case w.changes <- change:
	case <-w.done:
	}
}

// isHiddenPath reports whether any segment of the path is dot-prefixed.
// The relative segments "." and ".." do not count as hidden.
func isHiddenPath(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == "." || segment == ".." {
			continue
		}
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}
