package notes

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/messages"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/styles"
	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// MockCorpusStore implements driven.BlobStore for testing.
type MockCorpusStore struct {
	ListFunc func(ctx context.Context) ([]driven.BlobInfo, error)
	ReadFunc func(ctx context.Context, name string) ([]byte, error)
}

func (m *MockCorpusStore) List(ctx context.Context) ([]driven.BlobInfo, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []driven.BlobInfo{}, nil
}

func (m *MockCorpusStore) Read(ctx context.Context, name string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockCorpusStore) Metadata(ctx context.Context, name string) (map[string]string, error) {
	return nil, nil
}

func (m *MockCorpusStore) Write(ctx context.Context, name string, data []byte, metadata map[string]string) error {
	return nil
}

func (m *MockCorpusStore) Delete(ctx context.Context, name string) error {
	return nil
}

func (m *MockCorpusStore) Close() error {
	return nil
}

// Helper function to create test notes.
func testNotes() []driven.BlobInfo {
	return []driven.BlobInfo{
		{
			Name:     "devops/docker.md",
			Metadata: map[string]string{domain.MetaTitle: "Docker Basics"},
		},
		{
			Name:     "go/concurrency.md",
			Metadata: map[string]string{domain.MetaTitle: "Go Concurrency"},
		},
		{
			Name:     "linux/namespaces.md",
			Metadata: map[string]string{domain.MetaTitle: "Linux Namespaces"},
		},
	}
}

func TestNewView(t *testing.T) {
	s := styles.DefaultStyles()
	mock := &MockCorpusStore{}

	view := NewView(s, mock)

	require.NotNil(t, view)
	assert.False(t, view.ready)
	assert.Empty(t, view.notes)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	// Should create default styles
	assert.NotNil(t, view.styles)
}

func TestView_Init(t *testing.T) {
	mock := &MockCorpusStore{
		ListFunc: func(ctx context.Context) ([]driven.BlobInfo, error) {
			return testNotes(), nil
		},
	}
	view := NewView(nil, mock)

	cmd := view.Init()

	require.NotNil(t, cmd)
	assert.True(t, view.loading)

	result := cmd()
	loaded, ok := result.(messages.NotesLoaded)
	require.True(t, ok)
	assert.NoError(t, loaded.Err)
	assert.Len(t, loaded.Notes, 3)
}

func TestView_LoadNotes_NoStore(t *testing.T) {
	view := NewView(nil, nil)

	cmd := view.loadNotes()
	result := cmd()

	loaded, ok := result.(messages.NotesLoaded)
	require.True(t, ok)
	assert.Error(t, loaded.Err)
}

func TestView_LoadNotes_StoreError(t *testing.T) {
	mock := &MockCorpusStore{
		ListFunc: func(ctx context.Context) ([]driven.BlobInfo, error) {
			return nil, errors.New("listing failed")
		},
	}
	view := NewView(nil, mock)

	cmd := view.loadNotes()
	result := cmd()

	loaded, ok := result.(messages.NotesLoaded)
	require.True(t, ok)
	assert.Error(t, loaded.Err)
}

func TestView_LoadNotes_SortsByName(t *testing.T) {
	mock := &MockCorpusStore{
		ListFunc: func(ctx context.Context) ([]driven.BlobInfo, error) {
			return []driven.BlobInfo{
				{Name: "zsh/aliases.md"},
				{Name: "aws/iam.md"},
				{Name: "go/errors.md"},
			}, nil
		},
	}
	view := NewView(nil, mock)

	cmd := view.loadNotes()
	result := cmd()

	loaded, ok := result.(messages.NotesLoaded)
	require.True(t, ok)
	require.Len(t, loaded.Notes, 3)
	assert.Equal(t, "aws/iam.md", loaded.Notes[0].Name)
	assert.Equal(t, "go/errors.md", loaded.Notes[1].Name)
	assert.Equal(t, "zsh/aliases.md", loaded.Notes[2].Name)
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, nil)

	_, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
	assert.Equal(t, 40, view.height)
}

func TestView_Update_NotesLoaded(t *testing.T) {
	view := NewView(nil, nil)
	view.loading = true

	msg := messages.NotesLoaded{Notes: testNotes(), Err: nil}
	updated, cmd := view.Update(msg)

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.Len(t, view.notes, 3)
	assert.False(t, view.loading)
}

func TestView_Update_NotesLoaded_Error(t *testing.T) {
	view := NewView(nil, nil)
	view.loading = true

	msg := messages.NotesLoaded{Notes: nil, Err: errors.New("failed")}
	updated, cmd := view.Update(msg)

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.Error(t, view.err)
	assert.False(t, view.loading)
}

func TestView_Update_NotesLoaded_ResetsSelection(t *testing.T) {
	view := NewView(nil, nil)
	view.notes = testNotes()
	view.selected = 2

	// Reload returns fewer notes than the old selection index
	msg := messages.NotesLoaded{Notes: testNotes()[:1], Err: nil}
	view.Update(msg)

	assert.Equal(t, 0, view.selected)
	assert.Equal(t, 0, view.scrollOffset)
}

func TestView_Update_KeyMsg_Navigation(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)
	view.notes = testNotes()

	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}
	j := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	k := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}

	steps := []struct {
		key  tea.KeyMsg
		want int
	}{
		{down, 1},
		{j, 2},
		{down, 2}, // clamped at the last row
		{up, 1},
		{k, 0},
		{up, 0}, // clamped at the first row
	}
	for _, step := range steps {
		view.Update(step.key)
		assert.Equal(t, step.want, view.selected, "after %q", step.key.String())
	}
}

func TestView_Update_KeyMsg_Enter_SelectsNote(t *testing.T) {
	view := NewView(nil, nil)
	view.notes = testNotes()
	view.selected = 1

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	_, cmd := view.Update(msg)

	require.NotNil(t, cmd)
	result := cmd()
	selected, ok := result.(messages.NoteSelected)
	require.True(t, ok)
	assert.Equal(t, "go/concurrency.md", selected.Note.Name)
}

func TestView_Update_KeyMsg_Enter_NoNotes(t *testing.T) {
	view := NewView(nil, nil)

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	_, cmd := view.Update(msg)

	assert.Nil(t, cmd)
}

func TestView_Update_KeyMsg_Reload(t *testing.T) {
	listCalls := 0
	mock := &MockCorpusStore{
		ListFunc: func(ctx context.Context) ([]driven.BlobInfo, error) {
			listCalls++
			return testNotes(), nil
		},
	}
	view := NewView(nil, mock)

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}
	_, cmd := view.Update(msg)

	assert.True(t, view.loading)
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, listCalls)
}

func TestView_Update_KeyMsg_Back(t *testing.T) {
	view := NewView(nil, nil)

	msg := tea.KeyMsg{Type: tea.KeyEsc}
	_, cmd := view.Update(msg)

	require.NotNil(t, cmd)
	result := cmd()
	changed, ok := result.(messages.ViewChanged)
	assert.True(t, ok)
	assert.Equal(t, messages.ViewMenu, changed.View)
}

func TestView_Update_ErrorOccurred(t *testing.T) {
	view := NewView(nil, nil)

	msg := messages.ErrorOccurred{Err: errors.New("test error")}
	view.Update(msg)

	assert.Error(t, view.err)
}

func TestView_View_EmptyState(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s, nil)
	view.width = 80
	view.height = 24
	view.ready = true

	output := view.View()

	assert.Contains(t, output, "Corpus is empty")
}

func TestView_View_WithNotes(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s, nil)
	view.width = 80
	view.height = 24
	view.ready = true
	view.notes = testNotes()

	output := view.View()

	assert.Contains(t, output, "Notes (3)")
	assert.Contains(t, output, "Docker Basics")
	assert.Contains(t, output, "Go Concurrency")
	assert.Contains(t, output, "Linux Namespaces")
}

func TestView_View_TitleFallsBackToName(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s, nil)
	view.width = 80
	view.height = 24
	view.ready = true
	view.notes = []driven.BlobInfo{{Name: "misc/untitled.md"}}

	output := view.View()

	assert.Contains(t, output, "misc/untitled.md")
}

func TestView_View_Loading(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s, nil)
	view.width = 80
	view.height = 24
	view.ready = true
	view.loading = true

	output := view.View()

	assert.Contains(t, output, "Loading")
}

func TestView_View_Error(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s, nil)
	view.width = 80
	view.height = 24
	view.ready = true
	view.err = errors.New("something failed")

	output := view.View()

	assert.Contains(t, output, "Error")
}

func TestView_AdjustScroll(t *testing.T) {
	view := NewView(nil, nil)
	view.height = 10
	view.notes = make([]driven.BlobInfo, 20)

	// Select item beyond visible area
	view.selected = 15
	view.adjustScroll()

	assert.Greater(t, view.scrollOffset, 0)
}

func TestView_RenderNote_Truncation(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s, nil)
	view.width = 40
	view.height = 24
	view.ready = true

	// Long title and name that should be truncated
	view.notes = []driven.BlobInfo{
		{
			Name: "/very/long/path/to/some/deeply/nested/note.md",
			Metadata: map[string]string{
				domain.MetaTitle: "This is a very long note title that should be truncated",
			},
		},
	}

	output := view.View()
	// Should render without panic even with truncation
	assert.NotEmpty(t, output)
}

func TestView_SetDimensions(t *testing.T) {
	view := NewView(nil, nil)

	view.SetDimensions(100, 50)

	assert.Equal(t, 100, view.width)
	assert.Equal(t, 50, view.height)
	assert.True(t, view.ready)
}

func TestView_Notes_Getter(t *testing.T) {
	view := NewView(nil, nil)
	view.notes = testNotes()

	notes := view.Notes()

	assert.Len(t, notes, 3)
	assert.Equal(t, "devops/docker.md", notes[0].Name)
}

func TestView_SelectedIndex_Getter(t *testing.T) {
	view := NewView(nil, nil)
	view.selected = 2

	assert.Equal(t, 2, view.SelectedIndex())
}

func TestView_SelectedNote_Getter(t *testing.T) {
	view := NewView(nil, nil)
	view.notes = testNotes()
	view.selected = 1

	note := view.SelectedNote()
	require.NotNil(t, note)
	assert.Equal(t, "go/concurrency.md", note.Name)
}

func TestView_SelectedNote_Empty(t *testing.T) {
	view := NewView(nil, nil)

	note := view.SelectedNote()
	assert.Nil(t, note)
}

func TestView_Err_Getter(t *testing.T) {
	view := NewView(nil, nil)

	assert.Nil(t, view.Err())
}
