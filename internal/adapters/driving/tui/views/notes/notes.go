// Package notes lists every note stored in the corpus.
package notes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/messages"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/styles"
	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// listChrome is the vertical space the title, indicator and help footer
// take around the listing.
const listChrome = 8

// View is the notes list. Enter opens the selected note, r reloads the
// corpus listing.
type View struct {
	styles *styles.Styles
	corpus driven.BlobStore

	notes        []driven.BlobInfo
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
}

// NewView creates the notes list view. A nil style set falls back to the
// defaults.
func NewView(s *styles.Styles, corpus driven.BlobStore) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, corpus: corpus, notes: []driven.BlobInfo{}}
}

// Init starts the initial corpus listing.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadNotes()
}

func (v *View) loadNotes() tea.Cmd {
	return func() tea.Msg {
		if v.corpus == nil {
			return messages.NotesLoaded{Err: fmt.Errorf("corpus store not available")}
		}
		notes, err := v.corpus.List(context.Background())
		if err != nil {
			return messages.NotesLoaded{Err: err}
		}
		sort.Slice(notes, func(i, j int) bool { return notes[i].Name < notes[j].Name })
		return messages.NotesLoaded{Notes: notes}
	}
}

// Update handles messages for the notes view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v.handleKey(msg.String())
	case messages.NotesLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.notes = msg.Notes
			if v.selected >= len(v.notes) {
				v.selected = 0
				v.scrollOffset = 0
			}
		}
	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

// handleKey moves the selection. Enter opens the selected note, escape
// returns to the menu.
func (v *View) handleKey(key string) (*View, tea.Cmd) {
	switch key {
	case "up", "k":
		v.moveSelection(-1)
	case "down", "j":
		v.moveSelection(1)
	case "enter":
		if note := v.SelectedNote(); note != nil {
			return v, func() tea.Msg {
				return messages.NoteSelected{Note: *note}
			}
		}
	case "r":
		v.loading = true
		return v, v.loadNotes()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

// moveSelection shifts the selection by delta, clamped to the list.
func (v *View) moveSelection(delta int) {
	if len(v.notes) == 0 {
		return
	}
	v.selected = min(max(v.selected+delta, 0), len(v.notes)-1)
	v.adjustScroll()
}

// adjustScroll slides the window so the selected row stays visible.
func (v *View) adjustScroll() {
	v.scrollOffset = min(v.scrollOffset, v.selected)
	v.scrollOffset = max(v.scrollOffset, v.selected-v.pageSize()+1)
}

// pageSize reports how many rows fit in the current height.
func (v *View) pageSize() int {
	return max(v.height-listChrome, 1)
}

// View renders the note count, the visible rows and the help footer.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Notes (%d)", len(v.notes))))
	b.WriteString("\n\n")
	b.WriteString(v.body())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] open  [r] reload  [esc] back"))
	return b.String()
}

// body renders the listing, or a status line while loading, failed or
// empty.
func (v *View) body() string {
	switch {
	case v.loading:
		return v.styles.Muted.Render("Loading notes...")
	case v.err != nil:
		return v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error()))
	case len(v.notes) == 0:
		return v.styles.Muted.Render("Corpus is empty. Run 'recall upload' to add notes.")
	}

	page := v.pageSize()
	end := min(v.scrollOffset+page, len(v.notes))
	out := make([]string, 0, page+2)
	for i := v.scrollOffset; i < end; i++ {
		out = append(out, v.row(i))
	}
	if len(v.notes) > page {
		indicator := fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.notes))
		out = append(out, "", v.styles.Muted.Render(indicator))
	}
	return strings.Join(out, "\n")
}

// row renders one listing line: the title column on the left, the note
// path on the right.
func (v *View) row(i int) string {
	note := &v.notes[i]
	title := note.Metadata[domain.MetaTitle]
	if title == "" {
		title = note.Name
	}

	col := max(v.width/2-4, 10)
	title = clipTail(title, col)
	path := clipHead(note.Name, col)

	if i == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", col, title, path))
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s  ", col, title)) +
		v.styles.Muted.Render(path)
}

// clipTail shortens s to w bytes, marking the cut with an ellipsis.
func clipTail(s string, w int) string {
	if len(s) <= w {
		return s
	}
	return s[:w-3] + "..."
}

// clipHead keeps the end of s, which for paths is the interesting part.
func clipHead(s string, w int) string {
	if len(s) <= w {
		return s
	}
	return "..." + s[len(s)-w+3:]
}

// SetDimensions resizes the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Notes returns the currently listed notes.
func (v *View) Notes() []driven.BlobInfo {
	return v.notes
}

// SelectedIndex returns the index of the highlighted row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedNote returns the highlighted note, or nil for an empty list.
func (v *View) SelectedNote() *driven.BlobInfo {
	if v.selected < len(v.notes) {
		return &v.notes[v.selected]
	}
	return nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
