// Package notecontent renders a single corpus note with a scroll window.
package notecontent

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/messages"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/styles"
	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// chromeLines is the vertical space the title, separator, indicator and
// help footer take around the scrolling body.
const chromeLines = 6

// View reads one note from the corpus and displays it page by page.
type View struct {
	styles *styles.Styles
	corpus driven.BlobStore

	note         *driven.BlobInfo
	content      string
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
}

// NewView creates the note content view. A nil style set falls back to
// the defaults.
func NewView(s *styles.Styles, corpus driven.BlobStore) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, corpus: corpus}
}

// SetNote switches the view to a different note and starts loading it.
func (v *View) SetNote(note driven.BlobInfo) tea.Cmd {
	v.note = &note
	v.content = ""
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.loading = true
	return v.loadContent()
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd { return nil }

func (v *View) loadContent() tea.Cmd {
	return func() tea.Msg {
		if v.note == nil || v.corpus == nil {
			return messages.NoteContentLoaded{Err: fmt.Errorf("corpus store not available")}
		}
		data, err := v.corpus.Read(context.Background(), v.note.Name)
		return messages.NoteContentLoaded{Path: v.note.Name, Content: string(data), Err: err}
	}
}

// Update handles messages for the note content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v.handleKey(msg.String())
	case messages.NoteContentLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.content = msg.Content
			v.wrap()
		}
	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

// handleKey moves the scroll window. Escape returns to the note list.
func (v *View) handleKey(key string) (*View, tea.Cmd) {
	page := v.visibleLines()
	switch key {
	case "up", "k":
		v.scrollTo(v.scrollOffset - 1)
	case "down", "j":
		v.scrollTo(v.scrollOffset + 1)
	case "pgup", "ctrl+u":
		v.scrollTo(v.scrollOffset - page)
	case "pgdown", "ctrl+d":
		v.scrollTo(v.scrollOffset + page)
	case "home", "g":
		v.scrollTo(0)
	case "end", "G":
		v.scrollTo(len(v.lines))
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewNotes}
		}
	}
	return v, nil
}

// scrollTo clamps offset into the valid scroll range.
func (v *View) scrollTo(offset int) {
	v.scrollOffset = min(max(offset, 0), v.maxScrollOffset())
}

// wrap rebuilds the display lines for the current width. Lines wider
// than the content area are broken into full-width slices.
func (v *View) wrap() {
	v.lines = nil
	if v.content == "" {
		return
	}
	limit := max(v.width-4, 20)
	for _, line := range strings.Split(v.content, "\n") {
		for len(line) > limit {
			v.lines = append(v.lines, line[:limit])
			line = line[limit:]
		}
		v.lines = append(v.lines, line)
	}
}

// visibleLines reports how many content rows fit in the current height.
func (v *View) visibleLines() int {
	return max(v.height-chromeLines, 1)
}

// maxScrollOffset reports the largest offset that still fills the window.
func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the title, a separator, the visible slice of the note and
// the help footer.
func (v *View) View() string {
	title := "Note"
	if v.note != nil {
		if title = v.note.Metadata[domain.MetaTitle]; title == "" {
			title = v.note.Name
		}
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")
	b.WriteString(v.body())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

// body renders the state between the separator and the footer: a status
// line while loading or failed, otherwise the current page of content.
func (v *View) body() string {
	switch {
	case v.loading:
		return v.styles.Muted.Render("Loading note...")
	case v.err != nil:
		return v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error()))
	case len(v.lines) == 0:
		return v.styles.Muted.Render("(No content)")
	}

	page := v.visibleLines()
	end := min(v.scrollOffset+page, len(v.lines))
	out := make([]string, 0, page+2)
	for _, line := range v.lines[v.scrollOffset:end] {
		out = append(out, v.styles.Normal.Render(line))
	}
	if len(v.lines) > page {
		out = append(out, "", v.indicator(end))
	}
	return strings.Join(out, "\n")
}

// indicator shows the scroll position as a percentage and line range.
func (v *View) indicator(end int) string {
	pct := 0
	if m := v.maxScrollOffset(); m > 0 {
		pct = v.scrollOffset * 100 / m
	}
	return v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
		pct, v.scrollOffset+1, end, len(v.lines)))
}

// SetDimensions resizes the view and rewraps the content.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.wrap()
}

// Note returns the note being displayed, if any.
func (v *View) Note() *driven.BlobInfo {
	return v.note
}

// Content returns the raw note text.
func (v *View) Content() string {
	return v.content
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
