// Package menu renders the top-level navigation list of the TUI.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/messages"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/styles"
)

// entry is one selectable row. quit entries end the program instead of
// switching views.
type entry struct {
	label  string
	target messages.ViewType
	quit   bool
}

// View is the navigation menu model.
type View struct {
	styles  *styles.Styles
	entries []entry
	cursor  int
	width   int
	height  int
	ready   bool
}

// NewView creates the menu with the fixed set of destinations.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		entries: []entry{
			{label: "Ask", target: messages.ViewAsk},
			{label: "Notes", target: messages.ViewNotes},
			{label: "Help", target: messages.ViewHelp},
			{label: "Quit", quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init is part of the Bubble Tea model contract.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and resolves selections.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			v.move(-1)
		case "down", "j":
			v.move(1)
		case "enter":
			return v, v.choose()
		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

// move shifts the cursor by delta, staying inside the list.
func (v *View) move(delta int) {
	next := v.cursor + delta
	if next >= 0 && next < len(v.entries) {
		v.cursor = next
	}
}

// choose turns the highlighted entry into a command.
func (v *View) choose() tea.Cmd {
	e := v.entries[v.cursor]
	if e.quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: e.target}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Recall"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Ask your notes"))
	b.WriteString("\n\n")

	for i, e := range v.entries {
		if i == v.cursor {
			b.WriteString("> ")
			b.WriteString(v.styles.Subtitle.Render(e.label))
		} else {
			b.WriteString("  ")
			b.WriteString(v.styles.Normal.Render(e.label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))

	return b.String()
}

// SetDimensions records the terminal size and marks the view ready.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor position, for tests.
func (v *View) Selected() int {
	return v.cursor
}
