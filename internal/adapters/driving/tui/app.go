package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/keymap"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/messages"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/styles"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/views/ask"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/views/menu"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/views/notecontent"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/views/notes"
)

// App is the root Bubble Tea model. It owns one model per view and
// routes every message to whichever view is on screen.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	menuView        *menu.View
	askView         *ask.View
	notesView       *notes.View
	noteContentView *notecontent.View

	currentView messages.ViewType
	err         error
	width       int
	height      int
	ready       bool
}

var _ tea.Model = (*App)(nil)

// NewApp wires the views to the driving ports and starts on the menu.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	keys := keymap.DefaultKeyMap()

	return &App{
		ports:           ports,
		ctx:             context.Background(),
		styles:          s,
		keys:            keys,
		menuView:        menu.NewView(s),
		askView:         ask.NewView(s, keys, ports.Ask),
		notesView:       notes.NewView(s, ports.Corpus),
		noteContentView: notecontent.NewView(s, ports.Corpus),
		currentView:     messages.ViewMenu,
	}, nil
}

// WithContext sets the context used for pipeline calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("recall - Ask your notes"),
	)
}

// Update implements tea.Model. Messages with an app-wide meaning are
// handled here; everything else goes to the active view.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		return a.switchTo(msg.View)

	case messages.NoteSelected:
		a.currentView = messages.ViewNoteContent
		return a, a.noteContentView.SetNote(msg.Note)

	// Async results go to the view that requested them, even if the
	// user has navigated away in the meantime.
	case messages.AnswerReceived:
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd

	case messages.NotesLoaded:
		a.notesView, cmd = a.notesView.Update(msg)
		return a, cmd

	case messages.NoteContentLoaded:
		a.noteContentView, cmd = a.noteContentView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a.routeToActive(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a.routeToActive(msg)
}

// handleKey applies global bindings, then hands the key to the active
// view.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// The help view is static text; it only reacts to esc.
	if a.currentView == messages.ViewHelp {
		if msg.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
		return a, nil
	}

	return a.routeToActive(msg)
}

// switchTo activates a view, running its entry command if it has one.
func (a *App) switchTo(view messages.ViewType) (tea.Model, tea.Cmd) {
	a.currentView = view

	switch view {
	case messages.ViewAsk:
		a.askView.Reset()
		return a, a.askView.Init()
	case messages.ViewNotes:
		return a, a.notesView.Init()
	case messages.ViewMenu, messages.ViewNoteContent, messages.ViewHelp:
	}

	return a, nil
}

// routeToActive forwards msg to the view currently on screen.
func (a *App) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
	case messages.ViewNotes:
		a.notesView, cmd = a.notesView.Update(msg)
	case messages.ViewNoteContent:
		a.noteContentView, cmd = a.noteContentView.Update(msg)
	case messages.ViewHelp:
	}

	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewNotes:
		return a.notesView.View()
	case messages.ViewNoteContent:
		return a.noteContentView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
		return a.menuView.View()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the keybinding reference from the keymap.
func (a *App) viewHelp() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")

	for _, group := range a.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Normal.Render("Notes list: r reloads. Note view: g/G jump to top/bottom."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))

	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the view currently on screen.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error any view reported.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether the first window size has arrived.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions records the terminal size and resizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.notesView.SetDimensions(width, height)
	a.noteContentView.SetDimensions(width, height)
}
