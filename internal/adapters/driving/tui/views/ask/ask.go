// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/components/input"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/components/status"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/keymap"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/messages"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/styles"
	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driving"
)

// View holds the question input, the answer body and the status bar.
// It alternates between two modes: typing a question and scrolling the
// answer.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	statusbar *status.Bar

	askService driving.AskService
	ctx        context.Context

	answer       *domain.Answer
	lines        []string
	scrollOffset int

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true while typing, false while scrolling the answer
}

// NewView creates the ask view. Nil styles or keymap fall back to the
// defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap, askService driving.AskService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		statusbar:  status.NewBar(s, km),
		askService: askService,
		ctx:        context.Background(),
	}
	v.width, v.height = 80, 24
	v.focusInput = true
	return v
}

// WithContext sets the context the pipeline runs under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd { return v.input.Init() }

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		return v.handleKey(msg)
	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil
	case messages.ErrorOccurred:
		v.showError(msg.Err)
		return v, nil
	}

	// Everything else drives the input component, cursor blink included.
	var inputCmd tea.Cmd
	v.input, inputCmd = v.input.Update(msg)
	return v, inputCmd
}

// handleKey dispatches a key press to the active mode. Escape always
// returns to the menu.
func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		v.input, _ = v.input.Update(msg)
		return v, nil
	}

	page := v.visibleLines()
	switch msg.String() {
	case "up", "k":
		v.scrollTo(v.scrollOffset - 1)
	case "down", "j":
		v.scrollTo(v.scrollOffset + 1)
	case "pgup", "ctrl+u":
		v.scrollTo(v.scrollOffset - page)
	case "pgdown", "ctrl+d":
		v.scrollTo(v.scrollOffset + page)
	case "g":
		v.scrollTo(0)
	case "G":
		v.scrollTo(len(v.lines))
	case "n":
		v.focusInput = true
		return v, v.input.Reset()
	}
	return v, nil
}

// submit hands the typed question to the pipeline and switches to
// answer mode while it runs. An empty question is ignored.
func (v *View) submit() tea.Cmd {
	question := v.input.Value()
	if question == "" {
		return nil
	}
	v.statusbar.SetState(status.StateThinking)
	v.focusInput = false
	v.input.Blur()
	return v.performAsk(question)
}

func (v *View) performAsk(question string) tea.Cmd {
	return func() tea.Msg {
		if v.askService == nil {
			return messages.ErrorOccurred{Err: ErrNoAskService}
		}
		answer, err := v.askService.Ask(v.ctx, question, 0)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

// handleAnswer installs a completed answer, or surfaces its error.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.Err != nil {
		v.showError(msg.Err)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.scrollOffset = 0
	v.wrapAnswer()
	v.statusbar.SetState(status.StateAnswer)
	if msg.Answer != nil {
		v.statusbar.SetSourceCount(len(msg.Answer.Sources))
	}

	// Stay in answer mode so the scrolling keys work.
	v.focusInput = false
	v.input.Blur()
}

func (v *View) showError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// scrollTo clamps offset into the valid scroll range.
func (v *View) scrollTo(offset int) {
	v.scrollOffset = min(max(offset, 0), v.maxScrollOffset())
}

// wrapAnswer rebuilds the display lines for the current width.
func (v *View) wrapAnswer() {
	v.lines = nil
	if v.answer == nil || v.answer.Text == "" {
		return
	}
	limit := max(v.width-4, 20)
	for _, line := range strings.Split(v.answer.Text, "\n") {
		for len(line) > limit {
			v.lines = append(v.lines, line[:limit])
			line = line[limit:]
		}
		v.lines = append(v.lines, line)
	}
}

// visibleLines reports how many answer rows fit below the header, the
// input and the source list.
func (v *View) visibleLines() int {
	reserved := 12
	if v.answer != nil {
		reserved += len(v.answer.Sources)
	}
	return max(v.height-reserved, 3)
}

// maxScrollOffset reports the largest offset that still fills the window.
func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Recall"), "")
	sections = append(sections, v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	switch {
	case v.answer != nil:
		sections = append(sections, v.renderAnswer())
	case v.err == nil:
		sections = append(sections, v.styles.Muted.Render("Ask a question to search your notes."))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderAnswer renders the visible slice of the answer followed by its
// numbered sources.
func (v *View) renderAnswer() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Answer"))
	b.WriteString("\n")

	end := min(v.scrollOffset+v.visibleLines(), len(v.lines))
	for _, line := range v.lines[v.scrollOffset:end] {
		b.WriteString(v.styles.Normal.Render(line))
		b.WriteString("\n")
	}
	if len(v.lines) > v.visibleLines() {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [line %d-%d of %d]",
			v.scrollOffset+1, end, len(v.lines))))
		b.WriteString("\n")
	}

	if len(v.answer.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Sources"))
		b.WriteString("\n")
		for i, src := range v.answer.Sources {
			title := src.Title
			if title == "" {
				title = src.Path
			}
			b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  [%d] %s", i+1, title)))
			b.WriteString(v.styles.Muted.Render(" (" + src.Path + ")"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SetDimensions resizes the view and its components and rewraps the
// answer.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.wrapAnswer()
}

// Width reports the current terminal width.
func (v *View) Width() int { return v.width }

// Height reports the current terminal height.
func (v *View) Height() int { return v.height }

// Ready reports whether a window size has been received.
func (v *View) Ready() bool { return v.ready }

// Question returns the text currently in the input.
func (v *View) Question() string { return v.input.Value() }

// SetQuestion replaces the text in the input.
func (v *View) SetQuestion(question string) { v.input.SetValue(question) }

// Answer returns the current answer, if any.
func (v *View) Answer() *domain.Answer { return v.answer }

// Err returns the current error, if any.
func (v *View) Err() error { return v.err }

// InputFocused reports whether key presses go to the input.
func (v *View) InputFocused() bool { return v.focusInput }

// Reset returns the view to a blank, focused prompt.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Reset()
	v.answer = nil
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.statusbar.Clear()
}
