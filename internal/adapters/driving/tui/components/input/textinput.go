// Package input holds the single-line question field used by the ask view.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/styles"
	"github.com/recall-labs/recall-cli/internal/core/domain"
)

const (
	defaultWidth  = 50
	minFieldWidth = 20

	// chromeWidth is the space taken by the prompt label and the field frame.
	chromeWidth = 10
)

// QuestionInput is a focusable one-line field for typing a question.
type QuestionInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int
}

// NewQuestionInput returns a field that is already focused, capped at the
// maximum question length the ask pipeline accepts.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Placeholder = "Ask your notes anything..."
	field.CharLimit = domain.MaxQuestionLen
	field.Focus()

	q := &QuestionInput{field: field, styles: s}
	q.SetWidth(defaultWidth)
	return q
}

// Init starts the cursor blinking.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards messages to the underlying field.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.field, cmd = q.field.Update(msg)
	return q, cmd
}

// View renders the prompt label beside the framed field.
func (q *QuestionInput) View() string {
	//nolint:misspell // the library spells Center the American way
	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		q.styles.Title.Render("Ask: "),
		q.styles.InputField.Render(q.field.View()),
	)
}

// Value returns the typed question.
func (q *QuestionInput) Value() string {
	return q.field.Value()
}

// SetValue replaces the typed question.
func (q *QuestionInput) SetValue(value string) {
	q.field.SetValue(value)
}

// Reset clears the field and focuses it for the next question.
func (q *QuestionInput) Reset() tea.Cmd {
	q.field.Reset()
	return q.field.Focus()
}

// Blur releases focus so scrolling keys reach the answer instead.
func (q *QuestionInput) Blur() {
	q.field.Blur()
}

// Focused reports whether keystrokes currently land in the field.
func (q *QuestionInput) Focused() bool {
	return q.field.Focused()
}

// SetWidth fits the field to the given total width, reserving room for the
// label and frame. Narrow terminals keep a usable minimum.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width

	fieldWidth := width - chromeWidth
	if fieldWidth < minFieldWidth {
		fieldWidth = minFieldWidth
	}
	q.field.Width = fieldWidth
}

// Width returns the total width last set.
func (q *QuestionInput) Width() int {
	return q.width
}
