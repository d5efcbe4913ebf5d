// Package status renders the one-line footer under the ask view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/keymap"
	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/styles"
)

// State selects what the left side of the bar shows.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateAnswer   State = "answer"
)

// Bar shows pipeline state on the left and key hints on the right.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	sourceCount int
	width       int
}

// NewBar creates a status bar in the ready state. Nil styles or keymap
// fall back to the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the bar at its current width.
func (b *Bar) View() string {
	left := b.status()
	right := b.hints()

	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

// status is the left segment.
func (b *Bar) status() string {
	switch b.state {
	case StateThinking:
		return b.styles.Muted.Render("Thinking...")
	case StateError:
		text := "Error"
		if b.message != "" {
			text = "Error: " + b.message
		}
		return b.styles.Error.Render(text)
	case StateAnswer, StateReady:
		if b.sourceCount == 1 {
			return b.styles.Normal.Render("1 source")
		}
		if b.sourceCount > 1 {
			return b.styles.Normal.Render(fmt.Sprintf("%d sources", b.sourceCount))
		}
	}
	return b.styles.Muted.Render("Ready")
}

// hints is the right segment, built from the keymap.
func (b *Bar) hints() string {
	bindings := b.keymap.ShortHelp()
	if b.state == StateAnswer {
		bindings = b.keymap.AnswerHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(parts, " | "))
}

// SetState selects what the bar reports.
func (b *Bar) SetState(state State) { b.state = state }

// State returns the current state.
func (b *Bar) State() State { return b.state }

// SetMessage attaches detail text to the error state.
func (b *Bar) SetMessage(message string) { b.message = message }

// SetSourceCount records how many sources back the current answer.
func (b *Bar) SetSourceCount(count int) { b.sourceCount = count }

// SetWidth resizes the bar.
func (b *Bar) SetWidth(width int) { b.width = width }

// Clear returns the bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.sourceCount = 0
}
