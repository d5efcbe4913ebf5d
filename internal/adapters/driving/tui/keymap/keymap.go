// Package keymap holds the key bindings shared by the TUI views.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap groups the bindings the views and the status bar display.
type KeyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Back        key.Binding
	Submit      key.Binding
	Up          key.Binding
	Down        key.Binding
	Select      key.Binding
	NewQuestion key.Binding
}

// bind builds a binding; display is the key text shown in help hints.
func bind(display, help string, keys ...string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(display, help),
	)
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:        bind("q", "quit", "q", "ctrl+c"),
		Help:        bind("?", "help", "?"),
		Back:        bind("esc", "back", "esc"),
		Submit:      bind("enter", "ask", "enter"),
		Up:          bind("↑/k", "up", "up", "k"),
		Down:        bind("↓/j", "down", "down", "j"),
		Select:      bind("enter", "select", "enter"),
		NewQuestion: bind("n", "new question", "n"),
	}
}

// ShortHelp lists the hints for the idle status bar. Together with
// FullHelp it satisfies the bubbles help.KeyMap interface.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// AnswerHelp lists the hints shown while an answer is on screen.
func (k *KeyMap) AnswerHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.Up, k.Down, k.Back}
}

// FullHelp groups every binding for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Submit, k.NewQuestion, k.Back},
		{k.Help, k.Quit},
	}
}
