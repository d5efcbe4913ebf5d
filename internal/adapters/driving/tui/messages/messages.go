// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewNotes lists the notes stored in the corpus.
	ViewNotes
	// ViewNoteContent shows the content of a single note.
	ViewNoteContent
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewNotes:
		return "notes"
	case ViewNoteContent:
		return "note_content"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// AskSubmitted is a command to answer a question.
type AskSubmitted struct {
	Question string
}

// AnswerReceived carries a synthesised answer back to the model.
type AnswerReceived struct {
	Answer *domain.Answer
	Err    error
}

// NotesLoaded carries the list of notes stored in the corpus.
type NotesLoaded struct {
	Notes []driven.BlobInfo
	Err   error
}

// NoteSelected signals a note was selected for content view.
type NoteSelected struct {
	Note driven.BlobInfo
}

// NoteContentLoaded carries the content of a note.
type NoteContentLoaded struct {
	Path    string
	Content string
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
