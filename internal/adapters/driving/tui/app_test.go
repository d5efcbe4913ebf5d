package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui/messages"
	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

func newTestPorts() *Ports {
	return &Ports{
		Ask:    &MockAskService{},
		Corpus: &MockCorpusStore{},
	}
}

// goToAskView navigates the app from menu to the ask view for testing.
func goToAskView(app *App) {
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewAsk})
}

func TestNewApp_Success(t *testing.T) {
	ports := newTestPorts()

	app, err := NewApp(ports)

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready(), "ready only after the first window size")
}

func TestNewApp_InvalidPorts(t *testing.T) {
	ports := &Ports{
		Ask:    nil,
		Corpus: &MockCorpusStore{},
	}

	app, err := NewApp(ports)

	assert.ErrorIs(t, err, ErrMissingAskService)
	assert.Nil(t, app)
}

func TestApp_WithContext_ReachesAskCalls(t *testing.T) {
	type ctxKey struct{}

	var seen context.Context
	ports := &Ports{
		Ask: &MockAskService{
			AskFunc: func(ctx context.Context, question string, topK int) (*domain.Answer, error) {
				seen = ctx
				return &domain.Answer{Text: "An answer."}, nil
			},
		},
		Corpus: &MockCorpusStore{},
	}
	app, _ := NewApp(ports)

	ctx := context.WithValue(context.Background(), ctxKey{}, "session")
	assert.Equal(t, app, app.WithContext(ctx))

	goToAskView(app)
	for _, r := range "why use WAL mode?" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	require.NotNil(t, seen)
	assert.Equal(t, "session", seen.Value(ctxKey{}))
}

func TestApp_Init_BatchesStartupCommands(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	cmd := app.Init()

	// Alt screen plus window title
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	assert.Len(t, batch, 2)
}

func TestApp_Update_WindowSize_MakesAppReady(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	require.False(t, app.Ready())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_Update_ViewChanged(t *testing.T) {
	tests := []struct {
		name    string
		view    messages.ViewType
		wantCmd bool
	}{
		{name: "ask view resets and focuses the prompt", view: messages.ViewAsk, wantCmd: true},
		{name: "notes view loads the corpus listing", view: messages.ViewNotes, wantCmd: true},
		{name: "help view is static", view: messages.ViewHelp, wantCmd: false},
		{name: "back to the menu", view: messages.ViewMenu, wantCmd: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := NewApp(newTestPorts())
			app.SetDimensions(80, 24)

			model, cmd := app.Update(messages.ViewChanged{View: tt.view})

			assert.Equal(t, app, model)
			assert.Equal(t, tt.view, app.CurrentView())
			if tt.wantCmd {
				assert.NotNil(t, cmd)
			} else {
				assert.Nil(t, cmd)
			}
		})
	}
}

func TestApp_Update_QuitKeys(t *testing.T) {
	tests := []struct {
		name  string
		setup func(app *App)
		msg   tea.KeyMsg
	}{
		{
			name:  "q from the menu",
			setup: func(app *App) { app.SetDimensions(80, 24) },
			msg:   tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}},
		},
		{
			name:  "ctrl+c while typing a question",
			setup: goToAskView,
			msg:   tea.KeyMsg{Type: tea.KeyCtrlC},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := NewApp(newTestPorts())
			tt.setup(app)

			_, cmd := app.Update(tt.msg)

			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestApp_Update_KeyMsg_Escape_InHelpView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	msg := tea.KeyMsg{Type: tea.KeyEsc}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_Update_KeyMsg_Escape_InAskView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	goToAskView(app)

	msg := tea.KeyMsg{Type: tea.KeyEsc}
	_, cmd := app.Update(msg)

	// Esc in the ask view returns a command that produces ViewChanged
	require.NotNil(t, cmd)
	result := cmd()
	viewChanged, ok := result.(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, viewChanged.View)

	app.Update(viewChanged)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_Update_KeyMsg_Enter_WithQuestion(t *testing.T) {
	askCalled := false
	ports := &Ports{
		Ask: &MockAskService{
			AskFunc: func(ctx context.Context, question string, topK int) (*domain.Answer, error) {
				askCalled = true
				assert.Equal(t, "how do containers work?", question)
				assert.Equal(t, 0, topK)
				return &domain.Answer{Text: "An answer."}, nil
			},
		},
		Corpus: &MockCorpusStore{},
	}
	app, _ := NewApp(ports)
	goToAskView(app)

	for _, r := range "how do containers work?" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.IsType(t, messages.AnswerReceived{}, cmd())
	assert.True(t, askCalled)
}

func TestApp_Update_KeyMsg_Enter_EmptyQuestion(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	goToAskView(app)

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	_, cmd := app.Update(msg)

	assert.Nil(t, cmd)
}

func TestApp_Update_AnswerReceived(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	goToAskView(app)

	answer := &domain.Answer{
		Text:    "Containers share the host kernel.",
		Sources: []domain.Source{{Title: "Docker Basics", Path: "devops/docker.md"}},
	}
	msg := messages.AnswerReceived{Answer: answer}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.NoError(t, app.Err())

	view := app.View()
	assert.Contains(t, view, "Containers share the host kernel.")
	assert.Contains(t, view, "Docker Basics")
	assert.Contains(t, view, "devops/docker.md")
}

func TestApp_Update_AnswerReceived_WithError(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	goToAskView(app)

	msg := messages.AnswerReceived{Err: errors.New("generation model unreachable")}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.Error(t, app.Err())
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	model, cmd := app.Update(messages.ErrorOccurred{Err: errors.New("embedding request timed out")})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.EqualError(t, app.Err(), "embedding request timed out")
}

func TestApp_Update_NotesLoaded(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewNotes})

	msg := messages.NotesLoaded{
		Notes: []driven.BlobInfo{
			{Name: "devops/docker.md", Metadata: map[string]string{domain.MetaTitle: "Docker Basics"}},
			{Name: "golang.md", Metadata: map[string]string{domain.MetaTitle: "Go Notes"}},
		},
	}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)

	view := app.View()
	assert.Contains(t, view, "Notes (2)")
	assert.Contains(t, view, "Docker Basics")
	assert.Contains(t, view, "Go Notes")
}

func TestApp_Update_NoteSelected(t *testing.T) {
	ports := &Ports{
		Ask: &MockAskService{},
		Corpus: &MockCorpusStore{
			ReadFunc: func(ctx context.Context, name string) ([]byte, error) {
				assert.Equal(t, "devops/docker.md", name)
				return []byte("Containers share the host kernel."), nil
			},
		},
	}
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewNotes})

	note := driven.BlobInfo{
		Name:     "devops/docker.md",
		Metadata: map[string]string{domain.MetaTitle: "Docker Basics"},
	}
	msg := messages.NoteSelected{Note: note}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewNoteContent, app.CurrentView())

	// Execute the load command and feed the result back
	result := cmd()
	loaded, ok := result.(messages.NoteContentLoaded)
	require.True(t, ok)
	app.Update(loaded)

	view := app.View()
	assert.Contains(t, view, "Docker Basics")
	assert.Contains(t, view, "Containers share the host kernel.")
}

func TestApp_Update_Quit(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := messages.Quit{}
	_, cmd := app.Update(msg)

	assert.NotNil(t, cmd)
}

func TestApp_View_NotReady(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	view := app.View()

	assert.Contains(t, view, "Initialising")
}

func TestApp_View_MenuView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	view := app.View()

	assert.Contains(t, view, "Recall")
	assert.Contains(t, view, "Ask your notes")
}

func TestApp_View_AskView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	goToAskView(app)

	view := app.View()

	assert.Contains(t, view, "Ask:")
}

func TestApp_View_HelpView(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	view := app.View()

	assert.Contains(t, view, "Help")
	assert.Contains(t, view, "new question")
	assert.Contains(t, view, "quit")
	assert.Contains(t, view, "[esc] back to menu")
}

func TestApp_View_UnknownViewFallsBackToMenu(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	app.currentView = messages.ViewType(42)

	assert.Contains(t, app.View(), "Recall")
}

func TestApp_SetDimensions_ResizesEveryView(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	app.SetDimensions(100, 50)

	assert.True(t, app.Ready())
	assert.Equal(t, 100, app.width)
	assert.Equal(t, 50, app.height)
	assert.Equal(t, 100, app.askView.Width())
}
