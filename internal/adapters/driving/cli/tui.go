package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Open the full-screen terminal interface.

Ask questions, read answers with their sources, and browse the stored
notes without leaving the keyboard.

Keys:
  j/k or arrows  move and scroll
  enter          ask or select
  n              new question
  esc            back
  q              quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Recover panics so the stack trace lands on stderr after the
	// alternate screen closes.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic in TUI: %v\n%s\n", r, debug.Stack())
		}
	}()

	if err := ensureAskServices(cmd.Context()); err != nil {
		return err
	}
	if err := ensureCorpusStore(); err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(askService, corpusStore))
	if err != nil {
		return fmt.Errorf("starting TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
