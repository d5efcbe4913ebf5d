// Package cli wires the Recall commands to the core services. Commands
// hold package-level service variables so tests can swap in mocks; the
// real services are built lazily by the first command that needs them.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
	"github.com/recall-labs/recall-cli/internal/core/ports/driving"
	"github.com/recall-labs/recall-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Services used by the commands. Wired on demand; tests replace them
// with mocks.
var (
	askService      driving.AskService
	ingestService   driving.IngestService
	settingsService driving.SettingsService

	// corpusStore is the read surface handed to the MCP server for
	// document resources.
	corpusStore driven.BlobStore
)

var (
	verboseFlag   bool
	configDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Ask questions about your own markdown notes",
	Long: `Recall ingests a vault of markdown notes into a hybrid search index
and answers questions about them using retrieval-augmented generation.

Typical workflow:
  recall settings wizard   # configure providers and the index
  recall upload ~/notes    # upload the vault to the corpus
  recall index             # chunk, embed and index the corpus
  recall ask "What did I write about Docker?"`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initRun)
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config", "", "config directory (default ~/.recall)")
}

// initRun applies global flags once cobra has parsed them. Service
// construction is deferred to the commands so that cheap commands never
// touch providers or databases.
func initRun() {
	logger.SetVerbose(verboseFlag)

	// A .env next to the working directory may carry RECALL_* secrets.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded environment from .env")
	}
}
