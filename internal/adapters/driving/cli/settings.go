package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change configuration",
	Long: `Inspect or change the vault location, AI providers, index backend, and
chunking parameters. Run with no subcommand to print the current
configuration, or use 'wizard' for a guided setup.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Guided first-time setup",
	Long:  `Walk through the vault, both AI providers, and the index backend in order.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Choose the embedding provider",
	Long:  `Configure the provider that turns notes and questions into vectors.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Choose the generation provider",
	Long:  `Configure the provider that generates answers from retrieved notes.`,
	RunE:  runSettingsLLM,
}

var settingsIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Choose the index backend",
	Long:  `Configure where index entries are stored.`,
	RunE:  runSettingsIndex,
}

var settingsChunkingCmd = &cobra.Command{
	Use:   "chunking [size] [overlap]",
	Short: "Configure chunking parameters",
	Long: `Set the sliding-window chunk size and overlap, both in characters.
Overlap must be smaller than size. Changing these requires a full reindex
('recall index --full') to take effect on existing documents.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsChunking,
}

var settingsVaultCmd = &cobra.Command{
	Use:   "vault [dir]",
	Short: "Set the default vault directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsVault,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsIndexCmd)
	settingsCmd.AddCommand(settingsChunkingCmd)
	settingsCmd.AddCommand(settingsVaultCmd)
	rootCmd.AddCommand(settingsCmd)
}

// providerSummary is one provider block of the settings listing.
type providerSummary struct {
	heading    string
	provider   domain.AIProvider
	model      string
	baseURL    string
	apiKey     string
	configured bool
}

func (p providerSummary) print(cmd *cobra.Command) {
	cmd.Printf("[%s]\n", p.heading)
	cmd.Printf("  Provider: %s\n", p.provider.Description())
	cmd.Printf("  Model: %s\n", p.model)
	if p.provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", p.baseURL)
	}
	if p.provider.RequiresAPIKey() {
		key := "(not set)"
		if p.apiKey != "" {
			key = maskAPIKey(p.apiKey)
		}
		cmd.Printf("  API Key: %s\n", key)
	}
	state := "configured"
	if !p.configured {
		state = "not configured"
	}
	cmd.Printf("  Status: %s\n", state)
	cmd.Println()
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := ensureSettingsService(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Recall Settings")
	cmd.Println("===============")
	cmd.Println()

	cmd.Println("[Vault]")
	cmd.Printf("  Path: %s\n", orNotSet(settings.Vault.Path))
	cmd.Println()

	providerSummary{
		heading:    "Embedding",
		provider:   settings.Embedding.Provider,
		model:      settings.Embedding.Model,
		baseURL:    settings.Embedding.BaseURL,
		apiKey:     settings.Embedding.APIKey,
		configured: settings.Embedding.IsConfigured(),
	}.print(cmd)

	providerSummary{
		heading:    "Generation",
		provider:   settings.LLM.Provider,
		model:      settings.LLM.Model,
		baseURL:    settings.LLM.BaseURL,
		apiKey:     settings.LLM.APIKey,
		configured: settings.LLM.IsConfigured(),
	}.print(cmd)

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend.Description())
	if settings.Index.Backend.Persistent() {
		cmd.Printf("  DSN: %s\n", orNotSet(maskDSN(settings.Index.DSN)))
	}
	cmd.Printf("  Dimensions: %d\n", settings.Index.Dimensions)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'recall settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Settings are valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if err := ensureSettingsService(); err != nil {
		return err
	}

	cmd.Println("Recall Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Step 1: Vault Directory")
	cmd.Println("-----------------------")
	cmd.Printf("Directory holding your markdown notes [%s]: ", orNotSet(settings.Vault.Path))
	if path := readLine(reader); path != "" {
		if err := settingsService.SetVaultPath(path); err != nil {
			return fmt.Errorf("failed to set vault path: %w", err)
		}
		cmd.Printf("Vault set to: %s\n", path)
	}
	cmd.Println()

	cmd.Println("Step 2: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	cmd.Println("Indexing and retrieval need an embedding provider.")
	cmd.Println()
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure Generation Provider")
	cmd.Println("-------------------------------------")
	cmd.Println("Answers are generated from your notes by this provider.")
	cmd.Println()
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 4: Configure Index Backend")
	cmd.Println("-------------------------------")
	if err := configureIndexBackend(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Setup complete")
	cmd.Println("--------------")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Settings saved. Try 'recall ask' next.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if err := ensureSettingsService(); err != nil {
		return err
	}

	return configureEmbeddingProvider(cmd, bufio.NewReader(os.Stdin))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if err := ensureSettingsService(); err != nil {
		return err
	}

	return configureLLMProvider(cmd, bufio.NewReader(os.Stdin))
}

func runSettingsIndex(cmd *cobra.Command, _ []string) error {
	if err := ensureSettingsService(); err != nil {
		return err
	}

	return configureIndexBackend(cmd, bufio.NewReader(os.Stdin))
}

func runSettingsChunking(cmd *cobra.Command, args []string) error {
	if err := ensureSettingsService(); err != nil {
		return err
	}

	size, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid chunk size %q", args[0])
	}
	overlap, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid overlap %q", args[1])
	}

	if err := settingsService.SetChunking(size, overlap); err != nil {
		return fmt.Errorf("failed to set chunking: %w", err)
	}

	cmd.Printf("Chunking set to size %d, overlap %d.\n", size, overlap)
	cmd.Println("Run 'recall index --full' to apply to existing documents.")
	return nil
}

func runSettingsVault(cmd *cobra.Command, args []string) error {
	if err := ensureSettingsService(); err != nil {
		return err
	}

	if err := settingsService.SetVaultPath(args[0]); err != nil {
		return fmt.Errorf("failed to set vault path: %w", err)
	}

	cmd.Printf("Vault set to: %s\n", args[0])
	return nil
}

// providerFlow drives the select/model/key prompts shared by the embedding
// and generation setup.
type providerFlow struct {
	kind     string
	choices  []domain.AIProvider
	defaults map[domain.AIProvider]string
	apply    func(domain.AIProvider, string, string) error
	validate func() error
}

func (f providerFlow) run(cmd *cobra.Command, reader *bufio.Reader) error {
	descriptions := make([]string, len(f.choices))
	for i, p := range f.choices {
		descriptions[i] = p.Description()
	}
	pick := promptChoice(cmd, reader, "Select "+f.kind+" Provider", descriptions)
	provider := f.choices[pick-1]

	model := f.defaults[provider]
	cmd.Printf("Enter model name [%s]: ", model)
	if typed := readLine(reader); typed != "" {
		model = typed
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("an API key is required for this provider")
		}
	}

	if err := f.apply(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to save %s provider: %w", strings.ToLower(f.kind), err)
	}

	// Ping the provider before declaring success
	cmd.Print("Validating configuration... ")
	if err := f.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s provider rejected the configuration: %w", strings.ToLower(f.kind), err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n\n", f.kind, provider.Description(), model)
	return nil
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	return providerFlow{
		kind:     "Embedding",
		choices:  domain.AllEmbeddingProviders(),
		defaults: domain.DefaultEmbeddingModels(),
		apply:    settingsService.SetEmbeddingProvider,
		validate: settingsService.ValidateEmbeddingConfig,
	}.run(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	return providerFlow{
		kind:     "Generation",
		choices:  domain.AllLLMProviders(),
		defaults: domain.DefaultLLMModels(),
		apply:    settingsService.SetLLMProvider,
		validate: settingsService.ValidateLLMConfig,
	}.run(cmd, reader)
}

func configureIndexBackend(cmd *cobra.Command, reader *bufio.Reader) error {
	backends := domain.AllIndexBackends()
	descriptions := make([]string, len(backends))
	for i, b := range backends {
		descriptions[i] = b.Description()
	}
	pick := promptChoice(cmd, reader, "Select Index Backend", descriptions)
	backend := backends[pick-1]

	var dsn string
	if backend.Persistent() {
		cmd.Print("Enter Postgres DSN (or leave empty to use RECALL_INDEX_DSN): ")
		dsn = readLine(reader)
	}

	if err := settingsService.SetIndexBackend(backend, dsn); err != nil {
		return fmt.Errorf("failed to configure index backend: %w", err)
	}

	cmd.Printf("Index backend configured: %s\n\n", backend.Description())
	return nil
}

// promptChoice lists numbered options and reads a selection, defaulting to
// the first.
func promptChoice(cmd *cobra.Command, reader *bufio.Reader, heading string, options []string) int {
	cmd.Println(heading)
	for i, o := range options {
		cmd.Printf("  %d. %s\n", i+1, o)
	}
	cmd.Print("\nEnter choice [1]: ")
	return parseChoice(readLine(reader), len(options), 1)
}

//nolint:errcheck // an empty string on read failure is fine for prompts
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// parseChoice turns a menu answer into an index between 1 and maxVal,
// falling back to defaultVal for blank or unusable input.
func parseChoice(input string, maxVal, defaultVal int) int {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > maxVal {
		return defaultVal
	}
	return n
}

// readPassword reads a secret without echoing it. Non-terminal stdin
// (tests, pipes) falls back to a plain line read.
func readPassword() string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if secret, err := term.ReadPassword(fd); err == nil {
			return string(secret)
		}
	}
	return readLine(bufio.NewReader(os.Stdin))
}

// maskAPIKey keeps just enough of the key to recognise it.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// maskDSN hides the password portion of a connection string.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	scheme := strings.Index(dsn, "://")
	if scheme < 0 || scheme+3 > at {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return dsn[:scheme+3] + creds[:colon] + ":****" + dsn[at:]
	}
	return dsn
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
