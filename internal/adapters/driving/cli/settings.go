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

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// settingsView is the serialised form of the settings with API keys masked.
type settingsView struct {
	Embedding  providerView `json:"embedding" yaml:"embedding"`
	LLM        providerView `json:"llm" yaml:"llm"`
	RAG        ragView      `json:"rag" yaml:"rag"`
	Storage    string       `json:"storage_backend" yaml:"storage_backend"`
	SessionTTL string       `json:"session_ttl" yaml:"session_ttl"`
	Valid      bool         `json:"valid" yaml:"valid"`
	Problem    string       `json:"problem,omitempty" yaml:"problem,omitempty"`
}

type providerView struct {
	Provider   string `json:"provider" yaml:"provider"`
	Model      string `json:"model" yaml:"model"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Configured bool   `json:"configured" yaml:"configured"`
}

type ragView struct {
	MaxDocuments  int     `json:"max_documents" yaml:"max_documents"`
	ChunkSize     int     `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap  int     `json:"chunk_overlap" yaml:"chunk_overlap"`
	TopK          int     `json:"top_k" yaml:"top_k"`
	MinSimilarity float64 `json:"min_similarity" yaml:"min_similarity"`
	PromptBudget  int     `json:"prompt_budget" yaml:"prompt_budget"`
	HistoryLength int     `json:"history_length" yaml:"history_length"`
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers and retrieval settings.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the AI providers step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used to index documents and questions.

Changing the embedding model invalidates vectors already stored; re-upload
your documents afterwards.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that writes answers from retrieved passages.`,
	RunE:  runSettingsLLM,
}

var settingsRAGCmd = &cobra.Command{
	Use:   "rag",
	Short: "Configure retrieval settings",
	Long: `Change chunking and retrieval settings. Only the flags given are changed.

Chunk size and overlap apply to documents uploaded afterwards.`,
	RunE: runSettingsRAG,
}

func init() {
	f := settingsRAGCmd.Flags()
	f.Int("max-documents", 0, "Maximum number of uploaded documents")
	f.Int("chunk-size", 0, "Chunk size in tokens")
	f.Int("chunk-overlap", 0, "Tokens shared by consecutive chunks")
	f.Int("top-k", 0, "Chunks retrieved per question")
	f.Float64("min-similarity", 0, "Drop chunks scoring below this similarity")
	f.Int("prompt-budget", 0, "Maximum prompt size in characters")
	f.Int("history-length", 0, "Conversation turns kept per session")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsRAGCmd)
	rootCmd.AddCommand(settingsCmd)
}

func newSettingsView(s *domain.AppSettings, validateErr error) settingsView {
	v := settingsView{
		Embedding: providerView{
			Provider:   string(s.Embedding.Provider),
			Model:      s.Embedding.Model,
			BaseURL:    s.Embedding.BaseURL,
			Configured: s.Embedding.IsConfigured(),
		},
		LLM: providerView{
			Provider:   string(s.LLM.Provider),
			Model:      s.LLM.Model,
			BaseURL:    s.LLM.BaseURL,
			Configured: s.LLM.IsConfigured(),
		},
		RAG:        ragView(s.RAG),
		Storage:    string(s.Storage.Backend),
		SessionTTL: s.Session.TTL.String(),
		Valid:      validateErr == nil,
	}
	if s.Embedding.APIKey != "" {
		v.Embedding.APIKey = maskAPIKey(s.Embedding.APIKey)
	}
	if s.LLM.APIKey != "" {
		v.LLM.APIKey = maskAPIKey(s.LLM.APIKey)
	}
	if validateErr != nil {
		v.Problem = validateErr.Error()
	}
	return v
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	validateErr := settingsService.Validate()

	return render(cmd, newSettingsView(settings, validateErr), func() {
		cmd.Println("Current Settings")
		cmd.Println("================")
		cmd.Println()

		cmd.Println("[Embedding]")
		printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
			settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
		cmd.Println()

		cmd.Println("[LLM]")
		printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
			settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
		cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
		cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
		cmd.Println()

		rag := settings.RAG
		cmd.Println("[Retrieval]")
		cmd.Printf("  Max documents: %d\n", rag.MaxDocuments)
		cmd.Printf("  Chunk size: %d tokens (overlap %d)\n", rag.ChunkSize, rag.ChunkOverlap)
		cmd.Printf("  Top K: %d\n", rag.TopK)
		cmd.Printf("  Min similarity: %.2f\n", rag.MinSimilarity)
		cmd.Printf("  Prompt budget: %d characters\n", rag.PromptBudget)
		cmd.Printf("  History length: %d turns\n", rag.HistoryLength)
		cmd.Println()

		cmd.Println("[Storage]")
		cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
		cmd.Printf("  Session TTL: %s\n", settings.Session.TTL)
		cmd.Println()

		if validateErr != nil {
			cmd.Printf("Warning: %v\n", validateErr)
			cmd.Println("Run 'docpilot settings wizard' to fix configuration issues.")
		} else {
			cmd.Println("Configuration is valid.")
		}
	})
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	cmd.Println("DocPilot Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	cmd.Println("Embeddings index your documents for retrieval.")
	cmd.Println()
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure LLM Provider")
	cmd.Println("------------------------------")
	cmd.Println("The LLM writes answers from the retrieved passages.")
	cmd.Println()
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsRAG(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	rag := settings.RAG
	f := cmd.Flags()
	ints := map[string]*int{
		"max-documents":  &rag.MaxDocuments,
		"chunk-size":     &rag.ChunkSize,
		"chunk-overlap":  &rag.ChunkOverlap,
		"top-k":          &rag.TopK,
		"prompt-budget":  &rag.PromptBudget,
		"history-length": &rag.HistoryLength,
	}
	changed := 0
	for name, dst := range ints {
		if !f.Changed(name) {
			continue
		}
		if *dst, err = f.GetInt(name); err != nil {
			return fmt.Errorf("getting %s flag: %w", name, err)
		}
		changed++
	}
	if f.Changed("min-similarity") {
		if rag.MinSimilarity, err = f.GetFloat64("min-similarity"); err != nil {
			return fmt.Errorf("getting min-similarity flag: %w", err)
		}
		changed++
	}
	if changed == 0 {
		return errors.New("no settings given; see 'docpilot settings rag --help'")
	}

	if err := settingsService.SetRAG(rag); err != nil {
		return fmt.Errorf("failed to save retrieval settings: %w", err)
	}
	cmd.Println("Retrieval settings saved.")
	return nil
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal, otherwise
// falls back to a plain line from reader.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
