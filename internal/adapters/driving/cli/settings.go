package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/services"
)

var (
	settingsModel      string
	settingsNoValidate bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the settings stored in the config file.

Environment variables and the .env file override stored values;
show prints the effective result.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List config keys accepted by set",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, k := range services.Keys() {
			cmd.Println(k)
		}
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a config value",
	Long: `Stores one dotted config key, for example:

  fragmenter settings set chunking.min_code 200
  fragmenter settings set index.extra_extensions .proto,.thrift
  fragmenter settings set store.backend postgres

API keys are read from the terminal without echo when the value is omitted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding <provider>",
	Short: "Configure the embedding provider",
	Long:  `Sets the embedding provider (openai or ollama) and checks that it responds.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm <provider>",
	Short: "Configure the LLM provider",
	Long:  `Sets the LLM provider (openai, anthropic or ollama) and checks that it responds.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsLLM,
}

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().StringVarP(&settingsModel, "model", "m", "", "model name (default: the provider's default)")
		c.Flags().BoolVar(&settingsNoValidate, "no-validate", false, "skip the connectivity check")
	}
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	s := cfg.Settings

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", cfg.Store.Path())
	if cfg.EnvFile != "" {
		cmd.Printf("Env file:    %s\n", cfg.EnvFile)
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Min code:   %d\n", s.Chunking.Thresholds.Code)
	cmd.Printf("  Min docs:   %d\n", s.Chunking.Thresholds.Docs)
	cmd.Printf("  Min config: %d\n", s.Chunking.Thresholds.Config)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Workers:    %d\n", s.Index.NumWorkers)
	cmd.Printf("  Collection: %s\n", s.Index.Collection)
	if len(s.Index.ExtraExtensions) > 0 {
		cmd.Printf("  Extra extensions: %s\n", strings.Join(s.Index.ExtraExtensions, ", "))
	}
	cmd.Printf("  Extractors: %t\n", s.Index.EnableExtractors)
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, s.Embedding.Provider, s.Embedding.Model, s.Embedding.BaseURL, s.Embedding.APIKey, s.Embedding.Validate())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, s.LLM.Provider, s.LLM.Model, s.LLM.BaseURL, s.LLM.APIKey, s.LLM.Validate())
	cmd.Printf("  Temperature: %.2f\n", s.LLM.Temperature)
	cmd.Printf("  Max tokens:  %d\n", s.LLM.MaxTokens)
	cmd.Printf("  Timeout:     %s\n", s.LLM.Timeout)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", s.Store.Backend)
	if s.Store.Backend == domain.StoreBackendPostgres {
		dsn := "(not set)"
		if s.Store.PostgresDSN != "" {
			dsn = maskAPIKey(s.Store.PostgresDSN)
		}
		cmd.Printf("  DSN:     %s\n", dsn)
	}
	return nil
}

func printProvider(cmd *cobra.Command, p domain.AIProvider, model, baseURL, apiKey string, validErr error) {
	cmd.Printf("  Provider: %s\n", p.Description())
	cmd.Printf("  Model:    %s\n", model)
	if p.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		key := "(not set)"
		if apiKey != "" {
			key = maskAPIKey(apiKey)
		}
		cmd.Printf("  API Key:  %s\n", key)
	}
	if validErr != nil {
		cmd.Printf("  Status:   not configured (%v)\n", validErr)
	} else {
		cmd.Println("  Status:   configured")
	}
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	key := args[0]
	var raw string
	switch {
	case len(args) == 2:
		raw = args[1]
	case strings.HasSuffix(key, "api_key"):
		cmd.Print("Enter API key: ")
		raw = readPassword(cmd)
		cmd.Println()
	default:
		return fmt.Errorf("a value is required for %s", key)
	}
	if raw == "" {
		return fmt.Errorf("empty value for %s", key)
	}

	if err := cfg.Service.Set(key, parseValue(key, raw)); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	provider := domain.AIProvider(args[0])
	if err := cfg.Service.SetEmbeddingProvider(provider, settingsModel); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if !settingsNoValidate {
		// Reload so keys from the environment take part in the check.
		cfg, err = loadSettings()
		if err != nil {
			return err
		}
		cmd.Print("Validating configuration... ")
		if err := cfg.Service.ValidateEmbeddingConfig(&cfg.Settings); err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	stored, err := cfg.Service.Get()
	if err != nil {
		return err
	}
	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), stored.Embedding.Model)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	provider := domain.AIProvider(args[0])
	if err := cfg.Service.SetLLMProvider(provider, settingsModel); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if !settingsNoValidate {
		cfg, err = loadSettings()
		if err != nil {
			return err
		}
		cmd.Print("Validating configuration... ")
		if err := cfg.Service.ValidateLLMConfig(&cfg.Settings); err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	stored, err := cfg.Service.Get()
	if err != nil {
		return err
	}
	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), stored.LLM.Model)
	return nil
}

// Helper functions.

// listKeys hold comma-separated values.
var listKeys = map[string]bool{
	services.KeyExtraExtensions: true,
	services.KeyProcessors:      true,
}

// parseValue converts raw into the TOML type the key is read back as.
func parseValue(key, raw string) any {
	if listKeys[key] {
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items
	}
	if strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "_dsn") {
		return raw
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(cmd *cobra.Command) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
