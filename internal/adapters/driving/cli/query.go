package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fragmenter/internal/app"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/services"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// queryPreviewLength bounds how much of a long question is echoed.
const queryPreviewLength = 500

var (
	queryText         string
	queryFile         string
	queryStorageDir   string
	queryTopK         int
	queryOutput       string
	queryOutputDir    string
	queryCodeOnly     bool
	queryLanguage     string
	queryRetrieveOnly bool
	queryLLMProvider  string
	queryLLMModel     string
	queryTemperature  float64
	queryMaxTokens    int
	queryTimeout      float64
	queryEmbProvider  string
	queryEmbModel     string
	queryOllamaURL    string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question over the index",
	Long: `Retrieves the chunks most similar to the question, sends them to the
LLM as context, and prints the answer with its sources.

The question comes from --query or from a file with --file.
With --output the answer is also saved; --code-only saves just the
fenced code blocks, optionally filtered with --language.`,
	Example: `  fragmenter query -s ./storage -q "How does the system work?"
  fragmenter query -s ./storage -q "Explain the code" -o response.md
  fragmenter query -s ./storage -f question.txt --code-only --language cpp`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	flags := queryCmd.Flags()
	flags.StringVarP(&queryText, "query", "q", "", "question to ask (use this or --file)")
	flags.StringVarP(&queryFile, "file", "f", "", "file containing the question")
	flags.StringVarP(&queryStorageDir, "storage-dir", "s", app.DefaultStorageDir, "index storage directory")
	flags.IntVarP(&queryTopK, "top-k", "k", domain.DefaultTopK, "number of chunks used as context")
	flags.StringVarP(&queryOutput, "output", "o", "", "save the answer to this file (relative to --output-dir)")
	flags.StringVar(&queryOutputDir, "output-dir", ".", "directory for saved answers")
	flags.BoolVar(&queryCodeOnly, "code-only", false, "save only the code blocks of the answer")
	flags.StringVar(&queryLanguage, "language", "", "keep only code blocks in this language (e.g. cpp, python)")
	flags.BoolVar(&queryRetrieveOnly, "retrieve-only", false, "print the retrieved chunks without asking the LLM")
	flags.StringVar(&queryLLMProvider, "llm-provider", "", "LLM provider: openai, anthropic or ollama")
	flags.StringVar(&queryLLMModel, "llm-model", "", "LLM model name")
	flags.Float64Var(&queryTemperature, "temperature", 0, "LLM temperature (0.0-1.0)")
	flags.IntVar(&queryMaxTokens, "max-tokens", 0, "maximum response tokens")
	flags.Float64Var(&queryTimeout, "timeout", 0, "LLM request timeout in seconds (default 600)")
	flags.StringVar(&queryEmbProvider, "embed-provider", "", "embedding provider: openai or ollama")
	flags.StringVar(&queryEmbModel, "embed-model", "", "embedding model name")
	flags.StringVar(&queryOllamaURL, "ollama-url", "", "Ollama base URL (default http://localhost:11434)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	question, err := readQuestion()
	if err != nil {
		return err
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	applyQueryFlags(cmd, &cfg.Settings)
	logger.Debug("LLM: %s/%s", cfg.Settings.LLM.Provider, cfg.Settings.LLM.Model)
	logger.Debug("Embeddings: %s/%s", cfg.Settings.Embedding.Provider, cfg.Settings.Embedding.Model)

	querier, closer, err := newQuerier(cmd.Context(), cfg, queryStorageDir, !queryRetrieveOnly)
	if err != nil {
		return err
	}
	defer closer.Close()

	cmd.Println("Query:")
	cmd.Printf("  %s\n\n", previewQuestion(question))

	opts := domain.QueryOptions{TopK: queryTopK}
	if queryRetrieveOnly {
		hits, err := querier.Retrieve(cmd.Context(), question, opts)
		if err != nil {
			return fmt.Errorf("retrieve failed: %w", err)
		}
		printChunks(cmd, hits)
		return nil
	}

	answer, err := querier.Ask(cmd.Context(), question, opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	cmd.Println("Response:")
	cmd.Println(answer.Text)
	cmd.Println()
	printSources(cmd, answer.Sources)

	if queryOutput != "" {
		path, err := saveAnswer(answer.Text)
		if err != nil {
			return err
		}
		cmd.Printf("\nResponse saved to: %s\n", path)
	}
	return nil
}

func readQuestion() (string, error) {
	switch {
	case queryText == "" && queryFile == "":
		return "", errors.New("must provide either --query or --file")
	case queryText != "" && queryFile != "":
		return "", errors.New("cannot use both --query and --file")
	case queryFile != "":
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return "", fmt.Errorf("read question: %w", err)
		}
		logger.Debug("Read query from %s", queryFile)
		return strings.TrimSpace(string(data)), nil
	default:
		return queryText, nil
	}
}

// applyQueryFlags overrides provider settings with flags the user set.
func applyQueryFlags(cmd *cobra.Command, s *domain.Settings) {
	flags := cmd.Flags()
	if flags.Changed("llm-provider") {
		s.LLM.Provider = domain.AIProvider(queryLLMProvider)
	}
	if flags.Changed("llm-model") {
		s.LLM.Model = queryLLMModel
	}
	if flags.Changed("temperature") {
		s.LLM.Temperature = queryTemperature
	}
	if flags.Changed("max-tokens") {
		s.LLM.MaxTokens = queryMaxTokens
	}
	if flags.Changed("timeout") {
		s.LLM.Timeout = time.Duration(queryTimeout * float64(time.Second))
	}
	if flags.Changed("embed-provider") {
		s.Embedding.Provider = domain.AIProvider(queryEmbProvider)
	}
	if flags.Changed("embed-model") {
		s.Embedding.Model = queryEmbModel
	}
	if flags.Changed("ollama-url") {
		s.LLM.BaseURL = queryOllamaURL
		s.Embedding.BaseURL = queryOllamaURL
	}
}

// saveAnswer writes the answer, or only its code blocks with --code-only.
func saveAnswer(text string) (string, error) {
	path := queryOutput
	if !filepath.IsAbs(path) {
		path = filepath.Join(queryOutputDir, path)
	}

	content := text
	if queryCodeOnly {
		code, ok := services.CodeOnly(text, queryLanguage)
		if !ok {
			logger.Warn("No code blocks found in response, saving full text")
		}
		content = code
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("save response: %w", err)
	}
	return path, nil
}

func previewQuestion(q string) string {
	if len(q) <= queryPreviewLength {
		return q
	}
	return fmt.Sprintf("%s\n\n... (truncated, total length: %d chars)", q[:queryPreviewLength], len(q))
}

func printSources(cmd *cobra.Command, hits []domain.RetrievedChunk) {
	if len(hits) == 0 {
		return
	}
	cmd.Println("Sources:")
	for i, h := range hits {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, services.SourcePath(h.Chunk.Metadata), h.Score)
	}
}

func printChunks(cmd *cobra.Command, hits []domain.RetrievedChunk) {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return
	}
	for i, h := range hits {
		cmd.Printf("[%d] %s (%.2f)\n", i+1, services.SourcePath(h.Chunk.Metadata), h.Score)
		cmd.Println(h.Chunk.Text)
		cmd.Println()
	}
}
