// Package cli implements the fragmenter command line.
//
// Each command lives in its own file and registers itself on rootCmd in
// init. Commands build their services through the package-level
// constructors below, which tests replace with mocks.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fragmenter/internal/app"
	"github.com/custodia-labs/fragmenter/internal/config"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Global flags.
var (
	debugMode  bool
	configPath string
	envFile    string
	logsDir    string
)

// Service constructors. Tests swap these out.
var (
	loadConfig   = app.LoadConfig
	newIndexer   = app.NewIndexer
	newQuerier   = app.NewQuerier
	newInspector = app.NewInspector
	newScraper   = app.NewScraper
)

var rootCmd = &cobra.Command{
	Use:   "fragmenter",
	Short: "RAG indexing and querying for code and docs",
	Long: `Fragmenter splits a tree of code and documentation into chunks,
embeds them into a local vector index, and answers questions over it.

Typical flow:
  fragmenter init
  fragmenter index --data-dir ./data --storage-dir ./storage
  fragmenter query -s ./storage -q "How does the parser work?"`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setupLogging,
	PersistentPostRunE: closeLogging,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debugMode, "debug", false, "enable debug logging")
	flags.BoolVarP(&debugMode, "verbose", "v", false, "same as --debug")
	flags.StringVar(&configPath, "config", "", "config file (default ~/.fragmenter/config.toml)")
	flags.StringVar(&envFile, "env-file", "", "path to .env file (default: search parent directories)")
	flags.StringVarP(&logsDir, "logs-dir", "l", "", "directory for log files (optional)")
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupLogging(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(debugMode)
	if logsDir == "" {
		return nil
	}
	path, err := logger.SetLogFile(logsDir)
	if err != nil {
		return err
	}
	logger.Debug("Logging to %s", path)
	return nil
}

func closeLogging(_ *cobra.Command, _ []string) error {
	return logger.Close()
}

// loadSettings reads every configuration layer using the global flags.
func loadSettings() (*config.Config, error) {
	return loadConfig(configPath, envFile)
}
