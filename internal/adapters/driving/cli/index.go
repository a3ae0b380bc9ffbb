package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fragmenter/internal/app"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

var (
	indexDataDir     string
	indexStorageDir  string
	indexProjectRoot string
	indexMinCode     int
	indexMinDocs     int
	indexMinConfig   int
	indexExtractors  bool
	indexNumWorkers  int
	indexWatch       bool
	indexDryRun      bool
)

var indexCmd = &cobra.Command{
	Use:     "index",
	Aliases: []string{"rebuild-index"},
	Short:   "Build or update the vector index",
	Long: `Walks the data directory, splits every eligible file into chunks,
and embeds only chunks that are new or changed since the last run.
Chunks of files that were removed or edited are deleted from the index.

Use --watch to keep running and re-index whenever files change.
Use --dry-run to see chunk counts without contacting a provider.`,
	Example: `  fragmenter index --data-dir ./data --storage-dir ./storage
  fragmenter rebuild-index -d ./data -s ./index --debug
  fragmenter index -d ./repo --watch`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	defaults := domain.DefaultSettings()
	flags := indexCmd.Flags()
	flags.StringVarP(&indexDataDir, "data-dir", "d", app.DefaultDataDir, "directory containing source files")
	flags.StringVarP(&indexStorageDir, "storage-dir", "s", app.DefaultStorageDir, "directory to store the index")
	flags.StringVar(&indexProjectRoot, "project-root", "", "root for relative paths in metadata (default: data dir)")
	flags.IntVar(&indexMinCode, "min-chunk-code", defaults.Chunking.Thresholds.Code, "minimum chunk size for code files")
	flags.IntVar(&indexMinDocs, "min-chunk-docs", defaults.Chunking.Thresholds.Docs, "minimum chunk size for documentation")
	flags.IntVar(&indexMinConfig, "min-chunk-config", defaults.Chunking.Thresholds.Config, "minimum chunk size for config files")
	flags.BoolVar(&indexExtractors, "enable-extractors", false, "extract keywords per chunk with the LLM (one call per new chunk)")
	flags.IntVar(&indexNumWorkers, "num-workers", defaults.Index.NumWorkers, "parallel workers for chunking and embedding")
	flags.BoolVarP(&indexWatch, "watch", "w", false, "re-index when files change")
	flags.BoolVar(&indexDryRun, "dry-run", false, "produce chunks without embedding or storing them")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	applyIndexFlags(cmd, &cfg.Settings)

	indexer, closer, err := newIndexer(cmd.Context(), cfg, app.IndexOptions{
		DataDir:     indexDataDir,
		StorageDir:  indexStorageDir,
		ProjectRoot: indexProjectRoot,
		DryRun:      indexDryRun,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	req := driving.IndexRequest{DryRun: indexDryRun}
	if indexWatch {
		cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", indexDataDir)
		return indexer.Watch(cmd.Context(), req, func(report *domain.IndexReport, err error) {
			if err != nil {
				logger.Error("Index run failed: %v", err)
				return
			}
			printIndexReport(cmd, report, indexDryRun)
		})
	}

	report, err := indexer.Run(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}
	printIndexReport(cmd, report, indexDryRun)
	return nil
}

// applyIndexFlags overrides settings with flags the user set explicitly.
func applyIndexFlags(cmd *cobra.Command, s *domain.Settings) {
	flags := cmd.Flags()
	if flags.Changed("min-chunk-code") {
		s.Chunking.Thresholds.Code = indexMinCode
	}
	if flags.Changed("min-chunk-docs") {
		s.Chunking.Thresholds.Docs = indexMinDocs
	}
	if flags.Changed("min-chunk-config") {
		s.Chunking.Thresholds.Config = indexMinConfig
	}
	if flags.Changed("num-workers") {
		s.Index.NumWorkers = indexNumWorkers
	}
	if flags.Changed("enable-extractors") {
		s.Index.EnableExtractors = indexExtractors
	}
}

func printIndexReport(cmd *cobra.Command, r *domain.IndexReport, dryRun bool) {
	if dryRun {
		cmd.Printf("Dry run: %d files, %d chunks", r.FilesSeen, r.Chunks)
		if r.FilesSkipped > 0 {
			cmd.Printf(", %d files skipped", r.FilesSkipped)
		}
		cmd.Println()
		return
	}

	cmd.Printf("Indexed %d files into %d chunks in %s\n",
		r.FilesSeen, r.Chunks, r.Duration().Round(time.Millisecond))
	cmd.Printf("  New or changed: %d\n", r.Embedded)
	cmd.Printf("  Unchanged:      %d\n", r.Unchanged)
	cmd.Printf("  Removed:        %d\n", r.Deleted)
	if r.Failed > 0 {
		cmd.Printf("  Failed:         %d (see log)\n", r.Failed)
	}
	if r.FilesSkipped > 0 {
		cmd.Printf("  Files skipped:  %d\n", r.FilesSkipped)
	}
}
