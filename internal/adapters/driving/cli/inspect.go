package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fragmenter/internal/app"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

const (
	histogramWidth = 40
	depthBarWidth  = 30
	maxSuspicious  = 10
)

var inspectStorageDir string

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Aliases: []string{"inspect-index"},
	Short:   "Show statistics for the stored index",
	Long: `Prints vector and document counts, chunk length statistics,
content type and repository breakdowns, and chunks that look too short.`,
	Example: `  fragmenter inspect
  fragmenter inspect-index --storage-dir ./custom_index --debug`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectStorageDir, "storage-dir", "s", app.DefaultStorageDir, "directory containing the index")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	inspector, closer, err := newInspector(cmd.Context(), cfg, inspectStorageDir)
	if err != nil {
		return err
	}
	defer closer.Close()

	stats, err := inspector.Inspect(cmd.Context())
	if errors.Is(err, domain.ErrEmptyIndex) {
		return errors.New("index is empty, build it first with 'fragmenter index'")
	}
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	printStats(cmd, stats)
	return nil
}

func printStats(cmd *cobra.Command, s *domain.IndexStats) {
	if s.Mismatch {
		cmd.Println("Warning: vector store is empty but the docstore has entries.")
		cmd.Println("The next index run rebuilds from scratch.")
		cmd.Println()
	}

	cmd.Println("Index Inspection Report")
	cmd.Println("=======================")
	cmd.Println()

	cmd.Println("[Overview]")
	cmd.Printf("  Vectors:      %d\n", s.VectorCount)
	cmd.Printf("  Documents:    %d\n", s.DocCount)
	cmd.Printf("  Unique files: %d\n", s.UniqueFiles)
	if len(s.Repositories) > 0 {
		cmd.Printf("  Repositories: %s\n", strings.Join(s.Repositories, ", "))
	}
	if len(s.FileTypes) > 0 {
		cmd.Printf("  File types:   %s\n", strings.Join(s.FileTypes, ", "))
	}
	if s.LastRun != nil {
		cmd.Printf("  Last run:     %s (%d new, %d unchanged, %d removed)\n",
			s.LastRun.StartedAt.Format("2006-01-02 15:04:05"),
			s.LastRun.Embedded, s.LastRun.Unchanged, s.LastRun.Deleted)
	}
	cmd.Println()

	total := s.DocCount
	if total == 0 {
		return
	}

	cmd.Println("[Chunk Length]")
	cmd.Printf("  Average: %.0f\n", s.MeanLength)
	cmd.Printf("  Min:     %d\n", s.MinLength)
	cmd.Printf("  Max:     %d\n", s.MaxLength)
	cmd.Println()
	printChunkSummary(cmd, "Smallest chunk", s.Smallest)
	printChunkSummary(cmd, "Largest chunk", s.Largest)

	cmd.Println("[Length Distribution]")
	for _, b := range s.Histogram {
		label := fmt.Sprintf("%5d-%-5d", b.Lower, b.Upper)
		if b.Upper == 0 {
			label = fmt.Sprintf("%5d+     ", b.Lower)
		}
		cmd.Printf("  %s %6d %s\n", label, b.Count, bar(b.Count, total, histogramWidth))
	}
	cmd.Println()

	cmd.Println("[Content Types]")
	cmd.Printf("  Code:          %d (%s)\n", s.CodeChunks, percent(s.CodeChunks, total))
	cmd.Printf("  Documentation: %d (%s)\n", s.DocChunks, percent(s.DocChunks, total))
	if other := total - s.CodeChunks - s.DocChunks; other > 0 {
		cmd.Printf("  Other:         %d (%s)\n", other, percent(other, total))
	}
	cmd.Println()

	if len(s.RepositoryCounts) > 0 {
		cmd.Println("[Chunks per Repository]")
		repos := make([]string, 0, len(s.RepositoryCounts))
		for r := range s.RepositoryCounts {
			repos = append(repos, r)
		}
		sort.Slice(repos, func(i, j int) bool {
			ci, cj := s.RepositoryCounts[repos[i]], s.RepositoryCounts[repos[j]]
			if ci != cj {
				return ci > cj
			}
			return repos[i] < repos[j]
		})
		for _, r := range repos {
			n := s.RepositoryCounts[r]
			cmd.Printf("  %-24s %6d (%s)\n", r, n, percent(n, total))
		}
		cmd.Println()
	}

	if len(s.DepthCounts) > 0 {
		cmd.Println("[Directory Depth]")
		depths := make([]int, 0, len(s.DepthCounts))
		peak := 0
		for d, n := range s.DepthCounts {
			depths = append(depths, d)
			peak = max(peak, n)
		}
		sort.Ints(depths)
		for _, d := range depths {
			n := s.DepthCounts[d]
			cmd.Printf("  Level %d: %6d %s\n", d, n, bar(n, peak, depthBarWidth))
		}
		cmd.Println()
	}

	if len(s.Suspicious) > 0 {
		cmd.Printf("Warning: %d chunks shorter than %d characters\n", len(s.Suspicious), domain.SuspiciousLength)
		for i, c := range s.Suspicious {
			if i == maxSuspicious {
				cmd.Printf("  ... and %d more\n", len(s.Suspicious)-maxSuspicious)
				break
			}
			cmd.Printf("  %s (%d): %q\n", c.File, c.Length, c.Preview)
		}
	}
}

func printChunkSummary(cmd *cobra.Command, title string, c domain.ChunkSummary) {
	if c.ID == "" {
		return
	}
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  File:    %s\n", c.File)
	cmd.Printf("  Length:  %d\n", c.Length)
	cmd.Printf("  Preview: %s\n", c.Preview)
	cmd.Println()
}

func bar(n, total, width int) string {
	if total <= 0 {
		return ""
	}
	return strings.Repeat("#", n*width/total)
}

func percent(n, total int) string {
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}
