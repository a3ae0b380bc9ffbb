package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/web"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
)

var (
	scrapeURL     string
	scrapeOutput  string
	scrapeFormat  string
	scrapeDelay   time.Duration
	scrapeNoDelay bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Save a documentation site as local files",
	Long: `Fetches the index page, follows links under the same URL prefix,
and saves each page's readable content for indexing.
Pages already saved are skipped, so an interrupted scrape can resume.`,
	Example: `  fragmenter scrape --url https://docs.example.com --output ./data/docs
  fragmenter scrape https://example.com -o ./data --format html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	defaults := web.DefaultConfig()
	flags := scrapeCmd.Flags()
	flags.StringVarP(&scrapeURL, "url", "u", "", "base URL to scrape")
	flags.StringVarP(&scrapeOutput, "output", "o", "", "directory to save scraped pages")
	flags.StringVar(&scrapeFormat, "format", string(domain.ScrapeMarkdown), "output format: markdown or html")
	flags.DurationVar(&scrapeDelay, "delay", defaults.Delay, "minimum pause between requests")
	flags.BoolVar(&scrapeNoDelay, "no-delay", false, "do not pause between requests")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	target := scrapeURL
	if len(args) > 0 {
		if target != "" && target != args[0] {
			return errors.New("give the URL either as an argument or with --url")
		}
		target = args[0]
	}
	if target == "" {
		return errors.New("a URL is required")
	}
	if scrapeOutput == "" {
		return errors.New("--output is required")
	}
	format := domain.ScrapeFormat(scrapeFormat)
	if !format.IsValid() {
		return fmt.Errorf("%w: format %q (use markdown or html)", domain.ErrInvalidInput, scrapeFormat)
	}

	cfg := web.DefaultConfig()
	cfg.Delay = scrapeDelay
	cfg.NoDelay = scrapeNoDelay

	cmd.Printf("Scraping %s into %s\n", target, scrapeOutput)
	report, err := newScraper(cfg).Scrape(cmd.Context(), driving.ScrapeRequest{
		URL:       target,
		OutputDir: scrapeOutput,
		Format:    format,
	})
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	cmd.Printf("Discovered %d pages: %d saved, %d already present, %d failed\n",
		report.Discovered, len(report.Saved), report.Skipped, report.Failed)
	return nil
}
