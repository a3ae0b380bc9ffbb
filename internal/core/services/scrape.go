package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// Ensure ScrapeService implements the interface.
var _ driving.ScrapeService = (*ScrapeService)(nil)

// ScrapeService downloads a documentation site page by page.
type ScrapeService struct {
	fetcher driven.Fetcher
	parser  driven.PageParser
}

// NewScrapeService creates a scrape service.
func NewScrapeService(fetcher driven.Fetcher, parser driven.PageParser) *ScrapeService {
	return &ScrapeService{fetcher: fetcher, parser: parser}
}

// Scrape saves the index page and every linked page under its URL.
// Pages whose output file already exists are skipped.
func (s *ScrapeService) Scrape(ctx context.Context, req driving.ScrapeRequest) (*domain.ScrapeReport, error) {
	base, err := url.Parse(req.URL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", domain.ErrInvalidInput, req.URL)
	}
	format := req.Format
	if format == "" {
		format = domain.ScrapeMarkdown
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: unknown format %q (use markdown or html)", domain.ErrInvalidInput, format)
	}
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	index, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch index page: %w", err)
	}
	links, err := s.parser.Links(index, req.URL, req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	urls := append([]string{req.URL}, links...)
	urls = dedupe(urls)
	report := &domain.ScrapeReport{Discovered: len(urls)}
	logger.Info("Found %d pages under %s", len(urls), req.URL)

	for _, pageURL := range urls {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		path := filepath.Join(req.OutputDir, PageFileName(pageURL, format))
		if _, err := os.Stat(path); err == nil {
			logger.Debug("Skipping existing %s", path)
			report.Skipped++
			continue
		}

		page := index
		if pageURL != req.URL {
			page, err = s.fetcher.Fetch(ctx, pageURL)
			if err != nil {
				logger.Warn("Failed to fetch %s: %v", pageURL, err)
				report.Failed++
				continue
			}
		}

		body, err := s.render(page, pageURL, format)
		if err != nil {
			logger.Warn("Failed to extract %s: %v", pageURL, err)
			report.Failed++
			continue
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			return report, fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("Saved %s", path)
		report.Saved = append(report.Saved, path)
	}
	return report, nil
}

func (s *ScrapeService) render(page, pageURL string, format domain.ScrapeFormat) (string, error) {
	if format == domain.ScrapeHTML {
		return page, nil
	}
	text, err := s.parser.Content(page, pageURL)
	if err != nil {
		return "", err
	}
	if domain.IsBlank(text) {
		return "", errors.New("no readable content")
	}
	return "# Source: " + pageURL + "\n\n" + text, nil
}

// PageFileName maps a page URL to its output file name: the URL path
// with slashes replaced by underscores, or "index" for the root.
func PageFileName(pageURL string, format domain.ScrapeFormat) string {
	name := "index"
	if u, err := url.Parse(pageURL); err == nil {
		if p := strings.Trim(u.Path, "/"); p != "" {
			name = strings.ReplaceAll(p, "/", "_")
		}
	}
	return name + "." + format.Extension()
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
