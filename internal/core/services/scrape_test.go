package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
)

// mockFetcher serves pages from a map.
type mockFetcher struct {
	pages   map[string]string
	fetched []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (string, error) {
	m.fetched = append(m.fetched, url)
	page, ok := m.pages[url]
	if !ok {
		return "", errors.New("404 not found")
	}
	return page, nil
}

// mockParser returns fixed links and strips "<p>" markers as content.
type mockParser struct {
	links []string
}

func (m *mockParser) Links(_, _, _ string) ([]string, error) {
	return m.links, nil
}

func (m *mockParser) Content(page, _ string) (string, error) {
	return strings.TrimSpace(strings.NewReplacer("<p>", "", "</p>", "").Replace(page)), nil
}

const docsRoot = "https://docs.example.com/guide/"

func newScrapeFixture() (*mockFetcher, *ScrapeService) {
	fetcher := &mockFetcher{pages: map[string]string{
		docsRoot:                    "<p>Index page</p>",
		docsRoot + "install":        "<p>Install steps</p>",
		docsRoot + "api/reference/": "<p>API reference</p>",
	}}
	parser := &mockParser{links: []string{docsRoot + "install", docsRoot + "api/reference/", docsRoot + "missing", docsRoot}}
	return fetcher, NewScrapeService(fetcher, parser)
}

func TestScrapeService_Markdown(t *testing.T) {
	out := t.TempDir()
	_, svc := newScrapeFixture()

	report, err := svc.Scrape(context.Background(), driving.ScrapeRequest{URL: docsRoot, OutputDir: out})

	require.NoError(t, err)
	assert.Equal(t, 4, report.Discovered)
	assert.Len(t, report.Saved, 3)
	assert.Equal(t, 1, report.Failed)

	data, err := os.ReadFile(filepath.Join(out, "guide_install.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Source: "+docsRoot+"install\n\nInstall steps", string(data))

	assert.FileExists(t, filepath.Join(out, "guide.md"))
	assert.FileExists(t, filepath.Join(out, "guide_api_reference.md"))
}

func TestScrapeService_SkipsExisting(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "guide_install.md"), []byte("kept"), 0644))
	fetcher, svc := newScrapeFixture()

	report, err := svc.Scrape(context.Background(), driving.ScrapeRequest{URL: docsRoot, OutputDir: out})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.NotContains(t, fetcher.fetched, docsRoot+"install")
	data, _ := os.ReadFile(filepath.Join(out, "guide_install.md"))
	assert.Equal(t, "kept", string(data))
}

func TestScrapeService_HTML(t *testing.T) {
	out := t.TempDir()
	_, svc := newScrapeFixture()

	_, err := svc.Scrape(context.Background(), driving.ScrapeRequest{
		URL: docsRoot, OutputDir: out, Format: domain.ScrapeHTML,
	})

	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(out, "guide_install.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>Install steps</p>", string(data))
}

func TestScrapeService_InvalidInput(t *testing.T) {
	_, svc := newScrapeFixture()

	tests := []struct {
		name string
		req  driving.ScrapeRequest
	}{
		{"relative url", driving.ScrapeRequest{URL: "/guide", OutputDir: t.TempDir()}},
		{"unknown format", driving.ScrapeRequest{URL: docsRoot, OutputDir: t.TempDir(), Format: "pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Scrape(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestScrapeService_IndexFetchFails(t *testing.T) {
	svc := NewScrapeService(&mockFetcher{}, &mockParser{})

	_, err := svc.Scrape(context.Background(), driving.ScrapeRequest{URL: docsRoot, OutputDir: t.TempDir()})

	assert.ErrorContains(t, err, "fetch index page")
}

func TestPageFileName(t *testing.T) {
	tests := []struct {
		url    string
		format domain.ScrapeFormat
		want   string
	}{
		{"https://example.com/", domain.ScrapeMarkdown, "index.md"},
		{"https://example.com", domain.ScrapeMarkdown, "index.md"},
		{"https://example.com/docs/intro/", domain.ScrapeMarkdown, "docs_intro.md"},
		{"https://example.com/docs/page.html", domain.ScrapeHTML, "docs_page.html.html"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, PageFileName(tt.url, tt.format))
		})
	}
}
