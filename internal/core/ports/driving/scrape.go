package driving

import (
	"context"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// ScrapeRequest configures a scrape.
type ScrapeRequest struct {
	// URL is the index page. Linked pages under it are saved too.
	URL string

	// OutputDir receives one file per page.
	OutputDir string

	Format domain.ScrapeFormat
}

// ScrapeService saves a documentation site as local files for indexing.
type ScrapeService interface {
	Scrape(ctx context.Context, req ScrapeRequest) (*domain.ScrapeReport, error)
}
