package domain

// ScrapeFormat selects how scraped pages are saved.
type ScrapeFormat string

// Available scrape formats.
const (
	ScrapeMarkdown ScrapeFormat = "markdown"
	ScrapeHTML     ScrapeFormat = "html"
)

// IsValid returns true if the format is recognised.
func (f ScrapeFormat) IsValid() bool {
	return f == ScrapeMarkdown || f == ScrapeHTML
}

// Extension returns the file extension for saved pages, without the dot.
func (f ScrapeFormat) Extension() string {
	if f == ScrapeHTML {
		return "html"
	}
	return "md"
}

// ScrapeReport summarises one scrape.
type ScrapeReport struct {
	Discovered int
	Saved      []string
	Skipped    int
	Failed     int
}
