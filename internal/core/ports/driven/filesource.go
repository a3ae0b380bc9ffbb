package driven

import "context"

// FileSource enumerates files under a root directory.
type FileSource interface {
	// Root returns the absolute root directory.
	Root() string

	// Files returns eligible file paths in lexical walk order.
	Files(ctx context.Context) ([]string, error)

	// ReadFile returns the content of a file returned by Files.
	ReadFile(path string) ([]byte, error)

	// Watch sends a signal on the returned channel whenever an eligible
	// file changes. Bursts of events are coalesced. The channel closes
	// when ctx is cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Fetcher downloads a web page.
type Fetcher interface {
	// Fetch returns the response body of url as text.
	Fetch(ctx context.Context, url string) (string, error)
}

// PageParser extracts links and readable content from HTML.
type PageParser interface {
	// Links returns the absolute URLs linked from page that start with
	// prefix, fragments removed, deduplicated, in document order.
	Links(page, pageURL, prefix string) ([]string, error)

	// Content returns the readable text of page as markdown-ish plain text.
	Content(page, pageURL string) (string, error)
}
