// Package web downloads pages for the scrape command.
package web

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	// DefaultDelay is the minimum pause between requests.
	DefaultDelay = 2 * time.Second

	// DefaultJitter is the maximum random pause added to DefaultDelay.
	DefaultJitter = 3 * time.Second

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the scraper.
	DefaultUserAgent = "Mozilla/5.0 (compatible; fragmenter/1.0)"

	// MaxBodySize caps a downloaded page.
	MaxBodySize = 10 << 20
)

// Config holds fetcher settings. A zero Timeout or UserAgent takes the default.
type Config struct {
	Delay     time.Duration
	Jitter    time.Duration
	Timeout   time.Duration
	UserAgent string

	// NoDelay disables the pause between requests.
	NoDelay bool
}

// DefaultConfig returns the polite crawl settings.
func DefaultConfig() Config {
	return Config{
		Delay:     DefaultDelay,
		Jitter:    DefaultJitter,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Fetcher is an HTTP page fetcher that spaces out its requests.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	jitter    time.Duration
	userAgent string
}

// NewFetcher creates a fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	jitter := time.Duration(0)
	if !cfg.NoDelay && cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
		jitter = cfg.Jitter
	}

	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   limiter,
		jitter:    jitter,
		userAgent: cfg.UserAgent,
	}
}

// Fetch returns the body of url. Non-2xx responses are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("fetch %s: %w", url, domain.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}

func (f *Fetcher) wait(ctx context.Context) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}
	if f.jitter <= 0 {
		return nil
	}

	timer := time.NewTimer(rand.N(f.jitter))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
