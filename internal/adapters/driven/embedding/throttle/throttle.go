// Package throttle wraps an embedding service with a token bucket and
// backs off when the provider reports a rate limit.
package throttle

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default backoff settings.
const (
	DefaultBackoff    = 10 * time.Second
	DefaultMaxRetries = 2
)

// Config controls the throttle.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero or less disables the bucket.
	RequestsPerSecond float64

	// Burst is the bucket size (default: 1).
	Burst int

	// Backoff is the pause after a rate limit error (default: 10s).
	Backoff time.Duration

	// MaxRetries is how often a rate limited call is retried (default: 2).
	MaxRetries int
}

// EmbeddingService delegates to an inner service under a rate limit.
type EmbeddingService struct {
	inner      driven.EmbeddingService
	limiter    *rate.Limiter
	backoff    time.Duration
	maxRetries int

	mu      sync.Mutex
	retryAt time.Time
}

// Wrap returns inner guarded by cfg.
func Wrap(inner driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &EmbeddingService{
		inner:      inner,
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		backoff:    cfg.Backoff,
		maxRetries: cfg.MaxRetries,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.do(ctx, func() error {
		var err error
		out, err = s.inner.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.do(ctx, func() error {
		var err error
		out, err = s.inner.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

func (s *EmbeddingService) do(ctx context.Context, call func() error) error {
	for attempt := 0; ; attempt++ {
		if err := s.wait(ctx); err != nil {
			return err
		}
		err := call()
		if err == nil || !errors.Is(err, domain.ErrRateLimited) || attempt >= s.maxRetries {
			return err
		}
		s.mu.Lock()
		s.retryAt = time.Now().Add(s.backoff)
		s.mu.Unlock()
	}
}

func (s *EmbeddingService) wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return s.limiter.Wait(ctx)
}

func (s *EmbeddingService) Dimensions() int                { return s.inner.Dimensions() }
func (s *EmbeddingService) ModelName() string              { return s.inner.ModelName() }
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }
func (s *EmbeddingService) Close() error                   { return s.inner.Close() }
