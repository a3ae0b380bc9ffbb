package classifier

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// Classifier resolves categories and eligibility for paths.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	thresholds domain.Thresholds
	extensions map[string]bool
	names      map[string]bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithExtraExtensions adds extensions to the eligible set.
// A missing leading dot is added.
func WithExtraExtensions(exts ...string) Option {
	return func(c *Classifier) {
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			c.extensions[ext] = true
		}
	}
}

// New creates a classifier using the given thresholds.
func New(thresholds domain.Thresholds, opts ...Option) *Classifier {
	c := &Classifier{
		thresholds: thresholds,
		extensions: make(map[string]bool, len(defaultExtensions)),
		names:      make(map[string]bool, len(specialNames)),
	}
	for _, ext := range defaultExtensions {
		c.extensions[ext] = true
	}
	for _, name := range specialNames {
		c.names[name] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the category, threshold and split strategy for path.
func (c *Classifier) Classify(path string) domain.Classification {
	e := lookup(path)
	return domain.Classification{
		Category:  e.category,
		Threshold: c.thresholds.For(e.category),
		Strategy:  e.strategy,
	}
}

// Thresholds returns the configured thresholds.
func (c *Classifier) Thresholds() domain.Thresholds {
	return c.thresholds
}

// Excluded returns true if path contains an exclusion pattern.
// Callers pass the path relative to the traversal root.
func (c *Classifier) Excluded(path string) bool {
	for _, pattern := range excludePatterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// Eligible returns true if path is not excluded and has a processed
// extension or a special file name.
func (c *Classifier) Eligible(path string) bool {
	if c.Excluded(path) {
		return false
	}
	name := filepath.Base(path)
	if c.names[name] {
		return true
	}
	return c.extensions[Extension(path)]
}

// Extension returns the lowercased extension of path including the dot.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func lookup(path string) entry {
	if e, ok := byName[filepath.Base(path)]; ok {
		return e
	}
	if e, ok := byExtension[Extension(path)]; ok {
		return e
	}
	return entry{category: domain.CategoryOther, strategy: domain.StrategyText}
}
