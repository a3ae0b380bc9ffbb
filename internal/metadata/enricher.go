// Package metadata builds the per-file metadata record attached to chunks.
//
// Paths are made relative to the enclosing git repository when there is
// one, and to the project root otherwise. A repository is any directory
// holding a .git entry; a file also counts, to cover worktrees and
// submodules.
package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// Enricher produces metadata for files under a project root.
type Enricher struct {
	root     string
	settings domain.MetadataSettings
}

// Option configures the enricher.
type Option func(*Enricher)

// WithSettings selects which metadata groups are attached.
func WithSettings(s domain.MetadataSettings) Option {
	return func(e *Enricher) {
		e.settings = s
	}
}

// NewEnricher creates an enricher rooted at projectRoot.
func NewEnricher(projectRoot string, opts ...Option) *Enricher {
	e := &Enricher{
		root: resolve(projectRoot),
		settings: domain.MetadataSettings{
			RelativePaths:         true,
			IncludeCategorization: true,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the resolved project root.
func (e *Enricher) Root() string {
	return e.root
}

// Enrich returns the metadata record for the file at path.
func (e *Enricher) Enrich(path string, c domain.Classification) domain.Metadata {
	abs := resolve(path)
	name := filepath.Base(abs)

	effective := e.root
	repo, inRepo := FindRepositoryRoot(abs, e.root)
	if inRepo {
		effective = repo
	}

	rel, ok := relative(effective, abs)
	if !ok {
		logger.Warn("File %s is outside project root %s", abs, effective)
		rel = abs
	}
	rel = filepath.ToSlash(rel)

	md := domain.Metadata{
		domain.KeyFilePath:     abs,
		domain.KeyFileName:     name,
		domain.KeyInRepository: inRepo,
	}

	if e.settings.RelativePaths {
		md[domain.KeyRelativePath] = rel
		md[domain.KeyRelativeDirectory] = directory(rel)
		md[domain.KeyDepth] = strings.Count(rel, "/")
	}

	if e.settings.IncludeCategorization {
		md[domain.KeyFileType] = strings.ToLower(filepath.Ext(name))
		md[domain.KeyIsCode] = c.Category.IsCode()
		md[domain.KeyIsDocumentation] = c.Category.IsDocumentation()
	}

	if inRepo {
		md[domain.KeyRepository] = filepath.Base(repo)
		md[domain.KeyRepositoryPath] = repo
	}

	return md
}

// FindRepositoryRoot walks up from path looking for a .git entry.
//
// The search starts at path itself when it is a directory and at its
// parent otherwise. Each level is checked for .git before the stop test,
// so a repository rooted exactly at stopAt is found. The walk ends at
// stopAt or at the first level outside it. An empty stopAt walks to the
// filesystem root.
func FindRepositoryRoot(path, stopAt string) (string, bool) {
	dir := path
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		dir = filepath.Dir(path)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		if stopAt != "" {
			if dir == stopAt {
				return "", false
			}
			if _, ok := relative(stopAt, dir); !ok {
				return "", false
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// relative returns target relative to base, or false if it lies outside.
func relative(base, target string) (string, bool) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func directory(rel string) string {
	i := strings.LastIndex(rel, "/")
	switch {
	case i < 0:
		return "."
	case i == 0:
		return "/"
	default:
		return rel[:i]
	}
}

// resolve returns the absolute, symlink-free form of path when possible.
func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
