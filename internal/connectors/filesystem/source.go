// Package filesystem provides the local directory file source.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/fragmenter/internal/classifier"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.FileSource = (*Source)(nil)

// DefaultDebounce is the quiet period that ends a burst of file events.
const DefaultDebounce = 500 * time.Millisecond

// Source walks a directory tree and reports the files the classifier accepts.
type Source struct {
	root       string
	classifier *classifier.Classifier
	debounce   time.Duration
}

// Option configures a Source.
type Option func(*Source)

// WithDebounce sets the watch debounce period.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// New creates a source rooted at root. root must be an existing directory.
func New(root string, cls *classifier.Classifier, opts ...Option) (*Source, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", domain.ErrInvalidInput, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: data dir %s: %v", domain.ErrInvalidInput, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: data dir %s is not a directory", domain.ErrInvalidInput, root)
	}

	s := &Source{root: abs, classifier: cls, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute root directory.
func (s *Source) Root() string {
	return s.root
}

// Files returns the absolute paths of eligible regular files in lexical order.
// Unreadable directories are logged and skipped.
func (s *Source) Files(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == s.root {
				return err
			}
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != s.root && d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if s.classifier.Eligible(s.rel(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	return files, nil
}

// ReadFile returns the content of path.
func (s *Source) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Watch signals after each burst of changes to eligible files.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := s.addTree(watcher, s.root); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go s.watchLoop(ctx, watcher, out)
	return out, nil
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- struct{}) {
	defer close(out)
	defer watcher.Close()

	var (
		timer  *time.Timer
		settle <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !s.handleEvent(watcher, event) {
				continue
			}
			logger.Debug("File event: %s", event)
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			settle = timer.C
		case <-settle:
			settle = nil
			select {
			case out <- struct{}{}:
			default: // a signal is already pending
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// handleEvent returns true if event should trigger a re-index.
// New directories are added to the watch.
func (s *Source) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if info.Name() == ".git" {
				return false
			}
			if err := s.addTree(watcher, event.Name); err != nil {
				logger.Warn("Failed to watch %s: %v", event.Name, err)
			}
			return true
		}
	}

	// Removed paths can no longer be stat'ed; fall back to the name.
	return s.classifier.Eligible(s.rel(event.Name))
}

// addTree watches dir and all of its subdirectories except .git.
func (s *Source) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.root && d.Name() == ".git" {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (s *Source) rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
