package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// ErrNotDirectory is returned by CollectExtensions for a file argument.
var ErrNotDirectory = errors.New("not a directory")

// CollectExtensions returns the sorted unique extensions of the regular
// files under dir. Files with no extension contribute their name.
// .git directories are skipped unless includeGit is set.
func CollectExtensions(ctx context.Context, dir string, includeGit bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	seen := make(map[string]bool)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if !includeGit && d.Name() == ".git" && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ext := filepath.Ext(d.Name())
		// Dotfiles such as .gitignore have no extension.
		if ext == "" || ext == d.Name() {
			seen[d.Name()] = true
		} else {
			seen[ext] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out, nil
}
