// Package classifier maps file paths to a content category, a minimum
// chunk size and a split strategy.
//
// Classification is a pure lookup keyed by lowercased extension or by
// exact file name. It never fails: unknown files fall through to
// domain.CategoryOther with the smallest threshold and the text strategy.
//
// The package also owns the traversal rules: which files are eligible
// for indexing and which path patterns exclude a file outright.
package classifier
