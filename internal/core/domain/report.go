package domain

import "time"

// IndexReport summarises one indexing run.
type IndexReport struct {
	RunID string

	// FilesSeen counts eligible files found during traversal.
	FilesSeen int

	// FilesSkipped counts files that failed to load or decode.
	FilesSkipped int

	// Chunks is the number of merged chunks produced.
	Chunks int

	// Embedded counts chunks that were new or changed and got written.
	Embedded int

	// Unchanged counts chunks already present in the document store.
	Unchanged int

	// Deleted counts stale entries removed from the store.
	Deleted int

	// Failed counts chunks skipped after individual retry.
	Failed int

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall time of the run.
func (r IndexReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
