package domain

// SuspiciousLength is the chunk length below which a chunk is flagged.
const SuspiciousLength = 50

// ChunkSummary is a short description of one stored chunk.
type ChunkSummary struct {
	ID      string
	File    string
	Length  int
	Preview string
}

// LengthBucket counts chunks whose length falls in [Lower, Upper).
// Upper is 0 for the open-ended last bucket.
type LengthBucket struct {
	Lower int
	Upper int
	Count int
}

// IndexStats describes the contents of a stored index.
type IndexStats struct {
	VectorCount int
	DocCount    int

	// Mismatch is true when the vector store is empty but the document
	// store is not. The next index run rebuilds from scratch.
	Mismatch bool

	UniqueFiles  int
	Repositories []string
	FileTypes    []string
	MetadataKeys []string

	MinLength  int
	MaxLength  int
	MeanLength float64
	Smallest   ChunkSummary
	Largest    ChunkSummary
	Histogram  []LengthBucket

	CodeChunks int
	DocChunks  int

	// RepositoryCounts maps repository name to chunk count.
	RepositoryCounts map[string]int

	// DepthCounts maps directory depth to chunk count.
	DepthCounts map[int]int

	// Suspicious lists chunks shorter than SuspiciousLength.
	Suspicious []ChunkSummary

	// LastRun is the most recent index run, when recorded.
	LastRun *IndexReport
}
