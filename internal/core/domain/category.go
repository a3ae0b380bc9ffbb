package domain

// Category is the content category of a source file.
// It decides the minimum chunk size applied by the merge engine.
type Category int

// Content categories.
const (
	// CategoryOther is the fallback for anything not otherwise classified.
	CategoryOther Category = iota

	// CategoryCode is source code and code-like markup.
	CategoryCode

	// CategoryDocumentation is prose: markdown, text, PDF and README-style files.
	CategoryDocumentation

	// CategoryConfig is configuration and data files.
	CategoryConfig
)

// String returns the string representation.
func (c Category) String() string {
	switch c {
	case CategoryCode:
		return "code"
	case CategoryDocumentation:
		return "documentation"
	case CategoryConfig:
		return "config"
	default:
		return "other"
	}
}

// IsCode returns true for the code category.
func (c Category) IsCode() bool {
	return c == CategoryCode
}

// IsDocumentation returns true for the documentation category.
func (c Category) IsDocumentation() bool {
	return c == CategoryDocumentation
}

// SplitStrategy identifies the splitting algorithm used for a file.
type SplitStrategy int

// Available split strategies.
const (
	// StrategyText is the paragraph/sentence splitter used as the catch-all.
	StrategyText SplitStrategy = iota

	// StrategyMarkdown splits on headings and re-splits oversized sections.
	StrategyMarkdown

	// StrategySource is the line-window splitter tuned for program source.
	StrategySource

	// StrategyStructured is the line-window splitter tuned for XML, YAML and JSON.
	StrategyStructured

	// StrategyPDF extracts pages and splits each page as text.
	StrategyPDF
)

// String returns the string representation.
func (s SplitStrategy) String() string {
	switch s {
	case StrategyMarkdown:
		return "markdown"
	case StrategySource:
		return "source"
	case StrategyStructured:
		return "structured"
	case StrategyPDF:
		return "pdf"
	default:
		return "text"
	}
}

// Thresholds holds the minimum trimmed chunk length per category, in characters.
type Thresholds struct {
	Code   int
	Docs   int
	Config int
}

// DefaultThresholds returns the default minimum chunk sizes.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Code:   250,
		Docs:   150,
		Config: 75,
	}
}

// For returns the threshold for a category.
// Config and Other share the smallest threshold.
func (t Thresholds) For(c Category) int {
	switch c {
	case CategoryCode:
		return t.Code
	case CategoryDocumentation:
		return t.Docs
	default:
		return t.Config
	}
}

// Classification is the resolved category, threshold and strategy for a path.
type Classification struct {
	Category  Category
	Threshold int
	Strategy  SplitStrategy
}
