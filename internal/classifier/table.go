package classifier

import "github.com/custodia-labs/fragmenter/internal/core/domain"

type entry struct {
	category domain.Category
	strategy domain.SplitStrategy
}

// byExtension is keyed by lowercased extension including the dot.
var byExtension = map[string]entry{
	// Program source split by line windows.
	".py":  {domain.CategoryCode, domain.StrategySource},
	".cpp": {domain.CategoryCode, domain.StrategySource},
	".h":   {domain.CategoryCode, domain.StrategySource},
	".hpp": {domain.CategoryCode, domain.StrategySource},
	".cc":  {domain.CategoryCode, domain.StrategySource},
	".c":   {domain.CategoryCode, domain.StrategySource},
	".dts": {domain.CategoryCode, domain.StrategySource},

	// Code only indexed when enabled through extra extensions.
	".java":  {domain.CategoryCode, domain.StrategySource},
	".js":    {domain.CategoryCode, domain.StrategySource},
	".ts":    {domain.CategoryCode, domain.StrategySource},
	".go":    {domain.CategoryCode, domain.StrategySource},
	".rs":    {domain.CategoryCode, domain.StrategySource},
	".swift": {domain.CategoryCode, domain.StrategySource},
	".kt":    {domain.CategoryCode, domain.StrategySource},
	".scala": {domain.CategoryCode, domain.StrategySource},
	".rb":    {domain.CategoryCode, domain.StrategySource},
	".php":   {domain.CategoryCode, domain.StrategySource},
	".cs":    {domain.CategoryCode, domain.StrategySource},

	// Shell scripts count as code but split as text.
	".sh":   {domain.CategoryCode, domain.StrategyText},
	".bash": {domain.CategoryCode, domain.StrategyText},

	// Markup counted as code, split with the structured window.
	".xml": {domain.CategoryCode, domain.StrategyStructured},
	".ui":  {domain.CategoryCode, domain.StrategyStructured},

	// Documentation.
	".md":  {domain.CategoryDocumentation, domain.StrategyMarkdown},
	".rst": {domain.CategoryDocumentation, domain.StrategyText},
	".txt": {domain.CategoryDocumentation, domain.StrategyText},
	".pdf": {domain.CategoryDocumentation, domain.StrategyPDF},

	// Config and data.
	".yml":  {domain.CategoryConfig, domain.StrategyStructured},
	".yaml": {domain.CategoryConfig, domain.StrategyStructured},
	".json": {domain.CategoryConfig, domain.StrategyStructured},
	".cff":  {domain.CategoryConfig, domain.StrategyStructured},
	".dcf":  {domain.CategoryConfig, domain.StrategyText},
	".eds":  {domain.CategoryConfig, domain.StrategyText},
}

// byName is keyed by exact file name and wins over byExtension.
var byName = map[string]entry{
	"README":     {domain.CategoryDocumentation, domain.StrategyMarkdown},
	"LICENSE":    {domain.CategoryDocumentation, domain.StrategyText},
	"Makefile":   {domain.CategoryConfig, domain.StrategyText},
	"Dockerfile": {domain.CategoryConfig, domain.StrategyText},
}

// defaultExtensions are indexed without configuration.
var defaultExtensions = []string{
	".md", ".py", ".cpp", ".h", ".hpp", ".cc", ".c", ".dts",
	".xml", ".ui", ".yml", ".yaml", ".json", ".cff",
	".txt", ".sh", ".dcf", ".eds", ".pdf",
}

// specialNames are indexed despite lacking a processed extension.
var specialNames = []string{"Makefile", "Dockerfile", "README"}

// excludePatterns skip any path containing them.
var excludePatterns = []string{
	".git", ".dtbo", ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".gitmodules",
}

// DefaultExtensions returns the extensions indexed without configuration.
func DefaultExtensions() []string {
	out := make([]string, len(defaultExtensions))
	copy(out, defaultExtensions)
	return out
}

// ExcludePatterns returns the substrings that exclude a path.
func ExcludePatterns() []string {
	out := make([]string, len(excludePatterns))
	copy(out, excludePatterns)
	return out
}
