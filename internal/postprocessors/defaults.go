package postprocessors

import (
	"errors"

	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/postprocessors/keywords"
)

// RegisterDefaults registers all built-in processors with the registry.
// The keywords processor is only registered when llm is non-nil.
func RegisterDefaults(r *Registry, llm driven.LLMService) {
	if llm != nil {
		r.Register(keywords.Name, buildKeywords(keywords.NewExtractor(llm)))
	}
}

// buildKeywords creates a keyword processor from generic config.
// Supported config keys:
//   - keywords (int): Keywords per chunk (default: 5, at most 5)
func buildKeywords(extractor driven.KeywordExtractor) BuilderFunc {
	return func(cfg map[string]any) (driven.ChunkProcessor, error) {
		if extractor == nil {
			return nil, errors.New("keyword extractor not configured")
		}
		var opts []keywords.Option
		if n := getIntFromConfig(cfg, "keywords"); n > 0 {
			opts = append(opts, keywords.WithCount(n))
		}
		return keywords.NewProcessor(extractor, opts...), nil
	}
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
