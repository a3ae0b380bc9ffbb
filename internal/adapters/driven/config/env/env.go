// Package env reads provider settings from environment variables and .env files.
//
// Variables use the plain names (LLM_PROVIDER, OPENAI_API_KEY, ...). Each can
// also be given with a FRAGMENTER_ prefix, which wins when both are set.
package env

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// Prefix is the optional variable prefix.
const Prefix = "FRAGMENTER"

// FileName is the dotenv file searched for when none is given.
const FileName = ".env"

// Variables holds every recognised environment override. Unset variables
// stay nil or empty and leave the settings untouched.
type Variables struct {
	LLMProvider    string   `envconfig:"LLM_PROVIDER"`
	LLMModel       string   `envconfig:"LLM_MODEL"`
	LLMTemperature *float64 `envconfig:"LLM_TEMPERATURE"`
	LLMMaxTokens   *int     `envconfig:"LLM_MAX_TOKENS"`
	// LLMTimeout is in seconds.
	LLMTimeout *float64 `envconfig:"LLM_TIMEOUT"`

	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL"`

	EmbedProvider string `envconfig:"EMBED_PROVIDER"`
	EmbedModel    string `envconfig:"EMBED_MODEL"`

	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`

	RelativePaths             *bool `envconfig:"RELATIVE_PATHS"`
	IncludeFileCategorization *bool `envconfig:"INCLUDE_FILE_CATEGORIZATION"`
}

// Read processes the current environment.
func Read() (*Variables, error) {
	var v Variables
	if err := envconfig.Process(Prefix, &v); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", domain.ErrInvalidInput, err)
	}
	return &v, nil
}

// LoadFile loads a dotenv file into the process environment without
// overriding variables that are already set. An explicit path must exist.
// With an empty path the file is searched for from dir upwards; finding
// none is not an error. Returns the loaded path, or "".
func LoadFile(path, dir string) (string, error) {
	if path == "" {
		found, ok := FindFile(dir)
		if !ok {
			return "", nil
		}
		path = found
	}

	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("load env file %s: %w", path, err)
	}
	return path, nil
}

// FindFile looks for .env in dir and each of its parents.
func FindFile(dir string) (string, bool) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Apply overlays the set variables onto s.
func (v *Variables) Apply(s *domain.Settings) {
	if v.LLMProvider != "" {
		s.LLM.Provider = domain.AIProvider(strings.ToLower(v.LLMProvider))
	}
	if v.LLMModel != "" {
		s.LLM.Model = v.LLMModel
	}
	if v.LLMTemperature != nil {
		s.LLM.Temperature = *v.LLMTemperature
	}
	if v.LLMMaxTokens != nil {
		s.LLM.MaxTokens = *v.LLMMaxTokens
	}
	if v.LLMTimeout != nil && *v.LLMTimeout > 0 {
		s.LLM.Timeout = time.Duration(*v.LLMTimeout * float64(time.Second))
	}

	if v.OllamaBaseURL != "" {
		s.LLM.BaseURL = v.OllamaBaseURL
		s.Embedding.BaseURL = v.OllamaBaseURL
	}

	if v.EmbedProvider != "" {
		s.Embedding.Provider = domain.AIProvider(strings.ToLower(v.EmbedProvider))
	}
	if v.EmbedModel != "" {
		s.Embedding.Model = v.EmbedModel
	}

	// API keys follow the provider they belong to.
	s.LLM.APIKey = pickKey(s.LLM.Provider, s.LLM.APIKey, v)
	s.Embedding.APIKey = pickKey(s.Embedding.Provider, s.Embedding.APIKey, v)

	if v.RelativePaths != nil {
		s.Metadata.RelativePaths = *v.RelativePaths
	}
	if v.IncludeFileCategorization != nil {
		s.Metadata.IncludeCategorization = *v.IncludeFileCategorization
	}
}

func pickKey(p domain.AIProvider, current string, v *Variables) string {
	switch p {
	case domain.AIProviderOpenAI:
		if v.OpenAIAPIKey != "" {
			return v.OpenAIAPIKey
		}
	case domain.AIProviderAnthropic:
		if v.AnthropicAPIKey != "" {
			return v.AnthropicAPIKey
		}
	}
	return current
}

// Keys returns the unprefixed variable names in declaration order.
func Keys() []string {
	return []string{
		"LLM_PROVIDER", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_MAX_TOKENS", "LLM_TIMEOUT",
		"OLLAMA_BASE_URL", "EMBED_PROVIDER", "EMBED_MODEL",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"RELATIVE_PATHS", "INCLUDE_FILE_CATEGORIZATION",
	}
}

// Template is the .env file written by `fragmenter init`.
const Template = `# fragmenter environment
# Values here are overridden by real environment variables and CLI flags.

# LLM used by "fragmenter query" (openai, anthropic or ollama)
LLM_PROVIDER=openai
LLM_MODEL=gpt-4o-mini
LLM_TEMPERATURE=0.1
LLM_MAX_TOKENS=512
# Request timeout in seconds
LLM_TIMEOUT=600

# Embeddings used by "fragmenter index" and "fragmenter query" (openai or ollama)
EMBED_PROVIDER=openai
EMBED_MODEL=text-embedding-3-small

# Local models
OLLAMA_BASE_URL=http://localhost:11434

# API keys
OPENAI_API_KEY=
ANTHROPIC_API_KEY=

# Metadata attached to every chunk
RELATIVE_PATHS=true
INCLUDE_FILE_CATEGORIZATION=true
`
