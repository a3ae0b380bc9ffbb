package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// APIKeyEnv returns the environment variable holding this provider's API key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize is the number of chunks sent per embedding request.
	BatchSize int

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64

	// Timeout bounds a single embedding request.
	Timeout time.Duration
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Validate() == nil
}

// Validate returns an actionable error when the settings cannot work.
func (e EmbeddingSettings) Validate() error {
	if !e.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: %q has no embedding API (use openai or ollama)", ErrUnsupportedProvider, e.Provider)
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return fmt.Errorf("%w: %s is required for embedding provider %s", ErrConfigMissing, e.Provider.APIKeyEnv(), e.Provider)
	}
	if e.Model == "" {
		return fmt.Errorf("%w: embedding model is empty", ErrConfigMissing)
	}
	return nil
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	Temperature float64
	MaxTokens   int

	// Timeout bounds a single generation request.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	return l.Validate() == nil
}

// Validate returns an actionable error when the settings cannot work.
func (l LLMSettings) Validate() error {
	if !l.Provider.IsValid() {
		return fmt.Errorf("%w: %q (use openai, anthropic or ollama)", ErrUnsupportedProvider, l.Provider)
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return fmt.Errorf("%w: %s is required for LLM provider %s", ErrConfigMissing, l.Provider.APIKeyEnv(), l.Provider)
	}
	if l.Model == "" {
		return fmt.Errorf("%w: LLM model is empty", ErrConfigMissing)
	}
	return nil
}

// ChunkingSettings holds splitter and merge configuration.
type ChunkingSettings struct {
	// Thresholds are the minimum chunk sizes per category.
	Thresholds Thresholds

	// TextChunkSize is the target size of the sentence/paragraph splitter.
	TextChunkSize int

	// TextOverlap is the overlap carried between text chunks.
	TextOverlap int
}

// IndexSettings holds traversal and ingestion configuration.
type IndexSettings struct {
	// NumWorkers bounds concurrent file processing and embedding batches.
	NumWorkers int

	// Collection names the vector collection.
	Collection string

	// ExtraExtensions are processed in addition to the built-in set.
	ExtraExtensions []string

	// EnableExtractors turns on LLM keyword extraction.
	EnableExtractors bool

	// Keywords is the number of keywords requested per chunk.
	Keywords int
}

// MetadataSettings controls which metadata groups are attached to chunks.
type MetadataSettings struct {
	// RelativePaths attaches relative_path, relative_directory and depth.
	RelativePaths bool

	// IncludeCategorization attaches file_type, is_code and is_documentation.
	IncludeCategorization bool
}

// StoreBackend identifies the vector store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite keeps vectors in a local sqlite database.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendPostgres keeps vectors in PostgreSQL with pgvector.
	StoreBackendPostgres StoreBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	return b == StoreBackendSQLite || b == StoreBackendPostgres
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	Backend StoreBackend

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string
}

// Settings holds all configuration for a run.
// It is built once by the config layer and passed into constructors.
type Settings struct {
	Chunking  ChunkingSettings
	Index     IndexSettings
	Metadata  MetadataSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Store     StoreSettings
}

// DefaultSettings returns settings with the tool's defaults.
func DefaultSettings() Settings {
	return Settings{
		Chunking: ChunkingSettings{
			Thresholds:    DefaultThresholds(),
			TextChunkSize: 1000,
			TextOverlap:   200,
		},
		Index: IndexSettings{
			NumWorkers: 2,
			Collection: DefaultCollection,
			Keywords:   5,
		},
		Metadata: MetadataSettings{
			RelativePaths:         true,
			IncludeCategorization: true,
		},
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOpenAI,
			Model:     DefaultEmbeddingModels()[AIProviderOpenAI],
			BaseURL:   DefaultOllamaURL,
			BatchSize: 16,
			Timeout:   60 * time.Second,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultLLMModels()[AIProviderOpenAI],
			BaseURL:     DefaultOllamaURL,
			Temperature: 0.1,
			MaxTokens:   512,
			Timeout:     600 * time.Second,
		},
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
		},
	}
}

// DefaultCollection is the vector collection used when none is configured.
const DefaultCollection = "documents"

// DefaultOllamaURL is the default local Ollama endpoint.
const DefaultOllamaURL = "http://localhost:11434"

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
