package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{"ollama is valid", AIProviderOllama, true},
		{"openai is valid", AIProviderOpenAI, true},
		{"anthropic is valid", AIProviderAnthropic, true},
		{"huggingface is invalid", AIProvider("huggingface"), false},
		{"empty is invalid", AIProvider(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_Properties(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())

	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())

	assert.Equal(t, "OPENAI_API_KEY", AIProviderOpenAI.APIKeyEnv())
	assert.Equal(t, "ANTHROPIC_API_KEY", AIProviderAnthropic.APIKeyEnv())
	assert.Empty(t, AIProviderOllama.APIKeyEnv())

	assert.True(t, AIProviderOpenAI.SupportsEmbeddings())
	assert.True(t, AIProviderOllama.SupportsEmbeddings())
	assert.False(t, AIProviderAnthropic.SupportsEmbeddings())

	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestEmbeddingSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		wantErr  error
	}{
		{
			name:     "openai with key",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI, Model: "text-embedding-3-small", APIKey: "sk-test"},
		},
		{
			name:     "openai without key",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI, Model: "text-embedding-3-small"},
			wantErr:  ErrConfigMissing,
		},
		{
			name:     "ollama needs no key",
			settings: EmbeddingSettings{Provider: AIProviderOllama, Model: "nomic-embed-text"},
		},
		{
			name:     "anthropic has no embeddings",
			settings: EmbeddingSettings{Provider: AIProviderAnthropic, Model: "x", APIKey: "k"},
			wantErr:  ErrUnsupportedProvider,
		},
		{
			name:     "unknown provider",
			settings: EmbeddingSettings{Provider: "huggingface", Model: "x"},
			wantErr:  ErrUnsupportedProvider,
		},
		{
			name:     "missing model",
			settings: EmbeddingSettings{Provider: AIProviderOllama},
			wantErr:  ErrConfigMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.True(t, tt.settings.IsConfigured())
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.False(t, tt.settings.IsConfigured())
		})
	}
}

func TestEmbeddingSettings_Validate_MessageNamesEnvVar(t *testing.T) {
	err := EmbeddingSettings{Provider: AIProviderOpenAI, Model: "m"}.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLLMSettings_Validate(t *testing.T) {
	assert.NoError(t, LLMSettings{Provider: AIProviderAnthropic, Model: "claude", APIKey: "k"}.Validate())
	assert.NoError(t, LLMSettings{Provider: AIProviderOllama, Model: "llama3.2"}.Validate())

	err := LLMSettings{Provider: AIProviderAnthropic, Model: "claude"}.Validate()
	assert.True(t, errors.Is(err, ErrConfigMissing))
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	err = LLMSettings{Provider: "huggingface", Model: "m"}.Validate()
	assert.True(t, errors.Is(err, ErrUnsupportedProvider))
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, DefaultThresholds(), s.Chunking.Thresholds)
	assert.Equal(t, 1000, s.Chunking.TextChunkSize)
	assert.Equal(t, 200, s.Chunking.TextOverlap)
	assert.Equal(t, 2, s.Index.NumWorkers)
	assert.Equal(t, "documents", s.Index.Collection)
	assert.Equal(t, 5, s.Index.Keywords)
	assert.False(t, s.Index.EnableExtractors)
	assert.True(t, s.Metadata.RelativePaths)
	assert.True(t, s.Metadata.IncludeCategorization)
	assert.Equal(t, AIProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", s.Embedding.Model)
	assert.Equal(t, "gpt-4o-mini", s.LLM.Model)
	assert.InDelta(t, 0.1, s.LLM.Temperature, 1e-9)
	assert.Equal(t, 512, s.LLM.MaxTokens)
	assert.Equal(t, StoreBackendSQLite, s.Store.Backend)
	assert.True(t, s.Store.Backend.IsValid())
	assert.False(t, StoreBackend("chroma").IsValid())
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()

	assert.Equal(t, 1536, dims["text-embedding-3-small"])
	assert.Equal(t, 768, dims["nomic-embed-text"])
}
