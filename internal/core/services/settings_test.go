package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// mockAIValidator records what it was asked to validate.
type mockAIValidator struct {
	embedding *domain.EmbeddingSettings
	llm       *domain.LLMSettings
	err       error
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.err
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.err
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults, *settings)
	assert.Equal(t, defaults, service.GetDefaults())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyMinCode:          int64(300),
		KeyMinDocs:          120,
		KeyNumWorkers:       8,
		KeyCollection:       "kernel",
		KeyExtraExtensions:  []any{".go", ".rs"},
		KeyEnableExtractors: true,
		KeyRelativePaths:    false,
		KeyEmbedProvider:    "ollama",
		KeyEmbedModel:       "nomic-embed-text",
		KeyEmbedRPS:         2.5,
		KeyEmbedTimeout:     "30s",
		KeyLLMProvider:      "anthropic",
		KeyLLMTemperature:   0.7,
		KeyLLMMaxTokens:     1024,
		KeyStoreBackend:     "postgres",
		KeyPostgresDSN:      "postgres://localhost/rag",
	})
	service := NewSettingsService(store, nil)

	s, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, 300, s.Chunking.Thresholds.Code)
	assert.Equal(t, 120, s.Chunking.Thresholds.Docs)
	assert.Equal(t, domain.DefaultThresholds().Config, s.Chunking.Thresholds.Config)
	assert.Equal(t, 8, s.Index.NumWorkers)
	assert.Equal(t, "kernel", s.Index.Collection)
	assert.Equal(t, []string{".go", ".rs"}, s.Index.ExtraExtensions)
	assert.True(t, s.Index.EnableExtractors)
	assert.False(t, s.Metadata.RelativePaths)
	assert.True(t, s.Metadata.IncludeCategorization)
	assert.Equal(t, domain.AIProviderOllama, s.Embedding.Provider)
	assert.InDelta(t, 2.5, s.Embedding.RequestsPerSecond, 1e-9)
	assert.Equal(t, 30*time.Second, s.Embedding.Timeout)
	assert.Equal(t, domain.AIProviderAnthropic, s.LLM.Provider)
	assert.InDelta(t, 0.7, s.LLM.Temperature, 1e-9)
	assert.Equal(t, 1024, s.LLM.MaxTokens)
	assert.Equal(t, domain.StoreBackendPostgres, s.Store.Backend)
	assert.Equal(t, "postgres://localhost/rag", s.Store.PostgresDSN)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyEmbedProvider: "huggingface",
		KeyStoreBackend:  "mongo",
		KeyLLMTimeout:    "soon",
	})
	service := NewSettingsService(store, nil)

	s, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Embedding.Provider, s.Embedding.Provider)
	assert.Equal(t, defaults.Store.Backend, s.Store.Backend)
	assert.Equal(t, defaults.LLM.Timeout, s.LLM.Timeout)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set(KeyCollection, "notes"))
	assert.Equal(t, "notes", store.GetString(KeyCollection))

	err := service.Set("search.mode", "hybrid")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  domain.AIProvider
		model     string
		wantModel string
		wantErr   error
	}{
		{"ollama default model", domain.AIProviderOllama, "", "nomic-embed-text", nil},
		{"openai explicit model", domain.AIProviderOpenAI, "text-embedding-3-large", "text-embedding-3-large", nil},
		{"anthropic has no embeddings", domain.AIProviderAnthropic, "", "", domain.ErrUnsupportedProvider},
		{"unknown provider", domain.AIProvider("huggingface"), "", "", domain.ErrUnsupportedProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			err := service.SetEmbeddingProvider(tt.provider, tt.model)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			s, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, s.Embedding.Provider)
			assert.Equal(t, tt.wantModel, s.Embedding.Model)
		})
	}
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, ""))

	s, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, s.LLM.Provider)
	assert.Equal(t, "llama3.2", s.LLM.Model)
	assert.Equal(t, domain.DefaultOllamaURL, s.LLM.BaseURL)

	assert.ErrorIs(t, service.SetLLMProvider("bogus", ""), domain.ErrUnsupportedProvider)
}

func TestSettingsService_Validate(t *testing.T) {
	validator := &mockAIValidator{}
	service := NewSettingsService(memory.NewConfigStore(), validator)

	explicit := domain.DefaultSettings()
	explicit.Embedding.Model = "custom"
	require.NoError(t, service.ValidateEmbeddingConfig(&explicit))
	assert.Equal(t, "custom", validator.embedding.Model)

	require.NoError(t, service.ValidateLLMConfig(nil))
	assert.Equal(t, domain.DefaultSettings().LLM.Model, validator.llm.Model)

	validator.err = errors.New("unreachable")
	assert.Error(t, service.ValidateLLMConfig(nil))

	noValidator := NewSettingsService(memory.NewConfigStore(), nil)
	assert.NoError(t, noValidator.ValidateEmbeddingConfig(nil))
}

func TestSettingsService_Processors(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	s := domain.DefaultSettings()

	names, cfg := service.Processors(&s)
	assert.Nil(t, names)
	assert.Nil(t, cfg)

	s.Index.EnableExtractors = true
	names, cfg = service.Processors(&s)
	assert.Equal(t, []string{"keywords"}, names)
	assert.Equal(t, map[string]any{"keywords": 5}, cfg)

	require.NoError(t, store.Set(KeyProcessors, []string{"keywords", "custom"}))
	names, _ = service.Processors(&s)
	assert.Equal(t, []string{"keywords", "custom"}, names)
}

func TestKeys(t *testing.T) {
	keys := Keys()

	assert.Contains(t, keys, KeyMinCode)
	assert.Contains(t, keys, KeyPostgresDSN)
	assert.IsIncreasing(t, keys)
}
