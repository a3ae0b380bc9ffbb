package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyMinCode          = "chunking.min_code"
	KeyMinDocs          = "chunking.min_docs"
	KeyMinConfig        = "chunking.min_config"
	KeyTextChunkSize    = "chunking.text_chunk_size"
	KeyTextOverlap      = "chunking.text_overlap"
	KeyNumWorkers       = "index.num_workers"
	KeyCollection       = "index.collection"
	KeyExtraExtensions  = "index.extra_extensions"
	KeyEnableExtractors = "index.enable_extractors"
	KeyKeywords         = "index.keywords"
	KeyRelativePaths    = "metadata.relative_paths"
	KeyCategorization   = "metadata.include_categorization"
	KeyEmbedProvider    = "embedding.provider"
	KeyEmbedModel       = "embedding.model"
	KeyEmbedBaseURL     = "embedding.base_url"
	KeyEmbedAPIKey      = "embedding.api_key"
	KeyEmbedBatchSize   = "embedding.batch_size"
	KeyEmbedRPS         = "embedding.requests_per_second"
	KeyEmbedTimeout     = "embedding.timeout"
	KeyLLMProvider      = "llm.provider"
	KeyLLMModel         = "llm.model"
	KeyLLMBaseURL       = "llm.base_url"
	KeyLLMAPIKey        = "llm.api_key"
	KeyLLMTemperature   = "llm.temperature"
	KeyLLMMaxTokens     = "llm.max_tokens"
	KeyLLMTimeout       = "llm.timeout"
	KeyStoreBackend     = "store.backend"
	KeyPostgresDSN      = "store.postgres_dsn"
	KeyProcessors       = "pipeline.processors"
)

var knownKeys = map[string]bool{
	KeyMinCode: true, KeyMinDocs: true, KeyMinConfig: true,
	KeyTextChunkSize: true, KeyTextOverlap: true,
	KeyNumWorkers: true, KeyCollection: true, KeyExtraExtensions: true,
	KeyEnableExtractors: true, KeyKeywords: true,
	KeyRelativePaths: true, KeyCategorization: true,
	KeyEmbedProvider: true, KeyEmbedModel: true, KeyEmbedBaseURL: true, KeyEmbedAPIKey: true,
	KeyEmbedBatchSize: true, KeyEmbedRPS: true, KeyEmbedTimeout: true,
	KeyLLMProvider: true, KeyLLMModel: true, KeyLLMBaseURL: true, KeyLLMAPIKey: true,
	KeyLLMTemperature: true, KeyLLMMaxTokens: true, KeyLLMTimeout: true,
	KeyStoreBackend: true, KeyPostgresDSN: true, KeyProcessors: true,
}

// Keys returns every recognised config key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves settings from the config file over the defaults.
// Invalid stored values fall back to the default.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Chunking: domain.ChunkingSettings{
			Thresholds: domain.Thresholds{
				Code:   s.getInt(KeyMinCode, d.Chunking.Thresholds.Code),
				Docs:   s.getInt(KeyMinDocs, d.Chunking.Thresholds.Docs),
				Config: s.getInt(KeyMinConfig, d.Chunking.Thresholds.Config),
			},
			TextChunkSize: s.getInt(KeyTextChunkSize, d.Chunking.TextChunkSize),
			TextOverlap:   s.getInt(KeyTextOverlap, d.Chunking.TextOverlap),
		},
		Index: domain.IndexSettings{
			NumWorkers:       s.getInt(KeyNumWorkers, d.Index.NumWorkers),
			Collection:       s.getString(KeyCollection, d.Index.Collection),
			ExtraExtensions:  s.configStore.GetStringSlice(KeyExtraExtensions),
			EnableExtractors: s.getBool(KeyEnableExtractors, d.Index.EnableExtractors),
			Keywords:         s.getInt(KeyKeywords, d.Index.Keywords),
		},
		Metadata: domain.MetadataSettings{
			RelativePaths:         s.getBool(KeyRelativePaths, d.Metadata.RelativePaths),
			IncludeCategorization: s.getBool(KeyCategorization, d.Metadata.IncludeCategorization),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(KeyEmbedProvider, d.Embedding.Provider),
			Model:             s.getString(KeyEmbedModel, d.Embedding.Model),
			BaseURL:           s.getString(KeyEmbedBaseURL, d.Embedding.BaseURL),
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			BatchSize:         s.getInt(KeyEmbedBatchSize, d.Embedding.BatchSize),
			RequestsPerSecond: s.getFloat(KeyEmbedRPS, d.Embedding.RequestsPerSecond),
			Timeout:           s.getDuration(KeyEmbedTimeout, d.Embedding.Timeout),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(KeyLLMProvider, d.LLM.Provider),
			Model:       s.getString(KeyLLMModel, d.LLM.Model),
			BaseURL:     s.getString(KeyLLMBaseURL, d.LLM.BaseURL),
			APIKey:      s.configStore.GetString(KeyLLMAPIKey),
			Temperature: s.getFloat(KeyLLMTemperature, d.LLM.Temperature),
			MaxTokens:   s.getInt(KeyLLMMaxTokens, d.LLM.MaxTokens),
			Timeout:     s.getDuration(KeyLLMTimeout, d.LLM.Timeout),
		},
		Store: domain.StoreSettings{
			Backend:     s.getBackend(d.Store.Backend),
			PostgresDSN: s.configStore.GetString(KeyPostgresDSN),
		},
	}

	return settings, nil
}

// Set stores a single config key.
func (s *SettingsService) Set(key string, value any) error {
	if !knownKeys[key] {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

type setting struct {
	key   string
	value any
}

// Save persists the provider settings.
// API keys are only written when non-empty.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []setting{
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, setting{KeyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" {
		values = append(values, setting{KeyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.Set(v.key, v.value); err != nil {
			return err
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrUnsupportedProvider, provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrUnsupportedProvider, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}
	if provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = domain.DefaultOllamaURL
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrUnsupportedProvider, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}
	if provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = domain.DefaultOllamaURL
	}

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateEmbeddingConfig validates the embedding configuration by pinging the provider.
// A nil settings validates the stored configuration.
func (s *SettingsService) ValidateEmbeddingConfig(settings *domain.Settings) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.orStored(settings)
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the LLM configuration by pinging the provider.
// A nil settings validates the stored configuration.
func (s *SettingsService) ValidateLLMConfig(settings *domain.Settings) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.orStored(settings)
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Processors returns the enrichment pipeline for settings.
// Nothing runs unless extractors are enabled; the processor list
// defaults to keywords and can be replaced with pipeline.processors.
func (s *SettingsService) Processors(settings *domain.Settings) ([]string, map[string]any) {
	if settings == nil || !settings.Index.EnableExtractors {
		return nil, nil
	}
	names := []string{"keywords"}
	if configured := s.configStore.GetStringSlice(KeyProcessors); len(configured) > 0 {
		names = configured
	}
	return names, map[string]any{"keywords": settings.Index.Keywords}
}

func (s *SettingsService) orStored(settings *domain.Settings) (*domain.Settings, error) {
	if settings != nil {
		return settings, nil
	}
	return s.Get()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	val := s.configStore.GetString(KeyStoreBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StoreBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
