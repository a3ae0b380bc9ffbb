package driving

import "github.com/custodia-labs/fragmenter/internal/core/domain"

// SettingsService manages settings stored in the config file.
type SettingsService interface {
	// Get returns the config file settings over the defaults.
	Get() (*domain.Settings, error)

	// Set stores a single dotted config key.
	Set(key string, value any) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig(settings *domain.Settings) error

	// ValidateLLMConfig pings the configured LLM provider.
	ValidateLLMConfig(settings *domain.Settings) error

	// Processors returns the enrichment processor names and their config.
	Processors(settings *domain.Settings) ([]string, map[string]any)
}
