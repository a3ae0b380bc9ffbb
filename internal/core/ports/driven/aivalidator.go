package driven

import "github.com/custodia-labs/fragmenter/internal/core/domain"

// AIConfigValidator validates AI provider configurations by connecting to them.
type AIConfigValidator interface {
	// ValidateEmbedding creates an embedding service from config and pings it.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM creates an LLM service from config and pings it.
	ValidateLLM(config *domain.LLMSettings) error
}
