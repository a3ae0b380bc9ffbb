package ai

import (
	"context"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations by pinging them.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding creates an embedding service from config and pings it.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(context.Background(), config)
	if err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLM creates an LLM service from config and pings it.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateAndValidateLLMService(context.Background(), config)
	if err != nil {
		return err
	}
	return svc.Close()
}
