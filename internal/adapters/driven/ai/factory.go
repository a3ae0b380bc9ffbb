// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/fragmenter/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/fragmenter/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/fragmenter/internal/adapters/driven/embedding/throttle"
	anthropicllm "github.com/custodia-labs/fragmenter/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/fragmenter/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/fragmenter/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to configuration errors.
const fixHint = "run 'fragmenter settings' or set the environment variables in .env"

// InitResult contains the result of AI service initialisation.
// A nil service comes with its error set.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	EmbeddingErr     error
	LLMErr           error
}

// Init creates both services from settings. When validate is set each
// service is pinged and dropped if unreachable.
func Init(ctx context.Context, settings *domain.Settings, validate bool) *InitResult {
	result := &InitResult{}
	if settings == nil {
		result.EmbeddingErr = fmt.Errorf("%w: no settings", domain.ErrEmbeddingUnavailable)
		result.LLMErr = fmt.Errorf("%w: no settings", domain.ErrLLMUnavailable)
		return result
	}

	if validate {
		result.EmbeddingService, result.EmbeddingErr = CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
		result.LLMService, result.LLMErr = CreateAndValidateLLMService(ctx, &settings.LLM)
		return result
	}

	svc, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.EmbeddingErr = fmt.Errorf("%w: %w; %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	result.EmbeddingService = svc

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		result.LLMErr = fmt.Errorf("%w: %w; %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	result.LLMService = llm
	return result
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() error {
	var errs []error
	if r.EmbeddingService != nil {
		errs = append(errs, r.EmbeddingService.Close())
	}
	if r.LLMService != nil {
		errs = append(errs, r.LLMService.Close())
	}
	return errors.Join(errs...)
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w; %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w); %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w; %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w); %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service named by settings.
// Settings that fail validation return the validation error.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings", domain.ErrConfigMissing)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	case domain.AIProviderOpenAI:
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: openAIBaseURL(settings.BaseURL),
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	default:
		err = fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if settings.RequestsPerSecond > 0 {
		svc = throttle.Wrap(svc, throttle.Config{RequestsPerSecond: settings.RequestsPerSecond})
	}
	return svc, nil
}

// CreateLLMService creates the LLM service named by settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: LLM settings", domain.ErrConfigMissing)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: openAIBaseURL(settings.BaseURL),
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, settings.Provider)
	}
}

// GenerateOptions returns the generation options configured for answers.
func GenerateOptions(settings *domain.LLMSettings) driven.GenerateOptions {
	if settings == nil {
		return driven.GenerateOptions{}
	}
	return driven.GenerateOptions{
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}
}

// openAIBaseURL drops the Ollama default that the shared base_url key carries.
func openAIBaseURL(baseURL string) string {
	if baseURL == domain.DefaultOllamaURL {
		return ""
	}
	return baseURL
}
