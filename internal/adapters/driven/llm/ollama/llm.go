// Package ollama answers prompts with a local Ollama model over /api/chat.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = domain.DefaultOllamaURL
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 600 * time.Second
)

// LLMConfig configures the service; zero values select the defaults.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService is an LLM port backed by a non-streaming chat call.
type LLMService struct {
	api   *ollamaapi.Client
	model string
}

type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// NewLLMService needs no credentials, so it cannot fail.
func NewLLMService(cfg LLMConfig) *LLMService {
	model := cfg.Model
	if model == "" {
		model = DefaultLLMModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultLLMTimeout
	}
	return &LLMService{api: ollamaapi.New(cfg.BaseURL, timeout), model: model}
}

// Generate sends prompt as a single user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.chat(ctx, chatRequest{
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Options:  &options{NumPredict: opts.MaxTokens, Temperature: &opts.Temperature, Stop: opts.StopWords},
	})
}

// Chat forwards the conversation, led by opts.SystemPrompt when set.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := chatRequest{
		Messages: make([]chatMessage, 0, len(messages)+1),
		Options:  &options{NumPredict: opts.MaxTokens, Temperature: &opts.Temperature},
	}
	if opts.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}
	return s.chat(ctx, req)
}

func (s *LLMService) chat(ctx context.Context, req chatRequest) (string, error) {
	req.Model = s.model

	var resp chatResponse
	if err := s.api.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama: %s", resp.Error)
	}
	return resp.Message.Content, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks that the server answers.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx)
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
