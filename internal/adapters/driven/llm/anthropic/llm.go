// Package anthropic answers prompts through the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 600 * time.Second
	DefaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
	maxErrorBody     = 4096
)

// Config configures the service. APIKey is required; zero values elsewhere
// select the defaults above.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService is an LLM port backed by /v1/messages.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	StopSeqs    []string          `json:"stop_sequences,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Error      *apiError      `json:"error,omitempty"`
}

// NewLLMService returns ErrConfigMissing when no API key is set.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is required for provider anthropic", domain.ErrConfigMissing)
	}

	svc := &LLMService{
		client:  &http.Client{Timeout: DefaultTimeout},
		baseURL: DefaultBaseURL,
		apiKey:  cfg.APIKey,
		model:   DefaultModel,
	}
	if cfg.BaseURL != "" {
		svc.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Model != "" {
		svc.model = cfg.Model
	}
	if cfg.Timeout > 0 {
		svc.client.Timeout = cfg.Timeout
	}
	return svc, nil
}

// Generate sends prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.newRequest(opts.MaxTokens, opts.Temperature)
	req.Messages = []messagesMessage{{Role: "user", Content: prompt}}
	req.StopSeqs = opts.StopWords
	return s.send(ctx, req)
}

// Chat sends the conversation. The API has no system role, so system
// turns and opts.SystemPrompt are joined into the top-level system field.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := s.newRequest(opts.MaxTokens, opts.Temperature)

	var system []string
	if opts.SystemPrompt != "" {
		system = append(system, opts.SystemPrompt)
	}
	for _, msg := range messages {
		if msg.Role == "system" {
			system = append(system, msg.Content)
			continue
		}
		req.Messages = append(req.Messages, messagesMessage{Role: msg.Role, Content: msg.Content})
	}
	req.System = strings.Join(system, "\n\n")

	return s.send(ctx, req)
}

// newRequest fills the fields every call shares. max_tokens is mandatory.
func (s *LLMService) newRequest(maxTokens int, temperature float64) messagesRequest {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return messagesRequest{
		Model:       s.model,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}
}

func (s *LLMService) send(ctx context.Context, body messagesRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	status, raw, err := s.do(ctx, http.MethodPost, "/v1/messages", payload)
	if err != nil {
		return "", err
	}
	if status == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: anthropic: %s", domain.ErrRateLimited, raw)
	}

	var resp messagesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("anthropic error (status %d): %s", status, raw)
	}
	switch {
	case resp.Error != nil:
		return "", fmt.Errorf("anthropic error: %s", resp.Error.Message)
	case status != http.StatusOK:
		return "", fmt.Errorf("anthropic error (status %d): %s", status, raw)
	case len(resp.Content) == 0:
		return "", errors.New("anthropic: no response content returned")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

// do performs an authenticated request and returns the status with the
// response body. Transport failures are reported as ErrLLMUnavailable.
func (s *LLMService) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: anthropic: %w", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	status, raw, err := s.do(ctx, http.MethodGet, "/v1/models", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return fmt.Errorf("anthropic: API returned status %d: %s", status, raw)
	}
	return nil
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
