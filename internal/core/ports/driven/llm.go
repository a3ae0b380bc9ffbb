package driven

import "context"

// LLMService answers questions over retrieved chunks and, when keyword
// extraction is enabled, labels chunks during indexing. Indexing works
// without one.
type LLMService interface {
	// Generate sends a single prompt and returns the completion text.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat sends an ordered conversation. The system prompt in opts, if any,
	// goes ahead of messages.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// GenerateOptions tunes a single completion. Zero values leave the
// provider default in place.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// ChatMessage is one turn; Role is "system", "user" or "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a chat call.
type ChatOptions struct {
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
}
