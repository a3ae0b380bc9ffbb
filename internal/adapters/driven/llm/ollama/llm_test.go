package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
)

func TestGenerate_UsesChatEndpoint(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"pong"},"done":true}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "mistral"})
	out, err := svc.Generate(context.Background(), "ping", driven.GenerateOptions{MaxTokens: 5, StopWords: []string{"."}})
	require.NoError(t, err)
	assert.Equal(t, "pong", out)

	assert.Equal(t, "mistral", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.NotNil(t, got.Options)
	assert.Equal(t, 5, got.Options.NumPredict)
	assert.Equal(t, []string{"."}, got.Options.Stop)
	require.NotNil(t, got.Options.Temperature)
	assert.Zero(t, *got.Options.Temperature)
}

func TestChat_SystemPrompt(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}},
		driven.ChatOptions{SystemPrompt: "sys"})
	require.NoError(t, err)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "error field", status: http.StatusOK, body: `{"error":"model missing"}`, wantMsg: "model missing"},
		{name: "not found", status: http.StatusNotFound, body: `nope`, wantMsg: "status 404"},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `busy`, wantErr: domain.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Generate(context.Background(), "q", driven.GenerateOptions{})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.api.BaseURL())
	assert.NoError(t, svc.Close())
}
