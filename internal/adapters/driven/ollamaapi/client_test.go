package ollamaapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

type echo struct {
	Value string `json:"value"`
}

func TestNew_Defaults(t *testing.T) {
	assert.Equal(t, domain.DefaultOllamaURL, New("", time.Second).BaseURL())
	assert.Equal(t, "http://host:1", New("http://host:1/", time.Second).BaseURL())
}

func TestPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/thing", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in echo
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(echo{Value: in.Value + "!"})
	}))
	defer server.Close()

	var out echo
	require.NoError(t, New(server.URL, time.Second).Post(context.Background(), "/api/thing", echo{Value: "hi"}, &out))
	assert.Equal(t, "hi!", out.Value)
}

func TestPost_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantMsg: "status 500: boom"},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "busy", wantErr: domain.ErrRateLimited},
		{name: "bad json", status: http.StatusOK, body: "{", wantMsg: "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var out echo
			err := New(server.URL, time.Second).Post(context.Background(), "/x", echo{}, &out)
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

func TestPing(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	assert.NoError(t, client.Ping(context.Background()))

	status = http.StatusServiceUnavailable
	assert.ErrorContains(t, client.Ping(context.Background()), "status 503")

	err := New("http://127.0.0.1:1", time.Second).Ping(context.Background())
	assert.ErrorContains(t, err, "is ollama running")
}
