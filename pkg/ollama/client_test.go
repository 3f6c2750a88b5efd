package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paul-stiebitz/entity-extract/internal/resilience"
)

func TestChatCompletion(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantErr       string
		wantTransient bool
		wantText      string
		wantTokens    int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"id": "cmpl-123",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"Person\": [\"Alice\"]}"}}],
				"usage": {"prompt_tokens": 42, "completion_tokens": 9}
			}`,
			wantText:   `{"Person": ["Alice"]}`,
			wantTokens: 9,
		},
		{
			name:          "rate_limit",
			status:        http.StatusTooManyRequests,
			body:          `{"error": "rate limit exceeded"}`,
			wantErr:       "unexpected status 429",
			wantTransient: true,
		},
		{
			name:          "server_error",
			status:        http.StatusInternalServerError,
			body:          `{"error": "internal server error"}`,
			wantErr:       "unexpected status 500",
			wantTransient: true,
		},
		{
			name:    "not_found",
			status:  http.StatusNotFound,
			body:    `{"error": "model not found"}`,
			wantErr: "unexpected status 404",
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer ollama", r.Header.Get("Authorization"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("ollama", WithBaseURL(srv.URL))

			resp, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
				Messages: []Message{{Role: "user", Content: "Hi"}},
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, resp)
				assert.Equal(t, tt.wantTransient, resilience.IsTransient(err))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, "cmpl-123", resp.ID)
			assert.Equal(t, tt.wantText, resp.Text())
			assert.Equal(t, tt.wantTokens, resp.Usage.CompletionTokens)
		})
	}
}

func TestChatCompletion_NoRetryInTransport(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("ollama", WithBaseURL(srv.URL))
	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "Hi"}},
	})
	require.Error(t, err)
	// Retry policy lives in the extractor; the transport makes exactly one call.
	assert.Equal(t, 1, calls)

	var te *resilience.TransientError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
}

func TestDefaultModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "granite3.3:8b", req.Model)
		assert.False(t, req.Stream)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}],"usage":{}}`))
	}))
	defer srv.Close()

	client := NewClient("ollama", WithBaseURL(srv.URL))
	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "test"}},
	})
	require.NoError(t, err)
}

func TestWithModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "llama3.2:3b", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}],"usage":{}}`))
	}))
	defer srv.Close()

	client := NewClient("ollama", WithBaseURL(srv.URL), WithModel("llama3.2:3b"))
	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "test"}},
	})
	require.NoError(t, err)
}

func TestMaxTokensSerialization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		err := json.NewDecoder(r.Body).Decode(&raw)
		require.NoError(t, err)
		assert.Equal(t, float64(512), raw["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[],"usage":{}}`))
	}))
	defer srv.Close()

	maxTokens := 512
	client := NewClient("ollama", WithBaseURL(srv.URL))
	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages:  []Message{{Role: "user", Content: "test"}},
		MaxTokens: &maxTokens,
	})
	require.NoError(t, err)
}

func TestChatCompletion_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("ollama", WithBaseURL(srv.URL))
	_, err := client.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []Message{{Role: "user", Content: "test"}},
	})
	require.Error(t, err)
}
