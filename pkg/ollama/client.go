// Package ollama provides a client for an Ollama backend speaking the
// OpenAI-compatible chat completions protocol.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/paul-stiebitz/entity-extract/internal/resilience"
)

const (
	defaultBaseURL = "http://localhost:11434/v1"
	defaultModel   = "granite3.3:8b"
)

// Client defines the completion operations used by the extraction engine.
type Client interface {
	// ChatCompletion blocks until the backend returns a complete response.
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)
	// ChatCompletionStream opens a token stream for the request. The returned
	// stream is finite and not restartable; abandoning it early requires Close.
	ChatCompletionStream(ctx context.Context, req ChatCompletionRequest) (*Stream, error)
}

// ChatCompletionRequest is the request body for POST /chat/completions.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// Message represents a single message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the response from POST /chat/completions.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is a single completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Text returns the content of the first choice, or "" when absent.
func (r *ChatCompletionResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default backend base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		c.model = model
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit throttles outgoing requests to rps requests per second.
// Zero or negative disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Ollama chat completions client. The apiKey is an
// opaque bearer token; Ollama accepts any non-empty value.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// wait blocks until the rate limiter allows one request, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) send(ctx context.Context, req ChatCompletionRequest) (*http.Response, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ollama: rate limit wait")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "ollama: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "ollama: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "ollama: send request")
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		statusErr := eris.Errorf("ollama: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	return resp, nil
}

func (c *httpClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	req.Stream = false

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ollama: read response")
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "ollama: unmarshal response")
	}

	return &result, nil
}

func (c *httpClient) ChatCompletionStream(ctx context.Context, req ChatCompletionRequest) (*Stream, error) {
	req.Stream = true

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	return newStream(resp.Body), nil
}
