package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/paul-stiebitz/entity-extract/internal/model"
	"github.com/paul-stiebitz/entity-extract/internal/resilience"
	"github.com/paul-stiebitz/entity-extract/pkg/ollama"
)

// ErrMalformedOutput marks model responses that failed JSON validation.
// Malformed output is treated as a transient attempt failure and shares the
// transport retry budget.
var ErrMalformedOutput = errors.New("malformed model output")

// Config controls one extractor's model and retry policy.
type Config struct {
	// Model is the backend model identifier.
	Model string
	// MaxTokens caps the completion length. Zero means backend default.
	MaxTokens int
	// MaxRetries is the total attempt budget per document (default 3).
	MaxRetries int
	// Timeout bounds each individual attempt, not the document total.
	Timeout time.Duration
}

// Extractor runs the full single-document pipeline: prompt build, model call
// in the requested mode, JSON parse and shape validation, failure
// classification. It is safe for concurrent use.
type Extractor struct {
	client ollama.Client
	cfg    Config
}

// New creates an Extractor over the given model client.
func New(client ollama.Client, cfg Config) *Extractor {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Extractor{client: client, cfg: cfg}
}

// Stream opens a raw token stream for one document, for consumers that render
// output incrementally. No retry or validation is applied; callers wanting the
// validated result use Extract with ModeStream.
func (e *Extractor) Stream(ctx context.Context, doc model.Document, set model.EntityTypeSet) (*ollama.Stream, error) {
	system, user, err := BuildPrompt(doc, set)
	if err != nil {
		return nil, err
	}
	return e.client.ChatCompletionStream(ctx, e.request(system, user))
}

// Extract runs one document through the pipeline and returns its terminal
// result. The only error return is an InvalidInputError precondition
// violation; every other failure is embedded in the result so a batch slot is
// always occupied.
func (e *Extractor) Extract(ctx context.Context, doc model.Document, set model.EntityTypeSet, mode model.Mode) (model.ExtractionResult, error) {
	system, user, err := BuildPrompt(doc, set)
	if err != nil {
		return model.ExtractionResult{}, err
	}

	start := time.Now()
	result := model.ExtractionResult{Index: doc.Index}

	var mu sync.Mutex
	var gotResponse bool

	entities, err := resilience.DoVal(ctx, resilience.RetryConfig{
		MaxAttempts:    e.cfg.MaxRetries,
		AttemptTimeout: e.cfg.Timeout,
		OnAttempt: func(attempt int, elapsed time.Duration, attemptErr error) {
			mu.Lock()
			result.Attempts = append(result.Attempts, model.Attempt{
				Seq:     attempt,
				Outcome: classifyAttempt(attemptErr),
				Elapsed: elapsed,
				Error:   errString(attemptErr),
			})
			mu.Unlock()
			if attemptErr != nil {
				zap.L().Warn("extraction attempt failed",
					zap.Int("doc_index", doc.Index),
					zap.Int("attempt", attempt),
					zap.Duration("elapsed", elapsed),
					zap.Error(attemptErr),
				)
			}
		},
	}, func(attemptCtx context.Context) (map[string][]string, error) {
		text, err := e.complete(attemptCtx, system, user, mode)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		gotResponse = true
		mu.Unlock()

		parsed, err := ParseEntities(text, set)
		if err != nil {
			// Worth another attempt: model unreliability is transient.
			return nil, resilience.NewTransientError(fmt.Errorf("%w: %v", ErrMalformedOutput, err), 0)
		}
		return parsed, nil
	})

	result.Elapsed = time.Since(start)

	if err != nil {
		kind, reason := classifyTerminal(ctx, err, gotResponse)
		result.Failure = kind
		result.Reason = reason
		return result, nil
	}

	result.Entities = entities
	return result, nil
}

// complete invokes the model client in the requested mode and returns the
// full response text, concatenating streamed tokens in emission order.
func (e *Extractor) complete(ctx context.Context, system, user string, mode model.Mode) (string, error) {
	req := e.request(system, user)

	if mode == model.ModeStream {
		stream, err := e.client.ChatCompletionStream(ctx, req)
		if err != nil {
			return "", err
		}
		return stream.Collect()
	}

	resp, err := e.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (e *Extractor) request(system, user string) ollama.ChatCompletionRequest {
	req := ollama.ChatCompletionRequest{
		Model: e.cfg.Model,
		Messages: []ollama.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if e.cfg.MaxTokens > 0 {
		mt := e.cfg.MaxTokens
		req.MaxTokens = &mt
	}
	return req
}

// classifyAttempt maps one attempt's error to its diagnostic outcome.
func classifyAttempt(err error) model.AttemptOutcome {
	switch {
	case err == nil:
		return model.AttemptSuccess
	case errors.Is(err, ErrMalformedOutput):
		return model.AttemptParse
	case resilience.IsTimeout(err):
		return model.AttemptTimeout
	default:
		return model.AttemptTransport
	}
}

// classifyTerminal maps the final error after retry exhaustion to the
// result's failure kind.
func classifyTerminal(ctx context.Context, err error, gotResponse bool) (model.FailureKind, string) {
	switch {
	case ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled):
		return model.FailureCancelled, "run cancelled before document completed"
	case !gotResponse:
		return model.FailureModelUnavailable, err.Error()
	default:
		return model.FailureExtractionFailed, err.Error()
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
