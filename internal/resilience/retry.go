package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls retry behavior with exponential backoff and jitter.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts (including the first try).
	// A value of 1 means no retries. Default: 3.
	MaxAttempts int

	// InitialBackoff is the base delay before the first retry. Default: 500ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff duration. Default: 30s.
	MaxBackoff time.Duration

	// Multiplier scales the backoff after each attempt. Default: 2.0.
	Multiplier float64

	// JitterFraction adds random jitter as a fraction of the computed delay
	// (0.0 = no jitter, 0.5 = ±50%).
	JitterFraction float64

	// AttemptTimeout bounds each individual attempt via a derived context.
	// Zero means no per-attempt bound beyond the caller's context.
	AttemptTimeout time.Duration

	// ShouldRetry optionally overrides the default transient-error check.
	// If nil, IsTransient is used.
	ShouldRetry func(err error) bool

	// OnAttempt is called after every attempt, successful or not, with the
	// 1-based attempt number, its wall-clock duration, and its error (nil on
	// success). Callers use it to accumulate a diagnostic attempt trail.
	OnAttempt func(attempt int, elapsed time.Duration, err error)
}

// DoVal executes fn with retry logic according to cfg, preserving the value
// from the successful attempt. Only errors deemed transient (via ShouldRetry
// or the default IsTransient check) are retried. Context cancellation stops
// retries immediately; the last attempt's error is returned on exhaustion.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if cfg.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.AttemptTimeout)
		}

		start := time.Now()
		val, err := fn(attemptCtx)
		elapsed := time.Since(start)
		cancel()

		if cfg.OnAttempt != nil {
			cfg.OnAttempt(attempt+1, elapsed, err)
		}
		if err == nil {
			return val, nil
		}
		lastErr = err

		// Don't retry once the caller's context is gone.
		if ctx.Err() != nil {
			return zero, lastErr
		}

		if !shouldRetry(lastErr) {
			return zero, lastErr
		}

		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		delay := computeBackoff(attempt, cfg)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.JitterFraction < 0 {
		cfg.JitterFraction = 0
	}
	return cfg
}

func computeBackoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	if delay > float64(cfg.MaxBackoff) {
		delay = float64(cfg.MaxBackoff)
	}

	// Apply jitter: ±JitterFraction of delay.
	if cfg.JitterFraction > 0 {
		jitterRange := delay * cfg.JitterFraction
		delay += (rand.Float64()*2 - 1) * jitterRange
	}

	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// RetryLogger returns an OnAttempt callback that logs failed attempts.
func RetryLogger(service, operation string) func(int, time.Duration, error) {
	return func(attempt int, elapsed time.Duration, err error) {
		if err == nil {
			return
		}
		zap.L().Warn("attempt failed",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}
}
