package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry (e.g., 429, 5xx,
// network timeout, or a malformed model response worth one more attempt).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or if it matches common transient error patterns (network
// timeouts, connection resets, DNS failures).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
		"context deadline exceeded",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// transient server-side issue that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}

// IsTimeout reports whether the error chain indicates a deadline or network
// timeout, as opposed to some other transport failure.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "i/o timeout")
}
