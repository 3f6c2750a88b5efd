package model

import (
	"errors"
	"time"
)

// FailureKind classifies a document's terminal failure. Empty means success.
type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureInvalidInput     FailureKind = "invalid_input"
	FailureTimeout          FailureKind = "timeout"
	FailureTransport        FailureKind = "transport_failure"
	FailureMalformedOutput  FailureKind = "malformed_output"
	FailureModelUnavailable FailureKind = "model_unavailable"
	FailureExtractionFailed FailureKind = "extraction_failed"
	FailureCancelled        FailureKind = "cancelled"
)

// InvalidInputError marks a caller precondition violation, as opposed to a
// runtime failure of the model or transport.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Msg
}

// NewInvalidInput creates an InvalidInputError with the given message.
func NewInvalidInput(msg string) *InvalidInputError {
	return &InvalidInputError{Msg: msg}
}

// IsInvalidInput reports whether the error chain contains an InvalidInputError.
func IsInvalidInput(err error) bool {
	var iie *InvalidInputError
	return errors.As(err, &iie)
}

// AttemptOutcome classifies one extraction attempt.
type AttemptOutcome string

const (
	AttemptSuccess   AttemptOutcome = "success"
	AttemptTimeout   AttemptOutcome = "timeout"
	AttemptTransport AttemptOutcome = "transport_error"
	AttemptParse     AttemptOutcome = "parse_error"
)

// Attempt records one extraction attempt for diagnostics.
type Attempt struct {
	// Seq is the 1-based attempt number.
	Seq     int            `json:"seq"`
	Outcome AttemptOutcome `json:"outcome"`
	Elapsed time.Duration  `json:"elapsed"`
	// Error is the attempt's error text, empty on success.
	Error string `json:"error,omitempty"`
}

// ExtractionResult is one document's terminal outcome. Exactly one of
// Entities (success) or Failure+Reason (failure) is meaningful.
type ExtractionResult struct {
	Index    int                 `json:"index"`
	Entities map[string][]string `json:"entities,omitempty"`
	Failure  FailureKind         `json:"failure,omitempty"`
	Reason   string              `json:"reason,omitempty"`
	Attempts []Attempt           `json:"attempts,omitempty"`
	// Elapsed is the document's total wall-clock time across all attempts.
	Elapsed time.Duration `json:"elapsed"`
}

// OK reports whether the document extracted successfully.
func (r ExtractionResult) OK() bool {
	return r.Failure == FailureNone
}
