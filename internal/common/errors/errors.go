// Package errors provides the standardized error taxonomy for the NLU pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeClassifierUnavailable ErrorCode = "CLASSIFIER_UNAVAILABLE"
	ErrCodeClassifierTimeout     ErrorCode = "CLASSIFIER_TIMEOUT"

	ErrCodeNERUnavailable ErrorCode = "NER_UNAVAILABLE"
	ErrCodeNERTimeout     ErrorCode = "NER_TIMEOUT"

	ErrCodeLLMTimeout     ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMCallFailed  ErrorCode = "LLM_CALL_FAILED"
	ErrCodeLLMParseFailed ErrorCode = "LLM_PARSE_FAILED"

	// ErrCodeExtractionUnavailable is the one exhaustion case: neither NER
	// nor an LLM extractor is configured, so there is no data to degrade to.
	ErrCodeExtractionUnavailable ErrorCode = "EXTRACTION_UNAVAILABLE"

	ErrCodeSearchFailed  ErrorCode = "SEARCH_FAILED"
	ErrCodeSearchTimeout ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeIntentStoreFailed ErrorCode = "INTENT_STORE_FAILED"
	ErrCodeIntentNotFound    ErrorCode = "INTENT_NOT_FOUND"
	ErrCodeDuplicateIntent   ErrorCode = "DUPLICATE_INTENT"

	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// New creates a StandardError with the given code and message.
func New(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionUnavailableError marks the configuration/exhaustion failure
// that extraction is allowed to propagate.
func NewExtractionUnavailableError(details string) *StandardError {
	return New(ErrCodeExtractionUnavailable, "no extraction service available", details, false)
}

// NewIntentNotFoundError is returned by intent CRUD when the name is unknown.
func NewIntentNotFoundError(name string) *StandardError {
	return New(ErrCodeIntentNotFound, "intent definition not found", name, false)
}

// NewDuplicateIntentError is returned when creating an intent whose name exists.
func NewDuplicateIntentError(name string) *StandardError {
	return New(ErrCodeDuplicateIntent, "intent definition already exists", name, false)
}

// IsCode reports whether err is a StandardError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}
