package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"

	// Document pipeline errors
	CodeExtraction           ErrorCode = "EXTRACTION_ERROR"
	CodeUnsupportedFormat    ErrorCode = "UNSUPPORTED_FORMAT"
	CodeNoExtractableContent ErrorCode = "NO_EXTRACTABLE_CONTENT"
	CodeNoQuestionsGenerated ErrorCode = "NO_QUESTIONS_GENERATED"

	// LLM transport errors
	CodeTransport   ErrorCode = "TRANSPORT_ERROR"
	CodeRateLimited ErrorCode = "RATE_LIMITED"
	CodeTimeout     ErrorCode = "TIMEOUT"

	// Quiz session errors
	CodeInvalidState ErrorCode = "INVALID_STATE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewValidationError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewInvalidStateError(message string) *DomainError {
	return NewError(CodeInvalidState, message, nil)
}

func NewQuestionNotFoundError(questionID string) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("question not found: %s", questionID), nil)
}

func NewExtractionError(filename string, err error) *DomainError {
	return NewError(CodeExtraction, fmt.Sprintf("failed to extract text from %s", filename), err)
}

func NewUnsupportedFormatError(filename string) *DomainError {
	return NewError(CodeUnsupportedFormat, fmt.Sprintf("unsupported document format: %s", filename), nil)
}

func NewTransportError(err error) *DomainError {
	return NewError(CodeTransport, "LLM transport failed", err)
}

func NewRateLimitError(err error) *DomainError {
	return NewError(CodeRateLimited, "LLM provider rate limit reached", err)
}

func NewTimeoutError(err error) *DomainError {
	return NewError(CodeTimeout, "LLM call timed out", err)
}

// IsCode reports whether err carries a DomainError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsRetryable reports whether a failed LLM call may be retried once.
func IsRetryable(err error) bool {
	return IsCode(err, CodeTransport) || IsCode(err, CodeRateLimited) || IsCode(err, CodeTimeout)
}
