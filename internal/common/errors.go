// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Input errors, surfaced to callers as rejections.
	ErrInvalidInput        = errors.New("invalid input")
	ErrEmptyMerchantText   = errors.New("merchant text is required")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrInvalidTransactType = errors.New("invalid transaction type")

	// Personalization errors. These are logged, never returned to the caller of Record.
	ErrAdaptationFailed = errors.New("lexicon adaptation failed")

	// Generative collaborator errors.
	ErrLLMUnavailable    = errors.New("language model unavailable")
	ErrMalformedResponse = errors.New("malformed model response")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
