// Package storage provides the SQLite persistence layer for feedback, learned
// keywords and the category catalog.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/finshare-ai/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrEmptySlice      = errors.New("slice cannot be empty")
	ErrInvalidFeedback = errors.New("invalid feedback record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateFeedback validates a single feedback record.
func validateFeedback(record *model.FeedbackRecord) error {
	if record == nil {
		return fmt.Errorf("%w: feedback", ErrNilParameter)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidFeedback)
	}
	if strings.TrimSpace(record.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidFeedback)
	}
	if strings.TrimSpace(record.MerchantText) == "" {
		return fmt.Errorf("%w: missing merchant text", ErrInvalidFeedback)
	}
	if record.CorrectedCategory == "" {
		return fmt.Errorf("%w: missing corrected category", ErrInvalidFeedback)
	}
	if record.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidFeedback)
	}
	return nil
}

// validateCategories validates a slice of categories.
func validateCategories(categories []model.Category) error {
	if categories == nil {
		return fmt.Errorf("%w: categories", ErrNilParameter)
	}
	if len(categories) == 0 {
		return fmt.Errorf("%w: categories", ErrEmptySlice)
	}
	for i, c := range categories {
		if strings.TrimSpace(string(c)) == "" {
			return fmt.Errorf("category at index %d: %w", i, ErrEmptyString)
		}
	}
	return nil
}
