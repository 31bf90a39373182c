// Package service defines the interfaces shared between the categorization
// core and its persistence backends.
package service

import (
	"context"

	"github.com/Veraticus/finshare-ai/internal/model"
)

// FeedbackRepository persists user corrections.
type FeedbackRepository interface {
	// Append stores the record and returns the user's total record count
	// including it. Appends for one user are applied in call order.
	Append(ctx context.Context, record model.FeedbackRecord) (int, error)
	// Examples returns every record for the user in insertion order.
	Examples(ctx context.Context, userID string) ([]model.FeedbackRecord, error)
}

// OverlayRepository persists the keywords learned for each user.
type OverlayRepository interface {
	SaveOverlayTokens(ctx context.Context, userID string, category model.Category, tokens []string) error
	LoadOverlays(ctx context.Context) (Overlays, error)
}

// CategoryRepository persists the category catalog.
type CategoryRepository interface {
	SaveCategories(ctx context.Context, categories []model.Category) error
	GetCategories(ctx context.Context) ([]model.Category, error)
}

// Overlays maps user → category → learned tokens.
type Overlays map[string]map[model.Category][]string

// Storage is a complete persistence backend.
type Storage interface {
	FeedbackRepository
	OverlayRepository
	CategoryRepository
	Close() error
}
