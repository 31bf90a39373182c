// Package feedback records user corrections and triggers lexicon adaptation
// when a user's history reaches a batch boundary.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/finshare-ai/internal/common"
	"github.com/Veraticus/finshare-ai/internal/metrics"
	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/Veraticus/finshare-ai/internal/service"
	"github.com/google/uuid"
)

// Defaults for adaptation triggering.
const (
	DefaultBatchSize   = 10
	DefaultMinExamples = 5
)

// Adapter folds a user's feedback history into their personal overlay.
type Adapter interface {
	Adapt(ctx context.Context, userID string) error
}

// Catalog reports whether a category label is known.
type Catalog interface {
	Contains(category model.Category) bool
}

// Config controls when adaptation runs.
type Config struct {
	BatchSize   int
	MinExamples int
}

// Receipt describes the outcome of recording one correction.
type Receipt struct {
	ID    string
	Count int
	// Adapted is true when the record landed on a batch boundary and the
	// adapter was invoked.
	Adapted bool
}

// Store validates and persists corrections.
type Store struct {
	repo    service.FeedbackRepository
	adapter Adapter
	catalog Catalog
	logger  *slog.Logger
	now     func() time.Time
	cfg     Config
}

// Option configures a Store.
type Option func(*Store)

// WithAdapter sets the adapter invoked on batch boundaries.
func WithAdapter(a Adapter) Option {
	return func(s *Store) { s.adapter = a }
}

// WithCatalog restricts corrected categories to the catalog.
func WithCatalog(c Catalog) Option {
	return func(s *Store) { s.catalog = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a feedback store. Non-positive config values fall back to
// the defaults.
func NewStore(repo service.FeedbackRepository, cfg Config, opts ...Option) *Store {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MinExamples <= 0 {
		cfg.MinExamples = DefaultMinExamples
	}

	s := &Store{
		repo:   repo,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends a correction. When the user's record count hits a batch
// boundary the adapter runs before Record returns; its failures are logged
// and never surface to the caller.
func (s *Store) Record(ctx context.Context, record model.FeedbackRecord) (Receipt, error) {
	record.UserID = strings.TrimSpace(record.UserID)
	record.MerchantText = strings.TrimSpace(record.MerchantText)

	if err := s.validate(record); err != nil {
		return Receipt{}, err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = s.now().UTC()
	}

	count, err := s.repo.Append(ctx, record)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to append feedback: %w", err)
	}
	metrics.FeedbackRecorded.Inc()

	s.logger.Info("recorded feedback",
		"user_id", record.UserID,
		"merchant_text", record.MerchantText,
		"predicted", record.PredictedCategory,
		"corrected", record.CorrectedCategory,
		"count", count)

	receipt := Receipt{ID: record.ID, Count: count}
	if !s.shouldAdapt(count) {
		return receipt, nil
	}

	receipt.Adapted = true
	if err := s.adapter.Adapt(ctx, record.UserID); err != nil {
		common.LogError(s.logger, err, "lexicon adaptation failed", common.Fields{
			"user_id": record.UserID,
			"count":   count,
		})
	}
	return receipt, nil
}

// Examples returns a user's corrections in insertion order.
func (s *Store) Examples(ctx context.Context, userID string) ([]model.FeedbackRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", common.ErrInvalidInput)
	}
	return s.repo.Examples(ctx, userID)
}

func (s *Store) shouldAdapt(count int) bool {
	return s.adapter != nil && count%s.cfg.BatchSize == 0 && count >= s.cfg.MinExamples
}

func (s *Store) validate(record model.FeedbackRecord) error {
	if record.UserID == "" {
		return fmt.Errorf("%w: user ID is required", common.ErrInvalidInput)
	}
	if record.MerchantText == "" {
		return common.ErrEmptyMerchantText
	}
	if record.CorrectedCategory == "" {
		return fmt.Errorf("%w: corrected category is required", common.ErrInvalidInput)
	}
	if s.catalog != nil && !s.catalog.Contains(record.CorrectedCategory) {
		return fmt.Errorf("%w: %q", common.ErrUnknownCategory, record.CorrectedCategory)
	}
	return nil
}
