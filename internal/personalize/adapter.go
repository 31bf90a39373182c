// Package personalize turns a user's category corrections into extra keywords
// in that user's lexicon overlay.
package personalize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finshare-ai/internal/common"
	"github.com/Veraticus/finshare-ai/internal/lexicon"
	"github.com/Veraticus/finshare-ai/internal/metrics"
	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/Veraticus/finshare-ai/internal/service"
)

// Adapter updates user overlays from feedback history. Runs for the same user
// are serialized; different users adapt concurrently.
type Adapter struct {
	feedback service.FeedbackRepository
	overlays service.OverlayRepository
	lexicon  *lexicon.Lexicon
	overlay  *lexicon.Overlay
	logger   *slog.Logger
	locks    *userLocks
	maxNew   int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithOverlayRepository persists learned tokens.
func WithOverlayRepository(repo service.OverlayRepository) Option {
	return func(a *Adapter) { a.overlays = repo }
}

// WithMaxNewTokens caps the tokens learned per category per run.
func WithMaxNewTokens(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxNew = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter creates an adapter writing into overlay.
func NewAdapter(feedback service.FeedbackRepository, lex *lexicon.Lexicon, overlay *lexicon.Overlay, opts ...Option) *Adapter {
	a := &Adapter{
		feedback: feedback,
		lexicon:  lex,
		overlay:  overlay,
		logger:   slog.Default(),
		locks:    newUserLocks(),
		maxNew:   DefaultMaxNewTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Adapt recomputes the user's learned tokens from their full history and adds
// them to the overlay. Tokens already present are left alone.
func (a *Adapter) Adapt(ctx context.Context, userID string) error {
	release := a.locks.lock(userID)
	defer release()

	records, err := a.feedback.Examples(ctx, userID)
	if err != nil {
		metrics.AdaptationsTotal.WithLabelValues(metrics.ResultFailed).Inc()
		return fmt.Errorf("%w: loading examples for %s: %w", common.ErrAdaptationFailed, userID, err)
	}

	learned := Learn(records, a.lexicon, a.maxNew)

	added := 0
	for _, category := range a.lexicon.Categories() {
		tokens, ok := learned[category]
		if !ok {
			continue
		}
		n := a.overlay.Add(userID, category, tokens...)
		added += n

		if a.overlays != nil && n > 0 {
			if err := a.overlays.SaveOverlayTokens(ctx, userID, category, tokens); err != nil {
				metrics.AdaptationsTotal.WithLabelValues(metrics.ResultFailed).Inc()
				return fmt.Errorf("%w: persisting overlay for %s: %w", common.ErrAdaptationFailed, userID, err)
			}
		}
	}

	for category := range learned {
		if !a.lexicon.Has(category) {
			a.logger.Debug("skipping category outside lexicon", "user_id", userID, "category", category)
		}
	}

	result := metrics.ResultNoop
	if added > 0 {
		result = metrics.ResultApplied
		metrics.OverlayTokensLearned.Add(float64(added))
	}
	metrics.AdaptationsTotal.WithLabelValues(result).Inc()

	a.logger.Info("adapted lexicon",
		"user_id", userID,
		"examples", len(records),
		"tokens_added", added)
	return nil
}

// Warm loads persisted overlays into memory. It is a no-op without an
// overlay repository.
func (a *Adapter) Warm(ctx context.Context) (int, error) {
	if a.overlays == nil {
		return 0, nil
	}

	stored, err := a.overlays.LoadOverlays(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load overlays: %w", err)
	}

	loaded := 0
	for userID, categories := range stored {
		for category, tokens := range categories {
			loaded += a.overlay.Add(userID, category, tokens...)
		}
	}

	a.logger.Info("warmed overlays", "users", len(stored), "tokens", loaded)
	return loaded, nil
}

// Overlay returns the learned tokens for one user.
func (a *Adapter) Overlay(userID string) map[model.Category][]string {
	return a.overlay.Snapshot(userID)
}
