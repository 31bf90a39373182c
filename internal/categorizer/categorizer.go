// Package categorizer assigns a spending category to free-form merchant text
// by scoring it against the keyword lexicon.
package categorizer

import (
	"strings"

	"github.com/Veraticus/finshare-ai/internal/lexicon"
	"github.com/Veraticus/finshare-ai/internal/model"
)

// Scoring weights for a single keyword hit.
const (
	ExactMatchScore    = 1.0
	TokenMatchScore    = 0.8
	SubstringScore     = 0.7
	AlternativeScore   = 0.5
	FallbackConfidence = 0.3

	// AmbiguityThreshold is the score above which a category counts as a
	// plausible match for damping purposes.
	AmbiguityThreshold = 0.5
	AmbiguityDamping   = 0.8

	DefaultAlternatives = 3
)

// Request is a single categorization query.
type Request struct {
	Amount          *float64
	MerchantText    string
	TransactionType model.TransactionType
	UserID          string
}

// Categorizer scores merchant text against the base lexicon plus the caller's
// personal overlay. It holds no per-request state and is safe for concurrent use.
type Categorizer struct {
	lexicon      *lexicon.Lexicon
	overlay      *lexicon.Overlay
	alternatives int
}

// Option configures a Categorizer.
type Option func(*Categorizer)

// WithAlternatives sets how many alternative categories are suggested.
func WithAlternatives(k int) Option {
	return func(c *Categorizer) {
		if k >= 0 {
			c.alternatives = k
		}
	}
}

// New creates a categorizer. A nil overlay disables personalization.
func New(lex *lexicon.Lexicon, overlay *lexicon.Overlay, opts ...Option) *Categorizer {
	c := &Categorizer{
		lexicon:      lex,
		overlay:      overlay,
		alternatives: DefaultAlternatives,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready reports whether the lexicon has been loaded.
func (c *Categorizer) Ready() bool {
	return c != nil && c.lexicon != nil && c.lexicon.Loaded()
}

// Categorize returns the best category for the request. It never fails:
// empty or unmatched text yields Other with fallback confidence.
func (c *Categorizer) Categorize(req Request) model.CategorizationResult {
	fallback := model.CategorizationResult{
		Category:     model.CategoryOther,
		Confidence:   FallbackConfidence,
		Alternatives: []model.Category{},
	}
	if !c.Ready() {
		return fallback
	}

	text := newMerchantText(req.MerchantText)
	if text.normalized == "" {
		return fallback
	}

	entries := c.lexicon.Effective(c.overlay, req.UserID)
	scores := scoreEntries(entries, text)

	best := scores.Top()
	if best == nil {
		return fallback
	}

	confidence := best.Score
	if confidence > 1.0 {
		confidence = 1.0
	}
	if len(scores.AboveThreshold(AmbiguityThreshold)) > 1 {
		confidence *= AmbiguityDamping
	}

	return model.CategorizationResult{
		Category:     best.Category,
		Confidence:   confidence,
		Alternatives: c.suggest(entries, text, best.Category),
	}
}

// Scores returns the raw per-category scores in descending order. It is
// used by categorize --explain.
func (c *Categorizer) Scores(merchantText, userID string) model.CategoryScores {
	if !c.Ready() {
		return nil
	}
	text := newMerchantText(merchantText)
	if text.normalized == "" {
		return nil
	}
	return scoreEntries(c.lexicon.Effective(c.overlay, userID), text)
}

func (c *Categorizer) suggest(entries []lexicon.Entry, text merchantText, predicted model.Category) []model.Category {
	scores := make(model.CategoryScores, 0, len(entries))
	for _, entry := range entries {
		if entry.Category == predicted {
			continue
		}
		var score float64
		for _, kw := range entry.Keywords {
			if strings.Contains(text.normalized, kw) {
				score += AlternativeScore
			}
		}
		if score > 0 {
			scores = append(scores, model.CategoryScore{Category: entry.Category, Score: score})
		}
	}
	return scores.TopN(c.alternatives).Categories()
}

// merchantText is the normalized whole-string form plus its tokens.
type merchantText struct {
	normalized string
	tokens     []string
}

func newMerchantText(raw string) merchantText {
	return merchantText{
		normalized: lexicon.Normalize(raw),
		tokens:     lexicon.Tokenize(raw),
	}
}

func scoreEntries(entries []lexicon.Entry, text merchantText) model.CategoryScores {
	scores := make(model.CategoryScores, 0, len(entries))
	for _, entry := range entries {
		var score float64
		for _, kw := range entry.Keywords {
			score += scoreKeyword(kw, text)
		}
		if score > 0 {
			scores = append(scores, model.CategoryScore{Category: entry.Category, Score: score})
		}
	}
	// Sort is stable, so equal scores keep catalog order.
	scores.Sort()
	return scores
}

func scoreKeyword(keyword string, text merchantText) float64 {
	switch {
	case keyword == "":
		return 0
	case keyword == text.normalized:
		return ExactMatchScore
	case containsSequence(text.tokens, lexicon.Tokenize(keyword)):
		return TokenMatchScore
	case strings.Contains(text.normalized, keyword):
		return SubstringScore
	default:
		return 0
	}
}

// containsSequence reports whether needle appears contiguously in haystack.
func containsSequence(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, tok := range needle {
			if haystack[i+j] != tok {
				continue outer
			}
		}
		return true
	}
	return false
}
