package copilot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/finshare-ai/internal/llm"
	"github.com/Veraticus/finshare-ai/internal/metrics"
	"github.com/Veraticus/finshare-ai/internal/model"
)

// DefaultRefineBelow is the rule confidence under which refinement is tried.
const DefaultRefineBelow = 0.6

const refineSystem = "You are a financial transaction classifier. You MUST respond with ONLY a valid JSON object."

// CategoryLister lists the categories a refinement may choose from.
type CategoryLister interface {
	List() []model.Category
	Contains(category model.Category) bool
}

// Refiner asks a generative model to second-guess low-confidence results.
type Refiner struct {
	gen       Generator
	catalog   CategoryLister
	logger    *slog.Logger
	threshold float64
}

// NewRefiner creates a refiner. Non-positive thresholds use DefaultRefineBelow.
func NewRefiner(gen Generator, catalog CategoryLister, threshold float64, logger *slog.Logger) *Refiner {
	if threshold <= 0 {
		threshold = DefaultRefineBelow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{gen: gen, catalog: catalog, threshold: threshold, logger: logger}
}

// Enabled reports whether refinement can run at all.
func (r *Refiner) Enabled() bool {
	return r != nil && available(r.gen)
}

// Refine returns a model-chosen category when the rule result is below the
// threshold and the model answers with a catalog member. In every other case
// the rule result comes back unchanged.
func (r *Refiner) Refine(ctx context.Context, merchantText string, rule model.CategorizationResult) model.CategorizationResult {
	if !r.Enabled() || rule.Confidence >= r.threshold {
		return rule
	}

	text, err := r.gen.Generate(ctx, llm.Request{
		System: refineSystem,
		Prompt: r.prompt(merchantText, rule),
		JSON:   true,
	})
	if err != nil {
		r.logger.Warn("refinement failed, keeping rule result", "merchant_text", merchantText, "error", err)
		metrics.RefinementsTotal.WithLabelValues("error").Inc()
		return rule
	}

	var reply struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}
	if err := llm.DecodeJSON(text, &reply); err != nil {
		r.logger.Warn("malformed refinement reply", "merchant_text", merchantText, "error", err)
		metrics.RefinementsTotal.WithLabelValues("malformed").Inc()
		return rule
	}

	category := model.Category(strings.TrimSpace(reply.Category))
	if !r.catalog.Contains(category) {
		r.logger.Warn("refinement chose unknown category", "merchant_text", merchantText, "category", category)
		metrics.RefinementsTotal.WithLabelValues("rejected").Inc()
		return rule
	}

	confidence := reply.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	refined := model.CategorizationResult{
		Category:   category,
		Confidence: confidence,
		Refined:    true,
	}
	// The rule winner becomes the first alternative when the model disagrees.
	alts := make([]model.Category, 0, len(rule.Alternatives)+1)
	if rule.Category != category {
		alts = append(alts, rule.Category)
	}
	for _, alt := range rule.Alternatives {
		if alt != category && alt != rule.Category {
			alts = append(alts, alt)
		}
	}
	refined.Alternatives = alts

	metrics.RefinementsTotal.WithLabelValues("accepted").Inc()
	r.logger.Debug("refined categorization",
		"merchant_text", merchantText,
		"rule_category", rule.Category,
		"category", category,
		"confidence", confidence)
	return refined
}

func (r *Refiner) prompt(merchantText string, rule model.CategorizationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Categorize this transaction: %q\n\n", merchantText)
	b.WriteString("Choose exactly one of these categories:\n")
	for _, c := range r.catalog.List() {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	fmt.Fprintf(&b, "\nA keyword matcher guessed %q with confidence %.2f.\n", rule.Category, rule.Confidence)
	b.WriteString(`Respond as {"category": "<one of the categories>", "confidence": <0.0-1.0>}.`)
	return b.String()
}
