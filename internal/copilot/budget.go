package copilot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/finshare-ai/internal/common"
	"github.com/Veraticus/finshare-ai/internal/llm"
	"github.com/xeipuuv/gojsonschema"
)

// DefaultTripDays is used when a trip request has no duration.
const DefaultTripDays = 3

// DefaultCurrency is the currency of fallback budgets.
const DefaultCurrency = "USD"

// tripBudgetSchema is the shape a generated budget must have.
const tripBudgetSchema = `{
	"type": "object",
	"required": ["budget_items"],
	"properties": {
		"budget_items": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["category", "estimated_cost", "description"],
				"properties": {
					"category": {"type": "string", "minLength": 1},
					"estimated_cost": {"type": "number", "minimum": 0},
					"description": {"type": "string"}
				}
			}
		},
		"total_estimated_cost": {"type": "number", "minimum": 0},
		"currency": {"type": "string", "minLength": 3, "maxLength": 3}
	}
}`

var tripBudgetSchemaLoader = gojsonschema.NewStringLoader(tripBudgetSchema)

// TripRequest describes a trip to budget.
type TripRequest struct {
	PromptText   string
	Destination  string
	BudgetRange  string
	DurationDays int
}

// BudgetItem is one line of a trip budget.
type BudgetItem struct {
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// TripBudget is an itemized estimate.
type TripBudget struct {
	Currency           string       `json:"currency"`
	Items              []BudgetItem `json:"budget_items"`
	TotalEstimatedCost float64      `json:"total_estimated_cost"`
	// Generated is false for the deterministic fallback.
	Generated bool `json:"-"`
}

// TripBudgeter builds trip budgets.
type TripBudgeter struct {
	gen    Generator
	logger *slog.Logger
}

// NewTripBudgeter creates a budgeter.
func NewTripBudgeter(gen Generator, logger *slog.Logger) *TripBudgeter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TripBudgeter{gen: gen, logger: logger}
}

// Plan returns a generated budget, or the fallback budget when generation is
// unavailable, fails or returns something that does not match the schema.
func (b *TripBudgeter) Plan(ctx context.Context, req TripRequest) TripBudget {
	if !available(b.gen) {
		return FallbackBudget(req)
	}

	text, err := b.gen.Generate(ctx, llm.Request{Prompt: tripBudgetPrompt(req), JSON: true})
	if err != nil {
		b.logger.Error("trip budget generation error", "error", err)
		return FallbackBudget(req)
	}

	budget, err := ParseTripBudget(text)
	if err != nil {
		b.logger.Warn("could not use generated trip budget, using fallback", "error", err)
		return FallbackBudget(req)
	}

	b.logger.Info("generated trip budget", "destination", req.Destination, "total", budget.TotalEstimatedCost)
	return budget
}

// ParseTripBudget validates a model reply against the budget schema.
func ParseTripBudget(text string) (TripBudget, error) {
	var doc map[string]any
	if err := llm.DecodeJSON(text, &doc); err != nil {
		return TripBudget{}, err
	}

	result, err := gojsonschema.Validate(tripBudgetSchemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return TripBudget{}, fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return TripBudget{}, fmt.Errorf("%w: %s", common.ErrMalformedResponse, strings.Join(errs, "; "))
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return TripBudget{}, fmt.Errorf("failed to re-encode budget: %w", err)
	}
	var budget TripBudget
	if err := json.Unmarshal(raw, &budget); err != nil {
		return TripBudget{}, fmt.Errorf("failed to decode budget: %w", err)
	}

	if _, ok := doc["total_estimated_cost"]; !ok {
		budget.TotalEstimatedCost = sumItems(budget.Items)
	}
	if budget.Currency == "" {
		budget.Currency = DefaultCurrency
	}
	budget.Generated = true
	return budget, nil
}

// FallbackBudget is a deterministic per-day estimate.
func FallbackBudget(req TripRequest) TripBudget {
	days := req.DurationDays
	if days <= 0 {
		days = DefaultTripDays
	}
	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		destination = "destination"
	}

	d := float64(days)
	items := []BudgetItem{
		{Category: "Accommodation", EstimatedCost: d * 80, Description: fmt.Sprintf("Hotel/lodging for %d nights in %s", days, destination)},
		{Category: "Food & Dining", EstimatedCost: d * 45, Description: "Meals and dining experiences"},
		{Category: "Transportation", EstimatedCost: 150, Description: "Flights and local transportation"},
		{Category: "Entertainment & Activities", EstimatedCost: d * 35, Description: "Tours, attractions, and entertainment"},
		{Category: "Shopping & Souvenirs", EstimatedCost: 80, Description: "Shopping and souvenirs"},
		{Category: "Miscellaneous", EstimatedCost: 70, Description: "Tips, emergency fund, and other expenses"},
	}

	return TripBudget{
		Items:              items,
		TotalEstimatedCost: sumItems(items),
		Currency:           DefaultCurrency,
	}
}

func sumItems(items []BudgetItem) float64 {
	var total float64
	for _, it := range items {
		total += it.EstimatedCost
	}
	return total
}

func tripBudgetPrompt(req TripRequest) string {
	var b strings.Builder
	b.WriteString("You are a travel budget planning expert. Create a detailed, realistic budget for the following trip:\n\n")
	fmt.Fprintf(&b, "Trip Description: %s\n", req.PromptText)
	if req.Destination != "" {
		fmt.Fprintf(&b, "Destination: %s\n", req.Destination)
	}
	if req.DurationDays > 0 {
		fmt.Fprintf(&b, "Duration: %d days\n", req.DurationDays)
	}
	if req.BudgetRange != "" {
		fmt.Fprintf(&b, "Budget Range: %s\n", req.BudgetRange)
	}
	b.WriteString(`
Provide a structured budget in JSON with these categories:
- Accommodation
- Transportation
- Food & Dining
- Entertainment & Activities
- Shopping & Souvenirs
- Miscellaneous

Each entry of the "budget_items" array has "category", "estimated_cost" (number) and "description".
Also include "total_estimated_cost" (number) and "currency" (ISO code).
`)
	return b.String()
}
