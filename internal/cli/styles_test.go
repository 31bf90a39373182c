package cli

import (
	"strings"
	"testing"

	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestConfidenceBar(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		wantFilled int
		wantSuffix string
	}{
		{name: "full", confidence: 1, wantFilled: 10, wantSuffix: " 1.00"},
		{name: "fallback", confidence: 0.3, wantFilled: 3, wantSuffix: " 0.30"},
		{name: "damped", confidence: 0.64, wantFilled: 6, wantSuffix: " 0.64"},
		{name: "clamped high", confidence: 3, wantFilled: 10, wantSuffix: " 1.00"},
		{name: "clamped low", confidence: -1, wantFilled: 0, wantSuffix: " 0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := ConfidenceBar(tt.confidence)
			assert.Equal(t, tt.wantFilled, strings.Count(bar, "█"))
			assert.Equal(t, 10-tt.wantFilled, strings.Count(bar, "░"))
			assert.True(t, strings.HasSuffix(bar, tt.wantSuffix))
		})
	}
}

func TestFormatResult(t *testing.T) {
	out := FormatResult("Uber Restaurant", model.CategorizationResult{
		Category:     model.CategoryFoodDining,
		Confidence:   0.64,
		Alternatives: []model.Category{model.CategoryTransport},
	})
	assert.Contains(t, out, "Uber Restaurant")
	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "also: Transportation")
	assert.NotContains(t, out, "refined")

	out = FormatResult("ACME", model.CategorizationResult{Category: model.CategoryBusiness, Confidence: 0.9, Refined: true})
	assert.Contains(t, out, "(refined)")
	assert.NotContains(t, out, "also:")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"#", "Category"}, [][]string{
		{"1", "Food & Dining"},
		{"2", "Transportation"},
	})
	lines := strings.Split(out, "\n")
	assert.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, out, "Category")
	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "Transportation")
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), "done")
	assert.Contains(t, FormatError("failed"), "failed")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatTitle("Categories"), "Categories")
}
