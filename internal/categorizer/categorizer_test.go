package categorizer

import (
	"testing"

	"github.com/Veraticus/finshare-ai/internal/lexicon"
	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefault(t *testing.T) (*Categorizer, *lexicon.Overlay) {
	t.Helper()
	overlay := lexicon.NewOverlay()
	return New(lexicon.Default(), overlay), overlay
}

func TestCategorize(t *testing.T) {
	c, _ := newDefault(t)

	tests := []struct {
		name         string
		text         string
		wantCategory model.Category
		wantConf     float64
		wantAlts     []model.Category
	}{
		{
			name:         "coffee shop with store number",
			text:         "Starbucks Coffee #4521",
			wantCategory: model.CategoryFoodDining,
			wantConf:     1.0,
			wantAlts:     []model.Category{},
		},
		{
			name:         "unknown vendor falls back",
			text:         "XYZ123 Unknown Vendor",
			wantCategory: model.CategoryOther,
			wantConf:     FallbackConfidence,
			wantAlts:     []model.Category{},
		},
		{
			name:         "ambiguous gas is damped",
			text:         "Shell Gas Station",
			wantCategory: model.CategoryGasFuel,
			wantConf:     0.8,
			wantAlts:     []model.Category{model.CategoryBills},
		},
		{
			name:         "exact keyword",
			text:         "Netflix",
			wantCategory: model.CategoryEntertainment,
			wantConf:     1.0,
			wantAlts:     []model.Category{},
		},
		{
			name:         "exact keyword ignores case and spacing",
			text:         "  NETFLIX ",
			wantCategory: model.CategoryEntertainment,
			wantConf:     1.0,
			wantAlts:     []model.Category{},
		},
		{
			name:         "multi word keyword on token boundary",
			text:         "WHOLE FOODS MKT 10234",
			wantCategory: model.CategoryGroceries,
			wantConf:     0.8 * AmbiguityDamping,
			wantAlts:     []model.Category{model.CategoryFoodDining},
		},
		{
			name:         "substring only",
			text:         "Parkingmeter",
			wantCategory: model.CategoryTransport,
			wantConf:     0.7,
			wantAlts:     []model.Category{},
		},
		{
			name:         "tie resolves in catalog order",
			text:         "Uber Restaurant",
			wantCategory: model.CategoryFoodDining,
			wantConf:     0.8 * AmbiguityDamping,
			wantAlts:     []model.Category{model.CategoryTransport},
		},
		{
			name:         "empty text",
			text:         "",
			wantCategory: model.CategoryOther,
			wantConf:     FallbackConfidence,
			wantAlts:     []model.Category{},
		},
		{
			name:         "punctuation only",
			text:         "  #!  ",
			wantCategory: model.CategoryOther,
			wantConf:     FallbackConfidence,
			wantAlts:     []model.Category{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Categorize(Request{MerchantText: tt.text, TransactionType: model.TransactionDebit})
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantAlts, got.Alternatives)
			assert.False(t, got.Refined)
		})
	}
}

func TestCategorizeDampsExactlyOnce(t *testing.T) {
	c, _ := newDefault(t)

	// Three categories each score 0.8.
	got := c.Categorize(Request{MerchantText: "Amazon Uber Restaurant"})
	assert.Equal(t, model.CategoryFoodDining, got.Category)
	assert.InDelta(t, 0.64, got.Confidence, 1e-9)
	assert.Equal(t, []model.Category{model.CategoryTransport, model.CategoryShopping}, got.Alternatives)
}

func TestCategorizeConfidenceBounds(t *testing.T) {
	c, _ := newDefault(t)

	inputs := []string{
		"Starbucks Coffee Cafe Restaurant Bar Grill Diner Pizza Burger",
		"Shell Gas Station Electric Water Phone",
		"x",
		"Amazon Walmart Target Costco Best Buy Store",
	}
	for _, in := range inputs {
		got := c.Categorize(Request{MerchantText: in})
		assert.GreaterOrEqual(t, got.Confidence, 0.0, in)
		assert.LessOrEqual(t, got.Confidence, 1.0, in)
		assert.NotContains(t, got.Alternatives, got.Category, in)
		assert.LessOrEqual(t, len(got.Alternatives), DefaultAlternatives, in)
	}
}

func TestCategorizeExactMatchIsConfident(t *testing.T) {
	c, _ := newDefault(t)

	for _, entry := range lexicon.DefaultEntries() {
		for _, kw := range entry.Keywords {
			got := c.Categorize(Request{MerchantText: kw})
			assert.GreaterOrEqual(t, got.Confidence, 0.7, kw)
			assert.NotEqual(t, model.CategoryOther, got.Category, kw)
		}
	}
}

func TestCategorizeAlternativesLimit(t *testing.T) {
	c := New(lexicon.Default(), nil, WithAlternatives(1))

	got := c.Categorize(Request{MerchantText: "Amazon Uber Restaurant"})
	assert.Equal(t, []model.Category{model.CategoryTransport}, got.Alternatives)

	c = New(lexicon.Default(), nil, WithAlternatives(0))
	got = c.Categorize(Request{MerchantText: "Amazon Uber Restaurant"})
	assert.Empty(t, got.Alternatives)
}

func TestCategorizeUsesUserOverlay(t *testing.T) {
	c, overlay := newDefault(t)

	before := c.Categorize(Request{MerchantText: "Local Bike Shop", UserID: "alice"})
	assert.Equal(t, model.CategoryShopping, before.Category)
	assert.InDelta(t, 0.8, before.Confidence, 1e-9)

	overlay.Add("alice", model.CategoryShopping, "local", "bike")

	after := c.Categorize(Request{MerchantText: "Local Bike Shop", UserID: "alice"})
	assert.Equal(t, model.CategoryShopping, after.Category)
	assert.Greater(t, after.Confidence, before.Confidence)

	// Other users keep the base lexicon.
	bob := c.Categorize(Request{MerchantText: "Local Bike Shop", UserID: "bob"})
	assert.Equal(t, before, bob)

	anon := c.Categorize(Request{MerchantText: "Local Bike Shop"})
	assert.Equal(t, before, anon)
}

func TestCategorizeOverlayCanChangeWinner(t *testing.T) {
	c, overlay := newDefault(t)

	overlay.Add("alice", model.CategoryBusiness, "acme")
	got := c.Categorize(Request{MerchantText: "ACME Corp", UserID: "alice"})
	assert.Equal(t, model.CategoryBusiness, got.Category)

	got = c.Categorize(Request{MerchantText: "ACME Corp", UserID: "bob"})
	assert.Equal(t, model.CategoryOther, got.Category)
}

func TestCategorizeIgnoresAmountAndType(t *testing.T) {
	c, _ := newDefault(t)
	amount := -42.5

	debit := c.Categorize(Request{MerchantText: "Uber Trip", TransactionType: model.TransactionDebit})
	credit := c.Categorize(Request{MerchantText: "Uber Trip", TransactionType: model.TransactionCredit, Amount: &amount})
	assert.Equal(t, debit, credit)
}

func TestNotReady(t *testing.T) {
	var c *Categorizer
	assert.False(t, c.Ready())

	c = New(nil, nil)
	assert.False(t, c.Ready())

	got := c.Categorize(Request{MerchantText: "Starbucks"})
	assert.Equal(t, model.CategoryOther, got.Category)
	assert.Nil(t, c.Scores("Starbucks", ""))
}

func TestScores(t *testing.T) {
	c, _ := newDefault(t)

	scores := c.Scores("Shell Gas Station", "")
	require.Len(t, scores, 2)
	assert.Equal(t, model.CategoryGasFuel, scores[0].Category)
	assert.InDelta(t, 2.4, scores[0].Score, 1e-9)
	assert.Equal(t, model.CategoryBills, scores[1].Category)
	assert.InDelta(t, 0.8, scores[1].Score, 1e-9)
	require.NoError(t, scores.Validate())
}

func TestContainsSequence(t *testing.T) {
	tests := []struct {
		haystack []string
		needle   []string
		want     bool
	}{
		{[]string{"whole", "foods", "mkt"}, []string{"whole", "foods"}, true},
		{[]string{"whole", "mkt", "foods"}, []string{"whole", "foods"}, false},
		{[]string{"best", "buy"}, []string{"best", "buy"}, true},
		{[]string{"buy"}, []string{"best", "buy"}, false},
		{[]string{"a"}, nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsSequence(tt.haystack, tt.needle), "%v in %v", tt.needle, tt.haystack)
	}
}
