package copilot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Veraticus/finshare-ai/internal/catalog"
	"github.com/Veraticus/finshare-ai/internal/llm"
	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGen struct {
	err     error
	reply   string
	prompts []llm.Request
}

func (f *fakeGen) Available() bool  { return true }
func (f *fakeGen) Provider() string { return "fake" }

func (f *fakeGen) Generate(_ context.Context, req llm.Request) (string, error) {
	f.prompts = append(f.prompts, req)
	return f.reply, f.err
}

func lowConfidence() model.CategorizationResult {
	return model.CategorizationResult{
		Category:     model.CategoryOther,
		Confidence:   0.3,
		Alternatives: []model.Category{},
	}
}

func TestRefiner(t *testing.T) {
	cat := catalog.New(model.BaseCategories()...)

	tests := []struct {
		name      string
		reply     string
		err       error
		rule      model.CategorizationResult
		want      model.Category
		wantConf  float64
		refined   bool
		wantCalls int
	}{
		{
			name:      "accepts catalog member",
			reply:     `{"category":"Business","confidence":0.9}`,
			rule:      lowConfidence(),
			want:      model.CategoryBusiness,
			wantConf:  0.9,
			refined:   true,
			wantCalls: 1,
		},
		{
			name:      "clamps confidence",
			reply:     "```json\n{\"category\":\"Travel\",\"confidence\":7}\n```",
			rule:      lowConfidence(),
			want:      model.CategoryTravel,
			wantConf:  1,
			refined:   true,
			wantCalls: 1,
		},
		{
			name:      "rejects unknown category",
			reply:     `{"category":"Pets","confidence":0.9}`,
			rule:      lowConfidence(),
			want:      model.CategoryOther,
			wantConf:  0.3,
			wantCalls: 1,
		},
		{
			name:      "malformed reply",
			reply:     `probably business`,
			rule:      lowConfidence(),
			want:      model.CategoryOther,
			wantConf:  0.3,
			wantCalls: 1,
		},
		{
			name:      "provider error",
			err:       errors.New("timeout"),
			rule:      lowConfidence(),
			want:      model.CategoryOther,
			wantConf:  0.3,
			wantCalls: 1,
		},
		{
			name:      "confident rule result is not refined",
			reply:     `{"category":"Business","confidence":0.9}`,
			rule:      model.CategorizationResult{Category: model.CategoryShopping, Confidence: 0.8},
			want:      model.CategoryShopping,
			wantConf:  0.8,
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGen{reply: tt.reply, err: tt.err}
			r := NewRefiner(gen, cat, 0, nil)

			got := r.Refine(context.Background(), "ACME Corp", tt.rule)
			assert.Equal(t, tt.want, got.Category)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Equal(t, tt.refined, got.Refined)
			assert.Len(t, gen.prompts, tt.wantCalls)
		})
	}
}

func TestRefinerKeepsRuleWinnerAsAlternative(t *testing.T) {
	gen := &fakeGen{reply: `{"category":"Groceries","confidence":0.7}`}
	r := NewRefiner(gen, catalog.New(model.BaseCategories()...), 0.9, nil)

	rule := model.CategorizationResult{
		Category:     model.CategoryFoodDining,
		Confidence:   0.64,
		Alternatives: []model.Category{model.CategoryGroceries, model.CategoryShopping},
	}
	got := r.Refine(context.Background(), "Whole Foods", rule)
	assert.Equal(t, model.CategoryGroceries, got.Category)
	assert.Equal(t, []model.Category{model.CategoryFoodDining, model.CategoryShopping}, got.Alternatives)

	require.Len(t, gen.prompts, 1)
	assert.True(t, gen.prompts[0].JSON)
	assert.Contains(t, gen.prompts[0].Prompt, "- Gas & Fuel")
	assert.Contains(t, gen.prompts[0].Prompt, `"Whole Foods"`)
}

func TestRefinerDisabled(t *testing.T) {
	var nilGen *llm.Generator
	r := NewRefiner(nilGen, catalog.New(), 0, nil)
	assert.False(t, r.Enabled())

	rule := lowConfidence()
	assert.Equal(t, rule, r.Refine(context.Background(), "x", rule))

	var none *Refiner
	assert.False(t, none.Enabled())
}

type stubSpending struct {
	err     error
	summary SpendingSummary
	calls   int
}

func (s *stubSpending) SpendingSummary(context.Context, string) (SpendingSummary, error) {
	s.calls++
	return s.summary, s.err
}

func TestAssistant(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		a := NewAssistant(nil, nil, nil)
		reply := a.Chat(context.Background(), ChatRequest{Message: "hi", UserContext: map[string]any{"k": "v"}})
		assert.Equal(t, ReplyUnavailable, reply.Reply)
		assert.Equal(t, map[string]any{"k": "v"}, reply.CategoryAnalysis)
	})

	t.Run("plain question", func(t *testing.T) {
		gen := &fakeGen{reply: "  Paris is lovely.  "}
		spending := &stubSpending{}
		a := NewAssistant(gen, spending, nil)

		reply := a.Chat(context.Background(), ChatRequest{Message: "Where should I travel?", UserID: "alice"})
		assert.Equal(t, "Paris is lovely.", reply.Reply)
		assert.Zero(t, spending.calls)
		assert.Nil(t, reply.CategoryAnalysis)
		require.Len(t, gen.prompts, 1)
		assert.Equal(t, "Where should I travel?", gen.prompts[0].Prompt)
	})

	t.Run("spending question uses analytics", func(t *testing.T) {
		gen := &fakeGen{reply: "Cook at home."}
		spending := &stubSpending{summary: SpendingSummary{
			Categories:       map[string]CategorySpend{"Groceries": {Amount: 320, Percentage: 40}},
			TotalSpending30d: 800,
		}}
		a := NewAssistant(gen, spending, nil)

		reply := a.Chat(context.Background(), ChatRequest{Message: "How can I save money?", UserID: "alice"})
		assert.Equal(t, "Cook at home.", reply.Reply)
		assert.Equal(t, 1, spending.calls)
		assert.Contains(t, gen.prompts[0].Prompt, "Groceries")
		assert.Contains(t, gen.prompts[0].Prompt, "personal finance advisor")
		assert.Equal(t, 800.0, reply.CategoryAnalysis["total_spending_30d"])
	})

	t.Run("analytics failure uses sample summary", func(t *testing.T) {
		gen := &fakeGen{reply: "Tips."}
		a := NewAssistant(gen, &stubSpending{err: errors.New("down")}, nil)

		a.Chat(context.Background(), ChatRequest{Message: "my budget?", UserID: "alice"})
		assert.Contains(t, gen.prompts[0].Prompt, "Transportation")
	})

	t.Run("anonymous spending question skips analytics", func(t *testing.T) {
		gen := &fakeGen{reply: "Tips."}
		spending := &stubSpending{}
		a := NewAssistant(gen, spending, nil)

		a.Chat(context.Background(), ChatRequest{Message: "my budget?"})
		assert.Zero(t, spending.calls)
	})

	t.Run("generation error", func(t *testing.T) {
		a := NewAssistant(&fakeGen{err: errors.New("boom")}, nil, nil)
		reply := a.Chat(context.Background(), ChatRequest{Message: "hi"})
		assert.Equal(t, ReplyError, reply.Reply)
	})

	t.Run("empty generation", func(t *testing.T) {
		a := NewAssistant(&fakeGen{reply: "   "}, nil, nil)
		reply := a.Chat(context.Background(), ChatRequest{Message: "hi"})
		assert.Equal(t, ReplyGeneral, reply.Reply)
	})
}

func TestConversationPrompt(t *testing.T) {
	var history []ChatMessage
	for i := 0; i < 7; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleModel
		}
		history = append(history, ChatMessage{Role: role, Text: string(rune('a' + i))})
	}

	prompt := conversationPrompt("next", history)
	assert.True(t, strings.HasPrefix(prompt, "Previous conversation:\n"))
	assert.NotContains(t, prompt, "User: a\n")
	assert.NotContains(t, prompt, "Assistant: b\n")
	assert.Contains(t, prompt, "User: c\n")
	assert.Contains(t, prompt, "User: g\n")
	assert.True(t, strings.HasSuffix(prompt, "User: next\nAssistant:"))

	assert.Equal(t, "solo", conversationPrompt("solo", nil))
}

func TestIsSpendingQuery(t *testing.T) {
	assert.True(t, IsSpendingQuery("How do I REDUCE my costs?"))
	assert.True(t, IsSpendingQuery("Can I afford a trip?"))
	assert.False(t, IsSpendingQuery("What's the weather in Lisbon?"))
}

func TestAnalyticsClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analytics/spending-summary/alice" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"categories":{"Travel":{"amount":500,"percentage":50}},"total_spending_30d":1000,"avg_daily_spending":33.3}`))
	}))
	defer server.Close()

	client := NewAnalyticsClient(server.URL+"/", nil)

	summary, err := client.SpendingSummary(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, summary.TotalSpending30d)
	assert.Equal(t, CategorySpend{Amount: 500, Percentage: 50}, summary.Categories["Travel"])

	_, err = client.SpendingSummary(context.Background(), "bob")
	assert.ErrorContains(t, err, "status 404")

	_, err = NewAnalyticsClient("", nil).SpendingSummary(context.Background(), "alice")
	assert.Error(t, err)
}

func TestTripBudgeter(t *testing.T) {
	t.Run("fallback without generator", func(t *testing.T) {
		b := NewTripBudgeter(nil, nil)
		budget := b.Plan(context.Background(), TripRequest{PromptText: "Weekend in Lisbon", Destination: "Lisbon", DurationDays: 2})

		assert.False(t, budget.Generated)
		assert.Equal(t, "USD", budget.Currency)
		require.Len(t, budget.Items, 6)
		assert.Equal(t, "Hotel/lodging for 2 nights in Lisbon", budget.Items[0].Description)
		// 160 + 90 + 150 + 70 + 80 + 70
		assert.InDelta(t, 620, budget.TotalEstimatedCost, 1e-9)
	})

	t.Run("fallback default duration", func(t *testing.T) {
		budget := FallbackBudget(TripRequest{})
		// 240 + 135 + 150 + 105 + 80 + 70
		assert.InDelta(t, 780, budget.TotalEstimatedCost, 1e-9)
		assert.Contains(t, budget.Items[0].Description, "3 nights in destination")
	})

	t.Run("valid generated budget", func(t *testing.T) {
		gen := &fakeGen{reply: `{"budget_items":[{"category":"Accommodation","estimated_cost":300,"description":"Hostel"},{"category":"Food & Dining","estimated_cost":120.5,"description":"Street food"}],"currency":"EUR"}`}
		b := NewTripBudgeter(gen, nil)

		budget := b.Plan(context.Background(), TripRequest{PromptText: "Backpacking", Destination: "Porto", DurationDays: 4, BudgetRange: "low"})
		assert.True(t, budget.Generated)
		assert.Equal(t, "EUR", budget.Currency)
		assert.InDelta(t, 420.5, budget.TotalEstimatedCost, 1e-9)
		require.Len(t, gen.prompts, 1)
		assert.True(t, gen.prompts[0].JSON)
		assert.Contains(t, gen.prompts[0].Prompt, "Duration: 4 days")
		assert.Contains(t, gen.prompts[0].Prompt, "Budget Range: low")
	})

	t.Run("schema violation falls back", func(t *testing.T) {
		gen := &fakeGen{reply: `{"budget_items":[{"category":"Accommodation","estimated_cost":"lots"}]}`}
		budget := NewTripBudgeter(gen, nil).Plan(context.Background(), TripRequest{DurationDays: 1})
		assert.False(t, budget.Generated)
		assert.Len(t, budget.Items, 6)
	})

	t.Run("generation error falls back", func(t *testing.T) {
		gen := &fakeGen{err: errors.New("quota")}
		budget := NewTripBudgeter(gen, nil).Plan(context.Background(), TripRequest{})
		assert.False(t, budget.Generated)
	})
}

func TestParseTripBudget(t *testing.T) {
	_, err := ParseTripBudget(`{"budget_items":[]}`)
	assert.Error(t, err)

	budget, err := ParseTripBudget(`{"budget_items":[{"category":"Misc","estimated_cost":10,"description":"x"}],"total_estimated_cost":99}`)
	require.NoError(t, err)
	assert.InDelta(t, 99, budget.TotalEstimatedCost, 1e-9)
	assert.Equal(t, "USD", budget.Currency)
}

func TestDescribe(t *testing.T) {
	off := Describe(nil)
	assert.False(t, off.GenerativeEnabled)
	assert.Empty(t, off.Provider)
	for _, c := range off.Capabilities {
		assert.False(t, c.Available)
	}

	on := Describe(&fakeGen{})
	assert.True(t, on.GenerativeEnabled)
	assert.Equal(t, "fake", on.Provider)
	assert.Len(t, on.Capabilities, 3)
	assert.Equal(t, "enabled", on.PrivacyMode)
}
