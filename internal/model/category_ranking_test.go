package model

import (
	"testing"
)

func TestCategoryScores_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		scores  CategoryScores
		wantErr bool
	}{
		{
			name:   "valid scores",
			scores: CategoryScores{{Category: "Food & Dining", Score: 1.6}, {Category: "Shopping", Score: 0}},
		},
		{
			name:    "empty category name",
			scores:  CategoryScores{{Score: 0.5}},
			wantErr: true,
			errMsg:  "invalid score at index 0: category name is required",
		},
		{
			name:    "negative score",
			scores:  CategoryScores{{Category: "Shopping", Score: -0.1}},
			wantErr: true,
			errMsg:  "invalid score at index 0: score must be non-negative, got -0.10",
		},
		{
			name:    "duplicate category",
			scores:  CategoryScores{{Category: "Travel", Score: 0.5}, {Category: "Travel", Score: 0.7}},
			wantErr: true,
			errMsg:  `duplicate category "Travel" in scores`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scores.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errMsg != "" && err.Error() != tt.errMsg {
				t.Errorf("Validate() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestCategoryScores_SortKeepsCatalogOrderOnTies(t *testing.T) {
	scores := CategoryScores{
		{Category: "B", Score: 0.5},
		{Category: "C", Score: 0.8},
		{Category: "D", Score: 0.3},
		{Category: "A", Score: 0.8}, // Same score as C, but later in catalog
	}

	scores.Sort()

	expected := []Category{"C", "A", "B", "D"}
	for i, want := range expected {
		if scores[i].Category != want {
			t.Errorf("Sort() index %d = %v, want %s", i, scores[i], want)
		}
	}
}

func TestCategoryScores_Top(t *testing.T) {
	if got := (CategoryScores{}).Top(); got != nil {
		t.Errorf("Top() on empty = %v, want nil", got)
	}

	got := CategoryScores{{Category: "B", Score: 0.5}, {Category: "A", Score: 0.9}}.Top()
	if got == nil || got.Category != "A" {
		t.Errorf("Top() = %v, want A", got)
	}
}

func TestCategoryScores_TopN(t *testing.T) {
	scores := CategoryScores{
		{Category: "A", Score: 0.9},
		{Category: "B", Score: 0.7},
		{Category: "C", Score: 0.5},
		{Category: "D", Score: 0.3},
	}

	tests := []struct {
		name  string
		first Category
		n     int
		count int
	}{
		{name: "zero", n: 0, count: 0},
		{name: "negative", n: -1, count: 0},
		{name: "top three", n: 3, count: 3, first: "A"},
		{name: "more than available", n: 10, count: 4, first: "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scores.TopN(tt.n)
			if len(got) != tt.count {
				t.Fatalf("TopN(%d) returned %d items, want %d", tt.n, len(got), tt.count)
			}
			if tt.count > 0 && got[0].Category != tt.first {
				t.Errorf("TopN(%d)[0] = %s, want %s", tt.n, got[0].Category, tt.first)
			}
		})
	}
}

func TestCategoryScores_AboveThresholdAndWithout(t *testing.T) {
	scores := CategoryScores{
		{Category: "A", Score: 0.5},
		{Category: "B", Score: 0.8},
		{Category: "C", Score: 1.6},
	}

	above := scores.AboveThreshold(0.5)
	if len(above) != 2 {
		t.Errorf("AboveThreshold(0.5) = %v, want 2 entries (strictly greater)", above)
	}

	without := scores.Without("B")
	if got := without.Categories(); len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Errorf("Without(B) = %v, want [A C]", got)
	}
	if len(scores) != 3 {
		t.Errorf("Without mutated the receiver")
	}
}

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in      string
		want    TransactionType
		wantErr bool
	}{
		{in: "DEBIT", want: TransactionDebit},
		{in: "credit", want: TransactionCredit},
		{in: " Debit ", want: TransactionDebit},
		{in: "TRANSFER", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTransactionType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTransactionType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTransactionType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
