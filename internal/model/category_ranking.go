package model

import (
	"fmt"
	"sort"
)

// CategoryScore is the accumulated keyword score of one category.
type CategoryScore struct {
	Category Category
	Score    float64
}

// CategoryScores is a slice of CategoryScore that supports sorting and utility methods.
type CategoryScores []CategoryScore

// Len implements sort.Interface.
func (r CategoryScores) Len() int {
	return len(r)
}

// Less implements sort.Interface - higher scores come first.
func (r CategoryScores) Less(i, j int) bool {
	return r[i].Score > r[j].Score
}

// Swap implements sort.Interface.
func (r CategoryScores) Swap(i, j int) {
	r[i], r[j] = r[j], r[i]
}

// Sort sorts by score descending. Equal scores keep their original (catalog) order.
func (r CategoryScores) Sort() {
	sort.Stable(r)
}

// Top returns the highest-scoring category, or nil if empty.
func (r CategoryScores) Top() *CategoryScore {
	if len(r) == 0 {
		return nil
	}
	r.Sort()
	return &r[0]
}

// TopN returns the N highest-scoring categories.
func (r CategoryScores) TopN(n int) CategoryScores {
	if n <= 0 {
		return CategoryScores{}
	}

	r.Sort()

	if n > len(r) {
		n = len(r)
	}

	result := make(CategoryScores, n)
	copy(result, r[:n])
	return result
}

// AboveThreshold returns all categories scoring strictly more than threshold.
func (r CategoryScores) AboveThreshold(threshold float64) CategoryScores {
	var result CategoryScores
	for _, s := range r {
		if s.Score > threshold {
			result = append(result, s)
		}
	}
	return result
}

// Without returns a copy of the scores with the given category removed.
func (r CategoryScores) Without(category Category) CategoryScores {
	result := make(CategoryScores, 0, len(r))
	for _, s := range r {
		if s.Category != category {
			result = append(result, s)
		}
	}
	return result
}

// Categories returns the category labels in slice order.
func (r CategoryScores) Categories() []Category {
	out := make([]Category, len(r))
	for i, s := range r {
		out[i] = s.Category
	}
	return out
}

// Validate ensures no score is negative and no category repeats.
func (r CategoryScores) Validate() error {
	seen := make(map[Category]bool)

	for i, s := range r {
		if s.Category == "" {
			return fmt.Errorf("invalid score at index %d: category name is required", i)
		}
		if s.Score < 0 {
			return fmt.Errorf("invalid score at index %d: score must be non-negative, got %.2f", i, s.Score)
		}
		if seen[s.Category] {
			return fmt.Errorf("duplicate category %q in scores", s.Category)
		}
		seen[s.Category] = true
	}

	return nil
}
