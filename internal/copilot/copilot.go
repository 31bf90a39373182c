// Package copilot holds the generative features layered on top of rule-based
// categorization: refinement of low-confidence results, a spending assistant
// and a trip budget planner. Every feature has a deterministic fallback, so
// none of them fail when the generative provider is missing or misbehaves.
package copilot

import (
	"context"

	"github.com/Veraticus/finshare-ai/internal/llm"
)

// Generator produces text from a prompt. *llm.Generator satisfies it,
// including a nil one.
type Generator interface {
	Available() bool
	Provider() string
	Generate(ctx context.Context, req llm.Request) (string, error)
}

func available(g Generator) bool {
	return g != nil && g.Available()
}
