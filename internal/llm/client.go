package llm

import (
	"context"
	"time"
)

// Client is a single generative text provider.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Provider() string
}

// Request is one prompt sent to a provider.
type Request struct {
	System string
	Prompt string
	// JSON asks the provider to reply with a bare JSON object.
	JSON bool
}

// Response is the provider's reply.
type Response struct {
	Text  string
	Model string
}

// Config holds configuration for the generative collaborator.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	Timeout     time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}
