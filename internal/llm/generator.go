package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finshare-ai/internal/common"
	"github.com/Veraticus/finshare-ai/internal/metrics"
)

// DefaultTimeout bounds a single Generate call including retries.
const DefaultTimeout = 10 * time.Second

// Generator adds caching, rate limiting, retries and a deadline to a Client.
// A nil *Generator is valid and reports itself unavailable.
type Generator struct {
	client    Client
	cache     *responseCache
	limiter   *rateLimiter
	logger    *slog.Logger
	retryOpts common.RetryOptions
	timeout   time.Duration
}

// NewGenerator wraps client according to cfg.
func NewGenerator(client Client, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := common.RetryOptions{
		Logger:       logger,
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 2
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = 500 * time.Millisecond
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Generator{
		client:    client,
		cache:     newResponseCache(cfg.CacheTTL),
		limiter:   newRateLimiter(cfg.RateLimit),
		logger:    logger,
		retryOpts: retryOpts,
		timeout:   timeout,
	}
}

// Open builds a Generator straight from configuration. It returns nil, nil
// when no provider is configured.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Generator, error) {
	if !Enabled(cfg) {
		return nil, nil
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewGenerator(client, cfg, logger), nil
}

// Available reports whether a provider is wired.
func (g *Generator) Available() bool {
	return g != nil && g.client != nil
}

// Provider returns the provider name, or "" when unavailable.
func (g *Generator) Provider() string {
	if !g.Available() {
		return ""
	}
	return g.client.Provider()
}

// Generate returns the provider's reply text.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if !g.Available() {
		return "", common.ErrLLMUnavailable
	}

	key := cacheKey(req)
	if text, ok := g.cache.get(key); ok {
		g.logger.Debug("llm cache hit", "provider", g.client.Provider())
		return text, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var text string
	err := common.WithRetry(ctx, func() error {
		if err := g.limiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}

		resp, err := g.client.Generate(ctx, req)
		if err != nil {
			g.logger.Warn("llm generation attempt failed",
				"provider", g.client.Provider(),
				"error", err)
			var retryable *common.RetryableError
			if errors.As(err, &retryable) {
				return err
			}
			return &common.RetryableError{Err: err, Retryable: ctx.Err() == nil}
		}

		text = resp.Text
		return nil
	}, g.retryOpts)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(g.client.Provider(), "error").Inc()
		return "", fmt.Errorf("%w: %w", common.ErrLLMUnavailable, err)
	}

	metrics.LLMRequestsTotal.WithLabelValues(g.client.Provider(), "ok").Inc()
	g.cache.set(key, text)
	return text, nil
}
