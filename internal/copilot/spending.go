package copilot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SpendingTimeout bounds a call to the analytics collaborator.
const SpendingTimeout = 5 * time.Second

// CategorySpend is one category's share of a spending summary.
type CategorySpend struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// SpendingSummary is an anonymized aggregate of a user's recent spending.
type SpendingSummary struct {
	Categories       map[string]CategorySpend `json:"categories"`
	TotalSpending30d float64                  `json:"total_spending_30d"`
	AvgDailySpending float64                  `json:"avg_daily_spending"`
}

// SpendingSource fetches spending summaries.
type SpendingSource interface {
	SpendingSummary(ctx context.Context, userID string) (SpendingSummary, error)
}

// SampleSpendingSummary is served when the analytics collaborator is unreachable.
func SampleSpendingSummary() SpendingSummary {
	return SpendingSummary{
		Categories: map[string]CategorySpend{
			"Food & Dining":  {Amount: 450, Percentage: 22},
			"Transportation": {Amount: 200, Percentage: 10},
			"Shopping":       {Amount: 300, Percentage: 15},
			"Entertainment":  {Amount: 150, Percentage: 7},
		},
		TotalSpending30d: 1100,
		AvgDailySpending: 36.67,
	}
}

// AnalyticsClient reads spending summaries from the analytics service over HTTP.
type AnalyticsClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewAnalyticsClient creates a client for baseURL.
func NewAnalyticsClient(baseURL string, logger *slog.Logger) *AnalyticsClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsClient{
		httpClient: &http.Client{Timeout: SpendingTimeout},
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// SpendingSummary fetches the user's summary.
func (c *AnalyticsClient) SpendingSummary(ctx context.Context, userID string) (SpendingSummary, error) {
	if c.baseURL == "" {
		return SpendingSummary{}, fmt.Errorf("analytics URL not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, SpendingTimeout)
	defer cancel()

	endpoint := c.baseURL + "/api/analytics/spending-summary/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SpendingSummary{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SpendingSummary{}, fmt.Errorf("analytics request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return SpendingSummary{}, fmt.Errorf("analytics error (status %d): %s", resp.StatusCode, string(body))
	}

	var summary SpendingSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return SpendingSummary{}, fmt.Errorf("failed to decode spending summary: %w", err)
	}
	return summary, nil
}

// fallbackSpending returns the sample summary whenever src fails.
func fallbackSpending(ctx context.Context, src SpendingSource, userID string, logger *slog.Logger) SpendingSummary {
	if src == nil {
		return SampleSpendingSummary()
	}
	summary, err := src.SpendingSummary(ctx, userID)
	if err != nil {
		logger.Warn("could not fetch spending data", "user_id", userID, "error", err)
		return SampleSpendingSummary()
	}
	return summary
}
