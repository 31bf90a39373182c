package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sampling defaults shared by every provider.
const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 500
)

// sampling is the per-provider model selection and generation limits.
type sampling struct {
	model       string
	temperature float64
	maxTokens   int
}

func samplingFrom(cfg Config, defaultModel string) sampling {
	s := sampling{model: cfg.Model, temperature: cfg.Temperature, maxTokens: cfg.MaxTokens}
	if s.model == "" {
		s.model = defaultModel
	}
	if s.temperature == 0 {
		s.temperature = defaultTemperature
	}
	if s.maxTokens == 0 {
		s.maxTokens = defaultMaxTokens
	}
	return s
}

// httpAPI is a JSON-over-HTTPS provider endpoint.
type httpAPI struct {
	client   *http.Client
	provider string
	baseURL  string
	headers  map[string]string
}

func newHTTPAPI(provider, baseURL, defaultURL string, headers map[string]string) httpAPI {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultURL
	}
	return httpAPI{
		provider: provider,
		baseURL:  baseURL,
		headers:  headers,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// post sends in as JSON to path and decodes a 200 reply into out. Other
// statuses become retry-classified errors.
func (a httpAPI) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", a.provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(a.provider, resp, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", a.provider, err)
	}
	return nil
}
