package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/finshare-ai/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid config", config: Config{APIKey: "test-key"}},
		{name: "missing API key", config: Config{}, wantErr: true},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "gpt-4",
				Temperature: 0.5,
				MaxTokens:   200,
				BaseURL:     "http://localhost:1234/v1/",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newOpenAIClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ProviderOpenAI, client.Provider())
			if tt.config.BaseURL != "" {
				assert.Equal(t, "http://localhost:1234/v1", client.baseURL)
			}
		})
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"{\"category\":\"Shopping\"}"}}]}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), Request{System: "sys", Prompt: "hello", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"category":"Shopping"}`, resp.Text)
	assert.Equal(t, "gpt-4o-mini", resp.Model)

	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
}

func TestOpenAIGenerateErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantRetryable bool
		retryAfter    string
		wantAfter     time.Duration
		wantRateLimit bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":"slow down"}`, wantRetryable: true, wantRateLimit: true},
		{name: "rate limited with retry-after", status: http.StatusTooManyRequests, retryAfter: "2", wantAfter: 2 * time.Second, wantRetryable: true, wantRateLimit: true},
		{name: "server error", status: http.StatusBadGateway, body: `oops`, wantRetryable: true},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"bad"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), Request{Prompt: "x"})
			require.Error(t, err)

			var retryable *common.RetryableError
			require.True(t, errors.As(err, &retryable))
			assert.Equal(t, tt.wantRetryable, retryable.Retryable)
			assert.Equal(t, tt.wantAfter, retryable.RetryAfter)
			assert.Equal(t, tt.wantRateLimit, errors.Is(err, common.ErrRateLimit))
		})
	}
}

func TestOpenAIGenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorContains(t, err, "no completion choices")
}

func TestAnthropicGenerate(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"id":"1","model":"claude","content":[{"type":"text","text":"Hi there"}]}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, client.Provider())

	resp, err := client.Generate(context.Background(), Request{System: "Be brief.", Prompt: "hello", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", resp.Text)
	assert.Contains(t, got["system"], "Be brief.")
	assert.Contains(t, got["system"], "JSON object")

	_, err = newAnthropicClient(Config{})
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	client, err := NewClient(ctx, Config{Provider: "OpenAI", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, client.Provider())

	client, err = NewClient(ctx, Config{Provider: "anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, client.Provider())

	_, err = NewClient(ctx, Config{Provider: "gemini"})
	assert.ErrorContains(t, err, "API key is required")

	_, err = NewClient(ctx, Config{Provider: "llama"})
	assert.ErrorContains(t, err, "unsupported LLM provider")

	assert.False(t, Enabled(Config{Provider: "openai"}))
	assert.False(t, Enabled(Config{APIKey: "k"}))
	assert.True(t, Enabled(Config{Provider: "openai", APIKey: "k"}))
}
