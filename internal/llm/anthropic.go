package llm

import (
	"context"
	"errors"
	"strings"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
	// The messages API has no JSON mode, so the system prompt asks for it.
	anthropicJSONInstruction = "Respond with ONLY a valid JSON object. Start your response with { and end with }."
)

// anthropicClient implements Client for the Anthropic messages API.
type anthropicClient struct {
	httpAPI
	sampling
}

func newAnthropicClient(cfg Config) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	return &anthropicClient{
		httpAPI: newHTTPAPI("anthropic", cfg.BaseURL, anthropicBaseURL, map[string]string{
			"x-api-key":         cfg.APIKey,
			"anthropic-version": anthropicVersion,
		}),
		sampling: samplingFrom(cfg, "claude-3-5-haiku-latest"),
	}, nil
}

func (c *anthropicClient) Provider() string { return ProviderAnthropic }

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate sends a messages request.
func (c *anthropicClient) Generate(ctx context.Context, in Request) (Response, error) {
	system := in.System
	if in.JSON {
		system = strings.TrimSpace(system + "\n" + anthropicJSONInstruction)
	}

	var resp anthropicResponse
	err := c.post(ctx, "/messages", anthropicRequest{
		Model:       c.model,
		System:      system,
		Messages:    []anthropicMessage{{Role: "user", Content: in.Prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}, &resp)
	if err != nil {
		return Response{}, err
	}

	for _, block := range resp.Content {
		if block.Type == "text" || block.Type == "" {
			return Response{Text: block.Text, Model: resp.Model}, nil
		}
	}
	return Response{}, errors.New("no content in response")
}
