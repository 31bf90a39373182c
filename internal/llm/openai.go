package llm

import (
	"context"
	"errors"
)

const openAIBaseURL = "https://api.openai.com/v1"

// openAIClient implements Client for the OpenAI chat completions API.
type openAIClient struct {
	httpAPI
	sampling
}

func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	return &openAIClient{
		httpAPI:  newHTTPAPI("OpenAI", cfg.BaseURL, openAIBaseURL, map[string]string{"Authorization": "Bearer " + cfg.APIKey}),
		sampling: samplingFrom(cfg, "gpt-4o-mini"),
	}, nil
}

func (c *openAIClient) Provider() string { return ProviderOpenAI }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends a chat completion request.
func (c *openAIClient) Generate(ctx context.Context, in Request) (Response, error) {
	req := openAIRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if in.System != "" {
		req.Messages = append(req.Messages, openAIMessage{Role: "system", Content: in.System})
	}
	req.Messages = append(req.Messages, openAIMessage{Role: "user", Content: in.Prompt})
	if in.JSON {
		req.ResponseFormat = &openAIFormat{Type: "json_object"}
	}

	var resp openAIResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return Response{}, err
	}
	if len(resp.Choices) == 0 {
		return Response{}, errors.New("no completion choices returned")
	}
	return Response{Text: resp.Choices[0].Message.Content, Model: resp.Model}, nil
}
