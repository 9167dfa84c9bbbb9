package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	anthropicMaxTokens      int64 = 8192
	DefaultAnthropicBaseURL       = "https://api.anthropic.com/"
)

// AnthropicClient calls the messages endpoint through the official SDK.
// Like OpenAIClient it never retries.
type AnthropicClient struct {
	client anthropic.Client
}

func NewAnthropicClient(baseURL string, httpClient *http.Client) *AnthropicClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultAnthropicBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &AnthropicClient{
		client: anthropic.NewClient(
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
	}
}

func (c *AnthropicClient) Call(ctx context.Context, req Request) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: req.SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}, option.WithAPIKey(req.APIKey))
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &ProviderError{
				Provider: Anthropic,
				Status:   apiErr.StatusCode,
				Body:     anthropicErrorBody(apiErr),
			}
		}

		return "", fmt.Errorf("do request: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", errors.New("anthropic: empty content")
}

func anthropicErrorBody(apiErr *anthropic.Error) string {
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		body, err := io.ReadAll(apiErr.Response.Body)
		if err == nil && len(body) > 0 {
			return string(body)
		}
	}

	return apiErr.RawJSON()
}
