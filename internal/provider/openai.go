package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	openAIMaxTokens      int64 = 10000
	DefaultOpenAIBaseURL       = "https://api.openai.com/v1/"
)

// OpenAIClient calls the chat completions endpoint through the official SDK.
// SDK retries are disabled: a failed call is reported to the caller as is.
type OpenAIClient struct {
	client openai.Client
}

func NewOpenAIClient(baseURL string, httpClient *http.Client) *OpenAIClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OpenAIClient{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
	}
}

func (c *OpenAIClient) Call(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		MaxTokens: openai.Int(openAIMaxTokens),
	}, option.WithAPIKey(req.APIKey))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &ProviderError{
				Provider: OpenAI,
				Status:   apiErr.StatusCode,
				Body:     openAIErrorBody(apiErr),
			}
		}

		return "", fmt.Errorf("do request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func openAIErrorBody(apiErr *openai.Error) string {
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		body, err := io.ReadAll(apiErr.Response.Body)
		if err == nil && len(body) > 0 {
			return string(body)
		}
	}

	return apiErr.RawJSON()
}
