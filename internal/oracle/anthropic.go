package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const anthropicAPI = "https://api.anthropic.com/v1/messages"

// prefill starts the assistant turn so the reply continues a JSON object.
const prefill = "{"

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	APIKey     string
	URL        string
	MaxTokens  int
	HTTPClient *http.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		APIKey:     apiKey,
		URL:        anthropicAPI,
		MaxTokens:  1024,
		HTTPClient: defaultHTTPClient(),
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

var errTruncated = errors.New("completion hit the token limit")

// Generate returns the completion with the prefill restored, so callers
// see the whole JSON object.
func (c *AnthropicClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	status, raw, err := postJSON(ctx, c.HTTPClient, c.URL, map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": "2023-06-01",
	}, messagesRequest{
		Model:     model,
		MaxTokens: c.MaxTokens,
		System:    systemPrompt,
		Messages: []message{
			{Role: "user", Content: prompt},
			{Role: "assistant", Content: prefill},
		},
	})
	if err != nil {
		return "", err
	}

	var resp messagesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		if status != http.StatusOK {
			return "", statusError(status, raw)
		}
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("API error (%s): %s", resp.Error.Type, resp.Error.Message)
	}
	if status != http.StatusOK {
		return "", statusError(status, raw)
	}
	if resp.StopReason == "max_tokens" {
		return "", errTruncated
	}

	var sb strings.Builder
	sb.WriteString(prefill)
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == len(prefill) {
		return "", fmt.Errorf("empty response from API")
	}
	return sb.String(), nil
}
