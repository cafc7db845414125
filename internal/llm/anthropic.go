package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"roomSenseAi/internal/fault"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"

	defaultAnthropicModel = "claude-3-7-sonnet-20250219"
)

// AnthropicClient wraps the Anthropic Messages API.
type AnthropicClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnthropicClient constructs a client for the desired model.
func NewAnthropicClient(apiKey, model string, timeout time.Duration) *AnthropicClient {
	if strings.TrimSpace(model) == "" {
		model = defaultAnthropicModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnthropicClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: anthropicEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// WithEndpoint overrides the API endpoint. Used by tests.
func (c *AnthropicClient) WithEndpoint(endpoint string) *AnthropicClient {
	c.endpoint = endpoint
	return c
}

// Complete sends the messages to Anthropic and concatenates all text blocks
// from the reply.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", fault.NotConfigured("anthropic api key")
	}

	messages := make([]map[string]any, 0, len(req.Messages))
	for _, msg := range req.Messages {
		content := make([]map[string]any, 0, len(msg.Blocks))
		for _, block := range msg.Blocks {
			if block.Image != nil {
				content = append(content, map[string]any{
					"type": "image",
					"source": map[string]string{
						"type":       "base64",
						"media_type": block.Image.MIME,
						"data":       block.Image.Base64,
					},
				})
				continue
			}
			content = append(content, map[string]any{
				"type": "text",
				"text": block.Text,
			})
		}
		messages = append(messages, map[string]any{
			"role":    msg.Role,
			"content": content,
		})
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}

	payload := map[string]any{
		"model":       c.model,
		"max_tokens":  maxTokens,
		"temperature": req.Temperature,
		"messages":    messages,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm: marshal anthropic payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: perform anthropic request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return "", fmt.Errorf("llm: anthropic status %d: %s", resp.StatusCode, failure.Error.Message)
	}

	var completion struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("llm: decode anthropic response: %w", err)
	}

	var text strings.Builder
	for _, block := range completion.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fault.ErrEmptyModelResponse
	}
	return text.String(), nil
}
