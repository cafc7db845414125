package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"roomSenseAi/internal/fault"
)

const defaultGeminiModel = "gemini-2.5-flash-lite"

// GeminiClient wraps the Google Generative Language API. It backs the
// decoration analyzer when no Anthropic credential is configured.
type GeminiClient struct {
	apiKey      string
	model       string
	endpoint    string
	client      *http.Client
	tokenSource oauth2.TokenSource
}

// NewGeminiClient constructs a Gemini client for the desired model. Either an
// API key or an oauth2 token source must be supplied.
func NewGeminiClient(apiKey, model string, timeout time.Duration, tokenSource oauth2.TokenSource) *GeminiClient {
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		apiKey:      apiKey,
		model:       model,
		endpoint:    "https://generativelanguage.googleapis.com/v1beta",
		client:      &http.Client{Timeout: timeout},
		tokenSource: tokenSource,
	}
}

// WithEndpoint overrides the API base URL. Used by tests.
func (c *GeminiClient) WithEndpoint(endpoint string) *GeminiClient {
	c.endpoint = strings.TrimSuffix(endpoint, "/")
	return c
}

// Complete sends the messages to Gemini and concatenates all returned text
// parts. System-role messages become the systemInstruction.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	var systemPrompts []string
	var contents []map[string]any

	for _, msg := range req.Messages {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		switch role {
		case "system":
			for _, block := range msg.Blocks {
				if block.Text != "" {
					systemPrompts = append(systemPrompts, block.Text)
				}
			}
			continue
		case "assistant":
			role = "model"
		default:
			role = "user"
		}

		parts := make([]map[string]any, 0, len(msg.Blocks))
		for _, block := range msg.Blocks {
			if block.Image != nil {
				parts = append(parts, map[string]any{
					"inline_data": map[string]string{
						"mime_type": block.Image.MIME,
						"data":      block.Image.Base64,
					},
				})
				continue
			}
			parts = append(parts, map[string]any{"text": block.Text})
		}
		contents = append(contents, map[string]any{
			"role":  role,
			"parts": parts,
		})
	}

	if len(contents) == 0 {
		return "", fmt.Errorf("llm: gemini request has no user messages")
	}

	generationConfig := map[string]any{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		generationConfig["maxOutputTokens"] = req.MaxTokens
	}

	payload := map[string]any{
		"contents":         contents,
		"generationConfig": generationConfig,
	}
	if len(systemPrompts) > 0 {
		payload["systemInstruction"] = map[string]any{
			"parts": []map[string]string{
				{"text": strings.Join(systemPrompts, "\n\n")},
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm: marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, url.PathEscape(c.model))
	if c.tokenSource == nil {
		if strings.TrimSpace(c.apiKey) == "" {
			return "", fault.NotConfigured("google api key")
		}
		endpoint = fmt.Sprintf("%s?key=%s", endpoint, url.QueryEscape(c.apiKey))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if c.tokenSource != nil {
		token, err := c.tokenSource.Token()
		if err != nil {
			return "", fmt.Errorf("llm: fetch oauth token: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: perform gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return "", fmt.Errorf("llm: gemini status %d: %s", resp.StatusCode, failure.Error.Message)
	}

	var completion struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("llm: decode gemini response: %w", err)
	}

	if len(completion.Candidates) == 0 || len(completion.Candidates[0].Content.Parts) == 0 {
		return "", fault.ErrEmptyModelResponse
	}

	var text strings.Builder
	for _, part := range completion.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fault.ErrEmptyModelResponse
	}
	return text.String(), nil
}
