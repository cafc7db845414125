// Package decoration adds themed decor to room photos and reports which
// products the edit introduced.
package decoration

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

// EditClient drives the synchronous FAL image edit endpoint. The queue based
// FLUX client in the render package is for free-form restyling; this one keeps
// the original furniture and only layers decorations on top.
type EditClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewEditClient constructs a client for the FAL edit model.
func NewEditClient(apiKey string) *EditClient {
	return &EditClient{
		apiKey:   apiKey,
		endpoint: "https://fal.run/fal-ai/beta-image-232/edit",
		client:   &http.Client{Timeout: 90 * time.Second},
	}
}

// WithEndpoint overrides the API endpoint. Used by tests.
func (c *EditClient) WithEndpoint(endpoint string) *EditClient {
	c.endpoint = endpoint
	return c
}

// Configured reports whether the client holds credentials.
func (c *EditClient) Configured() bool {
	return c != nil && strings.TrimSpace(c.apiKey) != ""
}

// Decorate asks the edit model to add theme decorations to the image while
// preserving the furniture. imageURL may be a public URL or a data URL.
func (c *EditClient) Decorate(ctx context.Context, imageURL, theme string) (string, error) {
	if !c.Configured() {
		return "", fault.NotConfigured("fal api key")
	}

	payload := map[string]any{
		"image_urls":            []string{imageURL},
		"prompt":                fmt.Sprintf("Add %s decorations to the room, while keeping the original furniture.", theme),
		"image_size":            "landscape_16_9",
		"num_inference_steps":   30,
		"guidance_scale":        2.5,
		"num_images":            1,
		"enable_safety_checker": true,
		"output_format":         "png",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("decoration: marshal edit payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("decoration: create edit request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("decoration: perform edit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("decoration: edit status %d", resp.StatusCode)
	}

	var result struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoration: decode edit response: %w", err)
	}
	if len(result.Images) == 0 || result.Images[0].URL == "" {
		return "", fmt.Errorf("decoration: edit returned no images")
	}
	return result.Images[0].URL, nil
}
