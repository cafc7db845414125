package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"roomSenseAi/internal/media"
)

const defaultImageModel = "gemini-2.5-flash-image"

// GeminiGenerator renders rooms via Gemini inline image outputs. Unlike the
// FAL backend it generates from the prompt alone, so it serves as the last
// fallback when neither FAL nor Imagen is configured.
type GeminiGenerator struct {
	apiKey   string
	model    string
	timeout  time.Duration
	uploader media.Uploader
}

// NewGeminiGenerator constructs a generator able to request inline images.
func NewGeminiGenerator(apiKey, model string, timeout time.Duration, uploader media.Uploader) *GeminiGenerator {
	if strings.TrimSpace(model) == "" {
		model = defaultImageModel
	}
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiGenerator{
		apiKey:   apiKey,
		model:    model,
		timeout:  timeout,
		uploader: uploader,
	}
}

// Configured reports whether the generator can make requests.
func (g *GeminiGenerator) Configured() bool {
	return g != nil && strings.TrimSpace(g.apiKey) != "" && g.uploader != nil
}

// Generate requests a photorealistic image for the prompt, uploads it and
// returns its URL.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if !g.Configured() {
		return "", fmt.Errorf("render: image generator unavailable")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("render: prompt is required")
	}

	childCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(childCtx, &genai.ClientConfig{
		APIKey: g.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("render: create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(childCtx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("render: generate image: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("render: no candidates returned")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if strings.TrimSpace(mime) == "" {
			mime = "image/png"
		}

		result, err := media.UploadBytes(ctx, g.uploader, "gemini-render.png", mime, part.InlineData.Data)
		if err != nil {
			return "", fmt.Errorf("render: upload result: %w", err)
		}
		return result.URL, nil
	}
	return "", fmt.Errorf("render: reply carried no image data")
}
