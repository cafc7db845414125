// Package spatial turns a room photograph into a structured layout
// description with derived proportion metrics and design suggestions.
package spatial

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"roomSenseAi/internal/fault"
	"roomSenseAi/internal/jsonx"
	"roomSenseAi/internal/llm"
	"roomSenseAi/internal/storage"
)

// MaxImageBytes caps how much image data is fetched and forwarded to the
// vision model.
const MaxImageBytes = 7 * 1024 * 1024

const spatialPrompt = `You are a spatial intelligence system for interior design. ` +
	`Analyze the room image and output STRICT JSON with normalized (0-1) coordinates relative to the full image width/height. ` +
	`Structure:
{
  "windows": [{ "id": "window-1", "box": { "x": 0.1, "y": 0.05, "width": 0.25, "height": 0.2 } }],
  "doors": [...],
  "furniture": [{ "id": "sofa", "label": "blue modern sofa", "box": {...} }],
  "walkways": [{ "id": "path-1", "points": [{ "x": 0.2, "y": 0.8 }, ...] }],
  "empty_zones": [{ "id": "corner-1", "box": {...}, "note": "open corner" }],
  "obstructions": [{ "id": "chair-block", "label": "accent chair", "box": {...} }],
  "depth_cues": ["strong perspective towards back wall", ...],
  "metadata": { "notes": ["door swings inward"], "circulation": ["entry -> sofa -> window seating"] }
}
Ensure every coordinate is between 0 and 1. Include at least walkways, furniture, and windows when visible.`

// Analyzer obtains a structured spatial description of a room photo from a
// vision model and enriches it with derived proportions.
type Analyzer struct {
	llm    llm.Client
	client *http.Client
}

// NewAnalyzer constructs an analyzer backed by the given vision client.
func NewAnalyzer(client llm.Client, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Analyzer{
		llm:    client,
		client: &http.Client{Timeout: timeout},
	}
}

// Analyze fetches the image, asks the vision model for the spatial JSON and
// returns the enriched result. The credential check happens before any image
// fetch so a misconfigured provider fails without wasted work.
func (a *Analyzer) Analyze(ctx context.Context, imageURL, userPrompt string) (storage.EnrichedAnalysis, error) {
	if a == nil || a.llm == nil {
		return storage.EnrichedAnalysis{}, fault.NotConfigured("vision model")
	}

	encoded, mime, err := a.fetchImage(ctx, imageURL)
	if err != nil {
		return storage.EnrichedAnalysis{}, err
	}

	blocks := []llm.Block{
		llm.TextBlock(spatialPrompt),
		llm.ImageBlock(mime, encoded),
	}
	if strings.TrimSpace(userPrompt) != "" {
		blocks = append(blocks, llm.TextBlock("User request/context: "+userPrompt))
	}

	text, err := a.llm.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "user", Blocks: blocks}},
		MaxTokens:   800,
		Temperature: 0,
	})
	if err != nil {
		return storage.EnrichedAnalysis{}, fmt.Errorf("spatial: describe room: %w", err)
	}

	var analysis storage.Analysis
	if err := jsonx.Extract(text, &analysis); err != nil {
		return storage.EnrichedAnalysis{}, fmt.Errorf("spatial: %w", err)
	}

	return Derive(analysis), nil
}

func (a *Analyzer) fetchImage(ctx context.Context, imageURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("spatial: fetch %s: %w", imageURL, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("spatial: fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", "", &fault.FetchError{URL: imageURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return "", "", fmt.Errorf("spatial: read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", "", fmt.Errorf("spatial: image exceeds %d bytes", MaxImageBytes)
	}

	return base64.StdEncoding.EncodeToString(data), mimeFromHeader(resp.Header.Get("Content-Type")), nil
}

// mimeFromHeader keeps only the media type of a Content-Type header and
// falls back to image/png when absent.
func mimeFromHeader(contentType string) string {
	mime := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if mime == "" {
		return "image/png"
	}
	return mime
}
