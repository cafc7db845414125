package spatial

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"roomSenseAi/internal/fault"
	"roomSenseAi/internal/jsonx"
	"roomSenseAi/internal/llm"
	"roomSenseAi/internal/storage"
)

const suggestionPrompt = `You are an interior design strategist. Given the spatial JSON describing a room layout, ` +
	`identify layout issues, suggest improvements referencing region IDs, and propose generic product ideas ` +
	`that can be passed to an e-commerce search. Respond ONLY in JSON with:
{
  "layout_issues": [{ "id": "...", "description": "...", "region_ref": "sofa-1" }],
  "improvement_suggestions": [{ "id": "...", "description": "...", "region_ref": "window-1" }],
  "product_suggestions": [{ "id": "...", "query": "sheer curtains", "notes": "for window-1" }],
  "measurements": [{ "id": "walkway-1", "description": "Walkway approx 2.1 ft", "region_ref": "path-1" }]
}
Tie regions back to the spatial JSON (use the provided IDs). ` +
	`Product suggestions should be generic item types (e.g., "round side table", "sheer curtains", "5x8 rug"). ` +
	`Measurements can be proportional estimates even if approximate.`

// Suggester turns an enriched spatial analysis into actionable design
// suggestions via a language model.
type Suggester struct {
	llm llm.Client
}

// NewSuggester constructs a suggester backed by the given chat client.
func NewSuggester(client llm.Client) *Suggester {
	return &Suggester{llm: client}
}

// Suggest asks the model for layout issues, improvements, product ideas and
// measurements. The spatial JSON is serialized verbatim into the prompt so
// the model can only reference region IDs it was actually given.
func (s *Suggester) Suggest(ctx context.Context, analysis storage.EnrichedAnalysis, userPrompt string) (storage.Suggestions, error) {
	if s == nil || s.llm == nil {
		return storage.Suggestions{}, fault.NotConfigured("suggestion model")
	}

	spatialJSON, err := json.Marshal(analysis)
	if err != nil {
		return storage.Suggestions{}, fmt.Errorf("spatial: marshal analysis: %w", err)
	}

	blocks := []llm.Block{
		llm.TextBlock(suggestionPrompt),
		llm.TextBlock("Spatial JSON:\n" + string(spatialJSON)),
	}
	if strings.TrimSpace(userPrompt) != "" {
		blocks = append(blocks, llm.TextBlock("User instructions/context: "+userPrompt))
	}

	text, err := s.llm.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "user", Blocks: blocks}},
		MaxTokens:   800,
		Temperature: 0,
	})
	if err != nil {
		return storage.Suggestions{}, fmt.Errorf("spatial: suggest: %w", err)
	}

	var suggestions storage.Suggestions
	if err := jsonx.Extract(text, &suggestions); err != nil {
		return storage.Suggestions{}, fmt.Errorf("spatial: %w", err)
	}
	return suggestions, nil
}
