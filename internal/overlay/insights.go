package overlay

import (
	"fmt"

	"roomSenseAi/internal/storage"
)

// maxPanelItems caps each insight section so the panel cannot grow without
// bound on chatty model output.
const maxPanelItems = 4

// Insights is the free-text panel shown alongside the overlay.
type Insights struct {
	Proportions []string `json:"proportions"`
	Notes       []string `json:"notes,omitempty"`
	DepthCues   []string `json:"depth_cues,omitempty"`
	Circulation []string `json:"circulation,omitempty"`
}

// BuildInsights summarizes derived ratios as human-readable sentences and
// carries over the model's notes, depth cues and circulation observations.
func BuildInsights(analysis storage.EnrichedAnalysis) Insights {
	var proportions []string

	if r := analysis.Proportions.SofaRoomWidthRatio; r != nil {
		proportions = append(proportions, fmt.Sprintf("Sofa spans %.0f%% of room width", *r*100))
	}
	if r := analysis.Proportions.WalkwayWidthRatio; r != nil {
		proportions = append(proportions, fmt.Sprintf("Average walkway is %.0f%% of the frame", *r*100))
	}
	if r := analysis.Proportions.WindowWallRatio; r != nil {
		proportions = append(proportions, fmt.Sprintf("Windows cover %.0f%% of the wall span", *r*100))
	}
	if r := analysis.Proportions.DoorWallRatio; r != nil {
		proportions = append(proportions, fmt.Sprintf("Doors cover %.0f%% of the wall span", *r*100))
	}
	proportions = append(proportions, fmt.Sprintf("Estimated room depth: %.0f%%", analysis.Proportions.EstimatedRoomDepth*100))

	return Insights{
		Proportions: capItems(proportions),
		Notes:       capItems(analysis.Metadata.Notes),
		DepthCues:   capItems(analysis.DepthCues),
		Circulation: capItems(analysis.Metadata.Circulation),
	}
}

func capItems(items []string) []string {
	if len(items) > maxPanelItems {
		return items[:maxPanelItems]
	}
	return items
}
