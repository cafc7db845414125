package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates that no cached result exists for the given image URL.
var ErrNotFound = errors.New("analysis not found")

// NormalizedBox positions a region as fractions of the image width/height.
// Upstream models are asked for [0,1] values but do not guarantee them;
// consumers clamp before drawing.
type NormalizedBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a single normalized coordinate on a walkway polyline.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is a detected structural or furniture element.
type Region struct {
	ID    string        `json:"id"`
	Label string        `json:"label,omitempty"`
	Box   NormalizedBox `json:"box"`
	Note  string        `json:"note,omitempty"`
}

// Path is a circulation route described as an ordered polyline.
type Path struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	Label  string  `json:"label,omitempty"`
}

// Metadata carries free-text observations from the vision model.
type Metadata struct {
	Notes       []string `json:"notes,omitempty"`
	Circulation []string `json:"circulation,omitempty"`
}

// Analysis is the parsed spatial description of a room photo. Every field is
// optional; an absent category means nothing was detected, not an error.
type Analysis struct {
	Windows      []Region `json:"windows,omitempty"`
	Doors        []Region `json:"doors,omitempty"`
	Furniture    []Region `json:"furniture,omitempty"`
	Walkways     []Path   `json:"walkways,omitempty"`
	EmptyZones   []Region `json:"empty_zones,omitempty"`
	Obstructions []Region `json:"obstructions,omitempty"`
	DepthCues    []string `json:"depth_cues,omitempty"`
	Metadata     Metadata `json:"metadata,omitempty"`
}

// ProportionSummary holds derived geometric ratios. A nil pointer means the
// underlying entity was absent from the analysis.
type ProportionSummary struct {
	SofaRoomWidthRatio  *float64 `json:"sofa_room_width_ratio"`
	SofaRoomHeightRatio *float64 `json:"sofa_room_height_ratio"`
	WalkwayWidthRatio   *float64 `json:"walkway_width_ratio"`
	EstimatedRoomDepth  float64  `json:"estimated_room_depth"`
	WindowWallRatio     *float64 `json:"window_wall_ratio"`
	DoorWallRatio       *float64 `json:"door_wall_ratio"`
}

// Measurement is a flattened, human-presentable proportion entry.
type Measurement struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	WidthRatio  *float64 `json:"width_ratio,omitempty"`
	HeightRatio *float64 `json:"height_ratio,omitempty"`
}

// EnrichedAnalysis layers derived proportions and measurements onto the raw
// analysis. It is created once per successful model call and never mutated.
type EnrichedAnalysis struct {
	Analysis
	Proportions  ProportionSummary `json:"proportions"`
	Measurements []Measurement     `json:"measurements"`
}

// SuggestionItem is one design-suggestion entry. RegionRef, when present, is
// expected to match a region id in the analysis the suggestion was derived
// from; it is advisory and not validated at parse time.
type SuggestionItem struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Query       string `json:"query,omitempty"`
	Notes       string `json:"notes,omitempty"`
	RegionRef   string `json:"region_ref,omitempty"`
}

// Suggestions is the parsed design-suggestion payload.
type Suggestions struct {
	LayoutIssues           []SuggestionItem `json:"layout_issues,omitempty"`
	ImprovementSuggestions []SuggestionItem `json:"improvement_suggestions,omitempty"`
	ProductSuggestions     []SuggestionItem `json:"product_suggestions,omitempty"`
	Measurements           []SuggestionItem `json:"measurements,omitempty"`
}

// Store caches analysis results keyed by the image URL that produced them.
// Repeat requests for the same image are idempotent and served from here
// instead of re-invoking the external model.
type Store interface {
	SaveAnalysis(ctx context.Context, imageURL string, analysis EnrichedAnalysis) error
	GetAnalysis(ctx context.Context, imageURL string) (EnrichedAnalysis, error)
	SaveSuggestions(ctx context.Context, imageURL string, suggestions Suggestions) error
	GetSuggestions(ctx context.Context, imageURL string) (Suggestions, error)
	Close()
}

// NewStore selects the backing implementation: PostgreSQL when a database URL
// is configured, otherwise process memory.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
