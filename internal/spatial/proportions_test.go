package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomSenseAi/internal/storage"
)

func TestDerive_SofaRatios(t *testing.T) {
	analysis := storage.Analysis{
		Furniture: []storage.Region{
			{ID: "sofa-1", Label: "Navy Sofa", Box: storage.NormalizedBox{X: 0.1, Y: 0.5, Width: 0.3, Height: 0.25}},
		},
	}

	enriched := Derive(analysis)

	require.NotNil(t, enriched.Proportions.SofaRoomWidthRatio)
	require.NotNil(t, enriched.Proportions.SofaRoomHeightRatio)
	assert.InDelta(t, 0.3, *enriched.Proportions.SofaRoomWidthRatio, 1e-9)
	assert.InDelta(t, 0.25, *enriched.Proportions.SofaRoomHeightRatio, 1e-9)

	require.Len(t, enriched.Measurements, 1)
	assert.Equal(t, "sofa-1", enriched.Measurements[0].ID)
	assert.Equal(t, "Sofa footprint", enriched.Measurements[0].Label)
}

func TestDerive_NoSofa(t *testing.T) {
	analysis := storage.Analysis{
		Furniture: []storage.Region{
			{ID: "table-1", Label: "dining table", Box: storage.NormalizedBox{Width: 0.4, Height: 0.3}},
		},
	}

	enriched := Derive(analysis)

	assert.Nil(t, enriched.Proportions.SofaRoomWidthRatio)
	assert.Nil(t, enriched.Proportions.SofaRoomHeightRatio)
	assert.Empty(t, enriched.Measurements)
}

func TestDerive_SofaLabelMatchIsCaseInsensitive(t *testing.T) {
	analysis := storage.Analysis{
		Furniture: []storage.Region{
			{ID: "couch", Label: "SOFA sectional", Box: storage.NormalizedBox{Width: 0.5, Height: 0.2}},
		},
	}

	enriched := Derive(analysis)
	require.NotNil(t, enriched.Proportions.SofaRoomWidthRatio)
	assert.InDelta(t, 0.5, *enriched.Proportions.SofaRoomWidthRatio, 1e-9)
}

func TestDerive_WalkwayAverage(t *testing.T) {
	analysis := storage.Analysis{
		Walkways: []storage.Path{
			{ID: "p1", Points: []storage.Point{{X: 0.1, Y: 0.8}, {X: 0.3, Y: 0.85}}},
			{ID: "p2", Points: []storage.Point{{X: 0.5, Y: 0.2}, {X: 0.5, Y: 0.6}}},
			{ID: "degenerate", Points: []storage.Point{{X: 0.9, Y: 0.9}}},
		},
	}

	enriched := Derive(analysis)

	// p1 spans 0.2 horizontally, p2 spans 0.4 vertically; single-point paths
	// are skipped.
	require.NotNil(t, enriched.Proportions.WalkwayWidthRatio)
	assert.InDelta(t, 0.3, *enriched.Proportions.WalkwayWidthRatio, 1e-9)

	require.Len(t, enriched.Measurements, 1)
	assert.Equal(t, "walkway-average", enriched.Measurements[0].ID)
	assert.Nil(t, enriched.Measurements[0].HeightRatio)
}

func TestDerive_WindowAndDoorTotals(t *testing.T) {
	analysis := storage.Analysis{
		Windows: []storage.Region{
			{ID: "w1", Box: storage.NormalizedBox{Width: 0.2}},
			{ID: "w2", Box: storage.NormalizedBox{Width: 0.15}},
		},
		Doors: []storage.Region{
			{ID: "d1", Box: storage.NormalizedBox{Width: 0.1}},
		},
	}

	enriched := Derive(analysis)

	require.NotNil(t, enriched.Proportions.WindowWallRatio)
	require.NotNil(t, enriched.Proportions.DoorWallRatio)
	assert.InDelta(t, 0.35, *enriched.Proportions.WindowWallRatio, 1e-9)
	assert.InDelta(t, 0.1, *enriched.Proportions.DoorWallRatio, 1e-9)
}

func TestDerive_DepthEstimate(t *testing.T) {
	withCues := Derive(storage.Analysis{DepthCues: []string{"a", "b", "c"}})
	assert.InDelta(t, 0.8, withCues.Proportions.EstimatedRoomDepth, 1e-9)

	noCues := Derive(storage.Analysis{})
	assert.InDelta(t, 0.6, noCues.Proportions.EstimatedRoomDepth, 1e-9)

	manyCues := Derive(storage.Analysis{DepthCues: []string{"a", "b", "c", "d", "e", "f", "g"}})
	assert.InDelta(t, 1.0, manyCues.Proportions.EstimatedRoomDepth, 1e-9)
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	analysis := storage.Analysis{
		Furniture: []storage.Region{
			{ID: "sofa-1", Label: "sofa", Box: storage.NormalizedBox{Width: 0.3, Height: 0.2}},
		},
	}
	before := analysis.Furniture[0]

	first := Derive(analysis)
	second := Derive(analysis)

	assert.Equal(t, before, analysis.Furniture[0])
	assert.Equal(t, first.Proportions, second.Proportions)
	assert.Equal(t, first.Measurements, second.Measurements)
}
