package spatial

import (
	"math"
	"strings"

	"roomSenseAi/internal/storage"
)

// Depth is a heuristic proxy, not a measured value: each depth cue nudges the
// estimate up from the base, capped at 1.
const (
	depthBase    = 0.5
	depthPerCue  = 0.1
	depthDefault = 0.6
)

// Derive computes proportion metrics from a parsed spatial analysis. It is
// pure and deterministic, and layers the derived data onto a copy of the
// input without mutating it.
func Derive(analysis storage.Analysis) storage.EnrichedAnalysis {
	proportions := storage.ProportionSummary{
		EstimatedRoomDepth: depthDefault,
	}
	var measurements []storage.Measurement

	if sofa, ok := findSofa(analysis.Furniture); ok {
		proportions.SofaRoomWidthRatio = ratio(sofa.Box.Width)
		proportions.SofaRoomHeightRatio = ratio(sofa.Box.Height)
		measurements = append(measurements, storage.Measurement{
			ID:          sofa.ID,
			Label:       "Sofa footprint",
			WidthRatio:  ratio(sofa.Box.Width),
			HeightRatio: ratio(sofa.Box.Height),
		})
	}

	if avg, ok := averageWalkwayWidth(analysis.Walkways); ok {
		proportions.WalkwayWidthRatio = ratio(avg)
		measurements = append(measurements, storage.Measurement{
			ID:         "walkway-average",
			Label:      "Average walkway width",
			WidthRatio: ratio(avg),
		})
	}

	if len(analysis.Windows) > 0 {
		total := sumWidths(analysis.Windows)
		proportions.WindowWallRatio = ratio(total)
		measurements = append(measurements, storage.Measurement{
			ID:         "windows-total",
			Label:      "Total window width",
			WidthRatio: ratio(total),
		})
	}

	if len(analysis.Doors) > 0 {
		total := sumWidths(analysis.Doors)
		proportions.DoorWallRatio = ratio(total)
		measurements = append(measurements, storage.Measurement{
			ID:         "doors-total",
			Label:      "Total door width",
			WidthRatio: ratio(total),
		})
	}

	if len(analysis.DepthCues) > 0 {
		proportions.EstimatedRoomDepth = math.Min(1, float64(len(analysis.DepthCues))*depthPerCue+depthBase)
	}

	return storage.EnrichedAnalysis{
		Analysis:     analysis,
		Proportions:  proportions,
		Measurements: measurements,
	}
}

// findSofa returns the first furniture entry whose label contains "sofa".
func findSofa(furniture []storage.Region) (storage.Region, bool) {
	for _, item := range furniture {
		if strings.Contains(strings.ToLower(item.Label), "sofa") {
			return item, true
		}
	}
	return storage.Region{}, false
}

// averageWalkwayWidth estimates each qualifying path's width as the larger
// extent of its point bounding box, then averages across paths. Paths with
// fewer than two points are ignored.
func averageWalkwayWidth(walkways []storage.Path) (float64, bool) {
	var total float64
	var count int

	for _, path := range walkways {
		if len(path.Points) < 2 {
			continue
		}

		minX, maxX := path.Points[0].X, path.Points[0].X
		minY, maxY := path.Points[0].Y, path.Points[0].Y
		for _, p := range path.Points[1:] {
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}

		total += math.Max(maxX-minX, maxY-minY)
		count++
	}

	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

func sumWidths(regions []storage.Region) float64 {
	var total float64
	for _, region := range regions {
		total += region.Box.Width
	}
	return total
}

func ratio(v float64) *float64 {
	return &v
}
