// Package overlay draws an enriched spatial analysis as an SVG layered over
// the source photo. Coordinates are normalized [0,1]; the drawing uses a
// 0-100 percentage viewBox so the overlay scales with the displayed image.
package overlay

import (
	"fmt"
	"strings"

	"roomSenseAi/internal/storage"
)

const viewSize = 100.0

// Visual encodings per category. Categories must be distinguishable without
// reading labels; the highlight style overrides stroke and weight when a
// suggestion referencing the region is hovered.
const (
	windowStroke      = "#0ea5e9"
	doorStroke        = "#d97706"
	furnitureStroke   = "#10b981"
	walkwayStroke     = "#818cf8"
	emptyZoneStroke   = "#a3e635"
	obstructionStroke = "#ef4444"
	highlightStroke   = "#facc15"

	baseStrokeWidth      = 0.5
	highlightStrokeWidth = 1.2
)

// Render produces the overlay SVG. When highlightID matches a region id, that
// region is drawn in the highlight style.
func Render(analysis storage.EnrichedAnalysis, highlightID string) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" preserveAspectRatio="none">`,
		viewSize, viewSize))
	builder.WriteString("\n")

	for _, elem := range renderBoxes(analysis.Windows, windowStroke, "none", 0, highlightID) {
		writeElement(&builder, elem)
	}
	for _, elem := range renderBoxes(analysis.Doors, doorStroke, "none", 0, highlightID) {
		writeElement(&builder, elem)
	}
	for _, elem := range renderFurniture(analysis.Furniture, highlightID) {
		writeElement(&builder, elem)
	}
	for _, elem := range renderWalkways(analysis.Walkways, highlightID) {
		writeElement(&builder, elem)
	}
	for _, elem := range renderEmptyZones(analysis.EmptyZones, highlightID) {
		writeElement(&builder, elem)
	}
	for _, elem := range renderBoxes(analysis.Obstructions, obstructionStroke, obstructionStroke, 0.35, highlightID) {
		writeElement(&builder, elem)
	}

	builder.WriteString(`</svg>`)
	return builder.String()
}

func writeElement(builder *strings.Builder, elem string) {
	builder.WriteString("  ")
	builder.WriteString(elem)
	builder.WriteString("\n")
}

func renderBoxes(regions []storage.Region, stroke, fill string, fillOpacity float64, highlightID string) []string {
	var out []string
	for _, region := range regions {
		x, y, w, h := clampBox(region.Box)
		attrs := fmt.Sprintf(`x="%s" y="%s" width="%s" height="%s"`, pct(x), pct(y), pct(w), pct(h))
		style := strokeStyle(stroke, region.ID == highlightID)
		if fill != "none" && fillOpacity > 0 {
			style += fmt.Sprintf(` fill="%s" fill-opacity="%.2f"`, fill, fillOpacity)
		} else {
			style += ` fill="none"`
		}
		out = append(out, fmt.Sprintf(`<rect id="%s" %s %s />`, region.ID, attrs, style))
	}
	return out
}

func renderFurniture(regions []storage.Region, highlightID string) []string {
	var out []string
	for _, region := range regions {
		x, y, w, h := clampBox(region.Box)
		style := strokeStyle(furnitureStroke, region.ID == highlightID) + ` fill="none"`
		out = append(out, fmt.Sprintf(`<rect id="%s" x="%s" y="%s" width="%s" height="%s" %s />`,
			region.ID, pct(x), pct(y), pct(w), pct(h), style))

		if region.Label != "" {
			labelY := y*viewSize - 1
			if labelY < 2 {
				labelY = y*viewSize + 3
			}
			out = append(out, fmt.Sprintf(`<text x="%s" y="%.2f" font-size="2.5" fill="%s">%s</text>`,
				pct(x), labelY, furnitureStroke, escapeText(region.Label)))
		}
	}
	return out
}

func renderWalkways(paths []storage.Path, highlightID string) []string {
	var out []string
	for _, path := range paths {
		if len(path.Points) < 2 {
			continue
		}
		points := make([]string, 0, len(path.Points))
		for _, p := range path.Points {
			points = append(points, fmt.Sprintf("%s,%s", pct(clamp01(p.X)), pct(clamp01(p.Y))))
		}
		style := strokeStyle(walkwayStroke, path.ID == highlightID)
		out = append(out, fmt.Sprintf(`<polyline id="%s" points="%s" %s stroke-dasharray="2,1.5" fill="none" />`,
			path.ID, strings.Join(points, " "), style))
	}
	return out
}

func renderEmptyZones(regions []storage.Region, highlightID string) []string {
	var out []string
	for _, region := range regions {
		x, y, w, h := clampBox(region.Box)
		style := strokeStyle(emptyZoneStroke, region.ID == highlightID)
		out = append(out, fmt.Sprintf(
			`<rect id="%s" x="%s" y="%s" width="%s" height="%s" %s stroke-dasharray="1.5,1.5" fill="%s" fill-opacity="0.15" />`,
			region.ID, pct(x), pct(y), pct(w), pct(h), style, emptyZoneStroke))
	}
	return out
}

func strokeStyle(stroke string, highlighted bool) string {
	width := baseStrokeWidth
	if highlighted {
		stroke = highlightStroke
		width = highlightStrokeWidth
	}
	return fmt.Sprintf(`stroke="%s" stroke-width="%.1f"`, stroke, width)
}

// clampBox forces the box into the unit square so malformed upstream
// coordinates never draw outside the image or invert an extent.
func clampBox(box storage.NormalizedBox) (x, y, w, h float64) {
	x = clamp01(box.X)
	y = clamp01(box.Y)
	w = clamp01(box.Width)
	h = clamp01(box.Height)
	if x+w > 1 {
		w = 1 - x
	}
	if y+h > 1 {
		h = 1 - y
	}
	return x, y, w, h
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f", v*viewSize)
}

func escapeText(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}
