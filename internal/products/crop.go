package products

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"

	_ "image/gif"
	_ "image/jpeg"
)

// CropRegion selects a pixel rectangle of the source image to focus the
// keyword extraction on a single highlighted item.
type CropRegion struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// cropImage extracts the region and re-encodes it as PNG. A nil region
// returns the original bytes with their sniffed MIME type. Out-of-bounds
// regions are clamped rather than rejected.
func cropImage(data []byte, region *CropRegion) ([]byte, string, error) {
	if region == nil {
		return data, http.DetectContentType(data), nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("products: decode image: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	left := clampInt(int(region.X+0.5), 0, max(0, width-1))
	top := clampInt(int(region.Y+0.5), 0, max(0, height-1))
	cropWidth := clampInt(int(region.Width+0.5), 1, width-left)
	cropHeight := clampInt(int(region.Height+0.5), 1, height-top)

	rect := image.Rect(bounds.Min.X+left, bounds.Min.Y+top,
		bounds.Min.X+left+cropWidth, bounds.Min.Y+top+cropHeight)

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}

	var cropped image.Image
	if sub, ok := src.(subImager); ok {
		cropped = sub.SubImage(rect)
	} else {
		cropped = src
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, "", fmt.Errorf("products: encode crop: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
