package decoration

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"roomSenseAi/internal/llm"
	"roomSenseAi/internal/products"
)

// AnalysisResult is the shopping list derived from comparing the original and
// decorated photos.
type AnalysisResult struct {
	Products            []products.Product `json:"products"`
	OverallTheme        string             `json:"overallTheme"`
	ColorScheme         []string           `json:"colorScheme"`
	EstimatedTotalItems int                `json:"estimatedTotalItems"`
}

// Analyzer diffs a decorated photo against the original and extracts the
// decor items that were added. The primary model is consulted first; the
// fallback covers outages of the primary provider.
type Analyzer struct {
	primary  llm.Client
	fallback llm.Client
}

// NewAnalyzer constructs an analyzer. Either client may be nil.
func NewAnalyzer(primary, fallback llm.Client) *Analyzer {
	return &Analyzer{primary: primary, fallback: fallback}
}

// Configured reports whether at least one model is available.
func (a *Analyzer) Configured() bool {
	return a != nil && (a.primary != nil || a.fallback != nil)
}

// Analyze compares the two images and returns the added products. Images are
// data URLs or bare base64 payloads.
func (a *Analyzer) Analyze(ctx context.Context, originalImage, decoratedImage, theme string) (AnalysisResult, error) {
	if !a.Configured() {
		return AnalysisResult{}, fmt.Errorf("decoration: no analysis model configured")
	}

	prompt := fmt.Sprintf(`Describe what %s decorations were added to the image compared to the original image, and provide a structured shopping list of all items needed to recreate this look.

Please analyze the differences between these two images and provide:
1. A comprehensive list of all decorative items added
2. Categories for each item
3. Suggested quantities where visible
4. Amazon-friendly search terms for each item

Return the response in a structured format.`, theme)

	originalMime, originalData := splitImageData(originalImage)
	decoratedMime, decoratedData := splitImageData(decoratedImage)

	request := llm.Request{
		Messages: []llm.Message{{
			Role: "user",
			Blocks: []llm.Block{
				llm.ImageBlock(originalMime, originalData),
				llm.ImageBlock(decoratedMime, decoratedData),
				llm.TextBlock(prompt),
			},
		}},
		MaxTokens:   2048,
		Temperature: 0,
	}

	text, err := a.complete(ctx, request)
	if err != nil {
		return AnalysisResult{}, err
	}
	return buildResult(parseProductLines(text, theme), theme), nil
}

func (a *Analyzer) complete(ctx context.Context, request llm.Request) (string, error) {
	if a.primary != nil {
		text, err := a.primary.Complete(ctx, request)
		if err == nil {
			return text, nil
		}
		if a.fallback == nil {
			return "", fmt.Errorf("decoration: analyze images: %w", err)
		}
		log.Printf("decoration analysis via primary model failed, trying fallback: %v", err)
	}
	text, err := a.fallback.Complete(ctx, request)
	if err != nil {
		return "", fmt.Errorf("decoration: analyze images: %w", err)
	}
	return text, nil
}

// splitImageData accepts a data URL or a bare base64 string.
func splitImageData(imageStr string) (mime, data string) {
	if !strings.Contains(imageStr, "base64,") {
		return "image/png", imageStr
	}
	metadata, payload, _ := strings.Cut(imageStr, "base64,")
	mime = "image/png"
	if m := dataURLMime.FindStringSubmatch(metadata); len(m) == 2 {
		mime = m[1]
	}
	if payload == "" {
		payload = imageStr
	}
	return mime, payload
}

var (
	dataURLMime     = regexp.MustCompile(`data:([^;]+)`)
	bulletChars     = strings.NewReplacer("-", "", "*", "", "•", "")
	leadingQuantity = regexp.MustCompile(`^(\d+)\s+`)
	parens          = strings.NewReplacer("(", "", ")", "")
)

type categoryRule struct {
	name     string
	keywords []string
}

// Ordered so repeated analyses of the same text yield the same list.
var categoryRules = []categoryRule{
	{"webbing", []string{"spider web", "web material", "gauze", "netting"}},
	{"bats", []string{"bat cutout", "bat silhouette", "bat decoration"}},
	{"pumpkins", []string{"pumpkin", "jack-o-lantern", "jack o lantern"}},
	{"spiders", []string{"spider", "plastic spider"}},
	{"garland", []string{"garland", "hanging decoration", "chain", "swag"}},
	{"wall", []string{"wall decoration", "wall hanging", "wall decal", "sticker"}},
	{"lights", []string{"light", "LED", "string light"}},
}

// parseProductLines walks the model's prose and pulls out lines that mention
// known decor keywords. Models rarely emit clean JSON here so the parse is
// intentionally forgiving.
func parseProductLines(response, theme string) []products.Product {
	var items []products.Product
	seen := make(map[string]bool)

	for _, line := range strings.Split(response, "\n") {
		lowerLine := strings.ToLower(line)
		for _, rule := range categoryRules {
			matched := false
			for _, keyword := range rule.keywords {
				if strings.Contains(lowerLine, strings.ToLower(keyword)) {
					if item, ok := extractItemFromLine(line, rule.name, keyword, theme); ok && !seen[item.Name] {
						seen[item.Name] = true
						items = append(items, item)
					}
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
	}

	if len(items) == 0 {
		items = defaultProducts(theme)
	}
	return items
}

func extractItemFromLine(line, category, keyword, theme string) (products.Product, bool) {
	cleaned := strings.TrimSpace(bulletChars.Replace(line))
	if cleaned == "" {
		return products.Product{}, false
	}

	quantity := 1
	if m := leadingQuantity.FindStringSubmatch(cleaned); len(m) == 2 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			quantity = n
		}
	}

	name := leadingQuantity.ReplaceAllString(cleaned, "")
	name = strings.TrimSpace(parens.Replace(name))
	if idx := strings.IndexAny(name, ",.:"); idx >= 0 {
		name = name[:idx]
	}
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return products.Product{}, false
	}

	searchTerms := make([]string, 0, 3)
	for _, term := range []string{keyword, strings.ToLower(name), theme + " " + category} {
		if len(term) > 2 {
			searchTerms = append(searchTerms, term)
		}
	}

	return products.Product{
		Name:        strings.ToUpper(name[:1]) + name[1:],
		Category:    category,
		Quantity:    quantity,
		Description: cleaned,
		SearchTerms: searchTerms,
	}, true
}

// defaultProducts is the stock shopping list used when the model's reply
// mentions nothing recognizable.
func defaultProducts(theme string) []products.Product {
	return []products.Product{
		{
			Name:        theme + " Spider Web Decoration",
			Category:    "webbing",
			Quantity:    1,
			Description: "Stretchy spider web material for furniture and walls",
			SearchTerms: []string{theme + " spider web", "halloween cobweb decoration", "stretchy spider web"},
		},
		{
			Name:        "Black Bat Cutouts",
			Category:    "bats",
			Quantity:    12,
			Description: "Assorted sizes of bat silhouettes for walls",
			SearchTerms: []string{"halloween bat decorations", "3D bat wall stickers", "black bat cutouts"},
		},
		{
			Name:        "Mini Pumpkin Decorations",
			Category:    "pumpkins",
			Quantity:    6,
			Description: "Small orange pumpkins and jack-o-lanterns",
			SearchTerms: []string{"mini pumpkins decoration", "small jack o lantern", theme + " pumpkin set"},
		},
		{
			Name:        "Plastic Spiders",
			Category:    "spiders",
			Quantity:    8,
			Description: "Realistic plastic spiders in various sizes",
			SearchTerms: []string{"halloween plastic spiders", "realistic fake spiders", "spider decorations"},
		},
		{
			Name:        theme + " Garland",
			Category:    "garland",
			Quantity:    1,
			Description: "Black garland with " + theme + " accents",
			SearchTerms: []string{theme + " garland", "halloween paper garland", "black orange garland"},
		},
	}
}

func buildResult(items []products.Product, theme string) AnalysisResult {
	colorScheme := []string{"varies"}
	if strings.EqualFold(theme, "halloween") {
		colorScheme = []string{"black", "orange", "white", "gray"}
	}

	total := 0
	for _, item := range items {
		if item.Quantity > 0 {
			total += item.Quantity
		} else {
			total++
		}
	}

	return AnalysisResult{
		Products:            items,
		OverallTheme:        theme,
		ColorScheme:         colorScheme,
		EstimatedTotalItems: total,
	}
}
