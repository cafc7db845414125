// Package products matches furniture seen in room photos to shoppable
// listings via visual search and keyword search engines.
package products

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"roomSenseAi/internal/fault"
)

// Product is a normalized shoppable listing.
type Product struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Quantity    int      `json:"quantity,omitempty"`
	SearchTerms []string `json:"searchTerms"`
	LinkURL     string   `json:"linkUrl,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Price       string   `json:"price,omitempty"`
	ASIN        string   `json:"asin,omitempty"`
}

var amazonProductPath = regexp.MustCompile(`/dp/|/gp/`)

// LensClient resolves a product photo to retail listings through the SerpAPI
// Google Lens engine.
type LensClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewLensClient constructs a Lens client.
func NewLensClient(apiKey string) *LensClient {
	return &LensClient{
		apiKey:   apiKey,
		endpoint: "https://serpapi.com/search.json",
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

// WithEndpoint overrides the API endpoint. Used by tests.
func (c *LensClient) WithEndpoint(endpoint string) *LensClient {
	c.endpoint = endpoint
	return c
}

type lensMatch struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
	Source    string `json:"source"`
}

// Lookup runs a visual match for the image and returns the best product,
// preferring direct Amazon product pages. Zero matches is ErrNoResults.
func (c *LensClient) Lookup(ctx context.Context, imageURL string) (Product, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return Product{}, fault.NotConfigured("serpapi key")
	}

	params := url.Values{
		"engine":  {"google_lens"},
		"url":     {imageURL},
		"api_key": {c.apiKey},
		"hl":      {"en"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Product{}, fmt.Errorf("products: lens request: %w", err)
	}
	req.Header.Set("User-Agent", "RoomSense/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("products: perform lens request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Product{}, fmt.Errorf("products: lens status %d", resp.StatusCode)
	}

	var payload struct {
		VisualMatches []lensMatch `json:"visual_matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Product{}, fmt.Errorf("products: decode lens response: %w", err)
	}

	match, ok := pickMatch(payload.VisualMatches)
	if !ok {
		return Product{}, fault.ErrNoResults
	}
	return normalizeMatch(match), nil
}

// pickMatch prefers an Amazon product URL, falling back to the top match.
func pickMatch(matches []lensMatch) (lensMatch, bool) {
	for _, match := range matches {
		if isAmazonProductURL(match.Link) {
			return match, true
		}
	}
	if len(matches) > 0 && matches[0].Link != "" {
		return matches[0], true
	}
	return lensMatch{}, false
}

func isAmazonProductURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.Contains(parsed.Hostname(), "amazon.") && amazonProductPath.MatchString(parsed.Path)
}

func normalizeMatch(match lensMatch) Product {
	hostname := match.Source
	if parsed, err := url.Parse(match.Link); err == nil && parsed.Hostname() != "" {
		hostname = strings.TrimPrefix(parsed.Hostname(), "www.")
	}
	if hostname == "" {
		hostname = "listing"
	}

	return Product{
		Name:        match.Title,
		Category:    "Detected item",
		Description: fmt.Sprintf("%s listing for %s", hostname, match.Title),
		SearchTerms: []string{},
		LinkURL:     match.Link,
		ImageURL:    match.Thumbnail,
	}
}
