package products

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"roomSenseAi/internal/fault"
	"roomSenseAi/internal/llm"
)

const keywordPrompt = `Provide a concise, high-intent Amazon search query (3-6 words) that describes the highlighted product. ` +
	`Focus on furniture/decor keywords like color, material, and style. Return only the keyword string.`

const maxProductImageBytes = 7 * 1024 * 1024

// SmartSearcher crops the highlighted item out of the room photo, asks a
// vision model for a search query, then looks the query up on Amazon through
// the Rainforest API.
type SmartSearcher struct {
	llm           llm.Client
	rainforestKey string
	endpoint      string
	client        *http.Client
}

// NewSmartSearcher constructs a searcher backed by the given vision client.
func NewSmartSearcher(client llm.Client, rainforestKey string) *SmartSearcher {
	return &SmartSearcher{
		llm:           client,
		rainforestKey: rainforestKey,
		endpoint:      "https://api.rainforestapi.com/request",
		client:        &http.Client{Timeout: 20 * time.Second},
	}
}

// WithEndpoint overrides the Rainforest endpoint. Used by tests.
func (s *SmartSearcher) WithEndpoint(endpoint string) *SmartSearcher {
	s.endpoint = endpoint
	return s
}

// Search resolves the (optionally cropped) image to keywords and products.
// The returned keywords accompany 404 responses so the caller can retry a
// manual search.
func (s *SmartSearcher) Search(ctx context.Context, imageURL string, region *CropRegion, userPrompt string) (string, []Product, error) {
	if s.llm == nil {
		return "", nil, fault.NotConfigured("vision model")
	}
	if strings.TrimSpace(s.rainforestKey) == "" {
		return "", nil, fault.NotConfigured("rainforest api key")
	}

	data, err := s.fetchImage(ctx, imageURL)
	if err != nil {
		return "", nil, err
	}

	cropped, mime, err := cropImage(data, region)
	if err != nil {
		return "", nil, err
	}

	keywords, err := s.extractKeywords(ctx, cropped, mime, userPrompt)
	if err != nil {
		return "", nil, err
	}

	results, err := s.searchRainforest(ctx, keywords)
	if err != nil {
		return keywords, nil, err
	}
	if len(results) == 0 {
		return keywords, nil, fault.ErrNoResults
	}
	return keywords, results, nil
}

func (s *SmartSearcher) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("products: fetch %s: %w", imageURL, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("products: fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, &fault.FetchError{URL: imageURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProductImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("products: read image: %w", err)
	}
	if len(data) > maxProductImageBytes {
		return nil, fmt.Errorf("products: image exceeds %d bytes", maxProductImageBytes)
	}
	return data, nil
}

func (s *SmartSearcher) extractKeywords(ctx context.Context, data []byte, mime, userPrompt string) (string, error) {
	blocks := []llm.Block{
		llm.TextBlock(keywordPrompt),
		llm.ImageBlock(mime, base64.StdEncoding.EncodeToString(data)),
	}
	if strings.TrimSpace(userPrompt) != "" {
		blocks = append(blocks, llm.TextBlock("User request/context: "+userPrompt))
	}

	keywords, err := s.llm.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: "user", Blocks: blocks}},
		MaxTokens:   120,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("products: extract keywords: %w", err)
	}
	return strings.TrimSpace(keywords), nil
}

type rainforestResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Image string `json:"image"`
	ASIN  string `json:"asin"`
	Price struct {
		Display string `json:"display"`
	} `json:"price"`
}

func (s *SmartSearcher) searchRainforest(ctx context.Context, keywords string) ([]Product, error) {
	params := url.Values{
		"api_key":       {s.rainforestKey},
		"type":          {"search"},
		"amazon_domain": {"amazon.com"},
		"search_term":   {keywords},
		"sort_by":       {"featured"},
		"page":          {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("products: rainforest request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("products: perform rainforest request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("products: rainforest status %d", resp.StatusCode)
	}

	var payload struct {
		SearchResults []rainforestResult `json:"search_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("products: decode rainforest response: %w", err)
	}

	results := payload.SearchResults
	if len(results) > 3 {
		results = results[:3]
	}

	products := make([]Product, 0, len(results))
	for _, item := range results {
		link := item.Link
		if link == "" && item.ASIN != "" {
			link = "https://www.amazon.com/dp/" + item.ASIN
		}
		description := item.Title
		if item.Price.Display != "" {
			description = fmt.Sprintf("%s (%s)", item.Title, item.Price.Display)
		}
		products = append(products, Product{
			Name:        item.Title,
			Category:    "Detected item",
			Description: description,
			Quantity:    1,
			SearchTerms: []string{keywords},
			LinkURL:     link,
			ImageURL:    item.Image,
			Price:       item.Price.Display,
			ASIN:        item.ASIN,
		})
	}
	return products, nil
}
