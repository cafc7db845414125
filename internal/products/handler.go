package products

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"roomSenseAi/internal/fault"
)

// Handler exposes the product matching endpoints.
type Handler struct {
	Lens  *LensClient
	Smart *SmartSearcher
}

type lensRequest struct {
	ImageURL string `json:"image_url"`
}

// LensLookup handles POST /api/products/lens.
func (h Handler) LensLookup(w http.ResponseWriter, r *http.Request) {
	var req lensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fault.WriteError(w, fault.Invalid("invalid JSON body"))
		return
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		fault.WriteError(w, fault.Invalid("image_url is required"))
		return
	}
	if h.Lens == nil {
		fault.WriteError(w, fault.NotConfigured("serpapi key"))
		return
	}

	product, err := h.Lens.Lookup(r.Context(), imageURL)
	if err != nil {
		if errors.Is(err, fault.ErrNoResults) {
			writeJSONStatus(w, http.StatusNotFound, map[string]string{"error": "No product match found"})
			return
		}
		log.Printf("lens lookup failed: %v", err)
		fault.WriteError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, map[string]Product{"product": product})
}

type smartRequest struct {
	ImageURL   string      `json:"image_url"`
	UserPrompt string      `json:"user_prompt"`
	CropRegion *CropRegion `json:"crop_region"`
}

type smartResponse struct {
	Keywords string    `json:"keywords"`
	Products []Product `json:"products"`
}

// SmartSearch handles POST /api/products/smart.
func (h Handler) SmartSearch(w http.ResponseWriter, r *http.Request) {
	var req smartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fault.WriteError(w, fault.Invalid("invalid JSON body"))
		return
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		fault.WriteError(w, fault.Invalid("image_url is required"))
		return
	}
	if h.Smart == nil {
		fault.WriteError(w, fault.NotConfigured("rainforest api key"))
		return
	}

	keywords, results, err := h.Smart.Search(r.Context(), imageURL, req.CropRegion, req.UserPrompt)
	if err != nil {
		if errors.Is(err, fault.ErrNoResults) {
			writeJSONStatus(w, http.StatusNotFound, map[string]string{
				"error":    "No products found",
				"keywords": keywords,
			})
			return
		}
		log.Printf("smart search failed: %v", err)
		fault.WriteError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, smartResponse{Keywords: keywords, Products: results})
}

func writeJSONStatus(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}
