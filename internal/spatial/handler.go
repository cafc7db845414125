package spatial

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"roomSenseAi/internal/events"
	"roomSenseAi/internal/fault"
	"roomSenseAi/internal/overlay"
	"roomSenseAi/internal/storage"
)

// Handler exposes the spatial analysis pipeline over HTTP.
type Handler struct {
	Store     storage.Store
	Analyzer  *Analyzer
	Suggester *Suggester
	Events    *events.Broker
}

type analyzeRequest struct {
	ImageURL   string `json:"image_url"`
	UserPrompt string `json:"user_prompt,omitempty"`
}

type overlayRequest struct {
	ImageURL    string `json:"image_url"`
	HighlightID string `json:"highlight_id,omitempty"`
}

// Analyze handles POST /api/spatial/analyze. Repeat requests for an already
// analyzed image URL return the cached result without calling the model.
func (h Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fault.WriteError(w, fault.Invalid("invalid JSON body"))
		return
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		fault.WriteError(w, fault.Invalid("image_url is required"))
		return
	}

	if cached, err := h.Store.GetAnalysis(r.Context(), imageURL); err == nil {
		writeJSON(w, cached)
		return
	}

	h.publish(imageURL, events.StageFetching, "")
	h.publish(imageURL, events.StageAnalyzing, "")

	enriched, err := h.Analyzer.Analyze(r.Context(), imageURL, req.UserPrompt)
	if err != nil {
		log.Printf("spatial analysis failed for %s: %v", imageURL, err)
		h.publish(imageURL, events.StageFailed, err.Error())
		fault.WriteError(w, err)
		return
	}
	h.publish(imageURL, events.StageDeriving, "")

	if err := h.Store.SaveAnalysis(r.Context(), imageURL, enriched); err != nil {
		log.Printf("could not cache analysis for %s: %v", imageURL, err)
	}
	h.publish(imageURL, events.StageDone, "")

	writeJSON(w, enriched)
}

// Suggestions handles POST /api/design/suggestions. Suggestions require a
// completed analysis for the image URL; they are never started speculatively.
func (h Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fault.WriteError(w, fault.Invalid("invalid JSON body"))
		return
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		fault.WriteError(w, fault.Invalid("image_url is required"))
		return
	}

	if cached, err := h.Store.GetSuggestions(r.Context(), imageURL); err == nil {
		writeJSON(w, cached)
		return
	}

	analysis, err := h.Store.GetAnalysis(r.Context(), imageURL)
	if errors.Is(err, storage.ErrNotFound) {
		fault.WriteError(w, fault.Invalid("no analysis exists for image_url; run /api/spatial/analyze first"))
		return
	}
	if err != nil {
		fault.WriteError(w, fmt.Errorf("load analysis: %w", err))
		return
	}

	h.publish(imageURL, events.StageSuggesting, "")

	suggestions, err := h.Suggester.Suggest(r.Context(), analysis, req.UserPrompt)
	if err != nil {
		log.Printf("design suggestions failed for %s: %v", imageURL, err)
		h.publish(imageURL, events.StageFailed, err.Error())
		fault.WriteError(w, err)
		return
	}

	if err := h.Store.SaveSuggestions(r.Context(), imageURL, suggestions); err != nil {
		log.Printf("could not cache suggestions for %s: %v", imageURL, err)
	}
	h.publish(imageURL, events.StageDone, "")

	writeJSON(w, suggestions)
}

// Overlay handles POST /api/spatial/overlay. It renders the cached analysis
// as an SVG overlay plus the human-readable insight panel.
func (h Handler) Overlay(w http.ResponseWriter, r *http.Request) {
	var req overlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fault.WriteError(w, fault.Invalid("invalid JSON body"))
		return
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		fault.WriteError(w, fault.Invalid("image_url is required"))
		return
	}

	analysis, err := h.Store.GetAnalysis(r.Context(), imageURL)
	if errors.Is(err, storage.ErrNotFound) {
		fault.WriteError(w, fault.Invalid("no analysis exists for image_url; run /api/spatial/analyze first"))
		return
	}
	if err != nil {
		fault.WriteError(w, fmt.Errorf("load analysis: %w", err))
		return
	}

	writeJSON(w, map[string]any{
		"svg":      overlay.Render(analysis, strings.TrimSpace(req.HighlightID)),
		"insights": overlay.BuildInsights(analysis),
	})
}

// StreamEvents handles GET /api/events as a server-sent event stream of
// pipeline stage updates.
func (h Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.Events == nil {
		http.Error(w, "event stream inactive", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch := h.Events.Subscribe()
	defer h.Events.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-ch:
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h Handler) publish(imageURL string, stage events.Stage, detail string) {
	if h.Events == nil {
		return
	}
	h.Events.Publish(events.New(imageURL, stage, detail))
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
