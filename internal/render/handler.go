package render

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"roomSenseAi/internal/fault"
)

// Handler exposes POST /api/render. Backend order: FAL FLUX image-to-image
// when configured, then Vertex Imagen edit, then Gemini generation. Backend
// failures degrade to the original image with a warning so the caller can
// keep showing the last good frame.
type Handler struct {
	Fal    *FalClient
	Imagen *VertexImagen
	Gemini *GeminiGenerator
}

type renderRequest struct {
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt"`
}

// Render handles POST /api/render.
func (h Handler) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fault.WriteError(w, fault.Invalid("invalid JSON body"))
		return
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	prompt := strings.TrimSpace(req.Prompt)
	if imageURL == "" {
		fault.WriteError(w, fault.Invalid("image_url is required"))
		return
	}
	if prompt == "" {
		fault.WriteError(w, fault.Invalid("prompt is required"))
		return
	}

	switch {
	case h.Fal != nil:
		result, err := h.Fal.Transform(r.Context(), imageURL, prompt)
		if err != nil {
			log.Printf("render via FAL failed: %v", err)
			fault.WriteError(w, err)
			return
		}
		if result.Warning != "" {
			log.Printf("render degraded (%s): %s", result.State, result.Warning)
		}
		writeJSON(w, result)

	case h.Imagen.Configured():
		output, err := h.Imagen.Edit(r.Context(), imageURL, prompt)
		if err != nil {
			log.Printf("render via Imagen failed: %v", err)
			writeJSON(w, Result{ImageURL: imageURL, Warning: "Imagen edit failed.", State: StateFailed})
			return
		}
		writeJSON(w, Result{ImageURL: output, State: StateCompleted})

	case h.Gemini.Configured():
		output, err := h.Gemini.Generate(r.Context(), prompt)
		if err != nil {
			log.Printf("render via Gemini failed: %v", err)
			writeJSON(w, Result{ImageURL: imageURL, Warning: "Gemini render failed.", State: StateFailed})
			return
		}
		writeJSON(w, Result{ImageURL: output, State: StateCompleted})

	default:
		writeJSON(w, Result{
			ImageURL: imageURL,
			Warning:  "No render backend configured; returning original image as placeholder.",
			State:    StateFailed,
		})
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
