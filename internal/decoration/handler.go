package decoration

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"roomSenseAi/internal/fault"
)

const maxUploadBytes = 10 << 20

// Handler exposes the decoration endpoints.
type Handler struct {
	Edit     *EditClient
	Analyzer *Analyzer
}

// Decorate handles POST /api/decoration/decorate. The room photo arrives as a
// multipart upload and is forwarded to the edit model as a data URL.
func (h Handler) Decorate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fault.WriteError(w, fault.Invalid("invalid multipart form"))
		return
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	file, header, err := r.FormFile("image")
	if err != nil || prompt == "" {
		fault.WriteError(w, fault.Invalid("image and prompt are required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		fault.WriteError(w, fmt.Errorf("decoration: read upload: %w", err))
		return
	}
	if len(data) > maxUploadBytes {
		fault.WriteError(w, fault.Invalid("image exceeds the upload limit"))
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))

	if !h.Edit.Configured() {
		fault.WriteError(w, fault.NotConfigured("fal api key"))
		return
	}

	decorated, err := h.Edit.Decorate(r.Context(), dataURL, prompt)
	if err != nil {
		log.Printf("decorate failed: %v", err)
		fault.WriteError(w, err)
		return
	}
	respond(w, map[string]string{"decoratedImage": decorated})
}

type analyzeRequest struct {
	OriginalImage  string `json:"originalImage"`
	DecoratedImage string `json:"decoratedImage"`
	Theme          string `json:"theme"`
}

// Analyze handles POST /api/decoration/analyze.
func (h Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fault.WriteError(w, fault.Invalid("invalid JSON body"))
		return
	}
	if req.OriginalImage == "" || req.DecoratedImage == "" {
		fault.WriteError(w, fault.Invalid("original and decorated images are required"))
		return
	}
	theme := req.Theme
	if theme == "" {
		theme = "halloween"
	}

	if !h.Analyzer.Configured() {
		fault.WriteError(w, fault.NotConfigured("analysis model"))
		return
	}

	result, err := h.Analyzer.Analyze(r.Context(), req.OriginalImage, req.DecoratedImage, theme)
	if err != nil {
		log.Printf("decoration analysis failed: %v", err)
		fault.WriteError(w, err)
		return
	}
	respond(w, map[string]AnalysisResult{"products": result})
}

func respond(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}
