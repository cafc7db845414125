package spatial

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomSenseAi/internal/events"
	"roomSenseAi/internal/llm"
	"roomSenseAi/internal/storage"
)

type fakeClient struct {
	reply string
	err   error
	calls int
}

func (f *fakeClient) Complete(_ context.Context, _ llm.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

const spatialReply = `{
  "windows": [{"id": "window-1", "box": {"x": 0.1, "y": 0.1, "width": 0.2, "height": 0.3}}],
  "furniture": [{"id": "sofa-1", "label": "grey sofa", "box": {"x": 0.2, "y": 0.5, "width": 0.35, "height": 0.25}}],
  "walkways": [{"id": "path-1", "points": [{"x": 0.1, "y": 0.8}, {"x": 0.6, "y": 0.8}]}],
  "depth_cues": ["perspective lines toward the back wall"]
}`

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("not-a-real-png-but-bytes-are-bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newHandler(client llm.Client) (Handler, *storage.InMemoryStore) {
	store := storage.NewInMemoryStore()
	return Handler{
		Store:     store,
		Analyzer:  NewAnalyzer(client, 5*time.Second),
		Suggester: NewSuggester(client),
		Events:    events.NewBroker(),
	}, store
}

func postJSON(t *testing.T, handler http.HandlerFunc, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAnalyze_Success(t *testing.T) {
	images := newImageServer(t)
	client := &fakeClient{reply: spatialReply}
	handler, _ := newHandler(client)

	rec := postJSON(t, handler.Analyze, map[string]string{"image_url": images.URL + "/room.png"})
	require.Equal(t, http.StatusOK, rec.Code)

	var enriched storage.EnrichedAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enriched))
	require.NotNil(t, enriched.Proportions.SofaRoomWidthRatio)
	assert.InDelta(t, 0.35, *enriched.Proportions.SofaRoomWidthRatio, 1e-9)
	assert.Len(t, enriched.Furniture, 1)
}

func TestAnalyze_RepeatRequestServedFromCache(t *testing.T) {
	images := newImageServer(t)
	client := &fakeClient{reply: spatialReply}
	handler, _ := newHandler(client)

	url := images.URL + "/room.png"
	first := postJSON(t, handler.Analyze, map[string]string{"image_url": url})
	require.Equal(t, http.StatusOK, first.Code)

	second := postJSON(t, handler.Analyze, map[string]string{"image_url": url})
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, 1, client.calls)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestAnalyze_MissingImageURL(t *testing.T) {
	handler, _ := newHandler(&fakeClient{reply: spatialReply})

	rec := postJSON(t, handler.Analyze, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_NoVisionModel(t *testing.T) {
	images := newImageServer(t)
	handler, _ := newHandler(nil)

	rec := postJSON(t, handler.Analyze, map[string]string{"image_url": images.URL + "/room.png"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAnalyze_ImageFetchFailure(t *testing.T) {
	images := newImageServer(t)
	handler, _ := newHandler(&fakeClient{reply: spatialReply})

	rec := postJSON(t, handler.Analyze, map[string]string{"image_url": images.URL + "/missing.png"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalyze_UnparsableModelReply(t *testing.T) {
	images := newImageServer(t)
	handler, _ := newHandler(&fakeClient{reply: "The room looks cozy! No JSON today."})

	rec := postJSON(t, handler.Analyze, map[string]string{"image_url": images.URL + "/room.png"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "unparsable")
}

func TestSuggestions_RequirePriorAnalysis(t *testing.T) {
	handler, _ := newHandler(&fakeClient{reply: "{}"})

	rec := postJSON(t, handler.Suggestions, map[string]string{"image_url": "https://example.com/room.png"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestions_Success(t *testing.T) {
	client := &fakeClient{reply: `{
	  "layout_issues": [{"id": "issue-1", "description": "Sofa blocks the window"}],
	  "improvement_suggestions": [{"id": "tip-1", "description": "Float the sofa off the wall", "region_ref": "sofa-1"}]
	}`}
	handler, store := newHandler(client)

	url := "https://example.com/room.png"
	require.NoError(t, store.SaveAnalysis(context.Background(), url, Derive(storage.Analysis{})))

	rec := postJSON(t, handler.Suggestions, map[string]string{"image_url": url})
	require.Equal(t, http.StatusOK, rec.Code)

	var suggestions storage.Suggestions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suggestions))
	require.Len(t, suggestions.LayoutIssues, 1)
	assert.Equal(t, "issue-1", suggestions.LayoutIssues[0].ID)

	// Cached now; second request must not hit the model again.
	calls := client.calls
	second := postJSON(t, handler.Suggestions, map[string]string{"image_url": url})
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, calls, client.calls)
}

func TestOverlay_RequiresPriorAnalysis(t *testing.T) {
	handler, _ := newHandler(&fakeClient{})

	rec := postJSON(t, handler.Overlay, map[string]string{"image_url": "https://example.com/room.png"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOverlay_Success(t *testing.T) {
	handler, store := newHandler(&fakeClient{})

	url := "https://example.com/room.png"
	analysis := storage.Analysis{
		Furniture: []storage.Region{{ID: "sofa-1", Label: "sofa", Box: storage.NormalizedBox{X: 0.2, Y: 0.5, Width: 0.3, Height: 0.2}}},
	}
	require.NoError(t, store.SaveAnalysis(context.Background(), url, Derive(analysis)))

	rec := postJSON(t, handler.Overlay, map[string]string{"image_url": url, "highlight_id": "sofa-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		SVG      string          `json:"svg"`
		Insights json.RawMessage `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.SVG, "<svg")
	assert.NotEmpty(t, body.Insights)
}
