package render

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postRender(t *testing.T, handler Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Render(rec, req)
	return rec
}

func TestRender_MissingFields(t *testing.T) {
	handler := Handler{}

	rec := postRender(t, handler, map[string]string{"prompt": "make it cozy"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postRender(t, handler, map[string]string{"image_url": "https://example.com/room.png"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRender_NoBackendReturnsPlaceholder(t *testing.T) {
	handler := Handler{}

	rec := postRender(t, handler, map[string]string{
		"image_url": "https://example.com/room.png",
		"prompt":    "make it scandinavian",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "https://example.com/room.png", result.ImageURL)
	assert.Contains(t, result.Warning, "No render backend configured")
}

func TestRender_FalBackendDegradesOnFailure(t *testing.T) {
	// A FAL endpoint that is unreachable must still produce a 200 with the
	// original image and a warning.
	fal := NewFalClient("test-key").
		WithBaseURL("http://127.0.0.1:1").
		WithClock(&fakeClock{}).
		WithPollBudget(time.Millisecond, 1)
	handler := Handler{Fal: fal}

	rec := postRender(t, handler, map[string]string{
		"image_url": "https://example.com/room.png",
		"prompt":    "brighter",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "https://example.com/room.png", result.ImageURL)
	assert.NotEmpty(t, result.Warning)
}

func TestRender_FalBackendSuccess(t *testing.T) {
	queue := &fakeQueue{statuses: []falResponse{
		{Status: "COMPLETED", Image: struct {
			URL string `json:"url"`
		}{URL: "https://cdn.example.com/done.png"}},
	}}
	client, _ := newQueueClient(t, queue)
	handler := Handler{Fal: client}

	rec := postRender(t, handler, map[string]string{
		"image_url": "https://example.com/room.png",
		"prompt":    "brighter",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "https://cdn.example.com/done.png", result.ImageURL)
	assert.Empty(t, result.Warning)
}
