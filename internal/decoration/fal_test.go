package decoration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomSenseAi/internal/fault"
)

func TestDecorate_SendsEditPayload(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Key test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images": [{"url": "https://cdn.example.com/decorated.png"}]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewEditClient("test-key").WithEndpoint(srv.URL)

	url, err := client.Decorate(context.Background(), "data:image/png;base64,Zm9v", "halloween")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/decorated.png", url)

	assert.Equal(t, "Add halloween decorations to the room, while keeping the original furniture.", captured["prompt"])
	assert.Equal(t, []any{"data:image/png;base64,Zm9v"}, captured["image_urls"])
	assert.Equal(t, "landscape_16_9", captured["image_size"])
	assert.Equal(t, true, captured["enable_safety_checker"])
}

func TestDecorate_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"images": []}`))
	}))
	t.Cleanup(srv.Close)

	client := NewEditClient("test-key").WithEndpoint(srv.URL)

	_, err := client.Decorate(context.Background(), "data:image/png;base64,Zm9v", "halloween")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no images")
}

func TestDecorate_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client := NewEditClient("test-key").WithEndpoint(srv.URL)

	_, err := client.Decorate(context.Background(), "data:image/png;base64,Zm9v", "halloween")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDecorate_MissingKey(t *testing.T) {
	client := NewEditClient("")
	assert.False(t, client.Configured())

	_, err := client.Decorate(context.Background(), "data:image/png;base64,Zm9v", "halloween")
	require.ErrorIs(t, err, fault.ErrNotConfigured)
}
