package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomSenseAi/internal/fault"
)

func TestComplete_ConcatenatesTextBlocks(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "{\"windows\""}, {"type": "text", "text": ": []}"}]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewAnthropicClient("test-key", "", 5*time.Second).WithEndpoint(srv.URL)

	text, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Blocks: []Block{
			TextBlock("describe the room"),
			ImageBlock("image/png", "aGVsbG8="),
		}}},
		MaxTokens: 800,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"windows": []}`, text)

	assert.Equal(t, "claude-3-7-sonnet-20250219", captured["model"])
	assert.EqualValues(t, 800, captured["max_tokens"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "text", content[0].(map[string]any)["type"])
	assert.Equal(t, "image", content[1].(map[string]any)["type"])
}

func TestComplete_EmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content": []}`))
	}))
	t.Cleanup(srv.Close)

	client := NewAnthropicClient("test-key", "claude-3-7-sonnet-20250219", 5*time.Second).WithEndpoint(srv.URL)

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Blocks: []Block{TextBlock("hello")}}},
	})
	require.ErrorIs(t, err, fault.ErrEmptyModelResponse)
}

func TestComplete_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewAnthropicClient("test-key", "", 5*time.Second).WithEndpoint(srv.URL)

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Blocks: []Block{TextBlock("hello")}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestComplete_MissingKey(t *testing.T) {
	client := NewAnthropicClient("", "", time.Second)

	_, err := client.Complete(context.Background(), Request{})
	require.ErrorIs(t, err, fault.ErrNotConfigured)
}

func TestComplete_DefaultMaxTokens(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "ok"}]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewAnthropicClient("test-key", "", time.Second).WithEndpoint(srv.URL)

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Blocks: []Block{TextBlock("hi")}}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 800, captured["max_tokens"])
}
