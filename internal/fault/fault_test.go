package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus_Contract(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", Invalid("image_url is required"), http.StatusBadRequest},
		{"wrapped invalid input", fmt.Errorf("handler: %w", Invalid("bad")), http.StatusBadRequest},
		{"missing credential", NotConfigured("anthropic api key"), http.StatusInternalServerError},
		{"no results", ErrNoResults, http.StatusNotFound},
		{"empty model response", ErrEmptyModelResponse, http.StatusBadGateway},
		{"fetch failure", &FetchError{URL: "https://example.com/a.png", Status: 404}, http.StatusBadGateway},
		{"wrapped fetch failure", fmt.Errorf("spatial: %w", &FetchError{Status: 500}), http.StatusBadGateway},
		{"unparsable response", &UnparsableError{Payload: "{", Err: errors.New("eof")}, http.StatusBadGateway},
		{"unknown error", errors.New("something else"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestWriteError_JSONBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, Invalid("image_url is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "image_url is required")
}

func TestUnparsableError_Unwrap(t *testing.T) {
	inner := errors.New("unexpected end of JSON input")
	err := &UnparsableError{Payload: "{", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "unparsable")
}
