package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidInput marks malformed or missing request fields.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotConfigured indicates a required provider credential is absent.
var ErrNotConfigured = errors.New("provider is not configured")

// ErrEmptyModelResponse indicates the model returned no usable text.
var ErrEmptyModelResponse = errors.New("model returned no text content")

// ErrNoResults indicates a downstream search produced zero matches.
var ErrNoResults = errors.New("no results")

// FetchError wraps a non-success HTTP status from an upstream fetch.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s (status %d)", e.URL, e.Status)
}

// UnparsableError reports model output that survived no repair attempt.
// Payload keeps the candidate JSON for diagnostics.
type UnparsableError struct {
	Payload string
	Err     error
}

func (e *UnparsableError) Error() string {
	return fmt.Sprintf("unparsable model response: %v", e.Err)
}

func (e *UnparsableError) Unwrap() error { return e.Err }

// Invalid wraps a field-level message as an ErrInvalidInput.
func Invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// NotConfigured names the missing credential.
func NotConfigured(name string) error {
	return fmt.Errorf("%s %w", name, ErrNotConfigured)
}

// HTTPStatus maps a pipeline error onto the response-code contract:
// 400 client error, 404 empty search, 500 missing credential, 502 any
// downstream provider failure.
func HTTPStatus(err error) int {
	var fetchErr *FetchError
	var parseErr *UnparsableError

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotConfigured):
		return http.StatusInternalServerError
	case errors.Is(err, ErrNoResults):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyModelResponse),
		errors.As(err, &fetchErr),
		errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// WriteError emits the error as a JSON body with the mapped status code.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
