// Package render produces photorealistic redesigns of a room photo via
// image-to-image diffusion backends.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// State tracks a queued generation job through its lifecycle.
type State string

const (
	StateSubmitted State = "submitted"
	StatePolling   State = "polling"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

const (
	defaultPollInterval = time.Second
	defaultMaxPolls     = 60
)

// Result is the outcome of a render attempt. A failed or timed-out job keeps
// the original image URL and carries a warning instead of an error, so the
// caller can fall back to the last known good image.
type Result struct {
	ImageURL string `json:"image_url"`
	Warning  string `json:"warning,omitempty"`
	State    State  `json:"-"`
}

// FalClient drives FLUX image-to-image jobs through the FAL queue API.
type FalClient struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	clock        Clock
	pollInterval time.Duration
	maxPolls     int
}

// NewFalClient constructs a queue client with the production endpoint and a
// 1-second, 60-iteration poll budget.
func NewFalClient(apiKey string) *FalClient {
	return &FalClient{
		apiKey:       apiKey,
		baseURL:      "https://queue.fal.run/fal-ai/flux/dev",
		client:       &http.Client{Timeout: 30 * time.Second},
		clock:        RealClock(),
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
	}
}

// WithBaseURL overrides the queue endpoint. Used by tests.
func (c *FalClient) WithBaseURL(baseURL string) *FalClient {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// WithClock replaces the wall clock. Used by tests.
func (c *FalClient) WithClock(clock Clock) *FalClient {
	c.clock = clock
	return c
}

// WithPollBudget adjusts the poll interval and iteration cap.
func (c *FalClient) WithPollBudget(interval time.Duration, maxPolls int) *FalClient {
	if interval > 0 {
		c.pollInterval = interval
	}
	if maxPolls > 0 {
		c.maxPolls = maxPolls
	}
	return c
}

type falResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Images    []struct {
		URL string `json:"url"`
	} `json:"images"`
	Image struct {
		URL string `json:"url"`
	} `json:"image"`
}

// Transform submits an image-to-image job and waits for its terminal state.
// The job advances Submitted -> Polling -> Completed | Failed | TimedOut;
// only context cancellation produces a hard error.
func (c *FalClient) Transform(ctx context.Context, imageURL, prompt string) (Result, error) {
	payload := map[string]any{
		"prompt":                prompt,
		"image_url":             imageURL,
		"strength":              0.85,
		"guidance_scale":        7.5,
		"num_inference_steps":   40,
		"enable_safety_checker": false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("render: marshal fal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image-to-image", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("render: fal request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{ImageURL: imageURL, Warning: "FAL call failed.", State: StateFailed}, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode >= 300 {
		return Result{ImageURL: imageURL, Warning: "FAL call failed.", State: StateFailed}, nil
	}

	var submitted falResponse
	if err := json.Unmarshal(raw, &submitted); err != nil {
		return Result{ImageURL: imageURL, Warning: "Invalid JSON from FAL.", State: StateFailed}, nil
	}

	if submitted.RequestID != "" {
		return c.poll(ctx, imageURL, submitted.RequestID)
	}

	if len(submitted.Images) > 0 && submitted.Images[0].URL != "" {
		return Result{ImageURL: submitted.Images[0].URL, State: StateCompleted}, nil
	}

	return Result{ImageURL: imageURL, Warning: "No image from FLUX.", State: StateFailed}, nil
}

// poll walks the bounded-retry loop. Exhausting the iteration budget without
// a terminal status is a timeout, surfaced as a warning rather than an error.
func (c *FalClient) poll(ctx context.Context, imageURL, requestID string) (Result, error) {
	for i := 0; i < c.maxPolls; i++ {
		if err := c.clock.Sleep(ctx, c.pollInterval); err != nil {
			return Result{}, err
		}

		status, ok := c.fetchStatus(ctx, requestID)
		if !ok {
			continue
		}

		switch status.Status {
		case "COMPLETED":
			output := ""
			if len(status.Images) > 0 {
				output = status.Images[0].URL
			}
			if output == "" {
				output = status.Image.URL
			}
			if output != "" {
				return Result{ImageURL: output, State: StateCompleted}, nil
			}
		case "FAILED":
			return Result{ImageURL: imageURL, Warning: "Generation failed on server.", State: StateFailed}, nil
		}
	}

	return Result{ImageURL: imageURL, Warning: "Timed out waiting for FLUX.", State: StateTimedOut}, nil
}

func (c *FalClient) fetchStatus(ctx context.Context, requestID string) (falResponse, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/requests/"+requestID, nil)
	if err != nil {
		return falResponse{}, false
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return falResponse{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return falResponse{}, false
	}

	var status falResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return falResponse{}, false
	}
	return status, true
}
