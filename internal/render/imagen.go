package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"

	"roomSenseAi/internal/media"
)

// VertexImagen edits room photos through Vertex AI Imagen. It is the render
// backend used when no FAL credential is configured.
type VertexImagen struct {
	projectID          string
	location           string
	model              string
	apiKey             string
	serviceAccount     string
	serviceAccountJSON string
	uploader           media.Uploader
}

// VertexImagenConfig describes how to connect to Imagen.
type VertexImagenConfig struct {
	ProjectID          string
	Location           string
	Model              string
	APIKey             string
	ServiceAccount     string
	ServiceAccountJSON string
}

// NewVertexImagen wires a VertexImagen client.
func NewVertexImagen(cfg VertexImagenConfig, uploader media.Uploader) *VertexImagen {
	return &VertexImagen{
		projectID:          strings.TrimSpace(cfg.ProjectID),
		location:           strings.TrimSpace(cfg.Location),
		model:              strings.TrimSpace(cfg.Model),
		apiKey:             strings.TrimSpace(cfg.APIKey),
		serviceAccount:     strings.TrimSpace(cfg.ServiceAccount),
		serviceAccountJSON: strings.TrimSpace(cfg.ServiceAccountJSON),
		uploader:           uploader,
	}
}

// Configured reports whether the client can make requests.
func (v *VertexImagen) Configured() bool {
	return v != nil && v.projectID != "" && v.location != "" && v.model != "" && v.uploader != nil
}

// Edit reimagines the room photo per the prompt and uploads the result,
// returning its URL.
func (v *VertexImagen) Edit(ctx context.Context, imageURL, prompt string) (string, error) {
	if !v.Configured() {
		return "", fmt.Errorf("render: imagen client not configured")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("render: prompt is required")
	}

	encoded, err := v.encodeBaseImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	instance, err := structpb.NewValue(map[string]any{
		"prompt": prompt,
		"image": map[string]any{
			"bytesBase64Encoded": encoded,
		},
	})
	if err != nil {
		return "", err
	}

	params, err := structpb.NewValue(map[string]any{
		"sampleCount": 1,
		"editMode":    "inpainting-free-form",
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", v.projectID, v.location, v.model)
	options := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", v.location))}
	if v.serviceAccountJSON != "" {
		options = append(options, option.WithCredentialsJSON([]byte(v.serviceAccountJSON)))
	} else if v.serviceAccount != "" {
		options = append(options, option.WithCredentialsFile(v.serviceAccount))
	} else if v.apiKey != "" {
		options = append(options, option.WithAPIKey(v.apiKey))
	}

	client, err := aiplatform.NewPredictionClient(ctx, options...)
	if err != nil {
		return "", fmt.Errorf("render: prediction client: %w", err)
	}
	defer client.Close()

	resp, err := client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:   endpoint,
		Instances:  []*structpb.Value{instance},
		Parameters: params,
	})
	if err != nil {
		return "", fmt.Errorf("render: predict: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return "", fmt.Errorf("render: empty prediction response")
	}

	field := resp.Predictions[0].GetStructValue().GetFields()["bytesBase64Encoded"]
	if field == nil {
		return "", fmt.Errorf("render: prediction missing bytes")
	}

	data, err := base64.StdEncoding.DecodeString(field.GetStringValue())
	if err != nil {
		return "", fmt.Errorf("render: decode result: %w", err)
	}

	result, err := media.UploadBytes(ctx, v.uploader, "imagen-render.png", "image/png", data)
	if err != nil {
		return "", fmt.Errorf("render: upload result: %w", err)
	}
	return result.URL, nil
}

func (v *VertexImagen) encodeBaseImage(ctx context.Context, imageURL string) (string, error) {
	if trimmed := strings.TrimSpace(imageURL); strings.HasPrefix(trimmed, "data:") {
		parts := strings.SplitN(trimmed, ",", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("render: invalid data URL")
		}
		return parts[1], nil
	}
	if strings.TrimSpace(imageURL) == "" {
		return "", fmt.Errorf("render: reference image is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("render: fetch base image: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render: fetch base image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("render: base image status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("render: read base image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
