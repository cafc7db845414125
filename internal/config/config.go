package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration values.
type Config struct {
	Port        string
	DatabaseURL string

	Anthropic  AnthropicConfig
	Google     GoogleConfig
	FalKey     string
	SerpAPIKey string
	Rainforest string

	Media  MediaConfig
	Imagen ImagenConfig

	RequestTimeout time.Duration
}

// AnthropicConfig describes the primary vision model provider.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// GoogleConfig describes the Gemini fallback provider.
type GoogleConfig struct {
	APIKey string
	Model  string
}

// MediaConfig describes S3/media related configuration.
type MediaConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicURL      string
	KeyPrefix      string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// ImagenConfig describes the Vertex AI image editing backend.
type ImagenConfig struct {
	ProjectID       string
	Location        string
	Model           string
	CredentialsJSON string
	CredentialsFile string
}

// FromEnv loads configuration from environment variables and applies defaults.
func FromEnv() Config {
	cfg := Config{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Anthropic: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  getenv("ANTHROPIC_MODEL", "claude-3-7-sonnet-20250219"),
		},
		Google: GoogleConfig{
			APIKey: os.Getenv("GOOGLE_API_KEY"),
			Model:  getenv("GOOGLE_MODEL", "gemini-2.5-flash-lite"),
		},
		FalKey:     os.Getenv("FAL_KEY"),
		SerpAPIKey: os.Getenv("SERPAPI_KEY"),
		Rainforest: os.Getenv("RAINFOREST_API_KEY"),
		Media: MediaConfig{
			Bucket:         os.Getenv("S3_BUCKET"),
			Region:         os.Getenv("S3_REGION"),
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			PublicURL:      os.Getenv("S3_PUBLIC_URL"),
			KeyPrefix:      strings.Trim(os.Getenv("S3_KEY_PREFIX"), "/"),
			AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("S3_SECRET_KEY"),
			ForcePathStyle: getenvBool("S3_FORCE_PATH_STYLE", false),
		},
		Imagen: ImagenConfig{
			ProjectID:       os.Getenv("IMAGEN_PROJECT_ID"),
			Location:        getenv("IMAGEN_LOCATION", "us-central1"),
			Model:           getenv("IMAGEN_MODEL", "imagegeneration@006"),
			CredentialsJSON: os.Getenv("IMAGEN_CREDENTIALS_JSON"),
			CredentialsFile: os.Getenv("IMAGEN_CREDENTIALS_FILE"),
		},
		RequestTimeout: getenvDuration("REQUEST_TIMEOUT", 120*time.Second),
	}

	if cfg.Port == "" {
		log.Fatal("APP_PORT cannot be empty")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}

	return parsed
}
