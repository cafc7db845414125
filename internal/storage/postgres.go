package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists analysis results in PostgreSQL so cached results
// survive restarts. Payloads are stored as JSONB keyed by image URL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS spatial_analyses (
	image_url TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS design_suggestions (
	image_url TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// SaveAnalysis stores the enriched analysis, keeping the first write for a key.
func (s *PostgresStore) SaveAnalysis(ctx context.Context, imageURL string, analysis EnrichedAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO spatial_analyses (image_url, payload) VALUES ($1, $2) ON CONFLICT (image_url) DO NOTHING`,
		imageURL, payload); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// GetAnalysis loads a cached analysis by image URL.
func (s *PostgresStore) GetAnalysis(ctx context.Context, imageURL string) (EnrichedAnalysis, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM spatial_analyses WHERE image_url = $1`, imageURL).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return EnrichedAnalysis{}, ErrNotFound
	}
	if err != nil {
		return EnrichedAnalysis{}, fmt.Errorf("query analysis: %w", err)
	}

	var analysis EnrichedAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return EnrichedAnalysis{}, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return analysis, nil
}

// SaveSuggestions stores design suggestions, keeping the first write for a key.
func (s *PostgresStore) SaveSuggestions(ctx context.Context, imageURL string, suggestions Suggestions) error {
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO design_suggestions (image_url, payload) VALUES ($1, $2) ON CONFLICT (image_url) DO NOTHING`,
		imageURL, payload); err != nil {
		return fmt.Errorf("insert suggestions: %w", err)
	}
	return nil
}

// GetSuggestions loads cached suggestions by image URL.
func (s *PostgresStore) GetSuggestions(ctx context.Context, imageURL string) (Suggestions, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM design_suggestions WHERE image_url = $1`, imageURL).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return Suggestions{}, ErrNotFound
	}
	if err != nil {
		return Suggestions{}, fmt.Errorf("query suggestions: %w", err)
	}

	var suggestions Suggestions
	if err := json.Unmarshal(payload, &suggestions); err != nil {
		return Suggestions{}, fmt.Errorf("unmarshal suggestions: %w", err)
	}
	return suggestions, nil
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
