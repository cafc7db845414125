package storage

import (
	"context"
	"sync"
)

// InMemoryStore is a thread-safe cache used when a database is not configured.
// Entries live for the lifetime of the process; they are written once per key
// and never mutated afterwards.
type InMemoryStore struct {
	mu          sync.RWMutex
	analyses    map[string]EnrichedAnalysis
	suggestions map[string]Suggestions
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		analyses:    make(map[string]EnrichedAnalysis),
		suggestions: make(map[string]Suggestions),
	}
}

// SaveAnalysis caches the enriched analysis under its image URL.
func (s *InMemoryStore) SaveAnalysis(_ context.Context, imageURL string, analysis EnrichedAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analyses[imageURL] = analysis
	return nil
}

// GetAnalysis returns the cached analysis for the image URL, if any.
func (s *InMemoryStore) GetAnalysis(_ context.Context, imageURL string) (EnrichedAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	analysis, ok := s.analyses[imageURL]
	if !ok {
		return EnrichedAnalysis{}, ErrNotFound
	}
	return analysis, nil
}

// SaveSuggestions caches design suggestions under their image URL.
func (s *InMemoryStore) SaveSuggestions(_ context.Context, imageURL string, suggestions Suggestions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suggestions[imageURL] = suggestions
	return nil
}

// GetSuggestions returns cached suggestions for the image URL, if any.
func (s *InMemoryStore) GetSuggestions(_ context.Context, imageURL string) (Suggestions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suggestions, ok := s.suggestions[imageURL]
	if !ok {
		return Suggestions{}, ErrNotFound
	}
	return suggestions, nil
}

// Close satisfies the Store interface.
func (s *InMemoryStore) Close() {}
