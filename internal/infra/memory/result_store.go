package memory

import (
	"context"
	"sync"

	"github.com/adameda/revisia/internal/domain"
)

// ResultStore keeps quiz results in memory, grouped by document.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string][]domain.QuizResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string][]domain.QuizResult)}
}

func (s *ResultStore) Save(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.DocumentID] = append(s.results[result.DocumentID], result)
	return nil
}

// History returns the results for a document in insertion order.
func (s *ResultStore) History(_ context.Context, documentID string) ([]domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizResult, len(s.results[documentID]))
	copy(out, s.results[documentID])
	return out, nil
}
