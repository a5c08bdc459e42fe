package memory

import (
	"context"
	"sync"

	"github.com/adameda/revisia/internal/domain"
)

// Store is an in-memory backing store for documents and their generated
// quizzes, useful when the service runs without Postgres (demos, tests).
type Store struct {
	mu        sync.RWMutex
	documents map[string]string
	quizzes   map[string]domain.Quiz
}

func NewStore() *Store {
	return &Store{
		documents: make(map[string]string),
		quizzes:   make(map[string]domain.Quiz),
	}
}

// AddDocument registers a document's text under id.
func (s *Store) AddDocument(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[id] = text
}

func (s *Store) DocumentText(_ context.Context, documentID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.documents[documentID]
	if !ok {
		return "", domain.ErrDocumentNotFound
	}
	return text, nil
}

func (s *Store) LoadQuiz(_ context.Context, documentID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[documentID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) SaveQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.DocumentID] = quiz
	return nil
}

func (s *Store) HasQuiz(_ context.Context, documentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.quizzes[documentID]
	return ok, nil
}
