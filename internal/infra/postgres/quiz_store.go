package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/adameda/revisia/internal/domain"
)

// QuizStore keeps generated quizzes as JSONB, one row per document, and
// serves the source document text for generation.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) LoadQuiz(ctx context.Context, documentID string) (domain.Quiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE document_id=$1`, documentID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizStore) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quizzes (document_id, data) VALUES ($1, $2)
		ON CONFLICT (document_id) DO UPDATE SET data = EXCLUDED.data`,
		quiz.DocumentID, raw)
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) HasQuiz(ctx context.Context, documentID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quizzes WHERE document_id=$1)`, documentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check quiz: %w", err)
	}
	return exists, nil
}

func (s *QuizStore) DocumentText(ctx context.Context, documentID string) (string, error) {
	var content string
	err := s.pool.QueryRow(ctx, `SELECT content FROM documents WHERE id=$1`, documentID).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrDocumentNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load document: %w", err)
	}
	return content, nil
}
