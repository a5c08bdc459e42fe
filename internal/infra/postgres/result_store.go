package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/adameda/revisia/internal/domain"
)

// ResultStore persists completed quiz results.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Save(ctx context.Context, result domain.QuizResult) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO results (id, document_id, score, total, answers, played_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		result.ID, result.DocumentID, result.Score, result.Total, answers, result.PlayedAt)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// History returns a document's results ordered by play time, oldest first,
// feeding the score-over-time view.
func (s *ResultStore) History(ctx context.Context, documentID string) ([]domain.QuizResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, document_id, score, total, answers, played_at
		FROM results WHERE document_id=$1 ORDER BY played_at ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []domain.QuizResult
	for rows.Next() {
		var r domain.QuizResult
		var answers []byte
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.Score, &r.Total, &answers, &r.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal(answers, &r.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
