package session

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/adameda/revisia/internal/domain"
)

// ResultStore persists completed quiz results.
type ResultStore interface {
	Save(ctx context.Context, result domain.QuizResult) error
}

// Reporter serializes a completed session and saves it best-effort. The
// user-visible outcome is final the moment the session completes; a failed
// save is logged and lost, never surfaced or retried.
type Reporter struct {
	store ResultStore
	now   func() time.Time
}

func NewReporter(store ResultStore) *Reporter {
	return &Reporter{store: store, now: time.Now}
}

// NewReporterWithClock is test-only for deterministic timestamps.
func NewReporterWithClock(store ResultStore, now func() time.Time) *Reporter {
	return &Reporter{store: store, now: now}
}

// Report exports sess and issues one save. Calling it again for the same
// session returns the already-built result without saving twice. The latch
// lives on the session, so the reporter holds no state of its own and a
// finished session is released with its connection.
func (r *Reporter) Report(ctx context.Context, sess *Session, documentID string) (domain.QuizResult, error) {
	if sess.reported != nil {
		return *sess.reported, nil
	}

	score, total, err := sess.Score()
	if err != nil {
		return domain.QuizResult{}, err
	}
	entries, err := sess.Export()
	if err != nil {
		return domain.QuizResult{}, err
	}

	result := domain.QuizResult{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Score:      score,
		Total:      total,
		Answers:    entries,
		PlayedAt:   r.now(),
	}
	sess.reported = &result

	if err := r.store.Save(ctx, result); err != nil {
		log.Printf("result save failed (document=%s): %v", documentID, err)
	}
	return result, nil
}
