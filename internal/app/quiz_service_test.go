package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adameda/revisia/internal/app"
	"github.com/adameda/revisia/internal/domain"
	"github.com/adameda/revisia/internal/infra/memory"
)

func newTestService(t *testing.T, quotaLimit int) (*app.QuizService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddDocument("doc-1", "Photosynthesis converts sunlight into chemical energy inside chloroplasts.")
	service := app.NewQuizService(
		memory.NewQuizRepository(store, 5*time.Minute),
		store,
		store,
		memory.NewResultStore(),
		memory.NewQuotaStore(quotaLimit),
		memory.StubGenerator{},
		3,
	)
	return service, store
}

func TestGenerateThenPlay(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, 5)

	result, err := service.Generate(ctx, "doc-1", "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.QuestionCount != 3 {
		t.Fatalf("expected 3 questions, got %d", result.QuestionCount)
	}
	if result.QuotaRemaining == nil || *result.QuotaRemaining != 4 {
		t.Fatalf("expected quota 4, got %v", result.QuotaRemaining)
	}

	sess, err := service.StartSession(ctx, "doc-1")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	for !sess.IsComplete() {
		if _, err := sess.SubmitAnswer("Yes"); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if err := sess.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	saved, err := service.FinishSession(ctx, sess, "doc-1")
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if saved.Score != 3 || saved.Total != 3 {
		t.Fatalf("expected 3/3, got %d/%d", saved.Score, saved.Total)
	}

	history, err := service.History(ctx, "doc-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ID != saved.ID {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestGenerateRejectsExistingQuiz(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, 5)
	_ = store.SaveQuiz(ctx, domain.Quiz{DocumentID: "doc-1", Questions: []domain.Question{{ID: "q1", Answer: "x"}}})

	_, err := service.Generate(ctx, "doc-1", "u1")
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Message != domain.ErrQuizExists.Error() {
		t.Fatalf("unexpected message %q", genErr.Message)
	}
}

func TestGenerateQuotaExhausted(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, 1)
	store.AddDocument("doc-2", "Mitochondria produce cellular energy through respiration processes.")

	if _, err := service.Generate(ctx, "doc-1", "u1"); err != nil {
		t.Fatalf("first generate: %v", err)
	}

	_, err := service.Generate(ctx, "doc-2", "u1")
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.QuotaRemaining == nil || *genErr.QuotaRemaining != 0 {
		t.Fatalf("expected quota 0 on failure, got %v", genErr.QuotaRemaining)
	}
	if genErr.Message != domain.ErrQuotaExceeded.Error() {
		t.Fatalf("unexpected message %q", genErr.Message)
	}
}

func TestGenerateUnknownDocument(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, 5)

	_, err := service.Generate(ctx, "missing", "u1")
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Message != domain.ErrDocumentNotFound.Error() {
		t.Fatalf("unexpected message %q", genErr.Message)
	}
}

func TestGenerateEmptyQuiz(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, 5)
	// Text with no usable terms yields an empty stub quiz.
	store.AddDocument("doc-3", "a b c d e")

	_, err := service.Generate(ctx, "doc-3", "u1")
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Message != domain.ErrNoQuestionsGenerated.Error() {
		t.Fatalf("unexpected message %q", genErr.Message)
	}
	if genErr.QuotaRemaining == nil {
		t.Fatalf("expected quota carried on failure")
	}
}

func TestStartSessionWithoutQuiz(t *testing.T) {
	service, _ := newTestService(t, 5)
	if _, err := service.StartSession(context.Background(), "doc-1"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}
