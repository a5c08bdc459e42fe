package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adameda/revisia/internal/domain"
)

type recordingStore struct {
	saved []domain.QuizResult
	err   error
}

func (s *recordingStore) Save(_ context.Context, result domain.QuizResult) error {
	s.saved = append(s.saved, result)
	return s.err
}

func completedSession(t *testing.T) *Session {
	t.Helper()
	sess, err := New(sampleQuestions())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	for range sampleQuestions() {
		if _, err := sess.SubmitAnswer("4"); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if err := sess.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	return sess
}

func TestReportBuildsAndSavesResult(t *testing.T) {
	store := &recordingStore{}
	played := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reporter := NewReporterWithClock(store, func() time.Time { return played })

	sess := completedSession(t)
	result, err := reporter.Report(context.Background(), sess, "doc-1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if result.Score != 1 || result.Total != 3 {
		t.Fatalf("expected 1/3, got %d/%d", result.Score, result.Total)
	}
	if result.DocumentID != "doc-1" || !result.PlayedAt.Equal(played) {
		t.Fatalf("unexpected result metadata: %+v", result)
	}
	if result.ID == "" {
		t.Fatalf("expected generated result ID")
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(store.saved))
	}
}

func TestReportSaveFailureIsSwallowed(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	reporter := NewReporter(store)

	sess := completedSession(t)
	result, err := reporter.Report(context.Background(), sess, "doc-1")
	if err != nil {
		t.Fatalf("expected save failure to be swallowed, got %v", err)
	}
	if result.Score != 1 {
		t.Fatalf("expected result despite save failure, got %+v", result)
	}
}

func TestReportFiresOnce(t *testing.T) {
	store := &recordingStore{}
	reporter := NewReporter(store)

	sess := completedSession(t)
	first, _ := reporter.Report(context.Background(), sess, "doc-1")
	second, err := reporter.Report(context.Background(), sess, "doc-1")
	if err != nil {
		t.Fatalf("repeat report: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same result, got %s vs %s", second.ID, first.ID)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected a single save, got %d", len(store.saved))
	}
}

func TestReportLatchLivesOnSession(t *testing.T) {
	first := &recordingStore{}
	second := &recordingStore{}

	sess := completedSession(t)
	original, err := NewReporter(first).Report(context.Background(), sess, "doc-1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	// The session carries its own latch, so even a different reporter sees
	// the prior result and never issues a second save.
	repeat, err := NewReporter(second).Report(context.Background(), sess, "doc-1")
	if err != nil {
		t.Fatalf("repeat report: %v", err)
	}
	if repeat.ID != original.ID {
		t.Fatalf("expected latched result %s, got %s", original.ID, repeat.ID)
	}
	if len(first.saved) != 1 || len(second.saved) != 0 {
		t.Fatalf("expected one save total, got %d and %d", len(first.saved), len(second.saved))
	}
}

func TestReportRequiresCompleteSession(t *testing.T) {
	reporter := NewReporter(&recordingStore{})
	sess, _ := New(sampleQuestions())
	if _, err := reporter.Report(context.Background(), sess, "doc-1"); err != domain.ErrSessionActive {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
}
