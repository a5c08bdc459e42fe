package session

import (
	"github.com/adameda/revisia/internal/domain"
)

// Session walks a fixed ordered question set one question at a time, grading
// each answer exactly once and accumulating the score. It moves through
// Presenting(0) .. Presenting(n-1) and ends in Complete once the last
// question has been answered and advanced past.
//
// A Session is owned by the single connection goroutine that created it and
// is never shared, so it carries no lock.
type Session struct {
	questions []domain.Question
	index     int
	score     int
	answered  []*domain.AnsweredQuestion // nil until the question is answered
	reported  *domain.QuizResult         // set by Reporter on first report
}

// New builds a session over questions. The slice is copied so later mutation
// by the caller cannot reorder a running quiz.
func New(questions []domain.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	qs := make([]domain.Question, len(questions))
	copy(qs, questions)
	return &Session{
		questions: qs,
		answered:  make([]*domain.AnsweredQuestion, len(qs)),
	}, nil
}

// Current returns the question being presented.
func (s *Session) Current() (domain.Question, error) {
	if s.IsComplete() {
		return domain.Question{}, domain.ErrSessionComplete
	}
	return s.questions[s.index], nil
}

// SubmitAnswer grades answer against the current question and records the
// outcome. Answering is single-shot per question: a repeated call returns the
// previously computed outcome without re-grading or touching the score.
// The session index does not move; advancing is a separate explicit step so
// the caller can show feedback first.
func (s *Session) SubmitAnswer(answer string) (domain.Outcome, error) {
	if s.IsComplete() {
		return domain.Outcome{}, domain.ErrSessionComplete
	}
	q := s.questions[s.index]
	if prev := s.answered[s.index]; prev != nil {
		return domain.Outcome{Correct: prev.Correct, Expected: q.Answer}, nil
	}
	correct := Grade(answer, q.Answer)
	s.answered[s.index] = &domain.AnsweredQuestion{
		Question:  q,
		Submitted: answer,
		Correct:   correct,
	}
	if correct {
		s.score++
	}
	return domain.Outcome{Correct: correct, Expected: q.Answer}, nil
}

// Advance moves to the next question, or to Complete when the last question
// was just answered. It refuses to skip an unanswered question.
func (s *Session) Advance() error {
	if s.IsComplete() {
		return domain.ErrSessionComplete
	}
	if s.answered[s.index] == nil {
		return domain.ErrUnanswered
	}
	s.index++
	return nil
}

// IsComplete reports whether every question has been answered and passed.
func (s *Session) IsComplete() bool {
	return s.index == len(s.questions)
}

// Progress returns the 1-based position of the current question and the
// total count, for "Question i / n" style rendering.
func (s *Session) Progress() (current, total int) {
	pos := s.index + 1
	if s.IsComplete() {
		pos = len(s.questions)
	}
	return pos, len(s.questions)
}

// Score returns the final (score, total) pair. Valid only once complete.
func (s *Session) Score() (score, total int, err error) {
	if !s.IsComplete() {
		return 0, 0, domain.ErrSessionActive
	}
	return s.score, len(s.questions), nil
}

// Export returns one entry per question in original order. Questions without
// a recorded answer are reported with an empty submission and Correct=false
// rather than omitted, keeping the result set fixed-length. With the current
// transitions every question is answered before Complete is reachable; the
// empty-entry branch exists for callers that later allow early exit.
func (s *Session) Export() ([]domain.ResultEntry, error) {
	if !s.IsComplete() {
		return nil, domain.ErrSessionActive
	}
	entries := make([]domain.ResultEntry, len(s.questions))
	for i, q := range s.questions {
		entries[i] = domain.ResultEntry{QuestionID: q.ID}
		if a := s.answered[i]; a != nil {
			entries[i].Submitted = a.Submitted
			entries[i].Correct = a.Correct
		}
	}
	return entries, nil
}
