package domain

import "time"

// QuestionKind distinguishes multiple-choice from open-response questions.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "qcm"
	KindOpenResponse   QuestionKind = "open"
)

// Question is a single quiz question. Immutable once loaded into a session.
type Question struct {
	ID          string       `json:"id"`
	Prompt      string       `json:"prompt"`
	Kind        QuestionKind `json:"kind"`
	Choices     []string     `json:"choices,omitempty"` // ordered; multiple-choice only
	Answer      string       `json:"answer"`
	Explanation string       `json:"explanation,omitempty"`
}

// Quiz is the ordered question set generated for one document.
type Quiz struct {
	DocumentID string     `json:"documentId"`
	Questions  []Question `json:"questions"`
}

// Outcome summarizes the grading of one submitted answer.
type Outcome struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"`
}

// AnsweredQuestion records a question together with its single-shot answer.
// Created when the question is first answered; never mutated afterward.
type AnsweredQuestion struct {
	Question  Question
	Submitted string
	Correct   bool
}

// ResultEntry is the per-question line of an exported session result.
type ResultEntry struct {
	QuestionID string `json:"questionId"`
	Submitted  string `json:"submitted"`
	Correct    bool   `json:"correct"`
}

// QuizResult is the persistence payload for one completed session.
type QuizResult struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"documentId"`
	Score      int           `json:"score"`
	Total      int           `json:"total"`
	Answers    []ResultEntry `json:"answers"`
	PlayedAt   time.Time     `json:"playedAt"`
}

// GenerationResult is the successful outcome of a quiz generation request.
// QuotaRemaining is nil when the backend did not report an allowance.
type GenerationResult struct {
	QuestionCount  int  `json:"questionCount"`
	QuotaRemaining *int `json:"quotaRemaining,omitempty"`
}

// GenerationError is a generation failure that may still carry an updated
// quota value, e.g. a rate-limit response.
type GenerationError struct {
	Message        string
	QuotaRemaining *int
}

func (e *GenerationError) Error() string {
	return e.Message
}
