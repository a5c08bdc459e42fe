package domain

import "errors"

var (
	// ErrNoQuestions is returned when a session is built from an empty question set.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrSessionComplete is returned when a presenting-only operation is called after completion.
	ErrSessionComplete = errors.New("quiz session already complete")
	// ErrSessionActive is returned when a completion-only operation is called mid-session.
	ErrSessionActive = errors.New("quiz session still in progress")
	// ErrUnanswered is returned when advancing past a question that has no recorded outcome.
	ErrUnanswered = errors.New("current question not answered")
	// ErrQuizNotFound indicates no quiz has been generated for the document.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizExists indicates a quiz was already generated for the document.
	ErrQuizExists = errors.New("quiz already generated for this document")
	// ErrDocumentNotFound indicates the source document could not be loaded.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrGenerationInFlight is returned when a coordinator is started twice.
	ErrGenerationInFlight = errors.New("generation already running")
	// ErrQuotaExceeded indicates the caller used up the daily generation allowance.
	ErrQuotaExceeded = errors.New("generation quota exceeded")
	// ErrNoQuestionsGenerated indicates the generator returned an empty quiz.
	ErrNoQuestionsGenerated = errors.New("no questions generated")
)
