package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/adameda/revisia/internal/domain"
	"github.com/adameda/revisia/internal/progress"
	"github.com/adameda/revisia/internal/session"
)

// QuestionRepository loads the generated quiz for a document (from cache or
// backing store). Invalidate drops any cached copy after a regeneration.
type QuestionRepository interface {
	GetQuiz(ctx context.Context, documentID string) (domain.Quiz, error)
	Invalidate(ctx context.Context, documentID string)
}

// QuizWriter stores freshly generated quizzes.
type QuizWriter interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	HasQuiz(ctx context.Context, documentID string) (bool, error)
}

// DocumentSource supplies the raw text the generator works from.
type DocumentSource interface {
	DocumentText(ctx context.Context, documentID string) (string, error)
}

// ResultStore persists completed quiz results and serves the score history.
type ResultStore interface {
	session.ResultStore
	History(ctx context.Context, documentID string) ([]domain.QuizResult, error)
}

// QuotaStore tracks the per-user daily generation allowance. Consume burns
// one unit and returns what is left; at zero it returns ErrQuotaExceeded.
type QuotaStore interface {
	Consume(ctx context.Context, userID string) (remaining int, err error)
}

// QuizGenerator produces questions from document text (the real, slow call).
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, text string, count int) ([]domain.Question, error)
}

// QuizService contains the core study-quiz use cases.
type QuizService struct {
	quizzes   QuestionRepository
	writer    QuizWriter
	documents DocumentSource
	results   ResultStore
	quota     QuotaStore
	generator QuizGenerator
	reporter  *session.Reporter

	questionsPerQuiz int
}

func NewQuizService(quizzes QuestionRepository, writer QuizWriter, documents DocumentSource,
	results ResultStore, quota QuotaStore, generator QuizGenerator, questionsPerQuiz int) *QuizService {
	return &QuizService{
		quizzes:          quizzes,
		writer:           writer,
		documents:        documents,
		results:          results,
		quota:            quota,
		generator:        generator,
		reporter:         session.NewReporter(results),
		questionsPerQuiz: questionsPerQuiz,
	}
}

// StartSession seeds a fresh quiz session from the document's question set.
func (s *QuizService) StartSession(ctx context.Context, documentID string) (*session.Session, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return session.New(quiz.Questions)
}

// FinishSession reports a completed session. Persistence is best-effort; the
// returned result is authoritative for display regardless of save success.
func (s *QuizService) FinishSession(ctx context.Context, sess *session.Session, documentID string) (domain.QuizResult, error) {
	return s.reporter.Report(ctx, sess, documentID)
}

// History returns past results for a document, oldest first.
func (s *QuizService) History(ctx context.Context, documentID string) ([]domain.QuizResult, error) {
	return s.results.History(ctx, documentID)
}

// Generate runs the full generation pipeline for one document: quota check,
// document load, question generation, storage. Failures come back as
// *domain.GenerationError where a user-facing message (and possibly an
// updated quota) exists; anything else is an infrastructure error the
// coordinator maps to a generic message.
func (s *QuizService) Generate(ctx context.Context, documentID, userID string) (domain.GenerationResult, error) {
	exists, err := s.writer.HasQuiz(ctx, documentID)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("check existing quiz: %w", err)
	}
	if exists {
		return domain.GenerationResult{}, &domain.GenerationError{Message: domain.ErrQuizExists.Error()}
	}

	remaining, err := s.quota.Consume(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			zero := 0
			return domain.GenerationResult{}, &domain.GenerationError{
				Message:        domain.ErrQuotaExceeded.Error(),
				QuotaRemaining: &zero,
			}
		}
		return domain.GenerationResult{}, fmt.Errorf("consume quota: %w", err)
	}

	text, err := s.documents.DocumentText(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return domain.GenerationResult{}, &domain.GenerationError{
				Message:        domain.ErrDocumentNotFound.Error(),
				QuotaRemaining: &remaining,
			}
		}
		return domain.GenerationResult{}, fmt.Errorf("load document: %w", err)
	}

	questions, err := s.generator.GenerateQuiz(ctx, text, s.questionsPerQuiz)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate quiz: %w", err)
	}
	if len(questions) == 0 {
		return domain.GenerationResult{}, &domain.GenerationError{
			Message:        domain.ErrNoQuestionsGenerated.Error(),
			QuotaRemaining: &remaining,
		}
	}

	if err := s.writer.SaveQuiz(ctx, domain.Quiz{DocumentID: documentID, Questions: questions}); err != nil {
		return domain.GenerationResult{}, fmt.Errorf("save quiz: %w", err)
	}
	s.quizzes.Invalidate(ctx, documentID)

	return domain.GenerationResult{QuestionCount: len(questions), QuotaRemaining: &remaining}, nil
}

// GeneratorFor binds a user to the generation pipeline so a coordinator can
// drive it through the plain Generator contract.
func (s *QuizService) GeneratorFor(userID string) progress.Generator {
	return progress.GeneratorFunc(func(ctx context.Context, documentID string) (domain.GenerationResult, error) {
		return s.Generate(ctx, documentID, userID)
	})
}
