package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/adameda/revisia/internal/domain"
)

// StubGenerator fabricates a small quiz from the document text. It stands in
// for the remote generator when no endpoint is configured (demos, tests).
type StubGenerator struct{}

func (StubGenerator) GenerateQuiz(_ context.Context, text string, count int) ([]domain.Question, error) {
	terms := keyTerms(text, count)
	questions := make([]domain.Question, 0, len(terms))
	for _, term := range terms {
		questions = append(questions, domain.Question{
			ID:      uuid.NewString(),
			Prompt:  fmt.Sprintf("Does the term %q appear in the document?", term),
			Kind:    domain.KindMultipleChoice,
			Choices: []string{"Yes", "No"},
			Answer:  "Yes",
		})
	}
	return questions, nil
}

// keyTerms picks up to count distinct longer words, in order of appearance.
func keyTerms(text string, count int) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, ".,;:!?()\"'")
		if len(word) < 6 {
			continue
		}
		key := strings.ToLower(word)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, word)
		if len(terms) == count {
			break
		}
	}
	return terms
}
