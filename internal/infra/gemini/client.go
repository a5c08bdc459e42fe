package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adameda/revisia/internal/domain"
)

const promptTemplate = `You are an expert study-quiz generator. Create multiple-choice
questions based only on the course material below; every question and its
correct answer must be directly justified by the text. Generate %d short,
unambiguous questions, each with 4 plausible choices and exactly one correct
answer, covering the whole text evenly.

Respond with JSON of the form {"items": [{"type": "qcm", "question": "...",
"choices": ["..."], "answer": "...", "explanation": "..."}]}.

TEXT:
<<<
%s
<<<`

// Client calls a Gemini-style generateContent endpoint and parses the
// structured quiz out of the model's JSON reply.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type quizItem struct {
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

type quizReply struct {
	Items []quizItem `json:"items"`
}

// GenerateQuiz asks the model for count questions grounded in text.
func (c *Client) GenerateQuiz(ctx context.Context, text string, count int) ([]domain.Question, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(promptTemplate, count, text)}}}},
		GenerationConfig: generationConfig{
			Temperature:      0.3,
			ResponseMimeType: "application/json",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generator returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("generator returned no candidates")
	}

	var reply quizReply
	if err := json.Unmarshal([]byte(decoded.Candidates[0].Content.Parts[0].Text), &reply); err != nil {
		return nil, fmt.Errorf("parse quiz JSON: %w", err)
	}

	questions := make([]domain.Question, 0, len(reply.Items))
	for _, item := range reply.Items {
		kind := domain.KindOpenResponse
		if item.Type == "qcm" {
			kind = domain.KindMultipleChoice
		}
		questions = append(questions, domain.Question{
			ID:          uuid.NewString(),
			Prompt:      item.Question,
			Kind:        kind,
			Choices:     item.Choices,
			Answer:      item.Answer,
			Explanation: item.Explanation,
		})
	}
	return questions, nil
}
