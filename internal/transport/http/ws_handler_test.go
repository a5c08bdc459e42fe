package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adameda/revisia/internal/app"
	"github.com/adameda/revisia/internal/domain"
	"github.com/adameda/revisia/internal/infra/memory"
	"github.com/adameda/revisia/internal/progress"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.NewStore()
	store.AddDocument("doc-quiz", "Photosynthesis converts sunlight into chemical energy.")
	store.AddDocument("doc-fresh", "Mitochondria produce energy through cellular respiration.")
	_ = store.SaveQuiz(context.Background(), domain.Quiz{
		DocumentID: "doc-quiz",
		Questions: []domain.Question{
			{ID: "q1", Prompt: "What is 2 + 2?", Kind: domain.KindMultipleChoice, Choices: []string{"3", "4"}, Answer: "4"},
			{ID: "q2", Prompt: "Capital of France?", Kind: domain.KindOpenResponse, Answer: "Paris"},
		},
	})

	service := app.NewQuizService(
		memory.NewQuizRepository(store, time.Minute),
		store,
		store,
		memory.NewResultStore(),
		memory.NewQuotaStore(5),
		memory.StubGenerator{},
		3,
	)

	milestones := []progress.Milestone{{Target: 90, Delay: 0, Label: "Working..."}}
	handler := NewWSHandlerWithTiming(service, milestones, time.Millisecond, 0)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, documentID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?documentId=" + documentID + "&userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type, msg.Payload
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func TestQuizPlayFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server, "doc-quiz")

	send(t, conn, "start", nil)
	typ, payload := readNext(t, conn)
	if typ != "question" || payload["index"].(float64) != 1 || payload["total"].(float64) != 2 {
		t.Fatalf("expected first question, got %s %+v", typ, payload)
	}

	send(t, conn, "answer", map[string]any{"answer": " 4 "})
	typ, payload = readNext(t, conn)
	if typ != "answerResult" || payload["correct"] != true {
		t.Fatalf("expected correct answerResult, got %s %+v", typ, payload)
	}

	send(t, conn, "next", nil)
	typ, payload = readNext(t, conn)
	if typ != "question" || payload["index"].(float64) != 2 {
		t.Fatalf("expected second question, got %s %+v", typ, payload)
	}

	send(t, conn, "answer", map[string]any{"answer": "Lyon"})
	typ, payload = readNext(t, conn)
	if typ != "answerResult" || payload["correct"] != false || payload["expected"] != "Paris" {
		t.Fatalf("expected incorrect answerResult with expected answer, got %s %+v", typ, payload)
	}

	send(t, conn, "next", nil)
	typ, payload = readNext(t, conn)
	if typ != "completed" || payload["score"].(float64) != 1 || payload["total"].(float64) != 2 {
		t.Fatalf("expected completed 1/2, got %s %+v", typ, payload)
	}
}

func TestAdvanceWithoutAnswerRejected(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server, "doc-quiz")

	send(t, conn, "start", nil)
	if typ, _ := readNext(t, conn); typ != "question" {
		t.Fatalf("expected question, got %s", typ)
	}

	send(t, conn, "next", nil)
	typ, payload := readNext(t, conn)
	if typ != "error" || !strings.Contains(payload["message"].(string), "not answered") {
		t.Fatalf("expected unanswered error, got %s %+v", typ, payload)
	}
}

func TestGenerateFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server, "doc-fresh")

	send(t, conn, "generate", nil)

	var (
		lastPercent  float64
		sawProgress  bool
		sawDismissal bool
		quota        float64 = -1
		notice       string
	)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && (!sawDismissal || notice == "") {
		typ, payload := readNext(t, conn)
		switch typ {
		case "progress":
			sawProgress = true
			percent := payload["percent"].(float64)
			if percent < lastPercent {
				t.Fatalf("progress decreased %v -> %v", lastPercent, percent)
			}
			lastPercent = percent
		case "quota":
			quota = payload["remaining"].(float64)
		case "notice":
			notice = payload["message"].(string)
		case "progressDismiss":
			sawDismissal = true
		case "error":
			t.Fatalf("unexpected error: %+v", payload)
		}
	}

	if !sawProgress || lastPercent != 100 {
		t.Fatalf("expected progress ending at 100, got %v (seen=%v)", lastPercent, sawProgress)
	}
	if quota != 4 {
		t.Fatalf("expected quota 4, got %v", quota)
	}
	if !strings.Contains(notice, "questions generated") {
		t.Fatalf("unexpected notice %q", notice)
	}
	if !sawDismissal {
		t.Fatalf("expected progress dismissal")
	}

	// The generated quiz is immediately playable on a fresh connection.
	playConn := dial(t, server, "doc-fresh")
	send(t, playConn, "start", nil)
	typ, payload := readNext(t, playConn)
	if typ != "question" || payload["total"].(float64) != 3 {
		t.Fatalf("expected generated quiz with 3 questions, got %s %+v", typ, payload)
	}
}

func TestGenerateForExistingQuizFails(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server, "doc-quiz")

	send(t, conn, "generate", nil)
	for {
		typ, payload := readNext(t, conn)
		if typ == "error" {
			if !strings.Contains(payload["message"].(string), "already generated") {
				t.Fatalf("unexpected error message: %+v", payload)
			}
			return
		}
		if typ == "notice" {
			t.Fatalf("expected failure, got success notice")
		}
	}
}
