package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adameda/revisia/internal/app"
	"github.com/adameda/revisia/internal/progress"
	"github.com/adameda/revisia/internal/session"
)

// WSHandler serves the quiz page behavior over one websocket per page: the
// sequential quiz session and the generation progress stream.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader

	// generation timing, swapped out by tests
	milestones []progress.Milestone
	interval   time.Duration
	dwell      time.Duration
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		milestones: progress.DefaultMilestones(),
		interval:   100 * time.Millisecond,
		dwell:      time.Second,
	}
}

// NewWSHandlerWithTiming is test-only for fast generation timelines.
func NewWSHandlerWithTiming(service *app.QuizService, milestones []progress.Milestone, interval, dwell time.Duration) *WSHandler {
	h := NewWSHandler(service)
	h.milestones = milestones
	h.interval = interval
	h.dwell = dwell
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type questionPayload struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Kind    string   `json:"kind"`
	Choices []string `json:"choices,omitempty"`
}

type answerResultPayload struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"`
}

type completedPayload struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

type progressPayload struct {
	Percent int    `json:"percent"`
	Label   string `json:"label"`
}

type quotaPayload struct {
	Remaining int `json:"remaining"`
}

type noticePayload struct {
	Message string `json:"message"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives the quiz page protocol.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	documentID := r.URL.Query().Get("documentId")
	userID := r.URL.Query().Get("userId")
	if documentID == "" || userID == "" {
		http.Error(w, "missing documentId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	// The send channel is never closed; the writer exits via closeSignals so
	// a late coordinator goroutine can never hit a closed channel.
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	sink := &wsSink{send: send, closed: closeSignals}

	// The session is owned by this read loop; all transitions happen here.
	var sess *session.Session
	var coord *progress.Coordinator

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			sess, err = h.service.StartSession(r.Context(), documentID)
			if err != nil {
				sink.Failure(err.Error())
				continue
			}
			h.sendQuestion(sink, sess)
		case "answer":
			if sess == nil {
				sink.Failure("no active quiz session")
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				sink.Failure("invalid answer payload")
				continue
			}
			outcome, err := sess.SubmitAnswer(payload.Answer)
			if err != nil {
				sink.Failure(err.Error())
				continue
			}
			sink.emit("answerResult", answerResultPayload{
				Correct:  outcome.Correct,
				Expected: outcome.Expected,
			})
		case "next":
			if sess == nil {
				sink.Failure("no active quiz session")
				continue
			}
			if err := sess.Advance(); err != nil {
				sink.Failure(err.Error())
				continue
			}
			if !sess.IsComplete() {
				h.sendQuestion(sink, sess)
				continue
			}
			// Completion display is final; the save inside FinishSession is
			// best-effort and never blocks it.
			result, err := h.service.FinishSession(r.Context(), sess, documentID)
			if err != nil {
				sink.Failure(err.Error())
				continue
			}
			sink.emit("completed", completedPayload{Score: result.Score, Total: result.Total})
		case "generate":
			// A coordinator stays busy through its completion dwell; only a
			// fully finished one may be replaced, or its late Dismiss would
			// tear down the new request's indicator.
			if coord != nil && !coord.Finished() {
				sink.Failure("generation already running")
				continue
			}
			coord = progress.NewCoordinatorWithTiming(
				h.service.GeneratorFor(userID), sink, sink, sink,
				h.milestones, h.interval, h.dwell, nil)
			if err := coord.Start(r.Context(), documentID); err != nil {
				sink.Failure(err.Error())
			}
		default:
			sink.Failure("unsupported message type")
		}
	}

	close(closeSignals)
	if coord != nil {
		coord.Close()
	}
	<-writerDone
}

func (h *WSHandler) sendQuestion(sink *wsSink, sess *session.Session) {
	q, err := sess.Current()
	if err != nil {
		sink.Failure(err.Error())
		return
	}
	current, total := sess.Progress()
	sink.emit("question", questionPayload{
		Index:   current,
		Total:   total,
		Prompt:  q.Prompt,
		Kind:    string(q.Kind),
		Choices: q.Choices,
	})
}

// wsSink feeds coordinator output (and session events) into the socket's
// writer goroutine. Once the connection's read loop has ended it reports
// unmounted, so late generation responses no-op instead of writing to a
// closed channel.
type wsSink struct {
	send   chan<- outboundMessage[any]
	closed <-chan struct{}
}

func (s *wsSink) emit(msgType string, payload any) {
	select {
	case <-s.closed:
	case s.send <- outboundMessage[any]{Type: msgType, Payload: payload}:
	}
}

func (s *wsSink) Mounted() bool {
	select {
	case <-s.closed:
		return false
	default:
		return true
	}
}

func (s *wsSink) Render(percent int, label string) {
	s.emit("progress", progressPayload{Percent: percent, Label: label})
}

func (s *wsSink) Dismiss() {
	s.emit("progressDismiss", struct{}{})
}

func (s *wsSink) ShowQuota(remaining int) {
	s.emit("quota", quotaPayload{Remaining: remaining})
}

func (s *wsSink) Success(message string) {
	s.emit("notice", noticePayload{Message: message})
}

func (s *wsSink) Failure(message string) {
	s.emit("error", errorPayload{Message: message})
}
