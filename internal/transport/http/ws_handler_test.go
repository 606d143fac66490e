package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillquiz-service/internal/app"
	"skillquiz-service/internal/domain"
	"skillquiz-service/internal/infra/memory"

	"github.com/gorilla/websocket"
)

func TestWebSocketQuizFlow(t *testing.T) {
	service, progress := newTestService()
	server := httptest.NewServer(NewRouter(service, RouterOptions{}))
	defer server.Close()

	conn := dial(t, server, "/ws?userId=u1&domain=Math&level=1")
	defer conn.Close()

	_, payload := readNext(conn, t, "launched")
	var launched launchedPayload
	decode(t, payload, &launched)
	if launched.SessionID == "" {
		t.Fatalf("expected session id")
	}
	if launched.View.Total != 2 || launched.View.Remaining != 30 {
		t.Fatalf("unexpected first view: %+v", launched.View)
	}

	answers := []int{1, 0}
	for _, option := range answers {
		send(t, conn, "select", map[string]int{"option": option})
		send(t, conn, "submit", nil)
		send(t, conn, "next", nil)
	}

	payload = readUntil(conn, t, "complete")
	var result struct {
		Score         int  `json:"score"`
		Total         int  `json:"total"`
		Passed        bool `json:"passed"`
		CreditsEarned int  `json:"creditsEarned"`
	}
	decode(t, payload, &result)
	if result.Score != 2 || result.Total != 2 || !result.Passed {
		t.Fatalf("unexpected result: %+v", result)
	}

	// The ledger is settled right after the completion is broadcast.
	deadline := time.Now().Add(2 * time.Second)
	for {
		p, _ := progress.Get(context.Background(), "u1")
		if p.Completed == 1 && p.TotalCredits == result.CreditsEarned && p.CurrentLevel == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("progress not credited: %+v", p)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketRejectsUnknownMessage(t *testing.T) {
	service, _ := newTestService()
	server := httptest.NewServer(NewRouter(service, RouterOptions{}))
	defer server.Close()

	conn := dial(t, server, "/ws?userId=u1&domain=Math&level=1")
	defer conn.Close()
	readNext(conn, t, "launched")

	send(t, conn, "dance", nil)
	payload := readUntil(conn, t, "error")
	var e errorPayload
	decode(t, payload, &e)
	if e.Message != errUnsupported.Error() {
		t.Fatalf("unexpected error message %q", e.Message)
	}
}

func TestWebSocketReportsLaunchErrors(t *testing.T) {
	service, _ := newTestService()
	server := httptest.NewServer(NewRouter(service, RouterOptions{}))
	defer server.Close()

	conn := dial(t, server, "/ws?userId=u1&domain=Math&level=0")
	defer conn.Close()

	_, payload := readNext(conn, t, "error")
	var e errorPayload
	decode(t, payload, &e)
	if e.Message != domain.ErrInvalidLevel.Error() {
		t.Fatalf("unexpected error message %q", e.Message)
	}
}

func TestWebSocketRequiresQuery(t *testing.T) {
	service, _ := newTestService()
	server := httptest.NewServer(NewRouter(service, RouterOptions{}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws?userId=u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

// readUntil skips state updates until a message of type expect arrives.
func readUntil(conn *websocket.Conn, t *testing.T, expect string) json.RawMessage {
	t.Helper()
	for i := 0; i < 32; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == expect {
			return payload
		}
	}
	t.Fatalf("no %s message received", expect)
	return nil
}

func decode(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
}

func newTestService() (*app.QuizService, *memory.ProgressStore) {
	progress := memory.NewProgressStore()
	corpus := memory.NewCorpusRepository(memory.NewStaticCorpusLoader(sampleCorpus()), time.Minute)
	service := app.NewQuizService(memory.NewSessionStore(), corpus, progress, app.Settings{
		QuestionLimit: 5,
		TimeBudget:    30,
		EnforceUnlock: true,
	})
	return service, progress
}

func sampleCorpus() []domain.Question {
	return []domain.Question{
		{ID: 1, Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: 1, Domain: "Math", Difficulty: domain.DifficultyEasy},
		{ID: 2, Prompt: "What is 3 + 3?", Options: []string{"6", "7"}, CorrectAnswer: 0, Domain: "Math", Difficulty: domain.DifficultyMedium},
		{ID: 3, Prompt: "Which keyword declares a goroutine?", Options: []string{"go", "async"}, CorrectAnswer: 0, Domain: "Go", Difficulty: domain.DifficultyEasy},
	}
}
