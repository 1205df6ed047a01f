package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/care-companion/backend/internal/model/resident"
	"github.com/zhouzirui/care-companion/backend/internal/service/assistant"
	chatservice "github.com/zhouzirui/care-companion/backend/internal/service/chat"
)

func setupRouter(t *testing.T) (*chi.Mux, *chatservice.Service) {
	t.Helper()
	return setupRouterWithConfig(t, assistant.Config{})
}

func setupRouterWithConfig(t *testing.T, cfg assistant.Config) (*chi.Mux, *chatservice.Service) {
	t.Helper()
	chatSvc := chatservice.NewService()
	assistantSvc, err := assistant.NewService(context.Background(), chatSvc, resident.NewMemoryStore(resident.Seed()), cfg)
	if err != nil {
		t.Fatalf("assistant.NewService err: %v", err)
	}
	handler := New(chatSvc, assistantSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) createSessionResponse {
	t.Helper()
	resp := doJSON(r, http.MethodPost, "/session", map[string]string{"residentId": "martha"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var out createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	return out
}

func TestCreateSessionValidResident(t *testing.T) {
	r, _ := setupRouter(t)
	out := createSession(t, r)

	if out.Session.ID == "" {
		t.Fatal("expected session id")
	}
	if out.Greeting.Emotion != emotion.Happy {
		t.Fatalf("expected happy greeting, got %s", out.Greeting.Emotion)
	}
}

func TestCreateSessionInvalidResident(t *testing.T) {
	r, _ := setupRouter(t)
	resp := doJSON(r, http.MethodPost, "/session", map[string]string{"residentId": "non-existent"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateSessionMissingResidentID(t *testing.T) {
	r, _ := setupRouter(t)
	resp := doJSON(r, http.MethodPost, "/session", map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateSessionUsesDefaultResident(t *testing.T) {
	r, _ := setupRouterWithConfig(t, assistant.Config{DefaultResidentID: "martha"})
	resp := doJSON(r, http.MethodPost, "/session", map[string]string{})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var out createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if out.Session.ResidentID != "martha" {
		t.Fatalf("expected martha, got %q", out.Session.ResidentID)
	}
}

func TestSendMessageWaitReturnsReply(t *testing.T) {
	r, _ := setupRouter(t)
	out := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/messages", map[string]any{
		"sessionId": out.Session.ID,
		"text":      "My arthritis is bothering me",
		"wait":      true,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Message.Emotion != emotion.Neutral {
		t.Fatalf("expected neutral user emotion, got %s", body.Message.Emotion)
	}
	if body.Reply == nil || body.Reply.Emotion != emotion.Happy {
		t.Fatalf("expected default happy reply, got %+v", body.Reply)
	}
}

func TestSendMessageAccepted(t *testing.T) {
	r, _ := setupRouter(t)
	out := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/messages", map[string]any{
		"sessionId": out.Session.ID,
		"text":      "hello",
	})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}
}

func TestSendMessageBlank(t *testing.T) {
	r, _ := setupRouter(t)
	out := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/messages", map[string]any{"sessionId": out.Session.ID, "text": "  "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	r, _ := setupRouter(t)
	resp := doJSON(r, http.MethodPost, "/messages", map[string]any{"sessionId": "missing", "text": "hello"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestTranscriptAndSummary(t *testing.T) {
	r, _ := setupRouter(t)
	out := createSession(t, r)

	doJSON(r, http.MethodPost, "/messages", map[string]any{"sessionId": out.Session.ID, "text": "I feel very lonely", "wait": true})

	resp := doJSON(r, http.MethodGet, "/session/"+out.Session.ID+"/messages", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var transcript struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(transcript.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(transcript.Messages))
	}

	resp = doJSON(r, http.MethodGet, "/session/"+out.Session.ID+"/emotions", nil)
	var summary struct {
		Current emotion.Label `json:"current"`
		Total   int           `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if summary.Current != emotion.Sad || summary.Total != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	resp = doJSON(r, http.MethodGet, "/session/missing/messages", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestTranscriptEmotionFilter(t *testing.T) {
	r, _ := setupRouter(t)
	out := createSession(t, r)

	doJSON(r, http.MethodPost, "/messages", map[string]any{"sessionId": out.Session.ID, "text": "I feel very lonely", "wait": true})

	resp := doJSON(r, http.MethodGet, "/session/"+out.Session.ID+"/messages?emotion=SAD", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var transcript struct {
		Messages []struct {
			Emotion emotion.Label `json:"emotion"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	// user message and the sympathetic reply; the happy greeting is dropped
	if len(transcript.Messages) != 2 {
		t.Fatalf("expected 2 sad messages, got %d", len(transcript.Messages))
	}
	for _, msg := range transcript.Messages {
		if msg.Emotion != emotion.Sad {
			t.Fatalf("unexpected emotion %s", msg.Emotion)
		}
	}

	resp = doJSON(r, http.MethodGet, "/session/"+out.Session.ID+"/messages?emotion=angry", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestClassify(t *testing.T) {
	r, _ := setupRouter(t)
	resp := doJSON(r, http.MethodPost, "/classify", map[string]string{"text": "good but lonely"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Emotion emotion.Label `json:"emotion"`
		Reply   struct {
			Emotion emotion.Label `json:"emotion"`
		} `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Emotion != emotion.Happy || body.Reply.Emotion != emotion.Happy {
		t.Fatalf("unexpected classification %+v", body)
	}
}
