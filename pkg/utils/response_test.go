package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondErrorIncludesStatus(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondError(resp, http.StatusNotFound, "session not found")

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Error != "session not found" || body.Status != http.StatusNotFound {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRespondJSONUnencodablePayload(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondJSON(resp, http.StatusOK, map[string]any{"ch": make(chan int)})

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"status":500`) {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Text string `json:"text"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi","extra":1}`))
	if err := DecodeJSON(httptest.NewRecorder(), req, &dst); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}{"text":"again"}`))
	if err := DecodeJSON(httptest.NewRecorder(), req, &dst); err == nil {
		t.Fatal("expected trailing object to be rejected")
	}
}

func TestSSEWriterSendEvent(t *testing.T) {
	resp := httptest.NewRecorder()
	sse, err := NewSSEWriter(resp)
	if err != nil {
		t.Fatalf("NewSSEWriter err: %v", err)
	}

	if err := sse.SendEvent("user", map[string]string{"content": "hello"}); err != nil {
		t.Fatalf("SendEvent err: %v", err)
	}
	if err := sse.SendEvent("", map[string]string{"content": "bare"}); err != nil {
		t.Fatalf("SendEvent err: %v", err)
	}

	want := "event: user\ndata: {\"content\":\"hello\"}\n\ndata: {\"content\":\"bare\"}\n\n"
	if got := resp.Body.String(); got != want {
		t.Fatalf("unexpected stream %q", got)
	}
}
