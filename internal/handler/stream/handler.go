package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/care-companion/backend/internal/service/assistant"
	chatService "github.com/zhouzirui/care-companion/backend/internal/service/chat"
	"github.com/zhouzirui/care-companion/backend/pkg/utils"
)

// Handler streams a chat turn to the client via Server-Sent Events
type Handler struct {
	assistantSvc *assistant.Service
	chatSvc      *chatService.Service
}

// New creates a new stream handler
func New(assistantSvc *assistant.Service, chatSvc *chatService.Service) *Handler {
	return &Handler{
		assistantSvc: assistantSvc,
		chatSvc:      chatSvc,
	}
}

// RegisterRoutes mounts the SSE endpoint
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// StreamResponse represents one SSE frame of a chat turn
type StreamResponse struct {
	Event     string        `json:"event"`
	Content   string        `json:"content,omitempty"`
	Emotion   emotion.Label `json:"emotion,omitempty"`
	MessageID string        `json:"messageId,omitempty"`
	SessionID string        `json:"sessionId,omitempty"`
	Finished  bool          `json:"finished,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")

	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	sse, err := utils.NewSSEWriter(w)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.HandleStreamRequest(r.Context(), sse, sessionID, userMessage); err != nil {
		log.Printf("[sse] error handling request: %v", err)
	}
}

// HandleStreamRequest runs one user message through the assistant and emits
// start, user, thinking, message and end events. Each frame is sent as a
// named SSE event so EventSource clients can subscribe per event type.
func (h *Handler) HandleStreamRequest(ctx context.Context, sse *utils.SSEWriter, sessionID, userMessage string) error {
	h.send(sse, StreamResponse{Event: "start", SessionID: sessionID})

	userMsg, pending, err := h.assistantSvc.Send(ctx, sessionID, userMessage)
	if err != nil {
		h.sendError(sse, sessionID, fmt.Sprintf("send failed: %v", err))
		return err
	}

	h.send(sse, StreamResponse{
		Event:     "user",
		SessionID: sessionID,
		MessageID: userMsg.ID,
		Content:   userMsg.Content,
		Emotion:   userMsg.Emotion,
	})
	h.send(sse, StreamResponse{Event: "thinking", SessionID: sessionID})

	botMsg, err := pending.Wait(ctx)
	if err != nil {
		h.sendError(sse, sessionID, fmt.Sprintf("reply unavailable: %v", err))
		return err
	}

	h.send(sse, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		MessageID: botMsg.ID,
		Content:   botMsg.Content,
		Emotion:   botMsg.Emotion,
	})
	h.send(sse, StreamResponse{Event: "end", SessionID: sessionID, Finished: true})

	log.Printf("[sse] completed turn for session=%s emotion=%s", sessionID, userMsg.Emotion)
	return nil
}

func (h *Handler) send(sse *utils.SSEWriter, response StreamResponse) {
	if err := sse.SendEvent(response.Event, response); err != nil {
		log.Printf("[sse] %v", err)
	}
}

func (h *Handler) sendError(sse *utils.SSEWriter, sessionID, errorMsg string) {
	h.send(sse, StreamResponse{Event: "error", SessionID: sessionID, Error: errorMsg})
}
