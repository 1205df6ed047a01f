package chat

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/care-companion/backend/internal/model/chat"
	"github.com/zhouzirui/care-companion/backend/internal/service/assistant"
	chatService "github.com/zhouzirui/care-companion/backend/internal/service/chat"
	"github.com/zhouzirui/care-companion/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc      *chatService.Service
	assistantSvc *assistant.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, assistantSvc *assistant.Service) *Handler {
	return &Handler{
		chatSvc:      chatSvc,
		assistantSvc: assistantSvc,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/messages", h.handleTranscript)
	r.Get("/session/{sessionID}/emotions", h.handleEmotionSummary)
	r.Post("/messages", h.handleSendMessage)
	r.Post("/classify", h.handleClassify)
}

type createSessionResponse struct {
	Session  chat.Session `json:"session"`
	Greeting chat.Message `json:"greeting"`
}

// handleCreateSession 创建会话并追加问候语
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ResidentID string `json:"residentId"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, greeting, err := h.assistantSvc.StartConversation(r.Context(), payload.ResidentID)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, createSessionResponse{Session: session, Greeting: greeting})
}

// handleTranscript 返回会话的消息；?emotion= 只保留该情绪的消息
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var filter emotion.Label
	if raw := r.URL.Query().Get("emotion"); raw != "" {
		label, ok := emotion.ParseLabel(raw)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "unknown emotion "+raw)
			return
		}
		filter = label
	}

	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	if filter != "" {
		kept := messages[:0]
		for _, msg := range messages {
			if msg.Emotion == filter {
				kept = append(kept, msg)
			}
		}
		messages = kept
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleEmotionSummary 返回情绪统计
func (h *Handler) handleEmotionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.assistantSvc.Summary(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, summary)
}

type sendMessageResponse struct {
	Message      chat.Message  `json:"message"`
	Reply        *chat.Message `json:"reply,omitempty"`
	ReplyDelayMs int64         `json:"replyDelayMs"`
}

// handleSendMessage 保存用户消息；wait=true 时等待助手回复后一并返回
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Text      string `json:"text"`
		Wait      bool   `json:"wait"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userMsg, pending, err := h.assistantSvc.Send(r.Context(), payload.SessionID, payload.Text)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	resp := sendMessageResponse{
		Message:      userMsg,
		ReplyDelayMs: h.assistantSvc.ReplyDelay().Milliseconds(),
	}
	if !payload.Wait {
		utils.RespondJSON(w, http.StatusAccepted, resp)
		return
	}

	botMsg, err := pending.Wait(r.Context())
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	resp.Reply = &botMsg
	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleClassify 无状态地运行分类与回复
func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.assistantSvc.Preview(r.Context(), payload.Text)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"emotion": turn.UserEmotion,
		"reply":   turn.Reply,
		"labels":  emotion.Labels(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrResidentRequired),
		errors.Is(err, chatService.ErrInvalidEmotion),
		errors.Is(err, assistant.ErrResidentNotFound),
		errors.Is(err, assistant.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
