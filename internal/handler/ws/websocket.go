package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/care-companion/backend/internal/model/chat"
	"github.com/zhouzirui/care-companion/backend/internal/model/resident"
	"github.com/zhouzirui/care-companion/backend/internal/service/assistant"
	chatservice "github.com/zhouzirui/care-companion/backend/internal/service/chat"
)

const writeWait = 10 * time.Second

// Config 控制连接保活。
type Config struct {
	PingInterval time.Duration
	PongWait     time.Duration
}

// Handler WebSocket聊天处理器
type Handler struct {
	assistantSvc *assistant.Service
	chatSvc      *chatservice.Service
	residents    resident.Store
	cfg          Config
	upgrader     websocket.Upgrader
}

// New 创建WebSocket处理器
func New(assistantSvc *assistant.Service, chatSvc *chatservice.Service, residents resident.Store, cfg Config) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 54 * time.Second
	}
	if cfg.PongWait <= cfg.PingInterval {
		cfg.PongWait = cfg.PingInterval * 10 / 9
	}

	return &Handler{
		assistantSvc: assistantSvc,
		chatSvc:      chatSvc,
		residents:    residents,
		cfg:          cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

// SuggestionMessage 按序号选择快捷回复
type SuggestionMessage struct {
	Index int `json:"index"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connection 串行化写操作，助手回复来自定时器协程
type connection struct {
	conn      *websocket.Conn
	sessionID string
	mu        sync.Mutex
}

func (c *connection) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *connection) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	who, ok := h.residents.FindByID(session.ResidentID)
	if !ok {
		http.Error(w, "resident not found", http.StatusBadRequest)
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer raw.Close()

	conn := &connection{conn: raw, sessionID: sessionID}
	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	raw.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	raw.SetPongHandler(func(string) error {
		raw.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.sendResult(conn, map[string]any{
		"type":        "connected",
		"resident":    who.ID,
		"suggestions": resident.Suggestions(),
	})

	for {
		var msg inboundMessage
		if err := raw.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		raw.SetReadDeadline(time.Now().Add(h.cfg.PongWait))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(conn, "session mismatch")
			continue
		}

		h.handleMessage(ctx, conn, &msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *connection, msg *inboundMessage) {
	switch msg.Type {
	case "text":
		var text TextMessage
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			h.sendError(conn, "invalid text payload")
			return
		}
		h.processUserText(ctx, conn, text.Text)
	case "suggestion":
		var pick SuggestionMessage
		if err := json.Unmarshal(msg.Data, &pick); err != nil {
			h.sendError(conn, "invalid suggestion payload")
			return
		}
		suggestions := resident.Suggestions()
		if pick.Index < 0 || pick.Index >= len(suggestions) {
			h.sendError(conn, fmt.Sprintf("suggestion index out of range: %d", pick.Index))
			return
		}
		h.processUserText(ctx, conn, suggestions[pick.Index])
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *Handler) processUserText(ctx context.Context, conn *connection, text string) {
	userMsg, pending, err := h.assistantSvc.Send(ctx, conn.sessionID, text)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		// 空消息直接忽略
		return
	}
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.sendResult(conn, map[string]any{"type": "user", "message": userMsg})
	h.sendResult(conn, map[string]any{"type": "thinking"})

	pending.OnComplete(func(botMsg chat.Message, err error) {
		h.deliverReply(ctx, conn, botMsg, err)
	})
}

// deliverReply 推送助手回复；连接已关闭时跳过写入，回复仍保存在会话记录中
func (h *Handler) deliverReply(ctx context.Context, conn *connection, botMsg chat.Message, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		h.sendError(conn, fmt.Sprintf("reply failed: %v", err))
		return false
	}
	h.sendResult(conn, map[string]any{"type": "bot", "message": botMsg})
	return true
}

func (h *Handler) sendResult(conn *connection, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: conn.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.writeJSON(msg); err != nil {
		log.Printf("[websocket] write result failed: %v", err)
	}
}

func (h *Handler) sendError(conn *connection, message string) {
	msg := outgoingMessage{
		Type:      "error",
		SessionID: conn.sessionID,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.writeJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
