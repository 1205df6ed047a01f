package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/care-companion/backend/internal/analysis/reply"
	"github.com/zhouzirui/care-companion/backend/internal/model/chat"
	"github.com/zhouzirui/care-companion/backend/internal/model/resident"
	chatservice "github.com/zhouzirui/care-companion/backend/internal/service/chat"
)

var (
	ErrEmptyMessage     = errors.New("message text is empty")
	ErrResidentNotFound = errors.New("resident not found")
)

// Config controls how the assistant paces and opens conversations.
type Config struct {
	// ReplyDelay is how long the bot "thinks" before its reply is appended.
	ReplyDelay time.Duration
	// DefaultResidentID is used when a conversation is started without one.
	DefaultResidentID string
}

// Service runs user messages through the reply pipeline and appends the bot's
// answer to the transcript after the configured delay.
type Service struct {
	chatSvc   *chatservice.Service
	residents resident.Store
	pipeline  *reply.Pipeline
	delay     time.Duration
	fallback  string
}

// NewService creates the assistant service and compiles its pipeline.
func NewService(ctx context.Context, chatSvc *chatservice.Service, residents resident.Store, cfg Config) (*Service, error) {
	pipeline, err := reply.NewPipeline(ctx)
	if err != nil {
		return nil, err
	}

	delay := cfg.ReplyDelay
	if delay < 0 {
		delay = 0
	}

	return &Service{
		chatSvc:   chatSvc,
		residents: residents,
		pipeline:  pipeline,
		delay:     delay,
		fallback:  strings.TrimSpace(cfg.DefaultResidentID),
	}, nil
}

// ReplyDelay returns the configured thinking delay.
func (s *Service) ReplyDelay() time.Duration {
	return s.delay
}

// StartConversation opens a session for the resident and appends the greeting.
// An empty residentID falls back to the configured default resident.
func (s *Service) StartConversation(ctx context.Context, residentID string) (chat.Session, chat.Message, error) {
	residentID = strings.TrimSpace(residentID)
	if residentID == "" {
		residentID = s.fallback
	}
	if residentID == "" {
		return chat.Session{}, chat.Message{}, chatservice.ErrResidentRequired
	}
	who, ok := s.residents.FindByID(residentID)
	if !ok {
		return chat.Session{}, chat.Message{}, ErrResidentNotFound
	}

	session, err := s.chatSvc.CreateSession(ctx, who.ID)
	if err != nil {
		return chat.Session{}, chat.Message{}, err
	}

	greeting, err := s.chatSvc.AppendMessage(ctx, chat.Message{
		SessionID: session.ID,
		Sender:    chat.SenderBot,
		Content:   who.Greeting(),
		Emotion:   emotion.Happy,
	})
	if err != nil {
		return chat.Session{}, chat.Message{}, fmt.Errorf("append greeting failed: %w", err)
	}

	log.Printf("[assistant] conversation started session=%s resident=%s", session.ID, who.ID)
	return session, greeting, nil
}

// Preview runs the pipeline without touching any session.
func (s *Service) Preview(ctx context.Context, text string) (reply.Turn, error) {
	return s.pipeline.Run(ctx, text)
}

// Send stores the user's message with its detected emotion and schedules the
// bot reply. The returned PendingReply resolves once the reply is appended.
// Whitespace-only input is rejected and nothing is stored.
func (s *Service) Send(ctx context.Context, sessionID, text string) (chat.Message, *PendingReply, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, nil, ErrEmptyMessage
	}

	turn, err := s.pipeline.Run(ctx, text)
	if err != nil {
		return chat.Message{}, nil, err
	}

	userMsg, err := s.chatSvc.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderUser,
		Content:   text,
		Emotion:   turn.UserEmotion,
	})
	if err != nil {
		return chat.Message{}, nil, err
	}

	pending := newPendingReply()
	time.AfterFunc(s.delay, func() {
		botMsg, err := s.chatSvc.AppendMessage(context.Background(), chat.Message{
			SessionID: sessionID,
			Sender:    chat.SenderBot,
			Content:   turn.Reply.Text,
			Emotion:   turn.Reply.Emotion,
		})
		if err != nil {
			log.Printf("[assistant] append reply failed session=%s: %v", sessionID, err)
		}
		pending.resolve(botMsg, err)
	})

	log.Printf("[assistant] user message session=%s emotion=%s reply_emotion=%s", sessionID, turn.UserEmotion, turn.Reply.Emotion)
	return userMsg, pending, nil
}

// Summary returns the emotion summary for the session.
func (s *Service) Summary(ctx context.Context, sessionID string) (chat.EmotionSummary, error) {
	return s.chatSvc.Summarize(ctx, sessionID)
}
