package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/care-companion/backend/internal/model/chat"
)

var (
	ErrResidentRequired = errors.New("resident id is required")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSender    = errors.New("invalid message sender")
	ErrInvalidEmotion   = errors.New("invalid emotion label")
)

// Service keeps sessions and their append-only transcripts in memory.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
	now      func() time.Time
}

// NewService bootstraps the in-memory chat service.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession provisions a conversation bound to a resident.
func (s *Service) CreateSession(_ context.Context, residentID string) (chat.Session, error) {
	if residentID == "" {
		return chat.Session{}, ErrResidentRequired
	}

	session := chat.Session{
		ID:         uuid.NewString(),
		ResidentID: residentID,
		CreatedAt:  s.now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]chat.Message, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// AppendMessage stores message at the end of its session transcript and
// returns the stored copy with ID and timestamp filled in.
func (s *Service) AppendMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}
	if message.Sender != chat.SenderUser && message.Sender != chat.SenderBot {
		return chat.Message{}, ErrInvalidSender
	}
	if message.Emotion != "" && !message.Emotion.Valid() {
		return chat.Message{}, ErrInvalidEmotion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	now := s.now()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = now
	}
	// Timestamps never go backwards within a transcript.
	transcript := s.messages[message.SessionID]
	if n := len(transcript); n > 0 && message.CreatedAt.Before(transcript[n-1].CreatedAt) {
		message.CreatedAt = transcript[n-1].CreatedAt
	}

	s.messages[message.SessionID] = append(transcript, message)
	return message, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// LoadTranscript returns a copy of the stored messages for the session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Summarize counts the emotions of the session's user messages. Current is the
// emotion of the latest user message, or neutral when the resident has not
// spoken yet.
func (s *Service) Summarize(_ context.Context, sessionID string) (chat.EmotionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return chat.EmotionSummary{}, ErrSessionNotFound
	}

	summary := chat.EmotionSummary{
		SessionID: sessionID,
		Current:   emotion.Neutral,
		Counts:    make(map[emotion.Label]int, len(emotion.Labels())),
	}
	for _, label := range emotion.Labels() {
		summary.Counts[label] = 0
	}

	for _, msg := range messages {
		if msg.Sender != chat.SenderUser || msg.Emotion == "" {
			continue
		}
		summary.Counts[msg.Emotion]++
		summary.Total++
		summary.Current = msg.Emotion
		summary.UpdatedAt = msg.CreatedAt
	}
	return summary, nil
}
