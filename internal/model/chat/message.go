package chat

import (
	"time"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/emotion"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one immutable turn of a conversation.
type Message struct {
	ID        string        `json:"id"`
	SessionID string        `json:"sessionId"`
	Sender    Sender        `json:"type"`
	Content   string        `json:"text"`
	Emotion   emotion.Label `json:"emotion,omitempty"`
	CreatedAt time.Time     `json:"timestamp"`
}
