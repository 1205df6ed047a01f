package chat

import (
	"time"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/emotion"
)

// Session captures one in-memory conversation with a resident.
type Session struct {
	ID         string    `json:"id"`
	ResidentID string    `json:"residentId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// EmotionSummary aggregates the emotions detected in a session's user messages.
type EmotionSummary struct {
	SessionID string                `json:"sessionId"`
	Current   emotion.Label         `json:"current"`
	Counts    map[emotion.Label]int `json:"counts"`
	Total     int                   `json:"total"`
	UpdatedAt time.Time             `json:"updatedAt,omitempty"`
}
