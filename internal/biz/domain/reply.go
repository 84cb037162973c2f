package domain

import (
	"time"

	"github.com/google/uuid"
)

// AiReply represents a generated persona reply to a journal entry.
// Created exclusively by the engagement scheduler; immutable once created.
// At most one reply exists per (journal entry, persona) pair.
type AiReply struct {
	ID             string    `json:"id"`
	JournalEntryID string    `json:"journal_entry_id"`
	UserID         string    `json:"user_id"`
	PersonaID      string    `json:"persona_id"`
	Content        string    `json:"content"`
	IsAIResponse   bool      `json:"is_ai_response"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAiReply builds a reply for a journal entry.
func NewAiReply(entryID, userID, personaID, content string, at time.Time) *AiReply {
	return &AiReply{
		ID:             uuid.NewString(),
		JournalEntryID: entryID,
		UserID:         userID,
		PersonaID:      personaID,
		Content:        content,
		IsAIResponse:   true,
		CreatedAt:      at,
	}
}
