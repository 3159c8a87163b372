package domain

import (
	"fmt"
	"time"
)

// TranscriptRole identifies the speaker of a transcript turn.
type TranscriptRole string

const (
	TranscriptRoleUser      TranscriptRole = "user"
	TranscriptRoleAssistant TranscriptRole = "assistant"
	TranscriptRoleSystem    TranscriptRole = "system"
)

// ConversationTranscript is one turn of a voice/text conversation inside a
// LiveKit room. Turns are append-only; embeddings are filled in async for
// RAG over past conversations.
type ConversationTranscript struct {
	ID        string
	ClientID  string
	AgentID   string
	SessionID string
	RoomName  string
	Role      TranscriptRole
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// ValidateTranscript validates a ConversationTranscript instance
func ValidateTranscript(t *ConversationTranscript) error {
	if t == nil {
		return fmt.Errorf("transcript cannot be nil")
	}
	if t.ID == "" {
		return fmt.Errorf("transcript ID is required")
	}
	if t.ClientID == "" {
		return fmt.Errorf("transcript ClientID is required")
	}
	if t.SessionID == "" {
		return fmt.Errorf("transcript SessionID is required")
	}
	if t.Content == "" {
		return fmt.Errorf("transcript Content is required")
	}
	if !isValidTranscriptRole(t.Role) {
		return fmt.Errorf("transcript Role is invalid: %s", t.Role)
	}
	return nil
}

func isValidTranscriptRole(r TranscriptRole) bool {
	switch r {
	case TranscriptRoleUser, TranscriptRoleAssistant, TranscriptRoleSystem:
		return true
	}
	return false
}
