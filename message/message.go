package message

import (
	"context"
	"time"
)

// Type categorizes a message for filtering purposes.
type Type string

const (
	TypeText   Type = "text"
	TypeMedia  Type = "media"
	TypeSystem Type = "system"
)

// Message is a chat message as produced by the transport layer. The search
// engine references messages by ID and copies what it needs into postings;
// it never owns the message itself.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Timestamp      time.Time `json:"timestamp"`
	Text           string    `json:"text"`
	Type           Type      `json:"type"`
	Attachments    []string  `json:"attachments,omitempty"`
}

func (m Message) HasAttachments() bool {
	return len(m.Attachments) > 0
}

// Source is the authoritative message corpus. The engine rebuilds its index
// from a Source when no persisted snapshot is available or loading fails.
type Source interface {
	Messages(ctx context.Context) ([]Message, error)
}
