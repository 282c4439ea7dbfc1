package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageSenderUser = "user"
	MessageSenderAI   = "ai"
)

// Attachment is the optional file reference carried by a message.
type Attachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// ChatMessage is immutable once persisted. The one exception is the
// in-flight assistant message: it is created empty, mutated locally while
// the typing reveal runs, and persisted only once finalized.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Content       string
	SenderId      string
	IsAI          bool
	Attachment    *Attachment
	PendingSync   bool
	CreatedAt     time.Time
}
