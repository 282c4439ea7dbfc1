package dto

import (
	"time"

	"github.com/google/uuid"
)

type AttachmentPayload struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}

type SendMessageRequest struct {
	ChatSessionId *uuid.UUID         `json:"chat_session_id" validate:"omitempty"`
	Content       string             `json:"content" validate:"required,min=1"`
	Mode          string             `json:"mode" validate:"omitempty,oneof=personal business"`
	Attachment    *AttachmentPayload `json:"attachment" validate:"omitempty"`
}

type ChatMessageResponse struct {
	Id            uuid.UUID          `json:"id"`
	ChatSessionId uuid.UUID          `json:"chat_session_id"`
	Content       string             `json:"content"`
	IsAI          bool               `json:"is_ai"`
	Attachment    *AttachmentPayload `json:"attachment,omitempty"`
	PendingSync   bool               `json:"pending_sync"`
	CreatedAt     time.Time          `json:"created_at"`
}

type SendMessageResponse struct {
	ChatSessionId uuid.UUID           `json:"chat_session_id"`
	UserMessage   ChatMessageResponse `json:"user_message"`
	AiMessage     ChatMessageResponse `json:"ai_message"`
}

type ChatSessionResponse struct {
	Id        uuid.UUID             `json:"id"`
	Title     string                `json:"title"`
	Mode      string                `json:"mode"`
	Messages  []ChatMessageResponse `json:"messages"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt *time.Time            `json:"updated_at,omitempty"`
}

type LoadSessionsResponse struct {
	Sessions []ChatSessionResponse `json:"sessions"`
}

type ImproveMessageRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

type ImproveMessageResponse struct {
	Improved string `json:"improved"`
}
