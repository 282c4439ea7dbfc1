package mapper

import (
	"encoding/json"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		TenantId:  s.TenantId,
		Title:     s.Title,
		Mode:      s.Mode,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		TenantId:  s.TenantId,
		Title:     s.Title,
		Mode:      s.Mode,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var attachment *entity.Attachment
	if len(msg.Attachment) > 0 {
		var a entity.Attachment
		if err := json.Unmarshal(msg.Attachment, &a); err == nil && a.Name != "" {
			attachment = &a
		}
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Content:       msg.Content,
		SenderId:      msg.SenderId,
		IsAI:          msg.IsAI,
		Attachment:    attachment,
		PendingSync:   msg.PendingSync,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var attachment datatypes.JSON
	if msg.Attachment != nil {
		if raw, err := json.Marshal(msg.Attachment); err == nil {
			attachment = raw
		}
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Content:       msg.Content,
		SenderId:      msg.SenderId,
		IsAI:          msg.IsAI,
		Attachment:    attachment,
		PendingSync:   msg.PendingSync,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessagesToEntities(models []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(models))
	for i, msg := range models {
		entities[i] = m.ChatMessageToEntity(msg)
	}
	return entities
}
