package mapper

import (
	"testing"
	"time"

	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChatMessageAttachmentMapping(t *testing.T) {
	m := NewChatMapper()

	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: uuid.New(),
		Content:       "see attached",
		SenderId:      entity.MessageSenderUser,
		Attachment: &entity.Attachment{
			Name: "report.pdf",
			Type: "application/pdf",
			URL:  "https://files.example.com/report.pdf",
		},
		CreatedAt: time.Now(),
	}

	model := m.ChatMessageToModel(msg)
	assert.NotEmpty(t, model.Attachment, "attachment must serialize into the jsonb column")

	back := m.ChatMessageToEntity(model)
	assert.NotNil(t, back.Attachment)
	assert.Equal(t, "report.pdf", back.Attachment.Name)
	assert.Equal(t, "application/pdf", back.Attachment.Type)
}

func TestChatMessageWithoutAttachment(t *testing.T) {
	m := NewChatMapper()

	msg := &entity.ChatMessage{
		Id:        uuid.New(),
		Content:   "plain",
		SenderId:  entity.MessageSenderAI,
		IsAI:      true,
		CreatedAt: time.Now(),
	}

	model := m.ChatMessageToModel(msg)
	back := m.ChatMessageToEntity(model)
	assert.Nil(t, back.Attachment)
	assert.True(t, back.IsAI)
}

func TestNilSafety(t *testing.T) {
	m := NewChatMapper()
	assert.Nil(t, m.ChatSessionToEntity(nil))
	assert.Nil(t, m.ChatSessionToModel(nil))
	assert.Nil(t, m.ChatMessageToEntity(nil))
	assert.Nil(t, m.ChatMessageToModel(nil))
}

func TestPendingSyncSurvivesMapping(t *testing.T) {
	m := NewChatMapper()
	msg := &entity.ChatMessage{Id: uuid.New(), Content: "x", SenderId: entity.MessageSenderUser, PendingSync: true, CreatedAt: time.Now()}
	assert.True(t, m.ChatMessageToEntity(m.ChatMessageToModel(msg)).PendingSync)
}
