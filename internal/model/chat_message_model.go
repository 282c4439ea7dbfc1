package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Content       string         `gorm:"type:text;not null"`
	SenderId      string         `gorm:"type:varchar(20);not null"`
	IsAI          bool           `gorm:"not null;default:false"`
	Attachment    datatypes.JSON `gorm:"type:jsonb"`
	PendingSync   bool           `gorm:"not null;default:false"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
