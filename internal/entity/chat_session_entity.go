package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	TenantId  uuid.UUID
	Title     string
	Mode      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
