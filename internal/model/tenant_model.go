package model

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"` // one tenant per user
	SchemaName    string    `gorm:"type:varchar(63);not null;uniqueIndex"`
	StorageFolder *string   `gorm:"type:text"`
	Status        string    `gorm:"type:varchar(20);not null;default:'creating';index"`
	ErrorMessage  *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Tenant) TableName() string {
	return "tenants"
}
