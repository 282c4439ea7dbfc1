package entity

import (
	"time"

	"github.com/google/uuid"
)

type TenantStatus string

const (
	TenantStatusCreating TenantStatus = "creating"
	TenantStatusActive   TenantStatus = "active"
	TenantStatusError    TenantStatus = "error"
)

// Tenant is the per-user isolated schema. Exactly one exists per user,
// created in "creating" state inside the signup transaction and flipped to
// active (or error) by the provisioning job. Never deleted here.
type Tenant struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	SchemaName    string
	StorageFolder *string
	Status        TenantStatus
	ErrorMessage  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
