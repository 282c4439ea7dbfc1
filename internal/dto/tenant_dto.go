package dto

import "github.com/google/uuid"

// TenantStatusResponse mirrors the tracker snapshot the client polls
// while its workspace is being set up.
type TenantStatusResponse struct {
	TenantId         uuid.UUID `json:"tenant_id"`
	Status           string    `json:"status"`
	Progress         int       `json:"progress"`
	ErrorKind        string    `json:"error_kind,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	CanProceedAnyway bool      `json:"can_proceed_anyway"`
	Dismissed        bool      `json:"dismissed"`
}

type RetryProvisionResponse struct {
	TenantId uuid.UUID `json:"tenant_id"`
	Status   string    `json:"status"`
}

// ProvisionTenantMessage is the queue payload that kicks a provisioning run.
type ProvisionTenantMessage struct {
	TenantId uuid.UUID `json:"tenant_id"`
}
