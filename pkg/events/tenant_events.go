package events

import "time"

const (
	TenantProvisionedType     = "TENANT_PROVISIONED"
	TenantProvisionFailedType = "TENANT_PROVISION_FAILED"
)

// NewTenantProvisionedEvent is emitted once a tenant's schema and
// storage folder exist and its status row reads active.
func NewTenantProvisionedEvent(tenantId, userId, storageFolder string) Event {
	return BaseEvent{
		Type: TenantProvisionedType,
		Data: map[string]interface{}{
			"tenant_id":      tenantId,
			"user_id":        userId,
			"storage_folder": storageFolder,
		},
		OccurredAt: time.Now(),
	}
}

func NewTenantProvisionFailedEvent(tenantId, userId, reason string) Event {
	return BaseEvent{
		Type: TenantProvisionFailedType,
		Data: map[string]interface{}{
			"tenant_id": tenantId,
			"user_id":   userId,
			"reason":    reason,
		},
		OccurredAt: time.Now(),
	}
}
