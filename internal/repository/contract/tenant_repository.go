package contract

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TenantStatus, errorMessage *string) error
	UpdateStorageFolder(ctx context.Context, id uuid.UUID, folder string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Tenant, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tenant, error)
}
