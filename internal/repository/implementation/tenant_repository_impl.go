package implementation

import (
	"context"
	"errors"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TenantMapper
}

func NewTenantRepository(db *gorm.DB) contract.TenantRepository {
	return &TenantRepositoryImpl{
		db:     db,
		mapper: mapper.NewTenantMapper(),
	}
}

func (r *TenantRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TenantRepositoryImpl) Create(ctx context.Context, tenant *entity.Tenant) error {
	m := r.mapper.ToModel(tenant)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tenant = *r.mapper.ToEntity(m)
	return nil
}

func (r *TenantRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TenantStatus, errorMessage *string) error {
	updates := map[string]interface{}{
		"status":        string(status),
		"error_message": errorMessage,
		"updated_at":    time.Now(),
	}
	return r.db.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", id).Updates(updates).Error
}

func (r *TenantRepositoryImpl) UpdateStorageFolder(ctx context.Context, id uuid.UUID, folder string) error {
	return r.db.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", id).
		Updates(map[string]interface{}{"storage_folder": folder, "updated_at": time.Now()}).Error
}

func (r *TenantRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Tenant, error) {
	var m model.Tenant
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TenantRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tenant, error) {
	var models []*model.Tenant
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Tenant, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
