package mapper

import (
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"
)

type TenantMapper struct{}

func NewTenantMapper() *TenantMapper {
	return &TenantMapper{}
}

func (m *TenantMapper) ToEntity(t *model.Tenant) *entity.Tenant {
	if t == nil {
		return nil
	}
	return &entity.Tenant{
		Id:            t.Id,
		UserId:        t.UserId,
		SchemaName:    t.SchemaName,
		StorageFolder: t.StorageFolder,
		Status:        entity.TenantStatus(t.Status),
		ErrorMessage:  t.ErrorMessage,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (m *TenantMapper) ToModel(t *entity.Tenant) *model.Tenant {
	if t == nil {
		return nil
	}
	return &model.Tenant{
		Id:            t.Id,
		UserId:        t.UserId,
		SchemaName:    t.SchemaName,
		StorageFolder: t.StorageFolder,
		Status:        string(t.Status),
		ErrorMessage:  t.ErrorMessage,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
