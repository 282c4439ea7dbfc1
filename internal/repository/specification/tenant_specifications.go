package specification

import (
	"gorm.io/gorm"
)

type ByTenantStatus struct {
	Status string
}

func (s ByTenantStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
