package store

import (
	"context"

	"crm-backend/internal/models"
	"crm-backend/internal/paging"

	"gorm.io/gorm"
)

type AuditFilter struct {
	EntityType string
	EntityID   uint
	UserID     uint
}

type AuditStore struct {
	db *gorm.DB
}

func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Create(ctx context.Context, l *models.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(l).Error, "Audit log", "create")
}

func (s *AuditStore) List(ctx context.Context, f AuditFilter, p paging.Params) ([]models.AuditLog, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Audit log", "count")
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&logs).Error; err != nil {
		return nil, 0, translate(err, "Audit log", "list")
	}
	return logs, total, nil
}
