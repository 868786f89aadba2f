package store

import (
	"context"

	"crm-backend/internal/models"
	"crm-backend/internal/paging"

	"gorm.io/gorm"
)

const entityDocument = "Document"

type DocumentStore struct {
	db *gorm.DB
}

func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) ListByService(ctx context.Context, serviceID uint, p paging.Params) ([]models.ServicesDocument, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.ServicesDocument{}).Where("service_id = ?", serviceID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, entityDocument, "count")
	}

	var docs []models.ServicesDocument
	err := q.Order("uploaded_at DESC, id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&docs).Error
	if err != nil {
		return nil, 0, translate(err, entityDocument, "list")
	}
	return docs, total, nil
}

func (s *DocumentStore) FindByID(ctx context.Context, id uint) (*models.ServicesDocument, error) {
	var d models.ServicesDocument
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, translate(err, entityDocument, "find")
	}
	return &d, nil
}

func (s *DocumentStore) Create(ctx context.Context, d *models.ServicesDocument) error {
	return translate(s.db.WithContext(ctx).Create(d).Error, entityDocument, "create")
}

func (s *DocumentStore) Delete(ctx context.Context, id uint) error {
	return deleted(s.db.WithContext(ctx).Delete(&models.ServicesDocument{}, id), entityDocument)
}
