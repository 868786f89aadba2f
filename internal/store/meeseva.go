package store

import (
	"context"

	"crm-backend/internal/models"

	"gorm.io/gorm"
)

const entityMeeseva = "Meeseva record"

type MeesevaStore struct {
	db *gorm.DB
}

func NewMeesevaStore(db *gorm.DB) *MeesevaStore {
	return &MeesevaStore{db: db}
}

func (s *MeesevaStore) List(ctx context.Context) ([]models.Meeseva, error) {
	var rows []models.Meeseva
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, translate(err, entityMeeseva, "list")
}

func (s *MeesevaStore) FindByID(ctx context.Context, id uint) (*models.Meeseva, error) {
	var m models.Meeseva
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, entityMeeseva, "find")
	}
	return &m, nil
}

func (s *MeesevaStore) Create(ctx context.Context, m *models.Meeseva) error {
	return translate(s.db.WithContext(ctx).Create(m).Error, entityMeeseva, "create")
}

func (s *MeesevaStore) Update(ctx context.Context, m *models.Meeseva) error {
	return translate(s.db.WithContext(ctx).Save(m).Error, entityMeeseva, "update")
}

func (s *MeesevaStore) Delete(ctx context.Context, id uint) error {
	return deleted(s.db.WithContext(ctx).Delete(&models.Meeseva{}, id), entityMeeseva)
}
