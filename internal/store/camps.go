package store

import (
	"context"

	"crm-backend/internal/models"

	"gorm.io/gorm"
)

const entityCamp = "Camp"

type CampStore struct {
	db *gorm.DB
}

func NewCampStore(db *gorm.DB) *CampStore {
	return &CampStore{db: db}
}

func (s *CampStore) listQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("camps").
		Select(`camps.*, COALESCE(conductor.name, '') AS conducted_by_name,
			COALESCE(creator.name, '') AS created_by_name`).
		Joins("LEFT JOIN users AS conductor ON conductor.employee_id = camps.conducted_by").
		Joins("LEFT JOIN users AS creator ON creator.id = camps.created_by").
		Order("camps.camp_date DESC, camps.id DESC")
}

func (s *CampStore) List(ctx context.Context) ([]models.CampListItem, error) {
	var items []models.CampListItem
	err := s.listQuery(ctx).Scan(&items).Error
	return items, translate(err, entityCamp, "list")
}

// ListForEmployee returns camps the employee conducts, is assigned to, or created.
func (s *CampStore) ListForEmployee(ctx context.Context, employeeID string, userID uint) ([]models.CampListItem, error) {
	var items []models.CampListItem
	err := s.listQuery(ctx).
		Where("camps.conducted_by = ? OR ? = ANY(camps.assigned_to) OR camps.created_by = ?", employeeID, employeeID, userID).
		Scan(&items).Error
	return items, translate(err, entityCamp, "list")
}

func (s *CampStore) Search(ctx context.Context, term string) ([]models.CampListItem, error) {
	like := likePattern(term)
	var items []models.CampListItem
	err := s.listQuery(ctx).
		Where("camps.location ILIKE ? OR camps.status ILIKE ? OR camps.phone_number ILIKE ? OR camps.conducted_by ILIKE ? OR conductor.name ILIKE ?",
			like, like, like, like, like).
		Scan(&items).Error
	return items, translate(err, entityCamp, "search")
}

func (s *CampStore) FindByID(ctx context.Context, id uint) (*models.Camp, error) {
	var c models.Camp
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, entityCamp, "find")
	}
	return &c, nil
}

func (s *CampStore) Create(ctx context.Context, c *models.Camp) error {
	return translate(s.db.WithContext(ctx).Create(c).Error, entityCamp, "create")
}

func (s *CampStore) Update(ctx context.Context, c *models.Camp) error {
	return translate(s.db.WithContext(ctx).Save(c).Error, entityCamp, "update")
}

func (s *CampStore) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := s.db.WithContext(ctx).Model(&models.Camp{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error, entityCamp, "update")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, entityCamp, "update")
	}
	return nil
}

func (s *CampStore) Delete(ctx context.Context, id uint) error {
	return deleted(s.db.WithContext(ctx).Delete(&models.Camp{}, id), entityCamp)
}
