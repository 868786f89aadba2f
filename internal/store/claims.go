package store

import (
	"context"

	"crm-backend/internal/models"

	"gorm.io/gorm"
)

const entityClaim = "Claim"

type ClaimStore struct {
	db *gorm.DB
}

func NewClaimStore(db *gorm.DB) *ClaimStore {
	return &ClaimStore{db: db}
}

func (s *ClaimStore) listQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("claims").
		Select(`claims.*, cards.customer_id, cards.register_number, cards.card_holder_name,
			customers.customer_name`).
		Joins("JOIN cards ON cards.id = claims.card_id").
		Joins("JOIN customers ON customers.id = cards.customer_id").
		Order("claims.created_at DESC")
}

func (s *ClaimStore) List(ctx context.Context) ([]models.ClaimListItem, error) {
	var items []models.ClaimListItem
	err := s.listQuery(ctx).Scan(&items).Error
	return items, translate(err, entityClaim, "list")
}

func (s *ClaimStore) ListByCard(ctx context.Context, cardID uint) ([]models.ClaimListItem, error) {
	var items []models.ClaimListItem
	err := s.listQuery(ctx).Where("claims.card_id = ?", cardID).Scan(&items).Error
	return items, translate(err, entityClaim, "list")
}

func (s *ClaimStore) FindByID(ctx context.Context, id uint) (*models.Claim, error) {
	var c models.Claim
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, entityClaim, "find")
	}
	return &c, nil
}

func (s *ClaimStore) Create(ctx context.Context, c *models.Claim) error {
	return translate(s.db.WithContext(ctx).Create(c).Error, entityClaim, "create")
}

func (s *ClaimStore) Update(ctx context.Context, c *models.Claim) error {
	return translate(s.db.WithContext(ctx).Save(c).Error, entityClaim, "update")
}

func (s *ClaimStore) Delete(ctx context.Context, id uint) error {
	return deleted(s.db.WithContext(ctx).Delete(&models.Claim{}, id), entityClaim)
}
