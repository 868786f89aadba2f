package store

import (
	"context"

	"crm-backend/internal/apperr"
	"crm-backend/internal/models"

	"gorm.io/gorm"
)

const entityCard = "Card"

type CardStore struct {
	db *gorm.DB
}

func NewCardStore(db *gorm.DB) *CardStore {
	return &CardStore{db: db}
}

func (s *CardStore) listQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("cards").
		Select(`cards.*, customers.customer_name, customers.phone_number,
			(SELECT COUNT(*) FROM claims WHERE claims.card_id = cards.id) AS claim_count`).
		Joins("JOIN customers ON customers.id = cards.customer_id").
		Order("cards.created_at DESC")
}

func (s *CardStore) List(ctx context.Context) ([]models.CardListItem, error) {
	var items []models.CardListItem
	err := s.listQuery(ctx).Scan(&items).Error
	return items, translate(err, entityCard, "list")
}

func (s *CardStore) ListByCreator(ctx context.Context, userID uint) ([]models.CardListItem, error) {
	var items []models.CardListItem
	err := s.listQuery(ctx).Where("cards.created_by = ?", userID).Scan(&items).Error
	return items, translate(err, entityCard, "list")
}

func (s *CardStore) FindByID(ctx context.Context, id uint) (*models.Card, error) {
	var c models.Card
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, entityCard, "find")
	}
	return &c, nil
}

func (s *CardStore) FindByCustomer(ctx context.Context, customerID uint) (*models.Card, error) {
	var c models.Card
	if err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&c).Error; err != nil {
		return nil, translate(err, entityCard, "find")
	}
	return &c, nil
}

func (s *CardStore) Create(ctx context.Context, c *models.Card) error {
	err := translate(s.db.WithContext(ctx).Create(c).Error, entityCard, "create")
	if apperr.Is(err, apperr.KindConflict) {
		return apperr.Conflict("Customer already has a card")
	}
	return err
}

func (s *CardStore) Update(ctx context.Context, c *models.Card) error {
	return translate(s.db.WithContext(ctx).Save(c).Error, entityCard, "update")
}

func (s *CardStore) Delete(ctx context.Context, id uint) error {
	return deleted(s.db.WithContext(ctx).Delete(&models.Card{}, id), entityCard)
}
