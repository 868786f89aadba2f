package store

import (
	"context"

	"crm-backend/internal/models"

	"gorm.io/gorm"
)

const entityCustomer = "Customer"

type CustomerStore struct {
	db *gorm.DB
}

func NewCustomerStore(db *gorm.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

func (s *CustomerStore) listQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("customers").
		Select(`customers.*,
			EXISTS (SELECT 1 FROM cards WHERE cards.customer_id = customers.id) AS has_card,
			EXISTS (SELECT 1 FROM claims JOIN cards ON cards.id = claims.card_id WHERE cards.customer_id = customers.id) AS has_claims,
			COALESCE(users.name, '') AS created_by_name`).
		Joins("LEFT JOIN users ON users.id = customers.created_by").
		Order("customers.created_at DESC")
}

func (s *CustomerStore) List(ctx context.Context) ([]models.CustomerListItem, error) {
	var items []models.CustomerListItem
	err := s.listQuery(ctx).Scan(&items).Error
	return items, translate(err, entityCustomer, "list")
}

func (s *CustomerStore) ListByCreator(ctx context.Context, userID uint) ([]models.CustomerListItem, error) {
	var items []models.CustomerListItem
	err := s.listQuery(ctx).Where("customers.created_by = ?", userID).Scan(&items).Error
	return items, translate(err, entityCustomer, "list")
}

func (s *CustomerStore) Search(ctx context.Context, term string) ([]models.CustomerListItem, error) {
	like := likePattern(term)
	var items []models.CustomerListItem
	err := s.listQuery(ctx).
		Where(`customers.customer_name ILIKE ? OR customers.phone_number ILIKE ? OR customers.type_of_work ILIKE ?
			OR customers.referred_person ILIKE ? OR customers.mode_of_payment ILIKE ?`,
			like, like, like, like, like).
		Scan(&items).Error
	return items, translate(err, entityCustomer, "search")
}

func (s *CustomerStore) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, entityCustomer, "find")
	}
	return &c, nil
}

func (s *CustomerStore) Create(ctx context.Context, c *models.Customer) error {
	return translate(s.db.WithContext(ctx).Create(c).Error, entityCustomer, "create")
}

func (s *CustomerStore) Update(ctx context.Context, c *models.Customer) error {
	return translate(s.db.WithContext(ctx).Save(c).Error, entityCustomer, "update")
}

func (s *CustomerStore) Delete(ctx context.Context, id uint) error {
	return deleted(s.db.WithContext(ctx).Delete(&models.Customer{}, id), entityCustomer)
}
