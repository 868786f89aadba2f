package card

import (
	"context"
	"strings"

	"crm-backend/internal/apperr"
	"crm-backend/internal/models"
)

type Store interface {
	List(ctx context.Context) ([]models.CardListItem, error)
	ListByCreator(ctx context.Context, userID uint) ([]models.CardListItem, error)
	FindByID(ctx context.Context, id uint) (*models.Card, error)
	FindByCustomer(ctx context.Context, customerID uint) (*models.Card, error)
	Create(ctx context.Context, c *models.Card) error
	Update(ctx context.Context, c *models.Card) error
	Delete(ctx context.Context, id uint) error
}

type CustomerFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Customer, error)
}

type Service struct {
	cards     Store
	customers CustomerFinder
}

func NewService(cards Store, customers CustomerFinder) *Service {
	return &Service{cards: cards, customers: customers}
}

// Create checks the customer exists and defaults the holder name to the
// customer's name.
func (s *Service) Create(ctx context.Context, c *models.Card) error {
	if c.CustomerID == 0 {
		return apperr.Validation("customer_id is required")
	}
	cust, err := s.customers.FindByID(ctx, c.CustomerID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(c.CardHolderName) == "" {
		c.CardHolderName = cust.CustomerName
	}
	return s.cards.Create(ctx, c)
}

// Update moves a card to another customer only if that customer exists.
func (s *Service) Update(ctx context.Context, c *models.Card, customerChanged bool) error {
	if customerChanged {
		if _, err := s.customers.FindByID(ctx, c.CustomerID); err != nil {
			return err
		}
	}
	return s.cards.Update(ctx, c)
}
