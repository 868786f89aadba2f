package card

import (
	"strings"

	"crm-backend/internal/audit"
	"crm-backend/internal/auth"
	"crm-backend/internal/models"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
)

type CardRequest struct {
	CustomerID     *uint   `json:"customer_id"`
	RegisterNumber *string `json:"register_number"`
	CardHolderName *string `json:"card_holder_name"`
	AgentName      *string `json:"agent_name"`
	AgentMobile    *string `json:"agent_mobile"`
}

func (r *CardRequest) apply(c *models.Card) {
	if r.CustomerID != nil {
		c.CustomerID = *r.CustomerID
	}
	if r.RegisterNumber != nil {
		c.RegisterNumber = strings.TrimSpace(*r.RegisterNumber)
	}
	if r.CardHolderName != nil {
		c.CardHolderName = strings.TrimSpace(*r.CardHolderName)
	}
	if r.AgentName != nil {
		c.AgentName = strings.TrimSpace(*r.AgentName)
	}
	if r.AgentMobile != nil {
		c.AgentMobile = strings.TrimSpace(*r.AgentMobile)
	}
}

type Handler struct {
	cards   Store
	service *Service
	audit   audit.Recorder
}

func NewHandler(cards Store, service *Service, rec audit.Recorder) *Handler {
	return &Handler{cards: cards, service: service, audit: rec}
}

// GET /api/cards
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := h.cards.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(orEmpty(items))
	}
}

// GET /api/cards/mine
func (h *Handler) Mine() fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := h.cards.ListByCreator(c.UserContext(), auth.CurrentUser(c).ID)
		if err != nil {
			return err
		}
		return c.JSON(orEmpty(items))
	}
}

// GET /api/cards/customer/:customerId
func (h *Handler) GetByCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := web.ParseID(c, "customerId")
		if err != nil {
			return err
		}
		card, err := h.cards.FindByCustomer(c.UserContext(), customerID)
		if err != nil {
			return err
		}
		return c.JSON(card)
	}
}

// GET /api/cards/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		card, err := h.cards.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(card)
	}
}

// POST /api/cards
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CardRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		user := auth.CurrentUser(c)
		card := models.Card{CreatedBy: user.ID}
		body.apply(&card)

		if err := h.service.Create(c.UserContext(), &card); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        user,
			EntityType:  "card",
			EntityID:    card.ID,
			Action:      models.AuditActionCreate,
			Description: "created card for " + card.CardHolderName,
			After:       card,
		})

		return c.Status(fiber.StatusCreated).JSON(card)
	}
}

// PUT /api/cards/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body CardRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		card, err := h.cards.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		before := *card
		body.apply(card)

		if err := h.service.Update(c.UserContext(), card, card.CustomerID != before.CustomerID); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "card",
			EntityID:    card.ID,
			Action:      models.AuditActionUpdate,
			Description: "updated card " + card.RegisterNumber,
			Before:      before,
			After:       card,
		})

		return c.JSON(card)
	}
}

// DELETE /api/cards/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		card, err := h.cards.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := h.cards.Delete(c.UserContext(), id); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "card",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "deleted card " + card.RegisterNumber,
			Before:      card,
		})

		return c.JSON(fiber.Map{"message": "Card deleted successfully"})
	}
}

func orEmpty(items []models.CardListItem) []models.CardListItem {
	if items == nil {
		return []models.CardListItem{}
	}
	return items
}
