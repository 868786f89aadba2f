package claim

import (
	"context"
	"slices"
	"strings"

	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/auth"
	"crm-backend/internal/models"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
)

type Store interface {
	List(ctx context.Context) ([]models.ClaimListItem, error)
	ListByCard(ctx context.Context, cardID uint) ([]models.ClaimListItem, error)
	FindByID(ctx context.Context, id uint) (*models.Claim, error)
	Create(ctx context.Context, c *models.Claim) error
	Update(ctx context.Context, c *models.Claim) error
	Delete(ctx context.Context, id uint) error
}

type CardFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Card, error)
}

type ClaimRequest struct {
	CardID          *uint      `json:"card_id"`
	DiscussedAmount web.Amount `json:"discussed_amount"`
	PaidAmount      web.Amount `json:"paid_amount"`
	PendingAmount   web.Amount `json:"pending_amount"`
	TypeOfClaim     *string    `json:"type_of_claim"`
	ProcessState    *string    `json:"process_state"`
}

func (r *ClaimRequest) apply(c *models.Claim) {
	if r.CardID != nil {
		c.CardID = *r.CardID
	}
	if r.TypeOfClaim != nil {
		c.TypeOfClaim = strings.TrimSpace(*r.TypeOfClaim)
	}
	if r.ProcessState != nil {
		c.ProcessState = strings.TrimSpace(*r.ProcessState)
	}
	r.DiscussedAmount.Apply(&c.DiscussedAmount)
	r.PaidAmount.Apply(&c.PaidAmount)
	r.PendingAmount.Apply(&c.PendingAmount)
}

func validate(c *models.Claim) error {
	if c.CardID == 0 {
		return apperr.Validation("card_id is required")
	}
	if !slices.Contains(models.ClaimTypes, c.TypeOfClaim) {
		return apperr.Validationf("type_of_claim must be one of: %s", strings.Join(models.ClaimTypes, ", "))
	}
	if !slices.Contains(models.ProcessStates, c.ProcessState) {
		return apperr.Validationf("process_state must be one of: %s", strings.Join(models.ProcessStates, ", "))
	}
	return nil
}

type Handler struct {
	claims Store
	cards  CardFinder
	audit  audit.Recorder
}

func NewHandler(claims Store, cards CardFinder, rec audit.Recorder) *Handler {
	return &Handler{claims: claims, cards: cards, audit: rec}
}

// GET /api/claims
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := h.claims.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(orEmpty(items))
	}
}

// GET /api/claims/card/:cardId
func (h *Handler) ListByCard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cardID, err := web.ParseID(c, "cardId")
		if err != nil {
			return err
		}
		items, err := h.claims.ListByCard(c.UserContext(), cardID)
		if err != nil {
			return err
		}
		return c.JSON(orEmpty(items))
	}
}

// GET /api/claims/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		cl, err := h.claims.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(cl)
	}
}

// POST /api/claims
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClaimRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		cl := models.Claim{ProcessState: models.StateALO}
		body.apply(&cl)
		if cl.ProcessState == "" {
			cl.ProcessState = models.StateALO
		}
		if err := validate(&cl); err != nil {
			return err
		}
		if _, err := h.cards.FindByID(c.UserContext(), cl.CardID); err != nil {
			return err
		}

		if err := h.claims.Create(c.UserContext(), &cl); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "claim",
			EntityID:    cl.ID,
			Action:      models.AuditActionCreate,
			Description: "created " + cl.TypeOfClaim + " claim",
			After:       cl,
		})

		return c.Status(fiber.StatusCreated).JSON(cl)
	}
}

// PUT /api/claims/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body ClaimRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		cl, err := h.claims.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		before := *cl
		body.apply(cl)
		if err := validate(cl); err != nil {
			return err
		}
		if cl.CardID != before.CardID {
			if _, err := h.cards.FindByID(c.UserContext(), cl.CardID); err != nil {
				return err
			}
		}

		if err := h.claims.Update(c.UserContext(), cl); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "claim",
			EntityID:    cl.ID,
			Action:      models.AuditActionUpdate,
			Description: "claim moved to " + cl.ProcessState,
			Before:      before,
			After:       cl,
		})

		return c.JSON(cl)
	}
}

// DELETE /api/claims/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		cl, err := h.claims.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := h.claims.Delete(c.UserContext(), id); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "claim",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "deleted " + cl.TypeOfClaim + " claim",
			Before:      cl,
		})

		return c.JSON(fiber.Map{"message": "Claim deleted successfully"})
	}
}

func orEmpty(items []models.ClaimListItem) []models.ClaimListItem {
	if items == nil {
		return []models.ClaimListItem{}
	}
	return items
}
