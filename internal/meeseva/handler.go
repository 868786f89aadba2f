package meeseva

import (
	"context"
	"strings"

	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/auth"
	"crm-backend/internal/models"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Store interface {
	List(ctx context.Context) ([]models.Meeseva, error)
	FindByID(ctx context.Context, id uint) (*models.Meeseva, error)
	Create(ctx context.Context, m *models.Meeseva) error
	Update(ctx context.Context, m *models.Meeseva) error
	Delete(ctx context.Context, id uint) error
}

type MeesevaRequest struct {
	Name          *string    `json:"name"`
	AdvanceAmount web.Amount `json:"advance_amount"`
	UsedAmount    web.Amount `json:"used_amount"`
	Comment       *string    `json:"comment"`
}

func (r *MeesevaRequest) apply(m *models.Meeseva) {
	if r.Name != nil {
		m.Name = strings.TrimSpace(*r.Name)
	}
	if r.Comment != nil {
		m.Comment = strings.TrimSpace(*r.Comment)
	}
	r.AdvanceAmount.Apply(&m.AdvanceAmount)
	r.UsedAmount.Apply(&m.UsedAmount)
}

// MeesevaResponse adds the remaining balance to a record.
type MeesevaResponse struct {
	models.Meeseva
	AvailableAmount decimal.Decimal `json:"available_amount"`
}

func respond(m models.Meeseva) MeesevaResponse {
	return MeesevaResponse{Meeseva: m, AvailableAmount: m.Available()}
}

// checkAmounts enforces 0 <= used <= advance.
func checkAmounts(m *models.Meeseva) error {
	if m.AdvanceAmount.IsNegative() || m.UsedAmount.IsNegative() {
		return apperr.Validation("Amounts cannot be negative")
	}
	if m.UsedAmount.GreaterThan(m.AdvanceAmount) {
		return apperr.Validation("Used amount cannot be greater than advance amount")
	}
	return nil
}

type Handler struct {
	records Store
	audit   audit.Recorder
}

func NewHandler(records Store, rec audit.Recorder) *Handler {
	return &Handler{records: records, audit: rec}
}

// GET /api/meeseva
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := h.records.List(c.UserContext())
		if err != nil {
			return err
		}
		out := make([]MeesevaResponse, 0, len(rows))
		for _, m := range rows {
			out = append(out, respond(m))
		}
		return c.JSON(out)
	}
}

// GET /api/meeseva/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		m, err := h.records.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(respond(*m))
	}
}

// POST /api/meeseva
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MeesevaRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if web.Trimmed(body.Name) == "" {
			return apperr.Validation("name is required")
		}

		user := auth.CurrentUser(c)
		m := models.Meeseva{CreatedBy: user.ID}
		body.apply(&m)
		if err := checkAmounts(&m); err != nil {
			return err
		}

		if err := h.records.Create(c.UserContext(), &m); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        user,
			EntityType:  "meeseva",
			EntityID:    m.ID,
			Action:      models.AuditActionCreate,
			Description: "created meeseva record " + m.Name,
			After:       m,
		})

		return c.Status(fiber.StatusCreated).JSON(respond(m))
	}
}

// PUT /api/meeseva/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body MeesevaRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if body.Name != nil && web.Trimmed(body.Name) == "" {
			return apperr.Validation("name cannot be empty")
		}

		m, err := h.records.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		before := *m
		body.apply(m)
		if err := checkAmounts(m); err != nil {
			return err
		}

		user := auth.CurrentUser(c)
		m.UpdatedBy = &user.ID
		if err := h.records.Update(c.UserContext(), m); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        user,
			EntityType:  "meeseva",
			EntityID:    m.ID,
			Action:      models.AuditActionUpdate,
			Description: "updated meeseva record " + m.Name,
			Before:      before,
			After:       m,
		})

		return c.JSON(respond(*m))
	}
}

// DELETE /api/meeseva/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		m, err := h.records.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := h.records.Delete(c.UserContext(), id); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "meeseva",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "deleted meeseva record " + m.Name,
			Before:      m,
		})

		return c.JSON(fiber.Map{"message": "Meeseva record deleted successfully"})
	}
}
