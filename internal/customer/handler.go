package customer

import (
	"context"
	"strings"

	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/auth"
	"crm-backend/internal/models"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
)

type Store interface {
	List(ctx context.Context) ([]models.CustomerListItem, error)
	ListByCreator(ctx context.Context, userID uint) ([]models.CustomerListItem, error)
	Search(ctx context.Context, term string) ([]models.CustomerListItem, error)
	FindByID(ctx context.Context, id uint) (*models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
	Update(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, id uint) error
}

// CustomerRequest is used for create and update. On update only the keys
// present in the body are applied.
type CustomerRequest struct {
	CustomerName    *string    `json:"customer_name"`
	PhoneNumber     *string    `json:"phone_number"`
	TypeOfWork      *string    `json:"type_of_work"`
	DiscussedAmount web.Amount `json:"discussed_amount"`
	PaidAmount      web.Amount `json:"paid_amount"`
	PendingAmount   web.Amount `json:"pending_amount"`
	ModeOfPayment   *string    `json:"mode_of_payment"`
	ReferredPerson  *string    `json:"referred_person"`
}

func (r *CustomerRequest) apply(c *models.Customer) {
	if r.CustomerName != nil {
		c.CustomerName = strings.TrimSpace(*r.CustomerName)
	}
	if r.PhoneNumber != nil {
		c.PhoneNumber = strings.TrimSpace(*r.PhoneNumber)
	}
	if r.TypeOfWork != nil {
		c.TypeOfWork = strings.TrimSpace(*r.TypeOfWork)
	}
	if r.ModeOfPayment != nil {
		c.ModeOfPayment = strings.TrimSpace(*r.ModeOfPayment)
	}
	if r.ReferredPerson != nil {
		c.ReferredPerson = strings.TrimSpace(*r.ReferredPerson)
	}
	// pending_amount is stored as sent, never derived from the other two
	r.DiscussedAmount.Apply(&c.DiscussedAmount)
	r.PaidAmount.Apply(&c.PaidAmount)
	r.PendingAmount.Apply(&c.PendingAmount)
}

type Handler struct {
	customers Store
	audit     audit.Recorder
}

func NewHandler(customers Store, rec audit.Recorder) *Handler {
	return &Handler{customers: customers, audit: rec}
}

// GET /api/customers
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := h.customers.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(orEmpty(items))
	}
}

// GET /api/customers/mine
func (h *Handler) Mine() fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := h.customers.ListByCreator(c.UserContext(), auth.CurrentUser(c).ID)
		if err != nil {
			return err
		}
		return c.JSON(orEmpty(items))
	}
}

// GET /api/customers/search?q=
func (h *Handler) Search() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return apperr.Validation("Search query is required")
		}
		items, err := h.customers.Search(c.UserContext(), q)
		if err != nil {
			return err
		}
		return c.JSON(orEmpty(items))
	}
}

// GET /api/customers/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		cust, err := h.customers.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(cust)
	}
}

// POST /api/customers
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if web.Trimmed(body.CustomerName) == "" {
			return apperr.Validation("customer_name is required")
		}

		user := auth.CurrentUser(c)
		cust := models.Customer{CreatedBy: user.ID}
		body.apply(&cust)

		if err := h.customers.Create(c.UserContext(), &cust); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        user,
			EntityType:  "customer",
			EntityID:    cust.ID,
			Action:      models.AuditActionCreate,
			Description: "created customer " + cust.CustomerName,
			After:       cust,
		})

		return c.Status(fiber.StatusCreated).JSON(cust)
	}
}

// PUT /api/customers/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body CustomerRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if body.CustomerName != nil && web.Trimmed(body.CustomerName) == "" {
			return apperr.Validation("customer_name cannot be empty")
		}

		cust, err := h.customers.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		before := *cust
		body.apply(cust)

		if err := h.customers.Update(c.UserContext(), cust); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "customer",
			EntityID:    cust.ID,
			Action:      models.AuditActionUpdate,
			Description: "updated customer " + cust.CustomerName,
			Before:      before,
			After:       cust,
		})

		return c.JSON(cust)
	}
}

// DELETE /api/customers/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		cust, err := h.customers.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := h.customers.Delete(c.UserContext(), id); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "customer",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "deleted customer " + cust.CustomerName,
			Before:      cust,
		})

		return c.JSON(fiber.Map{"message": "Customer deleted successfully"})
	}
}

func orEmpty(items []models.CustomerListItem) []models.CustomerListItem {
	if items == nil {
		return []models.CustomerListItem{}
	}
	return items
}
