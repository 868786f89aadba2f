package camp

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
	"github.com/lib/pq"
)

var Statuses = []string{models.CampPlanned, models.CampOngoing, models.CampCompleted, models.CampCancelled}

type Store interface {
	List(ctx context.Context) ([]models.CampListItem, error)
	ListForEmployee(ctx context.Context, employeeID string, userID uint) ([]models.CampListItem, error)
	Search(ctx context.Context, term string) ([]models.CampListItem, error)
	FindByID(ctx context.Context, id uint) (*models.Camp, error)
	Create(ctx context.Context, c *models.Camp) error
	Update(ctx context.Context, c *models.Camp) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
}

type CampRequest struct {
	CampDate     *models.Date `json:"camp_date"`
	Location     *string      `json:"location"`
	LocationLink *string      `json:"location_link"`
	PhoneNumber  *string      `json:"phone_number"`
	Status       *string      `json:"status"`
	ConductedBy  *string      `json:"conducted_by"`
	AssignedTo   *[]string    `json:"assigned_to"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

func (r *CampRequest) apply(c *models.Camp) {
	if r.CampDate != nil {
		c.CampDate = *r.CampDate
	}
	if r.Location != nil {
		c.Location = strings.TrimSpace(*r.Location)
	}
	if r.LocationLink != nil {
		c.LocationLink = strings.TrimSpace(*r.LocationLink)
	}
	if r.PhoneNumber != nil {
		c.PhoneNumber = strings.TrimSpace(*r.PhoneNumber)
	}
	if r.Status != nil {
		c.Status = strings.ToLower(strings.TrimSpace(*r.Status))
	}
	if r.ConductedBy != nil {
		c.ConductedBy = strings.TrimSpace(*r.ConductedBy)
	}
	if r.AssignedTo != nil {
		c.AssignedTo = cleanAssignees(*r.AssignedTo)
	}
}

func cleanAssignees(ids []string) pq.StringArray {
	out := pq.StringArray{}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func validate(c *models.Camp) error {
	if c.CampDate.IsZero() {
		return apperr.Validation("camp_date is required (YYYY-MM-DD)")
	}
	if c.Location == "" {
		return apperr.Validation("location is required")
	}
	if !slices.Contains(Statuses, c.Status) {
		return apperr.Validationf("status must be one of: %s", strings.Join(Statuses, ", "))
	}
	return nil
}

type Handler struct {
	camps Store
	audit audit.Recorder
}

func NewHandler(camps Store, rec audit.Recorder) *Handler {
	return &Handler{camps: camps, audit: rec}
}

// GET /api/camps
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := h.camps.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(orEmpty(items))
	}
}

// GET /api/camps/mine
func (h *Handler) Mine() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := auth.CurrentUser(c)
		items, err := h.camps.ListForEmployee(c.UserContext(), user.EmployeeID, user.ID)
		if err != nil {
			return err
		}
		return c.JSON(orEmpty(items))
	}
}

// GET /api/camps/search?q=
func (h *Handler) Search() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return apperr.Validation("Search query is required")
		}
		items, err := h.camps.Search(c.UserContext(), q)
		if err != nil {
			return err
		}
		return c.JSON(orEmpty(items))
	}
}

// GET /api/camps/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		camp, err := h.camps.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(camp)
	}
}

// POST /api/camps
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CampRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		user := auth.CurrentUser(c)
		camp := models.Camp{
			Status:     models.CampPlanned,
			AssignedTo: pq.StringArray{},
			CreatedBy:  user.ID,
		}
		body.apply(&camp)
		if camp.Status == "" {
			camp.Status = models.CampPlanned
		}
		if err := validate(&camp); err != nil {
			return err
		}

		if err := h.camps.Create(c.UserContext(), &camp); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        user,
			EntityType:  "camp",
			EntityID:    camp.ID,
			Action:      models.AuditActionCreate,
			Description: "created camp at " + camp.Location,
			After:       camp,
		})

		return c.Status(fiber.StatusCreated).JSON(camp)
	}
}

// PUT /api/camps/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body CampRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		camp, err := h.camps.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		before := *camp
		body.apply(camp)
		if camp.AssignedTo == nil {
			camp.AssignedTo = pq.StringArray{}
		}
		if err := validate(camp); err != nil {
			return err
		}

		if err := h.camps.Update(c.UserContext(), camp); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "camp",
			EntityID:    camp.ID,
			Action:      models.AuditActionUpdate,
			Description: "updated camp at " + camp.Location,
			Before:      before,
			After:       camp,
		})

		return c.JSON(camp)
	}
}

// PATCH /api/camps/:id/status
func (h *Handler) UpdateStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body StatusRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		status := strings.ToLower(strings.TrimSpace(body.Status))
		if !slices.Contains(Statuses, status) {
			return apperr.Validationf("status must be one of: %s", strings.Join(Statuses, ", "))
		}

		camp, err := h.camps.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		before := camp.Status
		if err := h.camps.UpdateStatus(c.UserContext(), id, status); err != nil {
			return err
		}
		camp.Status = status

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "camp",
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: "camp status " + before + " -> " + status,
			Before:      fiber.Map{"status": before},
			After:       fiber.Map{"status": status},
		})

		return c.JSON(camp)
	}
}

// DELETE /api/camps/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		camp, err := h.camps.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := h.camps.Delete(c.UserContext(), id); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "camp",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "deleted camp at " + camp.Location,
			Before:      camp,
		})

		return c.JSON(fiber.Map{"message": "Camp deleted successfully"})
	}
}

func orEmpty(items []models.CampListItem) []models.CampListItem {
	if items == nil {
		return []models.CampListItem{}
	}
	return items
}
