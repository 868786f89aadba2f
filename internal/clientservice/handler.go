package clientservice

import (
	"context"
	"strings"

	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/auth"
	"crm-backend/internal/models"
	"crm-backend/internal/paging"
	"crm-backend/internal/store"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
)

type Store interface {
	List(ctx context.Context, f store.ClientServiceFilter, p paging.Params) ([]models.ClientServiceListItem, int64, error)
	FindByID(ctx context.Context, id uint) (*models.ClientService, error)
	Create(ctx context.Context, cs *models.ClientService) error
	Update(ctx context.Context, cs *models.ClientService) error
	Delete(ctx context.Context, id uint) ([]models.ServicesDocument, error)

	FindItem(ctx context.Context, id uint) (*models.ClientServiceItem, error)
	CreateItem(ctx context.Context, item *models.ClientServiceItem) error
	UpdateItem(ctx context.Context, item *models.ClientServiceItem) error
	UpdateItemStatus(ctx context.Context, id uint, status models.ServiceStatus) error
	DeleteItem(ctx context.Context, id uint) ([]models.ServicesDocument, error)
}

// FileCleaner removes the stored files of deleted documents.
type FileCleaner interface {
	RemoveFiles(ctx context.Context, docs []models.ServicesDocument)
}

type ItemRequest struct {
	ServiceName   *string               `json:"service_name"`
	ServiceStatus *models.ServiceStatus `json:"service_status"`
	Remarks       *string               `json:"remarks"`
}

type ClientServiceRequest struct {
	EstablishmentName *string       `json:"establishment_name"`
	EmployerName      *string       `json:"employer_name"`
	EmailID           *string       `json:"email_id"`
	MobileNumber      *string       `json:"mobile_number"`
	Services          []ItemRequest `json:"services"`
}

type StatusRequest struct {
	Status models.ServiceStatus `json:"status"`
}

func (r *ClientServiceRequest) apply(cs *models.ClientService) {
	if r.EstablishmentName != nil {
		cs.EstablishmentName = strings.TrimSpace(*r.EstablishmentName)
	}
	if r.EmployerName != nil {
		cs.EmployerName = strings.TrimSpace(*r.EmployerName)
	}
	if r.EmailID != nil {
		cs.EmailID = strings.TrimSpace(*r.EmailID)
	}
	if r.MobileNumber != nil {
		cs.MobileNumber = strings.TrimSpace(*r.MobileNumber)
	}
}

func (r *ItemRequest) apply(item *models.ClientServiceItem) {
	if r.ServiceName != nil {
		item.ServiceName = strings.TrimSpace(*r.ServiceName)
	}
	if r.ServiceStatus != nil {
		item.ServiceStatus = models.ServiceStatus(strings.ToLower(strings.TrimSpace(string(*r.ServiceStatus))))
	}
	if r.Remarks != nil {
		item.Remarks = strings.TrimSpace(*r.Remarks)
	}
}

// itemProblem returns a validation message, or "" for a valid item.
func itemProblem(item *models.ClientServiceItem) string {
	if item.ServiceName == "" {
		return "service_name is required"
	}
	if !item.ServiceStatus.Valid() {
		return "service_status must be approved, rejected or pending"
	}
	return ""
}

type Handler struct {
	services Store
	files    FileCleaner
	audit    audit.Recorder
}

func NewHandler(services Store, files FileCleaner, rec audit.Recorder) *Handler {
	return &Handler{services: services, files: files, audit: rec}
}

func parseFilter(c *fiber.Ctx) (store.ClientServiceFilter, error) {
	f := store.ClientServiceFilter{
		Search:       strings.TrimSpace(c.Query("search")),
		Phone:        strings.TrimSpace(c.Query("phone")),
		ServiceCount: strings.TrimSpace(c.Query("service_count")),
	}
	if f.ServiceCount != "" {
		if _, ok := store.ServiceCountBuckets[f.ServiceCount]; !ok {
			return f, apperr.Validation("service_count must be one of 0, 1, 2-5, 6-10, 10+")
		}
	}
	var err error
	if f.StartDate, err = web.QueryDate(c, "start_date"); err != nil {
		return f, err
	}
	if f.EndDate, err = web.QueryDate(c, "end_date"); err != nil {
		return f, err
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, apperr.Validation("end_date must not be before start_date")
	}
	return f, nil
}

// GET /api/client-services?page=1&limit=10&search=&start_date=&end_date=&phone=&service_count=
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		p := paging.FromQuery(c.Query("page"), c.Query("limit"))

		rows, total, err := h.services.List(c.UserContext(), f, p)
		if err != nil {
			return err
		}
		return c.JSON(paging.NewResult(rows, total, p))
	}
}

// GET /api/client-services/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		cs, err := h.services.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(cs)
	}
}

// POST /api/client-services
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClientServiceRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		user := auth.CurrentUser(c)
		cs := models.ClientService{CreatedBy: user.ID}
		body.apply(&cs)
		if cs.EstablishmentName == "" {
			return apperr.Validation("establishment_name is required")
		}

		for i, req := range body.Services {
			item := models.ClientServiceItem{ServiceStatus: models.ServicePending, CreatedBy: user.ID}
			req.apply(&item)
			if msg := itemProblem(&item); msg != "" {
				return apperr.Validationf("services[%d]: %s", i, msg)
			}
			cs.Services = append(cs.Services, item)
		}

		if err := h.services.Create(c.UserContext(), &cs); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        user,
			EntityType:  "client_service",
			EntityID:    cs.ID,
			Action:      models.AuditActionCreate,
			Description: "created client " + cs.EstablishmentName,
			After:       cs,
		})

		return c.Status(fiber.StatusCreated).JSON(cs)
	}
}

// PUT /api/client-services/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body ClientServiceRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		cs, err := h.services.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		before := *cs
		body.apply(cs)
		if cs.EstablishmentName == "" {
			return apperr.Validation("establishment_name cannot be empty")
		}

		if err := h.services.Update(c.UserContext(), cs); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "client_service",
			EntityID:    cs.ID,
			Action:      models.AuditActionUpdate,
			Description: "updated client " + cs.EstablishmentName,
			Before:      before,
			After:       cs,
		})

		return c.JSON(cs)
	}
}

// DELETE /api/client-services/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		cs, err := h.services.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		docs, err := h.services.Delete(c.UserContext(), id)
		if err != nil {
			return err
		}
		h.files.RemoveFiles(c.UserContext(), docs)

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "client_service",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "deleted client " + cs.EstablishmentName,
			Before:      cs,
		})

		return c.JSON(fiber.Map{"message": "Client service deleted successfully"})
	}
}

// POST /api/client-services/:id/services
func (h *Handler) CreateItem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body ItemRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		user := auth.CurrentUser(c)
		item := models.ClientServiceItem{ClientServiceID: id, ServiceStatus: models.ServicePending, CreatedBy: user.ID}
		body.apply(&item)
		if msg := itemProblem(&item); msg != "" {
			return apperr.Validation(msg)
		}
		if _, err := h.services.FindByID(c.UserContext(), id); err != nil {
			return err
		}

		if err := h.services.CreateItem(c.UserContext(), &item); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        user,
			EntityType:  "client_service_item",
			EntityID:    item.ID,
			Action:      models.AuditActionCreate,
			Description: "added service " + item.ServiceName,
			After:       item,
		})

		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// PUT /api/client-services/services/:itemId
func (h *Handler) UpdateItem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "itemId")
		if err != nil {
			return err
		}
		var body ItemRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		item, err := h.services.FindItem(c.UserContext(), id)
		if err != nil {
			return err
		}
		before := *item
		body.apply(item)
		if msg := itemProblem(item); msg != "" {
			return apperr.Validation(msg)
		}

		if err := h.services.UpdateItem(c.UserContext(), item); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "client_service_item",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: "updated service " + item.ServiceName,
			Before:      before,
			After:       item,
		})

		return c.JSON(item)
	}
}

// PATCH /api/client-services/services/:itemId/status
func (h *Handler) UpdateItemStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "itemId")
		if err != nil {
			return err
		}
		var body StatusRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		status := models.ServiceStatus(strings.ToLower(strings.TrimSpace(string(body.Status))))
		if !status.Valid() {
			return apperr.Validation("status must be approved, rejected or pending")
		}

		item, err := h.services.FindItem(c.UserContext(), id)
		if err != nil {
			return err
		}
		before := item.ServiceStatus
		if err := h.services.UpdateItemStatus(c.UserContext(), id, status); err != nil {
			return err
		}
		item.ServiceStatus = status

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "client_service_item",
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: "service " + item.ServiceName + " " + string(before) + " -> " + string(status),
			Before:      fiber.Map{"service_status": before},
			After:       fiber.Map{"service_status": status},
		})

		return c.JSON(item)
	}
}

// DELETE /api/client-services/services/:itemId
func (h *Handler) DeleteItem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "itemId")
		if err != nil {
			return err
		}
		item, err := h.services.FindItem(c.UserContext(), id)
		if err != nil {
			return err
		}
		docs, err := h.services.DeleteItem(c.UserContext(), id)
		if err != nil {
			return err
		}
		h.files.RemoveFiles(c.UserContext(), docs)

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "client_service_item",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "deleted service " + item.ServiceName,
			Before:      item,
		})

		return c.JSON(fiber.Map{"message": "Service deleted successfully"})
	}
}
