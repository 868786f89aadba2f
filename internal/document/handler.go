package document

import (
	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/auth"
	"crm-backend/internal/models"
	"crm-backend/internal/paging"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
)

// FormField is the multipart field carrying the files.
const FormField = "documents"

type Handler struct {
	docs    Store
	service *Service
	audit   audit.Recorder
}

func NewHandler(docs Store, service *Service, rec audit.Recorder) *Handler {
	return &Handler{docs: docs, service: service, audit: rec}
}

// POST /api/documents/service/:serviceId/upload
func (h *Handler) Upload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		serviceID, err := web.ParseID(c, "serviceId")
		if err != nil {
			return err
		}
		form, err := c.MultipartForm()
		if err != nil {
			return apperr.Validation("Expected a multipart form with field 'documents'")
		}

		user := auth.CurrentUser(c)
		docs, failed, err := h.service.Upload(c.UserContext(), serviceID, user, form.File[FormField])
		if err != nil {
			return err
		}

		if len(docs) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "No documents were uploaded",
				"details": failed,
			})
		}

		for _, d := range docs {
			h.audit.Record(c.UserContext(), audit.Entry{
				User:        user,
				EntityType:  "document",
				EntityID:    d.ID,
				Action:      models.AuditActionCreate,
				Description: "uploaded " + d.FileName,
				After:       d,
			})
		}

		resp := fiber.Map{"documents": docs}
		if len(failed) > 0 {
			resp["errors"] = failed
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/documents/service/:serviceId?page=1&limit=10
func (h *Handler) ListByService() fiber.Handler {
	return func(c *fiber.Ctx) error {
		serviceID, err := web.ParseID(c, "serviceId")
		if err != nil {
			return err
		}
		p := paging.FromQuery(c.Query("page"), c.Query("limit"))

		docs, total, err := h.docs.ListByService(c.UserContext(), serviceID, p)
		if err != nil {
			return err
		}
		return c.JSON(paging.NewResult(docs, total, p))
	}
}

// GET /api/documents/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		doc, err := h.docs.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// DELETE /api/documents/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}

		doc, warning, err := h.service.Delete(c.UserContext(), id)
		if err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "document",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "deleted " + doc.FileName,
			Before:      doc,
		})

		resp := fiber.Map{"message": "Document deleted successfully"}
		if warning != "" {
			resp["warning"] = warning
		}
		return c.JSON(resp)
	}
}
