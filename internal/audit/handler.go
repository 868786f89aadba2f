package audit

import (
	"context"

	"crm-backend/internal/models"
	"crm-backend/internal/paging"
	"crm-backend/internal/store"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
)

type Lister interface {
	List(ctx context.Context, f store.AuditFilter, p paging.Params) ([]models.AuditLog, int64, error)
}

type Handler struct {
	logs Lister
}

func NewHandler(logs Lister) *Handler {
	return &Handler{logs: logs}
}

// GET /api/audit-logs?entity_type=customer&entity_id=1&user_id=2&page=1&limit=20
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityID, err := web.QueryID(c, "entity_id")
		if err != nil {
			return err
		}
		userID, err := web.QueryID(c, "user_id")
		if err != nil {
			return err
		}

		f := store.AuditFilter{
			EntityType: c.Query("entity_type"),
			EntityID:   entityID,
			UserID:     userID,
		}
		p := paging.FromQuery(c.Query("page"), c.Query("limit"))

		logs, total, err := h.logs.List(c.UserContext(), f, p)
		if err != nil {
			return err
		}
		return c.JSON(paging.NewResult(logs, total, p))
	}
}
