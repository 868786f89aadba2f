package dashboard

import (
	"context"

	"crm-backend/internal/auth"
	"crm-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type Store interface {
	Counts(ctx context.Context) (*store.DashboardCounts, error)
	GroupCount(ctx context.Context, table, column string) ([]store.LabelCount, error)
	FinanceTotals(ctx context.Context) (*store.FinanceTotals, error)
}

type Stats struct {
	Counts           *store.DashboardCounts `json:"counts"`
	CampsByStatus    []store.LabelCount     `json:"camps_by_status"`
	ClaimsByState    []store.LabelCount     `json:"claims_by_process_state"`
	ServicesByStatus []store.LabelCount     `json:"services_by_status"`
	Finance          *store.FinanceTotals   `json:"finance,omitempty"`
}

type Handler struct {
	stats Store
}

func NewHandler(stats Store) *Handler {
	return &Handler{stats: stats}
}

// GET /api/dashboard/stats
//
// Financial totals are only included for admins.
func (h *Handler) Stats() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		counts, err := h.stats.Counts(ctx)
		if err != nil {
			return err
		}
		out := Stats{Counts: counts}

		groups := []struct {
			table, column string
			dst           *[]store.LabelCount
		}{
			{"camps", "status", &out.CampsByStatus},
			{"claims", "process_state", &out.ClaimsByState},
			{"client_service_items", "service_status", &out.ServicesByStatus},
		}
		for _, g := range groups {
			rows, err := h.stats.GroupCount(ctx, g.table, g.column)
			if err != nil {
				return err
			}
			*g.dst = rows
		}

		if auth.CurrentUser(c).IsAdmin() {
			if out.Finance, err = h.stats.FinanceTotals(ctx); err != nil {
				return err
			}
		}

		return c.JSON(out)
	}
}
