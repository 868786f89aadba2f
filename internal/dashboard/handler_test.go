package dashboard

import (
	"context"
	"net/http"
	"testing"

	"crm-backend/internal/models"
	"crm-backend/internal/store"
	"crm-backend/internal/web/webtest"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	groups       []string
	financeCalls int
}

func (f *fakeStats) Counts(context.Context) (*store.DashboardCounts, error) {
	return &store.DashboardCounts{Customers: 12, Cards: 7, Claims: 3}, nil
}

func (f *fakeStats) GroupCount(_ context.Context, table, column string) ([]store.LabelCount, error) {
	f.groups = append(f.groups, table+"."+column)
	if table == "camps" {
		return []store.LabelCount{{Label: models.CampPlanned, Count: 2}}, nil
	}
	return []store.LabelCount{}, nil
}

func (f *fakeStats) FinanceTotals(context.Context) (*store.FinanceTotals, error) {
	f.financeCalls++
	return &store.FinanceTotals{
		TotalCredit: decimal.NewFromInt(900),
		TotalDebit:  decimal.NewFromInt(400),
		Net:         decimal.NewFromInt(500),
	}, nil
}

func get(t *testing.T, s Store, user *models.User) map[string]any {
	app := webtest.NewApp(user)
	app.Get("/dashboard/stats", NewHandler(s).Stats())
	resp := webtest.Do(t, app, http.MethodGet, "/dashboard/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return webtest.Map(t, resp)
}

func TestStatsForAdmin(t *testing.T) {
	s := &fakeStats{}
	body := get(t, s, webtest.Admin)

	counts := body["counts"].(map[string]any)
	assert.Equal(t, float64(12), counts["customers"])
	assert.Equal(t, []string{"camps.status", "claims.process_state", "client_service_items.service_status"}, s.groups)

	camps := body["camps_by_status"].([]any)
	require.Len(t, camps, 1)
	assert.Equal(t, "planned", camps[0].(map[string]any)["label"])

	finance := body["finance"].(map[string]any)
	assert.Equal(t, "500", finance["net"])
}

func TestStatsHidesFinanceFromEmployees(t *testing.T) {
	s := &fakeStats{}
	body := get(t, s, webtest.Employee)

	assert.NotContains(t, body, "finance")
	assert.Zero(t, s.financeCalls)
	assert.Equal(t, []any{}, body["claims_by_process_state"])
}
