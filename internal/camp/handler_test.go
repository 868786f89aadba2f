package camp

import (
	"context"
	"slices"
	"testing"

	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/models"
	"crm-backend/internal/web/webtest"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCamps struct {
	rows   map[uint]models.Camp
	nextID uint
}

func newMemCamps() *memCamps { return &memCamps{rows: map[uint]models.Camp{}} }

func (m *memCamps) filter(keep func(models.Camp) bool) []models.CampListItem {
	var out []models.CampListItem
	for _, c := range m.rows {
		if keep(c) {
			out = append(out, models.CampListItem{Camp: c})
		}
	}
	return out
}

func (m *memCamps) List(context.Context) ([]models.CampListItem, error) {
	return m.filter(func(models.Camp) bool { return true }), nil
}

func (m *memCamps) ListForEmployee(_ context.Context, employeeID string, userID uint) ([]models.CampListItem, error) {
	return m.filter(func(c models.Camp) bool {
		return c.ConductedBy == employeeID || slices.Contains(c.AssignedTo, employeeID) || c.CreatedBy == userID
	}), nil
}

func (m *memCamps) Search(_ context.Context, term string) ([]models.CampListItem, error) {
	return m.filter(func(c models.Camp) bool { return c.Location == term }), nil
}

func (m *memCamps) FindByID(_ context.Context, id uint) (*models.Camp, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("Camp")
	}
	return &c, nil
}

func (m *memCamps) Create(_ context.Context, c *models.Camp) error {
	m.nextID++
	c.ID = m.nextID
	m.rows[c.ID] = *c
	return nil
}

func (m *memCamps) Update(_ context.Context, c *models.Camp) error {
	m.rows[c.ID] = *c
	return nil
}

func (m *memCamps) UpdateStatus(_ context.Context, id uint, status string) error {
	c, ok := m.rows[id]
	if !ok {
		return apperr.NotFound("Camp")
	}
	c.Status = status
	m.rows[id] = c
	return nil
}

func (m *memCamps) Delete(_ context.Context, id uint) error {
	if _, ok := m.rows[id]; !ok {
		return apperr.NotFound("Camp")
	}
	delete(m.rows, id)
	return nil
}

func newApp(st Store, caller *models.User) *fiber.App {
	app := webtest.NewApp(caller)
	h := NewHandler(st, audit.Nop{})
	app.Get("/camps", h.List())
	app.Get("/camps/mine", h.Mine())
	app.Get("/camps/search", h.Search())
	app.Get("/camps/:id", h.Get())
	app.Post("/camps", h.Create())
	app.Put("/camps/:id", h.Update())
	app.Patch("/camps/:id/status", h.UpdateStatus())
	app.Delete("/camps/:id", h.Delete())
	return app
}

func TestCreateCamp(t *testing.T) {
	st := newMemCamps()
	app := newApp(st, webtest.Employee)

	resp := webtest.Do(t, app, "POST", "/camps", map[string]any{
		"camp_date":   "2024-11-05",
		"location":    "Gandhi Nagar",
		"assigned_to": []string{"EMP002", " EMP003 ", "EMP002", ""},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := webtest.Map(t, resp)
	assert.Equal(t, "2024-11-05", body["camp_date"])
	assert.Equal(t, "planned", body["status"])
	assert.Equal(t, []any{"EMP002", "EMP003"}, body["assigned_to"])
}

func TestCreateCampValidation(t *testing.T) {
	app := newApp(newMemCamps(), webtest.Employee)

	for _, payload := range []string{
		`{"location":"Guntur"}`,
		`{"camp_date":"2024-11-05"}`,
		`{"camp_date":"05/11/2024","location":"Guntur"}`,
		`{"camp_date":"2024-11-05","location":"Guntur","status":"postponed"}`,
	} {
		resp := webtest.Do(t, app, "POST", "/camps", payload)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, payload)
	}
}

func TestMineMatchesConductorAssigneeOrCreator(t *testing.T) {
	st := newMemCamps()
	date, _ := models.ParseDate("2024-10-01")
	st.rows[1] = models.Camp{ID: 1, CampDate: date, Location: "A", ConductedBy: "EMP002"}
	st.rows[2] = models.Camp{ID: 2, CampDate: date, Location: "B", AssignedTo: pq.StringArray{"EMP009", "EMP002"}}
	st.rows[3] = models.Camp{ID: 3, CampDate: date, Location: "C", CreatedBy: webtest.Employee.ID}
	st.rows[4] = models.Camp{ID: 4, CampDate: date, Location: "D", ConductedBy: "EMP009"}
	app := newApp(st, webtest.Employee)

	resp := webtest.Do(t, app, "GET", "/camps/mine", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var items []map[string]any
	webtest.Decode(t, resp, &items)
	assert.Len(t, items, 3)
}

func TestPatchStatus(t *testing.T) {
	st := newMemCamps()
	date, _ := models.ParseDate("2024-10-01")
	st.rows[1] = models.Camp{ID: 1, CampDate: date, Location: "A", Status: models.CampPlanned}
	app := newApp(st, webtest.Employee)

	resp := webtest.Do(t, app, "PATCH", "/camps/1/status", `{"status":"Completed"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.CampCompleted, st.rows[1].Status)

	resp = webtest.Do(t, app, "PATCH", "/camps/1/status", `{"status":"archived"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = webtest.Do(t, app, "PATCH", "/camps/7/status", `{"status":"ongoing"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSearchRequiresQuery(t *testing.T) {
	app := newApp(newMemCamps(), webtest.Employee)
	assert.Equal(t, fiber.StatusBadRequest, webtest.Do(t, app, "GET", "/camps/search", nil).StatusCode)
	assert.Equal(t, fiber.StatusOK, webtest.Do(t, app, "GET", "/camps/search?q=Guntur", nil).StatusCode)
}
