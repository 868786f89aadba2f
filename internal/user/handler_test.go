package user

import (
	"context"
	"testing"

	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/models"
	"crm-backend/internal/web/webtest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	users  map[uint]*models.User
	nextID uint
}

func newMemStore(users ...*models.User) *memStore {
	m := &memStore{users: map[uint]*models.User{}, nextID: 100}
	for _, u := range users {
		cp := *u
		m.users[u.ID] = &cp
	}
	return m
}

func (m *memStore) List(context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memStore) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, u *models.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email || existing.EmployeeID == u.EmployeeID {
			return apperr.Conflict("User already exists")
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) Update(_ context.Context, u *models.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) Delete(_ context.Context, id uint) error {
	if _, ok := m.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(m.users, id)
	return nil
}

func newApp(st Store, caller *models.User) *fiber.App {
	app := webtest.NewApp(caller)
	h := NewHandler(st, audit.Nop{})
	app.Get("/users", h.List())
	app.Get("/users/employees", h.Employees())
	app.Get("/users/:id", h.Get())
	app.Post("/users", h.Create())
	app.Put("/users/:id", h.Update())
	app.Delete("/users/:id", h.Delete())
	return app
}

func TestEmployeeCanOnlyReadSelf(t *testing.T) {
	other := &models.User{ID: 9, Email: "other@example.com", Role: models.RoleEmployee}
	st := newMemStore(webtest.Admin, webtest.Employee, other)
	app := newApp(st, webtest.Employee)

	resp := webtest.Do(t, app, "GET", "/users/2", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = webtest.Do(t, app, "GET", "/users/9", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCreateUserDefaultsAndConflict(t *testing.T) {
	st := newMemStore(webtest.Admin)
	app := newApp(st, webtest.Admin)

	resp := webtest.Do(t, app, "POST", "/users", map[string]string{
		"employee_id": "EMP010", "name": "Sunita", "email": "Sunita@Example.com", "password": "secret1",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := webtest.Map(t, resp)
	assert.Equal(t, "employee", body["role"])
	assert.Equal(t, "sunita@example.com", body["email"])
	assert.NotContains(t, body, "password")

	resp = webtest.Do(t, app, "POST", "/users", map[string]string{
		"employee_id": "EMP011", "name": "Dup", "email": "sunita@example.com", "password": "secret1",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = webtest.Do(t, app, "POST", "/users", map[string]string{"name": "No Email"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEmployeeCannotChangeRole(t *testing.T) {
	st := newMemStore(webtest.Admin, webtest.Employee)
	app := newApp(st, webtest.Employee)

	resp := webtest.Do(t, app, "PUT", "/users/2", map[string]string{"role": "admin"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.RoleEmployee, st.users[2].Role)

	resp = webtest.Do(t, app, "PUT", "/users/2", map[string]string{"contact": "9848012345"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "9848012345", st.users[2].Contact)

	resp = webtest.Do(t, app, "PUT", "/users/1", map[string]string{"contact": "1"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	st := newMemStore(webtest.Admin, webtest.Employee)
	app := newApp(st, webtest.Admin)

	resp := webtest.Do(t, app, "DELETE", "/users/1", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = webtest.Do(t, app, "DELETE", "/users/2", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = webtest.Do(t, app, "DELETE", "/users/2", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestEmployeesList(t *testing.T) {
	st := newMemStore(webtest.Admin, webtest.Employee)
	app := newApp(st, webtest.Employee)

	resp := webtest.Do(t, app, "GET", "/users/employees", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []EmployeeResponse
	webtest.Decode(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "EMP002", list[0].EmployeeID)
}
