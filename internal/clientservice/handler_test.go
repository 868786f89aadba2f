package clientservice

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/models"
	"crm-backend/internal/paging"
	"crm-backend/internal/store"
	"crm-backend/internal/web/webtest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rows       map[uint]models.ClientService
	items      map[uint]models.ClientServiceItem
	docs       map[uint][]models.ServicesDocument
	lastFilter store.ClientServiceFilter
	nextID     uint
}

func newMemStore() *memStore {
	return &memStore{
		rows:  map[uint]models.ClientService{},
		items: map[uint]models.ClientServiceItem{},
		docs:  map[uint][]models.ServicesDocument{},
	}
}

func (m *memStore) List(_ context.Context, f store.ClientServiceFilter, p paging.Params) ([]models.ClientServiceListItem, int64, error) {
	m.lastFilter = f
	var ids []int
	for id := range m.rows {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	var out []models.ClientServiceListItem
	for i := p.Offset(); i < len(ids) && len(out) < p.Limit; i++ {
		out = append(out, models.ClientServiceListItem{ClientService: m.rows[uint(ids[i])]})
	}
	return out, int64(len(ids)), nil
}

func (m *memStore) FindByID(_ context.Context, id uint) (*models.ClientService, error) {
	cs, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("Client service")
	}
	return &cs, nil
}

func (m *memStore) Create(_ context.Context, cs *models.ClientService) error {
	m.nextID++
	cs.ID = m.nextID
	for i := range cs.Services {
		m.nextID++
		cs.Services[i].ID = m.nextID
		cs.Services[i].ClientServiceID = cs.ID
		m.items[m.nextID] = cs.Services[i]
	}
	stored := *cs
	stored.Services = nil
	m.rows[cs.ID] = stored
	return nil
}

func (m *memStore) Update(_ context.Context, cs *models.ClientService) error {
	m.rows[cs.ID] = *cs
	return nil
}

func (m *memStore) Delete(_ context.Context, id uint) ([]models.ServicesDocument, error) {
	if _, ok := m.rows[id]; !ok {
		return nil, apperr.NotFound("Client service")
	}
	var docs []models.ServicesDocument
	for itemID, item := range m.items {
		if item.ClientServiceID == id {
			docs = append(docs, m.docs[itemID]...)
			delete(m.items, itemID)
		}
	}
	delete(m.rows, id)
	return docs, nil
}

func (m *memStore) FindItem(_ context.Context, id uint) (*models.ClientServiceItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Service")
	}
	return &item, nil
}

func (m *memStore) CreateItem(_ context.Context, item *models.ClientServiceItem) error {
	m.nextID++
	item.ID = m.nextID
	m.items[item.ID] = *item
	return nil
}

func (m *memStore) UpdateItem(_ context.Context, item *models.ClientServiceItem) error {
	m.items[item.ID] = *item
	return nil
}

func (m *memStore) UpdateItemStatus(_ context.Context, id uint, status models.ServiceStatus) error {
	item, ok := m.items[id]
	if !ok {
		return apperr.NotFound("Service")
	}
	item.ServiceStatus = status
	m.items[id] = item
	return nil
}

func (m *memStore) DeleteItem(_ context.Context, id uint) ([]models.ServicesDocument, error) {
	if _, ok := m.items[id]; !ok {
		return nil, apperr.NotFound("Service")
	}
	docs := m.docs[id]
	delete(m.items, id)
	return docs, nil
}

type recordingCleaner struct {
	removed []models.ServicesDocument
}

func (r *recordingCleaner) RemoveFiles(_ context.Context, docs []models.ServicesDocument) {
	r.removed = append(r.removed, docs...)
}

func newApp(st Store, files FileCleaner) *fiber.App {
	app := webtest.NewApp(webtest.Admin)
	h := NewHandler(st, files, audit.Nop{})
	app.Get("/client-services", h.List())
	app.Post("/client-services", h.Create())
	app.Put("/client-services/services/:itemId", h.UpdateItem())
	app.Patch("/client-services/services/:itemId/status", h.UpdateItemStatus())
	app.Delete("/client-services/services/:itemId", h.DeleteItem())
	app.Get("/client-services/:id", h.Get())
	app.Put("/client-services/:id", h.Update())
	app.Delete("/client-services/:id", h.Delete())
	app.Post("/client-services/:id/services", h.CreateItem())
	return app
}

func TestListPagination(t *testing.T) {
	st := newMemStore()
	for i := 1; i <= 25; i++ {
		st.rows[uint(i)] = models.ClientService{ID: uint(i), EstablishmentName: fmt.Sprintf("Firm %d", i)}
	}
	app := newApp(st, &recordingCleaner{})

	resp := webtest.Do(t, app, "GET", "/client-services?page=2&limit=10", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data        []models.ClientServiceListItem `json:"data"`
		TotalCount  int64                          `json:"totalCount"`
		TotalPages  int                            `json:"totalPages"`
		CurrentPage int                            `json:"currentPage"`
		Limit       int                            `json:"limit"`
	}
	webtest.Decode(t, resp, &body)
	assert.Len(t, body.Data, 10)
	assert.EqualValues(t, 25, body.TotalCount)
	assert.Equal(t, 3, body.TotalPages)
	assert.Equal(t, 2, body.CurrentPage)
	assert.Equal(t, 10, body.Limit)
	assert.Equal(t, "Firm 11", body.Data[0].EstablishmentName)
}

func TestListFilters(t *testing.T) {
	st := newMemStore()
	app := newApp(st, &recordingCleaner{})

	resp := webtest.Do(t, app, "GET", "/client-services?search=sai&phone=984&service_count=2-5&start_date=2024-01-01&end_date=2024-01-31", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "sai", st.lastFilter.Search)
	assert.Equal(t, "984", st.lastFilter.Phone)
	assert.Equal(t, "2-5", st.lastFilter.ServiceCount)
	require.NotNil(t, st.lastFilter.StartDate)
	require.NotNil(t, st.lastFilter.EndDate)

	for _, q := range []string{"service_count=3-4", "start_date=2024/01/01", "start_date=2024-02-01&end_date=2024-01-01"} {
		resp := webtest.Do(t, app, "GET", "/client-services?"+q, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestCreateWithServices(t *testing.T) {
	st := newMemStore()
	app := newApp(st, &recordingCleaner{})

	resp := webtest.Do(t, app, "POST", "/client-services", map[string]any{
		"establishment_name": "Sri Lakshmi Enterprises",
		"mobile_number":      "9848011111",
		"services": []map[string]any{
			{"service_name": "GST Registration"},
			{"service_name": "Labour License", "service_status": "Approved"},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Len(t, st.items, 2)
	for _, item := range st.items {
		assert.True(t, item.ServiceStatus.Valid())
		assert.Equal(t, uint(1), item.ClientServiceID)
	}

	resp = webtest.Do(t, app, "POST", "/client-services", map[string]any{
		"establishment_name": "Bad",
		"services":           []map[string]any{{"service_name": "X", "service_status": "done"}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Len(t, st.rows, 1)
}

func TestItemStatusAndDelete(t *testing.T) {
	st := newMemStore()
	st.rows[1] = models.ClientService{ID: 1, EstablishmentName: "Firm"}
	st.items[5] = models.ClientServiceItem{ID: 5, ClientServiceID: 1, ServiceName: "PF", ServiceStatus: models.ServicePending}
	st.docs[5] = []models.ServicesDocument{{ID: 9, ServiceID: 5, FileKey: "services/1-a-pf.pdf"}}
	files := &recordingCleaner{}
	app := newApp(st, files)

	resp := webtest.Do(t, app, "PATCH", "/client-services/services/5/status", `{"status":"rejected"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.ServiceRejected, st.items[5].ServiceStatus)

	resp = webtest.Do(t, app, "PATCH", "/client-services/services/5/status", `{"status":"lost"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = webtest.Do(t, app, "DELETE", "/client-services/services/5", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, files.removed, 1)
	assert.Equal(t, "services/1-a-pf.pdf", files.removed[0].FileKey)

	resp = webtest.Do(t, app, "DELETE", "/client-services/services/5", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateItemForMissingClient(t *testing.T) {
	app := newApp(newMemStore(), &recordingCleaner{})
	resp := webtest.Do(t, app, "POST", "/client-services/4/services", `{"service_name":"ESI"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
