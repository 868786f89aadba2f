package claim

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

type memCards map[uint]models.Card

func (m memCards) FindByID(_ context.Context, id uint) (*models.Card, error) {
	c, ok := m[id]
	if !ok {
		return nil, apperr.NotFound("Card")
	}
	return &c, nil
}

type memClaims struct {
	rows   map[uint]models.Claim
	nextID uint
}

func (m *memClaims) List(context.Context) ([]models.ClaimListItem, error) {
	var out []models.ClaimListItem
	for _, c := range m.rows {
		out = append(out, models.ClaimListItem{Claim: c})
	}
	return out, nil
}

func (m *memClaims) ListByCard(_ context.Context, cardID uint) ([]models.ClaimListItem, error) {
	var out []models.ClaimListItem
	for _, c := range m.rows {
		if c.CardID == cardID {
			out = append(out, models.ClaimListItem{Claim: c})
		}
	}
	return out, nil
}

func (m *memClaims) FindByID(_ context.Context, id uint) (*models.Claim, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("Claim")
	}
	return &c, nil
}

func (m *memClaims) Create(_ context.Context, c *models.Claim) error {
	m.nextID++
	c.ID = m.nextID
	m.rows[c.ID] = *c
	return nil
}

func (m *memClaims) Update(_ context.Context, c *models.Claim) error {
	m.rows[c.ID] = *c
	return nil
}

func (m *memClaims) Delete(_ context.Context, id uint) error {
	if _, ok := m.rows[id]; !ok {
		return apperr.NotFound("Claim")
	}
	delete(m.rows, id)
	return nil
}

func newApp(claims *memClaims, cards memCards) *fiber.App {
	app := webtest.NewApp(webtest.Employee)
	h := NewHandler(claims, cards, audit.Nop{})
	app.Get("/claims", h.List())
	app.Get("/claims/card/:cardId", h.ListByCard())
	app.Get("/claims/:id", h.Get())
	app.Post("/claims", h.Create())
	app.Put("/claims/:id", h.Update())
	app.Delete("/claims/:id", h.Delete())
	return app
}

func TestCreateClaimDefaultsState(t *testing.T) {
	claims := &memClaims{rows: map[uint]models.Claim{}}
	app := newApp(claims, memCards{3: {ID: 3}})

	resp := webtest.Do(t, app, "POST", "/claims", map[string]any{
		"card_id": 3, "type_of_claim": "Marriage gift", "discussed_amount": "30000",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := webtest.Map(t, resp)
	assert.Equal(t, "ALO", body["process_state"])
	assert.Equal(t, "30000", body["discussed_amount"])
}

func TestCreateClaimValidation(t *testing.T) {
	claims := &memClaims{rows: map[uint]models.Claim{}}
	app := newApp(claims, memCards{3: {ID: 3}})

	cases := map[string]int{
		`{"card_id":3,"type_of_claim":"Lottery"}`:                                  fiber.StatusBadRequest,
		`{"card_id":3,"type_of_claim":"Natural Death","process_state":"Court"}`:    fiber.StatusBadRequest,
		`{"type_of_claim":"Natural Death"}`:                                        fiber.StatusBadRequest,
		`{"card_id":4,"type_of_claim":"Natural Death"}`:                            fiber.StatusNotFound,
		`{"card_id":3,"type_of_claim":"Accidental death","process_state":"Board"}`: fiber.StatusCreated,
	}
	for payload, want := range cases {
		resp := webtest.Do(t, app, "POST", "/claims", payload)
		assert.Equal(t, want, resp.StatusCode, payload)
	}
	assert.Len(t, claims.rows, 1)
}

func TestMissingCardMessage(t *testing.T) {
	app := newApp(&memClaims{rows: map[uint]models.Claim{}}, memCards{})
	resp := webtest.Do(t, app, "POST", "/claims", `{"card_id":8,"type_of_claim":"Maternity benefit"}`)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Card not found", webtest.Map(t, resp)["error"])
}

func TestUpdateProcessState(t *testing.T) {
	claims := &memClaims{rows: map[uint]models.Claim{
		1: {ID: 1, CardID: 3, TypeOfClaim: models.ClaimNaturalDeath, ProcessState: models.StateALO},
	}}
	app := newApp(claims, memCards{3: {ID: 3}})

	resp := webtest.Do(t, app, "PUT", "/claims/1", `{"process_state":"Nodal Officer"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StateNodalOfficer, claims.rows[1].ProcessState)

	resp = webtest.Do(t, app, "PUT", "/claims/1", `{"process_state":"Done"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.StateNodalOfficer, claims.rows[1].ProcessState)
}
