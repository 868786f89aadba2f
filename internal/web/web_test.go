package web

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"crm-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.Status(apperr.KindOf(err).Status()).SendString(err.Error())
	}})
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := ParseID(c, "id")
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id})
	})

	cases := map[string]int{
		"/items/42":  fiber.StatusOK,
		"/items/0":   fiber.StatusBadRequest,
		"/items/abc": fiber.StatusBadRequest,
		"/items/-3":  fiber.StatusBadRequest,
	}
	for path, want := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestQueryDate(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.Status(apperr.KindOf(err).Status()).SendString(err.Error())
	}})
	app.Get("/", func(c *fiber.Ctx) error {
		d, err := QueryDate(c, "start_date")
		if err != nil {
			return err
		}
		if d == nil {
			return c.SendString("none")
		}
		return c.SendString(d.Format("2006-01-02"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/?start_date=2024-03-01", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/?start_date=01-03-2024", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAmountDecoding(t *testing.T) {
	var body struct {
		Paid    Amount `json:"paid"`
		Pending Amount `json:"pending"`
		Empty   Amount `json:"empty"`
		Null    Amount `json:"null"`
		Absent  Amount `json:"absent"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"paid":1500.5,"pending":"250.25","empty":"","null":null}`), &body))

	assert.Equal(t, "1500.5", body.Paid.String())
	assert.Equal(t, "250.25", body.Pending.String())
	assert.True(t, body.Empty.Set)
	assert.True(t, body.Empty.IsZero())
	assert.True(t, body.Null.Set)
	assert.False(t, body.Absent.Set)

	var bad struct {
		Paid Amount `json:"paid"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"paid":"lots"}`), &bad))
}
