// Package webtest builds fiber apps for handler tests.
package webtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-backend/internal/apperr"
	"crm-backend/internal/auth"
	"crm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var (
	Admin    = &models.User{ID: 1, EmployeeID: "ADMIN001", Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
	Employee = &models.User{ID: 2, EmployeeID: "EMP002", Name: "Kiran", Email: "kiran@example.com", Role: models.RoleEmployee}
)

// NewApp returns an app using the production error handler whose requests
// run as user. A nil user leaves the request unauthenticated.
func NewApp(user *models.User) *fiber.App {
	logger := log.New()
	logger.SetOutput(io.Discard)

	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.ErrorHandler(logger, false),
		BodyLimit:    64 << 20,
	})
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			cp := *user
			c.Locals(auth.CtxUserKey, &cp)
		}
		return c.Next()
	})
	return app
}

// Do sends a request with an optional JSON body.
func Do(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Decode unmarshals the response body into v and closes it.
func Decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// Map decodes a JSON object response.
func Map(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	Decode(t, resp, &m)
	return m
}
