// Package web holds small request helpers shared by the HTTP handlers.
package web

import (
	"strconv"
	"strings"
	"time"

	"crm-backend/internal/apperr"
	"crm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ParseID reads a positive integer path parameter.
func ParseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validationf("Invalid %s", name)
	}
	return uint(id), nil
}

// QueryID reads an optional positive integer query parameter; 0 when absent.
func QueryID(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validationf("Invalid %s", name)
	}
	return uint(id), nil
}

// QueryDate reads an optional YYYY-MM-DD query parameter.
func QueryDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, apperr.Validationf("%s must be a date in YYYY-MM-DD format", name)
	}
	return &d.Time, nil
}

// BindJSON decodes the request body into dst.
func BindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// Trimmed returns the trimmed value of an optional string field.
func Trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
