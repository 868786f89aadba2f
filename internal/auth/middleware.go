package auth

import (
	"context"
	"strings"

	"crm-backend/internal/apperr"
	"crm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeNoToken            = "NoToken"
	CodeInvalidTokenFormat = "InvalidTokenFormat"
	CodeTokenExpired       = "TokenExpired"
	CodeInvalidToken       = "InvalidToken"
	CodeUserNotFound       = "UserNotFound"
	CodeInvalidCredentials = "InvalidCredentials"
)

const CtxUserKey = "current_user"

type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Protect verifies the bearer token and loads the user row fresh from the
// database, so role changes apply to tokens issued before them.
func Protect(secret string, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return apperr.Unauthorized(CodeNoToken, "Not authorized, no token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return apperr.Unauthorized(CodeInvalidTokenFormat, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return err
		}

		user, err := users.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.Unauthorized(CodeUserNotFound, "User not found")
			}
			return err
		}

		c.Locals(CtxUserKey, user)
		return c.Next()
	}
}

// Authorize allows the request through when the current user's role is listed.
func Authorize(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperr.Unauthorized(CodeNoToken, "Not authorized, no token")
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return apperr.Forbidden("Access denied: insufficient permissions")
	}
}

// CurrentUser returns the user set by Protect, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(CtxUserKey).(*models.User)
	return user
}
