package auth

import (
	"context"
	"strings"
	"time"

	"crm-backend/internal/apperr"
	"crm-backend/internal/models"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

type UserStore interface {
	UserLookup
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type Handler struct {
	users  UserStore
	secret string
	ttl    time.Duration
}

func NewHandler(users UserStore, secret string, ttl time.Duration) *Handler {
	return &Handler{users: users, secret: secret, ttl: ttl}
}

// POST /api/auth/login
func (h *Handler) Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" {
			return apperr.Validation("Email and password are required")
		}

		user, err := h.users.FindByEmail(c.UserContext(), body.Email)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return invalidCredentials()
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
			return invalidCredentials()
		}

		token, err := GenerateToken(h.secret, h.ttl, user)
		if err != nil {
			return apperr.Internal(err, "could not create token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  user,
		})
	}
}

// GET /api/auth/me
func (h *Handler) Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(CurrentUser(c))
	}
}

// PUT /api/auth/change-password
func (h *Handler) ChangePassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)

		var body ChangePasswordRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		if body.CurrentPassword == "" || body.NewPassword == "" {
			return apperr.Validation("Current and new password are required")
		}
		if len(body.NewPassword) < MinPasswordLength {
			return apperr.Validationf("New password must be at least %d characters", MinPasswordLength)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.CurrentPassword)); err != nil {
			return apperr.Validation("Current password is incorrect")
		}

		hash, err := HashPassword(body.NewPassword)
		if err != nil {
			return err
		}
		user.Password = hash
		if err := h.users.Update(c.UserContext(), user); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"message": "Password updated successfully"})
	}
}

// HashPassword bcrypt-hashes a plain password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Internal(err, "could not hash password")
	}
	return string(hash), nil
}

func invalidCredentials() error {
	return apperr.Unauthorized(CodeInvalidCredentials, "Invalid email or password")
}
