package user

import (
	"context"
	"strings"

	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/auth"
	"crm-backend/internal/models"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
)

type Store interface {
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id uint) error
}

type CreateUserRequest struct {
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Contact    string          `json:"contact"`
	Role       models.UserRole `json:"role"`
	Password   string          `json:"password"`
}

type UpdateUserRequest struct {
	EmployeeID *string          `json:"employee_id"`
	Name       *string          `json:"name"`
	Email      *string          `json:"email"`
	Contact    *string          `json:"contact"`
	Role       *models.UserRole `json:"role"`
	Password   *string          `json:"password"`
}

type EmployeeResponse struct {
	ID         uint   `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
}

type Handler struct {
	users Store
	audit audit.Recorder
}

func NewHandler(users Store, rec audit.Recorder) *Handler {
	return &Handler{users: users, audit: rec}
}

// GET /api/users
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := h.users.List(c.UserContext())
		if err != nil {
			return err
		}
		if users == nil {
			users = []models.User{}
		}
		return c.JSON(users)
	}
}

// GET /api/users/employees
func (h *Handler) Employees() fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := h.users.ListByRole(c.UserContext(), models.RoleEmployee)
		if err != nil {
			return err
		}
		resp := make([]EmployeeResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, EmployeeResponse{ID: u.ID, EmployeeID: u.EmployeeID, Name: u.Name})
		}
		return c.JSON(resp)
	}
}

// GET /api/users/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		if err := checkSelf(auth.CurrentUser(c), id); err != nil {
			return err
		}

		u, err := h.users.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// POST /api/users
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		body.EmployeeID = strings.TrimSpace(body.EmployeeID)
		if body.Name == "" || body.Email == "" || body.Password == "" || body.EmployeeID == "" {
			return apperr.Validation("Name, email, password and employee_id are required")
		}
		if len(body.Password) < auth.MinPasswordLength {
			return apperr.Validationf("Password must be at least %d characters", auth.MinPasswordLength)
		}
		if body.Role == "" {
			body.Role = models.RoleEmployee
		}
		if !body.Role.Valid() {
			return apperr.Validation("Role must be admin or employee")
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return err
		}

		u := models.User{
			EmployeeID: body.EmployeeID,
			Name:       body.Name,
			Email:      body.Email,
			Contact:    strings.TrimSpace(body.Contact),
			Role:       body.Role,
			Password:   hash,
		}
		if err := h.users.Create(c.UserContext(), &u); err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				return apperr.Conflict("A user with this email or employee ID already exists")
			}
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "user",
			EntityID:    u.ID,
			Action:      models.AuditActionCreate,
			Description: "created user " + u.Email,
			After:       u,
		})

		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// PUT /api/users/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		caller := auth.CurrentUser(c)
		if err := checkSelf(caller, id); err != nil {
			return err
		}

		var body UpdateUserRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		u, err := h.users.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		before := *u

		if body.Role != nil && *body.Role != u.Role {
			if !caller.IsAdmin() {
				return apperr.Forbidden("Employees cannot change their role")
			}
			if !body.Role.Valid() {
				return apperr.Validation("Role must be admin or employee")
			}
			u.Role = *body.Role
		}
		if body.Name != nil {
			if u.Name = strings.TrimSpace(*body.Name); u.Name == "" {
				return apperr.Validation("Name cannot be empty")
			}
		}
		if body.Email != nil {
			if u.Email = strings.TrimSpace(strings.ToLower(*body.Email)); u.Email == "" {
				return apperr.Validation("Email cannot be empty")
			}
		}
		if body.EmployeeID != nil {
			if u.EmployeeID = strings.TrimSpace(*body.EmployeeID); u.EmployeeID == "" {
				return apperr.Validation("Employee ID cannot be empty")
			}
		}
		if body.Contact != nil {
			u.Contact = strings.TrimSpace(*body.Contact)
		}
		if body.Password != nil && *body.Password != "" {
			if len(*body.Password) < auth.MinPasswordLength {
				return apperr.Validationf("Password must be at least %d characters", auth.MinPasswordLength)
			}
			hash, err := auth.HashPassword(*body.Password)
			if err != nil {
				return err
			}
			u.Password = hash
		}

		if err := h.users.Update(c.UserContext(), u); err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				return apperr.Conflict("A user with this email or employee ID already exists")
			}
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        caller,
			EntityType:  "user",
			EntityID:    u.ID,
			Action:      models.AuditActionUpdate,
			Description: "updated user " + u.Email,
			Before:      before,
			After:       u,
		})

		return c.JSON(u)
	}
}

// DELETE /api/users/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		caller := auth.CurrentUser(c)
		if caller.ID == id {
			return apperr.Validation("You cannot delete your own account")
		}

		u, err := h.users.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := h.users.Delete(c.UserContext(), id); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        caller,
			EntityType:  "user",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "deleted user " + u.Email,
			Before:      u,
		})

		return c.JSON(fiber.Map{"message": "User deleted successfully"})
	}
}

// checkSelf lets admins through and limits employees to their own record.
func checkSelf(caller *models.User, id uint) error {
	if caller.IsAdmin() || caller.ID == id {
		return nil
	}
	return apperr.Forbidden("You can only access your own profile")
}
