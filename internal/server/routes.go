package server

import (
	"crm-backend/internal/auth"
	"crm-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func registerRoutes(api fiber.Router, opts Options, h Handlers) {
	protect := auth.Protect(opts.JWTSecret, opts.Users)
	admin := auth.Authorize(models.RoleAdmin)
	staff := auth.Authorize(models.RoleAdmin, models.RoleEmployee)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", h.Auth.Login())
	authRoutes.Get("/me", protect, staff, h.Auth.Me())
	authRoutes.Put("/change-password", protect, staff, h.Auth.ChangePassword())

	users := api.Group("/users", protect)
	users.Get("/", admin, h.Users.List())
	users.Get("/employees", staff, h.Users.Employees())
	users.Get("/:id", staff, h.Users.Get())
	users.Post("/", admin, h.Users.Create())
	users.Put("/:id", staff, h.Users.Update())
	users.Delete("/:id", admin, h.Users.Delete())

	customers := api.Group("/customers", protect)
	customers.Get("/", admin, h.Customers.List())
	customers.Get("/mine", staff, h.Customers.Mine())
	customers.Get("/search", staff, h.Customers.Search())
	customers.Get("/:id", staff, h.Customers.Get())
	customers.Post("/", staff, h.Customers.Create())
	customers.Put("/:id", staff, h.Customers.Update())
	customers.Delete("/:id", admin, h.Customers.Delete())

	cards := api.Group("/cards", protect)
	cards.Get("/", staff, h.Cards.List())
	cards.Get("/mine", staff, h.Cards.Mine())
	cards.Get("/customer/:customerId", staff, h.Cards.GetByCustomer())
	cards.Get("/:id", staff, h.Cards.Get())
	cards.Post("/", staff, h.Cards.Create())
	cards.Put("/:id", staff, h.Cards.Update())
	cards.Delete("/:id", admin, h.Cards.Delete())

	claims := api.Group("/claims", protect)
	claims.Get("/", staff, h.Claims.List())
	claims.Get("/card/:cardId", staff, h.Claims.ListByCard())
	claims.Get("/:id", staff, h.Claims.Get())
	claims.Post("/", staff, h.Claims.Create())
	claims.Put("/:id", staff, h.Claims.Update())
	claims.Delete("/:id", admin, h.Claims.Delete())

	camps := api.Group("/camps", protect)
	camps.Get("/", admin, h.Camps.List())
	camps.Get("/mine", staff, h.Camps.Mine())
	camps.Get("/search", staff, h.Camps.Search())
	camps.Get("/:id", staff, h.Camps.Get())
	camps.Post("/", staff, h.Camps.Create())
	camps.Put("/:id", staff, h.Camps.Update())
	camps.Patch("/:id/status", staff, h.Camps.UpdateStatus())
	camps.Delete("/:id", admin, h.Camps.Delete())

	// item routes go first so "services" is never parsed as an :id
	clients := api.Group("/client-services", protect)
	clients.Put("/services/:itemId", staff, h.ClientServices.UpdateItem())
	clients.Patch("/services/:itemId/status", staff, h.ClientServices.UpdateItemStatus())
	clients.Delete("/services/:itemId", admin, h.ClientServices.DeleteItem())
	clients.Get("/", staff, h.ClientServices.List())
	clients.Get("/:id", staff, h.ClientServices.Get())
	clients.Post("/", staff, h.ClientServices.Create())
	clients.Post("/:id/services", staff, h.ClientServices.CreateItem())
	clients.Put("/:id", staff, h.ClientServices.Update())
	clients.Delete("/:id", admin, h.ClientServices.Delete())

	documents := api.Group("/documents", protect)
	documents.Post("/service/:serviceId/upload", staff, h.Documents.Upload())
	documents.Get("/service/:serviceId", staff, h.Documents.ListByService())
	documents.Get("/:id", staff, h.Documents.Get())
	documents.Delete("/:id", staff, h.Documents.Delete())

	txs := api.Group("/financial-transactions", protect, admin)
	txs.Get("/", h.Financial.List())
	txs.Get("/summary", h.Financial.Summary())
	txs.Post("/upload", h.Financial.Upload())
	txs.Get("/:id", h.Financial.Get())
	txs.Post("/", h.Financial.Create())
	txs.Put("/:id", h.Financial.Update())
	txs.Delete("/:id", h.Financial.Delete())

	meeseva := api.Group("/meeseva", protect)
	meeseva.Get("/", staff, h.Meeseva.List())
	meeseva.Get("/:id", staff, h.Meeseva.Get())
	meeseva.Post("/", staff, h.Meeseva.Create())
	meeseva.Put("/:id", staff, h.Meeseva.Update())
	meeseva.Delete("/:id", admin, h.Meeseva.Delete())

	api.Post("/email/send", protect, staff, h.Email.Send())
	api.Get("/dashboard/stats", protect, staff, h.Dashboard.Stats())
	api.Get("/audit-logs", protect, admin, h.Audit.List())
}
