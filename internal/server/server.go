// Package server assembles the fiber application: middleware, the API route
// table, uploaded file serving and the single page frontend.
package server

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/auth"
	"crm-backend/internal/camp"
	"crm-backend/internal/card"
	"crm-backend/internal/claim"
	"crm-backend/internal/clientservice"
	"crm-backend/internal/customer"
	"crm-backend/internal/dashboard"
	"crm-backend/internal/document"
	"crm-backend/internal/email"
	"crm-backend/internal/financial"
	"crm-backend/internal/meeseva"
	"crm-backend/internal/metrics"
	"crm-backend/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
)

const (
	// BodyLimit bounds every request, including multipart uploads of five
	// 10 MB documents.
	BodyLimit = 60 << 20
	// JSONBodyLimit applies to everything that is not an upload route.
	JSONBodyLimit = 1 << 20
)

var uploadPath = regexp.MustCompile(`/upload$`)

// Handlers are the route handlers of every API module.
type Handlers struct {
	Auth           *auth.Handler
	Users          *user.Handler
	Customers      *customer.Handler
	Cards          *card.Handler
	Claims         *claim.Handler
	Camps          *camp.Handler
	ClientServices *clientservice.Handler
	Documents      *document.Handler
	Financial      *financial.Handler
	Meeseva        *meeseva.Handler
	Email          *email.Handler
	Dashboard      *dashboard.Handler
	Audit          *audit.Handler
}

type Options struct {
	Dev            bool
	AllowedOrigins []string
	JWTSecret      string
	Users          auth.UserLookup
	// Ping returns the database time for the health check.
	Ping    func(ctx context.Context) (time.Time, error)
	Metrics *metrics.Metrics
	Logger  *log.Logger

	// FrontendDir holds the built SPA; index.html missing means not built.
	FrontendDir string
	// StorageDir is served under StoragePublicURL when set (disk driver).
	StorageDir       string
	StoragePublicURL string
}

func New(opts Options, h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "crm-backend",
		BodyLimit:    BodyLimit,
		ErrorHandler: apperr.ErrorHandler(opts.Logger, opts.Dev),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: opts.Dev}))
	app.Use(requestLogger(opts.Logger))
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(opts.AllowedOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: allowCredentials(opts.AllowedOrigins),
	}))
	app.Use(bodyGuard)

	api := app.Group("/api")
	api.Get("/health", health(opts.Ping))
	registerRoutes(api, opts, h)
	api.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "API route not found", "path": c.Path()})
	})

	if opts.Metrics != nil {
		app.Get("/metrics", opts.Metrics.Handler())
	}
	if opts.StorageDir != "" && strings.HasPrefix(opts.StoragePublicURL, "/") {
		app.Static(opts.StoragePublicURL, opts.StorageDir, fiber.Static{ByteRange: true})
	}
	serveFrontend(app, opts.FrontendDir)

	return app
}

func requestLogger(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil && status < fiber.StatusBadRequest {
			status = apperr.KindOf(err).Status()
		}
		entry := logger.WithFields(log.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
		})
		if u := auth.CurrentUser(c); u != nil {
			entry = entry.WithField("user_id", u.ID)
		}
		if status >= fiber.StatusInternalServerError {
			entry.Warn("request failed")
		} else {
			entry.Debug("request")
		}
		return err
	}
}

// bodyGuard rejects large non-upload bodies. Upload routes are recognised by
// path so multipart parsing is left to their handlers.
func bodyGuard(c *fiber.Ctx) error {
	if uploadPath.MatchString(c.Path()) {
		return c.Next()
	}
	size := c.Request().Header.ContentLength()
	if size < 0 {
		size = len(c.Body())
	}
	if size > JSONBodyLimit {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "Request body too large")
	}
	return c.Next()
}

func health(ping func(ctx context.Context) (time.Time, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now, err := ping(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "ERROR",
				"message": "Database connection failed",
				"error":   "Database connection failed",
			})
		}
		return c.JSON(fiber.Map{
			"status":    "OK",
			"message":   "Server is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  now,
		})
	}
}

func serveFrontend(app *fiber.App, dir string) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); dir == "" || err != nil {
		app.Use(func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Frontend not built", "path": c.Path()})
		})
		return
	}
	app.Static("/", dir)
	// client side routes
	app.Get("/*", func(c *fiber.Ctx) error {
		return c.SendFile(index)
	})
}

// allowCredentials reports whether cookies and auth headers may be sent
// cross-origin. An empty list falls back to "*" in the cors middleware, and a
// wildcard origin cannot be combined with credentials.
func allowCredentials(origins []string) bool {
	if len(origins) == 0 {
		return false
	}
	for _, o := range origins {
		if o == "*" {
			return false
		}
	}
	return true
}
