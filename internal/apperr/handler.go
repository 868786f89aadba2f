package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const genericMessage = "Internal server error"

// ErrorHandler renders every error returned by a handler as a JSON object with
// at least an "error" field. Internal errors are logged with request context
// and only expose their cause when dev is true.
func ErrorHandler(logger *log.Logger, dev bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		var ae *Error
		if !errors.As(err, &ae) {
			ae = Internal(err, "unexpected error")
		}

		body := fiber.Map{"error": ae.Message}
		if ae.Code != "" {
			body["code"] = ae.Code
		}
		if ae.Details != nil {
			body["details"] = ae.Details
		}

		if ae.Kind == KindInternal {
			logger.WithError(err).WithFields(log.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error(ae.Message)
			body["error"] = genericMessage
			if dev {
				body["message"] = ae.Error()
				body["stack"] = fmt.Sprintf("%+v", ae.Err)
			}
		} else {
			logger.WithFields(log.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"kind":   ae.Kind.String(),
			}).Debug(ae.Message)
		}

		return c.Status(ae.Kind.Status()).JSON(body)
	}
}
