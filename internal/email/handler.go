package email

import (
	"bytes"
	"encoding/json"
	"net/mail"
	"strings"

	"crm-backend/internal/apperr"
	"crm-backend/internal/auth"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Recipients accepts either a JSON array of addresses or a single string
// with comma separated addresses.
type Recipients []string

func (r *Recipients) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = strings.Split(s, ",")
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*r = list
	return nil
}

type SendRequest struct {
	To      Recipients `json:"to"`
	Subject string     `json:"subject"`
	Body    string     `json:"body"`
	HTML    bool       `json:"html"`
}

type Handler struct {
	sender Sender
	logger *log.Logger
}

// NewHandler builds the handler. sender may be nil when SMTP is not
// configured; sending then fails with a server error.
func NewHandler(sender Sender, logger *log.Logger) *Handler {
	return &Handler{sender: sender, logger: logger}
}

// POST /api/email/send
func (h *Handler) Send() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SendRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}

		to, err := cleanRecipients(body.To)
		if err != nil {
			return err
		}
		subject := strings.TrimSpace(body.Subject)
		if subject == "" {
			return apperr.Validation("subject is required")
		}
		if h.sender == nil {
			return apperr.Internal(errors.New("SMTP_HOST is not set"), "email is not configured")
		}

		msg := Message{To: to, Subject: subject, Body: body.Body, HTML: body.HTML}
		if err := h.sender.Send(c.UserContext(), msg); err != nil {
			return apperr.Internal(err, "could not send email")
		}

		h.logger.WithFields(log.Fields{
			"recipients": len(to),
			"sent_by":    auth.CurrentUser(c).ID,
		}).Info("email sent")

		return c.JSON(fiber.Map{"message": "Email sent successfully", "recipients": to})
	}
}

// cleanRecipients trims, de-duplicates and validates the addresses.
func cleanRecipients(in []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, raw := range in {
		addr := strings.TrimSpace(raw)
		if addr == "" || seen[strings.ToLower(addr)] {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return nil, apperr.Validationf("invalid recipient %q", addr)
		}
		seen[strings.ToLower(addr)] = true
		out = append(out, addr)
	}
	if len(out) == 0 {
		return nil, apperr.Validation("at least one recipient is required")
	}
	return out, nil
}
