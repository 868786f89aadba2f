package email

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"crm-backend/internal/web/webtest"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func newApp(sender Sender) *fiber.App {
	logger := log.New()
	logger.SetOutput(io.Discard)
	h := NewHandler(sender, logger)
	app := webtest.NewApp(webtest.Employee)
	app.Post("/email/send", h.Send())
	return app
}

func TestSendCleansRecipients(t *testing.T) {
	sender := &fakeSender{}
	app := newApp(sender)

	resp := webtest.Do(t, app, http.MethodPost, "/email/send", map[string]any{
		"to":      "a@example.com, b@example.com,a@example.com",
		"subject": "Claim update",
		"body":    "<p>Approved</p>",
		"html":    true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, sender.sent[0].To)
	assert.True(t, sender.sent[0].HTML)
}

func TestSendValidation(t *testing.T) {
	sender := &fakeSender{}
	app := newApp(sender)

	cases := []map[string]any{
		{"to": []string{}, "subject": "Hi"},
		{"to": []string{"a@example.com"}, "subject": "  "},
		{"to": []string{"not-an-address"}, "subject": "Hi"},
	}
	for _, body := range cases {
		resp := webtest.Do(t, app, http.MethodPost, "/email/send", body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}
	assert.Empty(t, sender.sent)
}

func TestSendNotConfigured(t *testing.T) {
	app := newApp(nil)

	resp := webtest.Do(t, app, http.MethodPost, "/email/send", map[string]any{
		"to": []string{"a@example.com"}, "subject": "Hi",
	})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", webtest.Map(t, resp)["error"])
}

func TestSendFailure(t *testing.T) {
	app := newApp(&fakeSender{err: errors.New("relay refused")})

	resp := webtest.Do(t, app, http.MethodPost, "/email/send", map[string]any{
		"to": []string{"a@example.com"}, "subject": "Hi",
	})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, User: "crm@example.com", Password: "pw"})
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := s.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "Hi\r\nBcc: x@evil.com", Body: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "crm@example.com", gotFrom)
	assert.Equal(t, []string{"a@example.com"}, gotTo)
	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Hi  Bcc: x@evil.com\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nhello"))
}

func TestBuildMessageHTML(t *testing.T) {
	msg := string(buildMessage("crm@example.com", Message{To: []string{"a@example.com", "b@example.com"}, Subject: "S", Body: "<b>x</b>", HTML: true}, time.Unix(0, 0).UTC()))
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
}
