package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"payment-form-builder/internal/config"
)

// Mailer sends a single HTML email. Implemented by sendgrid here and by
// mocks in tests.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

type sendgridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendgridMailer(cfg *config.Mail) Mailer {
	return &sendgridMailer{
		client:    sendgrid.NewSendClient(cfg.SendgridAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (m *sendgridMailer) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail("", recipient)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
