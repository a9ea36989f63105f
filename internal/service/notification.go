package service

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"payment-form-builder/internal/client"
	"payment-form-builder/internal/config"
	"payment-form-builder/internal/model"
)

// NotificationDispatcher renders and sends the terminal-state emails for
// a submission: always one to the site admin, plus one to the customer
// when the form carries a customer-email field and the submission filled
// it in.
type NotificationDispatcher interface {
	NotifyPaymentCompleted(ctx context.Context, form *model.FormDefinition, sub *model.Submission) error
}

type notificationDispatcherImpl struct {
	mailer client.Mailer
	cfg    *config.Mail
	log    *logrus.Logger
}

func NewNotificationDispatcher(mailer client.Mailer, cfg *config.Mail, log *logrus.Logger) NotificationDispatcher {
	return &notificationDispatcherImpl{
		mailer: mailer,
		cfg:    cfg,
		log:    log,
	}
}

func (d *notificationDispatcherImpl) NotifyPaymentCompleted(ctx context.Context, form *model.FormDefinition, sub *model.Submission) error {
	vars := buildTemplateVars(form, sub)

	if d.cfg.AdminEmail != "" {
		subject := RenderTemplate(d.cfg.AdminSubject, vars)
		body := RenderTemplate(d.cfg.AdminTemplate, vars)
		if err := d.mailer.Send(ctx, d.cfg.AdminEmail, subject, body); err != nil {
			return fmt.Errorf("send admin notification: %w", err)
		}
	}

	customerEmail := ResolveCustomerEmail(form, sub)
	if customerEmail == "" {
		// many forms have no email field; nothing to send
		d.log.WithField("submission_id", sub.ID).
			Debug("no customer email on submission, skipping receipt")
		return nil
	}

	subject := RenderTemplate(d.cfg.CustomerSubject, vars)
	body := RenderTemplate(d.cfg.CustomerTemplate, vars)
	if err := d.mailer.Send(ctx, customerEmail, subject, body); err != nil {
		return fmt.Errorf("send customer notification: %w", err)
	}

	return nil
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_ ]+)\}`)

// RenderTemplate substitutes {name} placeholders from vars. Unknown
// placeholders are left literal.
func RenderTemplate(tpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// ResolveCustomerEmail finds the value the visitor entered into the form
// field flagged as the customer address. Empty when the form has no such
// field or the submission left it blank.
func ResolveCustomerEmail(form *model.FormDefinition, sub *model.Submission) string {
	if form == nil {
		return ""
	}
	label := form.CustomerEmailLabel()
	if label == "" {
		return ""
	}
	return sub.Data[label]
}

func buildTemplateVars(form *model.FormDefinition, sub *model.Submission) map[string]string {
	vars := map[string]string{
		"submission_id": sub.ID,
		"amount":        sub.Amount.StringFixed(2),
		"currency":      strings.ToUpper(sub.Currency),
		"status":        string(sub.Status),
		"mode":          string(sub.Mode),
		"created_at":    sub.CreatedAt.Format(time.RFC1123),
		"fields":        fieldsTable(sub.Data),
	}
	if sub.TransactionRef != nil {
		vars["transaction_ref"] = *sub.TransactionRef
	} else {
		vars["transaction_ref"] = ""
	}
	if form != nil {
		vars["form_title"] = form.Title
		// ordered per form definition so the email mirrors the form
		for _, field := range form.Fields {
			for _, label := range field.Labels() {
				vars[label] = sub.Data[label]
			}
		}
	} else {
		vars["form_title"] = sub.FormID
		for label, value := range sub.Data {
			vars[label] = value
		}
	}
	return vars
}

func fieldsTable(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<table>")
	for label, value := range data {
		b.WriteString("<tr><td><b>")
		b.WriteString(html.EscapeString(label))
		b.WriteString("</b></td><td>")
		b.WriteString(html.EscapeString(value))
		b.WriteString("</td></tr>")
	}
	b.WriteString("</table>")
	return b.String()
}
