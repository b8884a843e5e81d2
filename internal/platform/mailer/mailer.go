package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/thuee/info-system-backend/internal/platform/logger"
	"github.com/thuee/info-system-backend/internal/platform/sendgrid"
)

// Message is one outbound email.
type Message struct {
	To       string
	ToName   string
	Subject  string
	Text     string
	HTML     string
	Category string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendGridMailer struct {
	client sendgrid.Client
}

func NewSendGridMailer(client sendgrid.Client) Mailer {
	return &sendGridMailer{client: client}
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mailer: recipient required")
	}
	req := sendgrid.SendEmailRequest{
		To:      []sendgrid.EmailAddress{{Email: msg.To, Name: msg.ToName}},
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	}
	if msg.Category != "" {
		req.Categories = []string{msg.Category}
	}
	_, err := m.client.Send(ctx, req)
	return err
}

type logMailer struct {
	log *logger.Logger
}

// NewLogMailer writes messages to the log instead of delivering them.
func NewLogMailer(log *logger.Logger) Mailer {
	return &logMailer{log: log.With("component", "LogMailer")}
}

func (m *logMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info("Mail delivery disabled, message dropped",
		"recipient_email", msg.To,
		"subject", msg.Subject,
		"category", msg.Category,
	)
	return nil
}

// NewFromEnv returns a SendGrid mailer when SENDGRID_API_KEY is configured
// and a log-only mailer otherwise.
func NewFromEnv(log *logger.Logger) Mailer {
	cfg := sendgrid.ConfigFromEnv(log)
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Warn("SENDGRID_API_KEY unset; notifications will only be logged")
		return NewLogMailer(log)
	}
	client, err := sendgrid.New(log, cfg)
	if err != nil {
		log.Warn("SendGrid init failed; notifications will only be logged", "error", err)
		return NewLogMailer(log)
	}
	return NewSendGridMailer(client)
}
