package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"user_service/internal/config"
	"user_service/internal/models"

	"gopkg.in/gomail.v2"
)

var ErrMalformedMessage = errors.New("malformed message")

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer delivers plain-text mail over SMTP.
type Mailer struct {
	from   string
	dialer dialer
}

func New(cfg config.SMTP) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &Mailer{
		from:   from,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	const op = "mailer.Send"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * Deliver sends one queued EmailMessage.
func (m *Mailer) Deliver(ctx context.Context, payload []byte) error {
	const op = "mailer.Deliver"

	var msg models.EmailMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedMessage, err)
	}

	if msg.Email == "" {
		return fmt.Errorf("%s: %w: empty recipient", op, ErrMalformedMessage)
	}

	return m.Send(ctx, msg.Email, msg.Subject, msg.Body)
}
