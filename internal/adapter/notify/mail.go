package notify

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// Mailer delivers emails.
type Mailer interface {
	Send(ctx context.Context, mail model.Mail) error
}

// SMTPMailer sends mail through an SMTP relay, opening one connection per message.
type SMTPMailer struct {
	dial   func() (gomail.SendCloser, error)
	from   string
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer using dialer for every message.
func NewSMTPMailer(dialer *gomail.Dialer, from string, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{dial: dialer.Dial, from: from, logger: logger}
}

// Send delivers mail or returns the relay error.
func (m *SMTPMailer) Send(ctx context.Context, mail model.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if mail.To == "" {
		return fmt.Errorf("mail %q has no recipient", mail.Subject)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", mail.To)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/plain", mail.Body)

	sender, err := m.dial()
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer sender.Close()

	if err := gomail.Send(sender, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	m.logger.Debug("mail sent", slog.String("to", mail.To), slog.String("subject", mail.Subject))
	return nil
}

// LogMailer writes mail to the log instead of sending it. Used when no SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, mail model.Mail) error {
	m.logger.InfoContext(ctx, "mail",
		slog.String("to", mail.To),
		slog.String("subject", mail.Subject),
		slog.String("body", mail.Body),
	)
	return nil
}
