package notify

import (
	"log/slog"

	"go.uber.org/fx"
	"gopkg.in/gomail.v2"

	"github.com/polkiloo/orderdesk/internal/config"
)

// Module provides the mail and SMS transports.
var Module = fx.Provide(
	newMailer,
	NewLogSMSSender,
)

type mailerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newMailer(p mailerParams) Mailer {
	smtp := p.Config.SMTP
	if smtp.Host == "" {
		p.Logger.Info("smtp not configured, mail is written to the log")
		return NewLogMailer(p.Logger)
	}
	dialer := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	return NewSMTPMailer(dialer, smtp.From, p.Logger)
}
