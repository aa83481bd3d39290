package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// LogSMSSender prints text messages to the log. No SMS gateway is integrated.
type LogSMSSender struct {
	logger *slog.Logger
}

// NewLogSMSSender creates an SMS sender backed by logger.
func NewLogSMSSender(logger *slog.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger}
}

func (s *LogSMSSender) SendSMS(ctx context.Context, mobile, text string) error {
	if mobile == "" {
		return fmt.Errorf("sms without mobile number")
	}
	s.logger.InfoContext(ctx, "sms", slog.String("mobile", mobile), slog.String("text", text))
	return nil
}
