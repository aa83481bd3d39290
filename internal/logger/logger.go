package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/polkiloo/orderdesk/internal/config"
)

// New creates a JSON slog.Logger at the configured level. Unknown levels fall back to info.
func New(cfg *config.Config) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(cfg.LogLevel)})
	return slog.New(handler).With(slog.String("service", "orderdesk"))
}

// ParseLevel maps a level name such as "debug" or "WARN" onto slog.Level.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}
