package logger

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module provides the service logger and installs it as the process default
// so slog calls outside the graph share its handler and level.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(slog.SetDefault),
)
