package telemetry

import "go.uber.org/fx"

// Module provides metrics and installs the trace propagator.
var Module = fx.Options(
	fx.Provide(NewMetrics),
	fx.Invoke(InstallPropagator),
)
