package config

import "go.uber.org/fx"

// Module loads orderdesk settings from env, .env and flags once per graph.
var Module = fx.Provide(Load)
