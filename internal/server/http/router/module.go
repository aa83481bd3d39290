package router

import "go.uber.org/fx"

// Module provides the gin engine serving the admin, customer and public APIs.
var Module = fx.Provide(Setup)
