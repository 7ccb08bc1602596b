package config

import "go.uber.org/fx"

// Module provides validated application configuration. fx aborts startup
// if Load fails, which is the required behavior for partition errors.
var Module = fx.Module("config",
	fx.Provide(Load),
)
