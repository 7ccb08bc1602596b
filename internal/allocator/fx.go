package allocator

import "go.uber.org/fx"

var Module = fx.Module("allocator",
	fx.Provide(New),
)
