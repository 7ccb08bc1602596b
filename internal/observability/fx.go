package observability

import "go.uber.org/fx"

// Module wires the zap logger and otel metrics instruments.
var Module = fx.Module("observability",
	fx.Provide(
		NewLogger,
		NewProvider,
		NewMetrics,
	),
)
