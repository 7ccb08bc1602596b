package policy

import (
	"github.com/brickwell/healthcore/internal/policy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("policy.service",
	fx.Provide(service.NewService),
)
