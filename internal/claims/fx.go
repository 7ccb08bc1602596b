package claims

import (
	"github.com/brickwell/healthcore/internal/claims/service"
	"go.uber.org/fx"
)

var Module = fx.Module("claims.service",
	fx.Provide(service.NewService),
)
