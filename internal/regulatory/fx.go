package regulatory

import (
	"github.com/brickwell/healthcore/internal/regulatory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("regulatory.service",
	fx.Provide(service.NewService),
)
