package engagement

import (
	"github.com/brickwell/healthcore/internal/engagement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("engagement.service",
	fx.Provide(service.NewService),
)
