package member

import (
	"github.com/brickwell/healthcore/internal/member/service"
	"go.uber.org/fx"
)

var Module = fx.Module("member.service",
	fx.Provide(service.NewService),
)
