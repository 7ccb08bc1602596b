package reference

import (
	"context"

	"github.com/brickwell/healthcore/internal/reference/domain"
	"github.com/brickwell/healthcore/internal/reference/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("reference",
	fx.Provide(
		repository.New,
		func(repo domain.Repository, log *zap.Logger) (*Catalog, error) {
			return Load(context.Background(), repo, log.Named("reference.catalog"))
		},
	),
)
