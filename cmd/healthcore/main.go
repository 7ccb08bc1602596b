package main

import (
	"context"

	"github.com/brickwell/healthcore/internal/allocator"
	"github.com/brickwell/healthcore/internal/billing"
	"github.com/brickwell/healthcore/internal/claims"
	"github.com/brickwell/healthcore/internal/clock"
	"github.com/brickwell/healthcore/internal/config"
	"github.com/brickwell/healthcore/internal/engagement"
	"github.com/brickwell/healthcore/internal/export"
	"github.com/brickwell/healthcore/internal/member"
	"github.com/brickwell/healthcore/internal/observability"
	"github.com/brickwell/healthcore/internal/policy"
	"github.com/brickwell/healthcore/internal/reference"
	"github.com/brickwell/healthcore/internal/regulatory"
	"github.com/brickwell/healthcore/internal/seed"
	"github.com/brickwell/healthcore/internal/store"
	"github.com/brickwell/healthcore/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure. The reference catalog loads and the
		// sentinel rows are seeded before any service can run a unit.
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		reference.Module,
		seed.Module,
		allocator.Module,
		export.Module,
		store.Module,

		// Functional domains.
		member.Module,
		policy.Module,
		claims.Module,
		billing.Module,
		regulatory.Module,
		engagement.Module,

		fx.Invoke(func(lc fx.Lifecycle, seeder *seed.Seeder) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return seeder.Run(ctx)
				},
			})
		}),
	)
	app.Run()
}
