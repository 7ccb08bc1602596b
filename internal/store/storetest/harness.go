// Package storetest wires an in-memory database, allocator, and change
// feed recorder for service tests.
package storetest

import (
	"testing"
	"time"

	"github.com/brickwell/healthcore/internal/allocator"
	"github.com/brickwell/healthcore/internal/clock"
	"github.com/brickwell/healthcore/internal/config"
	"github.com/brickwell/healthcore/internal/export"
	exportdomain "github.com/brickwell/healthcore/internal/export/domain"
	"github.com/brickwell/healthcore/internal/store"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Harness bundles the write stack against an in-memory database.
type Harness struct {
	DB       *gorm.DB
	Store    *store.Store
	Alloc    *allocator.Allocator
	Clock    *clock.FakeClock
	Recorder *export.Recorder
	Feed     *export.Feed
}

// Option tweaks the harness configuration before wiring.
type Option func(*config.Config)

// WithWriter pins the writer partition.
func WithWriter(writerID, writerCount int) Option {
	return func(cfg *config.Config) {
		cfg.WriterID = writerID
		cfg.WriterCount = writerCount
	}
}

// WithRetryBudget overrides the unit retry budget.
func WithRetryBudget(budget int) Option {
	return func(cfg *config.Config) {
		cfg.RetryBudget = budget
	}
}

// New opens an in-memory database, migrates models, and wires the store.
func New(t *testing.T, models []any, opts ...Option) *Harness {
	t.Helper()

	cfg := config.Config{
		WriterID:    0,
		WriterCount: 4,
		PrefixYear:  2024,
		RetryBudget: 3,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	migrations := append([]any{
		&exportdomain.ChangeRecord{},
		&exportdomain.QuarantinedRecord{},
	}, models...)
	require.NoError(t, db.AutoMigrate(migrations...))

	alloc, err := allocator.New(cfg)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	recorder := export.NewRecorder(alloc, clk, nil, log)

	return &Harness{
		DB:       db,
		Store:    store.New(db, recorder, nil, cfg, log),
		Alloc:    alloc,
		Clock:    clk,
		Recorder: recorder,
		Feed:     export.NewFeed(db),
	}
}

// ChangeRecords returns every change record for the table in event order.
func (h *Harness) ChangeRecords(t *testing.T, table string) []exportdomain.ChangeRecord {
	t.Helper()
	var records []exportdomain.ChangeRecord
	require.NoError(t, h.DB.Where("table_name = ?", table).Order("event_id ASC").Find(&records).Error)
	return records
}
