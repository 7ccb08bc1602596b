// Package store executes atomic units: groups of canonical writes that
// commit together or not at all. Identifiers are allocated before the
// unit runs, so a retried unit re-applies the exact same rows and a
// duplicate key on retry means the earlier attempt already committed.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/brickwell/healthcore/internal/config"
	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/brickwell/healthcore/internal/export"
	exportdomain "github.com/brickwell/healthcore/internal/export/domain"
	"github.com/brickwell/healthcore/internal/observability"
	"github.com/brickwell/healthcore/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrWriterHalted is returned once the retry budget has been exhausted.
// A halted writer refuses further units; it never emits partial output.
var ErrWriterHalted = errors.New("writer halted")

// Store runs atomic units against the canonical tables and registers
// every committed mutation with the change feed recorder.
type Store struct {
	db          *gorm.DB
	recorder    *export.Recorder
	metrics     *observability.Metrics
	log         *zap.Logger
	retryBudget int

	halted atomic.Bool
}

func New(gdb *gorm.DB, recorder *export.Recorder, metrics *observability.Metrics, cfg config.Config, log *zap.Logger) *Store {
	budget := cfg.RetryBudget
	if budget < 1 {
		budget = 1
	}
	return &Store{
		db:          gdb,
		recorder:    recorder,
		metrics:     metrics,
		log:         log.Named("store"),
		retryBudget: budget,
	}
}

// Unit is the body of one atomic unit. All writes go through the
// UnitOfWork so they commit together and reach the change feed.
type Unit func(u *UnitOfWork) error

// UnitOfWork wraps one transaction plus the change feed recorder.
type UnitOfWork struct {
	ctx   context.Context
	tx    *gorm.DB
	store *Store
}

// Tx exposes the transaction for reads and invariant checks.
func (u *UnitOfWork) Tx() *gorm.DB { return u.tx }

// Create inserts row and records an insert change event. exported holds
// the canonical field values destined for the flattened feed.
func (u *UnitOfWork) Create(table, entityID string, row any, exported map[string]any) error {
	if err := u.tx.WithContext(u.ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create %s/%s: %w", table, entityID, err)
	}
	u.store.metrics.RecordEntityWrite(u.ctx, table)
	return u.store.recorder.Record(u.ctx, u.tx, table, entityID, exportdomain.EventInsert, exported)
}

// Update saves row and records an update change event.
func (u *UnitOfWork) Update(table, entityID string, row any, exported map[string]any) error {
	if err := u.tx.WithContext(u.ctx).Save(row).Error; err != nil {
		return fmt.Errorf("update %s/%s: %w", table, entityID, err)
	}
	u.store.metrics.RecordEntityWrite(u.ctx, table)
	return u.store.recorder.Record(u.ctx, u.tx, table, entityID, exportdomain.EventUpdate, exported)
}

// Append inserts an append-only ledger row. Ledger rows are never
// updated afterwards.
func (u *UnitOfWork) Append(table, entityID string, row any, exported map[string]any) error {
	return u.Create(table, entityID, row, exported)
}

// RunUnit executes the unit atomically. Validation failures abort with
// no retry and leave nothing behind. Other failures are retried up to
// the configured budget; a duplicate key on retry means the unit already
// committed and counts as success. A unit that exhausts the budget halts
// the writer.
func (s *Store) RunUnit(ctx context.Context, name string, unit Unit) error {
	if s.halted.Load() {
		return ErrWriterHalted
	}

	var lastErr error
	for attempt := 1; attempt <= s.retryBudget; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return unit(&UnitOfWork{ctx: ctx, tx: tx, store: s})
		})
		if err == nil {
			return nil
		}
		if domainerr.IsValidation(err) || errors.Is(err, domainerr.ErrAllocation) {
			return err
		}
		if attempt > 1 && db.IsDuplicateKeyErr(err) {
			s.log.Info("unit already applied by earlier attempt",
				zap.String("unit", name),
				zap.Int("attempt", attempt),
			)
			return nil
		}

		lastErr = err
		s.log.Warn("atomic unit failed",
			zap.String("unit", name),
			zap.Int("attempt", attempt),
			zap.Int("budget", s.retryBudget),
			zap.Error(err),
		)
		s.metrics.RecordUnitRetry(ctx, name)

		if attempt < s.retryBudget {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
			}
		}
	}

	s.halted.Store(true)
	s.log.Error("retry budget exhausted, halting writer",
		zap.String("unit", name),
		zap.Error(lastErr),
	)
	return fmt.Errorf("%w: unit %s: %v", ErrWriterHalted, name, lastErr)
}

// Halted reports whether the writer has stopped accepting units.
func (s *Store) Halted() bool { return s.halted.Load() }
