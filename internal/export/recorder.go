package export

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/brickwell/healthcore/internal/allocator"
	"github.com/brickwell/healthcore/internal/clock"
	"github.com/brickwell/healthcore/internal/export/domain"
	"github.com/brickwell/healthcore/internal/observability"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Recorder turns committed entity writes into change feed rows. A record
// that cannot be flattened is quarantined in the same transaction; the
// canonical write is never blocked by a mapping failure.
type Recorder struct {
	alloc   *allocator.Allocator
	clock   clock.Clock
	metrics *observability.Metrics
	log     *zap.Logger
	entropy *ulid.MonotonicEntropy
}

// NewRecorder builds the change feed recorder for this writer partition.
func NewRecorder(alloc *allocator.Allocator, clk clock.Clock, metrics *observability.Metrics, log *zap.Logger) *Recorder {
	return &Recorder{
		alloc:   alloc,
		clock:   clk,
		metrics: metrics,
		log:     log.Named("export.recorder"),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(clk.Now().UnixNano())), 0),
	}
}

// Record writes one change feed row inside tx. Replaying the same
// (entity, event type) pair overwrites the earlier row, so retried units
// converge on a single record.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, table, entityID string, eventType domain.EventType, values map[string]any) error {
	flat, err := FlattenValues(table, values)
	if err != nil {
		return r.quarantine(ctx, tx, table, entityID, eventType, values, err)
	}

	payload, err := json.Marshal(flat)
	if err != nil {
		return r.quarantine(ctx, tx, table, entityID, eventType, values, err)
	}

	record := domain.ChangeRecord{
		EventID:   int64(r.alloc.EventID()),
		EventType: eventType,
		EntityID:  entityID,
		Table:     table,
		WriterID:  r.alloc.WriterID(),
		EmittedAt: r.clock.Now().UTC(),
		Payload:   payload,
	}

	err = tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_id"}, {Name: "event_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"event_id", "emitted_at", "payload"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("record change %s/%s: %w", table, entityID, err)
	}

	r.metrics.RecordExportEvent(ctx, table, string(eventType))
	return nil
}

func (r *Recorder) quarantine(ctx context.Context, tx *gorm.DB, table, entityID string, eventType domain.EventType, values map[string]any, cause error) error {
	raw, marshalErr := json.Marshal(stringify(values))
	if marshalErr != nil {
		raw = nil
	}

	row := domain.QuarantinedRecord{
		ID:            ulid.MustNew(ulid.Timestamp(r.clock.Now()), r.entropy).String(),
		EntityID:      entityID,
		Table:         table,
		EventType:     eventType,
		WriterID:      r.alloc.WriterID(),
		Reason:        cause.Error(),
		RawValues:     raw,
		QuarantinedAt: r.clock.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("quarantine %s/%s: %w", table, entityID, err)
	}

	r.log.Warn("change record quarantined",
		zap.String("table", table),
		zap.String("entity_id", entityID),
		zap.String("reason", cause.Error()),
	)
	r.metrics.RecordQuarantine(ctx, table)
	return nil
}

// stringify renders values losslessly for the quarantine row; fidelity
// matters more than type here.
func stringify(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if v == nil {
			out[k] = ""
			continue
		}
		if d, ok := v.(Date); ok {
			out[k] = time.Time(d).Format("2006-01-02")
			continue
		}
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
