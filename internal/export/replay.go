package export

import (
	"context"

	"github.com/brickwell/healthcore/internal/export/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirrorRow is the consumer-side materialization of the change feed,
// keyed by (entity, event type). Replaying a record the consumer has
// already applied, in any order, leaves the row unchanged.
type MirrorRow struct {
	EntityID  string           `gorm:"primaryKey;type:text"`
	EventType domain.EventType `gorm:"primaryKey;type:text"`
	EventID   int64            `gorm:"not null"`
	Table     string           `gorm:"column:table_name;type:text;not null;index"`
	WriterID  int              `gorm:"not null"`
	Payload   datatypes.JSON   `gorm:"not null"`
}

func (MirrorRow) TableName() string { return "export_mirror" }

// Consumer applies change records to the mirror. Out-of-order delivery is
// safe: a record older than the applied one for its key is discarded.
type Consumer struct {
	db *gorm.DB
}

func NewConsumer(db *gorm.DB) *Consumer {
	return &Consumer{db: db}
}

// Apply upserts one change record. Duplicates and stale replays are no-ops.
func (c *Consumer) Apply(ctx context.Context, record domain.ChangeRecord) error {
	row := MirrorRow{
		EntityID:  record.EntityID,
		EventType: record.EventType,
		EventID:   record.EventID,
		Table:     record.Table,
		WriterID:  record.WriterID,
		Payload:   record.Payload,
	}
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "entity_id"}, {Name: "event_type"}},
			DoUpdates: clause.Assignments(map[string]any{
				"event_id":  gorm.Expr("CASE WHEN excluded.event_id > export_mirror.event_id THEN excluded.event_id ELSE export_mirror.event_id END"),
				"payload":   gorm.Expr("CASE WHEN excluded.event_id > export_mirror.event_id THEN excluded.payload ELSE export_mirror.payload END"),
				"writer_id": gorm.Expr("CASE WHEN excluded.event_id > export_mirror.event_id THEN excluded.writer_id ELSE export_mirror.writer_id END"),
			}),
		}).
		Create(&row).Error
}

// ApplyBatch applies a feed page in order.
func (c *Consumer) ApplyBatch(ctx context.Context, records []domain.ChangeRecord) error {
	for _, record := range records {
		if err := c.Apply(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
