// Package domain defines the change feed rows: one ChangeRecord per
// committed entity write, plus a quarantine table for records whose
// values cannot be represented in the flattened schema.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// EventType tags what happened to the entity.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
)

// ChangeRecord is one replicated entity change. EventID is unique across
// all writers and ordered within a writer's stream; the same entity state
// is also visible through the canonical tables, so consumers may use
// either representation.
type ChangeRecord struct {
	EventID   int64          `gorm:"primaryKey;autoIncrement:false;column:event_id"`
	EventType EventType      `gorm:"type:text;not null;index:idx_change_entity_event,unique,priority:2"`
	EntityID  string         `gorm:"type:text;not null;index:idx_change_entity_event,unique,priority:1"`
	Table     string         `gorm:"column:table_name;type:text;not null;index"`
	WriterID  int            `gorm:"not null;index"`
	EmittedAt time.Time      `gorm:"not null"`
	Payload   datatypes.JSON `gorm:"not null"`
}

func (ChangeRecord) TableName() string { return "change_records" }

// QuarantinedRecord holds a change that failed flattening. Nothing is
// silently dropped: the offending values and the mapping failure are
// kept for manual replay.
type QuarantinedRecord struct {
	ID            string         `gorm:"primaryKey;type:text"`
	EntityID      string         `gorm:"type:text;not null;index"`
	Table         string         `gorm:"column:table_name;type:text;not null"`
	EventType     EventType      `gorm:"type:text;not null"`
	WriterID      int            `gorm:"not null"`
	Reason        string         `gorm:"type:text;not null"`
	RawValues     datatypes.JSON `gorm:""`
	QuarantinedAt time.Time      `gorm:"not null"`
}

func (QuarantinedRecord) TableName() string { return "change_quarantine" }
