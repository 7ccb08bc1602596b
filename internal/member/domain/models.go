// Package domain defines members and their audited updates.
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MemberStatus enumerates the member lifecycle.
type MemberStatus string

const (
	MemberActive   MemberStatus = "Active"
	MemberInactive MemberStatus = "Inactive"
	MemberDeceased MemberStatus = "Deceased"
)

// ChangeType tags what kind of member update happened. Each type fixes
// which fields may appear in the update's value snapshots.
type ChangeType string

const (
	ChangeAddress       ChangeType = "Address"
	ChangeContact       ChangeType = "Contact"
	ChangeName          ChangeType = "Name"
	ChangeMaritalStatus ChangeType = "MaritalStatus"
	ChangeDeceased      ChangeType = "Deceased"
)

// Member is one insured person. DeceasedFlag and DeceasedDate are set
// together or not at all.
type Member struct {
	ID             uuid.UUID    `gorm:"primaryKey;type:uuid;column:member_id"`
	MemberNumber   string       `gorm:"type:text;not null;uniqueIndex"`
	Title          *string      `gorm:"type:text"`
	FirstName      string       `gorm:"type:text;not null"`
	LastName       string       `gorm:"type:text;not null"`
	DateOfBirth    time.Time    `gorm:"type:date;not null"`
	Gender         string       `gorm:"type:text;not null"`
	MaritalStatus  *string      `gorm:"type:text"`
	Email          *string      `gorm:"type:text"`
	MobilePhone    *string      `gorm:"type:text"`
	HomePhone      *string      `gorm:"type:text"`
	AddressLine1   string       `gorm:"type:text;not null"`
	AddressLine2   *string      `gorm:"type:text"`
	Suburb         string       `gorm:"type:text;not null"`
	State          string       `gorm:"type:char(3);not null"`
	Postcode       string       `gorm:"type:char(4);not null"`
	MedicareNumber *string      `gorm:"type:text"`
	MedicareExpiry *time.Time   `gorm:"type:date"`
	JoinDate       time.Time    `gorm:"type:date;not null"`
	Status         MemberStatus `gorm:"type:text;not null;default:Active"`
	DeceasedFlag   bool         `gorm:"not null;default:false"`
	DeceasedDate   *time.Time   `gorm:"type:date"`
	CreatedAt      time.Time    `gorm:"not null"`
	UpdatedAt      time.Time    `gorm:"not null"`
}

func (Member) TableName() string { return "members" }

// MemberUpdate is the audit trail row for one member change. Previous
// and new snapshots carry only the fields the change type touches.
type MemberUpdate struct {
	ID             uuid.UUID         `gorm:"primaryKey;type:uuid;column:member_update_id"`
	MemberID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	UpdateDate     time.Time         `gorm:"type:date;not null"`
	ChangeType     ChangeType        `gorm:"type:text;not null"`
	PreviousValues datatypes.JSONMap `gorm:"not null"`
	NewValues      datatypes.JSONMap `gorm:"not null"`
	CreatedAt      time.Time         `gorm:"not null"`
}

func (MemberUpdate) TableName() string { return "member_updates" }
