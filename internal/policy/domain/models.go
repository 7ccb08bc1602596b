// Package domain defines applications, policies, coverages, waiting
// periods, suspensions, and upgrade requests.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "Pending"
	ApplicationApproved  ApplicationStatus = "Approved"
	ApplicationDeclined  ApplicationStatus = "Declined"
	ApplicationWithdrawn ApplicationStatus = "Withdrawn"
)

type ApplicationType string

const (
	ApplicationNew       ApplicationType = "New"
	ApplicationUpgrade   ApplicationType = "Upgrade"
	ApplicationDowngrade ApplicationType = "Downgrade"
	ApplicationTransfer  ApplicationType = "Transfer"
)

type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "Active"
	PolicySuspended PolicyStatus = "Suspended"
	PolicyCancelled PolicyStatus = "Cancelled"
	PolicyLapsed    PolicyStatus = "Lapsed"
)

type PolicyType string

const (
	PolicySingle       PolicyType = "Single"
	PolicyCouple       PolicyType = "Couple"
	PolicyFamily       PolicyType = "Family"
	PolicySingleParent PolicyType = "Single Parent"
)

type MemberRole string

const (
	RolePrimary   MemberRole = "Primary"
	RolePartner   MemberRole = "Partner"
	RoleDependent MemberRole = "Dependent"
)

type RelationshipType string

const (
	RelationshipSelf   RelationshipType = "Self"
	RelationshipSpouse RelationshipType = "Spouse"
	RelationshipChild  RelationshipType = "Child"
	RelationshipOther  RelationshipType = "Other"
)

type DistributionChannel string

const (
	ChannelOnline     DistributionChannel = "Online"
	ChannelPhone      DistributionChannel = "Phone"
	ChannelBroker     DistributionChannel = "Broker"
	ChannelCorporate  DistributionChannel = "Corporate"
	ChannelBranch     DistributionChannel = "Branch"
	ChannelComparison DistributionChannel = "Comparison"
)

type WaitingPeriodType string

const (
	WaitGeneral     WaitingPeriodType = "General"
	WaitPreExisting WaitingPeriodType = "Pre-existing"
	WaitObstetric   WaitingPeriodType = "Obstetric"
	WaitPsychiatric WaitingPeriodType = "Psychiatric"
)

type WaitingPeriodStatus string

const (
	WaitInProgress WaitingPeriodStatus = "InProgress"
	WaitCompleted  WaitingPeriodStatus = "Completed"
	WaitWaived     WaitingPeriodStatus = "Waived"
)

type SuspensionStatus string

const (
	SuspensionActive   SuspensionStatus = "Active"
	SuspensionEnded    SuspensionStatus = "Ended"
	SuspensionExtended SuspensionStatus = "Extended"
)

type CoverageStatus string

const (
	CoverageActive    CoverageStatus = "Active"
	CoverageCancelled CoverageStatus = "Cancelled"
	CoverageEnded     CoverageStatus = "Ended"
)

// MaxSuspensionDays caps lifetime suspension per policy.
const MaxSuspensionDays = 730

// Application is a request for cover, decided before any policy exists.
type Application struct {
	ID                          uuid.UUID           `gorm:"primaryKey;type:uuid;column:application_id"`
	ApplicationNumber           string              `gorm:"type:text;not null;uniqueIndex"`
	ApplicationType             ApplicationType     `gorm:"type:text;not null;default:New"`
	ApplicationStatus           ApplicationStatus   `gorm:"type:text;not null;default:Pending"`
	ProductID                   int                 `gorm:"not null"`
	RequestedPolicyType         PolicyType          `gorm:"type:text;not null"`
	RequestedExcess             *decimal.Decimal    `gorm:"type:numeric(10,2)"`
	RequestedStartDate          time.Time           `gorm:"type:date;not null"`
	Channel                     DistributionChannel `gorm:"type:text;not null"`
	PreviousFundCode            *string             `gorm:"type:text"`
	TransferCertificateReceived bool                `gorm:"not null;default:false"`
	SubmissionDate              time.Time           `gorm:"not null"`
	DecisionDate                *time.Time          `gorm:""`
	DecisionBy                  *string             `gorm:"type:text"`
	DeclineReason               *string             `gorm:"type:text"`
	State                       string              `gorm:"type:char(3);not null"`
	CreatedAt                   time.Time           `gorm:"not null"`
	UpdatedAt                   time.Time           `gorm:"not null"`
}

func (Application) TableName() string { return "applications" }

// ApplicationMember is one person listed on an application.
type ApplicationMember struct {
	ID                    uuid.UUID         `gorm:"primaryKey;type:uuid;column:application_member_id"`
	ApplicationID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	MemberRole            MemberRole        `gorm:"type:text;not null"`
	Title                 *string           `gorm:"type:text"`
	FirstName             string            `gorm:"type:text;not null"`
	MiddleName            *string           `gorm:"type:text"`
	LastName              string            `gorm:"type:text;not null"`
	DateOfBirth           time.Time         `gorm:"type:date;not null"`
	Gender                string            `gorm:"type:text;not null"`
	RelationshipToPrimary *RelationshipType `gorm:"type:text"`
	MedicareNumber        *string           `gorm:"type:text"`
	MedicareIRN           *string           `gorm:"type:char(1)"`
	Email                 *string           `gorm:"type:text"`
	MobilePhone           *string           `gorm:"type:text"`
	ExistingMemberID      *uuid.UUID        `gorm:"type:uuid"`
	CreatedAt             time.Time         `gorm:"not null"`
}

func (ApplicationMember) TableName() string { return "application_members" }

// HealthDeclaration is one question/response pair on an application.
type HealthDeclaration struct {
	ID                      uuid.UUID `gorm:"primaryKey;type:uuid;column:health_declaration_id"`
	ApplicationMemberID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ApplicationID           uuid.UUID `gorm:"type:uuid;not null;index"`
	QuestionCode            string    `gorm:"type:text;not null"`
	QuestionText            string    `gorm:"type:text;not null"`
	Response                string    `gorm:"type:text;not null"`
	ResponseDetails         *string   `gorm:"type:text"`
	DeclarationDate         time.Time `gorm:"not null"`
	DeclarationAcknowledged bool      `gorm:"not null;default:true"`
	CreatedAt               time.Time `gorm:"not null"`
}

func (HealthDeclaration) TableName() string { return "health_declarations" }

// Policy is an in-force (or formerly in-force) contract.
type Policy struct {
	ID                      uuid.UUID           `gorm:"primaryKey;type:uuid;column:policy_id"`
	PolicyNumber            string              `gorm:"type:text;not null;uniqueIndex"`
	ApplicationID           *uuid.UUID          `gorm:"type:uuid;index"`
	ProductID               int                 `gorm:"not null"`
	PolicyStatus            PolicyStatus        `gorm:"type:text;not null;default:Active"`
	PolicyType              PolicyType          `gorm:"type:text;not null"`
	EffectiveDate           time.Time           `gorm:"type:date;not null"`
	EndDate                 *time.Time          `gorm:"type:date"`
	CancellationReason      *string             `gorm:"type:text"`
	PaymentFrequency        string              `gorm:"type:text;not null;default:Monthly"`
	PremiumAmount           decimal.Decimal     `gorm:"type:numeric(10,2);not null"`
	ExcessAmount            *decimal.Decimal    `gorm:"type:numeric(10,2)"`
	GovernmentRebateTier    *string             `gorm:"type:text"`
	RebateClaimedAs         *string             `gorm:"type:text"`
	DistributionChannel     DistributionChannel `gorm:"type:text;not null"`
	StateOfResidence        string              `gorm:"type:char(3);not null"`
	OriginalJoinDate        time.Time           `gorm:"type:date;not null"`
	PreviousFundCode        *string             `gorm:"type:text"`
	TransferCertificateDate *time.Time          `gorm:"type:date"`
	CreatedAt               time.Time           `gorm:"not null"`
	UpdatedAt               time.Time           `gorm:"not null"`
}

func (Policy) TableName() string { return "policies" }

// PolicyMember links a member to a policy. At most one active row may
// exist per (policy, member) pair.
type PolicyMember struct {
	ID                    uuid.UUID        `gorm:"primaryKey;type:uuid;column:policy_member_id"`
	PolicyID              uuid.UUID        `gorm:"type:uuid;not null;index:idx_policy_member,priority:1"`
	MemberID              uuid.UUID        `gorm:"type:uuid;not null;index:idx_policy_member,priority:2"`
	MemberRole            MemberRole       `gorm:"type:text;not null"`
	RelationshipToPrimary RelationshipType `gorm:"type:text;not null"`
	EffectiveDate         time.Time        `gorm:"type:date;not null"`
	EndDate               *time.Time       `gorm:"type:date"`
	IsActive              bool             `gorm:"not null;default:true"`
	CreatedAt             time.Time        `gorm:"not null"`
	UpdatedAt             time.Time        `gorm:"not null"`
}

func (PolicyMember) TableName() string { return "policy_members" }

// Coverage is one insured product line on a policy.
type Coverage struct {
	ID            uuid.UUID        `gorm:"primaryKey;type:uuid;column:coverage_id"`
	PolicyID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	CoverageType  string           `gorm:"type:text;not null"`
	ProductID     int              `gorm:"not null"`
	EffectiveDate time.Time        `gorm:"type:date;not null"`
	EndDate       *time.Time       `gorm:"type:date"`
	Status        CoverageStatus   `gorm:"type:text;not null;default:Active"`
	Tier          *string          `gorm:"type:text"`
	ExcessAmount  *decimal.Decimal `gorm:"type:numeric(10,2)"`
	CreatedAt     time.Time        `gorm:"not null"`
	UpdatedAt     time.Time        `gorm:"not null"`
}

func (Coverage) TableName() string { return "coverages" }

// WaitingPeriod tracks one waiting period for a policy member's coverage.
// EndDate is exactly StartDate plus DurationMonths calendar months.
type WaitingPeriod struct {
	ID                 uuid.UUID           `gorm:"primaryKey;type:uuid;column:waiting_period_id"`
	PolicyMemberID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	CoverageID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	WaitingPeriodType  WaitingPeriodType   `gorm:"type:text;not null"`
	BenefitCategoryID  *int                `gorm:""`
	ClinicalCategoryID *int                `gorm:""`
	StartDate          time.Time           `gorm:"type:date;not null"`
	EndDate            time.Time           `gorm:"type:date;not null"`
	DurationMonths     int                 `gorm:"not null"`
	Status             WaitingPeriodStatus `gorm:"type:text;not null;default:InProgress"`
	WaiverReason       *string             `gorm:"type:text"`
	ExemptionGranted   bool                `gorm:"not null;default:false"`
	ExemptionType      *string             `gorm:"type:text"`
	ExemptionReason    *string             `gorm:"type:text"`
	CreatedAt          time.Time           `gorm:"not null"`
	UpdatedAt          time.Time           `gorm:"not null"`
}

func (WaitingPeriod) TableName() string { return "waiting_periods" }

// Suspension is one contiguous suspension of a policy. A policy in
// Suspended status always has exactly one row here in Active status.
type Suspension struct {
	ID                  uuid.UUID        `gorm:"primaryKey;type:uuid;column:suspension_id"`
	PolicyID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	SuspensionType      string           `gorm:"type:text;not null"`
	StartDate           time.Time        `gorm:"type:date;not null"`
	ExpectedEndDate     *time.Time       `gorm:"type:date"`
	ActualEndDate       *time.Time       `gorm:"type:date"`
	Reason              *string          `gorm:"type:text"`
	Status              SuspensionStatus `gorm:"type:text;not null;default:Active"`
	MaxSuspensionDays   int              `gorm:"not null;default:730"`
	DaysUsed            int              `gorm:"not null;default:0"`
	WaitingPeriodImpact bool             `gorm:"not null;default:false"`
	CreatedAt           time.Time        `gorm:"not null"`
	UpdatedAt           time.Time        `gorm:"not null"`
}

func (Suspension) TableName() string { return "suspensions" }

// UpgradeRequest is a product change request against a policy.
type UpgradeRequest struct {
	ID                     uuid.UUID        `gorm:"primaryKey;type:uuid;column:upgrade_request_id"`
	PolicyID               uuid.UUID        `gorm:"type:uuid;not null;index"`
	RequestType            string           `gorm:"type:text;not null"`
	CurrentProductID       int              `gorm:"not null"`
	RequestedProductID     int              `gorm:"not null"`
	CurrentExcess          *decimal.Decimal `gorm:"type:numeric(10,2)"`
	RequestedExcess        *decimal.Decimal `gorm:"type:numeric(10,2)"`
	RequestedEffectiveDate time.Time        `gorm:"type:date;not null"`
	RequestReason          *string          `gorm:"type:text"`
	RequestStatus          string           `gorm:"type:text;not null;default:Approved"`
	SubmissionDate         time.Time        `gorm:"not null"`
	DecisionDate           *time.Time       `gorm:""`
	DecisionBy             *string          `gorm:"type:text"`
	RequiresWaitingPeriod  *bool            `gorm:""`
	WaitingPeriodDetails   *string          `gorm:"type:text"`
	CreatedAt              time.Time        `gorm:"not null"`
	UpdatedAt              time.Time        `gorm:"not null"`
}

func (UpgradeRequest) TableName() string { return "upgrade_requests" }
