// Package domain defines claims, their detail rows, assessments, and
// the benefit usage ledger.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ClaimType string

const (
	ClaimHospital  ClaimType = "Hospital"
	ClaimExtras    ClaimType = "Extras"
	ClaimAmbulance ClaimType = "Ambulance"
)

type ClaimStatus string

const (
	ClaimSubmitted         ClaimStatus = "Submitted"
	ClaimAssessed          ClaimStatus = "Assessed"
	ClaimApproved          ClaimStatus = "Approved"
	ClaimPartiallyApproved ClaimStatus = "PartiallyApproved"
	ClaimRejected          ClaimStatus = "Rejected"
	ClaimPaid              ClaimStatus = "Paid"
)

type ClaimChannel string

const (
	ChannelOnline   ClaimChannel = "Online"
	ChannelHICAPS   ClaimChannel = "HICAPS"
	ChannelPaper    ClaimChannel = "Paper"
	ChannelHospital ClaimChannel = "Hospital"
)

// FraudType labels injected fraud patterns on synthetic claims.
type FraudType string

const (
	FraudDRGUpcoding       FraudType = "DRGUpcoding"
	FraudExtrasUpcoding    FraudType = "ExtrasUpcoding"
	FraudExactDuplicate    FraudType = "ExactDuplicate"
	FraudNearDuplicate     FraudType = "NearDuplicate"
	FraudUnbundling        FraudType = "Unbundling"
	FraudPhantomBilling    FraudType = "PhantomBilling"
	FraudProviderOutlier   FraudType = "ProviderOutlier"
	FraudTemporalAnomaly   FraudType = "TemporalAnomaly"
	FraudGeographicAnomaly FraudType = "GeographicAnomaly"
)

// ValidFraudType reports whether t is a known fraud label.
func ValidFraudType(t FraudType) bool {
	switch t {
	case FraudDRGUpcoding, FraudExtrasUpcoding, FraudExactDuplicate,
		FraudNearDuplicate, FraudUnbundling, FraudPhantomBilling,
		FraudProviderOutlier, FraudTemporalAnomaly, FraudGeographicAnomaly:
		return true
	}
	return false
}

// CheckResult is the outcome of one assessment check. NotApplicable
// means the check did not apply to this claim, not that it passed.
type CheckResult string

const (
	CheckPass          CheckResult = "Pass"
	CheckFail          CheckResult = "Fail"
	CheckNotApplicable CheckResult = "NotApplicable"
)

// Claim is the header row. TotalBenefit and TotalGap stay nil until
// assessment computes them; nil means not computed, not zero.
//
// CoverageID may be the reserved zero UUID when a claim is lodged
// against no coverage; such claims can only ever be rejected.
type Claim struct {
	ID             uuid.UUID   `gorm:"primaryKey;type:uuid;column:claim_id"`
	ClaimNumber    string      `gorm:"type:text;not null;uniqueIndex"`
	PolicyID       uuid.UUID   `gorm:"type:uuid;not null;index"`
	MemberID       uuid.UUID   `gorm:"type:uuid;not null;index"`
	CoverageID     uuid.UUID   `gorm:"type:uuid;not null"`
	ClaimType      ClaimType   `gorm:"type:text;not null"`
	ClaimStatus    ClaimStatus `gorm:"type:text;not null;default:Submitted"`
	ServiceDate    time.Time   `gorm:"type:date;not null"`
	LodgementDate  time.Time   `gorm:"type:date;not null"`
	AssessmentDate *time.Time  `gorm:"type:date"`
	PaymentDate    *time.Time  `gorm:"type:date"`
	ProviderID     *int
	HospitalID     *int

	TotalCharge      decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	TotalBenefit     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	TotalGap         *decimal.Decimal `gorm:"type:numeric(12,2)"`
	ExcessApplied    decimal.Decimal  `gorm:"type:numeric(10,2);not null;default:0"`
	CoPaymentApplied decimal.Decimal  `gorm:"type:numeric(10,2);not null;default:0"`

	RejectionReasonID *int
	RejectionNotes    *string `gorm:"type:text"`

	ClaimChannel ClaimChannel `gorm:"type:text;not null"`
	PayTo        string       `gorm:"type:text;not null;default:Member"`

	IsFraud             bool             `gorm:"not null;default:false"`
	FraudType           *FraudType       `gorm:"type:text"`
	FraudOriginalCharge *decimal.Decimal `gorm:"type:numeric(12,2)"`
	FraudInflationRatio *decimal.Decimal `gorm:"type:numeric(6,3)"`
	FraudSourceClaimID  *uuid.UUID       `gorm:"type:uuid"`
	FraudRingID         *uuid.UUID       `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Claim) TableName() string { return "claims" }

// ClaimLine is one service line on a claim.
type ClaimLine struct {
	ID                 uuid.UUID `gorm:"primaryKey;type:uuid;column:claim_line_id"`
	ClaimID            uuid.UUID `gorm:"type:uuid;not null;index"`
	LineNumber         int       `gorm:"not null"`
	ItemCode           string    `gorm:"type:text;not null"`
	ItemDescription    *string   `gorm:"type:text"`
	ClinicalCategoryID *int
	BenefitCategoryID  *int
	ServiceDate        time.Time        `gorm:"type:date;not null"`
	Quantity           int              `gorm:"not null;default:1"`
	ChargeAmount       decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	ScheduleFee        *decimal.Decimal `gorm:"type:numeric(10,2)"`
	BenefitAmount      *decimal.Decimal `gorm:"type:numeric(12,2)"`
	GapAmount          *decimal.Decimal `gorm:"type:numeric(12,2)"`
	LineStatus         string           `gorm:"type:text;not null;default:Pending"`
	RejectionReasonID  *int
	ProviderID         *int
	ProviderNumber     *string   `gorm:"type:text"`
	ToothNumber        *string   `gorm:"type:text"`
	BodyPart           *string   `gorm:"type:text"`
	CreatedAt          time.Time `gorm:"not null"`
}

func (ClaimLine) TableName() string { return "claim_lines" }

// HospitalAdmission is the hospital detail row, exactly one per
// hospital claim.
type HospitalAdmission struct {
	ID                       uuid.UUID  `gorm:"primaryKey;type:uuid;column:admission_id"`
	ClaimID                  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	HospitalID               int        `gorm:"not null"`
	AdmissionNumber          *string    `gorm:"type:text"`
	AdmissionDate            time.Time  `gorm:"type:date;not null"`
	DischargeDate            *time.Time `gorm:"type:date"`
	AdmissionType            string     `gorm:"type:text;not null"`
	AccommodationType        string     `gorm:"type:text;not null"`
	DRGCode                  *string    `gorm:"type:text"`
	ClinicalCategoryID       int        `gorm:"not null"`
	PrincipalDiagnosis       *string    `gorm:"type:text"`
	PrincipalProcedure       *string    `gorm:"type:text"`
	LengthOfStay             *int
	TheatreMinutes           *int
	AccommodationCharge      *decimal.Decimal `gorm:"type:numeric(12,2)"`
	TheatreCharge            *decimal.Decimal `gorm:"type:numeric(12,2)"`
	ProsthesisCharge         *decimal.Decimal `gorm:"type:numeric(12,2)"`
	OtherCharges             *decimal.Decimal `gorm:"type:numeric(12,2)"`
	AccommodationBenefit     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	TheatreBenefit           *decimal.Decimal `gorm:"type:numeric(12,2)"`
	ExcessApplicable         bool             `gorm:"not null;default:true"`
	ExcessAmount             decimal.Decimal  `gorm:"type:numeric(10,2);not null;default:0"`
	CoPaymentAmount          decimal.Decimal  `gorm:"type:numeric(10,2);not null;default:0"`
	ContractedHospital       bool             `gorm:"not null;default:true"`
	InformedFinancialConsent bool             `gorm:"not null;default:true"`
	CreatedAt                time.Time        `gorm:"not null"`
}

func (HospitalAdmission) TableName() string { return "hospital_admissions" }

// ExtrasClaim is the extras detail row, one per extras claim line.
type ExtrasClaim struct {
	ID                 uuid.UUID `gorm:"primaryKey;type:uuid;column:extras_claim_id"`
	ClaimID            uuid.UUID `gorm:"type:uuid;not null;index"`
	ClaimLineID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ServiceType        string    `gorm:"type:text;not null"`
	DentalServiceType  *string   `gorm:"type:text"`
	ExtrasItemID       int       `gorm:"not null"`
	ProviderID         int       `gorm:"not null"`
	ProviderLocationID *int
	ServiceDate        time.Time        `gorm:"type:date;not null"`
	ToothNumber        *string          `gorm:"type:text"`
	ChargeAmount       decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	BenefitAmount      *decimal.Decimal `gorm:"type:numeric(12,2)"`
	AnnualLimitImpact  *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt          time.Time        `gorm:"not null"`
}

func (ExtrasClaim) TableName() string { return "extras_claims" }

// AmbulanceClaim is the ambulance detail row, exactly one per
// ambulance claim.
type AmbulanceClaim struct {
	ID                      uuid.UUID        `gorm:"primaryKey;type:uuid;column:ambulance_claim_id"`
	ClaimID                 uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	IncidentDate            time.Time        `gorm:"type:date;not null"`
	IncidentLocation        *string          `gorm:"type:text"`
	IncidentState           string           `gorm:"type:char(3);not null"`
	TransportType           string           `gorm:"type:text;not null"`
	PickupLocation          *string          `gorm:"type:text"`
	Destination             *string          `gorm:"type:text"`
	DistanceKM              *decimal.Decimal `gorm:"type:numeric(8,2)"`
	ChargeAmount            decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	BenefitAmount           *decimal.Decimal `gorm:"type:numeric(12,2)"`
	StateSchemeContribution *decimal.Decimal `gorm:"type:numeric(12,2)"`
	AmbulanceProvider       *string          `gorm:"type:text"`
	CaseNumber              *string          `gorm:"type:text"`
	CreatedAt               time.Time        `gorm:"not null"`
}

func (AmbulanceClaim) TableName() string { return "ambulance_claims" }

// ProsthesisClaim is a prosthesis line under a hospital admission.
type ProsthesisClaim struct {
	ID               uuid.UUID        `gorm:"primaryKey;type:uuid;column:prosthesis_claim_id"`
	ClaimID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	AdmissionID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProsthesisItemID int              `gorm:"not null"`
	BillingCode      string           `gorm:"type:text;not null"`
	ItemDescription  *string          `gorm:"type:text"`
	Quantity         int              `gorm:"not null;default:1"`
	ChargeAmount     decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	BenefitAmount    *decimal.Decimal `gorm:"type:numeric(12,2)"`
	GapAmount        *decimal.Decimal `gorm:"type:numeric(12,2)"`
	ImplantDate      time.Time        `gorm:"type:date;not null"`
	CreatedAt        time.Time        `gorm:"not null"`
}

func (ProsthesisClaim) TableName() string { return "prosthesis_claims" }

// MedicalService is an in-hospital medical service billed under MBS.
type MedicalService struct {
	ID                         uuid.UUID        `gorm:"primaryKey;type:uuid;column:medical_service_id"`
	ClaimID                    uuid.UUID        `gorm:"type:uuid;not null;index"`
	AdmissionID                uuid.UUID        `gorm:"type:uuid;not null;index"`
	MBSItemNumber              string           `gorm:"type:text;not null"`
	MBSItemDescription         *string          `gorm:"type:text"`
	MBSScheduleFee             *decimal.Decimal `gorm:"type:numeric(10,2)"`
	ProviderID                 int              `gorm:"not null"`
	ProviderType               string           `gorm:"type:text;not null"`
	ProviderNumber             *string          `gorm:"type:text"`
	ServiceDate                time.Time        `gorm:"type:date;not null"`
	ServiceText                *string          `gorm:"type:text"`
	ChargeAmount               decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	MedicareBenefit            *decimal.Decimal `gorm:"type:numeric(12,2)"`
	FundBenefit                *decimal.Decimal `gorm:"type:numeric(12,2)"`
	GapAmount                  *decimal.Decimal `gorm:"type:numeric(12,2)"`
	NoGapIndicator             bool             `gorm:"not null;default:false"`
	GapCoverScheme             *string          `gorm:"type:text"`
	ClinicalCategoryID         *int
	BodyPart                   *string `gorm:"type:text"`
	ProcedureLaterality        *string `gorm:"type:text"`
	MultipleServiceRuleApplied bool    `gorm:"not null;default:false"`
	MultipleServicePercentage  *int
	CreatedAt                  time.Time `gorm:"not null"`
}

func (MedicalService) TableName() string { return "medical_services" }

// ClaimAssessment records one assessment pass over a claim. Every
// status change after lodgement writes one of these.
type ClaimAssessment struct {
	ID                 uuid.UUID        `gorm:"primaryKey;type:uuid;column:assessment_id"`
	ClaimID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	AssessmentType     string           `gorm:"type:text;not null"`
	AssessmentDate     time.Time        `gorm:"not null"`
	AssessedBy         string           `gorm:"type:text;not null"`
	OriginalBenefit    *decimal.Decimal `gorm:"type:numeric(12,2)"`
	AdjustedBenefit    *decimal.Decimal `gorm:"type:numeric(12,2)"`
	AdjustmentReason   *string          `gorm:"type:text"`
	WaitingPeriodCheck CheckResult      `gorm:"type:text;not null;default:NotApplicable"`
	BenefitLimitCheck  CheckResult      `gorm:"type:text;not null;default:NotApplicable"`
	EligibilityCheck   CheckResult      `gorm:"type:text;not null;default:NotApplicable"`
	Outcome            string           `gorm:"type:text;not null"`
	Notes              *string          `gorm:"type:text"`
	CreatedAt          time.Time        `gorm:"not null"`
}

func (ClaimAssessment) TableName() string { return "claim_assessments" }

// BenefitUsage is an append-only ledger row. RemainingLimit never
// increases within a benefit year for the same member and category.
type BenefitUsage struct {
	ID                uuid.UUID        `gorm:"primaryKey;type:uuid;column:benefit_usage_id"`
	PolicyID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	MemberID          uuid.UUID        `gorm:"type:uuid;not null;index:idx_usage_member_cat_year,priority:1"`
	ClaimID           *uuid.UUID       `gorm:"type:uuid"`
	BenefitCategoryID int              `gorm:"not null;index:idx_usage_member_cat_year,priority:2"`
	BenefitYear       string           `gorm:"type:char(9);not null;index:idx_usage_member_cat_year,priority:3"`
	UsageDate         time.Time        `gorm:"type:date;not null"`
	UsageAmount       decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	UsageCount        int              `gorm:"not null;default:1"`
	AnnualLimit       *decimal.Decimal `gorm:"type:numeric(12,2)"`
	RemainingLimit    *decimal.Decimal `gorm:"type:numeric(12,2)"`
	LimitType         *string          `gorm:"type:text"`
	CreatedAt         time.Time        `gorm:"not null"`
}

func (BenefitUsage) TableName() string { return "benefit_usages" }

// BenefitYear returns the Australian financial year containing d,
// formatted like "2024-2025".
func BenefitYear(d time.Time) string {
	year := d.Year()
	if d.Month() < time.July {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}
