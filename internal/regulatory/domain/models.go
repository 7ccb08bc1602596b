// Package domain defines regulatory entitlements derived from member
// and policy data: lifetime health cover loading, age-based discount,
// and the government rebate entitlement.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LHCLoading is a member's lifetime health cover loading on a policy.
// The percentage is 2% per year without cover past the base day, capped
// at 70%, and drops to zero after ten years of continuous cover.
type LHCLoading struct {
	ID                   uuid.UUID       `gorm:"primaryKey;type:uuid;column:lhc_loading_id"`
	MemberID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	PolicyID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	CertifiedAgeOfEntry  int             `gorm:"not null"`
	BaseDay              time.Time       `gorm:"type:date;not null"`
	LoadingPercentage    decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	LoadingStartDate     time.Time       `gorm:"type:date;not null"`
	LoadingRemovalDate   *time.Time      `gorm:"type:date"`
	ContinuousCoverStart *time.Time      `gorm:"type:date"`
	YearsWithoutCover    int             `gorm:"not null;default:0"`
	IsLoadingActive      bool            `gorm:"not null;default:true"`
	CreatedAt            time.Time       `gorm:"not null"`
	UpdatedAt            time.Time       `gorm:"not null"`
}

func (LHCLoading) TableName() string { return "lhc_loadings" }

// AgeBasedDiscount is a youth discount earned between ages 18 and 29,
// phased out over the phase-out window.
type AgeBasedDiscount struct {
	ID                 uuid.UUID       `gorm:"primaryKey;type:uuid;column:age_discount_id"`
	MemberID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	PolicyID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	AgeAtEligibility   int             `gorm:"not null"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(4,2);not null"`
	EligibilityDate    time.Time       `gorm:"type:date;not null"`
	PhaseOutStartDate  time.Time       `gorm:"type:date;not null"`
	PhaseOutEndDate    time.Time       `gorm:"type:date;not null"`
	CurrentDiscountPct decimal.Decimal `gorm:"type:numeric(4,2);not null"`
	IsActive           bool            `gorm:"not null;default:true"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

func (AgeBasedDiscount) TableName() string { return "age_based_discounts" }

// PHIRebateEntitlement is a policy's rebate entitlement for one
// financial year. RebatePercentage is a fraction between 0 and 1.
type PHIRebateEntitlement struct {
	ID                     uuid.UUID       `gorm:"primaryKey;type:uuid;column:rebate_entitlement_id"`
	PolicyID               uuid.UUID       `gorm:"type:uuid;not null;index:idx_rebate_policy_year,unique,priority:1"`
	FinancialYear          string          `gorm:"type:char(9);not null;index:idx_rebate_policy_year,unique,priority:2"`
	IncomeTier             string          `gorm:"type:text;not null"`
	OldestMemberAgeBracket string          `gorm:"type:text;not null"`
	RebatePercentage       decimal.Decimal `gorm:"type:numeric(6,5);not null"`
	IncomeDeclarationDate  *time.Time      `gorm:"type:date"`
	DeclaredIncomeRange    *string         `gorm:"type:text"`
	SingleOrFamily         string          `gorm:"type:text;not null"`
	MLSLiable              bool            `gorm:"not null;default:false"`
	EffectiveDate          time.Time       `gorm:"type:date;not null"`
	EndDate                *time.Time      `gorm:"type:date"`
	CreatedAt              time.Time       `gorm:"not null"`
	UpdatedAt              time.Time       `gorm:"not null"`
}

func (PHIRebateEntitlement) TableName() string { return "phi_rebate_entitlements" }
