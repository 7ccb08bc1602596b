// Package domain contains the Reference Catalog master data models.
// These rows are loaded once before any writer starts and are never
// mutated during a run.
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CoverageType enumerates insured product lines.
type CoverageType string

const (
	CoverageHospital  CoverageType = "Hospital"
	CoverageExtras    CoverageType = "Extras"
	CoverageAmbulance CoverageType = "Ambulance"
)

// CoverageTier enumerates hospital product tiers.
type CoverageTier string

const (
	TierGold   CoverageTier = "Gold"
	TierSilver CoverageTier = "Silver"
	TierBronze CoverageTier = "Bronze"
	TierBasic  CoverageTier = "Basic"
)

// Product is an insurance product definition.
type Product struct {
	ID             int             `gorm:"primaryKey;column:product_id"`
	ProductCode    string          `gorm:"type:text;not null;uniqueIndex"`
	ProductName    string          `gorm:"type:text;not null"`
	CoverageType   CoverageType    `gorm:"type:text;not null"`
	Tier           *CoverageTier   `gorm:"type:text"`
	MonthlyPremium decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	ExcessAmount   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "ref_products" }

// Provider is an extras/medical service provider.
type Provider struct {
	ID             int       `gorm:"primaryKey;column:provider_id"`
	ProviderNumber string    `gorm:"type:text;not null;uniqueIndex"`
	ProviderName   string    `gorm:"type:text;not null"`
	ProviderType   string    `gorm:"type:text;not null"`
	State          string    `gorm:"type:char(3);not null"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Provider) TableName() string { return "ref_providers" }

// Hospital is a contracted or non-contracted hospital.
type Hospital struct {
	ID           int       `gorm:"primaryKey;column:hospital_id"`
	HospitalName string    `gorm:"type:text;not null"`
	State        string    `gorm:"type:char(3);not null"`
	IsContracted bool      `gorm:"not null;default:true"`
	BedCount     *int      `gorm:""`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Hospital) TableName() string { return "ref_hospitals" }

// ClinicalCategory is a regulated hospital clinical category.
type ClinicalCategory struct {
	ID           int       `gorm:"primaryKey;column:clinical_category_id"`
	CategoryName string    `gorm:"type:text;not null"`
	MinimumTier  string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ClinicalCategory) TableName() string { return "ref_clinical_categories" }

// LimitType enumerates benefit limit accounting modes.
type LimitType string

const (
	LimitDollar  LimitType = "Dollar"
	LimitService LimitType = "Service"
	LimitDays    LimitType = "Days"
)

// BenefitCategory is an extras benefit category with an annual limit.
type BenefitCategory struct {
	ID           int              `gorm:"primaryKey;column:benefit_category_id"`
	CategoryName string           `gorm:"type:text;not null"`
	LimitType    LimitType        `gorm:"type:text;not null"`
	AnnualLimit  *decimal.Decimal `gorm:"type:numeric(10,2)"`
	CreatedAt    time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BenefitCategory) TableName() string { return "ref_benefit_categories" }

// RejectionReason is a claim rejection reason code.
type RejectionReason struct {
	ID          int       `gorm:"primaryKey;column:rejection_reason_id"`
	ReasonCode  string    `gorm:"type:text;not null;uniqueIndex"`
	Description string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RejectionReason) TableName() string { return "ref_rejection_reasons" }

// ExtrasItem is a billable extras service item.
type ExtrasItem struct {
	ID                int             `gorm:"primaryKey;column:extras_item_id"`
	ItemCode          string          `gorm:"type:text;not null;uniqueIndex"`
	ServiceType       string          `gorm:"type:text;not null"`
	Description       string          `gorm:"type:text"`
	ScheduleFee       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	BenefitCategoryID int             `gorm:"not null;index"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ExtrasItem) TableName() string { return "ref_extras_items" }

// ProsthesisItem is a prosthesis list item with a fixed benefit.
type ProsthesisItem struct {
	ID          int             `gorm:"primaryKey;column:prosthesis_item_id"`
	BillingCode string          `gorm:"type:text;not null;uniqueIndex"`
	Description string          `gorm:"type:text"`
	MinBenefit  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ProsthesisItem) TableName() string { return "ref_prosthesis_items" }

// MBSItem is a Medicare Benefits Schedule item.
type MBSItem struct {
	ID          int             `gorm:"primaryKey;column:mbs_item_id"`
	ItemNumber  string          `gorm:"type:text;not null;uniqueIndex"`
	Description string          `gorm:"type:text"`
	ScheduleFee decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MBSItem) TableName() string { return "ref_mbs_items" }

// WaitingPeriodRule maps a waiting period type to its duration.
type WaitingPeriodRule struct {
	ID             int       `gorm:"primaryKey;column:waiting_period_rule_id"`
	PeriodType     string    `gorm:"type:text;not null;uniqueIndex"`
	DurationMonths int       `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (WaitingPeriodRule) TableName() string { return "ref_waiting_period_rules" }

// Repository loads reference data from storage.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListProviders(ctx context.Context) ([]Provider, error)
	ListHospitals(ctx context.Context) ([]Hospital, error)
	ListClinicalCategories(ctx context.Context) ([]ClinicalCategory, error)
	ListBenefitCategories(ctx context.Context) ([]BenefitCategory, error)
	ListRejectionReasons(ctx context.Context) ([]RejectionReason, error)
	ListExtrasItems(ctx context.Context) ([]ExtrasItem, error)
	ListProsthesisItems(ctx context.Context) ([]ProsthesisItem, error)
	ListMBSItems(ctx context.Context) ([]MBSItem, error)
	ListWaitingPeriodRules(ctx context.Context) ([]WaitingPeriodRule, error)
}
