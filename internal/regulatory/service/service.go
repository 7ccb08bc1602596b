package service

import (
	"context"
	"time"

	"github.com/brickwell/healthcore/internal/allocator"
	"github.com/brickwell/healthcore/internal/clock"
	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/brickwell/healthcore/internal/export"
	regdomain "github.com/brickwell/healthcore/internal/regulatory/domain"
	"github.com/brickwell/healthcore/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	maxLoadingPct  = decimal.NewFromInt(70)
	maxDiscountPct = decimal.NewFromInt(10)
	one            = decimal.NewFromInt(1)
)

type Params struct {
	fx.In

	Store *store.Store
	Alloc *allocator.Allocator
	Clock clock.Clock
	Log   *zap.Logger
}

// Service owns regulatory entitlement writes.
type Service struct {
	store *store.Store
	alloc *allocator.Allocator
	clock clock.Clock
	log   *zap.Logger
}

func NewService(p Params) *Service {
	return &Service{
		store: p.Store,
		alloc: p.Alloc,
		clock: p.Clock,
		log:   p.Log.Named("regulatory.service"),
	}
}

// GrantLHCLoadingInput applies a lifetime health cover loading.
type GrantLHCLoadingInput struct {
	MemberID             uuid.UUID
	PolicyID             uuid.UUID
	CertifiedAgeOfEntry  int
	BaseDay              time.Time
	YearsWithoutCover    int
	LoadingStartDate     time.Time
	ContinuousCoverStart *time.Time
}

// GrantLHCLoading computes the loading at 2% per uncovered year, capped
// at 70%, and records it.
func (s *Service) GrantLHCLoading(ctx context.Context, in GrantLHCLoadingInput) (*regdomain.LHCLoading, error) {
	if in.CertifiedAgeOfEntry < 0 || in.CertifiedAgeOfEntry > 100 {
		return nil, domainerr.Validation("lhc_loading", "certified_age_of_entry", "must be between 0 and 100, got %d", in.CertifiedAgeOfEntry)
	}
	if in.YearsWithoutCover < 0 {
		return nil, domainerr.Validation("lhc_loading", "years_without_cover", "cannot be negative")
	}
	if in.BaseDay.IsZero() || in.LoadingStartDate.IsZero() {
		return nil, domainerr.Validation("lhc_loading", "dates", "base day and loading start date are required")
	}

	loading := decimal.NewFromInt(int64(in.YearsWithoutCover) * 2)
	if loading.GreaterThan(maxLoadingPct) {
		loading = maxLoadingPct
	}

	now := s.clock.Now().UTC()
	row := &regdomain.LHCLoading{
		ID:                   s.alloc.NewID(),
		MemberID:             in.MemberID,
		PolicyID:             in.PolicyID,
		CertifiedAgeOfEntry:  in.CertifiedAgeOfEntry,
		BaseDay:              in.BaseDay,
		LoadingPercentage:    loading,
		LoadingStartDate:     in.LoadingStartDate,
		ContinuousCoverStart: in.ContinuousCoverStart,
		YearsWithoutCover:    in.YearsWithoutCover,
		IsLoadingActive:      loading.IsPositive(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := s.store.RunUnit(ctx, "regulatory.lhc_grant", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedLHCLoading(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// RemoveLHCLoading ends an active loading after ten years of continuous
// cover.
func (s *Service) RemoveLHCLoading(ctx context.Context, loadingID uuid.UUID, removalDate time.Time) (*regdomain.LHCLoading, error) {
	if removalDate.IsZero() {
		return nil, domainerr.Validation("lhc_loading", "loading_removal_date", "required")
	}

	var removed regdomain.LHCLoading
	now := s.clock.Now().UTC()
	err := s.store.RunUnit(ctx, "regulatory.lhc_remove", func(u *store.UnitOfWork) error {
		var row regdomain.LHCLoading
		if err := u.Tx().First(&row, "lhc_loading_id = ?", loadingID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "lhc_loading", ID: loadingID.String()}
		}
		if !row.IsLoadingActive {
			return domainerr.Validation("lhc_loading", "is_loading_active", "loading already removed")
		}

		row.IsLoadingActive = false
		row.LoadingRemovalDate = &removalDate
		row.UpdatedAt = now
		if err := u.Update(row.TableName(), row.ID.String(), &row, exportedLHCLoading(&row)); err != nil {
			return err
		}
		removed = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

// GrantAgeBasedDiscountInput applies a youth discount.
type GrantAgeBasedDiscountInput struct {
	MemberID           uuid.UUID
	PolicyID           uuid.UUID
	AgeAtEligibility   int
	DiscountPercentage decimal.Decimal
	EligibilityDate    time.Time
	PhaseOutStartDate  time.Time
	PhaseOutEndDate    time.Time
}

func (s *Service) GrantAgeBasedDiscount(ctx context.Context, in GrantAgeBasedDiscountInput) (*regdomain.AgeBasedDiscount, error) {
	if in.AgeAtEligibility < 18 || in.AgeAtEligibility > 29 {
		return nil, domainerr.Validation("age_based_discount", "age_at_eligibility", "must be between 18 and 29, got %d", in.AgeAtEligibility)
	}
	if in.DiscountPercentage.IsNegative() || in.DiscountPercentage.GreaterThan(maxDiscountPct) {
		return nil, domainerr.Validation("age_based_discount", "discount_percentage", "must be between 0 and 10")
	}
	if in.PhaseOutEndDate.Before(in.PhaseOutStartDate) {
		return nil, domainerr.Validation("age_based_discount", "phase_out_end_date", "precedes phase out start")
	}

	now := s.clock.Now().UTC()
	row := &regdomain.AgeBasedDiscount{
		ID:                 s.alloc.NewID(),
		MemberID:           in.MemberID,
		PolicyID:           in.PolicyID,
		AgeAtEligibility:   in.AgeAtEligibility,
		DiscountPercentage: in.DiscountPercentage,
		EligibilityDate:    in.EligibilityDate,
		PhaseOutStartDate:  in.PhaseOutStartDate,
		PhaseOutEndDate:    in.PhaseOutEndDate,
		CurrentDiscountPct: in.DiscountPercentage,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.store.RunUnit(ctx, "regulatory.age_discount_grant", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedAgeDiscount(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// RecordRebateEntitlementInput records a policy's rebate for one
// financial year.
type RecordRebateEntitlementInput struct {
	PolicyID               uuid.UUID
	FinancialYear          string
	IncomeTier             string
	OldestMemberAgeBracket string
	RebatePercentage       decimal.Decimal
	IncomeDeclarationDate  *time.Time
	DeclaredIncomeRange    *string
	SingleOrFamily         string
	MLSLiable              bool
	EffectiveDate          time.Time
}

// RecordRebateEntitlement writes the entitlement; one row per policy
// per financial year.
func (s *Service) RecordRebateEntitlement(ctx context.Context, in RecordRebateEntitlementInput) (*regdomain.PHIRebateEntitlement, error) {
	if len(in.FinancialYear) != 9 {
		return nil, domainerr.Validation("phi_rebate_entitlement", "financial_year", "expected YYYY-YYYY, got %q", in.FinancialYear)
	}
	if in.RebatePercentage.IsNegative() || in.RebatePercentage.GreaterThan(one) {
		return nil, domainerr.Validation("phi_rebate_entitlement", "rebate_percentage", "must be a fraction between 0 and 1")
	}
	if in.EffectiveDate.IsZero() {
		return nil, domainerr.Validation("phi_rebate_entitlement", "effective_date", "required")
	}

	now := s.clock.Now().UTC()
	row := &regdomain.PHIRebateEntitlement{
		ID:                     s.alloc.NewID(),
		PolicyID:               in.PolicyID,
		FinancialYear:          in.FinancialYear,
		IncomeTier:             in.IncomeTier,
		OldestMemberAgeBracket: in.OldestMemberAgeBracket,
		RebatePercentage:       in.RebatePercentage,
		IncomeDeclarationDate:  in.IncomeDeclarationDate,
		DeclaredIncomeRange:    in.DeclaredIncomeRange,
		SingleOrFamily:         in.SingleOrFamily,
		MLSLiable:              in.MLSLiable,
		EffectiveDate:          in.EffectiveDate,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	err := s.store.RunUnit(ctx, "regulatory.rebate_record", func(u *store.UnitOfWork) error {
		var existing int64
		if err := u.Tx().Model(&regdomain.PHIRebateEntitlement{}).
			Where("policy_id = ? AND financial_year = ?", in.PolicyID, in.FinancialYear).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return domainerr.Validation("phi_rebate_entitlement", "financial_year", "entitlement already recorded for %s", in.FinancialYear)
		}
		return u.Create(row.TableName(), row.ID.String(), row, exportedRebate(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func exportedLHCLoading(l *regdomain.LHCLoading) map[string]any {
	return map[string]any{
		"lhc_loading_id":         l.ID,
		"member_id":              l.MemberID,
		"policy_id":              l.PolicyID,
		"certified_age_of_entry": l.CertifiedAgeOfEntry,
		"base_day":               export.NewDate(l.BaseDay),
		"loading_percentage":     l.LoadingPercentage,
		"loading_start_date":     export.NewDate(l.LoadingStartDate),
		"years_without_cover":    l.YearsWithoutCover,
		"is_loading_active":      l.IsLoadingActive,
	}
}

func exportedAgeDiscount(d *regdomain.AgeBasedDiscount) map[string]any {
	return map[string]any{
		"age_discount_id":      d.ID,
		"member_id":            d.MemberID,
		"policy_id":            d.PolicyID,
		"age_at_eligibility":   d.AgeAtEligibility,
		"discount_percentage":  d.DiscountPercentage,
		"eligibility_date":     export.NewDate(d.EligibilityDate),
		"current_discount_pct": d.CurrentDiscountPct,
		"is_active":            d.IsActive,
	}
}

func exportedRebate(r *regdomain.PHIRebateEntitlement) map[string]any {
	return map[string]any{
		"rebate_entitlement_id":     r.ID,
		"policy_id":                 r.PolicyID,
		"financial_year":            r.FinancialYear,
		"income_tier":               r.IncomeTier,
		"oldest_member_age_bracket": r.OldestMemberAgeBracket,
		"rebate_percentage":         r.RebatePercentage,
		"single_or_family":          r.SingleOrFamily,
		"mls_liable":                r.MLSLiable,
		"effective_date":            export.NewDate(r.EffectiveDate),
	}
}
