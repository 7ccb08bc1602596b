package service

import (
	"context"
	"testing"
	"time"

	"github.com/brickwell/healthcore/internal/domainerr"
	regdomain "github.com/brickwell/healthcore/internal/regulatory/domain"
	"github.com/brickwell/healthcore/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *storetest.Harness) {
	t.Helper()
	h := storetest.New(t, []any{
		&regdomain.LHCLoading{},
		&regdomain.AgeBasedDiscount{},
		&regdomain.PHIRebateEntitlement{},
	})
	svc := NewService(Params{Store: h.Store, Alloc: h.Alloc, Clock: h.Clock, Log: zap.NewNop()})
	return svc, h
}

func TestGrantLHCLoading_CapsAtSeventyPercent(t *testing.T) {
	svc, _ := newTestService(t)

	base := time.Date(2010, time.July, 1, 0, 0, 0, 0, time.UTC)
	row, err := svc.GrantLHCLoading(context.Background(), GrantLHCLoadingInput{
		MemberID:            uuid.New(),
		PolicyID:            uuid.New(),
		CertifiedAgeOfEntry: 45,
		BaseDay:             base,
		YearsWithoutCover:   14,
		LoadingStartDate:    base.AddDate(14, 0, 0),
	})
	require.NoError(t, err)
	assert.True(t, row.LoadingPercentage.Equal(decimal.NewFromInt(28)))
	assert.True(t, row.IsLoadingActive)

	row, err = svc.GrantLHCLoading(context.Background(), GrantLHCLoadingInput{
		MemberID:            uuid.New(),
		PolicyID:            uuid.New(),
		CertifiedAgeOfEntry: 65,
		BaseDay:             base,
		YearsWithoutCover:   40,
		LoadingStartDate:    base.AddDate(40, 0, 0),
	})
	require.NoError(t, err)
	assert.True(t, row.LoadingPercentage.Equal(decimal.NewFromInt(70)))
}

func TestRemoveLHCLoading(t *testing.T) {
	svc, _ := newTestService(t)

	base := time.Date(2012, time.July, 1, 0, 0, 0, 0, time.UTC)
	row, err := svc.GrantLHCLoading(context.Background(), GrantLHCLoadingInput{
		MemberID:            uuid.New(),
		PolicyID:            uuid.New(),
		CertifiedAgeOfEntry: 40,
		BaseDay:             base,
		YearsWithoutCover:   5,
		LoadingStartDate:    base,
	})
	require.NoError(t, err)

	removal := base.AddDate(10, 0, 0)
	removed, err := svc.RemoveLHCLoading(context.Background(), row.ID, removal)
	require.NoError(t, err)
	assert.False(t, removed.IsLoadingActive)
	require.NotNil(t, removed.LoadingRemovalDate)

	_, err = svc.RemoveLHCLoading(context.Background(), row.ID, removal)
	assert.True(t, domainerr.IsValidation(err))
}

func TestGrantAgeBasedDiscount_Bounds(t *testing.T) {
	svc, _ := newTestService(t)

	in := GrantAgeBasedDiscountInput{
		MemberID:           uuid.New(),
		PolicyID:           uuid.New(),
		AgeAtEligibility:   24,
		DiscountPercentage: decimal.NewFromInt(6),
		EligibilityDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PhaseOutStartDate:  time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC),
		PhaseOutEndDate:    time.Date(2034, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	row, err := svc.GrantAgeBasedDiscount(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, row.CurrentDiscountPct.Equal(decimal.NewFromInt(6)))

	in.AgeAtEligibility = 35
	_, err = svc.GrantAgeBasedDiscount(context.Background(), in)
	assert.True(t, domainerr.IsValidation(err))

	in.AgeAtEligibility = 24
	in.DiscountPercentage = decimal.NewFromInt(12)
	_, err = svc.GrantAgeBasedDiscount(context.Background(), in)
	assert.True(t, domainerr.IsValidation(err))
}

func TestRecordRebateEntitlement_OnePerPolicyYear(t *testing.T) {
	svc, _ := newTestService(t)

	policyID := uuid.New()
	in := RecordRebateEntitlementInput{
		PolicyID:               policyID,
		FinancialYear:          "2024-2025",
		IncomeTier:             "Tier 1",
		OldestMemberAgeBracket: "Under 65",
		RebatePercentage:       decimal.RequireFromString("0.16405"),
		SingleOrFamily:         "Single",
		EffectiveDate:          time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.RecordRebateEntitlement(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.RecordRebateEntitlement(context.Background(), in)
	assert.True(t, domainerr.IsValidation(err))

	in.FinancialYear = "2025-2026"
	_, err = svc.RecordRebateEntitlement(context.Background(), in)
	require.NoError(t, err)

	in.FinancialYear = "FY25"
	_, err = svc.RecordRebateEntitlement(context.Background(), in)
	assert.True(t, domainerr.IsValidation(err))

	in.FinancialYear = "2026-2027"
	in.RebatePercentage = decimal.RequireFromString("1.2")
	_, err = svc.RecordRebateEntitlement(context.Background(), in)
	assert.True(t, domainerr.IsValidation(err))
}
