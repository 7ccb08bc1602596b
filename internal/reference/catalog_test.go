package reference

import (
	"context"
	"errors"
	"testing"

	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/brickwell/healthcore/internal/reference/domain"
	"github.com/brickwell/healthcore/internal/reference/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Product{},
		&domain.Provider{},
		&domain.Hospital{},
		&domain.ClinicalCategory{},
		&domain.BenefitCategory{},
		&domain.RejectionReason{},
		&domain.ExtrasItem{},
		&domain.ProsthesisItem{},
		&domain.MBSItem{},
		&domain.WaitingPeriodRule{},
	))
	return db
}

func TestCatalog_LookupAndMiss(t *testing.T) {
	db := setupTestDB(t)

	gold := domain.TierGold
	require.NoError(t, db.Create(&domain.Product{
		ID:             1,
		ProductCode:    "HOS-GOLD-500",
		ProductName:    "Gold Hospital $500 Excess",
		CoverageType:   domain.CoverageHospital,
		Tier:           &gold,
		MonthlyPremium: decimal.RequireFromString("289.50"),
		ExcessAmount:   decimal.RequireFromString("500.00"),
		IsActive:       true,
	}).Error)
	require.NoError(t, db.Create(&domain.RejectionReason{
		ID:          4,
		ReasonCode:  "WAIT_PERIOD",
		Description: "Service within an unserved waiting period",
	}).Error)
	require.NoError(t, db.Create(&domain.WaitingPeriodRule{
		ID:             1,
		PeriodType:     "Pre-existing",
		DurationMonths: 12,
	}).Error)

	catalog, err := Load(context.Background(), repository.New(db), zap.NewNop())
	require.NoError(t, err)

	product, err := catalog.Product(1)
	require.NoError(t, err)
	assert.Equal(t, "HOS-GOLD-500", product.ProductCode)
	assert.True(t, product.MonthlyPremium.Equal(decimal.RequireFromString("289.50")))

	reason, err := catalog.RejectionReason(4)
	require.NoError(t, err)
	assert.Equal(t, "WAIT_PERIOD", reason.ReasonCode)

	rule, err := catalog.WaitingPeriodRule("Pre-existing")
	require.NoError(t, err)
	assert.Equal(t, 12, rule.DurationMonths)

	_, err = catalog.Product(99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerr.ErrReferenceMiss))
	assert.True(t, domainerr.IsValidation(err))

	_, err = catalog.WaitingPeriodRule("Cosmetic")
	assert.True(t, errors.Is(err, domainerr.ErrReferenceMiss))
}

func TestTierCovers(t *testing.T) {
	assert.True(t, TierCovers(domain.TierGold, domain.TierSilver))
	assert.True(t, TierCovers(domain.TierSilver, domain.TierSilver))
	assert.False(t, TierCovers(domain.TierBronze, domain.TierSilver))
	assert.False(t, TierCovers(domain.TierBasic, domain.TierBronze))
}
