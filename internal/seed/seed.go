// Package seed installs the reserved system rows every run depends on.
// Generated foreign keys that intentionally point nowhere resolve to the
// all-zero sentinel product, policy, and coverage, so the sentinels must
// exist before any writer produces output.
package seed

import (
	"context"
	"time"

	policydomain "github.com/brickwell/healthcore/internal/policy/domain"
	refdomain "github.com/brickwell/healthcore/internal/reference/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SentinelProductID is the reserved product slot.
const SentinelProductID = 0

// Seeder writes the sentinel rows. Seeding is idempotent: rows that
// already exist are left untouched, so concurrent writers can all seed.
type Seeder struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Seeder {
	return &Seeder{db: db, log: log.Named("seed")}
}

// Run inserts the sentinel product, policy, and coverage.
func (s *Seeder) Run(ctx context.Context) error {
	now := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

	product := refdomain.Product{
		ID:             SentinelProductID,
		ProductCode:    "SYSTEM",
		ProductName:    "System placeholder product",
		CoverageType:   refdomain.CoverageHospital,
		MonthlyPremium: decimal.Zero,
		ExcessAmount:   decimal.Zero,
		IsActive:       false,
		CreatedAt:      now,
	}
	policy := policydomain.Policy{
		ID:                  uuid.Nil,
		PolicyNumber:        "POL-SYSTEM-0000000000",
		ProductID:           SentinelProductID,
		PolicyStatus:        policydomain.PolicyCancelled,
		PolicyType:          policydomain.PolicySingle,
		EffectiveDate:       now,
		PaymentFrequency:    "Monthly",
		PremiumAmount:       decimal.Zero,
		DistributionChannel: policydomain.ChannelOnline,
		StateOfResidence:    "NSW",
		OriginalJoinDate:    now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	coverage := policydomain.Coverage{
		ID:            uuid.Nil,
		PolicyID:      uuid.Nil,
		CoverageType:  string(refdomain.CoverageHospital),
		ProductID:     SentinelProductID,
		EffectiveDate: now,
		Status:        policydomain.CoverageCancelled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true})
	if err := tx.Create(&product).Error; err != nil {
		return err
	}
	if err := tx.Create(&policy).Error; err != nil {
		return err
	}
	if err := tx.Create(&coverage).Error; err != nil {
		return err
	}

	s.log.Info("sentinel rows seeded",
		zap.Int("product_id", SentinelProductID),
		zap.String("policy_id", uuid.Nil.String()),
	)
	return nil
}
