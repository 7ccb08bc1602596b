package repository

import (
	"context"

	"github.com/brickwell/healthcore/internal/reference/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed reference data repository.
func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func list[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	var out []T
	if err := db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return list[domain.Product](ctx, r.db)
}

func (r *repository) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	return list[domain.Provider](ctx, r.db)
}

func (r *repository) ListHospitals(ctx context.Context) ([]domain.Hospital, error) {
	return list[domain.Hospital](ctx, r.db)
}

func (r *repository) ListClinicalCategories(ctx context.Context) ([]domain.ClinicalCategory, error) {
	return list[domain.ClinicalCategory](ctx, r.db)
}

func (r *repository) ListBenefitCategories(ctx context.Context) ([]domain.BenefitCategory, error) {
	return list[domain.BenefitCategory](ctx, r.db)
}

func (r *repository) ListRejectionReasons(ctx context.Context) ([]domain.RejectionReason, error) {
	return list[domain.RejectionReason](ctx, r.db)
}

func (r *repository) ListExtrasItems(ctx context.Context) ([]domain.ExtrasItem, error) {
	return list[domain.ExtrasItem](ctx, r.db)
}

func (r *repository) ListProsthesisItems(ctx context.Context) ([]domain.ProsthesisItem, error) {
	return list[domain.ProsthesisItem](ctx, r.db)
}

func (r *repository) ListMBSItems(ctx context.Context) ([]domain.MBSItem, error) {
	return list[domain.MBSItem](ctx, r.db)
}

func (r *repository) ListWaitingPeriodRules(ctx context.Context) ([]domain.WaitingPeriodRule, error) {
	return list[domain.WaitingPeriodRule](ctx, r.db)
}
