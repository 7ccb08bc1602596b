// Package reference holds the immutable master data catalog. The catalog
// is loaded once at startup and read concurrently by every service; a
// lookup for an ID that does not exist is a reference miss, never a crash.
package reference

import (
	"context"

	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/brickwell/healthcore/internal/reference/domain"
	"go.uber.org/zap"
)

// tierRank orders hospital tiers for clinical category cover checks.
var tierRank = map[domain.CoverageTier]int{
	domain.TierBasic:  0,
	domain.TierBronze: 1,
	domain.TierSilver: 2,
	domain.TierGold:   3,
}

// TierCovers reports whether a product tier meets or exceeds the minimum
// tier a clinical category requires.
func TierCovers(tier, minimum domain.CoverageTier) bool {
	return tierRank[tier] >= tierRank[minimum]
}

// Catalog is the in-memory reference data snapshot.
type Catalog struct {
	products           map[int]domain.Product
	providers          map[int]domain.Provider
	hospitals          map[int]domain.Hospital
	clinicalCategories map[int]domain.ClinicalCategory
	benefitCategories  map[int]domain.BenefitCategory
	rejectionReasons   map[int]domain.RejectionReason
	extrasItems        map[int]domain.ExtrasItem
	prosthesisItems    map[int]domain.ProsthesisItem
	mbsItems           map[int]domain.MBSItem
	waitingPeriodRules map[string]domain.WaitingPeriodRule
}

// Data holds already-loaded reference rows, ready to index.
type Data struct {
	Products           []domain.Product
	Providers          []domain.Provider
	Hospitals          []domain.Hospital
	ClinicalCategories []domain.ClinicalCategory
	BenefitCategories  []domain.BenefitCategory
	RejectionReasons   []domain.RejectionReason
	ExtrasItems        []domain.ExtrasItem
	ProsthesisItems    []domain.ProsthesisItem
	MBSItems           []domain.MBSItem
	WaitingPeriodRules []domain.WaitingPeriodRule
}

// NewCatalog indexes reference rows by their identifiers.
func NewCatalog(data Data) *Catalog {
	c := &Catalog{
		products:           make(map[int]domain.Product, len(data.Products)),
		providers:          make(map[int]domain.Provider, len(data.Providers)),
		hospitals:          make(map[int]domain.Hospital, len(data.Hospitals)),
		clinicalCategories: make(map[int]domain.ClinicalCategory, len(data.ClinicalCategories)),
		benefitCategories:  make(map[int]domain.BenefitCategory, len(data.BenefitCategories)),
		rejectionReasons:   make(map[int]domain.RejectionReason, len(data.RejectionReasons)),
		extrasItems:        make(map[int]domain.ExtrasItem, len(data.ExtrasItems)),
		prosthesisItems:    make(map[int]domain.ProsthesisItem, len(data.ProsthesisItems)),
		mbsItems:           make(map[int]domain.MBSItem, len(data.MBSItems)),
		waitingPeriodRules: make(map[string]domain.WaitingPeriodRule, len(data.WaitingPeriodRules)),
	}
	for _, row := range data.Products {
		c.products[row.ID] = row
	}
	for _, row := range data.Providers {
		c.providers[row.ID] = row
	}
	for _, row := range data.Hospitals {
		c.hospitals[row.ID] = row
	}
	for _, row := range data.ClinicalCategories {
		c.clinicalCategories[row.ID] = row
	}
	for _, row := range data.BenefitCategories {
		c.benefitCategories[row.ID] = row
	}
	for _, row := range data.RejectionReasons {
		c.rejectionReasons[row.ID] = row
	}
	for _, row := range data.ExtrasItems {
		c.extrasItems[row.ID] = row
	}
	for _, row := range data.ProsthesisItems {
		c.prosthesisItems[row.ID] = row
	}
	for _, row := range data.MBSItems {
		c.mbsItems[row.ID] = row
	}
	for _, row := range data.WaitingPeriodRules {
		c.waitingPeriodRules[row.PeriodType] = row
	}
	return c
}

// Load reads every reference table into memory.
func Load(ctx context.Context, repo domain.Repository, log *zap.Logger) (*Catalog, error) {
	var data Data
	var err error

	if data.Products, err = repo.ListProducts(ctx); err != nil {
		return nil, err
	}
	if data.Providers, err = repo.ListProviders(ctx); err != nil {
		return nil, err
	}
	if data.Hospitals, err = repo.ListHospitals(ctx); err != nil {
		return nil, err
	}
	if data.ClinicalCategories, err = repo.ListClinicalCategories(ctx); err != nil {
		return nil, err
	}
	if data.BenefitCategories, err = repo.ListBenefitCategories(ctx); err != nil {
		return nil, err
	}
	if data.RejectionReasons, err = repo.ListRejectionReasons(ctx); err != nil {
		return nil, err
	}
	if data.ExtrasItems, err = repo.ListExtrasItems(ctx); err != nil {
		return nil, err
	}
	if data.ProsthesisItems, err = repo.ListProsthesisItems(ctx); err != nil {
		return nil, err
	}
	if data.MBSItems, err = repo.ListMBSItems(ctx); err != nil {
		return nil, err
	}
	if data.WaitingPeriodRules, err = repo.ListWaitingPeriodRules(ctx); err != nil {
		return nil, err
	}

	c := NewCatalog(data)
	log.Info("reference catalog loaded",
		zap.Int("products", len(c.products)),
		zap.Int("providers", len(c.providers)),
		zap.Int("hospitals", len(c.hospitals)),
		zap.Int("extras_items", len(c.extrasItems)),
		zap.Int("prosthesis_items", len(c.prosthesisItems)),
		zap.Int("mbs_items", len(c.mbsItems)),
	)
	return c, nil
}

func (c *Catalog) Product(id int) (domain.Product, error) {
	row, ok := c.products[id]
	if !ok {
		return domain.Product{}, &domainerr.ReferenceMissError{Kind: "product", ID: id}
	}
	return row, nil
}

func (c *Catalog) Provider(id int) (domain.Provider, error) {
	row, ok := c.providers[id]
	if !ok {
		return domain.Provider{}, &domainerr.ReferenceMissError{Kind: "provider", ID: id}
	}
	return row, nil
}

func (c *Catalog) Hospital(id int) (domain.Hospital, error) {
	row, ok := c.hospitals[id]
	if !ok {
		return domain.Hospital{}, &domainerr.ReferenceMissError{Kind: "hospital", ID: id}
	}
	return row, nil
}

func (c *Catalog) ClinicalCategory(id int) (domain.ClinicalCategory, error) {
	row, ok := c.clinicalCategories[id]
	if !ok {
		return domain.ClinicalCategory{}, &domainerr.ReferenceMissError{Kind: "clinical_category", ID: id}
	}
	return row, nil
}

func (c *Catalog) BenefitCategory(id int) (domain.BenefitCategory, error) {
	row, ok := c.benefitCategories[id]
	if !ok {
		return domain.BenefitCategory{}, &domainerr.ReferenceMissError{Kind: "benefit_category", ID: id}
	}
	return row, nil
}

func (c *Catalog) RejectionReason(id int) (domain.RejectionReason, error) {
	row, ok := c.rejectionReasons[id]
	if !ok {
		return domain.RejectionReason{}, &domainerr.ReferenceMissError{Kind: "rejection_reason", ID: id}
	}
	return row, nil
}

func (c *Catalog) ExtrasItem(id int) (domain.ExtrasItem, error) {
	row, ok := c.extrasItems[id]
	if !ok {
		return domain.ExtrasItem{}, &domainerr.ReferenceMissError{Kind: "extras_item", ID: id}
	}
	return row, nil
}

func (c *Catalog) ProsthesisItem(id int) (domain.ProsthesisItem, error) {
	row, ok := c.prosthesisItems[id]
	if !ok {
		return domain.ProsthesisItem{}, &domainerr.ReferenceMissError{Kind: "prosthesis_item", ID: id}
	}
	return row, nil
}

func (c *Catalog) MBSItem(id int) (domain.MBSItem, error) {
	row, ok := c.mbsItems[id]
	if !ok {
		return domain.MBSItem{}, &domainerr.ReferenceMissError{Kind: "mbs_item", ID: id}
	}
	return row, nil
}

// WaitingPeriodRule looks up a rule by period type, e.g. "Pre-existing".
func (c *Catalog) WaitingPeriodRule(periodType string) (domain.WaitingPeriodRule, error) {
	row, ok := c.waitingPeriodRules[periodType]
	if !ok {
		return domain.WaitingPeriodRule{}, &domainerr.ReferenceMissError{Kind: "waiting_period_rule", ID: periodType}
	}
	return row, nil
}

// Products returns every product, active or not.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, 0, len(c.products))
	for _, row := range c.products {
		out = append(out, row)
	}
	return out
}
