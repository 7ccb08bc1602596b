package service

import (
	"context"
	"time"

	"github.com/brickwell/healthcore/internal/allocator"
	claimsdomain "github.com/brickwell/healthcore/internal/claims/domain"
	"github.com/brickwell/healthcore/internal/clock"
	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/brickwell/healthcore/internal/export"
	policydomain "github.com/brickwell/healthcore/internal/policy/domain"
	"github.com/brickwell/healthcore/internal/reference"
	"github.com/brickwell/healthcore/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store   *store.Store
	Alloc   *allocator.Allocator
	Catalog *reference.Catalog
	Clock   clock.Clock
	Log     *zap.Logger
}

// Service owns claim writes from lodgement to payment.
type Service struct {
	store   *store.Store
	alloc   *allocator.Allocator
	catalog *reference.Catalog
	clock   clock.Clock
	log     *zap.Logger
}

func NewService(p Params) *Service {
	return &Service{
		store:   p.Store,
		alloc:   p.Alloc,
		catalog: p.Catalog,
		clock:   p.Clock,
		log:     p.Log.Named("claims.service"),
	}
}

// FraudInput labels a synthetic claim with its injected fraud pattern.
type FraudInput struct {
	FraudType      claimsdomain.FraudType
	OriginalCharge *decimal.Decimal
	InflationRatio *decimal.Decimal
	SourceClaimID  *uuid.UUID
	RingID         *uuid.UUID
}

// LineInput is one service line on a new claim.
type LineInput struct {
	ItemCode           string
	ItemDescription    *string
	ClinicalCategoryID *int
	BenefitCategoryID  *int
	ServiceDate        time.Time
	Quantity           int
	ChargeAmount       decimal.Decimal
	ScheduleFee        *decimal.Decimal
	ProviderID         *int
	ProviderNumber     *string
	ToothNumber        *string
	BodyPart           *string

	// Extras detail, required when the claim type is Extras.
	Extras *ExtrasDetailInput
}

// ExtrasDetailInput is the extras detail for one line.
type ExtrasDetailInput struct {
	ServiceType       string
	DentalServiceType *string
	ExtrasItemID      int
	ProviderID        int
	ToothNumber       *string
}

// AdmissionInput is the hospital detail for a hospital claim.
type AdmissionInput struct {
	HospitalID          int
	AdmissionNumber     *string
	AdmissionDate       time.Time
	DischargeDate       *time.Time
	AdmissionType       string
	AccommodationType   string
	DRGCode             *string
	ClinicalCategoryID  int
	PrincipalDiagnosis  *string
	LengthOfStay        *int
	TheatreMinutes      *int
	AccommodationCharge *decimal.Decimal
	TheatreCharge       *decimal.Decimal
	ProsthesisCharge    *decimal.Decimal
	ContractedHospital  bool
}

// AmbulanceInput is the ambulance detail for an ambulance claim.
type AmbulanceInput struct {
	IncidentDate      time.Time
	IncidentLocation  *string
	IncidentState     string
	TransportType     string
	PickupLocation    *string
	Destination       *string
	DistanceKM        *decimal.Decimal
	AmbulanceProvider *string
	CaseNumber        *string
}

// SubmitClaimInput lodges a claim with its detail rows.
type SubmitClaimInput struct {
	PolicyID      uuid.UUID
	MemberID      uuid.UUID
	CoverageID    uuid.UUID
	ClaimType     claimsdomain.ClaimType
	ServiceDate   time.Time
	LodgementDate time.Time
	ProviderID    *int
	HospitalID    *int
	TotalCharge   decimal.Decimal
	ClaimChannel  claimsdomain.ClaimChannel
	PayTo         string
	Lines         []LineInput
	Admission     *AdmissionInput
	Ambulance     *AmbulanceInput
	Fraud         *FraudInput
}

// SubmitClaim lodges the claim header, lines, and the detail row for
// its type as one unit. A zero coverage ID lodges the claim against the
// reserved placeholder coverage; such claims can only be rejected.
func (s *Service) SubmitClaim(ctx context.Context, in SubmitClaimInput) (*claimsdomain.Claim, error) {
	if err := s.validateSubmit(&in); err != nil {
		return nil, err
	}

	claimID, claimNumber, err := s.alloc.Allocate(allocator.KindClaim)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	payTo := in.PayTo
	if payTo == "" {
		payTo = "Member"
	}
	claim := &claimsdomain.Claim{
		ID:            claimID,
		ClaimNumber:   claimNumber,
		PolicyID:      in.PolicyID,
		MemberID:      in.MemberID,
		CoverageID:    in.CoverageID,
		ClaimType:     in.ClaimType,
		ClaimStatus:   claimsdomain.ClaimSubmitted,
		ServiceDate:   in.ServiceDate,
		LodgementDate: in.LodgementDate,
		ProviderID:    in.ProviderID,
		HospitalID:    in.HospitalID,
		TotalCharge:   in.TotalCharge,
		ExcessApplied: decimal.Zero,
		ClaimChannel:  in.ClaimChannel,
		PayTo:         payTo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Fraud != nil {
		ft := in.Fraud.FraudType
		claim.IsFraud = true
		claim.FraudType = &ft
		claim.FraudOriginalCharge = in.Fraud.OriginalCharge
		claim.FraudInflationRatio = in.Fraud.InflationRatio
		claim.FraudSourceClaimID = in.Fraud.SourceClaimID
		claim.FraudRingID = in.Fraud.RingID
	}

	err = s.store.RunUnit(ctx, "claim.submit", func(u *store.UnitOfWork) error {
		if err := s.checkCoverageWindow(u, &in); err != nil {
			return err
		}
		if err := s.checkFraudSource(u, claim); err != nil {
			return err
		}

		if err := u.Create(claim.TableName(), claimID.String(), claim, exportedClaim(claim)); err != nil {
			return err
		}

		for i, line := range in.Lines {
			row := claimsdomain.ClaimLine{
				ID:                 s.alloc.NewID(),
				ClaimID:            claimID,
				LineNumber:         i + 1,
				ItemCode:           line.ItemCode,
				ItemDescription:    line.ItemDescription,
				ClinicalCategoryID: line.ClinicalCategoryID,
				BenefitCategoryID:  line.BenefitCategoryID,
				ServiceDate:        line.ServiceDate,
				Quantity:           line.Quantity,
				ChargeAmount:       line.ChargeAmount,
				ScheduleFee:        line.ScheduleFee,
				LineStatus:         "Pending",
				ProviderID:         line.ProviderID,
				ProviderNumber:     line.ProviderNumber,
				ToothNumber:        line.ToothNumber,
				BodyPart:           line.BodyPart,
				CreatedAt:          now,
			}
			if err := u.Create(row.TableName(), row.ID.String(), &row, exportedClaimLine(&row)); err != nil {
				return err
			}

			if line.Extras != nil {
				extras := claimsdomain.ExtrasClaim{
					ID:                s.alloc.NewID(),
					ClaimID:           claimID,
					ClaimLineID:       row.ID,
					ServiceType:       line.Extras.ServiceType,
					DentalServiceType: line.Extras.DentalServiceType,
					ExtrasItemID:      line.Extras.ExtrasItemID,
					ProviderID:        line.Extras.ProviderID,
					ServiceDate:       line.ServiceDate,
					ToothNumber:       line.Extras.ToothNumber,
					ChargeAmount:      line.ChargeAmount,
					CreatedAt:         now,
				}
				if err := u.Create(extras.TableName(), extras.ID.String(), &extras, exportedExtrasClaim(&extras)); err != nil {
					return err
				}
			}
		}

		if in.Admission != nil {
			adm := claimsdomain.HospitalAdmission{
				ID:                  s.alloc.NewID(),
				ClaimID:             claimID,
				HospitalID:          in.Admission.HospitalID,
				AdmissionNumber:     in.Admission.AdmissionNumber,
				AdmissionDate:       in.Admission.AdmissionDate,
				DischargeDate:       in.Admission.DischargeDate,
				AdmissionType:       in.Admission.AdmissionType,
				AccommodationType:   in.Admission.AccommodationType,
				DRGCode:             in.Admission.DRGCode,
				ClinicalCategoryID:  in.Admission.ClinicalCategoryID,
				PrincipalDiagnosis:  in.Admission.PrincipalDiagnosis,
				LengthOfStay:        in.Admission.LengthOfStay,
				TheatreMinutes:      in.Admission.TheatreMinutes,
				AccommodationCharge: in.Admission.AccommodationCharge,
				TheatreCharge:       in.Admission.TheatreCharge,
				ProsthesisCharge:    in.Admission.ProsthesisCharge,
				ExcessApplicable:    true,
				ExcessAmount:        decimal.Zero,
				CoPaymentAmount:     decimal.Zero,
				ContractedHospital:  in.Admission.ContractedHospital,
				CreatedAt:           now,
			}
			if err := u.Create(adm.TableName(), adm.ID.String(), &adm, exportedAdmission(&adm)); err != nil {
				return err
			}
		}

		if in.Ambulance != nil {
			amb := claimsdomain.AmbulanceClaim{
				ID:                s.alloc.NewID(),
				ClaimID:           claimID,
				IncidentDate:      in.Ambulance.IncidentDate,
				IncidentLocation:  in.Ambulance.IncidentLocation,
				IncidentState:     in.Ambulance.IncidentState,
				TransportType:     in.Ambulance.TransportType,
				PickupLocation:    in.Ambulance.PickupLocation,
				Destination:       in.Ambulance.Destination,
				DistanceKM:        in.Ambulance.DistanceKM,
				ChargeAmount:      in.TotalCharge,
				AmbulanceProvider: in.Ambulance.AmbulanceProvider,
				CaseNumber:        in.Ambulance.CaseNumber,
				CreatedAt:         now,
			}
			if err := u.Create(amb.TableName(), amb.ID.String(), &amb, exportedAmbulance(&amb)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("claim lodged",
		zap.String("claim_id", claimID.String()),
		zap.String("claim_number", claimNumber),
		zap.String("claim_type", string(in.ClaimType)),
		zap.Bool("is_fraud", claim.IsFraud),
	)
	return claim, nil
}

func (s *Service) validateSubmit(in *SubmitClaimInput) error {
	if in.TotalCharge.IsNegative() {
		return domainerr.Validation("claim", "total_charge", "cannot be negative")
	}
	if in.ServiceDate.IsZero() || in.LodgementDate.IsZero() {
		return domainerr.Validation("claim", "dates", "service and lodgement dates are required")
	}
	if in.LodgementDate.Before(in.ServiceDate) {
		return domainerr.Validation("claim", "lodgement_date", "precedes service date")
	}

	switch in.ClaimType {
	case claimsdomain.ClaimHospital:
		if in.Admission == nil {
			return domainerr.Validation("claim", "admission", "hospital claim requires an admission")
		}
		if in.Ambulance != nil {
			return domainerr.Validation("claim", "ambulance", "hospital claim cannot carry ambulance detail")
		}
		if _, err := s.catalog.Hospital(in.Admission.HospitalID); err != nil {
			return err
		}
		if _, err := s.catalog.ClinicalCategory(in.Admission.ClinicalCategoryID); err != nil {
			return err
		}
	case claimsdomain.ClaimExtras:
		if len(in.Lines) == 0 {
			return domainerr.Validation("claim", "lines", "extras claim requires at least one line")
		}
		if in.Admission != nil || in.Ambulance != nil {
			return domainerr.Validation("claim", "detail", "extras claim carries line detail only")
		}
		for i, line := range in.Lines {
			if line.Extras == nil {
				return domainerr.Validation("claim_line", "extras", "line %d missing extras detail", i+1)
			}
			if _, err := s.catalog.ExtrasItem(line.Extras.ExtrasItemID); err != nil {
				return err
			}
			if _, err := s.catalog.Provider(line.Extras.ProviderID); err != nil {
				return err
			}
		}
	case claimsdomain.ClaimAmbulance:
		if in.Ambulance == nil {
			return domainerr.Validation("claim", "ambulance", "ambulance claim requires incident detail")
		}
		if in.Admission != nil {
			return domainerr.Validation("claim", "admission", "ambulance claim cannot carry admission detail")
		}
	default:
		return domainerr.Validation("claim", "claim_type", "unknown claim type %q", in.ClaimType)
	}

	if len(in.Lines) > 0 {
		sum := decimal.Zero
		for i, line := range in.Lines {
			if line.Quantity < 1 {
				return domainerr.Validation("claim_line", "quantity", "line %d quantity must be at least 1", i+1)
			}
			if line.ChargeAmount.IsNegative() {
				return domainerr.Validation("claim_line", "charge_amount", "line %d charge cannot be negative", i+1)
			}
			sum = sum.Add(line.ChargeAmount)
		}
		if !sum.Equal(in.TotalCharge) {
			return domainerr.Validation("claim", "total_charge", "line charges sum to %s, header says %s", sum, in.TotalCharge)
		}
	}

	return s.validateFraud(in.Fraud)
}

func (s *Service) validateFraud(f *FraudInput) error {
	if f == nil {
		return nil
	}
	if !claimsdomain.ValidFraudType(f.FraudType) {
		return domainerr.Validation("claim", "fraud_type", "unknown fraud type %q", f.FraudType)
	}
	if f.InflationRatio != nil {
		if f.OriginalCharge == nil {
			return domainerr.Validation("claim", "fraud_inflation_ratio", "requires the original charge")
		}
		if !f.InflationRatio.IsPositive() {
			return domainerr.Validation("claim", "fraud_inflation_ratio", "must be positive")
		}
	}
	return nil
}

// checkCoverageWindow verifies the service date falls inside the
// coverage's effective window. The zero coverage ID is the reserved
// placeholder for no-coverage lodgements and skips the check.
func (s *Service) checkCoverageWindow(u *store.UnitOfWork, in *SubmitClaimInput) error {
	if in.CoverageID == uuid.Nil {
		return nil
	}
	var coverage policydomain.Coverage
	if err := u.Tx().First(&coverage, "coverage_id = ?", in.CoverageID).Error; err != nil {
		return &domainerr.ReferenceMissError{Kind: "coverage", ID: in.CoverageID.String()}
	}
	if in.ServiceDate.Before(coverage.EffectiveDate) {
		return domainerr.Validation("claim", "service_date", "precedes coverage effective date")
	}
	if coverage.EndDate != nil && in.ServiceDate.After(*coverage.EndDate) {
		return domainerr.Validation("claim", "service_date", "after coverage end date")
	}
	return nil
}

// checkFraudSource verifies a duplicate-pattern source claim was lodged
// strictly before this one. Ring IDs are shared across claims and need
// no check.
func (s *Service) checkFraudSource(u *store.UnitOfWork, claim *claimsdomain.Claim) error {
	if claim.FraudSourceClaimID == nil {
		return nil
	}
	var source claimsdomain.Claim
	if err := u.Tx().First(&source, "claim_id = ?", *claim.FraudSourceClaimID).Error; err != nil {
		return &domainerr.ReferenceMissError{Kind: "claim", ID: claim.FraudSourceClaimID.String()}
	}
	if !source.LodgementDate.Before(claim.LodgementDate) {
		return domainerr.Validation("claim", "fraud_source_claim_id", "source claim must be lodged strictly earlier")
	}
	return nil
}

// Checks carries the tri-state assessment check results.
type Checks struct {
	WaitingPeriod claimsdomain.CheckResult
	BenefitLimit  claimsdomain.CheckResult
	Eligibility   claimsdomain.CheckResult
}

func (c Checks) normalize() Checks {
	if c.WaitingPeriod == "" {
		c.WaitingPeriod = claimsdomain.CheckNotApplicable
	}
	if c.BenefitLimit == "" {
		c.BenefitLimit = claimsdomain.CheckNotApplicable
	}
	if c.Eligibility == "" {
		c.Eligibility = claimsdomain.CheckNotApplicable
	}
	return c
}

// Assess moves a submitted claim to Assessed and records the check
// results.
func (s *Service) Assess(ctx context.Context, claimID uuid.UUID, checks Checks, assessedBy string) (*claimsdomain.Claim, error) {
	checks = checks.normalize()
	var assessed claimsdomain.Claim
	now := s.clock.Now().UTC()

	err := s.store.RunUnit(ctx, "claim.assess", func(u *store.UnitOfWork) error {
		claim, err := s.transition(u, claimID, claimsdomain.ClaimAssessed, now)
		if err != nil {
			return err
		}
		claim.AssessmentDate = &now
		if err := u.Update(claim.TableName(), claim.ID.String(), claim, exportedClaim(claim)); err != nil {
			return err
		}
		if err := s.recordAssessment(u, claim, checks, "Assessed", assessedBy, nil, now); err != nil {
			return err
		}
		assessed = *claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assessed, nil
}

// Approve pays the full benefit determination: benefit plus gap may not
// exceed the charge.
func (s *Service) Approve(ctx context.Context, claimID uuid.UUID, benefit, gap decimal.Decimal, assessedBy string) (*claimsdomain.Claim, error) {
	return s.finalize(ctx, "claim.approve", claimID, claimsdomain.ClaimApproved, benefit, gap, nil, nil, assessedBy)
}

// PartiallyApprove settles the claim below the charge: the benefit must
// be strictly less than the total charge and strictly positive.
func (s *Service) PartiallyApprove(ctx context.Context, claimID uuid.UUID, benefit, gap decimal.Decimal, reason *string, assessedBy string) (*claimsdomain.Claim, error) {
	return s.finalize(ctx, "claim.partially_approve", claimID, claimsdomain.ClaimPartiallyApproved, benefit, gap, nil, reason, assessedBy)
}

// Reject denies the claim with a catalog-resolvable rejection reason
// and a zero benefit.
func (s *Service) Reject(ctx context.Context, claimID uuid.UUID, rejectionReasonID int, notes *string, assessedBy string) (*claimsdomain.Claim, error) {
	if _, err := s.catalog.RejectionReason(rejectionReasonID); err != nil {
		return nil, err
	}
	return s.finalize(ctx, "claim.reject", claimID, claimsdomain.ClaimRejected, decimal.Zero, decimal.Zero, &rejectionReasonID, notes, assessedBy)
}

func (s *Service) finalize(ctx context.Context, unit string, claimID uuid.UUID, status claimsdomain.ClaimStatus, benefit, gap decimal.Decimal, rejectionReasonID *int, notes *string, assessedBy string) (*claimsdomain.Claim, error) {
	if benefit.IsNegative() || gap.IsNegative() {
		return nil, domainerr.Validation("claim", "total_benefit", "benefit and gap cannot be negative")
	}

	var finalized claimsdomain.Claim
	now := s.clock.Now().UTC()
	err := s.store.RunUnit(ctx, unit, func(u *store.UnitOfWork) error {
		claim, err := s.transition(u, claimID, status, now)
		if err != nil {
			return err
		}

		if benefit.Add(gap).GreaterThan(claim.TotalCharge) {
			return domainerr.Validation("claim", "total_benefit", "benefit %s plus gap %s exceeds charge %s", benefit, gap, claim.TotalCharge)
		}

		switch status {
		case claimsdomain.ClaimApproved, claimsdomain.ClaimPartiallyApproved:
			if claim.CoverageID == uuid.Nil {
				return domainerr.Validation("claim", "coverage_id", "claim against placeholder coverage can only be rejected")
			}
			if status == claimsdomain.ClaimPartiallyApproved {
				if !benefit.IsPositive() || benefit.GreaterThanOrEqual(claim.TotalCharge) {
					return domainerr.Validation("claim", "total_benefit", "partial benefit %s must be strictly between zero and charge %s", benefit, claim.TotalCharge)
				}
			}
		case claimsdomain.ClaimRejected:
			if !benefit.IsZero() {
				return domainerr.Validation("claim", "total_benefit", "rejected claim must carry zero benefit")
			}
		}

		claim.TotalBenefit = &benefit
		claim.TotalGap = &gap
		claim.RejectionReasonID = rejectionReasonID
		claim.RejectionNotes = notes
		claim.UpdatedAt = now
		if err := u.Update(claim.TableName(), claim.ID.String(), claim, exportedClaim(claim)); err != nil {
			return err
		}
		if err := s.recordAssessment(u, claim, Checks{}.normalize(), string(status), assessedBy, &benefit, now); err != nil {
			return err
		}
		finalized = *claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &finalized, nil
}

// UsageInput is one benefit usage ledger entry appended at payment.
type UsageInput struct {
	BenefitCategoryID int
	UsageAmount       decimal.Decimal
	UsageCount        int
}

// Pay settles an approved claim and appends the benefit usage ledger
// rows. RemainingLimit decreases monotonically within a benefit year.
func (s *Service) Pay(ctx context.Context, claimID uuid.UUID, paymentDate time.Time, usages []UsageInput) (*claimsdomain.Claim, error) {
	if paymentDate.IsZero() {
		return nil, domainerr.Validation("claim", "payment_date", "required")
	}

	var paid claimsdomain.Claim
	now := s.clock.Now().UTC()
	err := s.store.RunUnit(ctx, "claim.pay", func(u *store.UnitOfWork) error {
		claim, err := s.transition(u, claimID, claimsdomain.ClaimPaid, now)
		if err != nil {
			return err
		}
		claim.PaymentDate = &paymentDate
		if err := u.Update(claim.TableName(), claim.ID.String(), claim, exportedClaim(claim)); err != nil {
			return err
		}
		if err := s.recordAssessment(u, claim, Checks{}.normalize(), "Paid", "system", claim.TotalBenefit, now); err != nil {
			return err
		}

		year := claimsdomain.BenefitYear(claim.ServiceDate)
		for _, usage := range usages {
			if err := s.appendUsage(u, claim, usage, year, paymentDate, now); err != nil {
				return err
			}
		}
		paid = *claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &paid, nil
}

// appendUsage adds one ledger row. The remaining limit is the previous
// row's remaining minus this usage and may never go negative or rise.
func (s *Service) appendUsage(u *store.UnitOfWork, claim *claimsdomain.Claim, usage UsageInput, year string, usageDate, now time.Time) error {
	if !usage.UsageAmount.IsPositive() {
		return domainerr.Validation("benefit_usage", "usage_amount", "must be positive")
	}
	count := usage.UsageCount
	if count < 1 {
		count = 1
	}

	category, err := s.catalog.BenefitCategory(usage.BenefitCategoryID)
	if err != nil {
		return err
	}

	var prior claimsdomain.BenefitUsage
	var remaining *decimal.Decimal
	limitType := string(category.LimitType)
	err = u.Tx().
		Where("member_id = ? AND benefit_category_id = ? AND benefit_year = ?", claim.MemberID, usage.BenefitCategoryID, year).
		Order("created_at DESC").
		First(&prior).Error
	switch {
	case err == nil:
		if prior.RemainingLimit != nil {
			r := prior.RemainingLimit.Sub(usage.UsageAmount)
			if r.IsNegative() {
				return domainerr.Validation("benefit_usage", "remaining_limit", "usage %s exceeds remaining limit %s", usage.UsageAmount, prior.RemainingLimit)
			}
			remaining = &r
		}
	case category.AnnualLimit != nil:
		r := category.AnnualLimit.Sub(usage.UsageAmount)
		if r.IsNegative() {
			return domainerr.Validation("benefit_usage", "remaining_limit", "usage %s exceeds annual limit %s", usage.UsageAmount, category.AnnualLimit)
		}
		remaining = &r
	}

	row := claimsdomain.BenefitUsage{
		ID:                s.alloc.NewID(),
		PolicyID:          claim.PolicyID,
		MemberID:          claim.MemberID,
		ClaimID:           &claim.ID,
		BenefitCategoryID: usage.BenefitCategoryID,
		BenefitYear:       year,
		UsageDate:         usageDate,
		UsageAmount:       usage.UsageAmount,
		UsageCount:        count,
		AnnualLimit:       category.AnnualLimit,
		RemainingLimit:    remaining,
		LimitType:         &limitType,
		CreatedAt:         now,
	}
	return u.Append(row.TableName(), row.ID.String(), &row, exportedUsage(&row))
}

func (s *Service) transition(u *store.UnitOfWork, claimID uuid.UUID, to claimsdomain.ClaimStatus, now time.Time) (*claimsdomain.Claim, error) {
	var claim claimsdomain.Claim
	if err := u.Tx().First(&claim, "claim_id = ?", claimID).Error; err != nil {
		return nil, &domainerr.ReferenceMissError{Kind: "claim", ID: claimID.String()}
	}
	if !claimsdomain.CanTransition(claim.ClaimStatus, to) {
		return nil, domainerr.Validation("claim", "claim_status", "cannot move %s to %s", claim.ClaimStatus, to)
	}
	claim.ClaimStatus = to
	claim.UpdatedAt = now
	return &claim, nil
}

func (s *Service) recordAssessment(u *store.UnitOfWork, claim *claimsdomain.Claim, checks Checks, outcome, assessedBy string, benefit *decimal.Decimal, now time.Time) error {
	row := claimsdomain.ClaimAssessment{
		ID:                 s.alloc.NewID(),
		ClaimID:            claim.ID,
		AssessmentType:     "Auto",
		AssessmentDate:     now,
		AssessedBy:         assessedBy,
		OriginalBenefit:    benefit,
		WaitingPeriodCheck: checks.WaitingPeriod,
		BenefitLimitCheck:  checks.BenefitLimit,
		EligibilityCheck:   checks.Eligibility,
		Outcome:            outcome,
		CreatedAt:          now,
	}
	return u.Append(row.TableName(), row.ID.String(), &row, exportedAssessment(&row))
}

func exportedClaim(c *claimsdomain.Claim) map[string]any {
	out := map[string]any{
		"claim_id":            c.ID,
		"claim_number":        c.ClaimNumber,
		"policy_id":           c.PolicyID,
		"member_id":           c.MemberID,
		"coverage_id":         c.CoverageID,
		"claim_type":          string(c.ClaimType),
		"claim_status":        string(c.ClaimStatus),
		"service_date":        export.NewDate(c.ServiceDate),
		"lodgement_date":      export.NewDate(c.LodgementDate),
		"total_charge":        c.TotalCharge,
		"total_benefit":       c.TotalBenefit,
		"total_gap":           c.TotalGap,
		"rejection_reason_id": c.RejectionReasonID,
		"claim_channel":       string(c.ClaimChannel),
		"pay_to":              c.PayTo,
		"is_fraud":            c.IsFraud,
		"fraud_ring_id":       c.FraudRingID,
	}
	if c.FraudType != nil {
		out["fraud_type"] = string(*c.FraudType)
	}
	if c.PaymentDate != nil {
		out["payment_date"] = export.NewDate(*c.PaymentDate)
	}
	return out
}

func exportedClaimLine(l *claimsdomain.ClaimLine) map[string]any {
	return map[string]any{
		"claim_line_id":       l.ID,
		"claim_id":            l.ClaimID,
		"line_number":         l.LineNumber,
		"item_code":           l.ItemCode,
		"benefit_category_id": l.BenefitCategoryID,
		"service_date":        export.NewDate(l.ServiceDate),
		"quantity":            l.Quantity,
		"charge_amount":       l.ChargeAmount,
		"line_status":         l.LineStatus,
	}
}

func exportedAdmission(a *claimsdomain.HospitalAdmission) map[string]any {
	return map[string]any{
		"admission_id":         a.ID,
		"claim_id":             a.ClaimID,
		"hospital_id":          a.HospitalID,
		"admission_date":       export.NewDate(a.AdmissionDate),
		"admission_type":       a.AdmissionType,
		"accommodation_type":   a.AccommodationType,
		"clinical_category_id": a.ClinicalCategoryID,
		"contracted_hospital":  a.ContractedHospital,
	}
}

func exportedExtrasClaim(e *claimsdomain.ExtrasClaim) map[string]any {
	return map[string]any{
		"extras_claim_id": e.ID,
		"claim_id":        e.ClaimID,
		"claim_line_id":   e.ClaimLineID,
		"service_type":    e.ServiceType,
		"extras_item_id":  e.ExtrasItemID,
		"provider_id":     e.ProviderID,
		"service_date":    export.NewDate(e.ServiceDate),
		"charge_amount":   e.ChargeAmount,
	}
}

func exportedAmbulance(a *claimsdomain.AmbulanceClaim) map[string]any {
	return map[string]any{
		"ambulance_claim_id": a.ID,
		"claim_id":           a.ClaimID,
		"incident_date":      export.NewDate(a.IncidentDate),
		"incident_state":     a.IncidentState,
		"transport_type":     a.TransportType,
		"charge_amount":      a.ChargeAmount,
	}
}

func exportedAssessment(a *claimsdomain.ClaimAssessment) map[string]any {
	return map[string]any{
		"assessment_id":        a.ID,
		"claim_id":             a.ClaimID,
		"assessment_type":      a.AssessmentType,
		"assessment_date":      a.AssessmentDate,
		"assessed_by":          a.AssessedBy,
		"original_benefit":     a.OriginalBenefit,
		"waiting_period_check": string(a.WaitingPeriodCheck),
		"benefit_limit_check":  string(a.BenefitLimitCheck),
		"eligibility_check":    string(a.EligibilityCheck),
		"outcome":              a.Outcome,
	}
}

func exportedUsage(b *claimsdomain.BenefitUsage) map[string]any {
	return map[string]any{
		"benefit_usage_id":    b.ID,
		"policy_id":           b.PolicyID,
		"member_id":           b.MemberID,
		"claim_id":            b.ClaimID,
		"benefit_category_id": b.BenefitCategoryID,
		"benefit_year":        b.BenefitYear,
		"usage_date":          export.NewDate(b.UsageDate),
		"usage_amount":        b.UsageAmount,
		"usage_count":         b.UsageCount,
		"annual_limit":        b.AnnualLimit,
		"remaining_limit":     b.RemainingLimit,
		"limit_type":          b.LimitType,
	}
}
