package service

import (
	"context"
	"time"

	"github.com/brickwell/healthcore/internal/allocator"
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

// Service owns application and policy writes.
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
		log:     p.Log.Named("policy.service"),
	}
}

// ApplicantInput is one person on a new application.
type ApplicantInput struct {
	MemberRole            policydomain.MemberRole
	Title                 *string
	FirstName             string
	MiddleName            *string
	LastName              string
	DateOfBirth           time.Time
	Gender                string
	RelationshipToPrimary *policydomain.RelationshipType
	MedicareNumber        *string
	MedicareIRN           *string
	Email                 *string
	MobilePhone           *string
	ExistingMemberID      *uuid.UUID
	Declarations          []DeclarationInput
}

// DeclarationInput is one health declaration answer for an applicant.
type DeclarationInput struct {
	QuestionCode string
	QuestionText string
	Response     string
	Details      *string
}

// SubmitApplicationInput carries a complete application.
type SubmitApplicationInput struct {
	ApplicationType             policydomain.ApplicationType
	ProductID                   int
	RequestedPolicyType         policydomain.PolicyType
	RequestedExcess             *decimal.Decimal
	RequestedStartDate          time.Time
	Channel                     policydomain.DistributionChannel
	PreviousFundCode            *string
	TransferCertificateReceived bool
	State                       string
	Applicants                  []ApplicantInput
}

// SubmitApplication writes the application with its members and health
// declarations as one unit.
func (s *Service) SubmitApplication(ctx context.Context, in SubmitApplicationInput) (*policydomain.Application, error) {
	if len(in.Applicants) == 0 {
		return nil, domainerr.Validation("application", "applicants", "at least one applicant is required")
	}
	if in.RequestedStartDate.IsZero() {
		return nil, domainerr.Validation("application", "requested_start_date", "required")
	}
	primaries := 0
	for _, a := range in.Applicants {
		if a.MemberRole == policydomain.RolePrimary {
			primaries++
		}
		if a.FirstName == "" || a.LastName == "" {
			return nil, domainerr.Validation("application_member", "name", "first and last name are required")
		}
	}
	if primaries != 1 {
		return nil, domainerr.Validation("application", "applicants", "exactly one primary applicant required, got %d", primaries)
	}
	if _, err := s.catalog.Product(in.ProductID); err != nil {
		return nil, err
	}

	appID, appNumber, err := s.alloc.Allocate(allocator.KindApplication)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	appType := in.ApplicationType
	if appType == "" {
		appType = policydomain.ApplicationNew
	}
	app := &policydomain.Application{
		ID:                          appID,
		ApplicationNumber:           appNumber,
		ApplicationType:             appType,
		ApplicationStatus:           policydomain.ApplicationPending,
		ProductID:                   in.ProductID,
		RequestedPolicyType:         in.RequestedPolicyType,
		RequestedExcess:             in.RequestedExcess,
		RequestedStartDate:          in.RequestedStartDate,
		Channel:                     in.Channel,
		PreviousFundCode:            in.PreviousFundCode,
		TransferCertificateReceived: in.TransferCertificateReceived,
		SubmissionDate:              now,
		State:                       in.State,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}

	members := make([]policydomain.ApplicationMember, 0, len(in.Applicants))
	var declarations []policydomain.HealthDeclaration
	for _, a := range in.Applicants {
		am := policydomain.ApplicationMember{
			ID:                    s.alloc.NewID(),
			ApplicationID:         appID,
			MemberRole:            a.MemberRole,
			Title:                 a.Title,
			FirstName:             a.FirstName,
			MiddleName:            a.MiddleName,
			LastName:              a.LastName,
			DateOfBirth:           a.DateOfBirth,
			Gender:                a.Gender,
			RelationshipToPrimary: a.RelationshipToPrimary,
			MedicareNumber:        a.MedicareNumber,
			MedicareIRN:           a.MedicareIRN,
			Email:                 a.Email,
			MobilePhone:           a.MobilePhone,
			ExistingMemberID:      a.ExistingMemberID,
			CreatedAt:             now,
		}
		members = append(members, am)
		for _, d := range a.Declarations {
			if d.Response != "Yes" && d.Response != "No" {
				return nil, domainerr.Validation("health_declaration", "response", "must be Yes or No, got %q", d.Response)
			}
			declarations = append(declarations, policydomain.HealthDeclaration{
				ID:                      s.alloc.NewID(),
				ApplicationMemberID:     am.ID,
				ApplicationID:           appID,
				QuestionCode:            d.QuestionCode,
				QuestionText:            d.QuestionText,
				Response:                d.Response,
				ResponseDetails:         d.Details,
				DeclarationDate:         now,
				DeclarationAcknowledged: true,
				CreatedAt:               now,
			})
		}
	}

	err = s.store.RunUnit(ctx, "application.submit", func(u *store.UnitOfWork) error {
		if err := u.Create(app.TableName(), appID.String(), app, exportedApplication(app)); err != nil {
			return err
		}
		for i := range members {
			m := &members[i]
			if err := u.Create(m.TableName(), m.ID.String(), m, exportedApplicationMember(m)); err != nil {
				return err
			}
		}
		for i := range declarations {
			d := &declarations[i]
			if err := u.Create(d.TableName(), d.ID.String(), d, exportedDeclaration(d)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("application submitted",
		zap.String("application_id", appID.String()),
		zap.String("application_number", appNumber),
		zap.Int("applicants", len(members)),
	)
	return app, nil
}

// DecideApplication moves a pending application to a terminal decision.
// Declining requires a reason.
func (s *Service) DecideApplication(ctx context.Context, applicationID uuid.UUID, decision policydomain.ApplicationStatus, decidedBy string, declineReason *string) (*policydomain.Application, error) {
	if decision == policydomain.ApplicationDeclined && (declineReason == nil || *declineReason == "") {
		return nil, domainerr.Validation("application", "decline_reason", "required when declining")
	}

	var decided policydomain.Application
	now := s.clock.Now().UTC()
	err := s.store.RunUnit(ctx, "application.decide", func(u *store.UnitOfWork) error {
		var app policydomain.Application
		if err := u.Tx().First(&app, "application_id = ?", applicationID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "application", ID: applicationID.String()}
		}
		if !policydomain.CanDecide(app.ApplicationStatus, decision) {
			return domainerr.Validation("application", "application_status", "cannot move %s to %s", app.ApplicationStatus, decision)
		}

		app.ApplicationStatus = decision
		app.DecisionDate = &now
		app.DecisionBy = &decidedBy
		app.DeclineReason = declineReason
		app.UpdatedAt = now
		if err := u.Update(app.TableName(), app.ID.String(), &app, exportedApplication(&app)); err != nil {
			return err
		}
		decided = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &decided, nil
}

// PolicyMemberInput binds an existing member onto the new policy.
type PolicyMemberInput struct {
	MemberID              uuid.UUID
	MemberRole            policydomain.MemberRole
	RelationshipToPrimary policydomain.RelationshipType
}

// IssuePolicyInput issues a policy from an approved application.
type IssuePolicyInput struct {
	ApplicationID    uuid.UUID
	Members          []PolicyMemberInput
	OriginalJoinDate time.Time
}

// waitingPeriodTypes are created per member on hospital coverage, in
// catalog rule order of precedence.
var waitingPeriodTypes = []policydomain.WaitingPeriodType{
	policydomain.WaitGeneral,
	policydomain.WaitPreExisting,
	policydomain.WaitObstetric,
	policydomain.WaitPsychiatric,
}

// IssuePolicy creates the policy, its members, its coverage, and every
// waiting period as one unit. The policy and its coverage take effect on
// the application's requested start date; each waiting period ends
// exactly its catalog duration in months after that date.
func (s *Service) IssuePolicy(ctx context.Context, in IssuePolicyInput) (*policydomain.Policy, error) {
	if len(in.Members) == 0 {
		return nil, domainerr.Validation("policy", "members", "at least one policy member is required")
	}

	policyID, policyNumber, err := s.alloc.Allocate(allocator.KindPolicy)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	var issued policydomain.Policy

	err = s.store.RunUnit(ctx, "policy.issue", func(u *store.UnitOfWork) error {
		var app policydomain.Application
		if err := u.Tx().First(&app, "application_id = ?", in.ApplicationID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "application", ID: in.ApplicationID.String()}
		}
		if app.ApplicationStatus != policydomain.ApplicationApproved {
			return domainerr.Validation("policy", "application_id", "application is %s, not Approved", app.ApplicationStatus)
		}

		product, err := s.catalog.Product(app.ProductID)
		if err != nil {
			return err
		}

		excess := app.RequestedExcess
		if excess == nil {
			e := product.ExcessAmount
			excess = &e
		}
		joinDate := in.OriginalJoinDate
		if joinDate.IsZero() {
			joinDate = app.RequestedStartDate
		}

		policy := policydomain.Policy{
			ID:                  policyID,
			PolicyNumber:        policyNumber,
			ApplicationID:       &app.ID,
			ProductID:           app.ProductID,
			PolicyStatus:        policydomain.PolicyActive,
			PolicyType:          app.RequestedPolicyType,
			EffectiveDate:       app.RequestedStartDate,
			PaymentFrequency:    "Monthly",
			PremiumAmount:       product.MonthlyPremium,
			ExcessAmount:        excess,
			DistributionChannel: app.Channel,
			StateOfResidence:    app.State,
			OriginalJoinDate:    joinDate,
			PreviousFundCode:    app.PreviousFundCode,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := u.Create(policy.TableName(), policyID.String(), &policy, exportedPolicy(&policy)); err != nil {
			return err
		}

		var tier *string
		if product.Tier != nil {
			v := string(*product.Tier)
			tier = &v
		}
		coverage := policydomain.Coverage{
			ID:            s.alloc.NewID(),
			PolicyID:      policyID,
			CoverageType:  string(product.CoverageType),
			ProductID:     product.ID,
			EffectiveDate: app.RequestedStartDate,
			Status:        policydomain.CoverageActive,
			Tier:          tier,
			ExcessAmount:  excess,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := u.Create(coverage.TableName(), coverage.ID.String(), &coverage, exportedCoverage(&coverage)); err != nil {
			return err
		}

		for _, m := range in.Members {
			var active int64
			if err := u.Tx().Model(&policydomain.PolicyMember{}).
				Where("policy_id = ? AND member_id = ? AND is_active = ?", policyID, m.MemberID, true).
				Count(&active).Error; err != nil {
				return err
			}
			if active > 0 {
				return domainerr.Validation("policy_member", "member_id", "member %s already active on policy", m.MemberID)
			}

			pm := policydomain.PolicyMember{
				ID:                    s.alloc.NewID(),
				PolicyID:              policyID,
				MemberID:              m.MemberID,
				MemberRole:            m.MemberRole,
				RelationshipToPrimary: m.RelationshipToPrimary,
				EffectiveDate:         app.RequestedStartDate,
				IsActive:              true,
				CreatedAt:             now,
				UpdatedAt:             now,
			}
			if err := u.Create(pm.TableName(), pm.ID.String(), &pm, exportedPolicyMember(&pm)); err != nil {
				return err
			}

			if err := s.createWaitingPeriods(u, &pm, &coverage, app.RequestedStartDate, now); err != nil {
				return err
			}
		}

		issued = policy
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("policy issued",
		zap.String("policy_id", policyID.String()),
		zap.String("policy_number", policyNumber),
		zap.Int("members", len(in.Members)),
	)
	return &issued, nil
}

func (s *Service) createWaitingPeriods(u *store.UnitOfWork, pm *policydomain.PolicyMember, coverage *policydomain.Coverage, startDate time.Time, now time.Time) error {
	if coverage.CoverageType != "Hospital" {
		return nil
	}
	for _, periodType := range waitingPeriodTypes {
		rule, err := s.catalog.WaitingPeriodRule(string(periodType))
		if err != nil {
			continue
		}
		wp := policydomain.WaitingPeriod{
			ID:                s.alloc.NewID(),
			PolicyMemberID:    pm.ID,
			CoverageID:        coverage.ID,
			WaitingPeriodType: periodType,
			StartDate:         startDate,
			EndDate:           startDate.AddDate(0, rule.DurationMonths, 0),
			DurationMonths:    rule.DurationMonths,
			Status:            policydomain.WaitInProgress,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := u.Create(wp.TableName(), wp.ID.String(), &wp, exportedWaitingPeriod(&wp)); err != nil {
			return err
		}
	}
	return nil
}

// SuspendInput starts a suspension.
type SuspendInput struct {
	PolicyID            uuid.UUID
	SuspensionType      string
	StartDate           time.Time
	ExpectedEndDate     *time.Time
	Reason              *string
	WaitingPeriodImpact bool
}

// Suspend moves an active policy to Suspended and opens the suspension
// record in the same unit.
func (s *Service) Suspend(ctx context.Context, in SuspendInput) (*policydomain.Suspension, error) {
	if in.SuspensionType == "" {
		return nil, domainerr.Validation("suspension", "suspension_type", "required")
	}
	if in.StartDate.IsZero() {
		return nil, domainerr.Validation("suspension", "start_date", "required")
	}

	now := s.clock.Now().UTC()
	suspension := policydomain.Suspension{
		ID:                  s.alloc.NewID(),
		PolicyID:            in.PolicyID,
		SuspensionType:      in.SuspensionType,
		StartDate:           in.StartDate,
		ExpectedEndDate:     in.ExpectedEndDate,
		Reason:              in.Reason,
		Status:              policydomain.SuspensionActive,
		MaxSuspensionDays:   policydomain.MaxSuspensionDays,
		WaitingPeriodImpact: in.WaitingPeriodImpact,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err := s.store.RunUnit(ctx, "policy.suspend", func(u *store.UnitOfWork) error {
		policy, err := s.transitionPolicy(u, in.PolicyID, policydomain.PolicySuspended, now)
		if err != nil {
			return err
		}

		var used int64
		if err := u.Tx().Model(&policydomain.Suspension{}).
			Where("policy_id = ?", in.PolicyID).
			Select("COALESCE(SUM(days_used), 0)").Scan(&used).Error; err != nil {
			return err
		}
		if int(used) >= policydomain.MaxSuspensionDays {
			return domainerr.Validation("suspension", "days_used", "policy %s exhausted its %d suspension days", policy.PolicyNumber, policydomain.MaxSuspensionDays)
		}

		return u.Create(suspension.TableName(), suspension.ID.String(), &suspension, exportedSuspension(&suspension))
	})
	if err != nil {
		return nil, err
	}
	return &suspension, nil
}

// Resume ends the open suspension, accumulates the days used, and moves
// the policy back to Active. When the suspension impacts waiting periods,
// every in-progress waiting period on the policy is pushed out by the
// suspended days.
func (s *Service) Resume(ctx context.Context, policyID uuid.UUID, actualEndDate time.Time) (*policydomain.Suspension, error) {
	if actualEndDate.IsZero() {
		return nil, domainerr.Validation("suspension", "actual_end_date", "required")
	}

	var resumed policydomain.Suspension
	now := s.clock.Now().UTC()
	err := s.store.RunUnit(ctx, "policy.resume", func(u *store.UnitOfWork) error {
		var susp policydomain.Suspension
		err := u.Tx().
			Where("policy_id = ? AND status = ?", policyID, policydomain.SuspensionActive).
			First(&susp).Error
		if err != nil {
			return domainerr.Validation("suspension", "policy_id", "no active suspension for policy %s", policyID)
		}
		if actualEndDate.Before(susp.StartDate) {
			return domainerr.Validation("suspension", "actual_end_date", "precedes suspension start")
		}

		days := int(actualEndDate.Sub(susp.StartDate).Hours() / 24)
		susp.ActualEndDate = &actualEndDate
		susp.DaysUsed += days
		susp.Status = policydomain.SuspensionEnded
		susp.UpdatedAt = now
		if err := u.Update(susp.TableName(), susp.ID.String(), &susp, exportedSuspension(&susp)); err != nil {
			return err
		}

		if _, err := s.transitionPolicy(u, policyID, policydomain.PolicyActive, now); err != nil {
			return err
		}

		if susp.WaitingPeriodImpact && days > 0 {
			var periods []policydomain.WaitingPeriod
			err := u.Tx().
				Select("waiting_periods.*").
				Joins("JOIN policy_members ON policy_members.policy_member_id = waiting_periods.policy_member_id").
				Where("policy_members.policy_id = ? AND waiting_periods.status = ?", policyID, policydomain.WaitInProgress).
				Find(&periods).Error
			if err != nil {
				return err
			}
			for i := range periods {
				wp := &periods[i]
				wp.EndDate = wp.EndDate.AddDate(0, 0, days)
				wp.UpdatedAt = now
				if err := u.Update(wp.TableName(), wp.ID.String(), wp, exportedWaitingPeriod(wp)); err != nil {
					return err
				}
			}
		}

		resumed = susp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resumed, nil
}

// Cancel terminates the policy. Reason is mandatory.
func (s *Service) Cancel(ctx context.Context, policyID uuid.UUID, reason string, endDate time.Time) (*policydomain.Policy, error) {
	if reason == "" {
		return nil, domainerr.Validation("policy", "cancellation_reason", "required")
	}
	return s.terminate(ctx, "policy.cancel", policyID, policydomain.PolicyCancelled, &reason, endDate)
}

// Lapse terminates the policy for non-payment.
func (s *Service) Lapse(ctx context.Context, policyID uuid.UUID, endDate time.Time) (*policydomain.Policy, error) {
	return s.terminate(ctx, "policy.lapse", policyID, policydomain.PolicyLapsed, nil, endDate)
}

func (s *Service) terminate(ctx context.Context, unit string, policyID uuid.UUID, status policydomain.PolicyStatus, reason *string, endDate time.Time) (*policydomain.Policy, error) {
	if endDate.IsZero() {
		return nil, domainerr.Validation("policy", "end_date", "required")
	}

	var terminated policydomain.Policy
	now := s.clock.Now().UTC()
	err := s.store.RunUnit(ctx, unit, func(u *store.UnitOfWork) error {
		policy, err := s.loadPolicy(u, policyID)
		if err != nil {
			return err
		}
		if !policydomain.CanTransition(policy.PolicyStatus, status) {
			return domainerr.Validation("policy", "policy_status", "cannot move %s to %s", policy.PolicyStatus, status)
		}

		policy.PolicyStatus = status
		policy.EndDate = &endDate
		policy.CancellationReason = reason
		policy.UpdatedAt = now
		if err := u.Update(policy.TableName(), policy.ID.String(), policy, exportedPolicy(policy)); err != nil {
			return err
		}

		var coverages []policydomain.Coverage
		if err := u.Tx().Where("policy_id = ? AND status = ?", policyID, policydomain.CoverageActive).Find(&coverages).Error; err != nil {
			return err
		}
		for i := range coverages {
			c := &coverages[i]
			c.Status = policydomain.CoverageEnded
			c.EndDate = &endDate
			c.UpdatedAt = now
			if err := u.Update(c.TableName(), c.ID.String(), c, exportedCoverage(c)); err != nil {
				return err
			}
		}

		terminated = *policy
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &terminated, nil
}

// CancelCoverage ends a single coverage line, leaving the policy and any
// other coverage in force.
func (s *Service) CancelCoverage(ctx context.Context, coverageID uuid.UUID, endDate time.Time) (*policydomain.Coverage, error) {
	if endDate.IsZero() {
		return nil, domainerr.Validation("coverage", "end_date", "required")
	}

	var cancelled policydomain.Coverage
	now := s.clock.Now().UTC()
	err := s.store.RunUnit(ctx, "coverage.cancel", func(u *store.UnitOfWork) error {
		var c policydomain.Coverage
		if err := u.Tx().First(&c, "coverage_id = ?", coverageID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "coverage", ID: coverageID.String()}
		}
		if c.Status != policydomain.CoverageActive {
			return domainerr.Validation("coverage", "status", "coverage is %s, not Active", c.Status)
		}

		c.Status = policydomain.CoverageCancelled
		c.EndDate = &endDate
		c.UpdatedAt = now
		if err := u.Update(c.TableName(), c.ID.String(), &c, exportedCoverage(&c)); err != nil {
			return err
		}
		cancelled = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cancelled, nil
}

// UpgradeInput requests a product change on a policy.
type UpgradeInput struct {
	PolicyID               uuid.UUID
	RequestType            string
	RequestedProductID     int
	RequestedExcess        *decimal.Decimal
	RequestedEffectiveDate time.Time
	Reason                 *string
}

// RequestUpgrade records a product change request against an active
// policy.
func (s *Service) RequestUpgrade(ctx context.Context, in UpgradeInput) (*policydomain.UpgradeRequest, error) {
	if in.RequestedEffectiveDate.IsZero() {
		return nil, domainerr.Validation("upgrade_request", "requested_effective_date", "required")
	}
	if _, err := s.catalog.Product(in.RequestedProductID); err != nil {
		return nil, err
	}

	var request policydomain.UpgradeRequest
	now := s.clock.Now().UTC()
	err := s.store.RunUnit(ctx, "policy.upgrade_request", func(u *store.UnitOfWork) error {
		policy, err := s.loadPolicy(u, in.PolicyID)
		if err != nil {
			return err
		}
		if policy.PolicyStatus != policydomain.PolicyActive {
			return domainerr.Validation("upgrade_request", "policy_id", "policy is %s, not Active", policy.PolicyStatus)
		}

		request = policydomain.UpgradeRequest{
			ID:                     s.alloc.NewID(),
			PolicyID:               in.PolicyID,
			RequestType:            in.RequestType,
			CurrentProductID:       policy.ProductID,
			RequestedProductID:     in.RequestedProductID,
			CurrentExcess:          policy.ExcessAmount,
			RequestedExcess:        in.RequestedExcess,
			RequestedEffectiveDate: in.RequestedEffectiveDate,
			RequestReason:          in.Reason,
			RequestStatus:          "Approved",
			SubmissionDate:         now,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		return u.Create(request.TableName(), request.ID.String(), &request, exportedUpgradeRequest(&request))
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (s *Service) loadPolicy(u *store.UnitOfWork, policyID uuid.UUID) (*policydomain.Policy, error) {
	var policy policydomain.Policy
	if err := u.Tx().First(&policy, "policy_id = ?", policyID).Error; err != nil {
		return nil, &domainerr.ReferenceMissError{Kind: "policy", ID: policyID.String()}
	}
	return &policy, nil
}

func (s *Service) transitionPolicy(u *store.UnitOfWork, policyID uuid.UUID, to policydomain.PolicyStatus, now time.Time) (*policydomain.Policy, error) {
	policy, err := s.loadPolicy(u, policyID)
	if err != nil {
		return nil, err
	}
	if !policydomain.CanTransition(policy.PolicyStatus, to) {
		return nil, domainerr.Validation("policy", "policy_status", "cannot move %s to %s", policy.PolicyStatus, to)
	}
	policy.PolicyStatus = to
	policy.UpdatedAt = now
	if err := u.Update(policy.TableName(), policy.ID.String(), policy, exportedPolicy(policy)); err != nil {
		return nil, err
	}
	return policy, nil
}

func exportedApplication(a *policydomain.Application) map[string]any {
	return map[string]any{
		"application_id":       a.ID,
		"application_number":   a.ApplicationNumber,
		"application_type":     string(a.ApplicationType),
		"application_status":   string(a.ApplicationStatus),
		"product_id":           a.ProductID,
		"requested_start_date": export.NewDate(a.RequestedStartDate),
		"channel":              string(a.Channel),
		"submission_date":      a.SubmissionDate,
		"state":                a.State,
	}
}

func exportedApplicationMember(m *policydomain.ApplicationMember) map[string]any {
	return map[string]any{
		"application_member_id": m.ID,
		"application_id":        m.ApplicationID,
		"member_role":           string(m.MemberRole),
		"first_name":            m.FirstName,
		"last_name":             m.LastName,
		"date_of_birth":         export.NewDate(m.DateOfBirth),
		"gender":                m.Gender,
	}
}

func exportedDeclaration(d *policydomain.HealthDeclaration) map[string]any {
	return map[string]any{
		"health_declaration_id": d.ID,
		"application_member_id": d.ApplicationMemberID,
		"application_id":        d.ApplicationID,
		"question_code":         d.QuestionCode,
		"response":              d.Response,
		"declaration_date":      d.DeclarationDate,
	}
}

func exportedPolicy(p *policydomain.Policy) map[string]any {
	return map[string]any{
		"policy_id":            p.ID,
		"policy_number":        p.PolicyNumber,
		"application_id":       p.ApplicationID,
		"product_id":           p.ProductID,
		"policy_status":        string(p.PolicyStatus),
		"policy_type":          string(p.PolicyType),
		"effective_date":       export.NewDate(p.EffectiveDate),
		"end_date":             dateOrNil(p.EndDate),
		"premium_amount":       p.PremiumAmount,
		"excess_amount":        p.ExcessAmount,
		"distribution_channel": string(p.DistributionChannel),
		"state_of_residence":   p.StateOfResidence,
		"original_join_date":   export.NewDate(p.OriginalJoinDate),
	}
}

func exportedPolicyMember(pm *policydomain.PolicyMember) map[string]any {
	return map[string]any{
		"policy_member_id":        pm.ID,
		"policy_id":               pm.PolicyID,
		"member_id":               pm.MemberID,
		"member_role":             string(pm.MemberRole),
		"relationship_to_primary": string(pm.RelationshipToPrimary),
		"effective_date":          export.NewDate(pm.EffectiveDate),
		"end_date":                dateOrNil(pm.EndDate),
		"is_active":               pm.IsActive,
	}
}

func exportedCoverage(c *policydomain.Coverage) map[string]any {
	return map[string]any{
		"coverage_id":    c.ID,
		"policy_id":      c.PolicyID,
		"coverage_type":  c.CoverageType,
		"product_id":     c.ProductID,
		"effective_date": export.NewDate(c.EffectiveDate),
		"end_date":       dateOrNil(c.EndDate),
		"status":         string(c.Status),
		"tier":           c.Tier,
		"excess_amount":  c.ExcessAmount,
	}
}

func exportedWaitingPeriod(wp *policydomain.WaitingPeriod) map[string]any {
	return map[string]any{
		"waiting_period_id":   wp.ID,
		"policy_member_id":    wp.PolicyMemberID,
		"coverage_id":         wp.CoverageID,
		"waiting_period_type": string(wp.WaitingPeriodType),
		"start_date":          export.NewDate(wp.StartDate),
		"end_date":            export.NewDate(wp.EndDate),
		"duration_months":     wp.DurationMonths,
		"status":              string(wp.Status),
	}
}

func exportedSuspension(sp *policydomain.Suspension) map[string]any {
	return map[string]any{
		"suspension_id":         sp.ID,
		"policy_id":             sp.PolicyID,
		"suspension_type":       sp.SuspensionType,
		"start_date":            export.NewDate(sp.StartDate),
		"expected_end_date":     dateOrNil(sp.ExpectedEndDate),
		"actual_end_date":       dateOrNil(sp.ActualEndDate),
		"status":                string(sp.Status),
		"days_used":             sp.DaysUsed,
		"waiting_period_impact": sp.WaitingPeriodImpact,
	}
}

func exportedUpgradeRequest(r *policydomain.UpgradeRequest) map[string]any {
	return map[string]any{
		"upgrade_request_id":       r.ID,
		"policy_id":                r.PolicyID,
		"request_type":             r.RequestType,
		"current_product_id":       r.CurrentProductID,
		"requested_product_id":     r.RequestedProductID,
		"requested_effective_date": export.NewDate(r.RequestedEffectiveDate),
		"request_status":           r.RequestStatus,
		"submission_date":          r.SubmissionDate,
	}
}

func dateOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return export.NewDate(*t)
}
