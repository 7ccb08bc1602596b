package service

import (
	"context"
	"testing"
	"time"

	"github.com/brickwell/healthcore/internal/domainerr"
	policydomain "github.com/brickwell/healthcore/internal/policy/domain"
	"github.com/brickwell/healthcore/internal/reference"
	refdomain "github.com/brickwell/healthcore/internal/reference/domain"
	"github.com/brickwell/healthcore/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCatalog() *reference.Catalog {
	gold := refdomain.TierGold
	return reference.NewCatalog(reference.Data{
		Products: []refdomain.Product{
			{
				ID:             10,
				ProductCode:    "HOS-GOLD-500",
				ProductName:    "Gold Hospital $500 Excess",
				CoverageType:   refdomain.CoverageHospital,
				Tier:           &gold,
				MonthlyPremium: decimal.RequireFromString("289.50"),
				ExcessAmount:   decimal.RequireFromString("500.00"),
				IsActive:       true,
			},
			{
				ID:             20,
				ProductCode:    "EXT-TOP-60",
				ProductName:    "Top Extras 60%",
				CoverageType:   refdomain.CoverageExtras,
				MonthlyPremium: decimal.RequireFromString("64.20"),
				IsActive:       true,
			},
		},
		WaitingPeriodRules: []refdomain.WaitingPeriodRule{
			{ID: 1, PeriodType: "General", DurationMonths: 2},
			{ID: 2, PeriodType: "Pre-existing", DurationMonths: 12},
			{ID: 3, PeriodType: "Obstetric", DurationMonths: 12},
			{ID: 4, PeriodType: "Psychiatric", DurationMonths: 2},
		},
	})
}

func newTestService(t *testing.T) (*Service, *storetest.Harness) {
	t.Helper()
	h := storetest.New(t, []any{
		&policydomain.Application{},
		&policydomain.ApplicationMember{},
		&policydomain.HealthDeclaration{},
		&policydomain.Policy{},
		&policydomain.PolicyMember{},
		&policydomain.Coverage{},
		&policydomain.WaitingPeriod{},
		&policydomain.Suspension{},
		&policydomain.UpgradeRequest{},
	})
	svc := NewService(Params{
		Store:   h.Store,
		Alloc:   h.Alloc,
		Catalog: testCatalog(),
		Clock:   h.Clock,
		Log:     zap.NewNop(),
	})
	return svc, h
}

func submitTestApplication(t *testing.T, svc *Service, startDate time.Time) *policydomain.Application {
	t.Helper()
	app, err := svc.SubmitApplication(context.Background(), SubmitApplicationInput{
		ProductID:           10,
		RequestedPolicyType: policydomain.PolicySingle,
		RequestedStartDate:  startDate,
		Channel:             policydomain.ChannelOnline,
		State:               "NSW",
		Applicants: []ApplicantInput{
			{
				MemberRole:  policydomain.RolePrimary,
				FirstName:   "Tessa",
				LastName:    "Marsh",
				DateOfBirth: time.Date(1990, time.June, 2, 0, 0, 0, 0, time.UTC),
				Gender:      "Female",
				Declarations: []DeclarationInput{
					{QuestionCode: "Q1", QuestionText: "Any pre-existing conditions?", Response: "No"},
				},
			},
		},
	})
	require.NoError(t, err)
	return app
}

func approveAndIssue(t *testing.T, svc *Service, app *policydomain.Application, memberID uuid.UUID) *policydomain.Policy {
	t.Helper()
	_, err := svc.DecideApplication(context.Background(), app.ID, policydomain.ApplicationApproved, "underwriting", nil)
	require.NoError(t, err)

	policy, err := svc.IssuePolicy(context.Background(), IssuePolicyInput{
		ApplicationID: app.ID,
		Members: []PolicyMemberInput{
			{MemberID: memberID, MemberRole: policydomain.RolePrimary, RelationshipToPrimary: policydomain.RelationshipSelf},
		},
	})
	require.NoError(t, err)
	return policy
}

func TestSubmitApplication_RequiresOnePrimary(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SubmitApplication(context.Background(), SubmitApplicationInput{
		ProductID:           10,
		RequestedPolicyType: policydomain.PolicySingle,
		RequestedStartDate:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Channel:             policydomain.ChannelOnline,
		State:               "NSW",
		Applicants: []ApplicantInput{
			{MemberRole: policydomain.RoleDependent, FirstName: "A", LastName: "B",
				DateOfBirth: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), Gender: "Male"},
		},
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestSubmitApplication_UnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	in := SubmitApplicationInput{
		ProductID:           999,
		RequestedPolicyType: policydomain.PolicySingle,
		RequestedStartDate:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Channel:             policydomain.ChannelOnline,
		State:               "NSW",
		Applicants: []ApplicantInput{
			{MemberRole: policydomain.RolePrimary, FirstName: "A", LastName: "B",
				DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), Gender: "Male"},
		},
	}
	_, err := svc.SubmitApplication(context.Background(), in)
	assert.True(t, domainerr.IsValidation(err))
}

func TestIssuePolicy_WaitingPeriodDates(t *testing.T) {
	svc, h := newTestService(t)

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	app := submitTestApplication(t, svc, start)
	policy := approveAndIssue(t, svc, app, uuid.New())

	assert.Equal(t, "POL-W0-2024-000001", policy.PolicyNumber)
	assert.Equal(t, start, policy.EffectiveDate.UTC())
	assert.True(t, policy.PremiumAmount.Equal(decimal.RequireFromString("289.50")))

	var coverages []policydomain.Coverage
	require.NoError(t, h.DB.Find(&coverages).Error)
	require.Len(t, coverages, 1)
	assert.Equal(t, start, coverages[0].EffectiveDate.UTC())
	require.NotNil(t, coverages[0].Tier)
	assert.Equal(t, "Gold", *coverages[0].Tier)

	var periods []policydomain.WaitingPeriod
	require.NoError(t, h.DB.Order("duration_months ASC").Find(&periods).Error)
	require.Len(t, periods, 4)

	byType := map[policydomain.WaitingPeriodType]policydomain.WaitingPeriod{}
	for _, wp := range periods {
		byType[wp.WaitingPeriodType] = wp
	}

	pre := byType[policydomain.WaitPreExisting]
	assert.Equal(t, 12, pre.DurationMonths)
	assert.Equal(t, start, pre.StartDate.UTC())
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), pre.EndDate.UTC())

	general := byType[policydomain.WaitGeneral]
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), general.EndDate.UTC())
}

func TestIssuePolicy_RequiresApprovedApplication(t *testing.T) {
	svc, _ := newTestService(t)

	app := submitTestApplication(t, svc, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	_, err := svc.IssuePolicy(context.Background(), IssuePolicyInput{
		ApplicationID: app.ID,
		Members: []PolicyMemberInput{
			{MemberID: uuid.New(), MemberRole: policydomain.RolePrimary, RelationshipToPrimary: policydomain.RelationshipSelf},
		},
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestIssuePolicy_RejectsDuplicateActiveMember(t *testing.T) {
	svc, _ := newTestService(t)

	app := submitTestApplication(t, svc, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	_, err := svc.DecideApplication(context.Background(), app.ID, policydomain.ApplicationApproved, "underwriting", nil)
	require.NoError(t, err)

	memberID := uuid.New()
	_, err = svc.IssuePolicy(context.Background(), IssuePolicyInput{
		ApplicationID: app.ID,
		Members: []PolicyMemberInput{
			{MemberID: memberID, MemberRole: policydomain.RolePrimary, RelationshipToPrimary: policydomain.RelationshipSelf},
			{MemberID: memberID, MemberRole: policydomain.RolePartner, RelationshipToPrimary: policydomain.RelationshipSpouse},
		},
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestDecideApplication_TerminalStates(t *testing.T) {
	svc, _ := newTestService(t)

	app := submitTestApplication(t, svc, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))

	reason := "failed underwriting"
	decided, err := svc.DecideApplication(context.Background(), app.ID, policydomain.ApplicationDeclined, "underwriting", &reason)
	require.NoError(t, err)
	assert.Equal(t, policydomain.ApplicationDeclined, decided.ApplicationStatus)

	_, err = svc.DecideApplication(context.Background(), app.ID, policydomain.ApplicationApproved, "underwriting", nil)
	assert.True(t, domainerr.IsValidation(err))
}

func TestSuspendAndResume(t *testing.T) {
	svc, h := newTestService(t)

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	app := submitTestApplication(t, svc, start)
	policy := approveAndIssue(t, svc, app, uuid.New())

	suspStart := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	susp, err := svc.Suspend(context.Background(), SuspendInput{
		PolicyID:            policy.ID,
		SuspensionType:      "Overseas Travel",
		StartDate:           suspStart,
		WaitingPeriodImpact: true,
	})
	require.NoError(t, err)
	assert.Equal(t, policydomain.SuspensionActive, susp.Status)

	var reloaded policydomain.Policy
	require.NoError(t, h.DB.First(&reloaded, "policy_id = ?", policy.ID).Error)
	assert.Equal(t, policydomain.PolicySuspended, reloaded.PolicyStatus)

	// a second suspension while suspended is an invalid transition
	_, err = svc.Suspend(context.Background(), SuspendInput{
		PolicyID:       policy.ID,
		SuspensionType: "Other",
		StartDate:      suspStart.AddDate(0, 1, 0),
	})
	assert.True(t, domainerr.IsValidation(err))

	resumeDate := suspStart.AddDate(0, 0, 30)
	ended, err := svc.Resume(context.Background(), policy.ID, resumeDate)
	require.NoError(t, err)
	assert.Equal(t, 30, ended.DaysUsed)
	assert.Equal(t, policydomain.SuspensionEnded, ended.Status)

	require.NoError(t, h.DB.First(&reloaded, "policy_id = ?", policy.ID).Error)
	assert.Equal(t, policydomain.PolicyActive, reloaded.PolicyStatus)

	// waiting periods pushed out by the suspended days
	var pre policydomain.WaitingPeriod
	require.NoError(t, h.DB.First(&pre, "waiting_period_type = ?", policydomain.WaitPreExisting).Error)
	assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), pre.EndDate.UTC())
}

func TestCancel_TerminalAndCoverageEnded(t *testing.T) {
	svc, h := newTestService(t)

	app := submitTestApplication(t, svc, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	policy := approveAndIssue(t, svc, app, uuid.New())

	endDate := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	cancelled, err := svc.Cancel(context.Background(), policy.ID, "Switching", endDate)
	require.NoError(t, err)
	assert.Equal(t, policydomain.PolicyCancelled, cancelled.PolicyStatus)
	require.NotNil(t, cancelled.EndDate)

	var coverages []policydomain.Coverage
	require.NoError(t, h.DB.Find(&coverages).Error)
	require.Len(t, coverages, 1)
	assert.Equal(t, policydomain.CoverageEnded, coverages[0].Status)

	// cancelled is terminal
	_, err = svc.Suspend(context.Background(), SuspendInput{
		PolicyID:       policy.ID,
		SuspensionType: "Other",
		StartDate:      endDate,
	})
	assert.True(t, domainerr.IsValidation(err))

	_, err = svc.Lapse(context.Background(), policy.ID, endDate)
	assert.True(t, domainerr.IsValidation(err))
}

func TestCancelCoverage_LeavesPolicyActive(t *testing.T) {
	svc, h := newTestService(t)

	app := submitTestApplication(t, svc, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	policy := approveAndIssue(t, svc, app, uuid.New())

	var coverage policydomain.Coverage
	require.NoError(t, h.DB.First(&coverage, "policy_id = ?", policy.ID).Error)

	endDate := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	cancelled, err := svc.CancelCoverage(context.Background(), coverage.ID, endDate)
	require.NoError(t, err)
	assert.Equal(t, policydomain.CoverageCancelled, cancelled.Status)

	var reloaded policydomain.Policy
	require.NoError(t, h.DB.First(&reloaded, "policy_id = ?", policy.ID).Error)
	assert.Equal(t, policydomain.PolicyActive, reloaded.PolicyStatus)
}

func TestRequestUpgrade(t *testing.T) {
	svc, _ := newTestService(t)

	app := submitTestApplication(t, svc, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	policy := approveAndIssue(t, svc, app, uuid.New())

	req, err := svc.RequestUpgrade(context.Background(), UpgradeInput{
		PolicyID:               policy.ID,
		RequestType:            "Downgrade",
		RequestedProductID:     20,
		RequestedEffectiveDate: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, req.CurrentProductID)
	assert.Equal(t, 20, req.RequestedProductID)

	_, err = svc.RequestUpgrade(context.Background(), UpgradeInput{
		PolicyID:               policy.ID,
		RequestType:            "Upgrade",
		RequestedProductID:     404,
		RequestedEffectiveDate: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, domainerr.IsValidation(err))
}
