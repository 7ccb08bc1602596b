package service

import (
	"context"
	"testing"
	"time"

	claimsdomain "github.com/brickwell/healthcore/internal/claims/domain"
	"github.com/brickwell/healthcore/internal/domainerr"
	engdomain "github.com/brickwell/healthcore/internal/engagement/domain"
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
		&engdomain.Interaction{},
		&engdomain.ServiceCase{},
		&engdomain.Complaint{},
		&engdomain.CommunicationPreference{},
		&engdomain.Campaign{},
		&engdomain.Communication{},
		&engdomain.CampaignResponse{},
		&engdomain.WebSession{},
		&engdomain.DigitalEvent{},
		&engdomain.NPSSurveyPending{},
		&engdomain.NPSSurvey{},
		&engdomain.CSATSurveyPending{},
		&engdomain.CSATSurvey{},
		&engdomain.NBAActionCatalog{},
		&engdomain.NBARecommendation{},
		&engdomain.NBAExecution{},
		&claimsdomain.Claim{},
	})
	svc := NewService(Params{Store: h.Store, Alloc: h.Alloc, Clock: h.Clock, Log: zap.NewNop()})
	return svc, h
}

func seedClaim(t *testing.T, h *storetest.Harness) *claimsdomain.Claim {
	t.Helper()
	claim := &claimsdomain.Claim{
		ID:            uuid.New(),
		ClaimNumber:   "CLM-W9-2024-00000001",
		PolicyID:      uuid.New(),
		MemberID:      uuid.New(),
		CoverageID:    uuid.New(),
		ClaimType:     claimsdomain.ClaimExtras,
		ClaimStatus:   claimsdomain.ClaimSubmitted,
		ServiceDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		LodgementDate: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		TotalCharge:   decimal.RequireFromString("120.00"),
		ClaimChannel:  claimsdomain.ChannelOnline,
		CreatedAt:     time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, h.DB.Create(claim).Error)
	return claim
}

func TestLogInteraction_TriggerPairResolves(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()
	claim := seedClaim(t, h)

	trigger := engdomain.TriggerClaimSubmitted
	row, err := svc.LogInteraction(ctx, LogInteractionInput{
		PolicyID:         claim.PolicyID,
		MemberID:         claim.MemberID,
		Channel:          engdomain.ChannelPhone,
		Direction:        engdomain.DirectionInbound,
		StartDatetime:    time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC),
		TriggerEventType: &trigger,
		TriggerEventID:   &claim.ID,
		CreatedBy:        "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "INT-W0-2024-00000001", row.InteractionReference)

	// The same pair against a row that does not exist is a miss.
	missing := uuid.New()
	_, err = svc.LogInteraction(ctx, LogInteractionInput{
		PolicyID:         claim.PolicyID,
		MemberID:         claim.MemberID,
		Channel:          engdomain.ChannelPhone,
		Direction:        engdomain.DirectionInbound,
		StartDatetime:    time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC),
		TriggerEventType: &trigger,
		TriggerEventID:   &missing,
		CreatedBy:        "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestLogInteraction_TriggerPairMustBeWhole(t *testing.T) {
	svc, _ := newTestService(t)

	trigger := engdomain.TriggerClaimPaid
	_, err := svc.LogInteraction(context.Background(), LogInteractionInput{
		PolicyID:         uuid.New(),
		MemberID:         uuid.New(),
		Channel:          engdomain.ChannelChat,
		Direction:        engdomain.DirectionInbound,
		StartDatetime:    time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC),
		TriggerEventType: &trigger,
		CreatedBy:        "test",
	})
	assert.True(t, domainerr.IsValidation(err))

	id := uuid.New()
	_, err = svc.LogInteraction(context.Background(), LogInteractionInput{
		PolicyID:       uuid.New(),
		MemberID:       uuid.New(),
		Channel:        engdomain.ChannelChat,
		Direction:      engdomain.DirectionInbound,
		StartDatetime:  time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC),
		TriggerEventID: &id,
		CreatedBy:      "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestCaseLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	due := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	c, err := svc.OpenCase(ctx, OpenCaseInput{
		CaseTypeID: 3,
		PolicyID:   uuid.New(),
		MemberID:   uuid.New(),
		Subject:    "Premium query",
		Priority:   engdomain.PriorityMedium,
		DueDate:    &due,
		CreatedBy:  "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "CSE-W0-2024-000001", c.CaseNumber)
	assert.Equal(t, engdomain.CaseOpen, c.Status)

	resolved, err := svc.ResolveCase(ctx, c.ID, time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC), "Explained premium change", "agent-7")
	require.NoError(t, err)
	assert.Equal(t, engdomain.CaseResolved, resolved.Status)
	assert.True(t, resolved.SLABreached)

	_, err = svc.ResolveCase(ctx, c.ID, time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC), "again", "agent-7")
	assert.True(t, domainerr.IsValidation(err))
}

func TestComplaintLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.LodgeComplaint(ctx, LodgeComplaintInput{
		PolicyID:            uuid.New(),
		MemberID:            uuid.New(),
		ComplaintCategoryID: 2,
		Subject:             "Claim processing delay",
		Severity:            engdomain.SeverityHigh,
		Source:              "Phone",
		ReceivedDate:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		DueDate:             time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		CreatedBy:           "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "CPL-W0-2024-000001", c.ComplaintNumber)

	compensation := decimal.RequireFromString("150.00")
	resolved, err := svc.ResolveComplaint(ctx, ResolveComplaintInput{
		ComplaintID:        c.ID,
		ResolutionDate:     time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC),
		Summary:            "Benefit reprocessed and goodwill payment made",
		Outcome:            "Upheld",
		CompensationAmount: &compensation,
		ResolvedBy:         "agent-3",
	})
	require.NoError(t, err)
	assert.Equal(t, engdomain.ComplaintResolved, resolved.Status)
	require.NotNil(t, resolved.CompensationAmount)

	_, err = svc.ResolveComplaint(ctx, ResolveComplaintInput{
		ComplaintID:    c.ID,
		ResolutionDate: time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC),
		Summary:        "again",
		Outcome:        "Upheld",
		ResolvedBy:     "agent-3",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestSetPreference_UpsertsPerMemberTypeChannel(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	memberID := uuid.New()
	in := SetPreferenceInput{
		MemberID:       memberID,
		PolicyID:       uuid.New(),
		PreferenceType: "Marketing",
		Channel:        "Email",
		OptedIn:        true,
		EffectiveDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:      "test",
	}
	first, err := svc.SetPreference(ctx, in)
	require.NoError(t, err)
	assert.True(t, first.IsOptedIn)
	require.NotNil(t, first.OptInDate)

	in.OptedIn = false
	in.EffectiveDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	second, err := svc.SetPreference(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsOptedIn)
	require.NotNil(t, second.OptOutDate)

	var count int64
	require.NoError(t, h.DB.Model(&engdomain.CommunicationPreference{}).Where("member_id = ?", memberID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCampaignCountersTrackSendsAndResponses(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	campaign, err := svc.CreateCampaign(ctx, CreateCampaignInput{
		CampaignName: "Winter retention",
		CampaignType: "Retention",
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:    "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "CAM-W0-2024-000001", campaign.CampaignCode)

	comm, err := svc.SendCommunication(ctx, SendCommunicationInput{
		PolicyID:          uuid.New(),
		MemberID:          uuid.New(),
		CampaignID:        &campaign.ID,
		CommunicationType: "Email",
		SentDate:          time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
		CreatedBy:         "test",
	})
	require.NoError(t, err)
	assert.Equal(t, engdomain.DeliverySent, comm.DeliveryStatus)

	conversion := "Upgrade"
	_, err = svc.RecordCampaignResponse(ctx, RecordCampaignResponseInput{
		CampaignID:      campaign.ID,
		MemberID:        comm.MemberID,
		PolicyID:        comm.PolicyID,
		CommunicationID: &comm.ID,
		ResponseType:    "Clicked",
		ResponseDate:    time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC),
		ConversionType:  &conversion,
		CreatedBy:       "test",
	})
	require.NoError(t, err)

	var reloaded engdomain.Campaign
	require.NoError(t, h.DB.First(&reloaded, "campaign_id = ?", campaign.ID).Error)
	assert.Equal(t, 1, reloaded.CommunicationsSent)
	assert.Equal(t, 1, reloaded.ResponsesReceived)
	assert.Equal(t, 1, reloaded.Conversions)

	_, err = svc.RecordCampaignResponse(ctx, RecordCampaignResponseInput{
		CampaignID:   uuid.New(),
		MemberID:     uuid.New(),
		PolicyID:     uuid.New(),
		ResponseType: "Opened",
		ResponseDate: time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC),
		CreatedBy:    "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestWebSessionEventsRollUp(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	start := time.Date(2024, 2, 1, 19, 0, 0, 0, time.UTC)
	session, err := svc.StartSession(ctx, StartSessionInput{
		MemberID:        uuid.New(),
		SessionStart:    start,
		IsAuthenticated: true,
		CreatedBy:       "test",
	})
	require.NoError(t, err)

	cancelPage := "Cancel"
	_, err = svc.RecordEvent(ctx, RecordEventInput{
		SessionID:      session.ID,
		EventTimestamp: start.Add(2 * time.Minute),
		EventType:      "PageView",
		PageCategory:   &cancelPage,
		CreatedBy:      "test",
	})
	require.NoError(t, err)

	_, err = svc.RecordEvent(ctx, RecordEventInput{
		SessionID:      session.ID,
		EventTimestamp: start.Add(3 * time.Minute),
		EventType:      "ButtonClick",
		CreatedBy:      "test",
	})
	require.NoError(t, err)

	ended, err := svc.EndSession(ctx, session.ID, start.Add(10*time.Minute), nil)
	require.NoError(t, err)
	require.NotNil(t, ended.DurationSeconds)
	assert.Equal(t, 600, *ended.DurationSeconds)
	assert.Equal(t, 2, ended.EventCount)
	assert.Equal(t, 1, ended.PageCount)
	assert.True(t, ended.ViewedCancelPage)

	// Events cannot land after the session ended.
	_, err = svc.RecordEvent(ctx, RecordEventInput{
		SessionID:      session.ID,
		EventTimestamp: start.Add(20 * time.Minute),
		EventType:      "PageView",
		CreatedBy:      "test",
	})
	assert.True(t, domainerr.IsValidation(err))

	var stored engdomain.WebSession
	require.NoError(t, h.DB.First(&stored, "session_id = ?", session.ID).Error)
	require.NotNil(t, stored.SessionEnd)
}

func TestRecordEvent_BeforeSessionStart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	start := time.Date(2024, 2, 1, 19, 0, 0, 0, time.UTC)
	session, err := svc.StartSession(ctx, StartSessionInput{
		MemberID:     uuid.New(),
		SessionStart: start,
		CreatedBy:    "test",
	})
	require.NoError(t, err)

	_, err = svc.RecordEvent(ctx, RecordEventInput{
		SessionID:      session.ID,
		EventTimestamp: start.Add(-time.Minute),
		EventType:      "PageView",
		CreatedBy:      "test",
	})
	assert.True(t, domainerr.IsValidation(err))
}
