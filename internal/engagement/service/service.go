package service

import (
	"context"
	"time"

	"github.com/brickwell/healthcore/internal/allocator"
	"github.com/brickwell/healthcore/internal/clock"
	"github.com/brickwell/healthcore/internal/domainerr"
	engdomain "github.com/brickwell/healthcore/internal/engagement/domain"
	"github.com/brickwell/healthcore/internal/export"
	"github.com/brickwell/healthcore/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var one = decimal.NewFromInt(1)

type Params struct {
	fx.In

	Store *store.Store
	Alloc *allocator.Allocator
	Clock clock.Clock
	Log   *zap.Logger
}

// Service owns CRM, communication, digital, survey and
// next-best-action writes.
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
		log:   p.Log.Named("engagement.service"),
	}
}

// checkTrigger verifies a nullable trigger pair. Either both parts are
// nil, or the id resolves to a real row in the family the type names.
func checkTrigger(u *store.UnitOfWork, entity string, eventType *engdomain.TriggerEventType, eventID *uuid.UUID) error {
	if eventType == nil && eventID == nil {
		return nil
	}
	if eventType == nil || eventID == nil {
		return domainerr.Validation(entity, "trigger_event", "trigger type and id must be set together")
	}
	target, ok := eventType.Target()
	if !ok {
		return domainerr.Validation(entity, "trigger_event_type", "unknown trigger type %q", *eventType)
	}
	var count int64
	if err := u.Tx().Table(target.Table).Where(target.IDColumn+" = ?", *eventID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &domainerr.ReferenceMissError{Kind: target.Table, ID: eventID.String()}
	}
	return nil
}

// LogInteractionInput records one member contact.
type LogInteractionInput struct {
	PolicyID          uuid.UUID
	MemberID          uuid.UUID
	InteractionTypeID int
	Channel           engdomain.InteractionChannel
	Direction         engdomain.InteractionDirection
	StartDatetime     time.Time
	EndDatetime       *time.Time
	Subject           *string
	Summary           *string
	HandledBy         *string
	QueueName         *string
	WaitTimeSeconds   *int
	FirstContactRes   bool
	SatisfactionScore *int
	TriggerEventType  *engdomain.TriggerEventType
	TriggerEventID    *uuid.UUID
	CaseID            *uuid.UUID
	ClaimID           *uuid.UUID
	InvoiceID         *uuid.UUID
	CreatedBy         string
}

func (s *Service) LogInteraction(ctx context.Context, in LogInteractionInput) (*engdomain.Interaction, error) {
	switch in.Channel {
	case engdomain.ChannelPhone, engdomain.ChannelEmail, engdomain.ChannelChat,
		engdomain.ChannelBranch, engdomain.ChannelWeb:
	default:
		return nil, domainerr.Validation("interaction", "channel", "unknown channel %q", in.Channel)
	}
	switch in.Direction {
	case engdomain.DirectionInbound, engdomain.DirectionOutbound:
	default:
		return nil, domainerr.Validation("interaction", "direction", "unknown direction %q", in.Direction)
	}
	if in.StartDatetime.IsZero() {
		return nil, domainerr.Validation("interaction", "start_datetime", "required")
	}
	if in.EndDatetime != nil && in.EndDatetime.Before(in.StartDatetime) {
		return nil, domainerr.Validation("interaction", "end_datetime", "precedes start")
	}
	if in.SatisfactionScore != nil && (*in.SatisfactionScore < 1 || *in.SatisfactionScore > 5) {
		return nil, domainerr.Validation("interaction", "satisfaction_score", "must be between 1 and 5")
	}

	id, reference, err := s.alloc.Allocate(allocator.KindInteraction)
	if err != nil {
		return nil, err
	}
	row := &engdomain.Interaction{
		ID:                     id,
		InteractionReference:   reference,
		PolicyID:               in.PolicyID,
		MemberID:               in.MemberID,
		InteractionTypeID:      in.InteractionTypeID,
		Channel:                in.Channel,
		Direction:              in.Direction,
		StartDatetime:          in.StartDatetime,
		EndDatetime:            in.EndDatetime,
		Subject:                in.Subject,
		Summary:                in.Summary,
		HandledBy:              in.HandledBy,
		QueueName:              in.QueueName,
		WaitTimeSeconds:        in.WaitTimeSeconds,
		FirstContactResolution: in.FirstContactRes,
		SatisfactionScore:      in.SatisfactionScore,
		TriggerEventType:       in.TriggerEventType,
		TriggerEventID:         in.TriggerEventID,
		CaseID:                 in.CaseID,
		ClaimID:                in.ClaimID,
		InvoiceID:              in.InvoiceID,
		CreatedAt:              s.clock.Now().UTC(),
		CreatedBy:              in.CreatedBy,
	}
	if in.EndDatetime != nil {
		seconds := int(in.EndDatetime.Sub(in.StartDatetime).Seconds())
		row.DurationSeconds = &seconds
	}

	err = s.store.RunUnit(ctx, "engagement.interaction", func(u *store.UnitOfWork) error {
		if err := checkTrigger(u, "interaction", in.TriggerEventType, in.TriggerEventID); err != nil {
			return err
		}
		return u.Create(row.TableName(), row.ID.String(), row, exportedInteraction(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// OpenCaseInput raises a service case.
type OpenCaseInput struct {
	CaseTypeID          int
	PolicyID            uuid.UUID
	MemberID            uuid.UUID
	Subject             string
	Description         *string
	Priority            engdomain.CasePriority
	AssignedTo          *string
	AssignedTeam        *string
	SourceInteractionID *uuid.UUID
	RelatedClaimID      *uuid.UUID
	RelatedInvoiceID    *uuid.UUID
	DueDate             *time.Time
	CreatedBy           string
}

func (s *Service) OpenCase(ctx context.Context, in OpenCaseInput) (*engdomain.ServiceCase, error) {
	if in.Subject == "" {
		return nil, domainerr.Validation("service_case", "subject", "required")
	}
	switch in.Priority {
	case engdomain.PriorityLow, engdomain.PriorityMedium, engdomain.PriorityHigh, engdomain.PriorityUrgent:
	default:
		return nil, domainerr.Validation("service_case", "priority", "unknown priority %q", in.Priority)
	}

	id, number, err := s.alloc.Allocate(allocator.KindCase)
	if err != nil {
		return nil, err
	}
	row := &engdomain.ServiceCase{
		ID:                  id,
		CaseNumber:          number,
		CaseTypeID:          in.CaseTypeID,
		PolicyID:            in.PolicyID,
		MemberID:            in.MemberID,
		Subject:             in.Subject,
		Description:         in.Description,
		Priority:            in.Priority,
		Status:              engdomain.CaseOpen,
		AssignedTo:          in.AssignedTo,
		AssignedTeam:        in.AssignedTeam,
		SourceInteractionID: in.SourceInteractionID,
		RelatedClaimID:      in.RelatedClaimID,
		RelatedInvoiceID:    in.RelatedInvoiceID,
		DueDate:             in.DueDate,
		CreatedAt:           s.clock.Now().UTC(),
		CreatedBy:           in.CreatedBy,
	}

	err = s.store.RunUnit(ctx, "engagement.case_open", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedCase(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ResolveCase closes an open case with a summary. SLABreached is set
// when resolution lands after the due date.
func (s *Service) ResolveCase(ctx context.Context, caseID uuid.UUID, resolvedAt time.Time, summary, resolvedBy string) (*engdomain.ServiceCase, error) {
	if resolvedAt.IsZero() {
		return nil, domainerr.Validation("service_case", "resolution_date", "required")
	}

	var resolved engdomain.ServiceCase
	err := s.store.RunUnit(ctx, "engagement.case_resolve", func(u *store.UnitOfWork) error {
		var row engdomain.ServiceCase
		if err := u.Tx().First(&row, "case_id = ?", caseID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "service_case", ID: caseID.String()}
		}
		if row.Status == engdomain.CaseResolved || row.Status == engdomain.CaseClosed {
			return domainerr.Validation("service_case", "status", "case already %s", row.Status)
		}
		row.Status = engdomain.CaseResolved
		row.ResolutionDate = &resolvedAt
		row.ResolutionSummary = &summary
		if row.DueDate != nil && resolvedAt.After(*row.DueDate) {
			row.SLABreached = true
		}
		row.ModifiedAt = &resolvedAt
		row.ModifiedBy = &resolvedBy
		if err := u.Update(row.TableName(), row.ID.String(), &row, exportedCase(&row)); err != nil {
			return err
		}
		resolved = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// LodgeComplaintInput records a formal grievance.
type LodgeComplaintInput struct {
	CaseID              *uuid.UUID
	PolicyID            uuid.UUID
	MemberID            uuid.UUID
	ComplaintCategoryID int
	Subject             string
	Description         *string
	Severity            engdomain.ComplaintSeverity
	Source              string
	ReceivedDate        time.Time
	DueDate             time.Time
	AssignedTo          *string
	CreatedBy           string
}

func (s *Service) LodgeComplaint(ctx context.Context, in LodgeComplaintInput) (*engdomain.Complaint, error) {
	if in.Subject == "" {
		return nil, domainerr.Validation("complaint", "subject", "required")
	}
	switch in.Severity {
	case engdomain.SeverityLow, engdomain.SeverityMedium, engdomain.SeverityHigh, engdomain.SeverityCritical:
	default:
		return nil, domainerr.Validation("complaint", "severity", "unknown severity %q", in.Severity)
	}
	if in.ReceivedDate.IsZero() || in.DueDate.IsZero() {
		return nil, domainerr.Validation("complaint", "dates", "received and due dates are required")
	}
	if in.DueDate.Before(in.ReceivedDate) {
		return nil, domainerr.Validation("complaint", "due_date", "precedes received date")
	}

	id, number, err := s.alloc.Allocate(allocator.KindComplaint)
	if err != nil {
		return nil, err
	}
	row := &engdomain.Complaint{
		ID:                  id,
		ComplaintNumber:     number,
		CaseID:              in.CaseID,
		PolicyID:            in.PolicyID,
		MemberID:            in.MemberID,
		ComplaintCategoryID: in.ComplaintCategoryID,
		Subject:             in.Subject,
		Description:         in.Description,
		Severity:            in.Severity,
		Status:              engdomain.ComplaintReceived,
		Source:              in.Source,
		ReceivedDate:        in.ReceivedDate,
		DueDate:             in.DueDate,
		AssignedTo:          in.AssignedTo,
		CreatedAt:           s.clock.Now().UTC(),
		CreatedBy:           in.CreatedBy,
	}

	err = s.store.RunUnit(ctx, "engagement.complaint_lodge", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedComplaint(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ResolveComplaintInput closes a complaint with an outcome.
type ResolveComplaintInput struct {
	ComplaintID        uuid.UUID
	ResolutionDate     time.Time
	Summary            string
	Outcome            string
	CompensationAmount *decimal.Decimal
	ResolvedBy         string
}

func (s *Service) ResolveComplaint(ctx context.Context, in ResolveComplaintInput) (*engdomain.Complaint, error) {
	if in.ResolutionDate.IsZero() {
		return nil, domainerr.Validation("complaint", "resolution_date", "required")
	}
	if in.CompensationAmount != nil && in.CompensationAmount.IsNegative() {
		return nil, domainerr.Validation("complaint", "compensation_amount", "cannot be negative")
	}

	var resolved engdomain.Complaint
	err := s.store.RunUnit(ctx, "engagement.complaint_resolve", func(u *store.UnitOfWork) error {
		var row engdomain.Complaint
		if err := u.Tx().First(&row, "complaint_id = ?", in.ComplaintID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "complaint", ID: in.ComplaintID.String()}
		}
		if row.Status == engdomain.ComplaintResolved {
			return domainerr.Validation("complaint", "status", "complaint already resolved")
		}
		now := s.clock.Now().UTC()
		row.Status = engdomain.ComplaintResolved
		row.ResolutionDate = &in.ResolutionDate
		row.ResolutionSummary = &in.Summary
		row.ResolutionOutcome = &in.Outcome
		row.CompensationAmount = in.CompensationAmount
		row.ModifiedAt = &now
		row.ModifiedBy = &in.ResolvedBy
		if err := u.Update(row.TableName(), row.ID.String(), &row, exportedComplaint(&row)); err != nil {
			return err
		}
		resolved = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// SetPreferenceInput records a member's opt-in state for one purpose
// and channel. One row per (member, purpose, channel).
type SetPreferenceInput struct {
	MemberID       uuid.UUID
	PolicyID       uuid.UUID
	PreferenceType string
	Channel        string
	OptedIn        bool
	EffectiveDate  time.Time
	PreferredTime  *string
	CreatedBy      string
}

func (s *Service) SetPreference(ctx context.Context, in SetPreferenceInput) (*engdomain.CommunicationPreference, error) {
	if in.PreferenceType == "" || in.Channel == "" {
		return nil, domainerr.Validation("communication_preference", "preference", "type and channel are required")
	}
	if in.EffectiveDate.IsZero() {
		return nil, domainerr.Validation("communication_preference", "effective_date", "required")
	}

	var saved engdomain.CommunicationPreference
	err := s.store.RunUnit(ctx, "engagement.preference_set", func(u *store.UnitOfWork) error {
		now := s.clock.Now().UTC()
		var row engdomain.CommunicationPreference
		err := u.Tx().
			Where("member_id = ? AND preference_type = ? AND channel = ?", in.MemberID, in.PreferenceType, in.Channel).
			First(&row).Error
		if err != nil {
			row = engdomain.CommunicationPreference{
				ID:             s.alloc.NewID(),
				MemberID:       in.MemberID,
				PolicyID:       in.PolicyID,
				PreferenceType: in.PreferenceType,
				Channel:        in.Channel,
				IsOptedIn:      in.OptedIn,
				PreferredTime:  in.PreferredTime,
				CreatedAt:      now,
				CreatedBy:      in.CreatedBy,
			}
			if in.OptedIn {
				row.OptInDate = &in.EffectiveDate
			} else {
				row.OptOutDate = &in.EffectiveDate
			}
			if err := u.Create(row.TableName(), row.ID.String(), &row, exportedPreference(&row)); err != nil {
				return err
			}
			saved = row
			return nil
		}

		row.IsOptedIn = in.OptedIn
		if in.OptedIn {
			row.OptInDate = &in.EffectiveDate
		} else {
			row.OptOutDate = &in.EffectiveDate
		}
		row.PreferredTime = in.PreferredTime
		row.ModifiedAt = &now
		row.ModifiedBy = &in.CreatedBy
		if err := u.Update(row.TableName(), row.ID.String(), &row, exportedPreference(&row)); err != nil {
			return err
		}
		saved = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// CreateCampaignInput starts a campaign.
type CreateCampaignInput struct {
	CampaignName   string
	CampaignType   string
	Description    *string
	StartDate      time.Time
	EndDate        *time.Time
	TargetAudience *string
	TargetSegment  *string
	Budget         *decimal.Decimal
	Owner          *string
	CreatedBy      string
}

func (s *Service) CreateCampaign(ctx context.Context, in CreateCampaignInput) (*engdomain.Campaign, error) {
	if in.CampaignName == "" {
		return nil, domainerr.Validation("campaign", "campaign_name", "required")
	}
	if in.StartDate.IsZero() {
		return nil, domainerr.Validation("campaign", "start_date", "required")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, domainerr.Validation("campaign", "end_date", "precedes start date")
	}
	if in.Budget != nil && in.Budget.IsNegative() {
		return nil, domainerr.Validation("campaign", "budget", "cannot be negative")
	}

	id, code, err := s.alloc.Allocate(allocator.KindCampaign)
	if err != nil {
		return nil, err
	}
	row := &engdomain.Campaign{
		ID:             id,
		CampaignCode:   code,
		CampaignName:   in.CampaignName,
		CampaignType:   in.CampaignType,
		Description:    in.Description,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Status:         engdomain.CampaignActive,
		TargetAudience: in.TargetAudience,
		TargetSegment:  in.TargetSegment,
		Budget:         in.Budget,
		Owner:          in.Owner,
		CreatedAt:      s.clock.Now().UTC(),
		CreatedBy:      in.CreatedBy,
	}

	err = s.store.RunUnit(ctx, "engagement.campaign_create", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedCampaign(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// SendCommunicationInput dispatches one message to a member.
type SendCommunicationInput struct {
	PolicyID          uuid.UUID
	MemberID          uuid.UUID
	CampaignID        *uuid.UUID
	CommunicationType string
	TemplateCode      *string
	Subject           *string
	RecipientEmail    *string
	RecipientPhone    *string
	SentDate          time.Time
	TriggerEventType  *engdomain.TriggerEventType
	TriggerEventID    *uuid.UUID
	ClaimID           *uuid.UUID
	InvoiceID         *uuid.UUID
	InteractionID     *uuid.UUID
	CreatedBy         string
}

// SendCommunication writes the message as Sent and bumps the owning
// campaign's sent counter when one is linked.
func (s *Service) SendCommunication(ctx context.Context, in SendCommunicationInput) (*engdomain.Communication, error) {
	if in.CommunicationType == "" {
		return nil, domainerr.Validation("communication", "communication_type", "required")
	}
	if in.SentDate.IsZero() {
		return nil, domainerr.Validation("communication", "sent_date", "required")
	}

	id, reference, err := s.alloc.Allocate(allocator.KindComm)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	row := &engdomain.Communication{
		ID:                id,
		CommunicationRef:  reference,
		PolicyID:          in.PolicyID,
		MemberID:          in.MemberID,
		CampaignID:        in.CampaignID,
		CommunicationType: in.CommunicationType,
		TemplateCode:      in.TemplateCode,
		Subject:           in.Subject,
		RecipientEmail:    in.RecipientEmail,
		RecipientPhone:    in.RecipientPhone,
		SentDate:          &in.SentDate,
		DeliveryStatus:    engdomain.DeliverySent,
		DeliveryStatusAt:  &in.SentDate,
		TriggerEventType:  in.TriggerEventType,
		TriggerEventID:    in.TriggerEventID,
		ClaimID:           in.ClaimID,
		InvoiceID:         in.InvoiceID,
		InteractionID:     in.InteractionID,
		CreatedAt:         now,
		CreatedBy:         in.CreatedBy,
	}

	err = s.store.RunUnit(ctx, "engagement.communication_send", func(u *store.UnitOfWork) error {
		if err := checkTrigger(u, "communication", in.TriggerEventType, in.TriggerEventID); err != nil {
			return err
		}
		if in.CampaignID != nil {
			var campaign engdomain.Campaign
			if err := u.Tx().First(&campaign, "campaign_id = ?", in.CampaignID).Error; err != nil {
				return &domainerr.ReferenceMissError{Kind: "campaign", ID: in.CampaignID.String()}
			}
			if campaign.Status != engdomain.CampaignActive {
				return domainerr.Validation("communication", "campaign_id", "campaign is %s", campaign.Status)
			}
			campaign.CommunicationsSent++
			campaign.ModifiedAt = &now
			campaign.ModifiedBy = &in.CreatedBy
			if err := u.Update(campaign.TableName(), campaign.ID.String(), &campaign, exportedCampaign(&campaign)); err != nil {
				return err
			}
		}
		return u.Create(row.TableName(), row.ID.String(), row, exportedCommunication(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// RecordCampaignResponseInput captures a member's reaction.
type RecordCampaignResponseInput struct {
	CampaignID      uuid.UUID
	MemberID        uuid.UUID
	PolicyID        uuid.UUID
	CommunicationID *uuid.UUID
	ResponseType    string
	ResponseDate    time.Time
	ConversionType  *string
	ConversionValue *decimal.Decimal
	ResponseChannel *string
	CreatedBy       string
}

// RecordCampaignResponse writes the response and bumps the campaign's
// response, and for conversions conversion, counters.
func (s *Service) RecordCampaignResponse(ctx context.Context, in RecordCampaignResponseInput) (*engdomain.CampaignResponse, error) {
	if in.ResponseType == "" {
		return nil, domainerr.Validation("campaign_response", "response_type", "required")
	}
	if in.ResponseDate.IsZero() {
		return nil, domainerr.Validation("campaign_response", "response_date", "required")
	}
	if in.ConversionValue != nil && in.ConversionValue.IsNegative() {
		return nil, domainerr.Validation("campaign_response", "conversion_value", "cannot be negative")
	}

	now := s.clock.Now().UTC()
	row := &engdomain.CampaignResponse{
		ID:              s.alloc.NewID(),
		CampaignID:      in.CampaignID,
		MemberID:        in.MemberID,
		PolicyID:        in.PolicyID,
		CommunicationID: in.CommunicationID,
		ResponseType:    in.ResponseType,
		ResponseDate:    in.ResponseDate,
		ConversionType:  in.ConversionType,
		ConversionValue: in.ConversionValue,
		ResponseChannel: in.ResponseChannel,
		CreatedAt:       now,
		CreatedBy:       in.CreatedBy,
	}

	err := s.store.RunUnit(ctx, "engagement.campaign_response", func(u *store.UnitOfWork) error {
		var campaign engdomain.Campaign
		if err := u.Tx().First(&campaign, "campaign_id = ?", in.CampaignID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "campaign", ID: in.CampaignID.String()}
		}
		campaign.ResponsesReceived++
		if in.ConversionType != nil {
			campaign.Conversions++
		}
		campaign.ModifiedAt = &now
		campaign.ModifiedBy = &in.CreatedBy
		if err := u.Update(campaign.TableName(), campaign.ID.String(), &campaign, exportedCampaign(&campaign)); err != nil {
			return err
		}
		return u.Create(row.TableName(), row.ID.String(), row, exportedCampaignResponse(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// StartSessionInput opens a web or app session.
type StartSessionInput struct {
	MemberID         uuid.UUID
	PolicyID         *uuid.UUID
	SessionStart     time.Time
	DeviceType       *string
	Browser          *string
	OperatingSystem  *string
	EntryPage        *string
	Referrer         *string
	IsAuthenticated  bool
	SessionType      *string
	TriggerEventType *engdomain.TriggerEventType
	TriggerEventID   *uuid.UUID
	CreatedBy        string
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*engdomain.WebSession, error) {
	if in.SessionStart.IsZero() {
		return nil, domainerr.Validation("web_session", "session_start", "required")
	}

	row := &engdomain.WebSession{
		ID:               s.alloc.NewID(),
		MemberID:         in.MemberID,
		PolicyID:         in.PolicyID,
		SessionStart:     in.SessionStart,
		DeviceType:       in.DeviceType,
		Browser:          in.Browser,
		OperatingSystem:  in.OperatingSystem,
		EntryPage:        in.EntryPage,
		Referrer:         in.Referrer,
		IsAuthenticated:  in.IsAuthenticated,
		SessionType:      in.SessionType,
		TriggerEventType: in.TriggerEventType,
		TriggerEventID:   in.TriggerEventID,
		CreatedAt:        s.clock.Now().UTC(),
		CreatedBy:        in.CreatedBy,
	}

	err := s.store.RunUnit(ctx, "engagement.session_start", func(u *store.UnitOfWork) error {
		if err := checkTrigger(u, "web_session", in.TriggerEventType, in.TriggerEventID); err != nil {
			return err
		}
		return u.Create(row.TableName(), row.ID.String(), row, exportedSession(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// RecordEventInput appends one tracked action to an open session.
type RecordEventInput struct {
	SessionID      uuid.UUID
	EventTimestamp time.Time
	EventType      string
	PagePath       *string
	PageCategory   *string
	ElementID      *string
	SearchTerm     *string
	RelatedClaimID *uuid.UUID
	CreatedBy      string
}

// RecordEvent writes the event and rolls the session's counters and
// page-view flags forward.
func (s *Service) RecordEvent(ctx context.Context, in RecordEventInput) (*engdomain.DigitalEvent, error) {
	if in.EventType == "" {
		return nil, domainerr.Validation("digital_event", "event_type", "required")
	}
	if in.EventTimestamp.IsZero() {
		return nil, domainerr.Validation("digital_event", "event_timestamp", "required")
	}

	var created engdomain.DigitalEvent
	err := s.store.RunUnit(ctx, "engagement.digital_event", func(u *store.UnitOfWork) error {
		var session engdomain.WebSession
		if err := u.Tx().First(&session, "session_id = ?", in.SessionID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "web_session", ID: in.SessionID.String()}
		}
		if in.EventTimestamp.Before(session.SessionStart) {
			return domainerr.Validation("digital_event", "event_timestamp", "precedes session start")
		}
		if session.SessionEnd != nil && in.EventTimestamp.After(*session.SessionEnd) {
			return domainerr.Validation("digital_event", "event_timestamp", "session already ended")
		}

		row := &engdomain.DigitalEvent{
			ID:             s.alloc.NewID(),
			SessionID:      session.ID,
			MemberID:       session.MemberID,
			EventTimestamp: in.EventTimestamp,
			EventType:      in.EventType,
			PagePath:       in.PagePath,
			PageCategory:   in.PageCategory,
			ElementID:      in.ElementID,
			SearchTerm:     in.SearchTerm,
			RelatedClaimID: in.RelatedClaimID,
			CreatedAt:      s.clock.Now().UTC(),
			CreatedBy:      in.CreatedBy,
		}
		if err := u.Create(row.TableName(), row.ID.String(), row, exportedDigitalEvent(row)); err != nil {
			return err
		}

		session.EventCount++
		if in.EventType == "PageView" {
			session.PageCount++
		}
		if in.PageCategory != nil {
			switch *in.PageCategory {
			case "Cancel":
				session.ViewedCancelPage = true
			case "Upgrade":
				session.ViewedUpgradePage = true
			case "Claims":
				session.ViewedClaimsPage = true
			case "Billing":
				session.ViewedBillingPage = true
			}
		}
		if err := u.Update(session.TableName(), session.ID.String(), &session, exportedSession(&session)); err != nil {
			return err
		}
		created = *row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// EndSession closes a session and fixes its duration.
func (s *Service) EndSession(ctx context.Context, sessionID uuid.UUID, sessionEnd time.Time, exitPage *string) (*engdomain.WebSession, error) {
	if sessionEnd.IsZero() {
		return nil, domainerr.Validation("web_session", "session_end", "required")
	}

	var ended engdomain.WebSession
	err := s.store.RunUnit(ctx, "engagement.session_end", func(u *store.UnitOfWork) error {
		var row engdomain.WebSession
		if err := u.Tx().First(&row, "session_id = ?", sessionID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "web_session", ID: sessionID.String()}
		}
		if row.SessionEnd != nil {
			return domainerr.Validation("web_session", "session_end", "session already ended")
		}
		if sessionEnd.Before(row.SessionStart) {
			return domainerr.Validation("web_session", "session_end", "precedes session start")
		}
		seconds := int(sessionEnd.Sub(row.SessionStart).Seconds())
		row.SessionEnd = &sessionEnd
		row.DurationSeconds = &seconds
		row.ExitPage = exitPage
		if err := u.Update(row.TableName(), row.ID.String(), &row, exportedSession(&row)); err != nil {
			return err
		}
		ended = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ended, nil
}

func exportedInteraction(i *engdomain.Interaction) map[string]any {
	values := map[string]any{
		"interaction_id":           i.ID,
		"interaction_reference":    i.InteractionReference,
		"policy_id":                i.PolicyID,
		"member_id":                i.MemberID,
		"channel":                  string(i.Channel),
		"direction":                string(i.Direction),
		"start_datetime":           i.StartDatetime,
		"first_contact_resolution": i.FirstContactResolution,
	}
	if i.TriggerEventType != nil {
		values["trigger_event_type"] = string(*i.TriggerEventType)
		values["trigger_event_id"] = *i.TriggerEventID
	}
	return values
}

func exportedCase(c *engdomain.ServiceCase) map[string]any {
	return map[string]any{
		"case_id":      c.ID,
		"case_number":  c.CaseNumber,
		"policy_id":    c.PolicyID,
		"member_id":    c.MemberID,
		"subject":      c.Subject,
		"priority":     string(c.Priority),
		"status":       string(c.Status),
		"sla_breached": c.SLABreached,
	}
}

func exportedComplaint(c *engdomain.Complaint) map[string]any {
	values := map[string]any{
		"complaint_id":     c.ID,
		"complaint_number": c.ComplaintNumber,
		"policy_id":        c.PolicyID,
		"member_id":        c.MemberID,
		"subject":          c.Subject,
		"severity":         string(c.Severity),
		"status":           string(c.Status),
		"received_date":    export.NewDate(c.ReceivedDate),
		"due_date":         export.NewDate(c.DueDate),
		"phio_escalated":   c.PHIOEscalated,
	}
	if c.CompensationAmount != nil {
		values["compensation_amount"] = *c.CompensationAmount
	}
	return values
}

func exportedPreference(p *engdomain.CommunicationPreference) map[string]any {
	return map[string]any{
		"preference_id":   p.ID,
		"member_id":       p.MemberID,
		"policy_id":       p.PolicyID,
		"preference_type": p.PreferenceType,
		"channel":         p.Channel,
		"is_opted_in":     p.IsOptedIn,
	}
}

func exportedCampaign(c *engdomain.Campaign) map[string]any {
	return map[string]any{
		"campaign_id":         c.ID,
		"campaign_code":       c.CampaignCode,
		"campaign_name":       c.CampaignName,
		"campaign_type":       c.CampaignType,
		"start_date":          export.NewDate(c.StartDate),
		"status":              string(c.Status),
		"members_targeted":    c.MembersTargeted,
		"communications_sent": c.CommunicationsSent,
		"responses_received":  c.ResponsesReceived,
		"conversions":         c.Conversions,
	}
}

func exportedCommunication(c *engdomain.Communication) map[string]any {
	values := map[string]any{
		"communication_id":        c.ID,
		"communication_reference": c.CommunicationRef,
		"policy_id":               c.PolicyID,
		"member_id":               c.MemberID,
		"communication_type":      c.CommunicationType,
		"delivery_status":         string(c.DeliveryStatus),
	}
	if c.CampaignID != nil {
		values["campaign_id"] = *c.CampaignID
	}
	if c.SentDate != nil {
		values["sent_date"] = *c.SentDate
	}
	if c.TriggerEventType != nil {
		values["trigger_event_type"] = string(*c.TriggerEventType)
		values["trigger_event_id"] = *c.TriggerEventID
	}
	return values
}

func exportedCampaignResponse(r *engdomain.CampaignResponse) map[string]any {
	values := map[string]any{
		"response_id":   r.ID,
		"campaign_id":   r.CampaignID,
		"member_id":     r.MemberID,
		"policy_id":     r.PolicyID,
		"response_type": r.ResponseType,
		"response_date": r.ResponseDate,
	}
	if r.ConversionType != nil {
		values["conversion_type"] = *r.ConversionType
	}
	if r.ConversionValue != nil {
		values["conversion_value"] = *r.ConversionValue
	}
	return values
}

func exportedSession(s *engdomain.WebSession) map[string]any {
	values := map[string]any{
		"session_id":       s.ID,
		"member_id":        s.MemberID,
		"session_start":    s.SessionStart,
		"page_count":       s.PageCount,
		"event_count":      s.EventCount,
		"is_authenticated": s.IsAuthenticated,
	}
	if s.SessionEnd != nil {
		values["session_end"] = *s.SessionEnd
	}
	if s.DurationSeconds != nil {
		values["duration_seconds"] = *s.DurationSeconds
	}
	return values
}

func exportedDigitalEvent(e *engdomain.DigitalEvent) map[string]any {
	values := map[string]any{
		"digital_event_id": e.ID,
		"session_id":       e.SessionID,
		"member_id":        e.MemberID,
		"event_timestamp":  e.EventTimestamp,
		"event_type":       e.EventType,
	}
	if e.PagePath != nil {
		values["page_path"] = *e.PagePath
	}
	return values
}
