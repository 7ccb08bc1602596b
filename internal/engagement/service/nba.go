package service

import (
	"context"
	"time"

	"github.com/brickwell/healthcore/internal/domainerr"
	engdomain "github.com/brickwell/healthcore/internal/engagement/domain"
	"github.com/brickwell/healthcore/internal/export"
	"github.com/brickwell/healthcore/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RegisterActionInput adds an entry to the next-best-action catalog.
type RegisterActionInput struct {
	ActionCode            string
	ActionName            string
	BusinessIssue         string
	ActionCategory        string
	Channel               engdomain.NBAChannel
	Description           *string
	EligibilityRules      datatypes.JSON
	SuitabilityRules      datatypes.JSON
	BaseBusinessValue     *decimal.Decimal
	ProbabilityMultiplier decimal.Decimal
	CooldownDays          int
	MaxAttempts           int
	CreatedBy             string
}

func (s *Service) RegisterAction(ctx context.Context, in RegisterActionInput) (*engdomain.NBAActionCatalog, error) {
	if in.ActionCode == "" || in.ActionName == "" {
		return nil, domainerr.Validation("nba_action", "action_code", "code and name are required")
	}
	if err := validNBAChannel("nba_action", in.Channel); err != nil {
		return nil, err
	}
	if in.CooldownDays < 0 {
		return nil, domainerr.Validation("nba_action", "cooldown_days", "cannot be negative")
	}
	if in.MaxAttempts < 1 {
		return nil, domainerr.Validation("nba_action", "max_attempts", "must be at least 1")
	}
	multiplier := in.ProbabilityMultiplier
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}

	now := s.clock.Now().UTC()
	row := &engdomain.NBAActionCatalog{
		ID:                    s.alloc.NewID(),
		ActionCode:            in.ActionCode,
		ActionName:            in.ActionName,
		BusinessIssue:         in.BusinessIssue,
		ActionCategory:        in.ActionCategory,
		Channel:               in.Channel,
		Description:           in.Description,
		EligibilityRules:      in.EligibilityRules,
		SuitabilityRules:      in.SuitabilityRules,
		BaseBusinessValue:     in.BaseBusinessValue,
		ProbabilityMultiplier: multiplier,
		CooldownDays:          in.CooldownDays,
		MaxAttempts:           in.MaxAttempts,
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
		CreatedBy:             in.CreatedBy,
	}

	err := s.store.RunUnit(ctx, "engagement.nba_action_register", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedNBAAction(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// RecommendActionInput scores one action for one member in a batch.
type RecommendActionInput struct {
	BatchID         uuid.UUID
	BatchDate       time.Time
	MemberID        uuid.UUID
	PolicyID        *uuid.UUID
	ActionID        uuid.UUID
	PropensityScore *decimal.Decimal
	UrgencyScore    *decimal.Decimal
	FinalScore      *decimal.Decimal
	PriorityRank    *int
	TriggerReason   *string
	TriggerSignals  datatypes.JSON
	ModelVersion    *string
	ValidFrom       time.Time
	ValidUntil      time.Time
}

func (s *Service) RecommendAction(ctx context.Context, in RecommendActionInput) (*engdomain.NBARecommendation, error) {
	if in.ValidFrom.IsZero() || in.ValidUntil.IsZero() {
		return nil, domainerr.Validation("nba_recommendation", "validity", "valid from and until are required")
	}
	if in.ValidUntil.Before(in.ValidFrom) {
		return nil, domainerr.Validation("nba_recommendation", "valid_until", "precedes valid from")
	}
	for name, score := range map[string]*decimal.Decimal{
		"propensity_score": in.PropensityScore,
		"urgency_score":    in.UrgencyScore,
	} {
		if score != nil && (score.IsNegative() || score.GreaterThan(one)) {
			return nil, domainerr.Validation("nba_recommendation", name, "must be a fraction between 0 and 1")
		}
	}
	if in.PriorityRank != nil && *in.PriorityRank < 1 {
		return nil, domainerr.Validation("nba_recommendation", "priority_rank", "must be at least 1")
	}

	row := &engdomain.NBARecommendation{
		ID:              s.alloc.NewID(),
		BatchID:         in.BatchID,
		BatchDate:       in.BatchDate,
		MemberID:        in.MemberID,
		PolicyID:        in.PolicyID,
		ActionID:        in.ActionID,
		PropensityScore: in.PropensityScore,
		UrgencyScore:    in.UrgencyScore,
		FinalScore:      in.FinalScore,
		PriorityRank:    in.PriorityRank,
		TriggerReason:   in.TriggerReason,
		TriggerSignals:  in.TriggerSignals,
		ModelVersion:    in.ModelVersion,
		ValidFrom:       in.ValidFrom,
		ValidUntil:      in.ValidUntil,
		Status:          engdomain.RecommendationPending,
		CreatedAt:       s.clock.Now().UTC(),
	}

	err := s.store.RunUnit(ctx, "engagement.nba_recommend", func(u *store.UnitOfWork) error {
		var action engdomain.NBAActionCatalog
		if err := u.Tx().First(&action, "action_id = ?", in.ActionID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "nba_action", ID: in.ActionID.String()}
		}
		if !action.IsActive {
			return domainerr.Validation("nba_recommendation", "action_id", "action %s is inactive", action.ActionCode)
		}
		return u.Create(row.TableName(), row.ID.String(), row, exportedNBARecommendation(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// RecordExecutionInput records an action taken against a member.
type RecordExecutionInput struct {
	RecommendationID   *uuid.UUID
	ActionID           uuid.UUID
	MemberID           uuid.UUID
	PolicyID           *uuid.UUID
	ExecutedAt         time.Time
	ExecutionChannel   engdomain.NBAChannel
	ExecutionMethod    *string
	CommunicationID    *uuid.UUID
	InteractionID      *uuid.UUID
	CampaignResponseID *uuid.UUID
	ImmediateResponse  *string
	ResponseAt         *time.Time
}

// RecordExecution writes the execution and, when it fulfils a
// recommendation, moves that recommendation to executed.
func (s *Service) RecordExecution(ctx context.Context, in RecordExecutionInput) (*engdomain.NBAExecution, error) {
	if in.ExecutedAt.IsZero() {
		return nil, domainerr.Validation("nba_execution", "executed_at", "required")
	}
	if err := validNBAChannel("nba_execution", in.ExecutionChannel); err != nil {
		return nil, err
	}

	var created engdomain.NBAExecution
	err := s.store.RunUnit(ctx, "engagement.nba_execute", func(u *store.UnitOfWork) error {
		var action engdomain.NBAActionCatalog
		if err := u.Tx().First(&action, "action_id = ?", in.ActionID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "nba_action", ID: in.ActionID.String()}
		}

		row := &engdomain.NBAExecution{
			ID:                 s.alloc.NewID(),
			RecommendationID:   in.RecommendationID,
			ActionID:           in.ActionID,
			MemberID:           in.MemberID,
			PolicyID:           in.PolicyID,
			ExecutedAt:         in.ExecutedAt,
			ExecutionChannel:   in.ExecutionChannel,
			ExecutionMethod:    in.ExecutionMethod,
			CommunicationID:    in.CommunicationID,
			InteractionID:      in.InteractionID,
			CampaignResponseID: in.CampaignResponseID,
			ImmediateResponse:  in.ImmediateResponse,
			ResponseAt:         in.ResponseAt,
			CreatedAt:          s.clock.Now().UTC(),
		}

		if in.RecommendationID != nil {
			var rec engdomain.NBARecommendation
			if err := u.Tx().First(&rec, "recommendation_id = ?", in.RecommendationID).Error; err != nil {
				return &domainerr.ReferenceMissError{Kind: "nba_recommendation", ID: in.RecommendationID.String()}
			}
			if rec.Status != engdomain.RecommendationPending && rec.Status != engdomain.RecommendationScheduled {
				return domainerr.Validation("nba_execution", "recommendation_id", "recommendation is %s", rec.Status)
			}
			now := s.clock.Now().UTC()
			rec.Status = engdomain.RecommendationExecuted
			rec.ModifiedAt = &now
			if err := u.Update(rec.TableName(), rec.ID.String(), &rec, exportedNBARecommendation(&rec)); err != nil {
				return err
			}
		}

		if err := u.Create(row.TableName(), row.ID.String(), row, exportedNBAExecution(row)); err != nil {
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

func validNBAChannel(entity string, c engdomain.NBAChannel) error {
	switch c {
	case engdomain.NBAEmail, engdomain.NBASMS, engdomain.NBAPhone,
		engdomain.NBAInApp, engdomain.NBALetter, engdomain.NBAWeb:
		return nil
	default:
		return domainerr.Validation(entity, "channel", "unknown channel %q", c)
	}
}

func exportedNBAAction(a *engdomain.NBAActionCatalog) map[string]any {
	return map[string]any{
		"action_id":       a.ID,
		"action_code":     a.ActionCode,
		"action_name":     a.ActionName,
		"business_issue":  a.BusinessIssue,
		"action_category": a.ActionCategory,
		"channel":         string(a.Channel),
		"cooldown_days":   a.CooldownDays,
		"max_attempts":    a.MaxAttempts,
		"is_active":       a.IsActive,
	}
}

func exportedNBARecommendation(r *engdomain.NBARecommendation) map[string]any {
	values := map[string]any{
		"recommendation_id": r.ID,
		"batch_id":          r.BatchID,
		"member_id":         r.MemberID,
		"action_id":         r.ActionID,
		"valid_from":        export.NewDate(r.ValidFrom),
		"valid_until":       export.NewDate(r.ValidUntil),
		"status":            string(r.Status),
	}
	if r.PropensityScore != nil {
		values["propensity_score"] = *r.PropensityScore
	}
	if r.FinalScore != nil {
		values["final_score"] = *r.FinalScore
	}
	return values
}

func exportedNBAExecution(e *engdomain.NBAExecution) map[string]any {
	values := map[string]any{
		"execution_id":      e.ID,
		"action_id":         e.ActionID,
		"member_id":         e.MemberID,
		"executed_at":       e.ExecutedAt,
		"execution_channel": string(e.ExecutionChannel),
	}
	if e.RecommendationID != nil {
		values["recommendation_id"] = *e.RecommendationID
	}
	if e.ImmediateResponse != nil {
		values["immediate_response"] = *e.ImmediateResponse
	}
	return values
}
