package service

import (
	"context"
	"time"

	"github.com/brickwell/healthcore/internal/allocator"
	"github.com/brickwell/healthcore/internal/domainerr"
	engdomain "github.com/brickwell/healthcore/internal/engagement/domain"
	"github.com/brickwell/healthcore/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// QueueNPSSurveyInput records an NPS invitation awaiting enrichment.
type QueueNPSSurveyInput struct {
	MemberID            uuid.UUID
	PolicyID            uuid.UUID
	SurveyType          string
	TriggerEvent        *string
	TriggerEntityID     *uuid.UUID
	ClaimID             *uuid.UUID
	InteractionID       *uuid.UUID
	SentDatetime        time.Time
	WillRespond         bool
	ResponseProbability *decimal.Decimal
	LLMContext          datatypes.JSON
	CreatedBy           string
}

func (s *Service) QueueNPSSurvey(ctx context.Context, in QueueNPSSurveyInput) (*engdomain.NPSSurveyPending, error) {
	if in.SentDatetime.IsZero() {
		return nil, domainerr.Validation("nps_survey_pending", "sent_datetime", "required")
	}
	if in.ResponseProbability != nil &&
		(in.ResponseProbability.IsNegative() || in.ResponseProbability.GreaterThan(one)) {
		return nil, domainerr.Validation("nps_survey_pending", "response_probability", "must be a fraction between 0 and 1")
	}

	id, reference, err := s.alloc.Allocate(allocator.KindSurvey)
	if err != nil {
		return nil, err
	}
	row := &engdomain.NPSSurveyPending{
		ID:                  id,
		SurveyReference:     reference,
		MemberID:            in.MemberID,
		PolicyID:            in.PolicyID,
		SurveyType:          in.SurveyType,
		TriggerEvent:        in.TriggerEvent,
		TriggerEntityID:     in.TriggerEntityID,
		ClaimID:             in.ClaimID,
		InteractionID:       in.InteractionID,
		SentDatetime:        in.SentDatetime,
		WillRespond:         in.WillRespond,
		ResponseProbability: in.ResponseProbability,
		LLMContext:          in.LLMContext,
		ProcessingStatus:    engdomain.ProcessingPending,
		CreatedAt:           s.clock.Now().UTC(),
		CreatedBy:           in.CreatedBy,
	}

	err = s.store.RunUnit(ctx, "engagement.nps_queue", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedNPSPending(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// CompleteNPSSurveyInput finalizes a pending NPS invitation into a
// scored response.
type CompleteNPSSurveyInput struct {
	PendingID         uuid.UUID
	CompletedDatetime time.Time
	NPSScore          int
	FeedbackText      *string
	FeedbackThemes    *string
	SentimentScore    *decimal.Decimal
	SentimentLabel    *string
	SurveyChannel     *string
	FollowUpConsent   *bool
	CreatedBy         string
}

// CompleteNPSSurvey writes the final survey, links it back and marks
// the pending row processed, all in one unit.
func (s *Service) CompleteNPSSurvey(ctx context.Context, in CompleteNPSSurveyInput) (*engdomain.NPSSurvey, error) {
	if in.NPSScore < 0 || in.NPSScore > 10 {
		return nil, domainerr.Validation("nps_survey", "nps_score", "must be between 0 and 10, got %d", in.NPSScore)
	}
	if in.CompletedDatetime.IsZero() {
		return nil, domainerr.Validation("nps_survey", "completed_date", "required")
	}
	if in.SentimentScore != nil {
		if in.SentimentScore.LessThan(one.Neg()) || in.SentimentScore.GreaterThan(one) {
			return nil, domainerr.Validation("nps_survey", "sentiment_score", "must be between -1 and 1")
		}
	}

	var final engdomain.NPSSurvey
	err := s.store.RunUnit(ctx, "engagement.nps_complete", func(u *store.UnitOfWork) error {
		var pending engdomain.NPSSurveyPending
		if err := u.Tx().First(&pending, "pending_id = ?", in.PendingID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "nps_survey_pending", ID: in.PendingID.String()}
		}
		if pending.ProcessingStatus != engdomain.ProcessingPending {
			return domainerr.Validation("nps_survey_pending", "processing_status", "already %s", pending.ProcessingStatus)
		}
		if !pending.WillRespond {
			return domainerr.Validation("nps_survey_pending", "will_respond", "invitation was modelled as a non-response")
		}
		if in.CompletedDatetime.Before(pending.SentDatetime) {
			return domainerr.Validation("nps_survey", "completed_date", "precedes send")
		}

		category := engdomain.NPSCategoryFor(in.NPSScore)
		minutes := int(in.CompletedDatetime.Sub(pending.SentDatetime).Minutes())
		now := s.clock.Now().UTC()
		survey := &engdomain.NPSSurvey{
			ID:                 s.alloc.NewID(),
			SurveyReference:    pending.SurveyReference,
			MemberID:           pending.MemberID,
			PolicyID:           pending.PolicyID,
			SurveyType:         pending.SurveyType,
			TriggerEvent:       pending.TriggerEvent,
			TriggerEntityID:    pending.TriggerEntityID,
			ClaimID:            pending.ClaimID,
			InteractionID:      pending.InteractionID,
			SentDate:           pending.SentDatetime,
			CompletedDate:      &in.CompletedDatetime,
			NPSScore:           &in.NPSScore,
			NPSCategory:        &category,
			FeedbackText:       in.FeedbackText,
			FeedbackThemes:     in.FeedbackThemes,
			SentimentScore:     in.SentimentScore,
			SentimentLabel:     in.SentimentLabel,
			SurveyChannel:      in.SurveyChannel,
			ResponseTimeMinute: &minutes,
			FollowUpConsent:    in.FollowUpConsent,
			PendingID:          &pending.ID,
			CreatedAt:          now,
			CreatedBy:          in.CreatedBy,
		}
		if err := u.Create(survey.TableName(), survey.ID.String(), survey, exportedNPSSurvey(survey)); err != nil {
			return err
		}

		pending.ProcessingStatus = engdomain.ProcessingCompleted
		pending.ProcessedAt = &now
		pending.CompletedDatetime = &in.CompletedDatetime
		pending.FinalSurveyID = &survey.ID
		if err := u.Update(pending.TableName(), pending.ID.String(), &pending, exportedNPSPending(&pending)); err != nil {
			return err
		}
		final = *survey
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &final, nil
}

// QueueCSATSurveyInput records a CSAT invitation for one interaction
// or case.
type QueueCSATSurveyInput struct {
	MemberID            uuid.UUID
	PolicyID            uuid.UUID
	SurveyType          string
	InteractionID       *uuid.UUID
	CaseID              *uuid.UUID
	SentDatetime        time.Time
	WillRespond         bool
	ResponseProbability *decimal.Decimal
	LLMContext          datatypes.JSON
	CreatedBy           string
}

func (s *Service) QueueCSATSurvey(ctx context.Context, in QueueCSATSurveyInput) (*engdomain.CSATSurveyPending, error) {
	if in.SentDatetime.IsZero() {
		return nil, domainerr.Validation("csat_survey_pending", "sent_datetime", "required")
	}
	if in.InteractionID == nil && in.CaseID == nil {
		return nil, domainerr.Validation("csat_survey_pending", "subject", "an interaction or case reference is required")
	}

	id, reference, err := s.alloc.Allocate(allocator.KindSurvey)
	if err != nil {
		return nil, err
	}
	row := &engdomain.CSATSurveyPending{
		ID:                  id,
		SurveyReference:     reference,
		MemberID:            in.MemberID,
		PolicyID:            in.PolicyID,
		SurveyType:          in.SurveyType,
		InteractionID:       in.InteractionID,
		CaseID:              in.CaseID,
		SentDatetime:        in.SentDatetime,
		WillRespond:         in.WillRespond,
		ResponseProbability: in.ResponseProbability,
		LLMContext:          in.LLMContext,
		ProcessingStatus:    engdomain.ProcessingPending,
		CreatedAt:           s.clock.Now().UTC(),
		CreatedBy:           in.CreatedBy,
	}

	err = s.store.RunUnit(ctx, "engagement.csat_queue", func(u *store.UnitOfWork) error {
		return u.Create(row.TableName(), row.ID.String(), row, exportedCSATPending(row))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// CompleteCSATSurveyInput finalizes a pending CSAT invitation.
type CompleteCSATSurveyInput struct {
	PendingID         uuid.UUID
	CompletedDatetime time.Time
	CSATScore         int
	EffortScore       *int
	RecommendAgent    *bool
	FeedbackText      *string
	SentimentLabel    *string
	SurveyChannel     *string
	CreatedBy         string
}

func (s *Service) CompleteCSATSurvey(ctx context.Context, in CompleteCSATSurveyInput) (*engdomain.CSATSurvey, error) {
	if in.CSATScore < 1 || in.CSATScore > 5 {
		return nil, domainerr.Validation("csat_survey", "csat_score", "must be between 1 and 5, got %d", in.CSATScore)
	}
	if in.EffortScore != nil && (*in.EffortScore < 1 || *in.EffortScore > 5) {
		return nil, domainerr.Validation("csat_survey", "effort_score", "must be between 1 and 5")
	}
	if in.CompletedDatetime.IsZero() {
		return nil, domainerr.Validation("csat_survey", "completed_date", "required")
	}

	var final engdomain.CSATSurvey
	err := s.store.RunUnit(ctx, "engagement.csat_complete", func(u *store.UnitOfWork) error {
		var pending engdomain.CSATSurveyPending
		if err := u.Tx().First(&pending, "pending_id = ?", in.PendingID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "csat_survey_pending", ID: in.PendingID.String()}
		}
		if pending.ProcessingStatus != engdomain.ProcessingPending {
			return domainerr.Validation("csat_survey_pending", "processing_status", "already %s", pending.ProcessingStatus)
		}
		if !pending.WillRespond {
			return domainerr.Validation("csat_survey_pending", "will_respond", "invitation was modelled as a non-response")
		}
		if in.CompletedDatetime.Before(pending.SentDatetime) {
			return domainerr.Validation("csat_survey", "completed_date", "precedes send")
		}

		label := engdomain.CSATLabelFor(in.CSATScore)
		minutes := int(in.CompletedDatetime.Sub(pending.SentDatetime).Minutes())
		now := s.clock.Now().UTC()
		survey := &engdomain.CSATSurvey{
			ID:                 s.alloc.NewID(),
			SurveyReference:    pending.SurveyReference,
			MemberID:           pending.MemberID,
			PolicyID:           pending.PolicyID,
			SurveyType:         pending.SurveyType,
			InteractionID:      pending.InteractionID,
			CaseID:             pending.CaseID,
			SentDate:           pending.SentDatetime,
			CompletedDate:      &in.CompletedDatetime,
			CSATScore:          &in.CSATScore,
			CSATLabel:          &label,
			EffortScore:        in.EffortScore,
			RecommendAgent:     in.RecommendAgent,
			FeedbackText:       in.FeedbackText,
			SentimentLabel:     in.SentimentLabel,
			SurveyChannel:      in.SurveyChannel,
			ResponseTimeMinute: &minutes,
			PendingID:          &pending.ID,
			CreatedAt:          now,
			CreatedBy:          in.CreatedBy,
		}
		if err := u.Create(survey.TableName(), survey.ID.String(), survey, exportedCSATSurvey(survey)); err != nil {
			return err
		}

		pending.ProcessingStatus = engdomain.ProcessingCompleted
		pending.ProcessedAt = &now
		pending.CompletedDatetime = &in.CompletedDatetime
		pending.FinalSurveyID = &survey.ID
		if err := u.Update(pending.TableName(), pending.ID.String(), &pending, exportedCSATPending(&pending)); err != nil {
			return err
		}
		final = *survey
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &final, nil
}

func exportedNPSPending(p *engdomain.NPSSurveyPending) map[string]any {
	values := map[string]any{
		"pending_id":        p.ID,
		"survey_reference":  p.SurveyReference,
		"member_id":         p.MemberID,
		"policy_id":         p.PolicyID,
		"survey_type":       p.SurveyType,
		"sent_datetime":     p.SentDatetime,
		"will_respond":      p.WillRespond,
		"processing_status": string(p.ProcessingStatus),
	}
	if p.FinalSurveyID != nil {
		values["final_survey_id"] = *p.FinalSurveyID
	}
	return values
}

func exportedNPSSurvey(v *engdomain.NPSSurvey) map[string]any {
	values := map[string]any{
		"survey_id":        v.ID,
		"survey_reference": v.SurveyReference,
		"member_id":        v.MemberID,
		"policy_id":        v.PolicyID,
		"survey_type":      v.SurveyType,
		"sent_date":        v.SentDate,
	}
	if v.NPSScore != nil {
		values["nps_score"] = *v.NPSScore
		values["nps_category"] = string(*v.NPSCategory)
	}
	if v.CompletedDate != nil {
		values["completed_date"] = *v.CompletedDate
	}
	if v.SentimentScore != nil {
		values["sentiment_score"] = *v.SentimentScore
	}
	return values
}

func exportedCSATPending(p *engdomain.CSATSurveyPending) map[string]any {
	values := map[string]any{
		"pending_id":        p.ID,
		"survey_reference":  p.SurveyReference,
		"member_id":         p.MemberID,
		"policy_id":         p.PolicyID,
		"survey_type":       p.SurveyType,
		"sent_datetime":     p.SentDatetime,
		"will_respond":      p.WillRespond,
		"processing_status": string(p.ProcessingStatus),
	}
	if p.FinalSurveyID != nil {
		values["final_survey_id"] = *p.FinalSurveyID
	}
	return values
}

func exportedCSATSurvey(v *engdomain.CSATSurvey) map[string]any {
	values := map[string]any{
		"survey_id":        v.ID,
		"survey_reference": v.SurveyReference,
		"member_id":        v.MemberID,
		"policy_id":        v.PolicyID,
		"survey_type":      v.SurveyType,
		"sent_date":        v.SentDate,
	}
	if v.CSATScore != nil {
		values["csat_score"] = *v.CSATScore
		values["csat_label"] = *v.CSATLabel
	}
	if v.CompletedDate != nil {
		values["completed_date"] = *v.CompletedDate
	}
	return values
}
