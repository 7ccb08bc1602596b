package service

import (
	"context"
	"testing"
	"time"

	"github.com/brickwell/healthcore/internal/domainerr"
	engdomain "github.com/brickwell/healthcore/internal/engagement/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerAction(t *testing.T, svc *Service) *engdomain.NBAActionCatalog {
	t.Helper()
	action, err := svc.RegisterAction(context.Background(), RegisterActionInput{
		ActionCode:     "RETAIN_CALLBACK",
		ActionName:     "Retention callback after cancel page view",
		BusinessIssue:  "Retain",
		ActionCategory: "Retention",
		Channel:        engdomain.NBAPhone,
		CooldownDays:   30,
		MaxAttempts:    3,
		CreatedBy:      "test",
	})
	require.NoError(t, err)
	return action
}

func TestRecommendAndExecuteAction(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	action := registerAction(t, svc)
	propensity := decimal.RequireFromString("0.73")
	rec, err := svc.RecommendAction(ctx, RecommendActionInput{
		BatchID:         uuid.New(),
		BatchDate:       time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		MemberID:        uuid.New(),
		ActionID:        action.ID,
		PropensityScore: &propensity,
		ValidFrom:       time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:      time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, engdomain.RecommendationPending, rec.Status)

	exec, err := svc.RecordExecution(ctx, RecordExecutionInput{
		RecommendationID: &rec.ID,
		ActionID:         action.ID,
		MemberID:         rec.MemberID,
		ExecutedAt:       time.Date(2024, 4, 3, 11, 0, 0, 0, time.UTC),
		ExecutionChannel: engdomain.NBAPhone,
	})
	require.NoError(t, err)
	require.NotNil(t, exec.RecommendationID)

	var reloaded engdomain.NBARecommendation
	require.NoError(t, h.DB.First(&reloaded, "recommendation_id = ?", rec.ID).Error)
	assert.Equal(t, engdomain.RecommendationExecuted, reloaded.Status)

	// An executed recommendation cannot be fulfilled twice.
	_, err = svc.RecordExecution(ctx, RecordExecutionInput{
		RecommendationID: &rec.ID,
		ActionID:         action.ID,
		MemberID:         rec.MemberID,
		ExecutedAt:       time.Date(2024, 4, 4, 11, 0, 0, 0, time.UTC),
		ExecutionChannel: engdomain.NBAPhone,
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestRecommendAction_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	action := registerAction(t, svc)

	_, err := svc.RecommendAction(ctx, RecommendActionInput{
		BatchID:    uuid.New(),
		BatchDate:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		MemberID:   uuid.New(),
		ActionID:   action.ID,
		ValidFrom:  time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, domainerr.IsValidation(err))

	bad := decimal.RequireFromString("1.2")
	_, err = svc.RecommendAction(ctx, RecommendActionInput{
		BatchID:         uuid.New(),
		BatchDate:       time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		MemberID:        uuid.New(),
		ActionID:        action.ID,
		PropensityScore: &bad,
		ValidFrom:       time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:      time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, domainerr.IsValidation(err))

	_, err = svc.RecommendAction(ctx, RecommendActionInput{
		BatchID:    uuid.New(),
		BatchDate:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		MemberID:   uuid.New(),
		ActionID:   uuid.New(),
		ValidFrom:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, domainerr.IsValidation(err))
}

func TestRecordExecution_UnknownAction(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordExecution(context.Background(), RecordExecutionInput{
		ActionID:         uuid.New(),
		MemberID:         uuid.New(),
		ExecutedAt:       time.Date(2024, 4, 3, 11, 0, 0, 0, time.UTC),
		ExecutionChannel: engdomain.NBAEmail,
	})
	assert.True(t, domainerr.IsValidation(err))
}
