package service

import (
	"context"
	"testing"
	"time"

	"github.com/brickwell/healthcore/internal/domainerr"
	exportdomain "github.com/brickwell/healthcore/internal/export/domain"
	memberdomain "github.com/brickwell/healthcore/internal/member/domain"
	"github.com/brickwell/healthcore/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *storetest.Harness) {
	t.Helper()
	h := storetest.New(t, []any{&memberdomain.Member{}, &memberdomain.MemberUpdate{}})
	svc := NewService(Params{Store: h.Store, Alloc: h.Alloc, Clock: h.Clock, Log: zap.NewNop()})
	return svc, h
}

func validInput() CreateMemberInput {
	return CreateMemberInput{
		FirstName:    "June",
		LastName:     "Okafor",
		DateOfBirth:  time.Date(1985, time.March, 14, 0, 0, 0, 0, time.UTC),
		Gender:       "Female",
		AddressLine1: "12 Harbour St",
		Suburb:       "Sydney",
		State:        "NSW",
		Postcode:     "2000",
		JoinDate:     time.Date(2020, time.July, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateMember(t *testing.T) {
	svc, h := newTestService(t)

	m, err := svc.CreateMember(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "MEM-W0-2024-000001", m.MemberNumber)
	assert.Equal(t, memberdomain.MemberActive, m.Status)

	records := h.ChangeRecords(t, "members")
	require.Len(t, records, 1)
	assert.Equal(t, exportdomain.EventInsert, records[0].EventType)
	assert.Equal(t, m.ID.String(), records[0].EntityID)
}

func TestCreateMember_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	in := validInput()
	in.FirstName = ""
	_, err := svc.CreateMember(context.Background(), in)
	assert.True(t, domainerr.IsValidation(err))

	in = validInput()
	in.JoinDate = in.DateOfBirth.AddDate(-1, 0, 0)
	_, err = svc.CreateMember(context.Background(), in)
	assert.True(t, domainerr.IsValidation(err))
}

func TestChangeAddress_WritesAuditRow(t *testing.T) {
	svc, h := newTestService(t)

	m, err := svc.CreateMember(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := svc.ChangeAddress(context.Background(), m.ID, "7 Collins Ave", nil, "Melbourne", "VIC", "3000")
	require.NoError(t, err)
	assert.Equal(t, "Melbourne", updated.Suburb)

	var audits []memberdomain.MemberUpdate
	require.NoError(t, h.DB.Find(&audits).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, memberdomain.ChangeAddress, audits[0].ChangeType)
	assert.Equal(t, "Sydney", audits[0].PreviousValues["suburb"])
	assert.Equal(t, "Melbourne", audits[0].NewValues["suburb"])

	records := h.ChangeRecords(t, "members")
	require.Len(t, records, 2)
	assert.Equal(t, exportdomain.EventUpdate, records[1].EventType)
}

func TestMarkDeceased_BlocksFurtherUpdates(t *testing.T) {
	svc, _ := newTestService(t)

	m, err := svc.CreateMember(context.Background(), validInput())
	require.NoError(t, err)

	deceased := time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC)
	updated, err := svc.MarkDeceased(context.Background(), m.ID, deceased)
	require.NoError(t, err)
	assert.True(t, updated.DeceasedFlag)
	require.NotNil(t, updated.DeceasedDate)
	assert.Equal(t, deceased, updated.DeceasedDate.UTC())
	assert.Equal(t, memberdomain.MemberDeceased, updated.Status)

	_, err = svc.ChangeName(context.Background(), m.ID, "New", "Name")
	assert.True(t, domainerr.IsValidation(err))
}

func TestChangeAddress_UnknownMember(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ChangeAddress(context.Background(), uuid.New(), "1 St", nil, "Sub", "NSW", "2000")
	assert.True(t, domainerr.IsValidation(err))
}
