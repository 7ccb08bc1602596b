package export

import (
	"testing"
	"time"

	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_Decimal(t *testing.T) {
	got, err := Flatten("invoices", "total_amount", decimal.RequireFromString("212.50"))
	require.NoError(t, err)
	assert.Equal(t, 212.50, got)

	got, err = Flatten("invoices", "paid_amount", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	ptr := decimal.RequireFromString("-62.50")
	got, err = Flatten("invoices", "rebate_amount", &ptr)
	require.NoError(t, err)
	assert.Equal(t, -62.50, got)
}

func TestFlatten_DecimalOverflow(t *testing.T) {
	_, err := Flatten("invoices", "total_amount", decimal.New(1, 400))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerr.ErrExportMapping)
}

func TestFlatten_Date(t *testing.T) {
	got, err := Flatten("invoices", "due_date", NewDate(time.Date(1970, time.January, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, int32(1), got)

	got, err = Flatten("invoices", "due_date", NewDate(time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, int32(19768), got)

	// Local-time inputs collapse to the same UTC calendar day.
	sydney := time.FixedZone("AEST", 10*3600)
	assert.Equal(t,
		NewDate(time.Date(2024, time.February, 15, 23, 0, 0, 0, time.UTC)).Days(),
		NewDate(time.Date(2024, time.February, 16, 9, 0, 0, 0, sydney)).Days(),
	)
}

func TestFlatten_Timestamp(t *testing.T) {
	at := time.Date(2024, time.March, 1, 8, 30, 0, 123456000, time.UTC)
	got, err := Flatten("payments", "payment_date", at)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMicro(), got)
}

func TestFlatten_UUIDAndNils(t *testing.T) {
	id := uuid.New()
	got, err := Flatten("members", "member_id", id)
	require.NoError(t, err)
	assert.Equal(t, id.String(), got)

	for _, value := range []any{
		nil,
		(*decimal.Decimal)(nil),
		(*Date)(nil),
		(*time.Time)(nil),
		(*uuid.UUID)(nil),
		(*string)(nil),
	} {
		got, err := Flatten("members", "field", value)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestFlattenValues_UnsupportedTypeAbortsRecord(t *testing.T) {
	_, err := FlattenValues("members", map[string]any{
		"member_id": uuid.New(),
		"payload":   struct{ X int }{X: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerr.ErrExportMapping)
}
