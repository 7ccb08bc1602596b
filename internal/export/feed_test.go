package export_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brickwell/healthcore/internal/export"
	exportdomain "github.com/brickwell/healthcore/internal/export/domain"
	"github.com/brickwell/healthcore/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brickwell/healthcore/pkg/db/pagination"
)

// record writes one change feed row the way a committed unit would.
func record(t *testing.T, h *storetest.Harness, table, entityID string, eventType exportdomain.EventType, values map[string]any) {
	t.Helper()
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		return h.Recorder.Record(context.Background(), tx, table, entityID, eventType, values)
	})
	require.NoError(t, err)
}

func TestFeed_PagesInEventOrder(t *testing.T) {
	h := storetest.New(t, nil)
	ctx := context.Background()

	ids := make([]string, 5)
	for i := range ids {
		ids[i] = uuid.NewString()
		record(t, h, "members", ids[i], exportdomain.EventInsert, map[string]any{
			"member_id": ids[i],
			"seq":       i,
		})
	}

	page, err := h.Feed.Read(ctx, "members", -1, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.True(t, page.PageInfo.HasMore)
	assert.Equal(t, ids[0], page.Records[0].EntityID)
	assert.Equal(t, ids[1], page.Records[1].EntityID)
	assert.Less(t, page.Records[0].EventID, page.Records[1].EventID)

	page, err = h.Feed.Read(ctx, "members", -1, pagination.Pagination{PageSize: 2, PageToken: page.PageInfo.NextPageToken})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.True(t, page.PageInfo.HasMore)
	assert.Equal(t, ids[2], page.Records[0].EntityID)

	page, err = h.Feed.Read(ctx, "members", -1, pagination.Pagination{PageSize: 2, PageToken: page.PageInfo.NextPageToken})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.False(t, page.PageInfo.HasMore)
	assert.Empty(t, page.PageInfo.NextPageToken)
	assert.Equal(t, ids[4], page.Records[0].EntityID)
}

func TestFeed_FiltersByTableAndWriter(t *testing.T) {
	h := storetest.New(t, nil, storetest.WithWriter(2, 4))
	ctx := context.Background()

	record(t, h, "members", uuid.NewString(), exportdomain.EventInsert, map[string]any{"seq": 1})
	record(t, h, "policies", uuid.NewString(), exportdomain.EventInsert, map[string]any{"seq": 2})

	page, err := h.Feed.Read(ctx, "policies", -1, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "policies", page.Records[0].Table)
	assert.Equal(t, 2, page.Records[0].WriterID)

	page, err = h.Feed.Read(ctx, "", 2, pagination.Pagination{})
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)

	page, err = h.Feed.Read(ctx, "", 0, pagination.Pagination{})
	require.NoError(t, err)
	assert.Empty(t, page.Records)
}

func TestFeed_RejectsMalformedToken(t *testing.T) {
	h := storetest.New(t, nil)

	_, err := h.Feed.Read(context.Background(), "members", -1, pagination.Pagination{PageToken: "not-a-token"})
	assert.Error(t, err)
}

func TestConsumer_IdempotentReplay(t *testing.T) {
	h := storetest.New(t, []any{&export.MirrorRow{}})
	ctx := context.Background()

	entityID := uuid.NewString()
	record(t, h, "members", entityID, exportdomain.EventInsert, map[string]any{"member_id": entityID})

	page, err := h.Feed.Read(ctx, "members", -1, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)

	consumer := export.NewConsumer(h.DB)
	require.NoError(t, consumer.Apply(ctx, page.Records[0]))
	require.NoError(t, consumer.Apply(ctx, page.Records[0]))

	var count int64
	require.NoError(t, h.DB.Model(&export.MirrorRow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConsumer_OutOfOrderKeepsNewest(t *testing.T) {
	h := storetest.New(t, []any{&export.MirrorRow{}})
	ctx := context.Background()

	entityID := uuid.NewString()
	older := exportdomain.ChangeRecord{
		EventID:   100,
		EventType: exportdomain.EventUpdate,
		EntityID:  entityID,
		Table:     "invoices",
		WriterID:  0,
		Payload:   []byte(`{"paid_amount": 100}`),
	}
	newer := older
	newer.EventID = 200
	newer.Payload = []byte(`{"paid_amount": 212.5}`)

	consumer := export.NewConsumer(h.DB)
	require.NoError(t, consumer.Apply(ctx, newer))
	require.NoError(t, consumer.Apply(ctx, older))

	var row export.MirrorRow
	require.NoError(t, h.DB.First(&row, "entity_id = ? AND event_type = ?", entityID, exportdomain.EventUpdate).Error)
	assert.Equal(t, int64(200), row.EventID)
	assert.JSONEq(t, `{"paid_amount": 212.5}`, string(row.Payload))
}

func TestConsumer_ApplyBatchMirrorsFeed(t *testing.T) {
	h := storetest.New(t, []any{&export.MirrorRow{}})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record(t, h, "claims", uuid.NewString(), exportdomain.EventInsert, map[string]any{
			"claim_number": fmt.Sprintf("CLM-W0-2024-%08d", i+1),
		})
	}

	page, err := h.Feed.Read(ctx, "claims", -1, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Records, 3)

	consumer := export.NewConsumer(h.DB)
	require.NoError(t, consumer.ApplyBatch(ctx, page.Records))

	var count int64
	require.NoError(t, h.DB.Model(&export.MirrorRow{}).Where("table_name = ?", "claims").Count(&count).Error)
	assert.Equal(t, int64(3), count)
}
