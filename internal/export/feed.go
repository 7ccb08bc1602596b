package export

import (
	"context"
	"fmt"

	"github.com/brickwell/healthcore/internal/export/domain"
	"github.com/brickwell/healthcore/pkg/db/pagination"
	"gorm.io/gorm"
)

// Feed reads the change stream back out, per table and per writer, in
// event ID order. Consumers resume from an opaque page token, so a
// restarted consumer never re-scans from the beginning.
type Feed struct {
	db *gorm.DB
}

func NewFeed(db *gorm.DB) *Feed {
	return &Feed{db: db}
}

// Page is one batch of change records plus the token for the next one.
type Page struct {
	Records  []domain.ChangeRecord
	PageInfo pagination.PageInfo
}

// Read returns the next batch for (table, writerID) after the cursor in
// pg.PageToken. An empty table or a negative writerID disables that filter.
func (f *Feed) Read(ctx context.Context, table string, writerID int, pg pagination.Pagination) (Page, error) {
	var after int64
	if pg.PageToken != "" {
		cursor, err := pagination.DecodeCursor(pg.PageToken)
		if err != nil {
			return Page{}, fmt.Errorf("decode page token: %w", err)
		}
		after = cursor.EventID
	}

	size := pg.PageSize
	if size <= 0 {
		size = 100
	}

	q := f.db.WithContext(ctx).
		Where("event_id > ?", after).
		Order("event_id ASC").
		Limit(size + 1)
	if table != "" {
		q = q.Where("table_name = ?", table)
	}
	if writerID >= 0 {
		q = q.Where("writer_id = ?", writerID)
	}

	var records []domain.ChangeRecord
	if err := q.Find(&records).Error; err != nil {
		return Page{}, err
	}

	page := Page{Records: records}
	if len(records) > size {
		page.Records = records[:size]
		last := page.Records[len(page.Records)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: last.EntityID, EventID: last.EventID})
		if err != nil {
			return Page{}, err
		}
		page.PageInfo = pagination.PageInfo{NextPageToken: token, HasMore: true}
	}
	return page, nil
}
