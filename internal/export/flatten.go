// Package export replicates committed entity changes into a flattened,
// analytics-friendly change feed. The canonical tables stay authoritative;
// the feed is a faithful second representation of the same state.
package export

import (
	"math"
	"time"

	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// decimalTolerance is the maximum relative error allowed when a decimal
// is narrowed to float64.
const decimalTolerance = 1e-9

// epoch anchors calendar dates at 1970-01-01 UTC.
var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// Date marks a value as a calendar date rather than an instant, so the
// flattener maps it to a day count instead of microseconds.
type Date time.Time

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Days returns the number of days since 1970-01-01.
func (d Date) Days() int32 {
	return int32(time.Time(d).Sub(epoch).Hours() / 24)
}

// Flatten maps one canonical field value into the flattened schema:
// decimals become float64 within decimalTolerance, dates become day
// counts, timestamps become epoch microseconds, UUIDs become strings.
func Flatten(table, field string, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return flattenDecimal(table, field, v)
	case *decimal.Decimal:
		if v == nil {
			return nil, nil
		}
		return flattenDecimal(table, field, *v)
	case Date:
		return v.Days(), nil
	case *Date:
		if v == nil {
			return nil, nil
		}
		return v.Days(), nil
	case time.Time:
		return v.UnixMicro(), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return v.UnixMicro(), nil
	case uuid.UUID:
		return v.String(), nil
	case *uuid.UUID:
		if v == nil {
			return nil, nil
		}
		return v.String(), nil
	case string, bool, int, int32, int64, float64:
		return v, nil
	case *string:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case *bool:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case *int:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	default:
		return nil, &domainerr.ExportMappingError{
			Table:  table,
			Field:  field,
			Reason: "unsupported value type",
		}
	}
}

func flattenDecimal(table, field string, d decimal.Decimal) (any, error) {
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return nil, &domainerr.ExportMappingError{
			Table:  table,
			Field:  field,
			Reason: "decimal overflows float64",
		}
	}
	if d.IsZero() {
		return f, nil
	}
	diff := decimal.NewFromFloat(f).Sub(d).Abs()
	rel := diff.Div(d.Abs())
	if rel.Cmp(decimal.NewFromFloat(decimalTolerance)) > 0 {
		return nil, &domainerr.ExportMappingError{
			Table:  table,
			Field:  field,
			Reason: "decimal narrows to float64 outside tolerance",
		}
	}
	return f, nil
}

// FlattenValues maps every field of a record. The first mapping failure
// aborts the record; callers quarantine it whole.
func FlattenValues(table string, values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for field, value := range values {
		flat, err := Flatten(table, field, value)
		if err != nil {
			return nil, err
		}
		out[field] = flat
	}
	return out, nil
}
