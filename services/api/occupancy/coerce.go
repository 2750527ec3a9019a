package occupancy

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// timestampLayouts are tried in order for textual timestamps. Layouts
// without a zone are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// toNumber converts a decoded column value into a finite float64.
func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		return parseNumber(string(n))
	case string:
		return parseNumber(n)
	case []byte:
		return parseNumber(string(n))
	case pgtype.Numeric:
		f8, err := n.Float64Value()
		if err != nil || !f8.Valid {
			return 0, false
		}
		f = f8.Float64
	case pgtype.Float8:
		if !n.Valid {
			return 0, false
		}
		f = n.Float64
	case pgtype.Int4:
		if !n.Valid {
			return 0, false
		}
		f = float64(n.Int32)
	case pgtype.Int8:
		if !n.Valid {
			return 0, false
		}
		f = float64(n.Int64)
	default:
		return 0, false
	}
	return f, isFinite(f)
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, isFinite(f)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// toTime converts a decoded column value into a non-zero UTC time truncated
// to milliseconds, the precision of the wire format. Numeric values are read
// as Unix milliseconds.
func toTime(v any) (time.Time, bool) {
	var t time.Time
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		t = *x
	case pgtype.Timestamptz:
		if !x.Valid || x.InfinityModifier != pgtype.Finite {
			return time.Time{}, false
		}
		t = x.Time
	case pgtype.Timestamp:
		if !x.Valid || x.InfinityModifier != pgtype.Finite {
			return time.Time{}, false
		}
		t = x.Time
	case string:
		return parseTimestamp(x)
	case []byte:
		return parseTimestamp(string(x))
	case int64:
		t = time.UnixMilli(x)
	case int:
		t = time.UnixMilli(int64(x))
	case float64:
		if !isFinite(x) {
			return time.Time{}, false
		}
		t = time.UnixMilli(int64(x))
	default:
		return time.Time{}, false
	}
	if t.IsZero() {
		return time.Time{}, false
	}
	return t.UTC().Truncate(time.Millisecond), true
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.IsZero() {
				return time.Time{}, false
			}
			return t.UTC().Truncate(time.Millisecond), true
		}
	}
	return time.Time{}, false
}
