// Package occupancy turns raw reading rows into validated entries and the
// aggregated snapshot served by the API.
package occupancy

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/02loveslollipop/library-occupancy/services/api/db"
)

var (
	// ErrMalformedInput means the store handed back no row sequence at all.
	ErrMalformedInput = errors.New("malformed reading input")
	// ErrNoValidData means rows were present but none passed validation.
	ErrNoValidData = errors.New("no valid occupancy readings")
)

// Entry is a validated reading. Value is always finite and Timestamp is
// always a non-zero UTC time.
type Entry struct {
	Value     float64
	Timestamp time.Time
}

// Normalize validates rows, drops every row whose value or timestamp is
// unusable, and returns the survivors ordered newest first. The order of
// rows is not trusted.
func Normalize(rows []db.RawReading, logger *zap.Logger) ([]Entry, error) {
	if rows == nil {
		return nil, fmt.Errorf("%w: reading rows are nil", ErrMalformedInput)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		value, okValue := toNumber(row.Persons)
		ts, okTime := toTime(row.Timestamp)
		if !okValue || !okTime {
			logger.Warn("skipping invalid reading",
				zap.Int("index", i),
				zap.Any("value", row.Persons),
				zap.Any("timestamp", row.Timestamp),
				zap.Bool("value_valid", okValue),
				zap.Bool("timestamp_valid", okTime),
			)
			continue
		}
		entries = append(entries, Entry{Value: value, Timestamp: ts})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %d rows, none usable", ErrNoValidData, len(rows))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}
