package occupancy

import (
	"math"
	"sort"
	"time"
)

// TimestampLayout renders UTC times as ISO-8601 with millisecond precision,
// e.g. 2024-01-01T10:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Summary is the statistical view over a window of entries.
type Summary struct {
	AveragePersons  float64
	CurrentPersons  float64
	LatestTimestamp time.Time
}

// Snapshot is the complete aggregate published to readers. History is
// ordered newest first. A Snapshot is never mutated after Build.
type Snapshot struct {
	AveragePersons  float64
	CurrentPersons  *float64
	LatestTimestamp time.Time
	History         []Entry
	ComputedAt      time.Time
}

// Aggregate summarises entries ordered newest first. The average is the
// arithmetic mean rounded half away from zero to two decimals.
func Aggregate(entries []Entry) (Summary, error) {
	if len(entries) == 0 {
		return Summary{}, ErrNoValidData
	}
	return Summary{
		AveragePersons:  round2(mean(entries)),
		CurrentPersons:  entries[0].Value,
		LatestTimestamp: entries[0].Timestamp,
	}, nil
}

// Build aggregates entries into a Snapshot stamped with computedAt.
func Build(entries []Entry, computedAt time.Time) (Snapshot, error) {
	summary, err := Aggregate(entries)
	if err != nil {
		return Snapshot{}, err
	}
	current := summary.CurrentPersons
	history := make([]Entry, len(entries))
	copy(history, entries)
	return Snapshot{
		AveragePersons:  summary.AveragePersons,
		CurrentPersons:  &current,
		LatestTimestamp: summary.LatestTimestamp,
		History:         history,
		ComputedAt:      computedAt.UTC(),
	}, nil
}

// Clone returns a copy that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.CurrentPersons != nil {
		v := *s.CurrentPersons
		out.CurrentPersons = &v
	}
	out.History = make([]Entry, len(s.History))
	copy(out.History, s.History)
	return out
}

// mean sums in ascending value order so the result does not depend on the
// order of entries.
func mean(entries []Entry) float64 {
	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	sort.Float64s(values)

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
