package occupancy

// Payload is the JSON representation served to clients. History runs
// oldest to newest, the reverse of Snapshot.History.
type Payload struct {
	AveragePersons float64        `json:"averagePersons"`
	CurrentPersons *float64       `json:"currentPersons"`
	LastUpdated    string         `json:"lastUpdated"`
	History        []HistoryPoint `json:"history"`
}

// HistoryPoint is one reading in Payload.History.
type HistoryPoint struct {
	Persons   float64 `json:"persons"`
	Timestamp string  `json:"timestamp"`
}

// ToPayload converts s into its client representation.
func ToPayload(s Snapshot) Payload {
	history := make([]HistoryPoint, len(s.History))
	for i, e := range s.History {
		history[len(s.History)-1-i] = HistoryPoint{
			Persons:   e.Value,
			Timestamp: FormatTimestamp(e.Timestamp),
		}
	}

	var current *float64
	if s.CurrentPersons != nil {
		v := *s.CurrentPersons
		current = &v
	}

	return Payload{
		AveragePersons: s.AveragePersons,
		CurrentPersons: current,
		LastUpdated:    FormatTimestamp(s.LatestTimestamp),
		History:        history,
	}
}
