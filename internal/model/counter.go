package model

// CounterState holds the entry/exit counters of the monitored space.
type CounterState struct {
	Entries int64 `json:"entries"`
	Exits   int64 `json:"exits"`
}

// Occupancy is entries minus exits. It may be negative while exits are
// reported ahead of the matching entries.
func (s CounterState) Occupancy() int64 {
	return s.Entries - s.Exits
}
