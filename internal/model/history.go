package model

import "time"

// HistoryPoint is one immutable chart sample.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Entries   int64     `json:"entries"`
	Exits     int64     `json:"exits"`
	Occupancy int64     `json:"occupancy"`
}

// NewHistoryPoint derives a point from a ledger result.
func NewHistoryPoint(at time.Time, state CounterState) HistoryPoint {
	return HistoryPoint{
		Timestamp: at,
		Entries:   state.Entries,
		Exits:     state.Exits,
		Occupancy: state.Occupancy(),
	}
}
