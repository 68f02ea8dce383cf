package model

import "time"

// SampleKind tells which transport shape produced a Sample.
type SampleKind int

const (
	// SampleDelta carries "did X happen since last poll" edges.
	SampleDelta SampleKind = iota
	// SampleSnapshot carries absolute counters.
	SampleSnapshot
)

func (k SampleKind) String() string {
	switch k {
	case SampleDelta:
		return "delta"
	case SampleSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// Sample is one normalised observation from a poll.
type Sample struct {
	Kind       SampleKind
	Device     string
	ReceivedAt time.Time

	// SampleDelta
	EntryDetected bool
	ExitDetected  bool

	// SampleSnapshot
	Enter int64
	Exit  int64
	Total int64
}

// NewDeltaSample builds a delta sample.
func NewDeltaSample(device string, entry, exit bool, at time.Time) Sample {
	return Sample{Kind: SampleDelta, Device: device, EntryDetected: entry, ExitDetected: exit, ReceivedAt: at}
}

// NewSnapshotSample builds a snapshot sample.
func NewSnapshotSample(device string, enter, exit, total int64, at time.Time) Sample {
	return Sample{Kind: SampleSnapshot, Device: device, Enter: enter, Exit: exit, Total: total, ReceivedAt: at}
}
