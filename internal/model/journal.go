package model

import "time"

// JournalPoint is a history point as recorded in the session journal.
type JournalPoint struct {
	ID        int64
	Device    string
	Kind      string
	Timestamp time.Time
	Entries   int64
	Exits     int64
	Occupancy int64
}

// JournalCapture records a capture and, once released, why.
type JournalCapture struct {
	ID            string
	Device        string
	ContentType   string
	Size          int
	CapturedAt    time.Time
	ReleasedAt    *time.Time
	ReleaseReason string
}

// JournalFault records one failed poll.
type JournalFault struct {
	ID        int64
	Device    string
	Kind      string
	Endpoint  string
	Message   string
	Timestamp time.Time
}

// PointFilter contains filtering options for querying journal points.
type PointFilter struct {
	Device string
	After  time.Time
	Before time.Time
	Limit  int
	Offset int
}
