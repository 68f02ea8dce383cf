package dto

import (
	"github.com/Sunny-pro22/Dashboard/internal/service/artifact"
	"github.com/Sunny-pro22/Dashboard/internal/service/stream"
)

// JournalStats summarises the session journal.
type JournalStats struct {
	Points           int   `json:"points"`
	Captures         int   `json:"captures"`
	ReleasedCaptures int   `json:"releasedCaptures"`
	Faults           int   `json:"faults"`
	CaptureBytes     int64 `json:"captureBytes"`
}

// Stats is the /api/stats payload.
type Stats struct {
	Counters       CounterView    `json:"counters"`
	Samples        int64          `json:"samples"`
	Faults         int64          `json:"faults"`
	Captures       int64          `json:"captures"`
	DroppedUpdates int64          `json:"droppedUpdates"`
	Viewers        int            `json:"viewers"`
	Journal        *JournalStats  `json:"journal,omitempty"`
	Artifacts      artifact.Stats `json:"artifacts"`
	Stream         *stream.Stats  `json:"stream,omitempty"`
}
