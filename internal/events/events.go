package events

import (
	"context"
	"time"
)

// Event topic constants
const (
	TopicCounterUpdated  = "sentinel.counter.updated"
	TopicCaptureCreated  = "sentinel.capture.created"
	TopicCaptureReleased = "sentinel.capture.released"
	TopicPollFault       = "sentinel.poll.fault"
)

// Event types

type CounterUpdated struct {
	Device    string    `json:"device"`
	Kind      string    `json:"kind"`
	Entries   int64     `json:"entries"`
	Exits     int64     `json:"exits"`
	Occupancy int64     `json:"occupancy"`
	At        time.Time `json:"at"`
}

type CaptureCreated struct {
	ID          string    `json:"id"`
	Device      string    `json:"device"`
	ContentType string    `json:"contentType"`
	Size        int       `json:"size"`
	At          time.Time `json:"at"`
}

type CaptureReleased struct {
	ID     string `json:"id"`
	Reason string `json:"reason"` // "evicted", "released", "shutdown"
}

type PollFault struct {
	Device   string    `json:"device"`
	Kind     string    `json:"kind"`
	Endpoint string    `json:"endpoint"`
	Error    string    `json:"error"`
	At       time.Time `json:"at"`
}

// Publisher sends events to a message bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
