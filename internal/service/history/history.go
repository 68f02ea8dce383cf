// Package history keeps a fixed-capacity chronological series for charting.
package history

import (
	"sync"

	"github.com/Sunny-pro22/Dashboard/internal/model"
)

// DefaultCapacity is the number of points the dashboard chart shows.
const DefaultCapacity = 30

// Buffer is a ring buffer of HistoryPoints; appending beyond capacity evicts
// the oldest point.
type Buffer struct {
	mu       sync.RWMutex
	points   []model.HistoryPoint
	head     int // index of the oldest point
	size     int
	appended int64 // monotonic, never reset by eviction
}

func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{points: make([]model.HistoryPoint, capacity)}
}

// Append inserts at the tail in O(1).
func (b *Buffer) Append(point model.HistoryPoint) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.points)
	if b.size < capacity {
		b.points[(b.head+b.size)%capacity] = point
		b.size++
	} else {
		b.points[b.head] = point
		b.head = (b.head + 1) % capacity
	}
	b.appended++
}

// Points returns a chronological copy.
func (b *Buffer) Points() []model.HistoryPoint {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.HistoryPoint, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.points[(b.head+i)%len(b.points)]
	}
	return out
}

// Latest returns the newest point.
func (b *Buffer) Latest() (model.HistoryPoint, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return model.HistoryPoint{}, false
	}
	return b.points[(b.head+b.size-1)%len(b.points)], true
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

func (b *Buffer) Capacity() int {
	return len(b.points)
}

// Appended is the total number of points ever appended.
func (b *Buffer) Appended() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.appended
}
