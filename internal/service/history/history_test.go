package history

import (
	"testing"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/model"
)

func point(i int) model.HistoryPoint {
	base := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	return model.HistoryPoint{
		Timestamp: base.Add(time.Duration(i) * time.Second),
		Entries:   int64(i),
	}
}

func TestAppend_BelowCapacity(t *testing.T) {
	b := New(5)
	for i := 0; i < 3; i++ {
		b.Append(point(i))
	}

	got := b.Points()
	if len(got) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(got))
	}
	for i, p := range got {
		if p.Entries != int64(i) {
			t.Errorf("Point %d: expected entries %d, got %d", i, i, p.Entries)
		}
	}
}

func TestAppend_EvictsOldest(t *testing.T) {
	const n = 30
	b := New(n)
	for i := 0; i < n+1; i++ {
		b.Append(point(i))
	}

	got := b.Points()
	if len(got) != n {
		t.Fatalf("Expected %d points, got %d", n, len(got))
	}
	if got[0].Entries != 1 {
		t.Errorf("Expected first point to be #1 after eviction, got #%d", got[0].Entries)
	}
	for _, p := range got {
		if p.Entries == 0 {
			t.Error("First appended point should have been evicted")
		}
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Errorf("Points not chronological at %d", i)
		}
	}
}

func TestAppend_NeverExceedsCapacity(t *testing.T) {
	b := New(4)
	for i := 0; i < 100; i++ {
		b.Append(point(i))
		if b.Len() > b.Capacity() {
			t.Fatalf("Length %d exceeds capacity %d", b.Len(), b.Capacity())
		}
	}
	if b.Appended() != 100 {
		t.Errorf("Expected 100 appended, got %d", b.Appended())
	}
	latest, ok := b.Latest()
	if !ok || latest.Entries != 99 {
		t.Errorf("Expected latest #99, got %+v (ok=%v)", latest, ok)
	}
}

func TestPoints_ReturnsCopy(t *testing.T) {
	b := New(3)
	b.Append(point(1))

	got := b.Points()
	got[0].Entries = 42

	if b.Points()[0].Entries != 1 {
		t.Error("Mutating the returned slice changed the buffer")
	}
}

func TestNew_DefaultCapacity(t *testing.T) {
	b := New(0)
	if b.Capacity() != DefaultCapacity {
		t.Errorf("Expected capacity %d, got %d", DefaultCapacity, b.Capacity())
	}
	if _, ok := b.Latest(); ok {
		t.Error("Expected no latest point in empty buffer")
	}
}
