package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/model"
	"github.com/Sunny-pro22/Dashboard/internal/repository"
)

var _ repository.JournalRepository = (*JournalRepository)(nil)

func setupTestDB(t *testing.T) *JournalRepository {
	t.Helper()
	db, err := New(MemoryPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewJournalRepository(db)
}

func TestNew_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	repo := NewJournalRepository(db)
	if _, err := repo.InsertPoint(&model.JournalPoint{Device: "door", Kind: "delta", Timestamp: time.Now()}); err != nil {
		t.Fatalf("InsertPoint failed: %v", err)
	}
	db.Close()

	// Schema creation is idempotent and data survives a reopen.
	db, err = New(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer db.Close()

	points, err := NewJournalRepository(db).GetPoints(nil)
	if err != nil {
		t.Fatalf("GetPoints failed: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("Expected 1 point after reopen, got %d", len(points))
	}
}

func TestJournal_Points(t *testing.T) {
	repo := setupTestDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, device := range []string{"door", "door", "side"} {
		_, err := repo.InsertPoint(&model.JournalPoint{
			Device:    device,
			Kind:      "delta",
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Entries:   int64(i + 1),
			Exits:     int64(i),
			Occupancy: 1,
		})
		if err != nil {
			t.Fatalf("InsertPoint failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter *model.PointFilter
		want   int
	}{
		{"all", &model.PointFilter{}, 3},
		{"by device", &model.PointFilter{Device: "door"}, 2},
		{"after", &model.PointFilter{After: base.Add(time.Second)}, 2},
		{"before", &model.PointFilter{Before: base}, 1},
		{"limit", &model.PointFilter{Limit: 2}, 2},
		{"limit offset", &model.PointFilter{Limit: 2, Offset: 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := repo.GetPoints(tt.filter)
			if err != nil {
				t.Fatalf("GetPoints failed: %v", err)
			}
			if len(points) != tt.want {
				t.Errorf("Expected %d points, got %d", tt.want, len(points))
			}
		})
	}

	points, _ := repo.GetPoints(nil)
	if points[0].Entries != 1 || points[2].Device != "side" {
		t.Errorf("Expected chronological order, got %+v", points)
	}
}

func TestJournal_CaptureLifecycle(t *testing.T) {
	repo := setupTestDB(t)
	released := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	repo.now = func() time.Time { return released }

	capture := &model.JournalCapture{
		ID:          "cap-1",
		Device:      "door",
		ContentType: "image/jpeg",
		Size:        2048,
		CapturedAt:  released.Add(-time.Minute),
	}
	if err := repo.InsertCapture(capture); err != nil {
		t.Fatalf("InsertCapture failed: %v", err)
	}

	got, err := repo.GetCapture("cap-1")
	if err != nil || got == nil {
		t.Fatalf("GetCapture failed: %v", err)
	}
	if got.ReleasedAt != nil {
		t.Error("Expected capture to be live")
	}

	if err := repo.MarkReleased("cap-1", "evicted"); err != nil {
		t.Fatalf("MarkReleased failed: %v", err)
	}
	if err := repo.MarkReleased("cap-1", "shutdown"); err == nil {
		t.Error("Expected second MarkReleased to fail")
	}

	got, _ = repo.GetCapture("cap-1")
	if got.ReleasedAt == nil || !got.ReleasedAt.Equal(released) || got.ReleaseReason != "evicted" {
		t.Errorf("Unexpected release stamp %+v", got)
	}

	if missing, err := repo.GetCapture("nope"); err != nil || missing != nil {
		t.Errorf("Expected nil for unknown capture, got %+v, %v", missing, err)
	}
}

func TestJournal_Stats(t *testing.T) {
	repo := setupTestDB(t)
	now := time.Now()

	repo.InsertPoint(&model.JournalPoint{Device: "door", Kind: "snapshot", Timestamp: now})
	repo.InsertCapture(&model.JournalCapture{ID: "a", Device: "door", ContentType: "image/jpeg", Size: 100, CapturedAt: now})
	repo.InsertCapture(&model.JournalCapture{ID: "b", Device: "door", ContentType: "image/jpeg", Size: 50, CapturedAt: now})
	repo.MarkReleased("a", "released")
	repo.InsertFault(&model.JournalFault{Device: "door", Kind: "transport", Endpoint: "/status", Message: "timeout", Timestamp: now})

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Points != 1 || stats.Captures != 2 || stats.ReleasedCaptures != 1 || stats.Faults != 1 || stats.CaptureBytes != 150 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}
