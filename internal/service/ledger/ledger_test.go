package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/model"
)

func newTestLedger() *Ledger {
	return New(logger.Discard())
}

func TestApplyDelta_BothEdgesInOneCycle(t *testing.T) {
	l := newTestLedger()
	l.ApplySnapshot(4, 1)
	before := l.Current()

	got := l.ApplyDelta(true, true)

	if got.Entries != before.Entries+1 || got.Exits != before.Exits+1 {
		t.Errorf("Expected %d/%d, got %d/%d", before.Entries+1, before.Exits+1, got.Entries, got.Exits)
	}
	want := (before.Entries + 1) - (before.Exits + 1)
	if got.Occupancy() != want {
		t.Errorf("Expected occupancy %d, got %d", want, got.Occupancy())
	}
}

func TestApplyDelta_NonDecreasing(t *testing.T) {
	l := newTestLedger()
	deltas := [][2]bool{{true, false}, {false, false}, {false, true}, {true, true}, {false, true}, {true, false}}

	prev := l.Current()
	for i, d := range deltas {
		got := l.ApplyDelta(d[0], d[1])
		if got.Entries < prev.Entries || got.Exits < prev.Exits {
			t.Fatalf("Step %d: counters decreased from %+v to %+v", i, prev, got)
		}
		prev = got
	}
}

func TestApplyDelta_ThreeTickScenario(t *testing.T) {
	l := newTestLedger()

	l.ApplyDelta(true, false)
	l.ApplyDelta(false, true)
	final := l.ApplyDelta(true, true)

	if final.Entries != 2 || final.Exits != 2 {
		t.Errorf("Expected 2/2, got %d/%d", final.Entries, final.Exits)
	}
	if final.Occupancy() != 0 {
		t.Errorf("Expected occupancy 0, got %d", final.Occupancy())
	}
}

func TestApplyDelta_NegativeOccupancyTolerated(t *testing.T) {
	l := newTestLedger()

	got := l.ApplyDelta(false, true)
	if got.Occupancy() != -1 {
		t.Errorf("Expected occupancy -1, got %d", got.Occupancy())
	}
}

func TestApplyDelta_OverlappingCompletions(t *testing.T) {
	orders := map[string][][2]bool{
		"entry first": {{true, false}, {false, true}},
		"exit first":  {{false, true}, {true, false}},
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			l := newTestLedger()
			for _, d := range order {
				l.ApplyDelta(d[0], d[1])
			}
			if got := l.Current(); got != (model.CounterState{Entries: 1, Exits: 1}) {
				t.Errorf("Expected 1/1, got %+v", got)
			}
		})
	}
}

func TestApplyDelta_Concurrent(t *testing.T) {
	l := newTestLedger()
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); l.ApplyDelta(true, false) }()
		go func() { defer wg.Done(); l.ApplyDelta(false, true) }()
	}
	wg.Wait()

	if got := l.Current(); got.Entries != n || got.Exits != n {
		t.Errorf("Expected %d/%d, got %+v", n, n, got)
	}
}

func TestApplySnapshot_LastWriteWins(t *testing.T) {
	l := newTestLedger()

	l.ApplySnapshot(10, 3)
	got := l.ApplySnapshot(7, 5)

	if got.Entries != 7 || got.Exits != 5 {
		t.Errorf("Expected regressed snapshot accepted as 7/5, got %+v", got)
	}
}

func TestApply_ReturnsChange(t *testing.T) {
	l := newTestLedger()
	now := time.Now()

	c := l.Apply(model.NewSnapshotSample("door", 3, 1, 2, now))
	if c.EntriesAdded() != 3 || c.Regressed() {
		t.Errorf("Unexpected change %+v", c)
	}

	c = l.Apply(model.NewDeltaSample("door", true, false, now))
	if c.Before.Entries != 3 || c.After.Entries != 4 || c.EntriesAdded() != 1 {
		t.Errorf("Unexpected change %+v", c)
	}

	c = l.Apply(model.NewSnapshotSample("door", 2, 1, 1, now))
	if !c.Regressed() {
		t.Errorf("Expected regression for %+v", c)
	}
}

func TestApply_SnapshotsPerDevice(t *testing.T) {
	l := newTestLedger()
	now := time.Now()

	for i := 0; i < 3; i++ {
		l.Apply(model.NewSnapshotSample("front", 10, 4, 6, now))
		c := l.Apply(model.NewSnapshotSample("back", 3, 1, 2, now))
		if i > 0 && (c.EntriesAdded() != 0 || c.Regressed()) {
			t.Fatalf("Round %d: unchanged snapshots produced %+v", i, c)
		}
	}

	if got := l.Current(); got != (model.CounterState{Entries: 13, Exits: 5}) {
		t.Errorf("Expected summed 13/5, got %+v", got)
	}

	c := l.Apply(model.NewSnapshotSample("back", 4, 1, 3, now))
	if c.EntriesAdded() != 1 || c.After.Entries != 14 {
		t.Errorf("Expected one entry from back, got %+v", c)
	}
	if got := l.Device("front"); got != (model.CounterState{Entries: 10, Exits: 4}) {
		t.Errorf("Expected front untouched, got %+v", got)
	}
}

func TestApply_SnapshotKeepsOtherDevicesDeltas(t *testing.T) {
	l := newTestLedger()
	now := time.Now()

	l.Apply(model.NewDeltaSample("side", true, false, now))
	l.Apply(model.NewDeltaSample("side", true, true, now))
	c := l.Apply(model.NewSnapshotSample("front", 5, 2, 3, now))

	if c.Before != (model.CounterState{Entries: 2, Exits: 1}) {
		t.Errorf("Unexpected before %+v", c.Before)
	}
	if c.After != (model.CounterState{Entries: 7, Exits: 3}) {
		t.Errorf("Expected detect increments kept alongside the snapshot, got %+v", c.After)
	}

	c = l.Apply(model.NewSnapshotSample("front", 4, 2, 2, now))
	if !c.Regressed() || c.After.Entries != 6 {
		t.Errorf("Expected a regression to 6 entries, got %+v", c)
	}
}
