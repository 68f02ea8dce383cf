// Package ledger holds the authoritative entry/exit counters.
//
// Counters are kept per device and the ledger reports their sum. A status
// device's snapshot replaces only that device's share, so several devices
// can feed one ledger. Every mutation is a single transaction under the ledger mutex and returns
// the state it produced. Callers derive occupancy and chart points from that
// return value, never from a separate read.
package ledger

import (
	"sync"

	"github.com/Sunny-pro22/Dashboard/internal/logger"
	"github.com/Sunny-pro22/Dashboard/internal/model"
)

// Change is the before/after pair of one transaction.
type Change struct {
	Before model.CounterState
	After  model.CounterState
}

// EntriesAdded reports how many entries the transaction added.
func (c Change) EntriesAdded() int64 {
	return c.After.Entries - c.Before.Entries
}

// Regressed reports whether a snapshot moved either counter backwards.
func (c Change) Regressed() bool {
	return c.After.Entries < c.Before.Entries || c.After.Exits < c.Before.Exits
}

type Ledger struct {
	mu      sync.Mutex
	total   model.CounterState
	devices map[string]model.CounterState
	logger  *logger.Logger
}

func New(logger *logger.Logger) *Ledger {
	return &Ledger{devices: make(map[string]model.CounterState), logger: logger}
}

// ApplyDelta increments entries and/or exits by one and returns the
// post-update state.
func (l *Ledger) ApplyDelta(entryDetected, exitDetected bool) model.CounterState {
	return l.applyDelta("", entryDetected, exitDetected).After
}

// ApplySnapshot replaces the counters with absolute values (last write wins).
// Regressions are accepted as reported.
func (l *Ledger) ApplySnapshot(entries, exits int64) model.CounterState {
	return l.applySnapshot("", entries, exits).After
}

// Apply runs the transaction matching the sample kind against the
// sample's device and returns the change in the summed totals.
func (l *Ledger) Apply(sample model.Sample) Change {
	if sample.Kind == model.SampleSnapshot {
		return l.applySnapshot(sample.Device, sample.Enter, sample.Exit)
	}
	return l.applyDelta(sample.Device, sample.EntryDetected, sample.ExitDetected)
}

// Current returns a consistent snapshot for display.
func (l *Ledger) Current() model.CounterState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Device returns one device's share of the totals.
func (l *Ledger) Device(name string) model.CounterState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.devices[name]
}

func (l *Ledger) applyDelta(device string, entryDetected, exitDetected bool) Change {
	l.mu.Lock()
	defer l.mu.Unlock()

	change := Change{Before: l.total}
	share := l.devices[device]
	if entryDetected {
		share.Entries++
		l.total.Entries++
	}
	if exitDetected {
		share.Exits++
		l.total.Exits++
	}
	l.devices[device] = share
	change.After = l.total
	return change
}

func (l *Ledger) applySnapshot(device string, entries, exits int64) Change {
	l.mu.Lock()
	prev := l.devices[device]
	change := Change{Before: l.total}
	l.total.Entries += entries - prev.Entries
	l.total.Exits += exits - prev.Exits
	l.devices[device] = model.CounterState{Entries: entries, Exits: exits}
	change.After = l.total
	l.mu.Unlock()

	if change.Regressed() && l.logger != nil {
		l.logger.Warning("Counter snapshot from %q regressed: %d/%d -> %d/%d",
			device, prev.Entries, prev.Exits, entries, exits)
	}
	return change
}
