package poller

import (
	"sync"
	"time"
)

// Snapshot is a read-only view of the loop for status queries.
type Snapshot struct {
	State
	LastPollAt time.Time
	LastError  string
	Polls      int
}

// Tracker publishes the loop state to concurrent readers.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker starts from the given state with no polls recorded.
func NewTracker(initial State) *Tracker {
	return &Tracker{snap: Snapshot{State: initial}}
}

// Record stores the outcome of one iteration.
func (t *Tracker) Record(st State, at time.Time, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.State = st
	t.snap.LastPollAt = at
	t.snap.Polls++
	t.snap.LastError = ""
	if err != nil {
		t.snap.LastError = err.Error()
	}
}

// State returns the current loop state.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.State
}

// Snapshot returns a copy of everything recorded so far.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}
