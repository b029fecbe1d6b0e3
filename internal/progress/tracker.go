package progress

import "sync"

// Snapshot is the tracker state reported when the percent advances.
type Snapshot struct {
	Completed int
	Total     int
	Percent   int
}

// Tracker counts completed items and reports integer percent-complete values.
// Completions are serialised under a mutex and emit runs while the lock is
// held, so emitted percents are strictly increasing even when many workers
// finish at once.
type Tracker struct {
	mu        sync.Mutex
	total     int
	completed int
	last      int
	emit      func(Snapshot)
}

// NewTracker builds a tracker for total items. emit may be nil.
func NewTracker(total int, emit func(Snapshot)) *Tracker {
	if total < 0 {
		total = 0
	}
	return &Tracker{total: total, last: -1, emit: emit}
}

// Start emits the initial 0% snapshot, or 100% for an empty batch.
func (t *Tracker) Start() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.snapshotLocked()
	t.advanceLocked(snap)
	return snap
}

// Done records one completed item and returns the new percent along with
// whether it changed since the previous emission.
func (t *Tracker) Done() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.completed < t.total {
		t.completed++
	}
	snap := t.snapshotLocked()
	return snap.Percent, t.advanceLocked(snap)
}

// Snapshot returns the current counters without emitting.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{Completed: t.completed, Total: t.total, Percent: Percent(t.completed, t.total)}
}

func (t *Tracker) advanceLocked(snap Snapshot) bool {
	if snap.Percent <= t.last {
		return false
	}
	t.last = snap.Percent
	if t.emit != nil {
		t.emit(snap)
	}
	return true
}

// Percent computes completed*100/total with integer truncation. An empty
// batch is complete.
func Percent(completed, total int) int {
	if total <= 0 {
		return 100
	}
	if completed >= total {
		return 100
	}
	if completed <= 0 {
		return 0
	}
	return completed * 100 / total
}
