package acquire

import (
	"errors"
	"sync"
	"time"
)

// TrackState is the acquisition status of one track key.
type TrackState int

const (
	// StateUnknown means the tracker has no record for the key.
	StateUnknown TrackState = iota

	// StateActive means an acquisition is currently in flight.
	StateActive

	// StateCompleted means the track was acquired in this process.
	StateCompleted

	// StateFailed means the track exhausted its attempt budget.
	StateFailed
)

func (s TrackState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrAlreadyActive is returned by MarkActive when an acquisition for the
// key is already in flight.
var ErrAlreadyActive = errors.New("acquisition already active for track")

type record struct {
	state     TrackState
	startedAt time.Time
	attempts  int
}

// Tracker is the single source of truth for whether a track is being
// acquired, already acquired, or permanently failed within this process.
//
// State is purely in memory. Completed and Failed records persist for the
// process lifetime as a cache; Active records are transient and can be
// released. A restart forgets everything, which keeps the store bounded
// and avoids stale history at the cost of possible re-downloads.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*record
	clock   Clock
}

// NewTracker creates an empty Tracker. A nil clock falls back to the
// system clock.
func NewTracker(clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock()
	}
	return &Tracker{records: make(map[string]*record), clock: clock}
}

// Lookup returns the current state for a track key.
func (t *Tracker) Lookup(key string) TrackState {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[key]
	if !ok {
		return StateUnknown
	}
	return rec.state
}

// MarkActive records the start of an acquisition. It fails with
// ErrAlreadyActive when one is already in flight for the key; terminal
// records are overwritten (callers check Lookup first).
func (t *Tracker) MarkActive(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.records[key]; ok && rec.state == StateActive {
		return ErrAlreadyActive
	}
	t.records[key] = &record{state: StateActive, startedAt: t.clock.Now()}
	return nil
}

// MarkCompleted records a successful acquisition. Idempotent.
func (t *Tracker) MarkCompleted(key string) {
	t.setTerminal(key, StateCompleted)
}

// MarkFailed records a permanently failed acquisition. Idempotent.
func (t *Tracker) MarkFailed(key string) {
	t.setTerminal(key, StateFailed)
}

func (t *Tracker) setTerminal(key string, state TrackState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[key]
	if !ok {
		rec = &record{}
		t.records[key] = rec
	}
	rec.state = state
}

// ActiveAge returns how long the key has been Active. The boolean is
// false when the key is not Active.
func (t *Tracker) ActiveAge(key string) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[key]
	if !ok || rec.state != StateActive {
		return 0, false
	}
	return t.clock.Now().Sub(rec.startedAt), true
}

// AddAttempt bumps and returns the attempt counter for the key.
func (t *Tracker) AddAttempt(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[key]
	if !ok {
		return 0
	}
	rec.attempts++
	return rec.attempts
}

// Release drops an Active record so the track can be acquired fresh.
// Used to reclaim stuck acquisitions. Terminal records are not touched.
func (t *Tracker) Release(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.records[key]; ok && rec.state == StateActive {
		delete(t.records, key)
	}
}

// Reset clears all records, including the Completed/Failed cache.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[string]*record)
}

// Stats returns the number of records per state.
func (t *Tracker) Stats() (active, completed, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range t.records {
		switch rec.state {
		case StateActive:
			active++
		case StateCompleted:
			completed++
		case StateFailed:
			failed++
		}
	}
	return active, completed, failed
}
