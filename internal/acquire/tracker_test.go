package acquire

import (
	"testing"
	"time"
)

func TestTracker_Lifecycle(t *testing.T) {
	tr := NewTracker(newFakeClock())

	if got := tr.Lookup("foo|bar"); got != StateUnknown {
		t.Errorf("Lookup on empty tracker = %v, want %v", got, StateUnknown)
	}

	if err := tr.MarkActive("foo|bar"); err != nil {
		t.Fatalf("MarkActive: %v", err)
	}
	if got := tr.Lookup("foo|bar"); got != StateActive {
		t.Errorf("Lookup = %v, want %v", got, StateActive)
	}

	if err := tr.MarkActive("foo|bar"); err != ErrAlreadyActive {
		t.Errorf("second MarkActive = %v, want ErrAlreadyActive", err)
	}

	tr.MarkCompleted("foo|bar")
	if got := tr.Lookup("foo|bar"); got != StateCompleted {
		t.Errorf("Lookup = %v, want %v", got, StateCompleted)
	}

	// Terminal transitions are idempotent.
	tr.MarkCompleted("foo|bar")
	if got := tr.Lookup("foo|bar"); got != StateCompleted {
		t.Errorf("Lookup after repeated MarkCompleted = %v", got)
	}
}

func TestTracker_MarkFailedWithoutActive(t *testing.T) {
	tr := NewTracker(newFakeClock())
	tr.MarkFailed("a|b")
	if got := tr.Lookup("a|b"); got != StateFailed {
		t.Errorf("Lookup = %v, want %v", got, StateFailed)
	}
}

func TestTracker_ActiveAge(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock)

	if _, ok := tr.ActiveAge("a|b"); ok {
		t.Error("ActiveAge on unknown key should report false")
	}

	tr.MarkActive("a|b")
	clock.Advance(7 * time.Minute)

	age, ok := tr.ActiveAge("a|b")
	if !ok {
		t.Fatal("ActiveAge should report true for active key")
	}
	if age != 7*time.Minute {
		t.Errorf("ActiveAge = %v, want %v", age, 7*time.Minute)
	}

	tr.MarkCompleted("a|b")
	if _, ok := tr.ActiveAge("a|b"); ok {
		t.Error("ActiveAge on completed key should report false")
	}
}

func TestTracker_Release(t *testing.T) {
	tr := NewTracker(newFakeClock())

	tr.MarkActive("a|b")
	tr.Release("a|b")
	if got := tr.Lookup("a|b"); got != StateUnknown {
		t.Errorf("Lookup after Release = %v, want %v", got, StateUnknown)
	}

	// Release never drops terminal records.
	tr.MarkCompleted("c|d")
	tr.Release("c|d")
	if got := tr.Lookup("c|d"); got != StateCompleted {
		t.Errorf("Release dropped a terminal record: %v", got)
	}
}

func TestTracker_AddAttempt(t *testing.T) {
	tr := NewTracker(newFakeClock())
	tr.MarkActive("a|b")

	if got := tr.AddAttempt("a|b"); got != 1 {
		t.Errorf("AddAttempt = %d, want 1", got)
	}
	if got := tr.AddAttempt("a|b"); got != 2 {
		t.Errorf("AddAttempt = %d, want 2", got)
	}
	if got := tr.AddAttempt("missing"); got != 0 {
		t.Errorf("AddAttempt on missing key = %d, want 0", got)
	}
}

func TestTracker_ResetAndStats(t *testing.T) {
	tr := NewTracker(newFakeClock())
	tr.MarkActive("a|1")
	tr.MarkCompleted("a|2")
	tr.MarkFailed("a|3")

	active, completed, failed := tr.Stats()
	if active != 1 || completed != 1 || failed != 1 {
		t.Errorf("Stats() = %d/%d/%d, want 1/1/1", active, completed, failed)
	}

	tr.Reset()
	active, completed, failed = tr.Stats()
	if active+completed+failed != 0 {
		t.Errorf("Stats() after Reset = %d/%d/%d, want zeros", active, completed, failed)
	}
}
