package race

import (
	"testing"
	"time"

	"github.com/tomz197/frogduel/internal/object"
)

func TestDecoyDoesNotStartTimer(t *testing.T) {
	rt := New(2*time.Second, nil)
	if rt.OnQualifyingEntry(1, object.KindDecoy) {
		t.Fatal("decoy entry started the timer")
	}
	if rt.Tick(10 * time.Second) {
		t.Fatal("idle timer fired")
	}
}

func TestTimerStartsOnceAndFiresOnce(t *testing.T) {
	rt := New(2*time.Second, nil)
	if !rt.OnQualifyingEntry(1, object.KindTarget) {
		t.Fatal("first target entry should start the timer")
	}
	rt.Tick(1500 * time.Millisecond)

	// A later target must not restart the clock.
	if rt.OnQualifyingEntry(2, object.KindTarget) {
		t.Fatal("second target entry restarted the timer")
	}
	if !rt.Tick(500 * time.Millisecond) {
		t.Fatal("timer should fire 2s after the first entry")
	}
	if !rt.HasFired() || rt.Tick(time.Second) {
		t.Fatal("timer must fire exactly once")
	}
}

func TestCancelSuppressesPendingFire(t *testing.T) {
	rt := New(time.Second, nil)
	rt.OnQualifyingEntry(1, object.KindTarget)
	rt.Cancel()
	if rt.Tick(2*time.Second) || rt.HasFired() {
		t.Fatal("cancelled timer fired")
	}
	if rt.OnQualifyingEntry(3, object.KindTarget) {
		t.Fatal("cancelled timer restarted")
	}
}

func TestResetAllowsNewRound(t *testing.T) {
	rt := New(time.Second, nil)
	rt.OnQualifyingEntry(1, object.KindTarget)
	rt.Tick(time.Second)
	rt.Reset()
	if rt.HasFired() || rt.Started() {
		t.Fatal("reset timer should be idle")
	}
	if !rt.OnQualifyingEntry(2, object.KindTarget) || !rt.Tick(time.Second) {
		t.Fatal("reset timer should start and fire again")
	}
}
