// Package race implements the opponent's reaction timer.
package race

import (
	"log/slog"
	"time"

	"github.com/tomz197/frogduel/internal/object"
	"github.com/tomz197/frogduel/internal/timer"
)

// Timer is the opponent's fixed-delay countdown. It starts on the first Target
// entering the zone and never restarts within a round.
type Timer struct {
	clock  *timer.Countdown
	logger *slog.Logger
}

// New creates an idle race timer with the opponent's reaction delay.
func New(delay time.Duration, logger *slog.Logger) *Timer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Timer{
		clock:  timer.NewCountdown(delay),
		logger: logger,
	}
}

// OnQualifyingEntry starts the timer when kind is Target and the timer has not
// started yet. It reports whether this call started it.
func (t *Timer) OnQualifyingEntry(id uint64, kind object.Kind) bool {
	if kind != object.KindTarget || t.clock.Started() || t.clock.Cancelled() {
		return false
	}
	t.clock.Start()
	t.logger.Debug("race timer started", "entity", id, "delay", t.clock.Delay())
	return true
}

// Tick advances the timer and reports whether it fired during this call.
func (t *Timer) Tick(dt time.Duration) bool {
	if !t.clock.Tick(dt) {
		return false
	}
	t.logger.Debug("race timer fired")
	return true
}

// HasFired reports whether the opponent has reacted.
func (t *Timer) HasFired() bool {
	return t.clock.Fired()
}

// Started reports whether a Target has triggered the timer.
func (t *Timer) Started() bool {
	return t.clock.Started()
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return t.clock.Elapsed()
}

// Cancel stops the timer and suppresses any pending fire.
func (t *Timer) Cancel() {
	t.clock.Cancel()
}

// Reset returns the timer to idle for a new round.
func (t *Timer) Reset() {
	t.clock.Reset(t.clock.Delay())
}
