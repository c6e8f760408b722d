// Package timer provides tick-driven clock objects. They never read the wall
// clock; elapsed time only advances through Tick.
package timer

import "time"

// Countdown fires once when the elapsed time since Start reaches its delay.
// The zero value is an idle countdown that never fires.
type Countdown struct {
	delay     time.Duration
	elapsed   time.Duration
	started   bool
	fired     bool
	cancelled bool
}

// NewCountdown creates an idle countdown with the given delay.
func NewCountdown(delay time.Duration) *Countdown {
	return &Countdown{delay: delay}
}

// Start arms the countdown. Starting an armed, fired or cancelled countdown is a
// no-op; use Reset first.
func (c *Countdown) Start() {
	if c.started || c.cancelled {
		return
	}
	c.started = true
}

// Tick advances the countdown by dt and reports whether it fired during this
// call. It fires at most once.
func (c *Countdown) Tick(dt time.Duration) bool {
	if !c.started || c.fired || c.cancelled {
		return false
	}
	if dt > 0 {
		c.elapsed += dt
	}
	if c.elapsed >= c.delay {
		c.fired = true
		return true
	}
	return false
}

// Fired reports whether the countdown has fired.
func (c *Countdown) Fired() bool {
	return c.fired
}

// Started reports whether the countdown was started.
func (c *Countdown) Started() bool {
	return c.started
}

// Running reports whether the countdown is armed and still pending.
func (c *Countdown) Running() bool {
	return c.started && !c.fired && !c.cancelled
}

// Cancelled reports whether Cancel was called since the last Reset.
func (c *Countdown) Cancelled() bool {
	return c.cancelled
}

// Cancel suppresses any pending fire. Tick is inert afterwards until Reset.
func (c *Countdown) Cancel() {
	c.cancelled = true
}

// Reset returns the countdown to idle, optionally with a new delay.
func (c *Countdown) Reset(delay time.Duration) {
	*c = Countdown{delay: delay}
}

// Delay returns the configured delay.
func (c *Countdown) Delay() time.Duration {
	return c.delay
}

// Elapsed returns the time accumulated since Start.
func (c *Countdown) Elapsed() time.Duration {
	return c.elapsed
}

// Remaining returns the time left before the countdown fires, never negative.
func (c *Countdown) Remaining() time.Duration {
	if r := c.delay - c.elapsed; r > 0 {
		return r
	}
	return 0
}

// Stepper divides a countdown into whole steps and reports each step boundary
// crossed, e.g. the 3, 2, 1 of a pre-round countdown.
type Stepper struct {
	Countdown
	step time.Duration
	last int
}

// NewStepper creates an idle stepper of total duration, ticking every step.
func NewStepper(total, step time.Duration) *Stepper {
	if step <= 0 {
		step = total
	}
	s := &Stepper{Countdown: Countdown{delay: total}, step: step}
	s.last = s.stepsLeft()
	return s
}

// StepsLeft returns the number of whole or partial steps still to run.
func (s *Stepper) StepsLeft() int {
	return s.last
}

// Advance ticks the stepper and returns the step values crossed during this
// call, in order, followed by whether the whole countdown fired.
func (s *Stepper) Advance(dt time.Duration) ([]int, bool) {
	fired := s.Tick(dt)
	var crossed []int
	for now := s.stepsLeft(); s.last > now; {
		s.last--
		if s.last > 0 {
			crossed = append(crossed, s.last)
		}
	}
	return crossed, fired
}

func (s *Stepper) stepsLeft() int {
	r := s.Remaining()
	if r <= 0 || s.step <= 0 {
		return 0
	}
	return int((r + s.step - 1) / s.step)
}

// Reset returns the stepper to idle with a new total duration.
func (s *Stepper) Reset(total time.Duration) {
	s.Countdown.Reset(total)
	s.last = s.stepsLeft()
}
