// Package session runs one round: it owns the phase state machine, buffers
// player actions and adjudicates them against the zone, the entities and the
// opponent's race timer in a fixed per-tick order.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/tomz197/frogduel/internal/arena"
	"github.com/tomz197/frogduel/internal/object"
	"github.com/tomz197/frogduel/internal/opportunity"
	"github.com/tomz197/frogduel/internal/race"
	"github.com/tomz197/frogduel/internal/timer"
	"github.com/tomz197/frogduel/internal/view"
	"github.com/tomz197/frogduel/internal/zone"
)

// ErrInvalidOptions is returned by New for unusable options.
var ErrInvalidOptions = errors.New("invalid session options")

// maxBufferedActions bounds the action buffer between ticks.
const maxBufferedActions = 64

// Options configures a round. All values are fixed for the round's lifetime.
type Options struct {
	Countdown      time.Duration // Waiting phase length
	CountdownStep  time.Duration // Granularity of countdown events
	ReadyMin       time.Duration
	ReadyMax       time.Duration
	ReactionDelay  time.Duration // Opponent delay after the first Target entry
	StrikeDuration time.Duration // Opponent strike after the delay before the round is lost
	Arena          arena.Options
	Opportunity    opportunity.Options
}

// Validate checks the options.
func (o Options) Validate() error {
	switch {
	case o.Countdown < 0:
		return fmt.Errorf("%w: countdown must not be negative", ErrInvalidOptions)
	case o.ReadyMin < 0 || o.ReadyMax < o.ReadyMin:
		return fmt.Errorf("%w: ready range [%v, %v] is invalid", ErrInvalidOptions, o.ReadyMin, o.ReadyMax)
	case o.ReactionDelay <= 0:
		return fmt.Errorf("%w: reaction delay must be positive", ErrInvalidOptions)
	case o.StrikeDuration < 0:
		return fmt.Errorf("%w: strike duration must not be negative", ErrInvalidOptions)
	}
	if err := o.Opportunity.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// Action is a buffered player action.
type Action struct {
	ScreenX, ScreenY float64
	DeviceTime       time.Time
	Phase            Phase // Phase when the action was submitted
}

// Session is one round. Update must be called from a single goroutine;
// SubmitAction and Phase are safe for concurrent use.
type Session struct {
	id        ksuid.KSUID
	opts      Options
	viewport  *view.Viewport
	presenter Presenter
	rnd       *rand.Rand
	logger    *slog.Logger

	arena  *arena.Arena
	race   *race.Timer
	strike *timer.Countdown
	sched  *opportunity.Scheduler

	countdown *timer.Stepper
	ready     *timer.Countdown

	phase   atomic.Int32
	mu      sync.Mutex
	pending []Action

	started   bool
	aborted   bool
	clock     time.Duration
	playingAt time.Duration
	acted     bool
	outcome   Outcome
}

// New creates a round in the Waiting phase. viewport translates action
// coordinates and feeds the oracle's projected signal; without it actions are
// ignored. presenter may be nil.
func New(opts Options, viewport *view.Viewport, presenter Presenter, rnd *rand.Rand, logger *slog.Logger) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	id := ksuid.New()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("round", id.String())
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if presenter == nil {
		presenter = PresenterFunc(func(Event) {})
	}

	var projector view.Projector
	if viewport != nil {
		projector = viewport
	} else {
		logger.Warn("session created without a viewport, actions will be ignored")
	}

	a := arena.New(opts.Arena, projector, rnd, logger)
	sched, err := opportunity.New(opts.Opportunity, a.Zone().Occupancy(), a, a, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	s := &Session{
		id:        id,
		opts:      opts,
		viewport:  viewport,
		presenter: presenter,
		rnd:       rnd,
		logger:    logger,
		arena:     a,
		race:      race.New(opts.ReactionDelay, logger),
		strike:    timer.NewCountdown(opts.StrikeDuration),
		sched:     sched,
		countdown: timer.NewStepper(opts.Countdown, opts.CountdownStep),
	}
	s.phase.Store(int32(PhaseWaiting))
	return s, nil
}

// ID returns the round identifier.
func (s *Session) ID() string {
	return s.id.String()
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return Phase(s.phase.Load())
}

// Outcome returns the terminal outcome once the round has ended.
func (s *Session) Outcome() (Outcome, bool) {
	if !s.Phase().Terminal() {
		return Outcome{}, false
	}
	return s.outcome, true
}

// Arena returns the entity and zone model.
func (s *Session) Arena() *arena.Arena {
	return s.arena
}

// Viewport returns the view used for action translation.
func (s *Session) Viewport() *view.Viewport {
	return s.viewport
}

// Clock returns the session time advanced so far.
func (s *Session) Clock() time.Duration {
	return s.clock
}

// Opportunities returns the scheduler statistics.
func (s *Session) Opportunities() opportunity.Stats {
	return s.sched.Stats()
}

// Aborted reports whether Abort was called.
func (s *Session) Aborted() bool {
	return s.aborted
}

// SubmitAction buffers a player action given in screen coordinates. It is
// adjudicated at the end of the next Update. Actions outside the Ready and
// Playing phases are dropped; the return value reports whether it was kept.
func (s *Session) SubmitAction(screenX, screenY float64, deviceTime time.Time) bool {
	p := s.Phase()
	if !p.AcceptsInput() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) >= maxBufferedActions {
		return false
	}
	s.pending = append(s.pending, Action{
		ScreenX:    screenX,
		ScreenY:    screenY,
		DeviceTime: deviceTime,
		Phase:      p,
	})
	return true
}

func (s *Session) drainActions() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	batch := s.pending
	s.pending = nil
	return batch
}

// Update advances the round by dt. Within a tick the order is: phase clocks,
// entity and zone motion with occupancy recomputation, occupancy dispatch to
// the race timer and scheduler, race timer expiry, scheduler deadline and
// compensation, then actions buffered before this call.
func (s *Session) Update(dt time.Duration) {
	if s.aborted || s.Phase().Terminal() {
		return
	}
	if dt < 0 {
		dt = 0
	}
	if !s.started {
		s.start()
	}
	batch := s.drainActions()
	s.clock += dt

	s.advancePhase(dt)

	events := s.arena.Step(dt)

	raceRunning := s.race.Started()
	if s.Phase() == PhasePlaying {
		s.dispatch(events)
	}

	if raceRunning && s.race.Tick(dt) {
		s.logger.Info("opponent reacted", "at", s.clock)
		s.strike.Start()
		s.strike.Tick(0)
	} else {
		s.strike.Tick(dt)
	}
	landed := s.strike.Fired()
	if landed && len(batch) == 0 {
		s.finish(PhaseLost, ReasonOpponentFirst, false, 0)
		return
	}

	if rec, ok := s.sched.Tick(dt); ok {
		s.emit(Event{Type: EventOpportunity, Opportunity: rec})
	}

	for _, a := range batch {
		s.adjudicate(a)
		if s.Phase().Terminal() {
			return
		}
	}
	if landed {
		s.finish(PhaseLost, ReasonOpponentFirst, false, 0)
	}
}

func (s *Session) start() {
	s.started = true
	s.countdown.Start()
	s.emit(Event{Type: EventPhaseChanged, Phase: PhaseWaiting, Previous: PhaseWaiting})
	if n := s.countdown.StepsLeft(); n > 0 {
		s.emit(Event{Type: EventCountdown, Countdown: n})
	}
}

func (s *Session) advancePhase(dt time.Duration) {
	switch s.Phase() {
	case PhaseWaiting:
		steps, done := s.countdown.Advance(dt)
		for _, n := range steps {
			s.emit(Event{Type: EventCountdown, Countdown: n})
		}
		if done {
			s.enterReady()
		}
	case PhaseReady:
		if s.ready.Tick(dt) {
			s.enterPlaying()
		}
	}
}

func (s *Session) enterReady() {
	wait := s.opts.ReadyMin
	if spread := s.opts.ReadyMax - s.opts.ReadyMin; spread > 0 {
		wait += time.Duration(s.rnd.Int63n(int64(spread) + 1))
	}
	s.ready = timer.NewCountdown(wait)
	s.ready.Start()
	s.setPhase(PhaseReady)
	s.logger.Debug("ready wait drawn", "wait", wait)
}

func (s *Session) enterPlaying() {
	s.playingAt = s.clock
	s.setPhase(PhasePlaying)
	s.sched.Start()
	s.arena.StartSpawning()
}

// dispatch forwards one tick of occupancy events.
func (s *Session) dispatch(events []zone.Event) {
	for _, ev := range events {
		if ev.Type != zone.EventEnter {
			continue
		}
		kind, ok := s.arena.Kind(ev.EntityID)
		if !ok {
			continue
		}
		if s.race.OnQualifyingEntry(ev.EntityID, kind) {
			s.logger.Info("race started", "entity", ev.EntityID, "at", s.clock)
		}
	}
	s.sched.OnOccupancy(events)
}

// adjudicate applies one action. Only the first decisive action counts.
func (s *Session) adjudicate(a Action) {
	if s.acted || s.Phase().Terminal() {
		return
	}

	switch a.Phase {
	case PhaseReady:
		s.finish(PhaseLost, ReasonTooEarly, true, 0)
		return
	case PhasePlaying:
	default:
		s.logger.Debug("action ignored", "phase", a.Phase)
		return
	}

	if s.viewport == nil {
		s.logger.Warn("action ignored, no viewport")
		return
	}
	x, y := s.viewport.ScreenToWorld(a.ScreenX, a.ScreenY)
	if !s.arena.Oracle().InZone(x, y) {
		s.finish(PhaseLost, ReasonMissedZone, true, 0)
		return
	}

	var target *object.Bug
	for _, b := range s.arena.EntitiesAt(x, y) {
		if !s.arena.InZone(b.ID) {
			continue
		}
		if b.Kind == object.KindDecoy {
			s.finish(PhaseLost, ReasonWrongTarget, true, b.ID)
			return
		}
		if target == nil {
			target = b
		}
	}
	if target != nil {
		if s.race.HasFired() {
			s.finish(PhaseLost, ReasonOpponentFaster, true, target.ID)
			return
		}
		s.finish(PhaseWon, ReasonCaught, true, target.ID)
		return
	}
	s.logger.Debug("action hit nothing inside the zone", "x", x, "y", y)
}

// finish ends the round once. Timers and the scheduler are cancelled before
// any entity is torn down.
func (s *Session) finish(result Phase, reason Reason, byAction bool, entityID uint64) {
	if s.Phase().Terminal() {
		return
	}
	if byAction {
		s.acted = true
	}

	s.race.Cancel()
	s.strike.Cancel()
	stats := s.sched.Stats()
	s.sched.Cancel()
	s.arena.TeardownAll()

	s.outcome = Outcome{
		Phase:    result,
		Reason:   reason,
		At:       s.clock,
		ByAction: byAction,
		EntityID: entityID,
	}
	if byAction && reason != ReasonTooEarly {
		s.outcome.ReactionTime = s.clock - s.playingAt
	}
	s.setPhase(result)
	s.logger.Info("round over",
		"result", result,
		"reason", reason.String(),
		"reaction", s.outcome.ReactionTime,
		"opportunities", stats.Recorded)
	s.emit(Event{Type: EventOutcome, Phase: result, Outcome: s.outcome})
}

// Abort ends the round without an outcome. Timers and the scheduler are
// cancelled before teardown and later updates do nothing.
func (s *Session) Abort() {
	if s.aborted || s.Phase().Terminal() {
		return
	}
	s.aborted = true
	s.race.Cancel()
	s.strike.Cancel()
	s.sched.Cancel()
	s.arena.TeardownAll()
	s.logger.Info("round aborted", "phase", s.Phase(), "at", s.clock)
}

func (s *Session) setPhase(p Phase) {
	prev := s.Phase()
	if p <= prev {
		s.logger.Warn("ignored backward phase change", "from", prev, "to", p)
		return
	}
	s.phase.Store(int32(p))
	s.logger.Info("phase changed", "from", prev, "to", p, "at", s.clock)
	s.emit(Event{Type: EventPhaseChanged, Phase: p, Previous: prev})
}

func (s *Session) emit(e Event) {
	e.At = s.clock
	s.presenter.Present(e)
}
