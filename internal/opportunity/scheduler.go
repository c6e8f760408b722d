// Package opportunity guarantees the player a minimum number of fair, solo
// chances at a Target within a time window, compensating when natural spawns
// fall short.
package opportunity

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tomz197/frogduel/internal/object"
	"github.com/tomz197/frogduel/internal/zone"
)

// ErrInvalidOptions is returned by New for unusable options.
var ErrInvalidOptions = errors.New("invalid scheduler options")

// Options configures a Scheduler.
type Options struct {
	Required           int           // R: opportunities to guarantee
	Window             time.Duration // W: measured from Start
	MinSolo            time.Duration // Continuous solo dwell that qualifies
	EmergencyThreshold time.Duration // Compensate once the remaining window drops to this
	DwellBuffer        time.Duration // Added to MinSolo for guaranteed dwell
}

// Validate checks the options.
func (o Options) Validate() error {
	switch {
	case o.Required < 1:
		return fmt.Errorf("%w: required must be at least 1, got %d", ErrInvalidOptions, o.Required)
	case o.Window <= 0:
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidOptions, o.Window)
	case o.MinSolo <= 0:
		return fmt.Errorf("%w: min solo must be positive, got %v", ErrInvalidOptions, o.MinSolo)
	case o.EmergencyThreshold < 0 || o.EmergencyThreshold > o.Window:
		return fmt.Errorf("%w: emergency threshold %v outside [0, %v]", ErrInvalidOptions, o.EmergencyThreshold, o.Window)
	case o.DwellBuffer < 0:
		return fmt.Errorf("%w: dwell buffer must not be negative, got %v", ErrInvalidOptions, o.DwellBuffer)
	}
	return nil
}

// Actuator applies compensation to the play area.
type Actuator interface {
	PushDecoys() int
	SpawnGuaranteed(dwell time.Duration) *object.Bug
}

// Entities resolves live entity kinds.
type Entities interface {
	Kind(id uint64) (object.Kind, bool)
}

// Record is one qualifying opportunity. Time is measured from Start.
type Record struct {
	Time       time.Duration
	EntityID   uint64
	Kind       object.Kind
	Solo       bool
	Guaranteed bool
}

// Stats summarizes the window so far.
type Stats struct {
	Required          int
	Recorded          int
	Elapsed           time.Duration
	Remaining         time.Duration
	Compensating      bool
	GuaranteedSpawned int
	Finished          bool // Window has closed
	Records           []Record
}

// Missed reports whether the window closed short of the requirement.
func (s Stats) Missed() bool {
	return s.Finished && s.Recorded < s.Required
}

// episode tracks one entity being the sole occupant.
type episode struct {
	active   bool
	entityID uint64
	start    time.Duration
	pending  bool // Start is set by the Tick that closes the observing tick
	recorded bool
}

// Scheduler watches solo Target dwell and compensates when behind schedule.
type Scheduler struct {
	opts     Options
	occ      zone.Reader
	entities Entities
	actuator Actuator
	logger   *slog.Logger

	running   bool
	finished  bool
	cancelled bool
	elapsed   time.Duration
	ep        episode
	records   []Record

	compensating bool
	interval     time.Duration
	nextSpawn    time.Duration
	guaranteed   map[uint64]bool // Spawned by compensation; true once qualified
	warnedActor  bool
}

// New creates a scheduler reading occupancy from occ. actuator may be nil, in
// which case compensation is logged and skipped.
func New(opts Options, occ zone.Reader, entities Entities, actuator Actuator, logger *slog.Logger) (*Scheduler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		opts:       opts,
		occ:        occ,
		entities:   entities,
		actuator:   actuator,
		logger:     logger,
		guaranteed: make(map[uint64]bool),
	}, nil
}

// Start opens the window. Calling it again has no effect.
func (s *Scheduler) Start() {
	if s.running || s.finished || s.cancelled {
		return
	}
	s.running = true
	s.logger.Debug("opportunity window opened", "required", s.opts.Required, "window", s.opts.Window)
}

// Running reports whether the window is open.
func (s *Scheduler) Running() bool {
	return s.running
}

// Compensating reports whether emergency compensation is active.
func (s *Scheduler) Compensating() bool {
	return s.compensating
}

// OnOccupancy updates the current episode after the occupant set changed.
// events are the enter and exit events of one tick; the occupant set already
// reflects all of them. The change is dated at the end of that tick, so a new
// episode starts when the following Tick has advanced the clock.
func (s *Scheduler) OnOccupancy(events []zone.Event) {
	if !s.running || len(events) == 0 {
		return
	}

	id, solo := s.soloTarget()
	switch {
	case !solo:
		s.ep = episode{}
	case !s.ep.active || s.ep.entityID != id:
		s.ep = episode{active: true, entityID: id, pending: true}
	}
}

// soloTarget reports the sole occupant if it is a live Target.
func (s *Scheduler) soloTarget() (uint64, bool) {
	if s.occ == nil || s.entities == nil || s.occ.Count() != 1 {
		return 0, false
	}
	id := s.occ.IDs()[0]
	kind, ok := s.entities.Kind(id)
	if !ok || kind != object.KindTarget {
		return 0, false
	}
	return id, true
}

// Tick advances the window by dt, records a qualifying opportunity when the
// current episode reaches MinSolo, and runs compensation when behind
// schedule. It returns the opportunity recorded during this call, if any.
func (s *Scheduler) Tick(dt time.Duration) (Record, bool) {
	if !s.running {
		return Record{}, false
	}
	if dt > 0 {
		s.elapsed += dt
	}
	if s.ep.pending {
		s.ep.start = s.elapsed
		s.ep.pending = false
	}

	rec, recorded := s.checkEpisode()

	if s.compensating && len(s.records) >= s.opts.Required {
		s.compensating = false
		s.logger.Info("compensation stopped, requirement met", "recorded", len(s.records))
	}

	remaining := s.opts.Window - s.elapsed
	if remaining <= 0 {
		s.finish()
		return rec, recorded
	}
	if remaining <= s.opts.EmergencyThreshold && len(s.records) < s.opts.Required {
		s.compensate(remaining)
	}
	return rec, recorded
}

func (s *Scheduler) checkEpisode() (Record, bool) {
	if !s.ep.active || s.ep.pending || s.ep.recorded || s.elapsed-s.ep.start < s.opts.MinSolo {
		return Record{}, false
	}
	kind, ok := s.entities.Kind(s.ep.entityID)
	if !ok {
		s.ep = episode{}
		return Record{}, false
	}

	s.ep.recorded = true
	_, guaranteed := s.guaranteed[s.ep.entityID]
	if guaranteed {
		s.guaranteed[s.ep.entityID] = true
	}
	rec := Record{
		Time:       s.elapsed,
		EntityID:   s.ep.entityID,
		Kind:       kind,
		Solo:       true,
		Guaranteed: guaranteed,
	}
	s.records = append(s.records, rec)
	s.logger.Info("opportunity recorded",
		"entity", rec.EntityID,
		"at", rec.Time,
		"guaranteed", rec.Guaranteed,
		"recorded", len(s.records),
		"required", s.opts.Required)
	return rec, true
}

func (s *Scheduler) compensate(remaining time.Duration) {
	if s.actuator == nil {
		if !s.warnedActor {
			s.warnedActor = true
			s.logger.Warn("compensation needed but no actuator configured")
		}
		return
	}

	if !s.compensating {
		needed := s.opts.Required - len(s.records)
		s.compensating = true
		s.interval = remaining / time.Duration(needed+1)
		s.nextSpawn = s.elapsed
		s.logger.Info("compensation started",
			"remaining", remaining,
			"needed", needed,
			"interval", s.interval)
	}

	s.actuator.PushDecoys()

	if s.elapsed < s.nextSpawn {
		return
	}
	s.nextSpawn += s.interval
	needed := s.opts.Required - len(s.records) - s.outstanding()
	if needed <= 0 {
		return
	}
	b := s.actuator.SpawnGuaranteed(s.opts.MinSolo + s.opts.DwellBuffer)
	if b != nil {
		s.guaranteed[b.ID] = false
	}
}

// outstanding counts guaranteed entities that are alive and not yet qualified.
func (s *Scheduler) outstanding() int {
	n := 0
	for id, qualified := range s.guaranteed {
		if qualified {
			continue
		}
		if _, ok := s.entities.Kind(id); ok {
			n++
		}
	}
	return n
}

func (s *Scheduler) finish() {
	s.running = false
	s.finished = true
	s.compensating = false
	st := s.Stats()
	s.logger.Info("opportunity window closed",
		"recorded", st.Recorded,
		"required", st.Required,
		"guaranteed_spawned", st.GuaranteedSpawned)
	if st.Missed() {
		s.logger.Warn("opportunity deadline missed",
			"recorded", st.Recorded,
			"required", st.Required)
	}
}

// Cancel stops the scheduler and discards its partial statistics.
func (s *Scheduler) Cancel() {
	if s.cancelled {
		return
	}
	s.cancelled = true
	s.running = false
	s.compensating = false
	s.ep = episode{}
	s.records = nil
	clear(s.guaranteed)
}

// Cancelled reports whether Cancel was called.
func (s *Scheduler) Cancelled() bool {
	return s.cancelled
}

// Stats returns a snapshot of the window.
func (s *Scheduler) Stats() Stats {
	remaining := s.opts.Window - s.elapsed
	if remaining < 0 {
		remaining = 0
	}
	records := make([]Record, len(s.records))
	copy(records, s.records)
	return Stats{
		Required:          s.opts.Required,
		Recorded:          len(s.records),
		Elapsed:           s.elapsed,
		Remaining:         remaining,
		Compensating:      s.compensating,
		GuaranteedSpawned: len(s.guaranteed),
		Finished:          s.finished,
		Records:           records,
	}
}
