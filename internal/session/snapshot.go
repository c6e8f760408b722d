package session

import (
	"time"

	"github.com/tomz197/frogduel/internal/object"
	"github.com/tomz197/frogduel/internal/opportunity"
)

// EntityView is a read-only copy of an entity for rendering.
type EntityView struct {
	ID         uint64
	Kind       object.Kind
	X, Y       float64
	W, H       float64
	InZone     bool
	Guaranteed bool
}

// Snapshot is an immutable copy of the round state, safe to hand to another
// goroutine.
type Snapshot struct {
	ID            string
	Phase         Phase
	Clock         time.Duration
	Countdown     int // Steps left while Waiting
	ZoneX, ZoneY  float64
	ZoneRadius    float64
	Entities      []EntityView
	RaceStarted   bool
	RaceFired     bool
	Outcome       Outcome // Set once Phase is terminal
	Opportunities opportunity.Stats
}

// Snapshot copies the current state. It must be called from the goroutine
// that calls Update.
func (s *Session) Snapshot() *Snapshot {
	z := s.arena.Zone()
	cx, cy := z.Center()
	snap := &Snapshot{
		ID:            s.ID(),
		Phase:         s.Phase(),
		Clock:         s.clock,
		Countdown:     s.countdown.StepsLeft(),
		ZoneX:         cx,
		ZoneY:         cy,
		ZoneRadius:    z.Radius(),
		RaceStarted:   s.race.Started(),
		RaceFired:     s.race.HasFired(),
		Outcome:       s.outcome,
		Opportunities: s.sched.Stats(),
	}
	live := s.arena.Live()
	snap.Entities = make([]EntityView, 0, len(live))
	for _, b := range live {
		snap.Entities = append(snap.Entities, EntityView{
			ID:         b.ID,
			Kind:       b.Kind,
			X:          b.X,
			Y:          b.Y,
			W:          b.W,
			H:          b.H,
			InZone:     s.arena.InZone(b.ID),
			Guaranteed: b.Guaranteed,
		})
	}
	return snap
}
