package session

import (
	"time"

	"github.com/tomz197/frogduel/internal/opportunity"
)

// Phase is the round phase. Phases only move forward.
type Phase int32

const (
	PhaseWaiting Phase = iota // Countdown, input ignored
	PhaseReady                // Input accepted, acting is premature
	PhasePlaying              // Race is live
	PhaseWon
	PhaseLost
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhaseWon:
		return "won"
	case PhaseLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends the round.
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost
}

// AcceptsInput reports whether actions submitted in this phase are adjudicated.
func (p Phase) AcceptsInput() bool {
	return p == PhaseReady || p == PhasePlaying
}

// Reason explains a terminal outcome.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTooEarly
	ReasonMissedZone
	ReasonWrongTarget
	ReasonCaught
	ReasonOpponentFaster // Target hit after the opponent reacted
	ReasonOpponentFirst  // Opponent struck before any action
)

func (r Reason) String() string {
	switch r {
	case ReasonTooEarly:
		return "acted too early"
	case ReasonMissedZone:
		return "missed the zone"
	case ReasonWrongTarget:
		return "hit the wrong target"
	case ReasonCaught:
		return "caught the target"
	case ReasonOpponentFaster:
		return "opponent was faster"
	case ReasonOpponentFirst:
		return "opponent reacted first"
	default:
		return ""
	}
}

// Outcome is the terminal result of a round.
type Outcome struct {
	Phase        Phase // PhaseWon or PhaseLost
	Reason       Reason
	At           time.Duration // Session clock
	ReactionTime time.Duration // From Playing entry; zero unless the player decided the round while Playing
	ByAction     bool          // Decided by a player action rather than the opponent
	EntityID     uint64        // Entity hit, if any
}

// Won reports whether the player won.
func (o Outcome) Won() bool {
	return o.Phase == PhaseWon
}

// EventType identifies a presentation event.
type EventType int

const (
	EventPhaseChanged EventType = iota
	EventCountdown
	EventOpportunity
	EventOutcome
)

// Event is emitted to the presenter. Which fields are set depends on Type.
type Event struct {
	Type        EventType
	At          time.Duration // Session clock
	Phase       Phase
	Previous    Phase
	Countdown   int // Whole steps left in the Waiting countdown
	Opportunity opportunity.Record
	Outcome     Outcome
}

// Presenter consumes presentation events. It is never read back.
type Presenter interface {
	Present(Event)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Event)

// Present implements Presenter.
func (f PresenterFunc) Present(e Event) {
	f(e)
}
