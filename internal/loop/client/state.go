package client

import (
	"time"

	"github.com/tomz197/frogduel/internal/draw"
	"github.com/tomz197/frogduel/internal/input"
	"github.com/tomz197/frogduel/internal/session"
)

// GameState represents the current screen for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen
	GameStateRound                     // A round is running or showing its result
	GameStateShutdown                  // Server is shutting down
)

// ClientState holds per-connection state (input, crosshair, latest round news).
type ClientState struct {
	Input         input.Input
	GameState     GameState
	CrossX        float64 // Crosshair in logical view coordinates
	CrossY        float64
	Countdown     int              // Latest countdown value
	Opportunities int              // Opportunities recorded in the current round
	Outcome       *session.Outcome // Set when the current round ended
	Wins, Losses  int
	termSizeFunc  draw.TermSizeFunc
	Running       bool
	delta         time.Duration
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown
	isInactive    bool

	prevGameState GameState
	prevPhase     session.Phase
	wasInactive   bool
}

// NewClientState creates a new initialized client state with the crosshair centered.
func NewClientState(viewWidth, viewHeight float64) *ClientState {
	return &ClientState{
		GameState: GameStateStart,
		CrossX:    viewWidth / 2,
		CrossY:    viewHeight / 2,
		Running:   true,
	}
}
