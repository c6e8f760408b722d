// Package config centralizes rendering and tick constants.
package config

import "time"

// Logical view size. One terminal row holds two logical rows.
const (
	ViewWidth  = 120 // Logical viewport width
	ViewHeight = 80  // Logical viewport height (in sub-pixels, so 40 terminal rows)
	ViewScale  = 2   // Logical units per world unit
)

// World dimensions - the play area in world units, centered on the origin.
// At ViewScale it fills the viewport exactly.
const (
	WorldWidth  = ViewWidth / ViewScale
	WorldHeight = ViewHeight / ViewScale
	WorldMargin = 2.0 // Entities further outside the play area are destroyed
	CellSize    = 4.0 // Broad-phase cell size, larger than any entity
)

// Terminal render limits. Larger terminals get a centered, bordered area.
const (
	MaxTermWidth  = ViewWidth
	MaxTermHeight = ViewHeight / 2
)

// Player
const (
	CrosshairSpeed    = 60.0 // Logical units per second while an arrow key is held
	MaxUsernameLength = 16   // Maximum display length for player usernames
)

// Rounds
const (
	ResultDisplaySeconds = 4.0 // Minimum time the result stays up before a replay is allowed
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Server tick rate
const (
	ServerTickRate = 60
	ServerTickTime = time.Second / ServerTickRate
)
