// Package object defines the mobile entities of a round and how they move.
package object

import (
	"math/rand"
	"time"

	"github.com/tomz197/frogduel/internal/physics"
)

// Kind is the entity kind.
type Kind int

const (
	KindTarget Kind = iota // Catching it in the zone can win the round
	KindDecoy              // Hitting it always loses
)

func (k Kind) String() string {
	switch k {
	case KindTarget:
		return "target"
	case KindDecoy:
		return "decoy"
	default:
		return "unknown"
	}
}

// Locator reports where the zone currently is.
type Locator interface {
	Center() (float64, float64)
	Radius() float64
}

// UpdateContext provides all the information an entity needs during update.
type UpdateContext struct {
	Delta  time.Duration
	Zone   Locator
	Bounds physics.Rect // Play area; leaving it (plus Margin) destroys the entity
	Margin float64
	Rand   *rand.Rand
}

// Object is an updatable entity.
type Object interface {
	// Update advances the object. Returns true if the object should be removed.
	Update(ctx UpdateContext) (remove bool, err error)
}

// Destructible is implemented by objects that can be marked for removal.
type Destructible interface {
	// MarkDestroyed marks the object for removal on the next update cycle.
	MarkDestroyed()
	// IsDestroyed returns true if the object is marked for destruction.
	IsDestroyed() bool
}

// EdgePosition picks a random point on one of the four edges of bounds.
func EdgePosition(bounds physics.Rect, rnd *rand.Rand) (float64, float64) {
	w := bounds.Width()
	h := bounds.Height()

	switch rnd.Intn(4) {
	case 0: // Top
		return bounds.MinX + rnd.Float64()*w, bounds.MaxY
	case 1: // Bottom
		return bounds.MinX + rnd.Float64()*w, bounds.MinY
	case 2: // Left
		return bounds.MinX, bounds.MinY + rnd.Float64()*h
	default: // Right
		return bounds.MaxX, bounds.MinY + rnd.Float64()*h
	}
}
