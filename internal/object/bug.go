package object

import (
	"math"

	"github.com/tomz197/frogduel/internal/physics"
)

// Bug is a mobile entity: a target fly or a decoy bee.
type Bug struct {
	ID         uint64
	Kind       Kind
	X, Y       float64 // Center
	W, H       float64 // Extent
	Speed      float64 // World units per second
	Age        float64 // Seconds alive
	Lifetime   float64 // Seconds before auto-destroy; 0 disables
	Destroyed  bool
	Guaranteed bool // Spawned by the opportunity scheduler

	movement Movement
	flee     *flee
}

// flee is a temporary override that carries the bug to a point at high speed.
type flee struct {
	toX, toY float64
	speed    float64
}

// NewBug creates a bug with the given movement.
func NewBug(id uint64, kind Kind, x, y, size, speed float64, m Movement) *Bug {
	return &Bug{
		ID:       id,
		Kind:     kind,
		X:        x,
		Y:        y,
		W:        size,
		H:        size,
		Speed:    speed,
		movement: m,
	}
}

// Update moves the bug and handles lifetime and leaving the play area.
func (b *Bug) Update(ctx UpdateContext) (bool, error) {
	if b.Destroyed {
		return true, nil
	}

	dt := ctx.Delta.Seconds()
	b.Age += dt
	if b.Lifetime > 0 && b.Age >= b.Lifetime {
		b.Destroyed = true
		return true, nil
	}

	switch {
	case b.flee != nil:
		b.stepFlee(dt)
	case b.movement != nil:
		b.movement.Step(b, ctx)
	}

	if !ctx.Bounds.Expand(ctx.Margin).Contains(b.X, b.Y) {
		b.Destroyed = true
		return true, nil
	}
	return false, nil
}

// Push sends the bug radially away from (cx, cy) until it is distance units
// from that point, travelling at speed. A bug sitting exactly on the point is
// pushed along +x.
func (b *Bug) Push(cx, cy, distance, speed float64) {
	dx, dy := b.X-cx, b.Y-cy
	d := math.Hypot(dx, dy)
	if d == 0 {
		dx, dy, d = 1, 0, 1
	}
	nx, ny := dx/d, dy/d
	b.flee = &flee{
		toX:   cx + nx*distance,
		toY:   cy + ny*distance,
		speed: speed,
	}
	if w, ok := b.movement.(*Wander); ok {
		w.Leave(nx, ny)
	}
}

// Fleeing reports whether a push is still in progress.
func (b *Bug) Fleeing() bool {
	return b.flee != nil
}

func (b *Bug) stepFlee(dt float64) {
	f := b.flee
	dx, dy := f.toX-b.X, f.toY-b.Y
	d := math.Hypot(dx, dy)
	step := f.speed * dt
	if d <= step || d == 0 {
		b.X, b.Y = f.toX, f.toY
		b.flee = nil
		return
	}
	b.X += dx / d * step
	b.Y += dy / d * step
}

// Movement returns the bug's movement behavior.
func (b *Bug) Movement() Movement {
	return b.movement
}

// MarkDestroyed marks the bug for removal (implements Destructible).
func (b *Bug) MarkDestroyed() {
	b.Destroyed = true
}

// IsDestroyed returns true if the bug is marked for destruction (implements Destructible).
func (b *Bug) IsDestroyed() bool {
	return b.Destroyed
}

// Position returns the bug's center.
func (b *Bug) Position() (float64, float64) {
	return b.X, b.Y
}

// Bounds returns the bug's bounding region.
func (b *Bug) Bounds() physics.Rect {
	return physics.RectAround(b.X, b.Y, b.W, b.H)
}

// Body returns the bug as a collider.
func (b *Bug) Body() physics.Body {
	return physics.Body{
		ID:    b.ID,
		Shape: physics.ShapeBox,
		X:     b.X,
		Y:     b.Y,
		W:     b.W,
		H:     b.H,
	}
}
