package object

import "math"

// Movement moves a bug each tick.
type Movement interface {
	Step(b *Bug, ctx UpdateContext)
}

// Wander flies toward the zone with a small random offset re-picked every
// PathInterval. Once within PassDistance of the zone center it stops steering
// and keeps going along the dominant axis of its last heading, leaving the play
// area on the far side.
type Wander struct {
	PathInterval float64 // Seconds between steering updates
	Jitter       float64 // Magnitude of the random heading offset
	PassDistance float64

	dirX, dirY float64
	timer      float64
	steered    bool
	passed     bool
}

// NewWander creates a wander movement with the default steering cadence.
func NewWander(passDistance float64) *Wander {
	return &Wander{
		PathInterval: 0.2,
		Jitter:       0.05,
		PassDistance: passDistance,
	}
}

// Step implements Movement.
func (w *Wander) Step(b *Bug, ctx UpdateContext) {
	dt := ctx.Delta.Seconds()

	if !w.steered {
		w.steer(b, ctx)
		w.steered = true
	}
	w.timer += dt
	if w.timer >= w.PathInterval && !w.passed {
		w.steer(b, ctx)
		w.timer = 0
	}

	b.X += w.dirX * b.Speed * dt
	b.Y += w.dirY * b.Speed * dt

	if !w.passed && ctx.Zone != nil {
		cx, cy := ctx.Zone.Center()
		if math.Hypot(cx-b.X, cy-b.Y) < w.PassDistance {
			w.passed = true
			w.dirX, w.dirY = dominantAxis(w.dirX, w.dirY)
		}
	}
}

// Leave stops steering and sets a fixed outbound heading.
func (w *Wander) Leave(dx, dy float64) {
	w.passed = true
	w.steered = true
	w.dirX, w.dirY = normalize(dx, dy)
}

// Passed reports whether the bug has crossed the zone center.
func (w *Wander) Passed() bool {
	return w.passed
}

// Heading returns the current unit heading.
func (w *Wander) Heading() (float64, float64) {
	return w.dirX, w.dirY
}

func (w *Wander) steer(b *Bug, ctx UpdateContext) {
	if ctx.Zone == nil {
		return
	}
	cx, cy := ctx.Zone.Center()
	dx, dy := normalize(cx-b.X, cy-b.Y)
	if ctx.Rand != nil && w.Jitter > 0 {
		ox, oy := randInUnitCircle(ctx)
		dx += ox * w.Jitter
		dy += oy * w.Jitter
	}
	w.dirX, w.dirY = normalize(dx, dy)
}

type homingPhase int

const (
	homingApproach homingPhase = iota
	homingDwell
	homingExit
)

// Homing flies straight at the zone's current center, loiters inside the zone
// for Stay seconds once within ArriveRadius, then leaves at double speed.
// While loitering the bug follows the zone and never strays more than Leash
// from its center.
type Homing struct {
	ArriveRadius float64
	Stay         float64
	Leash        float64
	Jitter       float64 // Loiter drift speed

	phase      homingPhase
	stayTimer  float64
	offX, offY float64
	exitX      float64
	exitY      float64
}

// NewHoming creates a homing movement that dwells for stay seconds.
func NewHoming(stay, leash float64) *Homing {
	return &Homing{
		ArriveRadius: 1,
		Stay:         stay,
		Leash:        leash,
		Jitter:       0.5,
	}
}

// Step implements Movement.
func (h *Homing) Step(b *Bug, ctx UpdateContext) {
	dt := ctx.Delta.Seconds()
	if ctx.Zone == nil {
		h.phase = homingExit
	}

	switch h.phase {
	case homingApproach:
		cx, cy := ctx.Zone.Center()
		dx, dy := cx-b.X, cy-b.Y
		d := math.Hypot(dx, dy)
		step := b.Speed * dt
		if d <= step {
			b.X, b.Y = cx, cy
		} else {
			b.X += dx / d * step
			b.Y += dy / d * step
		}
		if math.Hypot(cx-b.X, cy-b.Y) < h.ArriveRadius {
			h.phase = homingDwell
			h.offX, h.offY = b.X-cx, b.Y-cy
		}

	case homingDwell:
		h.stayTimer += dt
		if ctx.Rand != nil {
			ox, oy := randInUnitCircle(ctx)
			h.offX += ox * h.Jitter * dt
			h.offY += oy * h.Jitter * dt
		}
		if d := math.Hypot(h.offX, h.offY); d > h.Leash && d > 0 {
			h.offX *= h.Leash / d
			h.offY *= h.Leash / d
		}
		cx, cy := ctx.Zone.Center()
		b.X, b.Y = cx+h.offX, cy+h.offY

		if h.stayTimer >= h.Stay {
			h.phase = homingExit
			if ctx.Rand != nil {
				h.exitX, h.exitY = normalize(randInUnitCircle(ctx))
			}
			if h.exitX == 0 && h.exitY == 0 {
				h.exitX = 1
			}
		}

	case homingExit:
		if h.exitX == 0 && h.exitY == 0 {
			h.exitX = 1
		}
		b.X += h.exitX * b.Speed * 2 * dt
		b.Y += h.exitY * b.Speed * 2 * dt
	}
}

// Arrived reports whether the bug has reached the zone.
func (h *Homing) Arrived() bool {
	return h.phase != homingApproach
}

// Dwelling reports whether the bug is currently loitering in the zone.
func (h *Homing) Dwelling() bool {
	return h.phase == homingDwell
}

// Released reports whether the forced dwell is over.
func (h *Homing) Released() bool {
	return h.phase == homingExit
}

func dominantAxis(x, y float64) (float64, float64) {
	if math.Abs(x) > math.Abs(y) {
		if x > 0 {
			return 1, 0
		}
		return -1, 0
	}
	if y > 0 {
		return 0, 1
	}
	return 0, -1
}

func normalize(x, y float64) (float64, float64) {
	d := math.Hypot(x, y)
	if d == 0 {
		return 0, 0
	}
	return x / d, y / d
}

func randInUnitCircle(ctx UpdateContext) (float64, float64) {
	for {
		x := ctx.Rand.Float64()*2 - 1
		y := ctx.Rand.Float64()*2 - 1
		if x*x+y*y <= 1 {
			return x, y
		}
	}
}
