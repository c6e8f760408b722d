// Package zone holds the moving circular target region, its occupant set and
// the containment oracle that decides membership.
package zone

import (
	"math"

	"github.com/tomz197/frogduel/internal/physics"
)

// BodyID is the collision-space ID reserved for the zone itself.
const BodyID uint64 = 0

// Options configures a Zone.
type Options struct {
	AnchorX, AnchorY float64 // Center of the orbit
	Radius           float64
	Tolerance        float64 // Extra band used by the looser distance pass
	OrbitRadius      float64 // 0 disables motion
	AngularSpeed     float64 // Radians per second
	Phase            float64 // Orbit angle at t=0
}

// Zone is the circular region that adjudicates wins and losses. Its center
// orbits the anchor at constant angular speed; the position is a pure function
// of elapsed time.
type Zone struct {
	opts    Options
	elapsed float64
	x, y    float64
	occ     Occupancy
}

// New creates a zone positioned at t=0.
func New(opts Options) *Zone {
	if opts.Radius <= 0 {
		opts.Radius = 0.1
	}
	if opts.Tolerance < 0 {
		opts.Tolerance = 0
	}
	z := &Zone{opts: opts, occ: newOccupancy()}
	z.x, z.y = z.PositionAt(0)
	return z
}

// PositionAt returns the zone center after t seconds.
func (z *Zone) PositionAt(t float64) (float64, float64) {
	if z.opts.OrbitRadius <= 0 {
		return z.opts.AnchorX, z.opts.AnchorY
	}
	angle := math.Mod(z.opts.Phase+z.opts.AngularSpeed*t, 2*math.Pi)
	return z.opts.AnchorX + math.Cos(angle)*z.opts.OrbitRadius,
		z.opts.AnchorY + math.Sin(angle)*z.opts.OrbitRadius
}

// Advance moves the zone forward by dt seconds.
func (z *Zone) Advance(dt float64) {
	if dt > 0 {
		z.elapsed += dt
	}
	z.x, z.y = z.PositionAt(z.elapsed)
}

// Center returns the current center.
func (z *Zone) Center() (float64, float64) {
	return z.x, z.y
}

// Radius returns the zone radius.
func (z *Zone) Radius() float64 {
	return z.opts.Radius
}

// Tolerance returns the boundary tolerance.
func (z *Zone) Tolerance() float64 {
	return z.opts.Tolerance
}

// SetRadius changes the radius. Values below 0.1 are clamped.
func (z *Zone) SetRadius(r float64) {
	z.opts.Radius = math.Max(0.1, r)
}

// Bounds returns the bounding region of the zone circle.
func (z *Zone) Bounds() physics.Rect {
	return physics.CircleBounds(z.x, z.y, z.opts.Radius)
}

// Body returns the zone as a collider for the collision space.
func (z *Zone) Body() physics.Body {
	return physics.Body{
		ID:     BodyID,
		Shape:  physics.ShapeCircle,
		X:      z.x,
		Y:      z.y,
		Radius: z.opts.Radius,
	}
}

// Occupancy returns the zone's occupant set.
func (z *Zone) Occupancy() *Occupancy {
	return &z.occ
}
