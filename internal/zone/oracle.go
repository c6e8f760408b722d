package zone

import (
	"log/slog"

	"github.com/tomz197/frogduel/internal/physics"
	"github.com/tomz197/frogduel/internal/view"
)

// Collider is the collision backend consulted for the overlap signal.
type Collider interface {
	OverlapPoint(id uint64, x, y float64) bool
}

// Extent is anything with a position and a bounding region.
type Extent interface {
	Position() (float64, float64)
	Bounds() physics.Rect
}

// Vote holds the three independent point-containment signals.
type Vote struct {
	Distance  bool // Squared-distance test against radius²
	Collision bool // Collision backend overlap (falls back to Distance)
	Projected bool // Screen-space test (falls back to Distance)
}

// Passed returns how many signals reported inside.
func (v Vote) Passed() int {
	return btoi(v.Distance) + btoi(v.Collision) + btoi(v.Projected)
}

// Inside is the majority verdict.
func (v Vote) Inside() bool {
	return v.Passed() >= 2
}

// EntityVote holds the three entity-containment signals.
type EntityVote struct {
	Bounds        bool // Bounding regions intersect
	Center        bool // Center point passes the point vote
	Samples       bool // At least 3 of the 5 sample points inside
	SamplesInside int
}

// Passed returns how many signals reported inside.
func (v EntityVote) Passed() int {
	return btoi(v.Bounds) + btoi(v.Center) + btoi(v.Samples)
}

// Inside is the majority verdict.
func (v EntityVote) Inside() bool {
	return v.Passed() >= 2
}

// Oracle decides whether points and entities are inside a zone using majority
// votes over independent computations.
type Oracle struct {
	zone      *Zone
	collider  Collider
	projector view.Projector
	widen     bool
	logger    *slog.Logger
}

// OracleOption configures an Oracle.
type OracleOption func(*Oracle)

// WithCollider sets the collision backend used for the overlap signal.
func WithCollider(c Collider) OracleOption {
	return func(o *Oracle) { o.collider = c }
}

// WithProjector sets the view transform used for the projected signal.
func WithProjector(p view.Projector) OracleOption {
	return func(o *Oracle) { o.projector = p }
}

// WithWidenedDistance makes the distance signal also accept points inside the
// tolerance band (radius + tolerance).
func WithWidenedDistance() OracleOption {
	return func(o *Oracle) { o.widen = true }
}

// WithLogger sets the logger used for disagreement diagnostics.
func WithLogger(l *slog.Logger) OracleOption {
	return func(o *Oracle) { o.logger = l }
}

// NewOracle creates an oracle for z. Without a collider or projector the
// corresponding signals mirror the distance signal and cannot cause disagreement.
func NewOracle(z *Zone, opts ...OracleOption) *Oracle {
	o := &Oracle{zone: z}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// SetProjector swaps the view transform (e.g. after a viewport change).
func (o *Oracle) SetProjector(p view.Projector) {
	o.projector = p
}

// InZone reports whether the world point is inside the zone.
func (o *Oracle) InZone(x, y float64) bool {
	if o.zone == nil {
		return false
	}
	v := o.PointVote(x, y)
	if p := v.Passed(); p == 1 || p == 2 {
		o.logger.Debug("zone signals disagree",
			"x", x, "y", y,
			"distance", v.Distance, "collision", v.Collision, "projected", v.Projected)
	}
	return v.Inside()
}

// PointVote evaluates all three point signals.
func (o *Oracle) PointVote(x, y float64) Vote {
	if o.zone == nil {
		return Vote{}
	}
	dist := o.distanceCheck(x, y)
	v := Vote{Distance: dist, Collision: dist, Projected: dist}
	if o.collider != nil {
		v.Collision = o.collider.OverlapPoint(BodyID, x, y)
	}
	if o.projector != nil {
		v.Projected = o.projectedCheck(x, y)
	}
	return v
}

// InZoneWithTolerance is a single-pass distance test against radius+tol.
// A negative tol uses the zone's own tolerance.
func (o *Oracle) InZoneWithTolerance(x, y, tol float64) bool {
	if o.zone == nil {
		return false
	}
	if tol < 0 {
		tol = o.zone.Tolerance()
	}
	cx, cy := o.zone.Center()
	return physics.PointInCircle(x, y, cx, cy, o.zone.Radius()+tol)
}

// EntityInZone reports whether an extended entity is inside the zone.
func (o *Oracle) EntityInZone(e Extent) bool {
	if e == nil || o.zone == nil {
		return false
	}
	return o.EntityVote(e).Inside()
}

// EntityVote evaluates all three entity signals.
func (o *Oracle) EntityVote(e Extent) EntityVote {
	if e == nil || o.zone == nil {
		return EntityVote{}
	}
	bounds := e.Bounds()
	x, y := e.Position()

	v := EntityVote{
		Bounds: o.zone.Bounds().Intersects(bounds),
		Center: o.InZone(x, y),
	}
	for _, p := range bounds.SamplePoints() {
		if o.distanceCheck(p[0], p[1]) {
			v.SamplesInside++
		}
	}
	v.Samples = v.SamplesInside >= 3
	return v
}

// distanceCheck compares squared distances in the z=0 plane.
func (o *Oracle) distanceCheck(x, y float64) bool {
	cx, cy := o.zone.Center()
	d2 := physics.DistanceSquared(x, y, cx, cy)
	r := o.zone.Radius()
	if d2 <= r*r {
		return true
	}
	if o.widen {
		rt := r + o.zone.Tolerance()
		return d2 <= rt*rt
	}
	return false
}

// projectedCheck compares distances after projecting through the view. The
// projected radius is measured to the point center + (radius, 0).
func (o *Oracle) projectedCheck(x, y float64) bool {
	cx, cy := o.zone.Center()
	scx, scy := o.projector.WorldToScreen(cx, cy)
	spx, spy := o.projector.WorldToScreen(x, y)
	ex, ey := o.projector.WorldToScreen(cx+o.zone.Radius(), cy)
	screenRadius := physics.Distance(scx, scy, ex, ey)
	return physics.DistanceSquared(spx, spy, scx, scy) <= screenRadius*screenRadius
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
