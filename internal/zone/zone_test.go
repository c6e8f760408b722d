package zone

import (
	"math"
	"testing"

	"github.com/tomz197/frogduel/internal/physics"
	"github.com/tomz197/frogduel/internal/view"
)

func TestZoneOrbitIsPureFunctionOfTime(t *testing.T) {
	z := New(Options{Radius: 10, OrbitRadius: 0.6, AngularSpeed: 1})

	// Many small steps must land where one big step does.
	for i := 0; i < 1000; i++ {
		z.Advance(0.01)
	}
	x, y := z.Center()
	wx, wy := z.PositionAt(10)
	if math.Abs(x-wx) > 1e-6 || math.Abs(y-wy) > 1e-6 {
		t.Fatalf("center after 1000 steps = (%f, %f), want (%f, %f)", x, y, wx, wy)
	}

	if d := physics.Distance(0, 0, x, y); math.Abs(d-0.6) > 1e-9 {
		t.Fatalf("distance from anchor = %f, want 0.6", d)
	}
}

func TestZoneWithoutOrbitStaysOnAnchor(t *testing.T) {
	z := New(Options{AnchorX: 4, AnchorY: -2, Radius: 3})
	z.Advance(12.5)
	if x, y := z.Center(); x != 4 || y != -2 {
		t.Fatalf("center = (%f, %f), want (4, -2)", x, y)
	}
}

func TestSetRadiusClamps(t *testing.T) {
	z := New(Options{Radius: 5})
	z.SetRadius(-3)
	if z.Radius() != 0.1 {
		t.Fatalf("radius = %f, want 0.1", z.Radius())
	}
}

func TestOccupancyApplyEmitsExitsBeforeEnters(t *testing.T) {
	z := New(Options{Radius: 5})
	occ := z.Occupancy()

	events := occ.Apply(map[uint64]bool{1: true, 2: true}, nil)
	if len(events) != 2 || events[0].EntityID != 1 || events[1].Count != 2 {
		t.Fatalf("first apply events = %+v", events)
	}

	events = occ.Apply(map[uint64]bool{2: true, 3: true}, map[uint64]bool{1: true})
	if len(events) != 2 {
		t.Fatalf("second apply events = %+v, want 2", events)
	}
	if events[0].Type != EventExit || events[0].EntityID != 1 || !events[0].Removed || events[0].Count != 1 {
		t.Fatalf("first event = %+v, want removed exit of 1", events[0])
	}
	if events[1].Type != EventEnter || events[1].EntityID != 3 || events[1].Count != 2 {
		t.Fatalf("second event = %+v, want enter of 3", events[1])
	}
	if ids := occ.IDs(); len(ids) != 2 || ids[0] != 2 || ids[1] != 3 {
		t.Fatalf("IDs = %v, want [2 3]", ids)
	}

	if events := occ.Apply(map[uint64]bool{2: true, 3: true}, nil); len(events) != 0 {
		t.Fatalf("unchanged membership produced events %+v", events)
	}
}

// fullOracle builds an oracle with all three signals backed by real collaborators.
func fullOracle(z *Zone) (*Oracle, *physics.Space) {
	space := physics.NewSpace(physics.Rect{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100}, 4)
	space.Rebuild([]physics.Body{z.Body()})
	o := NewOracle(z,
		WithCollider(space),
		WithProjector(view.NewViewport(120, 80, 2)),
	)
	return o, space
}

func TestBoundaryAgreement(t *testing.T) {
	z := New(Options{AnchorX: 3, AnchorY: -1, Radius: 10})
	o, _ := fullOracle(z)

	for _, angle := range []float64{0, 0.7, math.Pi / 2, 2.5, math.Pi, 4.1, 5.9} {
		inX := 3 + math.Cos(angle)*9
		inY := -1 + math.Sin(angle)*9
		v := o.PointVote(inX, inY)
		if !v.Distance || !v.Collision || !v.Projected {
			t.Fatalf("interior point at angle %f: vote %+v, want all true", angle, v)
		}

		outX := 3 + math.Cos(angle)*11
		outY := -1 + math.Sin(angle)*11
		v = o.PointVote(outX, outY)
		if v.Distance || v.Collision || v.Projected {
			t.Fatalf("exterior point at angle %f: vote %+v, want all false", angle, v)
		}
	}
}

func TestInZoneMonotonicInRadius(t *testing.T) {
	points := [][2]float64{{0, 0}, {4.9, 0}, {5, 0}, {3, 4}, {-6, 2}, {0, -7.5}, {9, 9}}
	radii := []float64{1, 2.5, 5, 5.0000001, 7, 8, 12, 20}

	z := New(Options{Radius: radii[0]})
	for _, p := range points {
		was := false
		for _, r := range radii {
			z.SetRadius(r)
			o, _ := fullOracle(z)
			in := o.InZone(p[0], p[1])
			if was && !in {
				t.Fatalf("point %v left the zone when radius grew to %f", p, r)
			}
			was = in
		}
	}
}

type stubCollider struct{ inside bool }

func (s stubCollider) OverlapPoint(uint64, float64, float64) bool { return s.inside }

type skewProjector struct{ scaleY float64 }

func (s skewProjector) WorldToScreen(x, y float64) (float64, float64) {
	return x, y * s.scaleY
}

func TestMajorityOverridesSingleDissent(t *testing.T) {
	z := New(Options{Radius: 10})

	o := NewOracle(z, WithCollider(stubCollider{inside: false}))
	if !o.InZone(1, 1) {
		t.Fatal("distance and mirrored projection should outvote the collider")
	}

	o = NewOracle(z, WithCollider(stubCollider{inside: true}))
	if o.InZone(30, 0) {
		t.Fatal("a lone collider vote must not admit a far point")
	}

	// Projection squashes y, so (0, 10.5) projects inside while the distance
	// test says outside; collider sides with distance.
	o = NewOracle(z, WithCollider(stubCollider{inside: false}), WithProjector(skewProjector{scaleY: 0.5}))
	v := o.PointVote(0, 10.5)
	if v.Distance || !v.Projected || v.Inside() {
		t.Fatalf("vote = %+v, want only projected inside and verdict outside", v)
	}
}

func TestFallbackWithoutCollaborators(t *testing.T) {
	z := New(Options{Radius: 2})
	o := NewOracle(z)
	v := o.PointVote(1, 1)
	if !v.Distance || !v.Collision || !v.Projected {
		t.Fatalf("vote = %+v, want all signals mirroring distance", v)
	}

	o = NewOracle(nil)
	if o.InZone(0, 0) {
		t.Fatal("oracle without a zone must answer not in zone")
	}
}

func TestToleranceBand(t *testing.T) {
	z := New(Options{Radius: 10, Tolerance: 0.5})
	o := NewOracle(z)

	if o.InZone(10.3, 0) {
		t.Fatal("strict test should reject a point in the tolerance band")
	}
	if !o.InZoneWithTolerance(10.3, 0, -1) {
		t.Fatal("tolerance test should accept a point in the band")
	}
	if o.InZoneWithTolerance(10.3, 0, 0.1) {
		t.Fatal("custom tolerance 0.1 should reject 10.3")
	}

	widened := NewOracle(z, WithWidenedDistance())
	if !widened.InZone(10.3, 0) {
		t.Fatal("widened distance signal should accept the band")
	}
}

type box struct{ x, y, w, h float64 }

func (b box) Position() (float64, float64) { return b.x, b.y }
func (b box) Bounds() physics.Rect         { return physics.RectAround(b.x, b.y, b.w, b.h) }

func TestEntityVote(t *testing.T) {
	z := New(Options{Radius: 10})
	o, _ := fullOracle(z)

	tests := []struct {
		name    string
		e       box
		want    bool
		samples int
	}{
		{"well inside", box{0, 0, 1, 1}, true, 5},
		{"far outside", box{40, 0, 1, 1}, false, 0},
		{"center just inside, corners straddle", box{9.8, 0, 1, 1}, true, 3},
		{"center outside, bounds touch", box{10.4, 0, 1, 1}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := o.EntityVote(tt.e)
			if v.Inside() != tt.want {
				t.Fatalf("vote = %+v, inside = %v, want %v", v, v.Inside(), tt.want)
			}
			if v.SamplesInside != tt.samples {
				t.Fatalf("samples inside = %d, want %d", v.SamplesInside, tt.samples)
			}
			if o.EntityInZone(tt.e) != tt.want {
				t.Fatalf("EntityInZone disagrees with vote")
			}
		})
	}

	if o.EntityInZone(nil) {
		t.Fatal("nil entity must not be in zone")
	}
}
