package object

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/tomz197/frogduel/internal/physics"
)

type fixedZone struct{ x, y, r float64 }

func (z *fixedZone) Center() (float64, float64) { return z.x, z.y }
func (z *fixedZone) Radius() float64            { return z.r }

func testContext(z Locator) UpdateContext {
	return UpdateContext{
		Delta:  50 * time.Millisecond,
		Zone:   z,
		Bounds: physics.Rect{MinX: -30, MinY: -20, MaxX: 30, MaxY: 20},
		Margin: 2,
		Rand:   rand.New(rand.NewSource(7)),
	}
}

func TestBugLifetimeExpires(t *testing.T) {
	b := NewBug(1, KindTarget, 0, 0, 1, 0, nil)
	b.Lifetime = 0.12
	ctx := testContext(&fixedZone{r: 5})

	for i := 0; i < 2; i++ {
		if remove, _ := b.Update(ctx); remove {
			t.Fatalf("bug removed early at step %d", i)
		}
	}
	if remove, _ := b.Update(ctx); !remove || !b.IsDestroyed() {
		t.Fatal("bug should be destroyed once its lifetime is reached")
	}
}

func TestBugLeavingPlayAreaIsDestroyed(t *testing.T) {
	b := NewBug(1, KindDecoy, 31.9, 0, 1, 10, nil)
	b.movement = &Wander{passed: true, steered: true, dirX: 1}
	ctx := testContext(&fixedZone{r: 5})

	if remove, _ := b.Update(ctx); !remove {
		t.Fatalf("bug at x=%f should have left the play area", b.X)
	}
}

func TestMarkedBugIsRemoved(t *testing.T) {
	b := NewBug(1, KindTarget, 0, 0, 1, 1, nil)
	b.MarkDestroyed()
	if remove, _ := b.Update(testContext(nil)); !remove {
		t.Fatal("destroyed bug should be removed on next update")
	}
}

func TestWanderPassesThroughZone(t *testing.T) {
	z := &fixedZone{r: 6}
	b := NewBug(1, KindTarget, -29, 0, 1, 4, NewWander(1))
	ctx := testContext(z)

	entered, left := false, false
	for i := 0; i < 400 && !b.IsDestroyed(); i++ {
		b.Update(ctx)
		in := math.Hypot(b.X, b.Y) <= z.r
		if in {
			entered = true
		} else if entered {
			left = true
		}
	}
	if !entered || !left {
		t.Fatalf("wander should cross the zone: entered=%v left=%v", entered, left)
	}
	if !b.IsDestroyed() {
		t.Fatalf("wander bug should eventually leave the play area, at (%f, %f)", b.X, b.Y)
	}
	if !b.Movement().(*Wander).Passed() {
		t.Fatal("wander should report the pass")
	}
}

func TestHomingDwellsInsideZoneThenLeaves(t *testing.T) {
	z := &fixedZone{r: 6}
	h := NewHoming(3, 2)
	b := NewBug(1, KindTarget, 25, 15, 1, 5, h)
	ctx := testContext(z)

	var dwellTime float64
	for i := 0; i < 600 && !b.IsDestroyed(); i++ {
		b.Update(ctx)
		if h.Dwelling() {
			dwellTime += ctx.Delta.Seconds()
			// Leash 2 keeps the whole 1x1 body inside radius 6.
			if d := math.Hypot(b.X, b.Y); d > 2+1e-9 {
				t.Fatalf("dwelling bug strayed %f from the center", d)
			}
		}
	}
	if !h.Arrived() || !h.Released() {
		t.Fatalf("homing phases: arrived=%v released=%v", h.Arrived(), h.Released())
	}
	if dwellTime < 3-1e-9 {
		t.Fatalf("dwelled %f s, want at least 3", dwellTime)
	}
	if !b.IsDestroyed() {
		t.Fatal("released bug should leave the play area")
	}
}

func TestHomingFollowsMovingZone(t *testing.T) {
	z := &fixedZone{r: 6}
	h := NewHoming(10, 1)
	b := NewBug(1, KindTarget, 0, 0, 1, 5, h)
	ctx := testContext(z)

	b.Update(ctx)
	if !h.Dwelling() {
		t.Fatal("bug starting on the center should dwell immediately")
	}
	z.x, z.y = 4, -3
	for i := 0; i < 5; i++ {
		b.Update(ctx)
	}
	if d := math.Hypot(b.X-4, b.Y+3); d > 1+1e-9 {
		t.Fatalf("dwelling bug is %f from the moved center", d)
	}
}

func TestPushMovesBugRadiallyOut(t *testing.T) {
	z := &fixedZone{r: 6}
	b := NewBug(1, KindDecoy, 2, 0, 1, 3, NewWander(1))
	b.Push(0, 0, 8, 40)
	if !b.Fleeing() {
		t.Fatal("push should start a flee")
	}

	ctx := testContext(z)
	for i := 0; i < 10 && b.Fleeing(); i++ {
		b.Update(ctx)
	}
	if b.Fleeing() {
		t.Fatal("flee should finish")
	}
	if math.Abs(b.X-8) > 1e-9 || math.Abs(b.Y) > 1e-9 {
		t.Fatalf("bug at (%f, %f), want (8, 0)", b.X, b.Y)
	}

	// After the push the bug keeps heading out instead of turning back.
	before := b.X
	b.Update(ctx)
	if b.X <= before {
		t.Fatalf("bug turned back toward the zone: %f -> %f", before, b.X)
	}
}

func TestPushFromExactCenter(t *testing.T) {
	b := NewBug(1, KindDecoy, 0, 0, 1, 3, nil)
	b.Push(0, 0, 5, 100)
	b.Update(testContext(&fixedZone{r: 6}))
	if b.X != 5 || b.Y != 0 {
		t.Fatalf("bug at (%f, %f), want (5, 0)", b.X, b.Y)
	}
}

func TestEdgePositionLiesOnBorder(t *testing.T) {
	bounds := physics.Rect{MinX: -30, MinY: -20, MaxX: 30, MaxY: 20}
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		x, y := EdgePosition(bounds, rnd)
		onBorder := x == bounds.MinX || x == bounds.MaxX || y == bounds.MinY || y == bounds.MaxY
		if !onBorder || !bounds.Contains(x, y) {
			t.Fatalf("edge position (%f, %f) not on the border", x, y)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindTarget.String() != "target" || KindDecoy.String() != "decoy" || Kind(9).String() != "unknown" {
		t.Fatal("unexpected kind names")
	}
}
