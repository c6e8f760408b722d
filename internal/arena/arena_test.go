package arena

import (
	"math/rand"
	"testing"
	"time"

	"github.com/tomz197/frogduel/internal/object"
	"github.com/tomz197/frogduel/internal/physics"
	"github.com/tomz197/frogduel/internal/view"
	"github.com/tomz197/frogduel/internal/zone"
)

const tick = 50 * time.Millisecond

func testOptions() Options {
	return Options{
		Bounds:       physics.Rect{MinX: -30, MinY: -20, MaxX: 30, MaxY: 20},
		Margin:       2,
		CellSize:     4,
		Zone:         zone.Options{Radius: 6, Tolerance: 0.25},
		BugSize:      1.5,
		PassDistance: 1,
		ArriveRadius: 1,
		RepelSpeed:   20,
	}
}

func newTestArena(opts Options) *Arena {
	return New(opts, view.NewViewport(120, 80, 2), rand.New(rand.NewSource(3)), nil)
}

func TestEnterAndRemovedExitEvents(t *testing.T) {
	a := newTestArena(testOptions())
	b := a.CreateEntity(object.KindTarget, 0, 0)

	if a.InZone(b.ID) {
		t.Fatal("entity must not be an occupant before the next step")
	}
	events := a.Step(tick)
	if len(events) != 1 || events[0].Type != zone.EventEnter || events[0].EntityID != b.ID || events[0].Count != 1 {
		t.Fatalf("events = %+v, want one enter for %d", events, b.ID)
	}
	if !a.HasKindInZone(object.KindTarget) || a.HasKindInZone(object.KindDecoy) {
		t.Fatal("kind queries disagree with occupancy")
	}

	if events := a.Step(tick); len(events) != 0 {
		t.Fatalf("stationary entity produced events %+v", events)
	}

	b.MarkDestroyed()
	events = a.Step(tick)
	if len(events) != 1 || events[0].Type != zone.EventExit || !events[0].Removed {
		t.Fatalf("events = %+v, want one removed exit", events)
	}
	if _, ok := a.Bug(b.ID); ok {
		t.Fatal("destroyed entity still registered")
	}
	if a.Zone().Occupancy().Count() != 0 {
		t.Fatal("destroyed entity still in the occupant set")
	}
}

func TestOutsideEntityProducesNoEvents(t *testing.T) {
	a := newTestArena(testOptions())
	a.CreateEntity(object.KindTarget, 20, 10)
	if events := a.Step(tick); len(events) != 0 {
		t.Fatalf("events = %+v, want none", events)
	}
}

func TestPushDecoysClearsZone(t *testing.T) {
	a := newTestArena(testOptions())
	decoy := a.CreateEntity(object.KindDecoy, 1, 1)
	target := a.CreateEntity(object.KindTarget, -1, 0)
	a.Step(tick)
	if got := a.CountKindInZone(object.KindDecoy); got != 1 {
		t.Fatalf("decoys in zone = %d, want 1", got)
	}

	if n := a.PushDecoys(); n != 1 {
		t.Fatalf("pushed %d, want 1", n)
	}
	exited := false
	for i := 0; i < 40 && !exited; i++ {
		for _, ev := range a.Step(tick) {
			if ev.Type == zone.EventExit && ev.EntityID == decoy.ID {
				exited = true
			}
		}
	}
	if !exited {
		t.Fatal("pushed decoy never left the zone")
	}
	if !a.InZone(target.ID) {
		t.Fatal("push must not affect targets")
	}
}

func TestEntitiesAtReturnsAllHitsInOrder(t *testing.T) {
	a := newTestArena(testOptions())
	first := a.CreateEntity(object.KindDecoy, 2, 2)
	second := a.CreateEntity(object.KindTarget, 2.5, 2)
	a.CreateEntity(object.KindTarget, -10, -10)
	a.Step(tick)

	hits := a.EntitiesAt(2.3, 2)
	if len(hits) != 2 || hits[0].ID != first.ID || hits[1].ID != second.ID {
		t.Fatalf("hits = %v, want [%d %d]", hits, first.ID, second.ID)
	}
	if hits := a.EntitiesAt(0, -5); len(hits) != 0 {
		t.Fatalf("empty point hit %d entities", len(hits))
	}
}

func TestTeardownAll(t *testing.T) {
	opts := testOptions()
	opts.SpawnInterval = time.Second
	a := newTestArena(opts)
	a.CreateEntity(object.KindTarget, 0, 0)
	a.Step(tick)
	late := a.CreateEntity(object.KindDecoy, 5, 5)

	if n := a.TeardownAll(); n != 2 {
		t.Fatalf("tore down %d, want 2", n)
	}
	if len(a.Live()) != 0 || a.Zone().Occupancy().Count() != 0 {
		t.Fatal("entities survived teardown")
	}
	if !late.IsDestroyed() {
		t.Fatal("pending entity not marked destroyed")
	}
	if events := a.Step(tick); len(events) != 0 {
		t.Fatalf("teardown produced events on the next step: %+v", events)
	}
}

func TestNaturalSpawner(t *testing.T) {
	opts := testOptions()
	opts.SpawnInterval = 3 * time.Second
	opts.BugSpeed = 0
	a := newTestArena(opts)

	a.StartSpawning()
	if got := len(a.Live()); got != 1 {
		t.Fatalf("live = %d after start, want 1", got)
	}
	a.StartSpawning()
	if got := len(a.Live()); got != 1 {
		t.Fatalf("second start spawned again: live = %d", got)
	}

	for i := 0; i < 60; i++ {
		a.Step(tick)
	}
	if got := len(a.Live()); got != 2 {
		t.Fatalf("live = %d after 3s, want 2", got)
	}
	for _, b := range a.Live() {
		if !a.Bounds().Contains(b.X, b.Y) {
			t.Fatalf("spawn at (%f, %f) outside the play area", b.X, b.Y)
		}
	}
}

func TestGuaranteedTargetDwellsInZone(t *testing.T) {
	opts := testOptions()
	opts.BugSpeed = 4
	opts.Zone.OrbitRadius = 3
	opts.Zone.AngularSpeed = 0.6
	a := newTestArena(opts)

	g := a.SpawnGuaranteed(3 * time.Second)
	if !g.Guaranteed || g.Kind != object.KindTarget {
		t.Fatal("guaranteed spawn must be a guaranteed target")
	}

	var run, longest time.Duration
	for i := 0; i < 600; i++ {
		a.Step(tick)
		if a.InZone(g.ID) {
			run += tick
			longest = max(longest, run)
		} else {
			run = 0
		}
		if _, ok := a.Bug(g.ID); !ok {
			break
		}
	}
	if longest < 3*time.Second {
		t.Fatalf("longest continuous stay = %v, want at least 3s", longest)
	}
	if _, ok := a.Bug(g.ID); ok {
		t.Fatal("guaranteed target should leave after its dwell")
	}
}
