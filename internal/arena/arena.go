// Package arena owns the zone and every live entity. It is the only creator
// of entities and the only writer of the zone's occupant set.
package arena

import (
	"cmp"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/tomz197/frogduel/internal/object"
	"github.com/tomz197/frogduel/internal/physics"
	"github.com/tomz197/frogduel/internal/view"
	"github.com/tomz197/frogduel/internal/zone"
)

// Options configures an Arena.
type Options struct {
	Bounds        physics.Rect // Play area in world units
	Margin        float64      // Distance past Bounds at which entities are destroyed
	CellSize      float64      // Broad-phase cell size
	Zone          zone.Options
	BugSize       float64
	BugSpeed      float64
	HomingSpeed   float64 // Speed of guaranteed targets; 0 uses BugSpeed
	Lifetime      time.Duration
	PassDistance  float64 // Wander stops steering this close to the zone center
	ArriveRadius  float64 // Homing switches to dwell this close to the zone center
	RepelSpeed    float64
	SpawnInterval time.Duration // Natural spawner cadence; 0 disables it
	DecoyChance   float64       // Probability that a natural spawn is a decoy
}

// Arena is the entity and zone model.
type Arena struct {
	opts    Options
	zone    *zone.Zone
	oracle  *zone.Oracle
	space   *physics.Space
	rnd     *rand.Rand
	logger  *slog.Logger
	bugs    []*object.Bug
	pending []*object.Bug // Created since the last Step
	byID    map[uint64]*object.Bug
	nextID  uint64

	spawning   bool
	spawnTimer time.Duration

	// Reused each Step
	bodies  []physics.Body
	inside  map[uint64]bool
	removed map[uint64]bool
}

// New creates an arena. projector may be nil, in which case the oracle's
// projected signal mirrors the distance signal.
func New(opts Options, projector view.Projector, rnd *rand.Rand, logger *slog.Logger) *Arena {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if rnd == nil {
		logger.Warn("arena created without a random source, using a fixed seed")
		rnd = rand.New(rand.NewSource(1))
	}
	if opts.CellSize <= 0 {
		opts.CellSize = 4
	}

	z := zone.New(opts.Zone)
	space := physics.NewSpace(opts.Bounds.Expand(opts.Margin), opts.CellSize)
	oracleOpts := []zone.OracleOption{
		zone.WithCollider(space),
		zone.WithWidenedDistance(),
		zone.WithLogger(logger),
	}
	if projector != nil {
		oracleOpts = append(oracleOpts, zone.WithProjector(projector))
	}

	a := &Arena{
		opts:    opts,
		zone:    z,
		oracle:  zone.NewOracle(z, oracleOpts...),
		space:   space,
		rnd:     rnd,
		logger:  logger,
		byID:    make(map[uint64]*object.Bug),
		nextID:  zone.BodyID + 1,
		inside:  make(map[uint64]bool),
		removed: make(map[uint64]bool),
	}
	a.rebuildSpace()
	return a
}

// Zone returns the zone.
func (a *Arena) Zone() *zone.Zone {
	return a.zone
}

// Oracle returns the containment oracle bound to this arena's zone and space.
func (a *Arena) Oracle() *zone.Oracle {
	return a.oracle
}

// Bounds returns the play area.
func (a *Arena) Bounds() physics.Rect {
	return a.opts.Bounds
}

// CreateEntity creates a wandering bug at (x, y). It takes part in occupancy
// from the next Step.
func (a *Arena) CreateEntity(kind object.Kind, x, y float64) *object.Bug {
	b := object.NewBug(a.nextID, kind, x, y, a.opts.BugSize, a.opts.BugSpeed, object.NewWander(a.opts.PassDistance))
	b.Lifetime = a.opts.Lifetime.Seconds()
	a.add(b)
	return b
}

// SpawnGuaranteed creates a Target at a random edge that homes on the zone and
// dwells for dwell before leaving. The dwell leash keeps the whole body inside
// the zone while the zone moves.
func (a *Arena) SpawnGuaranteed(dwell time.Duration) *object.Bug {
	x, y := object.EdgePosition(a.opts.Bounds, a.rnd)

	leash := a.zone.Radius() - a.opts.BugSize*math.Sqrt2/2
	leash = math.Max(0, math.Min(leash, a.zone.Radius()/2))
	h := object.NewHoming(dwell.Seconds(), leash)
	if a.opts.ArriveRadius > 0 {
		h.ArriveRadius = a.opts.ArriveRadius
	}

	speed := a.opts.HomingSpeed
	if speed <= 0 {
		speed = a.opts.BugSpeed
	}
	b := object.NewBug(a.nextID, object.KindTarget, x, y, a.opts.BugSize, speed, h)
	b.Guaranteed = true
	a.add(b)
	a.logger.Info("guaranteed target spawned", "entity", b.ID, "x", x, "y", y, "dwell", dwell)
	return b
}

func (a *Arena) add(b *object.Bug) {
	a.nextID++
	a.pending = append(a.pending, b)
	a.byID[b.ID] = b
}

// PushDecoys pushes every decoy currently in the zone radially out to just
// beyond the zone edge. It returns how many were pushed.
func (a *Arena) PushDecoys() int {
	cx, cy := a.zone.Center()
	dist := a.zone.Radius() + a.zone.Tolerance() + a.opts.BugSize
	n := 0
	for _, id := range a.zone.Occupancy().IDs() {
		b := a.byID[id]
		if b == nil || b.Destroyed || b.Kind != object.KindDecoy || b.Fleeing() {
			continue
		}
		b.Push(cx, cy, dist, a.opts.RepelSpeed)
		n++
	}
	if n > 0 {
		a.logger.Debug("decoys pushed out of zone", "count", n)
	}
	return n
}

// StartSpawning spawns the first natural bug immediately and then one every
// SpawnInterval.
func (a *Arena) StartSpawning() {
	if a.spawning || a.opts.SpawnInterval <= 0 {
		return
	}
	a.spawning = true
	a.spawnTimer = 0
	a.spawnNatural()
}

// StopSpawning halts the natural spawner.
func (a *Arena) StopSpawning() {
	a.spawning = false
}

func (a *Arena) spawnNatural() {
	kind := object.KindTarget
	if a.rnd.Float64() < a.opts.DecoyChance {
		kind = object.KindDecoy
	}
	x, y := object.EdgePosition(a.opts.Bounds, a.rnd)
	b := a.CreateEntity(kind, x, y)
	a.logger.Debug("bug spawned", "entity", b.ID, "kind", kind)
}

// Step advances the zone and every entity by dt, recomputes membership and
// returns the resulting enter and exit events. Entities that were destroyed
// (by lifetime, by leaving the play area, or externally) are dropped and
// reported with Removed exits.
func (a *Arena) Step(dt time.Duration) []zone.Event {
	a.bugs = append(a.bugs, a.pending...)
	a.pending = a.pending[:0]

	a.zone.Advance(dt.Seconds())

	if a.spawning {
		a.spawnTimer += dt
		for a.spawnTimer >= a.opts.SpawnInterval {
			a.spawnTimer -= a.opts.SpawnInterval
			a.spawnNatural()
		}
	}

	ctx := object.UpdateContext{
		Delta:  dt,
		Zone:   a.zone,
		Bounds: a.opts.Bounds,
		Margin: a.opts.Margin,
		Rand:   a.rnd,
	}
	clear(a.removed)
	n := 0
	for _, b := range a.bugs {
		remove, err := b.Update(ctx)
		if err != nil {
			a.logger.Warn("entity update failed", "entity", b.ID, "err", err)
			remove = true
		}
		if remove {
			a.removed[b.ID] = true
			delete(a.byID, b.ID)
			continue
		}
		a.bugs[n] = b
		n++
	}
	clear(a.bugs[n:])
	a.bugs = a.bugs[:n]

	a.rebuildSpace()

	clear(a.inside)
	for _, b := range a.bugs {
		if a.oracle.EntityInZone(b) {
			a.inside[b.ID] = true
		}
	}
	return a.zone.Occupancy().Apply(a.inside, a.removed)
}

func (a *Arena) rebuildSpace() {
	a.bodies = a.bodies[:0]
	a.bodies = append(a.bodies, a.zone.Body())
	for _, b := range a.bugs {
		a.bodies = append(a.bodies, b.Body())
	}
	a.space.Rebuild(a.bodies)
}

// EntitiesAt returns the live entities whose bodies contain the world point,
// in ascending ID order. Only entities present at the last Step are hit.
func (a *Arena) EntitiesAt(x, y float64) []*object.Bug {
	var hits []*object.Bug
	a.space.QueryPoint(x, y, func(body physics.Body) bool {
		if body.ID == zone.BodyID {
			return false
		}
		if b := a.byID[body.ID]; b != nil && !b.Destroyed {
			hits = append(hits, b)
		}
		return false
	})
	slices.SortFunc(hits, func(p, q *object.Bug) int {
		return cmp.Compare(p.ID, q.ID)
	})
	return hits
}

// Bug returns the live entity with the given ID.
func (a *Arena) Bug(id uint64) (*object.Bug, bool) {
	b, ok := a.byID[id]
	return b, ok
}

// Kind returns the kind of a live entity.
func (a *Arena) Kind(id uint64) (object.Kind, bool) {
	b, ok := a.byID[id]
	if !ok {
		return 0, false
	}
	return b.Kind, true
}

// Live returns every live entity, including ones created since the last Step.
func (a *Arena) Live() []*object.Bug {
	live := make([]*object.Bug, 0, len(a.bugs)+len(a.pending))
	for _, b := range a.bugs {
		if !b.Destroyed {
			live = append(live, b)
		}
	}
	for _, b := range a.pending {
		if !b.Destroyed {
			live = append(live, b)
		}
	}
	return live
}

// InZone reports whether the entity is currently an occupant.
func (a *Arena) InZone(id uint64) bool {
	return a.zone.Occupancy().Contains(id)
}

// HasKindInZone reports whether any occupant is of the given kind.
func (a *Arena) HasKindInZone(kind object.Kind) bool {
	return a.CountKindInZone(kind) > 0
}

// CountKindInZone counts the occupants of the given kind.
func (a *Arena) CountKindInZone(kind object.Kind) int {
	n := 0
	for _, id := range a.zone.Occupancy().IDs() {
		if b := a.byID[id]; b != nil && b.Kind == kind {
			n++
		}
	}
	return n
}

// TeardownAll destroys every entity and stops the spawner. The occupant set is
// emptied without events. It returns how many entities were torn down.
func (a *Arena) TeardownAll() int {
	a.StopSpawning()
	n := 0
	for _, b := range a.bugs {
		b.MarkDestroyed()
		n++
	}
	for _, b := range a.pending {
		b.MarkDestroyed()
		n++
	}
	clear(a.bugs)
	a.bugs = a.bugs[:0]
	a.pending = a.pending[:0]
	clear(a.byID)
	a.zone.Occupancy().Clear()
	a.rebuildSpace()
	return n
}
