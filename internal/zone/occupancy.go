package zone

import "slices"

// Reader is the read-only view of the occupant set handed to components that
// must never write membership.
type Reader interface {
	Count() int
	Contains(id uint64) bool
	IDs() []uint64
}

// EventType distinguishes enter and exit notifications.
type EventType int

const (
	EventEnter EventType = iota
	EventExit
)

func (t EventType) String() string {
	if t == EventEnter {
		return "enter"
	}
	return "exit"
}

// Event is emitted when an entity's membership changes. Count is the occupant
// count after the change was applied.
type Event struct {
	Type     EventType
	EntityID uint64
	Count    int
	Removed  bool // Exit caused by the entity disappearing, not by moving out
}

// Occupancy is the exact set of entities currently inside the zone.
type Occupancy struct {
	members map[uint64]struct{}
}

// Compile-time check that Occupancy implements Reader.
var _ Reader = (*Occupancy)(nil)

func newOccupancy() Occupancy {
	return Occupancy{members: make(map[uint64]struct{})}
}

// Count returns the number of occupants.
func (o *Occupancy) Count() int {
	return len(o.members)
}

// Contains reports whether the entity is an occupant.
func (o *Occupancy) Contains(id uint64) bool {
	_, ok := o.members[id]
	return ok
}

// IDs returns the occupant IDs in ascending order.
func (o *Occupancy) IDs() []uint64 {
	ids := make([]uint64, 0, len(o.members))
	for id := range o.members {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Apply replaces the set with inside and returns the resulting events.
// Exits are reported before enters, each group in ascending ID order, so a
// solo check made while handling an enter sees the final membership of the tick
// minus the entities still to enter. removed lists IDs that vanished since the
// previous tick; their exits carry Removed=true.
func (o *Occupancy) Apply(inside map[uint64]bool, removed map[uint64]bool) []Event {
	var exits, enters []uint64
	for id := range o.members {
		if !inside[id] {
			exits = append(exits, id)
		}
	}
	for id, in := range inside {
		if in && !o.Contains(id) {
			enters = append(enters, id)
		}
	}
	slices.Sort(exits)
	slices.Sort(enters)

	events := make([]Event, 0, len(exits)+len(enters))
	for _, id := range exits {
		delete(o.members, id)
		events = append(events, Event{Type: EventExit, EntityID: id, Count: len(o.members), Removed: removed[id]})
	}
	for _, id := range enters {
		o.members[id] = struct{}{}
		events = append(events, Event{Type: EventEnter, EntityID: id, Count: len(o.members)})
	}
	return events
}

// Clear empties the set without emitting events.
func (o *Occupancy) Clear() {
	clear(o.members)
}
