package physics

// Shape identifies the collision shape of a body.
type Shape int

const (
	ShapeBox Shape = iota
	ShapeCircle
)

// Body is a collider registered in a Space for one tick.
type Body struct {
	ID     uint64
	Shape  Shape
	X, Y   float64 // Center
	W, H   float64 // Box extent (ShapeBox)
	Radius float64 // ShapeCircle
}

// Bounds returns the bounding rect of the body.
func (b Body) Bounds() Rect {
	if b.Shape == ShapeCircle {
		return CircleBounds(b.X, b.Y, b.Radius)
	}
	return RectAround(b.X, b.Y, b.W, b.H)
}

// OverlapPoint reports whether the point lies inside the body's shape.
func (b Body) OverlapPoint(x, y float64) bool {
	if b.Shape == ShapeCircle {
		return PointInCircle(x, y, b.X, b.Y, b.Radius)
	}
	return b.Bounds().Contains(x, y)
}

// Space is the collision backend: bodies are rebuilt every tick and point
// queries go through a spatial grid broad phase. Large bodies (bigger than a
// grid cell) are kept out of the grid and always tested directly.
type Space struct {
	grid   *SpatialGrid
	bodies []Body
	large  []int
	byID   map[uint64]int
}

// NewSpace creates a collision space covering bounds.
// cellSize should be >= the extent of the small bodies that will be inserted.
func NewSpace(bounds Rect, cellSize float64) *Space {
	return &Space{
		grid: NewSpatialGrid(bounds, cellSize),
		byID: make(map[uint64]int),
	}
}

// Rebuild replaces every body in the space.
func (s *Space) Rebuild(bodies []Body) {
	s.grid.Clear()
	s.bodies = append(s.bodies[:0], bodies...)
	s.large = s.large[:0]
	clear(s.byID)

	for i, b := range s.bodies {
		s.byID[b.ID] = i
		r := b.Bounds()
		if r.Width() > s.grid.cellSize || r.Height() > s.grid.cellSize {
			s.large = append(s.large, i)
			continue
		}
		s.grid.Insert(b.X, b.Y, i)
	}
}

// Body returns the registered body with the given ID.
func (s *Space) Body(id uint64) (Body, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Body{}, false
	}
	return s.bodies[i], true
}

// OverlapPoint reports whether the point lies inside the body with the given ID.
// Unknown IDs never overlap.
func (s *Space) OverlapPoint(id uint64, x, y float64) bool {
	b, ok := s.Body(id)
	if !ok {
		return false
	}
	return b.OverlapPoint(x, y)
}

// QueryPoint calls fn for every body whose shape contains the point.
// If fn returns true, iteration stops early.
func (s *Space) QueryPoint(x, y float64, fn func(b Body) bool) {
	stopped := false
	s.grid.QueryAround(x, y, func(i int) bool {
		b := s.bodies[i]
		if b.OverlapPoint(x, y) && fn(b) {
			stopped = true
			return true
		}
		return false
	})
	if stopped {
		return
	}
	for _, i := range s.large {
		b := s.bodies[i]
		if b.OverlapPoint(x, y) && fn(b) {
			return
		}
	}
}

// Len returns the number of registered bodies.
func (s *Space) Len() int {
	return len(s.bodies)
}
