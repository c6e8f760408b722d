package physics

import "testing"

func TestPointInCircleBoundaryInclusive(t *testing.T) {
	if !PointInCircle(3, 4, 0, 0, 5) {
		t.Fatal("point on the circumference should be inside")
	}
	if PointInCircle(3, 4.001, 0, 0, 5) {
		t.Fatal("point just past the circumference should be outside")
	}
}

func TestRectIntersects(t *testing.T) {
	a := RectAround(0, 0, 2, 2)
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlapping", RectAround(1, 1, 2, 2), true},
		{"touching edge", RectAround(2, 0, 2, 2), true},
		{"disjoint", RectAround(5, 5, 2, 2), false},
		{"contained", RectAround(0, 0, 0.5, 0.5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Fatalf("Intersects = %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersects(a); got != tt.want {
				t.Fatalf("Intersects (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectSamplePoints(t *testing.T) {
	r := Rect{MinX: 0, MinY: 0, MaxX: 4, MaxY: 2}
	pts := r.SamplePoints()
	want := [5][2]float64{{2, 1}, {0, 0}, {4, 2}, {0, 2}, {4, 0}}
	if pts != want {
		t.Fatalf("SamplePoints = %v, want %v", pts, want)
	}
}

func TestSpatialGridQueryFindsNeighbours(t *testing.T) {
	g := NewSpatialGrid(Rect{MinX: -50, MinY: -50, MaxX: 50, MaxY: 50}, 10)
	g.Insert(-49, -49, 0)
	g.Insert(0, 0, 1)
	g.Insert(8, 8, 2)
	g.Insert(45, 45, 3)

	found := map[int]bool{}
	g.QueryAround(1, 1, func(i int) bool {
		found[i] = true
		return false
	})
	if !found[1] || !found[2] {
		t.Fatalf("expected items 1 and 2 near origin, got %v", found)
	}
	if found[0] || found[3] {
		t.Fatalf("far items should not be returned, got %v", found)
	}

	// Corner queries must not wrap around to the opposite border.
	found = map[int]bool{}
	g.QueryAround(-50, -50, func(i int) bool {
		found[i] = true
		return false
	})
	if !found[0] || found[3] {
		t.Fatalf("corner query = %v, want only item 0", found)
	}
}

func TestSpatialGridClampsOutOfBounds(t *testing.T) {
	g := NewSpatialGrid(Rect{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20}, 10)
	g.Insert(-100, 500, 7)

	hit := false
	g.QueryAround(0, 19, func(i int) bool {
		hit = i == 7
		return hit
	})
	if !hit {
		t.Fatal("out-of-bounds item should be clamped into a border cell")
	}
}

func TestSpaceQueryPoint(t *testing.T) {
	s := NewSpace(Rect{MinX: -50, MinY: -50, MaxX: 50, MaxY: 50}, 4)
	s.Rebuild([]Body{
		{ID: 1, Shape: ShapeBox, X: 0, Y: 0, W: 2, H: 2},
		{ID: 2, Shape: ShapeBox, X: 10, Y: 10, W: 2, H: 2},
		{ID: 99, Shape: ShapeCircle, X: 0, Y: 0, Radius: 20},
	})

	var ids []uint64
	s.QueryPoint(0.5, 0.5, func(b Body) bool {
		ids = append(ids, b.ID)
		return false
	})
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 99 {
		t.Fatalf("QueryPoint ids = %v, want [1 99]", ids)
	}

	if !s.OverlapPoint(99, 14, 14) {
		t.Fatal("point inside the large circle should overlap")
	}
	if s.OverlapPoint(99, 15, 15) {
		t.Fatal("point outside the large circle should not overlap")
	}
	if s.OverlapPoint(1234, 0, 0) {
		t.Fatal("unknown body should never overlap")
	}
}

func TestSpaceRebuildReplacesBodies(t *testing.T) {
	s := NewSpace(Rect{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10}, 4)
	s.Rebuild([]Body{{ID: 1, Shape: ShapeBox, X: 0, Y: 0, W: 1, H: 1}})
	s.Rebuild([]Body{{ID: 2, Shape: ShapeBox, X: 5, Y: 5, W: 1, H: 1}})

	if _, ok := s.Body(1); ok {
		t.Fatal("body 1 should be gone after rebuild")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}
