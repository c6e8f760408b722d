// Package physics provides distance helpers, bounding regions and the collision
// backend used to answer overlap queries.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// PointInCircle checks if a point is within radius of a target position.
// Points exactly on the circumference count as inside.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) <= radius*radius
}

// Rect is an axis-aligned bounding region given by its min and max corners.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// RectAround returns the rect of size w x h centered on (cx, cy).
func RectAround(cx, cy, w, h float64) Rect {
	return Rect{
		MinX: cx - w/2,
		MinY: cy - h/2,
		MaxX: cx + w/2,
		MaxY: cy + h/2,
	}
}

// CircleBounds returns the bounding rect of a circle.
func CircleBounds(cx, cy, radius float64) Rect {
	return Rect{
		MinX: cx - radius,
		MinY: cy - radius,
		MaxX: cx + radius,
		MaxY: cy + radius,
	}
}

// Center returns the rect center.
func (r Rect) Center() (float64, float64) {
	return (r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2
}

// Intersects reports whether two rects overlap. Touching edges count as overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX &&
		r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Contains reports whether the point lies inside the rect (edges inclusive).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// SamplePoints returns the center followed by the four corners:
// min, max, (min.x, max.y) and (max.x, min.y).
func (r Rect) SamplePoints() [5][2]float64 {
	cx, cy := r.Center()
	return [5][2]float64{
		{cx, cy},
		{r.MinX, r.MinY},
		{r.MaxX, r.MaxY},
		{r.MinX, r.MaxY},
		{r.MaxX, r.MinY},
	}
}

// Expand grows the rect by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		MinX: r.MinX - margin,
		MinY: r.MinY - margin,
		MaxX: r.MaxX + margin,
		MaxY: r.MaxY + margin,
	}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }
