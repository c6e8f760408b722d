// Package view maps between world space (y up, origin at the play-area
// center) and screen space (y down, origin at the top-left of the view).
package view

// Projector converts world coordinates to screen coordinates.
type Projector interface {
	WorldToScreen(x, y float64) (sx, sy float64)
}

// Viewport is a uniform-scale projection from world to screen space.
type Viewport struct {
	Width, Height float64 // Screen extent in logical screen units
	Scale         float64 // Screen units per world unit
	CamX, CamY    float64 // World point shown at the view center
}

// Compile-time check that Viewport implements Projector.
var _ Projector = Viewport{}

// NewViewport creates a viewport of the given screen size centered on the world origin.
func NewViewport(width, height, scale float64) *Viewport {
	if scale <= 0 {
		scale = 1
	}
	return &Viewport{Width: width, Height: height, Scale: scale}
}

// WorldToScreen projects a world point to screen space.
func (v Viewport) WorldToScreen(x, y float64) (float64, float64) {
	sx := v.Width/2 + (x-v.CamX)*v.Scale
	sy := v.Height/2 - (y-v.CamY)*v.Scale
	return sx, sy
}

// ScreenToWorld is the inverse of WorldToScreen.
func (v Viewport) ScreenToWorld(sx, sy float64) (float64, float64) {
	x := (sx-v.Width/2)/v.Scale + v.CamX
	y := (v.Height/2-sy)/v.Scale + v.CamY
	return x, y
}

// WorldBounds returns the world-space extent visible through the viewport
// as (minX, minY, maxX, maxY).
func (v Viewport) WorldBounds() (float64, float64, float64, float64) {
	x0, y1 := v.ScreenToWorld(0, 0)
	x1, y0 := v.ScreenToWorld(v.Width, v.Height)
	return x0, y0, x1, y1
}
