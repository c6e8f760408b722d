// Package draw renders the play field into a terminal using half-block cells.
package draw

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Point represents a 2D coordinate in logical canvas units.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
	BlockEmpty     = ' '
)

// Color is a pixel color. ColorNone leaves the pixel empty.
type Color uint8

const (
	ColorNone Color = iota
	ColorWhite
	ColorGray
	ColorGreen
	ColorRed
	ColorYellow
	ColorCyan
)

// Reset clears all terminal text attributes.
const Reset = "\033[0m"

var colorCodes = [...]int{
	ColorNone:   39,
	ColorWhite:  97,
	ColorGray:   90,
	ColorGreen:  92,
	ColorRed:    91,
	ColorYellow: 93,
	ColorCyan:   96,
}

// FG returns the escape sequence selecting c as foreground color.
func (c Color) FG() string {
	return "\033[" + strconv.Itoa(c.code()) + "m"
}

func (c Color) code() int {
	if int(c) < len(colorCodes) {
		return colorCodes[c]
	}
	return colorCodes[ColorNone]
}

// cell is the rendered content of one terminal cell.
type cell struct {
	top, bottom Color
	dirty       bool // Must be written on the next render
}

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Drawing uses logical coordinates that are scaled to terminal pixels. Render
// only writes cells that changed since the previous render.
type Canvas struct {
	termWidth      int
	termHeight     int
	subPixelHeight int
	pixels         []Color // [y * termWidth + x]
	prev           []cell  // Last rendered content per terminal cell

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64
	scaleY        float64

	offsetCol int
	offsetRow int

	renderBuf strings.Builder
	numBuf    [20]byte
}

// NewCanvas creates a canvas of termWidth x termHeight cells showing a
// logicalWidth x logicalHeight drawing area.
func NewCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{logicalWidth: logicalWidth, logicalHeight: logicalHeight}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical
// size. The next render redraws every cell.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 1)
	termHeight = max(termHeight, 1)
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]Color, c.subPixelHeight*termWidth)
		c.prev = make([]cell, termWidth*termHeight)
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
	c.ForceRedraw()
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.ForceRedraw()
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// Clear resets all pixels. Previously rendered cells are kept for diffing.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next render write every cell, e.g. after the screen was cleared.
func (c *Canvas) ForceRedraw() {
	for i := range c.prev {
		c.prev[i].dirty = true
	}
}

// MarkTextDirty marks width cells starting at the canvas-relative 1-based
// (col, row) as overwritten by text so the next render repaints them.
func (c *Canvas) MarkTextDirty(col, row, width int) {
	r := row - 1
	if r < 0 || r >= c.termHeight {
		return
	}
	for x := max(col-1, 0); x < min(col-1+width, c.termWidth); x++ {
		c.prev[r*c.termWidth+x].dirty = true
	}
}

func (c *Canvas) setPixel(x, y int, color Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = color
	}
}

func (c *Canvas) toPixel(p Point) (int, int) {
	return int(math.Round(p.X * c.scaleX)), int(math.Round(p.Y * c.scaleY))
}

// Set sets a pixel at logical coordinates.
func (c *Canvas) Set(p Point, color Color) {
	x, y := c.toPixel(p)
	c.setPixel(x, y, color)
}

// At returns the pixel color at logical coordinates.
func (c *Canvas) At(p Point) Color {
	x, y := c.toPixel(p)
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return ColorNone
	}
	return c.pixels[y*c.termWidth+x]
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
func (c *Canvas) DrawLine(p1, p2 Point, color Color) {
	x1, y1 := c.toPixel(p1)
	x2, y2 := c.toPixel(p2)

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(x1, y1, color)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawCircle draws a circle outline. The radius is in logical units along x;
// the vertical radius follows the canvas aspect so circles stay round.
func (c *Canvas) DrawCircle(center Point, radius float64, color Color) {
	if radius <= 0 {
		c.Set(center, color)
		return
	}
	// One segment per pixel of circumference keeps the outline closed.
	n := max(int(2*math.Pi*radius*max(c.scaleX, c.scaleY)), 12)
	prev := Point{center.X + radius, center.Y}
	for i := 1; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		p := Point{center.X + radius*math.Cos(a), center.Y + radius*math.Sin(a)}
		c.DrawLine(prev, p, color)
		prev = p
	}
}

// FillRect fills the axis-aligned rectangle spanned by min and max.
func (c *Canvas) FillRect(minP, maxP Point, color Color) {
	x0, y0 := c.toPixel(minP)
	x1, y1 := c.toPixel(maxP)
	for y := min(y0, y1); y <= max(y0, y1); y++ {
		for x := min(x0, x1); x <= max(x0, x1); x++ {
			c.setPixel(x, y, color)
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// Render writes the cells that changed since the last render.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth
		for col := 0; col < c.termWidth; col++ {
			next := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			idx := row*c.termWidth + col
			if c.prev[idx] == next {
				continue
			}
			c.prev[idx] = next
			c.moveTo(col+1+c.offsetCol, row+1+c.offsetRow)
			c.writeCell(next)
		}
	}
	if c.renderBuf.Len() > 0 {
		c.renderBuf.WriteString(Reset)
	}

	writeChunked(w, c.renderBuf.String())
}

func (c *Canvas) moveTo(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

func (c *Canvas) writeCell(v cell) {
	var ch rune
	fg, bg := ColorNone, ColorNone
	switch {
	case v.top == ColorNone && v.bottom == ColorNone:
		c.renderBuf.WriteString(Reset)
		c.renderBuf.WriteRune(BlockEmpty)
		return
	case v.top == v.bottom:
		ch, fg = BlockFull, v.top
	case v.bottom == ColorNone:
		ch, fg = BlockUpperHalf, v.top
	case v.top == ColorNone:
		ch, fg = BlockLowerHalf, v.bottom
	default:
		ch, fg, bg = BlockUpperHalf, v.top, v.bottom
	}
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(fg.code()), 10))
	c.renderBuf.WriteByte(';')
	// Background codes are the foreground codes shifted by 10.
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(bg.code()+10), 10))
	c.renderBuf.WriteByte('m')
	c.renderBuf.WriteRune(ch)
}

// writeChunked writes data in pieces of at most maxChunkSize bytes.
func writeChunked(w io.Writer, data string) error {
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := io.WriteString(w, data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	line := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	if hasV {
		if hasH {
			buf.WriteString(cursorTo(left, top) + "┌" + line + "┐")
			buf.WriteString(cursorTo(left, bottom) + "└" + line + "┘")
		} else {
			buf.WriteString(cursorTo(c.offsetCol+1, top) + line)
			buf.WriteString(cursorTo(c.offsetCol+1, bottom) + line)
		}
	}
	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow, endRow = c.offsetRow+1, c.offsetRow+c.termHeight+1
		}
		for row := startRow; row < endRow; row++ {
			buf.WriteString(cursorTo(left, row) + "│" + cursorTo(right, row) + "│")
		}
	}
	io.WriteString(w, buf.String())
}

func cursorTo(col, row int) string {
	return "\033[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "H"
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the canvas column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the canvas row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to a canvas-relative 1-based
// terminal position (col, row), for placing text over canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(Point{x, y})
	return px + 1, py/2 + 1
}

// TerminalToLogical converts an absolute 1-based terminal position, as
// reported by the mouse, to the logical point at the center of that cell.
// ok is false outside the canvas area. The result maps back to the same cell
// through LogicalToTerminal.
func (c *Canvas) TerminalToLogical(col, row int) (p Point, ok bool) {
	x := col - 1 - c.offsetCol
	y := row - 1 - c.offsetRow
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.termHeight {
		return Point{}, false
	}
	return Point{
		X: float64(x) / c.scaleX,
		Y: (float64(y)*2 + 0.5) / c.scaleY,
	}, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
