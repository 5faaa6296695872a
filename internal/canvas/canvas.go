// Package canvas draws lines and dots into a grid of Braille cells, each
// cell a 2x4 dot block, and renders it as coloured terminal text.
package canvas

import (
	"math"
	"strings"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
	"github.com/muesli/termenv"
	"github.com/paulmach/orb"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

type cell struct {
	dots  uint8
	color RGB
	text  rune // overrides dots when set
}

// Canvas is a cols x rows character grid with 2cols x 4rows dots.
type Canvas struct {
	cols, rows int
	cells      []cell
	profile    termenv.Profile
}

// New returns an empty canvas. Sizes below one cell are raised to one.
func New(cols, rows int) *Canvas {
	cols = max(cols, 1)
	rows = max(rows, 1)
	return &Canvas{
		cols:    cols,
		rows:    rows,
		cells:   make([]cell, cols*rows),
		profile: envProfile(),
	}
}

// Cols returns the width in characters.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the height in characters.
func (c *Canvas) Rows() int { return c.rows }

// DotWidth returns the width in dots.
func (c *Canvas) DotWidth() int { return c.cols * 2 }

// DotHeight returns the height in dots.
func (c *Canvas) DotHeight() int { return c.rows * 4 }

// Clear removes all dots and text.
func (c *Canvas) Clear() {
	clear(c.cells)
}

// Set lights the dot at (x, y). Dots outside the canvas are ignored. The
// cell takes the colour of its most recent dot.
func (c *Canvas) Set(x, y int, col RGB) {
	if x < 0 || y < 0 || x >= c.DotWidth() || y >= c.DotHeight() {
		return
	}
	ce := &c.cells[(y/4)*c.cols+x/2]
	ce.dots |= 1 << brailleBits[x%2][y%4]
	ce.color = col
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x >= c.DotWidth() || y >= c.DotHeight() {
		return false
	}
	ce := c.cells[(y/4)*c.cols+x/2]
	return ce.dots&(1<<brailleBits[x%2][y%4]) != 0
}

// Line draws a straight line of dots between two dot coordinates. The part
// outside the canvas is clipped first.
func (c *Canvas) Line(x0, y0, x1, y1 int, col RGB) {
	var ok bool
	x0, y0, x1, y1, ok = c.clip(x0, y0, x1, y1)
	if !ok {
		return
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clip trims a segment to the dot area (Liang-Barsky). ok is false when
// nothing is left.
func (c *Canvas) clip(x0, y0, x1, y1 int) (int, int, int, int, bool) {
	fx0, fy0 := float64(x0), float64(y0)
	dx, dy := float64(x1-x0), float64(y1-y0)
	maxX, maxY := float64(c.DotWidth()-1), float64(c.DotHeight()-1)

	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, fx0},
		{dx, maxX - fx0},
		{-dy, fy0},
		{dy, maxY - fy0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}
	return int(math.Round(fx0 + t0*dx)), int(math.Round(fy0 + t0*dy)),
		int(math.Round(fx0 + t1*dx)), int(math.Round(fy0 + t1*dy)), true
}

// Text writes s starting at character (col, row), clipped to the canvas.
func (c *Canvas) Text(col, row int, s string, color RGB) {
	if row < 0 || row >= c.rows {
		return
	}
	for _, r := range s {
		if col >= c.cols {
			return
		}
		if col >= 0 {
			ce := &c.cells[row*c.cols+col]
			ce.text = r
			ce.color = color
		}
		col++
	}
}

// String renders the canvas, one line per row.
func (c *Canvas) String() string {
	var sb strings.Builder
	sb.Grow(c.cols * c.rows * 4)
	st := ansiState{profile: c.profile}
	for row := range c.rows {
		if row > 0 {
			st.reset(&sb)
			sb.WriteByte('\n')
		}
		for col := range c.cols {
			ce := c.cells[row*c.cols+col]
			switch {
			case ce.text != 0:
				st.set(&sb, ce.color)
				sb.WriteRune(ce.text)
			case ce.dots != 0:
				st.set(&sb, ce.color)
				sb.WriteRune(rune(0x2800 + int(ce.dots)))
			default:
				sb.WriteByte(' ')
			}
		}
	}
	st.reset(&sb)
	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Viewport maps layout coordinates onto the dots of a canvas with one
// uniform scale, centring the bound.
type Viewport struct {
	scale   float64
	offsetX float64
	offsetY float64
}

// Fit returns a viewport showing b inside a dotW x dotH area with margin
// dots on every side.
func Fit(b orb.Bound, dotW, dotH, margin int) Viewport {
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	availW := float64(max(dotW-2*margin, 1))
	availH := float64(max(dotH-2*margin, 1))

	scale := 1.0
	switch {
	case w > 0 && h > 0:
		scale = math.Min(availW/w, availH/h)
	case w > 0:
		scale = availW / w
	case h > 0:
		scale = availH / h
	}

	cx := (b.Min[0] + b.Max[0]) / 2
	cy := (b.Min[1] + b.Max[1]) / 2
	return Viewport{
		scale:   scale,
		offsetX: float64(dotW)/2 - cx*scale,
		offsetY: float64(dotH)/2 - cy*scale,
	}
}

// Dot converts a layout position to dot coordinates.
func (v Viewport) Dot(p geom.Vec) (x, y int) {
	return int(math.Floor(p.X*v.scale + v.offsetX)), int(math.Floor(p.Y*v.scale + v.offsetY))
}

// Layout converts a dot position back to layout coordinates.
func (v Viewport) Layout(x, y float64) geom.Vec {
	return geom.Vec{X: (x - v.offsetX) / v.scale, Y: (y - v.offsetY) / v.scale}
}

// Cell converts a layout position to a character cell.
func (v Viewport) Cell(p geom.Vec) (col, row int) {
	x, y := v.Dot(p)
	return floorDiv(x, 2), floorDiv(y, 4)
}

// CellCentre converts a character cell to the layout position at its centre.
func (v Viewport) CellCentre(col, row int) geom.Vec {
	return v.Layout(float64(col)*2+1, float64(row)*4+2)
}

// Scale returns dots per layout unit.
func (v Viewport) Scale() float64 { return v.scale }

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
