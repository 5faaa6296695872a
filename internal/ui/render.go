package ui

import (
	"math"
	"strconv"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/canvas"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/engine"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/mesh"
	"github.com/paulmach/orb"
)

// fullStrain is the relative length error drawn at full colour.
const fullStrain = 0.5

// scene is what one frame of the map needs.
type scene struct {
	frame    engine.Frame
	mesh     *mesh.Mesh
	settings Settings
	strain   func(mesh.SpringID) float64
}

// mapBound is the area the viewport shows for a city: its geographic
// extent plus a small border for points pushed outwards.
func mapBound(m *mesh.Mesh) orb.Bound {
	b := m.Bounds()
	pad := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]) * 0.05
	return b.Pad(pad)
}

func drawScene(c *canvas.Canvas, vp canvas.Viewport, sc scene) {
	c.Clear()
	f := sc.frame
	if sc.mesh == nil || len(f.Positions) != sc.mesh.Len() {
		return
	}

	if len(f.Grid) == f.GridRows*f.GridCols {
		if sc.settings.Grid {
			drawGridLines(c, vp, f)
		}
		if sc.settings.GridPoints {
			drawGridPoints(c, vp, f)
		}
		if sc.settings.GridNumbers {
			drawGridNumbers(c, vp, f)
		}
	}

	for _, id := range f.Springs {
		sp := sc.mesh.Spring(id)
		col := canvas.Neutral
		if sc.settings.SpringArrows && sc.strain != nil {
			col = canvas.StrainColor(sc.strain(id), fullStrain)
		}
		x0, y0 := vp.Dot(f.Positions[sp.A])
		x1, y1 := vp.Dot(f.Positions[sp.B])
		c.Line(x0, y0, x1, y1, col)
	}

	for i, p := range f.Positions {
		col, row := vp.Cell(p)
		switch {
		case mesh.PointID(i) == f.Anchor:
			c.Text(col, row, "◆", canvas.AnchorColor)
		case f.HasHover && mesh.PointID(i) == f.Hovered:
			c.Text(col, row, "●", canvas.PointColor)
		default:
			c.Text(col, row, "•", canvas.PointColor)
		}
	}

	if f.HasHover {
		pt := sc.mesh.Point(f.Hovered)
		col, row := vp.Cell(f.Positions[f.Hovered])
		c.Text(col+2, row, pt.Name, canvas.PointColor)
	}
}

func drawGridLines(c *canvas.Canvas, vp canvas.Viewport, f engine.Frame) {
	for r := range f.GridRows {
		for col := range f.GridCols {
			x0, y0 := vp.Dot(f.Grid[r*f.GridCols+col].Warped)
			if col+1 < f.GridCols {
				x1, y1 := vp.Dot(f.Grid[r*f.GridCols+col+1].Warped)
				c.Line(x0, y0, x1, y1, canvas.GridColor)
			}
			if r+1 < f.GridRows {
				x1, y1 := vp.Dot(f.Grid[(r+1)*f.GridCols+col].Warped)
				c.Line(x0, y0, x1, y1, canvas.GridColor)
			}
		}
	}
}

// drawGridPoints colours each sample by how far it moved, relative to the
// sample that moved most.
func drawGridPoints(c *canvas.Canvas, vp canvas.Viewport, f engine.Frame) {
	maxDisp := 0.0
	for _, s := range f.Grid {
		maxDisp = math.Max(maxDisp, s.Displacement().Len())
	}
	for _, s := range f.Grid {
		t := 0.0
		if maxDisp > 0 {
			t = s.Displacement().Len() / maxDisp
		}
		x, y := vp.Dot(s.Warped)
		c.Set(x, y, canvas.Heat(t))
	}
}

// drawGridNumbers labels the first column with row numbers and the first
// row with column numbers.
func drawGridNumbers(c *canvas.Canvas, vp canvas.Viewport, f engine.Frame) {
	for r := range f.GridRows {
		col, row := vp.Cell(f.Grid[r*f.GridCols].Warped)
		c.Text(col, row, strconv.Itoa(r), canvas.GridColor)
	}
	for col := 1; col < f.GridCols; col++ {
		cc, row := vp.Cell(f.Grid[col].Warped)
		c.Text(cc, row, strconv.Itoa(col), canvas.GridColor)
	}
}
