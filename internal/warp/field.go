// Package warp maintains the reference grid drawn behind the mesh. Each
// lattice sample follows the displacement of the mesh points around it.
package warp

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/mesh"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

const (
	// Neighbours is how many mesh points influence each sample.
	Neighbours = 4
	// MaxSamples caps the lattice size.
	MaxSamples = 65536

	hitDistance = 1e-9
)

var (
	ErrInvalidSpacing = errors.New("grid spacing must be finite and positive")
	ErrTooManySamples = errors.New("grid has too many samples")
	ErrPositionCount  = errors.New("position count does not match mesh")
)

// Sample is one lattice node.
type Sample struct {
	Geo    geom.Vec
	Warped geom.Vec
}

// Displacement returns how far the sample moved from its lattice position.
func (s Sample) Displacement() geom.Vec { return s.Warped.Sub(s.Geo) }

type link struct {
	point  mesh.PointID
	weight float64
}

// site puts a mesh point into the quadtree.
type site struct {
	id mesh.PointID
	p  orb.Point
}

func (s site) Point() orb.Point { return s.p }

// Field is a row-major lattice over the mesh's geographic bounds. Weights
// are computed once in New; Update only mixes displacements.
type Field struct {
	spacing    float64
	rows, cols int
	geo        []geom.Vec // mesh geographic positions
	samples    []Sample
	links      [][]link
}

// New lays out a lattice covering the mesh bounds plus one spacing on each
// side, and binds every sample to its nearest mesh points. Samples start
// unwarped.
func New(m *mesh.Mesh, spacing float64) (*Field, error) {
	if !(spacing > 0) || math.IsInf(spacing, 0) {
		return nil, ErrInvalidSpacing
	}

	b := m.Bounds().Pad(spacing)
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	cols := math.Floor(w/spacing) + 1
	rows := math.Floor(h/spacing) + 1
	if cols*rows > MaxSamples {
		return nil, fmt.Errorf("%w: %.0f x %.0f at spacing %g", ErrTooManySamples, cols, rows, spacing)
	}

	f := &Field{
		spacing: spacing,
		rows:    int(rows),
		cols:    int(cols),
		geo:     m.GeoPositions(),
	}
	f.samples = make([]Sample, f.rows*f.cols)
	f.links = make([][]link, len(f.samples))

	var tree *quadtree.Quadtree
	if m.Len() > 0 {
		tree = quadtree.New(b)
		for i, g := range f.geo {
			if err := tree.Add(site{id: mesh.PointID(i), p: g.Orb()}); err != nil {
				return nil, fmt.Errorf("indexing point %d: %w", i, err)
			}
		}
	}

	buf := make([]orb.Pointer, 0, Neighbours)
	for r := range f.rows {
		for c := range f.cols {
			g := geom.Vec{X: b.Min[0] + float64(c)*spacing, Y: b.Min[1] + float64(r)*spacing}
			i := r*f.cols + c
			f.samples[i] = Sample{Geo: g, Warped: g}
			if tree != nil {
				buf = tree.KNearest(buf[:0], g.Orb(), Neighbours)
				f.links[i] = f.weigh(g, buf)
			}
		}
	}
	return f, nil
}

// weigh turns neighbours into inverse-square-distance weights summing to 1.
// A neighbour sitting on the sample takes all the weight.
func (f *Field) weigh(g geom.Vec, near []orb.Pointer) []link {
	links := make([]link, 0, len(near))
	total := 0.0
	for _, p := range near {
		s := p.(site)
		d := g.Dist(f.geo[s.id])
		if d < hitDistance {
			return []link{{point: s.id, weight: 1}}
		}
		w := 1 / (d * d)
		links = append(links, link{point: s.id, weight: w})
		total += w
	}
	for i := range links {
		links[i].weight /= total
	}
	// Sum in point order, independent of the tree walk.
	slices.SortFunc(links, func(a, b link) int { return int(a.point - b.point) })
	return links
}

// Evaluate builds a field and warps it once against positions.
func Evaluate(m *mesh.Mesh, positions []geom.Vec, spacing float64) (*Field, error) {
	f, err := New(m, spacing)
	if err != nil {
		return nil, err
	}
	if err := f.Update(positions); err != nil {
		return nil, err
	}
	return f, nil
}

// Update recomputes every warped sample from the current mesh positions.
func (f *Field) Update(positions []geom.Vec) error {
	if len(positions) != len(f.geo) {
		return fmt.Errorf("%w: got %d, want %d", ErrPositionCount, len(positions), len(f.geo))
	}
	for i := range f.samples {
		var d geom.Vec
		for _, l := range f.links[i] {
			d = d.Add(positions[l.point].Sub(f.geo[l.point]).Scale(l.weight))
		}
		f.samples[i].Warped = f.samples[i].Geo.Add(d)
	}
	return nil
}

// Samples returns a copy of the lattice in row-major order.
func (f *Field) Samples() []Sample { return slices.Clone(f.samples) }

// At returns the sample at row r, column c.
func (f *Field) At(r, c int) Sample { return f.samples[r*f.cols+c] }

func (f *Field) Rows() int { return f.rows }

func (f *Field) Cols() int { return f.cols }

func (f *Field) Spacing() float64 { return f.spacing }

// MaxDisplacement returns the largest distance any sample has moved.
func (f *Field) MaxDisplacement() float64 {
	best := 0.0
	for _, s := range f.samples {
		best = math.Max(best, s.Displacement().Len())
	}
	return best
}
