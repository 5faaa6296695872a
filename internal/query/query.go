// Package query answers the per-frame questions a host asks about the mesh:
// which point is under the pointer, which springs are short enough to show,
// and which point is held still.
package query

import (
	"math"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/mesh"
)

// NearestPoint returns the point closest to p. Ties go to the lowest id.
// ok is false when positions is empty.
func NearestPoint(positions []geom.Vec, p geom.Vec) (id mesh.PointID, ok bool) {
	best := math.Inf(1)
	id = mesh.NoPoint
	for i, q := range positions {
		if d := q.Dist2(p); d < best {
			best = d
			id = mesh.PointID(i)
		}
	}
	return id, id != mesh.NoPoint
}

// SpringsWithinThreshold returns, in id order, the springs whose current
// length is at most threshold. A NaN threshold matches nothing.
func SpringsWithinThreshold(m *mesh.Mesh, positions []geom.Vec, threshold float64) []mesh.SpringID {
	var out []mesh.SpringID
	if math.IsNaN(threshold) {
		return out
	}
	for j := range m.SpringCount() {
		s := m.Spring(mesh.SpringID(j))
		if positions[s.A].Dist(positions[s.B]) <= threshold {
			out = append(out, s.ID)
		}
	}
	return out
}

// SelectAnchor picks the point to hold fixed this frame: the one nearest the
// pointer when focus follows the pointer, otherwise fallback.
func SelectAnchor(positions []geom.Vec, pointer geom.Vec, hasPointer, focusOnHover bool, fallback mesh.PointID) mesh.PointID {
	if !focusOnHover || !hasPointer || !pointer.IsFinite() {
		return fallback
	}
	if id, ok := NearestPoint(positions, pointer); ok {
		return id
	}
	return fallback
}

// DefaultAnchor returns the point nearest the centroid of the geographic
// layout, or mesh.NoPoint for an empty mesh.
func DefaultAnchor(m *mesh.Mesh) mesh.PointID {
	geo := m.GeoPositions()
	if len(geo) == 0 {
		return mesh.NoPoint
	}
	var c geom.Vec
	for _, g := range geo {
		c = c.Add(g)
	}
	c = c.Scale(1 / float64(len(geo)))
	id, _ := NearestPoint(geo, c)
	return id
}

// Strain is a spring's length error relative to its target: positive when
// stretched, negative when compressed. A zero-length target reports the
// absolute error.
func Strain(m *mesh.Mesh, positions []geom.Vec, id mesh.SpringID, timeness float64) float64 {
	s := m.Spring(id)
	target := s.Target(timeness)
	diff := positions[s.A].Dist(positions[s.B]) - target
	if target == 0 {
		return diff
	}
	return diff / target
}
