// Package mesh holds the static landmark graph of one city: points in a
// dense arena and springs that refer to them by index.
package mesh

import (
	"fmt"
	"math"
	"slices"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
	"github.com/paulmach/orb"
)

// PointID indexes a point in its mesh. IDs follow input order.
type PointID int32

// SpringID indexes a spring in its mesh.
type SpringID int32

// NoPoint marks the absence of a point.
const NoPoint PointID = -1

// Point is a landmark node.
type Point struct {
	ID   PointID
	Key  string
	Name string
	Geo  geom.Vec // projected geographic position in layout units
}

// Spring is an undirected edge with two rest lengths.
type Spring struct {
	ID         SpringID
	A, B       PointID
	GeoLength  float64
	TimeLength float64
	Stiffness  float64
}

// Target returns the rest length blended by timeness.
func (s Spring) Target(timeness float64) float64 {
	return geom.Lerp(s.GeoLength, s.TimeLength, geom.Clamp01(timeness))
}

// Other returns the endpoint that is not p.
func (s Spring) Other(p PointID) PointID {
	if s.A == p {
		return s.B
	}
	return s.A
}

// PointSpec describes a point for Build.
type PointSpec struct {
	Key  string
	Name string
	Geo  geom.Vec
}

// SpringSpec describes a spring for Build. Endpoints are point keys.
type SpringSpec struct {
	From       string
	To         string
	GeoLength  float64
	TimeLength float64
	Stiffness  float64
}

// Mesh is immutable after Build; a new city gets a new mesh.
type Mesh struct {
	points   []Point
	springs  []Spring
	incident [][]SpringID
	byKey    map[string]PointID
	bounds   orb.Bound
	maxGeo   float64
}

// Build validates the topology and returns the mesh.
func Build(points []PointSpec, springs []SpringSpec) (*Mesh, error) {
	m := &Mesh{
		points:   make([]Point, 0, len(points)),
		springs:  make([]Spring, 0, len(springs)),
		incident: make([][]SpringID, len(points)),
		byKey:    make(map[string]PointID, len(points)),
	}

	for i, ps := range points {
		if ps.Key == "" {
			return nil, topologyErr(fmt.Sprintf("point %d has an empty key", i))
		}
		if _, dup := m.byKey[ps.Key]; dup {
			return nil, topologyErr("duplicate point key", ps.Key)
		}
		if !ps.Geo.IsFinite() {
			return nil, topologyErr("point has a non-finite position", ps.Key)
		}
		id := PointID(i)
		m.byKey[ps.Key] = id
		m.points = append(m.points, Point{ID: id, Key: ps.Key, Name: ps.Name, Geo: ps.Geo})
		if i == 0 {
			m.bounds = orb.Bound{Min: ps.Geo.Orb(), Max: ps.Geo.Orb()}
		} else {
			m.bounds = m.bounds.Extend(ps.Geo.Orb())
		}
	}

	for _, ss := range springs {
		a, okA := m.byKey[ss.From]
		b, okB := m.byKey[ss.To]
		switch {
		case !okA && !okB:
			return nil, topologyErr("spring references unknown points", ss.From, ss.To)
		case !okA:
			return nil, topologyErr("spring references an unknown point", ss.From)
		case !okB:
			return nil, topologyErr("spring references an unknown point", ss.To)
		case a == b:
			return nil, topologyErr("spring connects a point to itself", ss.From)
		}
		if !validLength(ss.GeoLength) || !validLength(ss.TimeLength) {
			return nil, topologyErr("spring rest lengths must be finite and non-negative", ss.From, ss.To)
		}
		if !(ss.Stiffness > 0) || math.IsInf(ss.Stiffness, 0) {
			return nil, topologyErr("spring stiffness must be finite and positive", ss.From, ss.To)
		}

		id := SpringID(len(m.springs))
		m.springs = append(m.springs, Spring{
			ID:         id,
			A:          a,
			B:          b,
			GeoLength:  ss.GeoLength,
			TimeLength: ss.TimeLength,
			Stiffness:  ss.Stiffness,
		})
		m.incident[a] = append(m.incident[a], id)
		m.incident[b] = append(m.incident[b], id)
		m.maxGeo = math.Max(m.maxGeo, ss.GeoLength)
	}

	if err := m.checkConnected(); err != nil {
		return nil, err
	}
	return m, nil
}

func validLength(l float64) bool {
	return l >= 0 && !math.IsInf(l, 0)
}

// checkConnected requires every point to be reachable from point 0, so any
// point can serve as the anchor.
func (m *Mesh) checkConnected() error {
	if len(m.points) <= 1 {
		return nil
	}

	var isolated []string
	for i, inc := range m.incident {
		if len(inc) == 0 {
			isolated = append(isolated, m.points[i].Key)
		}
	}
	if len(isolated) > 0 {
		return topologyErr("points have no springs", isolated...)
	}

	seen := make([]bool, len(m.points))
	stack := []PointID{0}
	seen[0] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, sid := range m.incident[p] {
			q := m.springs[sid].Other(p)
			if !seen[q] {
				seen[q] = true
				stack = append(stack, q)
			}
		}
	}

	var unreachable []string
	for i, ok := range seen {
		if !ok {
			unreachable = append(unreachable, m.points[i].Key)
		}
	}
	if len(unreachable) > 0 {
		return topologyErr("points are unreachable from "+m.points[0].Key, unreachable...)
	}
	return nil
}

// Len returns the number of points.
func (m *Mesh) Len() int { return len(m.points) }

// SpringCount returns the number of springs.
func (m *Mesh) SpringCount() int { return len(m.springs) }

// Point returns the point with the given id. It panics on an invalid id,
// like a slice index.
func (m *Mesh) Point(id PointID) Point { return m.points[id] }

// Spring returns the spring with the given id.
func (m *Mesh) Spring(id SpringID) Spring { return m.springs[id] }

// Points returns a copy of all points.
func (m *Mesh) Points() []Point { return slices.Clone(m.points) }

// Springs returns a copy of all springs.
func (m *Mesh) Springs() []Spring { return slices.Clone(m.springs) }

// Incident returns the springs touching p.
func (m *Mesh) Incident(p PointID) []SpringID { return slices.Clone(m.incident[p]) }

// Degree returns the number of springs touching p.
func (m *Mesh) Degree(p PointID) int { return len(m.incident[p]) }

// MaxDegree returns the largest point degree.
func (m *Mesh) MaxDegree() int {
	d := 0
	for _, inc := range m.incident {
		d = max(d, len(inc))
	}
	return d
}

// Lookup finds a point by key.
func (m *Mesh) Lookup(key string) (PointID, bool) {
	id, ok := m.byKey[key]
	return id, ok
}

// Valid reports whether id refers to a point of m.
func (m *Mesh) Valid(id PointID) bool {
	return id >= 0 && int(id) < len(m.points)
}

// Bounds returns the bounding box of the geographic positions.
func (m *Mesh) Bounds() orb.Bound { return m.bounds }

// MaxGeoLength returns the longest geographic rest length.
func (m *Mesh) MaxGeoLength() float64 { return m.maxGeo }

// GeoPositions returns the geographic position of every point, by id.
func (m *Mesh) GeoPositions() []geom.Vec {
	out := make([]geom.Vec, len(m.points))
	for i, p := range m.points {
		out[i] = p.Geo
	}
	return out
}
