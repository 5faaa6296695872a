package city

import (
	"fmt"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/mesh"
)

// DefaultLayoutSize is the side of the box geographic positions are fitted into.
const DefaultLayoutSize = 1000.0

// Options control how a descriptor becomes a mesh.
type Options struct {
	LayoutSize float64
	// UnitsPerSecond converts travel seconds to layout units. Zero
	// calibrates per city so the mean spring keeps its geographic size.
	UnitsPerSecond float64
	Stiffness      float64
}

// Layout is a descriptor turned into a mesh.
type Layout struct {
	Mesh         *mesh.Mesh
	Anchor       mesh.PointID // descriptor anchor, or mesh.NoPoint
	SecondsScale float64      // layout units per travel second
	MeterScale   float64      // layout units per Mercator meter
	Measurements int
	Merged       int // measurements folded into an already seen pair
}

type pairKey struct{ a, b string }

func orderedPair(from, to string) pairKey {
	if from > to {
		from, to = to, from
	}
	return pairKey{from, to}
}

type pairSum struct {
	from, to string
	seconds  float64
	count    int
}

// Build validates d and converts it into a mesh. Repeated measurements of
// the same pair, in either direction, are merged by their mean.
func Build(d *Descriptor, opts Options) (*Layout, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	size := opts.LayoutSize
	if !(size > 0) || !geom.IsFinite(size) {
		size = DefaultLayoutSize
	}

	coords := make([]geom.LatLng, len(d.Points))
	for i, p := range d.Points {
		coords[i] = geom.LatLng{Lat: p.Lat, Lng: p.Lng}
	}
	pos, meterScale := geom.Fit(coords, size)

	points := make([]mesh.PointSpec, len(d.Points))
	index := make(map[string]int, len(d.Points))
	for i, p := range d.Points {
		points[i] = mesh.PointSpec{Key: p.ID, Name: p.Name, Geo: pos[i]}
		index[p.ID] = i
	}

	// Pairs keep the order in which they were first measured.
	var pairs []*pairSum
	seen := make(map[pairKey]*pairSum)
	merged := 0
	for _, tt := range d.TravelTimes {
		secs, _ := tt.Seconds() // validated above
		k := orderedPair(tt.From, tt.To)
		if ps, ok := seen[k]; ok {
			ps.seconds += secs
			ps.count++
			merged++
			continue
		}
		ps := &pairSum{from: tt.From, to: tt.To, seconds: secs, count: 1}
		seen[k] = ps
		pairs = append(pairs, ps)
	}

	geoLen := make([]float64, len(pairs))
	meanSecs := make([]float64, len(pairs))
	var sumGeo, sumSecs float64
	for i, ps := range pairs {
		geoLen[i] = pos[index[ps.from]].Dist(pos[index[ps.to]])
		meanSecs[i] = ps.seconds / float64(ps.count)
		sumGeo += geoLen[i]
		sumSecs += meanSecs[i]
	}

	if !geom.IsFinite(sumSecs) {
		return nil, d.dataErr("travelTimes", "total travel time overflows")
	}

	scale := opts.UnitsPerSecond
	if !(scale > 0) {
		scale = 0
		if sumSecs > 0 {
			scale = sumGeo / sumSecs
		}
	}

	stiffness := opts.Stiffness
	if !(stiffness > 0) {
		stiffness = 1
	}
	springs := make([]mesh.SpringSpec, len(pairs))
	for i, ps := range pairs {
		if !geom.IsFinite(meanSecs[i] * scale) {
			return nil, d.dataErr("travelTimes", fmt.Sprintf("travel time %s-%s overflows the layout", ps.from, ps.to))
		}
		springs[i] = mesh.SpringSpec{
			From:       ps.from,
			To:         ps.to,
			GeoLength:  geoLen[i],
			TimeLength: meanSecs[i] * scale,
			Stiffness:  stiffness,
		}
	}

	m, err := mesh.Build(points, springs)
	if err != nil {
		return nil, err
	}

	anchor := mesh.NoPoint
	if d.Anchor != "" {
		anchor, _ = m.Lookup(d.Anchor)
	}
	return &Layout{
		Mesh:         m,
		Anchor:       anchor,
		SecondsScale: scale,
		MeterScale:   meterScale,
		Measurements: len(d.TravelTimes),
		Merged:       merged,
	}, nil
}
