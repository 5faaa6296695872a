package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/project"
)

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

func (ll LatLng) orb() orb.Point { return orb.Point{ll.Lng, ll.Lat} }

// Valid reports whether the coordinate is finite and inside the WGS84 range.
func (ll LatLng) Valid() bool {
	return IsFinite(ll.Lat) && IsFinite(ll.Lng) &&
		ll.Lat >= -90 && ll.Lat <= 90 &&
		ll.Lng >= -180 && ll.Lng <= 180
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b LatLng) float64 {
	return geo.Distance(a.orb(), b.orb())
}

// Fit projects coordinates with Web-Mercator and scales them uniformly so
// the longest side of their bounding box spans size units. North is up:
// the Y axis grows southwards like screen coordinates. The returned scale
// converts Mercator meters to layout units.
func Fit(coords []LatLng, size float64) (pts []Vec, scale float64) {
	pts = make([]Vec, len(coords))
	if len(coords) == 0 {
		return pts, 1
	}

	mp := make(orb.MultiPoint, len(coords))
	for i, c := range coords {
		mp[i] = project.WGS84.ToMercator(c.orb())
	}
	b := mp.Bound()

	span := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	scale = 1.0
	if span > 0 {
		scale = size / span
	}
	for i, p := range mp {
		pts[i] = Vec{
			X: (p[0] - b.Min[0]) * scale,
			Y: (b.Max[1] - p[1]) * scale,
		}
	}
	return pts, scale
}
