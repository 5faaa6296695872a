package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Vec is a 2D point or vector in layout units.
type Vec struct {
	X float64
	Y float64
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

func (v Vec) Dot(o Vec) float64 { return v.X*o.X + v.Y*o.Y }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Dist2 returns the squared distance, for comparisons.
func (v Vec) Dist2(o Vec) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

// Unit returns v scaled to length 1. ok is false for a zero or
// non-finite vector, in which case the zero vector is returned.
func (v Vec) Unit() (u Vec, ok bool) {
	l := v.Len()
	if l == 0 || math.IsInf(l, 0) || math.IsNaN(l) {
		return Vec{}, false
	}
	return Vec{v.X / l, v.Y / l}, true
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vec) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y)
}

// Orb converts v to an orb point.
func (v Vec) Orb() orb.Point { return orb.Point{v.X, v.Y} }

// FromOrb converts an orb point to a Vec.
func FromOrb(p orb.Point) Vec { return Vec{X: p[0], Y: p[1]} }

// Lerp blends a and b: t=0 gives a, t=1 gives b.
func Lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// LerpVec blends two vectors component-wise.
func LerpVec(a, b Vec, t float64) Vec {
	return Vec{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

// Clamp limits v to [lo, hi]. NaN is returned as lo.
func Clamp(v, lo, hi float64) float64 {
	if v != v {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

// Clamp01 is Clamp(v, 0, 1).
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
