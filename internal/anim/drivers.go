// Package anim generates control inputs from elapsed time. Every function
// is pure: the same elapsed time always yields the same value.
package anim

import (
	"math"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
)

const (
	// DefaultTimenessPeriod is one full geography → time → geography cycle.
	DefaultTimenessPeriod = 5.0
	// DefaultDip pushes the sinusoid below zero so the clamp holds it at
	// exactly 0 for part of each cycle, letting the mesh settle.
	DefaultDip = 0.05
	// DefaultThresholdPeriod is the spring-threshold sweep period.
	DefaultThresholdPeriod = 20.0
)

// phase returns t modulo period in [0, period).
func phase(t, period float64) float64 {
	p := math.Mod(t, period)
	if p < 0 {
		p += period
	}
	return p
}

func usable(t, period float64) bool {
	return geom.IsFinite(t) && geom.IsFinite(period) && period > 0
}

// Timeness oscillates in [0,1] with the given period, resting at 0 while
// the dipped sinusoid is negative.
func Timeness(t, period, dip float64) float64 {
	if !usable(t, period) || !geom.IsFinite(dip) {
		return 0
	}
	s := math.Sin(2 * math.Pi * phase(t, period) / period)
	return geom.Clamp01(s*(0.5+dip) + (0.5 - dip))
}

// DipFraction returns the share of each period during which Timeness is
// held at exactly 0.
func DipFraction(dip float64) float64 {
	if dip <= 0 || !geom.IsFinite(dip) {
		return 0
	}
	// sin(x) <= -(0.5-dip)/(0.5+dip)
	k := (0.5 - dip) / (0.5 + dip)
	if k <= -1 {
		return 1
	}
	return (math.Pi - 2*math.Asin(k)) / (2 * math.Pi)
}

// Triangle is a unit triangle wave: 0 at the start of each period, 1 at
// the half period, falling back to 0.
func Triangle(t, period float64) float64 {
	if !usable(t, period) {
		return 0
	}
	p := phase(t, period) / period
	if p < 0.5 {
		return 2 * p
	}
	return 2 * (1 - p)
}
