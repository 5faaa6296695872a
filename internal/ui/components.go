package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/harmonica"
)

// easer follows a target value with a critically damped harmonica spring.
// Infinite or NaN targets are taken immediately.
type easer struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	primed bool
}

func newEaser(fps int) easer {
	return easer{spring: harmonica.NewSpring(harmonica.FPS(max(fps, 1)), 8.0, 1.0)}
}

func (e *easer) update(target float64) float64 {
	if !e.primed || math.IsInf(target, 0) || math.IsNaN(target) || math.IsInf(e.pos, 0) {
		e.snap(target)
		return e.pos
	}
	e.pos, e.vel = e.spring.Update(e.pos, e.vel, target)
	return e.pos
}

func (e *easer) snap(v float64) {
	e.pos, e.vel, e.primed = v, 0, true
}

func (e easer) value() float64 { return e.pos }

func newTimenessBar() progress.Model {
	return progress.New(
		progress.WithScaledGradient("#5A56E0", "#FF5F1F"),
		progress.WithoutPercentage(),
	)
}

func renderTimeness(bar progress.Model, timeness float64) string {
	return fmt.Sprintf("geo %s time  %3.0f%%", bar.ViewAs(clampRatio(timeness)), clampRatio(timeness)*100)
}

func clampRatio(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func renderThreshold(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "all springs"
	case !(v > 0):
		return "no springs"
	}
	return fmt.Sprintf("springs ≤ %.0f", v)
}

func renderToggles(s Settings) string {
	flags := []struct {
		on   bool
		name string
	}{
		{s.Animate, "animate"},
		{s.FocusOnHover, "focus"},
		{s.SpringArrows, "strain"},
		{s.Grid, "grid"},
		{s.GridPoints, "points"},
		{s.GridNumbers, "numbers"},
		{s.SpringsByDistance, "sweep"},
	}
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		if f.on {
			parts = append(parts, onStyle.Render(f.name))
		} else {
			parts = append(parts, helpStyle.Render(f.name))
		}
	}
	return strings.Join(parts, " ")
}
