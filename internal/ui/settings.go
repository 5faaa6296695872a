package ui

import (
	"math"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/config"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/engine"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
)

// Settings are the viewer toggles.
type Settings struct {
	Animate           bool
	FocusOnHover      bool
	SpringArrows      bool // colour springs by strain
	GridPoints        bool
	Grid              bool
	GridNumbers       bool
	SpringsByDistance bool
}

// SettingsFromConfig copies the initial toggles out of the config.
func SettingsFromConfig(v config.View) Settings {
	return Settings{
		Animate:           v.Animate,
		FocusOnHover:      v.FocusOnHover,
		SpringArrows:      v.ShowSpringArrows,
		GridPoints:        v.ShowGridPoints,
		Grid:              v.ShowGrid,
		GridNumbers:       v.ShowGridNumbers,
		SpringsByDistance: v.ShowSpringsByDistance,
	}
}

// inputs builds the engine controls for one tick. Without the distance
// sweep every spring is drawn.
func (s Settings) inputs(timeness float64, pointer geom.Vec, hasPointer bool) engine.Inputs {
	return engine.Inputs{
		Pointer:        pointer,
		HasPointer:     hasPointer,
		FocusOnHover:   s.FocusOnHover,
		Animate:        s.Animate,
		Timeness:       timeness,
		SweepThreshold: s.SpringsByDistance,
		Threshold:      math.Inf(1),
	}
}
