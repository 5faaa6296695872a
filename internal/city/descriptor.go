// Package city reads city descriptors and turns them into meshes.
package city

import (
	"fmt"
	"math"
	"strings"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
)

// Descriptor is one city's points and travel-time measurements.
type Descriptor struct {
	Name        string       `json:"name" yaml:"name"`
	DisplayName string       `json:"displayName,omitempty" yaml:"display_name,omitempty"`
	Mode        string       `json:"mode,omitempty" yaml:"mode,omitempty"` // e.g. "transit", "driving"
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Anchor      string       `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Points      []Point      `json:"points" yaml:"points"`
	TravelTimes []TravelTime `json:"travelTimes" yaml:"travel_times"`
}

// Point is a landmark.
type Point struct {
	ID   string  `json:"id" yaml:"id"`
	Name string  `json:"name,omitempty" yaml:"name,omitempty"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lng  float64 `json:"lng" yaml:"lng"`
}

// TravelTime is one measured trip between two points. Direction is
// ignored.
type TravelTime struct {
	From string  `json:"from" yaml:"from"`
	To   string  `json:"to" yaml:"to"`
	Time float64 `json:"time" yaml:"time"`
	Unit string  `json:"unit,omitempty" yaml:"unit,omitempty"` // s, min, h; default min
}

// Title is the label used in pickers: "Display Name (mode)".
func (d *Descriptor) Title() string {
	name := d.DisplayName
	if name == "" {
		name = d.Name
	}
	if d.Mode == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, d.Mode)
}

// unitSeconds converts a unit name to seconds per unit.
func unitSeconds(unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "min", "mins", "minute", "minutes":
		return 60, true
	case "s", "sec", "secs", "second", "seconds":
		return 1, true
	case "h", "hr", "hrs", "hour", "hours":
		return 3600, true
	}
	return 0, false
}

// Seconds returns the travel time in seconds.
func (tt TravelTime) Seconds() (float64, error) {
	per, ok := unitSeconds(tt.Unit)
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", tt.Unit)
	}
	return tt.Time * per, nil
}

// Validate checks references and values. Every failure is a *DataError.
func (d *Descriptor) Validate() error {
	if len(d.Points) == 0 {
		return d.dataErr("points", "no points")
	}

	ids := make(map[string]bool, len(d.Points))
	for i, p := range d.Points {
		field := fmt.Sprintf("points[%d]", i)
		if strings.TrimSpace(p.ID) == "" {
			return d.dataErr(field, "empty id")
		}
		if ids[p.ID] {
			return d.dataErr(field, fmt.Sprintf("duplicate id %q", p.ID))
		}
		if !(geom.LatLng{Lat: p.Lat, Lng: p.Lng}).Valid() {
			return d.dataErr(field, fmt.Sprintf("coordinate (%v, %v) out of range", p.Lat, p.Lng))
		}
		ids[p.ID] = true
	}

	for i, tt := range d.TravelTimes {
		field := fmt.Sprintf("travelTimes[%d]", i)
		if !ids[tt.From] {
			return d.dataErr(field, fmt.Sprintf("unknown point %q", tt.From))
		}
		if !ids[tt.To] {
			return d.dataErr(field, fmt.Sprintf("unknown point %q", tt.To))
		}
		if tt.From == tt.To {
			return d.dataErr(field, fmt.Sprintf("travel time from %q to itself", tt.From))
		}
		if math.IsNaN(tt.Time) || math.IsInf(tt.Time, 0) {
			return d.dataErr(field, "travel time is not finite")
		}
		if tt.Time < 0 {
			return d.dataErr(field, fmt.Sprintf("negative travel time %v", tt.Time))
		}
		secs, err := tt.Seconds()
		if err != nil {
			return d.dataErr(field, err.Error())
		}
		if !geom.IsFinite(secs) {
			return d.dataErr(field, fmt.Sprintf("travel time %v %s overflows", tt.Time, tt.Unit))
		}
	}

	if d.Anchor != "" && !ids[d.Anchor] {
		return d.dataErr("anchor", fmt.Sprintf("unknown point %q", d.Anchor))
	}
	return nil
}

func (d *Descriptor) dataErr(field, reason string) error {
	return &DataError{City: d.Name, Field: field, Reason: reason}
}
