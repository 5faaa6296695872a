package util

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration formats a duration as m:ss, or h:mm:ss from an hour up.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatSeconds is FormatDuration for a float number of seconds.
func FormatSeconds(sec float64) string {
	if math.IsNaN(sec) || math.IsInf(sec, 0) {
		return "-"
	}
	return FormatDuration(time.Duration(sec * float64(time.Second)))
}

// FormatDistance formats meters as "850 m" or "3.2 km".
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// FormatSpeed formats meters per second as km/h.
func FormatSpeed(mps float64) string {
	if math.IsNaN(mps) || math.IsInf(mps, 0) {
		return "-"
	}
	return fmt.Sprintf("%.1f km/h", mps*3.6)
}
