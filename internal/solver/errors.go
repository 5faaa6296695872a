package solver

import (
	"errors"
	"fmt"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/mesh"
)

var (
	// ErrInvalidDelta is returned for a negative or non-finite dt.
	ErrInvalidDelta = errors.New("invalid time delta")
	// ErrUnknownAnchor is returned when the anchor is not a mesh point.
	ErrUnknownAnchor = errors.New("unknown anchor point")
)

// NumericInstabilityError records a point whose integration diverged. The
// solver has already restored the point's last good position.
type NumericInstabilityError struct {
	Point    mesh.PointID
	Key      string
	Position geom.Vec // the diverged value
	Restored geom.Vec
}

func (e *NumericInstabilityError) Error() string {
	return fmt.Sprintf("numeric instability at point %s (%d): position %v, restored to %v",
		e.Key, e.Point, e.Position, e.Restored)
}
