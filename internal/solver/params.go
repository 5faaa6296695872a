package solver

import (
	"fmt"
	"math"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
)

// Tuned defaults. With Mass 1 and Stiffness 40 a single spring against an
// anchored partner has ω = sqrt(40) ≈ 6.3 rad/s; Damping = 2·sqrt(k·m)
// makes it critically damped. At MaxSubstep = 1/30 s a point with 16
// springs still has ω·h ≈ 0.84, well under the symplectic Euler limit of 2.
const (
	DefaultStiffness   = 40.0
	DefaultMass        = 1.0
	DefaultMaxSubstep  = 1.0 / 30
	DefaultMaxSubsteps = 240
	DefaultEpsilon     = 1e-3

	// StabilityLimit is the largest ω·h for which undamped symplectic
	// Euler stays bounded.
	StabilityLimit = 2.0
)

// Params configures integration.
type Params struct {
	Mass        float64 // per point
	Damping     float64 // velocity-proportional drag coefficient
	MaxSubstep  float64 // seconds; larger dt are split
	MaxSubsteps int     // per Step; time beyond this is not integrated
	Epsilon     float64 // residual below which the mesh counts as relaxed
}

// CriticalDamping returns 2·sqrt(k·m).
func CriticalDamping(stiffness, mass float64) float64 {
	return 2 * math.Sqrt(stiffness*mass)
}

// DefaultParams returns the calibrated constants.
func DefaultParams() Params {
	return Params{
		Mass:        DefaultMass,
		Damping:     CriticalDamping(DefaultStiffness, DefaultMass),
		MaxSubstep:  DefaultMaxSubstep,
		MaxSubsteps: DefaultMaxSubsteps,
		Epsilon:     DefaultEpsilon,
	}
}

// Validate rejects parameters the integrator cannot use.
func (p Params) Validate() error {
	switch {
	case !(p.Mass > 0) || !geom.IsFinite(p.Mass):
		return fmt.Errorf("mass must be positive, got %v", p.Mass)
	case !(p.Damping >= 0) || !geom.IsFinite(p.Damping):
		return fmt.Errorf("damping must be non-negative, got %v", p.Damping)
	case !(p.MaxSubstep > 0) || !geom.IsFinite(p.MaxSubstep):
		return fmt.Errorf("max substep must be positive, got %v", p.MaxSubstep)
	case p.MaxSubsteps < 1:
		return fmt.Errorf("max substeps must be at least 1, got %d", p.MaxSubsteps)
	case !(p.Epsilon > 0) || !geom.IsFinite(p.Epsilon):
		return fmt.Errorf("epsilon must be positive, got %v", p.Epsilon)
	}
	return nil
}

// StabilityMargin returns ω·h for a point carrying maxDegree springs of the
// given stiffness at the largest sub-step. Values under StabilityLimit are
// stable; the damping term is integrated implicitly and never lowers it.
func (p Params) StabilityMargin(stiffness float64, maxDegree int) float64 {
	if maxDegree < 1 {
		maxDegree = 1
	}
	return math.Sqrt(stiffness*float64(maxDegree)/p.Mass) * p.MaxSubstep
}
