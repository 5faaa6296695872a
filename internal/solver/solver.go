// Package solver relaxes a mesh toward the rest lengths implied by the
// current timeness, one host tick at a time.
package solver

import (
	"math"
	"slices"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/mesh"
	"go.uber.org/zap"
)

// Status is the solver's steady state.
type Status uint8

const (
	Relaxing Status = iota
	Relaxed
)

func (s Status) String() string {
	if s == Relaxed {
		return "relaxed"
	}
	return "relaxing"
}

// Controls are the per-tick inputs.
type Controls struct {
	Timeness float64
	Anchor   mesh.PointID // mesh.NoPoint leaves every point free
}

// Report describes one Step.
type Report struct {
	Substeps   int     // integration sub-steps actually run
	Integrated float64 // seconds of dt that went into physics
	Skipped    bool    // relaxed with unchanged controls
	Status     Status
	Residual   float64
	Recovered  []*NumericInstabilityError
}

// Solver owns the positions and velocities of one mesh.
type Solver struct {
	mesh   *mesh.Mesh
	params Params
	log    *zap.Logger

	pos      []geom.Vec
	vel      []geom.Vec
	force    []geom.Vec
	lastGood []geom.Vec

	anchor    mesh.PointID
	anchorPos geom.Vec
	timeness  float64
	primed    bool
	status    Status
	residual  float64
}

// New places every point at its geographic position, at rest. Params are
// expected to be validated by the caller.
func New(m *mesh.Mesh, p Params, logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Solver{
		mesh:     m,
		params:   p,
		log:      logger,
		pos:      make([]geom.Vec, m.Len()),
		vel:      make([]geom.Vec, m.Len()),
		force:    make([]geom.Vec, m.Len()),
		lastGood: make([]geom.Vec, m.Len()),
	}
	s.Reset()
	return s
}

// Reset returns every point to its geographic position with zero velocity.
func (s *Solver) Reset() {
	for i := range s.pos {
		g := s.mesh.Point(mesh.PointID(i)).Geo
		s.pos[i] = g
		s.lastGood[i] = g
		s.vel[i] = geom.Vec{}
		s.force[i] = geom.Vec{}
	}
	s.anchor = mesh.NoPoint
	s.primed = false
	s.status = Relaxing
	s.residual = math.Inf(1)
}

// Step advances the simulation by dt seconds.
func (s *Solver) Step(dt float64, c Controls) (Report, error) {
	if dt < 0 || !geom.IsFinite(dt) {
		return Report{Status: s.status, Residual: s.residual}, ErrInvalidDelta
	}
	if c.Anchor != mesh.NoPoint && !s.mesh.Valid(c.Anchor) {
		return Report{Status: s.status, Residual: s.residual}, ErrUnknownAnchor
	}
	timeness := geom.Clamp01(c.Timeness)

	changed := !s.primed || timeness != s.timeness || c.Anchor != s.anchor
	if c.Anchor != s.anchor {
		s.setAnchor(c.Anchor)
	}
	s.timeness = timeness
	s.primed = true
	if changed {
		s.status = Relaxing
	}

	rep := Report{Status: s.status, Residual: s.residual}
	if dt == 0 {
		return rep, nil
	}
	if s.status == Relaxed {
		rep.Skipped = true
		return rep, nil
	}

	// Cap in float before converting; a huge dt would overflow int.
	n, h := s.params.MaxSubsteps, s.params.MaxSubstep
	if nf := math.Ceil(dt/s.params.MaxSubstep - 1e-9); nf <= float64(n) {
		n = max(1, int(nf))
		h = dt / float64(n)
	}

	for range n {
		rep.Recovered = append(rep.Recovered, s.substep(h)...)
	}
	rep.Substeps = n
	rep.Integrated = h * float64(n)

	if s.residual < s.params.Epsilon {
		s.status = Relaxed
	}
	rep.Status = s.status
	rep.Residual = s.residual
	return rep, nil
}

func (s *Solver) setAnchor(a mesh.PointID) {
	s.anchor = a
	if a == mesh.NoPoint {
		return
	}
	// The new anchor freezes where it currently is.
	s.anchorPos = s.pos[a]
	s.vel[a] = geom.Vec{}
}

// substep runs one symplectic Euler step of length h. Damping is applied
// implicitly, v' = (v + h·F/m) / (1 + h·c/m), so it only ever removes energy.
func (s *Solver) substep(h float64) []*NumericInstabilityError {
	for i := range s.force {
		s.force[i] = geom.Vec{}
	}

	for j := range s.mesh.SpringCount() {
		sp := s.mesh.Spring(mesh.SpringID(j))
		d := s.pos[sp.B].Sub(s.pos[sp.A])
		dir, ok := d.Unit()
		if !ok {
			// Coincident endpoints have no direction to push along.
			continue
		}
		f := dir.Scale(sp.Stiffness * (d.Len() - sp.Target(s.timeness)))
		s.force[sp.A] = s.force[sp.A].Add(f)
		s.force[sp.B] = s.force[sp.B].Sub(f)
	}

	m := s.params.Mass
	drag := 1 + h*s.params.Damping/m
	residual := 0.0
	var recovered []*NumericInstabilityError

	for i := range s.pos {
		id := mesh.PointID(i)
		if id == s.anchor {
			s.pos[i] = s.anchorPos
			s.vel[i] = geom.Vec{}
			continue
		}

		v := s.vel[i].Add(s.force[i].Scale(h / m)).Scale(1 / drag)
		p := s.pos[i].Add(v.Scale(h))
		if !p.IsFinite() || !v.IsFinite() {
			e := &NumericInstabilityError{
				Point:    id,
				Key:      s.mesh.Point(id).Key,
				Position: p,
				Restored: s.lastGood[i],
			}
			s.log.Warn("numeric instability, point restored",
				zap.String("point", e.Key),
				zap.Float64("x", p.X),
				zap.Float64("y", p.Y),
			)
			s.pos[i] = s.lastGood[i]
			s.vel[i] = geom.Vec{}
			recovered = append(recovered, e)
			residual = math.Inf(1)
			continue
		}

		s.pos[i] = p
		s.vel[i] = v
		s.lastGood[i] = p
		residual = math.Max(residual, math.Max(s.force[i].Len(), v.Len()))
	}

	s.residual = residual
	return recovered
}

// Perturb nudges a point by offset and wakes the solver. The anchor
// cannot be nudged.
func (s *Solver) Perturb(id mesh.PointID, offset geom.Vec) {
	if !s.mesh.Valid(id) || id == s.anchor || !offset.IsFinite() {
		return
	}
	s.pos[id] = s.pos[id].Add(offset)
	s.lastGood[id] = s.pos[id]
	s.status = Relaxing
}

// Positions returns a copy of the simulated positions, indexed by PointID.
func (s *Solver) Positions() []geom.Vec { return slices.Clone(s.pos) }

// Position returns the simulated position of a point.
func (s *Solver) Position(id mesh.PointID) geom.Vec { return s.pos[id] }

// Velocity returns the velocity of a point.
func (s *Solver) Velocity(id mesh.PointID) geom.Vec { return s.vel[id] }

// Status returns the current steady state.
func (s *Solver) Status() Status { return s.status }

// Residual returns the largest net spring force or speed of a free point
// seen in the last sub-step.
func (s *Solver) Residual() float64 { return s.residual }

// Anchor returns the point currently held fixed.
func (s *Solver) Anchor() mesh.PointID { return s.anchor }

// Mesh returns the mesh being simulated.
func (s *Solver) Mesh() *mesh.Mesh { return s.mesh }

// LengthError returns current length minus target length of a spring.
func (s *Solver) LengthError(id mesh.SpringID, timeness float64) float64 {
	sp := s.mesh.Spring(id)
	return s.pos[sp.A].Dist(s.pos[sp.B]) - sp.Target(timeness)
}
