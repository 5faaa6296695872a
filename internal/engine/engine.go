// Package engine drives one loaded city: each host tick it runs the
// animation drivers, steps the solver, warps the grid and answers the
// pointer queries, and hands back an immutable Frame.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/anim"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/config"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/mesh"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/query"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/solver"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/warp"
	"go.uber.org/zap"
)

// ErrNoCity is returned by Advance before a city has been loaded.
var ErrNoCity = errors.New("no city loaded")

// Inputs are the host's controls for one tick.
type Inputs struct {
	Pointer      geom.Vec // layout coordinates
	HasPointer   bool
	FocusOnHover bool

	// Animate drives timeness from elapsed time; otherwise Timeness is used.
	Animate  bool
	Timeness float64

	// SweepThreshold drives the spring threshold with a triangle wave;
	// otherwise Threshold is used. +Inf shows every spring.
	SweepThreshold bool
	Threshold      float64
}

// Frame is the result of one tick. Its slices are not shared with the engine.
type Frame struct {
	Elapsed   float64
	Timeness  float64
	Threshold float64

	Positions []geom.Vec // by PointID
	Grid      []warp.Sample
	GridRows  int
	GridCols  int
	Springs   []mesh.SpringID // springs within Threshold

	Hovered  mesh.PointID
	HasHover bool
	Anchor   mesh.PointID

	Status    solver.Status
	Residual  float64
	Substeps  int
	Recovered []*solver.NumericInstabilityError
}

type state struct {
	desc     *city.Descriptor
	layout   *city.Layout
	solver   *solver.Solver
	grid     *warp.Field
	fallback mesh.PointID
	elapsed  float64
}

// Engine is not safe for concurrent use.
type Engine struct {
	cfg config.Engine
	log *zap.Logger
	cur *state
}

// New returns an engine with nothing loaded.
func New(cfg config.Engine, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, log: logger}
}

// Load replaces the current city. Nothing changes unless the new city
// loads completely.
func (e *Engine) Load(d *city.Descriptor) error {
	params := e.cfg.SolverParams()
	if err := params.Validate(); err != nil {
		return fmt.Errorf("solver params: %w", err)
	}

	layout, err := city.Build(d, e.cfg.CityOptions())
	if err != nil {
		return err
	}
	m := layout.Mesh

	grid, err := warp.New(m, e.cfg.GridSpacing)
	if err != nil {
		return fmt.Errorf("grid for %s: %w", d.Name, err)
	}

	fallback := layout.Anchor
	if fallback == mesh.NoPoint {
		fallback = query.DefaultAnchor(m)
	}

	margin := params.StabilityMargin(e.cfg.Stiffness, m.MaxDegree())
	if margin >= solver.StabilityLimit {
		e.log.Warn("integration may be unstable",
			zap.String("city", d.Name),
			zap.Float64("margin", margin),
			zap.Int("max_degree", m.MaxDegree()),
		)
	}

	s := solver.New(m, params, e.log.With(zap.String("city", d.Name)))
	if err := grid.Update(s.Positions()); err != nil {
		return err
	}

	e.cur = &state{
		desc:     d,
		layout:   layout,
		solver:   s,
		grid:     grid,
		fallback: fallback,
	}
	e.log.Info("city loaded",
		zap.String("city", d.Name),
		zap.Int("points", m.Len()),
		zap.Int("springs", m.SpringCount()),
		zap.Int("merged", layout.Merged),
		zap.Float64("seconds_scale", layout.SecondsScale),
		zap.Int("grid_samples", grid.Rows()*grid.Cols()),
	)
	return nil
}

// Advance runs one tick of dt seconds.
func (e *Engine) Advance(dt float64, in Inputs) (Frame, error) {
	st := e.cur
	if st == nil {
		return Frame{}, ErrNoCity
	}
	if dt < 0 || !geom.IsFinite(dt) {
		return Frame{}, solver.ErrInvalidDelta
	}
	st.elapsed += dt

	timeness := geom.Clamp01(in.Timeness)
	if in.Animate {
		timeness = anim.Timeness(st.elapsed, e.cfg.TimenessPeriod, e.cfg.Dip)
	}

	threshold := in.Threshold
	if in.SweepThreshold {
		threshold = anim.Triangle(st.elapsed, e.cfg.ThresholdPeriod) * e.thresholdAmplitude()
	}

	m := st.layout.Mesh
	anchor := query.SelectAnchor(st.solver.Positions(), in.Pointer, in.HasPointer, in.FocusOnHover, st.fallback)

	rep, err := st.solver.Step(dt, solver.Controls{Timeness: timeness, Anchor: anchor})
	if err != nil {
		return Frame{}, err
	}

	pos := st.solver.Positions()
	if err := st.grid.Update(pos); err != nil {
		return Frame{}, err
	}

	f := Frame{
		Elapsed:   st.elapsed,
		Timeness:  timeness,
		Threshold: threshold,
		Positions: pos,
		Grid:      st.grid.Samples(),
		GridRows:  st.grid.Rows(),
		GridCols:  st.grid.Cols(),
		Springs:   query.SpringsWithinThreshold(m, pos, threshold),
		Hovered:   mesh.NoPoint,
		Anchor:    anchor,
		Status:    rep.Status,
		Residual:  rep.Residual,
		Substeps:  rep.Substeps,
		Recovered: rep.Recovered,
	}
	if in.HasPointer && in.Pointer.IsFinite() {
		f.Hovered, f.HasHover = query.NearestPoint(pos, in.Pointer)
	}
	return f, nil
}

// thresholdAmplitude is the largest threshold the sweep reaches.
func (e *Engine) thresholdAmplitude() float64 {
	if e.cfg.ThresholdAmplitude > 0 {
		return e.cfg.ThresholdAmplitude
	}
	if l := e.cur.layout.Mesh.MaxGeoLength(); l > 0 {
		return l
	}
	return math.Max(e.cfg.LayoutSize, 1)
}

// Reset returns the current city to geography and restarts its clock.
func (e *Engine) Reset() error {
	if e.cur == nil {
		return ErrNoCity
	}
	e.cur.solver.Reset()
	e.cur.elapsed = 0
	if err := e.cur.grid.Update(e.cur.solver.Positions()); err != nil {
		return fmt.Errorf("resetting grid: %w", err)
	}
	return nil
}

// Mesh returns the loaded mesh, or nil.
func (e *Engine) Mesh() *mesh.Mesh {
	if e.cur == nil {
		return nil
	}
	return e.cur.layout.Mesh
}

// City returns the loaded descriptor, or nil.
func (e *Engine) City() *city.Descriptor {
	if e.cur == nil {
		return nil
	}
	return e.cur.desc
}

// Layout returns how the loaded city was laid out, or nil.
func (e *Engine) Layout() *city.Layout {
	if e.cur == nil {
		return nil
	}
	return e.cur.layout
}

// Strain returns the relative length error of a spring at the timeness of
// the frame. Frames from a previously loaded city report 0.
func (e *Engine) Strain(f Frame, id mesh.SpringID) float64 {
	if e.cur == nil || len(f.Positions) != e.cur.layout.Mesh.Len() {
		return 0
	}
	return query.Strain(e.cur.layout.Mesh, f.Positions, id, f.Timeness)
}
