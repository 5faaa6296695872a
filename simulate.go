package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/engine"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/mesh"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/solver"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/util"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type simulateOptions struct {
	ticks    int
	dt       float64
	timeness float64
	animate  bool
	height   int
	width    int
}

var simOpts simulateOptions

var simulateCmd = &cobra.Command{
	Use:   "simulate <city>",
	Short: "Run the spring mesh headless and plot its residual",
	Long: `Steps the solver for a fixed number of ticks without a terminal UI and
prints how the residual falls over time. The residual is the largest net
spring force or speed of any free point; below the relaxation epsilon the
mesh counts as settled.

<city> is a descriptor file or the name of a bundled city.

Example:
  spacetime simulate london --ticks 600 --timeness 1`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simOpts.ticks, "ticks", 300, "Number of ticks to run")
	simulateCmd.Flags().Float64Var(&simOpts.dt, "dt", 1.0/30, "Seconds per tick")
	simulateCmd.Flags().Float64Var(&simOpts.timeness, "timeness", 1, "Fixed timeness in [0,1]")
	simulateCmd.Flags().BoolVar(&simOpts.animate, "animate", false, "Drive timeness with the oscillator instead")
	simulateCmd.Flags().IntVar(&simOpts.height, "height", 12, "Plot height in lines")
	simulateCmd.Flags().IntVar(&simOpts.width, "width", 70, "Plot width in columns")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	d, err := resolveCity(args[0])
	if err != nil {
		return err
	}
	eng := engine.New(cfg.Engine, logger)
	if err := eng.Load(d); err != nil {
		return err
	}
	res, err := simulate(eng, simOpts)
	if err != nil {
		return err
	}
	logger.Debug("simulation finished",
		zap.String("city", d.Name),
		zap.Int("ticks", len(res.residuals)),
		zap.Int("recovered", res.recovered),
	)
	return res.print(cmd.OutOrStdout(), d.Title(), simOpts)
}

type simulation struct {
	residuals  []float64
	relaxedAt  int // first tick that ended relaxed, or -1
	recovered  int
	substeps   int
	final      engine.Frame
	maxStrain  float64
	meanStrain float64
	maxWarp    float64
}

// simulate runs opts.ticks ticks on an engine that already holds a city.
func simulate(eng *engine.Engine, opts simulateOptions) (simulation, error) {
	if opts.ticks < 1 {
		return simulation{}, fmt.Errorf("ticks must be at least 1, got %d", opts.ticks)
	}
	in := engine.Inputs{
		Animate:   opts.animate,
		Timeness:  opts.timeness,
		Threshold: math.Inf(1),
	}

	sim := simulation{relaxedAt: -1, residuals: make([]float64, 0, opts.ticks)}
	for i := range opts.ticks {
		f, err := eng.Advance(opts.dt, in)
		if err != nil {
			return sim, fmt.Errorf("tick %d: %w", i, err)
		}
		sim.residuals = append(sim.residuals, f.Residual)
		sim.recovered += len(f.Recovered)
		sim.substeps += f.Substeps
		if sim.relaxedAt < 0 && f.Status == solver.Relaxed {
			sim.relaxedAt = i
		}
		sim.final = f
	}

	m := eng.Mesh()
	for i := range m.SpringCount() {
		s := math.Abs(eng.Strain(sim.final, mesh.SpringID(i)))
		sim.maxStrain = math.Max(sim.maxStrain, s)
		sim.meanStrain += s
	}
	if n := m.SpringCount(); n > 0 {
		sim.meanStrain /= float64(n)
	}
	for _, s := range sim.final.Grid {
		sim.maxWarp = math.Max(sim.maxWarp, s.Displacement().Len())
	}
	return sim, nil
}

// plotSeries is the residual on a log scale; zero becomes the floor.
func (s simulation) plotSeries() []float64 {
	out := make([]float64, len(s.residuals))
	for i, r := range s.residuals {
		out[i] = math.Log10(math.Max(r, 1e-6))
	}
	return out
}

func (s simulation) print(w io.Writer, title string, opts simulateOptions) error {
	elapsed := time.Duration(s.final.Elapsed * float64(time.Second))
	fmt.Fprintf(w, "%s  %d ticks of %.4gs (%s)\n\n", title, len(s.residuals), opts.dt, util.FormatDuration(elapsed))

	fmt.Fprintln(w, asciigraph.Plot(s.plotSeries(),
		asciigraph.Height(opts.height),
		asciigraph.Width(opts.width),
		asciigraph.Caption("log10 residual (max net force or speed)"),
	))
	fmt.Fprintln(w)

	relaxed := "not within the run"
	if s.relaxedAt >= 0 {
		relaxed = fmt.Sprintf("tick %d", s.relaxedAt)
	}
	fmt.Fprintf(w, "timeness     %.3f\n", s.final.Timeness)
	fmt.Fprintf(w, "status       %s\n", s.final.Status)
	fmt.Fprintf(w, "relaxed at   %s\n", relaxed)
	fmt.Fprintf(w, "residual     %.4g\n", s.final.Residual)
	fmt.Fprintf(w, "strain       max %.3f  mean %.3f\n", s.maxStrain, s.meanStrain)
	fmt.Fprintf(w, "grid warp    max %.1f\n", s.maxWarp)
	fmt.Fprintf(w, "substeps     %d\n", s.substeps)
	_, err := fmt.Fprintf(w, "recovered    %d\n", s.recovered)
	return err
}
