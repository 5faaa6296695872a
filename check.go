package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/mesh"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/solver"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/util"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <city>",
	Short: "Validate a city descriptor and report mesh statistics",
	Long: `Validates a descriptor the way the viewer does and prints the mesh it
builds: point and spring counts, travel time calibration, the stability
margin of the configured solver, and every connection with its great-circle
distance, mean travel time and implied speed.

<city> is a descriptor file or the name of a bundled city.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	d, err := resolveCity(args[0])
	if err != nil {
		return err
	}
	layout, err := city.Build(d, cfg.Engine.CityOptions())
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), newReport(d, layout, cfg.Engine.SolverParams(), cfg.Engine.Stiffness))
}

type connection struct {
	from, to string
	meters   float64
	seconds  float64
}

// speed is meters per second; zero-time connections are infinitely fast.
func (c connection) speed() float64 {
	return c.meters / c.seconds
}

type report struct {
	title        string
	points       int
	springs      int
	measurements int
	merged       int
	maxDegree    int
	anchor       string
	secondsScale float64
	margin       float64
	connections  []connection
}

func newReport(d *city.Descriptor, l *city.Layout, p solver.Params, stiffness float64) report {
	m := l.Mesh
	r := report{
		title:        d.Title(),
		points:       m.Len(),
		springs:      m.SpringCount(),
		measurements: l.Measurements,
		merged:       l.Merged,
		maxDegree:    m.MaxDegree(),
		anchor:       "centroid",
		secondsScale: l.SecondsScale,
		margin:       p.StabilityMargin(stiffness, m.MaxDegree()),
	}
	if l.Anchor != mesh.NoPoint {
		r.anchor = m.Point(l.Anchor).Key
	}

	for _, s := range m.Springs() {
		a, b := d.Points[s.A], d.Points[s.B]
		r.connections = append(r.connections, connection{
			from:    a.ID,
			to:      b.ID,
			meters:  geom.Haversine(geom.LatLng{Lat: a.Lat, Lng: a.Lng}, geom.LatLng{Lat: b.Lat, Lng: b.Lng}),
			seconds: s.TimeLength / l.SecondsScale,
		})
	}
	// Slowest first: these pull the map apart at timeness 1.
	sort.SliceStable(r.connections, func(i, j int) bool {
		return r.connections[i].speed() < r.connections[j].speed()
	})
	return r
}

func writeReport(w io.Writer, r report) error {
	stable := "ok"
	if r.margin >= solver.StabilityLimit {
		stable = "unstable, lower stiffness or max_substep"
	}

	fmt.Fprintf(w, "%s\n\n", r.title)
	fmt.Fprintf(w, "points        %d\n", r.points)
	fmt.Fprintf(w, "springs       %d (%d measurements, %d merged)\n", r.springs, r.measurements, r.merged)
	fmt.Fprintf(w, "anchor        %s\n", r.anchor)
	fmt.Fprintf(w, "max degree    %d\n", r.maxDegree)
	fmt.Fprintf(w, "time scale    %.4g layout units per second\n", r.secondsScale)
	fmt.Fprintf(w, "stability     %.3f of %.0f (%s)\n\n", r.margin, solver.StabilityLimit, stable)

	rows := make([][]string, len(r.connections))
	for i, c := range r.connections {
		rows[i] = []string{c.from, c.to, util.FormatDistance(c.meters), util.FormatSeconds(c.seconds), util.FormatSpeed(c.speed())}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("from", "to", "distance", "time", "speed").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
