package main

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/config"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/engine"
)

func loadedEngine(t *testing.T, name string) (*engine.Engine, *city.Descriptor) {
	t.Helper()
	d, err := resolveCity(name)
	if err != nil {
		t.Fatalf("resolveCity(%q) error = %v", name, err)
	}
	eng := engine.New(config.DefaultConfig().Engine, nil)
	if err := eng.Load(d); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return eng, d
}

func TestSimulateAtGeographyIsRelaxedImmediately(t *testing.T) {
	eng, d := loadedEngine(t, "london")

	sim, err := simulate(eng, simulateOptions{ticks: 10, dt: 1.0 / 30, timeness: 0})
	if err != nil {
		t.Fatalf("simulate() error = %v", err)
	}
	if len(sim.residuals) != 10 {
		t.Fatalf("len(residuals) = %d, want 10", len(sim.residuals))
	}
	if sim.relaxedAt != 0 || sim.maxStrain != 0 || sim.maxWarp != 0 {
		t.Fatalf("relaxedAt = %d, maxStrain = %v, maxWarp = %v, want 0, 0, 0", sim.relaxedAt, sim.maxStrain, sim.maxWarp)
	}

	var buf bytes.Buffer
	if err := sim.print(&buf, d.Title(), simulateOptions{ticks: 10, dt: 1.0 / 30, height: 5, width: 20}); err != nil {
		t.Fatalf("print() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"London (transit)", "log10 residual", "relaxed at   tick 0", "recovered    0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSimulateTowardsTravelTimeReducesResidual(t *testing.T) {
	eng, _ := loadedEngine(t, "berlin")

	sim, err := simulate(eng, simulateOptions{ticks: 600, dt: 1.0 / 30, timeness: 1})
	if err != nil {
		t.Fatalf("simulate() error = %v", err)
	}
	first, last := sim.residuals[0], sim.residuals[len(sim.residuals)-1]
	if !(last < first) {
		t.Fatalf("residual went from %v to %v, want it to fall", first, last)
	}
	if sim.recovered != 0 {
		t.Fatalf("recovered = %d, want 0", sim.recovered)
	}
	for _, v := range sim.plotSeries() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("plot series has %v", v)
		}
	}
}

func TestSimulateHelpDescribesResidual(t *testing.T) {
	long := strings.Join(strings.Fields(simulateCmd.Long), " ")
	if !strings.Contains(long, "largest net spring force or speed") || strings.Contains(long, "length error") {
		t.Fatalf("simulate help does not describe the residual:\n%s", simulateCmd.Long)
	}
}

func TestSimulateRejectsZeroTicks(t *testing.T) {
	eng, _ := loadedEngine(t, "berlin")
	if _, err := simulate(eng, simulateOptions{ticks: 0, dt: 0.1}); err == nil {
		t.Fatal("simulate() error = nil, want error")
	}
}

func TestCheckReport(t *testing.T) {
	d, err := resolveCity("london")
	if err != nil {
		t.Fatalf("resolveCity() error = %v", err)
	}
	cfg := config.DefaultConfig()
	layout, err := city.Build(d, cfg.Engine.CityOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	r := newReport(d, layout, cfg.Engine.SolverParams(), cfg.Engine.Stiffness)
	if r.anchor != "kings_cross" {
		t.Fatalf("anchor = %q, want kings_cross", r.anchor)
	}
	if len(r.connections) != r.springs {
		t.Fatalf("%d connections for %d springs", len(r.connections), r.springs)
	}
	for i := 1; i < len(r.connections); i++ {
		if r.connections[i-1].speed() > r.connections[i].speed() {
			t.Fatalf("connections not sorted by speed at %d", i)
		}
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, r); err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"London (transit)", "17 measurements, 1 merged", "kings_cross", "km/h", "(ok)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}
