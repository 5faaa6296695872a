package ui

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/catalog"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/config"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/engine"
	tea "github.com/charmbracelet/bubbletea"
)

func squareCity(name string) *city.Descriptor {
	return &city.Descriptor{
		Name: name,
		Mode: "walking",
		Points: []city.Point{
			{ID: "a", Name: "Alpha", Lat: 0, Lng: 0},
			{ID: "b", Name: "Bravo", Lat: 0, Lng: 0.01},
			{ID: "c", Name: "Charlie", Lat: 0.01, Lng: 0.01},
			{ID: "d", Name: "Delta", Lat: 0.01, Lng: 0},
		},
		TravelTimes: []city.TravelTime{
			{From: "a", To: "b", Time: 10},
			{From: "b", To: "c", Time: 10},
			{From: "c", To: "d", Time: 10},
			{From: "d", To: "a", Time: 10},
			{From: "c", To: "a", Time: 30},
		},
	}
}

func newTestModel(t *testing.T, cities ...*city.Descriptor) Model {
	t.Helper()
	if len(cities) == 0 {
		cities = []*city.Descriptor{squareCity("one"), squareCity("two")}
	}
	cfg := config.DefaultConfig()
	eng := engine.New(cfg.Engine, nil)
	if err := eng.Load(cities[0]); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	m := New(eng, catalog.FromDescriptors(cities), cfg.View, nil)
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestToggleKeysFlipSettings(t *testing.T) {
	tests := []struct {
		key rune
		get func(Settings) bool
	}{
		{'a', func(s Settings) bool { return s.Animate }},
		{'f', func(s Settings) bool { return s.FocusOnHover }},
		{'s', func(s Settings) bool { return s.SpringArrows }},
		{'p', func(s Settings) bool { return s.GridPoints }},
		{'g', func(s Settings) bool { return s.Grid }},
		{'n', func(s Settings) bool { return s.GridNumbers }},
		{'d', func(s Settings) bool { return s.SpringsByDistance }},
	}
	for _, tt := range tests {
		m := newTestModel(t)
		before := tt.get(m.Settings())
		m, _ = m.handleMsg(runeKey(tt.key))
		if got := tt.get(m.Settings()); got == before {
			t.Fatalf("key %q did not toggle (still %v)", tt.key, got)
		}
		m, _ = m.handleMsg(runeKey(tt.key))
		if got := tt.get(m.Settings()); got != before {
			t.Fatalf("key %q pressed twice = %v, want %v", tt.key, got, before)
		}
	}
}

func TestTimenessKeysStopAnimationAndClamp(t *testing.T) {
	m := newTestModel(t)
	if !m.settings.Animate {
		t.Fatal("default config should animate")
	}

	m, _ = m.handleMsg(tea.KeyMsg{Type: tea.KeyRight})
	if m.settings.Animate {
		t.Fatal("slider key did not stop the animation")
	}
	if m.target != 0.05 {
		t.Fatalf("target = %v, want 0.05", m.target)
	}

	for range 3 {
		m, _ = m.handleMsg(tea.KeyMsg{Type: tea.KeyLeft})
	}
	if m.target != 0 {
		t.Fatalf("target = %v, want 0 after clamping", m.target)
	}

	for range 30 {
		m, _ = m.handleMsg(runeKey('+'))
	}
	if m.target != 1 {
		t.Fatalf("target = %v, want 1 after clamping", m.target)
	}
}

func TestTickAdvancesEngine(t *testing.T) {
	m := newTestModel(t)
	t0 := time.Unix(1_700_000_000, 0)

	m, cmd := m.handleMsg(tickMsg(t0))
	if cmd == nil {
		t.Fatal("expected next tick command")
	}
	if !m.hasFrame {
		t.Fatal("expected a frame after the first tick")
	}
	first := 1.0 / float64(m.fps)
	if m.frame.Elapsed != first {
		t.Fatalf("Elapsed = %v, want %v", m.frame.Elapsed, first)
	}

	m, _ = m.handleMsg(tickMsg(t0.Add(100 * time.Millisecond)))
	if got, want := m.frame.Elapsed, first+0.1; math.Abs(got-want) > 1e-9 {
		t.Fatalf("Elapsed = %v, want %v", got, want)
	}
	if len(m.frame.Positions) != 4 {
		t.Fatalf("len(Positions) = %d, want 4", len(m.frame.Positions))
	}
}

func TestManualTimenessReachesEngine(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.handleMsg(runeKey('a'))
	for range 20 {
		m, _ = m.handleMsg(runeKey('+'))
	}

	t0 := time.Unix(1_700_000_000, 0)
	for i := range 120 {
		m, _ = m.handleMsg(tickMsg(t0.Add(time.Duration(i) * 33 * time.Millisecond)))
	}
	if math.Abs(m.frame.Timeness-1) > 0.01 {
		t.Fatalf("Timeness = %v, want the eased value to settle at 1", m.frame.Timeness)
	}
}

func TestMouseOutsideMapClearsPointer(t *testing.T) {
	m := newTestModel(t)

	m, _ = m.handleMsg(tea.MouseMsg{X: 10, Y: headerLines + 3, Action: tea.MouseActionMotion})
	if !m.hasPointer {
		t.Fatal("pointer over the map not recorded")
	}

	m, _ = m.handleMsg(tea.MouseMsg{X: 10, Y: 0, Action: tea.MouseActionMotion})
	if m.hasPointer {
		t.Fatal("pointer over the header should clear")
	}

	m, _ = m.handleMsg(tea.MouseMsg{X: 10, Y: headerLines + 3, Action: tea.MouseActionMotion})
	m, _ = m.handleMsg(tea.BlurMsg{})
	if m.hasPointer {
		t.Fatal("blur should clear the pointer")
	}
}

func TestPointerHoversNearestPoint(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.handleMsg(runeKey('a'))

	vp, ok := m.viewport()
	if !ok {
		t.Fatal("viewport() ok = false")
	}
	msh := m.engine.Mesh()
	target := msh.Point(2)
	col, row := vp.Cell(target.Geo)

	m, _ = m.handleMsg(tea.MouseMsg{X: col, Y: row + headerLines, Action: tea.MouseActionMotion})
	m, _ = m.handleMsg(tickMsg(time.Unix(1_700_000_000, 0)))
	if !m.frame.HasHover || m.frame.Hovered != target.ID {
		t.Fatalf("Hovered = %v (%v), want %v", m.frame.Hovered, m.frame.HasHover, target.ID)
	}
	if !strings.Contains(m.statusLine(), target.Name) {
		t.Fatalf("status line %q does not name %q", m.statusLine(), target.Name)
	}
}

func TestNextCityLoadsThroughCommand(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.handleMsg(tickMsg(time.Unix(1_700_000_000, 0)))

	m, cmd := m.handleMsg(tea.KeyMsg{Type: tea.KeyTab})
	if cmd == nil {
		t.Fatal("expected load command")
	}
	if !m.loading || m.catalog.CurrentIndex() != 1 {
		t.Fatalf("loading = %v, index = %d", m.loading, m.catalog.CurrentIndex())
	}

	msg := cmd()
	loaded, ok := msg.(cityLoadedMsg)
	if !ok {
		t.Fatalf("expected cityLoadedMsg, got %T", msg)
	}
	m, _ = m.handleMsg(loaded)
	if m.loading || m.hasFrame {
		t.Fatalf("loading = %v, hasFrame = %v after swap", m.loading, m.hasFrame)
	}
	if got := m.engine.City().Name; got != "two" {
		t.Fatalf("City() = %q, want two", got)
	}
	if m.catalog.Current().State != catalog.Ready {
		t.Fatalf("State = %v, want Ready", m.catalog.Current().State)
	}
}

func TestFailedCityKeepsPrevious(t *testing.T) {
	broken := &city.Descriptor{Name: "broken"}
	m := newTestModel(t, squareCity("one"), broken)

	m, cmd := m.handleMsg(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.handleMsg(cmd())

	if m.errMsg == "" {
		t.Fatal("expected an error message")
	}
	if got := m.engine.City().Name; got != "one" {
		t.Fatalf("City() = %q, want one", got)
	}
	if e := m.catalog.Entry(1); e.State != catalog.Failed || e.Err == nil {
		t.Fatalf("Entry(1) = %+v, want Failed", e)
	}
	if !strings.Contains(m.View(), m.errMsg) {
		t.Fatal("view does not show the load error")
	}
}

func TestStaleCityLoadIgnored(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.handleMsg(tea.KeyMsg{Type: tea.KeyTab})

	m, cmd := m.handleMsg(cityLoadedMsg{index: 0, desc: squareCity("late")})
	if cmd != nil {
		t.Fatal("expected no command for a superseded load")
	}
	if got := m.engine.City().Name; got != "one" {
		t.Fatalf("City() = %q, want one", got)
	}
}

func TestResetReturnsToGeography(t *testing.T) {
	m := newTestModel(t)
	t0 := time.Unix(1_700_000_000, 0)
	for i := range 10 {
		m, _ = m.handleMsg(tickMsg(t0.Add(time.Duration(i) * 100 * time.Millisecond)))
	}

	m, _ = m.handleMsg(runeKey('a'))
	m, _ = m.handleMsg(runeKey('r'))
	if m.hasFrame || m.target != 0 {
		t.Fatalf("hasFrame = %v, target = %v after reset", m.hasFrame, m.target)
	}

	geo := m.engine.Mesh().GeoPositions()
	m, _ = m.handleMsg(tickMsg(t0.Add(2 * time.Second)))
	if m.frame.Timeness != 0 {
		t.Fatalf("Timeness = %v, want 0", m.frame.Timeness)
	}
	for i, p := range m.frame.Positions {
		if p.Dist(geo[i]) > 1e-9 {
			t.Fatalf("Positions[%d] = %v, want %v", i, p, geo[i])
		}
	}
}

func TestViewShowsCityAndQuitClears(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.handleMsg(tickMsg(time.Unix(1_700_000_000, 0)))

	view := m.View()
	if !strings.Contains(view, "one (walking)") {
		t.Fatalf("view does not show the city title:\n%s", view)
	}
	if lines := strings.Count(view, "\n"); lines < m.height-2 {
		t.Fatalf("view has %d lines, want about %d", lines, m.height)
	}

	m, cmd := m.handleMsg(runeKey('q'))
	if cmd == nil || !m.quitting {
		t.Fatal("expected quit")
	}
	if m.View() != "" {
		t.Fatal("view should be empty after quitting")
	}
}
