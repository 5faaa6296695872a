package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/canvas"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/catalog"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/config"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/engine"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/geom"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/mesh"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	timenessStep = 0.05

	// Lines above and below the map.
	headerLines = 2
	footerLines = 3

	defaultWidth  = 80
	defaultHeight = 24
)

// Model is the Bubbletea model for the map viewer. The engine must already
// hold a city.
type Model struct {
	engine   *engine.Engine
	catalog  *catalog.Catalog
	log      *zap.Logger
	keys     keyMap
	help     help.Model
	bar      progress.Model
	settings Settings
	fps      int

	target    float64 // manual timeness
	timeness  easer
	threshold easer

	frame    engine.Frame
	hasFrame bool
	last     time.Time

	pointer    geom.Vec
	hasPointer bool

	width    int
	height   int
	loading  bool
	errMsg   string
	quitting bool
}

// New creates a viewer over eng. cat is the list the next/previous keys walk
// through and may hold a single entry.
func New(eng *engine.Engine, cat *catalog.Catalog, view config.View, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	fps := max(view.FPS, 1)
	return Model{
		engine:    eng,
		catalog:   cat,
		log:       logger,
		keys:      newKeyMap(),
		help:      help.New(),
		bar:       newTimenessBar(),
		settings:  SettingsFromConfig(view),
		fps:       fps,
		timeness:  newEaser(fps),
		threshold: newEaser(fps),
		width:     defaultWidth,
		height:    defaultHeight,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.fps), tea.SetWindowTitle(m.windowTitle()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m.advance(time.Time(msg)), tickCmd(m.fps)

	case cityLoadedMsg:
		return m.handleCityLoaded(msg)

	case tea.MouseMsg:
		m.setPointer(msg.X, msg.Y)
		return m, nil

	case tea.BlurMsg:
		m.hasPointer = false
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-24, 10), 60)
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch {
	case key.Matches(msg, m.keys.Animate):
		m.settings.Animate = !m.settings.Animate
		if !m.settings.Animate {
			m.holdTimeness(m.frame.Timeness)
		}
	case key.Matches(msg, m.keys.Focus):
		m.settings.FocusOnHover = !m.settings.FocusOnHover
	case key.Matches(msg, m.keys.SpringArrows):
		m.settings.SpringArrows = !m.settings.SpringArrows
	case key.Matches(msg, m.keys.GridPoints):
		m.settings.GridPoints = !m.settings.GridPoints
	case key.Matches(msg, m.keys.Grid):
		m.settings.Grid = !m.settings.Grid
	case key.Matches(msg, m.keys.GridNumbers):
		m.settings.GridNumbers = !m.settings.GridNumbers
	case key.Matches(msg, m.keys.SpringsByDistance):
		m.settings.SpringsByDistance = !m.settings.SpringsByDistance
	case key.Matches(msg, m.keys.Slower):
		m.nudgeTimeness(-timenessStep)
	case key.Matches(msg, m.keys.Faster):
		m.nudgeTimeness(timenessStep)
	case key.Matches(msg, m.keys.NextCity):
		if m.catalog != nil && m.catalog.Advance() {
			return m.openCurrent()
		}
	case key.Matches(msg, m.keys.PrevCity):
		if m.catalog != nil && m.catalog.Previous() {
			return m.openCurrent()
		}
	case key.Matches(msg, m.keys.Reset):
		if err := m.engine.Reset(); err != nil && !errors.Is(err, engine.ErrNoCity) {
			m.log.Warn("reset failed", zap.Error(err))
			m.errMsg = err.Error()
		}
		m.frame = engine.Frame{}
		m.hasFrame = false
		m.holdTimeness(0)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// nudgeTimeness moves the manual slider. While animating, the slider takes
// over from the current timeness.
func (m *Model) nudgeTimeness(delta float64) {
	if m.settings.Animate {
		m.settings.Animate = false
		m.holdTimeness(m.frame.Timeness)
	}
	m.target = geom.Clamp01(m.target + delta)
}

func (m *Model) holdTimeness(v float64) {
	m.target = geom.Clamp01(v)
	m.timeness.snap(m.target)
}

func (m Model) openCurrent() (Model, tea.Cmd) {
	e := m.catalog.Current()
	if e == nil {
		return m, nil
	}
	m.loading = true
	return m, loadCityCmd(m.catalog.CurrentIndex(), *e)
}

func (m Model) handleCityLoaded(msg cityLoadedMsg) (Model, tea.Cmd) {
	if m.catalog != nil && msg.index != m.catalog.CurrentIndex() {
		// Superseded by a later key press.
		return m, nil
	}
	m.loading = false

	err := msg.err
	if err == nil {
		err = m.engine.Load(msg.desc)
	}
	if err != nil {
		m.log.Warn("city failed to load", zap.Int("index", msg.index), zap.Error(err))
		if m.catalog != nil {
			m.catalog.SetState(msg.index, catalog.Failed, err)
		}
		m.errMsg = err.Error()
		return m, nil
	}

	if m.catalog != nil {
		m.catalog.SetState(msg.index, catalog.Ready, nil)
	}
	m.errMsg = ""
	m.frame = engine.Frame{}
	m.hasFrame = false
	m.hasPointer = false
	m.holdTimeness(0)
	return m, tea.SetWindowTitle(m.windowTitle())
}

// advance runs one engine tick for the wall clock time now.
func (m Model) advance(now time.Time) Model {
	dt := 1 / float64(m.fps)
	if !m.last.IsZero() {
		dt = max(now.Sub(m.last).Seconds(), 0)
	}
	m.last = now

	timeness := m.timeness.update(m.target)
	f, err := m.engine.Advance(dt, m.settings.inputs(timeness, m.pointer, m.hasPointer))
	switch {
	case errors.Is(err, engine.ErrNoCity):
		return m
	case err != nil:
		m.log.Error("advance failed", zap.Float64("dt", dt), zap.Error(err))
		m.errMsg = err.Error()
		return m
	}

	m.frame = f
	m.hasFrame = true
	m.threshold.update(f.Threshold)
	if m.settings.Animate {
		m.holdTimeness(f.Timeness)
	}
	return m
}

func (m Model) mapSize() (cols, rows int) {
	return max(m.width, 10), max(m.height-headerLines-footerLines, 4)
}

func (m Model) viewport() (canvas.Viewport, bool) {
	msh := m.engine.Mesh()
	if msh == nil {
		return canvas.Viewport{}, false
	}
	cols, rows := m.mapSize()
	return canvas.Fit(mapBound(msh), cols*2, rows*4, 2), true
}

// setPointer maps a terminal cell to layout coordinates. Cells outside the
// map clear the pointer.
func (m *Model) setPointer(x, y int) {
	cols, rows := m.mapSize()
	row := y - headerLines
	vp, ok := m.viewport()
	if !ok || x < 0 || x >= cols || row < 0 || row >= rows {
		m.hasPointer = false
		return
	}
	m.pointer = vp.CellCentre(x, row)
	m.hasPointer = true
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	d := m.engine.City()
	title := "no city"
	description := ""
	if d != nil {
		title = d.Title()
		description = d.Description
	}
	if m.loading {
		description = "loading..."
	}
	b.WriteString(headerStyle.Render("spacetime") + "  " + titleStyle.Render(title) + "\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	} else {
		b.WriteString(modeStyle.Render(description) + "\n")
	}

	cols, rows := m.mapSize()
	c := canvas.New(cols, rows)
	if vp, ok := m.viewport(); ok && m.hasFrame {
		drawScene(c, vp, scene{
			frame:    m.frame,
			mesh:     m.engine.Mesh(),
			settings: m.settings,
			strain: func(id mesh.SpringID) float64 {
				return m.engine.Strain(m.frame, id)
			},
		})
	}
	b.WriteString(c.String() + "\n")

	b.WriteString(m.statusLine() + "\n")
	b.WriteString(renderTimeness(m.bar, m.timeness.value()) + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) statusLine() string {
	status := "relaxing"
	if m.hasFrame {
		status = m.frame.Status.String()
	}
	parts := []string{
		statusStyle.Render(status),
		valueStyle.Render(renderThreshold(m.threshold.value())),
	}
	if m.hasFrame && m.frame.HasHover {
		if msh := m.engine.Mesh(); msh != nil && msh.Valid(m.frame.Hovered) {
			parts = append(parts, titleStyle.Render(msh.Point(m.frame.Hovered).Name))
		}
	}
	if m.catalog != nil && m.catalog.Len() > 1 {
		parts = append(parts, valueStyle.Render(fmt.Sprintf("%d/%d", m.catalog.CurrentIndex()+1, m.catalog.Len())))
	}
	parts = append(parts, renderToggles(m.settings))
	return strings.Join(parts, "  ")
}

func (m Model) windowTitle() string {
	if d := m.engine.City(); d != nil {
		return d.Title() + " · spacetime"
	}
	return "spacetime"
}

// Settings returns the current toggles.
func (m Model) Settings() Settings { return m.settings }
