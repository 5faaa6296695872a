package main

import (
	"strings"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/catalog"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/config"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/engine"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/ui"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type startupPhase uint8

const (
	phaseBrowse startupPhase = iota
	phaseOpening
)

// startupResolvedMsg carries the descriptor read for the chosen entry. The
// engine load happens in Update.
type startupResolvedMsg struct {
	index int
	desc  *city.Descriptor
	err   error
}

// startupModel shows the city browser, then a spinner while the chosen
// city loads, and finally hands over to the viewer.
type startupModel struct {
	browser ui.BrowserModel
	catalog *catalog.Catalog
	engine  *engine.Engine
	view    config.View
	log     *zap.Logger

	phase   startupPhase
	opening string
	errMsg  string
	width   int
	height  int
	spinner spinner.Model
}

func newStartupModel(eng *engine.Engine, cat *catalog.Catalog, view config.View, logger *zap.Logger) startupModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	return startupModel{
		browser: ui.NewEmbeddedBrowser(cat),
		catalog: cat,
		engine:  eng,
		view:    view,
		log:     logger,
		phase:   phaseBrowse,
		spinner: s,
	}
}

func (m startupModel) Init() tea.Cmd {
	return tea.Batch(m.browser.Init(), m.spinner.Tick)
}

func (m startupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.phase == phaseBrowse {
			return m.updateBrowser(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.phase == phaseOpening {
			return m, cmd
		}
		return m, nil

	case ui.BrowserCancelledMsg:
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case ui.BrowserSelectedMsg:
		e := m.catalog.Entry(msg.Index)
		if e == nil {
			return m, nil
		}
		m.catalog.SetCurrentIndex(msg.Index)
		m.phase = phaseOpening
		m.opening = e.Title
		m.errMsg = ""
		return m, tea.Batch(m.spinner.Tick, openEntryCmd(msg.Index, *e))

	case startupResolvedMsg:
		return m.resolve(msg)

	case tea.KeyMsg:
		if m.phase == phaseOpening && startupIsQuit(msg) {
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
	}

	if m.phase == phaseBrowse {
		return m.updateBrowser(msg)
	}
	return m, nil
}

func (m startupModel) updateBrowser(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.browser.Update(msg)
	if browser, ok := model.(ui.BrowserModel); ok {
		m.browser = browser
	}
	return m, cmd
}

func (m startupModel) resolve(msg startupResolvedMsg) (tea.Model, tea.Cmd) {
	err := msg.err
	if err == nil {
		err = m.engine.Load(msg.desc)
	}
	if err != nil {
		m.log.Warn("city failed to open", zap.String("city", m.opening), zap.Error(err))
		m.catalog.SetState(msg.index, catalog.Failed, err)
		m.phase = phaseBrowse
		m.errMsg = err.Error()

		// Rebuild so the entry shows why it failed.
		m.browser = ui.NewEmbeddedBrowser(m.catalog)
		if m.width > 0 || m.height > 0 {
			return m.updateBrowser(tea.WindowSizeMsg{Width: m.width, Height: m.height - 3})
		}
		return m, nil
	}

	m.catalog.SetState(msg.index, catalog.Ready, nil)
	viewer := ui.New(m.engine, m.catalog, m.view, m.log)
	cmds := []tea.Cmd{viewer.Init()}
	if m.width > 0 || m.height > 0 {
		w, h := m.width, m.height
		cmds = append(cmds, func() tea.Msg {
			return tea.WindowSizeMsg{Width: w, Height: h}
		})
	}
	return viewer, tea.Batch(cmds...)
}

// openEntryCmd reads the descriptor off the Update goroutine. The entry is
// a copy.
func openEntryCmd(index int, e catalog.Entry) tea.Cmd {
	return func() tea.Msg {
		if e.Descriptor != nil {
			return startupResolvedMsg{index: index, desc: e.Descriptor}
		}
		d, err := city.Load(e.Path)
		return startupResolvedMsg{index: index, desc: d, err: err}
	}
}

func (m startupModel) View() string {
	if m.phase == phaseBrowse {
		if m.errMsg == "" {
			return m.browser.View()
		}
		return "\n  " + startupErrorStyle.Render(m.errMsg) + "\n\n" + indentBlock(m.browser.View(), "  ")
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(startupHeaderStyle.Render("spacetime"))
	b.WriteString("\n\n  ")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(startupStatusStyle.Render("Opening " + m.opening + "..."))
	b.WriteString("\n\n  ")
	b.WriteString(startupHelpStyle.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

func indentBlock(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func startupIsQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

var (
	startupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})
	startupStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})
	startupHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
	startupErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#A00000", Dark: "#FF8080"})
)
