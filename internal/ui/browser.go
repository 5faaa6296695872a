package ui

import (
	"errors"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/catalog"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errNoCities = errors.New("no cities found")

// BrowserResult holds the outcome of the city browser.
type BrowserResult struct {
	Index     int
	Cancelled bool
}

// BrowserSelectedMsg is sent by an embedded browser when a city is chosen.
type BrowserSelectedMsg struct {
	Index int
}

// BrowserCancelledMsg is sent by an embedded browser on quit.
type BrowserCancelledMsg struct{}

type cityItem struct {
	index int
	title string
	desc  string
}

func (i cityItem) Title() string       { return i.title }
func (i cityItem) Description() string { return i.desc }
func (i cityItem) FilterValue() string { return i.title }

// BrowserModel lists the cities of a catalog.
type BrowserModel struct {
	list     list.Model
	embedded bool
	result   *BrowserResult
	err      error
}

// NewBrowser creates a standalone browser; read the choice with Result
// after the program exits.
func NewBrowser(cat *catalog.Catalog) BrowserModel {
	return newBrowser(cat, false)
}

// NewEmbeddedBrowser creates a browser that reports its choice as a
// message to the parent model instead of quitting.
func NewEmbeddedBrowser(cat *catalog.Catalog) BrowserModel {
	return newBrowser(cat, true)
}

func newBrowser(cat *catalog.Catalog, embedded bool) BrowserModel {
	if cat == nil || cat.Len() == 0 {
		return BrowserModel{err: errNoCities, embedded: embedded}
	}

	items := make([]list.Item, 0, cat.Len())
	for i := range cat.Len() {
		e := cat.Entry(i)
		items = append(items, cityItem{index: i, title: e.Title, desc: entryDescription(e)})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(items, delegate, 80, 20)
	l.Title = "spacetime"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle
	l.Select(cat.CurrentIndex())

	return BrowserModel{list: l, embedded: embedded}
}

func entryDescription(e *catalog.Entry) string {
	switch {
	case e.State == catalog.Failed && e.Err != nil:
		return "unreadable: " + e.Err.Error()
	case e.Descriptor != nil && e.Descriptor.Description != "":
		return e.Descriptor.Description
	case e.Path != "":
		return e.Path
	}
	return "built in"
}

// HasError returns true if the browser has nothing to show.
func (m BrowserModel) HasError() bool {
	return m.err != nil
}

// Error returns the initialization error, if any.
func (m BrowserModel) Error() error {
	return m.err
}

// Result returns the browser result after the program finishes.
func (m BrowserModel) Result() BrowserResult {
	if m.result != nil {
		return *m.result
	}
	return BrowserResult{Cancelled: true}
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.SetWindowTitle("spacetime")
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		if k, ok := msg.(tea.KeyMsg); ok && isQuit(k) {
			return m.cancel()
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// filter input owns the keyboard
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(cityItem); ok {
				return m.choose(item.index)
			}
		case "q", "esc", "ctrl+c":
			return m.cancel()
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) choose(index int) (tea.Model, tea.Cmd) {
	if m.embedded {
		return m, func() tea.Msg { return BrowserSelectedMsg{Index: index} }
	}
	m.result = &BrowserResult{Index: index}
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m BrowserModel) cancel() (tea.Model, tea.Cmd) {
	if m.embedded {
		return m, func() tea.Msg { return BrowserCancelledMsg{} }
	}
	m.result = &BrowserResult{Cancelled: true}
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m BrowserModel) View() string {
	if m.err != nil {
		return "\n  " + headerStyle.Render("spacetime") + "\n\n  " + errorStyle.Render(m.err.Error()) + "\n"
	}
	return m.list.View()
}
