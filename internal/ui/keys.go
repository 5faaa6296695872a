package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Animate           key.Binding
	Focus             key.Binding
	SpringArrows      key.Binding
	GridPoints        key.Binding
	Grid              key.Binding
	GridNumbers       key.Binding
	SpringsByDistance key.Binding

	Slower   key.Binding
	Faster   key.Binding
	NextCity key.Binding
	PrevCity key.Binding
	Reset    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Animate:           key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "animate")),
		Focus:             key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "focus on hover")),
		SpringArrows:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "spring strain")),
		GridPoints:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "grid points")),
		Grid:              key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grid")),
		GridNumbers:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "grid numbers")),
		SpringsByDistance: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "springs by distance")),

		Slower:   key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←/→", "timeness")),
		Faster:   key.NewBinding(key.WithKeys("right", "l", "+", "=")),
		NextCity: key.NewBinding(key.WithKeys("tab", "]"), key.WithHelp("tab", "next city")),
		PrevCity: key.NewBinding(key.WithKeys("shift+tab", "["), key.WithHelp("shift+tab", "prev city")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Animate, k.Slower, k.NextCity, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Animate, k.Slower, k.Focus, k.Reset},
		{k.Grid, k.GridPoints, k.GridNumbers},
		{k.SpringArrows, k.SpringsByDistance},
		{k.NextCity, k.PrevCity, k.Help, k.Quit},
	}
}

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}
