package ui

import (
	"time"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/catalog"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg time.Time

// cityLoadedMsg carries a descriptor read off the Update goroutine. The
// engine swap happens when Update receives it.
type cityLoadedMsg struct {
	index int
	desc  *city.Descriptor
	err   error
}

func tickCmd(fps int) tea.Cmd {
	if fps < 1 {
		fps = 1
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadCityCmd reads the entry's descriptor. The entry is copied so the
// catalog itself is never touched from the command goroutine.
func loadCityCmd(index int, e catalog.Entry) tea.Cmd {
	return func() tea.Msg {
		if e.Descriptor != nil {
			return cityLoadedMsg{index: index, desc: e.Descriptor}
		}
		d, err := city.Load(e.Path)
		return cityLoadedMsg{index: index, desc: d, err: err}
	}
}
