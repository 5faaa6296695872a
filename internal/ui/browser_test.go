package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/catalog"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
	tea "github.com/charmbracelet/bubbletea"
)

func testCatalog() *catalog.Catalog {
	return catalog.FromDescriptors([]*city.Descriptor{
		{Name: "london", DisplayName: "London", Mode: "transit", Description: "Tube between landmarks"},
		{Name: "berlin", DisplayName: "Berlin", Mode: "cycling"},
	})
}

func TestEmbeddedBrowserSelectionReturnsMessage(t *testing.T) {
	m := NewEmbeddedBrowser(testCatalog())

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = model.(BrowserModel)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}

	msg := cmd()
	selected, ok := msg.(BrowserSelectedMsg)
	if !ok {
		t.Fatalf("expected BrowserSelectedMsg, got %T", msg)
	}
	if selected.Index != 1 {
		t.Fatalf("expected index 1, got %d", selected.Index)
	}
}

func TestEmbeddedBrowserCancelReturnsMessage(t *testing.T) {
	m := NewEmbeddedBrowser(testCatalog())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected cancel command")
	}

	if _, ok := cmd().(BrowserCancelledMsg); !ok {
		t.Fatalf("expected BrowserCancelledMsg, got %T", cmd())
	}
}

func TestStandaloneBrowserSelectionStoresResult(t *testing.T) {
	m := NewBrowser(testCatalog())

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(BrowserModel)

	result := m.Result()
	if result.Index != 0 || result.Cancelled {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestBrowserStartsAtCurrentEntry(t *testing.T) {
	cat := testCatalog()
	cat.SetCurrentIndex(1)
	m := NewBrowser(cat)

	item, ok := m.list.SelectedItem().(cityItem)
	if !ok || item.index != 1 {
		t.Fatalf("selected %+v, want index 1", m.list.SelectedItem())
	}
}

func TestBrowserListsTitlesAndFailures(t *testing.T) {
	cat := catalog.New([]catalog.Entry{
		{Name: "london", Title: "London (transit)", State: catalog.Ready,
			Descriptor: &city.Descriptor{Name: "london", Description: "Tube between landmarks"}},
		{Name: "bad", Title: "bad", Path: "cities/bad.json", State: catalog.Failed, Err: errors.New("malformed json")},
		{Name: "rome", Title: "rome", Path: "cities/rome.yaml"},
	})
	m := NewEmbeddedBrowser(cat)

	want := []struct{ title, desc string }{
		{"London (transit)", "Tube between landmarks"},
		{"bad", "unreadable: malformed json"},
		{"rome", "cities/rome.yaml"},
	}
	items := m.list.Items()
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		item := items[i].(cityItem)
		if item.Title() != w.title || item.Description() != w.desc {
			t.Fatalf("item %d = %q / %q, want %q / %q", i, item.Title(), item.Description(), w.title, w.desc)
		}
	}
}

func TestEmptyCatalogShowsError(t *testing.T) {
	m := NewBrowser(catalog.New(nil))
	if !m.HasError() {
		t.Fatal("expected an error for an empty catalog")
	}
	if !strings.Contains(m.View(), "no cities found") {
		t.Fatalf("view %q does not explain the error", m.View())
	}

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil || !model.(BrowserModel).Result().Cancelled {
		t.Fatal("expected esc to cancel")
	}
}
