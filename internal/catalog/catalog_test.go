package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
)

func testCatalog() *Catalog {
	return FromDescriptors([]*city.Descriptor{
		{Name: "one", DisplayName: "One", Mode: "transit"},
		{Name: "two"},
		{Name: "three", Mode: "driving"},
	})
}

func TestAdvanceAndPreviousWrap(t *testing.T) {
	c := testCatalog()
	if c.Current().Name != "one" {
		t.Fatalf("Current() = %q, want one", c.Current().Name)
	}

	steps := []struct {
		forward bool
		want    string
	}{
		{true, "two"},
		{true, "three"},
		{true, "one"},
		{false, "three"},
		{false, "two"},
	}
	for _, s := range steps {
		moved := c.Previous
		if s.forward {
			moved = c.Advance
		}
		if !moved() {
			t.Fatal("move returned false")
		}
		if got := c.Current().Name; got != s.want {
			t.Fatalf("Current() = %q, want %q", got, s.want)
		}
	}
}

func TestSingleEntryDoesNotMove(t *testing.T) {
	c := FromDescriptors([]*city.Descriptor{{Name: "solo"}})
	if c.Advance() || c.Previous() {
		t.Fatal("single entry catalog moved")
	}
	empty := New(nil)
	if empty.Current() != nil || empty.Advance() {
		t.Fatal("empty catalog has a current entry")
	}
}

func TestTitlesAndFind(t *testing.T) {
	c := testCatalog()
	want := []string{"One (transit)", "two", "three (driving)"}
	got := c.Titles()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Titles() = %v, want %v", got, want)
		}
	}

	if i, ok := c.Find("three"); !ok || i != 2 {
		t.Fatalf("Find(three) = %d, %v, want 2, true", i, ok)
	}
	if _, ok := c.Find("four"); ok {
		t.Fatal("Find(four) ok = true")
	}

	c.SetCurrentIndex(1)
	c.SetCurrentIndex(7)
	if c.CurrentIndex() != 1 {
		t.Fatalf("CurrentIndex() = %d, want 1", c.CurrentIndex())
	}
}

func TestFromPathsKeepsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(good, []byte("name: good\ndisplay_name: Good Town\nmode: bus\n"), 0o644); err != nil {
		t.Fatalf("write good: %v", err)
	}
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatalf("write bad: %v", err)
	}

	c := FromPaths([]string{good, bad})
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if e := c.Entry(0); e.State != Ready || e.Title != "Good Town (bus)" {
		t.Fatalf("Entry(0) = %+v", e)
	}
	if e := c.Entry(1); e.State != Failed || e.Err == nil || e.Title != "bad" {
		t.Fatalf("Entry(1) = %+v", e)
	}
	if i, ok := c.Find(bad); !ok || i != 1 {
		t.Fatalf("Find(path) = %d, %v, want 1, true", i, ok)
	}

	d, err := c.Descriptor(0)
	if err != nil || d.Name != "good" {
		t.Fatalf("Descriptor(0) = %v, %v", d, err)
	}
	if _, err := c.Descriptor(1); err == nil {
		t.Fatal("Descriptor(1) error = nil, want parse error")
	}
	if _, err := c.Descriptor(5); err == nil {
		t.Fatal("Descriptor(5) error = nil")
	}

	c.SetState(1, Ready, nil)
	if c.Entry(1).State != Ready || c.Entry(1).Err != nil {
		t.Fatalf("SetState() not applied: %+v", c.Entry(1))
	}
}

func TestConcatKeepsOrder(t *testing.T) {
	a := FromDescriptors([]*city.Descriptor{{Name: "one"}})
	a.SetCurrentIndex(0)
	b := testCatalog()
	b.SetCurrentIndex(2)

	c := Concat(a, nil, b)
	if c.Len() != 4 || c.CurrentIndex() != 0 {
		t.Fatalf("Len() = %d, CurrentIndex() = %d, want 4, 0", c.Len(), c.CurrentIndex())
	}
	want := []string{"one", "one", "two", "three"}
	for i, e := range c.Entries() {
		if e.Name != want[i] {
			t.Fatalf("Entries()[%d] = %q, want %q", i, e.Name, want[i])
		}
	}

	entries := c.Entries()
	entries[0].Name = "changed"
	if c.Entry(0).Name != "one" {
		t.Fatal("Entries() shares storage with the catalog")
	}
}
