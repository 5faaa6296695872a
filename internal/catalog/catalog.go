// Package catalog keeps the ordered list of cities the viewer can switch
// between.
package catalog

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
)

// State is the load state of an entry.
type State int

const (
	Pending State = iota
	Ready
	Failed
)

// Entry is one city: either a file on disk or a bundled descriptor.
type Entry struct {
	Name       string
	Title      string
	Path       string
	Descriptor *city.Descriptor
	State      State
	Err        error
}

// Catalog is only mutated from Bubbletea's single-threaded Update loop.
type Catalog struct {
	entries []Entry
	current int
}

// New creates a Catalog from the given entries.
func New(entries []Entry) *Catalog {
	return &Catalog{entries: entries}
}

// FromDescriptors wraps already parsed cities.
func FromDescriptors(ds []*city.Descriptor) *Catalog {
	entries := make([]Entry, len(ds))
	for i, d := range ds {
		entries[i] = Entry{Name: d.Name, Title: d.Title(), Descriptor: d, State: Ready}
	}
	return New(entries)
}

// FromPaths reads every descriptor for its title. Files that fail to parse
// stay in the list as Failed so the picker can show why.
func FromPaths(paths []string) *Catalog {
	entries := make([]Entry, len(paths))
	for i, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		entries[i] = Entry{Name: name, Title: name, Path: p}
		d, err := city.Load(p)
		if err != nil {
			entries[i].State = Failed
			entries[i].Err = err
			continue
		}
		entries[i].Name = d.Name
		entries[i].Title = d.Title()
		entries[i].Descriptor = d
		entries[i].State = Ready
	}
	return New(entries)
}

// Concat joins catalogs in order. The current entry is the first.
func Concat(cs ...*Catalog) *Catalog {
	var entries []Entry
	for _, c := range cs {
		if c != nil {
			entries = append(entries, c.entries...)
		}
	}
	return New(entries)
}

// Entries returns a copy of every entry.
func (c *Catalog) Entries() []Entry {
	return slices.Clone(c.entries)
}

// Current returns the current entry, or nil if empty.
func (c *Catalog) Current() *Entry {
	return c.Entry(c.current)
}

// Entry returns the entry at i, or nil if out of range.
func (c *Catalog) Entry(i int) *Entry {
	if i < 0 || i >= len(c.entries) {
		return nil
	}
	return &c.entries[i]
}

// Advance moves to the next entry, wrapping to the first. Returns false
// when there is nothing to move to.
func (c *Catalog) Advance() bool {
	if len(c.entries) < 2 {
		return false
	}
	c.current = (c.current + 1) % len(c.entries)
	return true
}

// Previous moves to the previous entry, wrapping to the last.
func (c *Catalog) Previous() bool {
	if len(c.entries) < 2 {
		return false
	}
	c.current = (c.current - 1 + len(c.entries)) % len(c.entries)
	return true
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// CurrentIndex returns the zero-based index of the current entry.
func (c *Catalog) CurrentIndex() int {
	return c.current
}

// SetCurrentIndex sets the current entry directly.
func (c *Catalog) SetCurrentIndex(i int) {
	if i >= 0 && i < len(c.entries) {
		c.current = i
	}
}

// Find returns the index of the entry with the given name or path.
func (c *Catalog) Find(name string) (int, bool) {
	for i, e := range c.entries {
		if e.Name == name || (e.Path != "" && e.Path == name) {
			return i, true
		}
	}
	return -1, false
}

// Titles returns the picker label of every entry.
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Title
	}
	return out
}

// SetState records a load outcome for the entry at i.
func (c *Catalog) SetState(i int, state State, err error) {
	if i >= 0 && i < len(c.entries) {
		c.entries[i].State = state
		c.entries[i].Err = err
	}
}

// Descriptor returns the parsed city of entry i, reading its file if it
// was not parsed yet.
func (c *Catalog) Descriptor(i int) (*city.Descriptor, error) {
	e := c.Entry(i)
	if e == nil {
		return nil, fmt.Errorf("no city at index %d", i)
	}
	if e.Descriptor != nil {
		return e.Descriptor, nil
	}
	d, err := city.Load(e.Path)
	if err != nil {
		return nil, err
	}
	e.Descriptor = d
	return d, nil
}
