package calendar

import (
	"cmp"
	"slices"
	"time"

	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// Day holds the entries that materialise on one date for one owner.
type Day struct {
	Date    time.Time
	entries []*Entry // sorted by (Start, End, ID)
}

// NewDay materialises entries on date. Entries that do not apply on date,
// or that have no usable time, are dropped.
func NewDay(date time.Time, entries []*Entry) *Day {
	d := &Day{Date: dateutil.Today(date)}
	for _, e := range entries {
		if e == nil || !e.Timed() || !e.AppliesOn(d.Date) {
			continue
		}
		d.entries = append(d.entries, e)
	}
	slices.SortFunc(d.entries, compareEntries)
	return d
}

func compareEntries(a, b *Entry) int {
	return cmp.Or(
		cmp.Compare(a.Start, b.Start),
		cmp.Compare(a.End, b.End),
		cmp.Compare(a.ID, b.ID),
	)
}

// Entries returns a copy of the materialised entries.
func (d *Day) Entries() []*Entry {
	return slices.Clone(d.entries)
}

// Len returns the number of materialised entries.
func (d *Day) Len() int {
	return len(d.entries)
}

// Find returns the entry with the given ID, or nil.
func (d *Day) Find(id string) *Entry {
	for _, e := range d.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Overlapping returns the entries whose window overlaps w.
func (d *Day) Overlapping(w timeofday.Window) []*Entry {
	var out []*Entry
	for _, e := range d.entries {
		if e.Window().Overlaps(w) {
			out = append(out, e)
		}
	}
	return out
}

// Windows returns the window of every materialised entry.
func (d *Day) Windows() []timeofday.Window {
	out := make([]timeofday.Window, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Window()
	}
	return out
}

// With returns a new day where replacements take the place of entries with
// the same ID and additions are materialised alongside the rest.
func (d *Day) With(replacements []*Entry, additions ...*Entry) *Day {
	byID := make(map[string]*Entry, len(replacements))
	for _, r := range replacements {
		byID[r.ID] = r
	}
	next := make([]*Entry, 0, len(d.entries)+len(additions))
	for _, e := range d.entries {
		if r, ok := byID[e.ID]; ok {
			next = append(next, r)
			continue
		}
		next = append(next, e)
	}
	next = append(next, additions...)
	return NewDay(d.Date, next)
}

// Without returns a new day without the entry with the given ID.
func (d *Day) Without(id string) *Day {
	next := make([]*Entry, 0, len(d.entries))
	for _, e := range d.entries {
		if e.ID != id {
			next = append(next, e)
		}
	}
	return &Day{Date: d.Date, entries: next}
}
