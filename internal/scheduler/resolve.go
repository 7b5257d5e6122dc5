package scheduler

import (
	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// Relocation is a shiftable entry moved out of the candidate's way.
// Entry is a relocated copy; the day snapshot is left untouched.
type Relocation struct {
	Entry *calendar.Entry
	From  timeofday.Window
	To    timeofday.Window
}

// Resolution is the outcome of accepting a candidate on a day.
type Resolution struct {
	Relocations []Relocation
	// SoftRecurring lists overlapping recurring templates that were left alone.
	SoftRecurring []*calendar.Entry
}

// Replacements returns the relocated entries.
func (r *Resolution) Replacements() []*calendar.Entry {
	out := make([]*calendar.Entry, len(r.Relocations))
	for i, rel := range r.Relocations {
		out[i] = rel.Entry
	}
	return out
}

// Resolve decides whether candidate can be added to day.
//
// Any hard overlap rejects the candidate with a *calendar.ConflictError.
// Shiftable overlaps are relocated one at a time in (start, end, id) order;
// if any of them has nowhere to go the candidate is rejected with a
// *calendar.UnplaceableError. On error nothing is returned to apply.
// The entry with excludeID, typically the one being updated, is ignored.
func (s *Scheduler) Resolve(day *calendar.Day, candidate timeofday.Window, excludeID string) (*Resolution, error) {
	conflicts := FindConflicts(day, candidate, excludeID)

	var (
		blocking  []*calendar.Entry
		shiftable []*calendar.Entry
		res       = &Resolution{}
	)
	for _, c := range conflicts {
		switch c.Class {
		case ClassHard:
			blocking = append(blocking, c.Entry)
		case ClassShiftable:
			shiftable = append(shiftable, c.Entry)
		case ClassSoftRecurring:
			res.SoftRecurring = append(res.SoftRecurring, c.Entry)
		}
	}
	if len(blocking) > 0 {
		return nil, &calendar.ConflictError{Candidate: candidate, Blocking: blocking}
	}
	if len(shiftable) == 0 {
		return res, nil
	}

	pending := make(map[string]bool, len(shiftable))
	for _, e := range shiftable {
		pending[e.ID] = true
	}

	// Entries that stay where they are, plus the candidate.
	var settled []timeofday.Window
	for _, e := range day.Entries() {
		if e.ID == excludeID || pending[e.ID] {
			continue
		}
		settled = append(settled, e.Window())
	}
	settled = append(settled, candidate)

	for _, e := range shiftable {
		duration := e.Duration()
		start, ok := s.place(settled, duration, candidate)
		if !ok {
			return nil, &calendar.UnplaceableError{Entry: e, Duration: duration}
		}

		moved := e.Clone()
		moved.Start = start
		moved.End = start + duration

		res.Relocations = append(res.Relocations, Relocation{
			Entry: moved,
			From:  e.Window(),
			To:    moved.Window(),
		})
		settled = append(settled, moved.Window())
	}
	return res, nil
}
