package scheduler

import (
	"time"

	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// Class describes how an existing entry relates to an overlapping candidate.
type Class string

const (
	// ClassHard entries block the candidate outright.
	ClassHard Class = "hard"
	// ClassShiftable entries are one-off placeholders for the date and get relocated.
	ClassShiftable Class = "shiftable"
	// ClassSoftRecurring entries are recurring templates; they neither block nor move.
	ClassSoftRecurring Class = "soft_recurring"
)

// Conflict is an existing entry overlapping a candidate window.
type Conflict struct {
	Entry *calendar.Entry
	Class Class
}

// Classify labels an entry that overlaps a candidate on date.
func Classify(e *calendar.Entry, date time.Time) Class {
	if !e.Flexible || e.Category.Fixed() {
		return ClassHard
	}
	if e.Category.Soft() {
		if e.IsOneOffOn(date) {
			return ClassShiftable
		}
		if e.Kind == calendar.KindRecurring {
			return ClassSoftRecurring
		}
	}
	// Anything unrecognised blocks.
	return ClassHard
}

// FindConflicts classifies every entry of day overlapping candidate,
// skipping the entry with excludeID. Order follows the day's (start, end, id) order.
func FindConflicts(day *calendar.Day, candidate timeofday.Window, excludeID string) []Conflict {
	var out []Conflict
	for _, e := range day.Overlapping(candidate) {
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		out = append(out, Conflict{Entry: e, Class: Classify(e, day.Date)})
	}
	return out
}
