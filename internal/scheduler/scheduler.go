// Package scheduler provides same-day scheduling logic for calendar entries and plan items.
//
// Everything in this package is pure: it computes relocations and moves
// from a snapshot of the day and never writes to storage.
package scheduler

import (
	"errors"
	"fmt"

	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// ErrInvalidHours is returned when the active hours are empty or inverted.
var ErrInvalidHours = errors.New("day end must be after day start")

// Scheduler places entries and plan items within the user's active hours.
type Scheduler struct {
	dayStart int // minutes since midnight
	dayEnd   int // minutes since midnight
}

// New creates a Scheduler for the active hours [dayStart, dayEnd) given as "HH:MM".
func New(dayStart, dayEnd string) (*Scheduler, error) {
	start, err := timeofday.Parse(dayStart)
	if err != nil {
		return nil, fmt.Errorf("day start: %w", err)
	}
	end, err := timeofday.Parse(dayEnd)
	if err != nil {
		return nil, fmt.Errorf("day end: %w", err)
	}
	if end <= start {
		return nil, ErrInvalidHours
	}
	return &Scheduler{dayStart: start, dayEnd: end}, nil
}

// DayStart returns the start of the active hours in minutes.
func (s *Scheduler) DayStart() int {
	return s.dayStart
}

// DayEnd returns the end of the active hours in minutes.
func (s *Scheduler) DayEnd() int {
	return s.dayEnd
}

// ActiveHours returns the active hours as a window.
func (s *Scheduler) ActiveHours() timeofday.Window {
	return timeofday.Window{Start: s.dayStart, End: s.dayEnd}
}

// Free returns the gaps in busy within the active hours.
func (s *Scheduler) Free(busy []timeofday.Window) []timeofday.Window {
	return FreeWindows(busy, s.dayStart, s.dayEnd)
}

// place finds a start for duration minutes in the gaps of busy, preferring
// the time after trigger and falling back to anywhere in the active hours.
func (s *Scheduler) place(busy []timeofday.Window, duration int, trigger timeofday.Window) (int, bool) {
	return Place(s.Free(busy), duration, trigger.End)
}
