package timeofday

import "fmt"

// Window is a half-open interval [Start, End) in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// NewWindow returns the window starting at start and lasting duration minutes.
func NewWindow(start, duration int) Window {
	return Window{Start: start, End: start + duration}
}

// Valid reports whether the window has a strictly positive length.
func (w Window) Valid() bool {
	return w.End > w.Start
}

// Duration returns the window length in minutes.
func (w Window) Duration() int {
	if w.End <= w.Start {
		return 0
	}
	return w.End - w.Start
}

// Overlaps reports whether two windows share any minute.
// Two windows overlap if: a.Start < b.End AND a.End > b.Start
func (w Window) Overlaps(other Window) bool {
	return w.Start < other.End && w.End > other.Start
}

// Clip returns the part of w inside [lo, hi). The result may be empty.
func (w Window) Clip(lo, hi int) Window {
	return Window{Start: max(w.Start, lo), End: min(w.End, hi)}
}

// String formats the window as "HH:MM-HH:MM". A window running to midnight ends at "24:00".
func (w Window) String() string {
	end := Format(w.End)
	if w.End >= MinutesPerDay {
		end = "24:00"
	}
	return fmt.Sprintf("%s-%s", Format(w.Start), end)
}
