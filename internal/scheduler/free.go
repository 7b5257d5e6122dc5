package scheduler

import (
	"cmp"
	"slices"

	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// FreeWindows returns the gaps of busy inside [rangeStart, rangeEnd), ascending.
// Busy windows may be unsorted, overlapping or partly outside the range.
// The result is disjoint, every window has positive length, and together
// with the merged busy set it covers the range exactly.
func FreeWindows(busy []timeofday.Window, rangeStart, rangeEnd int) []timeofday.Window {
	if rangeEnd <= rangeStart {
		return nil
	}

	merged := mergeWindows(busy, rangeStart, rangeEnd)

	var free []timeofday.Window
	cursor := rangeStart
	for _, b := range merged {
		if cursor < b.Start {
			free = append(free, timeofday.Window{Start: cursor, End: b.Start})
		}
		cursor = b.End
	}
	if cursor < rangeEnd {
		free = append(free, timeofday.Window{Start: cursor, End: rangeEnd})
	}
	return free
}

// mergeWindows clips busy to the range, drops empty windows, and merges
// overlapping or adjacent ones.
func mergeWindows(busy []timeofday.Window, rangeStart, rangeEnd int) []timeofday.Window {
	clipped := make([]timeofday.Window, 0, len(busy))
	for _, b := range busy {
		if c := b.Clip(rangeStart, rangeEnd); c.Valid() {
			clipped = append(clipped, c)
		}
	}
	slices.SortFunc(clipped, func(a, b timeofday.Window) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})

	var merged []timeofday.Window
	for _, c := range clipped {
		if n := len(merged); n > 0 && c.Start <= merged[n-1].End {
			merged[n-1].End = max(merged[n-1].End, c.End)
			continue
		}
		merged = append(merged, c)
	}
	return merged
}
