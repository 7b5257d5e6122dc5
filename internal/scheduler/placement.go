package scheduler

import "github.com/javiermolinar/lifecoach/internal/timeofday"

// PickStart returns the start of the first window that still has room for
// minDuration minutes once starts before notBefore are excluded.
func PickStart(windows []timeofday.Window, minDuration, notBefore int) (int, bool) {
	for _, w := range windows {
		start := max(w.Start, notBefore)
		if w.End-start >= minDuration {
			return start, true
		}
	}
	return 0, false
}

// Place picks a start after floor, then anywhere, for minDuration minutes.
func Place(windows []timeofday.Window, minDuration, floor int) (int, bool) {
	if start, ok := PickStart(windows, minDuration, floor); ok {
		return start, true
	}
	return PickStart(windows, minDuration, 0)
}
