// Package timeofday converts between clock strings and minutes since midnight
// and models half-open time windows within a single day.
package timeofday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the exclusive upper bound of a minute-of-day value.
const MinutesPerDay = 24 * 60

// ErrInvalidTime is returned when a clock string is not H:MM, HH:MM or HH:MM:SS.
var ErrInvalidTime = errors.New("time must be in HH:MM format")

// Parse converts "H:MM", "HH:MM" or "HH:MM:SS" to minutes since midnight.
// Hours are clamped to [0,23] and minutes/seconds to [0,59]; seconds are dropped.
func Parse(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, ErrInvalidTime
	}

	if len(parts[0]) < 1 || len(parts[0]) > 2 {
		return 0, ErrInvalidTime
	}
	for _, p := range parts[1:] {
		if len(p) != 2 {
			return 0, ErrInvalidTime
		}
	}

	values := make([]int, len(parts))
	for i, p := range parts {
		n, err := atoiDigits(p)
		if err != nil {
			return 0, ErrInvalidTime
		}
		values[i] = n
	}

	hours := clamp(values[0], 0, 23)
	mins := clamp(values[1], 0, 59)
	return hours*60 + mins, nil
}

// MustParse is like Parse but panics on invalid input. Intended for tests and constants.
func MustParse(s string) int {
	m, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("timeofday: %q: %v", s, err))
	}
	return m
}

// Format converts minutes since midnight to "HH:MM".
// Values outside the day are clamped to 00:00 and 23:59.
func Format(m int) string {
	m = clamp(m, 0, MinutesPerDay-1)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatSeconds converts minutes since midnight to "HH:MM:SS", the storage form.
func FormatSeconds(m int) string {
	return Format(m) + ":00"
}

func atoiDigits(s string) (int, error) {
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, ErrInvalidTime
		}
	}
	return strconv.Atoi(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
