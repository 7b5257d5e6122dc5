package calendar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// Validation errors.
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidCategory = errors.New("category must be one of: work, meeting, appointment, workout, meal, reading, sleep, free_time")
	ErrInvalidKind     = errors.New("kind must be 'recurring' or 'one_off'")
	ErrEndBeforeStart  = errors.New("end time must be after start time")
	ErrInvalidPriority = errors.New("priority must be between 1 and 10")
	ErrNoWeekdays      = errors.New("recurring entry needs at least one weekday")
	ErrOneOffBounds    = errors.New("one-off entry must be valid from and to its own date")
	ErrInvalidBounds   = errors.New("valid_to must be on or after valid_from")
	ErrNoFields        = errors.New("no fields to update")
)

// Domain errors.
var (
	ErrEntryNotFound = errors.New("calendar entry not found")
	ErrHardConflict  = errors.New("overlaps a fixed commitment")
	ErrUnplaceable   = errors.New("no free window fits")
)

// ValidationError reports a malformed field. It is never retried.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ConflictError is returned when a candidate overlaps non-negotiable commitments.
type ConflictError struct {
	Candidate timeofday.Window
	Blocking  []*Entry
}

func (e *ConflictError) Error() string {
	names := make([]string, 0, len(e.Blocking))
	for _, b := range e.Blocking {
		names = append(names, fmt.Sprintf("%q (%s, %s)", b.Title, b.Window(), b.Category))
	}
	return fmt.Sprintf("%v: %s conflicts with %s", ErrHardConflict, e.Candidate, strings.Join(names, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrHardConflict
}

// UnplaceableError is returned when an entry that must move has nowhere to go.
type UnplaceableError struct {
	Entry    *Entry
	Duration int
}

func (e *UnplaceableError) Error() string {
	return fmt.Sprintf("%v: cannot relocate %q (%d min)", ErrUnplaceable, e.Entry.Title, e.Duration)
}

func (e *UnplaceableError) Unwrap() error {
	return ErrUnplaceable
}
