// Package calendar defines calendar entries, the commitments a user's day is planned around.
package calendar

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// Category classifies what a calendar entry is for.
type Category string

const (
	CategoryWork        Category = "work"
	CategoryMeeting     Category = "meeting"
	CategoryAppointment Category = "appointment"
	CategoryWorkout     Category = "workout"
	CategoryMeal        Category = "meal"
	CategoryReading     Category = "reading"
	CategorySleep       Category = "sleep"
	CategoryFreeTime    Category = "free_time"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryWork, CategoryMeeting, CategoryAppointment, CategoryWorkout,
	CategoryMeal, CategoryReading, CategorySleep, CategoryFreeTime,
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Categories, c) {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Fixed reports whether entries of this category can never be moved or overridden.
func (c Category) Fixed() bool {
	switch c {
	case CategoryWork, CategoryMeeting, CategoryAppointment, CategorySleep:
		return true
	default:
		return false
	}
}

// Soft reports whether entries of this category are negotiable placeholders.
func (c Category) Soft() bool {
	switch c {
	case CategoryMeal, CategoryWorkout, CategoryReading, CategoryFreeTime:
		return true
	default:
		return false
	}
}

// Kind distinguishes weekly templates from single-date entries.
type Kind string

const (
	KindRecurring Kind = "recurring"
	KindOneOff    Kind = "one_off"
)

// DefaultPriority is assigned when the caller does not give one.
const DefaultPriority = 5

// NoTime marks a stored entry without a start or end time.
const NoTime = -1

// Entry is a calendar commitment template, either recurring on weekdays or pinned to one date.
type Entry struct {
	ID        string
	OwnerID   string
	Title     string
	Category  Category
	Kind      Kind
	Weekdays  []time.Weekday // recurring only
	ValidFrom time.Time      // zero means unbounded
	ValidTo   time.Time      // zero means unbounded
	Start     int            // minutes since midnight, NoTime if unset
	End       int            // minutes since midnight, NoTime if unset
	Flexible  bool
	Priority  int // stored, not consulted by scheduling
	CreatedAt time.Time
}

// Draft holds caller input for a new entry. Empty Weekdays means a one-off entry on Date.
type Draft struct {
	OwnerID   string
	Title     string
	Category  string
	Date      string // YYYY-MM-DD, one-off entries
	Weekdays  []time.Weekday
	ValidFrom string // YYYY-MM-DD, recurring entries, optional
	ValidTo   string // YYYY-MM-DD, recurring entries, optional
	Start     string // HH:MM
	End       string // HH:MM
	Flexible  *bool  // nil means flexible
	Priority  *int   // nil means DefaultPriority
}

// New validates a draft and builds an entry with a fresh ID.
func New(d Draft) (*Entry, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, invalid("title", ErrEmptyTitle)
	}

	cat, err := ParseCategory(d.Category)
	if err != nil {
		return nil, invalid("category", err)
	}

	start, end, err := parseRange(d.Start, d.End)
	if err != nil {
		return nil, err
	}

	e := &Entry{
		ID:        uuid.NewString(),
		OwnerID:   d.OwnerID,
		Title:     title,
		Category:  cat,
		Start:     start,
		End:       end,
		Flexible:  true,
		Priority:  DefaultPriority,
		CreatedAt: time.Now(),
	}
	if d.Flexible != nil {
		e.Flexible = *d.Flexible
	}
	if d.Priority != nil {
		e.Priority = *d.Priority
	}

	if len(d.Weekdays) == 0 {
		date, err := dateutil.ParseDate(d.Date)
		if err != nil {
			return nil, invalid("date", err)
		}
		e.Kind = KindOneOff
		e.ValidFrom = date
		e.ValidTo = date
	} else {
		e.Kind = KindRecurring
		e.Weekdays = slices.Clone(d.Weekdays)
		if d.ValidFrom != "" {
			if e.ValidFrom, err = dateutil.ParseDate(d.ValidFrom); err != nil {
				return nil, invalid("valid_from", err)
			}
		}
		if d.ValidTo != "" {
			if e.ValidTo, err = dateutil.ParseDate(d.ValidTo); err != nil {
				return nil, invalid("valid_to", err)
			}
		}
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func parseRange(startStr, endStr string) (int, int, error) {
	start, err := timeofday.Parse(startStr)
	if err != nil {
		return 0, 0, invalid("start", err)
	}
	end, err := timeofday.Parse(endStr)
	if err != nil {
		return 0, 0, invalid("end", err)
	}
	if end <= start {
		return 0, 0, invalid("end", ErrEndBeforeStart)
	}
	return start, end, nil
}

// Validate checks the entry invariants.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return invalid("title", ErrEmptyTitle)
	}
	if !slices.Contains(Categories, e.Category) {
		return invalid("category", ErrInvalidCategory)
	}
	if e.End <= e.Start {
		return invalid("end", ErrEndBeforeStart)
	}
	if e.Priority < 1 || e.Priority > 10 {
		return invalid("priority", ErrInvalidPriority)
	}
	switch e.Kind {
	case KindOneOff:
		if e.ValidFrom.IsZero() || !e.ValidFrom.Equal(e.ValidTo) {
			return invalid("date", ErrOneOffBounds)
		}
	case KindRecurring:
		if len(e.Weekdays) == 0 {
			return invalid("weekdays", ErrNoWeekdays)
		}
		if !e.ValidFrom.IsZero() && !e.ValidTo.IsZero() && e.ValidTo.Before(e.ValidFrom) {
			return invalid("valid_to", ErrInvalidBounds)
		}
	default:
		return invalid("kind", ErrInvalidKind)
	}
	return nil
}

// IsOneOff reports whether the entry is pinned to a single date.
func (e *Entry) IsOneOff() bool {
	return e.Kind == KindOneOff
}

// IsOneOffOn reports whether the entry is a one-off pinned to date.
func (e *Entry) IsOneOffOn(date time.Time) bool {
	return e.IsOneOff() && dateutil.SameDay(e.ValidFrom, date)
}

// Date returns the date of a one-off entry, or the zero time for recurring entries.
func (e *Entry) Date() time.Time {
	if e.IsOneOff() {
		return e.ValidFrom
	}
	return time.Time{}
}

// Timed reports whether the entry has a usable start and end time.
func (e *Entry) Timed() bool {
	return e.Start >= 0 && e.End > e.Start
}

// Window returns the entry's time-of-day interval.
func (e *Entry) Window() timeofday.Window {
	return timeofday.Window{Start: e.Start, End: e.End}
}

// Duration returns the entry length in minutes.
func (e *Entry) Duration() int {
	return e.Window().Duration()
}

// AppliesOn reports whether the entry materialises on date.
// Recurring entries apply on matching weekdays inside their valid bounds;
// one-off entries apply only on their own date.
func (e *Entry) AppliesOn(date time.Time) bool {
	if e.IsOneOff() {
		return e.IsOneOffOn(date)
	}
	if !slices.Contains(e.Weekdays, date.Weekday()) {
		return false
	}
	return e.withinBounds(date)
}

func (e *Entry) withinBounds(date time.Time) bool {
	d := dateutil.Today(date)
	if !e.ValidFrom.IsZero() && d.Before(dateutil.Today(e.ValidFrom)) {
		return false
	}
	if !e.ValidTo.IsZero() && d.After(dateutil.Today(e.ValidTo)) {
		return false
	}
	return true
}

// ValidIn reports whether the entry's validity bounds intersect [from, to].
func (e *Entry) ValidIn(from, to time.Time) bool {
	if !e.ValidFrom.IsZero() && dateutil.Today(e.ValidFrom).After(dateutil.Today(to)) {
		return false
	}
	if !e.ValidTo.IsZero() && dateutil.Today(e.ValidTo).Before(dateutil.Today(from)) {
		return false
	}
	return true
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Weekdays = slices.Clone(e.Weekdays)
	return &c
}
