package calendar

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/javiermolinar/lifecoach/internal/dateutil"
)

// Occurrence is one entry materialised on one date.
type Occurrence struct {
	Date  time.Time
	Entry *Entry
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// RecurrenceOption returns the weekly recurrence rule of a recurring entry,
// anchored at dtstart and bounded by the entry's ValidTo.
func (e *Entry) RecurrenceOption(dtstart time.Time) rrule.ROption {
	days := make([]rrule.Weekday, 0, len(e.Weekdays))
	for _, wd := range e.Weekdays {
		days = append(days, rruleWeekdays[wd])
	}
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dtstart,
		Byweekday: days,
	}
	if !e.ValidTo.IsZero() {
		opt.Until = dateutil.Today(e.ValidTo)
	}
	return opt
}

// Expand materialises entries over the inclusive date range [from, to].
// Occurrences are sorted by (date, start, id). Untimed entries are skipped.
func Expand(entries []*Entry, from, to time.Time) ([]Occurrence, error) {
	from, to = dateutil.Today(from), dateutil.Today(to)
	if to.Before(from) {
		return nil, dateutil.ErrEndDateBeforeStart
	}

	var out []Occurrence
	for _, e := range entries {
		if e == nil || !e.Timed() || !e.ValidIn(from, to) {
			continue
		}
		if e.IsOneOff() {
			out = append(out, Occurrence{Date: dateutil.Today(e.ValidFrom), Entry: e})
			continue
		}
		if len(e.Weekdays) == 0 {
			continue
		}

		start := from
		if !e.ValidFrom.IsZero() && dateutil.Today(e.ValidFrom).After(start) {
			start = dateutil.Today(e.ValidFrom)
		}
		r, err := rrule.NewRRule(e.RecurrenceOption(start))
		if err != nil {
			return nil, fmt.Errorf("building recurrence for %s: %w", e.ID, err)
		}
		for _, t := range r.Between(start, to, true) {
			out = append(out, Occurrence{Date: dateutil.Today(t), Entry: e})
		}
	}

	slices.SortFunc(out, func(a, b Occurrence) int {
		return cmp.Or(
			a.Date.Compare(b.Date),
			cmp.Compare(a.Entry.Start, b.Entry.Start),
			cmp.Compare(a.Entry.ID, b.Entry.ID),
		)
	})
	return out, nil
}
