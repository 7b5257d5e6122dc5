// Package ics exports calendar entries as an iCalendar feed.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
)

const (
	productID = "-//lifecoach//calendar//EN"

	// floating local time, the way entries are stored
	dateTimeLayout = "20060102T150405"

	propFlexible ical.ComponentProperty = "X-LIFECOACH-FLEXIBLE"
	propPriority ical.ComponentProperty = "X-LIFECOACH-PRIORITY"
)

// Export writes every entry valid in [from, to] as a VEVENT. One-off entries
// become single events; recurring entries become a weekly RRULE starting on
// their first occurrence in the range.
func Export(w io.Writer, entries []*calendar.Entry, from, to, now time.Time) (int, error) {
	from, to = dateutil.Today(from), dateutil.Today(to)
	if to.Before(from) {
		return 0, dateutil.ErrEndDateBeforeStart
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	span := dateutil.DateRange{Start: from, End: to}
	count := 0
	for _, e := range entries {
		if e == nil || !e.Timed() || !e.ValidIn(from, to) {
			continue
		}
		first, ok, err := firstOccurrence(e, span)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}

		ev := cal.AddEvent(e.ID + "@lifecoach")
		ev.SetDtStampTime(now.UTC())
		ev.SetSummary(e.Title)
		ev.SetProperty(ical.ComponentPropertyCategories, strings.ToUpper(string(e.Category)))
		ev.SetProperty(ical.ComponentPropertyDtStart, at(first, e.Start).Format(dateTimeLayout))
		ev.SetProperty(ical.ComponentPropertyDtEnd, at(first, e.End).Format(dateTimeLayout))
		ev.SetProperty(propFlexible, strings.ToUpper(fmt.Sprint(e.Flexible)))
		ev.SetProperty(propPriority, fmt.Sprint(e.Priority))
		if !e.IsOneOff() {
			ev.AddProperty(ical.ComponentPropertyRrule, recurrenceRule(e, first))
		}
		count++
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return 0, fmt.Errorf("writing calendar: %w", err)
	}
	return count, nil
}

func at(date time.Time, minutes int) time.Time {
	return dateutil.Today(date).Add(time.Duration(minutes) * time.Minute)
}

// firstOccurrence returns the first date in span the entry applies on.
func firstOccurrence(e *calendar.Entry, span dateutil.DateRange) (time.Time, bool, error) {
	if e.IsOneOff() {
		return e.Date(), span.Contains(e.Date()), nil
	}
	start := span.Start
	if !e.ValidFrom.IsZero() && dateutil.Today(e.ValidFrom).After(start) {
		start = dateutil.Today(e.ValidFrom)
	}
	r, err := rrule.NewRRule(e.RecurrenceOption(start))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("building recurrence for %s: %w", e.ID, err)
	}
	first := r.After(start, true)
	if first.IsZero() || !span.Contains(first) {
		return time.Time{}, false, nil
	}
	return dateutil.Today(first), true, nil
}

// recurrenceRule renders the RRULE value anchored at the first occurrence.
// UNTIL covers the whole last day and floats like DTSTART; rrule-go would
// render it in UTC.
func recurrenceRule(e *calendar.Entry, first time.Time) string {
	opt := e.RecurrenceOption(at(first, e.Start))
	opt.Until = time.Time{}
	rule := opt.RRuleString()
	if !e.ValidTo.IsZero() {
		rule += ";UNTIL=" + at(e.ValidTo, e.End).Format(dateTimeLayout)
	}
	return rule
}
