// Package summary aggregates a week of calendar occurrences.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/scheduler"
)

// maxWeekOccurrences bounds the list request behind a summary.
const maxWeekOccurrences = 1000

// WeekStats holds booked and free minutes for a week.
type WeekStats struct {
	BookedMinutes   int
	FixedMinutes    int
	FlexibleMinutes int
	FreeMinutes     int // within active hours
	ByCategory      map[calendar.Category]int
	BusiestDay      time.Time // zero when nothing is booked
	BusiestMinutes  int
}

// WeekSummary holds aggregated week data.
type WeekSummary struct {
	Start       time.Time
	End         time.Time
	Occurrences []calendar.Occurrence
	Stats       WeekStats
}

// SummarizeWeek builds the summary of the ISO week containing weekStart.
// Occurrences outside the week are ignored.
func SummarizeWeek(weekStart time.Time, occurrences []calendar.Occurrence, sched *scheduler.Scheduler) *WeekSummary {
	start, end := dateutil.WeekRange(weekStart)
	s := &WeekSummary{
		Start: start,
		End:   end,
		Stats: WeekStats{ByCategory: make(map[calendar.Category]int)},
	}

	byDay := make(map[string][]*calendar.Entry, 7)
	for _, o := range occurrences {
		if o.Date.Before(start) || o.Date.After(end) || !o.Entry.Timed() {
			continue
		}
		s.Occurrences = append(s.Occurrences, o)
		key := dateutil.Format(o.Date)
		byDay[key] = append(byDay[key], o.Entry)

		minutes := o.Entry.Duration()
		s.Stats.BookedMinutes += minutes
		s.Stats.ByCategory[o.Entry.Category] += minutes
		if o.Entry.Category.Fixed() || !o.Entry.Flexible {
			s.Stats.FixedMinutes += minutes
		} else {
			s.Stats.FlexibleMinutes += minutes
		}
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := calendar.NewDay(d, byDay[dateutil.Format(d)])
		for _, w := range sched.Free(day.Windows()) {
			s.Stats.FreeMinutes += w.Duration()
		}

		booked := 0
		for _, e := range day.Entries() {
			booked += e.Duration()
		}
		if booked > s.Stats.BusiestMinutes {
			s.Stats.BusiestMinutes = booked
			s.Stats.BusiestDay = d
		}
	}

	return s
}

// BuildWeekSummary loads the owner's week through svc and summarizes it.
func BuildWeekSummary(ctx context.Context, svc *agenda.Service, ownerID string, weekStart time.Time) (*WeekSummary, error) {
	start, end := dateutil.WeekRange(weekStart)
	occ, err := svc.List(ctx, ownerID, agenda.ListRequest{
		From:  dateutil.Format(start),
		To:    dateutil.Format(end),
		Limit: maxWeekOccurrences,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching entries: %w", err)
	}
	return SummarizeWeek(start, occ, svc.Scheduler()), nil
}
