package scheduler

import (
	"cmp"
	"slices"

	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/plan"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// Reconciliation is the outcome of re-placing a day's plan items.
type Reconciliation struct {
	Moves []plan.Move
	// Unplaced items still overlap the trigger; they keep their time.
	Unplaced []*plan.Item
}

// Reconcile re-places the plan items that overlap trigger on day, which must
// already reflect the calendar change. Items are processed workout first,
// then meals by scheduled time, then reading; done items are skipped.
// Items that do not overlap trigger stay put and count as busy for the rest.
// The plan itself is not modified.
func (s *Scheduler) Reconcile(day *calendar.Day, p *plan.DailyPlan, trigger timeofday.Window) Reconciliation {
	var out Reconciliation
	if p == nil {
		return out
	}

	busy := day.Windows()
	for _, item := range reconcileOrder(p) {
		if item.Done {
			continue
		}
		current := item.Window()
		if !current.Overlaps(trigger) {
			busy = append(busy, current)
			continue
		}

		start, ok := s.place(busy, item.Duration(), trigger)
		if !ok {
			out.Unplaced = append(out.Unplaced, item)
			continue
		}
		out.Moves = append(out.Moves, plan.Move{
			ItemID:  item.ID,
			OwnerID: item.OwnerID,
			Kind:    item.Kind,
			Title:   item.Title,
			From:    item.ScheduledTime,
			To:      start,
		})
		busy = append(busy, timeofday.NewWindow(start, item.Duration()))
	}
	return out
}

// reconcileOrder returns workout, meals sorted by (scheduled time, id), reading.
func reconcileOrder(p *plan.DailyPlan) []*plan.Item {
	meals := slices.Clone(p.Meals)
	slices.SortStableFunc(meals, func(a, b *plan.Item) int {
		return cmp.Or(cmp.Compare(a.ScheduledTime, b.ScheduledTime), cmp.Compare(a.ID, b.ID))
	})

	var items []*plan.Item
	if p.Workout != nil {
		items = append(items, p.Workout)
	}
	items = append(items, meals...)
	if p.Reading != nil {
		items = append(items, p.Reading)
	}
	return items
}
