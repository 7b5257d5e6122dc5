// Package agenda orchestrates calendar mutations: it resolves conflicts,
// reconciles the daily plan, and commits every resulting write at once.
// Both the CLI and the assistant go through this package.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/logger"
	"github.com/javiermolinar/lifecoach/internal/plan"
	"github.com/javiermolinar/lifecoach/internal/scheduler"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// List defaults.
const (
	DefaultListDays  = 7
	DefaultListLimit = 100
)

// Service runs calendar mutations for any number of owners.
type Service struct {
	store     Store
	scheduler *scheduler.Scheduler
	locks     *dayLocks
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to resolve "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service backed by store, placing things within sched's active hours.
func New(store Store, sched *scheduler.Scheduler, opts ...Option) *Service {
	s := &Service{
		store:     store,
		scheduler: sched,
		locks:     newDayLocks(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scheduler returns the scheduler used by the service.
func (s *Service) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

// Now returns the service's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Today returns the service's current date.
func (s *Service) Today() time.Time {
	return dateutil.Today(s.now())
}

// Result is the success payload of a mutation.
type Result struct {
	EntryID     string
	Date        time.Time // zero when nothing was resolved
	Relocations []scheduler.Relocation
	Moves       []plan.Move
	Unplaced    []*plan.Item
}

// snapshot is the state of one owner's day.
type snapshot struct {
	day  *calendar.Day
	plan *plan.DailyPlan // nil when no plan exists
}

func (s *Service) load(ctx context.Context, ownerID string, date time.Time) (*snapshot, error) {
	entries, err := s.store.EntriesOn(ctx, ownerID, date)
	if err != nil {
		return nil, storeErr("loading entries", err)
	}
	p, err := s.store.GetPlan(ctx, ownerID, date)
	if err != nil {
		if !errors.Is(err, plan.ErrPlanNotFound) {
			return nil, storeErr("loading plan", err)
		}
		p = nil
	}
	return &snapshot{day: calendar.NewDay(date, entries), plan: p}, nil
}

// Create adds a one-off entry, relocating shiftable entries and plan items out of its way.
// Nothing is written unless every relocation succeeds.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Result, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Date == "" {
		req.Date = dateutil.Format(s.Today())
	}

	entry, err := calendar.New(calendar.Draft{
		OwnerID:  ownerID,
		Title:    req.Title,
		Category: req.Category,
		Date:     req.Date,
		Start:    req.Start,
		End:      req.End,
		Flexible: req.Flexible,
		Priority: req.Priority,
	})
	if err != nil {
		return nil, err
	}
	date := entry.Date()

	unlock := s.locks.lock(dayKey(ownerID, date))
	defer unlock()

	snap, err := s.load(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}

	res, err := s.scheduler.Resolve(snap.day, entry.Window(), "")
	if err != nil {
		logger.Warn("calendar entry rejected", "owner", ownerID, "date", dateutil.Format(date),
			"window", entry.Window().String(), "err", err)
		return nil, err
	}

	after := snap.day.With(res.Replacements(), entry)
	rec := s.scheduler.Reconcile(after, snap.plan, entry.Window())

	cs := ChangeSet{
		Insert:     entry,
		EntryMoves: res.Replacements(),
		ItemMoves:  rec.Moves,
	}
	if err := s.store.Apply(ctx, cs); err != nil {
		return nil, storeErr("create", err)
	}

	result := &Result{
		EntryID:     entry.ID,
		Date:        date,
		Relocations: res.Relocations,
		Moves:       rec.Moves,
		Unplaced:    rec.Unplaced,
	}
	s.logResult("calendar entry created", ownerID, result)
	return result, nil
}

// CreateTemplate stores a recurring entry without conflict resolution,
// the way onboarding seeds a weekly routine.
func (s *Service) CreateTemplate(ctx context.Context, ownerID string, req TemplateRequest) (*calendar.Entry, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	days, err := dateutil.ParseWeekdays(req.Weekdays)
	if err != nil {
		return nil, &calendar.ValidationError{Field: "weekdays", Err: err}
	}
	if len(days) == 0 {
		return nil, &calendar.ValidationError{Field: "weekdays", Err: calendar.ErrNoWeekdays}
	}

	entry, err := calendar.New(calendar.Draft{
		OwnerID:   ownerID,
		Title:     req.Title,
		Category:  req.Category,
		Weekdays:  days,
		ValidFrom: req.ValidFrom,
		ValidTo:   req.ValidTo,
		Start:     req.Start,
		End:       req.End,
		Flexible:  req.Flexible,
		Priority:  req.Priority,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, storeErr("create template", err)
	}
	logger.Info("recurring entry stored", "owner", ownerID, "id", entry.ID,
		"weekdays", dateutil.FormatWeekdays(entry.Weekdays), "window", entry.Window().String())
	return entry, nil
}

// Update applies patch to an entry. When the updated entry lands on a
// resolvable date it goes through conflict resolution again, and the plan
// of that date is reconciled against its new window.
//
// One-off entries resolve on their (possibly new) date. Recurring entries
// resolve on every date from today on where they collide with another entry,
// and on today when they apply today. A hard conflict on any of those dates
// rejects the whole update.
func (s *Service) Update(ctx context.Context, ownerID, id string, patch Patch) (*Result, error) {
	if patch.Empty() {
		return nil, calendar.ErrNoFields
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	for {
		current, err := s.store.GetEntry(ctx, ownerID, id)
		if err != nil {
			return nil, storeErr("loading entry", err)
		}
		if !current.IsOneOff() {
			return s.updateRecurring(ctx, ownerID, id, patch)
		}
		updated, err := applyPatch(current, patch)
		if err != nil {
			return nil, err
		}

		keys := s.lockKeys(ownerID, current, updated)
		unlock := s.locks.lock(keys...)

		// Another mutation may have moved the entry before we got the lock.
		fresh, err := s.store.GetEntry(ctx, ownerID, id)
		if err != nil {
			unlock()
			return nil, storeErr("loading entry", err)
		}
		if !sameKeys(keys, s.lockKeys(ownerID, fresh, updated)) {
			unlock()
			continue
		}
		if updated, err = applyPatch(fresh, patch); err != nil {
			unlock()
			return nil, err
		}

		result, err := s.update(ctx, ownerID, updated)
		unlock()
		return result, err
	}
}

func (s *Service) update(ctx context.Context, ownerID string, updated *calendar.Entry) (*Result, error) {
	result := &Result{EntryID: updated.ID}
	cs := ChangeSet{Replace: updated}

	if date, ok := s.targetDate(updated); ok {
		snap, err := s.load(ctx, ownerID, date)
		if err != nil {
			return nil, err
		}
		base := snap.day.Without(updated.ID)

		res, err := s.scheduler.Resolve(base, updated.Window(), updated.ID)
		if err != nil {
			logger.Warn("calendar update rejected", "owner", ownerID, "id", updated.ID,
				"date", dateutil.Format(date), "window", updated.Window().String(), "err", err)
			return nil, err
		}

		after := base.With(res.Replacements(), updated)
		rec := s.scheduler.Reconcile(after, snap.plan, updated.Window())

		cs.EntryMoves = res.Replacements()
		cs.ItemMoves = rec.Moves
		result.Date = date
		result.Relocations = res.Relocations
		result.Moves = rec.Moves
		result.Unplaced = rec.Unplaced
	}

	if err := s.store.Apply(ctx, cs); err != nil {
		return nil, storeErr("update", err)
	}
	s.logResult("calendar entry updated", ownerID, result)
	return result, nil
}

// updateRecurring holds every date of the owner, since the dates a template
// collides on are only known after reading the store.
func (s *Service) updateRecurring(ctx context.Context, ownerID, id string, patch Patch) (*Result, error) {
	unlock := s.locks.lockOwner(ownerID)
	defer unlock()

	current, err := s.store.GetEntry(ctx, ownerID, id)
	if err != nil {
		return nil, storeErr("loading entry", err)
	}
	updated, err := applyPatch(current, patch)
	if err != nil {
		return nil, err
	}
	dates, err := s.recurringDates(ctx, ownerID, updated)
	if err != nil {
		return nil, err
	}

	result := &Result{EntryID: updated.ID}
	cs := ChangeSet{Replace: updated}
	moved := make(map[string]bool)
	for _, date := range dates {
		snap, err := s.load(ctx, ownerID, date)
		if err != nil {
			return nil, err
		}
		base := snap.day.Without(updated.ID)

		res, err := s.scheduler.Resolve(base, updated.Window(), updated.ID)
		if err != nil {
			logger.Warn("calendar update rejected", "owner", ownerID, "id", updated.ID,
				"date", dateutil.Format(date), "window", updated.Window().String(), "err", err)
			return nil, err
		}

		after := base.With(res.Replacements(), updated)
		rec := s.scheduler.Reconcile(after, snap.plan, updated.Window())

		// A recurring entry relocated on one date is already moved for the others.
		for _, e := range res.Replacements() {
			if !moved[e.ID] {
				moved[e.ID] = true
				cs.EntryMoves = append(cs.EntryMoves, e)
			}
		}
		cs.ItemMoves = append(cs.ItemMoves, rec.Moves...)
		if result.Date.IsZero() {
			result.Date = date
		}
		result.Relocations = append(result.Relocations, res.Relocations...)
		result.Moves = append(result.Moves, rec.Moves...)
		result.Unplaced = append(result.Unplaced, rec.Unplaced...)
	}

	if err := s.store.Apply(ctx, cs); err != nil {
		return nil, storeErr("update", err)
	}
	s.logResult("calendar entry updated", ownerID, result)
	return result, nil
}

// openEnd bounds the store query for templates without an end date.
var openEnd = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// recurringDates returns the dates from today on that a recurring entry must
// be resolved on: today when it applies, and each date where another entry's
// window overlaps it. Two templates that collide once collide every week, so
// their first shared date stands for the rest.
func (s *Service) recurringDates(ctx context.Context, ownerID string, e *calendar.Entry) ([]time.Time, error) {
	from := s.Today()
	if !e.ValidFrom.IsZero() && e.ValidFrom.After(from) {
		from = dateutil.Today(e.ValidFrom)
	}
	to := openEnd
	if !e.ValidTo.IsZero() {
		to = dateutil.Today(e.ValidTo)
	}
	if to.Before(from) {
		return nil, nil
	}

	others, err := s.store.ListEntries(ctx, ownerID, from, to)
	if err != nil {
		return nil, storeErr("listing entries", err)
	}

	seen := make(map[string]time.Time)
	add := func(d time.Time) {
		seen[dateutil.Format(d)] = d
	}
	if e.AppliesOn(s.Today()) {
		add(s.Today())
	}
	for _, o := range others {
		if o.ID == e.ID || !o.Timed() || !o.Window().Overlaps(e.Window()) {
			continue
		}
		if o.IsOneOff() {
			if d := o.Date(); !d.Before(from) && e.AppliesOn(d) {
				add(d)
			}
			continue
		}
		start := from
		if !o.ValidFrom.IsZero() && o.ValidFrom.After(start) {
			start = dateutil.Today(o.ValidFrom)
		}
		for i := range 7 {
			d := start.AddDate(0, 0, i)
			if e.AppliesOn(d) && o.AppliesOn(d) {
				add(d)
				break
			}
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates, nil
}

// targetDate returns the date an entry is resolved and reconciled on.
func (s *Service) targetDate(e *calendar.Entry) (time.Time, bool) {
	if e.IsOneOff() {
		return e.Date(), true
	}
	today := s.Today()
	if e.AppliesOn(today) {
		return today, true
	}
	return time.Time{}, false
}

func (s *Service) lockKeys(ownerID string, before, after *calendar.Entry) []string {
	var keys []string
	for _, e := range []*calendar.Entry{before, after} {
		if d, ok := s.targetDate(e); ok {
			keys = append(keys, dayKey(ownerID, d))
		}
	}
	return keys
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// applyPatch returns a validated copy of e with patch applied.
func applyPatch(e *calendar.Entry, patch Patch) (*calendar.Entry, error) {
	out := e.Clone()

	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Category != nil {
		c, err := calendar.ParseCategory(*patch.Category)
		if err != nil {
			return nil, &calendar.ValidationError{Field: "category", Err: err}
		}
		out.Category = c
	}
	if patch.Date != nil {
		if !out.IsOneOff() {
			return nil, &calendar.ValidationError{Field: "date", Err: errors.New("only one-off entries have a date")}
		}
		d, err := dateutil.ParseDate(*patch.Date)
		if err != nil {
			return nil, &calendar.ValidationError{Field: "date", Err: err}
		}
		out.ValidFrom, out.ValidTo = d, d
	}
	if patch.Start != nil {
		m, err := timeofday.Parse(*patch.Start)
		if err != nil {
			return nil, &calendar.ValidationError{Field: "start", Err: err}
		}
		out.Start = m
	}
	if patch.End != nil {
		m, err := timeofday.Parse(*patch.End)
		if err != nil {
			return nil, &calendar.ValidationError{Field: "end", Err: err}
		}
		out.End = m
	}
	if patch.Flexible != nil {
		out.Flexible = *patch.Flexible
	}
	if patch.Priority != nil {
		out.Priority = *patch.Priority
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an entry. Deleting never evicts anything, so nothing is reconciled.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	current, err := s.store.GetEntry(ctx, ownerID, id)
	if err != nil {
		return storeErr("loading entry", err)
	}

	var keys []string
	if d, ok := s.targetDate(current); ok {
		keys = append(keys, dayKey(ownerID, d))
	}
	unlock := s.locks.lock(keys...)
	defer unlock()

	if err := s.store.DeleteEntry(ctx, ownerID, id); err != nil {
		return storeErr("delete", err)
	}
	logger.Info("calendar entry deleted", "owner", ownerID, "id", id, "title", current.Title)
	return nil
}

// List returns the occurrences of the owner's entries in an inclusive date
// range, sorted by (date, start, id). From defaults to today, To to a week
// after From, and Limit to DefaultListLimit.
func (s *Service) List(ctx context.Context, ownerID string, req ListRequest) ([]calendar.Occurrence, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	from := s.Today()
	if req.From != "" {
		d, err := dateutil.ParseDate(req.From)
		if err != nil {
			return nil, &calendar.ValidationError{Field: "from", Err: err}
		}
		from = d
	}
	to := from.AddDate(0, 0, DefaultListDays-1)
	if req.To != "" {
		d, err := dateutil.ParseDate(req.To)
		if err != nil {
			return nil, &calendar.ValidationError{Field: "to", Err: err}
		}
		to = d
	}
	if to.Before(from) {
		return nil, &calendar.ValidationError{Field: "to", Err: dateutil.ErrEndDateBeforeStart}
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	entries, err := s.store.ListEntries(ctx, ownerID, from, to)
	if err != nil {
		return nil, storeErr("list", err)
	}
	occ, err := calendar.Expand(entries, from, to)
	if err != nil {
		return nil, fmt.Errorf("expanding entries: %w", err)
	}
	if len(occ) > limit {
		occ = occ[:limit]
	}
	return occ, nil
}

// Entries returns the owner's entries valid at some point in [from, to], unexpanded.
func (s *Service) Entries(ctx context.Context, ownerID string, from, to time.Time) ([]*calendar.Entry, error) {
	entries, err := s.store.ListEntries(ctx, ownerID, dateutil.Today(from), dateutil.Today(to))
	if err != nil {
		return nil, storeErr("list", err)
	}
	return entries, nil
}

// Reconcile re-places the plan items of date that overlap trigger.
func (s *Service) Reconcile(ctx context.Context, ownerID string, date time.Time, trigger timeofday.Window) (*Result, error) {
	if !trigger.Valid() {
		return nil, &calendar.ValidationError{Field: "end", Err: calendar.ErrEndBeforeStart}
	}
	date = dateutil.Today(date)

	unlock := s.locks.lock(dayKey(ownerID, date))
	defer unlock()

	snap, err := s.load(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}
	if snap.plan == nil {
		return nil, plan.ErrPlanNotFound
	}

	rec := s.scheduler.Reconcile(snap.day, snap.plan, trigger)
	if len(rec.Moves) > 0 {
		if err := s.store.Apply(ctx, ChangeSet{ItemMoves: rec.Moves}); err != nil {
			return nil, storeErr("reconcile", err)
		}
	}

	result := &Result{Date: date, Moves: rec.Moves, Unplaced: rec.Unplaced}
	s.logResult("plan reconciled", ownerID, result)
	return result, nil
}

// DayView is a read-only picture of one day.
type DayView struct {
	Date    time.Time
	Entries []*calendar.Entry
	Plan    *plan.DailyPlan // nil when no plan exists
	Free    []timeofday.Window
}

// Day returns the calendar, plan and free windows of date.
func (s *Service) Day(ctx context.Context, ownerID string, date time.Time) (*DayView, error) {
	date = dateutil.Today(date)
	snap, err := s.load(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}
	return &DayView{
		Date:    date,
		Entries: snap.day.Entries(),
		Plan:    snap.plan,
		Free:    s.scheduler.Free(snap.day.Windows()),
	}, nil
}

// FreeWindows returns the gaps between the calendar entries of date within active hours.
func (s *Service) FreeWindows(ctx context.Context, ownerID string, date time.Time) ([]timeofday.Window, error) {
	view, err := s.Day(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}
	return view.Free, nil
}

func (s *Service) logResult(msg, ownerID string, r *Result) {
	logger.Info(msg, "owner", ownerID, "id", r.EntryID,
		"relocated", len(r.Relocations), "moved", len(r.Moves))
	for _, rel := range r.Relocations {
		logger.Debug("entry relocated", "id", rel.Entry.ID, "title", rel.Entry.Title,
			"from", rel.From.String(), "to", rel.To.String())
	}
	for _, m := range r.Moves {
		logger.Debug("plan item moved", "id", m.ItemID, "kind", m.Kind,
			"from", timeofday.Format(m.From), "to", timeofday.Format(m.To))
	}
	for _, it := range r.Unplaced {
		logger.Warn("plan item left in place", "id", it.ID, "kind", it.Kind, "title", it.Title,
			"window", it.Window().String())
	}
}
