package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/plan"
)

// 2025-01-15 is a Wednesday.
var testDate = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *SQLite {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}

func oneOff(t *testing.T, title, category, start, end string) *calendar.Entry {
	t.Helper()
	e, err := calendar.New(calendar.Draft{
		OwnerID:  "me",
		Title:    title,
		Category: category,
		Date:     "2025-01-15",
		Start:    start,
		End:      end,
	})
	if err != nil {
		t.Fatalf("calendar.New: %v", err)
	}
	return e
}

func TestCreateAndGetEntry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inflexible := false
	prio := 8
	e, err := calendar.New(calendar.Draft{
		OwnerID:   "me",
		Title:     "Gym",
		Category:  "workout",
		Weekdays:  []time.Weekday{time.Monday, time.Thursday},
		ValidFrom: "2025-01-01",
		Start:     "07:00",
		End:       "08:15",
		Flexible:  &inflexible,
		Priority:  &prio,
	})
	if err != nil {
		t.Fatalf("calendar.New: %v", err)
	}

	if err := repo.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	got, err := repo.GetEntry(ctx, "me", e.ID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}

	if got.Title != "Gym" || got.Category != calendar.CategoryWorkout || got.Kind != calendar.KindRecurring {
		t.Errorf("unexpected entry: %+v", got)
	}
	if len(got.Weekdays) != 2 || got.Weekdays[0] != time.Monday || got.Weekdays[1] != time.Thursday {
		t.Errorf("weekdays = %v", got.Weekdays)
	}
	if got.Start != 7*60 || got.End != 8*60+15 {
		t.Errorf("window = %v", got.Window())
	}
	if got.Flexible {
		t.Error("expected flexible=false to round-trip")
	}
	if got.Priority != 8 {
		t.Errorf("priority = %d, want 8", got.Priority)
	}
	if !got.ValidFrom.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("valid_from = %v", got.ValidFrom)
	}
	if !got.ValidTo.IsZero() {
		t.Errorf("expected unbounded valid_to, got %v", got.ValidTo)
	}
}

func TestGetEntry_NotFoundAndOtherOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetEntry(ctx, "me", "missing"); !errors.Is(err, calendar.ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}

	e := oneOff(t, "Dentist", "appointment", "10:00", "11:00")
	if err := repo.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if _, err := repo.GetEntry(ctx, "someone-else", e.ID); !errors.Is(err, calendar.ErrEntryNotFound) {
		t.Errorf("entries must be scoped by owner, got %v", err)
	}
}

func TestDeleteEntry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := oneOff(t, "Dentist", "appointment", "10:00", "11:00")
	if err := repo.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	if err := repo.DeleteEntry(ctx, "me", e.ID); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if err := repo.DeleteEntry(ctx, "me", e.ID); !errors.Is(err, calendar.ErrEntryNotFound) {
		t.Errorf("second delete: expected ErrEntryNotFound, got %v", err)
	}
}

func TestListEntries_ValidityIntersection(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mk := func(title, from, to string) *calendar.Entry {
		e, err := calendar.New(calendar.Draft{
			OwnerID:   "me",
			Title:     title,
			Category:  "reading",
			Weekdays:  []time.Weekday{time.Monday},
			ValidFrom: from,
			ValidTo:   to,
			Start:     "21:00",
			End:       "21:30",
		})
		if err != nil {
			t.Fatalf("calendar.New: %v", err)
		}
		if err := repo.CreateEntry(ctx, e); err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
		return e
	}

	mk("unbounded", "", "")
	mk("ended", "2024-01-01", "2024-12-31")
	mk("overlapping", "2025-01-10", "2025-01-20")
	mk("future", "2025-02-01", "")
	mk("starts-in-range", "2025-01-17", "")

	got, err := repo.ListEntries(ctx, "me", testDate, testDate.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}

	titles := make(map[string]bool)
	for _, e := range got {
		titles[e.Title] = true
	}
	for _, want := range []string{"unbounded", "overlapping", "starts-in-range"} {
		if !titles[want] {
			t.Errorf("expected %q in results", want)
		}
	}
	for _, notWant := range []string{"ended", "future"} {
		if titles[notWant] {
			t.Errorf("did not expect %q in results", notWant)
		}
	}
}

func TestPlanLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetPlan(ctx, "me", testDate); !errors.Is(err, plan.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}

	run, _ := plan.NewItem("me", testDate, plan.KindWorkout, "Run", "07:00", 45)
	if err := repo.AddItem(ctx, run); !errors.Is(err, plan.ErrPlanNotFound) {
		t.Errorf("adding to a missing plan: expected ErrPlanNotFound, got %v", err)
	}

	p := plan.NewDailyPlan("me", testDate)
	if err := repo.CreatePlan(ctx, p); err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if err := repo.CreatePlan(ctx, p); err != nil {
		t.Fatalf("CreatePlan should be idempotent: %v", err)
	}

	lunch, _ := plan.NewItem("me", testDate, plan.KindMeal, "Lunch", "12:30", 0)
	breakfast, _ := plan.NewItem("me", testDate, plan.KindMeal, "Breakfast", "08:00", 0)
	book, _ := plan.NewItem("me", testDate, plan.KindReading, "Novel", "21:00", 40)
	for _, it := range []*plan.Item{run, lunch, breakfast, book} {
		if err := repo.AddItem(ctx, it); err != nil {
			t.Fatalf("AddItem(%s) failed: %v", it.Title, err)
		}
	}

	swim, _ := plan.NewItem("me", testDate, plan.KindWorkout, "Swim", "18:00", 30)
	if err := repo.AddItem(ctx, swim); !errors.Is(err, plan.ErrDuplicateItem) {
		t.Errorf("second workout: expected ErrDuplicateItem, got %v", err)
	}

	if err := repo.MarkDone(ctx, "me", breakfast.ID); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if err := repo.MarkDone(ctx, "me", "missing"); !errors.Is(err, plan.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	got, err := repo.GetPlan(ctx, "me", testDate)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if got.Workout == nil || got.Workout.Title != "Run" || got.Workout.DurationMinutes != 45 {
		t.Errorf("workout = %+v", got.Workout)
	}
	if got.Reading == nil || got.Reading.ScheduledTime != 21*60 {
		t.Errorf("reading = %+v", got.Reading)
	}
	if len(got.Meals) != 2 || got.Meals[0].Title != "Breakfast" || !got.Meals[0].Done {
		t.Errorf("meals = %+v", got.Meals)
	}
}

func TestApply_CommitsEverything(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	meal := oneOff(t, "Lunch", "meal", "12:00", "12:30")
	if err := repo.CreateEntry(ctx, meal); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if err := repo.CreatePlan(ctx, plan.NewDailyPlan("me", testDate)); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	snack, _ := plan.NewItem("me", testDate, plan.KindMeal, "Snack", "12:15", 0)
	if err := repo.AddItem(ctx, snack); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	meeting := oneOff(t, "Sync", "meeting", "12:15", "12:45")
	moved := meal.Clone()
	moved.Start, moved.End = 12*60+45, 13*60+15

	cs := agenda.ChangeSet{
		Insert:     meeting,
		EntryMoves: []*calendar.Entry{moved},
		ItemMoves:  []plan.Move{{ItemID: snack.ID, OwnerID: "me", Kind: plan.KindMeal, From: 12*60 + 15, To: 13*60 + 15}},
	}
	if err := repo.Apply(ctx, cs); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	got, err := repo.GetEntry(ctx, "me", meal.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Start != 12*60+45 || got.End != 13*60+15 {
		t.Errorf("meal not relocated: %v", got.Window())
	}
	if _, err := repo.GetEntry(ctx, "me", meeting.ID); err != nil {
		t.Errorf("meeting not inserted: %v", err)
	}
	p, err := repo.GetPlan(ctx, "me", testDate)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if p.Meals[0].ScheduledTime != 13*60+15 {
		t.Errorf("snack not moved: %d", p.Meals[0].ScheduledTime)
	}
}

func TestApply_RollsBackOnMissingRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	meal := oneOff(t, "Lunch", "meal", "12:00", "12:30")
	if err := repo.CreateEntry(ctx, meal); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	moved := meal.Clone()
	moved.Start, moved.End = 14*60, 14*60+30
	ghost := oneOff(t, "Ghost", "free_time", "15:00", "16:00") // never stored
	meeting := oneOff(t, "Sync", "meeting", "12:00", "12:30")

	err := repo.Apply(ctx, agenda.ChangeSet{
		Insert:     meeting,
		EntryMoves: []*calendar.Entry{moved, ghost},
	})
	if !errors.Is(err, calendar.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	got, err := repo.GetEntry(ctx, "me", meal.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Start != 12*60 {
		t.Errorf("relocation was not rolled back: %v", got.Window())
	}
	if _, err := repo.GetEntry(ctx, "me", meeting.ID); !errors.Is(err, calendar.ErrEntryNotFound) {
		t.Errorf("insert was not rolled back: %v", err)
	}
}

func TestApply_ItemMoveScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreatePlan(ctx, plan.NewDailyPlan("me", testDate)); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	snack, _ := plan.NewItem("me", testDate, plan.KindMeal, "Snack", "12:15", 0)
	if err := repo.AddItem(ctx, snack); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	meeting := oneOff(t, "Sync", "meeting", "12:15", "12:45")

	err := repo.Apply(ctx, agenda.ChangeSet{
		Insert:    meeting,
		ItemMoves: []plan.Move{{ItemID: snack.ID, OwnerID: "someone-else", Kind: plan.KindMeal, From: 12*60 + 15, To: 13*60}},
	})
	if !errors.Is(err, plan.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	p, err := repo.GetPlan(ctx, "me", testDate)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if p.Meals[0].ScheduledTime != 12*60+15 {
		t.Errorf("another owner moved the snack to %d", p.Meals[0].ScheduledTime)
	}
	if _, err := repo.GetEntry(ctx, "me", meeting.ID); !errors.Is(err, calendar.ErrEntryNotFound) {
		t.Errorf("insert was not rolled back: %v", err)
	}
}

func TestApply_Replace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := oneOff(t, "Dentist", "appointment", "10:00", "11:00")
	if err := repo.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	updated := e.Clone()
	updated.Title = "Orthodontist"
	updated.ValidFrom = testDate.AddDate(0, 0, 1)
	updated.ValidTo = updated.ValidFrom
	updated.Flexible = false

	if err := repo.Apply(ctx, agenda.ChangeSet{Replace: updated}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	got, err := repo.GetEntry(ctx, "me", e.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Title != "Orthodontist" || got.Flexible || !got.ValidFrom.Equal(updated.ValidFrom) {
		t.Errorf("replace not applied: %+v", got)
	}

	if err := repo.Apply(ctx, agenda.ChangeSet{}); err != nil {
		t.Errorf("empty change set should be a no-op, got %v", err)
	}
}
