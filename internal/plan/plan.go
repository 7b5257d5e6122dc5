// Package plan defines the daily plan items that are scheduled around the calendar.
package plan

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// MealDuration is the fixed length of every meal item, in minutes.
const MealDuration = 30

// Kind is the type of a plan item.
type Kind string

const (
	KindWorkout Kind = "workout"
	KindMeal    Kind = "meal"
	KindReading Kind = "reading"
)

// Validation errors.
var (
	ErrInvalidKind     = errors.New("kind must be 'workout', 'meal' or 'reading'")
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidDuration = errors.New("duration must be positive and end before midnight")
	ErrDuplicateItem   = errors.New("the plan already has an item of this kind")
	ErrPlanNotFound    = errors.New("daily plan not found")
	ErrItemNotFound    = errors.New("plan item not found")
)

// ParseKind validates a plan item kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindWorkout, KindMeal, KindReading:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}

// Item is a derived, date-specific activity: a workout session, a meal or a reading session.
type Item struct {
	ID              string
	OwnerID         string
	Date            time.Time
	Kind            Kind
	Title           string
	ScheduledTime   int // minutes since midnight
	DurationMinutes int
	Done            bool // completed, eaten or ended
}

// NewItem validates and builds a plan item. Meals always last MealDuration minutes.
func NewItem(ownerID string, date time.Time, kind Kind, title, start string, duration int) (*Item, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	at, err := timeofday.Parse(start)
	if err != nil {
		return nil, err
	}
	if kind == KindMeal {
		duration = MealDuration
	}
	if duration <= 0 || at+duration > timeofday.MinutesPerDay {
		return nil, ErrInvalidDuration
	}
	return &Item{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Date:            dateutil.Today(date),
		Kind:            kind,
		Title:           title,
		ScheduledTime:   at,
		DurationMinutes: duration,
	}, nil
}

// Duration returns the item length in minutes.
func (i *Item) Duration() int {
	if i.Kind == KindMeal {
		return MealDuration
	}
	return i.DurationMinutes
}

// Window returns the item's current interval.
func (i *Item) Window() timeofday.Window {
	return timeofday.NewWindow(i.ScheduledTime, i.Duration())
}

// DailyPlan is the materialised plan of one owner for one date.
type DailyPlan struct {
	OwnerID string
	Date    time.Time
	Workout *Item
	Meals   []*Item
	Reading *Item
}

// NewDailyPlan creates an empty plan.
func NewDailyPlan(ownerID string, date time.Time) *DailyPlan {
	return &DailyPlan{OwnerID: ownerID, Date: dateutil.Today(date)}
}

// Add attaches an item to the plan. A plan holds at most one workout and one reading session.
func (p *DailyPlan) Add(item *Item) error {
	switch item.Kind {
	case KindWorkout:
		if p.Workout != nil {
			return ErrDuplicateItem
		}
		p.Workout = item
	case KindReading:
		if p.Reading != nil {
			return ErrDuplicateItem
		}
		p.Reading = item
	case KindMeal:
		p.Meals = append(p.Meals, item)
	default:
		return ErrInvalidKind
	}
	return nil
}

// Items returns every item of the plan: workout, meals, then reading.
func (p *DailyPlan) Items() []*Item {
	var out []*Item
	if p.Workout != nil {
		out = append(out, p.Workout)
	}
	out = append(out, p.Meals...)
	if p.Reading != nil {
		out = append(out, p.Reading)
	}
	return out
}

// Find returns the item with the given ID, or nil.
func (p *DailyPlan) Find(id string) *Item {
	for _, it := range p.Items() {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Move records a plan item relocated by reconciliation.
type Move struct {
	ItemID  string
	OwnerID string
	Kind    Kind
	Title   string
	From    int
	To      int
}

// Repository defines the storage interface for daily plans.
type Repository interface {
	// CreatePlan stores an empty daily plan. Creating an existing plan is a no-op.
	CreatePlan(ctx context.Context, p *DailyPlan) error

	// GetPlan returns the owner's plan for date, or ErrPlanNotFound.
	GetPlan(ctx context.Context, ownerID string, date time.Time) (*DailyPlan, error)

	// AddItem stores a new item on an existing plan.
	AddItem(ctx context.Context, item *Item) error

	// MarkDone flags an item as completed, eaten or ended.
	MarkDone(ctx context.Context, ownerID, itemID string) error
}
