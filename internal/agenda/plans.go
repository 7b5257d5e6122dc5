package agenda

import (
	"context"
	"errors"
	"time"

	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/logger"
	"github.com/javiermolinar/lifecoach/internal/plan"
)

// InitPlan creates an empty daily plan for date if none exists.
func (s *Service) InitPlan(ctx context.Context, ownerID string, date time.Time) (*plan.DailyPlan, error) {
	date = dateutil.Today(date)
	unlock := s.locks.lock(dayKey(ownerID, date))
	defer unlock()

	p := plan.NewDailyPlan(ownerID, date)
	if err := s.store.CreatePlan(ctx, p); err != nil {
		return nil, storeErr("init plan", err)
	}
	p, err := s.store.GetPlan(ctx, ownerID, date)
	if err != nil {
		return nil, storeErr("loading plan", err)
	}
	return p, nil
}

// AddPlanItem adds an item to the plan of date, creating the plan when needed.
// Items are placed where asked; only later calendar changes move them.
func (s *Service) AddPlanItem(ctx context.Context, ownerID string, date time.Time, kind plan.Kind, title, start string, duration int) (*plan.Item, error) {
	item, err := plan.NewItem(ownerID, date, kind, title, start, duration)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(dayKey(ownerID, item.Date))
	defer unlock()

	p, err := s.store.GetPlan(ctx, ownerID, item.Date)
	if err != nil {
		if !errors.Is(err, plan.ErrPlanNotFound) {
			return nil, storeErr("loading plan", err)
		}
		p = plan.NewDailyPlan(ownerID, item.Date)
		if err := s.store.CreatePlan(ctx, p); err != nil {
			return nil, storeErr("init plan", err)
		}
	}
	// Enforce one workout and one reading session per plan.
	if err := p.Add(item); err != nil {
		return nil, err
	}
	if err := s.store.AddItem(ctx, item); err != nil {
		return nil, storeErr("add plan item", err)
	}
	logger.Info("plan item added", "owner", ownerID, "date", dateutil.Format(item.Date),
		"kind", item.Kind, "window", item.Window().String())
	return item, nil
}

// Plan returns the owner's plan for date.
func (s *Service) Plan(ctx context.Context, ownerID string, date time.Time) (*plan.DailyPlan, error) {
	p, err := s.store.GetPlan(ctx, ownerID, dateutil.Today(date))
	if err != nil {
		return nil, storeErr("loading plan", err)
	}
	return p, nil
}

// MarkDone flags a plan item as completed, eaten or ended. Done items are never moved.
func (s *Service) MarkDone(ctx context.Context, ownerID, itemID string) error {
	if err := s.store.MarkDone(ctx, ownerID, itemID); err != nil {
		return storeErr("mark done", err)
	}
	logger.Info("plan item done", "owner", ownerID, "id", itemID)
	return nil
}
