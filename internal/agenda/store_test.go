package agenda

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/plan"
)

// memStore is an in-memory Store for tests. Apply is all-or-nothing like the real store.
type memStore struct {
	mu       sync.Mutex
	entries  map[string]*calendar.Entry
	plans    map[string]*plan.DailyPlan
	applyErr error
	applied  int
}

func newMemStore() *memStore {
	return &memStore{
		entries: make(map[string]*calendar.Entry),
		plans:   make(map[string]*plan.DailyPlan),
	}
}

func planKey(ownerID string, date time.Time) string {
	return ownerID + "|" + dateutil.Format(date)
}

func (m *memStore) CreateEntry(_ context.Context, e *calendar.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e.Clone()
	return nil
}

func (m *memStore) GetEntry(_ context.Context, ownerID, id string) (*calendar.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.OwnerID != ownerID {
		return nil, calendar.ErrEntryNotFound
	}
	return e.Clone(), nil
}

func (m *memStore) DeleteEntry(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.OwnerID != ownerID {
		return calendar.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memStore) ListEntries(_ context.Context, ownerID string, from, to time.Time) ([]*calendar.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*calendar.Entry
	for _, e := range m.entries {
		if e.OwnerID == ownerID && e.ValidIn(from, to) {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (m *memStore) EntriesOn(ctx context.Context, ownerID string, date time.Time) ([]*calendar.Entry, error) {
	return m.ListEntries(ctx, ownerID, date, date)
}

func (m *memStore) CreatePlan(_ context.Context, p *plan.DailyPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[planKey(p.OwnerID, p.Date)]; !ok {
		m.plans[planKey(p.OwnerID, p.Date)] = plan.NewDailyPlan(p.OwnerID, p.Date)
	}
	return nil
}

func (m *memStore) GetPlan(_ context.Context, ownerID string, date time.Time) (*plan.DailyPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[planKey(ownerID, date)]
	if !ok {
		return nil, plan.ErrPlanNotFound
	}
	out := plan.NewDailyPlan(ownerID, date)
	for _, it := range p.Items() {
		c := *it
		_ = out.Add(&c)
	}
	return out, nil
}

func (m *memStore) AddItem(_ context.Context, item *plan.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[planKey(item.OwnerID, item.Date)]
	if !ok {
		return plan.ErrPlanNotFound
	}
	c := *item
	return p.Add(&c)
}

func (m *memStore) MarkDone(_ context.Context, ownerID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it := m.findItem(itemID); it != nil && it.OwnerID == ownerID {
		it.Done = true
		return nil
	}
	return plan.ErrItemNotFound
}

func (m *memStore) findItem(id string) *plan.Item {
	for _, p := range m.plans {
		if it := p.Find(id); it != nil {
			return it
		}
	}
	return nil
}

func (m *memStore) Apply(_ context.Context, cs ChangeSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}

	// Check everything first so a failure writes nothing.
	for _, e := range cs.EntryMoves {
		if _, ok := m.entries[e.ID]; !ok {
			return calendar.ErrEntryNotFound
		}
	}
	if cs.Replace != nil {
		if _, ok := m.entries[cs.Replace.ID]; !ok {
			return calendar.ErrEntryNotFound
		}
	}
	for _, mv := range cs.ItemMoves {
		if it := m.findItem(mv.ItemID); it == nil || it.OwnerID != mv.OwnerID {
			return plan.ErrItemNotFound
		}
	}

	for _, e := range cs.EntryMoves {
		m.entries[e.ID].Start = e.Start
		m.entries[e.ID].End = e.End
	}
	if cs.Replace != nil {
		m.entries[cs.Replace.ID] = cs.Replace.Clone()
	}
	if cs.Insert != nil {
		m.entries[cs.Insert.ID] = cs.Insert.Clone()
	}
	for _, mv := range cs.ItemMoves {
		m.findItem(mv.ItemID).ScheduledTime = mv.To
	}
	m.applied++
	return nil
}

var errDiskFull = errors.New("disk full")
