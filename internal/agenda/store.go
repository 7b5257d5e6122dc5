package agenda

import (
	"context"

	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/plan"
)

// ChangeSet is every write produced by one mutation.
type ChangeSet struct {
	Insert     *calendar.Entry   // new entry
	Replace    *calendar.Entry   // updated entry, full row
	EntryMoves []*calendar.Entry // relocated entries, only Start and End change
	ItemMoves  []plan.Move       // plan items, only ScheduledTime changes
}

// Empty reports whether the change set has nothing to write.
func (c ChangeSet) Empty() bool {
	return c.Insert == nil && c.Replace == nil && len(c.EntryMoves) == 0 && len(c.ItemMoves) == 0
}

// Store is the persistence boundary of the service.
type Store interface {
	calendar.Repository
	plan.Repository

	// Apply writes a change set atomically: either every write lands or none does.
	// Returns calendar.ErrEntryNotFound if an entry to replace or move is gone.
	Apply(ctx context.Context, cs ChangeSet) error
}
