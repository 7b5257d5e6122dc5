package calendar

import (
	"context"
	"time"
)

// Repository defines the storage interface for calendar entries.
type Repository interface {
	// CreateEntry stores a new entry without any conflict resolution.
	// Used for recurring templates and onboarding imports.
	CreateEntry(ctx context.Context, e *Entry) error

	// GetEntry retrieves an owner's entry by ID.
	// Returns ErrEntryNotFound if it does not exist.
	GetEntry(ctx context.Context, ownerID, id string) (*Entry, error)

	// DeleteEntry removes an owner's entry.
	// Returns ErrEntryNotFound if it does not exist.
	DeleteEntry(ctx context.Context, ownerID, id string) error

	// ListEntries returns the owner's entries whose validity bounds intersect [from, to].
	ListEntries(ctx context.Context, ownerID string, from, to time.Time) ([]*Entry, error)

	// EntriesOn returns the owner's entries that may materialise on date.
	EntriesOn(ctx context.Context, ownerID string, date time.Time) ([]*Entry, error)
}
