package agenda

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/javiermolinar/lifecoach/internal/dateutil"
)

// dayLocks serializes mutations per (owner, date). Different keys never block each other,
// except that an owner-wide lock excludes every day lock of that owner.
type dayLocks struct {
	mu     sync.Mutex
	locks  map[string]*keyLock
	owners map[string]*ownerLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

type ownerLock struct {
	mu   sync.RWMutex
	refs int
}

func newDayLocks() *dayLocks {
	return &dayLocks{
		locks:  make(map[string]*keyLock),
		owners: make(map[string]*ownerLock),
	}
}

func dayKey(ownerID string, date time.Time) string {
	return ownerID + "|" + dateutil.Format(date)
}

func keyOwner(key string) string {
	owner, _, _ := strings.Cut(key, "|")
	return owner
}

// lock acquires every key in sorted order and returns the matching unlock.
// Each key's owner is held shared for as long as the key is held.
func (d *dayLocks) lock(keys ...string) (unlock func()) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	var owners []string
	for _, k := range keys {
		owners = append(owners, keyOwner(k))
	}
	slices.Sort(owners)
	owners = slices.Compact(owners)

	heldOwners := make([]*ownerLock, 0, len(owners))
	for _, o := range owners {
		l := d.acquireOwner(o)
		l.mu.RLock()
		heldOwners = append(heldOwners, l)
	}

	held := make([]*keyLock, 0, len(keys))
	for _, k := range keys {
		d.mu.Lock()
		l, ok := d.locks[k]
		if !ok {
			l = &keyLock{}
			d.locks[k] = l
		}
		l.refs++
		d.mu.Unlock()

		l.mu.Lock()
		held = append(held, l)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
		}
		d.mu.Lock()
		for i, k := range keys {
			held[i].refs--
			if held[i].refs == 0 {
				delete(d.locks, k)
			}
		}
		d.mu.Unlock()

		for i := len(heldOwners) - 1; i >= 0; i-- {
			heldOwners[i].mu.RUnlock()
			d.releaseOwner(owners[i], heldOwners[i])
		}
	}
}

// lockOwner takes every date of ownerID at once. Used by mutations whose dates
// are only known after reading the store.
func (d *dayLocks) lockOwner(ownerID string) (unlock func()) {
	l := d.acquireOwner(ownerID)
	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		d.releaseOwner(ownerID, l)
	}
}

func (d *dayLocks) acquireOwner(ownerID string) *ownerLock {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.owners[ownerID]
	if !ok {
		l = &ownerLock{}
		d.owners[ownerID] = l
	}
	l.refs++
	return l
}

func (d *dayLocks) releaseOwner(ownerID string, l *ownerLock) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(d.owners, ownerID)
	}
}
