package inventory

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"campbook/internal/domain/stay"

	"github.com/google/uuid"
)

var (
	ErrConflict     = errors.New("site is already allocated for overlapping nights")
	ErrUnknownEntry = errors.New("unknown calendar entry")
	ErrInvalidEntry = errors.New("invalid calendar entry")
)

// ConflictError is returned when a requested range overlaps a live entry.
// Existing is zero when the overlap was found before the write.
type ConflictError struct {
	SiteID    uuid.UUID
	Requested stay.Stay
	Existing  uuid.UUID
	Nights    []time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("site %s is taken for %s by %s", e.SiteID, e.Requested, e.Existing)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

type Kind string

const (
	KindHold        Kind = "hold"
	KindReservation Kind = "reservation"
	KindBlock       Kind = "block"
)

// Entry occupies a site for a stay. Holds stop blocking once ExpiresAt passes.
type Entry struct {
	Ref       uuid.UUID
	SiteID    uuid.UUID
	Stay      stay.Stay
	Kind      Kind
	ExpiresAt time.Time
}

func (e Entry) Live(now time.Time) bool {
	return e.Kind != KindHold || now.Before(e.ExpiresAt)
}

// Index keeps, per site, a list of non-overlapping entries sorted by
// arrival. Each site has its own lock so check-and-insert is atomic per
// site while different sites proceed in parallel.
type Index struct {
	mu    sync.RWMutex
	sites map[uuid.UUID]*calendar
	refs  map[uuid.UUID]uuid.UUID
}

type calendar struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewIndex() *Index {
	return &Index{
		sites: make(map[uuid.UUID]*calendar),
		refs:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (x *Index) calendar(siteID uuid.UUID, create bool) *calendar {
	x.mu.RLock()
	c, ok := x.sites[siteID]
	x.mu.RUnlock()
	if ok || !create {
		return c
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if c, ok = x.sites[siteID]; !ok {
		c = &calendar{}
		x.sites[siteID] = c
	}
	return c
}

// IsAvailable is an advisory check; only Reserve is authoritative.
func (x *Index) IsAvailable(siteID uuid.UUID, s stay.Stay, now time.Time) bool {
	return len(x.Overlapping(siteID, s, now)) == 0
}

// Overlapping returns the live entries of siteID that overlap s.
func (x *Index) Overlapping(siteID uuid.UUID, s stay.Stay, now time.Time) []Entry {
	c := x.calendar(siteID, false)
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overlapping(s, now)
}

// BlockedNights lists the nights of s already taken on siteID.
func (x *Index) BlockedNights(siteID uuid.UUID, s stay.Stay, now time.Time) []time.Time {
	var nights []time.Time
	for _, e := range x.Overlapping(siteID, s, now) {
		for _, n := range s.Dates() {
			if e.Stay.Contains(n) {
				nights = append(nights, n)
			}
		}
	}
	slices.SortFunc(nights, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(nights, func(a, b time.Time) bool { return a.Equal(b) })
}

// Reserve inserts e unless a live entry overlaps it, evicting expired holds
// of the site first. The evicted holds are returned.
func (x *Index) Reserve(e Entry, now time.Time) ([]Entry, error) {
	if e.Ref == uuid.Nil || e.SiteID == uuid.Nil || e.Stay.IsZero() {
		return nil, ErrInvalidEntry
	}
	if e.Kind == KindHold && !now.Before(e.ExpiresAt) {
		return nil, ErrInvalidEntry
	}

	x.mu.RLock()
	_, exists := x.refs[e.Ref]
	x.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("%w: duplicate ref %s", ErrInvalidEntry, e.Ref)
	}

	c := x.calendar(e.SiteID, true)
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := c.evict(now)
	for _, gone := range evicted {
		x.forget(gone.Ref)
	}
	if hits := c.overlapping(e.Stay, now); len(hits) > 0 {
		return evicted, &ConflictError{SiteID: e.SiteID, Requested: e.Stay, Existing: hits[0].Ref}
	}

	i := c.search(e.Stay.Arrival())
	c.entries = slices.Insert(c.entries, i, e)

	x.mu.Lock()
	x.refs[e.Ref] = e.SiteID
	x.mu.Unlock()
	return evicted, nil
}

// Release removes the entry for ref and returns it.
func (x *Index) Release(ref uuid.UUID) (Entry, error) {
	c, err := x.owner(ref)
	if err != nil {
		return Entry{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.entries, func(e Entry) bool { return e.Ref == ref })
	if i < 0 {
		return Entry{}, ErrUnknownEntry
	}
	e := c.entries[i]
	c.entries = slices.Delete(c.entries, i, i+1)
	x.forget(ref)
	return e, nil
}

// Convert turns a live hold into a permanent reservation.
func (x *Index) Convert(ref uuid.UUID, now time.Time) error {
	c, err := x.owner(ref)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.entries, func(e Entry) bool { return e.Ref == ref })
	if i < 0 || !c.entries[i].Live(now) {
		return ErrUnknownEntry
	}
	c.entries[i].Kind = KindReservation
	c.entries[i].ExpiresAt = time.Time{}
	return nil
}

func (x *Index) Get(ref uuid.UUID) (Entry, bool) {
	c, err := x.owner(ref)
	if err != nil {
		return Entry{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.entries, func(e Entry) bool { return e.Ref == ref })
	if i < 0 {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Occupied counts how many of siteIDs have a live entry covering night.
func (x *Index) Occupied(siteIDs []uuid.UUID, night time.Time, now time.Time) int {
	one := stay.MustNew(night, stay.Day(night).AddDate(0, 0, 1))
	n := 0
	for _, id := range siteIDs {
		if !x.IsAvailable(id, one, now) {
			n++
		}
	}
	return n
}

// Expired returns holds whose TTL has elapsed without removing them.
func (x *Index) Expired(now time.Time) []Entry {
	x.mu.RLock()
	cals := make([]*calendar, 0, len(x.sites))
	for _, c := range x.sites {
		cals = append(cals, c)
	}
	x.mu.RUnlock()

	var out []Entry
	for _, c := range cals {
		c.mu.RLock()
		for _, e := range c.entries {
			if !e.Live(now) {
				out = append(out, e)
			}
		}
		c.mu.RUnlock()
	}
	slices.SortFunc(out, func(a, b Entry) int { return a.ExpiresAt.Compare(b.ExpiresAt) })
	return out
}

func (x *Index) owner(ref uuid.UUID) (*calendar, error) {
	x.mu.RLock()
	siteID, ok := x.refs[ref]
	x.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownEntry
	}
	return x.calendar(siteID, false), nil
}

func (x *Index) forget(ref uuid.UUID) {
	x.mu.Lock()
	delete(x.refs, ref)
	x.mu.Unlock()
}

// search returns the first position whose departure is after t. Entries do
// not overlap, so departures are sorted as well.
func (c *calendar) search(t time.Time) int {
	return sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].Stay.Departure().After(t)
	})
}

func (c *calendar) overlapping(s stay.Stay, now time.Time) []Entry {
	var hits []Entry
	for i := c.search(s.Arrival()); i < len(c.entries); i++ {
		e := c.entries[i]
		if !e.Stay.Arrival().Before(s.Departure()) {
			break
		}
		if e.Live(now) {
			hits = append(hits, e)
		}
	}
	return hits
}

func (c *calendar) evict(now time.Time) []Entry {
	var gone []Entry
	c.entries = slices.DeleteFunc(c.entries, func(e Entry) bool {
		if e.Live(now) {
			return false
		}
		gone = append(gone, e)
		return true
	})
	return gone
}
