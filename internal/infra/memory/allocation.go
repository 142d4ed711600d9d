package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"campbook/internal/domain/inventory"
	"campbook/internal/domain/reservation"
	"campbook/internal/domain/stay"
	"campbook/internal/pkg/errs"

	"github.com/google/uuid"
)

// AllocationStore keeps reservations in memory and guards site exclusivity
// with an inventory.Index.
type AllocationStore struct {
	mu           sync.RWMutex
	index        *inventory.Index
	reservations map[uuid.UUID]reservation.Record
}

func NewAllocationStore() *AllocationStore {
	return &AllocationStore{
		index:        inventory.NewIndex(),
		reservations: make(map[uuid.UUID]reservation.Record),
	}
}

// CreateHold reserves the site for r. Holds evicted from the index because
// they expired stay held here until the sweeper releases them.
func (s *AllocationStore) CreateHold(ctx context.Context, r *reservation.Reservation, now time.Time) error {
	rec := r.Record()

	s.mu.RLock()
	_, dup := s.reservations[rec.ID]
	s.mu.RUnlock()
	if dup {
		return errs.Newf("hold %s already exists", rec.ID)
	}

	// the index serializes per site; the store lock only guards the map
	if _, err := s.index.Reserve(inventory.Entry{
		Ref:       rec.ID,
		SiteID:    rec.SiteID,
		Stay:      rec.Stay,
		Kind:      inventory.KindHold,
		ExpiresAt: rec.ExpiresAt,
	}, now); err != nil {
		return err
	}

	s.mu.Lock()
	s.reservations[rec.ID] = rec
	s.mu.Unlock()
	return nil
}

func (s *AllocationStore) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.reservations[id]
	if !ok {
		return nil, errs.Wrapf(errs.ErrReservationNotFound, "reservation %s", id)
	}
	return reservation.Reconstruct(rec), nil
}

func (s *AllocationStore) Transition(ctx context.Context, r *reservation.Reservation, from reservation.Status, now time.Time) error {
	rec := r.Record()

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.reservations[rec.ID]
	if !ok {
		return errs.Wrapf(errs.ErrReservationNotFound, "reservation %s", rec.ID)
	}
	if stored.Status != from {
		return errs.Wrapf(errs.ErrStaleAllocation, "reservation %s is %s, expected %s", rec.ID, stored.Status, from)
	}

	switch {
	case from == reservation.StatusHeld && rec.Status == reservation.StatusConfirmed:
		if err := s.index.Convert(rec.ID, now); err != nil {
			return errs.Mark(errs.Wrapf(err, "confirm hold %s", rec.ID), errs.ErrStaleAllocation)
		}
	case from.Occupies() && !rec.Status.Occupies():
		if _, err := s.index.Release(rec.ID); err != nil && !errs.Is(err, inventory.ErrUnknownEntry) {
			return err
		}
	}
	s.reservations[rec.ID] = rec
	return nil
}

func (s *AllocationStore) BlockedNights(ctx context.Context, siteID uuid.UUID, st stay.Stay, now time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.BlockedNights(siteID, st, now), nil
}

func (s *AllocationStore) Occupancy(ctx context.Context, siteIDs []uuid.UUID, st stay.Stay, now time.Time) (map[time.Time]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[time.Time]int, st.Nights())
	for _, night := range st.Dates() {
		if n := s.index.Occupied(siteIDs, night, now); n > 0 {
			out[night] = n
		}
	}
	return out, nil
}

// ExpiredHolds returns held reservations past their TTL, oldest first.
func (s *AllocationStore) ExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	s.mu.RLock()
	var recs []reservation.Record
	for _, rec := range s.reservations {
		if rec.Status == reservation.StatusHeld && !now.Before(rec.ExpiresAt) {
			recs = append(recs, rec)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(recs, func(a, b reservation.Record) int {
		if c := a.ExpiresAt.Compare(b.ExpiresAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	out := make([]*reservation.Reservation, len(recs))
	for i, rec := range recs {
		out[i] = reservation.Reconstruct(rec)
	}
	return out, nil
}
