package inventory_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"campbook/internal/domain/inventory"
	"campbook/internal/domain/stay"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func july(arrival, departure int) stay.Stay {
	return stay.MustNew(stay.Date(2025, time.July, arrival), stay.Date(2025, time.July, departure))
}

func hold(siteID uuid.UUID, s stay.Stay, ttl time.Duration) inventory.Entry {
	return inventory.Entry{
		Ref:       uuid.New(),
		SiteID:    siteID,
		Stay:      s,
		Kind:      inventory.KindHold,
		ExpiresAt: now.Add(ttl),
	}
}

func TestReserve(t *testing.T) {
	site := uuid.New()

	t.Run("half-open ranges touching at the boundary do not conflict", func(t *testing.T) {
		idx := inventory.NewIndex()
		_, err := idx.Reserve(hold(site, july(10, 12), time.Hour), now)
		require.NoError(t, err)
		_, err = idx.Reserve(hold(site, july(12, 14), time.Hour), now)
		require.NoError(t, err)
		_, err = idx.Reserve(hold(site, july(8, 10), time.Hour), now)
		require.NoError(t, err)
	})

	t.Run("overlap returns ConflictError", func(t *testing.T) {
		idx := inventory.NewIndex()
		first := hold(site, july(10, 14), time.Hour)
		_, err := idx.Reserve(first, now)
		require.NoError(t, err)

		_, err = idx.Reserve(hold(site, july(13, 15), time.Hour), now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, inventory.ErrConflict))

		var conflict *inventory.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, first.Ref, conflict.Existing)
		assert.Equal(t, site, conflict.SiteID)
	})

	t.Run("enclosing range conflicts", func(t *testing.T) {
		idx := inventory.NewIndex()
		_, err := idx.Reserve(hold(site, july(11, 12), time.Hour), now)
		require.NoError(t, err)
		_, err = idx.Reserve(hold(site, july(5, 20), time.Hour), now)
		assert.ErrorIs(t, err, inventory.ErrConflict)
	})

	t.Run("other sites are independent", func(t *testing.T) {
		idx := inventory.NewIndex()
		_, err := idx.Reserve(hold(site, july(10, 14), time.Hour), now)
		require.NoError(t, err)
		_, err = idx.Reserve(hold(uuid.New(), july(10, 14), time.Hour), now)
		require.NoError(t, err)
	})

	t.Run("expired holds are evicted and do not block", func(t *testing.T) {
		idx := inventory.NewIndex()
		stale := hold(site, july(10, 14), 15*time.Minute)
		_, err := idx.Reserve(stale, now)
		require.NoError(t, err)

		later := now.Add(16 * time.Minute)
		assert.True(t, idx.IsAvailable(site, july(10, 14), later))

		fresh := inventory.Entry{Ref: uuid.New(), SiteID: site, Stay: july(11, 12), Kind: inventory.KindReservation}
		evicted, err := idx.Reserve(fresh, later)
		require.NoError(t, err)
		require.Len(t, evicted, 1)
		assert.Equal(t, stale.Ref, evicted[0].Ref)

		_, ok := idx.Get(stale.Ref)
		assert.False(t, ok)
	})

	t.Run("invalid entries are rejected", func(t *testing.T) {
		idx := inventory.NewIndex()
		_, err := idx.Reserve(inventory.Entry{SiteID: site, Stay: july(1, 2)}, now)
		assert.ErrorIs(t, err, inventory.ErrInvalidEntry)

		_, err = idx.Reserve(hold(site, july(1, 2), -time.Minute), now)
		assert.ErrorIs(t, err, inventory.ErrInvalidEntry)

		e := hold(site, july(1, 2), time.Hour)
		_, err = idx.Reserve(e, now)
		require.NoError(t, err)
		e.Stay = july(20, 21)
		_, err = idx.Reserve(e, now)
		assert.ErrorIs(t, err, inventory.ErrInvalidEntry)
	})
}

func TestReleaseAndConvert(t *testing.T) {
	site := uuid.New()
	idx := inventory.NewIndex()

	h := hold(site, july(10, 14), 15*time.Minute)
	_, err := idx.Reserve(h, now)
	require.NoError(t, err)

	require.NoError(t, idx.Convert(h.Ref, now.Add(time.Minute)))
	got, ok := idx.Get(h.Ref)
	require.True(t, ok)
	assert.Equal(t, inventory.KindReservation, got.Kind)
	// a confirmed reservation never expires
	assert.False(t, idx.IsAvailable(site, july(10, 14), now.Add(24*time.Hour)))

	released, err := idx.Release(h.Ref)
	require.NoError(t, err)
	assert.Equal(t, h.Ref, released.Ref)
	assert.True(t, idx.IsAvailable(site, july(10, 14), now))

	_, err = idx.Release(h.Ref)
	assert.ErrorIs(t, err, inventory.ErrUnknownEntry)
	assert.ErrorIs(t, idx.Convert(uuid.New(), now), inventory.ErrUnknownEntry)

	t.Run("expired hold cannot be converted", func(t *testing.T) {
		h := hold(site, july(20, 22), 15*time.Minute)
		_, err := idx.Reserve(h, now)
		require.NoError(t, err)
		assert.ErrorIs(t, idx.Convert(h.Ref, now.Add(16*time.Minute)), inventory.ErrUnknownEntry)
	})
}

func TestBlockedNightsAndOccupancy(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	idx := inventory.NewIndex()
	for _, e := range []inventory.Entry{
		hold(a, july(10, 12), time.Hour),
		{Ref: uuid.New(), SiteID: a, Stay: july(13, 15), Kind: inventory.KindBlock},
		{Ref: uuid.New(), SiteID: b, Stay: july(11, 12), Kind: inventory.KindReservation},
	} {
		_, err := idx.Reserve(e, now)
		require.NoError(t, err)
	}

	nights := idx.BlockedNights(a, july(9, 15), now)
	assert.Equal(t, []time.Time{
		stay.Date(2025, time.July, 10),
		stay.Date(2025, time.July, 11),
		stay.Date(2025, time.July, 13),
		stay.Date(2025, time.July, 14),
	}, nights)
	assert.Empty(t, idx.BlockedNights(c, july(9, 15), now))

	sites := []uuid.UUID{a, b, c}
	assert.Equal(t, 2, idx.Occupied(sites, stay.Date(2025, time.July, 11), now))
	assert.Equal(t, 1, idx.Occupied(sites, stay.Date(2025, time.July, 10), now))
	assert.Equal(t, 0, idx.Occupied(sites, stay.Date(2025, time.July, 12), now))
	// the hold on a has lapsed
	assert.Equal(t, 1, idx.Occupied(sites, stay.Date(2025, time.July, 11), now.Add(2*time.Hour)))
}

func TestExpired(t *testing.T) {
	site := uuid.New()
	idx := inventory.NewIndex()
	short := hold(site, july(1, 2), 10*time.Minute)
	long := hold(site, july(3, 4), 20*time.Minute)
	for _, e := range []inventory.Entry{long, short} {
		_, err := idx.Reserve(e, now)
		require.NoError(t, err)
	}

	assert.Empty(t, idx.Expired(now))
	got := idx.Expired(now.Add(30 * time.Minute))
	require.Len(t, got, 2)
	assert.Equal(t, short.Ref, got[0].Ref)
	assert.Equal(t, long.Ref, got[1].Ref)
}

func TestReserveConcurrent(t *testing.T) {
	const attempts = 100

	t.Run("overlapping requests: exactly one wins", func(t *testing.T) {
		idx := inventory.NewIndex()
		site := uuid.New()
		var wins, conflicts atomic.Int32
		var wg sync.WaitGroup
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// every range covers July 10
				s := july(10-i%5, 11+i%7)
				_, err := idx.Reserve(hold(site, s, time.Hour), now)
				switch {
				case err == nil:
					wins.Add(1)
				case errors.Is(err, inventory.ErrConflict):
					conflicts.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, wins.Load())
		assert.EqualValues(t, attempts-1, conflicts.Load())
	})

	t.Run("disjoint requests: all win", func(t *testing.T) {
		idx := inventory.NewIndex()
		site := uuid.New()
		base := stay.Date(2026, time.January, 1)
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				arrival := base.AddDate(0, 0, 2*i)
				s := stay.MustNew(arrival, arrival.AddDate(0, 0, 2))
				if _, err := idx.Reserve(hold(site, s, time.Hour), now); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, attempts, wins.Load())
		assert.Empty(t, idx.BlockedNights(site, stay.MustNew(base.AddDate(0, 0, -1), base), now))
	})
}
