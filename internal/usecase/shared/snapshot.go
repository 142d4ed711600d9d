package shared

import (
	"context"
	"time"

	"campbook/internal/domain/money"
	"campbook/internal/domain/pricing"
	"campbook/internal/domain/quote"
	"campbook/internal/domain/stay"
	"campbook/internal/pkg/errs"

	"github.com/google/uuid"
)

// LoadSnapshot reads the catalog for siteID and fills in the allocation
// state of s: nights already taken and, when the rule set needs it, the
// class occupancy per night.
func LoadSnapshot(
	ctx context.Context,
	catalog CatalogReader,
	store AllocationStore,
	siteID uuid.UUID,
	s stay.Stay,
	now time.Time,
) (quote.Snapshot, error) {
	snap, err := catalog.Snapshot(ctx, siteID)
	if err != nil {
		return quote.Snapshot{}, err
	}

	blocked, err := store.BlockedNights(ctx, siteID, s, now)
	if err != nil {
		return quote.Snapshot{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	snap.Blocked = blocked

	if snap.Rules != nil && snap.Rules.HasDemandRules() {
		demand, err := classOccupancy(ctx, catalog, store, snap.Class.ID(), s, now)
		if err != nil {
			return quote.Snapshot{}, err
		}
		snap.Demand = demand
	}
	return snap, nil
}

func classOccupancy(
	ctx context.Context,
	catalog CatalogReader,
	store AllocationStore,
	classID uuid.UUID,
	s stay.Stay,
	now time.Time,
) (pricing.OccupancyTable, error) {
	table := pricing.OccupancyTable{}
	siteIDs, err := catalog.ClassSiteIDs(ctx, classID)
	if err != nil {
		return nil, err
	}
	if len(siteIDs) == 0 {
		return table, nil
	}

	counts, err := store.Occupancy(ctx, siteIDs, s, now)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	for night, n := range counts {
		table.Set(classID, night, money.Bps(int64(n)*int64(money.FullBps)/int64(len(siteIDs))))
	}
	return table, nil
}
