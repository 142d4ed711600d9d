package shared

import (
	"context"
	"time"

	"campbook/internal/domain/event"
	"campbook/internal/domain/money"
	"campbook/internal/domain/quote"
	"campbook/internal/domain/reservation"
	"campbook/internal/domain/stay"

	"github.com/google/uuid"
)

// CatalogReader loads the configuration a site is priced against.
type CatalogReader interface {
	// Snapshot returns the site, its class, the campground rule set,
	// deposit policy and upsell catalog. Demand and Blocked are left empty.
	Snapshot(ctx context.Context, siteID uuid.UUID) (quote.Snapshot, error)
	// ClassSiteIDs lists the active sites of a class.
	ClassSiteIDs(ctx context.Context, classID uuid.UUID) ([]uuid.UUID, error)
}

// AllocationStore persists holds and reservations and enforces that no two
// occupying allocations of one site overlap.
type AllocationStore interface {
	// CreateHold stores r unless an occupying allocation overlaps it, in
	// which case an *inventory.ConflictError is returned.
	CreateHold(ctx context.Context, r *reservation.Reservation, now time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// Transition stores the new status of r if the stored status is still
	// from, and returns errs.ErrStaleAllocation otherwise.
	Transition(ctx context.Context, r *reservation.Reservation, from reservation.Status, now time.Time) error
	BlockedNights(ctx context.Context, siteID uuid.UUID, s stay.Stay, now time.Time) ([]time.Time, error)
	// Occupancy counts, per night of s, how many of siteIDs are taken.
	Occupancy(ctx context.Context, siteIDs []uuid.UUID, s stay.Stay, now time.Time) (map[time.Time]int, error)
	ExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error)
}

type PaymentVerifier interface {
	// Verify checks that intentRef authorizes at least amount.
	Verify(ctx context.Context, intentRef string, amount money.Cents) error
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...event.Event) error
}

// SiteLocker serializes booking writes for one site across instances.
type SiteLocker interface {
	Lock(ctx context.Context, siteID uuid.UUID) (unlock func(), err error)
}
