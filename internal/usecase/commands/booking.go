package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"campbook/internal/domain/event"
	"campbook/internal/domain/inventory"
	"campbook/internal/domain/quote"
	"campbook/internal/domain/reservation"
	"campbook/internal/domain/stay"
	"campbook/internal/domain/upsell"
	"campbook/internal/pkg/clock"
	"campbook/internal/pkg/config"
	"campbook/internal/pkg/errs"
	"campbook/internal/usecase/queries"
	"campbook/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrHoldTTLTooLong = errs.New("requested hold ttl exceeds the maximum")

type HoldParams struct {
	SiteID    uuid.UUID
	Arrival   time.Time
	Departure time.Time
	Guests    int
	Upsells   []upsell.Selection
	// TTL overrides the configured hold TTL when positive.
	TTL time.Duration
}

type BookingCommands interface {
	Hold(ctx context.Context, params HoldParams) (*queries.ReservationView, error)
	Confirm(ctx context.Context, id uuid.UUID, paymentIntentRef string) (*queries.ReservationView, error)
	Release(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error)
	ExpireHolds(ctx context.Context) (int, error)
}

type bookingUseCaseImpl struct {
	catalog   shared.CatalogReader
	store     shared.AllocationStore
	payments  shared.PaymentVerifier
	events    shared.EventPublisher
	locker    shared.SiteLocker
	assembler *quote.Assembler
	cfg       config.BookingConfig
	clock     clock.Clock
}

func NewBookingUseCase(
	catalog shared.CatalogReader,
	store shared.AllocationStore,
	payments shared.PaymentVerifier,
	events shared.EventPublisher,
	locker shared.SiteLocker,
	assembler *quote.Assembler,
	cfg config.BookingConfig,
	clock clock.Clock,
) BookingCommands {
	return &bookingUseCaseImpl{
		catalog:   catalog,
		store:     store,
		payments:  payments,
		events:    events,
		locker:    locker,
		assembler: assembler,
		cfg:       cfg,
		clock:     clock,
	}
}

// Hold prices the stay against a fresh catalog snapshot and reserves the
// site until the hold TTL elapses.
func (b *bookingUseCaseImpl) Hold(ctx context.Context, params HoldParams) (*queries.ReservationView, error) {
	ttl, err := b.holdTTL(params.TTL)
	if err != nil {
		return nil, err
	}
	s, err := stay.New(params.Arrival, params.Departure)
	if err != nil {
		return nil, err
	}

	unlock, err := b.lock(ctx, params.SiteID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := b.clock.Now()
	snap, err := shared.LoadSnapshot(ctx, b.catalog, b.store, params.SiteID, s, now)
	if err != nil {
		return nil, err
	}
	q, err := b.assembler.BuildQuote(quote.Request{
		SiteID:    params.SiteID,
		Arrival:   s.Arrival(),
		Departure: s.Departure(),
		Guests:    params.Guests,
		Upsells:   params.Upsells,
		Now:       now,
	}, snap)
	var unavailable *quote.AvailabilityError
	if errs.As(err, &unavailable) {
		return nil, &inventory.ConflictError{SiteID: params.SiteID, Requested: s, Nights: unavailable.Nights}
	}
	if err != nil {
		return nil, err
	}

	r, err := reservation.NewHold(uuid.New(), q, ttl, now)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidInput)
	}
	if err := b.store.CreateHold(ctx, r, now); err != nil {
		return nil, err
	}

	b.publish(ctx, r.Events())
	return queries.NewReservationView(r), nil
}

// Confirm converts a live hold into a reservation once the payment intent
// covers the deposit due now. Expired holds and rejected intents release
// the hold. Other verifier failures, such as a cancelled context, leave it
// held. The store only applies the change if the hold is still held.
func (b *bookingUseCaseImpl) Confirm(ctx context.Context, id uuid.UUID, paymentIntentRef string) (*queries.ReservationView, error) {
	if strings.TrimSpace(paymentIntentRef) == "" {
		return nil, errs.Mark(reservation.ErrMissingPaymentRef, errs.ErrInvalidInput)
	}
	r, err := b.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := r.Status()

	if from == reservation.StatusHeld && r.IsExpired(b.clock.Now()) {
		return nil, b.expireOnConfirm(ctx, r, paymentIntentRef)
	}
	if from != reservation.StatusHeld {
		return nil, &reservation.TransitionError{ID: r.ID(), From: from, To: reservation.StatusConfirmed}
	}

	deposit := r.Quote().Deposit.Amount
	if err := b.payments.Verify(ctx, paymentIntentRef, deposit); err != nil {
		if !errs.Is(err, errs.ErrPaymentIntentInvalid) {
			return nil, errs.Wrapf(err, "verify payment intent for hold %s", id)
		}
		slog.Warn("payment intent rejected, releasing hold",
			"hold_id", id,
			"deposit", deposit.String(),
			"error", err)
		now := b.clock.Now()
		if releaseErr := r.Release(now); releaseErr == nil {
			if saveErr := b.save(ctx, r, from, now); saveErr != nil {
				return nil, saveErr
			}
		}
		return nil, err
	}

	// verification can outlast the hold
	now := b.clock.Now()
	if r.IsExpired(now) {
		return nil, b.expireOnConfirm(ctx, r, paymentIntentRef)
	}
	if err := r.Confirm(paymentIntentRef, now); err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidInput)
	}
	if err := b.save(ctx, r, from, now); err != nil {
		return nil, err
	}
	return queries.NewReservationView(r), nil
}

// expireOnConfirm releases a lapsed hold and returns its HoldExpiredError.
func (b *bookingUseCaseImpl) expireOnConfirm(ctx context.Context, r *reservation.Reservation, paymentIntentRef string) error {
	now := b.clock.Now()
	expired := r.Confirm(paymentIntentRef, now)
	if err := b.save(ctx, r, reservation.StatusHeld, now); err != nil {
		return err
	}
	return expired
}

// Release cancels a hold on request. Releasing a released hold succeeds.
func (b *bookingUseCaseImpl) Release(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	r, err := b.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := r.Status()
	if from == reservation.StatusReleased {
		return queries.NewReservationView(r), nil
	}

	now := b.clock.Now()
	if err := r.Release(now); err != nil {
		return nil, err
	}
	if err := b.save(ctx, r, from, now); err != nil {
		return nil, err
	}
	return queries.NewReservationView(r), nil
}

// ExpireHolds releases up to one batch of holds whose TTL has elapsed and
// returns how many were released.
func (b *bookingUseCaseImpl) ExpireHolds(ctx context.Context) (int, error) {
	now := b.clock.Now()
	holds, err := b.store.ExpiredHolds(ctx, now, b.cfg.SweepBatch)
	if err != nil {
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	released := 0
	for _, r := range holds {
		from := r.Status()
		if err := r.Expire(now); err != nil {
			slog.Warn("skipping hold that cannot expire", "hold_id", r.ID(), "status", from, "error", err)
			continue
		}
		err := b.save(ctx, r, from, now)
		switch {
		case err == nil:
			released++
		case errs.Is(err, errs.ErrStaleAllocation):
			// confirmed or released concurrently
		default:
			return released, err
		}
	}
	return released, nil
}

func (b *bookingUseCaseImpl) save(ctx context.Context, r *reservation.Reservation, from reservation.Status, now time.Time) error {
	if err := b.store.Transition(ctx, r, from, now); err != nil {
		return err
	}
	b.publish(ctx, r.Events())
	return nil
}

// publish runs after the write is committed; a failure is logged and does
// not undo the booking.
func (b *bookingUseCaseImpl) publish(ctx context.Context, events []event.Event) {
	if len(events) == 0 || b.events == nil {
		return
	}
	if err := b.events.Publish(ctx, events...); err != nil {
		slog.Error("failed to publish booking events", "count", len(events), "error", err)
	}
}

func (b *bookingUseCaseImpl) lock(ctx context.Context, siteID uuid.UUID) (func(), error) {
	if b.locker == nil {
		return func() {}, nil
	}
	unlock, err := b.locker.Lock(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return unlock, nil
}

func (b *bookingUseCaseImpl) holdTTL(requested time.Duration) (time.Duration, error) {
	switch {
	case requested <= 0:
		return b.cfg.HoldTTL, nil
	case b.cfg.MaxHoldTTL > 0 && requested > b.cfg.MaxHoldTTL:
		return 0, errs.Mark(errs.Wrapf(ErrHoldTTLTooLong, "requested %s, max %s", requested, b.cfg.MaxHoldTTL), errs.ErrInvalidInput)
	default:
		return requested, nil
	}
}
