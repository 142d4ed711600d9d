package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"campbook/internal/domain/event"
	"campbook/internal/domain/quote"
	"campbook/internal/domain/stay"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

var (
	ErrHoldExpired       = errors.New("hold has expired")
	ErrInvalidTransition = errors.New("invalid reservation status transition")
	ErrInvalidTTL        = errors.New("hold ttl must be positive")
	ErrMissingQuote      = errors.New("quote snapshot is required")
	ErrMissingPaymentRef = errors.New("payment intent reference is required")
	ErrHoldStillActive   = errors.New("hold has not expired yet")
)

// HoldExpiredError is returned when a hold is confirmed after its TTL.
type HoldExpiredError struct {
	ID        uuid.UUID
	ExpiredAt time.Time
	At        time.Time
}

func (e *HoldExpiredError) Error() string {
	return fmt.Sprintf("hold %s expired at %s (now %s)", e.ID, e.ExpiredAt.Format(time.RFC3339), e.At.Format(time.RFC3339))
}

func (e *HoldExpiredError) Is(target error) bool {
	return target == ErrHoldExpired
}

type TransitionError struct {
	ID   uuid.UUID
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("reservation %s cannot move from %s to %s", e.ID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Reservation is a site allocation from hold through check-out. It owns a
// private copy of the quote it was booked at.
type Reservation struct {
	id               uuid.UUID
	siteID           uuid.UUID
	stay             stay.Stay
	guests           int
	status           Status
	quote            *quote.Quote
	expiresAt        time.Time
	paymentIntentRef string
	createdAt        time.Time
	updatedAt        time.Time

	events event.Recorder
}

// NewHold opens a hold on the quoted site and stay that lapses after ttl.
func NewHold(id uuid.UUID, q *quote.Quote, ttl time.Duration, now time.Time) (*Reservation, error) {
	if q == nil {
		return nil, ErrMissingQuote
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	s, err := stay.New(q.Arrival, q.Departure)
	if err != nil {
		return nil, err
	}
	snapshot, err := cloneQuote(q)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	r := &Reservation{
		id:        id,
		siteID:    q.SiteID,
		stay:      s,
		guests:    q.Guests,
		status:    StatusHeld,
		quote:     snapshot,
		expiresAt: now.Add(ttl),
		createdAt: now,
		updatedAt: now,
	}
	r.events.Record(HoldCreated{
		ReservationID: r.id,
		SiteID:        r.siteID,
		Arrival:       s.Arrival(),
		Departure:     s.Departure(),
		Total:         q.Total,
		ExpiresAt:     r.expiresAt,
		At:            now,
	})
	return r, nil
}

// Record is the stored shape of a reservation.
type Record struct {
	ID               uuid.UUID
	SiteID           uuid.UUID
	Stay             stay.Stay
	Guests           int
	Status           Status
	Quote            *quote.Quote
	ExpiresAt        time.Time
	PaymentIntentRef string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func Reconstruct(rec Record) *Reservation {
	return &Reservation{
		id:               rec.ID,
		siteID:           rec.SiteID,
		stay:             rec.Stay,
		guests:           rec.Guests,
		status:           rec.Status,
		quote:            rec.Quote,
		expiresAt:        rec.ExpiresAt,
		paymentIntentRef: rec.PaymentIntentRef,
		createdAt:        rec.CreatedAt,
		updatedAt:        rec.UpdatedAt,
	}
}

func (r *Reservation) Record() Record {
	return Record{
		ID:               r.id,
		SiteID:           r.siteID,
		Stay:             r.stay,
		Guests:           r.guests,
		Status:           r.status,
		Quote:            r.Quote(),
		ExpiresAt:        r.expiresAt,
		PaymentIntentRef: r.paymentIntentRef,
		CreatedAt:        r.createdAt,
		UpdatedAt:        r.updatedAt,
	}
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return r.status == StatusHeld && !now.Before(r.expiresAt)
}

// Confirm turns a live hold into a reservation. A hold past its TTL is
// released instead and a *HoldExpiredError is returned.
func (r *Reservation) Confirm(paymentIntentRef string, now time.Time) error {
	if r.status != StatusHeld {
		return &TransitionError{ID: r.id, From: r.status, To: StatusConfirmed}
	}
	if r.IsExpired(now) {
		r.release(now, true)
		return &HoldExpiredError{ID: r.id, ExpiredAt: r.expiresAt, At: now}
	}
	paymentIntentRef = strings.TrimSpace(paymentIntentRef)
	if paymentIntentRef == "" {
		return ErrMissingPaymentRef
	}

	r.status = StatusConfirmed
	r.paymentIntentRef = paymentIntentRef
	r.expiresAt = time.Time{}
	r.updatedAt = now
	r.events.Record(Confirmed{
		ReservationID:    r.id,
		SiteID:           r.siteID,
		PaymentIntentRef: paymentIntentRef,
		DepositAmount:    r.quote.Deposit.Amount,
		Total:            r.quote.Total,
		At:               now,
	})
	return nil
}

// Release ends a hold. Releasing an already released hold is a no-op.
func (r *Reservation) Release(now time.Time) error {
	switch r.status {
	case StatusReleased:
		return nil
	case StatusHeld:
		r.release(now, false)
		return nil
	default:
		return &TransitionError{ID: r.id, From: r.status, To: StatusReleased}
	}
}

// Expire releases a hold whose TTL has elapsed.
func (r *Reservation) Expire(now time.Time) error {
	if r.status != StatusHeld {
		return &TransitionError{ID: r.id, From: r.status, To: StatusReleased}
	}
	if !r.IsExpired(now) {
		return ErrHoldStillActive
	}
	r.release(now, true)
	return nil
}

func (r *Reservation) Cancel(now time.Time) error {
	return r.advance(StatusConfirmed, StatusCancelled, now)
}

func (r *Reservation) CheckIn(now time.Time) error {
	return r.advance(StatusConfirmed, StatusCheckedIn, now)
}

func (r *Reservation) CheckOut(now time.Time) error {
	return r.advance(StatusCheckedIn, StatusCheckedOut, now)
}

func (r *Reservation) advance(from, to Status, now time.Time) error {
	if r.status != from {
		return &TransitionError{ID: r.id, From: r.status, To: to}
	}
	r.status = to
	r.updatedAt = now
	r.events.Record(StatusChanged{ReservationID: r.id, Status: to, At: now})
	return nil
}

func (r *Reservation) release(now time.Time, expired bool) {
	r.status = StatusReleased
	r.updatedAt = now
	r.events.Record(HoldReleased{ReservationID: r.id, SiteID: r.siteID, Expired: expired, At: now})
}

// Quote returns a copy of the snapshot taken at hold time.
func (r *Reservation) Quote() *quote.Quote {
	if r.quote == nil {
		return nil
	}
	q, err := cloneQuote(r.quote)
	if err != nil {
		return nil
	}
	return q
}

// Events drains the events raised since the last call.
func (r *Reservation) Events() []event.Event {
	return r.events.Drain()
}

func (r *Reservation) ID() uuid.UUID            { return r.id }
func (r *Reservation) SiteID() uuid.UUID        { return r.siteID }
func (r *Reservation) Stay() stay.Stay          { return r.stay }
func (r *Reservation) Guests() int              { return r.guests }
func (r *Reservation) Status() Status           { return r.status }
func (r *Reservation) ExpiresAt() time.Time     { return r.expiresAt }
func (r *Reservation) PaymentIntentRef() string { return r.paymentIntentRef }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time     { return r.updatedAt }

func cloneQuote(q *quote.Quote) (*quote.Quote, error) {
	var out quote.Quote
	if err := copier.CopyWithOption(&out, q, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copy quote snapshot: %w", err)
	}
	return &out, nil
}
