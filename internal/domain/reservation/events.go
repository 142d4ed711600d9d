package reservation

import (
	"time"

	"campbook/internal/domain/money"

	"github.com/google/uuid"
)

const (
	EventHoldCreated           = "hold.created"
	EventHoldReleased          = "hold.released"
	EventHoldExpired           = "hold.expired"
	EventReservationConfirmed  = "reservation.confirmed"
	EventReservationCancelled  = "reservation.cancelled"
	EventReservationCheckedIn  = "reservation.checked_in"
	EventReservationCheckedOut = "reservation.checked_out"
)

type HoldCreated struct {
	ReservationID uuid.UUID   `json:"reservation_id"`
	SiteID        uuid.UUID   `json:"site_id"`
	Arrival       time.Time   `json:"arrival"`
	Departure     time.Time   `json:"departure"`
	Total         money.Cents `json:"total"`
	ExpiresAt     time.Time   `json:"expires_at"`
	At            time.Time   `json:"at"`
}

func (e HoldCreated) Name() string          { return EventHoldCreated }
func (e HoldCreated) AggregateID() string   { return e.ReservationID.String() }
func (e HoldCreated) OccurredAt() time.Time { return e.At }

// HoldReleased is raised when a hold ends without a reservation, either on
// request or because it lapsed.
type HoldReleased struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	SiteID        uuid.UUID `json:"site_id"`
	Expired       bool      `json:"expired"`
	At            time.Time `json:"at"`
}

func (e HoldReleased) Name() string {
	if e.Expired {
		return EventHoldExpired
	}
	return EventHoldReleased
}
func (e HoldReleased) AggregateID() string   { return e.ReservationID.String() }
func (e HoldReleased) OccurredAt() time.Time { return e.At }

type Confirmed struct {
	ReservationID    uuid.UUID   `json:"reservation_id"`
	SiteID           uuid.UUID   `json:"site_id"`
	PaymentIntentRef string      `json:"payment_intent_ref"`
	DepositAmount    money.Cents `json:"deposit_amount"`
	Total            money.Cents `json:"total"`
	At               time.Time   `json:"at"`
}

func (e Confirmed) Name() string          { return EventReservationConfirmed }
func (e Confirmed) AggregateID() string   { return e.ReservationID.String() }
func (e Confirmed) OccurredAt() time.Time { return e.At }

// StatusChanged covers the post-confirmation transitions.
type StatusChanged struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Status        Status    `json:"status"`
	At            time.Time `json:"at"`
}

func (e StatusChanged) Name() string {
	switch e.Status {
	case StatusCancelled:
		return EventReservationCancelled
	case StatusCheckedIn:
		return EventReservationCheckedIn
	default:
		return EventReservationCheckedOut
	}
}
func (e StatusChanged) AggregateID() string   { return e.ReservationID.String() }
func (e StatusChanged) OccurredAt() time.Time { return e.At }
