package queries

import (
	"time"

	"campbook/internal/domain/quote"
	"campbook/internal/domain/reservation"

	"github.com/google/uuid"
)

type ReservationView struct {
	ID               uuid.UUID    `json:"id"`
	SiteID           uuid.UUID    `json:"site_id"`
	Arrival          time.Time    `json:"arrival"`
	Departure        time.Time    `json:"departure"`
	Nights           int          `json:"nights"`
	Guests           int          `json:"guests"`
	Status           string       `json:"status"`
	ExpiresAt        *time.Time   `json:"expires_at,omitempty"`
	PaymentIntentRef string       `json:"payment_intent_ref,omitempty"`
	Quote            *quote.Quote `json:"quote"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func NewReservationView(r *reservation.Reservation) *ReservationView {
	v := &ReservationView{
		ID:               r.ID(),
		SiteID:           r.SiteID(),
		Arrival:          r.Stay().Arrival(),
		Departure:        r.Stay().Departure(),
		Nights:           r.Stay().Nights(),
		Guests:           r.Guests(),
		Status:           r.Status().String(),
		PaymentIntentRef: r.PaymentIntentRef(),
		Quote:            r.Quote(),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
	}
	if r.Status() == reservation.StatusHeld {
		expiresAt := r.ExpiresAt()
		v.ExpiresAt = &expiresAt
	}
	return v
}

type RatesView struct {
	SiteID         uuid.UUID     `json:"site_id"`
	From           time.Time     `json:"from"`
	To             time.Time     `json:"to"`
	Nights         []quote.Night `json:"nights"`
	RuleSetVersion string        `json:"rule_set_version"`
}
