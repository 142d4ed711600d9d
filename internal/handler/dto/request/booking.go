package request

import (
	"time"

	"campbook/internal/domain/stay"
	"campbook/internal/domain/upsell"
	"campbook/internal/pkg/errs"
	"campbook/internal/usecase/commands"
	"campbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type UpsellSelection struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// QuoteRequest dates are calendar dates in YYYY-MM-DD.
type QuoteRequest struct {
	SiteID    uuid.UUID         `json:"site_id" binding:"required"`
	Arrival   string            `json:"arrival" binding:"required"`
	Departure string            `json:"departure" binding:"required"`
	Guests    int               `json:"guests" binding:"required,min=1"`
	Upsells   []UpsellSelection `json:"upsells" binding:"omitempty,dive"`
}

func (r QuoteRequest) ToParams() (queries.QuoteParams, error) {
	s, err := parseStay(r.Arrival, r.Departure)
	if err != nil {
		return queries.QuoteParams{}, err
	}
	return queries.QuoteParams{
		SiteID:    r.SiteID,
		Arrival:   s.Arrival(),
		Departure: s.Departure(),
		Guests:    r.Guests,
		Upsells:   selections(r.Upsells),
	}, nil
}

type HoldRequest struct {
	QuoteRequest
	// TTLSeconds overrides the default hold lifetime, up to the configured maximum.
	TTLSeconds int `json:"ttl_seconds" binding:"omitempty,min=1"`
}

func (r HoldRequest) ToParams() (commands.HoldParams, error) {
	s, err := parseStay(r.Arrival, r.Departure)
	if err != nil {
		return commands.HoldParams{}, err
	}
	return commands.HoldParams{
		SiteID:    r.SiteID,
		Arrival:   s.Arrival(),
		Departure: s.Departure(),
		Guests:    r.Guests,
		Upsells:   selections(r.Upsells),
		TTL:       time.Duration(r.TTLSeconds) * time.Second,
	}, nil
}

type ConfirmRequest struct {
	PaymentIntentRef string `json:"payment_intent_ref" binding:"required"`
}

type RatesQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

func (q RatesQuery) Range() (time.Time, time.Time, error) {
	s, err := parseStay(q.From, q.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return s.Arrival(), s.Departure(), nil
}

func parseStay(arrival, departure string) (stay.Stay, error) {
	s, err := stay.Parse(arrival, departure)
	if err != nil {
		return stay.Stay{}, errs.Mark(err, errs.ErrInvalidInput)
	}
	return s, nil
}

func selections(in []UpsellSelection) []upsell.Selection {
	if len(in) == 0 {
		return nil
	}
	out := make([]upsell.Selection, len(in))
	for i, s := range in {
		out[i] = upsell.Selection{ItemID: s.ItemID, Quantity: s.Quantity}
	}
	return out
}
