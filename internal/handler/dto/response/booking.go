package response

import (
	"time"

	"campbook/internal/domain/quote"
	"campbook/internal/domain/stay"
	"campbook/internal/domain/upsell"
	"campbook/internal/usecase/queries"

	"github.com/google/uuid"
)

// Amounts are integer minor units of Currency.

type NightResponse struct {
	Date         string      `json:"date"`
	Base         int64       `json:"base"`
	Rate         int64       `json:"rate"`
	AppliedRules []uuid.UUID `json:"applied_rules"`
	Clamped      bool        `json:"clamped"`
}

type UpsellLineResponse struct {
	Kind      string      `json:"kind"`
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice int64       `json:"unit_price"`
	ItemIDs   []uuid.UUID `json:"item_ids,omitempty"`
	Discount  int64       `json:"discount"`
	Amount    int64       `json:"amount"`
}

type DepositResponse struct {
	Strategy string    `json:"strategy"`
	Amount   int64     `json:"amount"`
	DueAt    time.Time `json:"due_at"`
	Balance  int64     `json:"balance"`
}

type QuoteResponse struct {
	Currency       string                        `json:"currency"`
	SiteID         uuid.UUID                     `json:"site_id"`
	SiteClassID    uuid.UUID                     `json:"site_class_id"`
	Arrival        string                        `json:"arrival"`
	Departure      string                        `json:"departure"`
	Guests         int                           `json:"guests"`
	Nights         []NightResponse               `json:"nights"`
	Subtotal       int64                         `json:"subtotal"`
	Upsells        []UpsellLineResponse          `json:"upsells"`
	UpsellTotal    int64                         `json:"upsell_total"`
	Total          int64                         `json:"total"`
	Deposit        DepositResponse               `json:"deposit"`
	Warnings       []upsell.ConfigurationWarning `json:"warnings"`
	RuleSetVersion string                        `json:"rule_set_version"`
	QuotedAt       time.Time                     `json:"quoted_at"`
}

func FromQuote(q *quote.Quote, currency string) *QuoteResponse {
	if q == nil {
		return nil
	}
	res := &QuoteResponse{
		Currency:       currency,
		SiteID:         q.SiteID,
		SiteClassID:    q.SiteClassID,
		Arrival:        q.Arrival.Format(stay.DateLayout),
		Departure:      q.Departure.Format(stay.DateLayout),
		Guests:         q.Guests,
		Nights:         fromNights(q.Nights),
		Subtotal:       q.Subtotal.Int64(),
		Upsells:        make([]UpsellLineResponse, len(q.Upsells)),
		UpsellTotal:    q.UpsellTotal.Int64(),
		Total:          q.Total.Int64(),
		Warnings:       q.Warnings,
		RuleSetVersion: q.RuleSetVersion,
		QuotedAt:       q.QuotedAt,
		Deposit: DepositResponse{
			Strategy: string(q.Deposit.Strategy),
			Amount:   q.Deposit.Amount.Int64(),
			DueAt:    q.Deposit.DueAt,
			Balance:  q.Deposit.Balance.Int64(),
		},
	}
	if res.Warnings == nil {
		res.Warnings = []upsell.ConfigurationWarning{}
	}
	for i, l := range q.Upsells {
		res.Upsells[i] = UpsellLineResponse{
			Kind:      string(l.Kind),
			ID:        l.ID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Int64(),
			ItemIDs:   l.ItemIDs,
			Discount:  l.Discount.Int64(),
			Amount:    l.Amount.Int64(),
		}
	}
	return res
}

func fromNights(nights []quote.Night) []NightResponse {
	out := make([]NightResponse, len(nights))
	for i, n := range nights {
		applied := n.Applied
		if applied == nil {
			applied = []uuid.UUID{}
		}
		out[i] = NightResponse{
			Date:         n.Date.Format(stay.DateLayout),
			Base:         n.Base.Int64(),
			Rate:         n.Rate.Int64(),
			AppliedRules: applied,
			Clamped:      n.Clamped,
		}
	}
	return out
}

type ReservationResponse struct {
	ID               uuid.UUID      `json:"id"`
	SiteID           uuid.UUID      `json:"site_id"`
	Arrival          string         `json:"arrival"`
	Departure        string         `json:"departure"`
	Nights           int            `json:"nights"`
	Guests           int            `json:"guests"`
	Status           string         `json:"status"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
	PaymentIntentRef string         `json:"payment_intent_ref,omitempty"`
	Quote            *QuoteResponse `json:"quote"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func FromReservationView(v *queries.ReservationView, currency string) *ReservationResponse {
	return &ReservationResponse{
		ID:               v.ID,
		SiteID:           v.SiteID,
		Arrival:          v.Arrival.Format(stay.DateLayout),
		Departure:        v.Departure.Format(stay.DateLayout),
		Nights:           v.Nights,
		Guests:           v.Guests,
		Status:           v.Status,
		ExpiresAt:        v.ExpiresAt,
		PaymentIntentRef: v.PaymentIntentRef,
		Quote:            FromQuote(v.Quote, currency),
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

type RatesResponse struct {
	Currency       string          `json:"currency"`
	SiteID         uuid.UUID       `json:"site_id"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	Nights         []NightResponse `json:"nights"`
	RuleSetVersion string          `json:"rule_set_version"`
}

func FromRatesView(v *queries.RatesView, currency string) *RatesResponse {
	return &RatesResponse{
		Currency:       currency,
		SiteID:         v.SiteID,
		From:           v.From.Format(stay.DateLayout),
		To:             v.To.Format(stay.DateLayout),
		Nights:         fromNights(v.Nights),
		RuleSetVersion: v.RuleSetVersion,
	}
}
