package quote

import (
	"time"

	"campbook/internal/domain/deposit"
	"campbook/internal/domain/money"
	"campbook/internal/domain/upsell"

	"github.com/google/uuid"
)

// Night is the priced breakdown of one night of a stay.
type Night struct {
	Date    time.Time   `json:"date"`
	Base    money.Cents `json:"base"`
	Rate    money.Cents `json:"rate"`
	Applied []uuid.UUID `json:"applied_rules"`
	Skipped []uuid.UUID `json:"skipped_rules,omitempty"`
	Clamped bool        `json:"clamped"`
}

// Quote is the itemized price of a prospective reservation. It is never
// persisted on its own; a hold keeps a deep copy as its snapshot.
type Quote struct {
	CampgroundID   uuid.UUID                     `json:"campground_id"`
	SiteID         uuid.UUID                     `json:"site_id"`
	SiteClassID    uuid.UUID                     `json:"site_class_id"`
	Arrival        time.Time                     `json:"arrival"`
	Departure      time.Time                     `json:"departure"`
	Guests         int                           `json:"guests"`
	Nights         []Night                       `json:"nights"`
	Subtotal       money.Cents                   `json:"subtotal"`
	Upsells        []upsell.Line                 `json:"upsells"`
	UpsellTotal    money.Cents                   `json:"upsell_total"`
	Total          money.Cents                   `json:"total"`
	Deposit        deposit.Due                   `json:"deposit"`
	Warnings       []upsell.ConfigurationWarning `json:"warnings"`
	RuleSetVersion string                        `json:"rule_set_version"`
	QuotedAt       time.Time                     `json:"quoted_at"`
}

func (q *Quote) FirstNight() money.Cents {
	if len(q.Nights) == 0 {
		return 0
	}
	return q.Nights[0].Rate
}

// AppliedRuleIDs lists every rule that contributed to some night, in first
// use order.
func (q *Quote) AppliedRuleIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, n := range q.Nights {
		for _, id := range n.Applied {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
