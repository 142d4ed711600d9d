package builder

import (
	"testing"
	"time"

	"campbook/internal/domain/deposit"
	"campbook/internal/domain/money"
	"campbook/internal/domain/pricing"
	"campbook/internal/domain/quote"
	"campbook/internal/domain/reservation"
	"campbook/internal/domain/site"
	"campbook/internal/domain/upsell"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// CatalogBuilder assembles a one-site catalog snapshot.
type CatalogBuilder struct {
	CampgroundID uuid.UUID
	ClassID      uuid.UUID
	SiteID       uuid.UUID
	ClassName    string
	SiteName     string
	BaseRate     money.Cents
	MaxOccupancy int
	Active       bool
	Rules        []pricing.RuleParams
	Deposit      *deposit.PolicyParams
	Items        []*upsell.Item
	Bundles      []*upsell.Bundle
	Demand       pricing.DemandSignal
	Blocked      []time.Time
}

func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{
		CampgroundID: uuid.New(),
		ClassID:      uuid.New(),
		SiteID:       uuid.New(),
		ClassName:    "Standard RV",
		SiteName:     "A-1",
		BaseRate:     money.FromUnits(50),
		MaxOccupancy: 6,
		Active:       true,
	}
}

func (b *CatalogBuilder) With(mutate func(*CatalogBuilder)) *CatalogBuilder {
	mutate(b)
	return b
}

// WithWeekendSurcharge adds an additive fixed rule for Saturday and Sunday nights.
func (b *CatalogBuilder) WithWeekendSurcharge(amount money.Cents) *CatalogBuilder {
	b.Rules = append(b.Rules, pricing.RuleParams{
		Name:       "Weekend surcharge",
		Scope:      pricing.CampgroundScope(),
		Predicate:  pricing.WeekendPredicate{Days: []time.Weekday{time.Saturday, time.Sunday}},
		Mode:       pricing.ModeAdditive,
		Priority:   10,
		Adjustment: pricing.Fixed(amount),
	})
	return b
}

func (b *CatalogBuilder) WithPercentDeposit(pct money.Bps) *CatalogBuilder {
	b.Deposit = &deposit.PolicyParams{
		Strategy: deposit.StrategyPercentage,
		Percent:  pct,
		Timing:   deposit.AtBooking(),
	}
	return b
}

func (b *CatalogBuilder) BuildClass() (*site.Class, error) {
	return site.NewClass(b.ClassID, b.CampgroundID, b.ClassName, b.BaseRate, b.MaxOccupancy, []string{"power-50a"})
}

func (b *CatalogBuilder) BuildRuleSet() (*pricing.RuleSet, error) {
	rules := make([]*pricing.Rule, 0, len(b.Rules))
	for _, p := range b.Rules {
		if p.CampgroundID == uuid.Nil {
			p.CampgroundID = b.CampgroundID
		}
		r, err := pricing.NewRule(p)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return pricing.NewRuleSet(b.CampgroundID, rules)
}

func (b *CatalogBuilder) BuildSnapshot() (quote.Snapshot, error) {
	class, err := b.BuildClass()
	if err != nil {
		return quote.Snapshot{}, err
	}
	s, err := site.NewSite(b.SiteID, class, b.SiteName, b.Active)
	if err != nil {
		return quote.Snapshot{}, err
	}
	rules, err := b.BuildRuleSet()
	if err != nil {
		return quote.Snapshot{}, err
	}
	policy := deposit.DefaultPolicy()
	if b.Deposit != nil {
		if policy, err = deposit.NewPolicy(*b.Deposit); err != nil {
			return quote.Snapshot{}, err
		}
	}
	catalog, err := upsell.NewCatalog(b.Items, b.Bundles)
	if err != nil {
		return quote.Snapshot{}, err
	}
	return quote.Snapshot{
		Site:    s,
		Class:   class,
		Rules:   rules,
		Demand:  b.Demand,
		Deposit: policy,
		Upsells: catalog,
		Blocked: b.Blocked,
	}, nil
}

func (b *CatalogBuilder) MustSnapshot(t testing.TB) quote.Snapshot {
	t.Helper()
	snap, err := b.BuildSnapshot()
	require.NoError(t, err)
	return snap
}

func (b *CatalogBuilder) Request(arrival, departure time.Time, guests int, now time.Time) quote.Request {
	return quote.Request{
		SiteID:    b.SiteID,
		Arrival:   arrival,
		Departure: departure,
		Guests:    guests,
		Now:       now,
	}
}

// MustHold prices the stay against the built snapshot and opens a hold on
// the builder's site.
func (b *CatalogBuilder) MustHold(t testing.TB, arrival, departure time.Time, ttl time.Duration, now time.Time) *reservation.Reservation {
	t.Helper()
	q, err := quote.NewAssembler(365).BuildQuote(b.Request(arrival, departure, 2, now), b.MustSnapshot(t))
	require.NoError(t, err)
	r, err := reservation.NewHold(uuid.New(), q, ttl, now)
	require.NoError(t, err)
	return r
}
