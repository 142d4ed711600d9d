package queries

import (
	"context"
	"time"

	"campbook/internal/domain/quote"
	"campbook/internal/domain/stay"
	"campbook/internal/domain/upsell"
	"campbook/internal/pkg/clock"
	"campbook/internal/pkg/errs"
	"campbook/internal/usecase/shared"

	"github.com/google/uuid"
)

// MaxRateWindowNights bounds the rates listing.
const MaxRateWindowNights = 366

type QuoteParams struct {
	SiteID    uuid.UUID
	Arrival   time.Time
	Departure time.Time
	Guests    int
	Upsells   []upsell.Selection
}

type PricingQueries interface {
	Quote(ctx context.Context, params QuoteParams) (*quote.Quote, error)
	Rates(ctx context.Context, siteID uuid.UUID, from, to time.Time) (*RatesView, error)
}

type pricingQueriesImpl struct {
	catalog   shared.CatalogReader
	store     shared.AllocationStore
	assembler *quote.Assembler
	clock     clock.Clock
}

func NewPricingQueries(
	catalog shared.CatalogReader,
	store shared.AllocationStore,
	assembler *quote.Assembler,
	clock clock.Clock,
) PricingQueries {
	return &pricingQueriesImpl{
		catalog:   catalog,
		store:     store,
		assembler: assembler,
		clock:     clock,
	}
}

func (q *pricingQueriesImpl) Quote(ctx context.Context, params QuoteParams) (*quote.Quote, error) {
	s, err := stay.New(params.Arrival, params.Departure)
	if err != nil {
		return nil, err
	}
	now := q.clock.Now()

	snap, err := shared.LoadSnapshot(ctx, q.catalog, q.store, params.SiteID, s, now)
	if err != nil {
		return nil, err
	}

	return q.assembler.BuildQuote(quote.Request{
		SiteID:    params.SiteID,
		Arrival:   s.Arrival(),
		Departure: s.Departure(),
		Guests:    params.Guests,
		Upsells:   params.Upsells,
		Now:       now,
	}, snap)
}

// Rates lists the nightly rate and contributing rules for each night in
// [from, to) regardless of availability.
func (q *pricingQueriesImpl) Rates(ctx context.Context, siteID uuid.UUID, from, to time.Time) (*RatesView, error) {
	s, err := stay.New(from, to)
	if err != nil {
		return nil, err
	}
	if err := s.CheckMaxNights(MaxRateWindowNights); err != nil {
		return nil, err
	}

	snap, err := shared.LoadSnapshot(ctx, q.catalog, q.store, siteID, s, q.clock.Now())
	if err != nil {
		return nil, err
	}
	if snap.Site == nil || snap.Class == nil {
		return nil, errs.ErrCatalogCorrupted
	}

	view := &RatesView{
		SiteID: siteID,
		From:   s.Arrival(),
		To:     s.Departure(),
		Nights: q.assembler.Rates(snap, s),
	}
	if snap.Rules != nil {
		view.RuleSetVersion = snap.Rules.Version()
	}
	return view, nil
}
