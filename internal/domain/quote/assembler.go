package quote

import (
	"slices"
	"time"

	"campbook/internal/domain/deposit"
	"campbook/internal/domain/pricing"
	"campbook/internal/domain/site"
	"campbook/internal/domain/stay"
	"campbook/internal/domain/upsell"

	"github.com/google/uuid"
)

// Snapshot is the immutable catalog state a quote is computed against.
// Blocked lists nights of the requested stay that are already allocated.
type Snapshot struct {
	Site    *site.Site
	Class   *site.Class
	Rules   *pricing.RuleSet
	Demand  pricing.DemandSignal
	Deposit *deposit.Policy
	Upsells *upsell.Catalog
	Blocked []time.Time
}

func (s Snapshot) validate() error {
	if s.Site == nil || s.Class == nil {
		return ErrIncompleteSnapshot
	}
	if err := s.Site.BelongsTo(s.Class); err != nil {
		return err
	}
	if s.Rules != nil && s.Rules.CampgroundID() != s.Site.CampgroundID() {
		return ErrIncompleteSnapshot
	}
	return nil
}

type Request struct {
	SiteID    uuid.UUID
	Arrival   time.Time
	Departure time.Time
	Guests    int
	Upsells   []upsell.Selection
	Now       time.Time
}

// Assembler turns a request and a snapshot into a Quote. It has no
// side effects and is safe for concurrent use.
type Assembler struct {
	maxStayNights int
}

func NewAssembler(maxStayNights int) *Assembler {
	return &Assembler{maxStayNights: maxStayNights}
}

func (a *Assembler) MaxStayNights() int { return a.maxStayNights }

// BuildQuote validates the stay, the party size and availability, then
// prices every night, the upsells and the deposit.
func (a *Assembler) BuildQuote(req Request, snap Snapshot) (*Quote, error) {
	s, err := stay.New(req.Arrival, req.Departure)
	if err != nil {
		return nil, err
	}
	if err := s.CheckMaxNights(a.maxStayNights); err != nil {
		return nil, err
	}
	if err := snap.validate(); err != nil {
		return nil, err
	}
	if req.SiteID != uuid.Nil && req.SiteID != snap.Site.ID() {
		return nil, ErrIncompleteSnapshot
	}
	if !snap.Site.IsActive() {
		return nil, ErrSiteInactive
	}
	if !snap.Class.Admits(req.Guests) {
		return nil, &GuestCountError{Guests: req.Guests, MaxOccupancy: snap.Class.MaxOccupancy()}
	}
	if blocked := blockedWithin(s, snap.Blocked); len(blocked) > 0 {
		return nil, &AvailabilityError{SiteID: snap.Site.ID(), Nights: blocked}
	}

	q := &Quote{
		CampgroundID: snap.Site.CampgroundID(),
		SiteID:       snap.Site.ID(),
		SiteClassID:  snap.Class.ID(),
		Arrival:      s.Arrival(),
		Departure:    s.Departure(),
		Guests:       req.Guests,
		Nights:       a.Rates(snap, s),
		QuotedAt:     req.Now.UTC(),
	}
	for _, n := range q.Nights {
		q.Subtotal += n.Rate
	}
	if snap.Rules != nil {
		q.RuleSetVersion = snap.Rules.Version()
	}

	catalog := snap.Upsells
	if catalog == nil {
		catalog = upsell.EmptyCatalog()
	}
	charges, err := catalog.Aggregate(req.Upsells, upsell.Context{
		Nights: s.Nights(),
		Guests: req.Guests,
		Sites:  1,
	})
	if err != nil {
		return nil, err
	}
	q.Upsells = charges.Lines
	q.UpsellTotal = charges.Total
	q.Warnings = charges.Warnings
	q.Total = q.Subtotal + q.UpsellTotal

	policy := snap.Deposit
	if policy == nil {
		policy = deposit.DefaultPolicy()
	}
	q.Deposit = policy.DueNow(deposit.Input{Total: q.Total, FirstNight: q.FirstNight()}, s.Arrival(), q.QuotedAt)

	return q, nil
}

// Rates prices each night of s for the snapshot's site without checking
// availability or party size.
func (a *Assembler) Rates(snap Snapshot, s stay.Stay) []Night {
	eval := pricing.NewEvaluator(snap.Rules, snap.Demand)
	base := snap.Class.BaseRate()

	nights := make([]Night, 0, s.Nights())
	for _, d := range s.Dates() {
		res := eval.NightlyRate(snap.Site, d, base)
		nights = append(nights, Night{
			Date:    d,
			Base:    res.Base,
			Rate:    res.Rate,
			Applied: orEmpty(res.Applied),
			Skipped: res.Skipped,
			Clamped: res.Clamped,
		})
	}
	return nights
}

func blockedWithin(s stay.Stay, blocked []time.Time) []time.Time {
	var out []time.Time
	for _, b := range blocked {
		if s.Contains(b) {
			out = append(out, stay.Day(b))
		}
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(out, func(a, b time.Time) bool { return a.Equal(b) })
}

func orEmpty(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

