package converter

import (
	"strings"
	"time"

	"campbook/internal/domain/deposit"
	"campbook/internal/domain/money"
	"campbook/internal/domain/pricing"
	"campbook/internal/domain/site"
	"campbook/internal/domain/stay"
	"campbook/internal/domain/upsell"
	"campbook/internal/pkg/errs"
	"campbook/internal/pkg/ptr"

	"github.com/google/uuid"
)

const yearlyLayout = "01-02"

// CatalogDoc is the JSON form of the campground configuration, used for
// fixtures and for seeding the postgres catalog.
type CatalogDoc struct {
	Campgrounds []CampgroundDoc `json:"campgrounds"`
}

type CampgroundDoc struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	Classes []ClassDoc  `json:"classes"`
	Sites   []SiteDoc   `json:"sites"`
	Rules   []RuleDoc   `json:"rules"`
	Deposit *DepositDoc `json:"deposit,omitempty"`
	Items   []ItemDoc   `json:"items,omitempty"`
	Bundles []BundleDoc `json:"bundles,omitempty"`
}

type ClassDoc struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	BaseRate     money.Cents `json:"base_rate"`
	MaxOccupancy int         `json:"max_occupancy"`
	Amenities    []string    `json:"amenities,omitempty"`
}

type SiteDoc struct {
	ID      uuid.UUID `json:"id"`
	ClassID uuid.UUID `json:"class_id"`
	Name    string    `json:"name"`
	Active  bool      `json:"active"`
}

type RuleDoc struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	SiteClassID *uuid.UUID    `json:"site_class_id,omitempty"`
	Predicate   PredicateDoc  `json:"predicate"`
	Mode        string        `json:"mode"`
	Priority    int           `json:"priority"`
	Adjustment  AdjustmentDoc `json:"adjustment"`
	MinRate     *money.Cents  `json:"min_rate,omitempty"`
	MaxRate     *money.Cents  `json:"max_rate,omitempty"`
}

type AdjustmentDoc struct {
	Kind       string      `json:"kind"`
	Amount     money.Cents `json:"amount,omitempty"`
	PercentBps money.Bps   `json:"percent_bps,omitempty"`
}

// PredicateDoc is a tagged union keyed by Type.
type PredicateDoc struct {
	Type            string     `json:"type"`
	Name            string     `json:"name,omitempty"`
	Window          *WindowDoc `json:"window,omitempty"`
	Days            []string   `json:"days,omitempty"`
	Dates           []string   `json:"dates,omitempty"`
	MinOccupancyBps money.Bps  `json:"min_occupancy_bps,omitempty"`
}

// WindowDoc dates are YYYY-MM-DD, or MM-DD when Yearly.
type WindowDoc struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Yearly bool   `json:"yearly,omitempty"`
}

type DepositDoc struct {
	Strategy   string      `json:"strategy"`
	PercentBps money.Bps   `json:"percent_bps,omitempty"`
	Amount     money.Cents `json:"amount,omitempty"`
	MinAmount  money.Cents `json:"min_amount,omitempty"`
	MaxAmount  money.Cents `json:"max_amount,omitempty"`
	Timing     TimingDoc   `json:"timing"`
}

type TimingDoc struct {
	Kind       string `json:"kind"`
	DaysBefore int    `json:"days_before,omitempty"`
	Date       string `json:"date,omitempty"`
}

type ItemDoc struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	Pricing          string      `json:"pricing"`
	UnitPrice        money.Cents `json:"unit_price"`
	InventoryTracked bool        `json:"inventory_tracked,omitempty"`
	Stock            int         `json:"stock,omitempty"`
}

type BundleDoc struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	ItemIDs       []uuid.UUID  `json:"item_ids"`
	AmountOff     *money.Cents `json:"amount_off,omitempty"`
	PercentOffBps *money.Bps   `json:"percent_off_bps,omitempty"`
}

func ClassFromDoc(campgroundID uuid.UUID, d ClassDoc) (*site.Class, error) {
	c, err := site.NewClass(d.ID, campgroundID, d.Name, d.BaseRate, d.MaxOccupancy, d.Amenities)
	if err != nil {
		return nil, errs.Wrapf(err, "class %s", d.ID)
	}
	return c, nil
}

func ClassToDoc(c *site.Class) ClassDoc {
	return ClassDoc{
		ID:           c.ID(),
		Name:         c.Name(),
		BaseRate:     c.BaseRate(),
		MaxOccupancy: c.MaxOccupancy(),
		Amenities:    c.Amenities(),
	}
}

func SiteFromDoc(class *site.Class, d SiteDoc) (*site.Site, error) {
	s, err := site.NewSite(d.ID, class, d.Name, d.Active)
	if err != nil {
		return nil, errs.Wrapf(err, "site %s", d.ID)
	}
	return s, nil
}

func RuleFromDoc(campgroundID uuid.UUID, d RuleDoc) (*pricing.Rule, error) {
	pred, err := PredicateFromDoc(d.Predicate)
	if err != nil {
		return nil, errs.Wrapf(err, "rule %s", d.ID)
	}
	scope := pricing.CampgroundScope()
	if d.SiteClassID != nil {
		scope = pricing.ClassScope(*d.SiteClassID)
	}
	r, err := pricing.NewRule(pricing.RuleParams{
		ID:           d.ID,
		CampgroundID: campgroundID,
		Name:         d.Name,
		Scope:        scope,
		Predicate:    pred,
		Mode:         pricing.Mode(d.Mode),
		Priority:     d.Priority,
		Adjustment: pricing.Adjustment{
			Kind:    pricing.AdjustmentKind(d.Adjustment.Kind),
			Amount:  d.Adjustment.Amount,
			Percent: d.Adjustment.PercentBps,
		},
		MinRate: d.MinRate,
		MaxRate: d.MaxRate,
	})
	if err != nil {
		return nil, errs.Wrapf(err, "rule %s", d.ID)
	}
	return r, nil
}

func RuleToDoc(r *pricing.Rule) RuleDoc {
	d := RuleDoc{
		ID:        r.ID(),
		Name:      r.Name(),
		Predicate: PredicateToDoc(r.Predicate()),
		Mode:      string(r.Mode()),
		Priority:  r.Priority(),
		Adjustment: AdjustmentDoc{
			Kind:       string(r.Adjustment().Kind),
			Amount:     r.Adjustment().Amount,
			PercentBps: r.Adjustment().Percent,
		},
		MinRate: r.MinRate(),
		MaxRate: r.MaxRate(),
	}
	if sc := r.Scope(); sc.Kind == pricing.ScopeSiteClass {
		d.SiteClassID = ptr.Of(sc.SiteClassID)
	}
	return d
}

func PredicateFromDoc(d PredicateDoc) (pricing.Predicate, error) {
	switch pricing.Kind(d.Type) {
	case pricing.KindSeason:
		w, err := windowFromDoc(d.Window)
		if err != nil {
			return nil, err
		}
		return pricing.SeasonPredicate{Window: w}, nil
	case pricing.KindWeekend:
		days := make([]time.Weekday, 0, len(d.Days))
		for _, name := range d.Days {
			wd, err := parseWeekday(name)
			if err != nil {
				return nil, err
			}
			days = append(days, wd)
		}
		return pricing.WeekendPredicate{Days: days}, nil
	case pricing.KindHoliday:
		dates := make([]time.Time, 0, len(d.Dates))
		for _, s := range d.Dates {
			t, err := time.Parse(stay.DateLayout, s)
			if err != nil {
				return nil, errs.Wrapf(err, "holiday %q", d.Name)
			}
			dates = append(dates, t)
		}
		return pricing.HolidayPredicate{Name: d.Name, Dates: dates}, nil
	case pricing.KindEvent:
		w, err := windowFromDoc(d.Window)
		if err != nil {
			return nil, err
		}
		return pricing.EventPredicate{Name: d.Name, Window: w}, nil
	case pricing.KindDemand:
		p := pricing.DemandPredicate{MinOccupancy: d.MinOccupancyBps}
		if d.Window != nil {
			w, err := windowFromDoc(d.Window)
			if err != nil {
				return nil, err
			}
			p.Window = &w
		}
		return p, nil
	default:
		return nil, errs.Wrapf(pricing.ErrUnknownPredicate, "type %q", d.Type)
	}
}

func PredicateToDoc(p pricing.Predicate) PredicateDoc {
	d := PredicateDoc{Type: string(p.Kind())}
	switch v := p.(type) {
	case pricing.SeasonPredicate:
		d.Window = windowToDoc(v.Window)
	case pricing.WeekendPredicate:
		for _, wd := range v.Days {
			d.Days = append(d.Days, strings.ToLower(wd.String()))
		}
	case pricing.HolidayPredicate:
		d.Name = v.Name
		for _, t := range v.Dates {
			d.Dates = append(d.Dates, t.Format(stay.DateLayout))
		}
	case pricing.EventPredicate:
		d.Name = v.Name
		d.Window = windowToDoc(v.Window)
	case pricing.DemandPredicate:
		d.MinOccupancyBps = v.MinOccupancy
		if v.Window != nil {
			d.Window = windowToDoc(*v.Window)
		}
	}
	return d
}

func windowFromDoc(d *WindowDoc) (pricing.Window, error) {
	if d == nil {
		return pricing.Window{}, errs.Wrap(pricing.ErrInvalidWindow, "window is required")
	}
	if d.Yearly {
		from, err := time.Parse(yearlyLayout, d.From)
		if err != nil {
			return pricing.Window{}, errs.Wrapf(err, "yearly window from %q", d.From)
		}
		to, err := time.Parse(yearlyLayout, d.To)
		if err != nil {
			return pricing.Window{}, errs.Wrapf(err, "yearly window to %q", d.To)
		}
		return pricing.NewYearlyWindow(from.Month(), from.Day(), to.Month(), to.Day()), nil
	}
	from, err := time.Parse(stay.DateLayout, d.From)
	if err != nil {
		return pricing.Window{}, errs.Wrapf(err, "window from %q", d.From)
	}
	to, err := time.Parse(stay.DateLayout, d.To)
	if err != nil {
		return pricing.Window{}, errs.Wrapf(err, "window to %q", d.To)
	}
	return pricing.NewWindow(from, to)
}

func windowToDoc(w pricing.Window) *WindowDoc {
	layout := stay.DateLayout
	if w.Yearly {
		layout = yearlyLayout
	}
	return &WindowDoc{From: w.From.Format(layout), To: w.To.Format(layout), Yearly: w.Yearly}
}

func parseWeekday(name string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), name) || strings.EqualFold(wd.String()[:3], name) {
			return wd, nil
		}
	}
	return 0, errs.Wrapf(pricing.ErrNoWeekdays, "unknown weekday %q", name)
}

// PolicyFromDoc returns the default full-payment policy for a nil doc.
func PolicyFromDoc(d *DepositDoc) (*deposit.Policy, error) {
	if d == nil {
		return deposit.DefaultPolicy(), nil
	}
	timing := deposit.Timing{Kind: deposit.TimingKind(d.Timing.Kind), DaysBefore: d.Timing.DaysBefore}
	if d.Timing.Date != "" {
		t, err := time.Parse(stay.DateLayout, d.Timing.Date)
		if err != nil {
			return nil, errs.Wrapf(err, "deposit due date %q", d.Timing.Date)
		}
		timing.Date = t
	}
	p, err := deposit.NewPolicy(deposit.PolicyParams{
		Strategy:  deposit.Strategy(d.Strategy),
		Percent:   d.PercentBps,
		Amount:    d.Amount,
		MinAmount: d.MinAmount,
		MaxAmount: d.MaxAmount,
		Timing:    timing,
	})
	if err != nil {
		return nil, errs.Wrap(err, "deposit policy")
	}
	return p, nil
}

func PolicyToDoc(p *deposit.Policy) *DepositDoc {
	t := p.Timing()
	d := &DepositDoc{
		Strategy:   string(p.Strategy()),
		PercentBps: p.Percent(),
		Amount:     p.Amount(),
		MinAmount:  p.MinAmount(),
		MaxAmount:  p.MaxAmount(),
		Timing:     TimingDoc{Kind: string(t.Kind), DaysBefore: t.DaysBefore},
	}
	if !t.Date.IsZero() {
		d.Timing.Date = t.Date.Format(stay.DateLayout)
	}
	return d
}

func ItemFromDoc(d ItemDoc) (*upsell.Item, error) {
	it, err := upsell.NewItem(d.ID, d.Name, upsell.PricingType(d.Pricing), d.UnitPrice, d.InventoryTracked, d.Stock)
	if err != nil {
		return nil, errs.Wrapf(err, "upsell item %s", d.ID)
	}
	return it, nil
}

func ItemToDoc(it *upsell.Item) ItemDoc {
	return ItemDoc{
		ID:               it.ID(),
		Name:             it.Name(),
		Pricing:          string(it.Pricing()),
		UnitPrice:        it.UnitPrice(),
		InventoryTracked: it.InventoryTracked(),
		Stock:            it.Stock(),
	}
}

func BundleFromDoc(d BundleDoc) (*upsell.Bundle, error) {
	discount, err := upsell.NewDiscount(d.AmountOff, d.PercentOffBps)
	if err != nil {
		return nil, errs.Wrapf(err, "bundle %s", d.ID)
	}
	b, err := upsell.NewBundle(d.ID, d.Name, d.ItemIDs, discount)
	if err != nil {
		return nil, errs.Wrapf(err, "bundle %s", d.ID)
	}
	return b, nil
}

func BundleToDoc(b *upsell.Bundle) BundleDoc {
	d := BundleDoc{ID: b.ID(), Name: b.Name(), ItemIDs: b.ItemIDs()}
	switch disc := b.Discount(); {
	case disc.IsFixed():
		d.AmountOff = ptr.Of(disc.AmountOff())
	case disc.IsPercentage():
		d.PercentOffBps = ptr.Of(disc.PercentOff())
	}
	return d
}

// UpsellCatalogFromDocs validates bundle pricing against the item prices.
func UpsellCatalogFromDocs(items []ItemDoc, bundles []BundleDoc) (*upsell.Catalog, error) {
	its := make([]*upsell.Item, 0, len(items))
	for _, d := range items {
		it, err := ItemFromDoc(d)
		if err != nil {
			return nil, err
		}
		its = append(its, it)
	}
	bs := make([]*upsell.Bundle, 0, len(bundles))
	for _, d := range bundles {
		b, err := BundleFromDoc(d)
		if err != nil {
			return nil, err
		}
		bs = append(bs, b)
	}
	return upsell.NewCatalog(its, bs)
}
