package upsell

import (
	"errors"
	"fmt"
	"slices"

	"campbook/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrUnknownItem         = errors.New("unknown upsell item")
	ErrDuplicateItem       = errors.New("duplicate upsell item")
	ErrInvalidQuantity     = errors.New("upsell quantity must be positive")
	ErrInsufficientStock   = errors.New("insufficient upsell stock")
	ErrBundleExceedsItems  = errors.New("bundle discount exceeds the price of its items")
	ErrUnknownBundleMember = errors.New("bundle references an unknown item")
)

type InsufficientStockError struct {
	ItemID    uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("upsell %s: requested %d, %d in stock", e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

const WarningBundleExceedsItems = "bundle_price_exceeds_items"

// ConfigurationWarning flags catalog data that could not be honored. The
// quote still succeeds using the safe fallback.
type ConfigurationWarning struct {
	Code     string    `json:"code"`
	BundleID uuid.UUID `json:"bundle_id"`
	Message  string    `json:"message"`
}

type Selection struct {
	ItemID   uuid.UUID
	Quantity int
}

type LineKind string

const (
	LineItem   LineKind = "item"
	LineBundle LineKind = "bundle"
)

type Line struct {
	Kind      LineKind    `json:"kind"`
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Pricing   PricingType `json:"pricing,omitempty"`
	Quantity  int         `json:"quantity"`
	UnitPrice money.Cents `json:"unit_price"`
	ItemIDs   []uuid.UUID `json:"item_ids,omitempty"`
	Discount  money.Cents `json:"discount"`
	Amount    money.Cents `json:"amount"`
}

type Charges struct {
	Lines    []Line
	Total    money.Cents
	Warnings []ConfigurationWarning
}

// Catalog is one campground's read-only set of upsell items and bundles.
type Catalog struct {
	items   map[uuid.UUID]*Item
	bundles []*Bundle
}

// NewCatalog validates bundle pricing against unit prices.
func NewCatalog(items []*Item, bundles []*Bundle) (*Catalog, error) {
	c, err := ReconstructCatalog(items, bundles)
	if err != nil {
		return nil, err
	}
	for _, b := range c.bundles {
		var sum money.Cents
		for _, id := range b.itemIDs {
			item, ok := c.items[id]
			if !ok {
				return nil, fmt.Errorf("%w: bundle %s item %s", ErrUnknownBundleMember, b.id, id)
			}
			sum += item.unitPrice
		}
		if b.discount.Apply(sum) < 0 {
			return nil, fmt.Errorf("%w: bundle %s", ErrBundleExceedsItems, b.id)
		}
	}
	return c, nil
}

// ReconstructCatalog indexes stored items and bundles without re-checking
// bundle pricing; Aggregate guards against bad data instead.
func ReconstructCatalog(items []*Item, bundles []*Bundle) (*Catalog, error) {
	c := &Catalog{items: make(map[uuid.UUID]*Item, len(items))}
	for _, it := range items {
		if _, dup := c.items[it.id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, it.id)
		}
		c.items[it.id] = it
	}
	c.bundles = slices.Clone(bundles)
	slices.SortFunc(c.bundles, func(a, b *Bundle) int {
		return slices.Compare(a.id[:], b.id[:])
	})
	return c, nil
}

func EmptyCatalog() *Catalog {
	return &Catalog{items: map[uuid.UUID]*Item{}}
}

func (c *Catalog) Item(id uuid.UUID) (*Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

func (c *Catalog) Items() []*Item {
	out := make([]*Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	slices.SortFunc(out, func(a, b *Item) int { return slices.Compare(a.id[:], b.id[:]) })
	return out
}

func (c *Catalog) Bundles() []*Bundle { return slices.Clone(c.bundles) }

type selected struct {
	item     *Item
	quantity int
	charge   money.Cents
	bundled  bool
}

// Aggregate prices the selected upsells for a stay. Bundles whose items are
// all selected replace those item lines with the bundle price.
func (c *Catalog) Aggregate(selections []Selection, ctx Context) (Charges, error) {
	picked, order, err := c.merge(selections, ctx)
	if err != nil {
		return Charges{}, err
	}

	var out Charges
	var bundleLines []Line
	for _, b := range c.bundles {
		line, warn, ok := bundleLine(b, picked)
		if warn != nil {
			out.Warnings = append(out.Warnings, *warn)
		}
		if ok {
			bundleLines = append(bundleLines, line)
		}
	}

	for _, id := range order {
		s := picked[id]
		if s.bundled {
			continue
		}
		out.Lines = append(out.Lines, Line{
			Kind:      LineItem,
			ID:        s.item.id,
			Name:      s.item.name,
			Pricing:   s.item.pricing,
			Quantity:  s.quantity,
			UnitPrice: s.item.unitPrice,
			Amount:    s.charge,
		})
	}
	out.Lines = append(out.Lines, bundleLines...)

	for _, l := range out.Lines {
		out.Total += l.Amount
	}
	return out, nil
}

func (c *Catalog) merge(selections []Selection, ctx Context) (map[uuid.UUID]*selected, []uuid.UUID, error) {
	picked := make(map[uuid.UUID]*selected, len(selections))
	var order []uuid.UUID
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: item %s", ErrInvalidQuantity, sel.ItemID)
		}
		item, ok := c.items[sel.ItemID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownItem, sel.ItemID)
		}
		s, seen := picked[sel.ItemID]
		if !seen {
			s = &selected{item: item}
			picked[sel.ItemID] = s
			order = append(order, sel.ItemID)
		}
		s.quantity += sel.Quantity
	}

	// stock is the configured count; live holds do not draw it down
	for _, id := range order {
		s := picked[id]
		if s.item.inventoryTracked && s.quantity > s.item.stock {
			return nil, nil, &InsufficientStockError{ItemID: id, Requested: s.quantity, Available: s.item.stock}
		}
		s.charge = s.item.Charge(s.quantity, ctx)
	}
	return picked, order, nil
}

func bundleLine(b *Bundle, picked map[uuid.UUID]*selected) (Line, *ConfigurationWarning, bool) {
	var sum money.Cents
	for _, id := range b.itemIDs {
		s, ok := picked[id]
		if !ok || s.bundled {
			return Line{}, nil, false
		}
		sum += s.charge
	}

	price := b.discount.Apply(sum)
	if price < 0 || price > sum {
		return Line{}, &ConfigurationWarning{
			Code:     WarningBundleExceedsItems,
			BundleID: b.id,
			Message:  fmt.Sprintf("bundle %q prices at %s against %s for its items; items charged separately",
				b.name, price, sum),
		}, false
	}

	for _, id := range b.itemIDs {
		picked[id].bundled = true
	}
	return Line{
		Kind:      LineBundle,
		ID:        b.id,
		Name:      b.name,
		Quantity:  1,
		UnitPrice: sum,
		ItemIDs:   b.ItemIDs(),
		Discount:  sum - price,
		Amount:    price,
	}, nil, true
}
