package upsell

import (
	"errors"
	"strings"

	"campbook/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidDiscountAmount  = errors.New("discount amount cannot be negative")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
	ErrAmbiguousDiscount      = errors.New("discount must be either an amount or a percentage")
	ErrBundleTooSmall         = errors.New("bundle needs at least two items")
)

type Discount struct {
	amountOff  *money.Cents
	percentOff *money.Bps
}

func NewFixedDiscount(amountOff money.Cents) (Discount, error) {
	if amountOff < 0 {
		return Discount{}, ErrInvalidDiscountAmount
	}
	return Discount{amountOff: &amountOff}, nil
}

func NewPercentageDiscount(percentOff money.Bps) (Discount, error) {
	if !percentOff.IsValidRatio() {
		return Discount{}, ErrInvalidDiscountPercent
	}
	return Discount{percentOff: &percentOff}, nil
}

func NewDiscount(amountOff *money.Cents, percentOff *money.Bps) (Discount, error) {
	switch {
	case amountOff != nil && percentOff != nil:
		return Discount{}, ErrAmbiguousDiscount
	case amountOff != nil:
		return NewFixedDiscount(*amountOff)
	case percentOff != nil:
		return NewPercentageDiscount(*percentOff)
	default:
		return Discount{}, nil
	}
}

func (d Discount) IsPercentage() bool { return d.percentOff != nil }
func (d Discount) IsFixed() bool      { return d.amountOff != nil }

func (d Discount) AmountOff() money.Cents {
	if d.amountOff != nil {
		return *d.amountOff
	}
	return 0
}

func (d Discount) PercentOff() money.Bps {
	if d.percentOff != nil {
		return *d.percentOff
	}
	return 0
}

// Apply returns sum minus the discount. The result may be negative when an
// amount discount exceeds sum; callers treat that as a misconfiguration.
func (d Discount) Apply(sum money.Cents) money.Cents {
	switch {
	case d.amountOff != nil:
		return sum - *d.amountOff
	case d.percentOff != nil:
		return sum - sum.Percent(*d.percentOff)
	default:
		return sum
	}
}

// Bundle prices a group of items together when all of them are selected.
type Bundle struct {
	id       uuid.UUID
	name     string
	itemIDs  []uuid.UUID
	discount Discount
}

func NewBundle(id uuid.UUID, name string, itemIDs []uuid.UUID, discount Discount) (*Bundle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyItemName
	}
	ids := uniqueIDs(itemIDs)
	if len(ids) < 2 {
		return nil, ErrBundleTooSmall
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Bundle{id: id, name: name, itemIDs: ids, discount: discount}, nil
}

func (b *Bundle) ID() uuid.UUID        { return b.id }
func (b *Bundle) Name() string         { return b.name }
func (b *Bundle) Discount() Discount   { return b.discount }
func (b *Bundle) ItemIDs() []uuid.UUID { return append([]uuid.UUID(nil), b.itemIDs...) }

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
