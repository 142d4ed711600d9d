package upsell

import (
	"errors"
	"strings"

	"campbook/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidPricingType = errors.New("invalid upsell pricing type")
	ErrEmptyItemName      = errors.New("upsell name cannot be empty")
	ErrNegativeStock      = errors.New("stock cannot be negative")
)

type PricingType string

const (
	PricingFlat     PricingType = "flat"
	PricingPerNight PricingType = "per_night"
	PricingPerGuest PricingType = "per_guest"
	PricingPerSite  PricingType = "per_site"
)

func (p PricingType) IsValid() bool {
	switch p {
	case PricingFlat, PricingPerNight, PricingPerGuest, PricingPerSite:
		return true
	default:
		return false
	}
}

// Context is the stay shape upsell multipliers are taken from.
type Context struct {
	Nights int
	Guests int
	Sites  int
}

func (p PricingType) multiplier(ctx Context) int {
	switch p {
	case PricingPerNight:
		return ctx.Nights
	case PricingPerGuest:
		return ctx.Guests
	case PricingPerSite:
		return ctx.Sites
	default:
		return 1
	}
}

type Item struct {
	id               uuid.UUID
	name             string
	pricing          PricingType
	unitPrice        money.Cents
	inventoryTracked bool
	stock            int
}

func NewItem(id uuid.UUID, name string, pricing PricingType, unitPrice money.Cents, inventoryTracked bool, stock int) (*Item, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, ErrEmptyItemName
	case !pricing.IsValid():
		return nil, ErrInvalidPricingType
	case unitPrice < 0:
		return nil, money.ErrNegativeAmount
	case stock < 0:
		return nil, ErrNegativeStock
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Item{
		id:               id,
		name:             name,
		pricing:          pricing,
		unitPrice:        unitPrice,
		inventoryTracked: inventoryTracked,
		stock:            stock,
	}, nil
}

// Charge is the price of quantity units of the item for a stay.
func (i *Item) Charge(quantity int, ctx Context) money.Cents {
	return i.unitPrice.Mul(quantity * i.pricing.multiplier(ctx))
}

func (i *Item) ID() uuid.UUID          { return i.id }
func (i *Item) Name() string           { return i.name }
func (i *Item) Pricing() PricingType   { return i.pricing }
func (i *Item) UnitPrice() money.Cents { return i.unitPrice }
func (i *Item) InventoryTracked() bool { return i.inventoryTracked }
func (i *Item) Stock() int             { return i.stock }
