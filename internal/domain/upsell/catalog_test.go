package upsell_test

import (
	"testing"

	"campbook/internal/domain/money"
	"campbook/internal/domain/upsell"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type items struct {
	firewood  *upsell.Item
	kayak     *upsell.Item
	breakfast *upsell.Item
	parking   *upsell.Item
}

func newItems(t *testing.T) items {
	t.Helper()
	mk := func(name string, pricing upsell.PricingType, price money.Cents, tracked bool, stock int) *upsell.Item {
		it, err := upsell.NewItem(uuid.New(), name, pricing, price, tracked, stock)
		require.NoError(t, err)
		return it
	}
	return items{
		firewood:  mk("Firewood", upsell.PricingFlat, 800, false, 0),
		kayak:     mk("Kayak rental", upsell.PricingPerNight, 2500, true, 3),
		breakfast: mk("Breakfast", upsell.PricingPerGuest, 1200, false, 0),
		parking:   mk("Extra vehicle", upsell.PricingPerSite, 1000, false, 0),
	}
}

func (i items) all() []*upsell.Item {
	return []*upsell.Item{i.firewood, i.kayak, i.breakfast, i.parking}
}

var stayCtx = upsell.Context{Nights: 3, Guests: 4, Sites: 2}

func TestAggregateItems(t *testing.T) {
	it := newItems(t)
	catalog, err := upsell.NewCatalog(it.all(), nil)
	require.NoError(t, err)

	charges, err := catalog.Aggregate([]upsell.Selection{
		{ItemID: it.firewood.ID(), Quantity: 2},
		{ItemID: it.kayak.ID(), Quantity: 1},
		{ItemID: it.breakfast.ID(), Quantity: 1},
		{ItemID: it.parking.ID(), Quantity: 1},
	}, stayCtx)
	require.NoError(t, err)

	amounts := map[uuid.UUID]money.Cents{}
	for _, l := range charges.Lines {
		assert.Equal(t, upsell.LineItem, l.Kind)
		amounts[l.ID] = l.Amount
	}
	want := map[uuid.UUID]money.Cents{
		it.firewood.ID():  1600, // flat x quantity
		it.kayak.ID():     7500, // per night
		it.breakfast.ID(): 4800, // per guest
		it.parking.ID():   2000, // per site
	}
	if diff := cmp.Diff(want, amounts); diff != "" {
		t.Errorf("line amounts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, money.Cents(15900), charges.Total)
	assert.Empty(t, charges.Warnings)
}

func TestAggregateMergesAndValidates(t *testing.T) {
	it := newItems(t)
	catalog, err := upsell.NewCatalog(it.all(), nil)
	require.NoError(t, err)

	t.Run("repeated selections merge", func(t *testing.T) {
		charges, err := catalog.Aggregate([]upsell.Selection{
			{ItemID: it.firewood.ID(), Quantity: 1},
			{ItemID: it.firewood.ID(), Quantity: 2},
		}, stayCtx)
		require.NoError(t, err)
		require.Len(t, charges.Lines, 1)
		assert.Equal(t, 3, charges.Lines[0].Quantity)
		assert.Equal(t, money.Cents(2400), charges.Total)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := catalog.Aggregate([]upsell.Selection{{ItemID: uuid.New(), Quantity: 1}}, stayCtx)
		assert.ErrorIs(t, err, upsell.ErrUnknownItem)
	})

	t.Run("non positive quantity", func(t *testing.T) {
		_, err := catalog.Aggregate([]upsell.Selection{{ItemID: it.firewood.ID(), Quantity: 0}}, stayCtx)
		assert.ErrorIs(t, err, upsell.ErrInvalidQuantity)
	})

	t.Run("tracked stock", func(t *testing.T) {
		_, err := catalog.Aggregate([]upsell.Selection{{ItemID: it.kayak.ID(), Quantity: 4}}, stayCtx)
		require.ErrorIs(t, err, upsell.ErrInsufficientStock)

		var stockErr *upsell.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 3, stockErr.Available)
		assert.Equal(t, 4, stockErr.Requested)
	})

	t.Run("stock is checked per aggregation", func(t *testing.T) {
		full := []upsell.Selection{{ItemID: it.kayak.ID(), Quantity: 3}}
		for range 2 {
			_, err := catalog.Aggregate(full, stayCtx)
			require.NoError(t, err)
		}
	})

	t.Run("nothing selected", func(t *testing.T) {
		charges, err := catalog.Aggregate(nil, stayCtx)
		require.NoError(t, err)
		assert.Empty(t, charges.Lines)
		assert.Equal(t, money.Zero, charges.Total)
	})
}

func TestAggregateBundles(t *testing.T) {
	it := newItems(t)
	tenOff, err := upsell.NewPercentageDiscount(1000)
	require.NoError(t, err)
	adventure, err := upsell.NewBundle(uuid.New(), "Adventure pack", []uuid.UUID{it.kayak.ID(), it.breakfast.ID()}, tenOff)
	require.NoError(t, err)

	catalog, err := upsell.NewCatalog(it.all(), []*upsell.Bundle{adventure})
	require.NoError(t, err)

	t.Run("substitutes when all items are selected", func(t *testing.T) {
		charges, err := catalog.Aggregate([]upsell.Selection{
			{ItemID: it.kayak.ID(), Quantity: 1},
			{ItemID: it.firewood.ID(), Quantity: 1},
			{ItemID: it.breakfast.ID(), Quantity: 1},
		}, stayCtx)
		require.NoError(t, err)
		require.Len(t, charges.Lines, 2)

		assert.Equal(t, it.firewood.ID(), charges.Lines[0].ID)
		bundle := charges.Lines[1]
		assert.Equal(t, upsell.LineBundle, bundle.Kind)
		assert.Equal(t, money.Cents(12300), bundle.UnitPrice)
		assert.Equal(t, money.Cents(1230), bundle.Discount)
		assert.Equal(t, money.Cents(11070), bundle.Amount)
		assert.ElementsMatch(t, []uuid.UUID{it.kayak.ID(), it.breakfast.ID()}, bundle.ItemIDs)
		assert.Equal(t, money.Cents(800+11070), charges.Total)
	})

	t.Run("partial selection keeps item prices", func(t *testing.T) {
		charges, err := catalog.Aggregate([]upsell.Selection{{ItemID: it.kayak.ID(), Quantity: 1}}, stayCtx)
		require.NoError(t, err)
		require.Len(t, charges.Lines, 1)
		assert.Equal(t, upsell.LineItem, charges.Lines[0].Kind)
		assert.Equal(t, money.Cents(7500), charges.Total)
	})

	t.Run("misconfigured bundle falls back with a warning", func(t *testing.T) {
		huge, err := upsell.NewFixedDiscount(money.FromUnits(500))
		require.NoError(t, err)
		broken, err := upsell.NewBundle(uuid.New(), "Broken", []uuid.UUID{it.firewood.ID(), it.parking.ID()}, huge)
		require.NoError(t, err)

		_, err = upsell.NewCatalog(it.all(), []*upsell.Bundle{broken})
		require.ErrorIs(t, err, upsell.ErrBundleExceedsItems)

		stored, err := upsell.ReconstructCatalog(it.all(), []*upsell.Bundle{broken})
		require.NoError(t, err)
		charges, err := stored.Aggregate([]upsell.Selection{
			{ItemID: it.firewood.ID(), Quantity: 1},
			{ItemID: it.parking.ID(), Quantity: 1},
		}, stayCtx)
		require.NoError(t, err)

		assert.Equal(t, money.Cents(800+2000), charges.Total)
		require.Len(t, charges.Warnings, 1)
		assert.Equal(t, upsell.WarningBundleExceedsItems, charges.Warnings[0].Code)
		assert.Equal(t, broken.ID(), charges.Warnings[0].BundleID)
	})
}

func TestDiscount(t *testing.T) {
	_, err := upsell.NewFixedDiscount(-1)
	assert.ErrorIs(t, err, upsell.ErrInvalidDiscountAmount)
	_, err = upsell.NewPercentageDiscount(10001)
	assert.ErrorIs(t, err, upsell.ErrInvalidDiscountPercent)

	amount := money.Cents(100)
	pct := money.Bps(500)
	_, err = upsell.NewDiscount(&amount, &pct)
	assert.ErrorIs(t, err, upsell.ErrAmbiguousDiscount)

	none, err := upsell.NewDiscount(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(1000), none.Apply(1000))

	fixed, err := upsell.NewDiscount(&amount, nil)
	require.NoError(t, err)
	assert.True(t, fixed.IsFixed())
	assert.Equal(t, money.Cents(900), fixed.Apply(1000))
}

func TestNewBundle(t *testing.T) {
	id := uuid.New()
	_, err := upsell.NewBundle(uuid.New(), "Solo", []uuid.UUID{id, id}, upsell.Discount{})
	assert.ErrorIs(t, err, upsell.ErrBundleTooSmall)

	_, err = upsell.NewItem(uuid.New(), "Bad", "per_hour", 100, false, 0)
	assert.ErrorIs(t, err, upsell.ErrInvalidPricingType)
}
