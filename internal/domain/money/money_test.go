package money_test

import (
	"math/big"
	"testing"

	"campbook/internal/domain/money"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		name string
		in   *big.Rat
		want money.Cents
	}{
		{name: "exact", in: big.NewRat(5700, 1), want: 5700},
		{name: "below half", in: big.NewRat(10049, 100), want: 100},
		{name: "exact half rounds up", in: big.NewRat(201, 2), want: 101},
		{name: "above half", in: big.NewRat(10051, 100), want: 101},
		{name: "third", in: big.NewRat(1000, 3), want: 333},
		{name: "two thirds", in: big.NewRat(2000, 3), want: 667},
		{name: "zero", in: new(big.Rat), want: 0},
		{name: "negative half goes away from zero", in: big.NewRat(-201, 2), want: -101},
		{name: "negative below half", in: big.NewRat(-10049, 100), want: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.RoundHalfUp(tt.in))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, money.Cents(5700), money.Cents(19000).Percent(3000))
	// 33.33% of $0.05 is 1.6665 cents
	assert.Equal(t, money.Cents(2), money.Cents(5).Percent(3333))
	assert.Equal(t, money.Cents(0), money.Cents(0).Percent(5000))
	assert.Equal(t, money.Cents(19000), money.Cents(19000).Percent(money.FullBps))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "190.00", money.FromUnits(190).String())
	assert.Equal(t, "0.05", money.Cents(5).String())
	assert.Equal(t, "-12.34", money.Cents(-1234).String())
	assert.Equal(t, "30.00%", money.Bps(3000).String())
	assert.Equal(t, "12.50%", money.Bps(1250).String())
}

func TestBpsRange(t *testing.T) {
	assert.True(t, money.Bps(0).IsValidRatio())
	assert.True(t, money.FullBps.IsValidRatio())
	assert.False(t, money.Bps(-1).IsValidRatio())
	assert.False(t, money.Bps(10001).IsValidRatio())
}
