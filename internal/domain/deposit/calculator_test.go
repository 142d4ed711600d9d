package deposit_test

import (
	"testing"
	"time"

	"campbook/internal/domain/deposit"
	"campbook/internal/domain/money"
	"campbook/internal/domain/stay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now     = time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)
	arrival = stay.Date(2025, 7, 11)
	quote   = deposit.Input{Total: money.FromUnits(190), FirstNight: money.FromUnits(50)}
)

func mustPolicy(t *testing.T, p deposit.PolicyParams) *deposit.Policy {
	t.Helper()
	policy, err := deposit.NewPolicy(p)
	require.NoError(t, err)
	return policy
}

func TestDueNowAmount(t *testing.T) {
	tests := []struct {
		name    string
		params  deposit.PolicyParams
		in      deposit.Input
		want    money.Cents
		clamped bool
	}{
		{
			name:   "percentage within bounds",
			params: deposit.PolicyParams{Strategy: deposit.StrategyPercentage, Percent: 3000, MinAmount: 2500, MaxAmount: 20000},
			in:     quote,
			want:   money.FromUnits(57),
		},
		{
			name:    "percentage above max is clamped down",
			params:  deposit.PolicyParams{Strategy: deposit.StrategyPercentage, Percent: 5000, MaxAmount: 8000},
			in:      quote,
			want:    money.FromUnits(80),
			clamped: true,
		},
		{
			name:    "percentage below min is raised",
			params:  deposit.PolicyParams{Strategy: deposit.StrategyPercentage, Percent: 1000, MinAmount: 2500},
			in:      quote,
			want:    money.FromUnits(25),
			clamped: true,
		},
		{
			name:   "percentage rounds half up",
			params: deposit.PolicyParams{Strategy: deposit.StrategyPercentage, Percent: 3333},
			in:     deposit.Input{Total: 15},
			want:   5,
		},
		{
			name:   "first night",
			params: deposit.PolicyParams{Strategy: deposit.StrategyFirstNight},
			in:     quote,
			want:   money.FromUnits(50),
		},
		{
			name:   "fixed",
			params: deposit.PolicyParams{Strategy: deposit.StrategyFixed, Amount: money.FromUnits(100)},
			in:     quote,
			want:   money.FromUnits(100),
		},
		{
			name:    "fixed above total is clamped to the total",
			params:  deposit.PolicyParams{Strategy: deposit.StrategyFixed, Amount: money.FromUnits(500)},
			in:      quote,
			want:    money.FromUnits(190),
			clamped: true,
		},
		{
			name:    "min above total still never exceeds the total",
			params:  deposit.PolicyParams{Strategy: deposit.StrategyFirstNight, MinAmount: money.FromUnits(300)},
			in:      quote,
			want:    money.FromUnits(190),
			clamped: true,
		},
		{
			name:   "full",
			params: deposit.PolicyParams{Strategy: deposit.StrategyFull},
			in:     quote,
			want:   money.FromUnits(190),
		},
		{
			name:    "full with max",
			params:  deposit.PolicyParams{Strategy: deposit.StrategyFull, MaxAmount: money.FromUnits(150)},
			in:      quote,
			want:    money.FromUnits(150),
			clamped: true,
		},
		{
			name:   "zero total",
			params: deposit.PolicyParams{Strategy: deposit.StrategyFull},
			in:     deposit.Input{},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := mustPolicy(t, tt.params).DueNow(tt.in, arrival, now)
			assert.Equal(t, tt.want, due.Amount)
			assert.Equal(t, tt.in.Total-tt.want, due.Balance)
			assert.Equal(t, tt.clamped, due.Clamped)
			assert.Equal(t, tt.params.Strategy, due.Strategy)
		})
	}
}

func TestDueNowTiming(t *testing.T) {
	tests := []struct {
		name   string
		timing deposit.Timing
		now    time.Time
		want   time.Time
	}{
		{name: "at booking", timing: deposit.AtBooking(), now: now, want: now},
		{name: "default timing is at booking", timing: deposit.Timing{}, now: now, want: now},
		{name: "days before arrival", timing: deposit.DaysBeforeArrival(14), now: now, want: stay.Date(2025, 6, 27)},
		{name: "days before arrival already passed", timing: deposit.DaysBeforeArrival(60), now: now, want: now},
		{name: "fixed date", timing: deposit.OnDate(stay.Date(2025, 6, 15)), now: now, want: stay.Date(2025, 6, 15)},
		{name: "fixed date in the past", timing: deposit.OnDate(stay.Date(2025, 5, 1)), now: now, want: now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := mustPolicy(t, deposit.PolicyParams{Strategy: deposit.StrategyFull, Timing: tt.timing})
			due := policy.DueNow(quote, arrival, tt.now)
			assert.Equal(t, tt.want, due.DueAt)
			assert.Equal(t, quote.Total, due.Amount, "timing never changes the amount")
		})
	}
}

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		name   string
		params deposit.PolicyParams
		errIs  error
	}{
		{name: "unknown strategy", params: deposit.PolicyParams{Strategy: "half"}, errIs: deposit.ErrInvalidStrategy},
		{name: "percent over 100", params: deposit.PolicyParams{Strategy: deposit.StrategyPercentage, Percent: 10001}, errIs: deposit.ErrInvalidPercent},
		{name: "negative amount", params: deposit.PolicyParams{Strategy: deposit.StrategyFixed, Amount: -1}, errIs: money.ErrNegativeAmount},
		{name: "min above max", params: deposit.PolicyParams{Strategy: deposit.StrategyFull, MinAmount: 500, MaxAmount: 100}, errIs: deposit.ErrInvalidBounds},
		{name: "negative days", params: deposit.PolicyParams{Strategy: deposit.StrategyFull, Timing: deposit.DaysBeforeArrival(-1)}, errIs: deposit.ErrInvalidTiming},
		{name: "fixed date without date", params: deposit.PolicyParams{Strategy: deposit.StrategyFull, Timing: deposit.Timing{Kind: deposit.TimingFixedDate}}, errIs: deposit.ErrInvalidTiming},
		{name: "unknown timing", params: deposit.PolicyParams{Strategy: deposit.StrategyFull, Timing: deposit.Timing{Kind: "monthly"}}, errIs: deposit.ErrInvalidTiming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := deposit.NewPolicy(tt.params)
			assert.ErrorIs(t, err, tt.errIs)
		})
	}

	t.Run("default policy collects everything now", func(t *testing.T) {
		due := deposit.DefaultPolicy().DueNow(quote, arrival, now)
		assert.Equal(t, quote.Total, due.Amount)
		assert.Equal(t, money.Zero, due.Balance)
		assert.Equal(t, now, due.DueAt)
	})
}
