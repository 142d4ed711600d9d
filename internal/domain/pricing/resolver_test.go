package pricing_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"campbook/internal/domain/money"
	"campbook/internal/domain/pricing"
	"campbook/internal/domain/stay"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	f := newFixture(t)
	base := money.FromUnits(50)

	t.Run("override short-circuits later rules", func(t *testing.T) {
		override := f.rule(t, f.params("flat $50", pricing.ModeOverride, 1, pricing.Fixed(5000)))
		additive := f.rule(t, f.params("+$10", pricing.ModeAdditive, 2, pricing.Fixed(1000)))

		res := pricing.Resolve(money.FromUnits(80), []*pricing.Rule{override, additive})
		assert.Equal(t, money.FromUnits(50), res.Rate)
		assert.Equal(t, []uuid.UUID{override.ID()}, res.Applied)
		assert.Equal(t, []uuid.UUID{additive.ID()}, res.Skipped)
	})

	t.Run("override replaces what came before it", func(t *testing.T) {
		additive := f.rule(t, f.params("+$10", pricing.ModeAdditive, 1, pricing.Fixed(1000)))
		override := f.rule(t, f.params("flat $45", pricing.ModeOverride, 2, pricing.Fixed(4500)))

		res := pricing.Resolve(base, []*pricing.Rule{additive, override})
		assert.Equal(t, money.FromUnits(45), res.Rate)
		assert.Equal(t, []uuid.UUID{additive.ID(), override.ID()}, res.Applied)
	})

	t.Run("same priority overrides resolve by id", func(t *testing.T) {
		a := f.params("a", pricing.ModeOverride, 1, pricing.Fixed(4000))
		a.ID = uuid.MustParse("01900000-0000-7000-8000-000000000002")
		b := f.params("b", pricing.ModeOverride, 1, pricing.Fixed(6000))
		b.ID = uuid.MustParse("01900000-0000-7000-8000-000000000001")
		rs, err := pricing.NewRuleSet(f.campground, []*pricing.Rule{f.rule(t, a), f.rule(t, b)})
		require.NoError(t, err)

		res := pricing.NewEvaluator(rs, nil).NightlyRate(f.site, stay.Date(2025, 7, 1), base)
		assert.Equal(t, money.FromUnits(60), res.Rate)
	})

	t.Run("additive accumulates including negative deltas", func(t *testing.T) {
		plus := f.rule(t, f.params("+$20", pricing.ModeAdditive, 1, pricing.Fixed(2000)))
		minus := f.rule(t, f.params("-$5", pricing.ModeAdditive, 2, pricing.Fixed(-500)))
		pct := f.rule(t, f.params("+10%", pricing.ModeAdditive, 3, pricing.Percent(1000)))

		res := pricing.Resolve(base, []*pricing.Rule{plus, minus, pct})
		assert.Equal(t, money.FromUnits(70), res.Rate)
	})

	t.Run("max only raises", func(t *testing.T) {
		lower := f.rule(t, f.params("floor $40", pricing.ModeMax, 1, pricing.Fixed(4000)))
		higher := f.rule(t, f.params("floor $65", pricing.ModeMax, 2, pricing.Fixed(6500)))

		assert.Equal(t, base, pricing.Resolve(base, []*pricing.Rule{lower}).Rate)
		assert.Equal(t, money.FromUnits(65), pricing.Resolve(base, []*pricing.Rule{lower, higher}).Rate)
	})

	t.Run("percentage target is relative to base", func(t *testing.T) {
		discount := f.rule(t, f.params("-20%", pricing.ModeOverride, 1, pricing.Percent(-2000)))
		assert.Equal(t, money.FromUnits(40), pricing.Resolve(base, []*pricing.Rule{discount}).Rate)

		surge := f.rule(t, f.params("at least +30%", pricing.ModeMax, 1, pricing.Percent(3000)))
		assert.Equal(t, money.FromUnits(65), pricing.Resolve(base, []*pricing.Rule{surge}).Rate)
	})

	t.Run("caps intersect to the tightest bound", func(t *testing.T) {
		a := f.params("cap $100", pricing.ModeAdditive, 1, pricing.Fixed(10000))
		a.MaxRate = cents(10000)
		b := f.params("cap $80", pricing.ModeAdditive, 2, pricing.Fixed(0))
		b.MaxRate = cents(8000)

		res := pricing.Resolve(base, []*pricing.Rule{f.rule(t, a), f.rule(t, b)})
		assert.Equal(t, money.FromUnits(80), res.Rate)
		assert.True(t, res.Clamped)
		require.NotNil(t, res.MaxCap)
		assert.Equal(t, money.Cents(8000), *res.MaxCap)
	})

	t.Run("min cap raises a discounted rate", func(t *testing.T) {
		p := f.params("-$40", pricing.ModeAdditive, 1, pricing.Fixed(-4000))
		p.MinRate = cents(2500)
		res := pricing.Resolve(base, []*pricing.Rule{f.rule(t, p)})
		assert.Equal(t, money.FromUnits(25), res.Rate)
		assert.True(t, res.Clamped)
	})

	t.Run("crossing caps resolve to the max cap", func(t *testing.T) {
		a := f.params("min $90", pricing.ModeAdditive, 1, pricing.Fixed(0))
		a.MinRate = cents(9000)
		b := f.params("max $70", pricing.ModeAdditive, 2, pricing.Fixed(0))
		b.MaxRate = cents(7000)
		res := pricing.Resolve(base, []*pricing.Rule{f.rule(t, a), f.rule(t, b)})
		assert.Equal(t, money.FromUnits(70), res.Rate)
	})

	t.Run("caps of skipped rules are ignored", func(t *testing.T) {
		override := f.rule(t, f.params("flat $50", pricing.ModeOverride, 1, pricing.Fixed(5000)))
		capped := f.params("cap $30", pricing.ModeAdditive, 2, pricing.Fixed(0))
		capped.MaxRate = cents(3000)
		res := pricing.Resolve(base, []*pricing.Rule{override, f.rule(t, capped)})
		assert.Equal(t, money.FromUnits(50), res.Rate)
		assert.False(t, res.Clamped)
	})

	t.Run("negative result floors at zero", func(t *testing.T) {
		res := pricing.Resolve(base, []*pricing.Rule{f.rule(t, f.params("-$80", pricing.ModeAdditive, 1, pricing.Fixed(-8000)))})
		assert.Equal(t, money.Zero, res.Rate)
		assert.True(t, res.Clamped)
	})

	t.Run("rounding happens once at the end", func(t *testing.T) {
		// 3 x 0.5% of $1.01 is 1.515 cents; rounding each delta would give $1.04.
		var rules []*pricing.Rule
		for i := range 3 {
			rules = append(rules, f.rule(t, f.params("tiny", pricing.ModeAdditive, i, pricing.Percent(50))))
		}
		res := pricing.Resolve(101, rules)
		assert.Equal(t, money.Cents(103), res.Rate)
	})
}

func TestResolveNeverNegative(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewPCG(42, 7))
	modes := []pricing.Mode{pricing.ModeAdditive, pricing.ModeMax, pricing.ModeOverride}

	for range 500 {
		var rules []*pricing.Rule
		for i := range rng.IntN(6) {
			var adj pricing.Adjustment
			if rng.IntN(2) == 0 {
				adj = pricing.Fixed(money.Cents(rng.Int64N(40000) - 20000))
			} else {
				adj = pricing.Percent(money.Bps(rng.Int64N(30000) - 15000))
			}
			p := f.params("random", modes[rng.IntN(len(modes))], i, adj)
			if rng.IntN(3) == 0 {
				p.MaxRate = cents(rng.Int64N(20000))
			}
			rules = append(rules, f.rule(t, p))
		}
		base := money.Cents(rng.Int64N(30000))
		res := pricing.Resolve(base, rules)
		require.GreaterOrEqual(t, res.Rate, money.Zero, "base %d with %d rules", base, len(rules))
		if res.MaxCap != nil {
			require.LessOrEqual(t, res.Rate, *res.MaxCap)
		}
	}
}

func TestWeekendScenario(t *testing.T) {
	f := newFixture(t)
	p := f.params("weekend", pricing.ModeAdditive, 1, pricing.Fixed(2000))
	p.Predicate = pricing.WeekendPredicate{Days: []time.Weekday{time.Saturday, time.Sunday}}
	rs, err := pricing.NewRuleSet(f.campground, []*pricing.Rule{f.rule(t, p)})
	require.NoError(t, err)
	ev := pricing.NewEvaluator(rs, nil)

	// Friday 2025-07-11 to Monday 2025-07-14
	var rates []money.Cents
	var subtotal money.Cents
	for _, n := range stay.MustNew(stay.Date(2025, 7, 11), stay.Date(2025, 7, 14)).Dates() {
		r := ev.NightlyRate(f.site, n, f.class.BaseRate()).Rate
		rates = append(rates, r)
		subtotal += r
	}
	assert.Equal(t, []money.Cents{5000, 7000, 7000}, rates)
	assert.Equal(t, money.FromUnits(190), subtotal)
}
