package pricing_test

import (
	"testing"
	"time"

	"campbook/internal/domain/money"
	"campbook/internal/domain/pricing"
	"campbook/internal/domain/site"
	"campbook/internal/domain/stay"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleNames(rules []*pricing.Rule) []string {
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name())
	}
	return names
}

func TestApplicableRules(t *testing.T) {
	f := newFixture(t)
	otherClass, err := site.NewClass(uuid.New(), f.campground, "Tent", money.FromUnits(30), 4, nil)
	require.NoError(t, err)
	tentSite, err := site.NewSite(uuid.New(), otherClass, "T-1", true)
	require.NoError(t, err)

	weekend := f.params("weekend", pricing.ModeAdditive, 10, pricing.Fixed(2000))
	weekend.Predicate = pricing.WeekendPredicate{Days: []time.Weekday{time.Saturday, time.Sunday}}

	summer := f.params("summer rv", pricing.ModeAdditive, 5, pricing.Percent(1000))
	summer.Scope = pricing.ClassScope(f.class.ID())
	summer.Predicate = pricing.SeasonPredicate{Window: pricing.NewYearlyWindow(time.June, 1, time.August, 31)}

	july4 := f.params("july 4th", pricing.ModeOverride, 1, pricing.Fixed(12000))
	july4.Predicate = pricing.HolidayPredicate{Name: "Independence Day", Dates: []time.Time{stay.Date(2025, 7, 4)}}

	rs, err := pricing.NewRuleSet(f.campground, []*pricing.Rule{
		f.rule(t, weekend), f.rule(t, summer), f.rule(t, july4),
	})
	require.NoError(t, err)
	ev := pricing.NewEvaluator(rs, nil)

	tests := []struct {
		name  string
		site  *site.Site
		night time.Time
		want  []string
	}{
		{name: "no match falls back to base", site: f.site, night: stay.Date(2025, 3, 12), want: []string{}},
		{name: "class scoped season", site: f.site, night: stay.Date(2025, 7, 2), want: []string{"summer rv"}},
		{name: "season does not reach other class", site: tentSite, night: stay.Date(2025, 7, 2), want: []string{}},
		{name: "priority order", site: f.site, night: stay.Date(2025, 7, 5), want: []string{"summer rv", "weekend"}},
		{name: "holiday first", site: f.site, night: stay.Date(2025, 7, 4), want: []string{"july 4th", "summer rv"}},
		{name: "campground wide reaches other class", site: tentSite, night: stay.Date(2025, 7, 6), want: []string{"weekend"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ruleNames(ev.ApplicableRules(tt.site, tt.night)))
		})
	}

	t.Run("site of another campground gets nothing", func(t *testing.T) {
		stranger := site.ReconstructSite(uuid.New(), uuid.New(), f.class.ID(), "Z-1", true)
		assert.Empty(t, ev.ApplicableRules(stranger, stay.Date(2025, 7, 5)))
	})

	t.Run("no rules at all yields the class base rate", func(t *testing.T) {
		empty := pricing.NewEvaluator(pricing.EmptyRuleSet(f.campground), nil)
		res := empty.NightlyRate(f.site, stay.Date(2025, 7, 5), f.class.BaseRate())
		assert.Equal(t, money.FromUnits(50), res.Rate)
		assert.Empty(t, res.Applied)
	})
}

func TestApplicableRulesDemand(t *testing.T) {
	f := newFixture(t)

	busy := f.params("high demand", pricing.ModeAdditive, 1, pricing.Percent(2500))
	busy.Predicate = pricing.DemandPredicate{MinOccupancy: 8000}
	rs, err := pricing.NewRuleSet(f.campground, []*pricing.Rule{f.rule(t, busy)})
	require.NoError(t, err)

	table := pricing.OccupancyTable{}
	table.Set(f.class.ID(), stay.Date(2025, 7, 5), 9000)
	table.Set(f.class.ID(), stay.Date(2025, 7, 6), 5000)
	ev := pricing.NewEvaluator(rs, table)

	assert.Equal(t, []string{"high demand"}, ruleNames(ev.ApplicableRules(f.site, stay.Date(2025, 7, 5))))
	assert.Empty(t, ev.ApplicableRules(f.site, stay.Date(2025, 7, 6)))
	assert.Empty(t, ev.ApplicableRules(f.site, stay.Date(2025, 7, 7)), "missing data reads as empty")

	res := ev.NightlyRate(f.site, stay.Date(2025, 7, 5), money.FromUnits(50))
	assert.Equal(t, money.Cents(6250), res.Rate)
}
