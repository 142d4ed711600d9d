package pricing_test

import (
	"testing"
	"time"

	"campbook/internal/domain/money"
	"campbook/internal/domain/pricing"
	"campbook/internal/domain/site"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	campground uuid.UUID
	class      *site.Class
	site       *site.Site
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	campground := uuid.New()
	class, err := site.NewClass(uuid.New(), campground, "Standard RV", money.FromUnits(50), 6, nil)
	require.NoError(t, err)
	s, err := site.NewSite(uuid.New(), class, "A-1", true)
	require.NoError(t, err)
	return fixture{campground: campground, class: class, site: s}
}

func (f fixture) params(name string, mode pricing.Mode, priority int, adj pricing.Adjustment) pricing.RuleParams {
	return pricing.RuleParams{
		CampgroundID: f.campground,
		Name:         name,
		Scope:        pricing.CampgroundScope(),
		Predicate:    pricing.WeekendPredicate{Days: everyDay()},
		Mode:         mode,
		Priority:     priority,
		Adjustment:   adj,
	}
}

func (f fixture) rule(t *testing.T, p pricing.RuleParams) *pricing.Rule {
	t.Helper()
	r, err := pricing.NewRule(p)
	require.NoError(t, err)
	return r
}

func everyDay() []time.Weekday {
	return []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

func cents(v int64) *money.Cents {
	c := money.Cents(v)
	return &c
}
