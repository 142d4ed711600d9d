package pricing

import (
	"time"

	"campbook/internal/domain/money"
	"campbook/internal/domain/site"
	"campbook/internal/domain/stay"

	"github.com/google/uuid"
)

// DemandSignal reports how much of a site class is already allocated on a
// given night.
type DemandSignal interface {
	Occupancy(classID uuid.UUID, night time.Time) money.Bps
}

// OccupancyTable is a precomputed DemandSignal. Missing entries read as 0%.
type OccupancyTable map[uuid.UUID]map[time.Time]money.Bps

func (t OccupancyTable) Occupancy(classID uuid.UUID, night time.Time) money.Bps {
	return t[classID][stay.Day(night)]
}

func (t OccupancyTable) Set(classID uuid.UUID, night time.Time, occupancy money.Bps) {
	nights, ok := t[classID]
	if !ok {
		nights = make(map[time.Time]money.Bps)
		t[classID] = nights
	}
	nights[stay.Day(night)] = occupancy
}

// Evaluator selects the rules of one RuleSet that apply to a site-night.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	rules  *RuleSet
	demand DemandSignal
}

func NewEvaluator(rules *RuleSet, demand DemandSignal) *Evaluator {
	return &Evaluator{rules: rules, demand: demand}
}

func (e *Evaluator) RuleSet() *RuleSet { return e.rules }

// ApplicableRules returns the rules matching s on night, in evaluation order.
func (e *Evaluator) ApplicableRules(s *site.Site, night time.Time) []*Rule {
	if e.rules == nil || s.CampgroundID() != e.rules.campgroundID {
		return nil
	}

	n := Night{Date: stay.Day(night)}
	if e.rules.hasDemand && e.demand != nil {
		n.Occupancy = e.demand.Occupancy(s.ClassID(), n.Date)
	}

	var matched []*Rule
	for _, r := range e.rules.rules {
		if r.Matches(s.ClassID(), n) {
			matched = append(matched, r)
		}
	}
	return matched
}

// NightlyRate prices a single night of s starting from base.
func (e *Evaluator) NightlyRate(s *site.Site, night time.Time, base money.Cents) Resolution {
	return Resolve(base, e.ApplicableRules(s, night))
}
