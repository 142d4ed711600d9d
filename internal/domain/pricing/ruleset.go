package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"slices"

	"campbook/internal/domain/money"
	"campbook/internal/domain/stay"

	"github.com/google/uuid"
)

var (
	ErrForeignRule   = errors.New("rule belongs to another campground")
	ErrDuplicateRule = errors.New("duplicate rule id")
)

// RuleSet is a read-only snapshot of one campground's pricing rules,
// sorted in evaluation order. Quotes price against a single RuleSet so a
// concurrent configuration change never affects a quote in flight.
type RuleSet struct {
	campgroundID uuid.UUID
	rules        []*Rule
	version      string
	hasDemand    bool
}

func NewRuleSet(campgroundID uuid.UUID, rules []*Rule) (*RuleSet, error) {
	sorted := make([]*Rule, 0, len(rules))
	seen := make(map[uuid.UUID]struct{}, len(rules))
	hasDemand := false
	for _, r := range rules {
		if r.campgroundID != campgroundID {
			return nil, fmt.Errorf("%w: rule %s", ErrForeignRule, r.id)
		}
		if _, dup := seen[r.id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, r.id)
		}
		seen[r.id] = struct{}{}
		if r.Type() == KindDemand {
			hasDemand = true
		}
		sorted = append(sorted, r)
	}
	slices.SortFunc(sorted, less)

	return &RuleSet{
		campgroundID: campgroundID,
		rules:        sorted,
		version:      fingerprint(sorted),
		hasDemand:    hasDemand,
	}, nil
}

func EmptyRuleSet(campgroundID uuid.UUID) *RuleSet {
	rs, _ := NewRuleSet(campgroundID, nil)
	return rs
}

func (s *RuleSet) CampgroundID() uuid.UUID { return s.campgroundID }
func (s *RuleSet) Len() int                { return len(s.rules) }
func (s *RuleSet) Rules() []*Rule          { return slices.Clone(s.rules) }

// Version identifies the rule content; equal sets share a version.
func (s *RuleSet) Version() string { return s.version }

// HasDemandRules reports whether evaluation needs occupancy data.
func (s *RuleSet) HasDemandRules() bool { return s.hasDemand }

func (s *RuleSet) Find(id uuid.UUID) (*Rule, bool) {
	for _, r := range s.rules {
		if r.id == id {
			return r, true
		}
	}
	return nil, false
}

func fingerprint(rules []*Rule) string {
	h := sha256.New()
	for _, r := range rules {
		fmt.Fprintf(h, "%s|%s|%s|%s|%d|%s|%d|%d|", r.id, r.name, r.scope.Kind, r.scope.SiteClassID,
			r.priority, r.mode, r.adjustment.Amount, r.adjustment.Percent)
		fmt.Fprintf(h, "%s|%s|%s|", r.adjustment.Kind, capString(r.minRate), capString(r.maxRate))
		writePredicate(h, r.predicate)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func capString(c *money.Cents) string {
	if c == nil {
		return "-"
	}
	return c.String()
}

func writePredicate(h hash.Hash, p Predicate) {
	fmt.Fprintf(h, "%s:", p.Kind())
	switch v := p.(type) {
	case SeasonPredicate:
		writeWindow(h, &v.Window)
	case WeekendPredicate:
		fmt.Fprint(h, v.Days)
	case HolidayPredicate:
		fmt.Fprint(h, v.Name)
		for _, d := range v.Dates {
			fmt.Fprintf(h, ",%s", d.Format(stay.DateLayout))
		}
	case EventPredicate:
		fmt.Fprint(h, v.Name)
		writeWindow(h, &v.Window)
	case DemandPredicate:
		fmt.Fprint(h, v.MinOccupancy)
		writeWindow(h, v.Window)
	}
}

func writeWindow(h hash.Hash, w *Window) {
	if w == nil {
		fmt.Fprint(h, "[]")
		return
	}
	fmt.Fprintf(h, "[%s,%s,%t]", w.From.Format(stay.DateLayout), w.To.Format(stay.DateLayout), w.Yearly)
}
