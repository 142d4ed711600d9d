package pricing

import (
	"bytes"
	"errors"
	"math/big"
	"strings"

	"campbook/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidMode       = errors.New("invalid stacking mode")
	ErrInvalidAdjustment = errors.New("invalid rate adjustment")
	ErrInvalidScope      = errors.New("invalid rule scope")
	ErrInvalidCaps       = errors.New("min rate cap exceeds max rate cap")
	ErrNegativeCap       = errors.New("rate caps cannot be negative")
	ErrEmptyRuleName     = errors.New("rule name cannot be empty")
)

// Mode is how a matching rule combines with the running nightly rate.
type Mode string

const (
	ModeAdditive Mode = "additive"
	ModeMax      Mode = "max"
	ModeOverride Mode = "override"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeAdditive, ModeMax, ModeOverride:
		return true
	default:
		return false
	}
}

type AdjustmentKind string

const (
	AdjustFixed   AdjustmentKind = "fixed"
	AdjustPercent AdjustmentKind = "percentage"
)

// Adjustment is either a fixed amount or a percentage of the night's base
// rate. Additive rules add it as a delta; max and override rules use it as
// a target rate.
type Adjustment struct {
	Kind    AdjustmentKind
	Amount  money.Cents
	Percent money.Bps
}

func Fixed(amount money.Cents) Adjustment {
	return Adjustment{Kind: AdjustFixed, Amount: amount}
}

func Percent(p money.Bps) Adjustment {
	return Adjustment{Kind: AdjustPercent, Percent: p}
}

func (a Adjustment) validate() error {
	switch a.Kind {
	case AdjustFixed:
		if a.Percent != 0 {
			return ErrInvalidAdjustment
		}
	case AdjustPercent:
		if a.Amount != 0 {
			return ErrInvalidAdjustment
		}
	default:
		return ErrInvalidAdjustment
	}
	return nil
}

// delta is the amount an additive rule adds to the running rate.
func (a Adjustment) delta(base money.Cents) *big.Rat {
	if a.Kind == AdjustPercent {
		return money.Scale(base.Rat(), a.Percent)
	}
	return a.Amount.Rat()
}

// target is the absolute rate a max or override rule proposes.
func (a Adjustment) target(base money.Cents) *big.Rat {
	if a.Kind == AdjustPercent {
		return money.Scale(base.Rat(), money.FullBps+a.Percent)
	}
	return a.Amount.Rat()
}

type ScopeKind string

const (
	ScopeCampground ScopeKind = "campground"
	ScopeSiteClass  ScopeKind = "site_class"
)

type Scope struct {
	Kind        ScopeKind
	SiteClassID uuid.UUID
}

func CampgroundScope() Scope { return Scope{Kind: ScopeCampground} }

func ClassScope(classID uuid.UUID) Scope {
	return Scope{Kind: ScopeSiteClass, SiteClassID: classID}
}

func (s Scope) validate() error {
	switch s.Kind {
	case ScopeCampground:
		if s.SiteClassID != uuid.Nil {
			return ErrInvalidScope
		}
	case ScopeSiteClass:
		if s.SiteClassID == uuid.Nil {
			return ErrInvalidScope
		}
	default:
		return ErrInvalidScope
	}
	return nil
}

func (s Scope) covers(classID uuid.UUID) bool {
	return s.Kind == ScopeCampground || s.SiteClassID == classID
}

type RuleParams struct {
	ID           uuid.UUID
	CampgroundID uuid.UUID
	Name         string
	Scope        Scope
	Predicate    Predicate
	Mode         Mode
	Priority     int
	Adjustment   Adjustment
	MinRate      *money.Cents
	MaxRate      *money.Cents
}

// Rule is an immutable pricing rule. Lower priority values are evaluated
// first; ties are broken by ascending id.
type Rule struct {
	id           uuid.UUID
	campgroundID uuid.UUID
	name         string
	scope        Scope
	predicate    Predicate
	mode         Mode
	priority     int
	adjustment   Adjustment
	minRate      *money.Cents
	maxRate      *money.Cents
}

// NewRule validates p. A nil id is replaced by a time-ordered UUIDv7 so that
// id order follows creation order.
func NewRule(p RuleParams) (*Rule, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrEmptyRuleName
	}
	if p.Predicate == nil {
		return nil, ErrMissingPredicate
	}
	if !p.Predicate.Kind().IsValid() {
		return nil, ErrUnknownPredicate
	}
	if err := p.Predicate.validate(); err != nil {
		return nil, err
	}
	if !p.Mode.IsValid() {
		return nil, ErrInvalidMode
	}
	if err := p.Scope.validate(); err != nil {
		return nil, err
	}
	if err := p.Adjustment.validate(); err != nil {
		return nil, err
	}
	if (p.MinRate != nil && *p.MinRate < 0) || (p.MaxRate != nil && *p.MaxRate < 0) {
		return nil, ErrNegativeCap
	}
	if p.MinRate != nil && p.MaxRate != nil && *p.MinRate > *p.MaxRate {
		return nil, ErrInvalidCaps
	}

	id := p.ID
	if id == uuid.Nil {
		v7, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		id = v7
	}

	return &Rule{
		id:           id,
		campgroundID: p.CampgroundID,
		name:         name,
		scope:        p.Scope,
		predicate:    p.Predicate.clone(),
		mode:         p.Mode,
		priority:     p.Priority,
		adjustment:   p.Adjustment,
		minRate:      copyCents(p.MinRate),
		maxRate:      copyCents(p.MaxRate),
	}, nil
}

func MustRule(p RuleParams) *Rule {
	r, err := NewRule(p)
	if err != nil {
		panic(err)
	}
	return r
}

// Matches reports whether r applies to a site of classID on night n.
func (r *Rule) Matches(classID uuid.UUID, n Night) bool {
	return r.scope.covers(classID) && r.predicate.Includes(n)
}

func (r *Rule) ID() uuid.UUID           { return r.id }
func (r *Rule) CampgroundID() uuid.UUID { return r.campgroundID }
func (r *Rule) Name() string            { return r.name }
func (r *Rule) Type() Kind              { return r.predicate.Kind() }
func (r *Rule) Scope() Scope            { return r.scope }
func (r *Rule) Predicate() Predicate    { return r.predicate.clone() }
func (r *Rule) Mode() Mode              { return r.mode }
func (r *Rule) Priority() int           { return r.priority }
func (r *Rule) Adjustment() Adjustment  { return r.adjustment }
func (r *Rule) MinRate() *money.Cents   { return copyCents(r.minRate) }
func (r *Rule) MaxRate() *money.Cents   { return copyCents(r.maxRate) }

// Params returns the fields r was built from.
func (r *Rule) Params() RuleParams {
	return RuleParams{
		ID:           r.id,
		CampgroundID: r.campgroundID,
		Name:         r.name,
		Scope:        r.scope,
		Predicate:    r.predicate.clone(),
		Mode:         r.mode,
		Priority:     r.priority,
		Adjustment:   r.adjustment,
		MinRate:      r.MinRate(),
		MaxRate:      r.MaxRate(),
	}
}

func copyCents(c *money.Cents) *money.Cents {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

// less orders rules by priority, then by id.
func less(a, b *Rule) int {
	if a.priority != b.priority {
		if a.priority < b.priority {
			return -1
		}
		return 1
	}
	return bytes.Compare(a.id[:], b.id[:])
}
