package deposit

import (
	"errors"
	"time"

	"campbook/internal/domain/money"
	"campbook/internal/domain/stay"
)

var (
	ErrInvalidStrategy = errors.New("invalid deposit strategy")
	ErrInvalidTiming   = errors.New("invalid deposit timing")
	ErrInvalidPercent  = errors.New("deposit percentage must be between 0 and 100%")
	ErrInvalidBounds   = errors.New("deposit min amount exceeds max amount")
)

type Strategy string

const (
	StrategyFirstNight Strategy = "first_night"
	StrategyPercentage Strategy = "percentage"
	StrategyFixed      Strategy = "fixed"
	StrategyFull       Strategy = "full"
)

func (s Strategy) IsValid() bool {
	switch s {
	case StrategyFirstNight, StrategyPercentage, StrategyFixed, StrategyFull:
		return true
	default:
		return false
	}
}

type TimingKind string

const (
	TimingAtBooking         TimingKind = "at_booking"
	TimingDaysBeforeArrival TimingKind = "days_before_arrival"
	TimingFixedDate         TimingKind = "fixed_date"
)

// Timing decides when collection is attempted; it never changes the amount.
type Timing struct {
	Kind       TimingKind
	DaysBefore int
	Date       time.Time
}

func AtBooking() Timing { return Timing{Kind: TimingAtBooking} }

func DaysBeforeArrival(n int) Timing {
	return Timing{Kind: TimingDaysBeforeArrival, DaysBefore: n}
}

func OnDate(d time.Time) Timing {
	return Timing{Kind: TimingFixedDate, Date: stay.Day(d)}
}

func (t Timing) validate() error {
	switch t.Kind {
	case TimingAtBooking:
		return nil
	case TimingDaysBeforeArrival:
		if t.DaysBefore < 0 {
			return ErrInvalidTiming
		}
		return nil
	case TimingFixedDate:
		if t.Date.IsZero() {
			return ErrInvalidTiming
		}
		return nil
	default:
		return ErrInvalidTiming
	}
}

type PolicyParams struct {
	Strategy  Strategy
	Percent   money.Bps
	Amount    money.Cents
	MinAmount money.Cents
	// MaxAmount of zero leaves the deposit unbounded above.
	MaxAmount money.Cents
	Timing    Timing
}

type Policy struct {
	strategy  Strategy
	percent   money.Bps
	amount    money.Cents
	minAmount money.Cents
	maxAmount money.Cents
	timing    Timing
}

func NewPolicy(p PolicyParams) (*Policy, error) {
	if !p.Strategy.IsValid() {
		return nil, ErrInvalidStrategy
	}
	if p.Strategy == StrategyPercentage && !p.Percent.IsValidRatio() {
		return nil, ErrInvalidPercent
	}
	if p.Amount < 0 || p.MinAmount < 0 || p.MaxAmount < 0 {
		return nil, money.ErrNegativeAmount
	}
	if p.MaxAmount > 0 && p.MinAmount > p.MaxAmount {
		return nil, ErrInvalidBounds
	}
	if p.Timing.Kind == "" {
		p.Timing = AtBooking()
	}
	if err := p.Timing.validate(); err != nil {
		return nil, err
	}
	return &Policy{
		strategy:  p.Strategy,
		percent:   p.Percent,
		amount:    p.Amount,
		minAmount: p.MinAmount,
		maxAmount: p.MaxAmount,
		timing:    p.Timing,
	}, nil
}

// DefaultPolicy collects the full total at booking.
func DefaultPolicy() *Policy {
	return &Policy{strategy: StrategyFull, timing: AtBooking()}
}

func (p *Policy) Strategy() Strategy     { return p.strategy }
func (p *Policy) Percent() money.Bps     { return p.percent }
func (p *Policy) Amount() money.Cents    { return p.amount }
func (p *Policy) MinAmount() money.Cents { return p.minAmount }
func (p *Policy) MaxAmount() money.Cents { return p.maxAmount }
func (p *Policy) Timing() Timing         { return p.timing }
