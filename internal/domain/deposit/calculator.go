package deposit

import (
	"time"

	"campbook/internal/domain/money"
	"campbook/internal/domain/stay"
)

// Input carries the quote figures a policy needs.
type Input struct {
	Total      money.Cents
	FirstNight money.Cents
}

// Due is the amount to collect, when to collect it and what remains.
type Due struct {
	Strategy Strategy    `json:"strategy"`
	Amount   money.Cents `json:"amount"`
	DueAt    time.Time   `json:"due_at"`
	Balance  money.Cents `json:"balance"`
	Clamped  bool        `json:"clamped"`
}

// DueNow computes the deposit for a quote. The amount is clamped to
// [MinAmount, MaxAmount] and then to the quote total.
func (p *Policy) DueNow(in Input, arrival, now time.Time) Due {
	raw := p.rawAmount(in)
	amount := raw

	if amount < p.minAmount {
		amount = p.minAmount
	}
	if p.maxAmount > 0 && amount > p.maxAmount {
		amount = p.maxAmount
	}
	total := money.Max(in.Total, 0)
	amount = money.Max(money.Min(amount, total), 0)

	return Due{
		Strategy: p.strategy,
		Amount:   amount,
		DueAt:    p.dueAt(arrival, now),
		Balance:  total - amount,
		Clamped:  amount != raw,
	}
}

func (p *Policy) rawAmount(in Input) money.Cents {
	switch p.strategy {
	case StrategyFirstNight:
		return in.FirstNight
	case StrategyPercentage:
		return in.Total.Percent(p.percent)
	case StrategyFixed:
		return p.amount
	default:
		return in.Total
	}
}

// dueAt never schedules collection in the past.
func (p *Policy) dueAt(arrival, now time.Time) time.Time {
	var at time.Time
	switch p.timing.Kind {
	case TimingDaysBeforeArrival:
		at = stay.Day(arrival).AddDate(0, 0, -p.timing.DaysBefore)
	case TimingFixedDate:
		at = p.timing.Date
	default:
		return now
	}
	if at.Before(now) {
		return now
	}
	return at
}
