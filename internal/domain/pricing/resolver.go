package pricing

import (
	"math/big"

	"campbook/internal/domain/money"

	"github.com/google/uuid"
)

// Resolution is the outcome of stacking the matching rules of one night.
type Resolution struct {
	Base money.Cents
	Rate money.Cents
	// Applied lists the rules evaluated, in order, up to and including an
	// override. Skipped lists matching rules an override cut off.
	Applied []uuid.UUID
	Skipped []uuid.UUID
	MinCap  *money.Cents
	MaxCap  *money.Cents
	Clamped bool
}

// Resolve combines rules, already in evaluation order, into one nightly
// rate. Arithmetic is exact; the result is rounded half-up once at the end.
//
// An override sets the rate and stops evaluation. Additive rules add their
// delta, max rules raise the rate to their target. Caps of every evaluated
// rule intersect to the tightest bound, the max cap winning if the bounds
// cross, and the rate never drops below zero.
func Resolve(base money.Cents, rules []*Rule) Resolution {
	res := Resolution{Base: base}
	rate := base.Rat()

	for i, r := range rules {
		res.Applied = append(res.Applied, r.id)
		res.MinCap, res.MaxCap = tighten(res.MinCap, res.MaxCap, r)

		if r.mode == ModeOverride {
			rate = r.adjustment.target(base)
			for _, rest := range rules[i+1:] {
				res.Skipped = append(res.Skipped, rest.id)
			}
			break
		}

		switch r.mode {
		case ModeAdditive:
			rate.Add(rate, r.adjustment.delta(base))
		case ModeMax:
			if t := r.adjustment.target(base); t.Cmp(rate) > 0 {
				rate = t
			}
		}
	}

	if res.MinCap != nil && rate.Cmp(res.MinCap.Rat()) < 0 {
		rate = res.MinCap.Rat()
		res.Clamped = true
	}
	if res.MaxCap != nil && rate.Cmp(res.MaxCap.Rat()) > 0 {
		rate = res.MaxCap.Rat()
		res.Clamped = true
	}
	if rate.Sign() < 0 {
		rate = new(big.Rat)
		res.Clamped = true
	}

	res.Rate = money.RoundHalfUp(rate)
	return res
}

func tighten(minCap, maxCap *money.Cents, r *Rule) (*money.Cents, *money.Cents) {
	if r.minRate != nil && (minCap == nil || *r.minRate > *minCap) {
		minCap = copyCents(r.minRate)
	}
	if r.maxRate != nil && (maxCap == nil || *r.maxRate < *maxCap) {
		maxCap = copyCents(r.maxRate)
	}
	return minCap, maxCap
}
