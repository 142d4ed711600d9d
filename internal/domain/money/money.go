package money

import (
	"errors"
	"fmt"
	"math/big"
)

// Cents is an amount in minor currency units.
type Cents int64

// Bps is a ratio in basis points; 10000 is 100%.
type Bps int64

const (
	Zero    Cents = 0
	FullBps Bps   = 10000
)

var ErrNegativeAmount = errors.New("amount cannot be negative")

func FromUnits(units int64) Cents {
	return Cents(units * 100)
}

func (c Cents) Int64() int64 { return int64(c) }

func (c Cents) IsNegative() bool { return c < 0 }

func (c Cents) Mul(n int) Cents {
	return c * Cents(n)
}

// Rat returns the exact rational value of c.
func (c Cents) Rat() *big.Rat {
	return new(big.Rat).SetInt64(int64(c))
}

// Percent returns c scaled by p, rounded half-up.
func (c Cents) Percent(p Bps) Cents {
	return RoundHalfUp(Scale(c.Rat(), p))
}

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Scale returns r*p/10000 without rounding.
func Scale(r *big.Rat, p Bps) *big.Rat {
	ratio := big.NewRat(int64(p), int64(FullBps))
	return new(big.Rat).Mul(r, ratio)
}

// RoundHalfUp rounds r to the nearest cent with ties going away from zero.
// It is the single rounding point for every monetary computation.
func RoundHalfUp(r *big.Rat) Cents {
	num := new(big.Int).Abs(r.Num())
	den := r.Denom()

	// floor((2*|num| + den) / (2*den))
	twice := new(big.Int).Lsh(num, 1)
	twice.Add(twice, den)
	q := new(big.Int).Quo(twice, new(big.Int).Lsh(den, 1))

	if r.Sign() < 0 {
		q.Neg(q)
	}
	return Cents(q.Int64())
}

func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}

func Max(a, b Cents) Cents {
	if a > b {
		return a
	}
	return b
}

func (p Bps) IsValidRatio() bool {
	return p >= 0 && p <= FullBps
}

func (p Bps) String() string {
	return fmt.Sprintf("%d.%02d%%", int64(p)/100, abs(int64(p))%100)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
