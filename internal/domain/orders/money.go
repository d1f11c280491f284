package orders

import "math"

// Money represents currency in minor units (cents) to avoid float issues.
// Both storage backends persist integer cents; the HTTP boundary converts
// to/from decimal dollars.
type Money int64

// NewMoneyFromFloat creates Money from float64 dollars, rounding to the nearest cent.
func NewMoneyFromFloat(f float64) Money {
	return Money(math.Round(f * 100.0))
}

func (m Money) Float() float64 { return float64(m) / 100.0 }

// abs in cents, used for tolerance checks.
func (m Money) abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// WithinCent reports whether two amounts differ by at most one cent.
// Creation checks subtotal + tax == total under this tolerance, since the
// inputs arrive as decimal dollars and may carry sub-cent rounding.
func WithinCent(a, b Money) bool {
	return (a - b).abs() <= 1
}
