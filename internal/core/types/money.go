// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors: commission splits
// and discount absorption must come out exact to the cent.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use MoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// MoneyFromInt creates a Money value from an integer amount of major units.
func MoneyFromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// MoneyFromString creates a Money value from a string.
// This is the preferred constructor for monetary values.
func MoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// MaxMoney returns the larger of a and b.
func MaxMoney(a, b Money) Money {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// MinMoney returns the smaller of a and b.
func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Percent is a percentage expressed as a whole-number rate (35 = 35%).
// Commission rates are configured this way and always sum to 100 between
// the professional's share and the clinic's share.
type Percent = decimal.Decimal

// NewPercent creates a Percent from an integer rate.
func NewPercent(v int64) Percent {
	return decimal.NewFromInt(v)
}

var hundred = decimal.NewFromInt(100)

// ApplyPercent returns amount * rate / 100.
func ApplyPercent(amount Money, rate Percent) Money {
	return amount.Mul(rate).Div(hundred)
}

// Complement returns 100 - rate.
func Complement(rate Percent) Percent {
	return hundred.Sub(rate)
}
