// Package money is the single home for rounding and ratio rules: half-up,
// 4 decimal places internally, 2 decimal places for currency display.
// Every percentage in the system goes through Percent or Ratio so no two
// call sites disagree on rounding.
package money

import "github.com/shopspring/decimal"

const (
	// InternalScale is the precision intermediate results are kept at.
	InternalScale = 4
	// DisplayScale is the precision amounts and rates are reported at.
	DisplayScale = 2
)

var hundred = decimal.NewFromInt(100)

// Round rounds half-up to the display scale.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayScale)
}

// Ratio divides num by den at internal precision, returning zero when the
// denominator is zero. Financial ratios never blow up on empty books.
func Ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, InternalScale)
}

// Percent returns num/den*100 rounded half-up to the display scale, zero
// when den is zero.
func Percent(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Mul(hundred).DivRound(den, InternalScale).Round(DisplayScale)
}

// ChangeRate returns the percentage change from previous to current,
// zero when previous is zero.
func ChangeRate(current, previous decimal.Decimal) decimal.Decimal {
	return Percent(current.Sub(previous), previous)
}
