// Package money converts between the integer-cent representation stored in
// the database and the 2-decimal currency amounts used by the API and the
// allocation math.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FromCents returns the decimal currency amount for an integer cent value.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}

// ToCents rounds a decimal currency amount to 2 places and returns it in cents.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(hundred).IntPart()
}

// CentsFromFloat converts an API-supplied float amount to cents without
// accumulating binary floating point error.
func CentsFromFloat(amount float64) int64 {
	return ToCents(decimal.NewFromFloat(amount))
}

// Float returns the float64 currency amount for an integer cent value.
// Display only; all arithmetic stays on cents or decimals.
func Float(cents int64) float64 {
	f, _ := FromCents(cents).Float64()
	return f
}

// Share returns round(total × numerator/denominator, 2) in cents.
// Used for proportional split and refund allocation.
func Share(totalCents, numeratorCents, denominatorCents int64) int64 {
	if denominatorCents == 0 {
		return 0
	}
	ratio := decimal.NewFromInt(numeratorCents).Div(decimal.NewFromInt(denominatorCents))
	return ToCents(FromCents(totalCents).Mul(ratio))
}

// Percent returns round(amount × percent/100, 2) in cents.
func Percent(amountCents int64, percent decimal.Decimal) int64 {
	return ToCents(FromCents(amountCents).Mul(percent).Div(hundred))
}
