package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest value accepted for any single amount.
var MaxAmount = decimal.RequireFromString("999999.99")

// maxAmountExponent is the largest exponent a non-zero amount within
// MaxAmount can carry.
const maxAmountExponent = 5

// Validation messages for amounts.
const (
	MsgNotNumber       = "Must be a number"
	MsgNegative        = "Must be a non-negative number"
	MsgTooLarge        = "Value exceeds maximum allowed (999,999.99)"
	MsgTooManyDecimals = "Maximum 2 decimal places allowed"
)

// AmountProblems lists every rule the amount breaks, in a stable order.
//
// Values whose exponent puts them far outside the accepted range are decided
// from the exponent alone; comparing or rounding them would rescale the
// coefficient to an arbitrarily large power of ten.
func AmountProblems(d decimal.Decimal) []string {
	if d.IsZero() {
		return nil
	}

	var problems []string
	if d.IsNegative() {
		problems = append(problems, MsgNegative)
	}

	exp := int64(d.Exponent())
	switch {
	case exp > maxAmountExponent:
		// |d| >= 10^6
		if d.IsPositive() {
			problems = append(problems, MsgTooLarge)
		}
		return problems
	case exp < -2 && -exp-2 >= int64(d.NumDigits()):
		// The coefficient has fewer digits than the excess decimal places,
		// so it cannot end in enough zeros.
		return append(problems, MsgTooManyDecimals)
	}

	if d.GreaterThan(MaxAmount) {
		problems = append(problems, MsgTooLarge)
	}
	if !d.Equal(d.Round(2)) {
		problems = append(problems, MsgTooManyDecimals)
	}
	return problems
}

// ValidateAmount returns ErrInvalidAmount when d breaks any amount rule.
func ValidateAmount(d decimal.Decimal) error {
	if problems := AmountProblems(d); len(problems) > 0 {
		return fmt.Errorf("%w: %s (%s)", ErrInvalidAmount, d.String(), problems[0])
	}
	return nil
}

// ToCents converts a validated amount to integer cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
