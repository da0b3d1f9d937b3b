package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// ParseAmount parses a user-entered amount such as "1234.56" or "1234,56".
// The result is rounded half-up to cents. Negative amounts are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidInput)
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, fmt.Errorf("%w: malformed amount %q", ErrInvalidInput, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed amount %q", ErrInvalidInput, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount %q", ErrInvalidInput, s)
	}
	return RoundCents(d), nil
}

// RoundCents rounds half away from zero to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders an amount as "$1234.56".
func FormatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// MonthlyInterest is one month of simple interest on balance at an annual
// percentage rate. The result is not rounded.
func MonthlyInterest(balance, annualRate decimal.Decimal) decimal.Decimal {
	return balance.Mul(annualRate).Div(hundred).Div(twelve)
}

// Share returns part as a percentage of total, rounded to one decimal.
// A zero total yields zero instead of a division error.
func Share(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(1)
}
