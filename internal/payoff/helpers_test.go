package payoff

import (
	"testing"

	"github.com/shopspring/decimal"

	"debtpilot/internal/core"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func debt(name, balance, rate, min string) core.Debt {
	return core.Debt{
		Name:           name,
		Balance:        decimal.RequireFromString(balance),
		InterestRate:   decimal.RequireFromString(rate),
		MinimumPayment: decimal.RequireFromString(min),
	}
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: got %s want %s", label, got, want)
	}
}
