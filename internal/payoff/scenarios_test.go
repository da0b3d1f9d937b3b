package payoff

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"debtpilot/internal/core"
)

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func TestCompareStrategies(t *testing.T) {
	ledger := core.Ledger{debt("Big", "5000", "25", "100"), debt("Small", "300", "5", "15")}
	cmp, err := CompareStrategies(ledger, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved := cmp.Snowball.InterestPaid.Sub(cmp.Avalanche.InterestPaid)
	if !cmp.Avalanche.Savings.Equal(saved) {
		t.Fatalf("savings %s want %s", cmp.Avalanche.Savings, saved)
	}
	if !cmp.Avalanche.Savings.IsPositive() {
		t.Fatalf("avalanche should save interest here, got %s", cmp.Avalanche.Savings)
	}
	// Small clears in month one, Big in the last month.
	if cmp.Snowball.QuickWins != 2 {
		t.Fatalf("quick wins %d want 2", cmp.Snowball.QuickWins)
	}
	if cmp.Recommended() != core.Avalanche {
		t.Fatalf("recommended %s", cmp.Recommended())
	}
}

func TestCompareStrategiesEmptyLedger(t *testing.T) {
	cmp, err := CompareStrategies(nil, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmp.Avalanche.Months != 0 || cmp.Snowball.Months != 0 || cmp.Snowball.QuickWins != 0 {
		t.Fatalf("unexpected comparison %+v", cmp)
	}
}

func TestQuickWinsCountsMonths(t *testing.T) {
	timeline := []core.MonthlySnapshot{
		{Month: 1, Debts: []core.DebtBalance{{Name: "A", Balance: decimal.Zero}, {Name: "B", Balance: decimal.Zero}}},
		{Month: 2, Debts: []core.DebtBalance{{Name: "C", Balance: decimal.NewFromInt(4)}}},
		{Month: 3, Debts: []core.DebtBalance{{Name: "C", Balance: decimal.Zero}}},
	}
	if got := quickWins(timeline); got != 2 {
		t.Fatalf("got %d want 2", got)
	}
}

func TestSpendingImpact(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger := core.Ledger{debt("A", "1000", "12", "50")}

	impact, err := SpendingImpact(ledger, decimal.NewFromInt(1010), decimal.NewFromInt(1000), fixedClock(now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if impact.DelayDays != 60 {
		t.Fatalf("delay %d want 60", impact.DelayDays)
	}
	assertDecimal(t, "extra interest", impact.ExtraInterest, "10.2")
	if want := now.Add(90 * 24 * time.Hour); !impact.NewPayoffDate.Equal(want) {
		t.Fatalf("payoff date %s want %s", impact.NewPayoffDate, want)
	}
	if impact.AffectedDebt != "A" {
		t.Fatalf("affected %q", impact.AffectedDebt)
	}
	assertDecimal(t, "caller balance", ledger[0].Balance, "1000")
}

func TestSpendingImpactTargetsFirstHighestRate(t *testing.T) {
	clock := fixedClock(time.Unix(0, 0).UTC())
	cases := []struct {
		name   string
		ledger core.Ledger
		want   string
	}{
		{"highest wins", core.Ledger{debt("Low", "100", "5", "10"), debt("High", "100", "30", "10")}, "High"},
		{"tie keeps first", core.Ledger{debt("X", "100", "20", "10"), debt("Y", "100", "20", "10"), debt("Z", "100", "5", "10")}, "X"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			impact, err := SpendingImpact(tc.ledger, decimal.NewFromInt(200), decimal.NewFromInt(50), clock)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if impact.AffectedDebt != tc.want {
				t.Fatalf("affected %q want %q", impact.AffectedDebt, tc.want)
			}
		})
	}
}

func TestSpendingImpactErrors(t *testing.T) {
	clock := fixedClock(time.Now())
	ledger := core.Ledger{debt("A", "100", "5", "10")}
	if _, err := SpendingImpact(nil, decimal.NewFromInt(100), decimal.NewFromInt(10), clock); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("empty ledger: %v", err)
	}
	if _, err := SpendingImpact(ledger, decimal.NewFromInt(100), decimal.NewFromInt(-10), clock); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("negative purchase: %v", err)
	}
	if _, err := SpendingImpact(ledger, decimal.NewFromInt(-100), decimal.NewFromInt(10), clock); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("negative payment: %v", err)
	}
}

func TestSuggestPayment(t *testing.T) {
	ledger := core.Ledger{debt("A", "1200", "12", "30"), debt("B", "1200", "0", "20")}

	rec, err := SuggestPayment(ledger, decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDecimal(t, "minimum", rec.Minimum, "50")
	assertDecimal(t, "suggested", rec.Suggested, "200")
	assertDecimal(t, "aggressive", rec.Aggressive, "200")
	assertDecimal(t, "moderate", rec.Moderate, "100")

	one, two := rec.Scenarios.OneYear, rec.Scenarios.TwoYears
	if one.Months == 0 || one.Months > two.Months {
		t.Fatalf("one year %d months, two years %d months", one.Months, two.Months)
	}
	if !one.InterestPaid.LessThan(two.InterestPaid) {
		t.Fatalf("one year interest %s should be below %s", one.InterestPaid, two.InterestPaid)
	}
}

func TestSuggestPaymentRounding(t *testing.T) {
	ledger := core.Ledger{debt("A", "1000", "10", "33")}
	cases := []struct {
		income string
		want   string
	}{
		{"0", "50"},
		{"1003", "201"},
	}
	for _, tc := range cases {
		rec, err := SuggestPayment(ledger, dec(t, tc.income))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDecimal(t, "suggested for income "+tc.income, rec.Suggested, tc.want)
	}
}

func TestSuggestPaymentZeroLedger(t *testing.T) {
	rec, err := SuggestPayment(core.Ledger{debt("A", "0", "5", "0")}, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.Suggested.IsZero() || rec.Scenarios.OneYear.Months != 0 {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
}

func TestSuggestPaymentRejectsNegativeIncome(t *testing.T) {
	_, err := SuggestPayment(core.Ledger{debt("A", "10", "5", "1")}, decimal.NewFromInt(-1))
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
