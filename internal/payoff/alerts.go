package payoff

import (
	"fmt"

	"github.com/shopspring/decimal"

	"debtpilot/internal/core"
)

var (
	highInterestRate = decimal.NewFromInt(20)
	spendingShare    = decimal.RequireFromString("0.5")
	progressHorizon  = 12
)

// GenerateAlerts applies the spending, interest and progress rules in that
// order. Rules are independent and any subset may fire. The progress rule is
// skipped when a zero payment leaves the ledger unpayable.
func GenerateAlerts(debts core.Ledger, recent []core.Transaction, monthlyPayment decimal.Decimal) ([]core.Alert, error) {
	if err := debts.Validate(); err != nil {
		return nil, err
	}
	if monthlyPayment.IsNegative() {
		return nil, fmt.Errorf("%w: monthly payment is negative", core.ErrInvalidInput)
	}
	alerts := []core.Alert{}

	spent := decimal.Zero
	for _, tx := range recent {
		if tx.IsCharge() {
			spent = spent.Add(tx.Amount.Abs())
		}
	}
	if spent.GreaterThan(monthlyPayment.Mul(spendingShare)) {
		alerts = append(alerts, core.Alert{
			Type:    core.AlertWarning,
			Title:   "High Spending Alert",
			Message: fmt.Sprintf("Recent charges (%s) are offsetting your debt payments.", core.FormatAmount(spent)),
			Action:  "Review spending categories",
		})
	}

	var costly bool
	interest := decimal.Zero
	for _, d := range debts {
		if d.InterestRate.GreaterThan(highInterestRate) {
			costly = true
			interest = interest.Add(core.MonthlyInterest(d.Balance, d.InterestRate))
		}
	}
	if costly {
		alerts = append(alerts, core.Alert{
			Type:    core.AlertError,
			Title:   "High Interest Warning",
			Message: fmt.Sprintf("You're paying %s/month in interest on high-rate cards.", core.FormatAmount(interest)),
			Action:  "Consider balance transfer or increase payments",
		})
	}

	if !monthlyPayment.IsPositive() && debts.HasOutstanding() {
		return alerts, nil
	}
	sim, err := Simulate(debts, monthlyPayment, core.Avalanche)
	if err != nil {
		return nil, fmt.Errorf("simulate progress: %w", err)
	}
	if !sim.Capped && sim.MonthsToPayoff <= progressHorizon {
		alerts = append(alerts, core.Alert{
			Type:    core.AlertSuccess,
			Title:   "Great Progress!",
			Message: fmt.Sprintf("At this rate, you'll be debt-free in %d months!", sim.MonthsToPayoff),
			Action:  "Keep it up",
		})
	}
	return alerts, nil
}
