package payoff

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"debtpilot/internal/core"
)

// Clock supplies the current time to reports anchored on today.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// DaysPerMonth converts simulated months to calendar days.
const DaysPerMonth = 30

var (
	minimumMultiplier = decimal.RequireFromString("1.5")
	incomeShare       = decimal.RequireFromString("0.2")
	oneYear           = decimal.NewFromInt(12)
	twoYears          = decimal.NewFromInt(24)
)

// CompareStrategies runs the same ledger and payment under both strategies.
func CompareStrategies(debts core.Ledger, monthlyPayment decimal.Decimal) (core.StrategyComparison, error) {
	avalanche, err := Simulate(debts, monthlyPayment, core.Avalanche)
	if err != nil {
		return core.StrategyComparison{}, fmt.Errorf("simulate avalanche: %w", err)
	}
	snowball, err := Simulate(debts, monthlyPayment, core.Snowball)
	if err != nil {
		return core.StrategyComparison{}, fmt.Errorf("simulate snowball: %w", err)
	}

	return core.StrategyComparison{
		Avalanche: core.AvalancheOutcome{
			StrategyOutcome: outcome(avalanche),
			Savings:         snowball.TotalInterestPaid.Sub(avalanche.TotalInterestPaid),
		},
		Snowball: core.SnowballOutcome{
			StrategyOutcome: outcome(snowball),
			QuickWins:       quickWins(snowball.Timeline),
		},
	}, nil
}

func outcome(r core.SimulationResult) core.StrategyOutcome {
	return core.StrategyOutcome{
		Months:       r.MonthsToPayoff,
		InterestPaid: r.TotalInterestPaid,
		Capped:       r.Capped,
	}
}

// quickWins counts months, not debts: two debts cleared in the same month
// count once.
func quickWins(timeline []core.MonthlySnapshot) int {
	n := 0
	for _, snap := range timeline {
		if snap.HasPaidOff() {
			n++
		}
	}
	return n
}

// SpendingImpact measures how a one-off purchase charged to the
// highest-rate debt delays payoff under the avalanche strategy.
// The new payoff date counts from clock's now, not from the baseline payoff.
func SpendingImpact(debts core.Ledger, monthlyPayment, purchase decimal.Decimal, clock Clock) (core.SpendingImpact, error) {
	if len(debts) == 0 {
		return core.SpendingImpact{}, fmt.Errorf("%w: no debt to charge the purchase to", core.ErrInvalidInput)
	}
	if purchase.IsNegative() {
		return core.SpendingImpact{}, fmt.Errorf("%w: purchase %s is negative", core.ErrInvalidInput, purchase)
	}
	if clock == nil {
		clock = SystemClock
	}

	baseline, err := Simulate(debts, monthlyPayment, core.Avalanche)
	if err != nil {
		return core.SpendingImpact{}, fmt.Errorf("simulate baseline: %w", err)
	}

	target := highestRate(debts)
	charged := debts.Clone()
	charged[target].Balance = charged[target].Balance.Add(purchase)

	withPurchase, err := Simulate(charged, monthlyPayment, core.Avalanche)
	if err != nil {
		return core.SpendingImpact{}, fmt.Errorf("simulate with purchase: %w", err)
	}

	delay := int64(withPurchase.MonthsToPayoff-baseline.MonthsToPayoff) * DaysPerMonth
	days := time.Duration(withPurchase.MonthsToPayoff*DaysPerMonth) * 24 * time.Hour
	return core.SpendingImpact{
		DelayDays:     delay,
		ExtraInterest: withPurchase.TotalInterestPaid.Sub(baseline.TotalInterestPaid),
		NewPayoffDate: clock.Now().Add(days),
		AffectedDebt:  debts[target].Name,
	}, nil
}

// highestRate returns the index of the first debt with the strictly
// highest interest rate.
func highestRate(debts core.Ledger) int {
	best := 0
	for i := 1; i < len(debts); i++ {
		if debts[i].InterestRate.GreaterThan(debts[best].InterestRate) {
			best = i
		}
	}
	return best
}

// SuggestPayment proposes a monthly payment from the ledger's minimums and
// the household income, and projects one- and two-year payoff targets.
func SuggestPayment(debts core.Ledger, monthlyIncome decimal.Decimal) (core.PaymentRecommendation, error) {
	if err := debts.Validate(); err != nil {
		return core.PaymentRecommendation{}, err
	}
	if monthlyIncome.IsNegative() {
		return core.PaymentRecommendation{}, fmt.Errorf("%w: monthly income %s is negative", core.ErrInvalidInput, monthlyIncome)
	}

	minimum := debts.TotalMinimums()
	total := debts.TotalBalance()
	suggested := decimal.Max(minimum.Mul(minimumMultiplier), monthlyIncome.Mul(incomeShare)).Round(0)

	yearly := total.Div(oneYear)
	biennial := total.Div(twoYears)

	fast, err := Simulate(debts, yearly, core.Avalanche)
	if err != nil {
		return core.PaymentRecommendation{}, fmt.Errorf("simulate one year target: %w", err)
	}
	slow, err := Simulate(debts, biennial, core.Avalanche)
	if err != nil {
		return core.PaymentRecommendation{}, fmt.Errorf("simulate two year target: %w", err)
	}

	return core.PaymentRecommendation{
		Minimum:    minimum,
		Suggested:  suggested,
		Aggressive: yearly.Round(0),
		Moderate:   biennial.Round(0),
		Scenarios: core.PaymentScenarios{
			OneYear:  scenario(fast),
			TwoYears: scenario(slow),
		},
	}, nil
}

func scenario(r core.SimulationResult) core.PaymentScenario {
	return core.PaymentScenario{
		Months:       r.MonthsToPayoff,
		InterestPaid: r.TotalInterestPaid,
		Capped:       r.Capped,
	}
}
