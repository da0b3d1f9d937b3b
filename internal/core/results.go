package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtBalance is one debt's balance at the end of a simulated month.
type DebtBalance struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthlySnapshot lists every debt still tracked at the end of Month,
// in ledger order.
type MonthlySnapshot struct {
	Month        int             `json:"month"`
	Debts        []DebtBalance   `json:"debts"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

// HasPaidOff reports whether some debt reached zero in this month.
func (s MonthlySnapshot) HasPaidOff() bool {
	for _, d := range s.Debts {
		if d.Balance.IsZero() {
			return true
		}
	}
	return false
}

// SimulationResult is the outcome of running a ledger to payoff.
// Capped is set when the month limit stopped the run before every debt was
// cleared.
type SimulationResult struct {
	Strategy          Strategy          `json:"strategy"`
	MonthsToPayoff    int               `json:"monthsToPayoff"`
	TotalInterestPaid decimal.Decimal   `json:"totalInterestPaid"`
	Timeline          []MonthlySnapshot `json:"timeline"`
	Capped            bool              `json:"capped"`
}

// FinalBalance is the total still owed after the last simulated month.
func (r SimulationResult) FinalBalance() decimal.Decimal {
	if len(r.Timeline) == 0 {
		return decimal.Zero
	}
	return r.Timeline[len(r.Timeline)-1].TotalBalance
}

// Clone returns a copy that shares no slices with r.
func (r SimulationResult) Clone() SimulationResult {
	if r.Timeline == nil {
		return r
	}
	timeline := make([]MonthlySnapshot, len(r.Timeline))
	for i, snap := range r.Timeline {
		snap.Debts = append([]DebtBalance(nil), snap.Debts...)
		timeline[i] = snap
	}
	r.Timeline = timeline
	return r
}

// StrategyOutcome summarises a single strategy run.
type StrategyOutcome struct {
	Months       int             `json:"months"`
	InterestPaid decimal.Decimal `json:"interestPaid"`
	Capped       bool            `json:"capped"`
}

type AvalancheOutcome struct {
	StrategyOutcome
	// Savings is snowball interest minus avalanche interest.
	Savings decimal.Decimal `json:"savings"`
}

type SnowballOutcome struct {
	StrategyOutcome
	// QuickWins counts timeline months in which at least one debt reached
	// zero, not the number of debts paid off.
	QuickWins int `json:"quickWins"`
}

type StrategyComparison struct {
	Avalanche AvalancheOutcome `json:"avalanche"`
	Snowball  SnowballOutcome  `json:"snowball"`
}

// Recommended returns the strategy with less interest paid, preferring
// Avalanche on a tie.
func (c StrategyComparison) Recommended() Strategy {
	if c.Snowball.InterestPaid.LessThan(c.Avalanche.InterestPaid) {
		return Snowball
	}
	return Avalanche
}

type SpendingImpact struct {
	DelayDays     int64           `json:"delayDays"`
	ExtraInterest decimal.Decimal `json:"extraInterest"`
	NewPayoffDate time.Time       `json:"newPayoffDate"`
	AffectedDebt  string          `json:"affectedDebt"`
}

type PaymentScenario struct {
	Months       int             `json:"months"`
	InterestPaid decimal.Decimal `json:"interestPaid"`
	Capped       bool            `json:"capped"`
}

type PaymentScenarios struct {
	OneYear  PaymentScenario `json:"oneYear"`
	TwoYears PaymentScenario `json:"twoYears"`
}

type PaymentRecommendation struct {
	Minimum    decimal.Decimal  `json:"minimum"`
	Suggested  decimal.Decimal  `json:"suggested"`
	Aggressive decimal.Decimal  `json:"aggressive"`
	Moderate   decimal.Decimal  `json:"moderate"`
	Scenarios  PaymentScenarios `json:"scenarios"`
}

type AlertType string

const (
	AlertWarning AlertType = "warning"
	AlertError   AlertType = "error"
	AlertSuccess AlertType = "success"
)

type Alert struct {
	Type    AlertType `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Action  string    `json:"action"`
}

// DebtShare is a debt's slice of the total balance, in percent.
type DebtShare struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Share   decimal.Decimal `json:"share"`
}

// Dashboard aggregates every evaluation of a stored plan.
type Dashboard struct {
	Plan           Plan                  `json:"plan"`
	Simulation     SimulationResult      `json:"simulation"`
	Comparison     StrategyComparison    `json:"comparison"`
	Recommendation PaymentRecommendation `json:"recommendation"`
	Alerts         []Alert               `json:"alerts"`
	Shares         []DebtShare           `json:"shares"`
	GeneratedAt    time.Time             `json:"generatedAt"`
}
