// Package payoff simulates paying down a debt ledger month by month and
// builds the comparative reports and alerts derived from those runs.
//
// Every function is pure: inputs are never modified and no state is kept
// between calls, so callers may run them concurrently.
package payoff

import (
	"fmt"

	"github.com/shopspring/decimal"

	"debtpilot/internal/core"
)

// MaxMonths caps a simulation at thirty years.
const MaxMonths = 360

type workingDebt struct {
	name    string
	balance decimal.Decimal
	rate    decimal.Decimal
	minimum decimal.Decimal
	tracked bool
}

// schedule is the engine's private copy of a ledger.
type schedule struct {
	debts    []workingDebt
	priority []int
}

// monthStep reports how one month's budget was spent.
type monthStep struct {
	minimumsPaid decimal.Decimal
	extraPaid    decimal.Decimal
	extraTarget  string
}

func newSchedule(debts core.Ledger, strategy core.Strategy) (*schedule, error) {
	priority, err := priorityIndices(debts, strategy)
	if err != nil {
		return nil, err
	}
	s := &schedule{
		debts:    make([]workingDebt, len(debts)),
		priority: priority,
	}
	for i, d := range debts {
		s.debts[i] = workingDebt{
			name:    d.Name,
			balance: d.Balance,
			rate:    d.InterestRate,
			minimum: d.MinimumPayment,
			tracked: true,
		}
	}
	return s, nil
}

func (s *schedule) outstanding() bool {
	for _, d := range s.debts {
		if d.tracked && d.balance.IsPositive() {
			return true
		}
	}
	return false
}

// step accrues interest and pays minimums in ledger order, then sends the
// remaining budget to the first debt in priority order that still owes.
// Balances keep full precision; only snapshots are rounded to cents.
func (s *schedule) step(budget decimal.Decimal) monthStep {
	st := monthStep{minimumsPaid: decimal.Zero, extraPaid: decimal.Zero}
	available := budget

	for i := range s.debts {
		d := &s.debts[i]
		if !d.tracked || !d.balance.IsPositive() {
			continue
		}
		d.balance = d.balance.Add(core.MonthlyInterest(d.balance, d.rate))
		pay := decimal.Min(d.minimum, d.balance)
		d.balance = d.balance.Sub(pay)
		available = available.Sub(pay)
		st.minimumsPaid = st.minimumsPaid.Add(pay)
	}

	if available.IsPositive() {
		for _, i := range s.priority {
			d := &s.debts[i]
			if !d.tracked || !d.balance.IsPositive() {
				continue
			}
			extra := decimal.Min(available, d.balance)
			d.balance = d.balance.Sub(extra)
			st.extraPaid = extra
			st.extraTarget = d.name
			break
		}
	}

	// A residue under half a cent counts as cleared.
	for i := range s.debts {
		if !core.RoundCents(s.debts[i].balance).IsPositive() {
			s.debts[i].balance = decimal.Zero
		}
	}
	return st
}

func (s *schedule) snapshot(month int) core.MonthlySnapshot {
	snap := core.MonthlySnapshot{Month: month, TotalBalance: decimal.Zero}
	for _, d := range s.debts {
		if !d.tracked {
			continue
		}
		balance := core.RoundCents(d.balance)
		snap.Debts = append(snap.Debts, core.DebtBalance{Name: d.name, Balance: balance})
		snap.TotalBalance = snap.TotalBalance.Add(balance)
	}
	return snap
}

// retirePaidOff stops tracking debts that reached zero. They still appear in
// the snapshot of the month they were cleared.
func (s *schedule) retirePaidOff() {
	for i := range s.debts {
		if s.debts[i].tracked && !s.debts[i].balance.IsPositive() {
			s.debts[i].tracked = false
		}
	}
}

// Simulate pays down debts with monthlyPayment each month until every
// balance is cleared or MaxMonths is reached.
//
// A ledger without any positive balance yields an empty result. Otherwise
// monthlyPayment must be positive. Minimum payments are always honored even
// when they exceed monthlyPayment; such months get no extra payment.
func Simulate(debts core.Ledger, monthlyPayment decimal.Decimal, strategy core.Strategy) (core.SimulationResult, error) {
	if err := strategy.Validate(); err != nil {
		return core.SimulationResult{}, err
	}
	if err := debts.Validate(); err != nil {
		return core.SimulationResult{}, err
	}
	if monthlyPayment.IsNegative() {
		return core.SimulationResult{}, fmt.Errorf("%w: monthly payment %s is negative", core.ErrInvalidInput, monthlyPayment)
	}

	result := core.SimulationResult{
		Strategy:          strategy,
		TotalInterestPaid: decimal.Zero,
		Timeline:          []core.MonthlySnapshot{},
	}
	if !debts.HasOutstanding() {
		return result, nil
	}
	if !monthlyPayment.IsPositive() {
		return core.SimulationResult{}, fmt.Errorf("%w: monthly payment must be positive", core.ErrInvalidInput)
	}

	sched, err := newSchedule(debts, strategy)
	if err != nil {
		return core.SimulationResult{}, err
	}

	month := 0
	for sched.outstanding() && month < MaxMonths {
		month++
		sched.step(monthlyPayment)
		result.Timeline = append(result.Timeline, sched.snapshot(month))
		sched.retirePaidOff()
	}

	result.MonthsToPayoff = month
	result.Capped = sched.outstanding()
	result.TotalInterestPaid = attributedInterest(debts, result.Timeline)
	return result, nil
}

// attributedInterest charges one month of interest at each debt's original
// rate on every balance recorded in the timeline. It is a reporting figure
// and differs from the interest accrued while stepping.
func attributedInterest(debts core.Ledger, timeline []core.MonthlySnapshot) decimal.Decimal {
	rates := make(map[string]decimal.Decimal, len(debts))
	for _, d := range debts {
		rates[d.Name] = d.InterestRate
	}
	total := decimal.Zero
	for _, snap := range timeline {
		for _, d := range snap.Debts {
			total = total.Add(core.MonthlyInterest(d.Balance, rates[d.Name]))
		}
	}
	return core.RoundCents(total)
}
