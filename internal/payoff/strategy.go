package payoff

import (
	"fmt"
	"sort"

	"debtpilot/internal/core"
)

// PriorityOrder returns the debts in the order extra payment is directed
// under strategy. Ties keep ledger order. The ledger is not modified.
func PriorityOrder(debts core.Ledger, strategy core.Strategy) ([]core.Debt, error) {
	idx, err := priorityIndices(debts, strategy)
	if err != nil {
		return nil, err
	}
	out := make([]core.Debt, len(idx))
	for i, j := range idx {
		out[i] = debts[j]
	}
	return out, nil
}

func priorityIndices(debts core.Ledger, strategy core.Strategy) ([]int, error) {
	less, err := priorityLess(strategy)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(debts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return less(debts[idx[a]], debts[idx[b]])
	})
	return idx, nil
}

func priorityLess(strategy core.Strategy) (func(a, b core.Debt) bool, error) {
	switch strategy {
	case core.Avalanche:
		return func(a, b core.Debt) bool { return a.InterestRate.GreaterThan(b.InterestRate) }, nil
	case core.Snowball:
		return func(a, b core.Debt) bool { return a.Balance.LessThan(b.Balance) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidStrategy, string(strategy))
	}
}
