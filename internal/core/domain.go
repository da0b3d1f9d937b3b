// Package core holds the debt ledger model and the value types shared by the
// payoff engine, the stores and the transports.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidStrategy = errors.New("invalid strategy")
	ErrPlanNotFound    = errors.New("plan not found")
)

// Strategy selects which debt receives money left over after minimums.
type Strategy string

const (
	// Avalanche targets the highest interest rate first.
	Avalanche Strategy = "avalanche"
	// Snowball targets the smallest balance first.
	Snowball Strategy = "snowball"
)

// Strategies lists every supported strategy in comparison order.
var Strategies = []Strategy{Avalanche, Snowball}

// ParseStrategy maps a request value to a Strategy. An empty value selects
// Avalanche.
func ParseStrategy(s string) (Strategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Avalanche, nil
	}
	st := Strategy(s)
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

func (s Strategy) Validate() error {
	switch s {
	case Avalanche, Snowball:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStrategy, string(s))
}

// Debt is one liability in a ledger. InterestRate is an annual percentage,
// so 18.5 means 18.5% APR.
type Debt struct {
	Name           string          `json:"name" yaml:"name"`
	Balance        decimal.Decimal `json:"balance" yaml:"balance"`
	InterestRate   decimal.Decimal `json:"interestRate" yaml:"interestRate"`
	MinimumPayment decimal.Decimal `json:"minimumPayment" yaml:"minimumPayment"`
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: debt name is required", ErrInvalidInput)
	}
	if d.Balance.IsNegative() {
		return fmt.Errorf("%w: debt %q has negative balance", ErrInvalidInput, d.Name)
	}
	if d.InterestRate.IsNegative() {
		return fmt.Errorf("%w: debt %q has negative interest rate", ErrInvalidInput, d.Name)
	}
	if d.MinimumPayment.IsNegative() {
		return fmt.Errorf("%w: debt %q has negative minimum payment", ErrInvalidInput, d.Name)
	}
	return nil
}

// Ledger is an ordered collection of debts with unique names.
type Ledger []Debt

func (l Ledger) Validate() error {
	seen := make(map[string]struct{}, len(l))
	for _, d := range l {
		if err := d.Validate(); err != nil {
			return err
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("%w: duplicate debt name %q", ErrInvalidInput, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}

// Clone returns a copy that can be modified without touching l.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return nil
	}
	out := make(Ledger, len(l))
	copy(out, l)
	return out
}

func (l Ledger) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, d := range l {
		total = total.Add(d.Balance)
	}
	return total
}

func (l Ledger) TotalMinimums() decimal.Decimal {
	total := decimal.Zero
	for _, d := range l {
		total = total.Add(d.MinimumPayment)
	}
	return total
}

// HasOutstanding reports whether any debt carries a positive balance.
func (l Ledger) HasOutstanding() bool {
	for _, d := range l {
		if d.Balance.IsPositive() {
			return true
		}
	}
	return false
}

// CategoryDebtPayment marks transactions that are payments toward debt and
// therefore never count as new spending.
const CategoryDebtPayment = "debt_payment"

// Transaction is a recent account movement. Negative amounts are charges.
type Transaction struct {
	Amount     decimal.Decimal `json:"amount" yaml:"amount"`
	Category   string          `json:"category" yaml:"category"`
	OccurredAt time.Time       `json:"occurredAt,omitempty" yaml:"occurredAt,omitempty"`
}

// IsCharge reports whether t is new spending.
func (t Transaction) IsCharge() bool {
	return t.Amount.IsNegative() && t.Category != CategoryDebtPayment
}

// Plan is a stored ledger together with the payment settings used to
// evaluate it.
type Plan struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Debts          Ledger          `json:"debts"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	MonthlyIncome  decimal.Decimal `json:"monthlyIncome"`
	Strategy       Strategy        `json:"strategy"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (p Plan) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, fmt.Errorf("%w: plan name is required", ErrInvalidInput))
	}
	if err := p.Debts.Validate(); err != nil {
		errs = append(errs, err)
	}
	if p.MonthlyPayment.IsNegative() {
		errs = append(errs, fmt.Errorf("%w: monthly payment is negative", ErrInvalidInput))
	} else if !p.MonthlyPayment.IsPositive() && p.Debts.HasOutstanding() {
		errs = append(errs, fmt.Errorf("%w: monthly payment must be positive", ErrInvalidInput))
	}
	if p.MonthlyIncome.IsNegative() {
		errs = append(errs, fmt.Errorf("%w: monthly income is negative", ErrInvalidInput))
	}
	if err := p.Strategy.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
