// This file implements decoding and normalisation of JSON request bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"debtpilot/internal/core"
)

const maxBodyBytes = 1 << 20

// PayoffRequest is the body accepted by every stateless payoff endpoint.
// Each endpoint reads the fields it needs.
type PayoffRequest struct {
	Debts              core.Ledger        `json:"debts"`
	MonthlyPayment     decimal.Decimal    `json:"monthlyPayment"`
	Strategy           string             `json:"strategy"`
	MonthlyIncome      decimal.Decimal    `json:"monthlyIncome"`
	NewPurchase        decimal.Decimal    `json:"newPurchase"`
	RecentTransactions []core.Transaction `json:"recentTransactions"`
}

type PlanRequest struct {
	Name           string          `json:"name"`
	Debts          core.Ledger     `json:"debts"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	MonthlyIncome  decimal.Decimal `json:"monthlyIncome"`
	Strategy       string          `json:"strategy"`
}

type TransactionRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// decodeJSON reads exactly one JSON document from the body into dst.
// Syntax and type errors are reported as ErrMalformedRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrMalformedRequest)
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedRequest, tooLarge.Limit)
		}
		return fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", ErrMalformedRequest)
	}
	return nil
}

// normalise cleans user-entered names and resolves the strategy.
func (p *PayoffRequest) normalise() (core.Strategy, error) {
	p.Debts = sanitizeDebts(p.Debts)
	for i := range p.RecentTransactions {
		p.RecentTransactions[i].Category = sanitizeInput(p.RecentTransactions[i].Category)
	}
	return core.ParseStrategy(p.Strategy)
}

func (p PlanRequest) plan() (core.Plan, error) {
	strategy, err := core.ParseStrategy(p.Strategy)
	if err != nil {
		return core.Plan{}, err
	}
	return core.Plan{
		Name:           sanitizeInput(p.Name),
		Debts:          sanitizeDebts(p.Debts),
		MonthlyPayment: p.MonthlyPayment,
		MonthlyIncome:  p.MonthlyIncome,
		Strategy:       strategy,
	}, nil
}

func (t TransactionRequest) transaction() core.Transaction {
	return core.Transaction{
		Amount:     t.Amount,
		Category:   sanitizeInput(t.Category),
		OccurredAt: t.OccurredAt,
	}
}

func sanitizeDebts(debts core.Ledger) core.Ledger {
	out := debts.Clone()
	for i := range out {
		out[i].Name = sanitizeInput(out[i].Name)
	}
	return out
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
