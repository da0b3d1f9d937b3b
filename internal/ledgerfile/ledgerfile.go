// Package ledgerfile reads plans written by hand in YAML. A file may hold
// several documents separated by "---", one plan each.
package ledgerfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"debtpilot/internal/core"
)

// Document is one plan as written in a ledger file.
//
//	name: household
//	monthlyPayment: 800
//	strategy: snowball
//	debts:
//	  - name: Visa
//	    balance: 3200
//	    interestRate: 22.9
//	    minimumPayment: 90
type Document struct {
	Name           string             `yaml:"name"`
	MonthlyPayment decimal.Decimal    `yaml:"monthlyPayment"`
	MonthlyIncome  decimal.Decimal    `yaml:"monthlyIncome"`
	Strategy       string             `yaml:"strategy"`
	Debts          core.Ledger        `yaml:"debts"`
	Transactions   []core.Transaction `yaml:"transactions"`
}

// Plan converts the document into a validated plan. A missing name
// defaults to fallback.
func (d Document) Plan(fallback string) (core.Plan, error) {
	strategy, err := core.ParseStrategy(d.Strategy)
	if err != nil {
		return core.Plan{}, err
	}
	name := d.Name
	if name == "" {
		name = fallback
	}
	p := core.Plan{
		Name:           name,
		Debts:          d.Debts,
		MonthlyPayment: d.MonthlyPayment,
		MonthlyIncome:  d.MonthlyIncome,
		Strategy:       strategy,
	}
	if err := p.Validate(); err != nil {
		return core.Plan{}, err
	}
	return p, nil
}

// Parse decodes every document in r.
func Parse(r io.Reader) ([]Document, error) {
	dec := yaml.NewDecoder(r)
	var docs []Document
	for {
		var d Document
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode ledger document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, d)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: ledger file is empty", core.ErrInvalidInput)
	}
	return docs, nil
}

// Load reads every document in the file at path.
func Load(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
