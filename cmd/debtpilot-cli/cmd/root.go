// Package cmd provides the debtpilot-cli commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"debtpilot/internal/core"
	"debtpilot/internal/ledgerfile"
	applog "debtpilot/internal/log"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	file     string
	document int
	payment  string
	strategy string
	debug    bool
}

// NewRootCmd builds the command tree. Output goes to the command's out
// writer, logs to stderr.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "debtpilot-cli",
		Short: "Plan debt payoff from a YAML ledger",
		Long: `debtpilot-cli runs payoff simulations over a ledger file and prints
the results as JSON.

A ledger file holds one or more YAML documents:

  name: household
  monthlyPayment: 800
  monthlyIncome: 4200
  strategy: avalanche
  debts:
    - name: Visa
      balance: 3200
      interestRate: 22.9
      minimumPayment: 90

Example:
  debtpilot-cli simulate -f ledger.yaml
  debtpilot-cli impact -f ledger.yaml --purchase 450
  debtpilot-cli compare -f ledger.yaml --payment 1000`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.debug {
				level = slog.LevelDebug
			}
			lc := applog.DefaultConfig()
			lc.Component = applog.ComponentCLI
			lc.Level = level
			lc.Output = cmd.ErrOrStderr()
			applog.SetDefault(applog.New(lc))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.file, "file", "f", "", "ledger file (\"-\" reads stdin)")
	flags.IntVar(&opts.document, "doc", 0, "index of the document to use in a multi-document file")
	flags.StringVar(&opts.payment, "payment", "", "override the monthly payment")
	flags.StringVar(&opts.strategy, "strategy", "", "override the strategy (avalanche or snowball)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	_ = root.MarkPersistentFlagRequired("file")

	root.AddCommand(
		newSimulateCmd(opts),
		newCompareCmd(opts),
		newImpactCmd(opts),
		newSuggestCmd(opts),
		newAlertsCmd(opts),
		newOrderCmd(opts),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadedPlan is the selected document with flag overrides applied.
type loadedPlan struct {
	plan         core.Plan
	transactions []core.Transaction
}

func (o *options) load(cmd *cobra.Command) (loadedPlan, error) {
	var (
		docs []ledgerfile.Document
		err  error
	)
	if o.file == "-" {
		docs, err = ledgerfile.Parse(cmd.InOrStdin())
	} else {
		docs, err = ledgerfile.Load(o.file)
	}
	if err != nil {
		return loadedPlan{}, err
	}
	if o.document < 0 || o.document >= len(docs) {
		return loadedPlan{}, fmt.Errorf("%w: document %d out of range (file has %d)", core.ErrInvalidInput, o.document, len(docs))
	}
	doc := docs[o.document]

	if o.strategy != "" {
		doc.Strategy = o.strategy
	}
	if o.payment != "" {
		if doc.MonthlyPayment, err = core.ParseAmount(o.payment); err != nil {
			return loadedPlan{}, fmt.Errorf("--payment: %w", err)
		}
	}

	p, err := doc.Plan(fmt.Sprintf("document %d", o.document))
	if err != nil {
		return loadedPlan{}, err
	}
	slog.Debug("Ledger loaded",
		applog.FieldPlanName, p.Name,
		applog.FieldDebtCount, len(p.Debts),
		applog.FieldStrategy, p.Strategy,
		applog.FieldPayment, p.MonthlyPayment.String())
	return loadedPlan{plan: p, transactions: doc.Transactions}, nil
}

// amountFlag parses an optional amount flag, keeping fallback when unset.
func amountFlag(name, value string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := core.ParseAmount(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
