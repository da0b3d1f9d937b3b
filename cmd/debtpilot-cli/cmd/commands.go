package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"debtpilot/internal/core"
	"debtpilot/internal/payoff"
)

func newSimulateCmd(opts *options) *cobra.Command {
	var summary bool
	c := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate month-by-month payoff with the plan's strategy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, err := opts.load(cmd)
			if err != nil {
				return err
			}
			res, err := payoff.Simulate(lp.plan.Debts, lp.plan.MonthlyPayment, lp.plan.Strategy)
			if err != nil {
				return err
			}
			if summary {
				res.Timeline = []core.MonthlySnapshot{}
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	c.Flags().BoolVar(&summary, "summary", false, "omit the monthly timeline")
	return c
}

type compareOutput struct {
	core.StrategyComparison
	Recommended core.Strategy `json:"recommended"`
}

func newCompareCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare avalanche and snowball for the same payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, err := opts.load(cmd)
			if err != nil {
				return err
			}
			cmp, err := payoff.CompareStrategies(lp.plan.Debts, lp.plan.MonthlyPayment)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), compareOutput{StrategyComparison: cmp, Recommended: cmp.Recommended()})
		},
	}
}

func newImpactCmd(opts *options) *cobra.Command {
	var purchase string
	c := &cobra.Command{
		Use:   "impact",
		Short: "Show how a new purchase delays payoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, err := opts.load(cmd)
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(purchase)
			if err != nil {
				return fmt.Errorf("--purchase: %w", err)
			}
			impact, err := payoff.SpendingImpact(lp.plan.Debts, lp.plan.MonthlyPayment, amount, payoff.SystemClock)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), impact)
		},
	}
	c.Flags().StringVar(&purchase, "purchase", "", "purchase amount charged to the highest-rate debt")
	_ = c.MarkFlagRequired("purchase")
	return c
}

func newSuggestCmd(opts *options) *cobra.Command {
	var income string
	c := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest a monthly payment from minimums and income",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, err := opts.load(cmd)
			if err != nil {
				return err
			}
			monthly, err := amountFlag("income", income, lp.plan.MonthlyIncome)
			if err != nil {
				return err
			}
			rec, err := payoff.SuggestPayment(lp.plan.Debts, monthly)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	c.Flags().StringVar(&income, "income", "", "override the monthly income")
	return c
}

type alertsOutput struct {
	Alerts []core.Alert `json:"alerts"`
}

func newAlertsCmd(opts *options) *cobra.Command {
	var window time.Duration
	c := &cobra.Command{
		Use:   "alerts",
		Short: "Evaluate spending, interest and progress alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, err := opts.load(cmd)
			if err != nil {
				return err
			}
			recent := recentTransactions(lp.transactions, window, time.Now())
			alerts, err := payoff.GenerateAlerts(lp.plan.Debts, recent, lp.plan.MonthlyPayment)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), alertsOutput{Alerts: alerts})
		},
	}
	c.Flags().DurationVar(&window, "window", 0, "only count transactions newer than this (0 counts all)")
	return c
}

// recentTransactions keeps transactions inside window. Undated
// transactions always count.
func recentTransactions(txs []core.Transaction, window time.Duration, now time.Time) []core.Transaction {
	if window <= 0 {
		return txs
	}
	since := now.Add(-window)
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.OccurredAt.IsZero() || !tx.OccurredAt.Before(since) {
			out = append(out, tx)
		}
	}
	return out
}

type orderOutput struct {
	Strategy core.Strategy `json:"strategy"`
	Debts    []core.Debt   `json:"debts"`
}

func newOrderCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "List debts in the order extra payments are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, err := opts.load(cmd)
			if err != nil {
				return err
			}
			ordered, err := payoff.PriorityOrder(lp.plan.Debts, lp.plan.Strategy)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), orderOutput{Strategy: lp.plan.Strategy, Debts: ordered})
		},
	}
}
