// Package services orchestrates the payoff engine, plan storage and the
// result cache.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"debtpilot/internal/cache"
	"debtpilot/internal/core"
	"debtpilot/internal/log"
	"debtpilot/internal/payoff"
)

// DefaultRecentWindow is how far back transactions count as recent
// spending for alerts.
const DefaultRecentWindow = 30 * 24 * time.Hour

// PlanService runs payoff reports for ad-hoc ledgers and stored plans.
// Simulation results are memoized when a cache is configured; callers
// always receive their own copy.
type PlanService struct {
	store        PlanStore
	results      cache.Cache[core.SimulationResult]
	clock        payoff.Clock
	recentWindow time.Duration
}

func NewPlanService(store PlanStore, results cache.Cache[core.SimulationResult], clock payoff.Clock, recentWindow time.Duration) *PlanService {
	if clock == nil {
		clock = payoff.SystemClock
	}
	if recentWindow <= 0 {
		recentWindow = DefaultRecentWindow
	}
	return &PlanService{
		store:        store,
		results:      results,
		clock:        clock,
		recentWindow: recentWindow,
	}
}

// Simulate runs the payoff engine, serving repeated identical requests
// from the cache.
func (s *PlanService) Simulate(ctx context.Context, debts core.Ledger, payment decimal.Decimal, strategy core.Strategy) (core.SimulationResult, error) {
	if err := strategy.Validate(); err != nil {
		return core.SimulationResult{}, err
	}

	key, err := simulationKey(debts, payment, strategy)
	if err != nil {
		return core.SimulationResult{}, err
	}
	if s.results != nil {
		if res, ok := s.results.Get(key); ok {
			slog.DebugContext(ctx, "Simulation served from cache",
				log.FieldComponent, log.ComponentPlanner,
				log.FieldStrategy, strategy,
				log.FieldCacheHit, true)
			return res.Clone(), nil
		}
	}

	res, err := payoff.Simulate(debts, payment, strategy)
	if err != nil {
		return core.SimulationResult{}, err
	}
	if s.results != nil {
		s.results.Set(key, res.Clone())
	}

	slog.DebugContext(ctx, "Simulation computed",
		log.NewFields().
			WithComponent(log.ComponentPlanner).
			WithSimulation(string(strategy), res.MonthsToPayoff, res.Capped, res.TotalInterestPaid.String()).
			ToSlice()...)
	return res, nil
}

// simulationKey hashes the inputs that fully determine a simulation.
func simulationKey(debts core.Ledger, payment decimal.Decimal, strategy core.Strategy) (string, error) {
	raw, err := json.Marshal(struct {
		Debts    core.Ledger `json:"d"`
		Payment  string      `json:"p"`
		Strategy string      `json:"s"`
	}{debts, payment.String(), string(strategy)})
	if err != nil {
		return "", fmt.Errorf("encode simulation key: %w", err)
	}
	sum := sha256.Sum256(raw)
	return "sim:" + hex.EncodeToString(sum[:]), nil
}

func (s *PlanService) Compare(ctx context.Context, debts core.Ledger, payment decimal.Decimal) (core.StrategyComparison, error) {
	cmp, err := payoff.CompareStrategies(debts, payment)
	if err != nil {
		return core.StrategyComparison{}, err
	}
	slog.DebugContext(ctx, "Strategies compared",
		log.FieldComponent, log.ComponentPlanner,
		"avalanche_months", cmp.Avalanche.Months,
		"snowball_months", cmp.Snowball.Months,
		"savings", cmp.Avalanche.Savings.String())
	return cmp, nil
}

func (s *PlanService) SpendingImpact(ctx context.Context, debts core.Ledger, payment, purchase decimal.Decimal) (core.SpendingImpact, error) {
	return payoff.SpendingImpact(debts, payment, purchase, s.clock)
}

func (s *PlanService) SuggestPayment(ctx context.Context, debts core.Ledger, income decimal.Decimal) (core.PaymentRecommendation, error) {
	return payoff.SuggestPayment(debts, income)
}

func (s *PlanService) Alerts(ctx context.Context, debts core.Ledger, recent []core.Transaction, payment decimal.Decimal) ([]core.Alert, error) {
	return payoff.GenerateAlerts(debts, recent, payment)
}

func (s *PlanService) PriorityOrder(debts core.Ledger, strategy core.Strategy) ([]core.Debt, error) {
	return payoff.PriorityOrder(debts, strategy)
}

// CreatePlan validates and stores p.
func (s *PlanService) CreatePlan(ctx context.Context, p core.Plan) (core.Plan, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Strategy == "" {
		p.Strategy = core.Avalanche
	}
	if err := p.Validate(); err != nil {
		return core.Plan{}, err
	}
	created, err := s.store.CreatePlan(ctx, p)
	if err != nil {
		return core.Plan{}, fmt.Errorf("create plan: %w", err)
	}
	log.NewStructuredLogger(log.FromContext(ctx)).LogPlanCreated(ctx, created.ID, created.Name, len(created.Debts))
	return created, nil
}

func (s *PlanService) GetPlan(ctx context.Context, id string) (core.Plan, error) {
	p, err := s.store.GetPlan(ctx, id)
	if err != nil {
		return core.Plan{}, fmt.Errorf("get plan %s: %w", id, err)
	}
	return p, nil
}

func (s *PlanService) ListPlanIDs(ctx context.Context) ([]string, error) {
	ids, err := s.store.ListPlanIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return ids, nil
}

// RecordTransaction stores tx against a plan. A missing timestamp is set to
// now.
func (s *PlanService) RecordTransaction(ctx context.Context, planID string, tx core.Transaction) (core.Transaction, error) {
	tx.Category = strings.TrimSpace(tx.Category)
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = s.clock.Now()
	}
	tx.OccurredAt = tx.OccurredAt.UTC()
	if err := s.store.AddTransaction(ctx, planID, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("record transaction for plan %s: %w", planID, err)
	}
	return tx, nil
}

func (s *PlanService) recent(ctx context.Context, planID string) ([]core.Transaction, error) {
	since := s.clock.Now().Add(-s.recentWindow)
	txs, err := s.store.RecentTransactions(ctx, planID, since)
	if err != nil {
		return nil, fmt.Errorf("recent transactions for plan %s: %w", planID, err)
	}
	return txs, nil
}

// PlanAlerts evaluates the alert rules for a stored plan against its recent
// transactions. The plan is returned alongside for callers that report it.
func (s *PlanService) PlanAlerts(ctx context.Context, planID string) (core.Plan, []core.Alert, error) {
	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return core.Plan{}, nil, err
	}
	txs, err := s.recent(ctx, planID)
	if err != nil {
		return core.Plan{}, nil, err
	}
	alerts, err := payoff.GenerateAlerts(p.Debts, txs, p.MonthlyPayment)
	if err != nil {
		return core.Plan{}, nil, fmt.Errorf("alerts for plan %s: %w", planID, err)
	}
	return p, alerts, nil
}

// Dashboard computes every report for a stored plan concurrently.
func (s *PlanService) Dashboard(ctx context.Context, planID string) (core.Dashboard, error) {
	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return core.Dashboard{}, err
	}
	txs, err := s.recent(ctx, planID)
	if err != nil {
		return core.Dashboard{}, err
	}

	d := core.Dashboard{
		Plan:        p,
		Shares:      shares(p.Debts),
		GeneratedAt: s.clock.Now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.Simulate(gctx, p.Debts, p.MonthlyPayment, p.Strategy)
		if err != nil {
			return fmt.Errorf("simulate: %w", err)
		}
		d.Simulation = res
		return nil
	})
	g.Go(func() error {
		cmp, err := s.Compare(gctx, p.Debts, p.MonthlyPayment)
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		d.Comparison = cmp
		return nil
	})
	g.Go(func() error {
		rec, err := payoff.SuggestPayment(p.Debts, p.MonthlyIncome)
		if err != nil {
			return fmt.Errorf("suggest payment: %w", err)
		}
		d.Recommendation = rec
		return nil
	})
	g.Go(func() error {
		alerts, err := payoff.GenerateAlerts(p.Debts, txs, p.MonthlyPayment)
		if err != nil {
			return fmt.Errorf("alerts: %w", err)
		}
		d.Alerts = alerts
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("dashboard for plan %s: %w", planID, err)
	}

	slog.InfoContext(ctx, "Dashboard built",
		log.NewFields().
			WithComponent(log.ComponentPlanner).
			WithPlan(p.ID, p.Name, len(p.Debts)).
			WithSimulation(string(p.Strategy), d.Simulation.MonthsToPayoff, d.Simulation.Capped, d.Simulation.TotalInterestPaid.String()).
			ToSlice()...)
	return d, nil
}

// shares splits the total balance by debt. A zero total gives every debt a
// zero share.
func shares(debts core.Ledger) []core.DebtShare {
	total := debts.TotalBalance()
	out := make([]core.DebtShare, 0, len(debts))
	for _, d := range debts {
		out = append(out, core.DebtShare{
			Name:    d.Name,
			Balance: d.Balance,
			Share:   core.Share(d.Balance, total),
		})
	}
	return out
}
