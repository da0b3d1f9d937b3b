package cli

import (
	"context"
	"fmt"
	"log/slog"

	"debtpilot/internal/backend"
	"debtpilot/internal/cache"
	"debtpilot/internal/config"
	"debtpilot/internal/payoff"
	"debtpilot/internal/services"
)

// Planner bundles the plan service with the store behind it so callers can
// probe readiness and release resources.
type Planner struct {
	Service *services.PlanService
	Store   backend.Store
	cleanup []func() error
}

// Close releases the cache connection and the store.
func (p *Planner) Close() error {
	var firstErr error
	for i := len(p.cleanup) - 1; i >= 0; i-- {
		if err := p.cleanup[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// InitPlanner creates the configured store and result cache and wires them
// into a PlanService. In-process caches are registered with manager.
func InitPlanner(ctx context.Context, logger *slog.Logger, cfg *config.Config, manager *cache.Manager) (*Planner, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	factory := backend.NewFactory(logger)

	store, err := factory.CreateStore(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	p := &Planner{Store: store.Store}
	if store.Cleanup != nil {
		p.cleanup = append(p.cleanup, store.Cleanup)
	}

	results, closeCache, err := factory.CreateCache(ctx, bcfg, manager)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("create cache: %w", err)
	}
	if closeCache != nil {
		p.cleanup = append(p.cleanup, closeCache)
	}

	p.Service = services.NewPlanService(store.Store, results, payoff.SystemClock, cfg.RecentWindow)
	return p, nil
}
