package services

import (
	"context"
	"time"

	"debtpilot/internal/core"
)

// PlanStore persists plans and the transactions recorded against them.
// Implementations return core.ErrPlanNotFound for unknown IDs.
type PlanStore interface {
	CreatePlan(ctx context.Context, p core.Plan) (core.Plan, error)
	GetPlan(ctx context.Context, id string) (core.Plan, error)
	ListPlanIDs(ctx context.Context) ([]string, error)
	AddTransaction(ctx context.Context, planID string, tx core.Transaction) error
	RecentTransactions(ctx context.Context, planID string, since time.Time) ([]core.Transaction, error)
}
