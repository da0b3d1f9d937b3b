// Package memory keeps plans and transactions in process memory. It backs
// development runs and tests; everything is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"debtpilot/internal/core"
)

type Store struct {
	mu    sync.Mutex
	order []string
	plans map[string]core.Plan
	txs   map[string][]core.Transaction
	now   func() time.Time
}

func New() *Store {
	return &Store{
		plans: make(map[string]core.Plan),
		txs:   make(map[string][]core.Transaction),
		now:   time.Now,
	}
}

// CreatePlan stores a copy of p under a new ID and returns the stored plan.
func (s *Store) CreatePlan(_ context.Context, p core.Plan) (core.Plan, error) {
	if err := p.Validate(); err != nil {
		return core.Plan{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	p.Debts = p.Debts.Clone()
	p.CreatedAt = s.now().UTC()
	s.plans[p.ID] = p
	s.order = append(s.order, p.ID)
	return p, nil
}

func (s *Store) GetPlan(_ context.Context, id string) (core.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[id]
	if !ok {
		return core.Plan{}, core.ErrPlanNotFound
	}
	p.Debts = p.Debts.Clone()
	return p, nil
}

// ListPlanIDs returns IDs in creation order.
func (s *Store) ListPlanIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}

func (s *Store) AddTransaction(_ context.Context, planID string, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[planID]; !ok {
		return core.ErrPlanNotFound
	}
	s.txs[planID] = append(s.txs[planID], tx)
	return nil
}

// RecentTransactions returns transactions at or after since, oldest first.
func (s *Store) RecentTransactions(_ context.Context, planID string, since time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[planID]; !ok {
		return nil, core.ErrPlanNotFound
	}
	out := []core.Transaction{}
	for _, tx := range s.txs[planID] {
		if !tx.OccurredAt.Before(since) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
