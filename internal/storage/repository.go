// Package storage persists plans, their debts and recent transactions in
// SQLite. Amounts are stored as decimal strings so no precision is lost.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"debtpilot/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreatePlan inserts p and its debts in one transaction and returns the
// stored plan with its new ID.
func (r *SQLiteRepository) CreatePlan(ctx context.Context, p core.Plan) (core.Plan, error) {
	if err := p.Validate(); err != nil {
		return core.Plan{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = r.now().UTC().Truncate(time.Second)
	p.Debts = p.Debts.Clone()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Plan{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO plans (id, name, monthly_payment, monthly_income, strategy, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.MonthlyPayment.String(), p.MonthlyIncome.String(), string(p.Strategy), p.CreatedAt.Unix())
	if err != nil {
		return core.Plan{}, fmt.Errorf("insert plan: %w", err)
	}

	for i, d := range p.Debts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO debts (plan_id, position, name, balance, interest_rate, minimum_payment)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, i, d.Name, d.Balance.String(), d.InterestRate.String(), d.MinimumPayment.String())
		if err != nil {
			return core.Plan{}, fmt.Errorf("insert debt %q: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Plan{}, fmt.Errorf("commit plan: %w", err)
	}

	slog.InfoContext(ctx, "Plan saved to SQLite",
		"plan_id", p.ID,
		"name", p.Name,
		"debt_count", len(p.Debts),
		"strategy", p.Strategy)

	return p, nil
}

func (r *SQLiteRepository) GetPlan(ctx context.Context, id string) (core.Plan, error) {
	var (
		p               core.Plan
		payment, income string
		strategy        string
		createdAt       int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, monthly_payment, monthly_income, strategy, created_at FROM plans WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &payment, &income, &strategy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Plan{}, core.ErrPlanNotFound
	}
	if err != nil {
		return core.Plan{}, fmt.Errorf("query plan: %w", err)
	}

	if p.MonthlyPayment, err = decimal.NewFromString(payment); err != nil {
		return core.Plan{}, fmt.Errorf("decode monthly payment: %w", err)
	}
	if p.MonthlyIncome, err = decimal.NewFromString(income); err != nil {
		return core.Plan{}, fmt.Errorf("decode monthly income: %w", err)
	}
	p.Strategy = core.Strategy(strategy)
	p.CreatedAt = time.Unix(createdAt, 0).UTC()

	p.Debts, err = r.planDebts(ctx, id)
	if err != nil {
		return core.Plan{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) planDebts(ctx context.Context, planID string) (core.Ledger, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, balance, interest_rate, minimum_payment FROM debts WHERE plan_id = ? ORDER BY position`, planID)
	if err != nil {
		return nil, fmt.Errorf("query debts: %w", err)
	}
	defer rows.Close()

	ledger := core.Ledger{}
	for rows.Next() {
		var (
			d                      core.Debt
			balance, rate, minimum string
		)
		if err := rows.Scan(&d.Name, &balance, &rate, &minimum); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		if d.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("decode balance of %q: %w", d.Name, err)
		}
		if d.InterestRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("decode interest rate of %q: %w", d.Name, err)
		}
		if d.MinimumPayment, err = decimal.NewFromString(minimum); err != nil {
			return nil, fmt.Errorf("decode minimum payment of %q: %w", d.Name, err)
		}
		ledger = append(ledger, d)
	}
	return ledger, rows.Err()
}

// ListPlanIDs returns IDs in creation order.
func (r *SQLiteRepository) ListPlanIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM plans ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query plan ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan plan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) AddTransaction(ctx context.Context, planID string, t core.Transaction) error {
	if err := r.planExists(ctx, planID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (plan_id, amount, category, occurred_at) VALUES (?, ?, ?, ?)`,
		planID, t.Amount.String(), t.Category, t.OccurredAt.Unix())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// RecentTransactions returns transactions at or after since, oldest first.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, planID string, since time.Time) ([]core.Transaction, error) {
	if err := r.planExists(ctx, planID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount, category, occurred_at FROM transactions
		 WHERE plan_id = ? AND occurred_at >= ?
		 ORDER BY occurred_at, id`, planID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			t          core.Transaction
			amount     string
			occurredAt int64
		)
		if err := rows.Scan(&amount, &t.Category, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("decode transaction amount: %w", err)
		}
		t.OccurredAt = time.Unix(occurredAt, 0).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) planExists(ctx context.Context, planID string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM plans WHERE id = ?`, planID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrPlanNotFound
	}
	if err != nil {
		return fmt.Errorf("check plan: %w", err)
	}
	return nil
}
