package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"debtpilot/internal/cache"
	"debtpilot/internal/core"
	applog "debtpilot/internal/log"
	"debtpilot/internal/payoff"
	"debtpilot/internal/services"
	"debtpilot/internal/storage/memory"
)

var testNow = time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	store := memory.New()
	svc := services.NewPlanService(store,
		cache.NewLRUCache[core.SimulationResult](16, time.Minute),
		payoff.ClockFunc(func() time.Time { return testNow }), 0)
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	srv, err := NewServer(":0", svc, opts)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	down := newTestServer(t, Options{Ready: fakePinger{err: errors.New("db gone")}})
	rr := do(t, down, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", rr.Code)
	}
	if body := decode[ErrorBody](t, rr); body.Code != "not_ready" || body.RequestID == "" {
		t.Fatalf("unexpected body %+v", body)
	}
}

const singleDebt = `{"debts":[{"name":"Visa","balance":1000,"interestRate":12,"minimumPayment":50}],"monthlyPayment":1000}`

func TestSimulate(t *testing.T) {
	srv := newTestServer(t, Options{})
	rr := do(t, srv, http.MethodPost, "/api/simulate", singleDebt)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	res := decode[core.SimulationResult](t, rr)
	if res.MonthsToPayoff != 2 || res.Strategy != core.Avalanche || len(res.Timeline) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !res.TotalInterestPaid.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("interest %s", res.TotalInterestPaid)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q", ct)
	}
}

func TestSimulateErrors(t *testing.T) {
	srv := newTestServer(t, Options{})
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"debts":`, http.StatusBadRequest, "malformed_request"},
		{"empty body", ``, http.StatusBadRequest, "malformed_request"},
		{"trailing data", singleDebt + `{}`, http.StatusBadRequest, "malformed_request"},
		{"wrong type", `{"debts":"visa"}`, http.StatusBadRequest, "malformed_request"},
		{"unknown strategy", `{"debts":[],"monthlyPayment":10,"strategy":"turbo"}`, http.StatusUnprocessableEntity, "invalid_strategy"},
		{"negative balance", `{"debts":[{"name":"A","balance":-1,"interestRate":1,"minimumPayment":1}],"monthlyPayment":10}`, http.StatusUnprocessableEntity, "invalid_input"},
		{"zero payment", `{"debts":[{"name":"A","balance":100,"interestRate":1,"minimumPayment":1}]}`, http.StatusUnprocessableEntity, "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/simulate", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.status, rr.Body)
			}
			if body := decode[ErrorBody](t, rr); body.Code != tt.code {
				t.Fatalf("code=%q want %q", body.Code, tt.code)
			}
		})
	}
}

func TestSimulateWrongMethod(t *testing.T) {
	srv := newTestServer(t, Options{})
	if rr := do(t, srv, http.MethodGet, "/api/simulate", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

const twoDebts = `{"debts":[
	{"name":"Visa","balance":"1200","interestRate":"24","minimumPayment":"50"},
	{"name":"Car","balance":"300","interestRate":"6","minimumPayment":"30"}
],"monthlyPayment":"400","monthlyIncome":"3000","newPurchase":"250",
"recentTransactions":[{"amount":"-250","category":"shopping"},{"amount":"-400","category":"debt_payment"}]}`

func TestPayoffEndpoints(t *testing.T) {
	srv := newTestServer(t, Options{})

	t.Run("compare", func(t *testing.T) {
		rr := do(t, srv, http.MethodPost, "/api/compare", twoDebts)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
		}
		got := decode[CompareResponse](t, rr)
		if got.Recommended != core.Avalanche {
			t.Fatalf("recommended %q", got.Recommended)
		}
		if got.Avalanche.InterestPaid.GreaterThan(got.Snowball.InterestPaid) {
			t.Fatalf("avalanche should not cost more: %+v", got.StrategyComparison)
		}
	})

	t.Run("spending impact", func(t *testing.T) {
		rr := do(t, srv, http.MethodPost, "/api/spending-impact", twoDebts)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
		}
		got := decode[core.SpendingImpact](t, rr)
		if got.AffectedDebt != "Visa" || got.DelayDays < 0 {
			t.Fatalf("unexpected impact %+v", got)
		}
		if got.NewPayoffDate.Before(testNow) {
			t.Fatalf("payoff date %v before now", got.NewPayoffDate)
		}
	})

	t.Run("suggest payment", func(t *testing.T) {
		rr := do(t, srv, http.MethodPost, "/api/suggest-payment", twoDebts)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
		}
		got := decode[core.PaymentRecommendation](t, rr)
		// max(80 * 1.5, 3000 * 0.2)
		if !got.Minimum.Equal(decimal.NewFromInt(80)) || !got.Suggested.Equal(decimal.NewFromInt(600)) {
			t.Fatalf("unexpected recommendation %+v", got)
		}
	})

	t.Run("alerts", func(t *testing.T) {
		rr := do(t, srv, http.MethodPost, "/api/alerts", twoDebts)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
		}
		got := decode[AlertsResponse](t, rr)
		types := map[core.AlertType]bool{}
		for _, a := range got.Alerts {
			types[a.Type] = true
		}
		if !types[core.AlertWarning] || !types[core.AlertError] {
			t.Fatalf("expected spending and interest alerts, got %+v", got.Alerts)
		}
	})

	t.Run("priority order", func(t *testing.T) {
		body := strings.Replace(twoDebts, `"monthlyPayment"`, `"strategy":"snowball","monthlyPayment"`, 1)
		rr := do(t, srv, http.MethodPost, "/api/priority-order", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
		}
		got := decode[PriorityOrderResponse](t, rr)
		if got.Strategy != core.Snowball || len(got.Debts) != 2 || got.Debts[0].Name != "Car" {
			t.Fatalf("unexpected order %+v", got)
		}
	})
}

func TestPlanLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPost, "/api/plans", `{"name":"  cards ","debts":[{"name":"Visa","balance":1200,"interestRate":24,"minimumPayment":50}],"monthlyPayment":400,"monthlyIncome":2500}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body)
	}
	created := decode[core.Plan](t, rr)
	if created.ID == "" || created.Name != "cards" || created.Strategy != core.Avalanche {
		t.Fatalf("unexpected plan %+v", created)
	}
	if loc := rr.Header().Get("Location"); loc != "/api/plans/"+created.ID {
		t.Fatalf("location %q", loc)
	}

	rr = do(t, srv, http.MethodGet, "/api/plans/"+created.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/plans/"+created.ID+"/transactions", `{"amount":-250,"category":"dining"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("transaction status=%d body=%s", rr.Code, rr.Body)
	}
	tx := decode[core.Transaction](t, rr)
	if !tx.OccurredAt.Equal(testNow) {
		t.Fatalf("transaction time %v want %v", tx.OccurredAt, testNow)
	}

	rr = do(t, srv, http.MethodGet, "/api/plans/"+created.ID+"/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d body=%s", rr.Code, rr.Body)
	}
	d := decode[core.Dashboard](t, rr)
	if d.Plan.ID != created.ID || d.Simulation.MonthsToPayoff == 0 || len(d.Shares) != 1 {
		t.Fatalf("unexpected dashboard %+v", d)
	}
	if len(d.Alerts) == 0 || d.Alerts[0].Type != core.AlertWarning {
		t.Fatalf("expected spending alert first, got %+v", d.Alerts)
	}
}

func TestPlanErrors(t *testing.T) {
	srv := newTestServer(t, Options{})
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing plan", http.MethodGet, "/api/plans/nope", "", http.StatusNotFound},
		{"missing plan dashboard", http.MethodGet, "/api/plans/nope/dashboard", "", http.StatusNotFound},
		{"transaction on missing plan", http.MethodPost, "/api/plans/nope/transactions", `{"amount":-5,"category":"x"}`, http.StatusNotFound},
		{"plan without name", http.MethodPost, "/api/plans", `{"debts":[],"monthlyPayment":10}`, http.StatusUnprocessableEntity},
		{"plan with bad strategy", http.MethodPost, "/api/plans", `{"name":"x","strategy":"random"}`, http.StatusUnprocessableEntity},
		{"plan malformed", http.MethodPost, "/api/plans", `[`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.status, rr.Body)
			}
		})
	}
}

type failingPlanner struct{ services.PlanService }

func (failingPlanner) Simulate(context.Context, core.Ledger, decimal.Decimal, core.Strategy) (core.SimulationResult, error) {
	return core.SimulationResult{}, errors.New("disk on fire")
}

func TestInternalErrorsAreHidden(t *testing.T) {
	srv, err := NewServer(":0", &failingPlanner{}, Options{Logger: applog.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	rr := do(t, srv, http.MethodPost, "/api/simulate", singleDebt)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	if body := decode[ErrorBody](t, rr); body.Error != "internal error" {
		t.Fatalf("leaked error %q", body.Error)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 2})
	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing headers %v", rr.Header())
	}
}

func TestNewServerRejectsBadProxy(t *testing.T) {
	if _, err := NewServer(":0", &failingPlanner{}, Options{TrustedProxies: []string{"not-an-ip"}}); err == nil {
		t.Fatal("expected error")
	}
}
