// Package http serves the debtpilot JSON API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"debtpilot/internal/core"
	applog "debtpilot/internal/log"
	"debtpilot/internal/middleware/ratelimit"
	"debtpilot/internal/middleware/security"
	"debtpilot/internal/middleware/trace"
)

// Planner is the service surface the handlers call.
type Planner interface {
	Simulate(ctx context.Context, debts core.Ledger, payment decimal.Decimal, strategy core.Strategy) (core.SimulationResult, error)
	Compare(ctx context.Context, debts core.Ledger, payment decimal.Decimal) (core.StrategyComparison, error)
	SpendingImpact(ctx context.Context, debts core.Ledger, payment, purchase decimal.Decimal) (core.SpendingImpact, error)
	SuggestPayment(ctx context.Context, debts core.Ledger, income decimal.Decimal) (core.PaymentRecommendation, error)
	Alerts(ctx context.Context, debts core.Ledger, recent []core.Transaction, payment decimal.Decimal) ([]core.Alert, error)
	PriorityOrder(debts core.Ledger, strategy core.Strategy) ([]core.Debt, error)

	CreatePlan(ctx context.Context, p core.Plan) (core.Plan, error)
	GetPlan(ctx context.Context, id string) (core.Plan, error)
	RecordTransaction(ctx context.Context, planID string, tx core.Transaction) (core.Transaction, error)
	Dashboard(ctx context.Context, planID string) (core.Dashboard, error)
}

// Pinger reports whether a dependency is ready to serve.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
	TrustedProxies     []string
	// Ready is checked by /readyz. Nil means always ready.
	Ready Pinger
}

type Server struct {
	http.Server
	planner Planner
	ready   Pinger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
}

func NewServer(addr string, planner Planner, opts Options) (*Server, error) {
	trusted, err := parseTrustedProxies(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	ip := clientIPExtractor{trusted: trusted}

	s := &Server{
		planner: planner,
		ready:   opts.Ready,
		tracer:  trace.NewMiddleware(logger, ip.extract),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	mux.HandleFunc("POST /api/compare", s.handleCompare)
	mux.HandleFunc("POST /api/spending-impact", s.handleSpendingImpact)
	mux.HandleFunc("POST /api/suggest-payment", s.handleSuggestPayment)
	mux.HandleFunc("POST /api/alerts", s.handleAlerts)
	mux.HandleFunc("POST /api/priority-order", s.handlePriorityOrder)

	mux.HandleFunc("POST /api/plans", s.handleCreatePlan)
	mux.HandleFunc("GET /api/plans/{id}", s.handleGetPlan)
	mux.HandleFunc("POST /api/plans/{id}/transactions", s.handleRecordTransaction)
	mux.HandleFunc("GET /api/plans/{id}/dashboard", s.handleDashboard)

	var handler http.Handler = mux
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
		handler = s.limiter.Middleware(ip.extract, func(w http.ResponseWriter, r *http.Request) {
			ErrorResponse(r, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later").Write(w, r)
		})(handler)
	}
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Shutdown stops accepting requests and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if err := s.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			ErrorResponse(r, http.StatusServiceUnavailable, "not_ready", "storage unavailable").Write(w, r)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
