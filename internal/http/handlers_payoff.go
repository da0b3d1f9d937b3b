package http

import (
	"net/http"

	"debtpilot/internal/core"
	applog "debtpilot/internal/log"
)

// CompareResponse adds the recommended strategy to a comparison.
type CompareResponse struct {
	core.StrategyComparison
	Recommended core.Strategy `json:"recommended"`
}

type PriorityOrderResponse struct {
	Strategy core.Strategy `json:"strategy"`
	Debts    []core.Debt   `json:"debts"`
}

type AlertsResponse struct {
	Alerts []core.Alert `json:"alerts"`
}

// decodePayoff decodes a PayoffRequest and writes the error response
// itself when that fails.
func decodePayoff(w http.ResponseWriter, r *http.Request, operation string) (PayoffRequest, core.Strategy, bool) {
	var req PayoffRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, operation, err)
		return req, "", false
	}
	strategy, err := req.normalise()
	if err != nil {
		writeError(w, r, operation, err)
		return req, "", false
	}
	return req, strategy, true
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req, strategy, ok := decodePayoff(w, r, applog.OpSimulate)
	if !ok {
		return
	}
	result, err := s.planner.Simulate(r.Context(), req.Debts, req.MonthlyPayment, strategy)
	if err != nil {
		writeError(w, r, applog.OpSimulate, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	req, _, ok := decodePayoff(w, r, applog.OpCompare)
	if !ok {
		return
	}
	cmp, err := s.planner.Compare(r.Context(), req.Debts, req.MonthlyPayment)
	if err != nil {
		writeError(w, r, applog.OpCompare, err)
		return
	}
	writeJSON(w, r, http.StatusOK, CompareResponse{StrategyComparison: cmp, Recommended: cmp.Recommended()})
}

func (s *Server) handleSpendingImpact(w http.ResponseWriter, r *http.Request) {
	req, _, ok := decodePayoff(w, r, applog.OpImpact)
	if !ok {
		return
	}
	impact, err := s.planner.SpendingImpact(r.Context(), req.Debts, req.MonthlyPayment, req.NewPurchase)
	if err != nil {
		writeError(w, r, applog.OpImpact, err)
		return
	}
	writeJSON(w, r, http.StatusOK, impact)
}

func (s *Server) handleSuggestPayment(w http.ResponseWriter, r *http.Request) {
	req, _, ok := decodePayoff(w, r, applog.OpSuggest)
	if !ok {
		return
	}
	rec, err := s.planner.SuggestPayment(r.Context(), req.Debts, req.MonthlyIncome)
	if err != nil {
		writeError(w, r, applog.OpSuggest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	req, _, ok := decodePayoff(w, r, applog.OpAlerts)
	if !ok {
		return
	}
	alerts, err := s.planner.Alerts(r.Context(), req.Debts, req.RecentTransactions, req.MonthlyPayment)
	if err != nil {
		writeError(w, r, applog.OpAlerts, err)
		return
	}
	if alerts == nil {
		alerts = []core.Alert{}
	}
	writeJSON(w, r, http.StatusOK, AlertsResponse{Alerts: alerts})
}

func (s *Server) handlePriorityOrder(w http.ResponseWriter, r *http.Request) {
	req, strategy, ok := decodePayoff(w, r, "priority_order")
	if !ok {
		return
	}
	if err := req.Debts.Validate(); err != nil {
		writeError(w, r, "priority_order", err)
		return
	}
	ordered, err := s.planner.PriorityOrder(req.Debts, strategy)
	if err != nil {
		writeError(w, r, "priority_order", err)
		return
	}
	if ordered == nil {
		ordered = []core.Debt{}
	}
	writeJSON(w, r, http.StatusOK, PriorityOrderResponse{Strategy: strategy, Debts: ordered})
}
