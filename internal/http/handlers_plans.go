package http

import (
	"net/http"

	applog "debtpilot/internal/log"
)

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	p, err := req.plan()
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	created, err := s.planner.CreatePlan(r.Context(), p)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/plans/"+created.ID).
		Body(created).
		Write(w, r)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.planner.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	tx, err := s.planner.RecordTransaction(r.Context(), r.PathValue("id"), req.transaction())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, tx)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.planner.Dashboard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}
