package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/buoybudget/buoybudget/pkg/budget"
	"github.com/buoybudget/buoybudget/pkg/log"
	"github.com/buoybudget/buoybudget/pkg/types"
)

// BudgetResponse is the response of the budget endpoints.
type BudgetResponse struct {
	Budget types.BudgetResult `json:"budget"`
	SOC    types.SOCTrace     `json:"soc"`
}

// carryDeficitFor returns whether the SOC simulation should carry unmet energy.
// The carryDeficit query parameter overrides the server default.
func (s *Server) carryDeficitFor(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("carryDeficit")
	if v == "" {
		return s.carryDeficit, nil
	}
	return strconv.ParseBool(v)
}

func (s *Server) computeBudget(ctx context.Context, p types.ProjectConfig, carryDeficit bool) (BudgetResponse, error) {
	result, err := s.calculator.CalculateBudget(ctx, p)
	if err != nil {
		return BudgetResponse{}, err
	}
	var opts []budget.SimulateOption
	if carryDeficit {
		opts = append(opts, budget.WithCarryDeficit())
	}
	trace := s.calculator.Simulate(ctx, result, result.Summary.BatteryCapacity, opts...)
	return BudgetResponse{Budget: result, SOC: trace}, nil
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carry, err := s.carryDeficitFor(r)
	if err != nil {
		writeJSONError(w, "invalid carryDeficit", http.StatusBadRequest)
		return
	}
	p, err := decodeProject(w, r)
	if err != nil {
		writeError(ctx, w, "invalid project", err)
		return
	}
	res, err := s.computeBudget(ctx, p, carry)
	if err != nil {
		writeError(ctx, w, "failed to calculate budget", err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleProjectBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("projectID", id)))

	carry, err := s.carryDeficitFor(r)
	if err != nil {
		writeJSONError(w, "invalid carryDeficit", http.StatusBadRequest)
		return
	}
	p, err := s.getProjectWithMigration(ctx, id)
	if err != nil {
		writeError(ctx, w, "failed to get project", err)
		return
	}
	res, err := s.computeBudget(ctx, p, carry)
	if err != nil {
		writeError(ctx, w, "failed to calculate budget", err)
		return
	}
	writeJSON(w, res)
}
