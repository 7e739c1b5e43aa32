// Package projection exposes the consolidation engine over HTTP. The
// engine itself has no wire protocol; these handlers only move plain
// records in and out.
package projection

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bizplan_engine/pkg/core/consolidation"
	"bizplan_engine/pkg/core/loan"
	"bizplan_engine/pkg/metrics"
	"bizplan_engine/pkg/models"
)

var engine *consolidation.Engine

// InitHandler wires the handlers to a consolidation engine.
func InitHandler(e *consolidation.Engine) {
	engine = e
}

// ComputeRequest carries the full assumption bundle plus the trigger. The
// caller owns assumption storage; the engine is handed already-loaded data.
type ComputeRequest struct {
	Bundle  models.AssumptionBundle `json:"bundle"`
	Trigger models.ComputeTrigger   `json:"trigger"`
}

// ComputeResponse returns the committed monthly ledger and its annual
// rollup.
type ComputeResponse struct {
	State  consolidation.State           `json:"state"`
	Rows   []models.FinancialOutput      `json:"rows"`
	Annual []consolidation.AnnualSummary `json:"annual"`
}

// OutputRequest asks for a previously committed set.
type OutputRequest struct {
	ProjectID  string  `json:"project_id"`
	ScenarioID *string `json:"scenario_id,omitempty"`
}

func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// writeError maps the engine's error taxonomy onto HTTP statuses: input
// errors are the caller's to fix, an in-flight clash is a conflict,
// anything else is internal.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, consolidation.ErrInvalidInput),
		errors.Is(err, consolidation.ErrProjectMismatch),
		errors.Is(err, loan.ErrInvalidLoanTerms):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, consolidation.ErrComputationInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleCompute triggers a (re)computation and returns the committed set.
func HandleCompute(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}

	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	rows, err := engine.Compute(r.Context(), req.Bundle, req.Trigger)
	if err != nil {
		metrics.ObserveComputation("error", time.Since(start))
		writeError(w, err)
		return
	}
	metrics.ObserveComputation("ok", time.Since(start))

	resp := ComputeResponse{
		State:  engine.StateOf(req.Trigger.ProjectID, req.Trigger.ScenarioID),
		Rows:   rows,
		Annual: consolidation.Annualize(rows),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleOutput serves the committed ledger without recomputing.
func HandleOutput(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}

	var req OutputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := engine.Committed(r.Context(), req.ProjectID, req.ScenarioID)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(rows) == 0 {
		http.Error(w, "no committed output for key", http.StatusNotFound)
		return
	}

	resp := ComputeResponse{
		State:  engine.StateOf(req.ProjectID, req.ScenarioID),
		Rows:   rows,
		Annual: consolidation.Annualize(rows),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
