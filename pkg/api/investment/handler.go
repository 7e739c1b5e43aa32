// Package investment exposes the investment analysis summary over HTTP.
package investment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"bizplan_engine/pkg/core/consolidation"
	coreinvest "bizplan_engine/pkg/core/investment"
	"bizplan_engine/pkg/core/loan"
	"bizplan_engine/pkg/metrics"
	"bizplan_engine/pkg/models"
)

// AnalysisStore persists computed analysis documents. Persistence is
// best-effort on the compute path; the response never depends on it.
type AnalysisStore interface {
	Save(ctx context.Context, analysis *models.InvestmentAnalysis) error
	Load(ctx context.Context, projectID string, scenarioID *string) (*models.InvestmentAnalysis, error)
}

var (
	engine  *consolidation.Engine
	storage AnalysisStore
)

// InitHandler wires the handler to a consolidation engine. A nil store
// disables analysis persistence and the stored-analysis endpoint.
func InitHandler(e *consolidation.Engine, s AnalysisStore) {
	engine = e
	storage = s
}

// AnalysisRequest mirrors the compute request: full bundle plus trigger.
type AnalysisRequest struct {
	Bundle  models.AssumptionBundle `json:"bundle"`
	Trigger models.ComputeTrigger   `json:"trigger"`
}

// HandleAnalysis computes (or reuses) the projection and returns the
// NPV/IRR/DRCI summary with its sensitivity band. An undefined IRR or
// payback comes back as a defined=false metric with a reason code, never
// as an HTTP error.
func HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics.AnalysisCounter.Inc()

	analysis, err := engine.InvestmentSummary(r.Context(), req.Bundle, req.Trigger)
	if err != nil {
		switch {
		case errors.Is(err, consolidation.ErrInvalidInput),
			errors.Is(err, consolidation.ErrProjectMismatch),
			errors.Is(err, loan.ErrInvalidLoanTerms),
			errors.Is(err, coreinvest.ErrEmptyCashFlowSeries):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, consolidation.ErrComputationInFlight):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if storage != nil {
		if err := storage.Save(r.Context(), analysis); err != nil {
			zap.L().Warn("analysis persistence failed", zap.String("project", analysis.ProjectID), zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analysis)
}

// StoredRequest asks for the last persisted analysis of a key.
type StoredRequest struct {
	ProjectID  string  `json:"project_id"`
	ScenarioID *string `json:"scenario_id,omitempty"`
}

// HandleStored serves the last persisted analysis without recomputing.
func HandleStored(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if storage == nil {
		http.Error(w, "analysis persistence not configured", http.StatusNotFound)
		return
	}

	var req StoredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	analysis, err := storage.Load(r.Context(), req.ProjectID, req.ScenarioID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analysis)
}
