package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"bizplan_engine/pkg/models"
)

// AnalysisRepo stores the latest investment analysis per key. Unlike the
// ledger, an analysis is a single document, so a plain upsert is enough.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS investment_analysis (
//	  project_id  TEXT NOT NULL,
//	  scenario_id TEXT NOT NULL DEFAULT '',
//	  analysis_json JSONB NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL,
//	  PRIMARY KEY (project_id, scenario_id)
//	);
type AnalysisRepo struct{}

// NewAnalysisRepo creates a repository instance.
func NewAnalysisRepo() *AnalysisRepo {
	return &AnalysisRepo{}
}

func scenarioKey(scenarioID *string) string {
	if scenarioID == nil {
		return ""
	}
	return *scenarioID
}

// Save upserts the analysis for its (project, scenario) key.
func (r *AnalysisRepo) Save(ctx context.Context, analysis *models.InvestmentAnalysis) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO investment_analysis (project_id, scenario_id, analysis_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, scenario_id)
		DO UPDATE SET
			analysis_json = EXCLUDED.analysis_json,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = pool.Exec(ctx, query, analysis.ProjectID, scenarioKey(analysis.ScenarioID), jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Load retrieves the stored analysis for a key.
func (r *AnalysisRepo) Load(ctx context.Context, projectID string, scenarioID *string) (*models.InvestmentAnalysis, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	err := pool.QueryRow(ctx,
		`SELECT analysis_json FROM investment_analysis WHERE project_id = $1 AND scenario_id = $2`,
		projectID, scenarioKey(scenarioID)).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no analysis found for project %s", projectID)
		}
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	var analysis models.InvestmentAnalysis
	if err := json.Unmarshal(jsonData, &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &analysis, nil
}
