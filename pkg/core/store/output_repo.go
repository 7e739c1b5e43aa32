package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bizplan_engine/pkg/models"
)

// OutputRepo persists FinancialOutput row sets in Postgres.
//
// Schema assumption (managed by migrations elsewhere):
//
//	CREATE TABLE IF NOT EXISTS financial_output (
//	  project_id  TEXT NOT NULL,
//	  scenario_id TEXT,
//	  period_index INT NOT NULL,
//	  year INT NOT NULL,
//	  month INT NOT NULL,
//	  row_json JSONB NOT NULL,
//	  PRIMARY KEY (project_id, scenario_id, period_index)
//	);
//
// The row body lives in a JSONB column: the ledger is always read and
// written as a whole set, never filtered by individual figures.
type OutputRepo struct{}

// NewOutputRepo creates a repository instance.
func NewOutputRepo() *OutputRepo {
	return &OutputRepo{}
}

// ReplaceAll swaps the full output set for one (project, scenario) key.
// Delete and insert run inside a single transaction, so a concurrent
// reader sees either the complete old set or the complete new one, never a
// mix or a partial insert. This is the one place the engine requires a
// transactional guarantee from storage.
func (r *OutputRepo) ReplaceAll(ctx context.Context, projectID string, scenarioID *string, rows []models.FinancialOutput) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin replace transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM financial_output WHERE project_id = $1 AND scenario_id IS NOT DISTINCT FROM $2`,
		projectID, scenarioID)
	if err != nil {
		return fmt.Errorf("delete previous output set: %w", err)
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(
			`INSERT INTO financial_output (project_id, scenario_id, period_index, year, month, row_json)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			projectID, scenarioID, row.PeriodIndex, row.Year, row.Month, row)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert output set: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit output set: %w", err)
	}
	return nil
}

// Load returns the committed set for the key in period order. An empty
// slice means nothing has been committed for the key yet.
func (r *OutputRepo) Load(ctx context.Context, projectID string, scenarioID *string) ([]models.FinancialOutput, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := pool.Query(ctx,
		`SELECT row_json FROM financial_output
		 WHERE project_id = $1 AND scenario_id IS NOT DISTINCT FROM $2
		 ORDER BY period_index`,
		projectID, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("load output set: %w", err)
	}
	defer rows.Close()

	var out []models.FinancialOutput
	for rows.Next() {
		var row models.FinancialOutput
		if err := rows.Scan(&row); err != nil {
			return nil, fmt.Errorf("scan output row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
