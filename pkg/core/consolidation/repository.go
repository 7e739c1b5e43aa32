package consolidation

import (
	"context"

	"bizplan_engine/pkg/models"
)

// OutputRepository is the persistence collaborator contract. The engine
// performs no I/O itself; it hands the full row set for one
// (project, scenario) key to the repository, which must replace the
// previous set atomically. A reader must never observe a mix of old and
// new rows, nor a partially inserted set.
type OutputRepository interface {
	// ReplaceAll swaps the entire FinancialOutput set for the key in one
	// atomic operation.
	ReplaceAll(ctx context.Context, projectID string, scenarioID *string, rows []models.FinancialOutput) error

	// Load returns the committed set for the key, ordered by period.
	// An empty slice (no error) means nothing has been committed yet.
	Load(ctx context.Context, projectID string, scenarioID *string) ([]models.FinancialOutput, error)
}
