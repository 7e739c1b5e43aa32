package store

import (
	"context"
	"sync"

	"bizplan_engine/pkg/models"
)

// MemoryRepo is an in-memory OutputRepository used by tests and the offline
// CLI. The atomic replace is a versioned swap: the new set is built off to
// the side and the map entry is flipped under the write lock, so a reader
// holding the read lock always sees one complete set.
type MemoryRepo struct {
	mu   sync.RWMutex
	sets map[string][]models.FinancialOutput
}

// NewMemoryRepo creates an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sets: make(map[string][]models.FinancialOutput)}
}

func memKey(projectID string, scenarioID *string) string {
	if scenarioID == nil {
		return projectID + "/base"
	}
	return projectID + "/" + *scenarioID
}

// ReplaceAll swaps the full set for the key in one pointer flip.
func (r *MemoryRepo) ReplaceAll(_ context.Context, projectID string, scenarioID *string, rows []models.FinancialOutput) error {
	snapshot := make([]models.FinancialOutput, len(rows))
	copy(snapshot, rows)

	r.mu.Lock()
	r.sets[memKey(projectID, scenarioID)] = snapshot
	r.mu.Unlock()
	return nil
}

// Load returns a copy of the committed set for the key.
func (r *MemoryRepo) Load(_ context.Context, projectID string, scenarioID *string) ([]models.FinancialOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.sets[memKey(projectID, scenarioID)]
	if !ok {
		return nil, nil
	}
	out := make([]models.FinancialOutput, len(set))
	copy(out, set)
	return out, nil
}
