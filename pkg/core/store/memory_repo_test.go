package store

import (
	"context"
	"sync"
	"testing"

	"bizplan_engine/pkg/models"
)

func rowSet(projectID string, n int, revenue float64) []models.FinancialOutput {
	rows := make([]models.FinancialOutput, n)
	for i := range rows {
		rows[i] = models.FinancialOutput{
			ProjectID:   projectID,
			PeriodIndex: i,
			Revenue:     revenue,
		}
	}
	return rows
}

func TestMemoryRepo_ReplaceAndLoad(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if err := repo.ReplaceAll(ctx, "p1", nil, rowSet("p1", 12, 100)); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	got, err := repo.Load(ctx, "p1", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 12 || got[0].Revenue != 100 {
		t.Errorf("loaded %d rows, revenue %v", len(got), got[0].Revenue)
	}

	// Replacing swaps the whole set, old rows never survive.
	if err := repo.ReplaceAll(ctx, "p1", nil, rowSet("p1", 24, 200)); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	got, _ = repo.Load(ctx, "p1", nil)
	if len(got) != 24 || got[0].Revenue != 200 {
		t.Errorf("after replace: %d rows, revenue %v", len(got), got[0].Revenue)
	}
}

func TestMemoryRepo_MissingKey(t *testing.T) {
	repo := NewMemoryRepo()
	got, err := repo.Load(context.Background(), "nope", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("missing key returned %d rows, want nil", len(got))
	}
}

func TestMemoryRepo_ScenarioKeysAreIndependent(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	scenario := "optimistic"

	repo.ReplaceAll(ctx, "p1", nil, rowSet("p1", 12, 100))
	repo.ReplaceAll(ctx, "p1", &scenario, rowSet("p1", 12, 140))

	base, _ := repo.Load(ctx, "p1", nil)
	variant, _ := repo.Load(ctx, "p1", &scenario)
	if base[0].Revenue != 100 || variant[0].Revenue != 140 {
		t.Errorf("key collision: base %v, scenario %v", base[0].Revenue, variant[0].Revenue)
	}
}

func TestMemoryRepo_LoadReturnsCopy(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	repo.ReplaceAll(ctx, "p1", nil, rowSet("p1", 1, 100))

	got, _ := repo.Load(ctx, "p1", nil)
	got[0].Revenue = -1

	fresh, _ := repo.Load(ctx, "p1", nil)
	if fresh[0].Revenue != 100 {
		t.Errorf("caller mutation leaked into the stored set")
	}
}

func TestMemoryRepo_ConcurrentReadersSeeWholeSets(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	repo.ReplaceAll(ctx, "p1", nil, rowSet("p1", 12, 100))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			rev := float64(100 + i)
			repo.ReplaceAll(ctx, "p1", nil, rowSet("p1", 12, rev))
		}
		close(stop)
	}()

	// Readers must always observe one complete set: uniform revenue and a
	// full period range, never a mix of two writes.
	for done := false; !done; {
		select {
		case <-stop:
			done = true
		default:
		}
		rows, err := repo.Load(ctx, "p1", nil)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(rows) != 12 {
			t.Fatalf("torn read: %d rows", len(rows))
		}
		for _, r := range rows {
			if r.Revenue != rows[0].Revenue {
				t.Fatalf("torn read: mixed revenues %v and %v", rows[0].Revenue, r.Revenue)
			}
		}
	}
	wg.Wait()
}
