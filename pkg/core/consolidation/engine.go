package consolidation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"bizplan_engine/pkg/core/investment"
	"bizplan_engine/pkg/core/scenario"
	"bizplan_engine/pkg/models"
)

// State of one (project, scenario) computation key.
type State string

const (
	StateIdle      State = "idle"
	StateComputing State = "computing"
	StateCommitted State = "committed"
	StateFailed    State = "failed"
)

// ErrComputationInFlight rejects a second trigger for a key whose
// computation is still running. The atomic replace is not safe under
// concurrent writers for the same key, so the engine never runs two.
var ErrComputationInFlight = errors.New("computation already in flight for this key")

// Engine is the consolidation orchestrator: it validates the bundle, runs
// the monthly pipeline, and commits the resulting row set through the
// repository as one atomic replacement. Different keys compute in parallel;
// the same key is strictly serialized.
type Engine struct {
	repo OutputRepository
	log  *zap.Logger

	mu     sync.Mutex
	states map[string]State
}

// NewEngine creates an engine bound to a repository. A nil logger falls
// back to zap's no-op logger.
func NewEngine(repo OutputRepository, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		repo:   repo,
		log:    log,
		states: make(map[string]State),
	}
}

// key builds the state-machine key for a (project, scenario) pair.
func key(projectID string, scenarioID *string) string {
	if scenarioID == nil {
		return projectID + "/base"
	}
	return projectID + "/" + *scenarioID
}

// StateOf reports the current state for a key.
func (e *Engine) StateOf(projectID string, scenarioID *string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.states[key(projectID, scenarioID)]; ok {
		return s
	}
	return StateIdle
}

// Compute runs the pipeline for the trigger's key and atomically replaces
// the committed output set. Without ForceRecalculation, an existing
// committed set is returned as-is. On any failure the previous committed
// set stays untouched and the key transitions to Failed.
func (e *Engine) Compute(ctx context.Context, bundle models.AssumptionBundle, trigger models.ComputeTrigger) ([]models.FinancialOutput, error) {
	if trigger.ProjectID != bundle.Project.ID {
		return nil, fmt.Errorf("%w: trigger=%s bundle=%s", ErrProjectMismatch, trigger.ProjectID, bundle.Project.ID)
	}
	switch {
	case trigger.ScenarioID != nil && bundle.Scenario == nil:
		// Base-built rows must never be committed under a scenario key.
		return nil, fmt.Errorf("%w: trigger scenario=%s but bundle carries no scenario", ErrProjectMismatch, *trigger.ScenarioID)
	case trigger.ScenarioID == nil && bundle.Scenario != nil:
		return nil, fmt.Errorf("%w: bundle scenario=%s but trigger targets the base case", ErrProjectMismatch, bundle.Scenario.ID)
	case trigger.ScenarioID != nil && bundle.Scenario != nil && bundle.Scenario.ID != *trigger.ScenarioID:
		return nil, fmt.Errorf("%w: scenario trigger=%s bundle=%s", ErrProjectMismatch, *trigger.ScenarioID, bundle.Scenario.ID)
	}

	k := key(trigger.ProjectID, trigger.ScenarioID)

	e.mu.Lock()
	prev := e.states[k]
	if prev == StateComputing {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrComputationInFlight, k)
	}
	e.states[k] = StateComputing
	e.mu.Unlock()

	fail := func(err error) ([]models.FinancialOutput, error) {
		e.setState(k, StateFailed)
		return nil, err
	}

	if !trigger.ForceRecalculation {
		existing, err := e.repo.Load(ctx, trigger.ProjectID, trigger.ScenarioID)
		if err == nil && len(existing) > 0 {
			e.setState(k, StateCommitted)
			return existing, nil
		}
	}

	start := time.Now()
	rows, err := BuildLedger(bundle)
	if err != nil {
		// Input and computation errors both leave prior output untouched;
		// only the state differs for observability. An input rejection
		// restores whatever state the key was in before the trigger.
		if errors.Is(err, ErrInvalidInput) {
			if prev == "" {
				prev = StateIdle
			}
			e.setState(k, prev)
			return nil, err
		}
		e.log.Warn("ledger build failed", zap.String("key", k), zap.Error(err))
		return fail(err)
	}

	if err := e.repo.ReplaceAll(ctx, trigger.ProjectID, trigger.ScenarioID, rows); err != nil {
		e.log.Error("atomic replace failed", zap.String("key", k), zap.Error(err))
		return fail(fmt.Errorf("commit output set: %w", err))
	}

	e.setState(k, StateCommitted)
	e.log.Info("computation committed",
		zap.String("key", k),
		zap.Int("periods", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rows, nil
}

// States returns a snapshot of every key the engine has seen and its
// current state.
func (e *Engine) States() map[string]State {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]State, len(e.states))
	for k, s := range e.states {
		out[k] = s
	}
	return out
}

// Committed returns the committed output set for a key without triggering
// any computation.
func (e *Engine) Committed(ctx context.Context, projectID string, scenarioID *string) ([]models.FinancialOutput, error) {
	return e.repo.Load(ctx, projectID, scenarioID)
}

func (e *Engine) setState(k string, s State) {
	e.mu.Lock()
	e.states[k] = s
	e.mu.Unlock()
}

// InvestmentSummary computes NPV/IRR/DRCI for the bundle's committed
// ledger, including the sensitivity band. The band re-runs the whole
// pipeline with sales volume scaled by the configured spread; it is a pure
// re-invocation, not a separate formula, and writes nothing.
func (e *Engine) InvestmentSummary(ctx context.Context, bundle models.AssumptionBundle, trigger models.ComputeTrigger) (*models.InvestmentAnalysis, error) {
	rows, err := e.Compute(ctx, bundle, trigger)
	if err != nil {
		return nil, err
	}

	analysis, err := analyzeRows(bundle, trigger, rows)
	if err != nil {
		return nil, err
	}

	spread := bundle.Assumptions.SensitivitySpread
	if spread == 0 {
		spread = 0.20
	}

	optimistic, err := analyzeVariant(bundle, trigger, 1.0+spread)
	if err != nil {
		return nil, fmt.Errorf("optimistic variant: %w", err)
	}
	pessimistic, err := analyzeVariant(bundle, trigger, 1.0-spread)
	if err != nil {
		return nil, fmt.Errorf("pessimistic variant: %w", err)
	}

	analysis.Sensitivity = models.SensitivityBand{
		NPVOptimistic:  optimistic.NPV,
		NPVPessimistic: pessimistic.NPV,
		IRROptimistic:  optimistic.IRR,
		IRRPessimistic: pessimistic.IRR,
	}
	return analysis, nil
}

// analyzeVariant rebuilds the ledger with scaled volumes and analyzes it
// in memory.
func analyzeVariant(bundle models.AssumptionBundle, trigger models.ComputeTrigger, factor float64) (*models.InvestmentAnalysis, error) {
	scaled := scenario.WithVolumeScale(bundle, factor)
	rows, err := BuildLedger(scaled)
	if err != nil {
		return nil, err
	}
	return analyzeRows(scaled, trigger, rows)
}

// analyzeRows extracts the cash-flow series from the ledger and runs the
// investment engine. The period-0 investment components sit inside the
// first row's net cash flow; they are pulled out and handed to the analysis
// as the separate initial outflow so they are not discounted twice.
func analyzeRows(bundle models.AssumptionBundle, trigger models.ComputeTrigger, rows []models.FinancialOutput) (*models.InvestmentAnalysis, error) {
	invest := InitialInvestment(bundle)

	flows := make([]float64, len(rows))
	for i, r := range rows {
		flows[i] = r.NetCashFlow
	}
	if len(flows) > 0 {
		flows[0] += invest
	}

	return investment.Analyze(trigger.ProjectID, trigger.ScenarioID, invest, flows, bundle.Assumptions.DiscountRate)
}
