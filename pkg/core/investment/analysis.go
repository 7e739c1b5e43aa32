package investment

import (
	"errors"

	"bizplan_engine/pkg/models"
)

// ErrEmptyCashFlowSeries rejects an analysis request with no cash flows.
// This is the only error the analysis can produce; an undefined IRR or
// payback is a result, not an error.
var ErrEmptyCashFlowSeries = errors.New("empty cash-flow series")

// Analyze computes the full investment summary for one committed cash-flow
// series. The sensitivity band is left zeroed: it requires re-running the
// projection pipeline with scaled revenue, which the consolidation layer
// orchestrates.
func Analyze(projectID string, scenarioID *string, investment float64, flows []float64, annualRate float64) (*models.InvestmentAnalysis, error) {
	if len(flows) == 0 {
		return nil, ErrEmptyCashFlowSeries
	}

	drci := DiscountedPayback(investment, flows, annualRate)

	return &models.InvestmentAnalysis{
		ProjectID:          projectID,
		ScenarioID:         scenarioID,
		DiscountRate:       annualRate,
		InitialInvestment:  investment,
		NPV:                NPV(investment, flows, annualRate),
		IRR:                IRR(investment, flows),
		DRCI:               drci,
		SimplePayback:      DiscountedPayback(investment, flows, 0),
		Payback:            Breakdown(drci),
		ProfitabilityIndex: ProfitabilityIndex(investment, flows, annualRate),
	}, nil
}
