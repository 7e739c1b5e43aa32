package investment

import (
	"math"

	"bizplan_engine/pkg/models"
)

// IRR search bracket (annual rate) and convergence tolerance. The bracket
// deliberately runs from near-total loss to +1000%: any plausible business
// plan IRR falls inside it.
const (
	irrLow       = -0.99
	irrHigh      = 10.0
	irrTolerance = 1e-9
	irrMaxIter   = 200
)

// IRR solves NPV(rate) = 0 for the annual rate by bisection.
//
// If the NPV function has no sign change over the bracket, for example when
// the series never recovers the investment, the IRR is undefined and
// reported as such with a reason code. It is never silently defaulted to 0.
func IRR(investment float64, flows []float64) models.Metric {
	f := func(rate float64) float64 {
		return NPV(investment, flows, rate)
	}

	lo, hi := irrLow, irrHigh
	fLo, fHi := f(lo), f(hi)

	if math.IsNaN(fLo) || math.IsNaN(fHi) || fLo*fHi > 0 {
		return models.UndefinedMetric(models.ReasonNoSignChange)
	}

	for i := 0; i < irrMaxIter; i++ {
		mid := (lo + hi) / 2.0
		fMid := f(mid)

		if math.Abs(fMid) < irrTolerance || (hi-lo)/2.0 < irrTolerance {
			return models.DefinedMetric(mid)
		}

		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}

	// Bracket kept shrinking without meeting tolerance. Extremely flat NPV
	// curves can get here; report the failure rather than a half-converged
	// number.
	return models.UndefinedMetric(models.ReasonNoConvergence)
}
