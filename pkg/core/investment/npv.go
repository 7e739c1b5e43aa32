// Package investment computes the viability metrics (NPV, IRR, discounted
// payback, profitability index) from a committed net-cash-flow series. It
// consumes the consolidation output only, never the raw assumptions.
package investment

import (
	"math"
)

// MonthlyRate converts an annual discount rate to its effective monthly
// equivalent: (1+r)^(1/12) - 1. The whole engine discounts monthly with
// this convention.
func MonthlyRate(annual float64) float64 {
	return math.Pow(1.0+annual, 1.0/12.0) - 1.0
}

// NPV discounts a monthly cash-flow series against an upfront investment.
// flows[t] is the net cash flow at the end of month t+1; the investment
// sits at t=0 undiscounted.
func NPV(investment float64, flows []float64, annualRate float64) float64 {
	rm := MonthlyRate(annualRate)
	npv := -investment
	factor := 1.0
	for _, f := range flows {
		factor /= 1.0 + rm
		npv += f * factor
	}
	return npv
}

// PresentValue is the discounted sum of the flows alone, without the
// investment term. Used for the profitability index.
func PresentValue(flows []float64, annualRate float64) float64 {
	return NPV(0, flows, annualRate)
}

// ProfitabilityIndex is PV of inflows over the initial investment. A zero
// investment yields 0, per the engine's zero-denominator policy.
func ProfitabilityIndex(investment float64, flows []float64, annualRate float64) float64 {
	if investment == 0 {
		return 0
	}
	return PresentValue(flows, annualRate) / investment
}
