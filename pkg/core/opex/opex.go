// Package opex resolves fixed, variable and payroll operating costs into
// monthly totals.
package opex

import (
	"math"

	"bizplan_engine/pkg/models"
)

// Breakdown splits a period's operating cost by nature. The fixed/variable
// split also feeds the break-even calculation in the annual summary.
type Breakdown struct {
	Fixed    float64 `json:"fixed"`
	Variable float64 `json:"variable"`
	Payroll  float64 `json:"payroll"`
}

// Total is the full operating cost for the period.
func (b Breakdown) Total() float64 {
	return b.Fixed + b.Variable + b.Payroll
}

// MonthlySeries resolves all opex lines plus payroll into one Breakdown per
// month over the horizon.
//
// Fixed amounts are spread to monthly granularity by periodicity (quarterly
// amounts /3, annual /12) inside their active window. Variable lines take
// var_pct_of_sales x period revenue. Indexed lines compound the nominal
// amount monthly from the annual inflation rate:
// amount x (1+inflation)^(months/12).
func MonthlySeries(
	items []models.Opex,
	roles []models.PayrollRole,
	headcount []models.HeadcountPlan,
	revenue []float64,
	inflationRate float64,
	horizonMonths int,
) []Breakdown {
	series := make([]Breakdown, horizonMonths)

	for _, item := range items {
		monthly := monthlyAmount(item)
		for m := 0; m < horizonMonths; m++ {
			if !item.ActiveAt(m) {
				continue
			}
			if item.Variable {
				series[m].Variable += item.VarPctOfSales * revenue[m]
				continue
			}
			amount := monthly
			if item.Indexed && inflationRate != 0 {
				amount *= math.Pow(1.0+inflationRate, float64(m)/12.0)
			}
			series[m].Fixed += amount
		}
	}

	applyPayroll(series, roles, headcount, horizonMonths)
	return series
}

// monthlyAmount converts a nominal amount to a monthly installment.
func monthlyAmount(item models.Opex) float64 {
	switch item.Periodicity {
	case models.PeriodicityQuarterly:
		return item.Amount / 3.0
	case models.PeriodicityAnnual:
		return item.Amount / 12.0
	default:
		return item.Amount
	}
}

// applyPayroll adds gross x (1 + employer charges) x headcount + benefits
// for every staffed role-month.
func applyPayroll(series []Breakdown, roles []models.PayrollRole, headcount []models.HeadcountPlan, horizonMonths int) {
	byID := make(map[string]models.PayrollRole, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	for _, h := range headcount {
		role, ok := byID[h.RoleID]
		if !ok {
			continue
		}
		m := h.PeriodIndex()
		if m < 0 || m >= horizonMonths || h.Headcount <= 0 {
			continue
		}
		cost := role.GrossMonthly*(1.0+role.EmployerChargesPct)*h.Headcount + role.BenefitsMonthly*h.Headcount
		series[m].Payroll += cost
	}
}
