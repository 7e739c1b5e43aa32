package consolidation

import (
	"errors"
	"fmt"
	"math"

	"bizplan_engine/pkg/core/depreciation"
	"bizplan_engine/pkg/core/loan"
	"bizplan_engine/pkg/core/opex"
	"bizplan_engine/pkg/core/revenue"
	"bizplan_engine/pkg/core/scenario"
	"bizplan_engine/pkg/core/tax"
	"bizplan_engine/pkg/core/workingcap"
	"bizplan_engine/pkg/models"
)

// ErrComputation marks an unexpected numeric failure mid-pipeline. The
// previously committed output set is never touched when this occurs.
var ErrComputation = errors.New("computation failed")

// BuildLedger runs the full monthly pipeline for one bundle and returns the
// FinancialOutput row set, one row per month over the horizon. The function
// is pure: it performs no I/O and the same bundle always produces an
// identical row set.
func BuildLedger(bundle models.AssumptionBundle) ([]models.FinancialOutput, error) {
	if err := ValidateBundle(bundle); err != nil {
		return nil, err
	}

	// Scenario overlay is a pure transform of the inputs; everything below
	// is scenario-agnostic.
	eff := scenario.Apply(bundle)

	horizon := eff.Project.HorizonMonths()
	var scenarioID *string
	if eff.Scenario != nil {
		id := eff.Scenario.ID
		scenarioID = &id
	}

	// 1. Revenue and COGS
	sales := revenue.Aggregate(eff.Products, eff.Sales, horizon, 1.0)
	revSeries := revenue.RevenueSeries(sales)
	cogsSeries := make([]float64, horizon)
	for i, p := range sales {
		cogsSeries[i] = p.COGS
	}

	// 2. Operating costs and payroll
	costs := opex.MonthlySeries(eff.Opex, eff.Payroll, eff.Headcount, revSeries, eff.Assumptions.InflationRate, horizon)

	// 3. Depreciation and capex cash flows
	depAt := make([]float64, horizon)
	nbvAt := make([]float64, horizon)
	capexOutflowAt := make([]float64, horizon)
	for _, c := range eff.Capex {
		offset := monthsBetween(eff.Project.StartDate, c.AcquisitionDate)
		if offset < horizon {
			capexOutflowAt[offset] += c.Amount
		}
		sched := depreciation.Schedule(c)
		for m := offset; m < horizon; m++ {
			local := m - offset
			if local < len(sched) {
				depAt[m] += sched[local].Amount
				nbvAt[m] += sched[local].NetBookValue
			} else if len(sched) > 0 {
				// Fully depreciated: salvage value remains on the books.
				nbvAt[m] += sched[len(sched)-1].NetBookValue
			} else {
				nbvAt[m] += c.Amount
			}
		}
	}

	// 4. Loan schedules
	interestAt := make([]float64, horizon)
	principalAt := make([]float64, horizon)
	debtServiceAt := make([]float64, horizon)
	disbursedAt := make([]float64, horizon)
	feesAt := make([]float64, horizon)
	debtBalanceAt := make([]float64, horizon)
	for _, l := range eff.Loans {
		sched, err := loan.Schedule(l)
		if err != nil {
			return nil, err
		}
		offset := monthsBetween(eff.Project.StartDate, l.DisbursementDate)
		if offset < horizon {
			disbursedAt[offset] += l.Principal
			feesAt[offset] += loan.UpfrontCost(l)
		}
		for m := offset; m < horizon; m++ {
			local := m - offset
			if local >= len(sched) {
				break
			}
			e := sched[local]
			interestAt[m] += e.Interest
			principalAt[m] += e.Principal + e.Balloon
			debtServiceAt[m] += e.Payment
			debtBalanceAt[m] += e.RemainingBalance
		}
	}

	// 5. Working capital
	wcSeries := workingcap.Series(revSeries, cogsSeries, eff.WorkingCapital)

	// 6. Assemble the monthly rows
	rows := make([]models.FinancialOutput, horizon)
	cash := eff.Assumptions.InitialCash
	retained := 0.0
	taxSettings := tax.Settings{Rate: eff.Tax.CorporateTaxRate}

	for m := 0; m < horizon; m++ {
		rev := revSeries[m]
		cogs := cogsSeries[m]
		grossProfit := rev - cogs

		operatingCost := costs[m].Fixed + costs[m].Variable
		payroll := costs[m].Payroll
		ebitda := grossProfit - operatingCost - payroll
		dep := depAt[m]
		ebit := ebitda - dep
		interest := interestAt[m]
		taxDue := taxSettings.Apply(ebit, interest)
		netIncome := ebit - interest - taxDue

		bfr := wcSeries[m]

		operatingCF := netIncome + dep - bfr.Change
		investingCF := -capexOutflowAt[m]
		financingCF := disbursedAt[m] - principalAt[m] - feesAt[m]
		netCF := operatingCF + investingCF + financingCF

		cash += netCF
		retained += netIncome
		equity := eff.Assumptions.InitialEquity + retained

		currentAssets := cash + bfr.Receivables + bfr.Inventory
		totalAssets := currentAssets + nbvAt[m]
		totalDebt := debtBalanceAt[m]

		row := models.FinancialOutput{
			ProjectID:   eff.Project.ID,
			ScenarioID:  scenarioID,
			Year:        planYear(m),
			Month:       planMonth(m),
			PeriodIndex: m,

			Revenue:      rev,
			COGS:         cogs,
			GrossProfit:  grossProfit,
			Opex:         operatingCost,
			Payroll:      payroll,
			EBITDA:       ebitda,
			Depreciation: dep,
			EBIT:         ebit,
			Interest:     interest,
			Tax:          taxDue,
			NetIncome:    netIncome,

			OperatingCashFlow: operatingCF,
			InvestingCashFlow: investingCF,
			FinancingCashFlow: financingCF,
			NetCashFlow:       netCF,
			CashBalance:       cash,

			BFR:       bfr.Need,
			BFRChange: bfr.Change,

			TotalAssets: totalAssets,
			TotalDebt:   totalDebt,
			Equity:      equity,

			GrossMargin:  safeDiv(grossProfit, rev),
			EBITDAMargin: safeDiv(ebitda, rev),
			NetMargin:    safeDiv(netIncome, rev),
			ROA:          safeDiv(netIncome, totalAssets),
			ROE:          safeDiv(netIncome, equity),
			CurrentRatio: safeDiv(currentAssets, bfr.Payables),
			DebtToEquity: safeDiv(totalDebt, equity),
			DSCR:         safeDiv(operatingCF, debtServiceAt[m]),
		}

		if !finite(row) {
			return nil, fmt.Errorf("%w: non-finite value at period %d", ErrComputation, m)
		}
		rows[m] = row
	}

	return rows, nil
}

// InitialInvestment is the period-0 outflow the investment analysis
// discounts against: capex acquired at project start plus loan fees and
// insurance disbursed at start.
func InitialInvestment(bundle models.AssumptionBundle) float64 {
	start := bundle.Project.StartDate
	total := 0.0
	for _, c := range bundle.Capex {
		if monthsBetween(start, c.AcquisitionDate) == 0 {
			total += c.Amount
		}
	}
	for _, l := range bundle.Loans {
		if monthsBetween(start, l.DisbursementDate) == 0 {
			total += loan.UpfrontCost(l)
		}
	}
	return total
}

// safeDiv implements the engine-wide division policy: a ratio with a zero
// denominator is 0, never NaN or an error.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// finite guards the row against overflow or NaN leaking out of the math.
func finite(row models.FinancialOutput) bool {
	for _, v := range []float64{
		row.Revenue, row.COGS, row.EBITDA, row.EBIT, row.NetIncome,
		row.OperatingCashFlow, row.NetCashFlow, row.CashBalance,
		row.BFR, row.TotalAssets, row.DSCR,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
