package consolidation

import (
	"bizplan_engine/pkg/models"
)

// AnnualSummary rolls twelve monthly rows up to one fiscal-year line.
type AnnualSummary struct {
	Year         int     `json:"year"`
	Revenue      float64 `json:"revenue"`
	COGS         float64 `json:"cogs"`
	GrossProfit  float64 `json:"gross_profit"`
	Opex         float64 `json:"opex"`
	Payroll      float64 `json:"payroll"`
	EBITDA       float64 `json:"ebitda"`
	Depreciation float64 `json:"depreciation"`
	EBIT         float64 `json:"ebit"`
	Interest     float64 `json:"interest"`
	Tax          float64 `json:"tax"`
	NetIncome    float64 `json:"net_income"`
	NetCashFlow  float64 `json:"net_cash_flow"`
	EndCash      float64 `json:"end_cash"`

	// BreakEvenRevenue is the annual revenue at which EBIT reaches zero,
	// derived from the gross margin ratio with operating costs, payroll,
	// depreciation and interest treated as the structural cost base.
	// 0 when the gross margin is zero or negative.
	BreakEvenRevenue float64 `json:"break_even_revenue"`
}

// Annualize aggregates a committed monthly ledger by plan year. Rows are
// expected in period order, the way the repository returns them.
func Annualize(rows []models.FinancialOutput) []AnnualSummary {
	byYear := make(map[int]*AnnualSummary)
	var order []int

	for _, r := range rows {
		s, ok := byYear[r.Year]
		if !ok {
			s = &AnnualSummary{Year: r.Year}
			byYear[r.Year] = s
			order = append(order, r.Year)
		}
		s.Revenue += r.Revenue
		s.COGS += r.COGS
		s.GrossProfit += r.GrossProfit
		s.Opex += r.Opex
		s.Payroll += r.Payroll
		s.EBITDA += r.EBITDA
		s.Depreciation += r.Depreciation
		s.EBIT += r.EBIT
		s.Interest += r.Interest
		s.Tax += r.Tax
		s.NetIncome += r.NetIncome
		s.NetCashFlow += r.NetCashFlow
		s.EndCash = r.CashBalance
	}

	out := make([]AnnualSummary, 0, len(order))
	for _, y := range order {
		s := byYear[y]
		marginRatio := safeDiv(s.GrossProfit, s.Revenue)
		if marginRatio > 0 {
			s.BreakEvenRevenue = (s.Opex + s.Payroll + s.Depreciation + s.Interest) / marginRatio
		}
		out = append(out, *s)
	}
	return out
}
