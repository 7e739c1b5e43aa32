// Package workingcap converts day-count policy (DSO/DPO/inventory days)
// into a periodic working-capital requirement (BFR) and its month-on-month
// change.
package workingcap

import (
	"bizplan_engine/pkg/models"
)

// Period holds the working-capital position for one month. Change is the
// cash-flow impact: the delta of Need versus the prior period, with the
// first period measured against zero.
type Period struct {
	Receivables float64 `json:"receivables"`
	Inventory   float64 `json:"inventory"`
	Payables    float64 `json:"payables"`
	Need        float64 `json:"need"`
	Change      float64 `json:"change"`
}

// Series derives the BFR series from revenue and COGS.
//
// Need = revenue x DSO/30 + COGS x inventory_days/30 - COGS x DPO/30,
// reduced by client advances (a fraction of revenue collected up front) and
// increased by supplier advances (a fraction of COGS paid up front).
// Monthly COGS stands in for the inventory value carried.
func Series(revenue, cogs []float64, wc models.WorkingCapital) []Period {
	out := make([]Period, len(revenue))
	prevNeed := 0.0

	for m := range revenue {
		p := Period{
			Receivables: revenue[m] * wc.DSODays / 30.0,
			Inventory:   cogs[m] * wc.InventoryDays / 30.0,
			Payables:    cogs[m] * wc.DPODays / 30.0,
		}
		p.Need = p.Receivables + p.Inventory - p.Payables
		p.Need -= revenue[m] * wc.ClientAdvancePct
		p.Need += cogs[m] * wc.SupplierAdvancePct
		p.Change = p.Need - prevNeed
		prevNeed = p.Need
		out[m] = p
	}
	return out
}
