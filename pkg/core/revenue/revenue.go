// Package revenue aggregates unit-level sales forecasts into periodic
// revenue and COGS series.
package revenue

import (
	"bizplan_engine/pkg/models"
)

// Period holds the aggregated figures for one monthly period.
type Period struct {
	Revenue float64 `json:"revenue"`
	COGS    float64 `json:"cogs"`
}

// Aggregate folds every SalesProjection row into a per-month series over
// the project horizon.
//
// Revenue per row is volume x unit price x seasonality weight (the twelve
// weights are direct multipliers, defaulting to 1). COGS uses volume x unit
// cost, unweighted. Rows referencing a product that no longer exists are
// excluded from both sums: an orphaned forecast must never contribute
// phantom revenue. volumeMultiplier (scenario overlay) scales volume before
// aggregation; pass 1 for the base case.
func Aggregate(
	products []models.ProductService,
	sales []models.SalesProjection,
	horizonMonths int,
	volumeMultiplier float64,
) []Period {
	byID := make(map[string]models.ProductService, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	series := make([]Period, horizonMonths)
	for _, row := range sales {
		product, ok := byID[row.ProductID]
		if !ok {
			// Orphaned row: product was deleted after the forecast was
			// entered. Skip entirely.
			continue
		}

		period := row.PeriodIndex()
		if period < 0 || period >= horizonMonths {
			continue
		}

		volume := row.Volume * volumeMultiplier
		series[period].Revenue += volume * product.UnitPrice * product.SeasonalityWeight(row.Month)
		series[period].COGS += volume * product.UnitCost
	}
	return series
}

// RevenueSeries extracts the revenue column as a plain slice.
func RevenueSeries(periods []Period) []float64 {
	out := make([]float64, len(periods))
	for i, p := range periods {
		out[i] = p.Revenue
	}
	return out
}
