// Package scenario applies a named multiplicative overlay to a base
// assumption bundle. A scenario is a pure transform of the inputs, so the
// consolidation engine itself stays scenario-agnostic.
package scenario

import (
	"bizplan_engine/pkg/models"
)

// Multipliers resolves a scenario's effective factors, defaulting
// zero-valued fields to 1 so a partially filled overlay stays neutral.
type Multipliers struct {
	Volume float64
	Price  float64
	Opex   float64
}

// Resolve extracts the effective multipliers from a scenario. A nil
// scenario is the implicit base case: all factors 1.
func Resolve(s *models.Scenario) Multipliers {
	m := Multipliers{Volume: 1, Price: 1, Opex: 1}
	if s == nil {
		return m
	}
	if s.VolumeMultiplier != 0 {
		m.Volume = s.VolumeMultiplier
	}
	if s.PriceMultiplier != 0 {
		m.Price = s.PriceMultiplier
	}
	if s.OpexMultiplier != 0 {
		m.Opex = s.OpexMultiplier
	}
	return m
}

// Apply returns a copy of the bundle with the scenario overlay folded into
// the assumption records. The input bundle is never mutated; slices that a
// multiplier touches are copied first.
func Apply(bundle models.AssumptionBundle) models.AssumptionBundle {
	m := Resolve(bundle.Scenario)
	if m.Volume == 1 && m.Price == 1 && m.Opex == 1 {
		return bundle
	}

	out := bundle

	if m.Volume != 1 {
		sales := make([]models.SalesProjection, len(bundle.Sales))
		copy(sales, bundle.Sales)
		for i := range sales {
			sales[i].Volume *= m.Volume
		}
		out.Sales = sales
	}

	if m.Price != 1 {
		products := make([]models.ProductService, len(bundle.Products))
		copy(products, bundle.Products)
		for i := range products {
			products[i].UnitPrice *= m.Price
		}
		out.Products = products
	}

	if m.Opex != 1 {
		items := make([]models.Opex, len(bundle.Opex))
		copy(items, bundle.Opex)
		for i := range items {
			items[i].Amount *= m.Opex
			items[i].VarPctOfSales *= m.Opex
		}
		out.Opex = items
	}

	return out
}

// WithVolumeScale returns a copy of the bundle whose sales volumes are
// scaled by factor on top of any existing scenario. The sensitivity bands
// of the investment analysis are produced this way: a re-run of the same
// pipeline with scaled revenue inputs, not a separate formula.
func WithVolumeScale(bundle models.AssumptionBundle, factor float64) models.AssumptionBundle {
	out := bundle
	sales := make([]models.SalesProjection, len(bundle.Sales))
	copy(sales, bundle.Sales)
	for i := range sales {
		sales[i].Volume *= factor
	}
	out.Sales = sales
	return out
}
