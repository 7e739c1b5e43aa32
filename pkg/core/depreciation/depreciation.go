// Package depreciation derives per-month depreciation schedules from Capex
// records. Schedules are pure functions of the record: recomputed on demand,
// never cached, so an edited asset can never leave a stale schedule behind.
package depreciation

import (
	"bizplan_engine/pkg/models"
)

// Entry is one month of a depreciation schedule. Period is 0-based and
// relative to the asset's acquisition date.
type Entry struct {
	Period       int     `json:"period"`
	Amount       float64 `json:"amount"`
	NetBookValue float64 `json:"net_book_value"`
}

// Schedule builds the full schedule for one asset. A non-depreciable record
// (life <= 0 or amount <= salvage) yields an empty schedule, not an error.
func Schedule(c models.Capex) []Entry {
	base := c.Amount - c.SalvageValue
	if c.LifeMonths <= 0 || base <= 0 {
		return nil
	}

	if c.Method == models.DepreciationDegressive {
		return degressive(c, base)
	}
	return linear(c, base)
}

// linear spreads the depreciable base evenly; the last period absorbs the
// rounding remainder so cumulative depreciation equals amount - salvage
// exactly.
func linear(c models.Capex, base float64) []Entry {
	perPeriod := base / float64(c.LifeMonths)

	entries := make([]Entry, 0, c.LifeMonths)
	nbv := c.Amount
	cumulative := 0.0

	for m := 0; m < c.LifeMonths; m++ {
		amount := perPeriod
		if m == c.LifeMonths-1 {
			amount = base - cumulative
		}
		cumulative += amount
		nbv -= amount
		entries = append(entries, Entry{Period: m, Amount: amount, NetBookValue: nbv})
	}
	return entries
}

// degressive applies a declining-balance rate to net book value and switches
// permanently to straight-line on the remaining life once straight-line
// becomes the larger amount (standard crossover rule). The switch guarantees
// a full write-down to salvage value by end of life.
//
// The coefficient follows the fiscal scale by useful life:
// under 4 years 1.25, 4-5 years 1.75, 6 years and up 2.25.
func degressive(c models.Capex, base float64) []Entry {
	coefficient := 1.25
	switch years := c.LifeMonths / 12; {
	case years >= 6:
		coefficient = 2.25
	case years >= 4:
		coefficient = 1.75
	}
	monthlyRate := coefficient / float64(c.LifeMonths)

	entries := make([]Entry, 0, c.LifeMonths)
	nbv := c.Amount
	cumulative := 0.0
	straightLine := false

	for m := 0; m < c.LifeMonths; m++ {
		remaining := c.LifeMonths - m
		depreciable := nbv - c.SalvageValue

		var amount float64
		if straightLine {
			amount = depreciable / float64(remaining)
		} else {
			declining := depreciable * monthlyRate
			sl := depreciable / float64(remaining)
			if sl >= declining {
				straightLine = true
				amount = sl
			} else {
				amount = declining
			}
		}

		if m == c.LifeMonths-1 {
			amount = base - cumulative
		}

		cumulative += amount
		nbv -= amount
		entries = append(entries, Entry{Period: m, Amount: amount, NetBookValue: nbv})
	}
	return entries
}

// Total returns the cumulative depreciation of a schedule.
func Total(entries []Entry) float64 {
	sum := 0.0
	for _, e := range entries {
		sum += e.Amount
	}
	return sum
}
