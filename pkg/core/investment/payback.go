package investment

import (
	"math"

	"bizplan_engine/pkg/models"
)

// DiscountedPayback finds the first point at which cumulative discounted
// cash flow turns non-negative (the DRCI). The metric value is the payback
// expressed in months (fractional); Breakdown converts it to calendar
// terms. Undefined when the cumulative never crosses zero inside the
// horizon.
func DiscountedPayback(investment float64, flows []float64, annualRate float64) models.Metric {
	if investment <= 0 {
		// Nothing to recover.
		return models.DefinedMetric(0)
	}

	rm := MonthlyRate(annualRate)
	cumulative := -investment
	factor := 1.0

	for t, f := range flows {
		factor /= 1.0 + rm
		discounted := f * factor
		next := cumulative + discounted

		if next >= 0 {
			// Interpolate inside the month that crosses zero.
			fraction := 1.0
			if discounted > 0 {
				fraction = -cumulative / discounted
			}
			return models.DefinedMetric(float64(t) + fraction)
		}
		cumulative = next
	}

	return models.UndefinedMetric(models.ReasonNeverRecovers)
}

// Breakdown converts a payback in fractional months to years, months and
// days, using 30-day months for the day component.
func Breakdown(metric models.Metric) *models.PaybackPeriod {
	if !metric.Defined {
		return nil
	}
	totalMonths := metric.Value
	years := int(totalMonths) / 12
	months := int(totalMonths) % 12
	days := int(math.Round((totalMonths - math.Floor(totalMonths)) * 30.0))
	if days == 30 {
		days = 0
		months++
		if months == 12 {
			months = 0
			years++
		}
	}
	return &models.PaybackPeriod{Years: years, Months: months, Days: days}
}
