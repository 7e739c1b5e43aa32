package consolidation

import (
	"time"
)

// monthsBetween counts whole calendar months from a to b, clamped at zero.
// Used to offset asset and loan schedules against the project start.
func monthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if months < 0 {
		return 0
	}
	return months
}

// planYear returns the 1-based plan year for a 0-based period index.
func planYear(period int) int {
	return period/12 + 1
}

// planMonth returns the 1-based month within the plan year.
func planMonth(period int) int {
	return period%12 + 1
}
