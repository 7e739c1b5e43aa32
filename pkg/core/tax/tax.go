// Package tax applies corporate tax rules to periodic taxable income.
package tax

// CorporateTax computes the tax due for one period.
//
// Taxable income is EBIT less interest expense. Losses do not generate a
// refund; tax floors at zero. Loss carry-forward is deliberately not
// implemented here: a period's loss has no effect on later periods. The
// CarryForward hook on Settings is the extension point should the fiscal
// treatment ever require it.
func CorporateTax(ebit, interest, rate float64) float64 {
	taxable := ebit - interest
	if taxable <= 0 || rate <= 0 {
		return 0
	}
	return taxable * rate
}

// Settings carries the policy knobs for the module. CarryForward is
// reserved and currently ignored.
type Settings struct {
	Rate         float64
	CarryForward bool
}

// Apply computes tax under the given settings.
func (s Settings) Apply(ebit, interest float64) float64 {
	return CorporateTax(ebit, interest, s.Rate)
}
